// Copyright (c) 2017-2020 Uber Technologies Inc.
// Portions of the Software are attributed to Copyright (c) 2020 Temporal Technologies Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package internal

// The in-process test environment behind WorkflowTestSuite. It implements
// workflowEnvironment against a mock clock: activities run on real
// goroutines, timers fire by advancing the mock clock whenever the workflow
// is blocked with nothing else running, and testify mocks intercept
// activities, child workflows and a few workflow APIs by name.

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/opentracing/opentracing-go"
	"github.com/robfig/cron"
	"github.com/stretchr/testify/mock"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common/metrics"
)

const (
	defaultTestDomain       = "default-test-domain"
	defaultTestTaskList     = "default-test-tasklist"
	defaultTestWorkflowID   = "default-test-workflow-id"
	defaultTestRunID        = "default-test-run-id"
	workflowTypeNotSpecified = "workflow-type-not-specified"

	defaultTestTimeout                 = 3 * time.Second
	defaultTestWorkflowTimeoutSeconds  = int32(24 * 60 * 60)
	defaultTestDecisionTimeoutSeconds  = int32(10)
)

type (
	testTimerHandle struct {
		env      *testWorkflowEnvironmentImpl
		callback resultHandler
		timerID  string
		duration time.Duration
		fireTime time.Time
		// delayed callbacks registered by the test share the timer queue but
		// carry no workflow-visible timer identity.
		isDelayedCallback bool
	}

	testActivityHandle struct {
		callback     resultHandler
		activityType string
	}

	testCallbackHandle struct {
		callback          func()
		startDecisionTask bool
		env               *testWorkflowEnvironmentImpl
	}

	taskListSpecificActivity struct {
		fn        interface{}
		taskLists map[string]struct{}
	}

	// testWorkflowEnvironmentShared is the state shared between a root test
	// environment and the child workflow environments it spawns: one clock,
	// one callback queue, one timer/activity table, one mock.
	testWorkflowEnvironmentShared struct {
		locker     sync.Mutex
		testSuite  *WorkflowTestSuite

		mock       *mock.Mock
		mockClock  *clock.Mock
		clockSet   bool

		callbackChannel chan testCallbackHandle
		testTimeout     time.Duration

		counterID        int32
		activities       map[string]*testActivityHandle
		localActivities  map[string]*localActivityTask
		timers           map[string]*testTimerHandle
		runningWorkflows map[string]*testWorkflowEnvironmentImpl
		runningCount     int

		taskListSpecificActivities map[string]*taskListSpecificActivity

		logger             *zap.Logger
		metricsScope       *metrics.TaggedScope
		identity           string
		dataConverter      DataConverter
		contextPropagators []ContextPropagator
		tracer             opentracing.Tracer
		header             *apiv1.Header

		userContext          context.Context
		workerStopChannel    chan struct{}
		heartbeatDetails     []byte
		workflowInterceptors []WorkflowInterceptorFactory

		onActivityStartedListener        func(activityInfo *ActivityInfo, ctx context.Context, args Values)
		onActivityCompletedListener      func(activityInfo *ActivityInfo, result Value, err error)
		onActivityCanceledListener       func(activityInfo *ActivityInfo)
		onActivityHeartbeatListener      func(activityInfo *ActivityInfo, details Values)
		onChildWorkflowStartedListener   func(workflowInfo *WorkflowInfo, ctx Context, args Values)
		onChildWorkflowCompletedListener func(workflowInfo *WorkflowInfo, result Value, err error)
		onChildWorkflowCanceledListener  func(workflowInfo *WorkflowInfo)
		onTimerScheduledListener         func(timerID string, duration time.Duration)
		onTimerFiredListener             func(timerID string)
		onTimerCancelledListener         func(timerID string)
		onLocalActivityStartedListener   func(activityInfo *ActivityInfo, ctx context.Context, args []interface{})
		onLocalActivityCompletedListener func(activityInfo *ActivityInfo, result Value, err error)
		onLocalActivityCanceledListener  func(activityInfo *ActivityInfo)
	}

	// testWorkflowEnvironmentImpl is one workflow execution (root or child)
	// inside the shared test world.
	testWorkflowEnvironmentImpl struct {
		*testWorkflowEnvironmentShared
		parent *testWorkflowEnvironmentImpl

		workflowInfo *WorkflowInfo
		workflowDef  workflowDefinition
		registry     *registry

		changeVersions map[string]Version
		openSessions   map[string]*SessionInfo

		workflowCancelHandler func()
		signalHandler         func(name string, input []byte)
		queryHandler          func(string, []byte) ([]byte, error)

		// set for child environments: delivers the child's outcome into the
		// parent workflow.
		completionCallback resultHandler

		isTestCompleted bool
		testResult      Value
		testError       error

		executionTimeout  time.Duration
		cronSchedule      string
		cronMaxIterations int
	}
)

func newTestWorkflowEnvironmentImpl(s *WorkflowTestSuite, parentRegistry *registry) *testWorkflowEnvironmentImpl {
	var r *registry
	if parentRegistry == nil {
		r = newRegistry()
	} else {
		r = parentRegistry
	}

	env := &testWorkflowEnvironmentImpl{
		testWorkflowEnvironmentShared: &testWorkflowEnvironmentShared{
			testSuite:                  s,
			mockClock:                  clock.NewMock(),
			callbackChannel:            make(chan testCallbackHandle, 1000),
			testTimeout:                defaultTestTimeout,
			activities:                 make(map[string]*testActivityHandle),
			localActivities:            make(map[string]*localActivityTask),
			timers:                     make(map[string]*testTimerHandle),
			runningWorkflows:           make(map[string]*testWorkflowEnvironmentImpl),
			taskListSpecificActivities: make(map[string]*taskListSpecificActivity),
			identity:                   "test-worker",
			dataConverter:              getDefaultDataConverter(),
			contextPropagators:         s.ctxProps,
			header:                     s.header,
			workerStopChannel:          make(chan struct{}),
		},
		registry:       r,
		changeVersions: make(map[string]Version),
		openSessions:   make(map[string]*SessionInfo),
		workflowInfo: &WorkflowInfo{
			WorkflowExecution: WorkflowExecution{
				ID:    defaultTestWorkflowID,
				RunID: defaultTestRunID,
			},
			WorkflowType:                        WorkflowType{Name: workflowTypeNotSpecified},
			TaskListName:                        defaultTestTaskList,
			Domain:                              defaultTestDomain,
			ExecutionStartToCloseTimeoutSeconds: defaultTestWorkflowTimeoutSeconds,
			TaskStartToCloseTimeoutSeconds:      defaultTestDecisionTimeoutSeconds,
		},
	}

	if s.logger != nil {
		env.logger = s.logger
	} else {
		env.logger, _ = zap.NewDevelopment()
	}
	if s.scope != nil {
		env.metricsScope = metrics.NewTaggedScope(s.scope)
	} else {
		env.metricsScope = metrics.NewTaggedScope(tally.NoopScope)
	}

	return env
}

func (env *testWorkflowEnvironmentImpl) newChildEnvironment(params *executeWorkflowParams) (*testWorkflowEnvironmentImpl, error) {
	workflowID := params.workflowID
	if workflowID == "" {
		workflowID = defaultTestWorkflowID + "-child-" + env.nextID()
	}
	if _, ok := env.runningWorkflows[workflowID]; ok {
		return nil, &WorkflowExecutionAlreadyStartedError{}
	}

	childEnv := &testWorkflowEnvironmentImpl{
		testWorkflowEnvironmentShared: env.testWorkflowEnvironmentShared,
		parent:                        env,
		registry:                      env.registry,
		changeVersions:                make(map[string]Version),
		openSessions:                  make(map[string]*SessionInfo),
		workflowInfo: &WorkflowInfo{
			WorkflowExecution: WorkflowExecution{
				ID:    workflowID,
				RunID: workflowID + "-run",
			},
			WorkflowType:                        *params.workflowType,
			TaskListName:                        env.workflowInfo.TaskListName,
			Domain:                              env.workflowInfo.Domain,
			ExecutionStartToCloseTimeoutSeconds: env.workflowInfo.ExecutionStartToCloseTimeoutSeconds,
			TaskStartToCloseTimeoutSeconds:      env.workflowInfo.TaskStartToCloseTimeoutSeconds,
		},
	}
	if params.taskListName != nil && *params.taskListName != "" {
		childEnv.workflowInfo.TaskListName = *params.taskListName
	}
	if params.executionStartToCloseTimeoutSeconds != nil && *params.executionStartToCloseTimeoutSeconds > 0 {
		childEnv.workflowInfo.ExecutionStartToCloseTimeoutSeconds = *params.executionStartToCloseTimeoutSeconds
	}
	childEnv.workflowInfo.ParentWorkflowExecution = &env.workflowInfo.WorkflowExecution
	if len(params.memo) > 0 {
		memo, err := getWorkflowMemo(params.memo, env.dataConverter)
		if err != nil {
			return nil, err
		}
		childEnv.workflowInfo.Memo = memo
	}
	if len(params.searchAttributes) > 0 {
		attr, err := serializeSearchAttributes(params.searchAttributes)
		if err != nil {
			return nil, err
		}
		childEnv.workflowInfo.SearchAttributes = attr
	}

	env.runningWorkflows[workflowID] = childEnv
	return childEnv, nil
}

// WorkflowExecutionAlreadyStartedError mirrors the service rejection of a
// duplicate workflow ID inside the test environment.
type WorkflowExecutionAlreadyStartedError = api.WorkflowExecutionAlreadyStartedError

func (env *testWorkflowEnvironmentImpl) setWorkerOptions(options WorkerOptions) {
	if options.Identity != "" {
		env.identity = options.Identity
	}
	if options.MetricsScope != nil {
		env.metricsScope = metrics.NewTaggedScope(options.MetricsScope)
	}
	if options.DataConverter != nil {
		env.dataConverter = options.DataConverter
	}
	if options.BackgroundActivityContext != nil {
		env.userContext = options.BackgroundActivityContext
	}
	if len(options.ContextPropagators) > 0 {
		env.contextPropagators = options.ContextPropagators
	}
	if options.Tracer != nil {
		env.tracer = options.Tracer
	}
	if options.Logger != nil {
		env.logger = options.Logger
	}
	if len(options.WorkflowInterceptorChainFactories) > 0 {
		env.workflowInterceptors = options.WorkflowInterceptorChainFactories
	}
}

func (env *testWorkflowEnvironmentImpl) setStartTime(startTime time.Time) {
	env.mockClock.Add(startTime.Sub(env.mockClock.Now()))
	env.clockSet = true
}

func (env *testWorkflowEnvironmentImpl) setCronSchedule(schedule string) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		panic(fmt.Sprintf("invalid cron schedule %q: %v", schedule, err))
	}
	env.cronSchedule = schedule
	env.workflowInfo.CronSchedule = &schedule
}

func (env *testWorkflowEnvironmentImpl) setCronMaxIterationas(maxIterations int) {
	env.cronMaxIterations = maxIterations
}

func (env *testWorkflowEnvironmentImpl) setHeartbeatDetails(details interface{}) {
	data, err := encodeArg(env.dataConverter, details)
	if err != nil {
		panic(err)
	}
	env.heartbeatDetails = data
}

func (env *testWorkflowEnvironmentImpl) setWorkerStopChannel(c chan struct{}) {
	env.workerStopChannel = c
}

func (env *testWorkflowEnvironmentImpl) setLastCompletionResult(result interface{}) {
	data, err := encodeArg(env.dataConverter, result)
	if err != nil {
		panic(err)
	}
	env.workflowInfo.lastCompletionResult = data
}

func (env *testWorkflowEnvironmentImpl) setActivityTaskList(tasklist string, activityFns ...interface{}) {
	for _, activityFn := range activityFns {
		fnName := getActivityFunctionName(env.registry, activityFn)
		taskListActivity, ok := env.taskListSpecificActivities[fnName]
		if !ok {
			taskListActivity = &taskListSpecificActivity{fn: activityFn, taskLists: make(map[string]struct{})}
			env.taskListSpecificActivities[fnName] = taskListActivity
		}
		taskListActivity.taskLists[tasklist] = struct{}{}
	}
}

// RegisterWorkflow and friends delegate to the environment's registry.

func (env *testWorkflowEnvironmentImpl) RegisterWorkflow(w interface{}) {
	env.registry.RegisterWorkflow(w)
}

func (env *testWorkflowEnvironmentImpl) RegisterWorkflowWithOptions(w interface{}, options RegisterWorkflowOptions) {
	env.registry.RegisterWorkflowWithOptions(w, options)
}

func (env *testWorkflowEnvironmentImpl) RegisterActivity(a interface{}) {
	env.registry.RegisterActivityWithOptions(a, RegisterActivityOptions{DisableAlreadyRegisteredCheck: true})
}

func (env *testWorkflowEnvironmentImpl) RegisterActivityWithOptions(a interface{}, options RegisterActivityOptions) {
	options.DisableAlreadyRegisteredCheck = true
	env.registry.RegisterActivityWithOptions(a, options)
}

// ---------------------------------------------------------------------------
// Workflow execution driver

func (env *testWorkflowEnvironmentImpl) executeWorkflow(workflowFn interface{}, args ...interface{}) {
	workflowType, input, err := getValidatedWorkflowFunction(workflowFn, args, env.dataConverter, env.registry)
	if err != nil {
		panic(err)
	}
	env.executeWorkflowInternal(workflowType.Name, input)
}

func (env *testWorkflowEnvironmentImpl) executeWorkflowInternal(workflowType string, input []byte) {
	if !env.clockSet {
		// Workflow time starts at the wall clock unless the test pinned it.
		env.mockClock.Add(time.Now().Sub(env.mockClock.Now()))
		env.clockSet = true
	}
	env.workflowInfo.WorkflowType.Name = workflowType
	env.runningWorkflows[env.workflowInfo.WorkflowExecution.ID] = env

	cronIteration := 0
	for {
		workflowDefinition, err := env.registry.getWorkflowDefinition(env.workflowInfo.WorkflowType)
		if err != nil {
			panic(err)
		}
		env.workflowDef = workflowDefinition

		env.postCallback(func() {
			env.workflowDef.Execute(env, env.header, input)
		}, false)

		env.runMainLoop()

		if env.cronSchedule == "" || cronIteration >= env.cronMaxIterations || env.testError != nil {
			return
		}
		cronIteration++

		schedule, err := cron.ParseStandard(env.cronSchedule)
		if err != nil {
			panic(err)
		}
		next := schedule.Next(env.mockClock.Now())
		env.mockClock.Add(next.Sub(env.mockClock.Now()))

		// Next iteration sees this run's result through
		// GetLastCompletionResult.
		if env.testResult != nil {
			var data []byte
			if ev, ok := env.testResult.(*EncodedValue); ok {
				data = ev.value
			}
			env.workflowInfo.lastCompletionResult = data
		}
		env.isTestCompleted = false
		env.testResult = nil
		env.testError = nil
		env.workflowDef.Close()
	}
}

func (env *testWorkflowEnvironmentImpl) runMainLoop() {
	for !env.isTestCompleted {
		select {
		case c := <-env.callbackChannel:
			env.processCallback(c)
		case <-time.After(env.testTimeout):
			env.locker.Lock()
			st := ""
			if env.workflowDef != nil {
				st = env.workflowDef.StackTrace()
			}
			env.testError = fmt.Errorf("test timeout %v exceeded, workflow stack: %v", env.testTimeout, st)
			env.isTestCompleted = true
			env.locker.Unlock()
		}
	}
}

func (env *testWorkflowEnvironmentImpl) postCallback(cb func(), startDecisionTask bool) {
	env.callbackChannel <- testCallbackHandle{callback: cb, startDecisionTask: startDecisionTask, env: env}
}

func (env *testWorkflowEnvironmentImpl) processCallback(c testCallbackHandle) {
	env.locker.Lock()
	defer env.locker.Unlock()

	c.callback()
	if c.startDecisionTask && c.env.workflowDef != nil {
		c.env.workflowDef.OnDecisionTaskStarted()
	}

	// Every coroutine is now blocked. If nothing is running on a real
	// goroutine and no callbacks are queued, workflow time is the only way
	// forward: fire the next timer.
	for !env.isTestCompleted && env.runningCount == 0 && len(env.callbackChannel) == 0 {
		if !env.fireNextTimer() {
			break
		}
	}
}

func (env *testWorkflowEnvironmentImpl) fireNextTimer() bool {
	if len(env.timers) == 0 {
		return false
	}
	var next *testTimerHandle
	for _, th := range env.timers {
		if next == nil || th.fireTime.Before(next.fireTime) ||
			(th.fireTime.Equal(next.fireTime) && timerIDLess(th.timerID, next.timerID)) {
			next = th
		}
	}

	if d := next.fireTime.Sub(env.mockClock.Now()); d > 0 {
		env.mockClock.Add(d)
	}
	delete(env.timers, next.timerID)

	next.callback(nil, nil)
	if !next.isDelayedCallback && env.onTimerFiredListener != nil {
		env.onTimerFiredListener(next.timerID)
	}
	if next.env.workflowDef != nil {
		next.env.workflowDef.OnDecisionTaskStarted()
	}
	return true
}

func timerIDLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func (env *testWorkflowEnvironmentImpl) nextID() string {
	env.counterID++
	return fmt.Sprintf("%d", env.counterID)
}

func (env *testWorkflowEnvironmentImpl) decrementRunning() {
	env.locker.Lock()
	env.runningCount--
	env.locker.Unlock()
}

// ---------------------------------------------------------------------------
// workflowEnvironment implementation

func (env *testWorkflowEnvironmentImpl) WorkflowInfo() *WorkflowInfo {
	return env.workflowInfo
}

func (env *testWorkflowEnvironmentImpl) Complete(result []byte, err error) {
	if env.isTestCompleted {
		return
	}

	if env.parent != nil {
		// Child workflow: deliver the outcome into the parent on the main
		// loop so the parent's coroutines advance past the child future.
		delete(env.runningWorkflows, env.workflowInfo.WorkflowExecution.ID)
		if env.onChildWorkflowCompletedListener != nil {
			env.onChildWorkflowCompletedListener(env.workflowInfo, newEncodedValue(result, env.dataConverter), err)
		}
		env.callbackChannel <- testCallbackHandle{
			callback: func() {
				if env.completionCallback != nil {
					env.completionCallback(result, err)
				}
			},
			startDecisionTask: true,
			env:               env.parent,
		}
		return
	}

	env.isTestCompleted = true
	env.testResult = newEncodedValue(result, env.dataConverter)
	env.testError = err
}

func (env *testWorkflowEnvironmentImpl) RegisterCancelHandler(handler func()) {
	env.workflowCancelHandler = handler
}

func (env *testWorkflowEnvironmentImpl) RegisterSignalHandler(handler func(name string, input []byte)) {
	env.signalHandler = handler
}

func (env *testWorkflowEnvironmentImpl) RegisterQueryHandler(handler func(queryType string, queryArgs []byte) ([]byte, error)) {
	env.queryHandler = handler
}

func (env *testWorkflowEnvironmentImpl) GetLogger() *zap.Logger {
	return env.logger
}

func (env *testWorkflowEnvironmentImpl) GetMetricsScope() tally.Scope {
	return env.metricsScope
}

func (env *testWorkflowEnvironmentImpl) GetDataConverter() DataConverter {
	return env.dataConverter
}

func (env *testWorkflowEnvironmentImpl) GetContextPropagators() []ContextPropagator {
	return env.contextPropagators
}

func (env *testWorkflowEnvironmentImpl) IsReplaying() bool {
	// The test environment never replays.
	return false
}

func (env *testWorkflowEnvironmentImpl) GenerateSequenceID() string {
	return env.nextID()
}

func (env *testWorkflowEnvironmentImpl) GenerateSequence() int32 {
	env.counterID++
	return env.counterID
}

func (env *testWorkflowEnvironmentImpl) Now() time.Time {
	return env.mockClock.Now()
}

func (env *testWorkflowEnvironmentImpl) SetCurrentReplayTime(replayTime time.Time) {
	// Time in the test environment is owned by the mock clock.
}

func (env *testWorkflowEnvironmentImpl) GetRegistry() *registry {
	return env.registry
}

func (env *testWorkflowEnvironmentImpl) GetWorkflowInterceptors() []WorkflowInterceptorFactory {
	return env.workflowInterceptors
}

func (env *testWorkflowEnvironmentImpl) AddSession(sessionInfo *SessionInfo) {
	env.openSessions[sessionInfo.SessionID] = sessionInfo
}

func (env *testWorkflowEnvironmentImpl) RemoveSession(sessionID string) {
	delete(env.openSessions, sessionID)
}

// ---------------------------------------------------------------------------
// Timers

func (env *testWorkflowEnvironmentImpl) NewTimer(d time.Duration, callback resultHandler) *timerInfo {
	if d < 0 {
		callback(nil, errors.New("negative duration provided"))
		return nil
	}
	if d == 0 {
		callback(nil, nil)
		return nil
	}

	timerID := env.nextID()
	env.timers[timerID] = &testTimerHandle{
		env:      env,
		callback: callback,
		timerID:  timerID,
		duration: d,
		fireTime: env.mockClock.Now().Add(d),
	}
	if env.onTimerScheduledListener != nil {
		env.onTimerScheduledListener(timerID, d)
	}
	return &timerInfo{timerID: timerID}
}

func (env *testWorkflowEnvironmentImpl) RequestCancelTimer(timerID string) {
	th, ok := env.timers[timerID]
	if !ok {
		return
	}
	delete(env.timers, timerID)
	env.postCallback(func() {
		th.callback(nil, NewCanceledError())
		if env.onTimerCancelledListener != nil {
			env.onTimerCancelledListener(timerID)
		}
	}, true)
}

func (env *testWorkflowEnvironmentImpl) registerDelayedCallback(f func(), delayDuration time.Duration) {
	if delayDuration == 0 {
		env.postCallback(f, true)
		return
	}
	timerID := env.nextID()
	env.timers[timerID] = &testTimerHandle{
		env:               env,
		callback:          func([]byte, error) { f() },
		timerID:           timerID,
		duration:          delayDuration,
		fireTime:          env.mockClock.Now().Add(delayDuration),
		isDelayedCallback: true,
	}
}

// ---------------------------------------------------------------------------
// Activities

func (env *testWorkflowEnvironmentImpl) ExecuteActivity(parameters executeActivityParams, callback resultHandler) *activityInfo {
	var activityID string
	if parameters.ActivityID == nil || *parameters.ActivityID == "" {
		activityID = env.nextID()
	} else {
		activityID = *parameters.ActivityID
	}

	task := env.newTestActivityTask(activityID, parameters)
	env.activities[activityID] = &testActivityHandle{callback: callback, activityType: parameters.ActivityType.Name}
	env.runningCount++

	go func() {
		result := env.executeActivityTask(parameters.TaskListName, task, parameters.DataConverter)
		env.postCallback(func() {
			env.handleActivityResponse(activityID, result)
		}, true)
		env.decrementRunning()
	}()

	return &activityInfo{activityID: activityID}
}

func (env *testWorkflowEnvironmentImpl) RequestCancelActivity(activityID string) {
	handle, ok := env.activities[activityID]
	if !ok {
		return
	}
	delete(env.activities, activityID)
	env.postCallback(func() {
		handle.callback(nil, NewCanceledError())
		if env.onActivityCanceledListener != nil {
			env.onActivityCanceledListener(&ActivityInfo{ActivityID: activityID, ActivityType: ActivityType{Name: handle.activityType}})
		}
	}, true)
}

func (env *testWorkflowEnvironmentImpl) handleActivityResponse(activityID string, response interface{}) {
	handle, ok := env.activities[activityID]
	if !ok {
		// Canceled, or completed twice; drop the late result.
		return
	}
	if response == nil {
		// Activity opted into async completion; the handle stays until
		// CompleteActivity delivers the result.
		return
	}
	delete(env.activities, activityID)

	activityInfo := &ActivityInfo{ActivityID: activityID, ActivityType: ActivityType{Name: handle.activityType}}
	switch request := response.(type) {
	case *apiv1.RespondActivityTaskCanceledRequest:
		handle.callback(nil, NewCanceledError(request.Details.GetData()))
		if env.onActivityCanceledListener != nil {
			env.onActivityCanceledListener(activityInfo)
		}
	case *apiv1.RespondActivityTaskFailedRequest:
		err := constructError(request.Failure.GetReason(), request.Failure.GetDetails(), env.dataConverter)
		handle.callback(nil, err)
		if env.onActivityCompletedListener != nil {
			env.onActivityCompletedListener(activityInfo, nil, err)
		}
	case *apiv1.RespondActivityTaskCompletedRequest:
		handle.callback(request.Result.GetData(), nil)
		if env.onActivityCompletedListener != nil {
			env.onActivityCompletedListener(activityInfo, newEncodedValue(request.Result.GetData(), env.dataConverter), nil)
		}
	}
}

// CompleteActivity delivers the result of an activity that returned
// ErrActivityResultPending.
func (env *testWorkflowEnvironmentImpl) CompleteActivity(taskToken []byte, result interface{}, err error) error {
	if taskToken == nil {
		return errors.New("nil task token provided")
	}
	var data []byte
	if result != nil {
		var encodeErr error
		data, encodeErr = encodeArg(env.dataConverter, result)
		if encodeErr != nil {
			return encodeErr
		}
	}
	activityID := string(taskToken)
	request := convertActivityResultToRespondRequest(env.identity, taskToken, data, err, env.dataConverter)
	env.postCallback(func() {
		env.handleActivityResponse(activityID, request)
	}, true)
	return nil
}

func (env *testWorkflowEnvironmentImpl) newTestActivityTask(activityID string, params executeActivityParams) *apiv1.PollForActivityTaskResponse {
	now := time.Now()
	return &apiv1.PollForActivityTaskResponse{
		TaskToken:                  []byte(activityID),
		WorkflowExecution:          &apiv1.WorkflowExecution{WorkflowId: env.workflowInfo.WorkflowExecution.ID, RunId: env.workflowInfo.WorkflowExecution.RunID},
		ActivityId:                 activityID,
		ActivityType:               &apiv1.ActivityType{Name: params.ActivityType.Name},
		Input:                      &apiv1.Payload{Data: params.Input},
		ScheduledTime:              api.TimeToProto(now),
		ScheduledTimeOfThisAttempt: api.TimeToProto(now),
		StartedTime:                api.TimeToProto(now),
		ScheduleToCloseTimeout:     api.SecondsToProto(params.ScheduleToCloseTimeoutSeconds),
		StartToCloseTimeout:        api.SecondsToProto(params.StartToCloseTimeoutSeconds),
		HeartbeatTimeout:           api.SecondsToProto(params.HeartbeatTimeoutSeconds),
		WorkflowType:               &apiv1.WorkflowType{Name: env.workflowInfo.WorkflowType.Name},
		WorkflowDomain:             env.workflowInfo.Domain,
		Header:                     params.Header,
		HeartbeatDetails:           &apiv1.Payload{Data: env.heartbeatDetails},
	}
}

// executeActivityTask resolves the activity implementation (honoring
// task-list affinity and mocks) and executes it on the calling goroutine.
func (env *testWorkflowEnvironmentImpl) executeActivityTask(taskList string, task *apiv1.PollForActivityTaskResponse, dataConverter DataConverter) (result interface{}) {
	if dataConverter == nil {
		dataConverter = env.dataConverter
	}
	activityType := task.ActivityType.Name

	var impl activity
	if tlsa, ok := env.taskListSpecificActivities[activityType]; ok {
		if _, ok := tlsa.taskLists[taskList]; !ok {
			return convertActivityResultToRespondRequest(env.identity, task.TaskToken, nil,
				fmt.Errorf("activity %v is not registered with tasklist %v", activityType, taskList),
				dataConverter)
		}
	}
	registered, ok := env.registry.GetActivity(activityType)
	if !ok {
		return convertActivityResultToRespondRequest(env.identity, task.TaskToken, nil,
			fmt.Errorf("unable to find activityType=%v", activityType), dataConverter)
	}
	impl = &activityExecutorWrapper{activityExecutor: &activityExecutor{name: activityType, fn: registered.GetFunction()}, env: env}

	rootCtx := env.userContext
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	invoker := newTestActivityInvoker(env, task)
	ctx := WithActivityTask(rootCtx, task, taskList, invoker, env.logger,
		env.metricsScope.GetTaggedScope(tagActivityType, activityType),
		dataConverter, env.workerStopChannel, env.contextPropagators, env.tracer)

	defer func() {
		if p := recover(); p != nil {
			topLine := fmt.Sprintf("test activity %s [panic]:", activityType)
			st := getStackTraceRaw(topLine, 7, 0)
			result = convertActivityResultToRespondRequest(env.identity, task.TaskToken, nil,
				newWorkflowPanicError(p, st), dataConverter)
		}
	}()

	output, err := impl.Execute(ctx, task.Input.GetData())
	if err == ErrActivityResultPending {
		return nil
	}
	return convertActivityResultToRespondRequest(env.identity, task.TaskToken, output, err, dataConverter)
}

// executeActivity backs TestActivityEnvironment.ExecuteActivity.
func (env *testWorkflowEnvironmentImpl) executeActivity(activityFn interface{}, args ...interface{}) (Value, error) {
	activityType, err := getValidatedActivityFunction(activityFn, args, env.registry)
	if err != nil {
		return nil, err
	}
	input, err := encodeArgs(env.dataConverter, args)
	if err != nil {
		return nil, err
	}

	params := executeActivityParams{
		activityOptions: activityOptions{
			ScheduleToCloseTimeoutSeconds: int32(env.testTimeout.Seconds()) + 60,
			StartToCloseTimeoutSeconds:    int32(env.testTimeout.Seconds()) + 60,
		},
		ActivityType:  *activityType,
		Input:         input,
		DataConverter: env.dataConverter,
		Header:        env.header,
	}
	task := env.newTestActivityTask(env.nextID(), params)

	response := env.executeActivityTask(defaultTestTaskList, task, env.dataConverter)
	if response == nil {
		return nil, ErrActivityResultPending
	}
	switch request := response.(type) {
	case *apiv1.RespondActivityTaskCanceledRequest:
		return nil, NewCanceledError(request.Details.GetData())
	case *apiv1.RespondActivityTaskFailedRequest:
		return nil, constructError(request.Failure.GetReason(), request.Failure.GetDetails(), env.dataConverter)
	case *apiv1.RespondActivityTaskCompletedRequest:
		return newEncodedValue(request.Result.GetData(), env.dataConverter), nil
	default:
		return nil, fmt.Errorf("unsupported respond type %T", response)
	}
}

// executeLocalActivity backs TestActivityEnvironment.ExecuteLocalActivity.
func (env *testWorkflowEnvironmentImpl) executeLocalActivity(activityFn interface{}, args ...interface{}) (Value, error) {
	params := executeLocalActivityParams{
		localActivityOptions: localActivityOptions{
			ScheduleToCloseTimeoutSeconds: int32(env.testTimeout.Seconds()) + 60,
		},
		ActivityFn:    activityFn,
		ActivityType:  getFunctionName(activityFn),
		InputArgs:     args,
		WorkflowInfo:  env.workflowInfo,
		DataConverter: env.dataConverter,
		ScheduledTime: time.Now(),
		Header:        env.header,
	}
	task := newLocalActivityTask(params, func(lar *localActivityResult) {}, "test-local-activity")
	handler := newLocalActivityTaskHandler(env.userContext, env.metricsScope, env.logger,
		env.dataConverter, env.contextPropagators, env.tracer)
	lar := handler.executeLocalActivityTask(task)
	if lar.err != nil {
		return nil, lar.err
	}
	return newEncodedValue(lar.result, env.dataConverter), nil
}

// ---------------------------------------------------------------------------
// Local activities (workflow-scheduled)

func (env *testWorkflowEnvironmentImpl) ExecuteLocalActivity(params executeLocalActivityParams, callback laResultHandler) *localActivityInfo {
	activityID := env.nextID()
	task := newLocalActivityTask(params, callback, activityID)
	env.localActivities[activityID] = task
	env.runningCount++

	activityType := lastPartOfName(params.ActivityType)
	activityInfo := &ActivityInfo{ActivityID: activityID, ActivityType: ActivityType{Name: activityType}}
	if env.onLocalActivityStartedListener != nil {
		env.onLocalActivityStartedListener(activityInfo, context.Background(), params.InputArgs)
	}

	go func() {
		var lar *localActivityResult
		if mockFn := env.getMockedCall(activityType); mockFn != nil {
			result, err := env.executeMock(activityType, params.ActivityFn, params.InputArgs)
			lar = &localActivityResult{task: task, result: result, err: err}
		} else {
			handler := newLocalActivityTaskHandler(env.userContext, env.metricsScope, env.logger,
				env.dataConverter, env.contextPropagators, env.tracer)
			lar = handler.executeLocalActivityTask(task)
		}
		env.postCallback(func() {
			if _, ok := env.localActivities[activityID]; !ok {
				return
			}
			delete(env.localActivities, activityID)
			callback(lar)
			if env.onLocalActivityCompletedListener != nil {
				env.onLocalActivityCompletedListener(activityInfo, newEncodedValue(lar.result, env.dataConverter), lar.err)
			}
		}, true)
		env.decrementRunning()
	}()

	return &localActivityInfo{activityID: activityID}
}

func (env *testWorkflowEnvironmentImpl) RequestCancelLocalActivity(activityID string) {
	task, ok := env.localActivities[activityID]
	if !ok {
		return
	}
	delete(env.localActivities, activityID)
	task.cancel()
	env.postCallback(func() {
		task.callback(&localActivityResult{task: task, err: ErrCanceled})
		if env.onLocalActivityCanceledListener != nil {
			env.onLocalActivityCanceledListener(&ActivityInfo{ActivityID: activityID})
		}
	}, true)
}

// ---------------------------------------------------------------------------
// Child workflows and external workflow interactions

func (env *testWorkflowEnvironmentImpl) ExecuteChildWorkflow(params executeWorkflowParams, callback resultHandler, startedHandler func(r WorkflowExecution, e error)) error {
	childEnv, err := env.newChildEnvironment(&params)
	if err != nil {
		return err
	}
	childEnv.completionCallback = callback

	workflowType := params.workflowType.Name
	childExecution := childEnv.workflowInfo.WorkflowExecution

	if env.getMockedCall(workflowType) != nil {
		var mockArgs []interface{}
		var workflowFn interface{}
		if fn, ok := env.registry.getWorkflowFn(workflowType); ok {
			workflowFn = fn
			fnType := reflect.TypeOf(fn)
			startIdx := 0
			if fnType.NumIn() > 0 && isWorkflowContext(fnType.In(0)) {
				startIdx = 1
			}
			if decoded, err := decodeArgs(env.dataConverter, fnType, params.input, startIdx); err == nil {
				mockArgs = fnType2Results(decoded)
			}
		}
		env.runningCount++
		go func() {
			result, mockErr := env.executeMock(workflowType, workflowFn, mockArgs)
			env.postCallback(func() {
				delete(env.runningWorkflows, childExecution.ID)
				if mockErr == ErrMockStartChildWorkflowFailed {
					startedHandler(WorkflowExecution{}, mockErr)
					callback(nil, mockErr)
					return
				}
				startedHandler(childExecution, nil)
				callback(result, mockErr)
			}, true)
			env.decrementRunning()
		}()
		return nil
	}

	workflowDefinition, defErr := env.registry.getWorkflowDefinition(*params.workflowType)
	if defErr != nil {
		return defErr
	}
	childEnv.workflowDef = workflowDefinition

	if env.onChildWorkflowStartedListener != nil {
		env.onChildWorkflowStartedListener(childEnv.workflowInfo, nil, newEncodedValues(params.input, env.dataConverter))
	}

	env.postCallback(func() {
		startedHandler(childExecution, nil)
		childEnv.workflowDef.Execute(childEnv, params.header, params.input)
	}, false)
	return nil
}

func (env *testWorkflowEnvironmentImpl) RequestCancelChildWorkflow(domainName, workflowID string) {
	if childEnv, ok := env.runningWorkflows[workflowID]; ok && childEnv.workflowCancelHandler != nil {
		env.postCallback(func() {
			childEnv.workflowCancelHandler()
		}, true)
	}
}

func (env *testWorkflowEnvironmentImpl) RequestCancelExternalWorkflow(domainName, workflowID, runID string, callback resultHandler) {
	if childEnv, ok := env.runningWorkflows[workflowID]; ok {
		env.postCallback(func() {
			if childEnv.workflowCancelHandler != nil {
				childEnv.workflowCancelHandler()
			}
			callback(nil, nil)
		}, true)
		return
	}

	if env.getMockedCall(mockMethodForRequestCancelExternalWorkflow) != nil {
		go func() {
			args := env.mock.MethodCalled(mockMethodForRequestCancelExternalWorkflow, domainName, workflowID, runID)
			err := env.getMockError(args, []interface{}{domainName, workflowID, runID})
			env.postCallback(func() { callback(nil, err) }, true)
		}()
		return
	}

	env.postCallback(func() {
		callback(nil, newUnknownExternalWorkflowExecutionError())
	}, true)
}

func (env *testWorkflowEnvironmentImpl) SignalExternalWorkflow(domainName, workflowID, runID, signalName string, input []byte, arg interface{}, childWorkflowOnly bool, callback resultHandler) {
	if target, ok := env.runningWorkflows[workflowID]; ok {
		env.postCallback(func() {
			if target.signalHandler != nil {
				target.signalHandler(signalName, input)
			}
			callback(nil, nil)
		}, true)
		return
	}

	if env.getMockedCall(mockMethodForSignalExternalWorkflow) != nil {
		go func() {
			args := env.mock.MethodCalled(mockMethodForSignalExternalWorkflow, domainName, workflowID, runID, signalName, arg)
			err := env.getMockError(args, []interface{}{domainName, workflowID, runID, signalName, arg})
			env.postCallback(func() { callback(nil, err) }, true)
		}()
		return
	}

	env.postCallback(func() {
		callback(nil, newUnknownExternalWorkflowExecutionError())
	}, true)
}

func (env *testWorkflowEnvironmentImpl) UpsertSearchAttributes(attributes map[string]interface{}) error {
	attr, err := validateAndSerializeSearchAttributes(attributes)

	if env.getMockedCall(mockMethodForUpsertSearchAttributes) != nil {
		args := env.mock.MethodCalled(mockMethodForUpsertSearchAttributes, attributes)
		if mockErr := env.getMockError(args, []interface{}{attributes}); mockErr != nil {
			return mockErr
		}
	}
	if err != nil {
		return err
	}
	env.workflowInfo.SearchAttributes = mergeSearchAttributes(env.workflowInfo.SearchAttributes, attr)
	return nil
}

// ---------------------------------------------------------------------------
// Versions and side effects

func (env *testWorkflowEnvironmentImpl) GetVersion(changeID string, minSupported, maxSupported Version) Version {
	if method, ok := env.getVersionMockMethod(changeID); ok {
		args := env.mock.MethodCalled(method, changeID, minSupported, maxSupported)
		version := args.Get(0).(Version)
		validateVersion(changeID, version, minSupported, maxSupported)
		env.changeVersions[changeID] = version
		return version
	}
	if version, ok := env.changeVersions[changeID]; ok {
		validateVersion(changeID, version, minSupported, maxSupported)
		return version
	}
	validateVersion(changeID, maxSupported, minSupported, maxSupported)
	env.changeVersions[changeID] = maxSupported
	return maxSupported
}

func getMockMethodForGetVersion(changeID string) string {
	return mockMethodForGetVersion + "_" + changeID
}

func (env *testWorkflowEnvironmentImpl) getVersionMockMethod(changeID string) (string, bool) {
	specific := getMockMethodForGetVersion(changeID)
	if env.getMockedCall(specific) != nil {
		return specific, true
	}
	anything := getMockMethodForGetVersion(mock.Anything)
	if env.getMockedCall(anything) != nil {
		return anything, true
	}
	return "", false
}

func (env *testWorkflowEnvironmentImpl) SideEffect(f func() ([]byte, error), callback resultHandler) {
	callback(f())
}

func (env *testWorkflowEnvironmentImpl) MutableSideEffect(id string, f func() interface{}, equals func(a, b interface{}) bool) Value {
	data, err := encodeArg(env.dataConverter, f())
	if err != nil {
		panic(err)
	}
	return newEncodedValue(data, env.dataConverter)
}

// ---------------------------------------------------------------------------
// Signals, queries, cancellation

func (env *testWorkflowEnvironmentImpl) signalWorkflow(name string, input interface{}, startDecisionTask bool) {
	data, err := encodeArg(env.dataConverter, input)
	if err != nil {
		panic(err)
	}
	env.postCallback(func() {
		env.signalHandler(name, data)
	}, startDecisionTask)
}

func (env *testWorkflowEnvironmentImpl) signalWorkflowByID(workflowID, signalName string, input interface{}) error {
	data, err := encodeArg(env.dataConverter, input)
	if err != nil {
		panic(err)
	}
	target, ok := env.runningWorkflows[workflowID]
	if !ok {
		return &api.EntityNotExistsError{Message: fmt.Sprintf("workflow %v not exists", workflowID)}
	}
	env.postCallback(func() {
		if target.signalHandler != nil {
			target.signalHandler(signalName, data)
		}
	}, true)
	return nil
}

func (env *testWorkflowEnvironmentImpl) queryWorkflow(queryType string, args ...interface{}) (Value, error) {
	env.locker.Lock()
	defer env.locker.Unlock()
	data, err := encodeArgs(env.dataConverter, args)
	if err != nil {
		return nil, err
	}
	if env.queryHandler == nil {
		return nil, errors.New("no query handler registered")
	}
	blob, err := env.queryHandler(queryType, data)
	if err != nil {
		return nil, err
	}
	return newEncodedValue(blob, env.dataConverter), nil
}

func (env *testWorkflowEnvironmentImpl) cancelWorkflow(callback resultHandler) {
	env.postCallback(func() {
		// Cancel the entire workflow tree: children observe cancellation
		// through their own handlers.
		for _, child := range env.runningWorkflows {
			if child != env && child.workflowCancelHandler != nil {
				child.workflowCancelHandler()
			}
		}
		if env.workflowCancelHandler != nil {
			env.workflowCancelHandler()
		}
	}, true)
}

// ---------------------------------------------------------------------------
// Mock plumbing

// getMockedCall returns the matching expected call if the method is mocked.
func (env *testWorkflowEnvironmentImpl) getMockedCall(method string) *mock.Call {
	if env.mock == nil {
		return nil
	}
	for _, call := range env.mock.ExpectedCalls {
		if call.Method == method {
			return call
		}
	}
	return nil
}

// executeMock dispatches a mocked activity or child workflow by name. fn,
// when non-nil, supplies the signature for decoding mock function returns;
// args are the original call arguments.
func (env *testWorkflowEnvironmentImpl) executeMock(method string, fn interface{}, args []interface{}) ([]byte, error) {
	callArgs := make([]interface{}, 0, len(args)+1)
	if fn != nil {
		fnType := reflect.TypeOf(fn)
		if fnType.NumIn() > 0 && (isActivityContext(fnType.In(0)) || isWorkflowContext(fnType.In(0))) {
			callArgs = append(callArgs, nil)
		}
	}
	callArgs = append(callArgs, args...)

	mockRet := env.mock.MethodCalled(method, callArgs...)
	return env.getMockReturn(mockRet, fn, callArgs)
}

// getMockReturn converts a testify return list into (result, error): either
// a mock function with the mocked signature, or plain (value, error) /
// (error) mock values.
func (env *testWorkflowEnvironmentImpl) getMockReturn(mockRet mock.Arguments, fn interface{}, callArgs []interface{}) ([]byte, error) {
	if len(mockRet) == 1 {
		if mockFn := mockRet.Get(0); mockFn != nil && reflect.TypeOf(mockFn).Kind() == reflect.Func {
			fnType := reflect.TypeOf(mockFn)
			reflectArgs := make([]reflect.Value, 0, len(callArgs))
			for i, arg := range callArgs {
				if arg == nil {
					reflectArgs = append(reflectArgs, reflect.Zero(fnType.In(i)))
				} else {
					reflectArgs = append(reflectArgs, reflect.ValueOf(arg))
				}
			}
			retValues := fnType2Results(reflect.ValueOf(mockFn).Call(reflectArgs))
			return serializeResults(mockFn, retValues, env.dataConverter)
		}
	}

	switch len(mockRet) {
	case 1:
		// Either an error or a single value with implicit nil error.
		if err, ok := mockRet.Get(0).(error); ok || mockRet.Get(0) == nil {
			return nil, err
		}
		data, err := encodeArg(env.dataConverter, mockRet.Get(0))
		return data, err
	case 2:
		var retErr error
		if e := mockRet.Get(1); e != nil {
			retErr = e.(error)
		}
		value := mockRet.Get(0)
		if value == nil {
			return nil, retErr
		}
		data, err := encodeArg(env.dataConverter, value)
		if err != nil {
			return nil, err
		}
		return data, retErr
	default:
		return nil, fmt.Errorf("mock should return (result, error), (error) or a mock function, got %v values", len(mockRet))
	}
}

func fnType2Results(values []reflect.Value) []interface{} {
	results := make([]interface{}, 0, len(values))
	for _, v := range values {
		results = append(results, v.Interface())
	}
	return results
}

// getMockError extracts just an error from a mock return list.
func (env *testWorkflowEnvironmentImpl) getMockError(mockRet mock.Arguments, callArgs []interface{}) error {
	if len(mockRet) == 1 {
		if mockFn := mockRet.Get(0); mockFn != nil && reflect.TypeOf(mockFn).Kind() == reflect.Func {
			fnType := reflect.TypeOf(mockFn)
			reflectArgs := make([]reflect.Value, 0, len(callArgs))
			for i, arg := range callArgs {
				if arg == nil {
					reflectArgs = append(reflectArgs, reflect.Zero(fnType.In(i)))
				} else {
					reflectArgs = append(reflectArgs, reflect.ValueOf(arg))
				}
			}
			ret := reflect.ValueOf(mockFn).Call(reflectArgs)
			if len(ret) > 0 && !ret[len(ret)-1].IsNil() {
				return ret[len(ret)-1].Interface().(error)
			}
			return nil
		}
		if err, ok := mockRet.Get(0).(error); ok {
			return err
		}
		return nil
	}
	return mockRet.Error(len(mockRet) - 1)
}

func (env *testWorkflowEnvironmentImpl) getMockRunFn(callWrapper *MockCallWrapper) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		env.runBeforeMockCallReturns(callWrapper, args)
	}
}

func (env *testWorkflowEnvironmentImpl) runBeforeMockCallReturns(call *MockCallWrapper, args mock.Arguments) {
	if call.waitDuration != nil {
		// Advance workflow time so After()/AfterFn() are observable through
		// workflow.Now().
		duration := call.waitDuration()
		env.mockClock.Add(duration)
	}
	if call.runFn != nil {
		call.runFn(args)
	}
}

// mock dispatch for real (non-mocked) activities happens through
// activityExecutorWrapper, which checks the mock by name before falling
// back to the registered function.
type activityExecutorWrapper struct {
	*activityExecutor
	env *testWorkflowEnvironmentImpl
}

func (a *activityExecutorWrapper) Execute(ctx context.Context, input []byte) ([]byte, error) {
	activityInfo := GetActivityInfo(ctx)
	dc := getDataConverterFromActivityCtx(ctx)

	if a.env.onActivityStartedListener != nil {
		waitCh := make(chan struct{})
		a.env.postCallback(func() {
			a.env.onActivityStartedListener(&activityInfo, ctx, newEncodedValues(input, dc))
			close(waitCh)
		}, false)
		<-waitCh
	}

	if a.env.getMockedCall(a.name) != nil {
		fnType := reflect.TypeOf(a.fn)
		decoded, err := decodeArgs(dc, fnType, input, activityArgStartIndex(fnType))
		if err != nil {
			return nil, err
		}
		return a.env.executeMock(a.name, a.fn, fnType2Results(decoded))
	}

	return a.activityExecutor.Execute(ctx, input)
}

// testActivityInvoker is the ServiceInvoker visible to activities in the
// test environment; it feeds heartbeats to the listener instead of a
// service.
type testActivityInvoker struct {
	env  *testWorkflowEnvironmentImpl
	task *apiv1.PollForActivityTaskResponse
}

func newTestActivityInvoker(env *testWorkflowEnvironmentImpl, task *apiv1.PollForActivityTaskResponse) ServiceInvoker {
	return &testActivityInvoker{env: env, task: task}
}

func (i *testActivityInvoker) Heartbeat(details []byte) error {
	return i.heartbeat(details)
}

func (i *testActivityInvoker) BatchHeartbeat(details []byte) error {
	return i.heartbeat(details)
}

func (i *testActivityInvoker) BackgroundHeartbeat() error {
	return i.heartbeat(nil)
}

func (i *testActivityInvoker) heartbeat(details []byte) error {
	if i.env.onActivityHeartbeatListener != nil {
		waitCh := make(chan struct{})
		i.env.postCallback(func() {
			i.env.onActivityHeartbeatListener(
				&ActivityInfo{ActivityID: i.task.ActivityId, ActivityType: ActivityType{Name: i.task.ActivityType.Name}},
				newEncodedValues(details, i.env.dataConverter))
			close(waitCh)
		}, false)
		<-waitCh
	}
	return nil
}

func (i *testActivityInvoker) Close(flushBufferedHeartbeat bool) {}

func (i *testActivityInvoker) SignalWorkflow(ctx context.Context, domain, workflowID, runID, signalName string, signalInput []byte) error {
	target, ok := i.env.runningWorkflows[workflowID]
	if !ok {
		return &api.EntityNotExistsError{Message: fmt.Sprintf("workflow %v not exists", workflowID)}
	}
	i.env.postCallback(func() {
		if target.signalHandler != nil {
			target.signalHandler(signalName, signalInput)
		}
	}, true)
	return nil
}

// ---------------------------------------------------------------------------
// Registration-name helpers shared with the public test suite surface

// getActivityFunctionName resolves an activity function value (or name) to
// its registered name.
func getActivityFunctionName(r *registry, activity interface{}) string {
	if name, ok := activity.(string); ok {
		return name
	}
	fnName := getFunctionName(activity)
	if alias, ok := r.getActivityAlias(fnName); ok {
		fnName = alias
	}
	return fnName
}

// getWorkflowFunctionName resolves a workflow function value (or name) to
// its registered name.
func getWorkflowFunctionName(r *registry, workflow interface{}) string {
	if name, ok := workflow.(string); ok {
		return name
	}
	fnName := getFunctionName(workflow)
	if alias, ok := r.getWorkflowAlias(fnName); ok {
		fnName = alias
	}
	return fnName
}

// validateFnFormat checks a workflow/activity function's shape: a func
// (a workflow must take workflow.Context first; an activity's first
// argument is not checked), returning at most one value plus a final error.
func validateFnFormat(fnType reflect.Type, isWorkflow bool) error {
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("expected a func as input but was %s", fnType.Kind())
	}
	if isWorkflow {
		if fnType.NumIn() < 1 || !isWorkflowContext(fnType.In(0)) {
			return fmt.Errorf("expected first argument to be workflow.Context but found %s",
				func() string {
					if fnType.NumIn() < 1 {
						return "nothing"
					}
					return fnType.In(0).String()
				}())
		}
	}
	if fnType.NumOut() < 1 || fnType.NumOut() > 2 {
		return fmt.Errorf("expected function to return (result, error) or error, but found %d return values", fnType.NumOut())
	}
	if !fnType.Out(fnType.NumOut() - 1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return fmt.Errorf("expected function's last return value to be error but found %v", fnType.Out(fnType.NumOut()-1))
	}
	return nil
}
