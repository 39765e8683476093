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

// The public unit-test surface: WorkflowTestSuite produces
// TestWorkflowEnvironment / TestActivityEnvironment instances that run user
// code against the in-memory engine in internal_workflow_testsuite.go. All
// mocking rides testify's mock.Mock; the On* methods translate engine
// touchpoints (activities, child workflows, versions, external signals)
// into mock method names the dispatcher looks up at runtime.

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/uber-go/tally"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"go.uber.org/zap"
)

type (
	// EncodedValues wraps an encoded argument list for lazy decoding.
	EncodedValues struct {
		values        []byte
		dataConverter DataConverter
	}

	// WorkflowTestSuite carries the settings shared by every test
	// environment it creates.
	WorkflowTestSuite struct {
		logger   *zap.Logger
		scope    tally.Scope
		ctxProps []ContextPropagator
		header   *apiv1.Header
	}

	// TestWorkflowEnvironment runs one workflow (plus everything it
	// schedules) to completion in-process, on a virtual clock.
	TestWorkflowEnvironment struct {
		mock.Mock
		impl *testWorkflowEnvironmentImpl
	}

	// TestActivityEnvironment runs a single activity synchronously with a
	// fully populated activity context.
	TestActivityEnvironment struct {
		impl *testWorkflowEnvironmentImpl
	}

	// MockCallWrapper wraps mock.Call so a mock can also wait on the
	// workflow's virtual clock before returning.
	MockCallWrapper struct {
		call *mock.Call
		env  *TestWorkflowEnvironment

		runFn        func(args mock.Arguments)
		waitDuration func() time.Duration
	}
)

func newEncodedValues(values []byte, dc DataConverter) Values {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return &EncodedValues{values, dc}
}

// Get decodes the wrapped values, in order, into the given pointers.
func (b EncodedValues) Get(valuePtr ...interface{}) error {
	if !b.HasValues() {
		return ErrNoData
	}
	return b.dataConverter.FromData(b.values, valuePtr...)
}

// HasValues reports whether any payload is present.
func (b EncodedValues) HasValues() bool {
	return b.values != nil
}

// NewTestWorkflowEnvironment creates an environment for testing a workflow.
func (s *WorkflowTestSuite) NewTestWorkflowEnvironment() *TestWorkflowEnvironment {
	return &TestWorkflowEnvironment{impl: newTestWorkflowEnvironmentImpl(s, nil)}
}

// NewTestActivityEnvironment creates an environment for testing an activity.
func (s *WorkflowTestSuite) NewTestActivityEnvironment() *TestActivityEnvironment {
	return &TestActivityEnvironment{impl: newTestWorkflowEnvironmentImpl(s, nil)}
}

// SetLogger overrides the debug-level default logger for environments
// created afterwards.
func (s *WorkflowTestSuite) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// GetLogger returns the suite's logger.
func (s *WorkflowTestSuite) GetLogger() *zap.Logger {
	return s.logger
}

// SetMetricsScope overrides the tally.NoopScope default.
func (s *WorkflowTestSuite) SetMetricsScope(scope tally.Scope) {
	s.scope = scope
}

// SetContextPropagators sets the context propagators environments apply;
// none are used by default.
func (s *WorkflowTestSuite) SetContextPropagators(ctxProps []ContextPropagator) {
	s.ctxProps = ctxProps
}

// SetHeader sets the header handed to tested workflows; none by default.
func (s *WorkflowTestSuite) SetHeader(header *apiv1.Header) {
	s.header = header
}

// RegisterActivity registers an activity with the test environment.
func (t *TestActivityEnvironment) RegisterActivity(a interface{}) {
	t.impl.RegisterActivity(a)
}

// RegisterActivityWithOptions registers an activity under explicit options.
func (t *TestActivityEnvironment) RegisterActivityWithOptions(a interface{}, options RegisterActivityOptions) {
	t.impl.RegisterActivityWithOptions(a, options)
}

// ExecuteActivity runs the activity synchronously on the calling goroutine
// and returns its encoded result.
func (t *TestActivityEnvironment) ExecuteActivity(activityFn interface{}, args ...interface{}) (Value, error) {
	return t.impl.executeActivity(activityFn, args...)
}

// ExecuteLocalActivity runs a local activity synchronously on the calling
// goroutine and returns its encoded result.
func (t *TestActivityEnvironment) ExecuteLocalActivity(activityFn interface{}, args ...interface{}) (val Value, err error) {
	return t.impl.executeLocalActivity(activityFn, args...)
}

// SetWorkerOptions applies Identity, MetricsScope, DataConverter,
// BackgroundActivityContext, ContextPropagators, Tracer, Logger and
// WorkflowInterceptorChainFactories from options; everything else is
// ignored here. (WorkerOptions is internal; callers use worker.Options.)
func (t *TestActivityEnvironment) SetWorkerOptions(options WorkerOptions) *TestActivityEnvironment {
	t.impl.setWorkerOptions(options)
	return t
}

// SetTestTimeout bounds the wall-clock duration of the activity under test.
func (t *TestActivityEnvironment) SetTestTimeout(idleTimeout time.Duration) *TestActivityEnvironment {
	t.impl.testTimeout = idleTimeout
	return t
}

// SetHeartbeatDetails seeds what activity.GetHeartbeatDetails() returns.
func (t *TestActivityEnvironment) SetHeartbeatDetails(details interface{}) {
	t.impl.setHeartbeatDetails(details)
}

// SetWorkerStopChannel installs the channel activity.GetWorkerStopChannel
// returns; close it during ExecuteActivity to exercise worker-stop handling.
func (t *TestActivityEnvironment) SetWorkerStopChannel(c chan struct{}) {
	t.impl.setWorkerStopChannel(c)
}

// RegisterWorkflow registers a workflow with the test environment.
func (t *TestWorkflowEnvironment) RegisterWorkflow(w interface{}) {
	t.impl.RegisterWorkflow(w)
}

// RegisterWorkflowWithOptions registers a workflow under explicit options.
// Registration must precede any On* mock setup.
func (t *TestWorkflowEnvironment) RegisterWorkflowWithOptions(w interface{}, options RegisterWorkflowOptions) {
	if len(t.ExpectedCalls) > 0 {
		panic("RegisterWorkflow calls cannot follow mock related ones like OnWorkflow or similar")
	}
	t.impl.RegisterWorkflowWithOptions(w, options)
}

// RegisterActivity registers an activity with the test environment.
func (t *TestWorkflowEnvironment) RegisterActivity(a interface{}) {
	t.impl.RegisterActivity(a)
}

// RegisterActivityWithOptions registers an activity under explicit options.
// Registration must precede any On* mock setup.
func (t *TestWorkflowEnvironment) RegisterActivityWithOptions(a interface{}, options RegisterActivityOptions) {
	if len(t.ExpectedCalls) > 0 {
		panic("RegisterActivity calls cannot follow mock related ones like OnActivity or similar")
	}
	t.impl.RegisterActivityWithOptions(a, options)
}

// SetStartTime pins workflow.Now at the start of the workflow; the default
// is the wall clock when ExecuteWorkflow runs.
func (t *TestWorkflowEnvironment) SetStartTime(startTime time.Time) {
	t.impl.setStartTime(startTime)
}

// mockCallForFn resolves fn (function value or registered name) to the mock
// method name the dispatcher will look up, validating the function shape.
func (t *TestWorkflowEnvironment) mockCallForFn(fn interface{}, isWorkflow bool, args []interface{}) *mock.Call {
	switch getKind(reflect.TypeOf(fn)) {
	case reflect.Func:
		if err := validateFnFormat(reflect.TypeOf(fn), isWorkflow); err != nil {
			panic(err)
		}
		var fnName string
		if isWorkflow {
			fnName = getWorkflowFunctionName(t.impl.registry, fn)
			if alias, ok := t.impl.registry.getWorkflowAlias(fnName); ok {
				fnName = alias
			}
		} else {
			fnName = getActivityFunctionName(t.impl.registry, fn)
		}
		return t.Mock.On(fnName, args...)

	case reflect.String:
		return t.Mock.On(fn.(string), args...)

	default:
		panic("mock target must be a function or a registered name")
	}
}

// OnActivity sets up a mock for an activity, given as the function itself or
// its registered name. Finish the expectation with Return, passing either a
// function with the activity's exact signature or plain values matching its
// return types:
//   t.OnActivity(MyActivity, mock.Anything, mock.Anything).Return("mock_result", nil)
func (t *TestWorkflowEnvironment) OnActivity(activity interface{}, args ...interface{}) *MockCallWrapper {
	return t.wrapCall(t.mockCallForFn(activity, false, args))
}

// ErrMockStartChildWorkflowFailed, returned from an OnWorkflow mock, makes
// the mocked child workflow fail to start. Also exposed as
// testsuite.ErrMockStartChildWorkflowFailed.
var ErrMockStartChildWorkflowFailed = fmt.Errorf("start child workflow failed: %v", apiv1.ChildWorkflowExecutionFailedCause_CHILD_WORKFLOW_EXECUTION_FAILED_CAUSE_WORKFLOW_ALREADY_RUNNING)

// OnWorkflow sets up a mock for a (child) workflow, given as the function
// itself or its registered name. Finish the expectation with Return, passing
// either a function with the workflow's exact signature or plain values
// matching its return types. Returning ErrMockStartChildWorkflowFailed
// simulates a start failure.
func (t *TestWorkflowEnvironment) OnWorkflow(workflow interface{}, args ...interface{}) *MockCallWrapper {
	return t.wrapCall(t.mockCallForFn(workflow, true, args))
}

const mockMethodForSignalExternalWorkflow = "workflow.SignalExternalWorkflow"
const mockMethodForRequestCancelExternalWorkflow = "workflow.RequestCancelExternalWorkflow"
const mockMethodForGetVersion = "workflow.GetVersion"
const mockMethodForUpsertSearchAttributes = "workflow.UpsertSearchAttributes"

// OnSignalExternalWorkflow sets up a mock for signaling an external
// workflow. Signals between workflows the environment itself started
// (parent/child, child/child) are routed automatically; only signals leaving
// the environment need a mock. Match concrete arguments or mock.Anything,
// and Return either an error value or a function taking
// (domainName, workflowID, runID, signalName string, arg interface{}).
func (t *TestWorkflowEnvironment) OnSignalExternalWorkflow(domainName, workflowID, runID, signalName, arg interface{}) *MockCallWrapper {
	call := t.Mock.On(mockMethodForSignalExternalWorkflow, domainName, workflowID, runID, signalName, arg)
	return t.wrapCall(call)
}

// OnRequestCancelExternalWorkflow sets up a mock for cancelling an external
// workflow. Cancellations between workflows the environment itself started
// are routed automatically; only cancellations leaving the environment need
// a mock. Return either an error value or a function taking
// (domainName, workflowID, runID string).
func (t *TestWorkflowEnvironment) OnRequestCancelExternalWorkflow(domainName, workflowID, runID string) *MockCallWrapper {
	call := t.Mock.On(mockMethodForRequestCancelExternalWorkflow, domainName, workflowID, runID)
	return t.wrapCall(call)
}

// OnGetVersion sets up a mock for workflow.GetVersion, which otherwise
// always answers maxSupported in the test environment; mocking it is the
// only way to drive old-version branches. A mock for a concrete changeID
// wins over one registered with mock.Anything.
func (t *TestWorkflowEnvironment) OnGetVersion(changeID string, minSupported, maxSupported Version) *MockCallWrapper {
	call := t.Mock.On(getMockMethodForGetVersion(changeID), changeID, minSupported, maxSupported)
	return t.wrapCall(call)
}

// OnUpsertSearchAttributes sets up a mock for
// workflow.UpsertSearchAttributes. Unmocked, upserts only validate their
// input; once any mock is registered, every upsert in the workflow must
// match one.
func (t *TestWorkflowEnvironment) OnUpsertSearchAttributes(attributes map[string]interface{}) *MockCallWrapper {
	call := t.Mock.On(mockMethodForUpsertSearchAttributes, attributes)
	return t.wrapCall(call)
}

func (t *TestWorkflowEnvironment) wrapCall(call *mock.Call) *MockCallWrapper {
	callWrapper := &MockCallWrapper{call: call, env: t}
	call.Run(t.impl.getMockRunFn(callWrapper))
	return callWrapper
}

// Once limits the expectation to one call.
func (c *MockCallWrapper) Once() *MockCallWrapper {
	return c.Times(1)
}

// Twice limits the expectation to two calls.
func (c *MockCallWrapper) Twice() *MockCallWrapper {
	return c.Times(2)
}

// Times limits the expectation to i calls.
func (c *MockCallWrapper) Times(i int) *MockCallWrapper {
	c.call.Times(i)
	return c
}

// Run installs a handler invoked before the mock returns, e.g. to write
// through pointer arguments.
func (c *MockCallWrapper) Run(fn func(args mock.Arguments)) *MockCallWrapper {
	c.runFn = fn
	return c
}

// After delays the mock's return by d on the workflow's virtual clock.
func (c *MockCallWrapper) After(d time.Duration) *MockCallWrapper {
	c.waitDuration = func() time.Duration { return d }
	return c
}

// AfterFn is After with the delay computed at call time.
func (c *MockCallWrapper) AfterFn(fn func() time.Duration) *MockCallWrapper {
	c.waitDuration = fn
	return c
}

// Return sets the expectation's return values.
func (c *MockCallWrapper) Return(returnArguments ...interface{}) *MockCallWrapper {
	c.call.Return(returnArguments...)
	return c
}

// ExecuteWorkflow runs the workflow to completion, failing the test if it
// stays blocked past the test timeout (SetTestTimeout).
func (t *TestWorkflowEnvironment) ExecuteWorkflow(workflowFn interface{}, args ...interface{}) {
	t.impl.mock = &t.Mock
	t.impl.executeWorkflow(workflowFn, args...)
}

// Now returns the environment's current virtual time (workflow.Now).
func (t *TestWorkflowEnvironment) Now() time.Time {
	return t.impl.Now()
}

// SetWorkerOptions applies Identity, MetricsScope, DataConverter,
// BackgroundActivityContext, ContextPropagators, Tracer, Logger and
// WorkflowInterceptorChainFactories from options; everything else is
// ignored here. (WorkerOptions is internal; callers use worker.Options.)
func (t *TestWorkflowEnvironment) SetWorkerOptions(options WorkerOptions) *TestWorkflowEnvironment {
	t.impl.setWorkerOptions(options)
	return t
}

// SetWorkerStopChannel installs the channel activity.GetWorkerStopChannel
// returns inside activities run by this environment; close it to exercise
// worker-stop handling.
func (t *TestWorkflowEnvironment) SetWorkerStopChannel(c chan struct{}) {
	t.impl.setWorkerStopChannel(c)
}

// SetTestTimeout bounds, in wall-clock time, how long the workflow may sit
// idle (blocked on timers, activities, signals) before the environment
// aborts the test. Distinct from workflow time.
func (t *TestWorkflowEnvironment) SetTestTimeout(idleTimeout time.Duration) *TestWorkflowEnvironment {
	t.impl.testTimeout = idleTimeout
	return t
}

// SetWorkflowTimeout bounds the workflow's execution in workflow time: the
// environment auto-advances its virtual clock past timers, and moving past
// this timeout fails the workflow with a timeout error.
func (t *TestWorkflowEnvironment) SetWorkflowTimeout(executionTimeout time.Duration) *TestWorkflowEnvironment {
	t.impl.executionTimeout = executionTimeout
	return t
}

// SetWorkflowCronSchedule runs the workflow as a cron: the first iteration
// starts immediately, later iterations follow the schedule. Pair with
// SetWorkflowCronMaxIterations to bound the test.
func (t *TestWorkflowEnvironment) SetWorkflowCronSchedule(cron string) *TestWorkflowEnvironment {
	t.impl.setCronSchedule(cron)
	return t
}

// SetWorkflowCronMaxIterations caps the cron iterations after the first.
func (t *TestWorkflowEnvironment) SetWorkflowCronMaxIterations(maxIterations int) *TestWorkflowEnvironment {
	t.impl.setCronMaxIterationas(maxIterations)
	return t
}

// The Set*Listener family installs observers for engine events, mostly for
// assertions on scheduling behavior. Info types are internal; callers see
// them as activity.Info / workflow.Info.

// SetOnActivityStartedListener observes activities about to execute.
func (t *TestWorkflowEnvironment) SetOnActivityStartedListener(
	listener func(activityInfo *ActivityInfo, ctx context.Context, args Values)) *TestWorkflowEnvironment {
	t.impl.onActivityStartedListener = listener
	return t
}

// SetOnActivityCompletedListener observes activity completions.
func (t *TestWorkflowEnvironment) SetOnActivityCompletedListener(
	listener func(activityInfo *ActivityInfo, result Value, err error)) *TestWorkflowEnvironment {
	t.impl.onActivityCompletedListener = listener
	return t
}

// SetOnActivityCanceledListener observes activity cancellations.
func (t *TestWorkflowEnvironment) SetOnActivityCanceledListener(
	listener func(activityInfo *ActivityInfo)) *TestWorkflowEnvironment {
	t.impl.onActivityCanceledListener = listener
	return t
}

// SetOnActivityHeartbeatListener observes activity heartbeats.
func (t *TestWorkflowEnvironment) SetOnActivityHeartbeatListener(
	listener func(activityInfo *ActivityInfo, details Values)) *TestWorkflowEnvironment {
	t.impl.onActivityHeartbeatListener = listener
	return t
}

// SetOnChildWorkflowStartedListener observes child workflows about to
// execute.
func (t *TestWorkflowEnvironment) SetOnChildWorkflowStartedListener(
	listener func(workflowInfo *WorkflowInfo, ctx Context, args Values)) *TestWorkflowEnvironment {
	t.impl.onChildWorkflowStartedListener = listener
	return t
}

// SetOnChildWorkflowCompletedListener observes child workflow completions.
func (t *TestWorkflowEnvironment) SetOnChildWorkflowCompletedListener(
	listener func(workflowInfo *WorkflowInfo, result Value, err error)) *TestWorkflowEnvironment {
	t.impl.onChildWorkflowCompletedListener = listener
	return t
}

// SetOnChildWorkflowCanceledListener observes child workflow cancellations.
func (t *TestWorkflowEnvironment) SetOnChildWorkflowCanceledListener(
	listener func(workflowInfo *WorkflowInfo)) *TestWorkflowEnvironment {
	t.impl.onChildWorkflowCanceledListener = listener
	return t
}

// SetOnTimerScheduledListener observes timers being scheduled.
func (t *TestWorkflowEnvironment) SetOnTimerScheduledListener(
	listener func(timerID string, duration time.Duration)) *TestWorkflowEnvironment {
	t.impl.onTimerScheduledListener = listener
	return t
}

// SetOnTimerFiredListener observes timers firing.
func (t *TestWorkflowEnvironment) SetOnTimerFiredListener(listener func(timerID string)) *TestWorkflowEnvironment {
	t.impl.onTimerFiredListener = listener
	return t
}

// SetOnTimerCancelledListener observes timer cancellations.
func (t *TestWorkflowEnvironment) SetOnTimerCancelledListener(listener func(timerID string)) *TestWorkflowEnvironment {
	t.impl.onTimerCancelledListener = listener
	return t
}

// SetOnLocalActivityStartedListener observes local activities about to
// execute.
func (t *TestWorkflowEnvironment) SetOnLocalActivityStartedListener(
	listener func(activityInfo *ActivityInfo, ctx context.Context, args []interface{})) *TestWorkflowEnvironment {
	t.impl.onLocalActivityStartedListener = listener
	return t
}

// SetOnLocalActivityCompletedListener observes local activity completions.
func (t *TestWorkflowEnvironment) SetOnLocalActivityCompletedListener(
	listener func(activityInfo *ActivityInfo, result Value, err error)) *TestWorkflowEnvironment {
	t.impl.onLocalActivityCompletedListener = listener
	return t
}

// SetOnLocalActivityCanceledListener observes local activity cancellations.
func (t *TestWorkflowEnvironment) SetOnLocalActivityCanceledListener(
	listener func(activityInfo *ActivityInfo)) *TestWorkflowEnvironment {
	t.impl.onLocalActivityCanceledListener = listener
	return t
}

// IsWorkflowCompleted reports whether the tested workflow has finished.
func (t *TestWorkflowEnvironment) IsWorkflowCompleted() bool {
	return t.impl.isTestCompleted
}

// GetWorkflowResult decodes the tested workflow's result into valuePtr, or
// returns the workflow's error.
func (t *TestWorkflowEnvironment) GetWorkflowResult(valuePtr interface{}) error {
	if !t.impl.isTestCompleted {
		panic("workflow is not completed")
	}
	if t.impl.testError != nil || t.impl.testResult == nil || !t.impl.testResult.HasValue() || valuePtr == nil {
		return t.impl.testError
	}
	return t.impl.testResult.Get(valuePtr)
}

// GetWorkflowError returns the tested workflow's error, if it failed.
func (t *TestWorkflowEnvironment) GetWorkflowError() error {
	return t.impl.testError
}

// CompleteActivity resolves an activity that returned
// activity.ErrResultPending.
func (t *TestWorkflowEnvironment) CompleteActivity(taskToken []byte, result interface{}, err error) error {
	return t.impl.CompleteActivity(taskToken, result, err)
}

// CancelWorkflow delivers a cancellation request to the running workflow
// through its Context.
func (t *TestWorkflowEnvironment) CancelWorkflow() {
	t.impl.cancelWorkflow(func(result []byte, err error) {})
}

// SignalWorkflow delivers a signal to the running workflow.
func (t *TestWorkflowEnvironment) SignalWorkflow(name string, input interface{}) {
	t.impl.signalWorkflow(name, input, true)
}

// SignalWorkflowSkippingDecision delivers a signal without running workflow
// code, to pile up buffered signals; follow with SignalWorkflow,
// CancelWorkflow or CompleteActivity to force a decision.
func (t *TestWorkflowEnvironment) SignalWorkflowSkippingDecision(name string, input interface{}) {
	t.impl.signalWorkflow(name, input, false)
}

// SignalWorkflowByID delivers a signal to a workflow the environment knows
// by ID (the tested workflow or one of its children).
func (t *TestWorkflowEnvironment) SignalWorkflowByID(workflowID, signalName string, input interface{}) error {
	return t.impl.signalWorkflowByID(workflowID, signalName, input)
}

// QueryWorkflow runs a query against the workflow and returns its result
// synchronously.
func (t *TestWorkflowEnvironment) QueryWorkflow(queryType string, args ...interface{}) (Value, error) {
	return t.impl.queryWorkflow(queryType, args...)
}

// RegisterDelayedCallback schedules callback on the workflow's virtual
// clock. The environment auto-advances the clock whenever the workflow is
// blocked, so this is the way to inject signals, cancellations or activity
// completions at a chosen workflow time. A zero delay behaves like
// SignalWithStart.
func (t *TestWorkflowEnvironment) RegisterDelayedCallback(callback func(), delayDuration time.Duration) {
	t.impl.registerDelayedCallback(callback, delayDuration)
}

// SetActivityTaskList pins the given activities to one task list; by
// default any task list can run any registered activity.
func (t *TestWorkflowEnvironment) SetActivityTaskList(tasklist string, activityFn ...interface{}) {
	t.impl.setActivityTaskList(tasklist, activityFn...)
}

// SetLastCompletionResult seeds workflow.GetLastCompletionResult.
func (t *TestWorkflowEnvironment) SetLastCompletionResult(result interface{}) {
	t.impl.setLastCompletionResult(result)
}

// SetMemoOnStart attaches a memo to the tested workflow's start.
func (t *TestWorkflowEnvironment) SetMemoOnStart(memo map[string]interface{}) error {
	memoStruct, err := getWorkflowMemo(memo, t.impl.GetDataConverter())
	if err != nil {
		return err
	}
	t.impl.workflowInfo.Memo = memoStruct
	return nil
}

// SetSearchAttributesOnStart attaches search attributes to the tested
// workflow's start.
func (t *TestWorkflowEnvironment) SetSearchAttributesOnStart(searchAttributes map[string]interface{}) error {
	attr, err := serializeSearchAttributes(searchAttributes)
	if err != nil {
		return err
	}
	t.impl.workflowInfo.SearchAttributes = attr
	return nil
}
