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

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strconv"
	"time"

	"github.com/pborman/uuid"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

// getWorkflowEnvironment extracts the workflowEnvironment stashed in ctx by
// syncWorkflowDefinition.Execute. Panics if ctx isn't a workflow context.
func getWorkflowEnvironment(ctx Context) workflowEnvironment {
	wc, ok := ctx.Value(workflowEnvironmentContextKey).(workflowEnvironment)
	if !ok {
		panic("getWorkflowEnvironment: not a valid workflow context")
	}
	return wc
}

// WithActivityOptions adds ActivityOptions to ctx; every ExecuteActivity
// call made against the returned Context uses them.
func WithActivityOptions(ctx Context, options ActivityOptions) Context {
	ctx1 := setActivityParametersIfNotExist(ctx)
	opts := getActivityOptions(ctx1)
	opts.TaskListName = options.TaskList
	opts.ScheduleToCloseTimeoutSeconds = int32(options.ScheduleToCloseTimeout.Seconds())
	opts.ScheduleToStartTimeoutSeconds = int32(options.ScheduleToStartTimeout.Seconds())
	opts.StartToCloseTimeoutSeconds = int32(options.StartToCloseTimeout.Seconds())
	opts.HeartbeatTimeoutSeconds = int32(options.HeartbeatTimeout.Seconds())
	opts.WaitForCancellation = options.WaitForCancellation
	opts.ActivityID = stringPtr(options.ActivityID)
	opts.RetryPolicy = convertRetryPolicy(options.RetryPolicy)
	return ctx1
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WithLocalActivityOptions adds LocalActivityOptions to ctx; every
// ExecuteLocalActivity call made against the returned Context uses them.
func WithLocalActivityOptions(ctx Context, options LocalActivityOptions) Context {
	ctx1 := setLocalActivityParametersIfNotExist(ctx)
	opts := getLocalActivityOptions(ctx1)
	opts.ScheduleToCloseTimeoutSeconds = int32(options.ScheduleToCloseTimeout.Seconds())
	opts.RetryPolicy = options.RetryPolicy
	return ctx1
}

// WithTaskList adds a task list override to ctx.
func WithTaskList(ctx Context, name string) Context {
	ctx1 := setActivityParametersIfNotExist(ctx)
	getActivityOptions(ctx1).TaskListName = name
	return ctx1
}

// WithDataConverter adds a DataConverter override to ctx, used to
// encode/decode ExecuteActivity/ExecuteChildWorkflow arguments and results.
func WithDataConverter(ctx Context, dc DataConverter) Context {
	if dc == nil {
		panic("WithDataConverter: dc cannot be nil")
	}
	return WithValue(ctx, workflowResultContextKey, dc)
}

func getWorkflowDataConverter(ctx Context) DataConverter {
	if dc, ok := ctx.Value(workflowResultContextKey).(DataConverter); ok && dc != nil {
		return dc
	}
	return getWorkflowEnvironment(ctx).GetDataConverter()
}

// ChildWorkflowOptions configures a child workflow execution started
// through ExecuteChildWorkflow.
type ChildWorkflowOptions struct {
	Domain                              string
	WorkflowID                          string
	TaskList                            string
	ExecutionStartToCloseTimeout        time.Duration
	TaskStartToCloseTimeout             time.Duration
	WaitForCancellation                 bool
	WorkflowIDReusePolicy               WorkflowIDReusePolicy
	RetryPolicy                         *RetryPolicy
	CronSchedule                        string
	Memo                                map[string]interface{}
	SearchAttributes                    map[string]interface{}
	ParentClosePolicy                   ParentClosePolicy
}

type childWorkflowOptionsContextKeyType string

const childWorkflowOptionsContextKey childWorkflowOptionsContextKeyType = "childWorkflowOptions"

// WithChildOptions adds ChildWorkflowOptions to ctx; every
// ExecuteChildWorkflow call made against the returned Context uses them.
func WithChildOptions(ctx Context, cwo ChildWorkflowOptions) Context {
	return WithValue(ctx, childWorkflowOptionsContextKey, cwo)
}

func getChildWorkflowOptions(ctx Context) ChildWorkflowOptions {
	if cwo, ok := ctx.Value(childWorkflowOptionsContextKey).(ChildWorkflowOptions); ok {
		return cwo
	}
	return ChildWorkflowOptions{}
}

// ChildWorkflowFuture is the Future returned by ExecuteChildWorkflow. In
// addition to the eventual result it lets the caller wait for the child to
// have actually started and learn its WorkflowExecution.
type ChildWorkflowFuture interface {
	Future
	// GetChildWorkflowExecution returns a Future that's ready once the
	// child workflow has been started, and resolves to its WorkflowExecution.
	GetChildWorkflowExecution() Future
	// SignalChildWorkflow sends a signal to the child workflow, returning a
	// Future for the (workflow-side) result of sending that signal.
	SignalChildWorkflow(ctx Context, signalName string, arg interface{}) Future
}

type childWorkflowFutureImpl struct {
	*decodeFutureImpl
	executionFuture *futureImpl
}

func (c *childWorkflowFutureImpl) GetChildWorkflowExecution() Future {
	return c.executionFuture
}

func (c *childWorkflowFutureImpl) SignalChildWorkflow(ctx Context, signalName string, arg interface{}) Future {
	future, settable := NewFuture(ctx)
	var we WorkflowExecution
	if err := c.executionFuture.Get(ctx, &we); err != nil {
		settable.Set(nil, err)
		return future
	}
	env := getWorkflowEnvironment(ctx)
	input, err := encodeArg(getWorkflowDataConverter(ctx), arg)
	if err != nil {
		settable.Set(nil, err)
		return future
	}
	env.SignalExternalWorkflow("", we.ID, we.RunID, signalName, input, arg, true, func(result []byte, err error) {
		settable.Set(nil, err)
	})
	return future
}

// decodeFutureImpl stores the still-encoded activity/child-workflow result
// and decodes it lazily once Get's caller supplies the destination type.
type decodeFutureImpl struct {
	channel       *channelImpl
	ready         bool
	value         []byte
	err           error
	dataConverter DataConverter
}

func newDecodeFuture(ctx Context, dc DataConverter) (*decodeFutureImpl, func(result []byte, err error)) {
	f := &decodeFutureImpl{channel: NewChannel(ctx).(*channelImpl), dataConverter: dc}
	return f, func(result []byte, err error) {
		if f.ready {
			return
		}
		f.value = result
		f.err = err
		f.ready = true
		f.channel.Close()
	}
}

func (f *decodeFutureImpl) IsReady() bool { return f.ready }

func (f *decodeFutureImpl) Get(ctx Context, valuePtr interface{}) error {
	if !f.ready {
		f.channel.Receive(ctx, nil)
	}
	if f.err != nil {
		return f.err
	}
	if valuePtr == nil {
		return nil
	}
	dc := f.dataConverter
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return dc.FromData(f.value, valuePtr)
}

// ExecuteActivity requests execution of an activity and returns a Future
// for its eventual result. The activity is looked up by the function value
// or by its registered name.
func ExecuteActivity(ctx Context, activity interface{}, args ...interface{}) Future {
	env := getWorkflowEnvironment(ctx)
	name, err := getActivityTypeName(activity, args, env.GetRegistry())
	if err != nil {
		future, settable := NewFuture(ctx)
		settable.SetError(err)
		return future
	}
	return getWorkflowInterceptor(ctx).ExecuteActivity(ctx, name, args...)
}

// getActivityTypeName resolves an activity function or name string to the
// registered activity type name, validating the call arguments for funcs.
func getActivityTypeName(activity interface{}, args []interface{}, registry *registry) (string, error) {
	fType := reflect.TypeOf(activity)
	switch getKind(fType) {
	case reflect.String:
		return reflect.ValueOf(activity).String(), nil
	case reflect.Func:
		if err := validateFunctionArgs(activity, args, false); err != nil {
			return "", err
		}
		fnName := getFunctionName(activity)
		if alias, ok := registry.getActivityAlias(fnName); ok {
			fnName = alias
		}
		return fnName, nil
	default:
		return "", fmt.Errorf("invalid type 'activity' parameter provided, it can be either activity function or its name: %v", activity)
	}
}

func executeActivityByType(ctx Context, activityType string, args ...interface{}) Future {
	dc := getWorkflowDataConverter(ctx)
	future, settable := newDecodeFuture(ctx, dc)
	env := getWorkflowEnvironment(ctx)

	activityTypeStruct, input, err := getValidatedActivityType(activityType, args, dc, env.GetRegistry())
	if err != nil {
		settable(nil, err)
		return future
	}
	options, err := getValidatedActivityOptions(ctx)
	if err != nil {
		settable(nil, err)
		return future
	}

	header, err := headerPropagated(ctx, env.GetContextPropagators())
	if err != nil {
		settable(nil, err)
		return future
	}

	params := executeActivityParams{
		activityOptions: *options,
		ActivityType:    *activityTypeStruct,
		Input:           input,
		DataConverter:   dc,
		Header:          header,
	}

	info := env.ExecuteActivity(params, func(result []byte, err error) {
		settable(result, err)
	})

	if done := ctx.Done(); done != nil && info != nil {
		GoNamed(ctx, "activity-canceller", func(ctx Context) {
			selector := NewSelector(ctx)
			selector.AddReceive(done, func(c Channel, more bool) {
				env.RequestCancelActivity(info.activityID)
			})
			selector.AddFuture(future, func(f Future) {})
			selector.Select(ctx)
		})
	}
	return future
}

func getValidatedActivityType(f interface{}, args []interface{}, dc DataConverter, registry *registry) (*ActivityType, []byte, error) {
	fnName := ""
	fType := reflect.TypeOf(f)
	switch getKind(fType) {
	case reflect.String:
		fnName = reflect.ValueOf(f).String()
	case reflect.Func:
		if err := validateFunctionArgs(f, args, false); err != nil {
			return nil, nil, err
		}
		fnName = getFunctionName(f)
		if alias, ok := registry.getActivityAlias(fnName); ok {
			fnName = alias
		}
	default:
		return nil, nil, fmt.Errorf("invalid type 'activity' parameter provided, it can be either activity function or its name: %v", f)
	}

	input, err := encodeArgs(dc, args)
	if err != nil {
		return nil, nil, err
	}
	return &ActivityType{Name: fnName}, input, nil
}

// ExecuteLocalActivity requests execution of a local activity: one run
// inline by the worker without going through the orchestration service,
// used for cheap side effects that don't need independent retries/history.
func ExecuteLocalActivity(ctx Context, activity interface{}, args ...interface{}) Future {
	dc := getWorkflowDataConverter(ctx)
	future, settable := newDecodeFuture(ctx, dc)
	env := getWorkflowEnvironment(ctx)

	if err := validateFunctionArgs(activity, args, false); err != nil {
		settable(nil, err)
		return future
	}
	options, err := getValidatedLocalActivityOptions(ctx)
	if err != nil {
		settable(nil, err)
		return future
	}

	header, err := headerPropagated(ctx, env.GetContextPropagators())
	if err != nil {
		settable(nil, err)
		return future
	}

	params := executeLocalActivityParams{
		localActivityOptions: *options,
		ActivityFn:            activity,
		ActivityType:          getFunctionName(activity),
		InputArgs:             args,
		WorkflowInfo:          env.WorkflowInfo(),
		DataConverter:         dc,
		ScheduledTime:         env.Now(),
		Header:                header,
	}

	env.ExecuteLocalActivity(params, func(lar *localActivityResult) {
		if lar == nil {
			settable(nil, errors.New("ExecuteLocalActivity: nil result"))
			return
		}
		settable(lar.result, lar.err)
	})
	return future
}

// ExecuteChildWorkflow requests execution of a child workflow and returns a
// ChildWorkflowFuture for its eventual result.
func ExecuteChildWorkflow(ctx Context, childWorkflow interface{}, args ...interface{}) ChildWorkflowFuture {
	env := getWorkflowEnvironment(ctx)
	name, err := getWorkflowTypeName(childWorkflow, args, env.GetRegistry())
	if err != nil {
		dc := getWorkflowDataConverter(ctx)
		resultFuture, settable := newDecodeFuture(ctx, dc)
		executionFuture, executionSettable := NewFuture(ctx)
		settable(nil, err)
		executionSettable.SetError(err)
		return &childWorkflowFutureImpl{decodeFutureImpl: resultFuture, executionFuture: executionFuture.(*futureImpl)}
	}
	return getWorkflowInterceptor(ctx).ExecuteChildWorkflow(ctx, name, args...)
}

// getWorkflowTypeName resolves a workflow function or name string to the
// registered workflow type name, validating the call arguments for funcs.
func getWorkflowTypeName(workflowFunc interface{}, args []interface{}, registry *registry) (string, error) {
	fType := reflect.TypeOf(workflowFunc)
	switch getKind(fType) {
	case reflect.String:
		return reflect.ValueOf(workflowFunc).String(), nil
	case reflect.Func:
		if err := validateFunctionArgs(workflowFunc, args, true); err != nil {
			return "", err
		}
		fnName := getFunctionName(workflowFunc)
		if alias, ok := registry.getWorkflowAlias(fnName); ok {
			fnName = alias
		}
		return fnName, nil
	default:
		return "", fmt.Errorf("invalid type 'childWorkflow' parameter provided, it can be either workflow function or its name: %v", workflowFunc)
	}
}

func executeChildWorkflowByType(ctx Context, childWorkflowType string, args ...interface{}) ChildWorkflowFuture {
	dc := getWorkflowDataConverter(ctx)
	resultFuture, settable := newDecodeFuture(ctx, dc)
	executionFuture, executionSettable := NewFuture(ctx)
	env := getWorkflowEnvironment(ctx)

	wf := &childWorkflowFutureImpl{decodeFutureImpl: resultFuture, executionFuture: executionFuture.(*futureImpl)}

	workflowType, input, err := getValidatedWorkflowFunction(childWorkflowType, args, dc, env.GetRegistry())
	if err != nil {
		settable(nil, err)
		executionSettable.SetError(err)
		return wf
	}

	cwo := getChildWorkflowOptions(ctx)
	info := env.WorkflowInfo()
	taskList := cwo.TaskList
	if taskList == "" {
		taskList = info.TaskListName
	}
	executionTimeout := int32(cwo.ExecutionStartToCloseTimeout.Seconds())
	if executionTimeout == 0 {
		executionTimeout = info.ExecutionStartToCloseTimeoutSeconds
	}
	decisionTimeout := int32(cwo.TaskStartToCloseTimeout.Seconds())
	if decisionTimeout == 0 {
		decisionTimeout = info.TaskStartToCloseTimeoutSeconds
	}

	header, err := headerPropagated(ctx, env.GetContextPropagators())
	if err != nil {
		settable(nil, err)
		executionSettable.SetError(err)
		return wf
	}

	params := executeWorkflowParams{
		workflowOptions: workflowOptions{
			workflowID:                           cwo.WorkflowID,
			domain:                               stringPtr(cwo.Domain),
			taskListName:                         &taskList,
			executionStartToCloseTimeoutSeconds: &executionTimeout,
			taskStartToCloseTimeoutSeconds:       &decisionTimeout,
			workflowIDReusePolicy:                cwo.WorkflowIDReusePolicy,
			parentClosePolicy:                    cwo.ParentClosePolicy,
			retryPolicy:                          convertRetryPolicy(cwo.RetryPolicy),
			memo:                                 cwo.Memo,
			searchAttributes:                     cwo.SearchAttributes,
			cronSchedule:                         cwo.CronSchedule,
			waitForCancellation:                  cwo.WaitForCancellation,
			dataConverter:                        dc,
		},
		workflowType: workflowType,
		input:        input,
		header:       header,
	}

	err = env.ExecuteChildWorkflow(params, func(result []byte, err error) {
		settable(result, err)
	}, func(r WorkflowExecution, e error) {
		if e != nil {
			executionSettable.SetError(e)
			return
		}
		executionSettable.SetValue(r)
	})
	if err != nil {
		settable(nil, err)
		executionSettable.SetError(err)
	}
	return wf
}

// NewTimer registers a timer that fires after d and returns a Future that
// becomes ready (with a nil value) when it does, or with an error if the
// timer is canceled first.
func NewTimer(ctx Context, d time.Duration) Future {
	future, settable := NewFuture(ctx)
	env := getWorkflowEnvironment(ctx)
	t := env.NewTimer(d, func(result []byte, err error) {
		if !future.IsReady() {
			settable.Set(nil, err)
		}
	})
	if t == nil {
		// Zero-delay timers fire synchronously inside env.NewTimer; anything
		// else without a handle failed to schedule.
		if !future.IsReady() {
			settable.Set(nil, errors.New("NewTimer: timer was not scheduled"))
		}
		return future
	}

	if done := ctx.Done(); done != nil {
		GoNamed(ctx, "timer-canceller", func(ctx Context) {
			selector := NewSelector(ctx)
			selector.AddReceive(done, func(c Channel, more bool) {
				env.RequestCancelTimer(t.timerID)
			})
			selector.AddFuture(future, func(f Future) {})
			selector.Select(ctx)
		})
	}
	return future
}

// Sleep blocks the current coroutine for d, driven by a workflow timer
// rather than a real clock so that replay reproduces it exactly.
func Sleep(ctx Context, d time.Duration) (err error) {
	t := NewTimer(ctx, d)
	err = t.Get(ctx, nil)
	return
}

// Now returns the current workflow time, which is frozen during replay to
// whatever it was the first time this decision task ran live.
func Now(ctx Context) time.Time {
	return getWorkflowEnvironment(ctx).Now()
}

// GetVersion returns the version of the code that should be executed for a
// given changeID, letting a workflow change its implementation while
// staying deterministic for in-flight executions. See the Version type.
func GetVersion(ctx Context, changeID string, minSupported, maxSupported Version) Version {
	return getWorkflowEnvironment(ctx).GetVersion(changeID, minSupported, maxSupported)
}

// SideEffect executes f exactly once and records its result in history, so
// replay reuses the recorded value instead of calling f again. f must not
// touch anything in the surrounding workflow state besides its own closure.
func SideEffect(ctx Context, f func(ctx Context) interface{}) Value {
	dc := getWorkflowDataConverter(ctx)
	var resultValue []byte
	var resultErr error
	getWorkflowEnvironment(ctx).SideEffect(func() ([]byte, error) {
		r := f(ctx)
		return encodeArg(dc, r)
	}, func(result []byte, err error) {
		resultValue = result
		resultErr = err
	})
	if resultErr != nil {
		panic(resultErr)
	}
	return newEncodedValue(resultValue, dc)
}

// MutableSideEffect works like SideEffect but re-evaluates f on every
// decision task, only recording a new marker (and returning the new value)
// when equals reports the new value differs from the last recorded one.
func MutableSideEffect(ctx Context, id string, f func(ctx Context) interface{}, equals func(a, b interface{}) bool) Value {
	wrapped := func() interface{} { return f(ctx) }
	return getWorkflowEnvironment(ctx).MutableSideEffect(id, wrapped, equals)
}

// IsReplaying returns true while the current decision task is replaying
// previously-recorded history rather than executing live for the first
// time. Workflow code must not branch on this for anything that affects
// what decisions get emitted; it exists for logging only.
func IsReplaying(ctx Context) bool {
	return getWorkflowEnvironment(ctx).IsReplaying()
}

// GetLogger returns a logger that annotates every entry with the current
// workflow's identifying fields and is silenced while replaying.
func GetLogger(ctx Context) *zap.Logger {
	return getWorkflowEnvironment(ctx).GetLogger()
}

// GetMetricsScope returns a metrics scope scoped to the current workflow.
func GetMetricsScope(ctx Context) tally.Scope {
	return getWorkflowEnvironment(ctx).GetMetricsScope()
}

// GetWorkflowInfo returns information about the currently executing
// workflow, such as its WorkflowExecution and task list.
func GetWorkflowInfo(ctx Context) *WorkflowInfo {
	return getWorkflowEnvironment(ctx).WorkflowInfo()
}

// GetLastCompletionResult decodes the result of the most recent successful
// run into d, for use by a cron workflow to resume from its last output.
func GetLastCompletionResult(ctx Context, d ...interface{}) error {
	info := GetWorkflowInfo(ctx)
	if len(info.lastCompletionResult) == 0 {
		return ErrNoData
	}
	return newEncodedValues(info.lastCompletionResult, getWorkflowDataConverter(ctx)).Get(d...)
}

// UpsertSearchAttributes adds to or overwrites the workflow's indexed
// search attributes for ListWorkflowExecutions-style visibility queries.
func UpsertSearchAttributes(ctx Context, attributes map[string]interface{}) error {
	return getWorkflowEnvironment(ctx).UpsertSearchAttributes(attributes)
}

// RequestCancelExternalWorkflow requests cancellation of a workflow
// execution that isn't a descendant of the current one.
func RequestCancelExternalWorkflow(ctx Context, workflowID, runID string) Future {
	future, settable := NewFuture(ctx)
	getWorkflowEnvironment(ctx).RequestCancelExternalWorkflow("", workflowID, runID, func(result []byte, err error) {
		settable.Set(nil, err)
	})
	return future
}

// SignalExternalWorkflow sends a signal to a workflow execution that isn't
// a descendant of the current one.
func SignalExternalWorkflow(ctx Context, workflowID, runID, signalName string, arg interface{}) Future {
	future, settable := NewFuture(ctx)
	input, err := encodeArg(getWorkflowDataConverter(ctx), arg)
	if err != nil {
		settable.Set(nil, err)
		return future
	}
	getWorkflowEnvironment(ctx).SignalExternalWorkflow("", workflowID, runID, signalName, input, arg, false, func(result []byte, err error) {
		settable.Set(nil, err)
	})
	return future
}

// Await blocks until condition returns true, or ctx is canceled. Every
// other coroutine runs to its own next blocking point between each
// evaluation of condition, exactly like waiting on a Channel.
func Await(ctx Context, condition func() bool) error {
	state := getState(ctx)
	defer state.unblocked()
	for !condition() {
		if err := ctx.Err(); err != nil {
			return err
		}
		state.yield("blocked on Await")
	}
	return nil
}

// AwaitWithTimeout is Await bounded by a timer; it returns (false, nil) if
// the timeout elapses before condition becomes true. The condition is
// re-evaluated after every event batch, not only when the timer fires.
func AwaitWithTimeout(ctx Context, timeout time.Duration, condition func() bool) (bool, error) {
	if condition() {
		return true, nil
	}
	timerCtx, cancelTimer := WithCancel(ctx)
	timer := NewTimer(timerCtx, timeout)
	state := getState(ctx)
	defer state.unblocked()
	for !condition() {
		if err := ctx.Err(); err != nil {
			cancelTimer()
			return false, err
		}
		if timer.IsReady() {
			return false, nil
		}
		state.yield("blocked on AwaitWithTimeout")
	}
	cancelTimer()
	return true, nil
}

// signalsAndQueries is the per-workflow-execution registry backing
// GetSignalChannel/SetQueryHandler. It is installed once, in
// syncWorkflowDefinition.Execute, and shared by every coroutine spawned
// off the workflow's root Context.
type signalsAndQueries struct {
	signalChannels map[string]Channel
	queryHandlers  map[string]interface{}
}

type signalsAndQueriesContextKeyType string

const signalsAndQueriesContextKey signalsAndQueriesContextKeyType = "signalsAndQueries"

func withSignalsAndQueries(ctx Context) Context {
	return WithValue(ctx, signalsAndQueriesContextKey, &signalsAndQueries{
		signalChannels: make(map[string]Channel),
		queryHandlers:  make(map[string]interface{}),
	})
}

func getSignalsAndQueries(ctx Context) *signalsAndQueries {
	sq, ok := ctx.Value(signalsAndQueriesContextKey).(*signalsAndQueries)
	if !ok {
		panic("getSignalsAndQueries: not a valid workflow context")
	}
	return sq
}

// registerSignalAndQueryDispatch wires env's single signal/query callbacks
// to route by name/queryType into ctx's signalsAndQueries registry. Called
// once per workflow execution.
func registerSignalAndQueryDispatch(ctx Context, env workflowEnvironment) {
	env.RegisterSignalHandler(func(name string, input []byte) {
		sq := getSignalsAndQueries(ctx)
		ch, ok := sq.signalChannels[name]
		if !ok {
			ch = NewBufferedChannel(ctx, 100000)
			sq.signalChannels[name] = ch
		}
		ch.SendAsync(input)
	})
	env.RegisterQueryHandler(func(queryType string, queryArgs []byte) ([]byte, error) {
		sq := getSignalsAndQueries(ctx)
		handler, ok := sq.queryHandlers[queryType]
		if !ok {
			return nil, fmt.Errorf("unknown queryType: %v", queryType)
		}
		dc := env.GetDataConverter()
		fnType := reflect.TypeOf(handler)
		args, err := decodeArgs(dc, fnType, queryArgs, 0)
		if err != nil {
			return nil, err
		}
		results := reflect.ValueOf(handler).Call(args)
		return validateFunctionAndGetResults(handler, results, dc)
	})
}

// GetSignalChannel returns the Channel that receives every signal sent to
// the workflow under signalName. The channel is created lazily and is the
// same Channel on every call for a given signalName.
func GetSignalChannel(ctx Context, signalName string) Channel {
	sq := getSignalsAndQueries(ctx)
	ch, ok := sq.signalChannels[signalName]
	if !ok {
		ch = NewBufferedChannel(ctx, 100000)
		sq.signalChannels[signalName] = ch
	}
	return ch
}

// SetQueryHandler binds handler as the implementation of queryType, so that
// QueryWorkflow(..., queryType, args...) calls made against this execution
// get routed to it. handler must return (T, error) or just T.
func SetQueryHandler(ctx Context, queryType string, handler interface{}) error {
	fType := reflect.TypeOf(handler)
	if fType == nil || fType.Kind() != reflect.Func {
		return fmt.Errorf("unable to register handler - handler must be function")
	}
	if fType.NumOut() == 0 || fType.NumOut() > 2 {
		return fmt.Errorf("unable to register handler - handler must return 1 or 2 values")
	}
	getSignalsAndQueries(ctx).queryHandlers[queryType] = handler
	return nil
}


// RandomUUID returns a replay-stable UUID: a v3 (name-based) UUID in the
// namespace of the current run ID, named by the per-execution sequence
// counter. Replays regenerate the identical value because both inputs come
// from history.
func RandomUUID(ctx Context) string {
	env := getWorkflowEnvironment(ctx)
	runID := env.WorkflowInfo().WorkflowExecution.RunID
	namespace := uuid.Parse(runID)
	if namespace == nil {
		namespace = uuid.NewMD5(uuid.NIL, []byte(runID))
	}
	name := strconv.Itoa(int(env.GenerateSequence()))
	return uuid.NewMD5(namespace, []byte(name)).String()
}

// NewRandom returns a pseudo-random generator seeded from a freshly minted
// deterministic UUID, so every replay observes the same sequence.
func NewRandom(ctx Context) *rand.Rand {
	id := uuid.Parse(RandomUUID(ctx))
	seed := int64(binary.BigEndian.Uint64(id[0:8]))
	return rand.New(rand.NewSource(seed))
}
