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

// Package workflow contains functions and types used to implement Orbit
// workflows. A workflow is the orchestration logic of an application: it
// must be deterministic, interacting with the outside world only through
// activities, timers, signals and the other primitives this package
// provides.
package workflow

import (
	"math/rand"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal"
)

type (
	// ChannelDirection, Context and the other core types mirror the
	// standard library's shapes but suspend cooperatively on the replay
	// engine's single-threaded scheduler instead of blocking OS threads.

	// Channel is a workflow-safe channel.
	Channel = internal.Channel

	// Selector waits on multiple channels/futures like a select statement.
	Selector = internal.Selector

	// WaitGroup waits for a collection of coroutines to finish.
	WaitGroup = internal.WaitGroup

	// Mutex is a workflow-safe, cooperative mutex.
	Mutex = internal.Mutex

	// Future represents an asynchronous result.
	Future = internal.Future

	// Settable resolves a Future.
	Settable = internal.Settable

	// ChildWorkflowFuture is a Future for a child workflow, with access to
	// the child's execution handle and signals.
	ChildWorkflowFuture = internal.ChildWorkflowFuture

	// Type identifies a workflow type.
	Type = internal.WorkflowType

	// Execution identifies one run of a workflow.
	Execution = internal.WorkflowExecution

	// Version is the value GetVersion returns.
	Version = internal.Version

	// ChildWorkflowOptions configures child workflow executions.
	ChildWorkflowOptions = internal.ChildWorkflowOptions

	// RegisterOptions configures workflow registration.
	RegisterOptions = internal.RegisterWorkflowOptions

	// Info holds information about the currently executing workflow.
	Info = internal.WorkflowInfo

	// Context is the workflow-side context, carried through every workflow
	// API call. It is deliberately distinct from context.Context.
	Context = internal.Context

	// CancelFunc cancels a workflow Context.
	CancelFunc = internal.CancelFunc

	// ActivityOptions configures activity executions.
	ActivityOptions = internal.ActivityOptions

	// LocalActivityOptions configures local activity executions.
	LocalActivityOptions = internal.LocalActivityOptions

	// RetryPolicy configures service-side retries.
	RetryPolicy = internal.RetryPolicy

	// ContextPropagator carries headers across context boundaries.
	ContextPropagator = internal.ContextPropagator

	// HeaderReader reads propagated headers.
	HeaderReader = internal.HeaderReader

	// HeaderWriter writes propagated headers.
	HeaderWriter = internal.HeaderWriter

	// GenericError mirrors the root package's error type for convenience.
	GenericError = internal.GenericError

	// CustomError mirrors the root package's error type for convenience.
	CustomError = internal.CustomError

	// TimeoutError mirrors the root package's error type for convenience.
	TimeoutError = internal.TimeoutError

	// CanceledError mirrors the root package's error type for convenience.
	CanceledError = internal.CanceledError

	// PanicError mirrors the root package's error type for convenience.
	PanicError = internal.PanicError
)

// DefaultVersion is returned by GetVersion when no version marker was
// recorded for a change ID, i.e. the history predates the change.
const DefaultVersion = internal.DefaultVersion

// Register registers a workflow function in the global registry under its
// function name. Prefer worker.RegisterWorkflow.
func Register(workflowFunc interface{}) {
	internal.RegisterWorkflow(workflowFunc)
}

// RegisterWithOptions registers a workflow function in the global registry
// with options.
func RegisterWithOptions(workflowFunc interface{}, opts RegisterOptions) {
	internal.RegisterWorkflowWithOptions(workflowFunc, opts)
}

// ExecuteActivity schedules an activity and returns a Future for its result.
func ExecuteActivity(ctx Context, activity interface{}, args ...interface{}) Future {
	return internal.ExecuteActivity(ctx, activity, args...)
}

// ExecuteLocalActivity runs an activity inline on the deciding worker,
// without a service round trip, and returns a Future for its result.
func ExecuteLocalActivity(ctx Context, activity interface{}, args ...interface{}) Future {
	return internal.ExecuteLocalActivity(ctx, activity, args...)
}

// ExecuteChildWorkflow starts a child workflow execution.
func ExecuteChildWorkflow(ctx Context, childWorkflow interface{}, args ...interface{}) ChildWorkflowFuture {
	return internal.ExecuteChildWorkflow(ctx, childWorkflow, args...)
}

// GetInfo returns information about the currently executing workflow.
func GetInfo(ctx Context) *Info {
	return internal.GetWorkflowInfo(ctx)
}

// GetLogger returns the replay-aware logger for the current workflow.
func GetLogger(ctx Context) *zap.Logger {
	return internal.GetLogger(ctx)
}

// GetMetricsScope returns the replay-aware metrics scope for the current
// workflow.
func GetMetricsScope(ctx Context) tally.Scope {
	return internal.GetMetricsScope(ctx)
}

// RequestCancelExternalWorkflow requests cancellation of another workflow
// execution.
func RequestCancelExternalWorkflow(ctx Context, workflowID, runID string) Future {
	return internal.RequestCancelExternalWorkflow(ctx, workflowID, runID)
}

// SignalExternalWorkflow signals another workflow execution.
func SignalExternalWorkflow(ctx Context, workflowID, runID, signalName string, arg interface{}) Future {
	return internal.SignalExternalWorkflow(ctx, workflowID, runID, signalName, arg)
}

// GetSignalChannel returns a Channel that receives every delivery of the
// named signal.
func GetSignalChannel(ctx Context, signalName string) Channel {
	return internal.GetSignalChannel(ctx, signalName)
}

// SideEffect executes f once and records its result into history; on
// replay the recorded value is returned without re-executing f.
func SideEffect(ctx Context, f func(ctx Context) interface{}) Value {
	return internal.SideEffect(ctx, f)
}

// MutableSideEffect is SideEffect for values that may legitimately change:
// a new marker is recorded only when equals reports the value changed.
func MutableSideEffect(ctx Context, id string, f func(ctx Context) interface{}, equals func(a, b interface{}) bool) Value {
	return internal.MutableSideEffect(ctx, id, f, equals)
}

// GetVersion lets workflow code branch on a recorded change version so
// histories produced by older code replay correctly.
func GetVersion(ctx Context, changeID string, minSupported, maxSupported Version) Version {
	return internal.GetVersion(ctx, changeID, minSupported, maxSupported)
}

// SetQueryHandler registers a query handler on the current workflow. The
// handler must be read-only and complete within one scheduler pass.
func SetQueryHandler(ctx Context, queryType string, handler interface{}) error {
	return internal.SetQueryHandler(ctx, queryType, handler)
}

// IsReplaying returns whether the workflow is replaying recorded history.
func IsReplaying(ctx Context) bool {
	return internal.IsReplaying(ctx)
}

// Now returns the deterministic current time: the timestamp of the decision
// task being processed.
func Now(ctx Context) time.Time {
	return internal.Now(ctx)
}

// NewTimer returns a Future that fires after d of workflow time.
func NewTimer(ctx Context, d time.Duration) Future {
	return internal.NewTimer(ctx, d)
}

// Sleep suspends the workflow for d of workflow time.
func Sleep(ctx Context, d time.Duration) (err error) {
	return internal.Sleep(ctx, d)
}

// Go spawns a workflow-safe coroutine.
func Go(ctx Context, f func(ctx Context)) {
	internal.Go(ctx, "", f)
}

// GoNamed spawns a named workflow-safe coroutine, the name showing up in
// stack trace queries.
func GoNamed(ctx Context, name string, f func(ctx Context)) {
	internal.GoNamed(ctx, name, f)
}

// NewFuture creates a Future/Settable pair resolved by workflow code.
func NewFuture(ctx Context) (Future, Settable) {
	return internal.NewFuture(ctx)
}

// NewChannel creates an unbuffered workflow channel.
func NewChannel(ctx Context) Channel {
	return internal.NewChannel(ctx)
}

// NewNamedChannel creates an unbuffered workflow channel with a name for
// stack traces.
func NewNamedChannel(ctx Context, name string) Channel {
	return internal.NewNamedChannel(ctx, name)
}

// NewBufferedChannel creates a buffered workflow channel.
func NewBufferedChannel(ctx Context, size int) Channel {
	return internal.NewBufferedChannel(ctx, size)
}

// NewNamedBufferedChannel creates a named buffered workflow channel.
func NewNamedBufferedChannel(ctx Context, name string, size int) Channel {
	return internal.NewNamedBufferedChannel(ctx, name, size)
}

// NewSelector creates a Selector.
func NewSelector(ctx Context) Selector {
	return internal.NewSelector(ctx)
}

// NewNamedSelector creates a named Selector.
func NewNamedSelector(ctx Context, name string) Selector {
	return internal.NewNamedSelector(ctx, name)
}

// NewWaitGroup creates a WaitGroup.
func NewWaitGroup(ctx Context) WaitGroup {
	return internal.NewWaitGroup(ctx)
}

// Await blocks the workflow until condition returns true, re-evaluating it
// after every event batch.
func Await(ctx Context, condition func() bool) error {
	return internal.Await(ctx, condition)
}

// AwaitWithTimeout is Await bounded by a workflow timer; it returns false
// when the timeout fires first.
func AwaitWithTimeout(ctx Context, timeout time.Duration, condition func() bool) (bool, error) {
	return internal.AwaitWithTimeout(ctx, timeout, condition)
}

// WithChildOptions adds child workflow options to the context.
func WithChildOptions(ctx Context, cwo ChildWorkflowOptions) Context {
	return internal.WithChildOptions(ctx, cwo)
}

// WithActivityOptions adds activity options to the context.
func WithActivityOptions(ctx Context, options ActivityOptions) Context {
	return internal.WithActivityOptions(ctx, options)
}

// WithLocalActivityOptions adds local activity options to the context.
func WithLocalActivityOptions(ctx Context, options LocalActivityOptions) Context {
	return internal.WithLocalActivityOptions(ctx, options)
}

// WithTaskList overrides the task list for activities scheduled from ctx.
func WithTaskList(ctx Context, name string) Context {
	return internal.WithTaskList(ctx, name)
}

// WithDataConverter overrides the payload serializer for calls made from
// ctx.
func WithDataConverter(ctx Context, dc DataConverter) Context {
	return internal.WithDataConverter(ctx, dc)
}

// WithValue returns a copy of ctx carrying the key/value pair.
func WithValue(parent Context, key interface{}, val interface{}) Context {
	return internal.WithValue(parent, key, val)
}

// WithCancel returns a copy of ctx with a new Done channel plus the
// function that closes it.
func WithCancel(parent Context) (Context, CancelFunc) {
	return internal.WithCancel(parent)
}

// NewContinueAsNewError closes the current run and restarts the workflow
// with the given function and arguments when returned from workflow code.
func NewContinueAsNewError(ctx Context, wfn interface{}, args ...interface{}) *internal.ContinueAsNewError {
	return internal.NewContinueAsNewError(ctx, wfn, args...)
}

// GetLastCompletionResult extracts the result of the previous cron run.
func GetLastCompletionResult(ctx Context, d ...interface{}) error {
	return internal.GetLastCompletionResult(ctx, d...)
}

// UpsertSearchAttributes merges the given indexed attributes into the
// running execution's visibility record.
func UpsertSearchAttributes(ctx Context, attributes map[string]interface{}) error {
	return internal.UpsertSearchAttributes(ctx, attributes)
}

type (
	// Value can extract a strongly typed value from an encoded payload.
	Value = internal.Value

	// DataConverter serializes and deserializes payloads.
	DataConverter = internal.DataConverter
)

// SideEffect's deterministic cousins: replay-stable identifiers and
// randomness. Never use the standard library's sources inside a workflow.

// RandomUUID returns a UUID that is stable across replays of this execution.
func RandomUUID(ctx Context) string {
	return internal.RandomUUID(ctx)
}

// NewRandom returns a pseudo-random generator whose sequence is stable
// across replays of this execution.
func NewRandom(ctx Context) *rand.Rand {
	return internal.NewRandom(ctx)
}
