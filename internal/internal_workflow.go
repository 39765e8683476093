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
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/api"
)

// Context is the workflow-side analogue of context.Context. Workflow code
// never imports the standard context package directly: doing so would make
// goroutine-local state (the dispatcher, current time, cancellation) a
// window onto non-deterministic APIs. Everything a workflow needs from a
// context is expressed through this interface instead.
type Context interface {
	// Deadline returns the time when this Context will be canceled, if any.
	Deadline() (deadline time.Time, ok bool)

	// Done returns a channel that is closed when this Context is canceled.
	Done() Channel

	// Err returns a non-nil error after Done is closed.
	Err() error

	// Value returns the value associated with this context for key.
	Value(key interface{}) interface{}
}

// CancelFunc cancels the Context it was returned for, and all Contexts
// derived from it.
type CancelFunc func()

type (
	valueCtx struct {
		Context
		key, val interface{}
	}

	cancelCtx struct {
		Context
		done     Channel
		err      error
		children []*cancelCtx
	}

	emptyCtx struct{}
)

func (c *emptyCtx) Deadline() (time.Time, bool)       { return time.Time{}, false }
func (c *emptyCtx) Done() Channel                     { return nil }
func (c *emptyCtx) Err() error                        { return nil }
func (c *emptyCtx) Value(key interface{}) interface{} { return nil }

// Background returns an empty Context. It is never canceled, has no values,
// and has no deadline. Every workflow run starts from one.
func Background() Context {
	return &emptyCtx{}
}

func (c *valueCtx) Value(key interface{}) interface{} {
	if c.key == key {
		return c.val
	}
	return c.Context.Value(key)
}

// WithValue returns a copy of parent in which the value associated with key
// is val.
func WithValue(parent Context, key interface{}, val interface{}) Context {
	if parent == nil {
		panic("cannot create context from nil parent")
	}
	return &valueCtx{parent, key, val}
}

func (c *cancelCtx) Done() Channel { return c.done }
func (c *cancelCtx) Err() error    { return c.err }

func (c *cancelCtx) cancel(err error) {
	if err == nil {
		err = Canceled
	}
	if c.err != nil {
		return
	}
	c.err = err
	c.done.Close()
	for _, ch := range c.children {
		ch.cancel(err)
	}
}

// Canceled is the error returned by Context.Err when the context is canceled.
var Canceled = errors.New("context canceled")

// WithCancel returns a copy of parent with a new Done channel. The returned
// CancelFunc cancels the returned Context and any Context derived from it.
func WithCancel(parent Context) (Context, CancelFunc) {
	if parent == nil {
		panic("cannot create context from nil parent")
	}
	c := &cancelCtx{Context: parent, done: NewChannel(parent)}
	if pc, ok := parent.(*cancelCtx); ok {
		pc.children = append(pc.children, c)
	}
	return c, func() { c.cancel(nil) }
}

// The workflow Context primitives provide WithCancel only; there is no
// WithDeadline.

func isWorkflowContext(t reflect.Type) bool {
	contextElem := reflect.TypeOf((*Context)(nil)).Elem()
	return t != nil && t.Implements(contextElem)
}

// Future represents the result of an asynchronous computation.
type Future interface {
	// Get blocks until the future is ready. When ready it either returns a
	// non-nil error or decodes the result into valuePtr (if not nil).
	Get(ctx Context, valuePtr interface{}) error

	// IsReady returns true if the future is ready.
	IsReady() bool
}

// Settable is used to set the value or error on an associated Future.
type Settable interface {
	Set(value interface{}, err error)
	SetValue(value interface{})
	SetError(err error)
	Chain(future Future)
}

type futureImpl struct {
	value   interface{}
	err     error
	ready   bool
	channel *channelImpl
	chained []*futureImpl
}

// NewFuture creates a new Future/Settable pair bound to ctx's dispatcher.
func NewFuture(ctx Context) (Future, Settable) {
	impl := &futureImpl{channel: NewChannel(ctx).(*channelImpl)}
	return impl, impl
}

func (f *futureImpl) IsReady() bool {
	return f.ready
}

func (f *futureImpl) Get(ctx Context, valuePtr interface{}) error {
	if !f.ready {
		more := f.channel.Receive(ctx, nil)
		if more {
			panic("future channel must have been closed on completion")
		}
	}
	if f.err != nil {
		return f.err
	}
	if valuePtr == nil || f.value == nil {
		return nil
	}
	rv := reflect.ValueOf(valuePtr)
	if rv.Kind() != reflect.Ptr {
		return errors.New("valuePtr parameter is not a pointer")
	}
	fv := reflect.ValueOf(f.value)
	if !fv.IsValid() {
		return nil
	}
	if !fv.Type().AssignableTo(rv.Elem().Type()) {
		return fmt.Errorf("unable to assign future value of type %v to valuePtr of type %v", fv.Type(), rv.Elem().Type())
	}
	rv.Elem().Set(fv)
	return nil
}

func (f *futureImpl) Set(value interface{}, err error) {
	if f.ready {
		panic("future already set")
	}
	f.value = value
	f.err = err
	f.ready = true
	f.channel.Close()
	for _, c := range f.chained {
		c.Set(value, err)
	}
}

func (f *futureImpl) SetValue(value interface{}) { f.Set(value, nil) }
func (f *futureImpl) SetError(err error)         { f.Set(nil, err) }

func (f *futureImpl) Chain(future Future) {
	ch, ok := future.(*futureImpl)
	if !ok {
		panic("cannot chain to a Future not created by NewFuture")
	}
	if ch.ready {
		f.Set(ch.value, ch.err)
		return
	}
	ch.chained = append(ch.chained, f)
}

// Channel is a CSP-style channel usable from deterministic workflow code.
// Unlike a Go channel it is driven by the dispatcher's cooperative scheduler
// rather than the OS scheduler, so Send/Receive never block a real thread.
type Channel interface {
	Receive(ctx Context, valuePtr interface{}) (more bool)
	ReceiveAsync(valuePtr interface{}) (ok bool)
	ReceiveAsyncWithMoreFlag(valuePtr interface{}) (ok bool, more bool)
	Send(ctx Context, v interface{})
	SendAsync(v interface{}) (ok bool)
	Close()
}

type channelImpl struct {
	name   string
	size   int
	buffer []interface{}
	closed bool
}

// NewChannel creates a new unbuffered Channel.
func NewChannel(ctx Context) Channel {
	return NewNamedChannel(ctx, "")
}

// NewNamedChannel creates a new unbuffered Channel with a debug name.
func NewNamedChannel(ctx Context, name string) Channel {
	return &channelImpl{name: name}
}

// NewBufferedChannel creates a new buffered Channel.
func NewBufferedChannel(ctx Context, size int) Channel {
	return &channelImpl{size: size}
}

// NewNamedBufferedChannel creates a new named buffered Channel.
func NewNamedBufferedChannel(ctx Context, name string, size int) Channel {
	return &channelImpl{name: name, size: size}
}

func (c *channelImpl) Receive(ctx Context, valuePtr interface{}) (more bool) {
	state := getState(ctx)
	for {
		if ok, more := c.ReceiveAsyncWithMoreFlag(valuePtr); ok || !more {
			state.unblocked()
			return more
		}
		state.yield(fmt.Sprintf("blocked on %s.Receive", c.name))
	}
}

func (c *channelImpl) ReceiveAsync(valuePtr interface{}) (ok bool) {
	ok, _ = c.ReceiveAsyncWithMoreFlag(valuePtr)
	return ok
}

func (c *channelImpl) ReceiveAsyncWithMoreFlag(valuePtr interface{}) (ok bool, more bool) {
	if len(c.buffer) > 0 {
		v := c.buffer[0]
		c.buffer = c.buffer[1:]
		assignValueOrPanic(valuePtr, v)
		return true, true
	}
	if c.closed {
		return false, false
	}
	return false, true
}

func (c *channelImpl) Send(ctx Context, v interface{}) {
	state := getState(ctx)
	for !c.SendAsync(v) {
		state.yield(fmt.Sprintf("blocked on %s.Send", c.name))
	}
	state.unblocked()
}

// SendAsync never blocks for real: an unbuffered channel (size 0) behaves
// as an always-accepting mailbox rather than a rendezvous, since the
// dispatcher drives every coroutine to a fixed point each decision anyway.
func (c *channelImpl) SendAsync(v interface{}) (ok bool) {
	if c.closed {
		panic("Send on a closed channel")
	}
	if c.size == 0 || len(c.buffer) < c.size {
		c.buffer = append(c.buffer, v)
		return true
	}
	return false
}

func (c *channelImpl) Close() {
	c.closed = true
}

func assignValueOrPanic(valuePtr interface{}, v interface{}) {
	if valuePtr == nil {
		return
	}
	rv := reflect.ValueOf(valuePtr)
	if rv.Kind() != reflect.Ptr {
		panic("valuePtr parameter is not a pointer")
	}
	if v == nil {
		return
	}
	fv := reflect.ValueOf(v)
	if fv.Type().AssignableTo(rv.Elem().Type()) {
		rv.Elem().Set(fv)
	}
}

// Selector permits waiting on multiple Channel/Future operations, taking the
// first one ready, similar in spirit to a select statement over Go channels.
type Selector interface {
	AddReceive(c Channel, f func(c Channel, more bool)) Selector
	AddSend(c Channel, v interface{}, f func()) Selector
	AddFuture(future Future, f func(f Future)) Selector
	AddDefault(f func())
	Select(ctx Context)
}

type selectorImpl struct {
	name       string
	cases      []func() bool
	defaultFn  func()
}

// NewSelector creates a new Selector.
func NewSelector(ctx Context) Selector {
	return &selectorImpl{}
}

// NewNamedSelector creates a new Selector with a debug name.
func NewNamedSelector(ctx Context, name string) Selector {
	return &selectorImpl{name: name}
}

func (s *selectorImpl) AddReceive(c Channel, f func(c Channel, more bool)) Selector {
	s.cases = append(s.cases, func() bool {
		// Peek rather than consume: the callback retrieves the value itself
		// with c.Receive, which completes without blocking.
		impl := c.(*channelImpl)
		if len(impl.buffer) > 0 {
			f(c, true)
			return true
		}
		if impl.closed {
			f(c, false)
			return true
		}
		return false
	})
	return s
}

func (s *selectorImpl) AddSend(c Channel, v interface{}, f func()) Selector {
	s.cases = append(s.cases, func() bool {
		if c.SendAsync(v) {
			f()
			return true
		}
		return false
	})
	return s
}

func (s *selectorImpl) AddFuture(future Future, f func(f Future)) Selector {
	s.cases = append(s.cases, func() bool {
		if !future.IsReady() {
			return false
		}
		f(future)
		return true
	})
	return s
}

func (s *selectorImpl) AddDefault(f func()) {
	s.defaultFn = f
}

func (s *selectorImpl) Select(ctx Context) {
	state := getState(ctx)
	for {
		for _, c := range s.cases {
			if c() {
				state.unblocked()
				return
			}
		}
		if s.defaultFn != nil {
			s.defaultFn()
			state.unblocked()
			return
		}
		state.yield(fmt.Sprintf("blocked on %s.Select", s.name))
	}
}

// WaitGroup waits for a collection of goroutines spawned with Go to finish,
// mirroring sync.WaitGroup for deterministic workflow code.
type WaitGroup interface {
	Add(delta int)
	Done()
	Wait(ctx Context)
}

type waitGroupImpl struct {
	n int
}

// NewWaitGroup creates a new WaitGroup.
func NewWaitGroup(ctx Context) WaitGroup {
	return &waitGroupImpl{}
}

func (wg *waitGroupImpl) Add(delta int) { wg.n += delta }
func (wg *waitGroupImpl) Done()         { wg.n-- }

func (wg *waitGroupImpl) Wait(ctx Context) {
	state := getState(ctx)
	for wg.n > 0 {
		state.yield("blocked on WaitGroup.Wait")
	}
	state.unblocked()
}

// Mutex is a deterministic mutual exclusion lock for workflow code.
type Mutex interface {
	Lock(ctx Context) error
	Unlock()
}

type mutexImpl struct {
	locked bool
}

// NewMutex creates a new Mutex.
func NewMutex() Mutex {
	return &mutexImpl{}
}

func (m *mutexImpl) Lock(ctx Context) error {
	state := getState(ctx)
	for m.locked {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		state.yield("blocked on Mutex.Lock")
	}
	m.locked = true
	state.unblocked()
	return nil
}

func (m *mutexImpl) Unlock() {
	m.locked = false
}

// coroutineState is the dispatcher-local bookkeeping for a single Go(ctx,
// name, f) call: the goroutine that runs f, and the two handshake channels
// used to suspend/resume it in lockstep with the rest of the workflow.
type coroutineState struct {
	name         string
	dispatcher   *dispatcherImpl
	aboutToBlock chan bool // coroutine -> dispatcher, "I am blocked or done"
	unblock      chan string
	// keptBlocked is true when the coroutine has re-yielded without making
	// progress since it was last resumed. Blocking primitives clear it via
	// unblocked() whenever their wait condition is actually satisfied, which
	// is what lets ExecuteUntilAllBlocked detect a settled round.
	keptBlocked bool
	finished    bool
	panicError  error
}

func (s *coroutineState) yield(status string) {
	s.aboutToBlock <- true
	reason, ok := <-s.unblock
	if !ok {
		runtime.Goexit()
	}
	_ = reason
	s.keptBlocked = true
}

// unblocked records that the coroutine progressed past its wait since the
// last yield, so the current scheduler round must not be treated as settled.
func (s *coroutineState) unblocked() {
	s.keptBlocked = false
}

// dispatcherImpl implements the cooperative coroutine scheduler that drives
// every Go(ctx, ...) call spawned while processing a single decision task.
// Execution alternates in lockstep: ExecuteUntilAllBlocked resumes every
// runnable coroutine exactly once, then waits for them all to either block
// again or finish.
type dispatcherImpl struct {
	sequence   int
	coroutines []*coroutineState
	mutex      sync.Mutex
}

func newDispatcher(ctx Context, root func(ctx Context)) (Context, *dispatcherImpl) {
	d := &dispatcherImpl{}
	ctx = WithValue(ctx, dispatcherContextKey, d)
	d.newCoroutine(ctx, "root", root)
	return ctx, d
}

func (d *dispatcherImpl) newCoroutine(ctx Context, name string, f func(ctx Context)) {
	d.sequence++
	if name == "" {
		name = fmt.Sprintf("%v", d.sequence)
	}
	state := &coroutineState{
		name:         name,
		dispatcher:   d,
		aboutToBlock: make(chan bool, 1),
		unblock:      make(chan string),
	}
	d.coroutines = append(d.coroutines, state)
	spawnedCtx := WithValue(ctx, coroutineContextKey, state)
	go func() {
		defer func() {
			state.finished = true
			if p := recover(); p != nil {
				st := getStackTraceRaw(fmt.Sprintf("coroutine %s [panic]:", name), 7, 0)
				state.panicError = newWorkflowPanicError(p, st)
			}
			state.aboutToBlock <- true
		}()
		<-state.unblock
		f(spawnedCtx)
	}()
}

// ExecuteUntilAllBlocked runs rounds of the cooperative scheduler until no
// coroutine can make further progress: each round resumes every live
// coroutine once, and the loop repeats while any of them progressed past its
// wait or spawned new coroutines. It returns a panic error if any coroutine
// died uncaught.
func (d *dispatcherImpl) ExecuteUntilAllBlocked() (panicErr error) {
	allBlocked := false
	for !allBlocked {
		allBlocked = true
		lastSequence := d.sequence
		// Index-based: a coroutine may spawn more, growing the slice.
		for i := 0; i < len(d.coroutines); i++ {
			c := d.coroutines[i]
			if c.finished {
				continue
			}
			c.unblock <- "resume"
			<-c.aboutToBlock
			if c.panicError != nil {
				return c.panicError
			}
			allBlocked = allBlocked && (c.keptBlocked || c.finished)
		}
		// Freshly spawned coroutines have not run at all yet.
		allBlocked = allBlocked && lastSequence == d.sequence
		if len(d.coroutines) == 0 {
			break
		}
	}
	return nil
}

// StackTrace returns a best-effort dump of every still-running coroutine,
// used to answer the __stack_trace query.
func (d *dispatcherImpl) StackTrace() string {
	var sb strings.Builder
	for _, c := range d.coroutines {
		if c.finished {
			continue
		}
		sb.WriteString(fmt.Sprintf("coroutine %s:\n", c.name))
	}
	return sb.String()
}

func (d *dispatcherImpl) IsDone() bool {
	for _, c := range d.coroutines {
		if !c.finished {
			return false
		}
	}
	return true
}

func (d *dispatcherImpl) Close() {
	for _, c := range d.coroutines {
		if !c.finished {
			close(c.unblock)
		}
	}
}

type contextKeyDispatcher string
type contextKeyCoroutine string

const (
	dispatcherContextKey contextKeyDispatcher = "dispatcher"
	coroutineContextKey  contextKeyCoroutine  = "coroutine"
)

func getState(ctx Context) *coroutineState {
	s, ok := ctx.Value(coroutineContextKey).(*coroutineState)
	if !ok {
		panic("getState: not called from a workflow coroutine context")
	}
	return s
}

func getDispatcher(ctx Context) *dispatcherImpl {
	d, ok := ctx.Value(dispatcherContextKey).(*dispatcherImpl)
	if !ok {
		panic("getDispatcher: not a workflow context")
	}
	return d
}

// Go spawns f as a new coroutine cooperatively scheduled alongside the rest
// of the workflow. name is used only for diagnostics (stack traces, panics).
func Go(ctx Context, name string, f func(ctx Context)) {
	getDispatcher(ctx).newCoroutine(ctx, name, f)
}

// GoNamed is an alias of Go kept for readability at call sites that already
// have a natural coroutine name.
func GoNamed(ctx Context, name string, f func(ctx Context)) {
	Go(ctx, name, f)
}

// Version identifies a GetVersion()-recorded workflow code revision.
type Version int32

// DefaultVersion is returned by GetVersion during replay when the history
// has no version marker for the changeID, meaning the history was produced
// before that change was introduced.
const DefaultVersion Version = -1

// OrbitChangeVersion is the reserved search attribute key GetVersion
// upserts into so deployed workflows can be queried by which code versions
// they have exercised.
const OrbitChangeVersion = "OrbitChangeVersion"

// WorkflowType identifies a workflow type.
type WorkflowType struct {
	Name string
}

// WorkflowExecution identifies a specific run of a workflow.
type WorkflowExecution struct {
	ID    string
	RunID string
}

func (e WorkflowExecution) String() string {
	return "WorkflowID: " + e.ID + ", RunID: " + e.RunID
}

// RetryPolicy describes how failed activities or workflows should be retried
// by the service.
type RetryPolicy struct {
	InitialInterval          time.Duration
	BackoffCoefficient       float64
	MaximumInterval          time.Duration
	ExpirationInterval       time.Duration
	MaximumAttempts          int32
	NonRetriableErrorReasons []string
}

func convertRetryPolicy(p *RetryPolicy) *apiv1.RetryPolicy {
	if p == nil {
		return nil
	}
	return &apiv1.RetryPolicy{
		InitialInterval:          api.DurationToProto(p.InitialInterval),
		BackoffCoefficient:       p.BackoffCoefficient,
		MaximumInterval:          api.DurationToProto(p.MaximumInterval),
		MaximumAttempts:          p.MaximumAttempts,
		NonRetriableErrorReasons: p.NonRetriableErrorReasons,
		ExpirationInterval:       api.DurationToProto(p.ExpirationInterval),
	}
}

// WorkflowIDReusePolicy is the public mirror of apiv1.WorkflowIdReusePolicy.
type WorkflowIDReusePolicy int32

const (
	// WorkflowIDReusePolicyAllowDuplicateFailedOnly allows starting a workflow
	// execution using the same workflow ID, when the last execution's close
	// status is one of [terminated, cancelled, timed out, failed].
	WorkflowIDReusePolicyAllowDuplicateFailedOnly WorkflowIDReusePolicy = iota
	// WorkflowIDReusePolicyAllowDuplicate allows starting a workflow execution
	// using the same workflow ID unconditionally.
	WorkflowIDReusePolicyAllowDuplicate
	// WorkflowIDReusePolicyRejectDuplicate disallows starting a workflow
	// execution using the same workflow ID at all.
	WorkflowIDReusePolicyRejectDuplicate
	// WorkflowIDReusePolicyTerminateIfRunning terminates the current running
	// workflow if one exists before starting a new one with the same ID.
	WorkflowIDReusePolicyTerminateIfRunning
)

func (p WorkflowIDReusePolicy) toProto() apiv1.WorkflowIdReusePolicy {
	switch p {
	case WorkflowIDReusePolicyAllowDuplicate:
		return apiv1.WorkflowIdReusePolicyAllowDuplicate
	case WorkflowIDReusePolicyRejectDuplicate:
		return apiv1.WorkflowIdReusePolicyRejectDuplicate
	case WorkflowIDReusePolicyTerminateIfRunning:
		return apiv1.WorkflowIdReusePolicyTerminateIfRunning
	default:
		return apiv1.WorkflowIdReusePolicyAllowDuplicateFailedOnly
	}
}

// ParentClosePolicy is the public mirror of apiv1.ParentClosePolicy.
type ParentClosePolicy int32

const (
	// ParentClosePolicyTerminate terminates the child workflow when the
	// parent closes.
	ParentClosePolicyTerminate ParentClosePolicy = iota
	// ParentClosePolicyAbandon leaves the child workflow running when the
	// parent closes.
	ParentClosePolicyAbandon
	// ParentClosePolicyRequestCancel requests cancellation of the child
	// workflow when the parent closes.
	ParentClosePolicyRequestCancel
)

func (p ParentClosePolicy) toProto() apiv1.ParentClosePolicy {
	switch p {
	case ParentClosePolicyAbandon:
		return apiv1.ParentClosePolicyAbandon
	case ParentClosePolicyRequestCancel:
		return apiv1.ParentClosePolicyRequestCancel
	default:
		return apiv1.ParentClosePolicyTerminate
	}
}

// WorkflowInfo contains information about the currently executing workflow
// made available through GetWorkflowInfo(ctx).
type WorkflowInfo struct {
	WorkflowExecution                  WorkflowExecution
	WorkflowType                       WorkflowType
	TaskListName                       string
	ExecutionStartToCloseTimeoutSeconds int32
	TaskStartToCloseTimeoutSeconds      int32
	Domain                              string
	Attempt                             int32
	lastCompletionResult                []byte
	CronSchedule                        *string
	ContinuedExecutionRunID             *string
	ParentWorkflowDomain                *string
	ParentWorkflowExecution              *WorkflowExecution
	Memo                                 *apiv1.Memo
	SearchAttributes                     *apiv1.SearchAttributes
	RetryPolicy                          *apiv1.RetryPolicy
}

// SessionInfo contains information about an open worker session, used by the
// session framework to pin a sequence of activities to the same worker host.
type SessionInfo struct {
	SessionID     string
	HostName      string
	creationTime  time.Time
}

// WorkflowInterceptorFactory builds a WorkflowInterceptor for a run,
// letting callers wrap workflow execution with cross-cutting behavior
// (tracing, auth, metrics) without modifying individual workflow functions.
type WorkflowInterceptorFactory interface {
	NewInterceptor(info *WorkflowInfo, next WorkflowInterceptor) WorkflowInterceptor
}

// WorkflowInterceptor allows intercepting calls made by a workflow. Each
// method receives the call after outer interceptors and should forward to
// the next interceptor in the chain; the innermost implementation performs
// the real operation.
type WorkflowInterceptor interface {
	ExecuteWorkflow(ctx Context, workflowType string, args ...interface{}) []interface{}
	ExecuteActivity(ctx Context, activityType string, args ...interface{}) Future
	ExecuteChildWorkflow(ctx Context, childWorkflowType string, args ...interface{}) ChildWorkflowFuture
}

// resultHandler is invoked by the replay engine when an outstanding
// operation (activity, timer, child workflow, signal) completes.
type resultHandler func(result []byte, err error)

// laResultHandler is invoked when a local activity task finishes.
type laResultHandler func(lar *localActivityResult)

type localActivityResult struct {
	task   *localActivityTask
	result []byte
	err    error
	attempt int32
	backoff time.Duration
}

type timerInfo struct {
	timerID string
}

// executeWorkflowParams holds everything needed to start a (child) workflow
// execution: a trimmed, internal-Context-typed mirror of StartWorkflowOptions
// plus the already-validated workflow type and encoded input.
type executeWorkflowParams struct {
	workflowOptions
	workflowType *WorkflowType
	input        []byte
	header       *apiv1.Header
}

type workflowOptions struct {
	workflowID                           string
	domain                               *string
	taskListName                         *string
	executionStartToCloseTimeoutSeconds  *int32
	taskStartToCloseTimeoutSeconds       *int32
	workflowIDReusePolicy                WorkflowIDReusePolicy
	parentClosePolicy                    ParentClosePolicy
	retryPolicy                          *apiv1.RetryPolicy
	memo                                 map[string]interface{}
	searchAttributes                     map[string]interface{}
	cronSchedule                         string
	waitForCancellation                  bool
	dataConverter                        DataConverter
}

// StartWorkflowOptions configures a new workflow execution started through
// Client.StartWorkflow/ExecuteWorkflow.
type StartWorkflowOptions struct {
	ID                              string
	TaskList                        string
	ExecutionStartToCloseTimeout    time.Duration
	DecisionTaskStartToCloseTimeout time.Duration
	WorkflowIDReusePolicy           WorkflowIDReusePolicy
	RetryPolicy                     *RetryPolicy
	CronSchedule                    string
	Memo                            map[string]interface{}
	SearchAttributes                map[string]interface{}
	DelayStart                      time.Duration
}

// QueryTypeStackTrace is the built-in query type that returns the textual
// stack of every still-running coroutine.
const QueryTypeStackTrace = "__stack_trace"

// QueryTypeOpenSessions is the built-in query type that lists the worker's
// currently open sessions.
const QueryTypeOpenSessions = "__open_sessions"

var (
	errActivityParamsBadRequest      = errors.New("missing activity parameters through context, check ActivityOptions")
	errLocalActivityParamsBadRequest = errors.New("missing local activity parameters through context, check LocalActivityOptions")
	errSearchAttributesNotSet        = errors.New("search attributes is empty")
)

// getFunctionName returns the name of a function value without its package
// path (and without a method value's "-fm" suffix), used to derive the default workflow/activity type name at registration.
func getFunctionName(i interface{}) string {
	fullName := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	// Full function name has a fully qualified package name prepended; drop it.
	if idx := strings.LastIndex(fullName, "."); idx >= 0 {
		fullName = fullName[idx+1:]
	}
	return strings.TrimSuffix(fullName, "-fm")
}

// getStackTraceRaw captures the current goroutine's whole stack and tags the
// dump with topLine for readability in panic logs. skip and depth are not
// applied; no frames are stripped.
func getStackTraceRaw(topLine string, skip int, depth int) string {
	stack := string(debug.Stack())
	return topLine + "\n" + stack
}

// traceLog runs fn only when verbose trace logging is switched on at run
// time (enableVerbose). It
// is a no-op hook kept separate from GetLogger so call sites can log very
// chatty detail (every processed history event) without needing to
// special-case replay suppression at each call site.
func traceLog(fn func()) {
	if enableVerbose {
		fn()
	}
}

var enableVerbose = false

// EnableVerboseLogging turns on traceLog output. Intended for debugging a
// single worker process; never enable in production.
func EnableVerboseLogging(enable bool) {
	enableVerbose = enable
}

// workflowEnvironment is the facade the replay engine exposes to workflow
// code: scheduling activities/timers/child workflows, recording
// markers/side effects, and reading replay-aware state such as Now() and
// IsReplaying(). workflowEnvironmentImpl (internal_event_handlers.go) is its
// only production implementation; the test suite substitutes a mock.
type workflowEnvironment interface {
	WorkflowInfo() *WorkflowInfo
	Complete(result []byte, err error)
	RequestCancelChildWorkflow(domainName string, workflowID string)
	RequestCancelExternalWorkflow(domainName, workflowID, runID string, callback resultHandler)
	SignalExternalWorkflow(domainName, workflowID, runID, signalName string, input []byte, arg interface{}, childWorkflowOnly bool, callback resultHandler)
	UpsertSearchAttributes(attributes map[string]interface{}) error
	RegisterCancelHandler(handler func())
	ExecuteChildWorkflow(params executeWorkflowParams, callback resultHandler, startedHandler func(r WorkflowExecution, e error)) error
	RegisterSignalHandler(handler func(name string, input []byte))
	RegisterQueryHandler(handler func(queryType string, queryArgs []byte) ([]byte, error))
	GetLogger() *zap.Logger
	GetMetricsScope() tally.Scope
	GetDataConverter() DataConverter
	GetContextPropagators() []ContextPropagator
	IsReplaying() bool
	GenerateSequenceID() string
	GenerateSequence() int32
	ExecuteActivity(parameters executeActivityParams, callback resultHandler) *activityInfo
	RequestCancelActivity(activityID string)
	ExecuteLocalActivity(params executeLocalActivityParams, callback laResultHandler) *localActivityInfo
	RequestCancelLocalActivity(activityID string)
	SetCurrentReplayTime(replayTime time.Time)
	Now() time.Time
	NewTimer(d time.Duration, callback resultHandler) *timerInfo
	RequestCancelTimer(timerID string)
	GetVersion(changeID string, minSupported, maxSupported Version) Version
	SideEffect(f func() ([]byte, error), callback resultHandler)
	MutableSideEffect(id string, f func() interface{}, equals func(a, b interface{}) bool) Value
	AddSession(sessionInfo *SessionInfo)
	RemoveSession(sessionID string)
	GetRegistry() *registry
	GetWorkflowInterceptors() []WorkflowInterceptorFactory
}

// workflowExecutionEventHandler processes one decision task's worth of
// history events against a workflowDefinition, driving the replay.
type workflowExecutionEventHandler interface {
	workflowEnvironment
	ProcessEvent(event *apiv1.HistoryEvent, isReplay bool, isLast bool) error
	StackTrace() string
	Close()
}

// workflowDefinition is what a registered workflow function compiles down
// to: something that can be Execute()d once against a workflowEnvironment
// and then driven forward one decision task at a time.
type workflowDefinition interface {
	Execute(env workflowEnvironment, header *apiv1.Header, input []byte)
	OnDecisionTaskStarted()
	StackTrace() string
	Close()
}

// encodeArg encodes a single value using dc, defaulting to the package data
// converter when dc is nil.
func encodeArg(dc DataConverter, arg interface{}) ([]byte, error) {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return dc.ToData(arg)
}

// encodeArgs encodes a slice of values as a single payload.
func encodeArgs(dc DataConverter, args []interface{}) ([]byte, error) {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return dc.ToData(args...)
}

// decodeArg decodes a single payload into valuePtr.
func decodeArg(dc DataConverter, data []byte, valuePtr interface{}) error {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return dc.FromData(data, valuePtr)
}

// decodeArgs decodes a payload into a batch of value pointers, used to
// hydrate a workflow/activity function's argument list before invocation.
func decodeArgs(dc DataConverter, fnType reflect.Type, data []byte, startIdx int) ([]reflect.Value, error) {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	numIn := fnType.NumIn()
	if fnType.IsVariadic() {
		numIn--
	}
	args := make([]reflect.Value, 0, numIn-startIdx)
	if len(data) == 0 {
		for i := startIdx; i < numIn; i++ {
			args = append(args, reflect.Zero(fnType.In(i)))
		}
		return args, nil
	}
	ptrs := make([]interface{}, 0, numIn-startIdx)
	for i := startIdx; i < numIn; i++ {
		ptrs = append(ptrs, reflect.New(fnType.In(i)).Interface())
	}
	if err := dc.FromData(data, ptrs...); err != nil {
		return nil, err
	}
	for _, p := range ptrs {
		args = append(args, reflect.ValueOf(p).Elem())
	}
	return args, nil
}

// NewContinueAsNewError creates a ContinueAsNewError instructing the
// workflow to restart its execution with wfn and args once the current
// decision completes. wfn may be either a workflow function or its
// registered name.
func NewContinueAsNewError(ctx Context, wfn interface{}, args ...interface{}) *ContinueAsNewError {
	wc, ok := ctx.Value(workflowEnvironmentContextKey).(workflowEnvironment)
	if !ok {
		panic("NewContinueAsNewError: not a valid workflow context")
	}
	registry := wc.GetRegistry()
	workflowType, input, err := getValidatedWorkflowFunction(wfn, args, wc.GetDataConverter(), registry)
	if err != nil {
		panic(err)
	}
	info := wc.WorkflowInfo()
	params := &executeWorkflowParams{
		workflowOptions: workflowOptions{
			taskListName:                         &info.TaskListName,
			executionStartToCloseTimeoutSeconds: &info.ExecutionStartToCloseTimeoutSeconds,
			taskStartToCloseTimeoutSeconds:       &info.TaskStartToCloseTimeoutSeconds,
			dataConverter:                        wc.GetDataConverter(),
		},
		workflowType: workflowType,
		input:        input,
	}
	return &ContinueAsNewError{params: params, args: args}
}

func getValidatedWorkflowFunction(workflowFunc interface{}, args []interface{}, dataConverter DataConverter, registry *registry) (*WorkflowType, []byte, error) {
	fnName := ""
	fType := reflect.TypeOf(workflowFunc)
	switch getKind(fType) {
	case reflect.String:
		fnName = reflect.ValueOf(workflowFunc).String()
	case reflect.Func:
		if err := validateFunctionArgs(workflowFunc, args, true); err != nil {
			return nil, nil, err
		}
		fnName = getFunctionName(workflowFunc)
		if alias, ok := registry.getWorkflowAlias(fnName); ok {
			fnName = alias
		}
	default:
		return nil, nil, fmt.Errorf("invalid type 'workflowFunc' parameter provided, it can be either worklfow function or its name: %v", workflowFunc)
	}

	input, err := encodeArgs(dataConverter, args)
	if err != nil {
		return nil, nil, err
	}
	return &WorkflowType{Name: fnName}, input, nil
}

type workflowEnvironmentContextKeyType string

const workflowEnvironmentContextKey workflowEnvironmentContextKeyType = "workflowEnv"

// registry owns every workflow/activity registration for a Worker process
// (or the package-level default used by the deprecated global
// RegisterWorkflow/RegisterActivity functions).
type registry struct {
	sync.Mutex
	workflowFuncMap map[string]interface{}
	workflowAliasMap map[string]string
	activityFuncMap map[string]activity
	activityAliasMap map[string]string
}

func newRegistry() *registry {
	return &registry{
		workflowFuncMap:  make(map[string]interface{}),
		workflowAliasMap: make(map[string]string),
		activityFuncMap:  make(map[string]activity),
		activityAliasMap: make(map[string]string),
	}
}

var globalRegistry = newRegistry()

func getGlobalRegistry() *registry {
	return globalRegistry
}

// RegisterWorkflow registers a workflow function under its function name.
func (r *registry) RegisterWorkflow(workflowFunc interface{}) {
	r.RegisterWorkflowWithOptions(workflowFunc, RegisterWorkflowOptions{})
}

func (r *registry) RegisterWorkflowWithOptions(workflowFunc interface{}, opts RegisterWorkflowOptions) {
	r.Lock()
	defer r.Unlock()
	fnName := getFunctionName(workflowFunc)
	registerName := fnName
	if len(opts.Name) > 0 {
		registerName = opts.Name
	}
	if !opts.DisableAlreadyRegisteredCheck {
		if _, ok := r.workflowFuncMap[registerName]; ok {
			panic(fmt.Sprintf("workflow name \"%v\" is already registered", registerName))
		}
	}
	r.workflowFuncMap[registerName] = workflowFunc
	if registerName != fnName {
		r.workflowAliasMap[fnName] = registerName
	}
}

func (r *registry) getWorkflowAlias(fnName string) (string, bool) {
	r.Lock()
	defer r.Unlock()
	name, ok := r.workflowAliasMap[fnName]
	return name, ok
}

func (r *registry) getWorkflowFn(name string) (interface{}, bool) {
	r.Lock()
	defer r.Unlock()
	fn, ok := r.workflowFuncMap[name]
	return fn, ok
}

func (r *registry) getWorkflowDefinition(wt WorkflowType) (workflowDefinition, error) {
	fn, ok := r.getWorkflowFn(wt.Name)
	if !ok {
		supported := strings.Join(r.getRegisteredWorkflowTypes(), ", ")
		return nil, fmt.Errorf("unable to find workflow type: %v. Supported types: [%v]", wt.Name, supported)
	}
	return newSyncWorkflowDefinition(fn), nil
}

func (r *registry) getRegisteredWorkflowTypes() []string {
	r.Lock()
	defer r.Unlock()
	names := make([]string, 0, len(r.workflowFuncMap))
	for n := range r.workflowFuncMap {
		names = append(names, n)
	}
	return names
}

// RegisterActivity registers an activity function, or a struct whose
// exported methods are activities, under their function/method names.
func (r *registry) RegisterActivity(activityFunc interface{}) {
	r.RegisterActivityWithOptions(activityFunc, RegisterActivityOptions{})
}

func (r *registry) RegisterActivityWithOptions(activityFunc interface{}, opts RegisterActivityOptions) {
	r.Lock()
	defer r.Unlock()
	r.registerActivityStructOrFunc(activityFunc, opts)
}

func (r *registry) registerActivityStructOrFunc(activityFunc interface{}, opts RegisterActivityOptions) {
	fType := reflect.TypeOf(activityFunc)
	if fType.Kind() == reflect.Func {
		r.addActivity(activityFunc, opts)
		return
	}
	// Struct/pointer-to-struct: every exported method becomes an activity.
	v := reflect.ValueOf(activityFunc)
	structName := reflect.Indirect(v).Type().Name()
	prefix := structName + "_"
	if len(opts.Name) > 0 {
		prefix = opts.Name
	}
	for i := 0; i < v.NumMethod(); i++ {
		methodValue := v.Method(i)
		methodName := v.Type().Method(i).Name
		methodOpts := opts
		if opts.EnableShortName {
			methodOpts.Name = methodName
		} else {
			methodOpts.Name = prefix + methodName
		}
		r.addActivity(methodValue.Interface(), methodOpts)
	}
}

func (r *registry) addActivity(fn interface{}, opts RegisterActivityOptions) {
	fnName := getFunctionName(fn)
	registerName := fnName
	if len(opts.Name) > 0 {
		registerName = opts.Name
	}
	if !opts.DisableAlreadyRegisteredCheck {
		if _, ok := r.activityFuncMap[registerName]; ok {
			panic(fmt.Sprintf("activity type \"%v\" is already registered", registerName))
		}
	}
	r.activityFuncMap[registerName] = &activityExecutor{name: registerName, fn: fn, opts: opts}
	if registerName != fnName {
		r.activityAliasMap[fnName] = registerName
	}
}

func (r *registry) getActivityAlias(fnName string) (string, bool) {
	r.Lock()
	defer r.Unlock()
	name, ok := r.activityAliasMap[fnName]
	return name, ok
}

func (r *registry) GetActivity(name string) (activity, bool) {
	r.Lock()
	defer r.Unlock()
	a, ok := r.activityFuncMap[name]
	return a, ok
}

func (r *registry) getRegisteredActivities() []activity {
	r.Lock()
	defer r.Unlock()
	result := make([]activity, 0, len(r.activityFuncMap))
	for _, a := range r.activityFuncMap {
		result = append(result, a)
	}
	return result
}

// RegisterWorkflowOptions consists of options for registering a workflow.
type RegisterWorkflowOptions struct {
	Name                          string
	DisableAlreadyRegisteredCheck bool
}

// monotonicClock is a real facebookgo/clock instance; no code in this module
// reads it.
var monotonicClock = clock.New()
