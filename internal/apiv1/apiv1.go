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

// Package apiv1 holds the wire data model shared with the orchestration
// service: workflow executions, history events and the decisions a worker
// sends back. It plays the role that a generated protobuf/thrift package
// plays in the real client libraries this one is modeled on, but is
// hand-written: the core engine depends only on these shapes, never on how
// they are framed for transport, and wire (de)serialization belongs to the
// service RPC stubs explicitly left out of this repository's scope.
//
// Every message that supports more than one kind of payload (HistoryEvent,
// Decision) follows the oneof-wrapper idiom used by generated Go protobuf
// code: the variable field holds an interface implemented by a family of
// single-field wrapper types, and a GetXxx accessor performs the type
// assertion and returns nil instead of panicking when the field is unset or
// holds a different variant.
package apiv1

// Timestamp is a wire-format point in time, analogous to google.protobuf.Timestamp.
// Conversion to and from time.Time goes through the internal/api package so that
// the engine never depends on how the service happens to encode time on the wire.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// Duration is a wire-format span of time, analogous to google.protobuf.Duration.
type Duration struct {
	Seconds int64
	Nanos   int32
}

// WorkflowType identifies user workflow code by name.
type WorkflowType struct {
	Name string
}

// ActivityType identifies user activity code by name.
type ActivityType struct {
	Name string
}

// WorkflowExecution is the (workflow_id, run_id) pair identifying one run of
// one workflow instance.
type WorkflowExecution struct {
	WorkflowId string
	RunId      string
}

// GetWorkflowId returns the workflow ID, or "" if the execution itself is unset.
func (e *WorkflowExecution) GetWorkflowId() string {
	if e == nil {
		return ""
	}
	return e.WorkflowId
}

// GetRunId returns the run ID, or "" if the execution itself is unset.
func (e *WorkflowExecution) GetRunId() string {
	if e == nil {
		return ""
	}
	return e.RunId
}

// TaskList names a queue that decision or activity tasks are dispatched
// through.
type TaskList struct {
	Name string
	Kind TaskListKind
}

// TaskListKind distinguishes normal task lists from sticky (worker-affine)
// ones.
type TaskListKind int32

const (
	TaskListKindNormal TaskListKind = 0
	TaskListKindSticky TaskListKind = 1
)

// TaskListType enumerates whether a task list serves decision or activity
// tasks.
type TaskListType int32

const (
	TaskListTypeDecision TaskListType = 0
	TaskListTypeActivity TaskListType = 1
)

// Payload is an opaque, already-encoded value crossing the boundary to or
// from the service. The engine never interprets the bytes; DataConverter
// does.
type Payload struct {
	Data []byte
}

// GetData returns the payload bytes, or nil if the payload itself is unset.
func (p *Payload) GetData() []byte {
	if p == nil {
		return nil
	}
	return p.Data
}

// Header carries context propagation values set by ContextPropagators.
type Header struct {
	Fields map[string]*Payload
}

// Memo carries non-indexed visibility metadata attached at workflow start.
type Memo struct {
	Fields map[string]*Payload
}

// SearchAttributes carries indexed visibility metadata.
type SearchAttributes struct {
	IndexedFields map[string]*Payload
}

// RetryPolicy configures automatic retry of an activity or workflow.
type RetryPolicy struct {
	InitialInterval    *Duration
	BackoffCoefficient float64
	MaximumInterval    *Duration
	MaximumAttempts    int32
	NonRetriableErrorReasons []string
	ExpirationInterval *Duration
}

func (r *RetryPolicy) GetBackoffCoefficient() float64 {
	if r == nil {
		return 0
	}
	return r.BackoffCoefficient
}

func (r *RetryPolicy) GetMaximumAttempts() int32 {
	if r == nil {
		return 0
	}
	return r.MaximumAttempts
}

// TimeoutType identifies which of an activity's timeouts fired.
type TimeoutType int32

const (
	TimeoutTypeStartToClose TimeoutType = iota
	TimeoutTypeScheduleToStart
	TimeoutTypeScheduleToClose
	TimeoutTypeHeartbeat
)

const (
	TimeoutType_TIMEOUT_TYPE_START_TO_CLOSE    = TimeoutTypeStartToClose
	TimeoutType_TIMEOUT_TYPE_SCHEDULE_TO_START = TimeoutTypeScheduleToStart
	TimeoutType_TIMEOUT_TYPE_SCHEDULE_TO_CLOSE = TimeoutTypeScheduleToClose
	TimeoutType_TIMEOUT_TYPE_HEARTBEAT         = TimeoutTypeHeartbeat
)

func (t TimeoutType) String() string {
	switch t {
	case TimeoutTypeStartToClose:
		return "START_TO_CLOSE"
	case TimeoutTypeScheduleToStart:
		return "SCHEDULE_TO_START"
	case TimeoutTypeScheduleToClose:
		return "SCHEDULE_TO_CLOSE"
	case TimeoutTypeHeartbeat:
		return "HEARTBEAT"
	default:
		return "UNKNOWN"
	}
}

// ChildWorkflowExecutionFailedCause enumerates why a StartChildWorkflowExecution
// decision could not be initiated.
type ChildWorkflowExecutionFailedCause int32

const (
	ChildWorkflowExecutionFailedCause_CHILD_WORKFLOW_EXECUTION_FAILED_CAUSE_WORKFLOW_ALREADY_RUNNING ChildWorkflowExecutionFailedCause = 1
)

// SignalExternalWorkflowExecutionFailedCause enumerates why a
// SignalExternalWorkflowExecution decision failed.
type SignalExternalWorkflowExecutionFailedCause int32

const (
	SignalExternalWorkflowExecutionFailedCause_SIGNAL_EXTERNAL_WORKFLOW_EXECUTION_FAILED_CAUSE_UNKNOWN_EXTERNAL_WORKFLOW_EXECUTION SignalExternalWorkflowExecutionFailedCause = 1
)

// EventFilterType narrows a GetWorkflowExecutionHistory request.
type EventFilterType int32

const (
	EventFilterType_EVENT_FILTER_TYPE_ALL_EVENT   EventFilterType = 0
	EventFilterType_EVENT_FILTER_TYPE_CLOSE_EVENT EventFilterType = 1
)

// QueryConsistencyLevel controls whether a query must wait for outstanding
// decision tasks to be delivered before answering.
type QueryConsistencyLevel int32

const (
	QueryConsistencyLevel_QUERY_CONSISTENCY_LEVEL_EVENTUAL QueryConsistencyLevel = 0
	QueryConsistencyLevel_QUERY_CONSISTENCY_LEVEL_STRONG   QueryConsistencyLevel = 1
)

// QueryRejectCondition tells the service when to refuse a query outright
// instead of delivering it to a worker.
type QueryRejectCondition int32

// QueryRejected carries the workflow's close status when a query was
// rejected instead of answered.
type QueryRejected struct {
	Status int32
}

// WorkflowQuery is a query delivered alongside (or instead of) a decision
// task.
type WorkflowQuery struct {
	QueryType string
	QueryArgs *Payload
}

// History is a flat, ordered list of HistoryEvent records.
type History struct {
	Events []*HistoryEvent
}

// HistoryEvent is a tagged record produced by the service: a monotonically
// increasing EventId, a timestamp, and exactly one attribute variant.
type HistoryEvent struct {
	EventId    int64
	EventTime  *Timestamp
	Version    int64
	TaskId     int64
	Attributes isHistoryEvent_Attributes
}

func (e *HistoryEvent) GetEventId() int64 {
	if e == nil {
		return 0
	}
	return e.EventId
}

func (e *HistoryEvent) GetEventTime() *Timestamp {
	if e == nil {
		return nil
	}
	return e.EventTime
}

// isHistoryEvent_Attributes is implemented by every HistoryEvent_XxxEventAttributes
// wrapper so only one attribute variant can occupy the Attributes field.
type isHistoryEvent_Attributes interface {
	isHistoryEvent_Attributes()
}

func (h *History) GetEvents() []*HistoryEvent {
	if h == nil {
		return nil
	}
	return h.Events
}

func (t *WorkflowType) GetName() string {
	if t != nil {
		return t.Name
	}
	return ""
}

func (t *ActivityType) GetName() string {
	if t != nil {
		return t.Name
	}
	return ""
}
