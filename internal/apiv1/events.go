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

package apiv1

// Failure carries a reason/details pair for a failed activity, workflow or
// child workflow completion.
type Failure struct {
	Reason  string
	Details []byte
}

func (f *Failure) GetReason() string {
	if f == nil {
		return ""
	}
	return f.Reason
}

func (f *Failure) GetDetails() []byte {
	if f == nil {
		return nil
	}
	return f.Details
}

// DataBlob is an opaque, pre-serialized batch of history events as returned
// for long-poll and archival history responses.
type DataBlob struct {
	EncodingType int32
	Data         []byte
}

// Decision is a single instruction a decision task response sends back to
// the service: schedule an activity, start a timer, record a marker, and so
// on. Exactly one of the DecisionXxxAttributes wrapper types occupies
// Attributes, following the same oneof idiom as HistoryEvent.
type Decision struct {
	Attributes isDecision_Attributes
}

type isDecision_Attributes interface {
	isDecision_Attributes()
}

// ScheduleActivityTaskDecisionAttributes schedules an activity task.
type ScheduleActivityTaskDecisionAttributes struct {
	ActivityId             string
	ActivityType           *ActivityType
	TaskList               *TaskList
	Input                  *Payload
	ScheduleToCloseTimeout *Duration
	ScheduleToStartTimeout *Duration
	StartToCloseTimeout    *Duration
	HeartbeatTimeout       *Duration
	RetryPolicy            *RetryPolicy
	Header                 *Header
	Domain                 string
}

func (a *ScheduleActivityTaskDecisionAttributes) GetActivityId() string {
	if a == nil {
		return ""
	}
	return a.ActivityId
}

// RequestCancelActivityTaskDecisionAttributes requests cancellation of a
// previously scheduled activity task.
type RequestCancelActivityTaskDecisionAttributes struct {
	ActivityId string
}

// StartTimerDecisionAttributes starts a timer that fires after
// StartToFireTimeout elapses.
type StartTimerDecisionAttributes struct {
	TimerId            string
	StartToFireTimeout *Duration
}

func (a *StartTimerDecisionAttributes) GetTimerId() string {
	if a == nil {
		return ""
	}
	return a.TimerId
}

// CancelTimerDecisionAttributes cancels a previously started timer.
type CancelTimerDecisionAttributes struct {
	TimerId string
}

// RecordMarkerDecisionAttributes records a marker event, used for
// SideEffect, MutableSideEffect, Version and local activity results.
type RecordMarkerDecisionAttributes struct {
	MarkerName string
	Details    *Payload
	Header     *Header
}

func (a *RecordMarkerDecisionAttributes) GetMarkerName() string {
	if a == nil {
		return ""
	}
	return a.MarkerName
}

// RequestCancelExternalWorkflowExecutionDecisionAttributes requests
// cancellation of another workflow execution (possibly a child).
type RequestCancelExternalWorkflowExecutionDecisionAttributes struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	Control           []byte
	ChildWorkflowOnly bool
}

// SignalExternalWorkflowExecutionDecisionAttributes signals another
// workflow execution (possibly a child).
type SignalExternalWorkflowExecutionDecisionAttributes struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	SignalName        string
	Input             *Payload
	Control           []byte
	ChildWorkflowOnly bool
}

// StartChildWorkflowExecutionDecisionAttributes starts a child workflow
// execution.
type StartChildWorkflowExecutionDecisionAttributes struct {
	Domain                       string
	WorkflowId                   string
	WorkflowType                 *WorkflowType
	TaskList                     *TaskList
	Input                        *Payload
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
	WorkflowIdReusePolicy        WorkflowIdReusePolicy
	RetryPolicy                  *RetryPolicy
	CronSchedule                 string
	Header                       *Header
	Memo                         *Memo
	SearchAttributes             *SearchAttributes
	ParentClosePolicy            ParentClosePolicy
	Control                      []byte
}

func (a *StartChildWorkflowExecutionDecisionAttributes) GetWorkflowId() string {
	if a == nil {
		return ""
	}
	return a.WorkflowId
}

// UpsertWorkflowSearchAttributesDecisionAttributes merges new indexed
// visibility attributes into the running workflow.
type UpsertWorkflowSearchAttributesDecisionAttributes struct {
	SearchAttributes *SearchAttributes
}

// CompleteWorkflowExecutionDecisionAttributes is the terminal decision for a
// workflow coroutine that returned normally.
type CompleteWorkflowExecutionDecisionAttributes struct {
	Result *Payload
}

// FailWorkflowExecutionDecisionAttributes is the terminal decision for a
// workflow coroutine that exited via an uncaught error.
type FailWorkflowExecutionDecisionAttributes struct {
	Failure *Failure
}

// CancelWorkflowExecutionDecisionAttributes is the terminal decision emitted
// when a workflow observes its own cancellation and unwinds cleanly.
type CancelWorkflowExecutionDecisionAttributes struct {
	Details *Payload
}

// ContinueAsNewWorkflowExecutionDecisionAttributes is the terminal decision
// that closes the current run and starts a new one with the same workflow
// ID, carrying the arguments the workflow asked to continue with.
type ContinueAsNewWorkflowExecutionDecisionAttributes struct {
	WorkflowType                 *WorkflowType
	TaskList                     *TaskList
	Input                        *Payload
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
	BackoffStartInterval         *Duration
	RetryPolicy                  *RetryPolicy
	Initiator                    int32
	Failure                      *Failure
	LastCompletionResult         *Payload
	CronSchedule                 string
	Header                       *Header
	Memo                         *Memo
	SearchAttributes             *SearchAttributes
}

// WorkflowIdReusePolicy controls whether a new execution can reuse a
// workflow ID that a previous, closed execution already used.
type WorkflowIdReusePolicy int32

const (
	WorkflowIdReusePolicyAllowDuplicateFailedOnly WorkflowIdReusePolicy = iota
	WorkflowIdReusePolicyAllowDuplicate
	WorkflowIdReusePolicyRejectDuplicate
	WorkflowIdReusePolicyTerminateIfRunning
)

// ParentClosePolicy controls what happens to a child workflow when its
// parent closes.
type ParentClosePolicy int32

const (
	ParentClosePolicyTerminate ParentClosePolicy = iota
	ParentClosePolicyAbandon
	ParentClosePolicyRequestCancel
)

// The following wrapper types let Decision.Attributes hold exactly one kind
// of attribute, the same oneof idiom HistoryEvent uses.

type Decision_ScheduleActivityTaskDecisionAttributes struct {
	ScheduleActivityTaskDecisionAttributes *ScheduleActivityTaskDecisionAttributes
}

func (*Decision_ScheduleActivityTaskDecisionAttributes) isDecision_Attributes() {}

type Decision_RequestCancelActivityTaskDecisionAttributes struct {
	RequestCancelActivityTaskDecisionAttributes *RequestCancelActivityTaskDecisionAttributes
}

func (*Decision_RequestCancelActivityTaskDecisionAttributes) isDecision_Attributes() {}

type Decision_StartTimerDecisionAttributes struct {
	StartTimerDecisionAttributes *StartTimerDecisionAttributes
}

func (*Decision_StartTimerDecisionAttributes) isDecision_Attributes() {}

type Decision_CancelTimerDecisionAttributes struct {
	CancelTimerDecisionAttributes *CancelTimerDecisionAttributes
}

func (*Decision_CancelTimerDecisionAttributes) isDecision_Attributes() {}

type Decision_RecordMarkerDecisionAttributes struct {
	RecordMarkerDecisionAttributes *RecordMarkerDecisionAttributes
}

func (*Decision_RecordMarkerDecisionAttributes) isDecision_Attributes() {}

type Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes struct {
	RequestCancelExternalWorkflowExecutionDecisionAttributes *RequestCancelExternalWorkflowExecutionDecisionAttributes
}

func (*Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_SignalExternalWorkflowExecutionDecisionAttributes struct {
	SignalExternalWorkflowExecutionDecisionAttributes *SignalExternalWorkflowExecutionDecisionAttributes
}

func (*Decision_SignalExternalWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_StartChildWorkflowExecutionDecisionAttributes struct {
	StartChildWorkflowExecutionDecisionAttributes *StartChildWorkflowExecutionDecisionAttributes
}

func (*Decision_StartChildWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_UpsertWorkflowSearchAttributesDecisionAttributes struct {
	UpsertWorkflowSearchAttributesDecisionAttributes *UpsertWorkflowSearchAttributesDecisionAttributes
}

func (*Decision_UpsertWorkflowSearchAttributesDecisionAttributes) isDecision_Attributes() {}

type Decision_CompleteWorkflowExecutionDecisionAttributes struct {
	CompleteWorkflowExecutionDecisionAttributes *CompleteWorkflowExecutionDecisionAttributes
}

func (*Decision_CompleteWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_FailWorkflowExecutionDecisionAttributes struct {
	FailWorkflowExecutionDecisionAttributes *FailWorkflowExecutionDecisionAttributes
}

func (*Decision_FailWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_CancelWorkflowExecutionDecisionAttributes struct {
	CancelWorkflowExecutionDecisionAttributes *CancelWorkflowExecutionDecisionAttributes
}

func (*Decision_CancelWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

type Decision_ContinueAsNewWorkflowExecutionDecisionAttributes struct {
	ContinueAsNewWorkflowExecutionDecisionAttributes *ContinueAsNewWorkflowExecutionDecisionAttributes
}

func (*Decision_ContinueAsNewWorkflowExecutionDecisionAttributes) isDecision_Attributes() {}

// ---------------------------------------------------------------------------
// History event attribute payloads. Each has a HistoryEvent_Xxx wrapper type
// implementing isHistoryEvent_Attributes, and a GetXxxEventAttributes
// accessor on *HistoryEvent that performs the type assertion.

type WorkflowExecutionStartedEventAttributes struct {
	WorkflowType                       *WorkflowType
	TaskList                           *TaskList
	Input                              *Payload
	ExecutionStartToCloseTimeout       *Duration
	TaskStartToCloseTimeout            *Duration
	Identity                           string
	ContinuedExecutionRunId            string
	ParentWorkflowDomain               string
	ParentWorkflowExecution            *WorkflowExecution
	Header                             *Header
	Memo                               *Memo
	SearchAttributes                   *SearchAttributes
	RetryPolicy                        *RetryPolicy
	CronSchedule                       string
	Attempt                            int32
	LastCompletionResult               *Payload
	FirstExecutionRunId               string
}

type WorkflowExecutionCompletedEventAttributes struct {
	Result                       *Payload
	DecisionTaskCompletedEventId int64
}

type WorkflowExecutionFailedEventAttributes struct {
	Failure                      *Failure
	DecisionTaskCompletedEventId int64
}

type WorkflowExecutionTimedOutEventAttributes struct {
	TimeoutType TimeoutType
}

func (a *WorkflowExecutionTimedOutEventAttributes) GetTimeoutType() TimeoutType {
	if a == nil {
		return TimeoutTypeStartToClose
	}
	return a.TimeoutType
}

type WorkflowExecutionCanceledEventAttributes struct {
	Details                      *Payload
	DecisionTaskCompletedEventId int64
}

type WorkflowExecutionTerminatedEventAttributes struct {
	Reason   string
	Details  *Payload
	Identity string
}

type WorkflowExecutionContinuedAsNewEventAttributes struct {
	NewExecutionRunId            string
	WorkflowType                 *WorkflowType
	TaskList                     *TaskList
	Input                        *Payload
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
	DecisionTaskCompletedEventId int64
	BackoffStartInterval         *Duration
	Header                       *Header
	Memo                         *Memo
}

func (a *WorkflowExecutionContinuedAsNewEventAttributes) GetNewExecutionRunId() string {
	if a == nil {
		return ""
	}
	return a.NewExecutionRunId
}

type WorkflowExecutionSignaledEventAttributes struct {
	SignalName string
	Input      *Payload
	Identity   string
}

func (a *WorkflowExecutionSignaledEventAttributes) GetSignalName() string {
	if a == nil {
		return ""
	}
	return a.SignalName
}

type WorkflowExecutionCancelRequestedEventAttributes struct {
	Cause    string
	Identity string
}

type DecisionTaskScheduledEventAttributes struct {
	TaskList            *TaskList
	StartToCloseTimeout *Duration
	Attempt             int64
}

type DecisionTaskStartedEventAttributes struct {
	ScheduledEventId int64
	Identity         string
	RequestId        string
}

type DecisionTaskCompletedEventAttributes struct {
	ExecutionContext []byte
	ScheduledEventId int64
	StartedEventId   int64
	Identity         string
}

type DecisionTaskTimedOutEventAttributes struct {
	ScheduledEventId int64
	StartedEventId   int64
}

type DecisionTaskFailedEventAttributes struct {
	ScheduledEventId int64
	StartedEventId   int64
	Cause            string
	Failure          *Failure
	Identity         string
}

type ActivityTaskScheduledEventAttributes struct {
	ActivityId                   string
	ActivityType                 *ActivityType
	TaskList                     *TaskList
	Input                        *Payload
	ScheduleToCloseTimeout       *Duration
	ScheduleToStartTimeout       *Duration
	StartToCloseTimeout          *Duration
	HeartbeatTimeout             *Duration
	DecisionTaskCompletedEventId int64
	RetryPolicy                  *RetryPolicy
	Header                       *Header
}

func (a *ActivityTaskScheduledEventAttributes) GetActivityId() string {
	if a == nil {
		return ""
	}
	return a.ActivityId
}

type ActivityTaskStartedEventAttributes struct {
	ScheduledEventId int64
	Identity         string
	RequestId        string
	Attempt          int32
	LastFailure      *Failure
}

type ActivityTaskCompletedEventAttributes struct {
	Result           *Payload
	ScheduledEventId int64
	StartedEventId   int64
	Identity         string
}

type ActivityTaskFailedEventAttributes struct {
	Failure          *Failure
	ScheduledEventId int64
	StartedEventId   int64
	Identity         string
}

type ActivityTaskTimedOutEventAttributes struct {
	Details          *Payload
	ScheduledEventId int64
	StartedEventId   int64
	TimeoutType      TimeoutType
	LastFailure      *Failure
}

func (a *ActivityTaskTimedOutEventAttributes) GetTimeoutType() TimeoutType {
	if a == nil {
		return TimeoutTypeStartToClose
	}
	return a.TimeoutType
}

type ActivityTaskCancelRequestedEventAttributes struct {
	ActivityId                   string
	DecisionTaskCompletedEventId int64
}

func (a *ActivityTaskCancelRequestedEventAttributes) GetActivityId() string {
	if a == nil {
		return ""
	}
	return a.ActivityId
}

type ActivityTaskCanceledEventAttributes struct {
	Details                      *Payload
	LatestCancelRequestedEventId int64
	ScheduledEventId             int64
	StartedEventId               int64
	Identity                     string
}

type RequestCancelActivityTaskFailedEventAttributes struct {
	ActivityId                   string
	Cause                        string
	DecisionTaskCompletedEventId int64
}

func (a *RequestCancelActivityTaskFailedEventAttributes) GetActivityId() string {
	if a == nil {
		return ""
	}
	return a.ActivityId
}

type TimerStartedEventAttributes struct {
	TimerId                      string
	StartToFireTimeout           *Duration
	DecisionTaskCompletedEventId int64
}

func (a *TimerStartedEventAttributes) GetTimerId() string {
	if a == nil {
		return ""
	}
	return a.TimerId
}

type TimerFiredEventAttributes struct {
	TimerId        string
	StartedEventId int64
}

func (a *TimerFiredEventAttributes) GetTimerId() string {
	if a == nil {
		return ""
	}
	return a.TimerId
}

type TimerCanceledEventAttributes struct {
	TimerId                      string
	StartedEventId               int64
	DecisionTaskCompletedEventId int64
	Identity                     string
}

func (a *TimerCanceledEventAttributes) GetTimerId() string {
	if a == nil {
		return ""
	}
	return a.TimerId
}

type CancelTimerFailedEventAttributes struct {
	TimerId                      string
	Cause                        string
	DecisionTaskCompletedEventId int64
	Identity                     string
}

func (a *CancelTimerFailedEventAttributes) GetTimerId() string {
	if a == nil {
		return ""
	}
	return a.TimerId
}

type RequestCancelExternalWorkflowExecutionInitiatedEventAttributes struct {
	DecisionTaskCompletedEventId int64
	Domain                       string
	WorkflowExecution            *WorkflowExecution
	Control                      []byte
	ChildWorkflowOnly            bool
}

type RequestCancelExternalWorkflowExecutionFailedEventAttributes struct {
	Cause                        string
	DecisionTaskCompletedEventId int64
	Domain                       string
	WorkflowExecution            *WorkflowExecution
	InitiatedEventId             int64
	Control                      []byte
}

func (a *RequestCancelExternalWorkflowExecutionFailedEventAttributes) GetInitiatedEventId() int64 {
	if a == nil {
		return 0
	}
	return a.InitiatedEventId
}

func (a *RequestCancelExternalWorkflowExecutionFailedEventAttributes) GetCause() string {
	if a == nil {
		return ""
	}
	return a.Cause
}

type ExternalWorkflowExecutionCancelRequestedEventAttributes struct {
	InitiatedEventId int64
	Domain           string
	WorkflowExecution *WorkflowExecution
}

func (a *ExternalWorkflowExecutionCancelRequestedEventAttributes) GetInitiatedEventId() int64 {
	if a == nil {
		return 0
	}
	return a.InitiatedEventId
}

type SignalExternalWorkflowExecutionInitiatedEventAttributes struct {
	DecisionTaskCompletedEventId int64
	Domain                       string
	WorkflowExecution            *WorkflowExecution
	SignalName                   string
	Input                        *Payload
	Control                      []byte
	ChildWorkflowOnly            bool
}

type SignalExternalWorkflowExecutionFailedEventAttributes struct {
	Cause                        SignalExternalWorkflowExecutionFailedCause
	DecisionTaskCompletedEventId int64
	Domain                       string
	WorkflowExecution            *WorkflowExecution
	InitiatedEventId             int64
	Control                      []byte
}

func (a *SignalExternalWorkflowExecutionFailedEventAttributes) GetInitiatedEventId() int64 {
	if a == nil {
		return 0
	}
	return a.InitiatedEventId
}

func (a *SignalExternalWorkflowExecutionFailedEventAttributes) GetCause() SignalExternalWorkflowExecutionFailedCause {
	if a == nil {
		return 0
	}
	return a.Cause
}

type ExternalWorkflowExecutionSignaledEventAttributes struct {
	InitiatedEventId  int64
	Domain            string
	WorkflowExecution *WorkflowExecution
	Control           []byte
}

func (a *ExternalWorkflowExecutionSignaledEventAttributes) GetInitiatedEventId() int64 {
	if a == nil {
		return 0
	}
	return a.InitiatedEventId
}

type MarkerRecordedEventAttributes struct {
	MarkerName                   string
	Details                      *Payload
	DecisionTaskCompletedEventId int64
	Header                       *Header
}

func (a *MarkerRecordedEventAttributes) GetMarkerName() string {
	if a == nil {
		return ""
	}
	return a.MarkerName
}

type StartChildWorkflowExecutionInitiatedEventAttributes struct {
	Domain                       string
	WorkflowId                   string
	WorkflowType                 *WorkflowType
	TaskList                     *TaskList
	Input                        *Payload
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
	DecisionTaskCompletedEventId int64
	WorkflowIdReusePolicy        WorkflowIdReusePolicy
	RetryPolicy                  *RetryPolicy
	CronSchedule                 string
	Header                       *Header
	Memo                         *Memo
	SearchAttributes             *SearchAttributes
	ParentClosePolicy            ParentClosePolicy
}

func (a *StartChildWorkflowExecutionInitiatedEventAttributes) GetWorkflowId() string {
	if a == nil {
		return ""
	}
	return a.WorkflowId
}

type StartChildWorkflowExecutionFailedEventAttributes struct {
	Domain                       string
	WorkflowId                   string
	WorkflowType                 *WorkflowType
	Cause                        ChildWorkflowExecutionFailedCause
	InitiatedEventId             int64
	DecisionTaskCompletedEventId int64
	Control                      []byte
}

func (a *StartChildWorkflowExecutionFailedEventAttributes) GetWorkflowId() string {
	if a == nil {
		return ""
	}
	return a.WorkflowId
}

type ChildWorkflowExecutionStartedEventAttributes struct {
	Domain            string
	InitiatedEventId  int64
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	Header            *Header
}

type ChildWorkflowExecutionCompletedEventAttributes struct {
	Result             *Payload
	Domain             string
	WorkflowExecution  *WorkflowExecution
	WorkflowType       *WorkflowType
	InitiatedEventId   int64
	StartedEventId     int64
}

type ChildWorkflowExecutionFailedEventAttributes struct {
	Failure           *Failure
	Domain            string
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	InitiatedEventId  int64
	StartedEventId    int64
}

type ChildWorkflowExecutionCanceledEventAttributes struct {
	Details           *Payload
	Domain            string
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	InitiatedEventId  int64
	StartedEventId    int64
}

type ChildWorkflowExecutionTimedOutEventAttributes struct {
	TimeoutType       TimeoutType
	Domain            string
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	InitiatedEventId  int64
	StartedEventId    int64
}

func (a *ChildWorkflowExecutionTimedOutEventAttributes) GetTimeoutType() TimeoutType {
	if a == nil {
		return TimeoutTypeStartToClose
	}
	return a.TimeoutType
}

type ChildWorkflowExecutionTerminatedEventAttributes struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	InitiatedEventId  int64
	StartedEventId    int64
}

type UpsertWorkflowSearchAttributesEventAttributes struct {
	DecisionTaskCompletedEventId int64
	SearchAttributes             *SearchAttributes
}

// ---------------------------------------------------------------------------
// HistoryEvent_Xxx wrapper types, implementing isHistoryEvent_Attributes.

type HistoryEvent_WorkflowExecutionStartedEventAttributes struct {
	WorkflowExecutionStartedEventAttributes *WorkflowExecutionStartedEventAttributes
}

func (*HistoryEvent_WorkflowExecutionStartedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionCompletedEventAttributes struct {
	WorkflowExecutionCompletedEventAttributes *WorkflowExecutionCompletedEventAttributes
}

func (*HistoryEvent_WorkflowExecutionCompletedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionFailedEventAttributes struct {
	WorkflowExecutionFailedEventAttributes *WorkflowExecutionFailedEventAttributes
}

func (*HistoryEvent_WorkflowExecutionFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionTimedOutEventAttributes struct {
	WorkflowExecutionTimedOutEventAttributes *WorkflowExecutionTimedOutEventAttributes
}

func (*HistoryEvent_WorkflowExecutionTimedOutEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionCanceledEventAttributes struct {
	WorkflowExecutionCanceledEventAttributes *WorkflowExecutionCanceledEventAttributes
}

func (*HistoryEvent_WorkflowExecutionCanceledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionTerminatedEventAttributes struct {
	WorkflowExecutionTerminatedEventAttributes *WorkflowExecutionTerminatedEventAttributes
}

func (*HistoryEvent_WorkflowExecutionTerminatedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes struct {
	WorkflowExecutionContinuedAsNewEventAttributes *WorkflowExecutionContinuedAsNewEventAttributes
}

func (*HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionSignaledEventAttributes struct {
	WorkflowExecutionSignaledEventAttributes *WorkflowExecutionSignaledEventAttributes
}

func (*HistoryEvent_WorkflowExecutionSignaledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_WorkflowExecutionCancelRequestedEventAttributes struct {
	WorkflowExecutionCancelRequestedEventAttributes *WorkflowExecutionCancelRequestedEventAttributes
}

func (*HistoryEvent_WorkflowExecutionCancelRequestedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_DecisionTaskScheduledEventAttributes struct {
	DecisionTaskScheduledEventAttributes *DecisionTaskScheduledEventAttributes
}

func (*HistoryEvent_DecisionTaskScheduledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_DecisionTaskStartedEventAttributes struct {
	DecisionTaskStartedEventAttributes *DecisionTaskStartedEventAttributes
}

func (*HistoryEvent_DecisionTaskStartedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_DecisionTaskCompletedEventAttributes struct {
	DecisionTaskCompletedEventAttributes *DecisionTaskCompletedEventAttributes
}

func (*HistoryEvent_DecisionTaskCompletedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_DecisionTaskTimedOutEventAttributes struct {
	DecisionTaskTimedOutEventAttributes *DecisionTaskTimedOutEventAttributes
}

func (*HistoryEvent_DecisionTaskTimedOutEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_DecisionTaskFailedEventAttributes struct {
	DecisionTaskFailedEventAttributes *DecisionTaskFailedEventAttributes
}

func (*HistoryEvent_DecisionTaskFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskScheduledEventAttributes struct {
	ActivityTaskScheduledEventAttributes *ActivityTaskScheduledEventAttributes
}

func (*HistoryEvent_ActivityTaskScheduledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskStartedEventAttributes struct {
	ActivityTaskStartedEventAttributes *ActivityTaskStartedEventAttributes
}

func (*HistoryEvent_ActivityTaskStartedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskCompletedEventAttributes struct {
	ActivityTaskCompletedEventAttributes *ActivityTaskCompletedEventAttributes
}

func (*HistoryEvent_ActivityTaskCompletedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskFailedEventAttributes struct {
	ActivityTaskFailedEventAttributes *ActivityTaskFailedEventAttributes
}

func (*HistoryEvent_ActivityTaskFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskTimedOutEventAttributes struct {
	ActivityTaskTimedOutEventAttributes *ActivityTaskTimedOutEventAttributes
}

func (*HistoryEvent_ActivityTaskTimedOutEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskCancelRequestedEventAttributes struct {
	ActivityTaskCancelRequestedEventAttributes *ActivityTaskCancelRequestedEventAttributes
}

func (*HistoryEvent_ActivityTaskCancelRequestedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ActivityTaskCanceledEventAttributes struct {
	ActivityTaskCanceledEventAttributes *ActivityTaskCanceledEventAttributes
}

func (*HistoryEvent_ActivityTaskCanceledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_RequestCancelActivityTaskFailedEventAttributes struct {
	RequestCancelActivityTaskFailedEventAttributes *RequestCancelActivityTaskFailedEventAttributes
}

func (*HistoryEvent_RequestCancelActivityTaskFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_TimerStartedEventAttributes struct {
	TimerStartedEventAttributes *TimerStartedEventAttributes
}

func (*HistoryEvent_TimerStartedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_TimerFiredEventAttributes struct {
	TimerFiredEventAttributes *TimerFiredEventAttributes
}

func (*HistoryEvent_TimerFiredEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_TimerCanceledEventAttributes struct {
	TimerCanceledEventAttributes *TimerCanceledEventAttributes
}

func (*HistoryEvent_TimerCanceledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_CancelTimerFailedEventAttributes struct {
	CancelTimerFailedEventAttributes *CancelTimerFailedEventAttributes
}

func (*HistoryEvent_CancelTimerFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_RequestCancelExternalWorkflowExecutionInitiatedEventAttributes struct {
	RequestCancelExternalWorkflowExecutionInitiatedEventAttributes *RequestCancelExternalWorkflowExecutionInitiatedEventAttributes
}

func (*HistoryEvent_RequestCancelExternalWorkflowExecutionInitiatedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_RequestCancelExternalWorkflowExecutionFailedEventAttributes struct {
	RequestCancelExternalWorkflowExecutionFailedEventAttributes *RequestCancelExternalWorkflowExecutionFailedEventAttributes
}

func (*HistoryEvent_RequestCancelExternalWorkflowExecutionFailedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_ExternalWorkflowExecutionCancelRequestedEventAttributes struct {
	ExternalWorkflowExecutionCancelRequestedEventAttributes *ExternalWorkflowExecutionCancelRequestedEventAttributes
}

func (*HistoryEvent_ExternalWorkflowExecutionCancelRequestedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_SignalExternalWorkflowExecutionInitiatedEventAttributes struct {
	SignalExternalWorkflowExecutionInitiatedEventAttributes *SignalExternalWorkflowExecutionInitiatedEventAttributes
}

func (*HistoryEvent_SignalExternalWorkflowExecutionInitiatedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_SignalExternalWorkflowExecutionFailedEventAttributes struct {
	SignalExternalWorkflowExecutionFailedEventAttributes *SignalExternalWorkflowExecutionFailedEventAttributes
}

func (*HistoryEvent_SignalExternalWorkflowExecutionFailedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_ExternalWorkflowExecutionSignaledEventAttributes struct {
	ExternalWorkflowExecutionSignaledEventAttributes *ExternalWorkflowExecutionSignaledEventAttributes
}

func (*HistoryEvent_ExternalWorkflowExecutionSignaledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_MarkerRecordedEventAttributes struct {
	MarkerRecordedEventAttributes *MarkerRecordedEventAttributes
}

func (*HistoryEvent_MarkerRecordedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_StartChildWorkflowExecutionInitiatedEventAttributes struct {
	StartChildWorkflowExecutionInitiatedEventAttributes *StartChildWorkflowExecutionInitiatedEventAttributes
}

func (*HistoryEvent_StartChildWorkflowExecutionInitiatedEventAttributes) isHistoryEvent_Attributes() {
}

type HistoryEvent_StartChildWorkflowExecutionFailedEventAttributes struct {
	StartChildWorkflowExecutionFailedEventAttributes *StartChildWorkflowExecutionFailedEventAttributes
}

func (*HistoryEvent_StartChildWorkflowExecutionFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionStartedEventAttributes struct {
	ChildWorkflowExecutionStartedEventAttributes *ChildWorkflowExecutionStartedEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionStartedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionCompletedEventAttributes struct {
	ChildWorkflowExecutionCompletedEventAttributes *ChildWorkflowExecutionCompletedEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionCompletedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionFailedEventAttributes struct {
	ChildWorkflowExecutionFailedEventAttributes *ChildWorkflowExecutionFailedEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionFailedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionCanceledEventAttributes struct {
	ChildWorkflowExecutionCanceledEventAttributes *ChildWorkflowExecutionCanceledEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionCanceledEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionTimedOutEventAttributes struct {
	ChildWorkflowExecutionTimedOutEventAttributes *ChildWorkflowExecutionTimedOutEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionTimedOutEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_ChildWorkflowExecutionTerminatedEventAttributes struct {
	ChildWorkflowExecutionTerminatedEventAttributes *ChildWorkflowExecutionTerminatedEventAttributes
}

func (*HistoryEvent_ChildWorkflowExecutionTerminatedEventAttributes) isHistoryEvent_Attributes() {}

type HistoryEvent_UpsertWorkflowSearchAttributesEventAttributes struct {
	UpsertWorkflowSearchAttributesEventAttributes *UpsertWorkflowSearchAttributesEventAttributes
}

func (*HistoryEvent_UpsertWorkflowSearchAttributesEventAttributes) isHistoryEvent_Attributes() {}

// ---------------------------------------------------------------------------
// GetXxxEventAttributes accessors on *HistoryEvent. Each performs the type
// assertion against Attributes and returns nil for any other variant,
// mirroring generated protobuf oneof accessors.

func (e *HistoryEvent) GetWorkflowExecutionStartedEventAttributes() *WorkflowExecutionStartedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionStartedEventAttributes); ok {
		return x.WorkflowExecutionStartedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetAttributes() isHistoryEvent_Attributes {
	if e == nil {
		return nil
	}
	return e.Attributes
}

func (e *HistoryEvent) GetWorkflowExecutionCompletedEventAttributes() *WorkflowExecutionCompletedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionCompletedEventAttributes); ok {
		return x.WorkflowExecutionCompletedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionFailedEventAttributes() *WorkflowExecutionFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionFailedEventAttributes); ok {
		return x.WorkflowExecutionFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionTimedOutEventAttributes() *WorkflowExecutionTimedOutEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionTimedOutEventAttributes); ok {
		return x.WorkflowExecutionTimedOutEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionCanceledEventAttributes() *WorkflowExecutionCanceledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionCanceledEventAttributes); ok {
		return x.WorkflowExecutionCanceledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionTerminatedEventAttributes() *WorkflowExecutionTerminatedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionTerminatedEventAttributes); ok {
		return x.WorkflowExecutionTerminatedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionContinuedAsNewEventAttributes() *WorkflowExecutionContinuedAsNewEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes); ok {
		return x.WorkflowExecutionContinuedAsNewEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionSignaledEventAttributes() *WorkflowExecutionSignaledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionSignaledEventAttributes); ok {
		return x.WorkflowExecutionSignaledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetWorkflowExecutionCancelRequestedEventAttributes() *WorkflowExecutionCancelRequestedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_WorkflowExecutionCancelRequestedEventAttributes); ok {
		return x.WorkflowExecutionCancelRequestedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetDecisionTaskScheduledEventAttributes() *DecisionTaskScheduledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_DecisionTaskScheduledEventAttributes); ok {
		return x.DecisionTaskScheduledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetDecisionTaskStartedEventAttributes() *DecisionTaskStartedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_DecisionTaskStartedEventAttributes); ok {
		return x.DecisionTaskStartedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetDecisionTaskCompletedEventAttributes() *DecisionTaskCompletedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_DecisionTaskCompletedEventAttributes); ok {
		return x.DecisionTaskCompletedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetDecisionTaskTimedOutEventAttributes() *DecisionTaskTimedOutEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_DecisionTaskTimedOutEventAttributes); ok {
		return x.DecisionTaskTimedOutEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetDecisionTaskFailedEventAttributes() *DecisionTaskFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_DecisionTaskFailedEventAttributes); ok {
		return x.DecisionTaskFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskScheduledEventAttributes() *ActivityTaskScheduledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskScheduledEventAttributes); ok {
		return x.ActivityTaskScheduledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskStartedEventAttributes() *ActivityTaskStartedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskStartedEventAttributes); ok {
		return x.ActivityTaskStartedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskCompletedEventAttributes() *ActivityTaskCompletedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskCompletedEventAttributes); ok {
		return x.ActivityTaskCompletedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskFailedEventAttributes() *ActivityTaskFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskFailedEventAttributes); ok {
		return x.ActivityTaskFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskTimedOutEventAttributes() *ActivityTaskTimedOutEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskTimedOutEventAttributes); ok {
		return x.ActivityTaskTimedOutEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskCancelRequestedEventAttributes() *ActivityTaskCancelRequestedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskCancelRequestedEventAttributes); ok {
		return x.ActivityTaskCancelRequestedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetActivityTaskCanceledEventAttributes() *ActivityTaskCanceledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ActivityTaskCanceledEventAttributes); ok {
		return x.ActivityTaskCanceledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetRequestCancelActivityTaskFailedEventAttributes() *RequestCancelActivityTaskFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_RequestCancelActivityTaskFailedEventAttributes); ok {
		return x.RequestCancelActivityTaskFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetTimerStartedEventAttributes() *TimerStartedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_TimerStartedEventAttributes); ok {
		return x.TimerStartedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetTimerFiredEventAttributes() *TimerFiredEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_TimerFiredEventAttributes); ok {
		return x.TimerFiredEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetTimerCanceledEventAttributes() *TimerCanceledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_TimerCanceledEventAttributes); ok {
		return x.TimerCanceledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetCancelTimerFailedEventAttributes() *CancelTimerFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_CancelTimerFailedEventAttributes); ok {
		return x.CancelTimerFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetRequestCancelExternalWorkflowExecutionInitiatedEventAttributes() *RequestCancelExternalWorkflowExecutionInitiatedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_RequestCancelExternalWorkflowExecutionInitiatedEventAttributes); ok {
		return x.RequestCancelExternalWorkflowExecutionInitiatedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetRequestCancelExternalWorkflowExecutionFailedEventAttributes() *RequestCancelExternalWorkflowExecutionFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_RequestCancelExternalWorkflowExecutionFailedEventAttributes); ok {
		return x.RequestCancelExternalWorkflowExecutionFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetExternalWorkflowExecutionCancelRequestedEventAttributes() *ExternalWorkflowExecutionCancelRequestedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ExternalWorkflowExecutionCancelRequestedEventAttributes); ok {
		return x.ExternalWorkflowExecutionCancelRequestedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetSignalExternalWorkflowExecutionInitiatedEventAttributes() *SignalExternalWorkflowExecutionInitiatedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_SignalExternalWorkflowExecutionInitiatedEventAttributes); ok {
		return x.SignalExternalWorkflowExecutionInitiatedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetSignalExternalWorkflowExecutionFailedEventAttributes() *SignalExternalWorkflowExecutionFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_SignalExternalWorkflowExecutionFailedEventAttributes); ok {
		return x.SignalExternalWorkflowExecutionFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetExternalWorkflowExecutionSignaledEventAttributes() *ExternalWorkflowExecutionSignaledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ExternalWorkflowExecutionSignaledEventAttributes); ok {
		return x.ExternalWorkflowExecutionSignaledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetMarkerRecordedEventAttributes() *MarkerRecordedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_MarkerRecordedEventAttributes); ok {
		return x.MarkerRecordedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetStartChildWorkflowExecutionInitiatedEventAttributes() *StartChildWorkflowExecutionInitiatedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_StartChildWorkflowExecutionInitiatedEventAttributes); ok {
		return x.StartChildWorkflowExecutionInitiatedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetStartChildWorkflowExecutionFailedEventAttributes() *StartChildWorkflowExecutionFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_StartChildWorkflowExecutionFailedEventAttributes); ok {
		return x.StartChildWorkflowExecutionFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionStartedEventAttributes() *ChildWorkflowExecutionStartedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionStartedEventAttributes); ok {
		return x.ChildWorkflowExecutionStartedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionCompletedEventAttributes() *ChildWorkflowExecutionCompletedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionCompletedEventAttributes); ok {
		return x.ChildWorkflowExecutionCompletedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionFailedEventAttributes() *ChildWorkflowExecutionFailedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionFailedEventAttributes); ok {
		return x.ChildWorkflowExecutionFailedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionCanceledEventAttributes() *ChildWorkflowExecutionCanceledEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionCanceledEventAttributes); ok {
		return x.ChildWorkflowExecutionCanceledEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionTimedOutEventAttributes() *ChildWorkflowExecutionTimedOutEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionTimedOutEventAttributes); ok {
		return x.ChildWorkflowExecutionTimedOutEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetChildWorkflowExecutionTerminatedEventAttributes() *ChildWorkflowExecutionTerminatedEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_ChildWorkflowExecutionTerminatedEventAttributes); ok {
		return x.ChildWorkflowExecutionTerminatedEventAttributes
	}
	return nil
}

func (e *HistoryEvent) GetUpsertWorkflowSearchAttributesEventAttributes() *UpsertWorkflowSearchAttributesEventAttributes {
	if x, ok := e.GetAttributes().(*HistoryEvent_UpsertWorkflowSearchAttributesEventAttributes); ok {
		return x.UpsertWorkflowSearchAttributesEventAttributes
	}
	return nil
}

func (d *Decision) GetAttributes() isDecision_Attributes {
	if d != nil {
		return d.Attributes
	}
	return nil
}

func (d *Decision) GetScheduleActivityTaskDecisionAttributes() *ScheduleActivityTaskDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_ScheduleActivityTaskDecisionAttributes); ok {
		return x.ScheduleActivityTaskDecisionAttributes
	}
	return nil
}

func (d *Decision) GetRequestCancelActivityTaskDecisionAttributes() *RequestCancelActivityTaskDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_RequestCancelActivityTaskDecisionAttributes); ok {
		return x.RequestCancelActivityTaskDecisionAttributes
	}
	return nil
}

func (d *Decision) GetStartTimerDecisionAttributes() *StartTimerDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_StartTimerDecisionAttributes); ok {
		return x.StartTimerDecisionAttributes
	}
	return nil
}

func (d *Decision) GetCancelTimerDecisionAttributes() *CancelTimerDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_CancelTimerDecisionAttributes); ok {
		return x.CancelTimerDecisionAttributes
	}
	return nil
}

func (d *Decision) GetRecordMarkerDecisionAttributes() *RecordMarkerDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_RecordMarkerDecisionAttributes); ok {
		return x.RecordMarkerDecisionAttributes
	}
	return nil
}

func (d *Decision) GetRequestCancelExternalWorkflowExecutionDecisionAttributes() *RequestCancelExternalWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes); ok {
		return x.RequestCancelExternalWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetSignalExternalWorkflowExecutionDecisionAttributes() *SignalExternalWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_SignalExternalWorkflowExecutionDecisionAttributes); ok {
		return x.SignalExternalWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetStartChildWorkflowExecutionDecisionAttributes() *StartChildWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_StartChildWorkflowExecutionDecisionAttributes); ok {
		return x.StartChildWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetUpsertWorkflowSearchAttributesDecisionAttributes() *UpsertWorkflowSearchAttributesDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_UpsertWorkflowSearchAttributesDecisionAttributes); ok {
		return x.UpsertWorkflowSearchAttributesDecisionAttributes
	}
	return nil
}

func (d *Decision) GetCompleteWorkflowExecutionDecisionAttributes() *CompleteWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_CompleteWorkflowExecutionDecisionAttributes); ok {
		return x.CompleteWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetFailWorkflowExecutionDecisionAttributes() *FailWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_FailWorkflowExecutionDecisionAttributes); ok {
		return x.FailWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetCancelWorkflowExecutionDecisionAttributes() *CancelWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_CancelWorkflowExecutionDecisionAttributes); ok {
		return x.CancelWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (d *Decision) GetContinueAsNewWorkflowExecutionDecisionAttributes() *ContinueAsNewWorkflowExecutionDecisionAttributes {
	if x, ok := d.GetAttributes().(*Decision_ContinueAsNewWorkflowExecutionDecisionAttributes); ok {
		return x.ContinueAsNewWorkflowExecutionDecisionAttributes
	}
	return nil
}

func (a *ActivityTaskCompletedEventAttributes) GetScheduledEventId() int64 {
	if a != nil {
		return a.ScheduledEventId
	}
	return 0
}

func (a *ActivityTaskFailedEventAttributes) GetScheduledEventId() int64 {
	if a != nil {
		return a.ScheduledEventId
	}
	return 0
}

func (a *ActivityTaskTimedOutEventAttributes) GetScheduledEventId() int64 {
	if a != nil {
		return a.ScheduledEventId
	}
	return 0
}

func (a *ActivityTaskCanceledEventAttributes) GetScheduledEventId() int64 {
	if a != nil {
		return a.ScheduledEventId
	}
	return 0
}
