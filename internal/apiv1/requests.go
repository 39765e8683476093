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

// QueryRejectCondition values.
const (
	QueryRejectCondition_QUERY_REJECT_CONDITION_NONE                QueryRejectCondition = 0
	QueryRejectCondition_QUERY_REJECT_CONDITION_NOT_OPEN            QueryRejectCondition = 1
	QueryRejectCondition_QUERY_REJECT_CONDITION_NOT_COMPLETED_CLEANLY QueryRejectCondition = 2
)

// GetQueryType on WorkflowQuery is not needed since the field is accessed
// directly; kept minimal on purpose.

// ---------------------------------------------------------------------------
// StartWorkflowExecution

type StartWorkflowExecutionRequest struct {
	Domain                       string
	RequestId                    string
	WorkflowId                   string
	WorkflowType                 *WorkflowType
	TaskList                     *TaskList
	Input                        *Payload
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
	Identity                     string
	WorkflowIdReusePolicy        WorkflowIdReusePolicy
	RetryPolicy                  *RetryPolicy
	CronSchedule                 string
	Memo                         *Memo
	SearchAttributes             *SearchAttributes
	Header                       *Header
	DelayStart                   *Duration
}

type StartWorkflowExecutionResponse struct {
	RunId string
}

func (r *StartWorkflowExecutionResponse) GetRunId() string {
	if r == nil {
		return ""
	}
	return r.RunId
}

// ---------------------------------------------------------------------------
// SignalWithStartWorkflowExecution

type SignalWithStartWorkflowExecutionRequest struct {
	StartRequest *StartWorkflowExecutionRequest
	SignalName   string
	SignalInput  *Payload
}

type SignalWithStartWorkflowExecutionResponse struct {
	RunId string
}

func (r *SignalWithStartWorkflowExecutionResponse) GetRunId() string {
	if r == nil {
		return ""
	}
	return r.RunId
}

// ---------------------------------------------------------------------------
// SignalWorkflowExecution

type SignalWorkflowExecutionRequest struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	SignalName        string
	Input             *Payload
	Identity          string
}

type SignalWorkflowExecutionResponse struct{}

// ---------------------------------------------------------------------------
// RequestCancelWorkflowExecution

type RequestCancelWorkflowExecutionRequest struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	Identity          string
}

type RequestCancelWorkflowExecutionResponse struct{}

// ---------------------------------------------------------------------------
// TerminateWorkflowExecution

type TerminateWorkflowExecutionRequest struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
	Reason            string
	Details           *Payload
	Identity          string
}

type TerminateWorkflowExecutionResponse struct{}

// ---------------------------------------------------------------------------
// GetWorkflowExecutionHistory

type GetWorkflowExecutionHistoryRequest struct {
	Domain                 string
	WorkflowExecution      *WorkflowExecution
	WaitForNewEvent        bool
	HistoryEventFilterType EventFilterType
	NextPageToken          []byte
	SkipArchival           bool
}

type GetWorkflowExecutionHistoryResponse struct {
	History       *History
	RawHistory    []*DataBlob
	NextPageToken []byte
	Archived      bool
}

// ---------------------------------------------------------------------------
// Listing / visibility RPCs

type StatusFilter struct {
	Status int32
}

type ListClosedWorkflowExecutionsRequest struct {
	Domain          string
	MaximumPageSize int32
	NextPageToken   []byte
	StartTimeFilter *StartTimeFilter
	WorkflowId      string
	WorkflowType    *WorkflowType
	StatusFilter    *StatusFilter
}

type ListClosedWorkflowExecutionsResponse struct {
	Executions    []*WorkflowExecutionInfo
	NextPageToken []byte
}

type ListOpenWorkflowExecutionsRequest struct {
	Domain          string
	MaximumPageSize int32
	NextPageToken   []byte
	StartTimeFilter *StartTimeFilter
	WorkflowId      string
	WorkflowType    *WorkflowType
}

type ListOpenWorkflowExecutionsResponse struct {
	Executions    []*WorkflowExecutionInfo
	NextPageToken []byte
}

type StartTimeFilter struct {
	EarliestTime *Timestamp
	LatestTime   *Timestamp
}

type WorkflowExecutionInfo struct {
	WorkflowExecution *WorkflowExecution
	WorkflowType      *WorkflowType
	StartTime         *Timestamp
	CloseTime         *Timestamp
	CloseStatus       int32
	Memo              *Memo
	SearchAttributes  *SearchAttributes
}

type ListWorkflowExecutionsRequest struct {
	Domain        string
	PageSize      int32
	NextPageToken []byte
	Query         string
}

type ListWorkflowExecutionsResponse struct {
	Executions    []*WorkflowExecutionInfo
	NextPageToken []byte
}

type ListArchivedWorkflowExecutionsRequest struct {
	Domain        string
	PageSize      int32
	NextPageToken []byte
	Query         string
}

type ListArchivedWorkflowExecutionsResponse struct {
	Executions    []*WorkflowExecutionInfo
	NextPageToken []byte
}

type ScanWorkflowExecutionsRequest struct {
	Domain        string
	PageSize      int32
	NextPageToken []byte
	Query         string
}

type ScanWorkflowExecutionsResponse struct {
	Executions    []*WorkflowExecutionInfo
	NextPageToken []byte
}

type CountWorkflowExecutionsRequest struct {
	Domain string
	Query  string
}

type CountWorkflowExecutionsResponse struct {
	Count int64
}

// ---------------------------------------------------------------------------
// ResetWorkflowExecution

type ResetWorkflowExecutionRequest struct {
	Domain                string
	WorkflowExecution     *WorkflowExecution
	Reason                string
	DecisionFinishEventId int64
	RequestId             string
}

type ResetWorkflowExecutionResponse struct {
	RunId string
}

// ---------------------------------------------------------------------------
// Search attributes / describe

type GetSearchAttributesRequest struct{}

type GetSearchAttributesResponse struct {
	Keys map[string]int32
}

type DescribeWorkflowExecutionRequest struct {
	Domain            string
	WorkflowExecution *WorkflowExecution
}

type PendingActivityInfo struct {
	ActivityId string
	State      int32
}

type DescribeWorkflowExecutionResponse struct {
	ExecutionConfiguration *WorkflowExecutionConfiguration
	WorkflowExecutionInfo  *WorkflowExecutionInfo
	PendingActivities      []*PendingActivityInfo
}

type WorkflowExecutionConfiguration struct {
	TaskList                     *TaskList
	ExecutionStartToCloseTimeout *Duration
	TaskStartToCloseTimeout      *Duration
}

type DescribeTaskListRequest struct {
	Domain       string
	TaskList     *TaskList
	TaskListType TaskListType
}

type PollerInfo struct {
	Identity string
}

type DescribeTaskListResponse struct {
	Pollers []*PollerInfo
}

// ---------------------------------------------------------------------------
// Query

type QueryWorkflowRequest struct {
	Domain                string
	WorkflowExecution     *WorkflowExecution
	Query                 *WorkflowQuery
	QueryRejectCondition  QueryRejectCondition
	QueryConsistencyLevel QueryConsistencyLevel
}

type QueryWorkflowResponse struct {
	QueryResult   *Payload
	QueryRejected *QueryRejected
}

// ---------------------------------------------------------------------------
// Domain management

type RegisterDomainRequest struct {
	Name                                   string
	Description                            string
	OwnerEmail                             string
	WorkflowExecutionRetentionPeriodInDays int32
	EmitMetric                             bool
	ActiveClusterName                      string
	Clusters                               []string
	IsGlobalDomain                         bool
	SecurityToken                          string
	Data                                   map[string]string
}

type RegisterDomainResponse struct{}

type isDescribeDomainRequest_DescribeBy interface {
	isDescribeDomainRequest_DescribeBy()
}

type DescribeDomainRequest struct {
	DescribeBy isDescribeDomainRequest_DescribeBy
}

type DescribeDomainRequest_Name struct {
	Name string
}

func (*DescribeDomainRequest_Name) isDescribeDomainRequest_DescribeBy() {}

type DescribeDomainRequest_Id struct {
	Id string
}

func (*DescribeDomainRequest_Id) isDescribeDomainRequest_DescribeBy() {}

type DomainInfo struct {
	Name        string
	Description string
	OwnerEmail  string
	Data        map[string]string
	Uuid        string
}

type DomainConfiguration struct {
	WorkflowExecutionRetentionPeriodInDays int32
	EmitMetric                             bool
}

type DescribeDomainResponse struct {
	DomainInfo          *DomainInfo
	Configuration       *DomainConfiguration
	ActiveClusterName   string
	Clusters            []string
	FailoverVersion     int64
}

type UpdateDomainRequest struct {
	Name                                    string
	Description                             *string
	OwnerEmail                              *string
	Data                                    map[string]string
	WorkflowExecutionRetentionPeriodInDays  *int32
	EmitMetric                              *bool
	ActiveClusterName                       *string
}

type UpdateDomainResponse struct {
	DomainInfo        *DomainInfo
	Configuration     *DomainConfiguration
	ActiveClusterName string
	Clusters          []string
}

// ---------------------------------------------------------------------------
// Activity task polling and completion

type PollForActivityTaskRequest struct {
	Domain           string
	TaskList         *TaskList
	Identity         string
	TaskListMetadata *TaskListMetadata
}

type TaskListMetadata struct {
	MaxTasksPerSecond float64
}

type PollForActivityTaskResponse struct {
	TaskToken               []byte
	WorkflowExecution       *WorkflowExecution
	ActivityId              string
	ActivityType            *ActivityType
	Input                   *Payload
	ScheduledTimeOfThisAttempt *Timestamp
	ScheduledTime            *Timestamp
	StartedTime              *Timestamp
	ScheduleToCloseTimeout   *Duration
	StartToCloseTimeout      *Duration
	HeartbeatTimeout         *Duration
	Attempt                  int32
	HeartbeatDetails         *Payload
	WorkflowType             *WorkflowType
	WorkflowDomain           string
	Header                   *Header
}

func (r *PollForActivityTaskResponse) GetAttempt() int32 {
	if r == nil {
		return 0
	}
	return r.Attempt
}

type RecordActivityTaskHeartbeatRequest struct {
	TaskToken []byte
	Details   *Payload
	Identity  string
}

type RecordActivityTaskHeartbeatResponse struct {
	CancelRequested bool
}

type RecordActivityTaskHeartbeatByIdRequest struct {
	Domain     string
	WorkflowId string
	RunId      string
	ActivityId string
	Details    *Payload
	Identity   string
}

type RecordActivityTaskHeartbeatByIdResponse struct {
	CancelRequested bool
}

type RespondActivityTaskCompletedRequest struct {
	TaskToken []byte
	Result    *Payload
	Identity  string
}

type RespondActivityTaskCompletedResponse struct{}

type RespondActivityTaskCompletedByIdRequest struct {
	Domain     string
	WorkflowId string
	RunId      string
	ActivityId string
	Result     *Payload
	Identity   string
}

type RespondActivityTaskCompletedByIdResponse struct{}

type RespondActivityTaskFailedRequest struct {
	TaskToken []byte
	Failure   *Failure
	Identity  string
}

type RespondActivityTaskFailedResponse struct{}

type RespondActivityTaskFailedByIdRequest struct {
	Domain     string
	WorkflowId string
	RunId      string
	ActivityId string
	Failure    *Failure
	Identity   string
}

type RespondActivityTaskFailedByIdResponse struct{}

type RespondActivityTaskCanceledRequest struct {
	TaskToken []byte
	Details   *Payload
	Identity  string
}

type RespondActivityTaskCanceledResponse struct{}

type RespondActivityTaskCanceledByIdRequest struct {
	Domain     string
	WorkflowId string
	RunId      string
	ActivityId string
	Details    *Payload
	Identity   string
}

type RespondActivityTaskCanceledByIdResponse struct{}

// ---------------------------------------------------------------------------
// Decision task polling and completion

type PollForDecisionTaskRequest struct {
	Domain         string
	TaskList       *TaskList
	Identity       string
	BinaryChecksum string
}

type PollForDecisionTaskResponse struct {
	TaskToken              []byte
	WorkflowExecution       *WorkflowExecution
	WorkflowType            *WorkflowType
	PreviousStartedEventId  *int64
	StartedEventId          int64
	Attempt                 int64
	BacklogCountHint        int64
	History                 *History
	NextPageToken           []byte
	Query                   *WorkflowQuery
	StickyExecutionEnabled  bool
}

type RespondDecisionTaskCompletedRequest struct {
	TaskToken                  []byte
	Decisions                  []*Decision
	ExecutionContext           []byte
	Identity                   string
	StickyAttributes           *StickyExecutionAttributes
	ReturnNewDecisionTask      bool
	ForceCreateNewDecisionTask bool
	BinaryChecksum             string
	QueryResults               map[string]*WorkflowQueryResult
}

type WorkflowQueryResult struct {
	ResultType   int32
	Answer       *Payload
	ErrorMessage string
}

type StickyExecutionAttributes struct {
	WorkerTaskList                *TaskList
	ScheduleToStartTimeout        *Duration
}

type RespondDecisionTaskCompletedResponse struct {
	DecisionTask *PollForDecisionTaskResponse
}

type RespondDecisionTaskFailedRequest struct {
	TaskToken []byte
	Cause     string
	Details   *Payload
	Identity  string
}

type RespondDecisionTaskFailedResponse struct{}

type RespondQueryTaskCompletedRequest struct {
	TaskToken     []byte
	CompletedType int32
	QueryResult   *Payload
	ErrorMessage  string
}

type RespondQueryTaskCompletedResponse struct{}

func (r *PollForDecisionTaskResponse) GetPreviousStartedEventId() int64 {
	if r == nil || r.PreviousStartedEventId == nil {
		return 0
	}
	return *r.PreviousStartedEventId
}

func (r *PollForDecisionTaskResponse) GetStartedEventId() int64 {
	if r == nil {
		return 0
	}
	return r.StartedEventId
}

func (r *PollForDecisionTaskResponse) GetNextPageToken() []byte {
	if r == nil {
		return nil
	}
	return r.NextPageToken
}

func (r *ListClosedWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *ListOpenWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *ListWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *ListArchivedWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *ScanWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *CountWorkflowExecutionsRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *ResetWorkflowExecutionRequest) GetDomain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}
