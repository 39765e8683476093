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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pborman/uuid"
	"github.com/uber-go/tally"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/api"
	"github.com/orbitflow/orbit-go/internal/common/backoff"
	"github.com/orbitflow/orbit-go/internal/common/metrics"
	"github.com/orbitflow/orbit-go/internal/common/serializer"
	"github.com/orbitflow/orbit-go/internal/common/util"
)

var _ Client = (*workflowClient)(nil)
var _ DomainClient = (*domainClient)(nil)

const (
	defaultDecisionTaskTimeout = 10 * time.Second
	// Long-poll GetWorkflowExecutionHistory calls hold the connection while
	// waiting for the close event.
	defaultGetHistoryTimeoutInSecs = 25
)

// Archived visibility queries can scan cold storage; they get a generous
// ceiling independent of the usual per-RPC timeout.
var maxListArchivedWorkflowTimeout = time.Minute * 3

type (
	// workflowClient is the production Client: every method is one service
	// RPC (or a small composition of them) behind invokeService's retry and
	// error-conversion wrapper.
	workflowClient struct {
		workflowService    api.Interface
		domain             string
		registry           *registry
		metricsScope       *metrics.TaggedScope
		identity           string
		dataConverter      DataConverter
		contextPropagators []ContextPropagator
		tracer             opentracing.Tracer
	}

	// domainClient implements DomainClient for domain CRUD.
	domainClient struct {
		workflowService api.Interface
		metricsScope    tally.Scope
		identity        string
	}

	// WorkflowRun is a handle to a started (non-child) workflow execution.
	WorkflowRun interface {
		// GetID returns the workflow ID, equal to StartWorkflowOptions.ID
		// when one was provided.
		GetID() string

		// GetRunID returns the run ID of the first run this handle observed.
		// If the workflow continues-as-new, this stays the first run's ID
		// while Get follows the chain to the final result.
		GetRunID() string

		// Get blocks until the workflow reaches a close event and decodes
		// the result into valuePtr, or returns the workflow's error. Never
		// call this from inside a workflow; use ExecuteChildWorkflow there.
		Get(ctx context.Context, valuePtr interface{}) error
	}

	workflowRunImpl struct {
		workflowFn    interface{}
		workflowID    string
		firstRunID    string
		currentRunID  string
		iterFn        func(ctx context.Context, runID string) HistoryEventIterator
		dataConverter DataConverter
		registry      *registry
	}

	// HistoryEventIterator pages through a workflow execution's history.
	HistoryEventIterator interface {
		// HasNext returns whether Next would yield an event or an error.
		HasNext() bool
		// Next returns the next history event. Possible errors:
		//	- EntityNotExistsError
		//	- BadRequestError
		//	- InternalServiceError
		Next() (*apiv1.HistoryEvent, error)
	}

	historyEventIteratorImpl struct {
		initialized bool
		// consumed prefix of the current page
		nextEventIndex int
		events         []*apiv1.HistoryEvent
		nexttoken      []byte
		// a page-fetch error is surfaced through exactly one Next call
		err      error
		paginate func(nexttoken []byte) (*apiv1.GetWorkflowExecutionHistoryResponse, error)
	}
)

// invokeService runs one RPC against the service under the standard per-call
// context, dynamic retry policy and service error conversion. ctxOptions
// tune the derived call context (timeout overrides and the like).
func invokeService(ctx context.Context, call func(rpcCtx context.Context, opts ...api.CallOption) error, ctxOptions ...func(*contextBuilder)) error {
	return backoff.Retry(ctx,
		func() error {
			rpcCtx, cancel, opts := newChannelContext(ctx, ctxOptions...)
			defer cancel()
			return api.ConvertError(call(rpcCtx, opts...))
		}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
}

// normalizeStartOptions validates and defaults the options shared by
// StartWorkflow and SignalWithStartWorkflow, mutating options in place.
func normalizeStartOptions(options *StartWorkflowOptions) error {
	if options.TaskList == "" {
		return errors.New("missing TaskList")
	}
	if options.ExecutionStartToCloseTimeout <= 0 {
		return errors.New("missing or invalid ExecutionStartToCloseTimeout")
	}
	if options.DecisionTaskStartToCloseTimeout < 0 {
		return errors.New("negative DecisionTaskStartToCloseTimeout provided")
	}
	if options.DecisionTaskStartToCloseTimeout == 0 {
		options.DecisionTaskStartToCloseTimeout = defaultDecisionTaskTimeout
	}
	if options.DelayStart < 0 {
		return errors.New("invalid DelayStart option")
	}
	return nil
}

// buildStartRequest assembles the StartWorkflowExecutionRequest both start
// paths share, after options have been normalized. It also opens (and
// immediately finishes) the start span: jaeger cannot rebuild a live span
// from its context during replay, so only the span context travels, inside
// the header the propagators write.
func (wc *workflowClient) buildStartRequest(
	ctx context.Context,
	spanName string,
	workflowID string,
	options StartWorkflowOptions,
	workflowType *WorkflowType,
	input []byte,
) (*apiv1.StartWorkflowExecutionRequest, error) {
	memo, err := getWorkflowMemo(options.Memo, wc.dataConverter)
	if err != nil {
		return nil, err
	}
	searchAttr, err := serializeSearchAttributes(options.SearchAttributes)
	if err != nil {
		return nil, err
	}

	ctx, span := createOpenTracingWorkflowSpan(ctx, wc.tracer, time.Now(),
		fmt.Sprintf("%s-%s", spanName, workflowType.Name), workflowID)
	span.Finish()

	return &apiv1.StartWorkflowExecutionRequest{
		Domain:                       wc.domain,
		RequestId:                    uuid.New(),
		WorkflowId:                   workflowID,
		WorkflowType:                 &apiv1.WorkflowType{Name: workflowType.Name},
		TaskList:                     &apiv1.TaskList{Name: options.TaskList},
		Input:                        &apiv1.Payload{Data: input},
		ExecutionStartToCloseTimeout: api.DurationToProto(options.ExecutionStartToCloseTimeout),
		TaskStartToCloseTimeout:      api.DurationToProto(options.DecisionTaskStartToCloseTimeout),
		Identity:                     wc.identity,
		WorkflowIdReusePolicy:        options.WorkflowIDReusePolicy.toProto(),
		RetryPolicy:                  convertRetryPolicy(options.RetryPolicy),
		CronSchedule:                 options.CronSchedule,
		Memo:                         memo,
		SearchAttributes:             searchAttr,
		Header:                       wc.getWorkflowHeader(ctx),
		DelayStart:                   api.DurationToProto(options.DelayStart),
	}, nil
}

func (wc *workflowClient) countStart(taskList, workflowType, counter string) {
	if wc.metricsScope != nil {
		wc.metricsScope.GetTaggedScope(tagTaskList, taskList, tagWorkflowType, workflowType).
			Counter(counter).Inc(1)
	}
}

// StartWorkflow starts a workflow execution. workflowFunc may be the
// registered function itself or its registered name:
//     StartWorkflow(ctx, options, "workflowTypeName", arg1, arg2)
//     StartWorkflow(ctx, options, workflowFn, arg1, arg2)
// Timeouts are transmitted with second resolution.
func (wc *workflowClient) StartWorkflow(
	ctx context.Context,
	options StartWorkflowOptions,
	workflowFunc interface{},
	args ...interface{},
) (*WorkflowExecution, error) {
	workflowID := options.ID
	if len(workflowID) == 0 {
		workflowID = uuid.NewRandom().String()
	}
	if err := normalizeStartOptions(&options); err != nil {
		return nil, err
	}

	workflowType, input, err := getValidatedWorkflowFunction(workflowFunc, args, wc.dataConverter, wc.registry)
	if err != nil {
		return nil, err
	}

	startRequest, err := wc.buildStartRequest(ctx, "StartWorkflow", workflowID, options, workflowType, input)
	if err != nil {
		return nil, err
	}

	var response *apiv1.StartWorkflowExecutionResponse
	err = invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.StartWorkflowExecution(rpcCtx, startRequest, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}

	wc.countStart(options.TaskList, workflowType.Name, metrics.WorkflowStartCounter)

	return &WorkflowExecution{
		ID:    workflowID,
		RunID: response.GetRunId(),
	}, nil
}

// ExecuteWorkflow starts a workflow execution and returns a WorkflowRun that
// can wait for its result. Starting an execution that already runs is not an
// error here: the returned handle attaches to the running execution.
// The caller's context should carry a generous deadline; Get blocks until
// the workflow closes.
func (wc *workflowClient) ExecuteWorkflow(ctx context.Context, options StartWorkflowOptions, workflow interface{}, args ...interface{}) (WorkflowRun, error) {
	var workflowID, runID string
	executionInfo, err := wc.StartWorkflow(ctx, options, workflow, args...)
	switch startErr := err.(type) {
	case nil:
		workflowID = executionInfo.ID
		runID = executionInfo.RunID
	case *api.WorkflowExecutionAlreadyStartedError:
		// options.ID must have been set: generated UUIDs do not collide.
		workflowID = options.ID
		runID = startErr.RunID
	default:
		return nil, err
	}

	return &workflowRunImpl{
		workflowFn:    workflow,
		workflowID:    workflowID,
		firstRunID:    runID,
		currentRunID:  runID,
		iterFn:        wc.closeEventIterFn(workflowID),
		dataConverter: wc.dataConverter,
		registry:      wc.registry,
	}, nil
}

// GetWorkflow returns a WorkflowRun handle for an existing execution.
func (wc *workflowClient) GetWorkflow(ctx context.Context, workflowID string, runID string) WorkflowRun {
	return &workflowRunImpl{
		workflowID:    workflowID,
		firstRunID:    runID,
		currentRunID:  runID,
		iterFn:        wc.closeEventIterFn(workflowID),
		dataConverter: wc.dataConverter,
		registry:      wc.registry,
	}
}

// closeEventIterFn builds the long-poll iterator WorkflowRun.Get uses to
// wait for an execution's close event.
func (wc *workflowClient) closeEventIterFn(workflowID string) func(context.Context, string) HistoryEventIterator {
	return func(fnCtx context.Context, fnRunID string) HistoryEventIterator {
		return wc.GetWorkflowHistory(fnCtx, workflowID, fnRunID, true, apiv1.EventFilterType_EVENT_FILTER_TYPE_CLOSE_EVENT)
	}
}

// SignalWorkflow sends a signal to a running workflow execution.
func (wc *workflowClient) SignalWorkflow(ctx context.Context, workflowID string, runID string, signalName string, arg interface{}) error {
	input, err := encodeArg(wc.dataConverter, arg)
	if err != nil {
		return err
	}
	return signalWorkflow(ctx, wc.workflowService, wc.identity, wc.domain, workflowID, runID, signalName, input)
}

// SignalWithStartWorkflow sends a signal to a running workflow, starting the
// workflow first (and delivering the signal transactionally) if no execution
// is running.
func (wc *workflowClient) SignalWithStartWorkflow(ctx context.Context, workflowID string, signalName string, signalArg interface{},
	options StartWorkflowOptions, workflowFunc interface{}, workflowArgs ...interface{}) (*WorkflowExecution, error) {

	signalInput, err := encodeArg(wc.dataConverter, signalArg)
	if err != nil {
		return nil, err
	}

	if workflowID == "" {
		workflowID = uuid.NewRandom().String()
	}
	if err := normalizeStartOptions(&options); err != nil {
		return nil, err
	}

	workflowType, input, err := getValidatedWorkflowFunction(workflowFunc, workflowArgs, wc.dataConverter, wc.registry)
	if err != nil {
		return nil, err
	}

	startRequest, err := wc.buildStartRequest(ctx, "SignalWithStartWorkflow", workflowID, options, workflowType, input)
	if err != nil {
		return nil, err
	}

	request := &apiv1.SignalWithStartWorkflowExecutionRequest{
		SignalName:   signalName,
		SignalInput:  &apiv1.Payload{Data: signalInput},
		StartRequest: startRequest,
	}

	var response *apiv1.SignalWithStartWorkflowExecutionResponse
	err = invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.SignalWithStartWorkflowExecution(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}

	wc.countStart(options.TaskList, workflowType.Name, metrics.WorkflowSignalWithStartCounter)

	return &WorkflowExecution{
		ID:    options.ID,
		RunID: response.GetRunId(),
	}, nil
}

// CancelWorkflow requests cancellation of a workflow execution, giving the
// workflow a chance to clean up. An empty runID targets the currently
// running execution of workflowID.
func (wc *workflowClient) CancelWorkflow(ctx context.Context, workflowID string, runID string) error {
	request := &apiv1.RequestCancelWorkflowExecutionRequest{
		Domain: wc.domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: workflowID,
			RunId:      runID,
		},
		Identity: wc.identity,
	}
	return invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		_, err := wc.workflowService.RequestCancelWorkflowExecution(rpcCtx, request, opts...)
		return err
	})
}

// TerminateWorkflow forcefully stops a workflow execution. An empty runID
// targets the currently running execution of workflowID.
func (wc *workflowClient) TerminateWorkflow(ctx context.Context, workflowID string, runID string, reason string, details []byte) error {
	request := &apiv1.TerminateWorkflowExecutionRequest{
		Domain: wc.domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: workflowID,
			RunId:      runID,
		},
		Reason:   reason,
		Details:  &apiv1.Payload{Data: details},
		Identity: wc.identity,
	}
	return invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		_, err := wc.workflowService.TerminateWorkflowExecution(rpcCtx, request, opts...)
		return err
	})
}

// GetWorkflowHistory returns an iterator over an execution's history. With
// isLongPoll the iterator tracks the running execution, blocking until new
// events (or, with the close-event filter, the final event) arrive.
func (wc *workflowClient) GetWorkflowHistory(
	ctx context.Context,
	workflowID string,
	runID string,
	isLongPoll bool,
	filterType apiv1.EventFilterType,
) HistoryEventIterator {
	request := &apiv1.GetWorkflowExecutionHistoryRequest{
		Domain: wc.domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: workflowID,
			RunId:      runID,
		},
		WaitForNewEvent:        isLongPoll,
		HistoryEventFilterType: filterType,
		SkipArchival:           isLongPoll,
	}

	paginate := func(nextToken []byte) (*apiv1.GetWorkflowExecutionHistoryResponse, error) {
		request.NextPageToken = nextToken
		for {
			var response *apiv1.GetWorkflowExecutionHistoryResponse
			err := backoff.Retry(ctx,
				func() error {
					rpcCtx, cancel, opts := newChannelContext(ctx, func(builder *contextBuilder) {
						if isLongPoll {
							builder.Timeout = defaultGetHistoryTimeoutInSecs * time.Second
						}
					})
					defer cancel()
					var err1 error
					response, err1 = wc.workflowService.GetWorkflowExecutionHistory(rpcCtx, request, opts...)
					if err1 = api.ConvertError(err1); err1 != nil {
						return err1
					}
					if response.RawHistory != nil {
						history, err2 := serializer.DeserializeBlobDataToHistoryEvents(response.RawHistory, filterType)
						if err2 != nil {
							return err2
						}
						response.History = history
					}
					return nil
				},
				createDynamicServiceRetryPolicy(ctx),
				func(err error) bool {
					// Passive-cluster lag looks like entity-not-exists;
					// retrying lets the active cluster catch up.
					return isServiceTransientError(err) || isEntityNonExistFromPassive(err)
				},
			)
			if err != nil {
				return nil, err
			}
			// A long poll can return an empty page with a fresh token while
			// the execution is still running; keep polling.
			if isLongPoll && len(response.History.Events) == 0 && len(response.NextPageToken) != 0 {
				request.NextPageToken = response.NextPageToken
				continue
			}
			return response, nil
		}
	}

	return &historyEventIteratorImpl{paginate: paginate}
}

func isEntityNonExistFromPassive(err error) bool {
	if nonExistError, ok := err.(*api.EntityNotExistsError); ok {
		return nonExistError.ActiveCluster != "" &&
			nonExistError.CurrentCluster != "" &&
			nonExistError.ActiveCluster != nonExistError.CurrentCluster
	}
	return false
}

// CompleteActivity reports a result for an activity that returned
// ErrResultPending from Execute. A nil err reports completion, a
// CanceledError reports cancellation, anything else reports failure.
func (wc *workflowClient) CompleteActivity(ctx context.Context, taskToken []byte, result interface{}, err error) error {
	if taskToken == nil {
		return errors.New("invalid task token provided")
	}
	data, err0 := encodeActivityResult(wc.dataConverter, result)
	if err0 != nil {
		return err0
	}
	request := convertActivityResultToRespondRequest(wc.identity, taskToken, data, err, wc.dataConverter)
	return reportActivityComplete(ctx, wc.workflowService, request, wc.metricsScope)
}

// CompleteActivityByID is CompleteActivity addressed by
// (domain, workflowID, runID, activityID) instead of a task token.
func (wc *workflowClient) CompleteActivityByID(ctx context.Context, domain, workflowID, runID, activityID string,
	result interface{}, err error) error {

	if activityID == "" || workflowID == "" || domain == "" {
		return errors.New("empty activity or workflow id or domainName")
	}
	data, err0 := encodeActivityResult(wc.dataConverter, result)
	if err0 != nil {
		return err0
	}
	request := convertActivityResultToRespondRequestByID(wc.identity, domain, workflowID, runID, activityID, data, err, wc.dataConverter)
	return reportActivityCompleteByID(ctx, wc.workflowService, request, wc.metricsScope)
}

func encodeActivityResult(dc DataConverter, result interface{}) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	return encodeArg(dc, result)
}

// RecordActivityHeartbeat records a heartbeat (with optional details) for an
// activity identified by its task token.
func (wc *workflowClient) RecordActivityHeartbeat(ctx context.Context, taskToken []byte, details ...interface{}) error {
	data, err := encodeArgs(wc.dataConverter, details)
	if err != nil {
		return err
	}
	return recordActivityHeartbeat(ctx, wc.workflowService, wc.identity, taskToken, data)
}

// RecordActivityHeartbeatByID is RecordActivityHeartbeat addressed by IDs.
func (wc *workflowClient) RecordActivityHeartbeatByID(ctx context.Context,
	domain, workflowID, runID, activityID string, details ...interface{}) error {
	data, err := encodeArgs(wc.dataConverter, details)
	if err != nil {
		return err
	}
	return recordActivityHeartbeatByID(ctx, wc.workflowService, wc.identity, domain, workflowID, runID, activityID, data)
}

// The visibility APIs below all follow one shape: default the domain, issue
// the request under invokeService, hand back the raw response.

// ListClosedWorkflow lists closed workflow executions matching the request
// filters. Errors: BadRequestError, InternalServiceError, EntityNotExistError.
func (wc *workflowClient) ListClosedWorkflow(ctx context.Context, request *apiv1.ListClosedWorkflowExecutionsRequest) (*apiv1.ListClosedWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.ListClosedWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ListClosedWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ListOpenWorkflow lists open workflow executions matching the request
// filters. Errors: BadRequestError, InternalServiceError, EntityNotExistError.
func (wc *workflowClient) ListOpenWorkflow(ctx context.Context, request *apiv1.ListOpenWorkflowExecutionsRequest) (*apiv1.ListOpenWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.ListOpenWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ListOpenWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ListWorkflow lists workflow executions by a visibility query.
func (wc *workflowClient) ListWorkflow(ctx context.Context, request *apiv1.ListWorkflowExecutionsRequest) (*apiv1.ListWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.ListWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ListWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ListArchivedWorkflow lists archived workflow executions. The call timeout
// follows the caller's deadline, clamped to [minRPCTimeout,
// maxListArchivedWorkflowTimeout].
func (wc *workflowClient) ListArchivedWorkflow(ctx context.Context, request *apiv1.ListArchivedWorkflowExecutionsRequest) (*apiv1.ListArchivedWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	timeout := maxListArchivedWorkflowTimeout
	if ctx != nil {
		if expiration, ok := ctx.Deadline(); ok {
			if remaining := time.Until(expiration); remaining > 0 {
				timeout = remaining
				if timeout > maxListArchivedWorkflowTimeout {
					timeout = maxListArchivedWorkflowTimeout
				} else if timeout < minRPCTimeout {
					timeout = minRPCTimeout
				}
			}
		}
	}
	var response *apiv1.ListArchivedWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ListArchivedWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	}, chanTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ScanWorkflow lists workflow executions without strict ordering, faster
// than ListWorkflow over large result sets.
func (wc *workflowClient) ScanWorkflow(ctx context.Context, request *apiv1.ScanWorkflowExecutionsRequest) (*apiv1.ScanWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.ScanWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ScanWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// CountWorkflow counts workflow executions matching a visibility query.
func (wc *workflowClient) CountWorkflow(ctx context.Context, request *apiv1.CountWorkflowExecutionsRequest) (*apiv1.CountWorkflowExecutionsResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.CountWorkflowExecutionsResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.CountWorkflowExecutions(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// ResetWorkflow resets a workflow execution to an earlier decision boundary
// and returns the new run's ID.
func (wc *workflowClient) ResetWorkflow(ctx context.Context, request *apiv1.ResetWorkflowExecutionRequest) (*apiv1.ResetWorkflowExecutionResponse, error) {
	if len(request.GetDomain()) == 0 {
		request.Domain = wc.domain
	}
	var response *apiv1.ResetWorkflowExecutionResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.ResetWorkflowExecution(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetSearchAttributes returns the search attribute keys the cluster indexes.
func (wc *workflowClient) GetSearchAttributes(ctx context.Context) (*apiv1.GetSearchAttributesResponse, error) {
	var response *apiv1.GetSearchAttributesResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.GetSearchAttributes(rpcCtx, &apiv1.GetSearchAttributesRequest{}, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// DescribeWorkflowExecution returns information about one workflow
// execution. Errors: BadRequestError, InternalServiceError,
// EntityNotExistError.
func (wc *workflowClient) DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*apiv1.DescribeWorkflowExecutionResponse, error) {
	request := &apiv1.DescribeWorkflowExecutionRequest{
		Domain: wc.domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: workflowID,
			RunId:      runID,
		},
	}
	var response *apiv1.DescribeWorkflowExecutionResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.DescribeWorkflowExecution(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// QueryWorkflow runs a query against a workflow execution and returns its
// result. An empty runID targets the running execution of workflowID. Errors:
// BadRequestError, InternalServiceError, EntityNotExistError, QueryFailError.
func (wc *workflowClient) QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (Value, error) {
	result, err := wc.QueryWorkflowWithOptions(ctx, &QueryWorkflowWithOptionsRequest{
		WorkflowID: workflowID,
		RunID:      runID,
		QueryType:  queryType,
		Args:       args,
	})
	if err != nil {
		return nil, err
	}
	return result.QueryResult, nil
}

// QueryWorkflowWithOptionsRequest is the request to QueryWorkflowWithOptions.
type QueryWorkflowWithOptionsRequest struct {
	// WorkflowID of the workflow to query. Required.
	WorkflowID string

	// RunID selects a specific run; empty means the latest run.
	RunID string

	// QueryType names the query. The worker answers "__stack_trace" itself
	// with the workflow's coroutine dump; anything else must match a handler
	// the workflow registered via workflow.SetQueryHandler.
	QueryType string

	// Args are the arguments passed to the query handler.
	Args []interface{}

	// QueryRejectCondition optionally rejects queries by workflow state:
	// NotOpen rejects queries against closed workflows,
	// NotCompletedCleanly rejects queries against workflows that closed any
	// way other than completing.
	QueryRejectCondition apiv1.QueryRejectCondition

	// QueryConsistencyLevel selects eventual or strong consistency; strong
	// applies all events received before the query before answering.
	QueryConsistencyLevel apiv1.QueryConsistencyLevel
}

// QueryWorkflowWithOptionsResponse is the response to
// QueryWorkflowWithOptions.
type QueryWorkflowWithOptionsResponse struct {
	// QueryResult is set iff the query completed successfully.
	QueryResult Value

	// QueryRejected is set iff the reject condition matched.
	QueryRejected *apiv1.QueryRejected
}

// QueryWorkflowWithOptions is QueryWorkflow with rejection and consistency
// controls.
func (wc *workflowClient) QueryWorkflowWithOptions(ctx context.Context, request *QueryWorkflowWithOptionsRequest) (*QueryWorkflowWithOptionsResponse, error) {
	var input []byte
	if len(request.Args) > 0 {
		var err error
		if input, err = encodeArgs(wc.dataConverter, request.Args); err != nil {
			return nil, err
		}
	}
	req := &apiv1.QueryWorkflowRequest{
		Domain: wc.domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: request.WorkflowID,
			RunId:      request.RunID,
		},
		Query: &apiv1.WorkflowQuery{
			QueryType: request.QueryType,
			QueryArgs: &apiv1.Payload{Data: input},
		},
		QueryRejectCondition:  request.QueryRejectCondition,
		QueryConsistencyLevel: request.QueryConsistencyLevel,
	}

	var resp *apiv1.QueryWorkflowResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		resp, err1 = wc.workflowService.QueryWorkflow(rpcCtx, req, opts...)
		return err1
	}, chanTimeout(defaultQueryRPCTimeout))
	if err != nil {
		return nil, err
	}

	if resp.QueryRejected != nil {
		return &QueryWorkflowWithOptionsResponse{QueryRejected: resp.QueryRejected}, nil
	}
	return &QueryWorkflowWithOptionsResponse{
		QueryResult: newEncodedValue(resp.QueryResult.GetData(), wc.dataConverter),
	}, nil
}

// DescribeTaskList returns information about a task list, currently the
// pollers seen on it in the last few minutes.
func (wc *workflowClient) DescribeTaskList(ctx context.Context, tasklist string, tasklistType apiv1.TaskListType) (*apiv1.DescribeTaskListResponse, error) {
	request := &apiv1.DescribeTaskListRequest{
		Domain:       wc.domain,
		TaskList:     &apiv1.TaskList{Name: tasklist},
		TaskListType: tasklistType,
	}
	var response *apiv1.DescribeTaskListResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = wc.workflowService.DescribeTaskList(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// getWorkflowHeader captures the caller's context into a Header through the
// registered propagators.
func (wc *workflowClient) getWorkflowHeader(ctx context.Context) *apiv1.Header {
	header := &apiv1.Header{
		Fields: make(map[string]*apiv1.Payload),
	}
	writer := NewHeaderWriter(header)
	for _, ctxProp := range wc.contextPropagators {
		ctxProp.Inject(ctx, writer)
	}
	return header
}

// Register registers a domain with the service.
// Errors: DomainAlreadyExistsError, BadRequestError, InternalServiceError.
func (dc *domainClient) Register(ctx context.Context, request *apiv1.RegisterDomainRequest) error {
	return invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		_, err := dc.workflowService.RegisterDomain(rpcCtx, request, opts...)
		return err
	})
}

// Describe returns a domain's info (name, status, description, owner),
// configuration (retention, metrics emission) and replication configuration.
// Errors: EntityNotExistsError, BadRequestError, InternalServiceError.
func (dc *domainClient) Describe(ctx context.Context, name string) (*apiv1.DescribeDomainResponse, error) {
	request := &apiv1.DescribeDomainRequest{
		DescribeBy: &apiv1.DescribeDomainRequest_Name{Name: name},
	}
	var response *apiv1.DescribeDomainResponse
	err := invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		var err1 error
		response, err1 = dc.workflowService.DescribeDomain(rpcCtx, request, opts...)
		return err1
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Update updates a domain.
// Errors: EntityNotExistsError, BadRequestError, InternalServiceError.
func (dc *domainClient) Update(ctx context.Context, request *apiv1.UpdateDomainRequest) error {
	return invokeService(ctx, func(rpcCtx context.Context, opts ...api.CallOption) error {
		_, err := dc.workflowService.UpdateDomain(rpcCtx, request, opts...)
		return err
	})
}

func (iter *historyEventIteratorImpl) HasNext() bool {
	if iter.nextEventIndex < len(iter.events) || iter.err != nil {
		return true
	}
	if iter.initialized && len(iter.nexttoken) == 0 {
		return false
	}

	iter.initialized = true
	response, err := iter.paginate(iter.nexttoken)
	iter.nextEventIndex = 0
	if err != nil {
		iter.events = nil
		iter.nexttoken = nil
		iter.err = err
		return true
	}
	iter.events = response.History.Events
	iter.nexttoken = response.NextPageToken
	iter.err = nil
	return iter.nextEventIndex < len(iter.events)
}

func (iter *historyEventIteratorImpl) Next() (*apiv1.HistoryEvent, error) {
	if !iter.HasNext() {
		panic("HistoryEventIterator Next() called without checking HasNext()")
	}

	if iter.nextEventIndex < len(iter.events) {
		index := iter.nextEventIndex
		iter.nextEventIndex++
		return iter.events[index], nil
	}
	if iter.err != nil {
		// surface the page-fetch error once
		err := iter.err
		iter.err = nil
		return nil, err
	}

	panic("HistoryEventIterator Next() should return either a history event or a err")
}

func (workflowRun *workflowRunImpl) GetRunID() string {
	return workflowRun.firstRunID
}

func (workflowRun *workflowRunImpl) GetID() string {
	return workflowRun.workflowID
}

// Get long-polls for the close event of the current run, following
// continue-as-new chains until a run actually finishes, and maps the close
// event onto a decoded result or the matching error type.
func (workflowRun *workflowRunImpl) Get(ctx context.Context, valuePtr interface{}) error {
	iter := workflowRun.iterFn(ctx, workflowRun.currentRunID)
	if !iter.HasNext() {
		panic("could not get last history event for workflow")
	}
	closeEvent, err := iter.Next()
	if err != nil {
		return err
	}

	switch attr := closeEvent.Attributes.(type) {
	case *apiv1.HistoryEvent_WorkflowExecutionCompletedEventAttributes:
		attributes := attr.WorkflowExecutionCompletedEventAttributes
		if valuePtr == nil || attributes.Result == nil {
			return nil
		}
		rf := reflect.ValueOf(valuePtr)
		if rf.Type().Kind() != reflect.Ptr {
			return errors.New("value parameter is not a pointer")
		}
		return deSerializeFunctionResult(workflowRun.workflowFn, attributes.Result.GetData(), valuePtr, workflowRun.dataConverter, workflowRun.registry)
	case *apiv1.HistoryEvent_WorkflowExecutionFailedEventAttributes:
		attributes := attr.WorkflowExecutionFailedEventAttributes
		return constructError(attributes.Failure.GetReason(), attributes.Failure.GetDetails(), workflowRun.dataConverter)
	case *apiv1.HistoryEvent_WorkflowExecutionCanceledEventAttributes:
		attributes := attr.WorkflowExecutionCanceledEventAttributes
		details := newEncodedValues(attributes.Details.GetData(), workflowRun.dataConverter)
		return NewCanceledError(details)
	case *apiv1.HistoryEvent_WorkflowExecutionTerminatedEventAttributes:
		return newTerminatedError()
	case *apiv1.HistoryEvent_WorkflowExecutionTimedOutEventAttributes:
		attributes := attr.WorkflowExecutionTimedOutEventAttributes
		return NewTimeoutError(attributes.GetTimeoutType())
	case *apiv1.HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes:
		attributes := attr.WorkflowExecutionContinuedAsNewEventAttributes
		workflowRun.currentRunID = attributes.GetNewExecutionRunId()
		return workflowRun.Get(ctx, valuePtr)
	default:
		return fmt.Errorf("unexpected event type %s when handling workflow execution result", util.GetHistoryEventType(closeEvent))
	}
}

func getWorkflowMemo(input map[string]interface{}, dc DataConverter) (*apiv1.Memo, error) {
	if input == nil {
		return nil, nil
	}

	memo := make(map[string]*apiv1.Payload)
	for k, v := range input {
		memoBytes, err := encodeArg(dc, v)
		if err != nil {
			return nil, fmt.Errorf("encode workflow memo error: %v", err.Error())
		}
		memo[k] = &apiv1.Payload{Data: memoBytes}
	}
	return &apiv1.Memo{Fields: memo}, nil
}

func serializeSearchAttributes(input map[string]interface{}) (*apiv1.SearchAttributes, error) {
	if input == nil {
		return nil, nil
	}

	attr := make(map[string]*apiv1.Payload)
	for k, v := range input {
		attrBytes, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode search attribute [%s] error: %v", k, err)
		}
		attr[k] = &apiv1.Payload{Data: attrBytes}
	}
	return &apiv1.SearchAttributes{IndexedFields: attr}, nil
}
