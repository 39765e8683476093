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

// Long-poll loops. One poller instance serves one poller goroutine of a
// baseWorker; it long-polls the service for a task, hands it to the matching
// task handler, and reports the handler's response back.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common/backoff"
	"github.com/orbitflow/orbit-go/internal/common/metrics"
)

const (
	pollTaskServiceTimeOut = 150 * time.Second

	stickyDecisionScheduleToStartTimeoutSeconds = 5
)

type (
	// taskPoller is the interface a baseWorker drives: long-poll for one
	// task, then process it.
	taskPoller interface {
		PollTask() (interface{}, error)
		ProcessTask(interface{}) error
	}

	basePoller struct {
		shutdownC <-chan struct{}
	}

	// workflowTaskPoller polls decision tasks and runs them through the
	// replay decider.
	workflowTaskPoller struct {
		basePoller
		domain       string
		taskListName string
		identity     string
		service      api.Interface
		taskHandler  workflowTaskHandler
		metricsScope *metrics.TaggedScope
		logger       *zap.Logger

		disableStickyExecution bool
	}

	// activityTaskPoller polls activity tasks and executes them.
	activityTaskPoller struct {
		basePoller
		domain       string
		taskListName string
		identity     string
		service      api.Interface
		taskHandler  activityTaskHandler
		metricsScope *metrics.TaggedScope
		logger       *zap.Logger
	}

	historyIteratorImpl struct {
		iteratorFunc  func(nextPageToken []byte) (*apiv1.History, []byte, error)
		execution     *apiv1.WorkflowExecution
		nextPageToken []byte
		domain        string
		service       api.Interface
		metricsScope  tally.Scope
		startedAtZero bool
		exhausted     bool
	}

	// localActivityTaskHandler executes local activities inline on the
	// decider goroutine, retrying per their policy, and produces the result
	// the decider records as a LocalActivity marker.
	localActivityTaskHandler struct {
		userContext        context.Context
		metricsScope       *metrics.TaggedScope
		logger             *zap.Logger
		dataConverter      DataConverter
		contextPropagators []ContextPropagator
		tracer             opentracing.Tracer
	}

	// orbitInvoker is the production ServiceInvoker handed to activity
	// code: it batches heartbeats against the heartbeat timeout and signals
	// cancellation through the error it returns.
	orbitInvoker struct {
		sync.Mutex
		taskToken         []byte
		identity          string
		service           api.Interface
		cancelHandler     func(detail string)
		heartBeatTimeout  time.Duration
		hbBatchEndTimer   *time.Timer
		detailsToReport   *[]byte
		closeCh           chan struct{}
		workerStopChannel <-chan struct{}
	}
)

func (bp *basePoller) shuttingDown() bool {
	select {
	case <-bp.shutdownC:
		return true
	default:
		return false
	}
}

// doPoll runs pollFunc with the standard long-poll timeout, bailing out
// early when the worker is shutting down.
func (bp *basePoller) doPoll(pollFunc func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if bp.shuttingDown() {
		return nil, errShutdown
	}

	var err error
	var result interface{}

	ctx, cancel := context.WithTimeout(context.Background(), pollTaskServiceTimeOut)
	defer cancel()

	doneC := make(chan struct{})
	go func() {
		result, err = pollFunc(ctx)
		close(doneC)
	}()

	select {
	case <-doneC:
		return result, err
	case <-bp.shutdownC:
		cancel()
		<-doneC
		return nil, errShutdown
	}
}

var errShutdown = errors.New("worker shutting down")

func isClientSideError(err error) bool {
	switch err.(type) {
	case *api.BadRequestError, *api.QueryFailedError:
		return true
	}
	return false
}

func newWorkflowTaskPoller(
	taskHandler workflowTaskHandler,
	service api.Interface,
	domain string,
	params workerExecutionParameters,
) *workflowTaskPoller {
	return &workflowTaskPoller{
		basePoller:             basePoller{shutdownC: params.WorkerStopChannel},
		service:                service,
		domain:                 domain,
		taskListName:           params.TaskList,
		identity:               params.Identity,
		taskHandler:            taskHandler,
		metricsScope:           metrics.NewTaggedScope(params.MetricsScope),
		logger:                 params.Logger,
		disableStickyExecution: params.DisableStickyExecution,
	}
}

// PollTask polls for one decision task.
func (wtp *workflowTaskPoller) PollTask() (interface{}, error) {
	return wtp.doPoll(wtp.poll)
}

func (wtp *workflowTaskPoller) poll(ctx context.Context) (interface{}, error) {
	startTime := time.Now()
	wtp.metricsScope.Counter(metrics.PollerStartCounter).Inc(1)

	request := &apiv1.PollForDecisionTaskRequest{
		Domain:         wtp.domain,
		TaskList:       &apiv1.TaskList{Name: wtp.taskListName},
		Identity:       wtp.identity,
		BinaryChecksum: getBinaryChecksum(),
	}

	response, err := wtp.service.PollForDecisionTask(ctx, request)
	if err != nil {
		wtp.metricsScope.Counter(metrics.DecisionPollFailedCounter).Inc(1)
		return nil, err
	}

	if response == nil || len(response.TaskToken) == 0 {
		wtp.metricsScope.Counter(metrics.DecisionPollNoTaskCounter).Inc(1)
		return &workflowTask{}, nil
	}

	execution := response.WorkflowExecution
	traceLog(func() {
		wtp.logger.Debug("workflowTaskPoller::Poll Succeed",
			zap.String(tagWorkflowID, execution.WorkflowId),
			zap.String(tagRunID, execution.RunId),
			zap.Int64("StartedEventID", response.GetStartedEventId()),
			zap.Int64("Attempt", response.Attempt))
	})

	scheduleToStart := time.Now().Sub(startTime)
	wtp.metricsScope.GetTaggedScope(tagWorkflowType, response.WorkflowType.Name).
		Timer(metrics.DecisionTaskScheduleToStartLatency).Record(scheduleToStart)

	task := &workflowTask{
		task:            response,
		historyIterator: newGetHistoryPageFunc(wtp.service, wtp.domain, execution, wtp.metricsScope, response),
	}
	return task, nil
}

// ProcessTask runs the decision task through the replay decider and reports
// the result.
func (wtp *workflowTaskPoller) ProcessTask(task interface{}) error {
	if wtp.shuttingDown() {
		return errShutdown
	}

	workflowTask := task.(*workflowTask)
	if workflowTask.task == nil {
		// Poll timed out with no task.
		return nil
	}

	executionStartTime := time.Now()
	completedRequest, err := wtp.taskHandler.ProcessWorkflowTask(workflowTask)
	wtp.metricsScope.GetTaggedScope(tagWorkflowType, workflowTask.task.WorkflowType.Name).
		Timer(metrics.DecisionExecutionLatency).Record(time.Now().Sub(executionStartTime))
	if err != nil {
		wtp.metricsScope.GetTaggedScope(tagWorkflowType, workflowTask.task.WorkflowType.Name).
			Counter(metrics.DecisionTaskExecutionFailureCounter).Inc(1)
		wtp.logger.Warn("Failed to process decision task.",
			zap.String(tagWorkflowType, workflowTask.task.WorkflowType.Name),
			zap.String(tagWorkflowID, workflowTask.task.WorkflowExecution.WorkflowId),
			zap.String(tagRunID, workflowTask.task.WorkflowExecution.RunId),
			zap.Error(err))
		// No response: the decision task times out and the service
		// redelivers it, surfacing the same failure until the workflow code
		// (or its history) is fixed.
		return err
	}

	return wtp.RespondTaskCompleted(completedRequest, workflowTask.task)
}

func (wtp *workflowTaskPoller) RespondTaskCompleted(completedRequest interface{}, task *apiv1.PollForDecisionTaskResponse) error {
	if completedRequest == nil {
		return nil
	}

	ctx := context.Background()
	var operation func() error
	switch request := completedRequest.(type) {
	case *apiv1.RespondQueryTaskCompletedRequest:
		operation = func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			_, err := wtp.service.RespondQueryTaskCompleted(tchCtx, request, opt...)
			return err
		}
	case *apiv1.RespondDecisionTaskCompletedRequest:
		operation = func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			_, err := wtp.service.RespondDecisionTaskCompleted(tchCtx, request, opt...)
			return err
		}
	default:
		return fmt.Errorf("unknown decision task response type %T", completedRequest)
	}

	err := backoff.Retry(ctx, operation, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	if err != nil {
		wtp.metricsScope.Counter(metrics.DecisionResponseFailedCounter).Inc(1)
		wtp.logger.Warn("Failed to respond decision task completed.",
			zap.String(tagWorkflowID, task.WorkflowExecution.WorkflowId),
			zap.String(tagRunID, task.WorkflowExecution.RunId),
			zap.Error(err))
		// The sticky state may now disagree with the service's view of this
		// execution; force the next task to replay from scratch.
		removeWorkflowContext(task.WorkflowExecution.RunId)
	}
	return err
}

func newGetHistoryPageFunc(
	service api.Interface,
	domain string,
	execution *apiv1.WorkflowExecution,
	metricsScope tally.Scope,
	task *apiv1.PollForDecisionTaskResponse,
) historyIterator {
	return &historyIteratorImpl{
		domain:        domain,
		service:       service,
		execution:     execution,
		metricsScope:  metricsScope,
		nextPageToken: task.GetNextPageToken(),
	}
}

func (h *historyIteratorImpl) GetNextPage() (*apiv1.History, error) {
	if h.iteratorFunc == nil {
		h.iteratorFunc = func(nextPageToken []byte) (*apiv1.History, []byte, error) {
			ctx := context.Background()
			request := &apiv1.GetWorkflowExecutionHistoryRequest{
				Domain:            h.domain,
				WorkflowExecution: h.execution,
				NextPageToken:     nextPageToken,
			}
			var response *apiv1.GetWorkflowExecutionHistoryResponse
			err := backoff.Retry(ctx,
				func() error {
					tchCtx, cancel, opt := newChannelContext(ctx)
					defer cancel()
					var err1 error
					response, err1 = h.service.GetWorkflowExecutionHistory(tchCtx, request, opt...)
					return err1
				}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
			if err != nil {
				return nil, nil, err
			}
			return response.History, response.NextPageToken, nil
		}
	}

	historyPage, token, err := h.iteratorFunc(h.nextPageToken)
	if err != nil {
		return nil, err
	}
	h.nextPageToken = token
	h.exhausted = len(token) == 0
	return historyPage, nil
}

func (h *historyIteratorImpl) Reset() {
	h.nextPageToken = nil
	h.exhausted = false
	h.startedAtZero = true
}

func (h *historyIteratorImpl) HasNextPage() bool {
	return !h.exhausted && (h.nextPageToken != nil || h.startedAtZero)
}

func newActivityTaskPoller(
	taskHandler activityTaskHandler,
	service api.Interface,
	domain string,
	params workerExecutionParameters,
) *activityTaskPoller {
	return &activityTaskPoller{
		basePoller:   basePoller{shutdownC: params.WorkerStopChannel},
		taskHandler:  taskHandler,
		service:      service,
		domain:       domain,
		taskListName: params.TaskList,
		identity:     params.Identity,
		logger:       params.Logger,
		metricsScope: metrics.NewTaggedScope(params.MetricsScope),
	}
}

func (atp *activityTaskPoller) PollTask() (interface{}, error) {
	return atp.doPoll(atp.poll)
}

func (atp *activityTaskPoller) poll(ctx context.Context) (interface{}, error) {
	startTime := time.Now()
	atp.metricsScope.Counter(metrics.PollerStartCounter).Inc(1)

	request := &apiv1.PollForActivityTaskRequest{
		Domain:   atp.domain,
		TaskList: &apiv1.TaskList{Name: atp.taskListName},
		Identity: atp.identity,
	}

	response, err := atp.service.PollForActivityTask(ctx, request)
	if err != nil {
		atp.metricsScope.Counter(metrics.ActivityPollFailedCounter).Inc(1)
		return nil, err
	}
	if response == nil || len(response.TaskToken) == 0 {
		atp.metricsScope.Counter(metrics.ActivityPollNoTaskCounter).Inc(1)
		return &activityTask{}, nil
	}

	return &activityTask{task: response, pollStartTime: startTime}, nil
}

// ProcessTask executes the activity and reports its outcome.
func (atp *activityTaskPoller) ProcessTask(task interface{}) error {
	if atp.shuttingDown() {
		return errShutdown
	}

	activityTask := task.(*activityTask)
	if activityTask.task == nil {
		// Poll timed out with no task.
		return nil
	}

	request, err := atp.taskHandler.Execute(atp.taskListName, activityTask.task)
	if err != nil {
		return err
	}
	if request == nil {
		// Async completion through Client.CompleteActivity.
		return nil
	}

	reportErr := reportActivityComplete(context.Background(), atp.service, request, atp.metricsScope)
	if reportErr != nil {
		atp.metricsScope.Counter(metrics.ActivityResponseFailedCounter).Inc(1)
		traceLog(func() {
			atp.logger.Debug("reportActivityComplete failed", zap.Error(reportErr))
		})
	}
	return reportErr
}

func reportActivityComplete(ctx context.Context, service api.Interface, request interface{}, metricsScope tally.Scope) error {
	if request == nil {
		return nil
	}

	var reportErr error
	switch request := request.(type) {
	case *apiv1.RespondActivityTaskCanceledRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskCanceled(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	case *apiv1.RespondActivityTaskFailedRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskFailed(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	case *apiv1.RespondActivityTaskCompletedRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskCompleted(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	}
	return reportErr
}

func reportActivityCompleteByID(ctx context.Context, service api.Interface, request interface{}, metricsScope tally.Scope) error {
	if request == nil {
		return nil
	}

	var reportErr error
	switch request := request.(type) {
	case *apiv1.RespondActivityTaskCanceledByIdRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskCanceledById(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	case *apiv1.RespondActivityTaskFailedByIdRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskFailedById(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	case *apiv1.RespondActivityTaskCompletedByIdRequest:
		reportErr = backoff.Retry(ctx,
			func() error {
				tchCtx, cancel, opt := newChannelContext(ctx)
				defer cancel()
				_, err := service.RespondActivityTaskCompletedById(tchCtx, request, opt...)
				return err
			}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
	}
	return reportErr
}

func convertActivityResultToRespondRequestByID(identity, domain, workflowID, runID, activityID string,
	result []byte, err error, dataConverter DataConverter) interface{} {
	if err == ErrActivityResultPending {
		return nil
	}

	if err == nil {
		return &apiv1.RespondActivityTaskCompletedByIdRequest{
			Domain:     domain,
			WorkflowId: workflowID,
			RunId:      runID,
			ActivityId: activityID,
			Result:     &apiv1.Payload{Data: result},
			Identity:   identity,
		}
	}

	if canceledErr, ok := err.(*CanceledError); ok {
		return &apiv1.RespondActivityTaskCanceledByIdRequest{
			Domain:     domain,
			WorkflowId: workflowID,
			RunId:      runID,
			ActivityId: activityID,
			Details:    &apiv1.Payload{Data: rawDetails(canceledErr.details)},
			Identity:   identity,
		}
	}

	reason, details := getErrorDetails(err, dataConverter)
	return &apiv1.RespondActivityTaskFailedByIdRequest{
		Domain:     domain,
		WorkflowId: workflowID,
		RunId:      runID,
		ActivityId: activityID,
		Failure:    &apiv1.Failure{Reason: reason, Details: details},
		Identity:   identity,
	}
}

func newLocalActivityTaskHandler(
	userContext context.Context,
	metricsScope *metrics.TaggedScope,
	logger *zap.Logger,
	dataConverter DataConverter,
	contextPropagators []ContextPropagator,
	tracer opentracing.Tracer,
) *localActivityTaskHandler {
	return &localActivityTaskHandler{
		userContext:        userContext,
		metricsScope:       metricsScope,
		logger:             logger,
		dataConverter:      dataConverter,
		contextPropagators: contextPropagators,
		tracer:             tracer,
	}
}

// executeLocalActivityTask runs the local activity function inline,
// retrying per its policy, and returns the final result for the decider to
// record as a marker. Local activities run on the decider goroutine between
// the scheduler pass and the decision response.
func (lath *localActivityTaskHandler) executeLocalActivityTask(task *localActivityTask) *localActivityResult {
	activityType := lastPartOfName(task.params.ActivityType)
	metricsScope := lath.metricsScope.GetTaggedScope(tagActivityType, activityType)
	metricsScope.Counter(metrics.LocalActivityTotalCounter).Inc(1)

	workflowInfo := task.params.WorkflowInfo
	rootCtx := lath.userContext
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	ctx := context.WithValue(rootCtx, activityEnvContextKey, &activityEnvironment{
		workflowType:      &workflowInfo.WorkflowType,
		workflowDomain:    workflowInfo.Domain,
		taskList:          workflowInfo.TaskListName,
		activityType:      ActivityType{Name: activityType},
		activityID:        task.activityID,
		workflowExecution: workflowInfo.WorkflowExecution,
		logger:            lath.logger,
		metricsScope:      metricsScope,
		isLocalActivity:   true,
		dataConverter:     lath.dataConverter,
		attempt:           task.attempt,
	})

	input, err := encodeArgs(lath.dataConverter, task.params.InputArgs)
	if err != nil {
		return &localActivityResult{task: task, err: err}
	}

	executor := &activityExecutor{name: activityType, fn: task.params.ActivityFn}

	for {
		startTime := time.Now()
		result, err := lath.runWithRecovery(ctx, executor, input, metricsScope)
		metricsScope.Timer(metrics.LocalActivityExecutionLatency).Record(time.Now().Sub(startTime))

		if err == nil || task.canceled {
			return &localActivityResult{task: task, result: result, err: err, attempt: task.attempt}
		}
		metricsScope.Counter(metrics.LocalActivityErrorCounter).Inc(1)

		backoffDuration, retry := nextLocalActivityRetry(task)
		if !retry {
			return &localActivityResult{task: task, result: result, err: err, attempt: task.attempt}
		}
		task.attempt++
		if backoffDuration > 0 {
			time.Sleep(backoffDuration)
		}
	}
}

func (lath *localActivityTaskHandler) runWithRecovery(
	ctx context.Context,
	executor *activityExecutor,
	input []byte,
	metricsScope tally.Scope,
) (result []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			metricsScope.Counter(metrics.LocalActivityPanicCounter).Inc(1)
			topLine := fmt.Sprintf("local activity %s [panic]:", executor.name)
			st := getStackTraceRaw(topLine, 7, 0)
			lath.logger.Error("LocalActivity panic.",
				zap.String(tagActivityType, executor.name),
				zap.String(tagPanicError, fmt.Sprintf("%v", p)),
				zap.String(tagPanicStack, st))
			err = newWorkflowPanicError(p, st)
		}
	}()
	return executor.Execute(ctx, input)
}

// nextLocalActivityRetry evaluates the task's retry policy against its
// attempt count and expiration.
func nextLocalActivityRetry(task *localActivityTask) (time.Duration, bool) {
	p := task.retryPolicy
	if p == nil {
		return 0, false
	}
	if p.MaximumAttempts > 0 && task.attempt+1 >= p.MaximumAttempts {
		return 0, false
	}
	if !task.expireTime.IsZero() && time.Now().After(task.expireTime) {
		return 0, false
	}

	backoffDuration := p.InitialInterval
	coefficient := p.BackoffCoefficient
	if coefficient < 1 {
		coefficient = 1
	}
	for i := int32(1); i <= task.attempt; i++ {
		backoffDuration = time.Duration(float64(backoffDuration) * coefficient)
		if p.MaximumInterval > 0 && backoffDuration > p.MaximumInterval {
			backoffDuration = p.MaximumInterval
			break
		}
	}
	return backoffDuration, true
}

func newServiceInvoker(
	taskToken []byte,
	identity string,
	service api.Interface,
	cancelHandler func(detail string),
	heartBeatTimeout time.Duration,
	workerStopChannel <-chan struct{},
) ServiceInvoker {
	return &orbitInvoker{
		taskToken:         taskToken,
		identity:          identity,
		service:           service,
		cancelHandler:     cancelHandler,
		heartBeatTimeout:  heartBeatTimeout,
		closeCh:           make(chan struct{}),
		workerStopChannel: workerStopChannel,
	}
}

func (i *orbitInvoker) Heartbeat(details []byte) error {
	return i.internalHeartBeat(details)
}

// BatchHeartbeat sends the first heartbeat immediately and coalesces
// subsequent ones until half the heartbeat timeout has elapsed, so tight
// heartbeat loops don't hammer the service.
func (i *orbitInvoker) BatchHeartbeat(details []byte) error {
	i.Lock()
	if i.hbBatchEndTimer != nil {
		// Another heartbeat is already scheduled; remember the latest details.
		i.detailsToReport = &details
		i.Unlock()
		return nil
	}

	if i.heartBeatTimeout > 0 {
		waitDuration := i.heartBeatTimeout / 2
		i.hbBatchEndTimer = time.NewTimer(waitDuration)
		i.detailsToReport = nil

		go func() {
			select {
			case <-i.hbBatchEndTimer.C:
			case <-i.closeCh:
			}

			i.Lock()
			details := i.detailsToReport
			i.detailsToReport = nil
			i.hbBatchEndTimer.Stop()
			i.hbBatchEndTimer = nil
			i.Unlock()

			if details != nil {
				_ = i.BatchHeartbeat(*details)
			}
		}()
	}
	i.Unlock()

	return i.internalHeartBeat(details)
}

func (i *orbitInvoker) BackgroundHeartbeat() error {
	return i.internalHeartBeat(nil)
}

func (i *orbitInvoker) internalHeartBeat(details []byte) error {
	ctx := context.Background()
	request := &apiv1.RecordActivityTaskHeartbeatRequest{
		TaskToken: i.taskToken,
		Details:   &apiv1.Payload{Data: details},
		Identity:  i.identity,
	}

	var response *apiv1.RecordActivityTaskHeartbeatResponse
	err := backoff.Retry(ctx,
		func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			var err1 error
			response, err1 = i.service.RecordActivityTaskHeartbeat(tchCtx, request, opt...)
			return err1
		}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)

	switch err.(type) {
	case *api.EntityNotExistsError:
		i.cancelHandler(err.Error())
		return NewCanceledError(err.Error())
	}
	if err == nil && response != nil && response.CancelRequested {
		i.cancelHandler("cancel requested")
		return NewCanceledError("cancel requested")
	}
	return err
}

func (i *orbitInvoker) Close(flushBufferedHeartbeat bool) {
	i.Lock()
	defer i.Unlock()
	select {
	case <-i.closeCh:
		return
	default:
	}
	close(i.closeCh)
	if i.hbBatchEndTimer != nil {
		i.hbBatchEndTimer.Stop()
		if flushBufferedHeartbeat && i.detailsToReport != nil {
			details := *i.detailsToReport
			i.detailsToReport = nil
			_ = i.internalHeartBeat(details)
		}
	}
}

func (i *orbitInvoker) SignalWorkflow(ctx context.Context, domain, workflowID, runID, signalName string, signalInput []byte) error {
	return signalWorkflow(ctx, i.service, i.identity, domain, workflowID, runID, signalName, signalInput)
}

func signalWorkflow(ctx context.Context, service api.Interface, identity, domain, workflowID, runID, signalName string, signalInput []byte) error {
	request := &apiv1.SignalWorkflowExecutionRequest{
		Domain: domain,
		WorkflowExecution: &apiv1.WorkflowExecution{
			WorkflowId: workflowID,
			RunId:      runID,
		},
		SignalName: signalName,
		Input:      &apiv1.Payload{Data: signalInput},
		Identity:   identity,
	}
	return backoff.Retry(ctx,
		func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			_, err := service.SignalWorkflowExecution(tchCtx, request, opt...)
			return err
		}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)
}

// recordActivityHeartbeat sends one heartbeat for the activity identified by
// its task token, retrying transient failures.
func recordActivityHeartbeat(ctx context.Context, service api.Interface, identity string, taskToken, details []byte) error {
	request := &apiv1.RecordActivityTaskHeartbeatRequest{
		TaskToken: taskToken,
		Details:   &apiv1.Payload{Data: details},
		Identity:  identity,
	}

	var response *apiv1.RecordActivityTaskHeartbeatResponse
	err := backoff.Retry(ctx,
		func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			var err1 error
			response, err1 = service.RecordActivityTaskHeartbeat(tchCtx, request, opt...)
			return api.ConvertError(err1)
		}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)

	if err == nil && response != nil && response.CancelRequested {
		return NewCanceledError()
	}
	return err
}

// recordActivityHeartbeatByID is recordActivityHeartbeat addressed by IDs.
func recordActivityHeartbeatByID(ctx context.Context, service api.Interface, identity string,
	domain, workflowID, runID, activityID string, details []byte) error {
	request := &apiv1.RecordActivityTaskHeartbeatByIdRequest{
		Domain:     domain,
		WorkflowId: workflowID,
		RunId:      runID,
		ActivityId: activityID,
		Details:    &apiv1.Payload{Data: details},
		Identity:   identity,
	}

	var response *apiv1.RecordActivityTaskHeartbeatByIdResponse
	err := backoff.Retry(ctx,
		func() error {
			tchCtx, cancel, opt := newChannelContext(ctx)
			defer cancel()
			var err1 error
			response, err1 = service.RecordActivityTaskHeartbeatById(tchCtx, request, opt...)
			return api.ConvertError(err1)
		}, createDynamicServiceRetryPolicy(ctx), isServiceTransientError)

	if err == nil && response != nil && response.CancelRequested {
		return NewCanceledError()
	}
	return err
}
