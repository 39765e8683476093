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

// The replay decider. A decision task delivers the full (or, under sticky
// execution, incremental) event history of one workflow execution; this file
// re-executes the workflow function against that history one decision epoch
// at a time and collects the decisions the code newly produced.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common/cache"
	"github.com/orbitflow/orbit-go/internal/common/metrics"
	"github.com/orbitflow/orbit-go/internal/common/util"
)

const (
	defaultStickyCacheSize = 10000

	queryResultTypeAnswered int32 = 1
	queryResultTypeFailed   int32 = 2
)

type (
	// workflowTask wraps a polled decision task together with the iterator
	// used to page in the rest of its history on demand.
	workflowTask struct {
		task            *apiv1.PollForDecisionTaskResponse
		historyIterator historyIterator
	}

	// activityTask wraps a polled activity task.
	activityTask struct {
		task          *apiv1.PollForActivityTaskResponse
		pollStartTime time.Time
	}

	// historyIterator iterates over a workflow execution's event history,
	// one service page at a time.
	historyIterator interface {
		// GetNextPage returns the next page of history events.
		GetNextPage() (*apiv1.History, error)
		// Reset rewinds the iterator to the first event of the execution.
		Reset()
		// HasNextPage returns whether a GetNextPage call would return events.
		HasNextPage() bool
	}

	// workflowTaskHandler processes one decision task and produces either a
	// RespondDecisionTaskCompleted or RespondQueryTaskCompleted request.
	workflowTaskHandler interface {
		ProcessWorkflowTask(task *workflowTask) (response interface{}, err error)
	}

	// activityTaskHandler executes one polled activity task and produces the
	// matching respond request, or nil for asynchronous completion.
	activityTaskHandler interface {
		Execute(taskList string, task *apiv1.PollForActivityTaskResponse) (interface{}, error)
	}

	// history partitions the flat event stream of a decision task into
	// decision epochs: the events leading up to each DecisionTaskStarted,
	// with the markers recorded by the decision that closed the previous
	// epoch surfaced separately so they can be pre-applied.
	history struct {
		workflowTask  *workflowTask
		eventsHandler *workflowExecutionEventHandlerImpl
		loadedEvents  []*apiv1.HistoryEvent
		currentIndex  int
		nextEventID   int64
		next          []*apiv1.HistoryEvent
	}

	// workflowExecutionContextImpl caches one workflow execution's replay
	// state between decision tasks when sticky execution is enabled. It is
	// destroyed on error or eviction; nothing else survives between tasks.
	workflowExecutionContextImpl struct {
		mutex             sync.Mutex
		workflowStartTime time.Time
		workflowInfo      *WorkflowInfo
		wth               *workflowTaskHandlerImpl

		eventHandler *workflowExecutionEventHandlerImpl

		isWorkflowCompleted bool
		result              []byte
		err                 error

		previousStartedEventID int64

		laTaskHandler *localActivityTaskHandler
	}

	// workflowTaskHandlerImpl is the production workflowTaskHandler.
	workflowTaskHandlerImpl struct {
		domain                         string
		metricsScope                   *metrics.TaggedScope
		logger                         *zap.Logger
		identity                       string
		enableLoggingInReplay          bool
		disableStickyExecution         bool
		registry                       *registry
		laTaskHandler                  *localActivityTaskHandler
		nonDeterministicWorkflowPolicy NonDeterministicWorkflowPolicy
		stickyScheduleToStartTimeout   time.Duration
		dataConverter                  DataConverter
		contextPropagators             []ContextPropagator
		tracer                         opentracing.Tracer
		workflowInterceptorFactories   []WorkflowInterceptorFactory
	}

	// activityTaskHandlerImpl is the production activityTaskHandler.
	activityTaskHandlerImpl struct {
		taskListName       string
		identity           string
		service            api.Interface
		metricsScope       *metrics.TaggedScope
		logger             *zap.Logger
		userContext        context.Context
		registry           *registry
		dataConverter      DataConverter
		workerStopCh       <-chan struct{}
		contextPropagators []ContextPropagator
		tracer             opentracing.Tracer
	}
)

// ErrActivityResultPending is returned from an activity function to indicate
// the activity is not yet complete when the function returns; the result
// will be delivered later through Client.CompleteActivity.
var ErrActivityResultPending = errors.New("not error: do not autocomplete, using Client.CompleteActivity() to complete")

var (
	stickyCacheSize = defaultStickyCacheSize
	initCacheOnce   sync.Once
	stickyCache     cache.Cache
	stickyCacheLock sync.Mutex
)

// SetStickyWorkflowCacheSize sets the size of the sticky workflow execution
// cache shared by all workers in the process. It must be called before any
// worker starts; calling it later panics.
func SetStickyWorkflowCacheSize(cacheSize int) {
	stickyCacheLock.Lock()
	defer stickyCacheLock.Unlock()
	if stickyCache != nil {
		panic("cache already created, please set cache size before worker starts")
	}
	stickyCacheSize = cacheSize
}

func getWorkflowCache() cache.Cache {
	initCacheOnce.Do(func() {
		stickyCacheLock.Lock()
		defer stickyCacheLock.Unlock()
		stickyCache = cache.New(stickyCacheSize, &cache.Options{
			RemovedFunc: func(cachedEntity interface{}) {
				wc := cachedEntity.(*workflowExecutionContextImpl)
				wc.onEviction()
			},
		})
	})
	return stickyCache
}

func getWorkflowContext(runID string) *workflowExecutionContextImpl {
	o := getWorkflowCache().Get(runID)
	if o == nil {
		return nil
	}
	return o.(*workflowExecutionContextImpl)
}

func putWorkflowContext(runID string, wc *workflowExecutionContextImpl) *workflowExecutionContextImpl {
	existing := getWorkflowCache().Put(runID, wc)
	if existing != nil {
		return existing.(*workflowExecutionContextImpl)
	}
	return nil
}

func removeWorkflowContext(runID string) {
	getWorkflowCache().Delete(runID)
}

func newHistory(task *workflowTask, eventsHandler *workflowExecutionEventHandlerImpl) *history {
	result := &history{
		workflowTask:  task,
		eventsHandler: eventsHandler,
		loadedEvents:  task.task.History.GetEvents(),
		currentIndex:  0,
	}
	if len(result.loadedEvents) > 0 {
		result.nextEventID = result.loadedEvents[0].GetEventId()
	}
	return result
}

// IsReplayEvent returns whether the event was already known to a previous
// decision task: anything at or before the previously started decision, and
// any event a previous decision itself caused.
func (eh *history) IsReplayEvent(event *apiv1.HistoryEvent) bool {
	return event.GetEventId() <= eh.workflowTask.task.GetPreviousStartedEventId() || isDecisionEvent(event)
}

// isNextDecisionFailed peeks past the current DecisionTaskStarted to see
// whether that decision attempt was abandoned (timed out or failed), in
// which case the boundary is discarded and accumulation continues.
func (eh *history) isNextDecisionFailed() (bool, error) {
	nextIndex := eh.currentIndex + 1
	for nextIndex >= len(eh.loadedEvents) && eh.hasMoreEvents() {
		if err := eh.loadMoreEvents(); err != nil {
			return false, err
		}
	}

	if nextIndex < len(eh.loadedEvents) {
		switch eh.loadedEvents[nextIndex].Attributes.(type) {
		case *apiv1.HistoryEvent_DecisionTaskTimedOutEventAttributes:
			return true, nil
		case *apiv1.HistoryEvent_DecisionTaskFailedEventAttributes:
			return true, nil
		}
	}
	return false, nil
}

func (eh *history) hasMoreEvents() bool {
	historyIterator := eh.workflowTask.historyIterator
	return historyIterator != nil && historyIterator.HasNextPage()
}

func (eh *history) loadMoreEvents() error {
	historyPage, err := eh.workflowTask.historyIterator.GetNextPage()
	if err != nil {
		return err
	}
	eh.loadedEvents = append(eh.loadedEvents, historyPage.GetEvents()...)
	if eh.nextEventID == 0 && len(eh.loadedEvents) > 0 {
		eh.nextEventID = eh.loadedEvents[0].GetEventId()
	}
	return nil
}

// isDecisionEvent returns whether the event is caused by a decision the
// worker emitted, as opposed to an external occurrence.
func isDecisionEvent(event *apiv1.HistoryEvent) bool {
	switch event.Attributes.(type) {
	case *apiv1.HistoryEvent_WorkflowExecutionCompletedEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionFailedEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionCanceledEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes,
		*apiv1.HistoryEvent_ActivityTaskScheduledEventAttributes,
		*apiv1.HistoryEvent_ActivityTaskCancelRequestedEventAttributes,
		*apiv1.HistoryEvent_RequestCancelActivityTaskFailedEventAttributes,
		*apiv1.HistoryEvent_TimerStartedEventAttributes,
		*apiv1.HistoryEvent_TimerCanceledEventAttributes,
		*apiv1.HistoryEvent_CancelTimerFailedEventAttributes,
		*apiv1.HistoryEvent_MarkerRecordedEventAttributes,
		*apiv1.HistoryEvent_StartChildWorkflowExecutionInitiatedEventAttributes,
		*apiv1.HistoryEvent_RequestCancelExternalWorkflowExecutionInitiatedEventAttributes,
		*apiv1.HistoryEvent_SignalExternalWorkflowExecutionInitiatedEventAttributes,
		*apiv1.HistoryEvent_UpsertWorkflowSearchAttributesEventAttributes:
		return true
	}
	return false
}

// isPreloadMarkerEvent identifies markers that must be applied before the
// epoch's other events so side-effect and version reads observe recorded
// values. LocalActivity markers are excluded: they resume the workflow and
// must apply only after the epoch's decision-task boundary.
func isPreloadMarkerEvent(event *apiv1.HistoryEvent) bool {
	attr := event.GetMarkerRecordedEventAttributes()
	return attr != nil && attr.GetMarkerName() != localActivityMarkerName
}

// nextDecisionEvents returns the next epoch together with the preload
// markers found inside it. The epoch ends with (and includes) its
// DecisionTaskStarted event; the decision-caused events of that decision
// open the following epoch.
func (eh *history) nextDecisionEvents() (nextEvents []*apiv1.HistoryEvent, markers []*apiv1.HistoryEvent, err error) {
	if eh.currentIndex == len(eh.loadedEvents) && !eh.hasMoreEvents() {
		return nil, nil, nil
	}

OrderEvents:
	for {
		for eh.currentIndex == len(eh.loadedEvents) && eh.hasMoreEvents() {
			if err = eh.loadMoreEvents(); err != nil {
				return
			}
		}
		if eh.currentIndex == len(eh.loadedEvents) {
			break OrderEvents
		}

		event := eh.loadedEvents[eh.currentIndex]
		eventID := event.GetEventId()
		if eventID != eh.nextEventID {
			err = fmt.Errorf(
				"missing history events, expectedNextEventID=%v but receivedNextEventID=%v",
				eh.nextEventID, eventID)
			return
		}
		eh.nextEventID++

		switch event.Attributes.(type) {
		case *apiv1.HistoryEvent_DecisionTaskStartedEventAttributes:
			isFailed, err1 := eh.isNextDecisionFailed()
			if err1 != nil {
				err = err1
				return
			}
			if !isFailed {
				eh.currentIndex++
				nextEvents = append(nextEvents, event)
				break OrderEvents
			}
			// The decision attempt was abandoned; drop the boundary and
			// keep accumulating into the same epoch.

		case *apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes,
			*apiv1.HistoryEvent_DecisionTaskTimedOutEventAttributes,
			*apiv1.HistoryEvent_DecisionTaskFailedEventAttributes:
			// Epoch bookkeeping only.

		default:
			if isPreloadMarkerEvent(event) {
				markers = append(markers, event)
			}
			nextEvents = append(nextEvents, event)
		}
		eh.currentIndex++
	}

	return nextEvents, markers, nil
}

// NextDecisionEvents yields one epoch per call. The markers returned with an
// epoch belong to the decision that closed it (they live at the head of the
// following epoch) so the caller can apply them before re-running the
// workflow code that recorded them.
func (eh *history) NextDecisionEvents() (result []*apiv1.HistoryEvent, markers []*apiv1.HistoryEvent, err error) {
	if eh.next == nil {
		eh.next, _, err = eh.nextDecisionEvents()
		if err != nil {
			return
		}
	}

	result = eh.next
	if len(result) > 0 {
		eh.next, markers, err = eh.nextDecisionEvents()
	}
	return result, markers, err
}

func newWorkflowTaskHandler(params workerExecutionParameters, registry *registry) workflowTaskHandler {
	return &workflowTaskHandlerImpl{
		domain:                         params.Domain,
		logger:                         params.Logger,
		identity:                       params.Identity,
		enableLoggingInReplay:          params.EnableLoggingInReplay,
		disableStickyExecution:         params.DisableStickyExecution,
		registry:                       registry,
		metricsScope:                   metrics.NewTaggedScope(params.MetricsScope),
		nonDeterministicWorkflowPolicy: params.NonDeterministicWorkflowPolicy,
		stickyScheduleToStartTimeout:   params.StickyScheduleToStartTimeout,
		dataConverter:                  params.DataConverter,
		contextPropagators:             params.ContextPropagators,
		tracer:                         params.Tracer,
		workflowInterceptorFactories:   params.WorkflowInterceptors,
		laTaskHandler: newLocalActivityTaskHandler(params.UserContext,
			metrics.NewTaggedScope(params.MetricsScope), params.Logger,
			params.DataConverter, params.ContextPropagators, params.Tracer),
	}
}

func newWorkflowExecutionContext(
	startTime time.Time,
	workflowInfo *WorkflowInfo,
	taskHandler *workflowTaskHandlerImpl,
) *workflowExecutionContextImpl {
	workflowContext := &workflowExecutionContextImpl{
		workflowStartTime: startTime,
		workflowInfo:      workflowInfo,
		wth:               taskHandler,
		laTaskHandler:     taskHandler.laTaskHandler,
	}
	workflowContext.createEventHandler()
	return workflowContext
}

func (w *workflowExecutionContextImpl) Lock() {
	w.mutex.Lock()
}

func (w *workflowExecutionContextImpl) Unlock(err error) {
	if err != nil || w.err != nil || w.isWorkflowCompleted {
		// Cached state is unusable after an error or completion; the next
		// task for this run must replay from the beginning.
		w.clearState()
		removeWorkflowContext(w.workflowInfo.WorkflowExecution.RunID)
	}
	w.mutex.Unlock()
}

func (w *workflowExecutionContextImpl) completeWorkflow(result []byte, err error) {
	w.isWorkflowCompleted = true
	w.result = result
	w.err = err
}

func (w *workflowExecutionContextImpl) onEviction() {
	// Eviction runs outside the cache lock; grab ours before tearing down.
	w.mutex.Lock()
	w.clearState()
	w.mutex.Unlock()
}

func (w *workflowExecutionContextImpl) IsDestroyed() bool {
	return w.eventHandler == nil
}

func (w *workflowExecutionContextImpl) clearState() {
	w.isWorkflowCompleted = false
	w.result = nil
	w.err = nil
	w.previousStartedEventID = 0

	if w.eventHandler != nil {
		// Close the event handler and cancel any outstanding coroutines.
		w.eventHandler.Close()
		w.eventHandler = nil
	}
}

func (w *workflowExecutionContextImpl) createEventHandler() {
	w.clearState()
	eventHandler := newWorkflowExecutionEventHandler(
		w.workflowInfo,
		w.completeWorkflow,
		w.wth.logger,
		w.wth.enableLoggingInReplay,
		w.wth.metricsScope,
		w.wth.registry,
		w.wth.dataConverter,
		w.wth.contextPropagators,
		w.wth.tracer,
		w.wth.workflowInterceptorFactories,
	)
	w.eventHandler = eventHandler.(*workflowExecutionEventHandlerImpl)
}

func resetHistory(task *apiv1.PollForDecisionTaskResponse, historyIterator historyIterator) (*apiv1.History, error) {
	historyIterator.Reset()
	firstPageHistory, err := historyIterator.GetNextPage()
	if err != nil {
		return nil, err
	}
	task.History = firstPageHistory
	return firstPageHistory, nil
}

func (wth *workflowTaskHandlerImpl) createWorkflowContext(task *workflowTask) (*workflowExecutionContextImpl, error) {
	h := task.task.History
	attributes := h.Events[0].GetWorkflowExecutionStartedEventAttributes()
	if attributes == nil {
		return nil, errors.New("first history event is not WorkflowExecutionStarted")
	}
	taskList := attributes.TaskList
	if taskList == nil {
		return nil, errors.New("nil TaskList in WorkflowExecutionStarted event")
	}

	runID := task.task.WorkflowExecution.RunId
	workflowID := task.task.WorkflowExecution.WorkflowId

	// Setup workflow Info
	var parentWorkflowExecution *WorkflowExecution
	if attributes.ParentWorkflowExecution != nil {
		parentWorkflowExecution = &WorkflowExecution{
			ID:    attributes.ParentWorkflowExecution.WorkflowId,
			RunID: attributes.ParentWorkflowExecution.RunId,
		}
	}
	workflowInfo := &WorkflowInfo{
		WorkflowExecution: WorkflowExecution{
			ID:    workflowID,
			RunID: runID,
		},
		WorkflowType:                        WorkflowType{Name: task.task.WorkflowType.Name},
		TaskListName:                        taskList.Name,
		ExecutionStartToCloseTimeoutSeconds: int32(api.DurationFromProto(attributes.ExecutionStartToCloseTimeout).Seconds()),
		TaskStartToCloseTimeoutSeconds:      int32(api.DurationFromProto(attributes.TaskStartToCloseTimeout).Seconds()),
		Domain:                              wth.domain,
		Attempt:                             attributes.Attempt,
		lastCompletionResult:                attributes.LastCompletionResult.GetData(),
		CronSchedule:                        &attributes.CronSchedule,
		ContinuedExecutionRunID:             &attributes.ContinuedExecutionRunId,
		ParentWorkflowDomain:                &attributes.ParentWorkflowDomain,
		ParentWorkflowExecution:             parentWorkflowExecution,
		Memo:                                attributes.Memo,
		SearchAttributes:                    attributes.SearchAttributes,
		RetryPolicy:                         attributes.RetryPolicy,
	}

	wfStartTime := api.TimeFromProto(h.Events[0].GetEventTime())
	return newWorkflowExecutionContext(wfStartTime, workflowInfo, wth), nil
}

func (wth *workflowTaskHandlerImpl) getOrCreateWorkflowContext(
	task *workflowTask,
) (workflowContext *workflowExecutionContextImpl, err error) {
	defer func() {
		if err == nil && workflowContext != nil && workflowContext.laTaskHandler == nil {
			workflowContext.laTaskHandler = wth.laTaskHandler
		}
		metricsScope := wth.metricsScope.GetTaggedScope(tagWorkflowType, task.task.WorkflowType.Name)
		if workflowContext == nil || workflowContext.IsDestroyed() {
			metricsScope.Counter(metrics.StickyCacheMiss).Inc(1)
		} else {
			metricsScope.Counter(metrics.StickyCacheHit).Inc(1)
		}
	}()

	t := task.task
	runID := t.WorkflowExecution.RunId

	events := t.History.GetEvents()
	isFullHistory := len(events) > 0 && events[0].GetEventId() == 1

	if !wth.disableStickyExecution {
		workflowContext = getWorkflowContext(runID)
	}

	if workflowContext != nil {
		workflowContext.Lock()
		if task.task.Query == nil && workflowContext.previousStartedEventID != t.GetPreviousStartedEventId() {
			// The sticky state has diverged from what the service believes
			// this worker has seen; a full replay is required.
			workflowContext.Unlock(errors.New("stale sticky state"))
			removeWorkflowContext(runID)
			workflowContext = nil
		} else if workflowContext.IsDestroyed() {
			workflowContext.Unlock(nil)
			workflowContext = nil
		}
	}

	if workflowContext == nil {
		if !isFullHistory {
			if task.historyIterator == nil {
				return nil, errors.New("partial history delivered with no iterator to fetch the rest")
			}
			if _, err = resetHistory(t, task.historyIterator); err != nil {
				return nil, err
			}
		}
		if workflowContext, err = wth.createWorkflowContext(task); err != nil {
			return nil, err
		}
		if !wth.disableStickyExecution && task.task.Query == nil {
			workflowContext = putWorkflowContext(runID, workflowContext)
			if workflowContext == nil {
				workflowContext = getWorkflowContext(runID)
			}
		}
		workflowContext.Lock()
		if workflowContext.IsDestroyed() {
			workflowContext.createEventHandler()
		}
	}

	return workflowContext, nil
}

func isInReplay(reorderedEvents []*apiv1.HistoryEvent, reorderedHistory *history) bool {
	lastEvent := reorderedEvents[len(reorderedEvents)-1]
	return reorderedHistory.IsReplayEvent(lastEvent)
}

// ProcessWorkflowTask replays the task's history against the registered
// workflow code and returns the respond request carrying any newly produced
// decisions, or the query answer for a query-only delivery.
func (wth *workflowTaskHandlerImpl) ProcessWorkflowTask(task *workflowTask) (completeRequest interface{}, errRet error) {
	if task == nil || task.task == nil {
		return nil, errors.New("nil workflow task provided")
	}
	t := task.task
	if t.History == nil || len(t.History.Events) == 0 {
		if t.Query == nil {
			return nil, errors.New("nil or empty history")
		}
		// Query-only task against a sticky context needs no events at all.
	}
	if t.Query == nil && len(t.TaskToken) == 0 {
		return nil, errors.New("nil token on workflow task")
	}
	if t.WorkflowExecution == nil || t.WorkflowType == nil {
		return nil, errors.New("workflow task missing execution or type")
	}

	traceLog(func() {
		wth.logger.Debug("Processing new workflow task.",
			zap.String(tagWorkflowType, t.WorkflowType.Name),
			zap.String(tagWorkflowID, t.WorkflowExecution.WorkflowId),
			zap.String(tagRunID, t.WorkflowExecution.RunId),
			zap.Int64("PreviousStartedEventId", t.GetPreviousStartedEventId()))
	})

	workflowContext, err := wth.getOrCreateWorkflowContext(task)
	if err != nil {
		return nil, err
	}

	defer func() {
		workflowContext.Unlock(errRet)
	}()

	response, err := workflowContext.ProcessWorkflowTask(task)
	return response, err
}

// ProcessWorkflowTask is the epoch driver: markers first, then the epoch's
// events, one cooperative scheduler pass at the DecisionTaskStarted
// boundary, then (after a replay epoch) the decision-caused events.
func (w *workflowExecutionContextImpl) ProcessWorkflowTask(task *workflowTask) (completeRequest interface{}, errRet error) {
	t := task.task
	w.previousStartedEventID = t.GetStartedEventId()

	eventHandler := w.eventHandler
	reorderedHistory := newHistory(task, eventHandler)
	var replayDecisions []*apiv1.Decision
	var respondEvents []*apiv1.HistoryEvent

	// A state machine observing an event incompatible with the code path
	// the workflow took panics with its transition history. That is a
	// non-determinism error, not a workflow failure: convert it to an error
	// return so no decisions are produced and the service redelivers.
	defer func() {
		if p := recover(); p != nil {
			w.wth.metricsScope.GetTaggedScope(tagWorkflowType, t.WorkflowType.Name).
				Counter(metrics.NonDeterministicError).Inc(1)
			topLine := fmt.Sprintf("workflow replay for %s [panic]:", t.WorkflowType.Name)
			st := getStackTraceRaw(topLine, 7, 0)
			w.wth.logger.Error("Replay panicked.",
				zap.String(tagWorkflowType, t.WorkflowType.Name),
				zap.String(tagWorkflowID, t.WorkflowExecution.WorkflowId),
				zap.String(tagRunID, t.WorkflowExecution.RunId),
				zap.String(tagPanicError, fmt.Sprintf("%v", p)),
				zap.String(tagPanicStack, st))
			completeRequest, errRet = w.applyNonDeterminismPolicy(t, fmt.Errorf("replay panic: %v", p))
		}
	}()

	skipReplayCheck := t.Query != nil

ProcessEvents:
	for {
		reorderedEvents, markers, err := reorderedHistory.NextDecisionEvents()
		if err != nil {
			return nil, err
		}
		if len(reorderedEvents) == 0 {
			break ProcessEvents
		}

		// Markers recorded by the decision that closes this epoch are
		// applied first so side-effect and version lookups during the
		// upcoming scheduler pass observe their recorded values.
		for _, markerEvent := range markers {
			if err := eventHandler.ProcessEvent(markerEvent, true, false); err != nil {
				return nil, err
			}
			if w.isWorkflowCompleted {
				break ProcessEvents
			}
		}

		for i, event := range reorderedEvents {
			isLastEventReplay := isInReplay(reorderedEvents, reorderedHistory)
			isLast := !isLastEventReplay && i == len(reorderedEvents)-1
			if !skipReplayCheck && isDecisionEvent(event) {
				respondEvents = append(respondEvents, event)
			}
			if isPreloadMarkerEvent(event) {
				// Already applied above.
				continue
			}
			if err := eventHandler.ProcessEvent(event, reorderedHistory.IsReplayEvent(event), isLast); err != nil {
				return nil, err
			}
			if w.isWorkflowCompleted {
				break ProcessEvents
			}
		}

		// Local activity markers resume the workflow coroutine, so they are
		// applied only after the epoch's boundary has been processed.
		for _, markerEvent := range markers {
			if markerEvent.GetMarkerRecordedEventAttributes().GetMarkerName() == localActivityMarkerName {
				if err := eventHandler.ProcessEvent(markerEvent, true, false); err != nil {
					return nil, err
				}
				if w.isWorkflowCompleted {
					break ProcessEvents
				}
			}
		}

		if isInReplay(reorderedEvents, reorderedHistory) {
			// Acknowledge this replay epoch's commands: every state machine
			// with an emittable decision transitions created->decisionSent,
			// and the emitted set is remembered for the determinism check.
			eventDecisions := eventHandler.decisionsHelper.getDecisions(true)
			if len(eventDecisions) > 0 {
				replayDecisions = append(replayDecisions, eventDecisions...)
			}
		}
	}

	// Run any local activities the scheduler pass produced, feeding each
	// result back in as a marker so the workflow resumes within this task.
	if !w.isWorkflowCompleted && t.Query == nil {
		if err := w.executePendingLocalActivities(); err != nil {
			return nil, err
		}
	}

	// When the workflow completed mid-epoch the replay bookkeeping for that
	// epoch is intentionally incomplete; the terminal decision is verified
	// against the close event by the replayer instead.
	if !skipReplayCheck && !w.isWorkflowCompleted {
		if err := matchReplayWithHistory(replayDecisions, respondEvents); err != nil {
			w.wth.metricsScope.GetTaggedScope(tagWorkflowType, t.WorkflowType.Name).
				Counter(metrics.NonDeterministicError).Inc(1)
			w.wth.logger.Error("Replay and history mismatch.",
				zap.String(tagWorkflowType, t.WorkflowType.Name),
				zap.String(tagWorkflowID, t.WorkflowExecution.WorkflowId),
				zap.String(tagRunID, t.WorkflowExecution.RunId),
				zap.Error(err))
			return w.applyNonDeterminismPolicy(t, err)
		}
	}

	if t.Query != nil {
		result, err := eventHandler.ProcessQuery(t.Query.QueryType, t.Query.QueryArgs.GetData())
		return completedQueryTaskRequest(t.TaskToken, result, err), nil
	}

	return w.CompleteDecisionTaskRequest(t), nil
}

// applyNonDeterminismPolicy decides what a detected non-determinism error
// turns into. Blocking (the default) returns the error so no decisions are
// sent and the service redelivers the task; failing converts the error into
// a terminal FailWorkflowExecution decision.
func (w *workflowExecutionContextImpl) applyNonDeterminismPolicy(
	t *apiv1.PollForDecisionTaskResponse,
	err error,
) (interface{}, error) {
	if w.wth.nonDeterministicWorkflowPolicy == NonDeterministicWorkflowPolicyFailWorkflow {
		w.completeWorkflow(nil, err)
		return w.CompleteDecisionTaskRequest(t), nil
	}
	return nil, err
}

func (w *workflowExecutionContextImpl) executePendingLocalActivities() error {
	eventHandler := w.eventHandler
	for !w.isWorkflowCompleted && len(eventHandler.unstartedLaTasks) > 0 {
		for _, activityID := range sortedLaTaskIDs(eventHandler.unstartedLaTasks) {
			task, ok := eventHandler.pendingLaTasks[activityID]
			if !ok {
				delete(eventHandler.unstartedLaTasks, activityID)
				continue
			}
			delete(eventHandler.unstartedLaTasks, activityID)
			lar := w.laTaskHandler.executeLocalActivityTask(task)
			if err := eventHandler.ProcessLocalActivityResult(lar); err != nil {
				return err
			}
			if w.isWorkflowCompleted {
				return nil
			}
		}
	}
	return nil
}

// sortedLaTaskIDs orders pending local activity IDs by their numeric
// sequence so execution order matches scheduling order.
func sortedLaTaskIDs(ids map[string]struct{}) []string {
	result := make([]string, 0, len(ids))
	for id := range ids {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool {
		a, _ := strconv.Atoi(result[i])
		b, _ := strconv.Atoi(result[j])
		return a < b
	})
	return result
}

// CompleteDecisionTaskRequest assembles the respond request: the decisions
// every live state machine currently wants to emit, plus at most one
// terminal decision when the workflow finished during this task.
func (w *workflowExecutionContextImpl) CompleteDecisionTaskRequest(t *apiv1.PollForDecisionTaskResponse) *apiv1.RespondDecisionTaskCompletedRequest {
	eventHandler := w.eventHandler
	decisions := eventHandler.decisionsHelper.getDecisions(true)

	if w.isWorkflowCompleted {
		metricsScope := w.wth.metricsScope.GetTaggedScope(tagWorkflowType, t.WorkflowType.Name)
		closeDecision := w.wth.completeWorkflow(eventHandler, t, w, decisions != nil)
		if closeDecision != nil {
			decisions = append(decisions, closeDecision)
			elapsed := time.Now().Sub(w.workflowStartTime)
			metricsScope.Timer(metrics.WorkflowEndToEndLatency).Record(elapsed)
		}
	}

	request := &apiv1.RespondDecisionTaskCompletedRequest{
		TaskToken:      t.TaskToken,
		Decisions:      decisions,
		Identity:       w.wth.identity,
		BinaryChecksum: getBinaryChecksum(),
	}
	if !w.wth.disableStickyExecution && !w.isWorkflowCompleted {
		request.StickyAttributes = &apiv1.StickyExecutionAttributes{
			WorkerTaskList:         &apiv1.TaskList{Name: getWorkerTaskList(w.workflowInfo.TaskListName), Kind: apiv1.TaskListKindSticky},
			ScheduleToStartTimeout: api.DurationToProto(w.wth.stickyScheduleToStartTimeout),
		}
	}
	return request
}

// completeWorkflow maps the workflow outcome onto exactly one terminal
// decision.
func (wth *workflowTaskHandlerImpl) completeWorkflow(
	eventHandler *workflowExecutionEventHandlerImpl,
	t *apiv1.PollForDecisionTaskResponse,
	workflowContext *workflowExecutionContextImpl,
	hasPendingDecisions bool,
) *apiv1.Decision {
	metricsScope := wth.metricsScope.GetTaggedScope(tagWorkflowType, t.WorkflowType.Name)

	var closeDecision *apiv1.Decision
	if canceledErr, ok := workflowContext.err.(*CanceledError); ok {
		metricsScope.Counter(metrics.WorkflowCanceledCounter).Inc(1)
		closeDecision = &apiv1.Decision{
			Attributes: &apiv1.Decision_CancelWorkflowExecutionDecisionAttributes{
				CancelWorkflowExecutionDecisionAttributes: &apiv1.CancelWorkflowExecutionDecisionAttributes{
					Details: &apiv1.Payload{Data: rawDetails(canceledErr.details)},
				},
			},
		}
	} else if contErr, ok := workflowContext.err.(*ContinueAsNewError); ok {
		metricsScope.Counter(metrics.WorkflowContinueAsNewCounter).Inc(1)
		closeDecision = &apiv1.Decision{
			Attributes: &apiv1.Decision_ContinueAsNewWorkflowExecutionDecisionAttributes{
				ContinueAsNewWorkflowExecutionDecisionAttributes: &apiv1.ContinueAsNewWorkflowExecutionDecisionAttributes{
					WorkflowType: &apiv1.WorkflowType{Name: contErr.params.workflowType.Name},
					Input:        &apiv1.Payload{Data: contErr.params.input},
					TaskList:     &apiv1.TaskList{Name: *contErr.params.taskListName},
					ExecutionStartToCloseTimeout: api.SecondsToProto(*contErr.params.executionStartToCloseTimeoutSeconds),
					TaskStartToCloseTimeout:      api.SecondsToProto(*contErr.params.taskStartToCloseTimeoutSeconds),
					Header:                       contErr.params.header,
				},
			},
		}
	} else if workflowContext.err != nil {
		metricsScope.Counter(metrics.WorkflowFailedCounter).Inc(1)
		reason, details := getErrorDetails(workflowContext.err, wth.dataConverter)
		closeDecision = &apiv1.Decision{
			Attributes: &apiv1.Decision_FailWorkflowExecutionDecisionAttributes{
				FailWorkflowExecutionDecisionAttributes: &apiv1.FailWorkflowExecutionDecisionAttributes{
					Failure: &apiv1.Failure{Reason: reason, Details: details},
				},
			},
		}
	} else if workflowContext.isWorkflowCompleted {
		metricsScope.Counter(metrics.WorkflowCompletedCounter).Inc(1)
		closeDecision = &apiv1.Decision{
			Attributes: &apiv1.Decision_CompleteWorkflowExecutionDecisionAttributes{
				CompleteWorkflowExecutionDecisionAttributes: &apiv1.CompleteWorkflowExecutionDecisionAttributes{
					Result: &apiv1.Payload{Data: workflowContext.result},
				},
			},
		}
	}
	return closeDecision
}

func completedQueryTaskRequest(taskToken []byte, result []byte, err error) *apiv1.RespondQueryTaskCompletedRequest {
	request := &apiv1.RespondQueryTaskCompletedRequest{TaskToken: taskToken}
	if err != nil {
		request.CompletedType = queryResultTypeFailed
		request.ErrorMessage = err.Error()
	} else {
		request.CompletedType = queryResultTypeAnswered
		request.QueryResult = &apiv1.Payload{Data: result}
	}
	return request
}

// matchReplayWithHistory verifies that the decisions produced while
// replaying equal, in order and in kind, the decision events the history
// records. Any divergence means the workflow code no longer deterministically
// reproduces its own past.
func matchReplayWithHistory(replayDecisions []*apiv1.Decision, historyEvents []*apiv1.HistoryEvent) error {
	di := 0
	hi := 0
	for hi < len(historyEvents) {
		e := historyEvents[hi]
		if skippedMatchEvent(e) {
			hi++
			continue
		}
		if di >= len(replayDecisions) {
			return fmt.Errorf("nondeterministic workflow: missing replay decision for %s", util.HistoryEventToString(e))
		}
		d := replayDecisions[di]
		if !isDecisionMatchEvent(d, e) {
			return fmt.Errorf("nondeterministic workflow: history event is %s, replay decision is %s",
				util.HistoryEventToString(e), decisionToString(d))
		}
		di++
		hi++
	}
	// Cancellation requests are emitted without a one-to-one history event
	// in some interleavings; remaining decisions of that kind are benign.
	for ; di < len(replayDecisions); di++ {
		d := replayDecisions[di]
		switch d.Attributes.(type) {
		case *apiv1.Decision_RequestCancelActivityTaskDecisionAttributes,
			*apiv1.Decision_CancelTimerDecisionAttributes,
			*apiv1.Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes:
			continue
		}
		return fmt.Errorf("nondeterministic workflow: extra replay decision %s", decisionToString(d))
	}
	return nil
}

// skippedMatchEvent filters decision events that have no replay-side
// counterpart in the decisions list: completions delivered by the service
// (timer canceled etc.) and local activity markers.
func skippedMatchEvent(e *apiv1.HistoryEvent) bool {
	switch e.Attributes.(type) {
	case *apiv1.HistoryEvent_ActivityTaskCancelRequestedEventAttributes,
		*apiv1.HistoryEvent_RequestCancelActivityTaskFailedEventAttributes,
		*apiv1.HistoryEvent_TimerCanceledEventAttributes,
		*apiv1.HistoryEvent_CancelTimerFailedEventAttributes:
		return true
	case *apiv1.HistoryEvent_MarkerRecordedEventAttributes:
		return e.GetMarkerRecordedEventAttributes().GetMarkerName() == localActivityMarkerName
	}
	return false
}

func isDecisionMatchEvent(d *apiv1.Decision, e *apiv1.HistoryEvent) bool {
	switch dAttr := d.Attributes.(type) {
	case *apiv1.Decision_ScheduleActivityTaskDecisionAttributes:
		eAttr := e.GetActivityTaskScheduledEventAttributes()
		return eAttr != nil &&
			eAttr.GetActivityId() == dAttr.ScheduleActivityTaskDecisionAttributes.GetActivityId() &&
			eAttr.ActivityType.Name == dAttr.ScheduleActivityTaskDecisionAttributes.ActivityType.Name

	case *apiv1.Decision_StartTimerDecisionAttributes:
		eAttr := e.GetTimerStartedEventAttributes()
		return eAttr != nil && eAttr.GetTimerId() == dAttr.StartTimerDecisionAttributes.GetTimerId()

	case *apiv1.Decision_RecordMarkerDecisionAttributes:
		eAttr := e.GetMarkerRecordedEventAttributes()
		return eAttr != nil && eAttr.GetMarkerName() == dAttr.RecordMarkerDecisionAttributes.GetMarkerName()

	case *apiv1.Decision_StartChildWorkflowExecutionDecisionAttributes:
		eAttr := e.GetStartChildWorkflowExecutionInitiatedEventAttributes()
		return eAttr != nil &&
			eAttr.WorkflowType.Name == dAttr.StartChildWorkflowExecutionDecisionAttributes.WorkflowType.Name

	case *apiv1.Decision_RequestCancelExternalWorkflowExecutionDecisionAttributes:
		eAttr := e.GetRequestCancelExternalWorkflowExecutionInitiatedEventAttributes()
		return eAttr != nil

	case *apiv1.Decision_SignalExternalWorkflowExecutionDecisionAttributes:
		eAttr := e.GetSignalExternalWorkflowExecutionInitiatedEventAttributes()
		return eAttr != nil &&
			eAttr.SignalName == dAttr.SignalExternalWorkflowExecutionDecisionAttributes.SignalName

	case *apiv1.Decision_UpsertWorkflowSearchAttributesDecisionAttributes:
		return e.GetUpsertWorkflowSearchAttributesEventAttributes() != nil

	case *apiv1.Decision_CompleteWorkflowExecutionDecisionAttributes:
		return e.GetWorkflowExecutionCompletedEventAttributes() != nil

	case *apiv1.Decision_FailWorkflowExecutionDecisionAttributes:
		return e.GetWorkflowExecutionFailedEventAttributes() != nil

	case *apiv1.Decision_CancelWorkflowExecutionDecisionAttributes:
		return e.GetWorkflowExecutionCanceledEventAttributes() != nil

	case *apiv1.Decision_ContinueAsNewWorkflowExecutionDecisionAttributes:
		return e.GetWorkflowExecutionContinuedAsNewEventAttributes() != nil
	}
	return false
}

func decisionToString(d *apiv1.Decision) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", d.Attributes), "*apiv1.Decision_")
}

// lastPartOfName strips the package qualifier from a fully-qualified
// function name, used when comparing activity type names across markers.
func lastPartOfName(name string) string {
	lastDotIdx := strings.LastIndex(name, ".")
	if lastDotIdx < 0 || lastDotIdx == len(name)-1 {
		return name
	}
	return name[lastDotIdx+1:]
}

func newActivityTaskHandler(service api.Interface, params workerExecutionParameters, registry *registry) activityTaskHandler {
	return &activityTaskHandlerImpl{
		taskListName:       params.TaskList,
		identity:           params.Identity,
		service:            service,
		logger:             params.Logger,
		metricsScope:       metrics.NewTaggedScope(params.MetricsScope),
		userContext:        params.UserContext,
		registry:           registry,
		dataConverter:      params.DataConverter,
		workerStopCh:       params.WorkerStopChannel,
		contextPropagators: params.ContextPropagators,
		tracer:             params.Tracer,
	}
}

// Execute runs the registered activity function for the polled task and
// converts its outcome into the matching respond request. A nil response
// with nil error means the activity opted into asynchronous completion.
func (ath *activityTaskHandlerImpl) Execute(taskList string, t *apiv1.PollForActivityTaskResponse) (result interface{}, err error) {
	traceLog(func() {
		ath.logger.Debug("Processing new activity task",
			zap.String(tagWorkflowID, t.WorkflowExecution.WorkflowId),
			zap.String(tagRunID, t.WorkflowExecution.RunId),
			zap.String(tagActivityType, t.ActivityType.Name))
	})

	rootCtx := ath.userContext
	if rootCtx == nil {
		rootCtx = context.Background()
	}

	invoker := newServiceInvoker(t.TaskToken, ath.identity, ath.service, func(detail string) {
		// The activity panicked or its heartbeat observed cancellation.
	}, api.DurationFromProto(t.HeartbeatTimeout), ath.workerStopCh)
	defer invoker.Close(false)

	metricsScope := ath.metricsScope.GetTaggedScope(tagActivityType, t.ActivityType.Name)
	ctx := WithActivityTask(rootCtx, t, taskList, invoker, ath.logger, metricsScope,
		ath.dataConverter, ath.workerStopCh, ath.contextPropagators, ath.tracer)

	activityType := t.ActivityType.Name
	activityImplementation, ok := ath.registry.GetActivity(activityType)
	if !ok {
		supported := strings.Join(activityTypeNames(ath.registry.getRegisteredActivities()), ", ")
		ath.logger.Error("Activity type not registered with worker.",
			zap.String(tagActivityType, activityType),
			zap.String("SupportedTypes", supported))
		return convertActivityResultToRespondRequest(ath.identity, t.TaskToken, nil,
			fmt.Errorf("unable to find activityType=%v. Supported types: [%v]", activityType, supported),
			ath.dataConverter), nil
	}

	defer func() {
		if p := recover(); p != nil {
			topLine := fmt.Sprintf("activity for %s [panic]:", ath.taskListName)
			st := getStackTraceRaw(topLine, 7, 0)
			ath.logger.Error("Activity panic.",
				zap.String(tagWorkflowID, t.WorkflowExecution.WorkflowId),
				zap.String(tagRunID, t.WorkflowExecution.RunId),
				zap.String(tagActivityType, activityType),
				zap.String(tagPanicError, fmt.Sprintf("%v", p)),
				zap.String(tagPanicStack, st))
			metricsScope.Counter(metrics.ActivityTaskPanicCounter).Inc(1)
			panicErr := newWorkflowPanicError(p, st)
			result = convertActivityResultToRespondRequest(ath.identity, t.TaskToken, nil, panicErr, ath.dataConverter)
			err = nil
		}
	}()

	executionLatency := time.Now()
	output, err := activityImplementation.Execute(ctx, t.Input.GetData())
	metricsScope.Timer(metrics.ActivityExecutionLatency).Record(time.Now().Sub(executionLatency))

	if err == ErrActivityResultPending {
		return nil, nil
	}
	if err == nil {
		metricsScope.Counter(metrics.ActivityTaskCompletedCounter).Inc(1)
	} else {
		metricsScope.Counter(metrics.ActivityTaskFailedCounter).Inc(1)
	}
	return convertActivityResultToRespondRequest(ath.identity, t.TaskToken, output, err, ath.dataConverter), nil
}

func activityTypeNames(activities []activity) []string {
	result := make([]string, 0, len(activities))
	for _, a := range activities {
		result = append(result, a.ActivityType().Name)
	}
	return result
}

func convertActivityResultToRespondRequest(identity string, taskToken, result []byte, err error, dataConverter DataConverter) interface{} {
	if err == ErrActivityResultPending {
		return nil
	}

	if err == nil {
		return &apiv1.RespondActivityTaskCompletedRequest{
			TaskToken: taskToken,
			Result:    &apiv1.Payload{Data: result},
			Identity:  identity,
		}
	}

	if canceledErr, ok := err.(*CanceledError); ok {
		return &apiv1.RespondActivityTaskCanceledRequest{
			TaskToken: taskToken,
			Details:   &apiv1.Payload{Data: rawDetails(canceledErr.details)},
			Identity:  identity,
		}
	}

	reason, details := getErrorDetails(err, dataConverter)
	return &apiv1.RespondActivityTaskFailedRequest{
		TaskToken: taskToken,
		Failure:   &apiv1.Failure{Reason: reason, Details: details},
		Identity:  identity,
	}
}

// getWorkerTaskList returns the sticky task list name for this worker
// process, derived from the base task list and a process-unique suffix.
func getWorkerTaskList(baseTaskList string) string {
	return fmt.Sprintf("%s:%s", baseTaskList, getWorkerIdentity(baseTaskList))
}
