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

// WorkflowReplayer replays recorded histories against current workflow code
// so CI can catch non-deterministic changes before they reach production.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"math"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common"
)

const (
	replayDomainName       = "ReplayDomain"
	replayTaskListName     = "ReplayTaskList"
	replayWorkerIdentity   = "replayID"
	replayPreviousStarted  = math.MaxInt64
)

type (
	// ReplayOptions configures a WorkflowReplayer the same way
	// WorkerOptions configures a live worker, for the subset of knobs that
	// affect replay.
	ReplayOptions struct {
		DataConverter                     DataConverter
		ContextPropagators                []ContextPropagator
		WorkflowInterceptorChainFactories []WorkflowInterceptorFactory
		Tracer                            opentracing.Tracer
	}

	// WorkflowReplayer replays histories against registered workflow code.
	WorkflowReplayer struct {
		registry *registry
		options  ReplayOptions
	}
)

// NewWorkflowReplayer creates a WorkflowReplayer with default options.
func NewWorkflowReplayer() *WorkflowReplayer {
	return NewWorkflowReplayerWithOptions(ReplayOptions{})
}

// NewWorkflowReplayerWithOptions creates a WorkflowReplayer with the given
// options.
func NewWorkflowReplayerWithOptions(options ReplayOptions) *WorkflowReplayer {
	return &WorkflowReplayer{
		registry: newRegistry(),
		options:  options,
	}
}

// RegisterWorkflow registers a workflow function for replay under its
// function name.
func (r *WorkflowReplayer) RegisterWorkflow(w interface{}) {
	r.registry.RegisterWorkflow(w)
}

// RegisterWorkflowWithOptions registers a workflow function for replay with
// the given options.
func (r *WorkflowReplayer) RegisterWorkflowWithOptions(w interface{}, options RegisterWorkflowOptions) {
	r.registry.RegisterWorkflowWithOptions(w, options)
}

// ReplayWorkflowHistory replays the given full history. An error means the
// registered workflow code no longer deterministically reproduces it.
func (r *WorkflowReplayer) ReplayWorkflowHistory(logger *zap.Logger, history *apiv1.History) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return r.replayWorkflowHistory(logger, nil, replayDomainName, history)
}

// ReplayWorkflowHistoryFromJSONFile replays a history stored as a JSON
// event list, the format GetWorkflowHistory dumps.
func (r *WorkflowReplayer) ReplayWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string) error {
	return r.ReplayPartialWorkflowHistoryFromJSONFile(logger, jsonfileName, 0)
}

// ReplayPartialWorkflowHistoryFromJSONFile replays the history prefix up to
// and including lastEventID (0 means the whole file).
func (r *WorkflowReplayer) ReplayPartialWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string, lastEventID int64) error {
	history, err := extractHistoryFromFile(jsonfileName, lastEventID)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return r.replayWorkflowHistory(logger, nil, replayDomainName, history)
}

// ReplayWorkflowExecution fetches the full history of the given execution
// from the service and replays it.
func (r *WorkflowReplayer) ReplayWorkflowExecution(
	ctx context.Context,
	service api.Interface,
	logger *zap.Logger,
	domain string,
	execution WorkflowExecution,
) error {
	sharedExecution := &apiv1.WorkflowExecution{
		WorkflowId: execution.ID,
		RunId:      execution.RunID,
	}
	request := &apiv1.GetWorkflowExecutionHistoryRequest{
		Domain:            domain,
		WorkflowExecution: sharedExecution,
	}
	var history apiv1.History
	for {
		response, err := service.GetWorkflowExecutionHistory(ctx, request)
		if err != nil {
			return err
		}
		history.Events = append(history.Events, response.History.GetEvents()...)
		if len(response.NextPageToken) == 0 {
			break
		}
		request.NextPageToken = response.NextPageToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return r.replayWorkflowHistory(logger, service, domain, &history)
}

func (r *WorkflowReplayer) replayWorkflowHistory(logger *zap.Logger, service api.Interface, domain string, history *apiv1.History) error {
	events := history.GetEvents()
	if len(events) == 0 {
		return errors.New("empty history")
	}
	first := events[0]
	attr := first.GetWorkflowExecutionStartedEventAttributes()
	if attr == nil {
		return errors.New("first event is not WorkflowExecutionStarted")
	}
	last := events[len(events)-1]

	execution := &apiv1.WorkflowExecution{
		WorkflowId: "ReplayId",
		RunId:      "ReplayRunId",
	}

	task := &apiv1.PollForDecisionTaskResponse{
		TaskToken:              []byte("ReplayTaskToken"),
		WorkflowType:           attr.WorkflowType,
		WorkflowExecution:      execution,
		History:                history,
		PreviousStartedEventId: common.Int64Ptr(replayPreviousStarted),
	}

	params := workerExecutionParameters{
		Domain:                 domain,
		TaskList:               replayTaskListName,
		Identity:               replayWorkerIdentity,
		Logger:                 logger,
		MetricsScope:           tally.NoopScope,
		DisableStickyExecution: true,
		DataConverter:          r.options.DataConverter,
		ContextPropagators:     r.options.ContextPropagators,
		Tracer:                 r.options.Tracer,
		WorkflowInterceptors:   r.options.WorkflowInterceptorChainFactories,
	}
	if params.DataConverter == nil {
		params.DataConverter = getDefaultDataConverter()
	}

	taskHandler := newWorkflowTaskHandler(params, r.registry)
	response, err := taskHandler.ProcessWorkflowTask(&workflowTask{task: task})
	if err != nil {
		return err
	}

	if !isWorkflowCloseEvent(last) {
		// The recorded run was still open; replaying without divergence is
		// all that can be verified.
		return nil
	}

	completedRequest, ok := response.(*apiv1.RespondDecisionTaskCompletedRequest)
	if !ok {
		return fmt.Errorf("unexpected replay response type %T", response)
	}
	for _, d := range completedRequest.Decisions {
		if isDecisionMatchEvent(d, last) {
			return nil
		}
	}
	return fmt.Errorf("replay workflow doesn't return the same result as the last event, resp: %v, last: %v",
		completedRequest, last)
}

func isWorkflowCloseEvent(e *apiv1.HistoryEvent) bool {
	switch e.Attributes.(type) {
	case *apiv1.HistoryEvent_WorkflowExecutionCompletedEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionFailedEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionCanceledEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionTimedOutEventAttributes,
		*apiv1.HistoryEvent_WorkflowExecutionTerminatedEventAttributes:
		return true
	}
	return false
}

// jsonHistoryEvent mirrors HistoryEvent for JSON files: the oneof becomes a
// set of optional attribute fields, exactly one of which is present.
type jsonHistoryEvent struct {
	EventId   int64            `json:"eventId"`
	EventTime *apiv1.Timestamp `json:"eventTime,omitempty"`
	Version   int64            `json:"version,omitempty"`
	TaskId    int64            `json:"taskId,omitempty"`

	WorkflowExecutionStartedEventAttributes                        *apiv1.WorkflowExecutionStartedEventAttributes                        `json:"workflowExecutionStartedEventAttributes,omitempty"`
	WorkflowExecutionCompletedEventAttributes                      *apiv1.WorkflowExecutionCompletedEventAttributes                      `json:"workflowExecutionCompletedEventAttributes,omitempty"`
	WorkflowExecutionFailedEventAttributes                         *apiv1.WorkflowExecutionFailedEventAttributes                         `json:"workflowExecutionFailedEventAttributes,omitempty"`
	WorkflowExecutionTimedOutEventAttributes                       *apiv1.WorkflowExecutionTimedOutEventAttributes                       `json:"workflowExecutionTimedOutEventAttributes,omitempty"`
	WorkflowExecutionCanceledEventAttributes                       *apiv1.WorkflowExecutionCanceledEventAttributes                       `json:"workflowExecutionCanceledEventAttributes,omitempty"`
	WorkflowExecutionTerminatedEventAttributes                     *apiv1.WorkflowExecutionTerminatedEventAttributes                     `json:"workflowExecutionTerminatedEventAttributes,omitempty"`
	WorkflowExecutionContinuedAsNewEventAttributes                 *apiv1.WorkflowExecutionContinuedAsNewEventAttributes                 `json:"workflowExecutionContinuedAsNewEventAttributes,omitempty"`
	WorkflowExecutionSignaledEventAttributes                       *apiv1.WorkflowExecutionSignaledEventAttributes                       `json:"workflowExecutionSignaledEventAttributes,omitempty"`
	WorkflowExecutionCancelRequestedEventAttributes                *apiv1.WorkflowExecutionCancelRequestedEventAttributes                `json:"workflowExecutionCancelRequestedEventAttributes,omitempty"`
	DecisionTaskScheduledEventAttributes                           *apiv1.DecisionTaskScheduledEventAttributes                           `json:"decisionTaskScheduledEventAttributes,omitempty"`
	DecisionTaskStartedEventAttributes                             *apiv1.DecisionTaskStartedEventAttributes                             `json:"decisionTaskStartedEventAttributes,omitempty"`
	DecisionTaskCompletedEventAttributes                           *apiv1.DecisionTaskCompletedEventAttributes                           `json:"decisionTaskCompletedEventAttributes,omitempty"`
	DecisionTaskTimedOutEventAttributes                            *apiv1.DecisionTaskTimedOutEventAttributes                            `json:"decisionTaskTimedOutEventAttributes,omitempty"`
	DecisionTaskFailedEventAttributes                              *apiv1.DecisionTaskFailedEventAttributes                              `json:"decisionTaskFailedEventAttributes,omitempty"`
	ActivityTaskScheduledEventAttributes                           *apiv1.ActivityTaskScheduledEventAttributes                           `json:"activityTaskScheduledEventAttributes,omitempty"`
	ActivityTaskStartedEventAttributes                             *apiv1.ActivityTaskStartedEventAttributes                             `json:"activityTaskStartedEventAttributes,omitempty"`
	ActivityTaskCompletedEventAttributes                           *apiv1.ActivityTaskCompletedEventAttributes                           `json:"activityTaskCompletedEventAttributes,omitempty"`
	ActivityTaskFailedEventAttributes                              *apiv1.ActivityTaskFailedEventAttributes                              `json:"activityTaskFailedEventAttributes,omitempty"`
	ActivityTaskTimedOutEventAttributes                            *apiv1.ActivityTaskTimedOutEventAttributes                            `json:"activityTaskTimedOutEventAttributes,omitempty"`
	ActivityTaskCancelRequestedEventAttributes                     *apiv1.ActivityTaskCancelRequestedEventAttributes                     `json:"activityTaskCancelRequestedEventAttributes,omitempty"`
	RequestCancelActivityTaskFailedEventAttributes                 *apiv1.RequestCancelActivityTaskFailedEventAttributes                 `json:"requestCancelActivityTaskFailedEventAttributes,omitempty"`
	ActivityTaskCanceledEventAttributes                            *apiv1.ActivityTaskCanceledEventAttributes                            `json:"activityTaskCanceledEventAttributes,omitempty"`
	TimerStartedEventAttributes                                    *apiv1.TimerStartedEventAttributes                                    `json:"timerStartedEventAttributes,omitempty"`
	TimerFiredEventAttributes                                      *apiv1.TimerFiredEventAttributes                                      `json:"timerFiredEventAttributes,omitempty"`
	TimerCanceledEventAttributes                                   *apiv1.TimerCanceledEventAttributes                                   `json:"timerCanceledEventAttributes,omitempty"`
	CancelTimerFailedEventAttributes                               *apiv1.CancelTimerFailedEventAttributes                               `json:"cancelTimerFailedEventAttributes,omitempty"`
	MarkerRecordedEventAttributes                                  *apiv1.MarkerRecordedEventAttributes                                  `json:"markerRecordedEventAttributes,omitempty"`
	RequestCancelExternalWorkflowExecutionInitiatedEventAttributes *apiv1.RequestCancelExternalWorkflowExecutionInitiatedEventAttributes `json:"requestCancelExternalWorkflowExecutionInitiatedEventAttributes,omitempty"`
	RequestCancelExternalWorkflowExecutionFailedEventAttributes    *apiv1.RequestCancelExternalWorkflowExecutionFailedEventAttributes    `json:"requestCancelExternalWorkflowExecutionFailedEventAttributes,omitempty"`
	ExternalWorkflowExecutionCancelRequestedEventAttributes        *apiv1.ExternalWorkflowExecutionCancelRequestedEventAttributes        `json:"externalWorkflowExecutionCancelRequestedEventAttributes,omitempty"`
	SignalExternalWorkflowExecutionInitiatedEventAttributes        *apiv1.SignalExternalWorkflowExecutionInitiatedEventAttributes        `json:"signalExternalWorkflowExecutionInitiatedEventAttributes,omitempty"`
	SignalExternalWorkflowExecutionFailedEventAttributes           *apiv1.SignalExternalWorkflowExecutionFailedEventAttributes           `json:"signalExternalWorkflowExecutionFailedEventAttributes,omitempty"`
	ExternalWorkflowExecutionSignaledEventAttributes               *apiv1.ExternalWorkflowExecutionSignaledEventAttributes               `json:"externalWorkflowExecutionSignaledEventAttributes,omitempty"`
	StartChildWorkflowExecutionInitiatedEventAttributes            *apiv1.StartChildWorkflowExecutionInitiatedEventAttributes            `json:"startChildWorkflowExecutionInitiatedEventAttributes,omitempty"`
	StartChildWorkflowExecutionFailedEventAttributes               *apiv1.StartChildWorkflowExecutionFailedEventAttributes               `json:"startChildWorkflowExecutionFailedEventAttributes,omitempty"`
	ChildWorkflowExecutionStartedEventAttributes                   *apiv1.ChildWorkflowExecutionStartedEventAttributes                   `json:"childWorkflowExecutionStartedEventAttributes,omitempty"`
	ChildWorkflowExecutionCompletedEventAttributes                 *apiv1.ChildWorkflowExecutionCompletedEventAttributes                 `json:"childWorkflowExecutionCompletedEventAttributes,omitempty"`
	ChildWorkflowExecutionFailedEventAttributes                    *apiv1.ChildWorkflowExecutionFailedEventAttributes                    `json:"childWorkflowExecutionFailedEventAttributes,omitempty"`
	ChildWorkflowExecutionCanceledEventAttributes                  *apiv1.ChildWorkflowExecutionCanceledEventAttributes                  `json:"childWorkflowExecutionCanceledEventAttributes,omitempty"`
	ChildWorkflowExecutionTimedOutEventAttributes                  *apiv1.ChildWorkflowExecutionTimedOutEventAttributes                  `json:"childWorkflowExecutionTimedOutEventAttributes,omitempty"`
	ChildWorkflowExecutionTerminatedEventAttributes                *apiv1.ChildWorkflowExecutionTerminatedEventAttributes                `json:"childWorkflowExecutionTerminatedEventAttributes,omitempty"`
	UpsertWorkflowSearchAttributesEventAttributes                  *apiv1.UpsertWorkflowSearchAttributesEventAttributes                  `json:"upsertWorkflowSearchAttributesEventAttributes,omitempty"`
}

func (j *jsonHistoryEvent) toHistoryEvent() (*apiv1.HistoryEvent, error) {
	event := &apiv1.HistoryEvent{
		EventId:   j.EventId,
		EventTime: j.EventTime,
		Version:   j.Version,
		TaskId:    j.TaskId,
	}
	switch {
	case j.WorkflowExecutionStartedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionStartedEventAttributes{WorkflowExecutionStartedEventAttributes: j.WorkflowExecutionStartedEventAttributes}
	case j.WorkflowExecutionCompletedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionCompletedEventAttributes{WorkflowExecutionCompletedEventAttributes: j.WorkflowExecutionCompletedEventAttributes}
	case j.WorkflowExecutionFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionFailedEventAttributes{WorkflowExecutionFailedEventAttributes: j.WorkflowExecutionFailedEventAttributes}
	case j.WorkflowExecutionTimedOutEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionTimedOutEventAttributes{WorkflowExecutionTimedOutEventAttributes: j.WorkflowExecutionTimedOutEventAttributes}
	case j.WorkflowExecutionCanceledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionCanceledEventAttributes{WorkflowExecutionCanceledEventAttributes: j.WorkflowExecutionCanceledEventAttributes}
	case j.WorkflowExecutionTerminatedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionTerminatedEventAttributes{WorkflowExecutionTerminatedEventAttributes: j.WorkflowExecutionTerminatedEventAttributes}
	case j.WorkflowExecutionContinuedAsNewEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionContinuedAsNewEventAttributes{WorkflowExecutionContinuedAsNewEventAttributes: j.WorkflowExecutionContinuedAsNewEventAttributes}
	case j.WorkflowExecutionSignaledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionSignaledEventAttributes{WorkflowExecutionSignaledEventAttributes: j.WorkflowExecutionSignaledEventAttributes}
	case j.WorkflowExecutionCancelRequestedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionCancelRequestedEventAttributes{WorkflowExecutionCancelRequestedEventAttributes: j.WorkflowExecutionCancelRequestedEventAttributes}
	case j.DecisionTaskScheduledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes{DecisionTaskScheduledEventAttributes: j.DecisionTaskScheduledEventAttributes}
	case j.DecisionTaskStartedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskStartedEventAttributes{DecisionTaskStartedEventAttributes: j.DecisionTaskStartedEventAttributes}
	case j.DecisionTaskCompletedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskCompletedEventAttributes{DecisionTaskCompletedEventAttributes: j.DecisionTaskCompletedEventAttributes}
	case j.DecisionTaskTimedOutEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskTimedOutEventAttributes{DecisionTaskTimedOutEventAttributes: j.DecisionTaskTimedOutEventAttributes}
	case j.DecisionTaskFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskFailedEventAttributes{DecisionTaskFailedEventAttributes: j.DecisionTaskFailedEventAttributes}
	case j.ActivityTaskScheduledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskScheduledEventAttributes{ActivityTaskScheduledEventAttributes: j.ActivityTaskScheduledEventAttributes}
	case j.ActivityTaskStartedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskStartedEventAttributes{ActivityTaskStartedEventAttributes: j.ActivityTaskStartedEventAttributes}
	case j.ActivityTaskCompletedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskCompletedEventAttributes{ActivityTaskCompletedEventAttributes: j.ActivityTaskCompletedEventAttributes}
	case j.ActivityTaskFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskFailedEventAttributes{ActivityTaskFailedEventAttributes: j.ActivityTaskFailedEventAttributes}
	case j.ActivityTaskTimedOutEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskTimedOutEventAttributes{ActivityTaskTimedOutEventAttributes: j.ActivityTaskTimedOutEventAttributes}
	case j.ActivityTaskCancelRequestedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskCancelRequestedEventAttributes{ActivityTaskCancelRequestedEventAttributes: j.ActivityTaskCancelRequestedEventAttributes}
	case j.RequestCancelActivityTaskFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_RequestCancelActivityTaskFailedEventAttributes{RequestCancelActivityTaskFailedEventAttributes: j.RequestCancelActivityTaskFailedEventAttributes}
	case j.ActivityTaskCanceledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskCanceledEventAttributes{ActivityTaskCanceledEventAttributes: j.ActivityTaskCanceledEventAttributes}
	case j.TimerStartedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_TimerStartedEventAttributes{TimerStartedEventAttributes: j.TimerStartedEventAttributes}
	case j.TimerFiredEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_TimerFiredEventAttributes{TimerFiredEventAttributes: j.TimerFiredEventAttributes}
	case j.TimerCanceledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_TimerCanceledEventAttributes{TimerCanceledEventAttributes: j.TimerCanceledEventAttributes}
	case j.CancelTimerFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_CancelTimerFailedEventAttributes{CancelTimerFailedEventAttributes: j.CancelTimerFailedEventAttributes}
	case j.MarkerRecordedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_MarkerRecordedEventAttributes{MarkerRecordedEventAttributes: j.MarkerRecordedEventAttributes}
	case j.RequestCancelExternalWorkflowExecutionInitiatedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_RequestCancelExternalWorkflowExecutionInitiatedEventAttributes{RequestCancelExternalWorkflowExecutionInitiatedEventAttributes: j.RequestCancelExternalWorkflowExecutionInitiatedEventAttributes}
	case j.RequestCancelExternalWorkflowExecutionFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_RequestCancelExternalWorkflowExecutionFailedEventAttributes{RequestCancelExternalWorkflowExecutionFailedEventAttributes: j.RequestCancelExternalWorkflowExecutionFailedEventAttributes}
	case j.ExternalWorkflowExecutionCancelRequestedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ExternalWorkflowExecutionCancelRequestedEventAttributes{ExternalWorkflowExecutionCancelRequestedEventAttributes: j.ExternalWorkflowExecutionCancelRequestedEventAttributes}
	case j.SignalExternalWorkflowExecutionInitiatedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_SignalExternalWorkflowExecutionInitiatedEventAttributes{SignalExternalWorkflowExecutionInitiatedEventAttributes: j.SignalExternalWorkflowExecutionInitiatedEventAttributes}
	case j.SignalExternalWorkflowExecutionFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_SignalExternalWorkflowExecutionFailedEventAttributes{SignalExternalWorkflowExecutionFailedEventAttributes: j.SignalExternalWorkflowExecutionFailedEventAttributes}
	case j.ExternalWorkflowExecutionSignaledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ExternalWorkflowExecutionSignaledEventAttributes{ExternalWorkflowExecutionSignaledEventAttributes: j.ExternalWorkflowExecutionSignaledEventAttributes}
	case j.StartChildWorkflowExecutionInitiatedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_StartChildWorkflowExecutionInitiatedEventAttributes{StartChildWorkflowExecutionInitiatedEventAttributes: j.StartChildWorkflowExecutionInitiatedEventAttributes}
	case j.StartChildWorkflowExecutionFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_StartChildWorkflowExecutionFailedEventAttributes{StartChildWorkflowExecutionFailedEventAttributes: j.StartChildWorkflowExecutionFailedEventAttributes}
	case j.ChildWorkflowExecutionStartedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionStartedEventAttributes{ChildWorkflowExecutionStartedEventAttributes: j.ChildWorkflowExecutionStartedEventAttributes}
	case j.ChildWorkflowExecutionCompletedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionCompletedEventAttributes{ChildWorkflowExecutionCompletedEventAttributes: j.ChildWorkflowExecutionCompletedEventAttributes}
	case j.ChildWorkflowExecutionFailedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionFailedEventAttributes{ChildWorkflowExecutionFailedEventAttributes: j.ChildWorkflowExecutionFailedEventAttributes}
	case j.ChildWorkflowExecutionCanceledEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionCanceledEventAttributes{ChildWorkflowExecutionCanceledEventAttributes: j.ChildWorkflowExecutionCanceledEventAttributes}
	case j.ChildWorkflowExecutionTimedOutEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionTimedOutEventAttributes{ChildWorkflowExecutionTimedOutEventAttributes: j.ChildWorkflowExecutionTimedOutEventAttributes}
	case j.ChildWorkflowExecutionTerminatedEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_ChildWorkflowExecutionTerminatedEventAttributes{ChildWorkflowExecutionTerminatedEventAttributes: j.ChildWorkflowExecutionTerminatedEventAttributes}
	case j.UpsertWorkflowSearchAttributesEventAttributes != nil:
		event.Attributes = &apiv1.HistoryEvent_UpsertWorkflowSearchAttributesEventAttributes{UpsertWorkflowSearchAttributesEventAttributes: j.UpsertWorkflowSearchAttributesEventAttributes}
	default:
		return nil, fmt.Errorf("history event %v carries no known attributes", j.EventId)
	}
	return event, nil
}

func extractHistoryFromFile(jsonfileName string, lastEventID int64) (*apiv1.History, error) {
	raw, err := ioutil.ReadFile(jsonfileName)
	if err != nil {
		return nil, err
	}

	var jsonEvents []*jsonHistoryEvent
	if err := json.Unmarshal(raw, &jsonEvents); err != nil {
		// Some dumps wrap the event list in {"events": [...]}.
		var wrapper struct {
			Events []*jsonHistoryEvent `json:"events"`
		}
		if err2 := json.Unmarshal(raw, &wrapper); err2 != nil {
			return nil, err
		}
		jsonEvents = wrapper.Events
	}

	history := &apiv1.History{}
	for _, je := range jsonEvents {
		event, err := je.toHistoryEvent()
		if err != nil {
			return nil, err
		}
		history.Events = append(history.Events, event)
		if lastEventID > 0 && event.GetEventId() >= lastEventID {
			break
		}
	}
	return history, nil
}

// Package-level replay helpers using a private replayer with the global
// registry, kept for parity with the worker facade.

func globalReplayer() *WorkflowReplayer {
	return &WorkflowReplayer{registry: getGlobalRegistry()}
}

// ReplayWorkflowHistory replays the given history against globally
// registered workflows.
func ReplayWorkflowHistory(logger *zap.Logger, history *apiv1.History) error {
	return globalReplayer().ReplayWorkflowHistory(logger, history)
}

// ReplayWorkflowHistoryFromJSONFile replays the JSON history file against
// globally registered workflows.
func ReplayWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string) error {
	return globalReplayer().ReplayWorkflowHistoryFromJSONFile(logger, jsonfileName)
}

// ReplayPartialWorkflowHistoryFromJSONFile replays the history prefix up to
// lastEventID against globally registered workflows.
func ReplayPartialWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string, lastEventID int64) error {
	return globalReplayer().ReplayPartialWorkflowHistoryFromJSONFile(logger, jsonfileName, lastEventID)
}

// ReplayWorkflowExecution fetches and replays the given execution against
// globally registered workflows.
func ReplayWorkflowExecution(ctx context.Context, service api.Interface, logger *zap.Logger, domain string, execution WorkflowExecution) error {
	return globalReplayer().ReplayWorkflowExecution(ctx, service, logger, domain, execution)
}
