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
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/zap/zaptest"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// testDataConverter wraps the default converter so tests can verify that a
// custom converter is honored end to end.
type testDataConverter struct {
	NumOfCallToData   int
	NumOfCallFromData int
}

func newTestDataConverter() DataConverter {
	return &testDataConverter{}
}

func (tdc *testDataConverter) ToData(value ...interface{}) ([]byte, error) {
	tdc.NumOfCallToData++
	return getDefaultDataConverter().ToData(value...)
}

func (tdc *testDataConverter) FromData(input []byte, valuePtr ...interface{}) error {
	tdc.NumOfCallFromData++
	return getDefaultDataConverter().FromData(input, valuePtr...)
}

// taskHistoryBuilder accumulates history events with sequential IDs and
// monotonically increasing timestamps.
type taskHistoryBuilder struct {
	events []*apiv1.HistoryEvent
	now    time.Time
}

func newTaskHistoryBuilder() *taskHistoryBuilder {
	return &taskHistoryBuilder{now: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
}

func (b *taskHistoryBuilder) add(attrs isHistoryEventAttributesForTest) *apiv1.HistoryEvent {
	b.now = b.now.Add(time.Second)
	event := &apiv1.HistoryEvent{
		EventId:   int64(len(b.events) + 1),
		EventTime: api.TimeToProto(b.now),
	}
	switch a := attrs.(type) {
	case *apiv1.WorkflowExecutionStartedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionStartedEventAttributes{WorkflowExecutionStartedEventAttributes: a}
	case *apiv1.DecisionTaskScheduledEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes{DecisionTaskScheduledEventAttributes: a}
	case *apiv1.DecisionTaskStartedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskStartedEventAttributes{DecisionTaskStartedEventAttributes: a}
	case *apiv1.DecisionTaskCompletedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskCompletedEventAttributes{DecisionTaskCompletedEventAttributes: a}
	case *apiv1.DecisionTaskTimedOutEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_DecisionTaskTimedOutEventAttributes{DecisionTaskTimedOutEventAttributes: a}
	case *apiv1.ActivityTaskScheduledEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskScheduledEventAttributes{ActivityTaskScheduledEventAttributes: a}
	case *apiv1.ActivityTaskStartedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskStartedEventAttributes{ActivityTaskStartedEventAttributes: a}
	case *apiv1.ActivityTaskCompletedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskCompletedEventAttributes{ActivityTaskCompletedEventAttributes: a}
	case *apiv1.ActivityTaskFailedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_ActivityTaskFailedEventAttributes{ActivityTaskFailedEventAttributes: a}
	case *apiv1.TimerStartedEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_TimerStartedEventAttributes{TimerStartedEventAttributes: a}
	case *apiv1.TimerFiredEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_TimerFiredEventAttributes{TimerFiredEventAttributes: a}
	case *apiv1.WorkflowExecutionSignaledEventAttributes:
		event.Attributes = &apiv1.HistoryEvent_WorkflowExecutionSignaledEventAttributes{WorkflowExecutionSignaledEventAttributes: a}
	default:
		panic("unhandled attribute type in test history builder")
	}
	b.events = append(b.events, event)
	return event
}

type isHistoryEventAttributesForTest interface{}

func (b *taskHistoryBuilder) addWorkflowStart(workflowType string, input []byte) {
	b.add(&apiv1.WorkflowExecutionStartedEventAttributes{
		WorkflowType:                 &apiv1.WorkflowType{Name: workflowType},
		TaskList:                     &apiv1.TaskList{Name: testWorkflowTaskTasklist},
		Input:                        &apiv1.Payload{Data: input},
		ExecutionStartToCloseTimeout: api.DurationToProto(10 * time.Minute),
		TaskStartToCloseTimeout:      api.DurationToProto(10 * time.Second),
	})
}

func (b *taskHistoryBuilder) addDecisionBoundary() {
	b.add(&apiv1.DecisionTaskScheduledEventAttributes{})
	b.add(&apiv1.DecisionTaskStartedEventAttributes{})
}

func (b *taskHistoryBuilder) addDecisionCompleted() {
	b.add(&apiv1.DecisionTaskCompletedEventAttributes{})
}

const testWorkflowTaskTasklist = "tl1"

func testTaskHandlerParams(t *testing.T) workerExecutionParameters {
	return workerExecutionParameters{
		Domain:                 testDomain,
		TaskList:               testWorkflowTaskTasklist,
		Identity:               "test-id-1",
		Logger:                 zaptest.NewLogger(t),
		MetricsScope:           tally.NoopScope,
		DataConverter:          getDefaultDataConverter(),
		DisableStickyExecution: true,
	}
}

const testDomain = "test-domain"

func testPollTask(b *taskHistoryBuilder, workflowType string, previousStarted int64) *workflowTask {
	started := int64(0)
	for _, e := range b.events {
		if e.GetDecisionTaskStartedEventAttributes() != nil {
			started = e.GetEventId()
		}
	}
	var prev *int64
	if previousStarted >= 0 {
		prev = &previousStarted
	}
	return &workflowTask{
		task: &apiv1.PollForDecisionTaskResponse{
			TaskToken:              []byte("test-token"),
			WorkflowExecution:      &apiv1.WorkflowExecution{WorkflowId: "fake-workflow-id", RunId: "fake-run-id"},
			WorkflowType:           &apiv1.WorkflowType{Name: workflowType},
			History:                &apiv1.History{Events: b.events},
			PreviousStartedEventId: prev,
			StartedEventId:         started,
		},
	}
}

func greetingWorkflow(ctx Context) (string, error) {
	ctx = WithActivityOptions(ctx, ActivityOptions{
		ScheduleToStartTimeout: time.Minute,
		StartToCloseTimeout:    time.Minute,
	})
	var greeting string
	if err := ExecuteActivity(ctx, "compose", "Hello", "Bob").Get(ctx, &greeting); err != nil {
		return "", err
	}
	return greeting, nil
}

func registerGreeting(t *testing.T) *registry {
	r := newRegistry()
	r.RegisterWorkflowWithOptions(greetingWorkflow, RegisterWorkflowOptions{Name: "Greeting"})
	return r
}

// Scenario: the first decision task produces exactly one
// ScheduleActivityTask carrying the wrapped argument list.
func TestWorkflowTaskHandler_GreetingFirstDecision(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.addDecisionBoundary()

	taskHandler := newWorkflowTaskHandler(testTaskHandlerParams(t), registerGreeting(t))
	response, err := taskHandler.ProcessWorkflowTask(testPollTask(b, "Greeting", -1))
	require.NoError(t, err)

	completed, ok := response.(*apiv1.RespondDecisionTaskCompletedRequest)
	require.True(t, ok)
	require.Len(t, completed.Decisions, 1)
	attr, ok := completed.Decisions[0].Attributes.(*apiv1.Decision_ScheduleActivityTaskDecisionAttributes)
	require.True(t, ok)
	scheduled := attr.ScheduleActivityTaskDecisionAttributes
	require.Equal(t, "compose", scheduled.ActivityType.Name)

	var args []json.RawMessage
	require.NoError(t, json.Unmarshal(scheduled.Input.GetData(), &args))
	require.Equal(t, `"Hello"`, string(args[0]))
	require.Equal(t, `"Bob"`, string(args[1]))
}

// Scenario: once history delivers the activity result, the next decision is
// the terminal CompleteWorkflowExecution carrying it.
func TestWorkflowTaskHandler_GreetingCompletion(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.addDecisionBoundary()
	b.addDecisionCompleted()
	input, err := encodeArgs(nil, []interface{}{"Hello", "Bob"})
	require.NoError(t, err)
	scheduled := b.add(&apiv1.ActivityTaskScheduledEventAttributes{
		ActivityId:   "0",
		ActivityType: &apiv1.ActivityType{Name: "compose"},
		TaskList:     &apiv1.TaskList{Name: testWorkflowTaskTasklist},
		Input:        &apiv1.Payload{Data: input},
	})
	b.add(&apiv1.ActivityTaskStartedEventAttributes{ScheduledEventId: scheduled.GetEventId()})
	b.add(&apiv1.ActivityTaskCompletedEventAttributes{
		Result:           &apiv1.Payload{Data: []byte(`"Hello Bob!"`)},
		ScheduledEventId: scheduled.GetEventId(),
	})
	b.addDecisionBoundary()

	taskHandler := newWorkflowTaskHandler(testTaskHandlerParams(t), registerGreeting(t))
	response, err := taskHandler.ProcessWorkflowTask(testPollTask(b, "Greeting", 3))
	require.NoError(t, err)

	completed, ok := response.(*apiv1.RespondDecisionTaskCompletedRequest)
	require.True(t, ok)
	require.Len(t, completed.Decisions, 1)
	attr, ok := completed.Decisions[0].Attributes.(*apiv1.Decision_CompleteWorkflowExecutionDecisionAttributes)
	require.True(t, ok)
	require.Equal(t, `"Hello Bob!"`, string(attr.CompleteWorkflowExecutionDecisionAttributes.Result.GetData()))
}

// Scenario: an uncaught activity failure turns into FailWorkflowExecution
// whose reason/details round-trip back to the original error.
func TestWorkflowTaskHandler_ActivityFailurePropagation(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.addDecisionBoundary()
	b.addDecisionCompleted()
	scheduled := b.add(&apiv1.ActivityTaskScheduledEventAttributes{
		ActivityId:   "0",
		ActivityType: &apiv1.ActivityType{Name: "compose"},
		TaskList:     &apiv1.TaskList{Name: testWorkflowTaskTasklist},
	})
	b.add(&apiv1.ActivityTaskStartedEventAttributes{ScheduledEventId: scheduled.GetEventId()})
	failedReason, failedDetails := getErrorDetails(NewCustomError("ComposeError", "bad"), nil)
	b.add(&apiv1.ActivityTaskFailedEventAttributes{
		Failure:          &apiv1.Failure{Reason: failedReason, Details: failedDetails},
		ScheduledEventId: scheduled.GetEventId(),
	})
	b.addDecisionBoundary()

	taskHandler := newWorkflowTaskHandler(testTaskHandlerParams(t), registerGreeting(t))
	response, err := taskHandler.ProcessWorkflowTask(testPollTask(b, "Greeting", 3))
	require.NoError(t, err)

	completed, ok := response.(*apiv1.RespondDecisionTaskCompletedRequest)
	require.True(t, ok)
	require.Len(t, completed.Decisions, 1)
	attr, ok := completed.Decisions[0].Attributes.(*apiv1.Decision_FailWorkflowExecutionDecisionAttributes)
	require.True(t, ok)
	failure := attr.FailWorkflowExecutionDecisionAttributes.Failure

	restored := constructError(failure.GetReason(), failure.GetDetails(), nil)
	cerr, ok := restored.(*CustomError)
	require.True(t, ok)
	require.Equal(t, "ComposeError", cerr.Reason())
	var detail string
	require.NoError(t, cerr.Details(&detail))
	require.Equal(t, "bad", detail)
}

// An activity completion whose scheduled event ID never had a state machine
// is non-determinism: the handler returns an error and no decisions.
func TestWorkflowTaskHandler_UnknownScheduledEventID(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.addDecisionBoundary()
	b.addDecisionCompleted()
	scheduled := b.add(&apiv1.ActivityTaskScheduledEventAttributes{
		ActivityId:   "0",
		ActivityType: &apiv1.ActivityType{Name: "compose"},
		TaskList:     &apiv1.TaskList{Name: testWorkflowTaskTasklist},
	})
	b.add(&apiv1.ActivityTaskStartedEventAttributes{ScheduledEventId: scheduled.GetEventId()})
	// Completion for an activity the workflow never scheduled.
	b.add(&apiv1.ActivityTaskCompletedEventAttributes{
		Result:           &apiv1.Payload{Data: []byte(`"oops"`)},
		ScheduledEventId: scheduled.GetEventId() + 40,
	})
	b.addDecisionBoundary()

	taskHandler := newWorkflowTaskHandler(testTaskHandlerParams(t), registerGreeting(t))
	response, err := taskHandler.ProcessWorkflowTask(testPollTask(b, "Greeting", 3))
	require.Error(t, err)
	require.Nil(t, response)
}

// Epoch partitioning: concatenating the epochs reconstructs the input minus
// the decision bookkeeping events, and a timed-out decision boundary is
// discarded.
func TestHistory_NextDecisionEvents(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.add(&apiv1.DecisionTaskScheduledEventAttributes{})
	b.add(&apiv1.DecisionTaskStartedEventAttributes{})
	b.add(&apiv1.DecisionTaskTimedOutEventAttributes{})
	b.add(&apiv1.WorkflowExecutionSignaledEventAttributes{SignalName: "s1"})
	b.add(&apiv1.DecisionTaskScheduledEventAttributes{})
	b.add(&apiv1.DecisionTaskStartedEventAttributes{})
	b.add(&apiv1.DecisionTaskCompletedEventAttributes{})
	b.add(&apiv1.TimerStartedEventAttributes{TimerId: "0"})
	b.add(&apiv1.TimerFiredEventAttributes{TimerId: "0", StartedEventId: 9})
	b.add(&apiv1.DecisionTaskScheduledEventAttributes{})
	b.add(&apiv1.DecisionTaskStartedEventAttributes{})

	task := testPollTask(b, "Greeting", 7)
	eh := newHistory(task, nil)

	var collected []int64
	var epochs int
	for {
		events, markers, err := eh.NextDecisionEvents()
		require.NoError(t, err)
		if len(events) == 0 {
			break
		}
		epochs++
		require.Empty(t, markers)
		for _, e := range events {
			collected = append(collected, e.GetEventId())
		}
	}

	// Epoch 1 absorbs the timed-out boundary: [start, signal, started(7)].
	// Epoch 2: [completed(8), timerStarted, timerFired, started(12)].
	require.Equal(t, 2, epochs)
	require.Equal(t, []int64{1, 5, 7, 8, 9, 10, 12}, collected)
}

// Paged histories load the remaining events through the iterator.
func TestHistory_PagedHistory(t *testing.T) {
	t.Parallel()
	b := newTaskHistoryBuilder()
	b.addWorkflowStart("Greeting", nil)
	b.add(&apiv1.DecisionTaskScheduledEventAttributes{})
	b.add(&apiv1.DecisionTaskStartedEventAttributes{})

	firstPage := b.events[:2]
	secondPage := b.events[2:]

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	iterator := NewMockhistoryIterator(ctrl)
	iterator.EXPECT().HasNextPage().Return(true).Times(1)
	iterator.EXPECT().HasNextPage().Return(false).AnyTimes()
	iterator.EXPECT().GetNextPage().Return(&apiv1.History{Events: secondPage}, nil)

	task := testPollTask(b, "Greeting", -1)
	task.task.History = &apiv1.History{Events: firstPage}
	task.historyIterator = iterator

	eh := newHistory(task, nil)
	events, _, err := eh.NextDecisionEvents()
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, []int64{events[0].GetEventId(), events[len(events)-1].GetEventId()})
}

// Timer with zero delay fires its callback synchronously and returns no
// handle.
func TestZeroDelayTimerIsSynchronous(t *testing.T) {
	t.Parallel()
	eventHandler := newWorkflowExecutionEventHandler(
		&WorkflowInfo{
			WorkflowExecution: WorkflowExecution{ID: "w", RunID: "r"},
			WorkflowType:      WorkflowType{Name: "t"},
			TaskListName:      testWorkflowTaskTasklist,
		},
		func(result []byte, err error) {},
		zaptest.NewLogger(t), false, nil, newRegistry(),
		getDefaultDataConverter(), nil, nil, nil,
	)
	env := eventHandler.(*workflowExecutionEventHandlerImpl)

	fired := false
	info := env.NewTimer(0, func(result []byte, err error) {
		require.NoError(t, err)
		fired = true
	})
	require.Nil(t, info)
	require.True(t, fired)
	require.Empty(t, env.decisionsHelper.getDecisions(false))
}
