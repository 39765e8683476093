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

package test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/test/replaytests"
	"github.com/orbitflow/orbit-go/worker"
	"github.com/orbitflow/orbit-go/workflow"
)

// historyBuilder accumulates events with increasing IDs and timestamps.
type historyBuilder struct {
	events []*apiv1.HistoryEvent
	now    time.Time
}

func newHistoryBuilder() *historyBuilder {
	return &historyBuilder{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (b *historyBuilder) addEvent(event *apiv1.HistoryEvent) int64 {
	b.now = b.now.Add(time.Second)
	event.EventId = int64(len(b.events) + 1)
	event.EventTime = api.TimeToProto(b.now)
	b.events = append(b.events, event)
	return event.EventId
}

// buildTwoActivityHistory records what a run of a workflow that executed
// helloworldActivity twice in sequence (with no version marker) produced.
func buildTwoActivityHistory(t *testing.T, workflowType string) *apiv1.History {
	b := newHistoryBuilder()

	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_WorkflowExecutionStartedEventAttributes{
		WorkflowExecutionStartedEventAttributes: &apiv1.WorkflowExecutionStartedEventAttributes{
			WorkflowType:                 &apiv1.WorkflowType{Name: workflowType},
			TaskList:                     &apiv1.TaskList{Name: replaytests.ApplicationName},
			Input:                        &apiv1.Payload{Data: []byte(`"World"`)},
			ExecutionStartToCloseTimeout: api.DurationToProto(time.Minute),
			TaskStartToCloseTimeout:      api.DurationToProto(10 * time.Second),
		},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes{
		DecisionTaskScheduledEventAttributes: &apiv1.DecisionTaskScheduledEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskStartedEventAttributes{
		DecisionTaskStartedEventAttributes: &apiv1.DecisionTaskStartedEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskCompletedEventAttributes{
		DecisionTaskCompletedEventAttributes: &apiv1.DecisionTaskCompletedEventAttributes{},
	}})

	scheduled1 := b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskScheduledEventAttributes{
		ActivityTaskScheduledEventAttributes: &apiv1.ActivityTaskScheduledEventAttributes{
			ActivityId:   "0",
			ActivityType: &apiv1.ActivityType{Name: "helloworldActivity"},
			TaskList:     &apiv1.TaskList{Name: replaytests.ApplicationName},
			Input:        &apiv1.Payload{Data: []byte(`"World"`)},
		},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskStartedEventAttributes{
		ActivityTaskStartedEventAttributes: &apiv1.ActivityTaskStartedEventAttributes{ScheduledEventId: scheduled1},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskCompletedEventAttributes{
		ActivityTaskCompletedEventAttributes: &apiv1.ActivityTaskCompletedEventAttributes{
			Result:           &apiv1.Payload{Data: []byte(`"Hello World!"`)},
			ScheduledEventId: scheduled1,
		},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes{
		DecisionTaskScheduledEventAttributes: &apiv1.DecisionTaskScheduledEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskStartedEventAttributes{
		DecisionTaskStartedEventAttributes: &apiv1.DecisionTaskStartedEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskCompletedEventAttributes{
		DecisionTaskCompletedEventAttributes: &apiv1.DecisionTaskCompletedEventAttributes{},
	}})

	scheduled2 := b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskScheduledEventAttributes{
		ActivityTaskScheduledEventAttributes: &apiv1.ActivityTaskScheduledEventAttributes{
			ActivityId:   "1",
			ActivityType: &apiv1.ActivityType{Name: "helloworldActivity"},
			TaskList:     &apiv1.TaskList{Name: replaytests.ApplicationName},
			Input:        &apiv1.Payload{Data: []byte(`"World"`)},
		},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskStartedEventAttributes{
		ActivityTaskStartedEventAttributes: &apiv1.ActivityTaskStartedEventAttributes{ScheduledEventId: scheduled2},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_ActivityTaskCompletedEventAttributes{
		ActivityTaskCompletedEventAttributes: &apiv1.ActivityTaskCompletedEventAttributes{
			Result:           &apiv1.Payload{Data: []byte(`"Hello World!"`)},
			ScheduledEventId: scheduled2,
		},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskScheduledEventAttributes{
		DecisionTaskScheduledEventAttributes: &apiv1.DecisionTaskScheduledEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskStartedEventAttributes{
		DecisionTaskStartedEventAttributes: &apiv1.DecisionTaskStartedEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_DecisionTaskCompletedEventAttributes{
		DecisionTaskCompletedEventAttributes: &apiv1.DecisionTaskCompletedEventAttributes{},
	}})
	b.addEvent(&apiv1.HistoryEvent{Attributes: &apiv1.HistoryEvent_WorkflowExecutionCompletedEventAttributes{
		WorkflowExecutionCompletedEventAttributes: &apiv1.WorkflowExecutionCompletedEventAttributes{},
	}})

	return &apiv1.History{Events: b.events}
}

// TestReplayVersionCompatibility replays a history recorded before the
// GetVersion call was added to replaytests.Workflow. GetVersion must return
// DefaultVersion without emitting a new marker, and the replay must match.
func TestReplayVersionCompatibility(t *testing.T) {
	replayer := worker.NewWorkflowReplayer()
	replayer.RegisterWorkflowWithOptions(replaytests.Workflow, workflow.RegisterOptions{Name: "Workflow"})

	history := buildTwoActivityHistory(t, "Workflow")
	err := replayer.ReplayWorkflowHistory(zaptest.NewLogger(t), history)
	require.NoError(t, err)
}

// TestReplayMismatchedActivityDetected replays the same history against a
// workflow that schedules a different activity, which must surface as a
// non-determinism error.
func TestReplayMismatchedActivityDetected(t *testing.T) {
	mismatched := func(ctx workflow.Context, name string) error {
		ao := workflow.ActivityOptions{
			ScheduleToStartTimeout: time.Minute,
			StartToCloseTimeout:    time.Minute,
		}
		ctx = workflow.WithActivityOptions(ctx, ao)
		var result string
		return workflow.ExecuteActivity(ctx, "someOtherActivity", name).Get(ctx, &result)
	}

	replayer := worker.NewWorkflowReplayer()
	replayer.RegisterWorkflowWithOptions(mismatched, workflow.RegisterOptions{Name: "Workflow"})

	history := buildTwoActivityHistory(t, "Workflow")
	err := replayer.ReplayWorkflowHistory(zaptest.NewLogger(t), history)
	require.Error(t, err)
}
