// Copyright (c) 2017-2020 Uber Technologies Inc.
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
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// createRootTestContext builds a workflow Context carrying a minimal
// environment, enough for GetWorkflowInfo and friends in tests that don't
// replay real history.
func createRootTestContext() Context {
	env := &workflowEnvironmentImpl{
		workflowInfo: &WorkflowInfo{
			WorkflowExecution: WorkflowExecution{
				ID:    "test-workflow-id",
				RunID: "test-run-id",
			},
			WorkflowType: WorkflowType{Name: "test-workflow-type"},
			TaskListName: "test-tasklist",
			Domain:       "test-domain",
		},
		dataConverter: getDefaultDataConverter(),
	}
	ctx := Background()
	return WithValue(ctx, workflowEnvironmentContextKey, env)
}

func createTestEventActivityTaskTimedOut(eventID int64, attrs *apiv1.ActivityTaskTimedOutEventAttributes) *apiv1.HistoryEvent {
	return &apiv1.HistoryEvent{
		EventId:    eventID,
		Attributes: &apiv1.HistoryEvent_ActivityTaskTimedOutEventAttributes{ActivityTaskTimedOutEventAttributes: attrs},
	}
}

func createTestEventSignalExternalWorkflowExecutionFailed(eventID int64, attrs *apiv1.SignalExternalWorkflowExecutionFailedEventAttributes) *apiv1.HistoryEvent {
	return &apiv1.HistoryEvent{
		EventId:    eventID,
		Attributes: &apiv1.HistoryEvent_SignalExternalWorkflowExecutionFailedEventAttributes{SignalExternalWorkflowExecutionFailedEventAttributes: attrs},
	}
}
