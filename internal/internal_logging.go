// Copyright (c) 2017 Uber Technologies, Inc.
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
	"github.com/uber-go/tally"
)

// Structured logging field keys shared by the event handlers, activity
// workers and workflow client so that log lines and tagged metrics scopes
// use the same vocabulary.
const (
	tagWorkflowType    = "WorkflowType"
	tagWorkflowID      = "WorkflowID"
	tagRunID           = "RunID"
	tagChildWorkflowID = "ChildWorkflowID"
	tagActivityID      = "ActivityID"
	tagActivityType    = "ActivityType"
	tagTimerID         = "TimerID"
	tagSideEffectID    = "SideEffectID"
	tagEventID         = "EventID"
	tagEventType       = "EventType"
	tagPanicError      = "PanicError"
	tagPanicStack      = "PanicStack"
	tagQueryType       = "QueryType"
	tagTaskList        = "TaskList"
	tagDomain          = "Domain"
)

// tagScope returns scope.Tagged() applied to the given key, value, key,
// value... pairs, or scope unchanged if no pairs are given.
func tagScope(scope tally.Scope, keyValueLabels ...string) tally.Scope {
	if scope == nil || len(keyValueLabels) == 0 {
		return scope
	}
	if len(keyValueLabels)%2 != 0 {
		panic("tagScope needs key value pairs")
	}
	tags := make(map[string]string, len(keyValueLabels)/2)
	for i := 0; i < len(keyValueLabels); i += 2 {
		tags[keyValueLabels[i]] = keyValueLabels[i+1]
	}
	return scope.Tagged(tags)
}
