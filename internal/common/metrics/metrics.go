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

// Package metrics names the tally counters/gauges/timers the worker and
// client emit, and wraps a tally.Scope so that replaying a decision doesn't
// double-count metrics already emitted the first time the history was
// processed.
package metrics

import (
	"time"

	"github.com/uber-go/tally"
)

// Counter, gauge and timer names emitted by the worker and client.
const (
	DecisionTaskPanicCounter   = "decision-task-panic"
	DecisionsTotalCounter      = "decision-total"
	DecisionTaskExecutionFailureCounter = "decision-execution-failed"
	ActivityTaskScheduledCounter        = "activity-task-scheduled"
	ActivityTaskCompletedCounter        = "activity-task-completed"
	ActivityTaskFailedCounter           = "activity-task-failed"
	ActivityPollNoTaskCounter           = "activity-poll-no-task"
	UnhandledSignalsCounter             = "unhandled-signals"
	CorruptedSignalsCounter             = "corrupted-signal"
	WorkflowStartCounter                = "workflow-start"
	WorkflowSignalWithStartCounter      = "workflow-signal-with-start"
	WorkflowCompletedCounter            = "workflow-completed"
	WorkflowFailedCounter               = "workflow-failed"
	WorkflowCanceledCounter             = "workflow-canceled"
	WorkflowContinueAsNewCounter        = "workflow-continue-as-new"
	WorkflowEndToEndLatency             = "workflow-endtoend-latency"
	DecisionTaskScheduleToStartLatency  = "decision-schedule-to-start-latency"
	DecisionExecutionLatency            = "decision-execution-latency"
	ActivityExecutionLatency            = "activity-execution-latency"
	LocalActivityExecutionLatency       = "local-activity-execution-latency"
	LocalActivityTotalCounter           = "local-activity-total"
	LocalActivityErrorCounter           = "local-activity-error"
	LocalActivityPanicCounter           = "local-activity-panic"
	ActivityTaskPanicCounter            = "activity-task-panic"
	ActivityResponseFailedCounter       = "activity-response-failed"
	NonDeterministicError               = "non-deterministic-error"
	StickyCacheHit                      = "sticky-cache-hit"
	StickyCacheMiss                     = "sticky-cache-miss"
	StickyCacheEvict                    = "sticky-cache-evict"
	DecisionPollNoTaskCounter           = "decision-poll-no-task"
	DecisionPollFailedCounter           = "decision-poll-failed"
	ActivityPollFailedCounter           = "activity-poll-failed"
	DecisionResponseFailedCounter       = "decision-response-failed"
	WorkerStartCounter                  = "worker-start"
	PollerStartCounter                  = "poller-start"
)

// WrapScope returns a tally.Scope that drops every metric it's asked to
// record while *isReplay is true, so replaying history that already ran
// once live doesn't double the counters a dashboard reports.
func WrapScope(isReplay *bool, scope tally.Scope, _ interface{}) tally.Scope {
	return &replayAwareScope{isReplay: isReplay, Scope: scope}
}

type replayAwareScope struct {
	tally.Scope
	isReplay *bool
}

func (s *replayAwareScope) Counter(name string) tally.Counter {
	if s.isReplay != nil && *s.isReplay {
		return noopCounter{}
	}
	return s.Scope.Counter(name)
}

func (s *replayAwareScope) Gauge(name string) tally.Gauge {
	if s.isReplay != nil && *s.isReplay {
		return noopGauge{}
	}
	return s.Scope.Gauge(name)
}

func (s *replayAwareScope) Timer(name string) tally.Timer {
	if s.isReplay != nil && *s.isReplay {
		return noopTimer{}
	}
	return s.Scope.Timer(name)
}

type noopCounter struct{}

func (noopCounter) Inc(int64) {}

type noopGauge struct{}

func (noopGauge) Update(float64) {}

type noopTimer struct{}

func (noopTimer) Record(_ time.Duration) {}

func (t noopTimer) Start() tally.Stopwatch {
	return tally.NewStopwatch(time.Now(), t)
}

func (noopTimer) RecordStopwatch(_ time.Time) {}

// TaggedScope wraps a tally.Scope to build per-call tagged sub-scopes from
// flat key/value argument lists, the way the client's RPC call sites do when
// recording per-tasklist, per-workflow-type counters.
type TaggedScope struct {
	tally.Scope
}

// NewTaggedScope wraps scope, or a tally.NoopScope if scope is nil.
func NewTaggedScope(scope tally.Scope) *TaggedScope {
	if scope == nil {
		scope = tally.NoopScope
	}
	return &TaggedScope{Scope: scope}
}

// GetTaggedScope returns scope.Tagged() applied to the given key, value,
// key, value, ... pairs.
func (t *TaggedScope) GetTaggedScope(keyValueLabels ...string) tally.Scope {
	if len(keyValueLabels)%2 != 0 {
		panic("GetTaggedScope needs key value pairs")
	}
	tags := make(map[string]string, len(keyValueLabels)/2)
	for i := 0; i < len(keyValueLabels); i += 2 {
		tags[keyValueLabels[i]] = keyValueLabels[i+1]
	}
	return t.Scope.Tagged(tags)
}
