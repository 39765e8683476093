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
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEnv(t *testing.T) *TestWorkflowEnvironment {
	s := &WorkflowTestSuite{}
	s.SetLogger(zaptest.NewLogger(t))
	return s.NewTestWorkflowEnvironment()
}

// Signal-driven exit: the workflow greets every name it is signaled with and
// returns once the exit signal arrives.
func signalGreeterWorkflow(ctx Context) ([]string, error) {
	var greetings []string
	var exit bool

	nameCh := GetSignalChannel(ctx, "wait_for_name")
	exitCh := GetSignalChannel(ctx, "exit")
	Go(ctx, "names", func(ctx Context) {
		for {
			var name string
			if !nameCh.Receive(ctx, &name) {
				return
			}
			greetings = append(greetings, "Hello "+name+"!")
		}
	})
	Go(ctx, "exit", func(ctx Context) {
		var dummy string
		exitCh.Receive(ctx, &dummy)
		exit = true
	})

	if err := Await(ctx, func() bool { return exit }); err != nil {
		return nil, err
	}
	return greetings, nil
}

func TestSignalDrivenExit(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(signalGreeterWorkflow)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow("wait_for_name", "Bob")
	}, time.Millisecond)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow("exit", "")
	}, 2*time.Millisecond)

	env.ExecuteWorkflow(signalGreeterWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result []string
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, []string{"Hello Bob!"}, result)
}

// Await with a timeout returns false when the timer fires first, and the
// workflow's deterministic clock has moved past the timeout.
func awaitNeverWorkflow(ctx Context) (bool, error) {
	return AwaitWithTimeout(ctx, time.Minute, func() bool { return false })
}

func TestAwaitWithTimeoutExpires(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(awaitNeverWorkflow)
	env.ExecuteWorkflow(awaitNeverWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var unblocked bool
	require.NoError(t, env.GetWorkflowResult(&unblocked))
	require.False(t, unblocked)
}

// Deterministic randomness: SideEffect values recorded during a run come
// back identical through the stored payload.
func sideEffectWorkflow(ctx Context) (int, error) {
	var value int
	if err := SideEffect(ctx, func(ctx Context) interface{} {
		return 42
	}).Get(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func TestSideEffect(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(sideEffectWorkflow)
	env.ExecuteWorkflow(sideEffectWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result int
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 42, result)
}

// Timers in the test environment advance on the virtual clock, so a
// workflow sleeping for hours finishes in wall-clock milliseconds.
func longSleepWorkflow(ctx Context) (int64, error) {
	start := Now(ctx)
	if err := Sleep(ctx, 3*time.Hour); err != nil {
		return 0, err
	}
	return int64(Now(ctx).Sub(start) / time.Hour), nil
}

func TestVirtualClockSleep(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(longSleepWorkflow)

	wallStart := time.Now()
	env.ExecuteWorkflow(longSleepWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var hours int64
	require.NoError(t, env.GetWorkflowResult(&hours))
	require.True(t, hours >= 3)
	require.True(t, time.Since(wallStart) < time.Minute)
}

// Queries run against current workflow state and must not suspend.
func queryableWorkflow(ctx Context) (string, error) {
	state := "started"
	if err := SetQueryHandler(ctx, "state", func() (string, error) {
		return state, nil
	}); err != nil {
		return "", err
	}
	signalCh := GetSignalChannel(ctx, "finish")
	var dummy string
	signalCh.Receive(ctx, &dummy)
	state = "finished"
	return state, nil
}

func TestQueryWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(queryableWorkflow)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow("finish", "")
	}, time.Second)
	env.ExecuteWorkflow(queryableWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	value, err := env.QueryWorkflow("state")
	require.NoError(t, err)
	var state string
	require.NoError(t, value.Get(&state))
	require.Equal(t, "finished", state)
}

// Canceling the workflow propagates a CanceledError through the context.
func cancelableWorkflow(ctx Context) error {
	return Sleep(ctx, 24*time.Hour)
}

func TestCancelWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.RegisterWorkflow(cancelableWorkflow)
	env.RegisterDelayedCallback(func() {
		env.CancelWorkflow()
	}, time.Minute)
	env.ExecuteWorkflow(cancelableWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	require.True(t, IsCanceledError(err))
}

// Interceptors wrap workflow execution and every activity call.
type recordingInterceptorFactory struct {
	trace []string
}

func (f *recordingInterceptorFactory) NewInterceptor(info *WorkflowInfo, next WorkflowInterceptor) WorkflowInterceptor {
	return &recordingInterceptor{WorkflowInterceptorBase{Next: next}, f}
}

type recordingInterceptor struct {
	WorkflowInterceptorBase
	factory *recordingInterceptorFactory
}

func (i *recordingInterceptor) ExecuteWorkflow(ctx Context, workflowType string, args ...interface{}) []interface{} {
	i.factory.trace = append(i.factory.trace, "ExecuteWorkflow "+workflowType)
	return i.Next.ExecuteWorkflow(ctx, workflowType, args...)
}

func (i *recordingInterceptor) ExecuteActivity(ctx Context, activityType string, args ...interface{}) Future {
	i.factory.trace = append(i.factory.trace, "ExecuteActivity "+activityType)
	return i.Next.ExecuteActivity(ctx, activityType, args...)
}

func interceptedWorkflow(ctx Context) (string, error) {
	ctx = WithActivityOptions(ctx, ActivityOptions{
		ScheduleToStartTimeout: time.Minute,
		StartToCloseTimeout:    time.Minute,
	})
	var result string
	if err := ExecuteActivity(ctx, echoActivity, "ping").Get(ctx, &result); err != nil {
		return "", err
	}
	return result, nil
}

func echoActivity(ctx context.Context, input string) (string, error) {
	return input, nil
}

func TestWorkflowInterceptorChain(t *testing.T) {
	env := newTestEnv(t)
	factory := &recordingInterceptorFactory{}
	env.SetWorkerOptions(WorkerOptions{
		WorkflowInterceptorChainFactories: []WorkflowInterceptorFactory{factory},
	})
	env.RegisterWorkflow(interceptedWorkflow)
	env.RegisterActivity(echoActivity)
	env.ExecuteWorkflow(interceptedWorkflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result string
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "ping", result)
	require.Equal(t, []string{"ExecuteWorkflow interceptedWorkflow", "ExecuteActivity echoActivity"}, factory.trace)
}

// RandomUUID and NewRandom derive only from the run ID and the sequence
// counter, so two executions with identical identity produce identical
// sequences.
func randomValuesWorkflow(ctx Context) ([]string, error) {
	id1 := RandomUUID(ctx)
	id2 := RandomUUID(ctx)
	r := NewRandom(ctx)
	return []string{id1, id2, strconv.Itoa(r.Intn(1 << 30))}, nil
}

func TestDeterministicRandomness(t *testing.T) {
	run := func() []string {
		env := newTestEnv(t)
		env.RegisterWorkflow(randomValuesWorkflow)
		env.ExecuteWorkflow(randomValuesWorkflow)
		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())
		var result []string
		require.NoError(t, env.GetWorkflowResult(&result))
		return result
	}

	first := run()
	second := run()
	require.Equal(t, first, second)
	require.NotEqual(t, first[0], first[1])
}
