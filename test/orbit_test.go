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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/orbitflow/orbit-go"
	"github.com/orbitflow/orbit-go/activity"
	"github.com/orbitflow/orbit-go/testsuite"
	"github.com/orbitflow/orbit-go/workflow"
)

const (
	testContextKey          = "test-context-key"
	consistentQuerySignalCh = "consistent-query-signal-chan"
)

type contextKey string

// stringMapPropagator propagates a fixed set of string keys between
// contexts and headers.
type stringMapPropagator struct {
	keys map[string]struct{}
}

// NewStringMapPropagator creates a propagator for the given keys.
func NewStringMapPropagator(keys []string) workflow.ContextPropagator {
	keyMap := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keyMap[key] = struct{}{}
	}
	return &stringMapPropagator{keyMap}
}

func (s *stringMapPropagator) Inject(ctx workflow.Context, writer workflow.HeaderWriter) error {
	return s.InjectFromWorkflow(ctx, writer)
}

func (s *stringMapPropagator) InjectFromWorkflow(ctx workflow.Context, writer workflow.HeaderWriter) error {
	for key := range s.keys {
		value, ok := ctx.Value(contextKey(key)).(string)
		if !ok {
			return errors.New("unable to extract key from context " + key)
		}
		writer.Set(key, []byte(value))
	}
	return nil
}

func (s *stringMapPropagator) Extract(ctx workflow.Context, reader workflow.HeaderReader) (workflow.Context, error) {
	return s.ExtractToWorkflow(ctx, reader)
}

func (s *stringMapPropagator) ExtractToWorkflow(ctx workflow.Context, reader workflow.HeaderReader) (workflow.Context, error) {
	if err := reader.ForEachKey(func(key string, value []byte) error {
		if _, ok := s.keys[key]; ok {
			ctx = workflow.WithValue(ctx, contextKey(key), string(value))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return ctx, nil
}

// WorkflowUnitTestSuite drives the sample workflows through the in-process
// test environment.
type WorkflowUnitTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	workflows  *Workflows
	activities *Activities
}

func TestWorkflowUnitTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowUnitTestSuite))
}

func (ts *WorkflowUnitTestSuite) SetupTest() {
	ts.SetLogger(zaptest.NewLogger(ts.T()))
	ts.workflows = &Workflows{}
	ts.activities = newActivities()
}

func (ts *WorkflowUnitTestSuite) newEnv() *testsuite.TestWorkflowEnvironment {
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(ts.activities, activity.RegisterOptions{Name: "Activities_"})
	env.RegisterActivityWithOptions(ts.activities.activities2, activity.RegisterOptions{Name: "Prefix_"})
	env.RegisterActivityWithOptions(ts.activities.fail, activity.RegisterOptions{Name: "Fail"})
	return env
}

func (ts *WorkflowUnitTestSuite) TestBasic() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.Basic)
	env.ExecuteWorkflow(ts.workflows.Basic)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var result []string
	ts.NoError(env.GetWorkflowResult(&result))
	ts.Equal([]string{"toUpperWithDelay", "toUpper"}, result)
	ts.EqualValues([]string{"toUpperWithDelay", "toUpper"}, ts.activities.invoked())
}

func (ts *WorkflowUnitTestSuite) TestSimplestWorkflow() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.SimplestWorkflow)
	env.ExecuteWorkflow(ts.workflows.SimplestWorkflow)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var result string
	ts.NoError(env.GetWorkflowResult(&result))
	ts.Equal("hello", result)
}

func (ts *WorkflowUnitTestSuite) TestMockedActivity() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.Basic)
	env.OnActivity("Prefix_ToUpperWithDelay", mock.Anything, "hello", time.Second).Return("hello", nil).Once()
	env.OnActivity("Prefix_ToUpper", mock.Anything, "hello").Return("HELLO", nil).Once()

	env.ExecuteWorkflow(ts.workflows.Basic)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var result []string
	ts.NoError(env.GetWorkflowResult(&result))
	ts.Equal([]string{"toUpperWithDelay", "toUpper"}, result)
	// The real activities never ran.
	ts.Empty(ts.activities.invoked())
	env.AssertExpectations(ts.T())
}

func (ts *WorkflowUnitTestSuite) TestMockedActivityFailure() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.Basic)
	env.OnActivity("Prefix_ToUpperWithDelay", mock.Anything, mock.Anything, mock.Anything).
		Return("", orbit.NewCustomError("ToUpperFailed", "mock failure")).Once()

	env.ExecuteWorkflow(ts.workflows.Basic)

	ts.True(env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	ts.Error(err)
	var cerr *orbit.CustomError
	ts.True(errors.As(err, &cerr))
	ts.Equal("ToUpperFailed", cerr.Reason())
}

func (ts *WorkflowUnitTestSuite) TestChildWorkflowSuccess() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.ChildWorkflowSuccess)
	env.RegisterWorkflow(ts.workflows.childForMemoAndSearchAttr)
	env.ExecuteWorkflow(ts.workflows.ChildWorkflowSuccess)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var result string
	ts.NoError(env.GetWorkflowResult(&result))
	ts.Equal("memoVal, searchAttrVal", result)
}

func (ts *WorkflowUnitTestSuite) TestMockedChildWorkflow() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.ChildWorkflowSuccess)
	env.RegisterWorkflow(ts.workflows.childForMemoAndSearchAttr)
	env.OnWorkflow(ts.workflows.childForMemoAndSearchAttr, mock.Anything).
		Return("mock-child-result", nil).Once()

	env.ExecuteWorkflow(ts.workflows.ChildWorkflowSuccess)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var result string
	ts.NoError(env.GetWorkflowResult(&result))
	ts.Equal("mock-child-result", result)
}

func (ts *WorkflowUnitTestSuite) TestSignalThenQuery() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.ConsistentQueryWorkflow)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(consistentQuerySignalCh, "signal-input")
	}, time.Millisecond)

	env.ExecuteWorkflow(ts.workflows.ConsistentQueryWorkflow, time.Millisecond)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	value, err := env.QueryWorkflow("consistent_query")
	ts.NoError(err)
	var queryResult string
	ts.NoError(value.Get(&queryResult))
	ts.Equal("signal-input", queryResult)
}

func (ts *WorkflowUnitTestSuite) TestContinueAsNew() {
	env := ts.newEnv()
	env.RegisterWorkflow(ts.workflows.ContinueAsNew)
	env.ExecuteWorkflow(ts.workflows.ContinueAsNew, 2, "default-test-tasklist")

	ts.True(env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	ts.Error(err)
	var continueAsNew *orbit.ContinueAsNewError
	ts.True(errors.As(err, &continueAsNew))
}

// sleepTwiceWorkflow records how far workflow time has moved after each of
// two sleeps.
func sleepTwiceWorkflow(ctx workflow.Context) ([]int64, error) {
	start := workflow.Now(ctx)
	var offsets []int64
	if err := workflow.Sleep(ctx, 20*time.Second); err != nil {
		return nil, err
	}
	offsets = append(offsets, int64(workflow.Now(ctx).Sub(start)/time.Second))
	if err := workflow.Sleep(ctx, 30*time.Second); err != nil {
		return nil, err
	}
	offsets = append(offsets, int64(workflow.Now(ctx).Sub(start)/time.Second))
	return offsets, nil
}

func (ts *WorkflowUnitTestSuite) TestSleepDeadlines() {
	env := ts.newEnv()
	env.RegisterWorkflow(sleepTwiceWorkflow)
	env.ExecuteWorkflow(sleepTwiceWorkflow)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var offsets []int64
	ts.NoError(env.GetWorkflowResult(&offsets))
	ts.Len(offsets, 2)
	ts.True(offsets[0] >= 20)
	ts.True(offsets[1] >= 50)
}

func awaitTimeoutWorkflow(ctx workflow.Context) (bool, error) {
	return workflow.AwaitWithTimeout(ctx, time.Minute, func() bool { return false })
}

func (ts *WorkflowUnitTestSuite) TestAwaitTimeout() {
	env := ts.newEnv()
	env.RegisterWorkflow(awaitTimeoutWorkflow)
	start := env.Now()
	env.ExecuteWorkflow(awaitTimeoutWorkflow)

	ts.True(env.IsWorkflowCompleted())
	ts.NoError(env.GetWorkflowError())
	var unblocked bool
	ts.NoError(env.GetWorkflowResult(&unblocked))
	ts.False(unblocked)
	ts.True(env.Now().Sub(start) >= time.Minute)
}

// ActivityUnitTestSuite drives the sample activities synchronously.
type ActivityUnitTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	activities *Activities
}

func TestActivityUnitTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityUnitTestSuite))
}

func (ts *ActivityUnitTestSuite) SetupTest() {
	ts.SetLogger(zaptest.NewLogger(ts.T()))
	ts.activities = newActivities()
}

func (ts *ActivityUnitTestSuite) TestToUpper() {
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivityWithOptions(ts.activities.activities2, activity.RegisterOptions{Name: "Prefix_"})

	value, err := env.ExecuteActivity("Prefix_ToUpper", "banana")
	ts.NoError(err)
	var result string
	ts.NoError(value.Get(&result))
	ts.Equal("BANANA", result)
}

func (ts *ActivityUnitTestSuite) TestLocalActivity() {
	env := ts.NewTestActivityEnvironment()

	value, err := env.ExecuteLocalActivity(LocalSleep, time.Millisecond)
	ts.NoError(err)
	ts.False(value.HasValue())
}

func (ts *ActivityUnitTestSuite) TestActivityFailure() {
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivityWithOptions(ts.activities.fail, activity.RegisterOptions{Name: "Fail"})

	_, err := env.ExecuteActivity("Fail")
	require.Error(ts.T(), err)
	var cerr *orbit.CustomError
	ts.True(errors.As(err, &cerr))
	ts.Equal("failing-on-purpose", cerr.Reason())
}
