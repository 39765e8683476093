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
	"reflect"
)

// WorkflowInterceptorBase forwards every call to Next; embed it so an
// interceptor only overrides the calls it cares about.
type WorkflowInterceptorBase struct {
	Next WorkflowInterceptor
}

var _ WorkflowInterceptor = (*WorkflowInterceptorBase)(nil)

// ExecuteWorkflow forwards to the next interceptor.
func (w *WorkflowInterceptorBase) ExecuteWorkflow(ctx Context, workflowType string, args ...interface{}) []interface{} {
	return w.Next.ExecuteWorkflow(ctx, workflowType, args...)
}

// ExecuteActivity forwards to the next interceptor.
func (w *WorkflowInterceptorBase) ExecuteActivity(ctx Context, activityType string, args ...interface{}) Future {
	return w.Next.ExecuteActivity(ctx, activityType, args...)
}

// ExecuteChildWorkflow forwards to the next interceptor.
func (w *WorkflowInterceptorBase) ExecuteChildWorkflow(ctx Context, childWorkflowType string, args ...interface{}) ChildWorkflowFuture {
	return w.Next.ExecuteChildWorkflow(ctx, childWorkflowType, args...)
}

// workflowEnvironmentInterceptor terminates the interceptor chain with the
// real implementations.
type workflowEnvironmentInterceptor struct {
	env        workflowEnvironment
	workflowFn interface{}
}

var _ WorkflowInterceptor = (*workflowEnvironmentInterceptor)(nil)

// newWorkflowInterceptors builds the chain, outermost factory first, ending
// in the environment-backed implementation.
func newWorkflowInterceptors(env workflowEnvironment, workflowFn interface{}) WorkflowInterceptor {
	var interceptor WorkflowInterceptor = &workflowEnvironmentInterceptor{env: env, workflowFn: workflowFn}
	factories := env.GetWorkflowInterceptors()
	for i := len(factories) - 1; i >= 0; i-- {
		interceptor = factories[i].NewInterceptor(env.WorkflowInfo(), interceptor)
	}
	return interceptor
}

type workflowInterceptorContextKeyType string

const workflowInterceptorContextKey workflowInterceptorContextKeyType = "workflowInterceptor"

func withWorkflowInterceptor(ctx Context, interceptor WorkflowInterceptor) Context {
	return WithValue(ctx, workflowInterceptorContextKey, interceptor)
}

func getWorkflowInterceptor(ctx Context) WorkflowInterceptor {
	if i, ok := ctx.Value(workflowInterceptorContextKey).(WorkflowInterceptor); ok {
		return i
	}
	return &workflowEnvironmentInterceptor{env: getWorkflowEnvironment(ctx)}
}

// ExecuteWorkflow invokes the registered workflow function via reflection
// and returns its results, the last of which is its error (possibly nil).
func (w *workflowEnvironmentInterceptor) ExecuteWorkflow(ctx Context, workflowType string, args ...interface{}) []interface{} {
	fnType := reflect.TypeOf(w.workflowFn)
	callArgs := make([]reflect.Value, 0, len(args)+1)
	argPos := 0
	if fnType.NumIn() > 0 && isWorkflowContext(fnType.In(0)) {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
		argPos = 1
	}
	for i, arg := range args {
		if arg == nil {
			callArgs = append(callArgs, reflect.Zero(fnType.In(i+argPos)))
		} else {
			callArgs = append(callArgs, reflect.ValueOf(arg))
		}
	}

	fnValue := reflect.ValueOf(w.workflowFn)
	retValues := fnValue.Call(callArgs)

	results := make([]interface{}, 0, len(retValues))
	for _, r := range retValues {
		results = append(results, r.Interface())
	}
	return results
}

// ExecuteActivity schedules the activity through the decision context.
func (w *workflowEnvironmentInterceptor) ExecuteActivity(ctx Context, activityType string, args ...interface{}) Future {
	return executeActivityByType(ctx, activityType, args...)
}

// ExecuteChildWorkflow starts the child workflow through the decision
// context.
func (w *workflowEnvironmentInterceptor) ExecuteChildWorkflow(ctx Context, childWorkflowType string, args ...interface{}) ChildWorkflowFuture {
	return executeChildWorkflowByType(ctx, childWorkflowType, args...)
}
