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
	"fmt"
	"reflect"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// syncWorkflowDefinition adapts a registered workflow function to the
// workflowDefinition interface by running it as the root coroutine of a
// dispatcher. Every ExecuteActivity/NewTimer/etc. call the function makes
// suspends that coroutine until the corresponding decision is resolved by a
// future history event.
type syncWorkflowDefinition struct {
	workflowFn interface{}
	dispatcher *dispatcherImpl
	rootCtx    Context
	env        workflowEnvironment
}

func newSyncWorkflowDefinition(workflowFn interface{}) workflowDefinition {
	return &syncWorkflowDefinition{workflowFn: workflowFn}
}

func (d *syncWorkflowDefinition) Execute(env workflowEnvironment, header *apiv1.Header, input []byte) {
	d.env = env

	ctx := Background()
	ctx = WithValue(ctx, workflowEnvironmentContextKey, env)
	ctx = WithValue(ctx, workflowResultContextKey, env.GetDataConverter())

	var err error
	ctx, err = contextWithHeaderPropagated(ctx, header, env.GetContextPropagators())
	if err != nil {
		env.Complete(nil, err)
		return
	}
	ctx = withSignalsAndQueries(ctx)
	ctx = withWorkflowInterceptor(ctx, newWorkflowInterceptors(env, d.workflowFn))

	// Cancellation requested by the service (or the test environment)
	// propagates by canceling the root Context; everything awaiting
	// observes ErrCanceled.
	var rootCancel CancelFunc
	ctx, rootCancel = WithCancel(ctx)
	env.RegisterCancelHandler(func() {
		rootCancel()
	})

	root := func(ctx Context) {
		result, err := d.runWorkflow(ctx, input)
		env.Complete(result, err)
	}

	dispatcherCtx, dispatcher := newDispatcher(ctx, root)
	d.dispatcher = dispatcher
	d.rootCtx = dispatcherCtx
	registerSignalAndQueryDispatch(dispatcherCtx, env)

	d.OnDecisionTaskStarted()
}

func (d *syncWorkflowDefinition) runWorkflow(ctx Context, input []byte) (result []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			st := getStackTraceRaw(fmt.Sprintf("workflow %s [panic]:", getFunctionName(d.workflowFn)), 7, 0)
			err = newWorkflowPanicError(p, st)
		}
	}()

	fnType := reflect.TypeOf(d.workflowFn)
	startIdx := 0
	if fnType.NumIn() > 0 && isWorkflowContext(fnType.In(0)) {
		startIdx = 1
	}
	args, decodeErr := decodeArgs(d.env.GetDataConverter(), fnType, input, startIdx)
	if decodeErr != nil {
		return nil, decodeErr
	}
	argValues := make([]interface{}, 0, len(args))
	for _, arg := range args {
		argValues = append(argValues, arg.Interface())
	}

	interceptor := getWorkflowInterceptor(ctx)
	results := interceptor.ExecuteWorkflow(ctx, d.env.WorkflowInfo().WorkflowType.Name, argValues...)
	return serializeResults(d.workflowFn, results, d.env.GetDataConverter())
}

func (d *syncWorkflowDefinition) OnDecisionTaskStarted() {
	if d.dispatcher == nil {
		return
	}
	if panicErr := d.dispatcher.ExecuteUntilAllBlocked(); panicErr != nil {
		d.env.Complete(nil, panicErr)
	}
}

func (d *syncWorkflowDefinition) StackTrace() string {
	if d.dispatcher == nil {
		return ""
	}
	return d.dispatcher.StackTrace()
}

func (d *syncWorkflowDefinition) Close() {
	if d.dispatcher != nil {
		d.dispatcher.Close()
	}
}

type workflowResultContextKeyType string

const workflowResultContextKey workflowResultContextKeyType = "workflowDataConverter"

// activityExecutor adapts a single registered activity function (or one
// exported method of a registered activity struct) to the activity
// interface the task handlers invoke.
type activityExecutor struct {
	name string
	fn   interface{}
	opts RegisterActivityOptions
}

func (ae *activityExecutor) ActivityType() ActivityType {
	return ActivityType{Name: ae.name}
}

func (ae *activityExecutor) GetFunction() interface{} {
	return ae.fn
}

func (ae *activityExecutor) GetOptions() RegisterActivityOptions {
	return ae.opts
}

func (ae *activityExecutor) Execute(ctx context.Context, input []byte) (result []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			st := getStackTraceRaw(fmt.Sprintf("activity %s [panic]:", ae.name), 7, 0)
			err = newWorkflowPanicError(p, st)
		}
	}()

	dc := getDataConverterFromActivityCtx(ctx)
	fnType := reflect.TypeOf(ae.fn)
	args, decodeErr := decodeArgs(dc, fnType, input, activityArgStartIndex(fnType))
	if decodeErr != nil {
		return nil, decodeErr
	}

	fnValue := reflect.ValueOf(ae.fn)
	var callArgs []reflect.Value
	if activityArgStartIndex(fnType) == 1 {
		callArgs = append([]reflect.Value{reflect.ValueOf(ctx)}, args...)
	} else {
		callArgs = args
	}
	results := fnValue.Call(callArgs)
	return validateFunctionAndGetResults(ae.fn, results, dc)
}

func activityArgStartIndex(fnType reflect.Type) int {
	if fnType.NumIn() > 0 && isActivityContext(fnType.In(0)) {
		return 1
	}
	return 0
}
