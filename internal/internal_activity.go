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

// Package-private plumbing for the activity side: option validation, the
// activity execution environment carried on the Go context, and the
// reflection helpers that move typed arguments and results across the
// serialized boundary.

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/api"
	"go.uber.org/zap"
)

type (
	// activity is one registered activity implementation.
	activity interface {
		Execute(ctx context.Context, input []byte) ([]byte, error)
		ActivityType() ActivityType
		GetFunction() interface{}
		GetOptions() RegisterActivityOptions
	}

	activityInfo struct {
		activityID string
	}

	localActivityInfo struct {
		activityID string
	}

	// activityOptions are the scheduling parameters attached to a workflow
	// Context by WithActivityOptions.
	activityOptions struct {
		// ActivityID is optional; the engine assigns a sequence ID when the
		// author does not care.
		ActivityID                    *string
		TaskListName                  string
		ScheduleToCloseTimeoutSeconds int32
		ScheduleToStartTimeoutSeconds int32
		StartToCloseTimeoutSeconds    int32
		HeartbeatTimeoutSeconds       int32
		WaitForCancellation           bool
		OriginalTaskListName          string
		RetryPolicy                   *apiv1.RetryPolicy
	}

	localActivityOptions struct {
		ScheduleToCloseTimeoutSeconds int32
		RetryPolicy                   *RetryPolicy
	}

	// executeActivityParams is everything the decision context needs to
	// emit one ScheduleActivityTask.
	executeActivityParams struct {
		activityOptions
		ActivityType  ActivityType
		Input         []byte
		DataConverter DataConverter
		Header        *apiv1.Header
	}

	// executeLocalActivityParams is everything needed to run one local
	// activity inline within the current decision task.
	executeLocalActivityParams struct {
		localActivityOptions
		ActivityFn    interface{}
		ActivityType  string
		InputArgs     []interface{}
		WorkflowInfo  *WorkflowInfo
		DataConverter DataConverter
		Attempt       int32
		ScheduledTime time.Time
		Header        *apiv1.Header
	}

	// asyncActivityClient schedules activities on behalf of workflow code.
	asyncActivityClient interface {
		// ExecuteActivity schedules one activity; callback fires with the
		// result or with an activity failure/timeout/cancellation error.
		ExecuteActivity(parameters executeActivityParams, callback resultHandler) *activityInfo

		// RequestCancelActivity initiates cancellation. Without
		// WaitForCancellation, or for an activity whose schedule decision
		// has not been sent yet, the callback fires immediately with a
		// cancellation error.
		RequestCancelActivity(activityID string)
	}

	// localActivityClient queues local activities for inline execution.
	localActivityClient interface {
		ExecuteLocalActivity(params executeLocalActivityParams, callback laResultHandler) *localActivityInfo

		RequestCancelLocalActivity(activityID string)
	}

	// activityEnvironment is the per-task state an executing activity reads
	// through its Go context: identity of the task, heartbeat plumbing, and
	// the worker facilities it may use.
	activityEnvironment struct {
		taskToken          []byte
		workflowExecution  WorkflowExecution
		activityID         string
		activityType       ActivityType
		serviceInvoker     ServiceInvoker
		logger             *zap.Logger
		metricsScope       tally.Scope
		isLocalActivity    bool
		heartbeatTimeout   time.Duration
		deadline           time.Time
		scheduledTimestamp time.Time
		startedTimestamp   time.Time
		taskList           string
		dataConverter      DataConverter
		attempt            int32 // starts from 0
		heartbeatDetails   []byte
		workflowType       *WorkflowType
		workflowDomain     string
		workerStopChannel  <-chan struct{}
		contextPropagators []ContextPropagator
		tracer             opentracing.Tracer
	}

	// contextKey keeps context.WithValue keys package-scoped.
	contextKey string
)

const (
	activityEnvContextKey          contextKey = "activityEnv"
	activityOptionsContextKey      contextKey = "activityOptions"
	localActivityOptionsContextKey contextKey = "localActivityOptions"
)

func getActivityEnv(ctx context.Context) *activityEnvironment {
	env := ctx.Value(activityEnvContextKey)
	if env == nil {
		panic("getActivityEnv: Not an activity context")
	}
	return env.(*activityEnvironment)
}

func getActivityOptions(ctx Context) *activityOptions {
	eap := ctx.Value(activityOptionsContextKey)
	if eap == nil {
		return nil
	}
	return eap.(*activityOptions)
}

func getLocalActivityOptions(ctx Context) *localActivityOptions {
	opts := ctx.Value(localActivityOptionsContextKey)
	if opts == nil {
		return nil
	}
	return opts.(*localActivityOptions)
}

// getValidatedActivityOptions checks and defaults the options the workflow
// Context carries before an activity can be scheduled. ScheduleToClose
// defaults to the sum of the two phase timeouts; the task list defaults to
// the workflow's own.
func getValidatedActivityOptions(ctx Context) (*activityOptions, error) {
	p := getActivityOptions(ctx)
	if p == nil {
		return nil, errActivityParamsBadRequest
	}
	if p.TaskListName == "" {
		p.TaskListName = p.OriginalTaskListName
	}
	if p.ScheduleToStartTimeoutSeconds <= 0 {
		return nil, errors.New("missing or negative ScheduleToStartTimeoutSeconds")
	}
	if p.StartToCloseTimeoutSeconds <= 0 {
		return nil, errors.New("missing or negative StartToCloseTimeoutSeconds")
	}
	if p.ScheduleToCloseTimeoutSeconds < 0 {
		return nil, errors.New("missing or negative ScheduleToCloseTimeoutSeconds")
	}
	if p.ScheduleToCloseTimeoutSeconds == 0 {
		p.ScheduleToCloseTimeoutSeconds = p.ScheduleToStartTimeoutSeconds + p.StartToCloseTimeoutSeconds
	}
	if p.HeartbeatTimeoutSeconds < 0 {
		return nil, errors.New("invalid negative HeartbeatTimeoutSeconds")
	}
	if err := validateRetryPolicy(p.RetryPolicy); err != nil {
		return nil, err
	}

	return p, nil
}

func getValidatedLocalActivityOptions(ctx Context) (*localActivityOptions, error) {
	p := getLocalActivityOptions(ctx)
	if p == nil {
		return nil, errLocalActivityParamsBadRequest
	}
	if p.ScheduleToCloseTimeoutSeconds <= 0 {
		return nil, errors.New("missing or negative ScheduleToCloseTimeoutSeconds")
	}

	return p, nil
}

// validateRetryPolicy rejects retry policies the service would reject, and
// fills the MaximumInterval default (100x the initial interval). A policy
// must bound itself by attempts or by expiration.
func validateRetryPolicy(p *apiv1.RetryPolicy) error {
	if p == nil {
		return nil
	}

	initial := api.DurationFromProto(p.InitialInterval)
	if initial <= 0 {
		return errors.New("missing or negative InitialInterval on retry policy")
	}
	switch maxInterval := api.DurationFromProto(p.MaximumInterval); {
	case maxInterval < 0:
		return errors.New("negative MaximumInterval on retry policy is invalid")
	case maxInterval == 0:
		p.MaximumInterval = api.DurationToProto(100 * initial)
	}
	if p.GetMaximumAttempts() < 0 {
		return errors.New("negative MaximumAttempts on retry policy is invalid")
	}
	if api.DurationFromProto(p.ExpirationInterval) < 0 {
		return errors.New("ExpirationIntervalInSeconds cannot be less than 0 on retry policy")
	}
	if p.GetBackoffCoefficient() < 1 {
		return errors.New("BackoffCoefficient on retry policy cannot be less than 1.0")
	}
	if p.GetMaximumAttempts() == 0 && api.DurationFromProto(p.ExpirationInterval) == 0 {
		return errors.New("both MaximumAttempts and ExpirationIntervalInSeconds on retry policy are not set, at least one of them must be set")
	}

	return nil
}

// validateFunctionArgs checks that args can be passed to f, skipping over
// f's leading Context parameter (workflow or activity flavor, per
// isWorkflow) when it has one.
func validateFunctionArgs(f interface{}, args []interface{}, isWorkflow bool) error {
	fType := reflect.TypeOf(f)
	if fType == nil || fType.Kind() != reflect.Func {
		return fmt.Errorf("provided type: %v is not a function type", f)
	}
	fnName := getFunctionName(f)

	fnArgIndex := 0
	if fType.NumIn() > 0 {
		first := fType.In(0)
		if (isWorkflow && isWorkflowContext(first)) || (!isWorkflow && isActivityContext(first)) {
			fnArgIndex = 1
		}
	}

	if want := fType.NumIn() - fnArgIndex; want != len(args) {
		return fmt.Errorf("expected %d args for function: %v but found %v", want, fnName, len(args))
	}

	for i := 0; fnArgIndex < fType.NumIn(); fnArgIndex, i = fnArgIndex+1, i+1 {
		fnArgType := fType.In(fnArgIndex)
		argType := reflect.TypeOf(args[i])
		if argType != nil && !argType.AssignableTo(fnArgType) {
			return fmt.Errorf(
				"cannot assign function argument: %d from type: %s to type: %s",
				fnArgIndex+1, argType, fnArgType,
			)
		}
	}

	return nil
}

// getValidatedActivityFunction resolves f (a function value or a registered
// name) to the ActivityType the service knows it by.
func getValidatedActivityFunction(f interface{}, args []interface{}, registry *registry) (*ActivityType, error) {
	fType := reflect.TypeOf(f)
	switch getKind(fType) {
	case reflect.String:
		return &ActivityType{Name: reflect.ValueOf(f).String()}, nil

	case reflect.Func:
		if err := validateFunctionArgs(f, args, false); err != nil {
			return nil, err
		}
		fnName := getFunctionName(f)
		if alias, ok := registry.getActivityAlias(fnName); ok {
			fnName = alias
		}
		return &ActivityType{Name: fnName}, nil

	default:
		return nil, fmt.Errorf(
			"invalid type 'f' parameter provided, it can be either activity function or name of the activity: %v", f)
	}
}

func getKind(fType reflect.Type) reflect.Kind {
	if fType == nil {
		return reflect.Invalid
	}
	return fType.Kind()
}

func isActivityContext(inType reflect.Type) bool {
	contextElem := reflect.TypeOf((*context.Context)(nil)).Elem()
	return inType != nil && inType.Implements(contextElem)
}

// validateFunctionAndGetResults turns the reflect.Values a user function
// returned into (encoded result, error). Functions return error or
// (result, error); the result is encoded unless it is a nil pointer.
func validateFunctionAndGetResults(f interface{}, values []reflect.Value, dataConverter DataConverter) ([]byte, error) {
	resultSize := len(values)
	if resultSize < 1 || resultSize > 2 {
		return nil, fmt.Errorf(
			"the function: %v signature returns %d results, it is expecting to return either error or (result, error)",
			getFunctionName(f), resultSize)
	}

	var result []byte
	if resultSize == 2 {
		retValue := values[0]
		if retValue.Kind() != reflect.Ptr || !retValue.IsNil() {
			var err error
			if result, err = encodeArg(dataConverter, retValue.Interface()); err != nil {
				return nil, err
			}
		}
	}

	errValue := values[resultSize-1]
	if errValue.IsNil() {
		return result, nil
	}
	errInterface, ok := errValue.Interface().(error)
	if !ok {
		return nil, fmt.Errorf(
			"failed to parse error result as it is not of error interface: %v",
			errValue)
	}
	return result, errInterface
}

// serializeResults is validateFunctionAndGetResults over plain interface
// values, used by the interceptor chain where results have already left
// reflection.
func serializeResults(f interface{}, results []interface{}, dataConverter DataConverter) (result []byte, err error) {
	resultSize := len(results)
	if resultSize < 1 || resultSize > 2 {
		return nil, fmt.Errorf(
			"the function: %v signature returns %d results, it is expecting to return either error or (result, error)",
			getFunctionName(f), resultSize)
	}

	if resultSize == 2 && results[0] != nil {
		if result, err = encodeArg(dataConverter, results[0]); err != nil {
			return nil, err
		}
	}

	if errResult := results[resultSize-1]; errResult != nil {
		var ok bool
		if err, ok = errResult.(error); !ok {
			err = fmt.Errorf(
				"failed to serialize error result as it is not of error interface: %v",
				errResult)
		}
	}
	return result, err
}

// deSerializeFnResultFromFnType decodes an encoded result into to when
// fnType declares a result at all. Registration already validated the
// (result, error) / error shapes.
func deSerializeFnResultFromFnType(fnType reflect.Type, result []byte, to interface{}, dataConverter DataConverter) error {
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("expecting only function type but got type: %v", fnType)
	}
	if fnType.NumOut() < 2 || result == nil {
		return nil
	}
	return decodeArg(dataConverter, result, to)
}

// deSerializeFunctionResult decodes result into to, using f's declared
// result type when f is a function (or resolvable through the registry by
// name), and a plain decode otherwise.
func deSerializeFunctionResult(f interface{}, result []byte, to interface{}, dataConverter DataConverter, registry *registry) error {
	fType := reflect.TypeOf(f)
	if dataConverter == nil {
		dataConverter = getDefaultDataConverter()
	}

	switch getKind(fType) {
	case reflect.Func:
		return deSerializeFnResultFromFnType(fType, result, to, dataConverter)

	case reflect.String:
		fnName := reflect.ValueOf(f).String()
		if activity, ok := registry.GetActivity(fnName); ok {
			return deSerializeFnResultFromFnType(reflect.TypeOf(activity.GetFunction()), result, to, dataConverter)
		}
	}

	return decodeArg(dataConverter, result, to)
}

// setActivityParametersIfNotExist ensures the Context carries a private,
// mutable copy of the activity options (deep enough that the retry policy
// is not shared either).
func setActivityParametersIfNotExist(ctx Context) Context {
	var newParams activityOptions
	if params := getActivityOptions(ctx); params != nil {
		newParams = *params
		if params.RetryPolicy != nil {
			retryPolicy := *params.RetryPolicy
			newParams.RetryPolicy = &retryPolicy
		}
	}
	return WithValue(ctx, activityOptionsContextKey, &newParams)
}

func setLocalActivityParametersIfNotExist(ctx Context) Context {
	var newParams localActivityOptions
	if params := getLocalActivityOptions(ctx); params != nil {
		newParams = *params
	}
	return WithValue(ctx, localActivityOptionsContextKey, &newParams)
}
