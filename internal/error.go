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
	"errors"
	"fmt"
	"reflect"
	"strings"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

const (
	errReasonPanic       = "orbitInternal:Panic"
	errReasonGeneric     = "orbitInternal:Generic"
	errReasonCanceled    = "orbitInternal:Canceled"
	errReasonTimeout     = "orbitInternal:Timeout"
	errReasonTerminated  = "orbitInternal:Terminated"
)

type (
	// GenericError wraps an error whose original type is unknown to the
	// replaying side, typically a plain errors.New from user workflow/activity
	// code that crossed a history boundary as a reason/details pair.
	GenericError struct {
		err string
	}

	// CustomError is an application-defined failure raised with
	// NewCustomError, carrying a reason string and optional details.
	CustomError struct {
		reason  string
		details Values
	}

	// CanceledError is returned from an activity or child workflow that was
	// canceled, and from a workflow Context whose cancellation was observed.
	CanceledError struct {
		details Values
	}

	// TimeoutError is returned when an activity, decision task or workflow
	// exceeds one of its configured timeouts.
	TimeoutError struct {
		timeoutType TimeoutType
		details     Values
		lastErr     error
	}

	// TerminatedError is returned from WorkflowRun.Get when the workflow was
	// terminated from outside instead of completing normally.
	TerminatedError struct{}

	// PanicError is returned when workflow code panics instead of returning
	// an error; StackTrace preserves the panicking goroutine's stack for
	// diagnosis.
	PanicError struct {
		value      interface{}
		stackTrace string
	}

	// ContinueAsNewError instructs the decider to close the current run and
	// start a fresh one with new input, returned by
	// workflow.NewContinueAsNewError.
	ContinueAsNewError struct {
		params *executeWorkflowParams
		args   []interface{}
	}

	// UnknownExternalWorkflowExecutionError is returned when a signal or
	// cancel request targets a workflow execution the service has no record
	// of.
	UnknownExternalWorkflowExecutionError struct{}

	// ErrorDetailsValues is a Values backed directly by already-typed Go
	// values rather than encoded bytes, used by the test environment to hand
	// back details without a round trip through a DataConverter.
	ErrorDetailsValues []interface{}

	// TimeoutType mirrors apiv1.TimeoutType for package consumers that
	// shouldn't need to import apiv1 directly.
	TimeoutType = apiv1.TimeoutType
)

func (e *GenericError) Error() string {
	return e.err
}

// NewCustomError creates a CustomError carrying the given reason and,
// optionally, arbitrary details serialized with the default data converter.
// reason must not use the orbitInternal: prefix reserved for errors the
// engine itself constructs.
func NewCustomError(reason string, details ...interface{}) *CustomError {
	if strings.HasPrefix(reason, "orbitInternal:") {
		panic("'orbitInternal:' is a reserved prefix for error reasons")
	}
	return &CustomError{reason: reason, details: encodeDetails(nil, details...)}
}

func (e *CustomError) Error() string {
	return e.reason
}

// Reason returns the application-defined reason string.
func (e *CustomError) Reason() string {
	return e.reason
}

// HasDetails reports whether the error carries additional details.
func (e *CustomError) HasDetails() bool {
	return e.details != nil && e.details.HasValues()
}

// Details extracts the error's details into valuePtr.
func (e *CustomError) Details(valuePtr ...interface{}) error {
	if !e.HasDetails() {
		return ErrNoData
	}
	return e.details.Get(valuePtr...)
}

// NewCanceledError creates a CanceledError carrying the given details.
func NewCanceledError(details ...interface{}) *CanceledError {
	return &CanceledError{details: encodeDetails(nil, details...)}
}

func (e *CanceledError) Error() string {
	return "canceled"
}

// HasDetails reports whether the error carries additional details.
func (e *CanceledError) HasDetails() bool {
	return e.details != nil && e.details.HasValues()
}

// Details extracts the error's details into valuePtr.
func (e *CanceledError) Details(valuePtr ...interface{}) error {
	if !e.HasDetails() {
		return ErrNoData
	}
	return e.details.Get(valuePtr...)
}

// NewTimeoutError creates a TimeoutError for the given timeout type and
// optional details (the partial heartbeat details recorded before an
// activity's last attempt timed out, for example).
func NewTimeoutError(timeoutType TimeoutType, details ...interface{}) *TimeoutError {
	return &TimeoutError{timeoutType: timeoutType, details: encodeDetails(nil, details...)}
}

// NewHeartbeatTimeoutError creates a TimeoutError for a missed activity
// heartbeat, carrying the last heartbeat details recorded before the
// timeout, if any.
func NewHeartbeatTimeoutError(details ...interface{}) *TimeoutError {
	return &TimeoutError{timeoutType: apiv1.TimeoutTypeHeartbeat, details: encodeDetails(nil, details...)}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("TimeoutType: %v", e.timeoutType)
}

// TimeoutType returns which timeout elapsed.
func (e *TimeoutError) TimeoutType() TimeoutType {
	return e.timeoutType
}

// HasDetails reports whether the error carries additional details.
func (e *TimeoutError) HasDetails() bool {
	return e.details != nil && e.details.HasValues()
}

// Details extracts the error's details into valuePtr.
func (e *TimeoutError) Details(valuePtr ...interface{}) error {
	if !e.HasDetails() {
		return ErrNoData
	}
	return e.details.Get(valuePtr...)
}

func newTerminatedError() error {
	return &TerminatedError{}
}

func (e *TerminatedError) Error() string {
	return "terminated"
}

func newWorkflowPanicError(value interface{}, stackTrace string) error {
	return &PanicError{value: value, stackTrace: stackTrace}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v", e.value)
}

// StackTrace returns the stack trace captured at the panic site.
func (e *PanicError) StackTrace() string {
	return e.stackTrace
}

func (e *ContinueAsNewError) Error() string {
	return "continue as new"
}

// WorkflowType returns the type of the workflow the new run will execute.
func (e *ContinueAsNewError) WorkflowType() *WorkflowType {
	return e.params.workflowType
}

// Args returns the arguments the new run will be started with.
func (e *ContinueAsNewError) Args() []interface{} {
	return e.args
}

func (e *UnknownExternalWorkflowExecutionError) Error() string {
	return "unknown external workflow execution"
}

func newUnknownExternalWorkflowExecutionError() error {
	return &UnknownExternalWorkflowExecutionError{}
}

// IsCanceledError reports whether err is a CanceledError.
func IsCanceledError(err error) bool {
	_, ok := err.(*CanceledError)
	return ok
}

// ErrTooManyArg is returned when more value pointers are passed to Get than
// there are values to decode into them.
var ErrTooManyArg = errors.New("too many arguments")

// HasValues implements Values.
func (b ErrorDetailsValues) HasValues() bool {
	return len(b) > 0
}

// Get implements Values, assigning each stored value into the corresponding
// valuePtr by reflection.
func (b ErrorDetailsValues) Get(valuePtr ...interface{}) error {
	if len(b) == 0 {
		return ErrNoData
	}
	if len(valuePtr) > len(b) {
		return ErrTooManyArg
	}
	for i, p := range valuePtr {
		if err := assignValue(b[i], p); err != nil {
			return err
		}
	}
	return nil
}

func assignValue(value interface{}, ptr interface{}) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("value parameter must be a non-nil pointer")
	}
	elem := rv.Elem()
	vv := reflect.ValueOf(value)
	if !vv.IsValid() {
		return nil
	}
	if !vv.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("unable to assign value of type %v to argument of type %v", vv.Type(), elem.Type())
	}
	elem.Set(vv)
	return nil
}

func timeoutTypeString(t apiv1.TimeoutType) string {
	switch t {
	case apiv1.TimeoutTypeStartToClose:
		return errReasonTimeout + "StartToClose"
	case apiv1.TimeoutTypeScheduleToStart:
		return errReasonTimeout + "ScheduleToStart"
	case apiv1.TimeoutTypeScheduleToClose:
		return errReasonTimeout + "ScheduleToClose"
	case apiv1.TimeoutTypeHeartbeat:
		return errReasonTimeout + "Heartbeat"
	default:
		return errReasonTimeout
	}
}

func timeoutTypeFromString(reason string) (apiv1.TimeoutType, bool) {
	suffix := strings.TrimPrefix(reason, errReasonTimeout)
	switch suffix {
	case "StartToClose":
		return apiv1.TimeoutTypeStartToClose, true
	case "ScheduleToStart":
		return apiv1.TimeoutTypeScheduleToStart, true
	case "ScheduleToClose":
		return apiv1.TimeoutTypeScheduleToClose, true
	case "Heartbeat":
		return apiv1.TimeoutTypeHeartbeat, true
	default:
		return 0, false
	}
}

// getErrorDetails recovers the (reason, details) pair the decider records in
// history for a failed activity, child workflow or local activity, the
// inverse of constructError.
func getErrorDetails(err error, dc DataConverter) (string, []byte) {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	switch e := err.(type) {
	case *CustomError:
		return e.reason, rawDetails(e.details)
	case *CanceledError:
		return errReasonCanceled, rawDetails(e.details)
	case *TimeoutError:
		return timeoutTypeString(e.timeoutType), rawDetails(e.details)
	case *GenericError:
		return errReasonGeneric, []byte(e.err)
	case *TerminatedError:
		return errReasonTerminated, nil
	case *PanicError:
		return errReasonPanic, []byte(e.Error())
	default:
		if err == nil {
			return "", nil
		}
		return errReasonGeneric, []byte(err.Error())
	}
}

func rawDetails(v Values) []byte {
	ev, ok := v.(*EncodedValues)
	if !ok || ev == nil {
		return nil
	}
	return ev.values
}

// encodeDetails serializes details with dc (the default converter if nil)
// and wraps the resulting bytes, mirroring how CustomError/CanceledError/
// TimeoutError store the details passed to their constructors.
func encodeDetails(dc DataConverter, details ...interface{}) Values {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	if len(details) == 0 {
		return newEncodedValues(nil, dc)
	}
	data, err := dc.ToData(details...)
	if err != nil {
		return newEncodedValues(nil, dc)
	}
	return newEncodedValues(data, dc)
}

// constructError rebuilds a typed error from the (reason, details) pair
// recorded in history, the inverse of getErrorDetails.
func constructError(reason string, details []byte, dc DataConverter) error {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	switch {
	case reason == errReasonCanceled:
		return &CanceledError{details: newEncodedValues(details, dc)}
	case reason == errReasonTerminated:
		return newTerminatedError()
	case reason == errReasonPanic:
		return &PanicError{value: string(details)}
	case strings.HasPrefix(reason, errReasonTimeout):
		timeoutType, ok := timeoutTypeFromString(reason)
		if !ok {
			timeoutType = apiv1.TimeoutTypeStartToClose
		}
		return &TimeoutError{timeoutType: timeoutType, details: newEncodedValues(details, dc)}
	case reason == errReasonGeneric:
		return &GenericError{err: string(details)}
	default:
		return &CustomError{reason: reason, details: newEncodedValues(details, dc)}
	}
}

// ErrCanceled is returned by blocking workflow calls when their Context is
// canceled.
var ErrCanceled error = NewCanceledError()

// ErrNoData is returned when Get/Details is called on a Value/Values or
// error that carries no payload.
var ErrNoData = errors.New("no data available")

// ErrSkipArchival is returned by a DataConverter.FromData implementation
// the worker chose not to implement for a given shape.
var ErrSkipArchival = errors.New("skip archival")

// ---------------------------------------------------------------------------
// Value/Values implementation shared by activity results, workflow results,
// signals and query results.

// EncodedValue holds a single value exactly as it arrived on the wire,
// decoding it lazily through a DataConverter only when Get is called.
type EncodedValue struct {
	value         []byte
	dataConverter DataConverter
}

// NewValue wraps already-encoded data for decoding through the default data
// converter.
func NewValue(data []byte) Value {
	return newEncodedValue(data, nil)
}

// NewValues wraps already-encoded data for decoding through the default data
// converter.
func NewValues(data []byte) Values {
	return newEncodedValues(data, nil)
}

func newEncodedValue(data []byte, dc DataConverter) Value {
	if dc == nil {
		dc = getDefaultDataConverter()
	}
	return &EncodedValue{value: data, dataConverter: dc}
}

// HasValue implements Value.
func (b *EncodedValue) HasValue() bool {
	return len(b.value) > 0
}

// Get implements Value.
func (b *EncodedValue) Get(valuePtr interface{}) error {
	if !b.HasValue() {
		return ErrNoData
	}
	return b.dataConverter.FromData(b.value, valuePtr)
}
