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

// Package orbit and its subdirectories contain an Orbit client side framework.
//
// The Orbit client side framework provides a set of APIs to author workflows
// and activities and to communicate with the Orbit orchestration service.
package orbit

import (
	"github.com/orbitflow/orbit-go/internal"
)

type (
	// Error types exposed to workflow and activity authors. See the
	// constructors below and the documentation on each underlying type.

	// CustomError is an application-defined failure carrying a reason string
	// and optional details.
	CustomError = internal.CustomError

	// GenericError wraps a failure whose original type is unknown on the
	// replaying side.
	GenericError = internal.GenericError

	// TimeoutError is returned when an activity or workflow exceeds one of
	// its configured timeouts.
	TimeoutError = internal.TimeoutError

	// CanceledError is returned from canceled activities, child workflows
	// and workflow contexts.
	CanceledError = internal.CanceledError

	// TerminatedError indicates the workflow execution was terminated from
	// outside.
	TerminatedError = internal.TerminatedError

	// PanicError is produced when workflow or activity code panics.
	PanicError = internal.PanicError

	// ContinueAsNewError closes the current run and starts a new one; create
	// with workflow.NewContinueAsNewError.
	ContinueAsNewError = internal.ContinueAsNewError

	// UnknownExternalWorkflowExecutionError indicates a signal or cancel
	// targeted an execution the service does not know.
	UnknownExternalWorkflowExecutionError = internal.UnknownExternalWorkflowExecutionError

	// TimeoutType distinguishes which timeout fired.
	TimeoutType = internal.TimeoutType

	// RetryPolicy configures service-side retries for activities and
	// workflows.
	RetryPolicy = internal.RetryPolicy

	// Values can extract strongly typed data out of encoded payloads.
	Values = internal.Values
)

// NewCustomError creates a CustomError with the given reason and details.
func NewCustomError(reason string, details ...interface{}) *CustomError {
	return internal.NewCustomError(reason, details...)
}

// NewCanceledError creates a CanceledError carrying optional details.
func NewCanceledError(details ...interface{}) *CanceledError {
	return internal.NewCanceledError(details...)
}

// NewTimeoutError creates a TimeoutError, mostly useful in tests.
func NewTimeoutError(timeoutType TimeoutType, details ...interface{}) *TimeoutError {
	return internal.NewTimeoutError(timeoutType, details...)
}

// NewHeartbeatTimeoutError creates a heartbeat TimeoutError.
func NewHeartbeatTimeoutError(details ...interface{}) *TimeoutError {
	return internal.NewHeartbeatTimeoutError(details...)
}

// IsCanceledError returns whether err is, or wraps, a cancellation.
func IsCanceledError(err error) bool {
	return internal.IsCanceledError(err)
}
