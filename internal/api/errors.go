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

package api

import "fmt"

// EntityNotExistsError is returned when a requested workflow execution,
// domain or task list does not exist on the cluster handling the request.
type EntityNotExistsError struct {
	Message        string
	ActiveCluster  string
	CurrentCluster string
}

func (e *EntityNotExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "EntityNotExistsError"
}

// WorkflowExecutionAlreadyStartedError is returned when StartWorkflowExecution
// targets a workflow ID with an existing, non-reusable run.
type WorkflowExecutionAlreadyStartedError struct {
	Message        string
	StartRequestID string
	RunID          string
}

func (e *WorkflowExecutionAlreadyStartedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("WorkflowExecutionAlreadyStartedError: runID %s", e.RunID)
}

// DomainAlreadyExistsError is returned when RegisterDomain targets a name
// already in use.
type DomainAlreadyExistsError struct {
	Message string
}

func (e *DomainAlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "DomainAlreadyExistsError"
}

// BadRequestError is returned for a malformed request.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// ServiceBusyError is returned when the cluster is shedding load; callers
// should treat it as transient and retry with backoff.
type ServiceBusyError struct {
	Message string
}

func (e *ServiceBusyError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "ServiceBusyError"
}

// InternalServiceError wraps an unexpected server-side failure.
type InternalServiceError struct {
	Message string
}

func (e *InternalServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "InternalServiceError"
}

// QueryFailedError is returned when a query handler on the worker panics or
// returns an error.
type QueryFailedError struct {
	Message string
}

func (e *QueryFailedError) Error() string {
	return e.Message
}

// LimitExceededError is returned when a request would exceed a configured
// cluster limit (e.g. open workflow count).
type LimitExceededError struct {
	Message string
}

func (e *LimitExceededError) Error() string {
	return e.Message
}
