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

// Package client contains the functions to create an Orbit client: the
// surface used outside a workflow to start executions, signal, query,
// cancel and observe them.
package client

import (
	"github.com/orbitflow/orbit-go/internal"
	"github.com/orbitflow/orbit-go/internal/api"
)

type (
	// Options configures a Client or DomainClient.
	Options = internal.ClientOptions

	// Client interacts with workflow executions in one domain.
	Client = internal.Client

	// DomainClient manages domains.
	DomainClient = internal.DomainClient

	// StartWorkflowOptions configures a new workflow execution.
	StartWorkflowOptions = internal.StartWorkflowOptions

	// WorkflowRun is the handle ExecuteWorkflow returns.
	WorkflowRun = internal.WorkflowRun

	// HistoryEventIterator iterates an execution's history.
	HistoryEventIterator = internal.HistoryEventIterator

	// QueryWorkflowWithOptionsRequest carries the full set of query knobs.
	QueryWorkflowWithOptionsRequest = internal.QueryWorkflowWithOptionsRequest

	// QueryWorkflowWithOptionsResponse is its result.
	QueryWorkflowWithOptionsResponse = internal.QueryWorkflowWithOptionsResponse

	// WorkflowIDReusePolicy controls reuse of closed executions' workflow
	// IDs.
	WorkflowIDReusePolicy = internal.WorkflowIDReusePolicy

	// ParentClosePolicy controls what happens to children when a parent
	// closes.
	ParentClosePolicy = internal.ParentClosePolicy
)

const (
	// WorkflowIDReusePolicyAllowDuplicateFailedOnly allows reuse only when
	// the previous run failed.
	WorkflowIDReusePolicyAllowDuplicateFailedOnly = internal.WorkflowIDReusePolicyAllowDuplicateFailedOnly

	// WorkflowIDReusePolicyAllowDuplicate always allows reuse.
	WorkflowIDReusePolicyAllowDuplicate = internal.WorkflowIDReusePolicyAllowDuplicate

	// WorkflowIDReusePolicyRejectDuplicate never allows reuse.
	WorkflowIDReusePolicyRejectDuplicate = internal.WorkflowIDReusePolicyRejectDuplicate

	// WorkflowIDReusePolicyTerminateIfRunning terminates the running
	// execution and starts a fresh one.
	WorkflowIDReusePolicyTerminateIfRunning = internal.WorkflowIDReusePolicyTerminateIfRunning
)

const (
	// ParentClosePolicyTerminate terminates the child when the parent
	// closes.
	ParentClosePolicyTerminate = internal.ParentClosePolicyTerminate

	// ParentClosePolicyRequestCancel requests cancellation of the child.
	ParentClosePolicyRequestCancel = internal.ParentClosePolicyRequestCancel

	// ParentClosePolicyAbandon leaves the child running.
	ParentClosePolicyAbandon = internal.ParentClosePolicyAbandon
)

// NewClient creates a Client bound to one domain.
func NewClient(service api.Interface, domain string, options *Options) Client {
	return internal.NewClient(service, domain, options)
}

// NewDomainClient creates a DomainClient.
func NewDomainClient(service api.Interface, options *Options) DomainClient {
	return internal.NewDomainClient(service, options)
}

// NewValue creates a Value from encoded data, for deserializing activity
// progress and error details.
func NewValue(data []byte) internal.Value {
	return internal.NewValue(data)
}

// NewValues creates a Values from encoded data.
func NewValues(data []byte) internal.Values {
	return internal.NewValues(data)
}
