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

// Package api defines the RPC surface the worker and client speak to the
// orchestration service through, and the small set of helpers for
// translating between the wire shapes in apiv1 and the engine's own types.
// The transport that actually carries these calls (gRPC/Thrift in the real
// service) is outside this trimmed module's scope; Interface is the seam a
// caller supplies a concrete client against.
package api

import (
	"context"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// Interface is the full set of RPCs the client and worker issue against the
// orchestration service.
type Interface interface {
	StartWorkflowExecution(ctx context.Context, request *apiv1.StartWorkflowExecutionRequest, opts ...CallOption) (*apiv1.StartWorkflowExecutionResponse, error)
	SignalWithStartWorkflowExecution(ctx context.Context, request *apiv1.SignalWithStartWorkflowExecutionRequest, opts ...CallOption) (*apiv1.SignalWithStartWorkflowExecutionResponse, error)
	SignalWorkflowExecution(ctx context.Context, request *apiv1.SignalWorkflowExecutionRequest, opts ...CallOption) (*apiv1.SignalWorkflowExecutionResponse, error)
	RequestCancelWorkflowExecution(ctx context.Context, request *apiv1.RequestCancelWorkflowExecutionRequest, opts ...CallOption) (*apiv1.RequestCancelWorkflowExecutionResponse, error)
	TerminateWorkflowExecution(ctx context.Context, request *apiv1.TerminateWorkflowExecutionRequest, opts ...CallOption) (*apiv1.TerminateWorkflowExecutionResponse, error)
	GetWorkflowExecutionHistory(ctx context.Context, request *apiv1.GetWorkflowExecutionHistoryRequest, opts ...CallOption) (*apiv1.GetWorkflowExecutionHistoryResponse, error)
	ListClosedWorkflowExecutions(ctx context.Context, request *apiv1.ListClosedWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.ListClosedWorkflowExecutionsResponse, error)
	ListOpenWorkflowExecutions(ctx context.Context, request *apiv1.ListOpenWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.ListOpenWorkflowExecutionsResponse, error)
	ListWorkflowExecutions(ctx context.Context, request *apiv1.ListWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.ListWorkflowExecutionsResponse, error)
	ListArchivedWorkflowExecutions(ctx context.Context, request *apiv1.ListArchivedWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.ListArchivedWorkflowExecutionsResponse, error)
	ScanWorkflowExecutions(ctx context.Context, request *apiv1.ScanWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.ScanWorkflowExecutionsResponse, error)
	CountWorkflowExecutions(ctx context.Context, request *apiv1.CountWorkflowExecutionsRequest, opts ...CallOption) (*apiv1.CountWorkflowExecutionsResponse, error)
	ResetWorkflowExecution(ctx context.Context, request *apiv1.ResetWorkflowExecutionRequest, opts ...CallOption) (*apiv1.ResetWorkflowExecutionResponse, error)
	GetSearchAttributes(ctx context.Context, request *apiv1.GetSearchAttributesRequest, opts ...CallOption) (*apiv1.GetSearchAttributesResponse, error)
	DescribeWorkflowExecution(ctx context.Context, request *apiv1.DescribeWorkflowExecutionRequest, opts ...CallOption) (*apiv1.DescribeWorkflowExecutionResponse, error)
	DescribeTaskList(ctx context.Context, request *apiv1.DescribeTaskListRequest, opts ...CallOption) (*apiv1.DescribeTaskListResponse, error)
	QueryWorkflow(ctx context.Context, request *apiv1.QueryWorkflowRequest, opts ...CallOption) (*apiv1.QueryWorkflowResponse, error)
	RegisterDomain(ctx context.Context, request *apiv1.RegisterDomainRequest, opts ...CallOption) (*apiv1.RegisterDomainResponse, error)
	DescribeDomain(ctx context.Context, request *apiv1.DescribeDomainRequest, opts ...CallOption) (*apiv1.DescribeDomainResponse, error)
	UpdateDomain(ctx context.Context, request *apiv1.UpdateDomainRequest, opts ...CallOption) (*apiv1.UpdateDomainResponse, error)

	PollForActivityTask(ctx context.Context, request *apiv1.PollForActivityTaskRequest, opts ...CallOption) (*apiv1.PollForActivityTaskResponse, error)
	RecordActivityTaskHeartbeat(ctx context.Context, request *apiv1.RecordActivityTaskHeartbeatRequest, opts ...CallOption) (*apiv1.RecordActivityTaskHeartbeatResponse, error)
	RecordActivityTaskHeartbeatById(ctx context.Context, request *apiv1.RecordActivityTaskHeartbeatByIdRequest, opts ...CallOption) (*apiv1.RecordActivityTaskHeartbeatByIdResponse, error)
	RespondActivityTaskCompleted(ctx context.Context, request *apiv1.RespondActivityTaskCompletedRequest, opts ...CallOption) (*apiv1.RespondActivityTaskCompletedResponse, error)
	RespondActivityTaskCompletedById(ctx context.Context, request *apiv1.RespondActivityTaskCompletedByIdRequest, opts ...CallOption) (*apiv1.RespondActivityTaskCompletedByIdResponse, error)
	RespondActivityTaskFailed(ctx context.Context, request *apiv1.RespondActivityTaskFailedRequest, opts ...CallOption) (*apiv1.RespondActivityTaskFailedResponse, error)
	RespondActivityTaskFailedById(ctx context.Context, request *apiv1.RespondActivityTaskFailedByIdRequest, opts ...CallOption) (*apiv1.RespondActivityTaskFailedByIdResponse, error)
	RespondActivityTaskCanceled(ctx context.Context, request *apiv1.RespondActivityTaskCanceledRequest, opts ...CallOption) (*apiv1.RespondActivityTaskCanceledResponse, error)
	RespondActivityTaskCanceledById(ctx context.Context, request *apiv1.RespondActivityTaskCanceledByIdRequest, opts ...CallOption) (*apiv1.RespondActivityTaskCanceledByIdResponse, error)

	PollForDecisionTask(ctx context.Context, request *apiv1.PollForDecisionTaskRequest, opts ...CallOption) (*apiv1.PollForDecisionTaskResponse, error)
	RespondDecisionTaskCompleted(ctx context.Context, request *apiv1.RespondDecisionTaskCompletedRequest, opts ...CallOption) (*apiv1.RespondDecisionTaskCompletedResponse, error)
	RespondDecisionTaskFailed(ctx context.Context, request *apiv1.RespondDecisionTaskFailedRequest, opts ...CallOption) (*apiv1.RespondDecisionTaskFailedResponse, error)
	RespondQueryTaskCompleted(ctx context.Context, request *apiv1.RespondQueryTaskCompletedRequest, opts ...CallOption) (*apiv1.RespondQueryTaskCompletedResponse, error)
}

// CallOption configures a single RPC invocation, mirroring the variadic
// option pattern generated Thrift/gRPC clients expose.
type CallOption func(*CallOptions)

// CallOptions collects the per-call settings CallOption functions set.
type CallOptions struct {
	ResponseHeaders map[string]string
}
