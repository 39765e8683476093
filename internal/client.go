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

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"

	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/internal/common/metrics"
)

type (
	// Client is the client surface for starting and interacting with
	// workflow executions from outside a workflow.
	Client interface {
		// StartWorkflow starts a workflow execution and returns its
		// execution handle once the service accepted it.
		StartWorkflow(ctx context.Context, options StartWorkflowOptions, workflowFunc interface{}, args ...interface{}) (*WorkflowExecution, error)

		// ExecuteWorkflow starts a workflow execution and returns a
		// WorkflowRun whose Get blocks for the result.
		ExecuteWorkflow(ctx context.Context, options StartWorkflowOptions, workflow interface{}, args ...interface{}) (WorkflowRun, error)

		// GetWorkflow returns a WorkflowRun for an already started execution.
		GetWorkflow(ctx context.Context, workflowID string, runID string) WorkflowRun

		// SignalWorkflow sends a signal to a running workflow execution.
		SignalWorkflow(ctx context.Context, workflowID string, runID string, signalName string, arg interface{}) error

		// SignalWithStartWorkflow sends a signal to a running execution, or
		// starts the workflow first if it is not running.
		SignalWithStartWorkflow(ctx context.Context, workflowID string, signalName string, signalArg interface{},
			options StartWorkflowOptions, workflowFunc interface{}, workflowArgs ...interface{}) (*WorkflowExecution, error)

		// CancelWorkflow requests cancellation of a workflow execution.
		CancelWorkflow(ctx context.Context, workflowID string, runID string) error

		// TerminateWorkflow forcefully closes a workflow execution.
		TerminateWorkflow(ctx context.Context, workflowID string, runID string, reason string, details []byte) error

		// GetWorkflowHistory returns an iterator over an execution's history.
		GetWorkflowHistory(ctx context.Context, workflowID string, runID string, isLongPoll bool, filterType apiv1.EventFilterType) HistoryEventIterator

		// CompleteActivity reports the result of an activity that opted into
		// asynchronous completion by returning ErrActivityResultPending.
		CompleteActivity(ctx context.Context, taskToken []byte, result interface{}, err error) error

		// CompleteActivityByID is CompleteActivity addressed by IDs instead
		// of a task token.
		CompleteActivityByID(ctx context.Context, domain, workflowID, runID, activityID string, result interface{}, err error) error

		// RecordActivityHeartbeat records a heartbeat for an activity.
		RecordActivityHeartbeat(ctx context.Context, taskToken []byte, details ...interface{}) error

		// RecordActivityHeartbeatByID records a heartbeat addressed by IDs.
		RecordActivityHeartbeatByID(ctx context.Context, domain, workflowID, runID, activityID string, details ...interface{}) error

		// ListClosedWorkflow lists closed workflow executions.
		ListClosedWorkflow(ctx context.Context, request *apiv1.ListClosedWorkflowExecutionsRequest) (*apiv1.ListClosedWorkflowExecutionsResponse, error)

		// ListOpenWorkflow lists open workflow executions.
		ListOpenWorkflow(ctx context.Context, request *apiv1.ListOpenWorkflowExecutionsRequest) (*apiv1.ListOpenWorkflowExecutionsResponse, error)

		// ListWorkflow lists workflow executions by visibility query.
		ListWorkflow(ctx context.Context, request *apiv1.ListWorkflowExecutionsRequest) (*apiv1.ListWorkflowExecutionsResponse, error)

		// ListArchivedWorkflow lists archived workflow executions.
		ListArchivedWorkflow(ctx context.Context, request *apiv1.ListArchivedWorkflowExecutionsRequest) (*apiv1.ListArchivedWorkflowExecutionsResponse, error)

		// ScanWorkflow scans workflow executions without full ordering.
		ScanWorkflow(ctx context.Context, request *apiv1.ScanWorkflowExecutionsRequest) (*apiv1.ScanWorkflowExecutionsResponse, error)

		// CountWorkflow counts workflow executions by visibility query.
		CountWorkflow(ctx context.Context, request *apiv1.CountWorkflowExecutionsRequest) (*apiv1.CountWorkflowExecutionsResponse, error)

		// ResetWorkflow resets an execution back to a prior decision.
		ResetWorkflow(ctx context.Context, request *apiv1.ResetWorkflowExecutionRequest) (*apiv1.ResetWorkflowExecutionResponse, error)

		// GetSearchAttributes returns the valid visibility search attributes.
		GetSearchAttributes(ctx context.Context) (*apiv1.GetSearchAttributesResponse, error)

		// DescribeWorkflowExecution returns execution metadata and pending
		// activity information.
		DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*apiv1.DescribeWorkflowExecutionResponse, error)

		// DescribeTaskList returns poller information for a task list.
		DescribeTaskList(ctx context.Context, taskList string, taskListType apiv1.TaskListType) (*apiv1.DescribeTaskListResponse, error)

		// QueryWorkflow queries a workflow execution synchronously.
		QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (Value, error)

		// QueryWorkflowWithOptions queries with full control over rejection
		// conditions and consistency.
		QueryWorkflowWithOptions(ctx context.Context, request *QueryWorkflowWithOptionsRequest) (*QueryWorkflowWithOptionsResponse, error)
	}

	// DomainClient manages domains, the service-side namespaces workflow
	// executions live in.
	DomainClient interface {
		// Register creates a new domain.
		Register(ctx context.Context, request *apiv1.RegisterDomainRequest) error

		// Describe returns a domain's configuration.
		Describe(ctx context.Context, name string) (*apiv1.DescribeDomainResponse, error)

		// Update changes a domain's configuration.
		Update(ctx context.Context, request *apiv1.UpdateDomainRequest) error
	}

	// ClientOptions configures a Client created by NewClient.
	ClientOptions struct {
		MetricsScope       tally.Scope
		Identity           string
		DataConverter      DataConverter
		ContextPropagators []ContextPropagator
		Tracer             opentracing.Tracer
	}
)

// NewClient creates a Client bound to one domain.
func NewClient(service api.Interface, domain string, options *ClientOptions) Client {
	var identity string
	if options == nil || options.Identity == "" {
		identity = getWorkerIdentity("")
	} else {
		identity = options.Identity
	}
	var metricsScope tally.Scope
	var dataConverter DataConverter
	var contextPropagators []ContextPropagator
	var tracer opentracing.Tracer
	if options != nil {
		metricsScope = options.MetricsScope
		dataConverter = options.DataConverter
		contextPropagators = options.ContextPropagators
		tracer = options.Tracer
	}
	if metricsScope == nil {
		metricsScope = tally.NoopScope
	}
	if dataConverter == nil {
		dataConverter = getDefaultDataConverter()
	}
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	return &workflowClient{
		workflowService:    service,
		domain:             domain,
		registry:           getGlobalRegistry(),
		metricsScope:       metrics.NewTaggedScope(metricsScope),
		identity:           identity,
		dataConverter:      dataConverter,
		contextPropagators: contextPropagators,
		tracer:             tracer,
	}
}

// NewDomainClient creates a client for domain management operations.
func NewDomainClient(service api.Interface, options *ClientOptions) DomainClient {
	var identity string
	if options == nil || options.Identity == "" {
		identity = getWorkerIdentity("")
	} else {
		identity = options.Identity
	}
	var metricsScope tally.Scope
	if options != nil {
		metricsScope = options.MetricsScope
	}
	if metricsScope == nil {
		metricsScope = tally.NoopScope
	}
	return &domainClient{
		workflowService: service,
		metricsScope:    metricsScope,
		identity:        identity,
	}
}
