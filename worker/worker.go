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

// Package worker contains functions to manage the lifecycle of an Orbit
// client side worker.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/activity"
	"github.com/orbitflow/orbit-go/internal"
	"github.com/orbitflow/orbit-go/internal/api"
	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
	"github.com/orbitflow/orbit-go/workflow"
)

type (
	// Worker hosts workflow and activity implementations.
	// Use worker.New(...) to create an instance.
	Worker interface {
		Registry

		// Start starts the worker in a non-blocking fashion.
		Start() error
		// Run is a blocking start that cleans up resources when killed.
		// It returns an error only if the worker fails to start.
		Run() error
		// Stop cleans up any resources opened by the worker.
		Stop()
	}

	// Registry exposes registration functions to consumers.
	Registry interface {
		WorkflowRegistry
		ActivityRegistry
	}

	// WorkflowRegistry exposes workflow registration functions to consumers.
	WorkflowRegistry interface {
		// RegisterWorkflow registers a workflow function with the worker.
		// A workflow takes a workflow.Context and input and returns a (result, error) or just error.
		// Examples:
		//	func sampleWorkflow(ctx workflow.Context, input []byte) (result []byte, err error)
		//	func sampleWorkflow(ctx workflow.Context, arg1 int, arg2 string) (result []byte, err error)
		//	func sampleWorkflow(ctx workflow.Context) (result []byte, err error)
		//	func sampleWorkflow(ctx workflow.Context, arg1 int) (result string, err error)
		// Serialization of all primitive types and structures is supported, except channels,
		// functions, variadic arguments and unsafe pointers.
		// This method panics if the function doesn't comply with the expected format or the
		// same workflow type name is registered twice.
		RegisterWorkflow(w interface{})

		// RegisterWorkflowWithOptions registers the workflow function with options.
		// Options can provide an external name:
		//  worker.RegisterWorkflowWithOptions(sampleWorkflow, workflow.RegisterOptions{Name: "foo"})
		// Use workflow.RegisterOptions.DisableAlreadyRegisteredCheck to allow multiple registrations.
		RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	}

	// ActivityRegistry exposes activity registration functions to consumers.
	ActivityRegistry interface {
		// RegisterActivity registers an activity function, or a pointer to a structure
		// whose exported methods are all treated as activities, with the worker.
		// An activity function takes a context.Context and input and returns a
		// (result, error) or just error:
		//	func sampleActivity(ctx context.Context, input []byte) (result []byte, err error)
		//	func sampleActivity(arg1 bool) (result int, err error)
		// This method panics if the function doesn't comply with the expected format or an
		// activity with the same type name is registered more than once.
		RegisterActivity(a interface{})

		// RegisterActivityWithOptions registers the activity function or struct pointer
		// with options. Options can provide an external name, or a name prefix when
		// registering a structure:
		//  worker.RegisterActivityWithOptions(barActivity, activity.RegisterOptions{Name: "barExternal"})
		//  worker.RegisterActivityWithOptions(&Activities{...}, activity.RegisterOptions{Name: "MyActivities_"})
		// Use activity.RegisterOptions.DisableAlreadyRegisteredCheck to allow multiple
		// registrations, which can be useful in integration tests.
		RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
	}

	// WorkflowReplayer supports replaying a workflow from its event history.
	// Use it for troubleshooting and backwards compatibility unit tests: if a
	// workflow failed in production, download its history and replay it in a
	// debugger as many times as necessary. Maintaining compatibility through
	// workflow.GetVersion ensures new deployments don't break open workflows.
	WorkflowReplayer interface {
		WorkflowRegistry

		// ReplayWorkflowHistory executes a single decision task for the given history.
		// An error means the registered workflow code diverged from the recorded run.
		// The logger is optional and defaults to the noop logger.
		ReplayWorkflowHistory(logger *zap.Logger, history *apiv1.History) error

		// ReplayWorkflowHistoryFromJSONFile executes a single decision task for the
		// JSON history file downloaded from the CLI.
		ReplayWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string) error

		// ReplayPartialWorkflowHistoryFromJSONFile executes a single decision task for
		// the JSON history file up to lastEventID (inclusive).
		ReplayPartialWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string, lastEventID int64) error

		// ReplayWorkflowExecution loads an execution's history from the service and
		// executes a single decision task for it.
		ReplayWorkflowExecution(ctx context.Context, service api.Interface, logger *zap.Logger, domain string, execution workflow.Execution) error
	}

	// Options is used to configure a worker instance.
	Options = internal.WorkerOptions

	// ReplayOptions is used to configure the replay decision task worker.
	ReplayOptions = internal.ReplayOptions

	// NonDeterministicWorkflowPolicy is an enum for configuring how the decision task
	// handler deals with history events that no longer match what replaying the
	// workflow code produces.
	NonDeterministicWorkflowPolicy = internal.NonDeterministicWorkflowPolicy
)

const (
	// NonDeterministicWorkflowPolicyBlockWorkflow is the default policy for handling
	// detected non-determinism: log an error and reply nothing back to the server, so
	// the decision task is redelivered and surfaces the same failure until the code
	// (or the history) is fixed.
	NonDeterministicWorkflowPolicyBlockWorkflow = internal.NonDeterministicWorkflowPolicyBlockWorkflow
	// NonDeterministicWorkflowPolicyFailWorkflow replies back with a request to fail
	// the workflow execution instead.
	NonDeterministicWorkflowPolicyFailWorkflow = internal.NonDeterministicWorkflowPolicyFailWorkflow
)

// New creates an instance of worker for managing workflow and activity executions.
//    service  - API interface to the Orbit server
//    domain   - the name of the Orbit domain
//    taskList - is the task list name you use to identify your client worker, also
//               identifies the group of workflow and activity implementations that
//               are hosted by a single worker process
//    options  - configure any worker specific options like logger, metrics, identity
func New(
	service api.Interface,
	domain string,
	taskList string,
	options Options,
) Worker {
	return internal.NewWorker(service, domain, taskList, options)
}

// NewWorkflowReplayer creates a WorkflowReplayer instance.
func NewWorkflowReplayer() WorkflowReplayer {
	return internal.NewWorkflowReplayer()
}

// NewWorkflowReplayerWithOptions creates an instance of the WorkflowReplayer
// with the provided replay worker options, needed when the replayed workflows
// use non-default data converters, context propagators, interceptors or
// tracers.
func NewWorkflowReplayerWithOptions(
	options ReplayOptions,
) WorkflowReplayer {
	return internal.NewWorkflowReplayerWithOptions(options)
}

// EnableVerboseLogging enables or disables verbose logging of internal Orbit
// library components. Most users don't need this feature; there is also no
// guarantee this API is not going to change.
func EnableVerboseLogging(enable bool) {
	internal.EnableVerboseLogging(enable)
}

// ReplayWorkflowHistory executes a single decision task for the given history
// against workflows registered in the global registry.
// Use for testing the backwards compatibility of code changes and troubleshooting
// workflows in a debugger. The logger is an optional parameter; it defaults to
// the noop logger.
func ReplayWorkflowHistory(logger *zap.Logger, history *apiv1.History) error {
	return internal.ReplayWorkflowHistory(logger, history)
}

// ReplayWorkflowHistoryFromJSONFile executes a single decision task for the
// JSON history file downloaded from the CLI, against workflows registered in
// the global registry.
func ReplayWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string) error {
	return internal.ReplayWorkflowHistoryFromJSONFile(logger, jsonfileName)
}

// ReplayPartialWorkflowHistoryFromJSONFile executes a single decision task for
// the JSON history file up to lastEventID (inclusive), against workflows
// registered in the global registry.
func ReplayPartialWorkflowHistoryFromJSONFile(logger *zap.Logger, jsonfileName string, lastEventID int64) error {
	return internal.ReplayPartialWorkflowHistoryFromJSONFile(logger, jsonfileName, lastEventID)
}

// ReplayWorkflowExecution loads a workflow execution's history from the Orbit
// service and executes a single decision task for it, against workflows
// registered in the global registry.
func ReplayWorkflowExecution(ctx context.Context, service api.Interface, logger *zap.Logger, domain string, execution workflow.Execution) error {
	return internal.ReplayWorkflowExecution(ctx, service, logger, domain, execution)
}

// SetStickyWorkflowCacheSize sets the cache size for the sticky workflow cache.
// Sticky workflow execution is the affinity between decision tasks of a specific
// workflow execution and a specific worker: the workflow does not have to
// reconstruct its state by replaying from the beginning of history, at the cost
// of caching the execution's running state on the worker. The cache is shared
// between workers running within the same process. This must be called before
// any worker is started; if not called, the default size of 10K is used.
func SetStickyWorkflowCacheSize(cacheSize int) {
	internal.SetStickyWorkflowCacheSize(cacheSize)
}

// SetBinaryChecksum sets the identifier of the worker binary (the
// BinaryChecksum), reported on every decision poll and completion. The service
// uses it to record per-binary auto-reset points, so a binary later marked bad
// can have its workflows reset to before its first decision.
func SetBinaryChecksum(checksum string) {
	internal.SetBinaryChecksum(checksum)
}
