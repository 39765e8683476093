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
	"crypto/md5"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orbitflow/orbit-go/internal/api"
)

const (
	defaultConcurrentPollRoutineSize = 2

	defaultMaxConcurrentActivityExecutionSize = 1000
	defaultMaxConcurrentDecisionTaskExecutionSize = 1000

	defaultWorkerStopTimeout = time.Minute
)

// NonDeterministicWorkflowPolicy is an enum for the policy applied when a
// replay detects that the workflow code no longer reproduces its history.
type NonDeterministicWorkflowPolicy int

const (
	// NonDeterministicWorkflowPolicyBlockWorkflow is the default policy: the
	// worker returns no decisions, the decision task times out and the
	// service redelivers it, surfacing the same failure until intervention.
	NonDeterministicWorkflowPolicyBlockWorkflow NonDeterministicWorkflowPolicy = iota
	// NonDeterministicWorkflowPolicyFailWorkflow converts the detected
	// non-determinism into a terminal FailWorkflowExecution decision.
	NonDeterministicWorkflowPolicyFailWorkflow
)

type (
	// WorkerOptions configures a Worker instance.
	WorkerOptions struct {
		// MaxConcurrentActivityExecutionSize caps concurrently executing
		// activity tasks. Defaults to 1000.
		MaxConcurrentActivityExecutionSize int

		// MaxConcurrentDecisionTaskExecutionSize caps concurrently executing
		// decision tasks. Defaults to 1000.
		MaxConcurrentDecisionTaskExecutionSize int

		// WorkerActivitiesPerSecond throttles activity task processing on
		// this worker. Zero means unlimited.
		WorkerActivitiesPerSecond float64

		// AutoHeartBeat is carried into the worker parameters; the worker
		// does not heartbeat activities in the background.
		AutoHeartBeat bool

		// Identity labels this worker in service-side records. Defaults to
		// pid@hostname@taskList.
		Identity string

		// MetricsScope receives worker metrics. Defaults to a noop scope.
		MetricsScope tally.Scope

		// Logger for the worker and all workflow/activity loggers derived
		// from it. Defaults to a production zap logger.
		Logger *zap.Logger

		// EnableLoggingInReplay emits workflow logs during replay too.
		// Defaults to false so each logical log line appears exactly once.
		EnableLoggingInReplay bool

		// DisableWorkflowWorker turns off decision task polling.
		DisableWorkflowWorker bool

		// DisableActivityWorker turns off activity task polling.
		DisableActivityWorker bool

		// DisableStickyExecution forces a full history replay on every
		// decision task instead of caching execution state between tasks.
		DisableStickyExecution bool

		// StickyScheduleToStartTimeout bounds how long a decision task may
		// wait on this worker's sticky task list before falling back to the
		// shared one. Defaults to 5s.
		StickyScheduleToStartTimeout time.Duration

		// BackgroundActivityContext is the root context visible to every
		// activity this worker runs.
		BackgroundActivityContext context.Context

		// NonDeterministicWorkflowPolicy picks the reaction to detected
		// non-determinism. Defaults to blocking the workflow.
		NonDeterministicWorkflowPolicy NonDeterministicWorkflowPolicy

		// DataConverter customizes payload serialization. Defaults to the
		// JSON converter.
		DataConverter DataConverter

		// WorkerStopTimeout bounds graceful shutdown. Defaults to one minute.
		WorkerStopTimeout time.Duration

		// ContextPropagators carry headers between client, workflow and
		// activity contexts.
		ContextPropagators []ContextPropagator

		// Tracer enables distributed tracing spans around workflow and
		// activity execution.
		Tracer opentracing.Tracer

		// WorkflowInterceptorChainFactories wrap every workflow execution
		// with the produced interceptors, outermost first.
		WorkflowInterceptorChainFactories []WorkflowInterceptorFactory
	}

	// workerExecutionParameters is the resolved per-worker configuration
	// shared by task handlers, pollers and the hosting baseWorkers.
	workerExecutionParameters struct {
		Domain   string
		TaskList string
		Identity string

		ConcurrentPollRoutineSize           int
		ConcurrentActivityExecutionSize     int
		ConcurrentDecisionTaskExecutionSize int
		WorkerActivitiesPerSecond           float64

		AutoHeartBeat         bool
		EnableLoggingInReplay bool

		DisableStickyExecution       bool
		StickyScheduleToStartTimeout time.Duration

		NonDeterministicWorkflowPolicy NonDeterministicWorkflowPolicy

		Logger       *zap.Logger
		MetricsScope tally.Scope

		DataConverter      DataConverter
		UserContext        context.Context
		ContextPropagators []ContextPropagator
		Tracer             opentracing.Tracer

		WorkflowInterceptors []WorkflowInterceptorFactory

		WorkerStopTimeout time.Duration
		WorkerStopChannel <-chan struct{}
	}

	// workflowWorker wraps a baseWorker polling decision tasks.
	workflowWorker struct {
		executionParameters workerExecutionParameters
		workflowService     api.Interface
		worker              *baseWorker
		identity            string
		stopC               chan struct{}
	}

	// activityWorker wraps a baseWorker polling activity tasks.
	activityWorker struct {
		executionParameters workerExecutionParameters
		workflowService     api.Interface
		worker              *baseWorker
		identity            string
		stopC               chan struct{}
	}

	// aggregatedWorker combines the workflow and activity workers for one
	// (domain, task list) pair behind the public Worker interface.
	aggregatedWorker struct {
		workflowWorker *workflowWorker
		activityWorker *activityWorker
		logger         *zap.Logger
		registry       *registry
		stopC          chan struct{}
		stopOnce       sync.Once
	}
)

// NewWorker creates a worker polling the given domain and task list against
// the given service client. Call RegisterWorkflow/RegisterActivity before
// Start.
func NewWorker(
	service api.Interface,
	domain string,
	taskList string,
	options WorkerOptions,
) *aggregatedWorker {
	return newAggregatedWorker(service, domain, taskList, options)
}

func newAggregatedWorker(
	service api.Interface,
	domain string,
	taskList string,
	options WorkerOptions,
) *aggregatedWorker {
	if domain == "" {
		panic("domain is required")
	}
	if taskList == "" {
		panic("task list is required")
	}

	stopC := make(chan struct{})
	params := workerExecutionParametersFromOptions(domain, taskList, options, stopC)
	registry := newRegistry()

	var workflowWorker *workflowWorker
	if !options.DisableWorkflowWorker {
		workflowWorker = newWorkflowWorker(service, params, registry)
	}
	var activityWorker *activityWorker
	if !options.DisableActivityWorker {
		activityWorker = newActivityWorker(service, params, registry)
	}

	return &aggregatedWorker{
		workflowWorker: workflowWorker,
		activityWorker: activityWorker,
		logger:         params.Logger,
		registry:       registry,
		stopC:          stopC,
	}
}

func workerExecutionParametersFromOptions(
	domain string,
	taskList string,
	options WorkerOptions,
	stopC chan struct{},
) workerExecutionParameters {
	identity := options.Identity
	if identity == "" {
		identity = getWorkerIdentity(taskList)
	}
	logger := options.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			panic(fmt.Sprintf("default logger: %v", err))
		}
		logger.Info("No logger configured for orbit worker, created default one.")
	}
	logger = augmentWorkerLogger(logger, domain, taskList)
	metricsScope := options.MetricsScope
	if metricsScope == nil {
		metricsScope = tally.NoopScope
	}
	dataConverter := options.DataConverter
	if dataConverter == nil {
		dataConverter = getDefaultDataConverter()
	}
	concurrentActivity := options.MaxConcurrentActivityExecutionSize
	if concurrentActivity <= 0 {
		concurrentActivity = defaultMaxConcurrentActivityExecutionSize
	}
	concurrentDecision := options.MaxConcurrentDecisionTaskExecutionSize
	if concurrentDecision <= 0 {
		concurrentDecision = defaultMaxConcurrentDecisionTaskExecutionSize
	}
	stickyTimeout := options.StickyScheduleToStartTimeout
	if stickyTimeout <= 0 {
		stickyTimeout = stickyDecisionScheduleToStartTimeoutSeconds * time.Second
	}
	stopTimeout := options.WorkerStopTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultWorkerStopTimeout
	}

	return workerExecutionParameters{
		Domain:                              domain,
		TaskList:                            taskList,
		Identity:                            identity,
		ConcurrentPollRoutineSize:           defaultConcurrentPollRoutineSize,
		ConcurrentActivityExecutionSize:     concurrentActivity,
		ConcurrentDecisionTaskExecutionSize: concurrentDecision,
		WorkerActivitiesPerSecond:           options.WorkerActivitiesPerSecond,
		AutoHeartBeat:                       options.AutoHeartBeat,
		EnableLoggingInReplay:               options.EnableLoggingInReplay,
		DisableStickyExecution:              options.DisableStickyExecution,
		StickyScheduleToStartTimeout:        stickyTimeout,
		NonDeterministicWorkflowPolicy:      options.NonDeterministicWorkflowPolicy,
		Logger:                              logger,
		MetricsScope:                        metricsScope,
		DataConverter:                       dataConverter,
		UserContext:                         options.BackgroundActivityContext,
		ContextPropagators:                  options.ContextPropagators,
		Tracer:                              options.Tracer,
		WorkflowInterceptors:                options.WorkflowInterceptorChainFactories,
		WorkerStopTimeout:                   stopTimeout,
		WorkerStopChannel:                   stopC,
	}
}

func newWorkflowWorker(service api.Interface, params workerExecutionParameters, registry *registry) *workflowWorker {
	taskHandler := newWorkflowTaskHandler(params, registry)
	poller := newWorkflowTaskPoller(taskHandler, service, params.Domain, params)
	worker := newBaseWorker(baseWorkerOptions{
		pollerCount:       params.ConcurrentPollRoutineSize,
		maxConcurrentTask: params.ConcurrentDecisionTaskExecutionSize,
		taskWorker:        poller,
		identity:          params.Identity,
		workerType:        "DecisionWorker",
		shutdownTimeout:   params.WorkerStopTimeout,
	}, params.Logger, params.MetricsScope)

	return &workflowWorker{
		executionParameters: params,
		workflowService:     service,
		worker:              worker,
		identity:            params.Identity,
	}
}

func (ww *workflowWorker) Start() error {
	ww.worker.Start()
	return nil
}

func (ww *workflowWorker) Stop() {
	ww.worker.Stop()
}

func newActivityWorker(service api.Interface, params workerExecutionParameters, registry *registry) *activityWorker {
	taskHandler := newActivityTaskHandler(service, params, registry)
	poller := newActivityTaskPoller(taskHandler, service, params.Domain, params)
	worker := newBaseWorker(baseWorkerOptions{
		pollerCount:       params.ConcurrentPollRoutineSize,
		maxConcurrentTask: params.ConcurrentActivityExecutionSize,
		maxTaskPerSecond:  params.WorkerActivitiesPerSecond,
		taskWorker:        poller,
		identity:          params.Identity,
		workerType:        "ActivityWorker",
		shutdownTimeout:   params.WorkerStopTimeout,
	}, params.Logger, params.MetricsScope)

	return &activityWorker{
		executionParameters: params,
		workflowService:     service,
		worker:              worker,
		identity:            params.Identity,
	}
}

func (aw *activityWorker) Start() error {
	aw.worker.Start()
	return nil
}

func (aw *activityWorker) Stop() {
	aw.worker.Stop()
}

// RegisterWorkflow registers a workflow function with this worker under its
// function name.
func (aw *aggregatedWorker) RegisterWorkflow(w interface{}) {
	aw.registry.RegisterWorkflow(w)
}

// RegisterWorkflowWithOptions registers a workflow function under the given
// options.
func (aw *aggregatedWorker) RegisterWorkflowWithOptions(w interface{}, options RegisterWorkflowOptions) {
	aw.registry.RegisterWorkflowWithOptions(w, options)
}

// RegisterActivity registers an activity function, or a struct whose
// exported methods are activities, with this worker.
func (aw *aggregatedWorker) RegisterActivity(a interface{}) {
	aw.registry.RegisterActivity(a)
}

// RegisterActivityWithOptions registers an activity under the given options.
func (aw *aggregatedWorker) RegisterActivityWithOptions(a interface{}, options RegisterActivityOptions) {
	aw.registry.RegisterActivityWithOptions(a, options)
}

// Start starts polling in the background. It returns an error only if the
// worker failed to start.
func (aw *aggregatedWorker) Start() error {
	if aw.workflowWorker != nil {
		if len(aw.registry.getRegisteredWorkflowTypes()) == 0 {
			aw.logger.Warn("Starting worker without any workflows registered.")
		}
		if err := aw.workflowWorker.Start(); err != nil {
			return err
		}
	}
	if aw.activityWorker != nil {
		if len(aw.registry.getRegisteredActivities()) == 0 {
			aw.logger.Warn("Starting worker without any activities registered.")
		}
		if err := aw.activityWorker.Start(); err != nil {
			aw.Stop()
			return err
		}
	}
	aw.logger.Info("Started Worker")
	return nil
}

// Run starts the worker and blocks until an interrupt/termination signal.
func (aw *aggregatedWorker) Run() error {
	if err := aw.Start(); err != nil {
		return err
	}
	d := <-getKillSignal()
	aw.logger.Info("Worker killed.", zap.String("Signal", d.String()))
	aw.Stop()
	return nil
}

// Stop shuts down both pollers and waits for in-flight tasks to drain.
func (aw *aggregatedWorker) Stop() {
	aw.stopOnce.Do(func() {
		close(aw.stopC)
	})
	if aw.workflowWorker != nil {
		aw.workflowWorker.Stop()
	}
	if aw.activityWorker != nil {
		aw.activityWorker.Stop()
	}
	aw.logger.Info("Stopped Worker")
}

func getKillSignal() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	return c
}

// RegisterWorkflow registers a workflow function with the global registry,
// which clients and the package-level replay functions read. Workers keep
// their own registry and do not see it; use the methods on Worker for them.
func RegisterWorkflow(w interface{}) {
	getGlobalRegistry().RegisterWorkflow(w)
}

// RegisterWorkflowWithOptions registers a workflow function with options in
// the global registry.
func RegisterWorkflowWithOptions(w interface{}, options RegisterWorkflowOptions) {
	getGlobalRegistry().RegisterWorkflowWithOptions(w, options)
}

var (
	binaryChecksum     string
	binaryChecksumLock sync.Mutex
)

// SetBinaryChecksum overrides the automatically computed binary checksum
// reported on every decision poll and completion, identifying the code
// version this worker runs.
func SetBinaryChecksum(checksum string) {
	binaryChecksumLock.Lock()
	defer binaryChecksumLock.Unlock()
	binaryChecksum = checksum
}

func getBinaryChecksum() string {
	binaryChecksumLock.Lock()
	defer binaryChecksumLock.Unlock()
	if binaryChecksum == "" {
		binaryChecksum = computeBinaryChecksum()
	}
	return binaryChecksum
}

func computeBinaryChecksum() string {
	exePath, err := os.Executable()
	if err != nil {
		return "unknown"
	}
	contents, err := ioutil.ReadFile(exePath)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%x", md5.Sum(contents))
}

func getHostName() string {
	hostName, err := os.Hostname()
	if err != nil {
		hostName = "UnknownHost"
	}
	return hostName
}

func getWorkerIdentity(taskListName string) string {
	return fmt.Sprintf("%d@%s@%s", os.Getpid(), getHostName(), taskListName)
}

// augmentWorkerLogger tags a logger with domain and task list, used by both
// worker kinds at construction.
func augmentWorkerLogger(logger *zap.Logger, domain, taskList string) *zap.Logger {
	return logger.With(
		zapcore.Field{Key: tagDomain, Type: zapcore.StringType, String: domain},
		zapcore.Field{Key: tagTaskList, Type: zapcore.StringType, String: taskList},
	)
}

