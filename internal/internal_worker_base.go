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

// baseWorker hosts the poll loops. One baseWorker runs pollerCount poller
// goroutines that feed polled tasks through a queue to maxConcurrentTask
// processing goroutines; Stop() drains in-flight tasks within a bounded
// timeout.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/uber-go/tally"

	"github.com/orbitflow/orbit-go/internal/common/metrics"
)

type (
	baseWorkerOptions struct {
		pollerCount       int
		maxConcurrentTask int
		maxTaskPerSecond  float64
		taskWorker        taskPoller
		identity          string
		workerType        string
		shutdownTimeout   time.Duration
	}

	baseWorker struct {
		options         baseWorkerOptions
		isWorkerStarted bool
		shutdownCh      chan struct{}
		shutdownWG      sync.WaitGroup
		taskLimiter     *rate.Limiter
		limiterContext  context.Context
		limiterCancel   context.CancelFunc
		taskQueueCh     chan interface{}
		logger          *zap.Logger
		metricsScope    tally.Scope

		stopped atomic.Bool
	}
)

func createPollRetryPolicy() time.Duration {
	return time.Second
}

func newBaseWorker(options baseWorkerOptions, logger *zap.Logger, metricsScope tally.Scope) *baseWorker {
	ctx, cancel := context.WithCancel(context.Background())
	bw := &baseWorker{
		options:        options,
		shutdownCh:     make(chan struct{}),
		taskQueueCh:    make(chan interface{}, options.maxConcurrentTask),
		limiterContext: ctx,
		limiterCancel:  cancel,
		logger:         logger.With(zapcore.Field{Key: "WorkerType", Type: zapcore.StringType, String: options.workerType}),
		metricsScope:   metrics.NewTaggedScope(metricsScope).GetTaggedScope("worker-type", options.workerType),
	}
	if options.maxTaskPerSecond > 0 {
		bw.taskLimiter = rate.NewLimiter(rate.Limit(options.maxTaskPerSecond), 1)
	}
	return bw
}

// Start spins up the poller and task-processing goroutines. It is
// idempotent per worker instance.
func (bw *baseWorker) Start() {
	if bw.isWorkerStarted {
		return
	}

	bw.metricsScope.Counter(metrics.WorkerStartCounter).Inc(1)

	for i := 0; i < bw.options.pollerCount; i++ {
		bw.shutdownWG.Add(1)
		go bw.runPoller()
	}
	for i := 0; i < bw.options.maxConcurrentTask; i++ {
		bw.shutdownWG.Add(1)
		go bw.runTaskDispatcher()
	}

	bw.isWorkerStarted = true
	traceLog(func() {
		bw.logger.Info("Started Worker",
			zap.Int("PollerCount", bw.options.pollerCount),
			zap.Int("MaxConcurrentTask", bw.options.maxConcurrentTask))
	})
}

func (bw *baseWorker) isShutdown() bool {
	select {
	case <-bw.shutdownCh:
		return true
	default:
		return false
	}
}

func (bw *baseWorker) runPoller() {
	defer bw.shutdownWG.Done()
	bw.metricsScope.Counter(metrics.PollerStartCounter).Inc(1)

	for {
		if bw.isShutdown() {
			return
		}

		task, err := bw.options.taskWorker.PollTask()
		if err != nil {
			if err == errShutdown {
				return
			}
			if isClientSideError(err) {
				bw.logger.Info("Poll failed with client side error.", zap.Error(err))
			} else {
				traceLog(func() {
					bw.logger.Debug("Poll failed.", zap.Error(err))
				})
			}
			// Back off briefly so a broken transport doesn't spin.
			select {
			case <-time.After(createPollRetryPolicy()):
			case <-bw.shutdownCh:
				return
			}
			continue
		}

		select {
		case bw.taskQueueCh <- task:
		case <-bw.shutdownCh:
			return
		}
	}
}

func (bw *baseWorker) runTaskDispatcher() {
	defer bw.shutdownWG.Done()

	for {
		select {
		case <-bw.shutdownCh:
			return
		case task := <-bw.taskQueueCh:
			if bw.taskLimiter != nil {
				if err := bw.taskLimiter.Wait(bw.limiterContext); err != nil {
					return
				}
			}
			bw.processTask(task)
		}
	}
}

func (bw *baseWorker) processTask(task interface{}) {
	defer func() {
		if p := recover(); p != nil {
			topLine := fmt.Sprintf("base worker for %s [panic]:", bw.options.workerType)
			st := getStackTraceRaw(topLine, 7, 0)
			bw.logger.Error("Unhandled panic.",
				zap.String(tagPanicError, fmt.Sprintf("%v", p)),
				zap.String(tagPanicStack, st))
		}
	}()

	if err := bw.options.taskWorker.ProcessTask(task); err != nil {
		if err == errShutdown {
			return
		}
		traceLog(func() {
			bw.logger.Debug("Failed to process task.", zap.Error(err))
		})
	}
}

// Stop shuts the worker down, letting in-flight tasks finish up to the
// shutdown timeout.
func (bw *baseWorker) Stop() {
	if !bw.isWorkerStarted || !bw.stopped.CAS(false, true) {
		return
	}
	close(bw.shutdownCh)
	bw.limiterCancel()

	doneCh := make(chan struct{})
	go func() {
		bw.shutdownWG.Wait()
		close(doneCh)
	}()

	timeout := bw.options.shutdownTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	select {
	case <-doneCh:
	case <-time.After(timeout):
		traceLog(func() {
			bw.logger.Info("Worker graceful stop timed out.", zap.Duration("Timeout", timeout))
		})
	}
}
