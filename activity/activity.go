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

// Package activity contains functions and types used to implement Orbit
// activities: the side-effecting units of work a workflow schedules.
package activity

import (
	"context"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/orbitflow/orbit-go/internal"
)

type (
	// Type identifies an activity type.
	Type = internal.ActivityType

	// Info contains information about the currently executing activity.
	Info = internal.ActivityInfo

	// RegisterOptions configures activity registration.
	RegisterOptions = internal.RegisterActivityOptions
)

// ErrResultPending is returned from an activity function to indicate the
// activity is not complete when the function returns; deliver the result
// later with Client.CompleteActivity.
var ErrResultPending = internal.ErrActivityResultPending

// Register registers an activity in the global registry under its function
// name. Prefer worker.RegisterActivity.
func Register(activityFunc interface{}) {
	internal.RegisterActivity(activityFunc)
}

// RegisterWithOptions registers an activity in the global registry with
// options.
func RegisterWithOptions(activityFunc interface{}, opts RegisterOptions) {
	internal.RegisterActivityWithOptions(activityFunc, opts)
}

// GetInfo returns information about the currently executing activity.
func GetInfo(ctx context.Context) Info {
	return internal.GetActivityInfo(ctx)
}

// GetLogger returns the logger for the current activity.
func GetLogger(ctx context.Context) *zap.Logger {
	return internal.GetActivityLogger(ctx)
}

// GetMetricsScope returns the metrics scope for the current activity.
func GetMetricsScope(ctx context.Context) tally.Scope {
	return internal.GetActivityMetricsScope(ctx)
}

// RecordHeartbeat records progress details and surfaces a pending
// cancellation as an error on a later heartbeat.
func RecordHeartbeat(ctx context.Context, details ...interface{}) {
	internal.RecordActivityHeartbeat(ctx, details...)
}

// HasHeartbeatDetails reports whether the previous attempt recorded
// heartbeat details.
func HasHeartbeatDetails(ctx context.Context) bool {
	return internal.HasHeartbeatDetails(ctx)
}

// GetHeartbeatDetails extracts the previous attempt's heartbeat details.
func GetHeartbeatDetails(ctx context.Context, d ...interface{}) error {
	return internal.GetHeartbeatDetails(ctx, d...)
}

// GetWorkerStopChannel returns a channel closed when the hosting worker is
// asked to stop; long-running activities should watch it.
func GetWorkerStopChannel(ctx context.Context) <-chan struct{} {
	return internal.GetWorkerStopChannel(ctx)
}
