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

// Package api converts between the wire-shaped types in apiv1 and the plain
// time.Time/time.Duration/error values the rest of the engine works with. It
// is the one place that knows about the wire encoding, so nothing else in
// this module needs to.
package api

import (
	"context"
	"errors"
	"time"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// TimeFromProto converts a wire Timestamp to time.Time. A nil Timestamp
// converts to the zero time, the same convention the wire messages use for
// an absent field.
func TimeFromProto(t *apiv1.Timestamp) time.Time {
	if t == nil {
		return time.Time{}
	}
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

// TimeToProto converts a time.Time to a wire Timestamp.
func TimeToProto(t time.Time) *apiv1.Timestamp {
	if t.IsZero() {
		return nil
	}
	return &apiv1.Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// DurationFromProto converts a wire Duration to time.Duration. A nil
// Duration converts to zero.
func DurationFromProto(d *apiv1.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(d.Seconds)*time.Second + time.Duration(d.Nanos)*time.Nanosecond
}

// DurationToProto converts a time.Duration to a wire Duration.
func DurationToProto(d time.Duration) *apiv1.Duration {
	if d == 0 {
		return nil
	}
	seconds := int64(d / time.Second)
	nanos := int32(d % time.Second)
	return &apiv1.Duration{Seconds: seconds, Nanos: nanos}
}

// SecondsToProto converts a whole number of seconds to a wire Duration. The
// current timeout resolution across the engine is seconds, so most
// ActivityOptions/workflow timeout fields go through this instead of
// DurationToProto.
func SecondsToProto(seconds int32) *apiv1.Duration {
	if seconds == 0 {
		return nil
	}
	return &apiv1.Duration{Seconds: int64(seconds)}
}

// ConvertError is the hook for errors returned from the client's RPC surface.
// It returns every error unchanged: typed errors (EntityNotExistsError and
// the like) and context errors pass through as they are, and no other error
// is mapped to a typed error.
func ConvertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return err
}
