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

// Package backoff implements retrying an operation with an exponential
// backoff, honoring context cancellation/deadlines between attempts.
package backoff

import (
	"context"
	"time"
)

// Operation is the unit of work Retry calls until it succeeds, exhausts its
// policy, or ctx is done.
type Operation func() error

// IsRetryable decides whether an error returned by an Operation should be
// retried at all. Errors for which this returns false are returned to the
// caller immediately.
type IsRetryable func(error) bool

// RetryPolicy describes how to space out retry attempts.
type RetryPolicy interface {
	// ComputeNextDelay returns the delay before the next attempt, and false
	// if no further attempts should be made (policy or attempt cap exhausted).
	ComputeNextDelay(elapsedTime time.Duration, numAttempts int) (time.Duration, bool)
}

// ExponentialRetryPolicy backs off multiplicatively from InitialInterval up
// to MaximumInterval, optionally bounded by MaximumAttempts and
// ExpirationInterval.
type ExponentialRetryPolicy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int
	ExpirationInterval time.Duration
}

// NewExponentialRetryPolicy returns a policy with the given initial interval
// and a 2x backoff coefficient, the defaults the client and worker use for
// RPCs against the orchestration service.
func NewExponentialRetryPolicy(initialInterval time.Duration) *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		InitialInterval:    initialInterval,
		BackoffCoefficient: 2.0,
		MaximumInterval:    10 * time.Second,
	}
}

// ComputeNextDelay implements RetryPolicy.
func (p *ExponentialRetryPolicy) ComputeNextDelay(elapsedTime time.Duration, numAttempts int) (time.Duration, bool) {
	if p.MaximumAttempts > 0 && numAttempts >= p.MaximumAttempts {
		return 0, false
	}
	if p.ExpirationInterval > 0 && elapsedTime >= p.ExpirationInterval {
		return 0, false
	}
	interval := p.InitialInterval
	coefficient := p.BackoffCoefficient
	if coefficient < 1 {
		coefficient = 1
	}
	for i := 1; i < numAttempts; i++ {
		interval = time.Duration(float64(interval) * coefficient)
		if p.MaximumInterval > 0 && interval > p.MaximumInterval {
			interval = p.MaximumInterval
			break
		}
	}
	return interval, true
}

// Retry calls op until it succeeds, isRetryable returns false for the error
// it returned, the policy gives up, or ctx is done.
func Retry(ctx context.Context, op Operation, policy RetryPolicy, isRetryable IsRetryable) error {
	var err error
	start := time.Now()
	for attempt := 1; ; attempt++ {
		if ctx != nil {
			if doneErr := ctx.Err(); doneErr != nil {
				return doneErr
			}
		}

		err = op()
		if err == nil {
			return nil
		}
		if isRetryable != nil && !isRetryable(err) {
			return err
		}

		delay, ok := policy.ComputeNextDelay(time.Since(start), attempt)
		if !ok {
			return err
		}

		timer := time.NewTimer(delay)
		if ctx != nil {
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else {
			<-timer.C
		}
	}
}
