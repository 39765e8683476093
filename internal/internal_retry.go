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
	"time"

	"github.com/orbitflow/orbit-go/internal/api"
	"github.com/orbitflow/orbit-go/internal/common/backoff"
)

const (
	retryServiceOperationInitialInterval    = 20 * time.Millisecond
	retryServiceOperationMaxInterval        = 6 * time.Second
	retryServiceOperationExpirationInterval = 60 * time.Second
)

// createDynamicServiceRetryPolicy builds the retry policy for one service
// RPC. When the caller's ctx carries a deadline the expiration interval is
// clipped to it so retries never outlive the call they serve.
func createDynamicServiceRetryPolicy(ctx context.Context) backoff.RetryPolicy {
	expiration := retryServiceOperationExpirationInterval
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := deadline.Sub(time.Now()); remaining < expiration {
			expiration = remaining
		}
	}
	policy := backoff.NewExponentialRetryPolicy(retryServiceOperationInitialInterval)
	policy.MaximumInterval = retryServiceOperationMaxInterval
	policy.ExpirationInterval = expiration
	return policy
}

// isServiceTransientError returns whether a service error is worth retrying.
// Well-formed rejections (bad request, already started, missing entity) are
// terminal, and so are context.DeadlineExceeded and context.Canceled;
// everything else is assumed to be a transient service or transport
// condition.
func isServiceTransientError(err error) bool {
	switch err.(type) {
	case *api.BadRequestError,
		*api.EntityNotExistsError,
		*api.WorkflowExecutionAlreadyStartedError,
		*api.DomainAlreadyExistsError,
		*api.QueryFailedError:
		return false
	}
	return err != context.DeadlineExceeded && err != context.Canceled
}
