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
)

const (
	// defaultRPCTimeout bounds a single short RPC against the service.
	defaultRPCTimeout = 10 * time.Second
	// minRPCTimeout is the floor applied when deriving timeouts from a
	// caller deadline.
	minRPCTimeout = 1 * time.Second
	// defaultQueryRPCTimeout bounds a synchronous query round trip, which
	// includes a worker executing the query handler.
	defaultQueryRPCTimeout = 20 * time.Second
)

// contextBuilder carries the per-call RPC settings newChannelContext
// assembles before deriving the call context.
type contextBuilder struct {
	// Timeout for the call to make.
	Timeout time.Duration

	// ParentContext the call context derives from.
	ParentContext context.Context
}

func (cb *contextBuilder) Build() (context.Context, context.CancelFunc) {
	parent := cb.ParentContext
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, cb.Timeout)
}

// chanTimeout overrides the RPC timeout for one call.
func chanTimeout(timeout time.Duration) func(builder *contextBuilder) {
	return func(b *contextBuilder) {
		b.Timeout = timeout
	}
}

// newChannelContext derives the context for one service RPC, honoring the
// caller's deadline but never exceeding the per-call timeout. The returned
// call options accompany the request.
func newChannelContext(ctx context.Context, options ...func(builder *contextBuilder)) (context.Context, context.CancelFunc, []api.CallOption) {
	builder := &contextBuilder{Timeout: defaultRPCTimeout}
	if ctx != nil {
		builder.ParentContext = ctx
		if expiration, ok := ctx.Deadline(); ok {
			if remaining := expiration.Sub(time.Now()); remaining < builder.Timeout {
				if remaining < minRPCTimeout {
					remaining = minRPCTimeout
				}
				builder.Timeout = remaining
			}
		}
	}
	for _, opt := range options {
		opt(builder)
	}

	callCtx, cancel := builder.Build()
	return callCtx, cancel, nil
}
