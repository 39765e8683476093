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

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const (
	tracingComponentName = "orbit-go"
)

// createOpenTracingWorkflowSpan starts a client-side span around a workflow
// lifecycle operation (start, signal-with-start) and returns the context
// carrying it. The caller finishes the span when the RPC completes.
func createOpenTracingWorkflowSpan(
	ctx context.Context,
	tracer opentracing.Tracer,
	startTime time.Time,
	operationName string,
	workflowID string,
) (context.Context, opentracing.Span) {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}

	var parent opentracing.SpanContext
	if span := opentracing.SpanFromContext(ctx); span != nil {
		parent = span.Context()
	}

	span := tracer.StartSpan(
		operationName,
		opentracing.StartTime(startTime),
		opentracing.FollowsFrom(parent),
		opentracing.Tag{Key: "workflowID", Value: workflowID},
	)
	ext.Component.Set(span, tracingComponentName)

	return opentracing.ContextWithSpan(ctx, span), span
}
