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

package internal

import (
	"context"
	"fmt"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// HeaderWriter adds values to an outgoing Header, used by ContextPropagators
// at workflow/activity start to propagate request-scoped values across the
// decision boundary.
type HeaderWriter interface {
	Set(key string, value []byte)
}

// HeaderReader iterates the values of an incoming Header.
type HeaderReader interface {
	ForEachKey(handler func(key string, value []byte) error) error
}

type headerWriter struct {
	header *apiv1.Header
}

// NewHeaderWriter returns a HeaderWriter that writes into header, allocating
// its Fields map if necessary.
func NewHeaderWriter(header *apiv1.Header) HeaderWriter {
	if header.Fields == nil {
		header.Fields = make(map[string]*apiv1.Payload)
	}
	return &headerWriter{header: header}
}

func (h *headerWriter) Set(key string, value []byte) {
	h.header.Fields[key] = &apiv1.Payload{Data: value}
}

type headerReader struct {
	header *apiv1.Header
}

// NewHeaderReader returns a HeaderReader over header's fields.
func NewHeaderReader(header *apiv1.Header) HeaderReader {
	return &headerReader{header: header}
}

func (h *headerReader) ForEachKey(handler func(key string, value []byte) error) error {
	if h.header == nil {
		return nil
	}
	for key, payload := range h.header.Fields {
		if err := handler(key, payload.GetData()); err != nil {
			return err
		}
	}
	return nil
}

// ContextPropagator carries request-scoped values (tracing spans, tenant
// identifiers, and the like) across every decision and activity boundary: it
// copies values from a Go context into a header before sending a decision,
// and back out again when the next task hydrates a context.
type ContextPropagator interface {
	// Inject injects values from a Go context into the header.
	Inject(ctx context.Context, writer HeaderWriter) error
	// Extract extracts values from a header and puts them into a Go context.
	Extract(ctx context.Context, reader HeaderReader) (context.Context, error)
	// InjectFromWorkflow injects values from a workflow context into the header.
	InjectFromWorkflow(ctx Context, writer HeaderWriter) error
	// ExtractToWorkflow extracts values from a header and puts them into a workflow context.
	ExtractToWorkflow(ctx Context, reader HeaderReader) (Context, error)
}

// contextWithHeaderPropagated runs every registered propagator's Extract over
// header, folding the resulting Context forward. Used when hydrating a fresh
// workflow Context for a new decision task.
func contextWithHeaderPropagated(ctx Context, header *apiv1.Header, propagators []ContextPropagator) (Context, error) {
	if header == nil {
		return ctx, nil
	}
	reader := NewHeaderReader(header)
	for _, propagator := range propagators {
		var err error
		ctx, err = propagator.ExtractToWorkflow(ctx, reader)
		if err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

// headerPropagated builds a Header by running every registered propagator's
// InjectFromWorkflow, the counterpart used when a workflow schedules an
// activity or child workflow and needs to carry its context forward.
func headerPropagated(ctx Context, propagators []ContextPropagator) (*apiv1.Header, error) {
	header := &apiv1.Header{Fields: make(map[string]*apiv1.Payload)}
	writer := NewHeaderWriter(header)
	for _, propagator := range propagators {
		if err := propagator.InjectFromWorkflow(ctx, writer); err != nil {
			return nil, err
		}
	}
	return header, nil
}

// stringMapPropagator propagates a fixed set of keys across a workflow,
// interpreting the payloads as strings.
type stringMapPropagator struct {
	keys map[string]struct{}
}

// NewStringMapPropagator returns a ContextPropagator that carries the given
// string-valued keys across workflow and activity boundaries.
func NewStringMapPropagator(keys []string) ContextPropagator {
	keyMap := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keyMap[key] = struct{}{}
	}
	return &stringMapPropagator{keys: keyMap}
}

func (s *stringMapPropagator) Inject(ctx context.Context, writer HeaderWriter) error {
	for key := range s.keys {
		value, ok := ctx.Value(contextKey(key)).(string)
		if !ok {
			return fmt.Errorf("unable to extract key from context %v", key)
		}
		writer.Set(key, []byte(value))
	}
	return nil
}

func (s *stringMapPropagator) InjectFromWorkflow(ctx Context, writer HeaderWriter) error {
	for key := range s.keys {
		value, ok := ctx.Value(contextKey(key)).(string)
		if !ok {
			return fmt.Errorf("unable to extract key from context %v", key)
		}
		writer.Set(key, []byte(value))
	}
	return nil
}

func (s *stringMapPropagator) Extract(ctx context.Context, reader HeaderReader) (context.Context, error) {
	if err := reader.ForEachKey(func(key string, value []byte) error {
		if _, ok := s.keys[key]; ok {
			ctx = context.WithValue(ctx, contextKey(key), string(value))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (s *stringMapPropagator) ExtractToWorkflow(ctx Context, reader HeaderReader) (Context, error) {
	if err := reader.ForEachKey(func(key string, value []byte) error {
		if _, ok := s.keys[key]; ok {
			ctx = WithValue(ctx, contextKey(key), string(value))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return ctx, nil
}
