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

// Package util holds small reflection and history-formatting helpers used
// across the engine.
package util

import (
	"fmt"
	"reflect"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// IsTypeByteSlice reports whether t is []byte or *[]byte.
func IsTypeByteSlice(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// GetHistoryEventType returns the name of the concrete attribute variant
// carried by a history event, e.g. "WorkflowExecutionStarted".
func GetHistoryEventType(e *apiv1.HistoryEvent) string {
	if e == nil {
		return ""
	}
	t := fmt.Sprintf("%T", e.Attributes)
	// Attributes is always *apiv1.HistoryEvent_XxxEventAttributes; strip the
	// package-qualified wrapper prefix/suffix to leave just Xxx.
	const prefix = "*apiv1.HistoryEvent_"
	const suffix = "EventAttributes"
	if len(t) > len(prefix) {
		t = t[len(prefix):]
	}
	if len(t) > len(suffix) && t[len(t)-len(suffix):] == suffix {
		t = t[:len(t)-len(suffix)]
	}
	return t
}

// HistoryEventToString renders a history event for logging/diagnostics.
func HistoryEventToString(e *apiv1.HistoryEvent) string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("EventID: %d, EventType: %s, Attributes: %+v", e.EventId, GetHistoryEventType(e), e.Attributes)
}
