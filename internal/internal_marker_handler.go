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

// markerHandler owns the replay-recognition state for the three marker kinds a
// workflow can record: SideEffect, MutableSideEffect and Version. All three
// follow the same shape described in §4.4: run a producer once on the live
// path, record what it produced as a marker, and on every later replay of the
// same history return the recorded value instead of re-running the producer.
//
// The maps here used to live directly on workflowEnvironmentImpl. They are
// pulled out into their own type because the lookup/record pattern is shared
// across all three marker kinds and because a decision context should be able
// to hand replay access to a single collaborator instead of three raw maps.
type markerHandler struct {
	// sideEffectResult holds the decoded result of a SideEffect call, keyed by
	// the sequence number assigned when the call was first made.
	sideEffectResult map[int32][]byte

	// changeVersions holds the resolved Version for every changeID that has
	// been through GetVersion in this execution.
	changeVersions map[string]Version

	// mutableSideEffect holds the latest recorded value for every
	// MutableSideEffect id.
	mutableSideEffect map[string][]byte
}

func newMarkerHandler() *markerHandler {
	return &markerHandler{
		sideEffectResult:  make(map[int32][]byte),
		changeVersions:    make(map[string]Version),
		mutableSideEffect: make(map[string][]byte),
	}
}

// lookupSideEffect returns the previously recorded result for id, if any.
func (m *markerHandler) lookupSideEffect(id int32) ([]byte, bool) {
	result, ok := m.sideEffectResult[id]
	return result, ok
}

func (m *markerHandler) recordSideEffect(id int32, result []byte) {
	m.sideEffectResult[id] = result
}

func (m *markerHandler) knownSideEffectIDs() []int32 {
	keys := make([]int32, 0, len(m.sideEffectResult))
	for k := range m.sideEffectResult {
		keys = append(keys, k)
	}
	return keys
}

// lookupVersion returns the version recorded for changeID on a previous pass
// through GetVersion, if any.
func (m *markerHandler) lookupVersion(changeID string) (Version, bool) {
	v, ok := m.changeVersions[changeID]
	return v, ok
}

func (m *markerHandler) recordVersion(changeID string, version Version) {
	m.changeVersions[changeID] = version
}

func (m *markerHandler) recordedVersions() map[string]Version {
	return m.changeVersions
}

// lookupMutableSideEffect returns the last value recorded for id, if any.
func (m *markerHandler) lookupMutableSideEffect(id string) ([]byte, bool) {
	v, ok := m.mutableSideEffect[id]
	return v, ok
}

func (m *markerHandler) recordMutableSideEffect(id string, data []byte) {
	m.mutableSideEffect[id] = data
}
