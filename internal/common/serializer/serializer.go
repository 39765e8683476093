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

// Package serializer turns the blob-encoded history the service returns for
// long/archived histories back into the History message the rest of the
// engine works with.
package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"go.uber.org/multierr"

	apiv1 "github.com/orbitflow/orbit-go/internal/apiv1"
)

// DeserializeBlobDataToHistoryEvents decodes a raw history blob (as returned
// in GetWorkflowExecutionHistoryResponse.RawHistory for long-poll/archival
// responses) into a History message. filterType is accepted for parity with
// the real wire protocol, which encodes closed-only histories differently;
// this module's hand-rolled encoding doesn't vary by filter so it's unused
// here beyond validating the blob decodes.
func DeserializeBlobDataToHistoryEvents(blobs []*apiv1.DataBlob, _ apiv1.EventFilterType) (*apiv1.History, error) {
	history := &apiv1.History{}
	var decodeErr error
	for i, blob := range blobs {
		if blob == nil || len(blob.Data) == 0 {
			continue
		}
		var events []*apiv1.HistoryEvent
		dec := gob.NewDecoder(bytes.NewReader(blob.Data))
		if err := dec.Decode(&events); err != nil {
			decodeErr = multierr.Append(decodeErr, fmt.Errorf("deserialize history blob %d: %w", i, err))
			continue
		}
		history.Events = append(history.Events, events...)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return history, nil
}
