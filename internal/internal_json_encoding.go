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
	"encoding/json"
	"fmt"
)

// encoding turns a slice of values into a single wire payload and back.
type encoding interface {
	Marshal([]interface{}) ([]byte, error)
	Unmarshal([]byte, []interface{}) error
}

type jsonEncoding struct{}

func (g jsonEncoding) Marshal(objs []interface{}) ([]byte, error) {
	if len(objs) == 0 {
		return json.Marshal(nil)
	}
	if len(objs) == 1 {
		return json.Marshal(objs[0])
	}
	return json.Marshal(objs)
}

func (g jsonEncoding) Unmarshal(data []byte, objs []interface{}) error {
	if len(objs) == 0 {
		return nil
	}
	if len(objs) == 1 {
		return json.Unmarshal(data, objs[0])
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal multi-argument payload: %w", err)
	}
	if len(raw) != len(objs) {
		return fmt.Errorf("unmarshal multi-argument payload: expected %d values, got %d", len(objs), len(raw))
	}
	for i, r := range raw {
		if err := json.Unmarshal(r, objs[i]); err != nil {
			return err
		}
	}
	return nil
}
