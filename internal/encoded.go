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
	"reflect"

	"github.com/orbitflow/orbit-go/internal/common/util"
)

type (
	// Value holds a single payload as it crossed the wire, decodable on
	// demand into a typed destination.
	Value interface {
		// HasValue reports whether a payload is present at all.
		HasValue() bool
		// Get decodes the payload into the given pointer.
		Get(valuePtr interface{}) error
	}

	// Values holds an argument list as it crossed the wire, decodable on
	// demand into typed destinations.
	Values interface {
		// HasValues reports whether any payload is present.
		HasValues() bool
		// Get decodes the payloads, in order, into the given pointers.
		Get(valuePtr ...interface{}) error
	}

	// DataConverter translates workflow and activity arguments and results
	// to and from the opaque bytes the service stores. The worker-wide
	// converter comes from worker.Options (and client.Options on the start
	// path); workflow code can override it per activity or child workflow
	// with workflow.WithDataConverter, so one workflow may mix converters.
	DataConverter interface {
		// ToData encodes an argument list into a single payload.
		ToData(value ...interface{}) ([]byte, error)
		// FromData decodes a payload back into an argument list of pointer
		// destinations.
		FromData(input []byte, valuePtr ...interface{}) error
	}

	// defaultDataConverter speaks JSON: zero arguments encode as null, one
	// argument as its own JSON, several as a JSON array. A lone []byte
	// passes through untouched in both directions so pre-encoded payloads
	// survive round trips byte for byte.
	defaultDataConverter struct{}
)

var defaultJSONDataConverter = &defaultDataConverter{}

// DefaultDataConverter is the converter used wherever no custom one is
// configured.
var DefaultDataConverter = getDefaultDataConverter()

func getDefaultDataConverter() DataConverter {
	return defaultJSONDataConverter
}

func (dc *defaultDataConverter) ToData(r ...interface{}) ([]byte, error) {
	if len(r) == 1 && util.IsTypeByteSlice(reflect.TypeOf(r[0])) {
		return r[0].([]byte), nil
	}
	return jsonEncoding{}.Marshal(r)
}

func (dc *defaultDataConverter) FromData(data []byte, to ...interface{}) error {
	if len(to) == 1 && util.IsTypeByteSlice(reflect.TypeOf(to[0])) {
		reflect.ValueOf(to[0]).Elem().SetBytes(data)
		return nil
	}
	return jsonEncoding{}.Unmarshal(data, to)
}
