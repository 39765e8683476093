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

// Package testsuite contains the test environment for running workflow and
// activity unit tests in-process, against a virtual clock and a mock
// service.
package testsuite

import (
	"github.com/orbitflow/orbit-go/internal"
)

type (
	// WorkflowTestSuite is the test suite to run unit tests for workflows
	// and activities.
	WorkflowTestSuite = internal.WorkflowTestSuite

	// TestWorkflowEnvironment runs one workflow (and everything it
	// schedules) in-process against a virtual clock.
	TestWorkflowEnvironment = internal.TestWorkflowEnvironment

	// TestActivityEnvironment runs one activity synchronously.
	TestActivityEnvironment = internal.TestActivityEnvironment

	// MockCallWrapper wraps a testify mock call with workflow-clock-aware
	// helpers.
	MockCallWrapper = internal.MockCallWrapper
)

// ErrMockStartChildWorkflowFailed simulates a start-child-workflow failure
// when returned from a mocked child workflow.
var ErrMockStartChildWorkflowFailed = internal.ErrMockStartChildWorkflowFailed
