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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// The dispatcher resumes each coroutine once per pass and settles when every
// coroutine is blocked.
func TestDispatcherRunsCoroutinesInCreationOrder(t *testing.T) {
	var order []string
	ctx, d := newDispatcher(Background(), func(ctx Context) {
		order = append(order, "root-1")
		Go(ctx, "second", func(ctx Context) {
			order = append(order, "second-1")
			getState(ctx).yield("waiting")
			order = append(order, "second-2")
		})
		getState(ctx).yield("waiting")
		order = append(order, "root-2")
	})
	defer d.Close()
	_ = ctx

	require.NoError(t, d.ExecuteUntilAllBlocked())
	require.Equal(t, []string{"root-1", "second-1", "root-2", "second-2"}, order)
	require.True(t, d.IsDone())
}

// Closing the dispatcher unwinds every still-blocked coroutine so their
// goroutines exit.
func TestDispatcherCloseReleasesCoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	blockedForever := func(ctx Context) {
		ch := NewChannel(ctx)
		var v interface{}
		ch.Receive(ctx, &v)
	}
	_, d := newDispatcher(Background(), blockedForever)
	require.NoError(t, d.ExecuteUntilAllBlocked())
	require.False(t, d.IsDone())
	d.Close()
}

// Channels deliver sends to blocked receivers in order.
func TestChannelSendReceive(t *testing.T) {
	var received []int
	_, d := newDispatcher(Background(), func(ctx Context) {
		ch := NewBufferedChannel(ctx, 2)
		Go(ctx, "producer", func(ctx Context) {
			for i := 1; i <= 3; i++ {
				ch.Send(ctx, i)
			}
			ch.Close()
		})
		for {
			var v int
			if !ch.Receive(ctx, &v) {
				break
			}
			received = append(received, v)
		}
	})
	defer d.Close()

	require.NoError(t, d.ExecuteUntilAllBlocked())
	require.True(t, d.IsDone())
	require.Equal(t, []int{1, 2, 3}, received)
}

// A selector with a ready future fires exactly one branch per Select.
func TestSelectorFuture(t *testing.T) {
	var got string
	_, d := newDispatcher(Background(), func(ctx Context) {
		f, s := NewFuture(ctx)
		Go(ctx, "resolver", func(ctx Context) {
			s.SetValue("resolved")
		})
		selector := NewSelector(ctx)
		selector.AddFuture(f, func(f Future) {
			var v string
			_ = f.Get(ctx, &v)
			got = v
		})
		selector.Select(ctx)
	})
	defer d.Close()

	require.NoError(t, d.ExecuteUntilAllBlocked())
	require.True(t, d.IsDone())
	require.Equal(t, "resolved", got)
}
