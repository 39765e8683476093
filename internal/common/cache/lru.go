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

// Package cache provides the LRU cache backing the worker's sticky workflow
// execution contexts.
package cache

import (
	"container/list"
	"sync"
)

// RemovedFunc is called with the removed element after it has been evicted
// or explicitly deleted, outside of the cache lock.
type RemovedFunc func(interface{})

// Cache is a size-bounded key-value store with LRU eviction.
type Cache interface {
	// Get returns the element under key, or nil if not present.
	Get(key string) interface{}
	// Put stores element under key and returns the previous element, if any.
	Put(key string, element interface{}) interface{}
	// Delete removes key. It is a no-op if the key is absent.
	Delete(key string)
	// Exist reports whether key is present without affecting recency.
	Exist(key string) bool
	// Size returns the number of elements currently stored.
	Size() int
}

// Options configures a cache created by New.
type Options struct {
	// RemovedFunc, if set, observes every eviction and deletion.
	RemovedFunc RemovedFunc
}

type lru struct {
	mut      sync.Mutex
	byKey    map[string]*list.Element
	byAccess *list.List
	maxSize  int
	onRemove RemovedFunc
}

type lruEntry struct {
	key     string
	element interface{}
}

// New creates an LRU cache holding at most maxSize elements.
func New(maxSize int, opts *Options) Cache {
	c := &lru{
		byKey:    make(map[string]*list.Element, maxSize),
		byAccess: list.New(),
		maxSize:  maxSize,
	}
	if opts != nil {
		c.onRemove = opts.RemovedFunc
	}
	return c
}

func (c *lru) Get(key string) interface{} {
	c.mut.Lock()
	defer c.mut.Unlock()
	elt, ok := c.byKey[key]
	if !ok {
		return nil
	}
	c.byAccess.MoveToFront(elt)
	return elt.Value.(*lruEntry).element
}

func (c *lru) Put(key string, element interface{}) interface{} {
	c.mut.Lock()
	var evicted, previous interface{}
	if elt, ok := c.byKey[key]; ok {
		entry := elt.Value.(*lruEntry)
		previous = entry.element
		entry.element = element
		c.byAccess.MoveToFront(elt)
	} else {
		c.byKey[key] = c.byAccess.PushFront(&lruEntry{key: key, element: element})
		if len(c.byKey) > c.maxSize {
			oldest := c.byAccess.Back()
			entry := oldest.Value.(*lruEntry)
			delete(c.byKey, entry.key)
			c.byAccess.Remove(oldest)
			evicted = entry.element
		}
	}
	c.mut.Unlock()
	if evicted != nil && c.onRemove != nil {
		c.onRemove(evicted)
	}
	return previous
}

func (c *lru) Delete(key string) {
	c.mut.Lock()
	var removed interface{}
	if elt, ok := c.byKey[key]; ok {
		removed = elt.Value.(*lruEntry).element
		delete(c.byKey, key)
		c.byAccess.Remove(elt)
	}
	c.mut.Unlock()
	if removed != nil && c.onRemove != nil {
		c.onRemove(removed)
	}
}

func (c *lru) Exist(key string) bool {
	c.mut.Lock()
	defer c.mut.Unlock()
	_, ok := c.byKey[key]
	return ok
}

func (c *lru) Size() int {
	c.mut.Lock()
	defer c.mut.Unlock()
	return len(c.byKey)
}
