// Package observable provides a value holder that notifies subscribers on change.
package observable

import (
	"sort"
	"sync"
)

// Cell holds one value of type T. Set and Update notify subscribers
// synchronously on the calling goroutine, after the lock is released.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	nextID  int
	subs    map[int]func(prev, next T)
}

// NewCell returns a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]func(prev, next T))}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version counts the number of writes so far.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set replaces the value.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) atomically with respect to other writers.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	old := c.value
	c.value = fn(old)
	c.version++
	newValue := c.value
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(old, newValue)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (c *Cell[T]) Subscribe(fn func(prev, next T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// snapshotSubs returns subscribers in registration order. Caller holds the lock.
func (c *Cell[T]) snapshotSubs() []func(prev, next T) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(prev, next T), len(ids))
	for i, id := range ids {
		out[i] = c.subs[id]
	}
	return out
}
