// Package contextval implements the published context values consumed by
// the presentation layer: a single owner holds the current value, consumers
// read it or subscribe as leaf observers with no write access.
package contextval

import (
	"sync"

	"github.com/google/uuid"
)

// Value owns one published value and notifies subscribers synchronously on
// every change.
type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	subscribers map[uuid.UUID]func(T)
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: make(map[uuid.UUID]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set replaces the value and notifies all subscribers in the caller's
// goroutine before returning.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.current = next
	fns := make([]func(T), 0, len(v.subscribers))
	for _, fn := range v.subscribers {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers a listener and returns its remove function. The
// listener is not invoked with the current value at registration time.
func (v *Value[T]) Subscribe(fn func(T)) (remove func()) {
	id := uuid.New()

	v.mu.Lock()
	v.subscribers[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subscribers, id)
		v.mu.Unlock()
	}
}
