// Package history implements a bounded undo log.
package history

import "github.com/wbrown/tracepad/internal/logging"

// DefaultCapacity is the number of undo steps kept.
const DefaultCapacity = 25

// Stack is a LIFO that holds at most Cap() values, oldest first. Pushing
// onto a full stack evicts the oldest value. There is no redo: a popped
// value is gone.
type Stack[T any] struct {
	items    []T
	capacity int
}

// New returns an empty stack. A capacity below 1 selects DefaultCapacity.
func New[T any](capacity int) *Stack[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Stack[T]{capacity: capacity, items: make([]T, 0, capacity+1)}
}

// Push appends v, dropping the oldest value if the stack overflows.
func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
	if len(s.items) > s.capacity {
		var zero T
		s.items[0] = zero
		s.items = append(s.items[:0], s.items[1:]...)
		logging.Logger().Debug("history full, evicted oldest entry", "capacity", s.capacity)
	}
}

// Pop removes and returns the most recent value. ok is false when the
// stack is empty, which is not an error.
func (s *Stack[T]) Pop() (v T, ok bool) {
	n := len(s.items)
	if n == 0 {
		return v, false
	}
	v = s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return v, true
}

// Peek returns the most recent value without removing it.
func (s *Stack[T]) Peek() (v T, ok bool) {
	if len(s.items) == 0 {
		return v, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of values held.
func (s *Stack[T]) Len() int { return len(s.items) }

// Cap returns the maximum number of values held.
func (s *Stack[T]) Cap() int { return s.capacity }

// Reset drops every value.
func (s *Stack[T]) Reset() {
	clear(s.items)
	s.items = s.items[:0]
}
