package store

import (
	"context"
	"sync"
)

// Memory keeps the document in process memory
type Memory[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
	saves int
}

// NewMemory returns an empty in-memory store
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

// NewMemoryWith returns an in-memory store seeded with value
func NewMemoryWith[T any](value T) *Memory[T] {
	return &Memory[T]{value: value, set: true}
}

// Load returns the last saved value, or ErrNotFound
func (m *Memory[T]) Load(ctx context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	if !m.set {
		var zero T
		return zero, ErrNotFound
	}
	return m.value, nil
}

// Save replaces the stored value
func (m *Memory[T]) Save(ctx context.Context, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	m.value = value
	m.set = true
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (m *Memory[T]) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
