// Package store persists single JSON documents behind a small interface so
// components can be handed an in-memory store in tests.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("store: document not found")

// Store loads and saves one document of type T
type Store[T any] interface {
	Load(ctx context.Context) (T, error)
	Save(ctx context.Context, value T) error
}
