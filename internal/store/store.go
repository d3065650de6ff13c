// Package store persists transaction log bundles to an object store.
// Two backends are available: the local filesystem and Google Cloud Storage.
package store

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when a requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Store provides object storage keyed by path-like strings.
// This interface enables mocking and testing of storage functionality.
type Store interface {
	// Put writes data under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object stored under the given key.
	// Returns ErrObjectNotFound if no such object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys with the given prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
