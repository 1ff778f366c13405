package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrInvalidDocument = errors.New("document is not valid JSON")
	ErrClosed          = errors.New("store closed")
)

// Update describes a change to a key. Value holds the new raw JSON and is nil
// when the key was deleted.
type Update struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Store is a JSON document addressed by dotted paths, e.g.
// "clients.clid-5.nickname".
type Store interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// Patch sets field inside the object at key. It fails with ErrNotFound
	// when key does not exist instead of creating it.
	Patch(ctx context.Context, key, field string, value interface{}) error

	// Increment adds delta to the number at key, treating a missing key as 0,
	// and returns the new value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	Restore(values []byte) error
	Backup() ([]byte, error)

	ListenToUpdates() <-chan *Update

	Close() error
}
