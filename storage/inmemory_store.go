package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/multierr"
)

const (
	UpdateBufferSize = 255
)

type InmemoryStore struct {
	mu     sync.RWMutex
	values []byte

	listenersMu sync.Mutex
	updateChans []chan *Update

	// stop will be closed when Close() is called
	stop     chan struct{}
	stopOnce sync.Once
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values:      []byte("{}"),
		stop:        make(chan struct{}),
		updateChans: make([]chan *Update, 0),
	}
}

func (i *InmemoryStore) Close() error {
	i.stopOnce.Do(func() {
		close(i.stop)

		i.listenersMu.Lock()
		defer i.listenersMu.Unlock()

		for _, updateChan := range i.updateChans {
			close(updateChan)
		}

		i.updateChans = nil
	})

	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	if !i.isRunning() {
		return ErrClosed
	}

	i.mu.Lock()
	values, err := sjson.SetBytes(i.values, key, value)
	if err != nil {
		i.mu.Unlock()
		return fmt.Errorf("Failed to set %s: %w", key, err)
	}

	i.values = values
	raw := copyBytes([]byte(gjson.GetBytes(i.values, key).Raw))
	i.mu.Unlock()

	return i.publish(ctx, &Update{Key: key, Value: raw})
}

func (i *InmemoryStore) Patch(ctx context.Context, key, field string, value interface{}) error {
	if !i.isRunning() {
		return ErrClosed
	}

	path := key + "." + field

	i.mu.Lock()
	if !gjson.GetBytes(i.values, key).IsObject() {
		i.mu.Unlock()
		return fmt.Errorf("Failed to patch %s: %w", key, ErrNotFound)
	}

	values, err := sjson.SetBytes(i.values, path, value)
	if err != nil {
		i.mu.Unlock()
		return fmt.Errorf("Failed to patch %s: %w", path, err)
	}

	i.values = values
	raw := copyBytes([]byte(gjson.GetBytes(i.values, path).Raw))
	i.mu.Unlock()

	return i.publish(ctx, &Update{Key: path, Value: raw})
}

func (i *InmemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := gjson.GetBytes(i.values, key)
	if !result.Exists() {
		return nil, fmt.Errorf("Failed to get %s: %w", key, ErrNotFound)
	}

	return copyBytes([]byte(result.Raw)), nil
}

func (i *InmemoryStore) Delete(ctx context.Context, key string) error {
	if !i.isRunning() {
		return ErrClosed
	}

	i.mu.Lock()
	if !gjson.GetBytes(i.values, key).Exists() {
		i.mu.Unlock()
		return nil
	}

	values, err := sjson.DeleteBytes(i.values, key)
	if err != nil {
		i.mu.Unlock()
		return fmt.Errorf("Failed to delete %s: %w", key, err)
	}

	i.values = values
	i.mu.Unlock()

	return i.publish(ctx, &Update{Key: key, Deleted: true})
}

func (i *InmemoryStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	if !i.isRunning() {
		return 0, ErrClosed
	}

	i.mu.Lock()
	n := gjson.GetBytes(i.values, key).Int() + delta

	values, err := sjson.SetBytes(i.values, key, n)
	if err != nil {
		i.mu.Unlock()
		return 0, fmt.Errorf("Failed to increment %s: %w", key, err)
	}

	i.values = values
	raw := copyBytes([]byte(gjson.GetBytes(i.values, key).Raw))
	i.mu.Unlock()

	return n, i.publish(ctx, &Update{Key: key, Value: raw})
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.listenersMu.Lock()
	defer i.listenersMu.Unlock()

	updateChan := make(chan *Update, UpdateBufferSize)

	if !i.isRunning() {
		close(updateChan)
		return updateChan
	}

	i.updateChans = append(i.updateChans, updateChan)
	return updateChan
}

// publish sends update to every listener. A listener that is not keeping up
// blocks the writer until ctx ends.
func (i *InmemoryStore) publish(ctx context.Context, update *Update) (err error) {
	i.listenersMu.Lock()
	defer i.listenersMu.Unlock()

	for _, updateChan := range i.updateChans {
		select {
		case updateChan <- update:
		case <-ctx.Done():
			err = multierr.Append(err, fmt.Errorf("Failed to publish %s: %w", update.Key, ctx.Err()))
		}
	}

	return err
}

func (i *InmemoryStore) Restore(values []byte) error {
	if !gjson.ValidBytes(values) {
		return ErrInvalidDocument
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.values = copyBytes(values)
	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return copyBytes(i.values), nil
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)
	return c
}

var _ Store = (*InmemoryStore)(nil)
