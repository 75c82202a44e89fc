package storage

import (
	"context"
	"sync"
	"time"
)

// FallbackStore is the in-memory store used when no real backend is usable.
// It implements Adapter and ignores the raw store argument.
//
// The default instance lives for the whole process and is shared by every facade
// that falls back; writes to the same key from different facades race with last
// write winning. There is no eviction, which is why facades only admit keys from
// their FallbackConfig.GrantedProps.
type FallbackStore struct {
	mu    sync.RWMutex
	items map[string]string
}

var defaultFallback = NewFallbackStore()

// NewFallbackStore creates an empty, private FallbackStore.
func NewFallbackStore() *FallbackStore {
	return &FallbackStore{items: make(map[string]string)}
}

// DefaultFallbackStore returns the process-wide FallbackStore.
func DefaultFallbackStore() *FallbackStore {
	return defaultFallback
}

// SetItem implements Adapter.
func (f *FallbackStore) SetItem(_ context.Context, key string, value any, _ time.Time, _ any) error {
	encoded, err := Encode(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = encoded
	return nil
}

// GetItem implements Adapter. A missing key yields nil.
func (f *FallbackStore) GetItem(_ context.Context, key string, _ time.Time, _ any) (any, error) {
	f.mu.RLock()
	raw, ok := f.items[key]
	f.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return Decode(raw)
}

// RemoveItem implements Adapter.
func (f *FallbackStore) RemoveItem(_ context.Context, key string, _ time.Time, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

// Len returns the number of stored keys.
func (f *FallbackStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Reset removes every key.
func (f *FallbackStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.items)
}
