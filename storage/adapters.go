package storage

import (
	"context"
	"fmt"
	"time"
)

// Backend names of the built-in adapters.
const (
	LocalStorage   = "localStorage"
	SessionStorage = "sessionStorage"
	Cookie         = "cookie"
)

// Adapter is the three-operation shape every backend implements.
//
// Adapters are stateless: every call operates only on the raw store passed as the
// last argument, which is whatever the backend's host exposes (an ItemStore, a
// Document, a DynamoDB table handle...). The expiry is only meaningful to backends
// that support it.
//
// The availability probe writes, reads and removes a trial key, so SetItem and
// RemoveItem must be safe to reverse immediately.
type Adapter interface {
	SetItem(ctx context.Context, key string, value any, expiry time.Time, store any) error
	GetItem(ctx context.Context, key string, expiry time.Time, store any) (any, error)
	RemoveItem(ctx context.Context, key string, expiry time.Time, store any) error
}

// SetFunc, GetFunc and RemoveFunc are the operations of a caller-built adapter.
type (
	SetFunc    func(ctx context.Context, key string, value any, expiry time.Time, store any) error
	GetFunc    func(ctx context.Context, key string, expiry time.Time, store any) (any, error)
	RemoveFunc func(ctx context.Context, key string, expiry time.Time, store any) error
)

// AdapterFuncs implements Adapter with plain functions. Nil functions are no-ops.
type AdapterFuncs struct {
	Set    SetFunc
	Get    GetFunc
	Remove RemoveFunc
}

// SetItem implements Adapter.
func (a AdapterFuncs) SetItem(ctx context.Context, key string, value any, expiry time.Time, store any) error {
	if a.Set == nil {
		return nil
	}
	return a.Set(ctx, key, value, expiry, store)
}

// GetItem implements Adapter.
func (a AdapterFuncs) GetItem(ctx context.Context, key string, expiry time.Time, store any) (any, error) {
	if a.Get == nil {
		return nil, nil
	}
	return a.Get(ctx, key, expiry, store)
}

// RemoveItem implements Adapter.
func (a AdapterFuncs) RemoveItem(ctx context.Context, key string, expiry time.Time, store any) error {
	if a.Remove == nil {
		return nil
	}
	return a.Remove(ctx, key, expiry, store)
}

// itemAdapter serves the local and session backends. Expiry is ignored.
type itemAdapter struct{}

func (itemAdapter) SetItem(_ context.Context, key string, value any, _ time.Time, store any) error {
	s, err := itemStore(store)
	if err != nil {
		return err
	}
	encoded, err := Encode(value)
	if err != nil {
		return err
	}
	return s.SetItem(key, encoded)
}

func (itemAdapter) GetItem(_ context.Context, key string, _ time.Time, store any) (any, error) {
	s, err := itemStore(store)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.GetItem(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return Decode(raw)
}

func (itemAdapter) RemoveItem(_ context.Context, key string, _ time.Time, store any) error {
	s, err := itemStore(store)
	if err != nil {
		return err
	}
	return s.RemoveItem(key)
}

func itemStore(store any) (ItemStore, error) {
	s, ok := store.(ItemStore)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: want ItemStore, got %T", ErrInvalidStore, store)
	}
	return s, nil
}
