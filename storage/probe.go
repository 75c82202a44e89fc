package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CanUse reports whether backend is usable, by writing, reading and removing the
// key "test" through the backend's adapter.
//
// With a found context the adapter operates on the host's store for backend (the
// document for the cookie backend); otherwise the adapter itself is handed over as
// the raw store, which suits closure-based custom adapters. A nil registry means
// the built-in one.
//
// A permission failure is the expected signal for a disabled backend and yields
// false. Any other failure is returned: it points at a broken adapter or host, not
// at a restricted environment.
func CanUse(ctx context.Context, backend string, c Context, reg *Registry) (bool, error) {
	_, err := probe(ctx, backend, c, reg, DefaultConfig().ProbeKey)
	if errors.Is(err, ErrPermissionDenied) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// probe runs the trial and returns the raw store it exercised.
func probe(ctx context.Context, backend string, c Context, reg *Registry, key string) (any, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	adapter, ok := reg.Adapter(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	var store any = adapter
	if c.IsFound() {
		s, err := c.store(backend)
		if err != nil {
			return nil, err
		}
		store = s
	}

	if err := adapter.SetItem(ctx, key, "1", time.Time{}, store); err != nil {
		return nil, fmt.Errorf("probe %s: set: %w", backend, err)
	}
	if _, err := adapter.GetItem(ctx, key, time.Time{}, store); err != nil {
		return nil, fmt.Errorf("probe %s: get: %w", backend, err)
	}
	if err := adapter.RemoveItem(ctx, key, time.Time{}, store); err != nil {
		return nil, fmt.Errorf("probe %s: remove: %w", backend, err)
	}
	return store, nil
}
