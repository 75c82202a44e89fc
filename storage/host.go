package storage

import (
	"fmt"
	"sync"
)

// ItemStore is the host contract for the local and session backends.
type ItemStore interface {
	SetItem(key, value string) error
	// GetItem reports false when key is absent.
	GetItem(key string) (string, bool, error)
	RemoveItem(key string) error
}

// Document is the host contract for the cookie backend: a single readable and
// writable cookie string. Cookie returns "name=value" pairs separated by "; ".
// SetCookie accepts one Set-Cookie style directive.
type Document interface {
	Cookie() (string, error)
	SetCookie(directive string) error
}

// Window exposes the named host stores ("localStorage", "sessionStorage" or any
// custom backend name). Store returns ErrPermissionDenied when the host refuses
// access to an existing store.
type Window interface {
	Store(name string) (any, error)
}

// Environment is the ambient host a Facade resolves its raw store from.
// Either lookup returns ErrNoHost, or a nil value, when the binding is absent.
type Environment interface {
	Window() (Window, error)
	Document() (Document, error)
}

// MemoryItemStore is a map-backed ItemStore.
type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryItemStore creates an empty MemoryItemStore.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{items: make(map[string]string)}
}

// SetItem stores value under key.
func (m *MemoryItemStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// GetItem returns the value stored under key.
func (m *MemoryItemStore) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// RemoveItem deletes key.
func (m *MemoryItemStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len returns the number of stored items.
func (m *MemoryItemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// HostOption configures an environment built by NewEnvironment.
type HostOption func(*staticEnvironment)

// WithWindowStore exposes store under name on the environment's window.
func WithWindowStore(name string, store any) HostOption {
	return func(e *staticEnvironment) {
		e.window.stores[name] = store
	}
}

// WithDeniedStore makes the window refuse access to name, the way a browser with
// storage disabled throws on window.localStorage.
func WithDeniedStore(name string) HostOption {
	return func(e *staticEnvironment) {
		e.window.denied[name] = true
	}
}

// WithDocument sets the environment's document.
func WithDocument(doc Document) HostOption {
	return func(e *staticEnvironment) {
		e.document = doc
	}
}

// NewEnvironment builds an Environment from explicit host objects. A window with no
// stores is reported as absent, as is a nil document.
func NewEnvironment(opts ...HostOption) Environment {
	e := &staticEnvironment{
		window: &mapWindow{
			stores: make(map[string]any),
			denied: make(map[string]bool),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type staticEnvironment struct {
	window   *mapWindow
	document Document
}

func (e *staticEnvironment) Window() (Window, error) {
	if len(e.window.stores) == 0 && len(e.window.denied) == 0 {
		return nil, nil
	}
	return e.window, nil
}

func (e *staticEnvironment) Document() (Document, error) {
	return e.document, nil
}

type mapWindow struct {
	stores map[string]any
	denied map[string]bool
}

func (w *mapWindow) Store(name string) (any, error) {
	if w.denied[name] {
		return nil, fmt.Errorf("access to %s: %w", name, ErrPermissionDenied)
	}
	return w.stores[name], nil
}
