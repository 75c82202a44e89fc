package storage

import (
	"errors"
	"fmt"
	"sync"
)

// Context is the outcome of resolving a backend's host: either the host object
// (a Document for the cookie backend, a Window otherwise) or no context at all.
type Context struct {
	host  any
	found bool
}

// Found wraps a resolved host object.
func Found(host any) Context {
	return Context{host: host, found: true}
}

// NoContext reports that no host is available in this process. A facade built
// on it always runs in fallback mode.
func NoContext() Context {
	return Context{}
}

// IsFound reports whether a host was resolved.
func (c Context) IsFound() bool {
	return c.found
}

// Host returns the resolved host object, or nil.
func (c Context) Host() any {
	return c.host
}

// store returns the raw store for backend within the resolved host.
func (c Context) store(backend string) (any, error) {
	if backend == Cookie {
		return c.host, nil
	}
	w, ok := c.host.(Window)
	if !ok {
		return nil, fmt.Errorf("%w: host %T is not a Window", ErrInvalidStore, c.host)
	}
	return w.Store(backend)
}

var (
	ambientMu sync.RWMutex
	ambient   Environment
)

// SetEnvironment installs the process-wide ambient environment used by facades
// created without WithEnvironment. Passing nil removes it.
func SetEnvironment(env Environment) {
	ambientMu.Lock()
	defer ambientMu.Unlock()
	ambient = env
}

// AmbientEnvironment returns the process-wide environment, or nil.
func AmbientEnvironment() Environment {
	ambientMu.RLock()
	defer ambientMu.RUnlock()
	return ambient
}

// ResolveContext finds the host object for backend: the document for the cookie
// backend, the window for everything else. A missing binding (nil environment,
// nil or empty host, ErrNoHost) yields NoContext; any other lookup error is
// returned.
func ResolveContext(env Environment, backend string) (Context, error) {
	if env == nil {
		return NoContext(), nil
	}

	var (
		host any
		err  error
	)
	if backend == Cookie {
		var doc Document
		doc, err = env.Document()
		if doc != nil {
			host = doc
		}
	} else {
		var w Window
		w, err = env.Window()
		if w != nil {
			host = w
		}
	}

	if err != nil {
		if errors.Is(err, ErrNoHost) {
			return NoContext(), nil
		}
		return NoContext(), fmt.Errorf("resolve %s host: %w", backend, err)
	}
	if host == nil {
		return NoContext(), nil
	}
	return Found(host), nil
}
