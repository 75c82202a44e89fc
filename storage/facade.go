package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// State is the routing mode of a Facade, fixed at construction.
type State int

const (
	// StateUninitialized is the zero State; a constructed Facade never reports it.
	StateUninitialized State = iota
	// StateRealBackend routes every call to the selected backend's adapter.
	StateRealBackend
	// StateFallback routes granted keys to the Fallback Store and drops the rest.
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateRealBackend:
		return "real_backend"
	case StateFallback:
		return "fallback"
	default:
		return "uninitialized"
	}
}

// SupportedBackends returns the built-in backend names keyed by their constant
// names: LOCAL_STORAGE, SESSION_STORAGE and COOKIE.
func SupportedBackends() map[string]string {
	return map[string]string{
		"LOCAL_STORAGE":   LocalStorage,
		"SESSION_STORAGE": SessionStorage,
		"COOKIE":          Cookie,
	}
}

// Option configures a Facade.
type Option func(*options)

type options struct {
	registry      *Registry
	fallback      *FallbackConfig
	env           Environment
	envSet        bool
	fallbackStore *FallbackStore
	config        Config
	logger        *slog.Logger
	metrics       *Metrics
	now           func() time.Time
}

// WithRegistry replaces the built-in registry. The facade keeps a private copy.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithFallback sets the fallback configuration. The facade keeps a private copy.
func WithFallback(cfg *FallbackConfig) Option {
	return func(o *options) {
		o.fallback = cfg
	}
}

// WithEnvironment resolves hosts from env instead of the ambient environment.
// A nil env means no host at all.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.env = env
		o.envSet = true
	}
}

// WithFallbackStore replaces the process-wide Fallback Store.
func WithFallbackStore(fs *FallbackStore) Option {
	return func(o *options) {
		if fs != nil {
			o.fallbackStore = fs
		}
	}
}

// WithConfig sets the facade tunables.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records facade decisions in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces time.Now when computing default expiries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Facade is the single entry point callers store and read values through.
//
// Whether calls reach the selected backend or the Fallback Store is decided once,
// in New, and never re-evaluated: a backend that becomes usable later is not
// picked up by an existing facade.
type Facade struct {
	id       string
	backend  string
	registry *Registry
	config   Config

	store any
	bound bool

	fallback      *FallbackConfig
	fallbackStore *FallbackStore

	canUse      bool
	useFallback bool
	disabled    error

	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// New creates a Facade for backend.
//
// It resolves the backend's host, probes it, and picks the routing mode:
//   - a usable backend is bound and used for every call;
//   - with no host context at all, the facade always falls back;
//   - an unusable backend falls back when the fallback config is enabled;
//   - otherwise every call fails with the error that disabled the backend.
//
// When the backend is unusable, FallbackConfig.OnDisabled runs before New returns.
// Probe failures other than a permission refusal are returned as errors.
func New(ctx context.Context, backend string, opts ...Option) (*Facade, error) {
	o := options{
		config:        DefaultConfig(),
		fallbackStore: DefaultFallbackStore(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.config.validate()
	if o.logger == nil {
		o.logger = slog.Default()
	}

	registry := DefaultRegistry()
	if o.registry != nil {
		registry = o.registry.Clone()
	}
	if _, ok := registry.Adapter(backend); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	env := o.env
	if !o.envSet {
		env = AmbientEnvironment()
	}

	f := &Facade{
		id:            uuid.NewString(),
		backend:       backend,
		registry:      registry,
		config:        o.config,
		fallback:      o.fallback.clone(),
		fallbackStore: o.fallbackStore,
		metrics:       o.metrics,
		now:           o.now,
	}
	f.logger = o.logger.With("backend", backend, "instance", f.id)

	c, err := ResolveContext(env, backend)
	if err != nil {
		return nil, err
	}

	if c.IsFound() {
		store, err := probe(ctx, backend, c, registry, f.config.ProbeKey)
		switch {
		case err == nil:
			f.canUse = true
			f.store = store
			f.bound = true
			f.metrics.probe(backend, "usable")
		case errors.Is(err, ErrPermissionDenied):
			f.disabled = err
			f.metrics.probe(backend, "denied")
		default:
			f.metrics.probe(backend, "error")
			return nil, err
		}
	} else {
		f.disabled = fmt.Errorf("%s: %w", backend, ErrNoHost)
	}

	f.useFallback = (!f.canUse && f.fallback != nil && f.fallback.Enabled) || !c.IsFound()

	if !f.canUse && f.fallback != nil && f.fallback.OnDisabled != nil {
		f.fallback.OnDisabled()
	}

	switch {
	case f.useFallback:
		f.metrics.fellBack(backend)
		f.logger.Warn("storage backend unavailable, using fallback store",
			"host", c.IsFound(),
			"granted", f.grantedCount(),
		)
	case !f.canUse:
		f.logger.Warn("storage backend unavailable and fallback disabled",
			"error", f.disabled,
		)
	default:
		f.logger.Info("storage backend ready")
	}

	return f, nil
}

// Type returns the backend name the facade was created for.
func (f *Facade) Type() string {
	return f.backend
}

// Method returns the bound raw store, or nil when the backend is not in use.
func (f *Facade) Method() any {
	if !f.bound || f.useFallback {
		return nil
	}
	return f.store
}

// State returns the routing mode.
func (f *Facade) State() State {
	if f.useFallback {
		return StateFallback
	}
	return StateRealBackend
}

// CanUseStorage reports whether the backend passed the availability probe.
func (f *Facade) CanUseStorage() bool {
	return f.canUse
}

// UsesFallback reports whether calls go to the Fallback Store.
func (f *Facade) UsesFallback() bool {
	return f.useFallback
}

// DefaultExpiry returns the expiry used when a call passes the zero time.
func (f *Facade) DefaultExpiry() time.Time {
	return ExpiryAfter(f.now(), f.config.ExpiryMonths)
}

// SetItem stores value under key. A zero expiry means DefaultExpiry.
// In fallback mode keys outside the granted list are silently dropped.
func (f *Facade) SetItem(ctx context.Context, key string, value any, expiry time.Time) error {
	adapter, store, ok, err := f.route("set", key)
	if !ok {
		return err
	}
	return adapter.SetItem(ctx, key, value, f.expiry(expiry), store)
}

// GetItem returns the decoded value stored under key. A missing key yields nil,
// or "" on the cookie backend, as does a key outside the granted list in
// fallback mode.
func (f *Facade) GetItem(ctx context.Context, key string, expiry time.Time) (any, error) {
	adapter, store, ok, err := f.route("get", key)
	if !ok {
		return nil, err
	}
	return adapter.GetItem(ctx, key, f.expiry(expiry), store)
}

// RemoveItem deletes key. A zero expiry means DefaultExpiry.
func (f *Facade) RemoveItem(ctx context.Context, key string, expiry time.Time) error {
	adapter, store, ok, err := f.route("remove", key)
	if !ok {
		return err
	}
	return adapter.RemoveItem(ctx, key, f.expiry(expiry), store)
}

// route picks the adapter and raw store for one call. ok is false when the call
// must not reach any adapter; err is then the failure to report, if any.
func (f *Facade) route(op, key string) (adapter Adapter, store any, ok bool, err error) {
	if f.useFallback {
		if !f.fallback.grants(key) {
			f.metrics.reject(f.backend, op)
			f.logger.Debug("fallback store rejected key", "op", op, "key", key)
			return nil, nil, false, nil
		}
		return f.fallbackStore, f.fallbackStore, true, nil
	}

	if !f.bound {
		return nil, nil, false, f.disabled
	}
	adapter, _ = f.registry.Adapter(f.backend)
	return adapter, f.store, true, nil
}

func (f *Facade) expiry(t time.Time) time.Time {
	if t.IsZero() {
		return f.DefaultExpiry()
	}
	return t
}

func (f *Facade) grantedCount() int {
	if f.fallback == nil {
		return 0
	}
	return len(f.fallback.GrantedProps)
}
