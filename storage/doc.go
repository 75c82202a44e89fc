// Package storage provides one key/value interface over browser-style persistence
// backends (local storage, session storage, cookies) and caller-defined backends,
// with an in-memory fallback when the selected backend cannot be used.
//
// # Backends
//
// Every backend implements [Adapter]: SetItem, GetItem and RemoveItem, each
// receiving the raw store it operates on. The built-in adapters expect an
// [ItemStore] (local and session storage) or a [Document] (cookies). Custom
// backends are registered through a [Registry]:
//
//	frag := storage.BuildAdapter("fileSystem", set, get, remove)
//	reg := storage.MergeRegistry(storage.DefaultRegistry(), frag)
//
// # Hosts
//
// A [Facade] finds its raw store through an [Environment]: the document for the
// cookie backend, the window's named store otherwise. Use [SetEnvironment] for a
// process-wide host or [WithEnvironment] per facade. With no host at all the
// facade runs in fallback mode.
//
// # Fallback
//
// The decision is taken once, in [New]:
//
//	f, err := storage.New(ctx, storage.Cookie, storage.WithFallback(&storage.FallbackConfig{
//	    Enabled:      true,
//	    GrantedProps: []string{"country"},
//	    OnDisabled:   func() { log.Print("cookies disabled") },
//	}))
//
// In fallback mode only keys listed in GrantedProps reach the shared in-memory
// [FallbackStore]; other keys are dropped without error. Keep fallback keys to
// small settings such as "country" or "lang".
//
// # Errors
//
//   - [ErrPermissionDenied] - host refused access; the probe reports the backend unusable
//   - [ErrNoHost] - no ambient window or document
//   - [ErrUnknownBackend] - no adapter registered under the name
//   - [ErrInvalidStore] - adapter received a raw store of the wrong type
//   - [ErrEncode], [ErrDecode] - value serialization failures
//
// Use errors.Is to check error types.
package storage
