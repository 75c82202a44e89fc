package storage

import "errors"

var (
	// ErrPermissionDenied is returned by hosts and adapters when the backend exists but
	// access to it is refused (storage disabled, private browsing, read-only database).
	// The availability probe treats it as "backend unusable" rather than a failure.
	ErrPermissionDenied = errors.New("webstorage: permission denied")

	// ErrNoHost is returned by an Environment when the requested ambient binding
	// (window or document) does not exist in this process.
	ErrNoHost = errors.New("webstorage: no host context")

	// ErrUnknownBackend is returned when a backend name has no registered adapter.
	ErrUnknownBackend = errors.New("webstorage: unknown backend")

	// ErrInvalidStore is returned when an adapter receives a raw store of the wrong type.
	ErrInvalidStore = errors.New("webstorage: invalid raw store for adapter")

	// ErrEncode is returned when a value cannot be serialized for storage.
	ErrEncode = errors.New("webstorage: cannot encode value")

	// ErrDecode is returned when a stored value cannot be decoded.
	ErrDecode = errors.New("webstorage: cannot decode value")
)
