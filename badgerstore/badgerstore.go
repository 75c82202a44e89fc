// Package badgerstore provides a disk-backed storage backend over a Badger v3
// database.
//
// The raw store is the *badger.DB itself:
//
//	db, err := badgerstore.Open("/var/lib/app/storage", logger)
//	defer db.Close()
//	env := storage.NewEnvironment(storage.WithWindowStore(badgerstore.BackendName, db))
//	f, err := storage.New(ctx, badgerstore.BackendName,
//		storage.WithRegistry(badgerstore.Register(nil)),
//		storage.WithEnvironment(env))
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/jacentio/webstorage/storage"
)

// BackendName is the registry name of the Badger backend.
const BackendName = "badger"

// Open opens a Badger database in dir with Badger's logging routed to logger.
// An empty dir opens an in-memory database.
func Open(dir string, logger *slog.Logger) (*badger.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger.With("component", "badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	return db, nil
}

// Adapter returns the storage.Adapter for Badger databases.
func Adapter() storage.Adapter {
	return adapter{now: time.Now}
}

// Register returns a copy of reg with the Badger backend added. A nil reg stands
// for the built-in registry.
func Register(reg *storage.Registry) *storage.Registry {
	frag := storage.NewRegistry()
	frag.Register(BackendName, Adapter())
	return storage.MergeRegistry(reg, frag)
}

type adapter struct {
	now func() time.Time
}

// SetItem stores the encoded value. A non-zero expiry becomes the entry TTL; an
// expiry already in the past removes the key instead.
func (a adapter) SetItem(_ context.Context, key string, value any, expiry time.Time, store any) error {
	db, err := database(store)
	if err != nil {
		return err
	}
	encoded, err := storage.Encode(value)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !expiry.IsZero() {
		ttl = expiry.Sub(a.now())
		if ttl <= 0 {
			return mapError(db.Update(func(txn *badger.Txn) error {
				return txn.Delete([]byte(key))
			}))
		}
	}

	return mapError(db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), []byte(encoded))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	}))
}

func (adapter) GetItem(_ context.Context, key string, _ time.Time, store any) (any, error) {
	db, err := database(store)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return storage.Decode(string(raw))
}

func (adapter) RemoveItem(_ context.Context, key string, _ time.Time, store any) error {
	db, err := database(store)
	if err != nil {
		return err
	}
	return mapError(db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}))
}

func database(store any) (*badger.DB, error) {
	db, ok := store.(*badger.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("%w: want *badger.DB, got %T", storage.ErrInvalidStore, store)
	}
	return db, nil
}

// mapError reports a database that refuses writes as storage.ErrPermissionDenied.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrReadOnlyTxn) || errors.Is(err, badger.ErrBlockedWrites) {
		return fmt.Errorf("%w: %v", storage.ErrPermissionDenied, err)
	}
	return err
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
