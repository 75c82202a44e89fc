package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/go-cmp/cmp"

	"github.com/jacentio/webstorage/storage"
)

func openMemory(t *testing.T) *badger.DB {
	t.Helper()
	db, err := Open("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAdapter_BasicOperations(t *testing.T) {
	db := openMemory(t)
	a := Adapter()
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		want := map[string]any{"theme": "dark", "size": float64(12)}
		if err := a.SetItem(ctx, "prefs", want, time.Time{}, db); err != nil {
			t.Fatal(err)
		}
		got, err := a.GetItem(ctx, "prefs", time.Time{}, db)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("GetItem mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		got, err := a.GetItem(ctx, "non-existent", time.Time{}, db)
		if err != nil || got != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := a.SetItem(ctx, "gone", "soon", time.Time{}, db); err != nil {
			t.Fatal(err)
		}
		if err := a.RemoveItem(ctx, "gone", time.Time{}, db); err != nil {
			t.Fatal(err)
		}
		got, err := a.GetItem(ctx, "gone", time.Time{}, db)
		if err != nil || got != nil {
			t.Errorf("expected (nil, nil) after remove, got (%v, %v)", got, err)
		}
	})

	t.Run("Remove missing key", func(t *testing.T) {
		if err := a.RemoveItem(ctx, "never-set", time.Time{}, db); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestAdapter_Expiry(t *testing.T) {
	db := openMemory(t)
	a := Adapter()
	ctx := context.Background()

	t.Run("future expiry sets TTL", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		if err := a.SetItem(ctx, "session", "abc", expiry, db); err != nil {
			t.Fatal(err)
		}
		err := db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte("session"))
			if err != nil {
				return err
			}
			if item.ExpiresAt() == 0 {
				return fmt.Errorf("expected a TTL on the entry")
			}
			return nil
		})
		if err != nil {
			t.Error(err)
		}
	})

	t.Run("past expiry removes key", func(t *testing.T) {
		if err := a.SetItem(ctx, "stale", "v1", time.Time{}, db); err != nil {
			t.Fatal(err)
		}
		if err := a.SetItem(ctx, "stale", "v2", time.Now().Add(-time.Hour), db); err != nil {
			t.Fatal(err)
		}
		got, err := a.GetItem(ctx, "stale", time.Time{}, db)
		if err != nil || got != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
		}
	})
}

func TestAdapter_InvalidStore(t *testing.T) {
	err := Adapter().SetItem(context.Background(), "k", "v", time.Time{}, map[string]string{})
	if !errors.Is(err, storage.ErrInvalidStore) {
		t.Errorf("expected ErrInvalidStore, got %v", err)
	}

	var db *badger.DB
	if _, err := Adapter().GetItem(context.Background(), "k", time.Time{}, db); !errors.Is(err, storage.ErrInvalidStore) {
		t.Errorf("expected ErrInvalidStore for nil db, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		denied bool
	}{
		{"nil", nil, false},
		{"read only", badger.ErrReadOnlyTxn, true},
		{"blocked writes", fmt.Errorf("update: %w", badger.ErrBlockedWrites), true},
		{"other", badger.ErrTxnTooBig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err)
			if got := errors.Is(err, storage.ErrPermissionDenied); got != tt.denied {
				t.Errorf("expected denied=%v, got %v (%v)", tt.denied, got, err)
			}
			if tt.err == nil && err != nil {
				t.Errorf("expected nil, got %v", err)
			}
		})
	}
}

func TestFacade_Badger(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	f, err := storage.New(ctx, BackendName,
		storage.WithRegistry(Register(nil)),
		storage.WithEnvironment(storage.NewEnvironment(storage.WithWindowStore(BackendName, db))),
	)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if !f.CanUseStorage() || f.UsesFallback() {
		t.Fatalf("expected a usable badger backend, state %s", f.State())
	}
	if f.Method() != db {
		t.Error("expected Method to return the database")
	}

	if err := f.SetItem(ctx, "visits", 3, time.Time{}); err != nil {
		t.Fatal(err)
	}
	got, err := f.GetItem(ctx, "visits", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if got != float64(3) {
		t.Errorf("expected 3, got %#v", got)
	}

	// The probe key must not survive construction.
	probe, err := Adapter().GetItem(ctx, storage.DefaultConfig().ProbeKey, time.Time{}, db)
	if err != nil || probe != nil {
		t.Errorf("expected probe key to be removed, got (%v, %v)", probe, err)
	}
}
