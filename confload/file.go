package confload

import (
	"github.com/jacentio/webstorage/dynamo"
	"github.com/jacentio/webstorage/storage"
)

// File is the configuration document.
type File struct {
	// Backend is the preferred backend name.
	Backend string `koanf:"backend"`

	Expiry struct {
		Months int `koanf:"months"`
	} `koanf:"expiry"`

	Probe struct {
		Key string `koanf:"key"`
	} `koanf:"probe"`

	Fallback struct {
		Enabled bool     `koanf:"enabled"`
		Grants  []string `koanf:"grants"`
	} `koanf:"fallback"`

	Dynamo struct {
		Table     string `koanf:"table"`
		Namespace string `koanf:"namespace"`
		Shards    int    `koanf:"shards"`
	} `koanf:"dynamo"`

	Badger struct {
		// Dir is the database directory; empty means in memory.
		Dir string `koanf:"dir"`
	} `koanf:"badger"`
}

// Default returns the configuration used for keys no source sets.
func Default() File {
	var f File
	sc := storage.DefaultConfig()
	dc := dynamo.DefaultConfig()

	f.Backend = storage.LocalStorage
	f.Expiry.Months = sc.ExpiryMonths
	f.Probe.Key = sc.ProbeKey
	f.Dynamo.Table = dc.Table
	f.Dynamo.Namespace = dc.Namespace
	f.Dynamo.Shards = dc.NumShards
	return f
}

// StorageConfig returns the facade configuration.
func (f File) StorageConfig() storage.Config {
	return storage.Config{
		ExpiryMonths: f.Expiry.Months,
		ProbeKey:     f.Probe.Key,
	}
}

// FallbackConfig returns the fallback settings.
func (f File) FallbackConfig() *storage.FallbackConfig {
	return &storage.FallbackConfig{
		Enabled:      f.Fallback.Enabled,
		GrantedProps: append([]string(nil), f.Fallback.Grants...),
	}
}

// DynamoConfig returns the DynamoDB table settings.
func (f File) DynamoConfig() dynamo.Config {
	return dynamo.Config{
		Table:     f.Dynamo.Table,
		Namespace: f.Dynamo.Namespace,
		NumShards: f.Dynamo.Shards,
	}
}

// Options returns the facade options carrying this configuration.
func (f File) Options() []storage.Option {
	return []storage.Option{
		storage.WithConfig(f.StorageConfig()),
		storage.WithFallback(f.FallbackConfig()),
	}
}
