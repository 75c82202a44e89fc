package confload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("APP_"), WithConfigFile("/etc/app.yaml"))
	if l.envPrefix != "APP_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "APP_")
	}
	if l.filePath != "/etc/app.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/etc/app.yaml")
	}
}

func TestLoader_Load_Defaults(t *testing.T) {
	f, err := NewLoader(WithEnvPrefix("WEBSTORAGE_TEST_UNSET_")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), f); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_File(t *testing.T) {
	path := writeConfig(t, `
backend: cookie
expiry:
  months: 12
fallback:
  enabled: true
  grants: [theme, lang]
dynamo:
  table: prefs
  shards: 8
badger:
  dir: /var/lib/prefs
`)

	f, err := NewLoader(WithConfigFile(path)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.Backend = "cookie"
	want.Expiry.Months = 12
	want.Fallback.Enabled = true
	want.Fallback.Grants = []string{"theme", "lang"}
	want.Dynamo.Table = "prefs"
	want.Dynamo.Shards = 8
	want.Badger.Dir = "/var/lib/prefs"

	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_FileNotFound(t *testing.T) {
	if _, err := NewLoader(WithConfigFile("/nonexistent/config.yaml")).Load(); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_Load_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
expiry:
  months: 12
fallback:
  grants: [theme]
`)
	t.Setenv("WEBSTORAGE_EXPIRY_MONTHS", "3")
	t.Setenv("WEBSTORAGE_FALLBACK_ENABLED", "true")
	t.Setenv("WEBSTORAGE_FALLBACK_GRANTS", "lang, country")
	t.Setenv("WEBSTORAGE_DYNAMO_NAMESPACE", "tenant-a")

	f, err := NewLoader(WithConfigFile(path)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if f.Expiry.Months != 3 {
		t.Errorf("Expiry.Months = %d, want 3 (env should override file)", f.Expiry.Months)
	}
	if !f.Fallback.Enabled {
		t.Error("Fallback.Enabled should be true")
	}
	if diff := cmp.Diff([]string{"lang", "country"}, f.Fallback.Grants); diff != "" {
		t.Errorf("Fallback.Grants mismatch (-want +got):\n%s", diff)
	}
	if f.Dynamo.Namespace != "tenant-a" {
		t.Errorf("Dynamo.Namespace = %q, want %q", f.Dynamo.Namespace, "tenant-a")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader(WithEnvPrefix("WEBSTORAGE_TEST_UNSET_"))
	err := l.LoadMap(map[string]any{
		"backend": "sessionStorage",
		"probe":   map[string]any{"key": "__probe__"},
	})
	if err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	f, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Backend != "sessionStorage" {
		t.Errorf("Backend = %q, want %q", f.Backend, "sessionStorage")
	}
	if f.Probe.Key != "__probe__" {
		t.Errorf("Probe.Key = %q, want %q", f.Probe.Key, "__probe__")
	}
	if len(l.Keys()) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(l.Keys()))
	}
}
