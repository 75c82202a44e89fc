package storage

// Config holds tunables shared by every Facade.
type Config struct {
	// ExpiryMonths is how far in the future the default expiry lies when a caller
	// does not pass one.
	// Default: 6
	ExpiryMonths int

	// ProbeKey is the key written and removed by the availability probe.
	// Default: "test"
	ProbeKey string
}

// DefaultConfig returns the defaults used by browsers-style storage.
func DefaultConfig() Config {
	return Config{
		ExpiryMonths: 6,
		ProbeKey:     "test",
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.ExpiryMonths < 1 {
		c.ExpiryMonths = 6
	}
	if c.ExpiryMonths > 120 {
		c.ExpiryMonths = 120
	}
	if c.ProbeKey == "" {
		c.ProbeKey = "test"
	}
}

// FallbackConfig controls whether and how the Fallback Store may be used when the
// selected backend is unusable.
//
// GrantedProps is an allow-list: in fallback mode, any key not listed is silently
// ignored. The fallback store is process-wide and never evicts, so keep it to small,
// non-sensitive settings such as "country" or "lang".
type FallbackConfig struct {
	// Enabled routes calls to the Fallback Store when the backend is unusable.
	Enabled bool

	// GrantedProps lists the keys allowed into the Fallback Store.
	GrantedProps []string

	// OnDisabled, if set, is called once during construction when the backend
	// is found unusable.
	OnDisabled func()
}

// grants reports whether key is on the allow-list.
func (f *FallbackConfig) grants(key string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.GrantedProps {
		if p == key {
			return true
		}
	}
	return false
}

// clone returns a copy that shares nothing mutable with f.
func (f *FallbackConfig) clone() *FallbackConfig {
	if f == nil {
		return nil
	}
	c := *f
	c.GrantedProps = append([]string(nil), f.GrantedProps...)
	return &c
}
