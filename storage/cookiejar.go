package storage

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CookieJar is a Document that behaves like a browser's document.cookie: each
// SetCookie merges one directive into the jar, and directives whose expiry has
// passed delete the cookie. Every accepted directive is also kept, in order, so a
// server can forward them as Set-Cookie headers.
type CookieJar struct {
	mu      sync.Mutex
	now     func() time.Time
	names   []string
	values  map[string]string
	pending []string
}

// NewCookieJar creates a jar seeded with "name=value" pairs, as found in a
// request's Cookie header. Seeding does not produce pending directives.
func NewCookieJar(pairs ...string) *CookieJar {
	j := &CookieJar{
		now:    time.Now,
		values: make(map[string]string),
	}
	for _, pair := range pairs {
		for _, part := range strings.Split(pair, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if !ok || name == "" {
				continue
			}
			j.put(name, value)
		}
	}
	return j
}

// Cookie renders the live cookies as "a=1; b=2".
func (j *CookieJar) Cookie() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	parts := make([]string, 0, len(j.names))
	for _, name := range j.names {
		parts = append(parts, name+"="+j.values[name])
	}
	return strings.Join(parts, "; "), nil
}

// SetCookie applies a single "name=value; attr=...; ..." directive.
// Directives without a name are ignored.
func (j *CookieJar) SetCookie(directive string) error {
	segments := strings.Split(directive, ";")
	name, value, _ := strings.Cut(strings.TrimSpace(segments[0]), "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	expired := false
	for _, seg := range segments[1:] {
		attr, val, _ := strings.Cut(strings.TrimSpace(seg), "=")
		switch strings.ToLower(strings.TrimSpace(attr)) {
		case "expires":
			if t, err := http.ParseTime(strings.TrimSpace(val)); err == nil && !t.After(j.now()) {
				expired = true
			}
		case "max-age":
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n <= 0 {
				expired = true
			}
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if expired {
		j.drop(name)
	} else {
		j.put(name, value)
	}
	j.pending = append(j.pending, strings.TrimSpace(directive))
	return nil
}

// Pending returns the directives applied since the jar was created.
func (j *CookieJar) Pending() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.pending)
}

// Len returns the number of live cookies.
func (j *CookieJar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.names)
}

func (j *CookieJar) put(name, value string) {
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

func (j *CookieJar) drop(name string) {
	if _, ok := j.values[name]; !ok {
		return
	}
	delete(j.values, name)
	j.names = slices.DeleteFunc(j.names, func(n string) bool { return n == name })
}
