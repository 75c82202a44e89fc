package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// expiredCookieDate is written on removal so the host drops the cookie.
var expiredCookieDate = time.Unix(0, 0).UTC()

// ExpiryAfter returns midnight, in now's location, of the day the given number of
// months after now.
func ExpiryAfter(now time.Time, months int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m+time.Month(months), d, 0, 0, 0, 0, now.Location())
}

// CookieAdapter returns the cookie backend writing cookies with the given path.
// The built-in "cookie" backend uses "/".
func CookieAdapter(path string) Adapter {
	if path == "" {
		path = "/"
	}
	return cookieAdapter{path: path}
}

type cookieAdapter struct {
	path string
}

func (a cookieAdapter) SetItem(_ context.Context, key string, value any, expiry time.Time, store any) error {
	doc, err := document(store)
	if err != nil {
		return err
	}
	if expiry.IsZero() {
		expiry = ExpiryAfter(time.Now(), DefaultConfig().ExpiryMonths)
	}
	encoded, err := Encode(value)
	if err != nil {
		return err
	}
	return doc.SetCookie(fmt.Sprintf("%s=%s;expires=%s;path=%s",
		key, encoded, formatCookieDate(expiry), a.path))
}

func (a cookieAdapter) GetItem(_ context.Context, key string, _ time.Time, store any) (any, error) {
	doc, err := document(store)
	if err != nil {
		return nil, err
	}
	raw, err := doc.Cookie()
	if err != nil {
		return nil, err
	}

	prefix := key + "="
	for _, seg := range strings.Split(raw, ";") {
		seg = strings.TrimLeft(seg, " ")
		if strings.HasPrefix(seg, prefix) {
			return Decode(seg[len(prefix):])
		}
	}
	return "", nil
}

func (a cookieAdapter) RemoveItem(_ context.Context, key string, _ time.Time, store any) error {
	doc, err := document(store)
	if err != nil {
		return err
	}
	return doc.SetCookie(fmt.Sprintf("%s=; path=%s; expires=%s;",
		key, a.path, formatCookieDate(expiredCookieDate)))
}

func document(store any) (Document, error) {
	d, ok := store.(Document)
	if !ok || d == nil {
		return nil, fmt.Errorf("%w: want Document, got %T", ErrInvalidStore, store)
	}
	return d, nil
}

func formatCookieDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
