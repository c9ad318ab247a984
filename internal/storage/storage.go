package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// StoredCookie is a cookie as persisted for one request host.
type StoredCookie struct {
	Host     string
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	Secure   bool
	HttpOnly bool
}

// Expired reports whether the cookie has an expiry at or before now.
// Session cookies never expire.
func (c StoredCookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

type CookieStore interface {
	// Load returns every stored cookie that has not expired.
	Load(ctx context.Context) ([]StoredCookie, error)

	// Save upserts cookies by host, domain, path and name.
	Save(ctx context.Context, cookies []StoredCookie) error

	// Delete removes the cookie if present.
	Delete(ctx context.Context, host string, domain string, path string, name string) error

	Clear(ctx context.Context) error
}

// SessionCache caches positive session checks.
// Maps cookie header hash -> username.
type SessionCache interface {
	// GetUsername returns ErrNotFound if not cached or expired.
	GetUsername(ctx context.Context, key string) (string, error)

	SetUsername(ctx context.Context, key string, username string, ttl time.Duration) error
}
