package storage

import (
	"context"
	"sync"
	"time"
)

var _ CookieStore = (*MemoryCookieStore)(nil)

type cookieKey struct {
	host, domain, path, name string
}

type MemoryCookieStore struct {
	mu      sync.RWMutex
	cookies map[cookieKey]StoredCookie
}

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{cookies: make(map[cookieKey]StoredCookie)}
}

func keyOf(c StoredCookie) cookieKey {
	return cookieKey{host: c.Host, domain: c.Domain, path: c.Path, name: c.Name}
}

func (s *MemoryCookieStore) Load(_ context.Context) ([]StoredCookie, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]StoredCookie, 0, len(s.cookies))
	for _, c := range s.cookies {
		if !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryCookieStore) Save(_ context.Context, cookies []StoredCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cookies {
		s.cookies[keyOf(c)] = c
	}
	return nil
}

func (s *MemoryCookieStore) Delete(_ context.Context, host string, domain string, path string, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cookies, cookieKey{host: host, domain: domain, path: path, name: name})
	return nil
}

func (s *MemoryCookieStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cookies)
	return nil
}
