package cookiejar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/garrettladley/marine/internal/storage"
	"github.com/garrettladley/marine/internal/xslog"
	"golang.org/x/net/publicsuffix"
)

var _ http.CookieJar = (*Jar)(nil)

// Jar is an http.CookieJar whose cookies outlive the process. Cookies are
// written through to a storage.CookieStore on every SetCookies call and
// loaded back when the jar is created.
type Jar struct {
	mu     sync.RWMutex
	inner  *cookiejar.Jar
	store  storage.CookieStore
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Jar)

func WithLogger(logger *slog.Logger) Option {
	return func(j *Jar) { j.logger = logger }
}

func New(ctx context.Context, store storage.CookieStore, opts ...Option) (*Jar, error) {
	j := &Jar{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	inner, err := newInner()
	if err != nil {
		return nil, err
	}
	j.inner = inner

	stored, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	for _, sc := range stored {
		j.inner.SetCookies(storedURL(sc), []*http.Cookie{toHTTP(sc)})
	}
	j.logger.DebugContext(ctx, "loaded cookies", xslog.Count(len(stored)))

	return j, nil
}

func newInner() (*cookiejar.Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return inner, nil
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	// http.CookieJar has no context or error; persistence failures are logged.
	ctx := context.Background()
	now := j.now()
	var keep []storage.StoredCookie
	for _, c := range cookies {
		sc := fromHTTP(u, c, now)
		if c.MaxAge < 0 || sc.Expired(now) {
			if err := j.store.Delete(ctx, sc.Host, sc.Domain, sc.Path, sc.Name); err != nil {
				j.logger.WarnContext(ctx, "failed to delete cookie", slog.String("name", c.Name), xslog.Error(err))
			}
			continue
		}
		keep = append(keep, sc)
	}
	if err := j.store.Save(ctx, keep); err != nil {
		j.logger.WarnContext(ctx, "failed to persist cookies", xslog.Count(len(keep)), xslog.Error(err))
	}
}

// Clear forgets every cookie, in memory and in the store.
func (j *Jar) Clear(ctx context.Context) error {
	inner, err := newInner()
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner = inner
	if err := j.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear stored cookies: %w", err)
	}
	return nil
}

func fromHTTP(u *url.URL, c *http.Cookie, now time.Time) storage.StoredCookie {
	sc := storage.StoredCookie{
		Host:     u.Hostname(),
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   strings.TrimPrefix(c.Domain, "."),
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if sc.Path == "" || !strings.HasPrefix(sc.Path, "/") {
		sc.Path = defaultPath(u.Path)
	}
	if c.MaxAge > 0 {
		sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	if !sc.Expires.IsZero() {
		sc.Expires = sc.Expires.UTC()
	}
	return sc
}

func toHTTP(sc storage.StoredCookie) *http.Cookie {
	return &http.Cookie{
		Name:     sc.Name,
		Value:    sc.Value,
		Path:     sc.Path,
		Domain:   sc.Domain,
		Expires:  sc.Expires,
		Secure:   sc.Secure,
		HttpOnly: sc.HttpOnly,
	}
}

func storedURL(sc storage.StoredCookie) *url.URL {
	scheme := "http"
	if sc.Secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: sc.Host, Path: sc.Path}
}

// defaultPath is the RFC 6265 section 5.1.4 default cookie path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
