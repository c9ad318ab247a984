package xhttp

import (
	"net/http"
	"time"
)

type ClientOption func(*http.Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) { c.Timeout = d }
}

// WithJar makes the client send and store cookies, the equivalent of a
// browser's credentials-included mode.
func WithJar(jar http.CookieJar) ClientOption {
	return func(c *http.Client) { c.Jar = jar }
}

// WithTransport wraps the client's current transport.
func WithTransport(wrap func(http.RoundTripper) http.RoundTripper) ClientOption {
	return func(c *http.Client) { c.Transport = wrap(c.Transport) }
}

func NewHTTPClient(opts ...ClientOption) *http.Client {
	c := &http.Client{Transport: NewTransport()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
