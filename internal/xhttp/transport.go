package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/marine/internal/version"
)

type marineTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*marineTransport)(nil)

func (t *marineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(UserAgent, version.UserAgent())
	req.Header.Set(version.Header, version.Get())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard marine headers.
func NewTransport() http.RoundTripper {
	return &marineTransport{base: http.DefaultTransport}
}
