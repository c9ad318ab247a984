package marine

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/garrettladley/marine/internal/xcontext"
	"github.com/garrettladley/marine/internal/xhttp"
	"github.com/google/uuid"
)

const csrfCookieName = "csrftoken"

// sessionTransport decorates every outbound request with the JSON headers,
// a request id and the CSRF token held in the jar for the request URL.
type sessionTransport struct {
	base http.RoundTripper
	jar  http.CookieJar
}

var _ http.RoundTripper = (*sessionTransport)(nil)

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	xhttp.SetRequestHeadersJSON(req)

	if req.Header.Get(xhttp.XRequestID) == "" {
		requestID, ok := xcontext.GetRequestID(req.Context())
		if !ok || requestID == "" {
			requestID = uuid.NewString()
		}
		req.Header.Set(xhttp.XRequestID, requestID)
	}

	if token, ok := csrfToken(t.jar, req.URL); ok {
		req.Header.Set(xhttp.XCSRFToken, token)
	} else {
		req.Header.Del(xhttp.XCSRFToken)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}

// csrfToken reads the csrftoken cookie visible to u.
func csrfToken(jar http.CookieJar, u *url.URL) (string, bool) {
	if jar == nil {
		return "", false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == csrfCookieName && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
