package marine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	go_json "github.com/goccy/go-json"
)

const (
	accessCookie = "access"
	testCSRF     = "abc123"
)

type recordedRequest struct {
	Method string
	Path   string
	CSRF   string
	Body   []byte
}

// backend is a fake API. A request is authenticated when its access cookie
// matches the current token; the refresh endpoint issues a new token.
type backend struct {
	srv *httptest.Server

	mu            sync.Mutex
	token         string
	generation    int
	refreshes     int
	refreshStatus int
	refreshGate   chan struct{}
	stubborn      bool
	requests      []recordedRequest
	routes        map[string]http.HandlerFunc
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		refreshStatus: http.StatusOK,
		routes:        make(map[string]http.HandlerFunc),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) URL() string { return b.srv.URL }

func (b *backend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *backend) handleJSON(method, path string, status int, v any) {
	b.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, v)
	})
}

// gateRefresh makes the refresh endpoint block until the returned func is called.
func (b *backend) gateRefresh(t *testing.T) (release func()) {
	t.Helper()
	gate := make(chan struct{})
	b.mu.Lock()
	b.refreshGate = gate
	b.mu.Unlock()
	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return release
}

func (b *backend) failRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = http.StatusUnauthorized
}

func (b *backend) refreshCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshes
}

// recorded returns the requests made to method and path, refresh excluded.
func (b *backend) recorded(method, path string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedRequest
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *backend) totalRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	if r.URL.Path == apiPrefix+refreshRoute {
		b.serveRefresh(w, r)
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		CSRF:   r.Header.Get("X-CSRFToken"),
		Body:   body,
	})
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	authed := !b.stubborn && b.token != "" && cookieValue(r, accessCookie) == b.token
	b.mu.Unlock()

	if r.URL.Path == apiPrefix+"/v1/auth/login/" {
		b.login(w)
		return
	}
	if !authed && !isPublic(r.URL.Path) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Authentication credentials were not provided.",
		})
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
}

func isPublic(path string) bool {
	for _, p := range []string{"/v1/auth/register/", "/v1/auth/password-reset/", "/v1/auth/verify-email/"} {
		if strings.HasPrefix(path, apiPrefix+p) {
			return true
		}
	}
	return false
}

type bodyKey struct{}

func requestBody(r *http.Request) []byte {
	b, _ := r.Context().Value(bodyKey{}).([]byte)
	return b
}

func (b *backend) serveRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshes++
	gate := b.refreshGate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	b.mu.Lock()
	status := b.refreshStatus
	if status == http.StatusOK {
		b.generation++
		b.token = "session-" + strconv.Itoa(b.generation)
	}
	token := b.token
	b.mu.Unlock()

	if status != http.StatusOK {
		writeJSON(w, status, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: accessCookie, Value: token, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (b *backend) login(w http.ResponseWriter) {
	b.mu.Lock()
	b.generation++
	b.token = "session-" + strconv.Itoa(b.generation)
	token := b.token
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: accessCookie, Value: token, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: csrfCookieName, Value: testCSRF, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"access": token})
}

// expire invalidates every cookie the client holds.
func (b *backend) expire() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = "rotated"
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = go_json.NewEncoder(w).Encode(v)
	}
}

type navigations struct {
	mu   sync.Mutex
	urls []string
}

func (n *navigations) record(_ context.Context, signInURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, signInURL)
}

func (n *navigations) get() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

// waitQueued blocks until n callers are waiting on the client's refresh.
func waitQueued(t *testing.T, c *Client, n int) {
	t.Helper()
	waitPending(t, c.refresher, n)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
