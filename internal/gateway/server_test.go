package gateway

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/xhttp"
	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
)

const goodSession = "access=good; csrftoken=abc123"

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/profiles/me/" {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie("access"); err != nil || c.Value != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Authentication credentials were not provided."}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":1,"username":"nemo","email":"nemo@reef.org"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newUI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xhttp.WriteOK(w, map[string]string{
			"path": r.URL.Path,
			"user": r.Header.Get(xhttp.XForwardedUser),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, uiURL string) http.Handler {
	t.Helper()
	api := newAPI(t)
	client := marine.New(api.URL, marine.WithJar(nil))
	v := NewValidator(client.Auth, newTestCache(t), time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h, err := NewHandler(Config{UIURL: uiURL, SignInPath: "/sign-in"}, v, logger)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func TestGateway(t *testing.T) {
	t.Parallel()

	ui := newUI(t)
	h := newTestHandler(t, ui.URL)

	tests := []struct {
		name         string
		path         string
		cookie       string
		spoofUser    string
		wantStatus   int
		wantLocation string
		wantBody     map[string]string
	}{
		{
			name:       "health",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "ok"},
		},
		{
			name:       "sign-in is public",
			path:       "/sign-in",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"path": "/sign-in", "user": ""},
		},
		{
			name:       "static assets are public",
			path:       "/_next/static/chunk.js",
			spoofUser:  "admin",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"path": "/_next/static/chunk.js", "user": ""},
		},
		{
			name:         "no session",
			path:         "/",
			wantStatus:   http.StatusFound,
			wantLocation: "/sign-in",
		},
		{
			name:         "stale session",
			path:         "/observations",
			cookie:       "access=stale",
			wantStatus:   http.StatusFound,
			wantLocation: "/sign-in",
		},
		{
			name:         "sign-in prefix is not public",
			path:         "/sign-in-please",
			wantStatus:   http.StatusFound,
			wantLocation: "/sign-in",
		},
		{
			name:       "valid session",
			path:       "/observations",
			cookie:     goodSession,
			spoofUser:  "admin",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"path": "/observations", "user": "nemo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.Header.Set(xhttp.Cookie, tt.cookie)
			}
			if tt.spoofUser != "" {
				req.Header.Set(xhttp.XForwardedUser, tt.spoofUser)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if rec.Header().Get(xhttp.XRequestID) == "" {
				t.Error("response has no request id")
			}
			if tt.wantBody == nil {
				return
			}
			var got map[string]string
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGatewayUIUnavailable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	deadURL := "http://" + ln.Addr().String()
	_ = ln.Close()

	h := newTestHandler(t, deadURL)
	req := httptest.NewRequest(http.MethodGet, "/sign-in", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGatewayServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	api := newAPI(t)
	client := marine.New(api.URL, marine.WithJar(nil), marine.WithMetrics(marine.NewMetrics(reg)))
	v := NewValidator(client.Auth, newTestCache(t), time.Minute)

	h, err := NewHandler(Config{UIURL: newUI(t).URL, Metrics: reg}, v, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/observations", nil)
	req.Header.Set(xhttp.Cookie, goodSession)
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `marine_client_requests_total{code="200",method="GET"} 1`) {
		t.Errorf("metrics missing session check request:\n%s", rec.Body.String())
	}
}

func TestNewHandlerRejectsRelativeUIURL(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{UIURL: "localhost:3000"}, nil, slog.Default()); err == nil {
		t.Error("NewHandler() error = nil, want error for relative ui url")
	}
}

func TestServerStopsOnCancel(t *testing.T) {
	t.Parallel()

	ui := newUI(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(Config{UIURL: ui.URL}, NewValidator(&fakeChecker{}, newTestCache(t), 0), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
