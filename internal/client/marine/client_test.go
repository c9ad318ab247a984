package marine

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"
)

const testSignInURL = "https://app.example/sign-in"

func newTestClient(t *testing.T, b *backend, opts ...Option) (*Client, *navigations) {
	t.Helper()
	nav := &navigations{}
	base := []Option{
		WithSignInURL(testSignInURL),
		WithSessionExpired(nav.record),
		WithMetrics(NewMetrics(prometheus.NewRegistry())),
	}
	return New(b.URL(), append(base, opts...)...), nav
}

var nemo = Profile{ID: 1, Username: "nemo", Email: "nemo@reef.org", Role: RoleHobbyist}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	release := b.gateRefresh(t)
	c, nav := newTestClient(t, b)

	const n = 5
	profiles := make([]*Profile, n)
	g, ctx := errgroup.WithContext(t.Context())
	for i := range n {
		g.Go(func() error {
			p, err := c.Auth.Me(ctx)
			profiles[i] = p
			return err
		})
	}

	waitQueued(t, c, n-1)
	release()

	if err := g.Wait(); err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	for i, p := range profiles {
		if diff := cmp.Diff(&nemo, p); diff != "" {
			t.Errorf("profile %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
	if got := len(b.recorded(http.MethodGet, apiPrefix+profileRoute)); got != 2*n {
		t.Errorf("profile requests = %d, want %d", got, 2*n)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
	if got := testutil.ToFloat64(c.metrics.refreshes.WithLabelValues(refreshSucceeded)); got != 1 {
		t.Errorf("successful refresh metric = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.metrics.queued); got != n-1 {
		t.Errorf("queued metric = %v, want %d", got, n-1)
	}
}

func TestExpiredSessionReplaysListAndDelete(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+observationsRoute, http.StatusOK, featurePage{
		Count:   1,
		Results: FeatureCollection{Type: "FeatureCollection", Features: []Feature{clownfish}},
	})
	b.handle(http.MethodDelete, apiPrefix+observationRoute(42), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	release := b.gateRefresh(t)
	c, nav := newTestClient(t, b)

	var (
		page *Page[Observation]
		g    errgroup.Group
	)
	g.Go(func() error {
		var err error
		page, err = c.Observations.List(t.Context(), nil)
		return err
	})
	g.Go(func() error {
		return c.Observations.Delete(t.Context(), 42)
	})

	waitQueued(t, c, 1)
	release()

	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
	if got := len(b.recorded(http.MethodGet, apiPrefix+observationsRoute)); got != 2 {
		t.Errorf("list requests = %d, want 2", got)
	}
	if got := len(b.recorded(http.MethodDelete, apiPrefix+observationRoute(42))); got != 2 {
		t.Errorf("delete requests = %d, want 2", got)
	}
	if len(page.Results) != 1 || page.Results[0].ID != 7 {
		t.Errorf("page results = %+v, want observation 7", page.Results)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestRefreshFailureRejectsQueueAndNavigatesOnce(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	b.failRefresh()
	release := b.gateRefresh(t)
	c, nav := newTestClient(t, b)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			_, errs[i] = c.Auth.Me(t.Context())
		})
	}

	waitQueued(t, c, n-1)
	release()
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("request %d error = %v, want ErrSessionExpired", i, err)
		}
		if !IsUnauthorized(err) {
			t.Errorf("request %d error = %v, want the refresh's 401", i, err)
		}
		if err != errs[0] {
			t.Errorf("request %d got a different error than request 0", i)
		}
	}
	if diff := cmp.Diff([]string{testSignInURL}, nav.get()); diff != "" {
		t.Errorf("navigations mismatch (-want +got):\n%s", diff)
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
	if got := len(b.recorded(http.MethodGet, apiPrefix+profileRoute)); got != n {
		t.Errorf("profile requests = %d, want %d (no replays)", got, n)
	}
	c.refresher.mu.Lock()
	if len(c.refresher.pending) != 0 || c.refresher.inFlight {
		t.Errorf("refresh state not reset: pending=%d inFlight=%v", len(c.refresher.pending), c.refresher.inFlight)
	}
	c.refresher.mu.Unlock()
	if got := testutil.ToFloat64(c.metrics.refreshes.WithLabelValues(refreshFailed)); got != 1 {
		t.Errorf("failed refresh metric = %v, want 1", got)
	}
}

func TestReplayedUnauthorizedIsFinal(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.mu.Lock()
	b.stubborn = true
	b.mu.Unlock()
	c, nav := newTestClient(t, b)

	_, err := c.Auth.Me(t.Context())
	if !IsUnauthorized(err) {
		t.Fatalf("Me() error = %v, want 401", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Errorf("Me() error = %v, want the replay's 401, not a refresh failure", err)
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
	if got := len(b.recorded(http.MethodGet, apiPrefix+profileRoute)); got != 2 {
		t.Errorf("profile requests = %d, want 2", got)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestRefreshEndpointUnauthorizedIsNotRecovered(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.failRefresh()
	c, nav := newTestClient(t, b)

	err := c.do(t.Context(), http.MethodPost, refreshRoute, nil, nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("do() error = %v, want 401", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Errorf("do() error = %v, want the endpoint's own 401", err)
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestCSRFHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    string
	}{
		{
			name:    "token present",
			cookies: []*http.Cookie{{Name: csrfCookieName, Value: testCSRF, Path: "/"}},
			want:    testCSRF,
		},
		{
			name:    "other cookies only",
			cookies: []*http.Cookie{{Name: "sessionid", Value: "s", Path: "/"}},
		},
		{
			name: "no cookies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(t)
			b.handleJSON(http.MethodPost, apiPrefix+"/v1/auth/logout/", http.StatusOK, nil)
			jar := newMemoryJar()
			u, err := url.Parse(b.URL())
			if err != nil {
				t.Fatal(err)
			}
			jar.SetCookies(u, tt.cookies)
			c, _ := newTestClient(t, b, WithJar(jar))

			if err := c.Auth.Logout(t.Context()); err != nil {
				t.Fatalf("Logout() error = %v", err)
			}

			reqs := b.recorded(http.MethodPost, apiPrefix+"/v1/auth/logout/")
			if len(reqs) == 0 {
				t.Fatal("no logout request recorded")
			}
			for i, r := range reqs {
				if r.CSRF != tt.want {
					t.Errorf("request %d X-CSRFToken = %q, want %q", i, r.CSRF, tt.want)
				}
			}
		})
	}
}

func TestLoginStoresSessionCookies(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	b.handleJSON(http.MethodPost, apiPrefix+"/v1/auth/logout/", http.StatusOK, nil)
	c, _ := newTestClient(t, b)

	if err := c.Auth.Login(t.Context(), Credentials{Email: "nemo@reef.org", Password: "Coral2024"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := c.Auth.Me(t.Context()); err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if err := c.Auth.Logout(t.Context()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if got := b.refreshCount(); got != 0 {
		t.Errorf("refreshes = %d, want 0", got)
	}
	login := b.recorded(http.MethodPost, apiPrefix+"/v1/auth/login/")
	if len(login) != 1 || login[0].CSRF != "" {
		t.Errorf("login requests = %+v, want one without a CSRF token", login)
	}
	logout := b.recorded(http.MethodPost, apiPrefix+"/v1/auth/logout/")
	if len(logout) != 1 || logout[0].CSRF != testCSRF {
		t.Errorf("logout requests = %+v, want one carrying %q", logout, testCSRF)
	}
}

func TestPublicEndpointErrorDoesNotRefresh(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	c, nav := newTestClient(t, b)
	b.handle(http.MethodPost, apiPrefix+"/v1/auth/register/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"user with this email already exists."}})
	})

	_, err := c.Auth.Register(t.Context(), Registration{
		Username: "nemo",
		Email:    "nemo@reef.org",
		Password: "Coral2024",
		Role:     RoleHobbyist,
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Register() error = %v, want *APIError", err)
	}
	if diff := cmp.Diff(map[string]string{"email": "user with this email already exists."}, apiErr.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := b.refreshCount(); got != 0 {
		t.Errorf("refreshes = %d, want 0", got)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestTransportErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	errDial := errors.New("connection refused")
	var (
		mu    sync.Mutex
		calls int
	)
	rt := roundTripperFunc(func(*http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil, errDial
	})

	b := newBackend(t)
	c, nav := newTestClient(t, b, WithTransport(rt))

	_, err := c.Auth.Me(t.Context())
	if !errors.Is(err, errDial) {
		t.Fatalf("Me() error = %v, want %v", err, errDial)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("round trips = %d, want 1", calls)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestNonUnauthorizedErrorPassesThrough(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodDelete, apiPrefix+observationRoute(9), http.StatusForbidden, map[string]string{
		"detail": "You do not have permission to perform this action.",
	})
	c, _ := newTestClient(t, b)
	if err := c.Auth.Login(t.Context(), Credentials{Email: "nemo@reef.org", Password: "x"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	err := c.Observations.Delete(t.Context(), 9)

	want := &APIError{StatusCode: http.StatusForbidden, Message: "You do not have permission to perform this action."}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Delete() error = %v, want *APIError", err)
	}
	if diff := cmp.Diff(want, apiErr); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
	if got := b.refreshCount(); got != 0 {
		t.Errorf("refreshes = %d, want 0", got)
	}
}

func TestQueuedCallerStopsWaitingOnCancel(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	release := b.gateRefresh(t)
	c, _ := newTestClient(t, b)

	leader := make(chan error, 1)
	go func() {
		_, err := c.Auth.Me(t.Context())
		leader <- err
	}()
	waitInFlight(t, c.refresher)

	ctx, cancel := context.WithCancel(t.Context())
	queued := make(chan error, 1)
	go func() {
		_, err := c.Auth.Me(ctx)
		queued <- err
	}()
	waitQueued(t, c, 1)

	cancel()
	if err := <-queued; !errors.Is(err, context.Canceled) {
		t.Errorf("queued Me() error = %v, want context.Canceled", err)
	}

	release()
	if err := <-leader; err != nil {
		t.Errorf("leader Me() error = %v", err)
	}
	c.refresher.mu.Lock()
	defer c.refresher.mu.Unlock()
	if len(c.refresher.pending) != 0 {
		t.Errorf("pending = %d, want 0", len(c.refresher.pending))
	}
}

func TestCancelledLeaderDoesNotFailQueuedCallers(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	release := b.gateRefresh(t)
	c, nav := newTestClient(t, b)

	leaderCtx, cancel := context.WithCancel(t.Context())
	leader := make(chan error, 1)
	go func() {
		_, err := c.Auth.Me(leaderCtx)
		leader <- err
	}()
	waitInFlight(t, c.refresher)

	queued := make(chan error, 1)
	go func() {
		_, err := c.Auth.Me(t.Context())
		queued <- err
	}()
	waitQueued(t, c, 1)

	cancel()
	release()

	if err := <-queued; err != nil {
		t.Errorf("queued Me() error = %v, want nil", err)
	}
	if err := <-leader; !errors.Is(err, context.Canceled) {
		t.Errorf("leader Me() error = %v, want context.Canceled from its replay", err)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestRefreshTimeoutTakesFailurePath(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.gateRefresh(t)
	c, nav := newTestClient(t, b, WithRefreshTimeout(50*time.Millisecond))

	_, err := c.Auth.Me(t.Context())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Me() error = %v, want ErrSessionExpired", err)
	}
	if diff := cmp.Diff([]string{testSignInURL}, nav.get()); diff != "" {
		t.Errorf("navigations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSessionForwardsCookieWithoutRefresh(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	c, nav := newTestClient(t, b, WithJar(nil))

	if _, err := c.Auth.CheckSession(t.Context(), accessCookie+"=stale"); !IsUnauthorized(err) {
		t.Fatalf("CheckSession(stale) error = %v, want 401", err)
	}
	if got := b.refreshCount(); got != 0 {
		t.Errorf("refreshes = %d, want 0", got)
	}

	owner, _ := newTestClient(t, b)
	if err := owner.Auth.Login(t.Context(), Credentials{Email: "nemo@reef.org", Password: "x"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()

	p, err := c.Auth.CheckSession(t.Context(), accessCookie+"="+token)
	if err != nil {
		t.Fatalf("CheckSession() error = %v", err)
	}
	if diff := cmp.Diff(&nemo, p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
	if got := nav.get(); len(got) != 0 {
		t.Errorf("navigations = %v, want none", got)
	}
}

func TestSessionRecoversAfterExpiry(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.handleJSON(http.MethodGet, apiPrefix+profileRoute, http.StatusOK, nemo)
	c, _ := newTestClient(t, b)

	if err := c.Auth.Login(t.Context(), Credentials{Email: "nemo@reef.org", Password: "x"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	b.expire()

	for range 2 {
		if _, err := c.Auth.Me(t.Context()); err != nil {
			t.Fatalf("Me() error = %v", err)
		}
	}
	if got := b.refreshCount(); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}
}
