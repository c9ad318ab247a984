package marine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/garrettladley/marine/internal/xhttp"
	"github.com/garrettladley/marine/internal/xslog"
	go_json "github.com/goccy/go-json"
	"golang.org/x/net/publicsuffix"
)

const (
	apiPrefix    = "/api"
	refreshRoute = "/v1/auth/token/refresh/"

	DefaultRefreshTimeout = 10 * time.Second
	DefaultSignInURL      = "/sign-in"
)

type Client struct {
	Auth         AuthService
	Observations ObservationService
	Map          MapService

	baseURL    string
	httpClient *http.Client
	refresher  *refresher
	logger     *slog.Logger
	metrics    *Metrics
}

// SessionExpiredFunc sends the user to signInURL after the session could not
// be refreshed. It is called once per failed refresh, never per queued request.
type SessionExpiredFunc func(ctx context.Context, signInURL string)

// New returns a client for the API served under origin + "/api".
func New(origin string, opts ...Option) *Client {
	cfg := &clientConfig{
		logger:         slog.Default(),
		refreshTimeout: DefaultRefreshTimeout,
		signInURL:      DefaultSignInURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.jarSet {
		cfg.jar = newMemoryJar()
	}
	if cfg.sessionExpired == nil {
		cfg.sessionExpired = logSessionExpired(cfg.logger)
	}

	c := &Client{
		baseURL: strings.TrimRight(origin, "/") + apiPrefix,
		httpClient: xhttp.NewHTTPClient(
			xhttp.WithJar(cfg.jar),
			xhttp.WithTimeout(cfg.timeout),
			xhttp.WithTransport(func(base http.RoundTripper) http.RoundTripper {
				if cfg.transport != nil {
					base = cfg.transport
				}
				return &sessionTransport{base: base, jar: cfg.jar}
			}),
		),
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}

	signInURL := cfg.signInURL
	sessionExpired := cfg.sessionExpired
	c.refresher = &refresher{
		refresh: c.refreshSession,
		expired: func(ctx context.Context, _ error) { sessionExpired(ctx, signInURL) },
		timeout: cfg.refreshTimeout,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}

	c.Auth = &authService{client: c}
	c.Observations = &observationService{client: c}
	c.Map = &mapService{client: c}

	return c
}

type clientConfig struct {
	jar            http.CookieJar
	jarSet         bool
	transport      http.RoundTripper
	logger         *slog.Logger
	timeout        time.Duration
	refreshTimeout time.Duration
	signInURL      string
	sessionExpired SessionExpiredFunc
	metrics        *Metrics
}

type Option func(*clientConfig)

// WithJar sets the cookie jar holding the session. A nil jar disables
// cookie handling, which is what a server forwarding someone else's
// cookies wants.
func WithJar(jar http.CookieJar) Option {
	return func(cfg *clientConfig) {
		cfg.jar = jar
		cfg.jarSet = true
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *clientConfig) { cfg.transport = rt }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithRefreshTimeout bounds a session refresh. Zero means no bound.
func WithRefreshTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.refreshTimeout = d }
}

func WithSignInURL(signInURL string) Option {
	return func(cfg *clientConfig) { cfg.signInURL = signInURL }
}

func WithSessionExpired(fn SessionExpiredFunc) Option {
	return func(cfg *clientConfig) { cfg.sessionExpired = fn }
}

func WithMetrics(m *Metrics) Option {
	return func(cfg *clientConfig) { cfg.metrics = m }
}

func newMemoryJar() http.CookieJar {
	// cookiejar.New only fails on options it does not receive.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func logSessionExpired(logger *slog.Logger) SessionExpiredFunc {
	return func(ctx context.Context, signInURL string) {
		logger.WarnContext(ctx, "session expired, sign in required", xslog.URL(signInURL))
	}
}

// call is one logical request. It is rebuilt for every attempt so the body
// can be replayed.
type call struct {
	method  string
	route   string
	query   url.Values
	body    []byte
	header  http.Header
	retried bool
}

func newCall(method string, route string, query url.Values, body any) (*call, error) {
	cl := &call{method: method, route: route, query: query}
	if body != nil {
		b, err := go_json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		cl.body = b
	}
	return cl, nil
}

func (cl *call) attempt() int {
	if cl.retried {
		return 2
	}
	return 1
}

func (cl *call) request(ctx context.Context, baseURL string) (*http.Request, error) {
	u := baseURL + cl.route
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// do sends the request and, on a 401, refreshes the session once and
// replays it.
func (c *Client) do(ctx context.Context, method string, route string, query url.Values, body any, result any) error {
	cl, err := newCall(method, route, query, body)
	if err != nil {
		return err
	}
	return c.doCall(ctx, cl, result)
}

func (c *Client) doCall(ctx context.Context, cl *call, result any) error {
	for {
		err := c.send(ctx, cl, result)
		if !recoverable(cl, err) {
			return err
		}

		cl.retried = true
		if err := c.refresher.Refresh(ctx); err != nil {
			return err
		}

		xslog.Or(ctx, c.logger).DebugContext(ctx, "replaying request after session refresh",
			xslog.Method(cl.method),
			xslog.Path(cl.route),
		)
	}
}

// recoverable reports whether err is a 401 that a session refresh may fix.
func recoverable(cl *call, err error) bool {
	return IsUnauthorized(err) && cl.route != refreshRoute && !cl.retried
}

// doRaw sends the request without session recovery.
func (c *Client) doRaw(ctx context.Context, method string, route string, body any, result any) error {
	cl, err := newCall(method, route, nil, body)
	if err != nil {
		return err
	}
	return c.send(ctx, cl, result)
}

func (c *Client) refreshSession(ctx context.Context) error {
	return c.send(ctx, &call{method: http.MethodPost, route: refreshRoute}, nil)
}

func (c *Client) send(ctx context.Context, cl *call, result any) error {
	req, err := cl.request(ctx, c.baseURL)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.observeRequest(cl.method, resp.StatusCode)
	xslog.Or(ctx, c.logger).DebugContext(ctx, "api request",
		xslog.UpstreamGroup(cl.method, cl.route, resp.StatusCode, cl.attempt(), time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w\nbody: %s", err, string(body))
		}
	}

	return nil
}
