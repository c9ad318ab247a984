package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/marine/internal/env"
	"github.com/garrettladley/marine/internal/xslog"
)

const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	Env      appenv.Environment `env:"ENV" envDefault:"development"`
	LogLevel xslog.Level        `env:"LOG_LEVEL" envDefault:"info"`

	// PublicAPIURL is the origin reachable from a user's machine.
	PublicAPIURL string `env:"NEXT_PUBLIC_API_URL"`
	// InternalAPIURL is the origin reachable from inside the deployment.
	InternalAPIURL string `env:"INTERNAL_API_URL"`

	AppURL     string `env:"APP_URL" envDefault:"http://localhost:3000"`
	SignInPath string `env:"SIGN_IN_PATH" envDefault:"/sign-in"`
	DBPath     string `env:"DB_PATH"`

	Client  Client  `envPrefix:"CLIENT_"`
	Gateway Gateway `envPrefix:"GATEWAY_"`
	Redis   Redis   `envPrefix:"REDIS_"`
}

type Client struct {
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	RefreshTimeout time.Duration `env:"REFRESH_TIMEOUT" envDefault:"10s"`
}

type Gateway struct {
	Port     string        `env:"PORT" envDefault:"8080"`
	UIURL    string        `env:"UI_URL" envDefault:"http://localhost:3000"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

type Redis struct {
	URL string `env:"URL"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}

// APIOrigin resolves the backend origin for the given side. The server side
// prefers the internal origin; both fall back to the public one and then to
// DefaultAPIURL.
func (c Config) APIOrigin(side appenv.Side) string {
	candidates := []string{c.PublicAPIURL, DefaultAPIURL}
	if side.IsServer() {
		candidates = append([]string{c.InternalAPIURL}, candidates...)
	}
	for _, origin := range candidates {
		if origin = strings.TrimSpace(origin); origin != "" {
			return strings.TrimRight(origin, "/")
		}
	}
	return DefaultAPIURL
}

// SignInURL is where a session that cannot be refreshed is sent.
func (c Config) SignInURL() string {
	path := c.SignInPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.AppURL, "/") + path
}
