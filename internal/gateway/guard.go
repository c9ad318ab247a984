package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/garrettladley/marine/internal/xcontext"
	"github.com/garrettladley/marine/internal/xerrors"
	"github.com/garrettladley/marine/internal/xhttp"
	"github.com/garrettladley/marine/internal/xslog"
)

var (
	publicPaths    = []string{"/sign-in", "/sign-up"}
	publicPrefixes = []string{"/_next/", "/models/"}
)

// IsPublicPath reports whether path is served without a session.
func IsPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Guard redirects requests for non-public paths to signInPath unless their
// cookies carry a session the API accepts. Accepted requests carry the
// username in context and in the X-Forwarded-User header.
func Guard(v *Validator, signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(xhttp.XForwardedUser)

			if r.URL.Path == signInPath || IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			logger := xslog.FromContext(ctx)

			username, err := v.Validate(ctx, r.Header.Get(xhttp.Cookie))
			if err != nil {
				switch {
				case errors.Is(err, ErrNoSession), errors.Is(err, ErrInvalidSession):
					logger.DebugContext(ctx, "session rejected", xslog.RequestPath(r), xslog.ErrorGroup(err))
				default:
					logger.WarnContext(ctx, "session check failed", xslog.RequestPath(r), xslog.ErrorGroup(err))
				}
				xerrors.WriteError(ctx, w, xerrors.Unauthorized(
					xerrors.WithCause(err),
					xerrors.WithRedirect(signInPath),
				))
				return
			}

			r.Header.Set(xhttp.XForwardedUser, username)
			ctx = xcontext.SetUsername(ctx, username)
			ctx = xslog.WithAttrs(ctx, xslog.Username(username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
