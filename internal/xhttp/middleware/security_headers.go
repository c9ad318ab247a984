package middleware

import (
	"net/http"

	"github.com/garrettladley/marine/internal/xhttp"
)

// SecurityHeaders sets browser hardening headers. The proxied UI is framed
// only by itself.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(xhttp.XContentTypeOpts, "nosniff")
		w.Header().Set(xhttp.XFrameOpts, "SAMEORIGIN")
		w.Header().Set(xhttp.ReferrerPolicy, "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
