package middleware

import (
	"net/http"

	"github.com/garrettladley/marine/internal/xcontext"
	"github.com/garrettladley/marine/internal/xhttp"
	"github.com/google/uuid"
)

type RequestIDMiddleware struct {
	IDFunc func(*http.Request) string
}

// incomingOrNew keeps a well-formed X-Request-ID from upstream so one id
// follows the request across hops.
func incomingOrNew(r *http.Request) string {
	if id := r.Header.Get(xhttp.XRequestID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

type RequestIDOption func(*RequestIDMiddleware)

func WithIDFunc(fn func(*http.Request) string) RequestIDOption {
	return func(m *RequestIDMiddleware) { m.IDFunc = fn }
}

// RequestID stores the request id in the context, echoes it on the response
// and forwards it on the request.
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	middleware := &RequestIDMiddleware{IDFunc: incomingOrNew}

	for _, opt := range opts {
		opt(middleware)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.IDFunc(r)
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			r.Header.Set(xhttp.XRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
