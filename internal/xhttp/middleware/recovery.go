package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/garrettladley/marine/internal/xerrors"
	"github.com/garrettladley/marine/internal/xslog"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			// the reverse proxy aborts broken client connections this way
			if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
				panic(err)
			}
			xslog.FromContext(r.Context()).ErrorContext(
				r.Context(),
				"panic recovered",
				xslog.RequestGroup(r),
				xslog.ErrorGroupWithStack(err),
			)
			xerrors.WriteError(r.Context(), w, xerrors.Internal(xerrors.WithCause(fmt.Errorf("panic: %v", err))))
		}()
		next.ServeHTTP(w, r)
	})
}
