package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/garrettladley/marine/internal/xerrors"
)

// NewProxy forwards requests to the UI at target.
func NewProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			xerrors.WriteError(r.Context(), w, xerrors.BadGateway(
				xerrors.WithMessage("ui unavailable"),
				xerrors.WithCause(err),
			))
		},
	}
}
