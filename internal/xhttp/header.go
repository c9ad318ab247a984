package xhttp

import (
	"net/http"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	ReferrerPolicy   = "Referrer-Policy"
	XRequestID       = "X-Request-ID"
	XCSRFToken       = "X-CSRFToken"
	XForwardedUser   = "X-Forwarded-User"
)

const (
	ContentType = "Content-Type"
	Accept      = "Accept"
	Cookie      = "Cookie"
	UserAgent   = "User-Agent"
)

const ApplicationJSON = "application/json"

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	w.Header().Set(ContentType, ApplicationJSON)
}

// SetRequestHeadersJSON marks an outbound request as sending and accepting JSON.
func SetRequestHeadersJSON(req *http.Request) {
	req.Header.Set(ContentType, ApplicationJSON)
	req.Header.Set(Accept, ApplicationJSON)
}
