package xhttp

import (
	"net"
	"net/http"
	"strings"
)

// GetRequestIP returns the client address of r. Behind proxies that append
// to X-Forwarded-For the first hop is the original client.
func GetRequestIP(r *http.Request) string {
	if xff := r.Header.Get(XForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := hostOnly(strings.TrimSpace(first)); ip != "" {
			return ip
		}
	}
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
