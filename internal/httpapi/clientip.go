package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientIP resolves the client identifier used for rate limiting. Proxy
// headers win over the socket peer: the first X-Forwarded-For entry, then
// X-Real-IP, then the remote address with the port stripped. Identification
// is purely IP-based, so clients behind the same NAT share a bucket.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
