package clientip

import (
	"net"
	"net/http"
	"strings"
)

// unknownIP is returned when no candidate address validates.
const unknownIP = "0.0.0.0"

// headerPriority lists proxy headers in trust order. X-Forwarded-For may
// carry a comma-separated chain; only the leftmost entry identifies the
// original client.
var headerPriority = []string{"X-Forwarded-For", "Client-IP", "X-Real-IP"}

// GetIP returns the client IP address for the request, normalized via
// net.IP.String. It never returns an empty string.
func GetIP(r *http.Request) string {
	for _, header := range headerPriority {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		if header == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}

		if ip := net.ParseIP(strings.TrimSpace(value)); ip != nil {
			return ip.String()
		}
	}

	// RemoteAddr is host:port for real connections, but tests and some
	// custom listeners hand over a bare host.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(strings.TrimSpace(host)); ip != nil {
		return ip.String()
	}

	return unknownIP
}
