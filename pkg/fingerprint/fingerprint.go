package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/clientip"
)

// ipHashSalt is compiled in so stored digests are not raw addresses.
// Rotating it invalidates every IP-bound session.
const ipHashSalt = "sessionkit/ip-binding/v1"

// Binding holds the client-binding values for one request.
type Binding struct {
	UserAgent string
	IPHash    string
}

// FromRequest derives the binding values for the current request.
func FromRequest(r *http.Request) Binding {
	return Binding{
		UserAgent: r.UserAgent(),
		IPHash:    IPHash(clientip.GetIP(r)),
	}
}

// IPHash returns hex(SHA-256(ip || salt)) for the given address.
func IPHash(ip string) string {
	sum := sha256.Sum256([]byte(ip + ipHashSalt))
	return hex.EncodeToString(sum[:])
}

// Match compares two binding values in constant time.
// Inputs of different lengths compare unequal without an early exit
// on content.
func Match(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
