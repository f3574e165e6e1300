package cookie

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultName follows the host-prefix convention so the default
	// policy is the strictest one browsers enforce.
	DefaultName = "__Host-id"

	// maxHeaderSize is the practical browser limit for one cookie.
	maxHeaderSize = 4096

	hostPrefix = "__Host-"

	// epochExpires is the canonical "delete this cookie" timestamp.
	epochExpires = "Thu, 01 Jan 1970 00:00:00 GMT"
)

// Emitter renders Set-Cookie header values for session ids under a
// fixed attribute policy. It is immutable after construction and safe
// for concurrent use.
type Emitter struct {
	name     string
	path     string
	domain   string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
	lifetime int
}

// New creates an Emitter with secure defaults (__Host-id, Path=/,
// Secure, HttpOnly, SameSite=Strict, session lifetime) and applies the
// safety coercions after all options.
func New(opts ...Option) (*Emitter, error) {
	e := &Emitter{
		name:     DefaultName,
		path:     "/",
		secure:   true,
		httpOnly: true,
		sameSite: http.SameSiteStrictMode,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.name == "" {
		return nil, ErrEmptyName
	}

	switch e.sameSite {
	case http.SameSiteStrictMode, http.SameSiteLaxMode, http.SameSiteNoneMode:
	default:
		return nil, ErrInvalidSameSite
	}

	// Safety coercions override caller input.
	if strings.HasPrefix(e.name, hostPrefix) {
		e.secure = true
		e.domain = ""
		e.path = "/"
	}
	if e.sameSite == http.SameSiteNoneMode {
		e.secure = true
	}

	return e, nil
}

// Name returns the configured cookie name, for request-side lookups.
func (e *Emitter) Name() string {
	return e.name
}

// Emit renders the Set-Cookie header value for the given session id.
// A destroyed session yields the expiring form. The empty id emits
// nothing.
func (e *Emitter) Emit(id string, destroyed bool) (string, error) {
	if id == "" {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(e.name)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(id))
	b.WriteString("; Path=")
	b.WriteString(e.path)
	if e.domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(e.domain)
	}

	if destroyed {
		b.WriteString("; Expires=")
		b.WriteString(epochExpires)
		b.WriteString("; Max-Age=0")
	}

	if e.secure {
		b.WriteString("; Secure")
	}
	if e.httpOnly {
		b.WriteString("; HttpOnly")
	}
	b.WriteString("; SameSite=")
	b.WriteString(sameSiteName(e.sameSite))

	if !destroyed && e.lifetime > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(e.lifetime))
	}

	header := b.String()
	if len(header) > maxHeaderSize {
		return "", ErrCookieTooLarge{Name: e.name, Size: len(header), Max: maxHeaderSize}
	}
	return header, nil
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return "Strict"
	}
}
