package cookie

import "net/http"

// Option is a functional option for configuring the Emitter.
type Option func(*Emitter)

// WithName sets the cookie name. Names with the __Host- prefix trigger
// the prefix coercions at construction.
func WithName(name string) Option {
	return func(e *Emitter) {
		e.name = name
	}
}

// WithPath sets the cookie path attribute.
func WithPath(path string) Option {
	return func(e *Emitter) {
		e.path = path
	}
}

// WithDomain sets the cookie domain attribute. Ignored for __Host-
// prefixed names.
func WithDomain(domain string) Option {
	return func(e *Emitter) {
		e.domain = domain
	}
}

// WithSecure sets the Secure flag. May be coerced back to true by the
// __Host- and SameSite=None rules.
func WithSecure(secure bool) Option {
	return func(e *Emitter) {
		e.secure = secure
	}
}

// WithHTTPOnly controls JavaScript access to the cookie.
func WithHTTPOnly(httpOnly bool) Option {
	return func(e *Emitter) {
		e.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite policy.
func WithSameSite(sameSite http.SameSite) Option {
	return func(e *Emitter) {
		e.sameSite = sameSite
	}
}

// WithLifetime sets Max-Age in seconds. Zero keeps the cookie a session
// cookie with no Max-Age attribute.
func WithLifetime(seconds int) Option {
	return func(e *Emitter) {
		e.lifetime = seconds
	}
}
