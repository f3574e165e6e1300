// Package cookie serializes Set-Cookie headers for the session engine
// under a configured emission policy.
//
// The Emitter is constructed once and shared; construction applies two
// safety coercions that override caller input:
//
//  1. A name with the __Host- prefix forces Secure, forbids Domain, and
//     pins Path to "/" (RFC 6265bis cookie-prefix rules).
//  2. SameSite=None forces Secure, since browsers drop cross-site
//     cookies without it.
//
// Live sessions are emitted with the configured attributes; destroyed
// sessions are emitted as an expiring cookie (epoch Expires, Max-Age=0)
// carrying the old id so clients drop it immediately.
package cookie
