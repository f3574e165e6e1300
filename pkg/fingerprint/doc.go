// Package fingerprint derives client-binding values from HTTP request
// metadata so a resumed session can be checked against the client that
// created it. A mismatch is treated as possible session takeover.
//
// Two binding values are produced: the raw User-Agent string and a
// salted SHA-256 digest of the client IP. The salt is a compile-time
// constant; it keeps the stored digest from being a direct PII leak,
// it does not resist offline attack.
//
// All comparisons must go through Match, which is constant-time.
package fingerprint
