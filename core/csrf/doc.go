// Package csrf implements the session engine's CSRF token protocol:
// 256-bit random tokens handed to the client, with only the SHA-256
// digest persisted server-side and validated in constant time.
//
// A token is single-issue, not single-use: generating a new token
// replaces the stored digest and invalidates every prior token, but
// validating a token does not consume it. Callers wanting one-shot
// semantics remove the stored digest after a successful check.
package csrf
