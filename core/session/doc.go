// Package session implements a secure HTTP session engine: a lifecycle
// state machine that decides when an inbound session cookie is accepted,
// rotated, destroyed, or silently replaced, plus the CSRF protocol and
// the encrypted payload envelope around persisted session data.
//
// # Model
//
// A Manager is built once per process from a Store, a cookie Emitter,
// and configuration. Each HTTP request gets its own Engine:
//
//	mgr, err := session.NewManager(store,
//		session.WithIdleTimeout(30*time.Minute),
//		session.WithAbsoluteTimeout(4*time.Hour),
//		session.WithEncryptionKey(key),
//	)
//	...
//	eng := mgr.NewEngine()
//	state, err := eng.Start(r)
//	...
//	err = eng.Commit(r.Context(), w)
//
// Start materializes a State from the request cookie: it parses and
// validates the session id, reads and decrypts the stored payload,
// enforces idle and absolute timeouts, and checks client-binding
// fingerprints. Every security-relevant failure (bad id, missing or
// corrupt payload, failed decrypt, timeout, binding mismatch) silently
// falls back to a fresh empty session; only infrastructure failures
// (store I/O) surface to the caller.
//
// State is an immutable snapshot. Mutations go through the Engine and
// produce a replacement snapshot with the dirty flag set; Commit only
// writes to the Store when the state is dirty, so a read-only request
// performs zero writes.
//
// An Engine is bound to one request and is not safe for concurrent use.
// The Manager and its Store are shared and must be concurrency-safe.
// Two requests resuming the same session race benignly: both see the
// pre-request state and the last Commit wins.
package session
