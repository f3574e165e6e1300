package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/core/csrf"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

// Engine drives one session through one request: Start materializes the
// state from the inbound cookie, the mutation operations replace the
// state snapshot, and Commit persists dirty state and emits the
// Set-Cookie header. Engines are not safe for concurrent use; the
// middleware constructs one per request.
type Engine struct {
	mgr     *Manager
	state   State
	binding fingerprint.Binding
	started bool
}

// Start materializes the session state for the request. It is
// idempotent per engine instance: the second call returns the state
// already held.
//
// Security-relevant rejections (unparseable id, missing store entry,
// corrupt or unauthentic payload, expired timeouts, binding mismatch)
// silently yield a fresh empty session. Store I/O failures surface.
func (e *Engine) Start(r *http.Request) (State, error) {
	if e.started {
		return e.state, nil
	}

	now := time.Now().UTC()
	e.binding = fingerprint.FromRequest(r)

	ck, err := r.Cookie(e.mgr.emitter.Name())
	if err != nil || ck.Value == "" {
		return e.fresh(now)
	}

	id, err := ParseID(ck.Value)
	if err != nil {
		return e.fresh(now)
	}

	ctx := r.Context()
	payload, err := e.mgr.store.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e.fresh(now)
		}
		return State{}, fmt.Errorf("session: read payload: %w", err)
	}

	if e.mgr.env != nil {
		payload, err = e.mgr.env.Decrypt(payload)
		if err != nil {
			// Unauthentic bytes: possible tampering. Drop the entry
			// without telling the client why.
			return e.discardAndFresh(r, id, now)
		}
	}

	decoded, err := decodePayload(payload)
	if err != nil {
		return e.discardAndFresh(r, id, now)
	}

	created := decoded.createdAt
	if created.IsZero() {
		created = now
	}
	lastActivity := decoded.lastActivityAt
	if lastActivity.IsZero() {
		lastActivity = now
	}

	if now.Sub(lastActivity) > e.mgr.cfg.IdleTimeout {
		return e.discardAndFresh(r, id, now)
	}
	if now.Sub(created) > e.mgr.cfg.AbsoluteTimeout {
		return e.discardAndFresh(r, id, now)
	}
	if !e.verifyBinding(decoded) {
		return e.discardAndFresh(r, id, now)
	}

	e.state = State{
		id:             id,
		data:           decoded.data,
		createdAt:      created,
		lastActivityAt: now,
		status:         StatusActive,
		csrfHash:       decoded.csrfHash,
		userAgent:      decoded.userAgent,
		ipHash:         decoded.ipHash,
	}
	e.populateBinding()
	e.started = true
	return e.state, nil
}

// State returns the current snapshot.
func (e *Engine) State() (State, error) {
	if !e.started {
		return State{}, ErrNotStarted
	}
	return e.state, nil
}

// Get returns the value stored under key, or fallback when absent.
func (e *Engine) Get(key string, fallback any) (any, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	if v, ok := e.state.Value(key); ok {
		return v, nil
	}
	return fallback, nil
}

// Set stores value under key and marks the state dirty. Keys in the
// reserved underscore namespace are rejected.
func (e *Engine) Set(key string, value any) error {
	if !e.started {
		return ErrNotStarted
	}
	if strings.HasPrefix(key, reservedPrefix) {
		return ErrReservedKey
	}
	e.state = e.state.withValue(key, value)
	return nil
}

// Remove deletes key. The state becomes dirty only when the key
// existed.
func (e *Engine) Remove(key string) error {
	if !e.started {
		return ErrNotStarted
	}
	if strings.HasPrefix(key, reservedPrefix) {
		return ErrReservedKey
	}
	e.state = e.state.withoutValue(key)
	return nil
}

// Clear drops all user data and marks the state dirty.
func (e *Engine) Clear() error {
	if !e.started {
		return ErrNotStarted
	}
	e.state = e.state.cleared()
	return nil
}

// RegenerateID rotates the session id while preserving data. The new
// payload is written immediately under the new id for the full
// lifetime, and under the old id for the grace window, so a concurrent
// request still holding the old cookie keeps resolving until the store
// reaps it.
func (e *Engine) RegenerateID(ctx context.Context) (State, error) {
	if !e.started {
		return State{}, ErrNotStarted
	}
	if e.state.status == StatusDestroyed {
		return State{}, ErrDestroyed
	}

	oldID := e.state.id
	newID, err := NewID()
	if err != nil {
		return State{}, err
	}

	next := e.state
	next.id = newID
	next.status = StatusRegenerated
	next.dirty = true
	e.state = next

	payload, err := e.encodeState()
	if err != nil {
		return State{}, err
	}

	if err := e.mgr.store.Write(ctx, newID, payload, e.writeTTL(time.Now().UTC())); err != nil {
		return State{}, fmt.Errorf("session: write rotated payload: %w", err)
	}
	if err := e.mgr.store.Write(ctx, oldID, payload, e.mgr.cfg.Grace); err != nil {
		return State{}, fmt.Errorf("session: write grace payload: %w", err)
	}

	return e.state, nil
}

// Destroy removes the stored payload and transitions the state to its
// terminal status. Commit will emit an expiring cookie; reads return
// fallbacks from here on.
func (e *Engine) Destroy(ctx context.Context) error {
	if !e.started {
		return ErrNotStarted
	}

	if err := e.mgr.store.Destroy(ctx, e.state.id); err != nil {
		return fmt.Errorf("session: destroy payload: %w", err)
	}

	next := e.state.cleared()
	next.csrfHash = ""
	next.status = StatusDestroyed
	e.state = next
	return nil
}

// Commit persists dirty state and attaches the session Set-Cookie
// header, replacing any prior header for the same cookie name. A
// read-only request commits without any store write.
func (e *Engine) Commit(ctx context.Context, w http.ResponseWriter) error {
	if !e.started {
		return ErrNotStarted
	}

	if e.state.dirty && e.state.status != StatusDestroyed {
		payload, err := e.encodeState()
		if err != nil {
			return err
		}
		if err := e.mgr.store.Write(ctx, e.state.id, payload, e.writeTTL(time.Now().UTC())); err != nil {
			return fmt.Errorf("session: write payload: %w", err)
		}
		e.state = e.state.clean()
	}

	header, err := e.mgr.emitter.Emit(e.state.id.String(), e.state.status == StatusDestroyed)
	if err != nil {
		return err
	}
	if header != "" {
		setCookieHeader(w, e.mgr.emitter.Name(), header)
	}
	return nil
}

// GenerateCSRFToken issues a fresh token and stores its digest in the
// state, invalidating any prior token. The raw value goes back to the
// caller and is never persisted.
func (e *Engine) GenerateCSRFToken() (csrf.Token, error) {
	if !e.started {
		return csrf.Token{}, ErrNotStarted
	}

	token, err := csrf.Generate()
	if err != nil {
		return csrf.Token{}, err
	}
	e.state = e.state.withCSRFHash(token.Hash())
	return token, nil
}

// IsCSRFTokenValid reports whether submitted matches the outstanding
// token. Validation does not consume the token; callers wanting
// single-use semantics follow up with GenerateCSRFToken, which replaces
// the stored digest (Remove rejects the reserved key and Clear keeps it).
func (e *Engine) IsCSRFTokenValid(submitted string) bool {
	if !e.started || e.state.csrfHash == "" {
		return false
	}

	token, err := csrf.Parse(submitted)
	if err != nil {
		return false
	}
	return token.EqualHash(e.state.csrfHash)
}

// fresh installs a brand-new empty session. Not dirty: nothing is
// persisted until the application mutates state and commits.
func (e *Engine) fresh(now time.Time) (State, error) {
	id, err := NewID()
	if err != nil {
		return State{}, err
	}

	e.state = State{
		id:             id,
		data:           make(map[string]any),
		createdAt:      now,
		lastActivityAt: now,
		status:         StatusActive,
	}
	e.populateBinding()
	e.started = true
	return e.state, nil
}

// discardAndFresh drops the stored entry for a rejected session and
// falls back to a fresh one. The rejection reason is never surfaced.
func (e *Engine) discardAndFresh(r *http.Request, id ID, now time.Time) (State, error) {
	if err := e.mgr.store.Destroy(r.Context(), id); err != nil {
		return State{}, fmt.Errorf("session: destroy rejected payload: %w", err)
	}
	return e.fresh(now)
}

// verifyBinding checks each enabled fingerprint that is present in the
// payload against the current request, in constant time. Any mismatch
// is treated as possible hijack.
func (e *Engine) verifyBinding(decoded decodedPayload) bool {
	if e.mgr.cfg.BindToUserAgent && decoded.userAgent != "" {
		if !fingerprint.Match(decoded.userAgent, e.binding.UserAgent) {
			return false
		}
	}
	if e.mgr.cfg.BindToIP && decoded.ipHash != "" {
		if !fingerprint.Match(decoded.ipHash, e.binding.IPHash) {
			return false
		}
	}
	return true
}

// populateBinding records the current request's fingerprints for every
// enabled binding that has no stored value yet, so the session is bound
// from its first persisted write. Does not dirty the state.
func (e *Engine) populateBinding() {
	if e.mgr.cfg.BindToUserAgent && e.state.userAgent == "" {
		e.state.userAgent = e.binding.UserAgent
	}
	if e.mgr.cfg.BindToIP && e.state.ipHash == "" {
		e.state.ipHash = e.binding.IPHash
	}
}

// encodeState serializes the current state and seals it when the
// envelope is configured.
func (e *Engine) encodeState() ([]byte, error) {
	payload, err := encodePayload(e.state)
	if err != nil {
		return nil, err
	}
	if e.mgr.env != nil {
		payload, err = e.mgr.env.Encrypt(payload)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// writeTTL refines the store TTL so payloads never linger past the
// absolute expiry of the logical session.
func (e *Engine) writeTTL(now time.Time) time.Duration {
	ttl := e.mgr.cfg.AbsoluteTimeout - now.Sub(e.state.createdAt)
	if ttl > e.mgr.cfg.AbsoluteTimeout {
		ttl = e.mgr.cfg.AbsoluteTimeout
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// setCookieHeader appends header, first dropping any prior Set-Cookie
// for the same cookie name so a response carries exactly one session
// cookie.
func setCookieHeader(w http.ResponseWriter, name, header string) {
	existing := w.Header()["Set-Cookie"]
	kept := existing[:0]
	for _, h := range existing {
		if !strings.HasPrefix(h, name+"=") {
			kept = append(kept, h)
		}
	}
	w.Header()["Set-Cookie"] = append(kept, header)
}
