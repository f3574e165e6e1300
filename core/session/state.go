package session

import (
	"maps"
	"time"
)

// Status is the lifecycle position of a session state.
type Status int

const (
	// StatusActive is a live session, fresh or resumed.
	StatusActive Status = iota
	// StatusRegenerated is a live session whose id was rotated during
	// the current request.
	StatusRegenerated
	// StatusDestroyed is terminal for the engine instance; Commit emits
	// an expiring cookie.
	StatusDestroyed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusRegenerated:
		return "regenerated"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of one session: identifier, user data,
// timestamps, lifecycle status, and the dirty flag that gates store
// writes. Mutating engine operations replace the snapshot; a State
// handed out to callers never changes underneath them.
type State struct {
	id             ID
	data           map[string]any
	createdAt      time.Time
	lastActivityAt time.Time
	status         Status
	dirty          bool

	// Binding and CSRF metadata travel with the state but are stripped
	// from the user-visible data map.
	csrfHash  string
	userAgent string
	ipHash    string
}

// ID returns the session identifier.
func (s State) ID() ID {
	return s.id
}

// CreatedAt returns the first-creation instant of the logical session.
func (s State) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivityAt returns the instant the session was last resumed.
func (s State) LastActivityAt() time.Time {
	return s.lastActivityAt
}

// Status returns the lifecycle status.
func (s State) Status() Status {
	return s.status
}

// IsDirty reports whether the state has mutated since the last
// successful store write.
func (s State) IsDirty() bool {
	return s.dirty
}

// Value returns the stored value for key.
func (s State) Value(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Keys returns the user-visible data keys in unspecified order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of user-visible entries.
func (s State) Len() int {
	return len(s.data)
}

// cloneData copies the data map so snapshot mutations never alias.
func (s State) cloneData() map[string]any {
	return maps.Clone(s.data)
}

// withValue returns a dirty snapshot with key set.
func (s State) withValue(key string, value any) State {
	next := s
	next.data = s.cloneData()
	if next.data == nil {
		next.data = make(map[string]any, 1)
	}
	next.data[key] = value
	next.dirty = true
	return next
}

// withoutValue returns a snapshot with key removed; dirty only when the
// key existed.
func (s State) withoutValue(key string) State {
	if _, ok := s.data[key]; !ok {
		return s
	}
	next := s
	next.data = s.cloneData()
	delete(next.data, key)
	next.dirty = true
	return next
}

// cleared returns a dirty snapshot with all user data dropped.
func (s State) cleared() State {
	next := s
	next.data = make(map[string]any)
	next.dirty = true
	return next
}

// withCSRFHash returns a dirty snapshot carrying a new token digest.
func (s State) withCSRFHash(hash string) State {
	next := s
	next.data = s.cloneData()
	next.csrfHash = hash
	next.dirty = true
	return next
}

// clean returns the snapshot with the dirty flag dropped after a
// successful store write.
func (s State) clean() State {
	next := s
	next.dirty = false
	return next
}
