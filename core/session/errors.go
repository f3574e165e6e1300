package session

import "errors"

var (
	// ErrInvalidID is returned by ParseID for anything that is not a
	// canonical UUIDv4.
	ErrInvalidID = errors.New("session: invalid session id")
	// ErrNotFound is returned by Store implementations when no live
	// payload exists for an id.
	ErrNotFound = errors.New("session: session not found")
	// ErrNotStarted is returned by engine operations invoked before
	// Start. This is a programmer error, never a request condition.
	ErrNotStarted = errors.New("session: engine not started")
	// ErrDestroyed is returned when an operation requires a live
	// session but the engine state is terminal.
	ErrDestroyed = errors.New("session: session destroyed")
	// ErrReservedKey is returned by Set and Remove for keys in the
	// internal underscore-prefixed namespace.
	ErrReservedKey = errors.New("session: reserved key")
	// ErrCorruptPayload is returned by the codec for bytes that do not
	// decode to a versioned session document.
	ErrCorruptPayload = errors.New("session: corrupt payload")
	// ErrInvalidConfig is returned by NewManager for inconsistent
	// configuration.
	ErrInvalidConfig = errors.New("session: invalid configuration")
)
