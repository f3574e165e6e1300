// Package memory provides an in-process session store with TTL
// semantics, suitable for tests and single-node deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionkit/core/session"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store keeps payloads in a mutex-guarded map. Expiry is enforced
// lazily on Read and eagerly by GC or the optional janitor.
type Store struct {
	mu      sync.Mutex
	entries map[session.ID]entry

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates an empty store without a background janitor; expired
// entries are dropped on Read and GC.
func New() *Store {
	return &Store{
		entries: make(map[session.ID]entry),
		stop:    make(chan struct{}),
	}
}

// NewWithJanitor creates a store that sweeps expired entries every
// interval until Close is called.
func NewWithJanitor(interval time.Duration) *Store {
	s := New()
	go s.janitor(interval)
	return s
}

// Read implements session.Store.
func (s *Store) Read(_ context.Context, id session.ID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, session.ErrNotFound
	}

	payload := make([]byte, len(e.payload))
	copy(payload, e.payload)
	return payload, nil
}

// Write implements session.Store. The payload is copied so later caller
// mutations cannot reach stored bytes.
func (s *Store) Write(_ context.Context, id session.ID, payload []byte, ttl time.Duration) error {
	owned := make([]byte, len(payload))
	copy(owned, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{payload: owned, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Destroy implements session.Store; destroying an absent id is a no-op.
func (s *Store) Destroy(_ context.Context, id session.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// GC implements session.Store by sweeping expired entries.
func (s *Store) GC(_ context.Context, _ time.Duration) error {
	s.sweep()
	return nil
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := time.Now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the janitor, if one is running.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
