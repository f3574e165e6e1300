package session

import (
	"context"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/envelope"
)

// Manager holds the validated configuration, the store, the optional
// payload envelope, and the cookie emitter. It is immutable after
// construction and shared across requests; per-request work happens in
// the Engine it hands out.
type Manager struct {
	store   Store
	cfg     Config
	env     *envelope.Envelope
	emitter *cookie.Emitter
}

// WithCookieEmitter replaces the default cookie emission policy.
func WithCookieEmitter(e *cookie.Emitter) Option {
	return func(m *Manager) {
		m.emitter = e
	}
}

// NewManager validates configuration eagerly and returns a Manager.
// Without WithEncryptionKey payloads are stored as-is; with it, they
// pass through an AES-256-GCM envelope.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrInvalidConfig
	}

	m := &Manager{
		store: store,
		cfg:   defaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.cfg.validate(); err != nil {
		return nil, err
	}

	if m.cfg.EncryptionKey != "" {
		env, err := envelope.New([]byte(m.cfg.EncryptionKey))
		if err != nil {
			return nil, err
		}
		m.env = env
	}

	if m.emitter == nil {
		emitter, err := cookie.New()
		if err != nil {
			return nil, err
		}
		m.emitter = emitter
	}

	return m, nil
}

// NewEngine returns a fresh engine bound to one request. Engines are
// single-owner; construct one per request.
func (m *Manager) NewEngine() *Engine {
	return &Engine{mgr: m}
}

// CookieName returns the request cookie name the engine reads.
func (m *Manager) CookieName() string {
	return m.emitter.Name()
}

// GC asks the store to purge entries past the absolute timeout.
func (m *Manager) GC(ctx context.Context) error {
	return m.store.GC(ctx, m.cfg.AbsoluteTimeout)
}

// Close releases key material held by the payload envelope.
func (m *Manager) Close() {
	if m.env != nil {
		m.env.Zero()
	}
}
