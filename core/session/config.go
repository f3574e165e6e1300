package session

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds engine configuration. All fields have secure defaults;
// the zero Config is not valid, use defaultConfig or env parsing.
type Config struct {
	// IdleTimeout is the inactivity window before a resumed session is
	// destroyed and replaced.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	// AbsoluteTimeout is the maximum session lifetime regardless of
	// activity; it is also the store TTL on write.
	AbsoluteTimeout time.Duration `env:"SESSION_ABSOLUTE_TIMEOUT" envDefault:"4h"`
	// BindToIP enables the salted IP-hash fingerprint check on resume.
	// Disable when the deployment does not terminate its own proxy.
	BindToIP bool `env:"SESSION_BIND_TO_IP" envDefault:"true"`
	// BindToUserAgent enables the User-Agent fingerprint check on
	// resume.
	BindToUserAgent bool `env:"SESSION_BIND_TO_USER_AGENT" envDefault:"true"`
	// EncryptionKey enables the payload envelope when set. Must be at
	// least 32 bytes.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY" envDefault:""`
	// Grace is the retention window for the old id after RegenerateID.
	Grace time.Duration `env:"SESSION_GRACE" envDefault:"10s"`
}

func defaultConfig() Config {
	return Config{
		IdleTimeout:     30 * time.Minute,
		AbsoluteTimeout: 4 * time.Hour,
		BindToIP:        true,
		BindToUserAgent: true,
		Grace:           10 * time.Second,
	}
}

// validate enforces the invariants between knobs eagerly, at manager
// construction.
func (c Config) validate() error {
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("%w: idle timeout must be positive", ErrInvalidConfig)
	}
	if c.AbsoluteTimeout <= 0 {
		return fmt.Errorf("%w: absolute timeout must be positive", ErrInvalidConfig)
	}
	if c.IdleTimeout > c.AbsoluteTimeout {
		return fmt.Errorf("%w: idle timeout exceeds absolute timeout", ErrInvalidConfig)
	}
	if c.Grace <= 0 {
		return fmt.Errorf("%w: grace window must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithConfig replaces the whole configuration, e.g. one parsed from the
// environment. Later options still apply on top.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithIdleTimeout sets the inactivity window.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.IdleTimeout = d
	}
}

// WithAbsoluteTimeout sets the maximum session lifetime.
func WithAbsoluteTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.AbsoluteTimeout = d
	}
}

// WithIPBinding toggles the IP fingerprint check.
func WithIPBinding(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.BindToIP = enabled
	}
}

// WithUserAgentBinding toggles the User-Agent fingerprint check.
func WithUserAgentBinding(enabled bool) Option {
	return func(m *Manager) {
		m.cfg.BindToUserAgent = enabled
	}
}

// WithEncryptionKey enables the payload envelope.
func WithEncryptionKey(key []byte) Option {
	return func(m *Manager) {
		m.cfg.EncryptionKey = string(key)
	}
}

// WithGrace sets the old-id retention window on regenerate.
func WithGrace(d time.Duration) Option {
	return func(m *Manager) {
		m.cfg.Grace = d
	}
}

// LoadConfig parses Config from environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
