package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// defaultKeyPrefix namespaces session keys away from whatever else
// shares the Redis instance.
const defaultKeyPrefix = "sessionkit:sid:"

// Option configures the Store.
type Option func(*Store)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// Store implements session.Store on a Redis client. It is safe for
// concurrent use; the client handles pooling.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// New creates a Store over an existing client.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id session.ID) string {
	return s.prefix + id.String()
}

// Read implements session.Store. A missing or expired key is
// session.ErrNotFound; transport failures wrap ErrUnavailable.
func (s *Store) Read(ctx context.Context, id session.ID) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return payload, nil
}

// Write implements session.Store with SET ... EX semantics.
func (s *Store) Write(ctx context.Context, id session.ID, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Destroy implements session.Store; deleting an absent key succeeds.
func (s *Store) Destroy(ctx context.Context, id session.ID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GC implements session.Store as a no-op: key expiry is native.
func (s *Store) GC(_ context.Context, _ time.Duration) error {
	return nil
}

// Ping reports point-in-time availability and latency, for health
// checks.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
