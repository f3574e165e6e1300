package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/sessionkit/core/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements session.Store on a PostgreSQL table via the pgx
// database/sql driver.
type Store struct {
	db *sql.DB
}

// New creates a Store over an existing pool. Run Migrate first on a
// fresh database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("sessionstore/postgres: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("sessionstore/postgres: migrate: %w", err)
	}
	return nil
}

// Read implements session.Store, treating expired rows as absent.
func (s *Store) Read(ctx context.Context, id session.ID) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessionkit_sessions WHERE id = $1 AND expires_at > now()`,
		id.String(),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("sessionstore/postgres: read: %w", err)
	}
	return payload, nil
}

// Write implements session.Store with an upsert.
func (s *Store) Write(ctx context.Context, id session.ID, payload []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessionkit_sessions (id, payload, expires_at)
		 VALUES ($1, $2, now() + $3 * interval '1 second')
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		id.String(), payload, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("sessionstore/postgres: write: %w", err)
	}
	return nil
}

// Destroy implements session.Store; deleting an absent row succeeds.
func (s *Store) Destroy(ctx context.Context, id session.ID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessionkit_sessions WHERE id = $1`, id.String(),
	); err != nil {
		return fmt.Errorf("sessionstore/postgres: destroy: %w", err)
	}
	return nil
}

// GC implements session.Store by deleting expired rows.
func (s *Store) GC(ctx context.Context, _ time.Duration) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessionkit_sessions WHERE expires_at <= now()`,
	); err != nil {
		return fmt.Errorf("sessionstore/postgres: gc: %w", err)
	}
	return nil
}
