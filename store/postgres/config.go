package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds connection settings with environment variable mapping.
type Config struct {
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"10s"`
}

// Connect opens a pgx-backed pool, applies the pool limits, and
// verifies connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("sessionstore/postgres: open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sessionstore/postgres: ping: %w", err)
	}
	return db, nil
}

// LoadConfig parses Config from environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
