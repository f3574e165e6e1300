// Package middleware adapts the session engine to a net/http pipeline:
// one engine per request, started before the handler runs and committed
// before the first response byte leaves.
package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/session"
)

type engineKey struct{}

// Config configures the session middleware.
type Config struct {
	// Manager builds the per-request engines (required).
	Manager *session.Manager
	// Skip short-circuits the middleware for specific requests, e.g.
	// health checks.
	Skip func(r *http.Request) bool
	// Logger for structured logging (default: slog with io.Discard).
	Logger *slog.Logger
	// ErrorHandler renders store failures on start, and on the commit
	// after a handler that wrote nothing. Commit failures triggered by the
	// handler's first write are only logged. Default: 500 with a generic
	// body.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Session creates middleware with default logging and error handling.
func Session(mgr *session.Manager) func(http.Handler) http.Handler {
	return SessionWithConfig(Config{Manager: mgr})
}

// SessionWithConfig creates the session middleware. Per request it
// builds an engine, starts it, stores it in the request context, and
// commits on the way out. The ResponseWriter is wrapped so the commit
// runs before the first header or body write; handlers that write
// nothing are committed after they return.
func SessionWithConfig(cfg Config) func(http.Handler) http.Handler {
	if cfg.Manager == nil {
		panic("session middleware: manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			eng := cfg.Manager.NewEngine()
			if _, err := eng.Start(r); err != nil {
				cfg.Logger.ErrorContext(r.Context(), "session middleware: start failed", "error", err)
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), engineKey{}, eng)
			r = r.WithContext(ctx)

			cw := &commitWriter{
				ResponseWriter: w,
				engine:         eng,
				request:        r,
				logger:         cfg.Logger,
			}

			next.ServeHTTP(cw, r)

			if cw.committed {
				return
			}
			if err := eng.Commit(r.Context(), w); err != nil {
				cfg.Logger.ErrorContext(r.Context(), "session middleware: commit failed", "error", err)
				cfg.ErrorHandler(w, r, err)
			}
		})
	}
}

// FromContext retrieves the request's session engine.
func FromContext(ctx context.Context) (*session.Engine, bool) {
	eng, ok := ctx.Value(engineKey{}).(*session.Engine)
	return eng, ok
}

// MustFromContext retrieves the engine or panics. Use under the
// middleware, where presence is guaranteed.
func MustFromContext(ctx context.Context) *session.Engine {
	eng, ok := FromContext(ctx)
	if !ok {
		panic("session engine not found in context")
	}
	return eng
}

// commitWriter commits the session before the response becomes
// immutable. Headers set by Commit would be lost after the first
// WriteHeader, hence the interception.
type commitWriter struct {
	http.ResponseWriter
	engine    *session.Engine
	request   *http.Request
	logger    *slog.Logger
	committed bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	w.commit()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// commit runs once; a failure here can only be logged because the
// handler has already decided the response.
func (w *commitWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	if err := w.engine.Commit(w.request.Context(), w.ResponseWriter); err != nil {
		w.logger.ErrorContext(w.request.Context(), "session middleware: commit failed", "error", err)
	}
}
