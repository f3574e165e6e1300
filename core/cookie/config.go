package cookie

import (
	"net/http"

	"github.com/caarlos0/env/v11"
)

// Config provides environment-based configuration for the Emitter.
// SameSite uses net/http numeric values: 1=Default, 2=Lax, 3=Strict,
// 4=None.
type Config struct {
	Name     string `env:"SESSION_COOKIE_NAME" envDefault:"__Host-id"`
	Path     string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	HTTPOnly bool   `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite int    `env:"SESSION_COOKIE_SAME_SITE" envDefault:"3"`
	Lifetime int    `env:"SESSION_COOKIE_LIFETIME" envDefault:"0"`
}

// NewFromConfig creates an Emitter from configuration. Explicit options
// are applied after the config values and before the safety coercions.
func NewFromConfig(cfg Config, opts ...Option) (*Emitter, error) {
	configOpts := []Option{
		WithName(cfg.Name),
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithSecure(cfg.Secure),
		WithHTTPOnly(cfg.HTTPOnly),
		WithSameSite(http.SameSite(cfg.SameSite)),
		WithLifetime(cfg.Lifetime),
	}

	return New(append(configOpts, opts...)...)
}

// LoadConfig parses Config from environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
