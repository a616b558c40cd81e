// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Setting is the immutable configuration shared by the commands.
type Setting struct {
	AppName  string `env:"APP_NAME" envDefault:"Pitchfork"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8431"`

	Log utilities.Config `envPrefix:"LOG_"`

	JWTSecret string `env:"JWT_SECRET"`
	// Token lifetimes in seconds.
	AccessTokenExpires  int `env:"JWT_ACCESS_TOKEN_EXPIRES" envDefault:"3600"`
	RefreshTokenExpires int `env:"JWT_REFRESH_TOKEN_EXPIRES" envDefault:"604800"`

	Database database.Config   `envPrefix:"DATABASE_"`
	SMTP     mail.SMTPConfig   `envPrefix:"SMTP_"`
	Mail     mail.WorkerConfig `envPrefix:"MAIL_"`

	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"1h"`

	SupportedLocales []string `env:"SUPPORTED_LOCALES" envDefault:"en,vi" envSeparator:","`
	DefaultLocale    string   `env:"DEFAULT_LOCALE" envDefault:"en"`

	SnowflakeNode int64 `env:"SNOWFLAKE_NODE" envDefault:"1"`

	// Login and registration attempts per minute and client.
	LoginRateLimit float64  `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateBurst int      `env:"LOGIN_RATE_BURST" envDefault:"10"`
	// Addresses or CIDR ranges of reverse proxies whose X-Forwarded-For
	// is used as the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Load reads a .env file when present and parses the environment.
func Load() (*Setting, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse parses the environment described by opts and validates it.
func Parse(opts env.Options) (*Setting, error) {
	var s Setting
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var errMissingSecret = errors.New("JWT_SECRET is required")

// Validate checks the values a command cannot start without.
func (s Setting) Validate() error {
	if s.JWTSecret == "" {
		return errMissingSecret
	}
	err := validation.ValidateStruct(&s,
		validation.Field(&s.HTTPAddr, validation.Required),
		validation.Field(&s.AccessTokenExpires, validation.Required, validation.Min(1)),
		validation.Field(&s.RefreshTokenExpires, validation.Required, validation.Min(1)),
		validation.Field(&s.SupportedLocales, validation.Required),
		validation.Field(&s.DefaultLocale, validation.Required),
		validation.Field(&s.SnowflakeNode, validation.Min(int64(0)), validation.Max(int64(1023))),
		validation.Field(&s.LoginRateBurst, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Auth returns the token configuration.
func (s Setting) Auth() auth.Config {
	return auth.Config{
		Secret:     s.JWTSecret,
		AccessTTL:  time.Duration(s.AccessTokenExpires) * time.Second,
		RefreshTTL: time.Duration(s.RefreshTokenExpires) * time.Second,
	}
}
