package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr      string `env:"RACEDAY_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Database     DatabaseConfig
	Redis        RedisConfig
	Email        EmailConfig
	Program      ProgramConfig
	Registration RegistrationConfig
	Tracing      TracingConfig
}

// DatabaseConfig points at the relational store. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	Migrate         bool          `env:"DATABASE_MIGRATE" envDefault:"true"`
}

// RedisConfig configures the optional Redis client. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"1s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"1s"`
}

// EmailConfig configures the confirmation email transport. Without an API key
// confirmations are recorded as failed with reason transport-unavailable.
type EmailConfig struct {
	APIURL  string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com/emails"`
	APIKey  string        `env:"EMAIL_API_KEY"`
	From    string        `env:"EMAIL_FROM" envDefault:"Race Office <registration@example.com>"`
	Timeout time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// ProgramConfig tunes the program schedule read model.
type ProgramConfig struct {
	CacheTTL time.Duration `env:"PROGRAM_CACHE_TTL" envDefault:"5m"`
}

// RegistrationConfig tunes the registration workflow.
type RegistrationConfig struct {
	SubmissionGuardTTL time.Duration `env:"SUBMISSION_GUARD_TTL" envDefault:"30s"`
}

// TracingConfig selects the span exporter. Disabled tracing installs a no-op tracer.
type TracingConfig struct {
	Enabled      bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Exporter     string  `env:"TRACING_EXPORTER" envDefault:"stdout"`
	OTLPEndpoint string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	SampleRate   float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1"`
}

// FromEnv loads an optional .env file and parses the environment.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// EmailEnabled reports whether a transport can be built from the config.
func (c Server) EmailEnabled() bool {
	return c.Email.APIKey != "" && c.Email.APIURL != ""
}
