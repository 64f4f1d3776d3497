package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"artemiz/pkg/platform/middleware/metadata"
)

// Server captures process level configuration. Every field is read from the
// environment so main stays lean.
type Server struct {
	Addr       string `env:"ARTEMIZ_ADDR"        envDefault:":8080"`
	LogLevel   string `env:"ARTEMIZ_LOG_LEVEL"   envDefault:"info"`
	LogFormat  string `env:"ARTEMIZ_LOG_FORMAT"  envDefault:"json"`
	AdminToken string `env:"ARTEMIZ_ADMIN_TOKEN"`

	HTTP         HTTPConfig
	Registration RegistrationConfig
	Redis        RedisConfig
	Database     DatabaseConfig
	Kafka        KafkaConfig
	RateLimit    RateLimitConfig
}

// HTTPConfig bounds how long a single connection or request may take.
type HTTPConfig struct {
	ReadTimeout    time.Duration `env:"ARTEMIZ_HTTP_READ_TIMEOUT"    envDefault:"15s"`
	WriteTimeout   time.Duration `env:"ARTEMIZ_HTTP_WRITE_TIMEOUT"   envDefault:"30s"`
	IdleTimeout    time.Duration `env:"ARTEMIZ_HTTP_IDLE_TIMEOUT"    envDefault:"60s"`
	RequestTimeout time.Duration `env:"ARTEMIZ_HTTP_REQUEST_TIMEOUT" envDefault:"20s"`

	// TrustedProxies are CIDRs or addresses whose X-Forwarded-For is
	// believed. Empty means the connecting peer is always the client.
	TrustedProxies []string `env:"ARTEMIZ_TRUSTED_PROXIES" envSeparator:","`
}

// RegistrationConfig tunes the wizard lifecycle.
type RegistrationConfig struct {
	// RedirectDelay is how long a successful wizard stays visible before the
	// navigate-home effect discards it.
	RedirectDelay time.Duration `env:"ARTEMIZ_REDIRECT_DELAY" envDefault:"3s"`
	SessionTTL    time.Duration `env:"ARTEMIZ_SESSION_TTL"    envDefault:"1h"`
	SubmitTimeout time.Duration `env:"ARTEMIZ_SUBMIT_TIMEOUT" envDefault:"10s"`
}

// RedisConfig holds the wizard session store connection. An empty URL keeps
// sessions in memory.
type RedisConfig struct {
	URL          string        `env:"ARTEMIZ_REDIS_URL"`
	PoolSize     int           `env:"ARTEMIZ_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"ARTEMIZ_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"ARTEMIZ_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"ARTEMIZ_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"ARTEMIZ_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// DatabaseConfig holds the registration store connection. An empty URL keeps
// completed registrations in memory.
type DatabaseConfig struct {
	URL             string        `env:"ARTEMIZ_DATABASE_URL"`
	MaxOpenConns    int           `env:"ARTEMIZ_DB_MAX_OPEN_CONNS"     envDefault:"10"`
	MaxIdleConns    int           `env:"ARTEMIZ_DB_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"ARTEMIZ_DB_CONN_MAX_LIFETIME"  envDefault:"30m"`
}

// KafkaConfig configures the optional registration announcer.
type KafkaConfig struct {
	Brokers []string `env:"ARTEMIZ_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"ARTEMIZ_KAFKA_TOPIC"   envDefault:"artemiz.registrations"`
}

// RateLimitConfig guards the submit endpoint per client IP.
type RateLimitConfig struct {
	Disabled     bool          `env:"ARTEMIZ_RATE_LIMIT_DISABLED"`
	SubmitLimit  int           `env:"ARTEMIZ_SUBMIT_RATE_LIMIT"  envDefault:"5"`
	SubmitWindow time.Duration `env:"ARTEMIZ_SUBMIT_RATE_WINDOW" envDefault:"1m"`
}

// FromEnv builds the Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects values that would break the wizard lifecycle.
func (s Server) Validate() error {
	if s.Registration.RedirectDelay <= 0 {
		return fmt.Errorf("ARTEMIZ_REDIRECT_DELAY must be positive")
	}
	if s.Registration.SessionTTL <= 0 {
		return fmt.Errorf("ARTEMIZ_SESSION_TTL must be positive")
	}
	if s.Registration.SubmitTimeout <= 0 {
		return fmt.Errorf("ARTEMIZ_SUBMIT_TIMEOUT must be positive")
	}
	if s.HTTP.RequestTimeout <= s.Registration.SubmitTimeout {
		return fmt.Errorf("ARTEMIZ_HTTP_REQUEST_TIMEOUT must exceed ARTEMIZ_SUBMIT_TIMEOUT")
	}
	if _, err := metadata.ParseTrustedProxies(s.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("ARTEMIZ_TRUSTED_PROXIES: %w", err)
	}
	if !s.RateLimit.Disabled && (s.RateLimit.SubmitLimit <= 0 || s.RateLimit.SubmitWindow <= 0) {
		return fmt.Errorf("submit rate limit and window must be positive")
	}
	return nil
}
