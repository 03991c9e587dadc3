package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Backend names accepted for events and the journal.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the enrolld service
type Config struct {
	// Server configuration
	HTTPPort int    `env:"ENROLLD_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"ENROLLD_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend selection
	EventsBackend  string `env:"ENROLLD_EVENTS_BACKEND" envDefault:"memory"`
	JournalBackend string `env:"ENROLLD_JOURNAL_BACKEND" envDefault:"memory"`

	// Redis configuration, used when either backend is "redis"
	Redis RedisConfig

	// Worker configuration
	Workers WorkerConfig

	// Journal configuration
	Journal JournalConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"2"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

// JournalConfig holds event journal configuration
type JournalConfig struct {
	Capacity int `env:"JOURNAL_CAPACITY" envDefault:"1024"`
}

// TimeoutConfig holds shutdown timing configuration
type TimeoutConfig struct {
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	validBackends := map[string]bool{
		BackendMemory: true,
		BackendRedis:  true,
	}
	if !validBackends[c.EventsBackend] {
		return fmt.Errorf("invalid events backend: %s (must be memory or redis)", c.EventsBackend)
	}
	if !validBackends[c.JournalBackend] {
		return fmt.Errorf("invalid journal backend: %s (must be memory or redis)", c.JournalBackend)
	}

	// Redis is only reached when a backend selects it
	if c.NeedsRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required for redis backends")
	}

	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}
	if c.Journal.Capacity < 1 {
		return fmt.Errorf("journal capacity must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// NeedsRedis reports whether any configured backend requires a Redis
// connection.
func (c *Config) NeedsRedis() bool {
	return c.EventsBackend == BackendRedis || c.JournalBackend == BackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
