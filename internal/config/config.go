package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the process-wide settings. It is built once at startup and
// passed by pointer to the components that need it.
type Config struct {
	AppPort         string
	AppEnv          string
	LogLevel        string
	JWTSecret       string
	DBDriver        string
	DatabaseDSN     string
	RabbitMQURL     string
	RedisURL        string
	IdempotencyTTL  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from an optional .env file and the environment.
func Load(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=looplane port=5432 sslmode=disable")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		AppEnv:      strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		JWTSecret:   v.GetString("JWT_SECRET"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		RedisURL:    v.GetString("REDIS_URL"),
	}

	var err error
	if cfg.IdempotencyTTL, err = time.ParseDuration(v.GetString("IDEMPOTENCY_TTL")); err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != DriverMemory && cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN must be set")
	}
	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	return cfg, nil
}

// UsesDatabase reports whether the repositories are backed by GORM.
func (c *Config) UsesDatabase() bool {
	return c.DBDriver != DriverMemory
}

// IsDevelopment reports whether internal error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}
