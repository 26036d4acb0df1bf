package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
)

var configErrors = errx.NewRegistry("CONFIG")

var (
	ErrInvalid = configErrors.Register("INVALID", errx.TypeValidation, "Invalid configuration")
)

// Config is the runtime configuration of the drain command, read from the
// environment.
type Config struct {
	Drain    DrainConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Simulate SimulateConfig
}

// Load reads every section from the environment and validates it.
func Load() (*Config, error) {
	simulate, err := loadSimulateConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Drain:    loadDrainConfig(),
		Storage:  loadStorageConfig(),
		Redis:    loadRedisConfig(),
		Simulate: simulate,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Drain.validate(); err != nil {
		return err
	}
	if c.Drain.Source == SourceStorage {
		if err := c.Storage.validate(); err != nil {
			return err
		}
	}
	if c.Drain.Source == SourceSimulate {
		if err := c.Simulate.validate(); err != nil {
			return err
		}
	}
	if c.Redis.Enabled {
		return c.Redis.validate()
	}
	return nil
}

func invalid(key string, value interface{}, reason string) *errx.Error {
	return configErrors.NewWithMessage(ErrInvalid, reason).
		WithDetail("key", key).
		WithDetail("value", value)
}

// ---------------------------------------------------------------------------
// Environment helpers
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
