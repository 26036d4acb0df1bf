package config

import (
	"fmt"
	"time"
)

// RedisConfig configures the optional Redis completion log.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// Address returns host:port.
func (c RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		TTL:      getEnvDuration("REDIS_OUTCOME_TTL", 24*time.Hour),
	}
}

func (c RedisConfig) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return invalid("REDIS_PORT", c.Port, "REDIS_PORT must be between 1 and 65535")
	}
	if c.TTL < 0 {
		return invalid("REDIS_OUTCOME_TTL", c.TTL.String(), "REDIS_OUTCOME_TTL must not be negative")
	}
	return nil
}
