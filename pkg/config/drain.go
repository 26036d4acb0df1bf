package config

import "time"

// Where the command gets its work items from.
const (
	SourceSimulate = "simulate"
	SourceStorage  = "storage"
)

// DefaultCallbackTimeout bounds each completion sink call of the command.
const DefaultCallbackTimeout = 30 * time.Second

// DrainConfig configures the drain engine and its work source.
type DrainConfig struct {
	Source             string
	MaxInFlight        int
	CallbackTimeout    time.Duration
	ContinueOnCallback bool
	Dir                string
	Pattern            string
}

func loadDrainConfig() DrainConfig {
	return DrainConfig{
		Source:             getEnv("DRAIN_SOURCE", SourceSimulate),
		MaxInFlight:        getEnvInt("DRAIN_MAX_IN_FLIGHT", 0),
		CallbackTimeout:    getEnvDuration("DRAIN_CALLBACK_TIMEOUT", DefaultCallbackTimeout),
		ContinueOnCallback: getEnvBool("DRAIN_CONTINUE_ON_CALLBACK_ERROR", false),
		Dir:                getEnv("DRAIN_DIR", "."),
		Pattern:            getEnv("DRAIN_PATTERN", ""),
	}
}

func (c DrainConfig) validate() error {
	switch c.Source {
	case SourceSimulate, SourceStorage:
	default:
		return invalid("DRAIN_SOURCE", c.Source, "DRAIN_SOURCE must be 'simulate' or 'storage'")
	}
	if c.MaxInFlight < 0 {
		return invalid("DRAIN_MAX_IN_FLIGHT", c.MaxInFlight, "DRAIN_MAX_IN_FLIGHT must not be negative")
	}
	if c.CallbackTimeout < 0 {
		return invalid("DRAIN_CALLBACK_TIMEOUT", c.CallbackTimeout.String(), "DRAIN_CALLBACK_TIMEOUT must not be negative")
	}
	return nil
}
