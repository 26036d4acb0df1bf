package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human readable, optionally colored lines
	FormatConsole Format = "console"
	// FormatJSON outputs one JSON object per line
	FormatJSON Format = "json"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format
	Format Format

	// EnableColors enables colored output (console format only)
	EnableColors bool

	// EnableCaller adds file and line number to logs
	EnableCaller bool

	// EnableTimestamp adds timestamp to logs
	EnableTimestamp bool

	// TimeFormat is the time layout, or "unix" / "unixmilli"
	TimeFormat string

	// Output is where to write logs (defaults to os.Stdout)
	Output io.Writer
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableColors:    true,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		Output:          os.Stdout,
	}
}

// LoadFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_COLOR, LOG_CALLER and
// LOG_TIME_FORMAT on top of DefaultConfig.
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		config.Format = FormatJSON
	}

	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = envTrue(color)
	}

	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.EnableCaller = envTrue(caller)
	}

	switch tf := os.Getenv("LOG_TIME_FORMAT"); strings.ToUpper(tf) {
	case "":
	case "RFC3339NANO":
		config.TimeFormat = time.RFC3339Nano
	case "UNIX":
		config.TimeFormat = "unix"
	case "UNIXMILLI":
		config.TimeFormat = "unixmilli"
	default:
		config.TimeFormat = tf
	}

	return config
}

func envTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
