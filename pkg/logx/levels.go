package logx

import "strings"

// Level represents logging level
type Level uint8

const (
	// LevelTrace is the most verbose level
	LevelTrace Level = iota
	// LevelDebug for per-task lifecycle messages
	LevelDebug
	// LevelInfo for batch-level progress
	LevelInfo
	// LevelWarn for isolated failures
	LevelWarn
	// LevelError for failures that abort a batch
	LevelError
	// LevelFatal for messages that exit the process
	LevelFatal
	// LevelOff disables all logging
	LevelOff
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", "OFF"}

// String returns the string representation of the log level
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel parses a string into a Level, defaulting to LevelInfo
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Enabled reports whether target is emitted when l is the minimum level
func (l Level) Enabled(target Level) bool {
	return l <= target
}
