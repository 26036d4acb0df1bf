package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	colorReset     = "\033[0m"
	colorRed       = "\033[31m"
	colorGray      = "\033[90m"
	colorCyan      = "\033[36m"
	colorBoldRed   = "\033[1;31m"
	colorBoldYel   = "\033[1;33m"
	colorBoldCyan  = "\033[1;36m"
	colorBoldGreen = "\033[1;32m"
)

// Formatter turns a LogEntry into bytes ready to be written
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Fields is a map of structured data
type Fields map[string]interface{}

// sortedKeys keeps console output stable between runs
func (f Fields) sortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTimestamp(t time.Time, layout string) string {
	switch layout {
	case "unix":
		return strconv.FormatInt(t.Unix(), 10)
	case "unixmilli":
		return strconv.FormatInt(t.UnixMilli(), 10)
	default:
		return t.Format(layout)
	}
}

// ConsoleFormatter formats logs as single lines with optional colors
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format formats a log entry for console output
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		b.WriteString(f.paint(colorGray, formatTimestamp(entry.Timestamp, f.config.TimeFormat)))
		b.WriteString(" ")
	}

	b.WriteString(f.formatLevel(entry.Level))
	b.WriteString(" ")

	if f.config.EnableCaller && entry.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+entry.Caller+"]"))
		b.WriteString(" ")
	}

	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		parts := make([]string, 0, len(entry.Fields))
		for _, k := range entry.Fields.sortedKeys() {
			parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		b.WriteString(" ")
		b.WriteString(f.paint(colorCyan, strings.Join(parts, " ")))
	}

	if entry.Error != nil {
		b.WriteString("\n")
		b.WriteString(f.paint(colorRed, "  error: "+entry.Error.Error()))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) paint(color, s string) string {
	if !f.config.EnableColors {
		return s
	}
	return color + s + colorReset
}

func (f *ConsoleFormatter) formatLevel(level Level) string {
	label := fmt.Sprintf("[%-5s]", level.String())
	switch level {
	case LevelTrace:
		return f.paint(colorGray, label)
	case LevelDebug:
		return f.paint(colorBoldCyan, label)
	case LevelInfo:
		return f.paint(colorBoldGreen, label)
	case LevelWarn:
		return f.paint(colorBoldYel, label)
	default:
		return f.paint(colorBoldRed, label)
	}
}

// JSONFormatter formats logs as JSON lines
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+5)
	for k, v := range entry.Fields {
		data[k] = v
	}

	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	if f.config.EnableTimestamp {
		switch f.config.TimeFormat {
		case "unix":
			data["timestamp"] = entry.Timestamp.Unix()
		case "unixmilli":
			data["timestamp"] = entry.Timestamp.UnixMilli()
		default:
			data["timestamp"] = entry.Timestamp.Format(time.RFC3339Nano)
		}
	}

	if f.config.EnableCaller && entry.Caller != "" {
		data["caller"] = entry.Caller
	}

	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
