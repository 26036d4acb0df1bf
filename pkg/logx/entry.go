package logx

import "fmt"

// Entry accumulates fields for a single log line (chainable)
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

func newEntry(logger *Logger) *Entry {
	return &Entry{
		logger: logger,
		fields: make(Fields),
	}
}

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError attaches an error to the entry
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	return e
}

// Debug logs at debug level
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.err) }

// Info logs at info level
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields, e.err) }

// Warn logs at warn level
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields, e.err) }

// Error logs at error level
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.err) }

// Debugf logs formatted debug message
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Infof logs formatted info message
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Warnf logs formatted warn message
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Errorf logs formatted error message
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Fatalf logs formatted fatal message and exits
func (e *Entry) Fatalf(format string, args ...interface{}) {
	e.logger.log(LevelFatal, fmt.Sprintf(format, args...), e.fields, e.err)
	e.logger.exit(1)
}
