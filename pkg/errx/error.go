package errx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is an error carrying a stable code, a category and free-form details.
type Error struct {
	// Code is the unique error code, prefixed by the owning registry
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Type categorizes the error
	Type Type `json:"type"`

	// Details contains additional context such as the failing item
	Details map[string]interface{} `json:"details,omitempty"`

	// Err is the underlying cause (not exported in JSON)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so registry-built errors can be used as
// targets for errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetail adds a detail to the error and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error,omitempty"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// New creates a new Error
func New(message string, errType Type) *Error {
	return &Error{
		Code:    string(errType),
		Message: message,
		Type:    errType,
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context.
// An existing *Error keeps its code and details.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:    existing.Code,
			Message: message,
			Type:    errType,
			Details: existing.Details,
			Err:     err,
		}
	}

	return &Error{
		Code:    string(errType),
		Message: message,
		Type:    errType,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, errType Type, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...), errType)
}

// Is checks if an error matches the target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HasCode reports whether any *Error in err's chain was built from code.
func HasCode(err error, code *ErrorCode) bool {
	if err == nil || code == nil {
		return false
	}
	return errors.Is(err, &Error{Code: code.Code})
}

// TypeOf returns the Type of the first *Error in err's chain, or TypeInternal.
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}
