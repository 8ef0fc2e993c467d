package tsp

import (
	"errors"
	"fmt"
)

// Kind classifies a solver error.
type Kind int

const (
	// KindInvalidInput marks an empty or malformed city list.
	KindInvalidInput Kind = iota + 1
	// KindInvalidConfig marks a configuration value outside its
	// documented bounds.
	KindInvalidConfig
	// KindInvariantViolation marks a tour that failed the permutation
	// check after an operator. It indicates a logic defect, never a
	// transient condition, and aborts the run.
	KindInvariantViolation
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidConfig:
		return "invalid config"
	case KindInvariantViolation:
		return "invariant violation"
	default:
		return "unknown"
	}
}

// Error represents a solver error with context that can be wrapped
// with additional information.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Kind, e.Op)
	} else {
		prefix = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// NewInvalidInputf creates an invalid-input error with a formatted message.
func NewInvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidConfigf creates an invalid-config error with a formatted message.
func NewInvalidConfigf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// NewInvariantViolationf creates an invariant-violation error with a
// formatted message.
func NewInvariantViolationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsInvalidInput reports whether err is an invalid-input error.
func IsInvalidInput(err error) bool { return IsKind(err, KindInvalidInput) }

// IsInvalidConfig reports whether err is an invalid-config error.
func IsInvalidConfig(err error) bool { return IsKind(err, KindInvalidConfig) }

// IsInvariantViolation reports whether err is an invariant-violation error.
func IsInvariantViolation(err error) bool { return IsKind(err, KindInvariantViolation) }
