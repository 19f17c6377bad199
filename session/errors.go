package session

import (
	"errors"
	"fmt"
)

// ErrorCode classifies registry errors.
type ErrorCode int

const (
	// ErrCodeNoSession means no live session exists for the requested name.
	ErrCodeNoSession ErrorCode = iota + 1
	// ErrCodeInvalidConfig means a config failed validation.
	ErrCodeInvalidConfig
	// ErrCodeInvalidBaseURL means a base URL lacks a usable scheme or host.
	ErrCodeInvalidBaseURL
	// ErrCodeDuplicate means a config with the same name was already added.
	ErrCodeDuplicate
	// ErrCodeAlreadyConfigured means the registry was already configured.
	ErrCodeAlreadyConfigured
	// ErrCodeClosed means the registry was closed.
	ErrCodeClosed
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNoSession:
		return "no_session"
	case ErrCodeInvalidConfig:
		return "invalid_config"
	case ErrCodeInvalidBaseURL:
		return "invalid_base_url"
	case ErrCodeDuplicate:
		return "duplicate"
	case ErrCodeAlreadyConfigured:
		return "already_configured"
	case ErrCodeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Error is a registry error tied to a session name.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Name is the session name involved, if any.
	Name string
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Sentinels for use with errors.Is. They match any *Error with the same code.
var (
	ErrNoSession         = &Error{Code: ErrCodeNoSession, Message: "no session configured"}
	ErrInvalidConfig     = &Error{Code: ErrCodeInvalidConfig, Message: "invalid session config"}
	ErrInvalidBaseURL    = &Error{Code: ErrCodeInvalidBaseURL, Message: "invalid base URL"}
	ErrDuplicate         = &Error{Code: ErrCodeDuplicate, Message: "session already added"}
	ErrAlreadyConfigured = &Error{Code: ErrCodeAlreadyConfigured, Message: "registry already configured"}
	ErrClosed            = &Error{Code: ErrCodeClosed, Message: "registry closed"}
)

func newError(code ErrorCode, name, msg string, err error) *Error {
	return &Error{Code: code, Name: name, Message: msg, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("session: %s %q: %s", e.Code, e.Name, e.Message)
	}
	return fmt.Sprintf("session: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsNoSession checks if an error is a missing-session lookup failure.
func IsNoSession(err error) bool {
	return hasCode(err, ErrCodeNoSession)
}

// IsInvalidConfig checks if an error is a config validation failure.
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

// IsInvalidBaseURL checks if an error is a base URL failure.
func IsInvalidBaseURL(err error) bool {
	return hasCode(err, ErrCodeInvalidBaseURL)
}

// IsDuplicate checks if an error is a duplicate-name failure.
func IsDuplicate(err error) bool {
	return hasCode(err, ErrCodeDuplicate)
}

// IsAlreadyConfigured checks if an error is a repeated Configure.
func IsAlreadyConfigured(err error) bool {
	return hasCode(err, ErrCodeAlreadyConfigured)
}

// IsClosed checks if an error comes from a closed registry.
func IsClosed(err error) bool {
	return hasCode(err, ErrCodeClosed)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
