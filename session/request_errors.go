package session

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestErrorCode classifies failures of requests made through a Session.
type RequestErrorCode int

const (
	// ReqCodeTimeout indicates a request or connection timeout.
	ReqCodeTimeout RequestErrorCode = iota
	// ReqCodeConnection indicates a connection failure (refused, DNS, TLS).
	ReqCodeConnection
	// ReqCodeAuth indicates a 401 or 403 response.
	ReqCodeAuth
	// ReqCodeNotFound indicates a 404 response.
	ReqCodeNotFound
	// ReqCodeRateLimit indicates a 429 response.
	ReqCodeRateLimit
	// ReqCodeClient indicates any other 4xx response.
	ReqCodeClient
	// ReqCodeServer indicates a 5xx response.
	ReqCodeServer
)

// String returns the code name.
func (c RequestErrorCode) String() string {
	switch c {
	case ReqCodeTimeout:
		return "timeout"
	case ReqCodeConnection:
		return "connection"
	case ReqCodeAuth:
		return "auth"
	case ReqCodeNotFound:
		return "not_found"
	case ReqCodeRateLimit:
		return "rate_limit"
	case ReqCodeClient:
		return "client"
	case ReqCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// RequestError is a classified request failure.
type RequestError struct {
	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int
	Code       RequestErrorCode
	Message    string
	// Body is the response body for status failures.
	Body []byte
	Err  error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("session: request %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("session: request %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

func newTimeoutError(err error) *RequestError {
	return &RequestError{Code: ReqCodeTimeout, Message: err.Error(), Err: err}
}

func newConnectionError(err error) *RequestError {
	return &RequestError{Code: ReqCodeConnection, Message: err.Error(), Err: err}
}

// classifyStatus returns nil for 2xx and 3xx responses.
func classifyStatus(status int, body []byte) *RequestError {
	var code RequestErrorCode
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ReqCodeAuth
	case status == http.StatusNotFound:
		code = ReqCodeNotFound
	case status == http.StatusTooManyRequests:
		code = ReqCodeRateLimit
	case status < 500:
		code = ReqCodeClient
	default:
		code = ReqCodeServer
	}
	return &RequestError{
		StatusCode: status,
		Code:       code,
		Message:    http.StatusText(status),
		Body:       body,
	}
}

// IsTimeout checks if an error is a request timeout.
func IsTimeout(err error) bool {
	return hasRequestCode(err, ReqCodeTimeout)
}

// IsConnection checks if an error is a connection failure.
func IsConnection(err error) bool {
	return hasRequestCode(err, ReqCodeConnection)
}

// IsNotFound checks if an error is a 404 response.
func IsNotFound(err error) bool {
	return hasRequestCode(err, ReqCodeNotFound)
}

// IsServerError checks if an error is a 5xx response.
func IsServerError(err error) bool {
	return hasRequestCode(err, ReqCodeServer)
}

func hasRequestCode(err error, code RequestErrorCode) bool {
	var e *RequestError
	return errors.As(err, &e) && e.Code == code
}
