// errors.go contains sentinel errors and configuration constants for the workloadapi package.
package workloadapi

import (
	"errors"
	"fmt"
	"time"
)

// Configuration defaults for the workload API client.
const (
	// DefaultTimeout bounds one request, body included.
	DefaultTimeout = 30 * time.Second

	// DefaultAPIVersion is the workload API version sent when none is configured.
	DefaultAPIVersion = "2019-01-30"

	// AlgorithmHMACSHA256 is the only signing algorithm the daemon supports.
	AlgorithmHMACSHA256 = "HMACSHA256"

	// MaxErrorBodySize limits how much of an error response body is read (in bytes).
	MaxErrorBodySize = 4096

	// MaxResponseBodySize limits the size of a successful response body.
	MaxResponseBodySize = 1 << 20 // 1 MiB
)

// Sentinel errors for inspectable error handling.
// These are compared using errors.Is().
var (
	// ErrInvalidEndpoint indicates the workload URI cannot be used.
	// It also matches the domain error that caused it.
	ErrInvalidEndpoint = errors.New("workloadapi: invalid endpoint")

	// ErrInvalidArgument indicates an invalid argument was provided to a method.
	ErrInvalidArgument = errors.New("workloadapi: invalid argument")

	// ErrFetchFailed indicates the request could not be completed. It wraps the
	// transport error.
	ErrFetchFailed = errors.New("workloadapi: request failed")

	// ErrInvalidResponse indicates that the server returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("workloadapi: invalid response from server")

	// ErrServerError indicates that the workload API returned a non-200 HTTP status.
	ErrServerError = errors.New("workloadapi: server returned error")
)

// APIError is a non-200 answer from the workload API.
// It matches ErrServerError.
type APIError struct {
	// StatusCode is the HTTP status.
	StatusCode int

	// Body is the raw response body, truncated to the configured limit.
	Body string

	// Payload is set when Body is an error document with a non-empty message.
	Payload *ErrorResponse
}

func (e *APIError) Error() string {
	if e.Payload != nil {
		return fmt.Sprintf("workloadapi: status %d: %s", e.StatusCode, e.Payload.Message)
	}
	if e.Body == "" {
		return fmt.Sprintf("workloadapi: status %d", e.StatusCode)
	}
	return fmt.Sprintf("workloadapi: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return ErrServerError
}

// Message returns the daemon's error message, or "" if the body had none.
func (e *APIError) Message() string {
	if e == nil || e.Payload == nil {
		return ""
	}
	return e.Payload.Message
}
