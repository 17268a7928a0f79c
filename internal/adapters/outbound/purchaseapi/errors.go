// errors.go contains sentinel errors and configuration constants for the purchaseapi package.
package purchaseapi

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultTimeout bounds one request, body included.
	DefaultTimeout = 30 * time.Second

	// MaxErrorBodySize limits how much of an error response body is read (in bytes).
	MaxErrorBodySize = 4096

	// MaxResponseBodySize limits the size of a successful response body.
	MaxResponseBodySize = 64 << 10
)

// Sentinel errors for inspectable error handling.
// These are compared using errors.Is().
var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("purchaseapi: invalid argument")

	// ErrRequestFailed indicates the request could not be completed.
	ErrRequestFailed = errors.New("purchaseapi: request failed")

	// ErrInvalidResponse indicates a 200 response whose body cannot be decoded.
	ErrInvalidResponse = errors.New("purchaseapi: invalid response from gateway")

	// ErrServerError indicates a non-200 status.
	ErrServerError = errors.New("purchaseapi: gateway returned error")
)

// APIError is a non-200 answer from the gateway. It matches ErrServerError.
type APIError struct {
	StatusCode int
	Body       string
	// Message is taken from a {"message": ...} body, if there was one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("purchaseapi: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("purchaseapi: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return ErrServerError
}
