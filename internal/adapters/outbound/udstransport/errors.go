// errors.go contains sentinel errors and configuration constants for the udstransport package.
package udstransport

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDialTimeout bounds connection setup when no timeout is configured.
const DefaultDialTimeout = 10 * time.Second

// Sentinel errors for inspectable error handling.
// These are compared using errors.Is().
var (
	// ErrConnection indicates the endpoint could not be reached or socket I/O failed.
	ErrConnection = errors.New("udstransport: connection error")

	// ErrCanceled indicates the caller's context ended before the exchange completed.
	// Errors matching ErrCanceled also match the context's own error.
	ErrCanceled = errors.New("udstransport: operation canceled")
)

// ConnectionError describes a failed dial, write or read.
// It matches ErrConnection and the underlying OS error.
type ConnectionError struct {
	// Op is "dial", "write", "read" or "do".
	Op string
	// Addr is the socket path or URL.
	Addr string
	// Err is the underlying error.
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("udstransport: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

func canceled(ctxErr error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, ctxErr)
}
