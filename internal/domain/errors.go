package domain

import (
	"errors"
)

// Sentinel errors for common domain failures
// Use with errors.Is() for checking and fmt.Errorf("%w", ...) for wrapping with context

var (
	// ErrInvalidEndpoint indicates the endpoint URI cannot be parsed or lacks a host or socket path
	ErrInvalidEndpoint = errors.New("endpoint is invalid")

	// ErrUnsupportedScheme indicates an endpoint scheme other than http, https or unix
	ErrUnsupportedScheme = errors.New("endpoint scheme is not supported")

	// ErrEmptyTrustBundle indicates an empty trust bundle was supplied
	ErrEmptyTrustBundle = errors.New("trust bundle cannot be empty")

	// ErrInvalidTrustBundle indicates the trust bundle holds no certificate block
	ErrInvalidTrustBundle = errors.New("trust bundle contains no certificate")
)

// Validation errors for specific entities

var (
	// ErrModuleInvalid indicates module identity validation failed
	ErrModuleInvalid = errors.New("module validation failed")
)
