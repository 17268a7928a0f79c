// errors.go contains sentinel errors and limits for the httpwire package.
package httpwire

import (
	"errors"
	"fmt"
	"io"
)

// Limits applied while parsing a response.
const (
	// MaxLineLength caps a single status, header, or chunk-size line (in bytes).
	MaxLineLength = 64 << 10

	// MaxHeaderCount caps the number of header lines in one response.
	MaxHeaderCount = 256

	// readBufferSize is the size of the buffer placed in front of the connection.
	readBufferSize = 4096
)

// Sentinel errors for inspectable error handling.
// These are compared using errors.Is().
var (
	// ErrTruncatedStream indicates the stream ended before a CRLF was seen.
	ErrTruncatedStream = fmt.Errorf("httpwire: truncated stream: %w", io.ErrUnexpectedEOF)

	// ErrUnexpectedEOF indicates the stream ended while body bytes were still expected.
	ErrUnexpectedEOF = fmt.Errorf("httpwire: unexpected end of body: %w", io.ErrUnexpectedEOF)

	// ErrLineTooLong indicates a line exceeded MaxLineLength.
	ErrLineTooLong = errors.New("httpwire: line too long")

	// ErrChunkFraming indicates an unparsable chunk-size line or a missing chunk terminator.
	ErrChunkFraming = errors.New("httpwire: invalid chunk framing")

	// ErrMalformedResponse is wrapped by every response parsing failure.
	ErrMalformedResponse = errors.New("httpwire: malformed response")

	// ErrEmptyResponse indicates the peer closed the connection without sending a status line.
	ErrEmptyResponse = errors.New("httpwire: response is empty")

	// ErrInvalidStatusLine indicates the status line has fewer than three components.
	ErrInvalidStatusLine = errors.New("httpwire: status line is not valid")

	// ErrInvalidVersion indicates the status line version is not HTTP/major.minor.
	ErrInvalidVersion = errors.New("httpwire: version is not valid")

	// ErrInvalidStatusCode indicates the status code is not an integer in 100-599.
	ErrInvalidStatusCode = errors.New("httpwire: status code is not valid")

	// ErrInvalidHeader indicates a header line without a colon, with an empty name,
	// or a request header that cannot be put on the wire.
	ErrInvalidHeader = errors.New("httpwire: header is invalid")

	// ErrTooManyHeaders indicates the response carried more than MaxHeaderCount headers.
	ErrTooManyHeaders = errors.New("httpwire: too many headers")

	// ErrInvalidContentLength indicates a Content-Length that is not a non-negative integer.
	ErrInvalidContentLength = errors.New("httpwire: content-length is not valid")

	// ErrInvalidRequest indicates a request whose method or target cannot be serialized.
	ErrInvalidRequest = errors.New("httpwire: request is not valid")

	// ErrBodyClosed is returned when reading a body after Close.
	ErrBodyClosed = errors.New("httpwire: read on closed body")
)

// ProtocolError describes a response that could not be parsed.
//
// It matches both ErrMalformedResponse and the specific sentinel in Err:
//
//	if errors.Is(err, httpwire.ErrInvalidStatusCode) { ... }
type ProtocolError struct {
	// Op names the parsing step ("status line", "header", "content-length").
	Op string
	// Line is the offending wire line, if any.
	Line string
	// Err is the specific sentinel.
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("%v (%s)", e.Err, e.Op)
	}
	return fmt.Sprintf("%v (%s %q)", e.Err, e.Op, e.Line)
}

func (e *ProtocolError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}

func protocolErr(op, line string, err error) error {
	return &ProtocolError{Op: op, Line: line, Err: err}
}
