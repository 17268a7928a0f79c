package httpwire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sufield/edgeauth/internal/assert"
)

// ChunkedReader decodes a chunked transfer-coded body from a LineReader.
//
// Decoding is pull-based: each Read consumes at most one chunk-size line and
// the bytes of a single chunk, so a caller can stop at any point and the
// remaining wire bytes stay unread. After the zero-size terminator (and any
// trailer lines, which are discarded) every Read returns io.EOF.
//
// A ChunkedReader is not safe for concurrent reads.
type ChunkedReader struct {
	lr        *LineReader
	remaining int64
	eof       bool
	err       error
}

// NewChunkedReader returns a reader positioned at the first chunk-size line.
func NewChunkedReader(lr *LineReader) *ChunkedReader {
	return &ChunkedReader{lr: lr}
}

// Read copies payload bytes into p. It returns 0 bytes only together with
// io.EOF (end of body) or an error, never 0, nil for a non-empty p.
func (c *ChunkedReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if c.remaining == 0 {
		size, err := c.readChunkSize()
		if err != nil {
			return 0, c.fail(err)
		}
		if size == 0 {
			if err := c.skipTrailer(); err != nil {
				return 0, c.fail(err)
			}
			c.eof = true
			return 0, io.EOF
		}
		c.remaining = size
	}

	want := int64(len(p))
	if want > c.remaining {
		want = c.remaining
	}
	n, err := c.lr.Read(p[:want])
	c.remaining -= int64(n)
	assert.Invariant(c.remaining >= 0, "chunk byte count must not go negative")

	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, c.fail(ErrUnexpectedEOF)
		}
		return n, c.fail(err)
	}
	if n == 0 {
		return 0, c.fail(ErrUnexpectedEOF)
	}

	if c.remaining == 0 {
		if err := c.readChunkEnd(); err != nil {
			return n, c.fail(err)
		}
	}
	return n, nil
}

// fail makes err sticky so later reads report the same failure.
func (c *ChunkedReader) fail(err error) error {
	c.err = err
	return err
}

// readChunkSize parses "size[;ext...]" as an unsigned hexadecimal integer.
func (c *ChunkedReader) readChunkSize() (int64, error) {
	line, err := c.lr.ReadLine()
	if err != nil {
		return 0, err
	}
	sizeText := line
	if i := strings.IndexByte(sizeText, ';'); i >= 0 {
		sizeText = sizeText[:i]
	}
	sizeText = strings.TrimSpace(sizeText)

	size, err := strconv.ParseUint(sizeText, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse chunk header %q", ErrChunkFraming, line)
	}
	return int64(size), nil
}

// readChunkEnd consumes the CRLF that follows chunk data.
func (c *ChunkedReader) readChunkEnd() error {
	line, err := c.lr.ReadLine()
	if err != nil {
		return err
	}
	if line != "" {
		return fmt.Errorf("%w: expected CRLF after chunk data, got %q", ErrChunkFraming, line)
	}
	return nil
}

// skipTrailer discards trailer fields up to and including the final blank line.
func (c *ChunkedReader) skipTrailer() error {
	for i := 0; ; i++ {
		line, err := c.lr.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		if i >= MaxHeaderCount {
			return ErrTooManyHeaders
		}
	}
}
