package httpwire

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// LineReader wraps a connection with read buffering and a CRLF line reader.
//
// Reads go through an internal buffer; writes go straight to the connection.
// Closing the LineReader closes the connection.
//
// Thread Safety: a LineReader has a single reader. Close may be called from
// any goroutine, which is how pending reads are unblocked on cancellation.
type LineReader struct {
	conn io.ReadWriteCloser
	br   *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

// NewLineReader wraps conn. The LineReader takes ownership of conn.
func NewLineReader(conn io.ReadWriteCloser) *LineReader {
	return &LineReader{
		conn: conn,
		br:   bufio.NewReaderSize(conn, readBufferSize),
	}
}

// Read reads buffered bytes from the connection.
func (l *LineReader) Read(p []byte) (int, error) {
	return l.br.Read(p)
}

// ReadLine returns the next line with its trailing CRLF removed.
//
// Bytes are consumed one at a time so the reader never moves past the end of
// the line; anything after the CRLF stays buffered for the body. A CR or LF
// that is not part of a CRLF pair is kept as line data.
func (l *LineReader) ReadLine() (string, error) {
	var line []byte
	crFound := false
	for {
		b, err := l.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrTruncatedStream
			}
			return "", err
		}

		if crFound && b == '\n' {
			return string(line[:len(line)-1]), nil
		}

		if len(line) >= MaxLineLength {
			return "", ErrLineTooLong
		}
		line = append(line, b)
		crFound = b == '\r'
	}
}

// atEOF reports whether the connection is exhausted before any further byte.
func (l *LineReader) atEOF() bool {
	_, err := l.br.Peek(1)
	return errors.Is(err, io.EOF)
}

// Write writes p directly to the connection.
func (l *LineReader) Write(p []byte) (int, error) {
	return l.conn.Write(p)
}

// Close closes the underlying connection. It is safe to call more than once.
func (l *LineReader) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.conn.Close()
	})
	return l.closeErr
}
