package httpwire

import (
	"errors"
	"io"
	"sync"
)

// emptyReader is the body of a response with no framing headers.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// fixedReader yields exactly remaining bytes and reports a short stream as
// ErrUnexpectedEOF.
type fixedReader struct {
	lr        *LineReader
	remaining int64
}

func (f *fixedReader) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}
	n, err := f.lr.Read(p)
	f.remaining -= int64(n)
	if errors.Is(err, io.EOF) && f.remaining > 0 {
		return n, ErrUnexpectedEOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	return n, nil
}

// body releases the connection when it is closed or when the framed payload
// has been read to the end (or failed).
type body struct {
	r  io.Reader
	lr *LineReader

	mu     sync.Mutex
	closed bool
	done   bool
}

func newBody(r io.Reader, lr *LineReader) *body {
	return &body{r: r, lr: lr}
}

func (b *body) Read(p []byte) (int, error) {
	b.mu.Lock()
	closed, done := b.closed, b.done
	b.mu.Unlock()
	if closed {
		return 0, ErrBodyClosed
	}
	if done {
		return 0, io.EOF
	}

	n, err := b.r.Read(p)
	if err != nil {
		b.release()
		if errors.Is(err, io.EOF) {
			b.mu.Lock()
			b.done = true
			b.mu.Unlock()
		}
	}
	return n, err
}

// release closes the connection without marking the body closed, so a fully
// read body keeps returning io.EOF.
func (b *body) release() {
	_ = b.lr.Close()
}

// Close releases the connection. Further reads return ErrBodyClosed.
func (b *body) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return b.lr.Close()
}
