package httpwire_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing/iotest"

	"github.com/sufield/edgeauth/internal/httpwire"
)

// fakeConn is an in-memory connection: reads come from a fixed script,
// writes are captured.
type fakeConn struct {
	r       io.Reader
	written bytes.Buffer
	closes  atomic.Int32
}

func newFakeConn(script string) *fakeConn {
	return &fakeConn{r: strings.NewReader(script)}
}

// newTrickleConn delivers the script one byte per Read call, like a peer
// that flushes after every byte.
func newTrickleConn(script string) *fakeConn {
	return &fakeConn{r: iotest.OneByteReader(strings.NewReader(script))}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.closes.Load() > 0 {
		return 0, io.ErrClosedPipe
	}
	return c.r.Read(p)
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.closes.Load() > 0 {
		return 0, io.ErrClosedPipe
	}
	return c.written.Write(p)
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	return nil
}

func (c *fakeConn) closed() bool {
	return c.closes.Load() > 0
}

// chunkEncode splits payload into chunks of the given sizes (cycled) and
// renders them with chunked framing, terminator included.
func chunkEncode(payload []byte, sizes []int) string {
	var b strings.Builder
	for len(payload) > 0 {
		size := len(payload)
		if len(sizes) > 0 {
			size = sizes[0]
			sizes = append(sizes[1:], sizes[0])
		}
		if size > len(payload) {
			size = len(payload)
		}
		fmt.Fprintf(&b, "%x\r\n", size)
		b.Write(payload[:size])
		b.WriteString("\r\n")
		payload = payload[size:]
	}
	b.WriteString("0\r\n\r\n")
	return b.String()
}

func readResponse(script string) (*httpwire.Response, *fakeConn, error) {
	conn := newFakeConn(script)
	resp, err := httpwire.ReadResponse(httpwire.NewLineReader(conn), nil)
	return resp, conn, err
}
