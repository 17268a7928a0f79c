package udstransport_test

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptServer is a raw Unix socket server: each accepted connection is
// handed to handle together with the parsed request.
type scriptServer struct {
	path string
	done chan struct{}

	mu       sync.Mutex
	requests []*recordedRequest
	accepts  int
}

type recordedRequest struct {
	Method string
	Target string
	Host   string
	Header http.Header
	Body   []byte
	Close  bool
}

type handlerFunc func(conn net.Conn, done <-chan struct{})

// startScriptServer listens on a short socket path (sun_path is limited to
// about 108 bytes, which t.TempDir can exceed).
func startScriptServer(t *testing.T, handle handlerFunc) *scriptServer {
	t.Helper()

	dir, err := os.MkdirTemp("", "uds")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	s := &scriptServer{
		path: filepath.Join(dir, "w.sock"),
		done: make(chan struct{}),
	}
	ln, err := net.Listen("unix", s.path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	t.Cleanup(func() {
		close(s.done)
		_ = ln.Close()
		wg.Wait()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.accepts++
			s.mu.Unlock()

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				s.serve(conn, handle)
			}()
		}
	}()
	return s
}

func (s *scriptServer) serve(conn net.Conn, handle handlerFunc) {
	br := bufio.NewReader(conn)
	req, err := http.ReadRequest(br)
	if err != nil {
		return
	}
	body, _ := io.ReadAll(req.Body)

	s.mu.Lock()
	s.requests = append(s.requests, &recordedRequest{
		Method: req.Method,
		Target: req.RequestURI,
		Host:   req.Host,
		Header: req.Header,
		Body:   body,
		Close:  req.Close,
	})
	s.mu.Unlock()

	handle(conn, s.done)
}

func (s *scriptServer) lastRequest() *recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *scriptServer) acceptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepts
}

// reply writes a fixed response and closes the connection.
func reply(raw string) handlerFunc {
	return func(conn net.Conn, _ <-chan struct{}) {
		_, _ = io.WriteString(conn, raw)
	}
}

// replyAndHang writes raw, then keeps the connection open until the test ends
// or the peer closes it. closed receives a value once the peer has closed.
func replyAndHang(raw string, closed chan<- struct{}) handlerFunc {
	return func(conn net.Conn, done <-chan struct{}) {
		_, _ = io.WriteString(conn, raw)

		peerGone := make(chan struct{})
		go func() {
			defer close(peerGone)
			buf := make([]byte, 1)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				if _, err := conn.Read(buf); err != nil {
					var ne net.Error
					if errors.As(err, &ne) && ne.Timeout() {
						continue
					}
					return
				}
			}
		}()

		select {
		case <-peerGone:
			if closed != nil {
				closed <- struct{}{}
			}
		case <-done:
			_ = conn.Close()
			<-peerGone
		}
	}
}
