package workloadapi_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wlapi "github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
	"github.com/sufield/edgeauth/internal/httpwire"
)

// startRawDaemon answers every request on a Unix socket with response
// verbatim and then closes the connection. It returns the unix:// URI.
func startRawDaemon(t *testing.T, response string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "wl")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "workload.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	t.Cleanup(func() {
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
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				req, err := http.ReadRequest(bufio.NewReader(conn))
				if err != nil {
					return
				}
				_, _ = io.Copy(io.Discard, req.Body)
				_, _ = io.WriteString(conn, response)
			}()
		}
	}()
	return "unix://" + path
}

func TestClient_TruncatedBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "error body without last chunk",
			response: "HTTP/1.1 500 Internal\r\nTransfer-Encoding: chunked\r\n\r\n1b\r\n{\"message\":\"boom\"}xxxxxxxxx\r\n",
			wantErr:  httpwire.ErrTruncatedStream,
		},
		{
			name:     "error body ends inside a chunk",
			response: "HTTP/1.1 500 Internal\r\nTransfer-Encoding: chunked\r\n\r\n1b\r\n{\"message\":\"boom\"}",
			wantErr:  httpwire.ErrUnexpectedEOF,
		},
		{
			name:     "error body shorter than content-length",
			response: "HTTP/1.1 500 Internal\r\nContent-Length: 64\r\n\r\n{\"message\":\"boom\"}",
			wantErr:  httpwire.ErrUnexpectedEOF,
		},
		{
			name:     "ok body without last chunk",
			response: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n15\r\n{\"certificate\":\"abc\"}\r\n",
			wantErr:  httpwire.ErrTruncatedStream,
		},
		{
			name:     "ok body shorter than content-length",
			response: "HTTP/1.1 200 OK\r\nContent-Length: 64\r\n\r\n{\"certificate\":\"abc\"}",
			wantErr:  httpwire.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := wlapi.NewClient(startRawDaemon(t, tt.response), nil)
			require.NoError(t, err)

			pem, err := client.TrustBundle(context.Background(), apiVersion)
			assert.Empty(t, pem)
			assert.ErrorIs(t, err, wlapi.ErrFetchFailed)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *wlapi.APIError
			assert.False(t, errors.As(err, &apiErr), "truncated body reported as %v", err)
		})
	}
}

func TestClient_CompleteChunkedBody(t *testing.T) {
	t.Parallel()

	client, err := wlapi.NewClient(startRawDaemon(t,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n15\r\n{\"certificate\":\"abc\"}\r\n0\r\n\r\n"), nil)
	require.NoError(t, err)

	pem, err := client.TrustBundle(context.Background(), apiVersion)
	require.NoError(t, err)
	assert.Equal(t, "abc", pem)
}
