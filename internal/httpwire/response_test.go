package httpwire_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/edgeauth/internal/httpwire"
)

func TestReadResponse_StatusLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		wantCode   int
		wantReason string
		wantProto  string
	}{
		{name: "ok", line: "HTTP/1.1 200 OK", wantCode: 200, wantReason: "OK", wantProto: "HTTP/1.1"},
		{name: "reason with spaces", line: "HTTP/1.1 404 Not Found", wantCode: 404, wantReason: "Not Found", wantProto: "HTTP/1.1"},
		{name: "http 1.0", line: "HTTP/1.0 500 Internal Server Error", wantCode: 500, wantReason: "Internal Server Error", wantProto: "HTTP/1.0"},
		{name: "empty reason", line: "HTTP/1.1 204 ", wantCode: 204, wantReason: "", wantProto: "HTTP/1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, _, err := readResponse(tt.line + "\r\n\r\n")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantReason, resp.Reason)
			assert.Equal(t, tt.wantProto, resp.Proto())
		})
	}
}

func TestReadResponse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{name: "empty stream", script: "", wantErr: httpwire.ErrEmptyResponse},
		{name: "blank status line", script: "\r\n\r\n", wantErr: httpwire.ErrEmptyResponse},
		{name: "two components", script: "HTTP/1.1 200\r\n\r\n", wantErr: httpwire.ErrInvalidStatusLine},
		{name: "one component", script: "garbage\r\n\r\n", wantErr: httpwire.ErrInvalidStatusLine},
		{name: "wrong scheme", script: "HTTX/1.1 200 OK\r\n\r\n", wantErr: httpwire.ErrInvalidVersion},
		{name: "missing minor", script: "HTTP/1 200 OK\r\n\r\n", wantErr: httpwire.ErrInvalidVersion},
		{name: "non-numeric version", script: "HTTP/a.b 200 OK\r\n\r\n", wantErr: httpwire.ErrInvalidVersion},
		{name: "non-numeric code", script: "HTTP/1.1 abc OK\r\n\r\n", wantErr: httpwire.ErrInvalidStatusCode},
		{name: "two-digit code", script: "HTTP/1.1 99 OK\r\n\r\n", wantErr: httpwire.ErrInvalidStatusCode},
		{name: "code out of range", script: "HTTP/1.1 600 Nope\r\n\r\n", wantErr: httpwire.ErrInvalidStatusCode},
		{name: "signed code", script: "HTTP/1.1 +20 OK\r\n\r\n", wantErr: httpwire.ErrInvalidStatusCode},
		{name: "header without colon", script: "HTTP/1.1 200 OK\r\nNoColon\r\n\r\n", wantErr: httpwire.ErrInvalidHeader},
		{name: "header with empty name", script: "HTTP/1.1 200 OK\r\n: value\r\n\r\n", wantErr: httpwire.ErrInvalidHeader},
		{name: "whitespace-only header line", script: "HTTP/1.1 200 OK\r\n \r\nX-After: 1\r\n\r\n", wantErr: httpwire.ErrInvalidHeader},
		{name: "invalid content-length", script: "HTTP/1.1 200 OK\r\nContent-Length: abc\r\n\r\n", wantErr: httpwire.ErrInvalidContentLength},
		{name: "negative content-length", script: "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n", wantErr: httpwire.ErrInvalidContentLength},
		{name: "conflicting content-length list", script: "HTTP/1.1 200 OK\r\nContent-Length: 5, 6\r\n\r\n", wantErr: httpwire.ErrInvalidContentLength},
		{name: "conflicting content-length fields", script: "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\n", wantErr: httpwire.ErrInvalidContentLength},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, _, err := readResponse(tt.script)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, httpwire.ErrMalformedResponse)

			var perr *httpwire.ProtocolError
			assert.True(t, errors.As(err, &perr), "error is a *ProtocolError")
		})
	}
}

func TestReadResponse_TruncatedHeader(t *testing.T) {
	t.Parallel()

	_, _, err := readResponse("HTTP/1.1 200 OK\r\nContent-Type: text/pl")
	assert.ErrorIs(t, err, httpwire.ErrTruncatedStream)
}

func TestReadResponse_TooManyHeaders(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK\r\n")
	for i := 0; i <= httpwire.MaxHeaderCount; i++ {
		fmt.Fprintf(&b, "X-H%d: v\r\n", i)
	}
	b.WriteString("\r\n")

	_, _, err := readResponse(b.String())
	assert.ErrorIs(t, err, httpwire.ErrTooManyHeaders)
}

func TestReadResponse_Header(t *testing.T) {
	t.Parallel()

	resp, _, err := readResponse("HTTP/1.1 200 OK\r\n" +
		"Set-Cookie: a=1\r\n" +
		"content-type:   application/json  \r\n" +
		"Set-Cookie: b=2\r\n" +
		"X-Empty:\r\n" +
		"\r\n")
	require.NoError(t, err)

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Header.Values("set-cookie"))
	assert.True(t, resp.Header.Has("X-Empty"))
	assert.Empty(t, resp.Header.Get("X-Empty"))
	assert.Equal(t, 4, resp.Header.Len())
}

func TestReadResponse_Framing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		script      string
		method      string
		wantBody    string
		wantLength  int64
		wantChunked bool
	}{
		{
			name:       "content-length",
			script:     "HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nWikiEXTRA",
			wantBody:   "Wiki",
			wantLength: 4,
		},
		{
			name:       "agreeing content-length list",
			script:     "HTTP/1.1 200 OK\r\nContent-Length: 4, 4\r\n\r\nWiki",
			wantBody:   "Wiki",
			wantLength: 4,
		},
		{
			name:        "chunked",
			script:      "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n",
			wantBody:    "Wikipedia",
			wantLength:  -1,
			wantChunked: true,
		},
		{
			name:        "chunked wins over content-length",
			script:      "HTTP/1.1 200 OK\r\nContent-Length: 100\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n0\r\n\r\n",
			wantBody:    "Wiki",
			wantLength:  -1,
			wantChunked: true,
		},
		{
			name:        "chunked in a coding list",
			script:      "HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip, Chunked\r\n\r\n2\r\nhi\r\n0\r\n\r\n",
			wantBody:    "hi",
			wantLength:  -1,
			wantChunked: true,
		},
		{
			name:     "no framing headers",
			script:   "HTTP/1.1 200 OK\r\n\r\nignored",
			wantBody: "",
		},
		{
			name:     "no content",
			script:   "HTTP/1.1 204 No Content\r\nContent-Length: 7\r\n\r\nignored",
			wantBody: "",
		},
		{
			name:     "not modified",
			script:   "HTTP/1.1 304 Not Modified\r\nTransfer-Encoding: chunked\r\n\r\n",
			wantBody: "",
		},
		{
			name:     "head request",
			script:   "HTTP/1.1 200 OK\r\nContent-Length: 7\r\n\r\n",
			method:   http.MethodHead,
			wantBody: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req *httpwire.Request
			if tt.method != "" {
				req = httpwire.NewRequest(tt.method, "/", "h", nil)
			}

			for _, conn := range []*fakeConn{newFakeConn(tt.script), newTrickleConn(tt.script)} {
				resp, err := httpwire.ReadResponse(httpwire.NewLineReader(conn), req)
				require.NoError(t, err)
				assert.Equal(t, tt.wantLength, resp.ContentLength)
				assert.Equal(t, tt.wantChunked, resp.Chunked)

				got, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(got))
				assert.True(t, conn.closed(), "connection released at end of body")
			}
		})
	}
}

func TestReadResponse_NotFoundScenario(t *testing.T) {
	t.Parallel()

	payload := `{"message":"Module not found"}`
	resp, conn, err := readResponse(fmt.Sprintf("HTTP/1.1 404 Not Found\r\n"+
		"Content-Type: application/json\r\n"+
		"Content-Length: %d\r\n\r\n%s", len(payload), payload))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", resp.Reason)
	assert.False(t, conn.closed(), "body not yet consumed")

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(got))
	assert.True(t, conn.closed())
}

func TestReadResponse_ShortFixedBody(t *testing.T) {
	t.Parallel()

	resp, conn, err := readResponse("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc")
	require.NoError(t, err)

	got, err := io.ReadAll(resp.Body)
	assert.ErrorIs(t, err, httpwire.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "abc", string(got))
	assert.True(t, conn.closed(), "connection released on failure")
}

func TestResponseBody_Close(t *testing.T) {
	t.Parallel()

	resp, conn, err := readResponse("HTTP/1.1 200 OK\r\nContent-Length: 9\r\n\r\nWikipedia")
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Wiki", string(buf[:n]))

	require.NoError(t, resp.Body.Close())
	assert.True(t, conn.closed())
	require.NoError(t, resp.Body.Close(), "close is idempotent")
	assert.Equal(t, int32(1), conn.closes.Load())

	_, err = resp.Body.Read(buf)
	assert.ErrorIs(t, err, httpwire.ErrBodyClosed)
}

func TestResponseBody_EOFAfterExhaustion(t *testing.T) {
	t.Parallel()

	resp, _, err := readResponse("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
	require.NoError(t, err)

	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)

	n, err := resp.Body.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, resp.Body.Close())
}

// TestReadResponse_NetHTTPWriterProperty serializes responses with
// net/http and checks the parser recovers status, framing and body.
func TestReadResponse_NetHTTPWriterProperty(t *testing.T) {
	t.Parallel()

	codes := []int{
		http.StatusOK, http.StatusCreated, http.StatusBadRequest,
		http.StatusNotFound, http.StatusInternalServerError,
	}

	property := func(codeIdx uint8, body []byte, chunked bool, extra []byte) bool {
		code := codes[int(codeIdx)%len(codes)]
		src := &http.Response{
			StatusCode: code,
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(body)),
		}
		if chunked && len(body) > 0 {
			src.ContentLength = -1
			src.TransferEncoding = []string{"chunked"}
		} else {
			src.ContentLength = int64(len(body))
		}

		wantChunked := src.TransferEncoding != nil

		var wire bytes.Buffer
		if err := src.Write(&wire); err != nil {
			return false
		}
		wire.Write(extra)

		conn := newTrickleConn(wire.String())
		resp, err := httpwire.ReadResponse(httpwire.NewLineReader(conn), nil)
		if err != nil {
			return false
		}
		got, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		return resp.StatusCode == code &&
			resp.Reason == http.StatusText(code) &&
			resp.Header.Get("Content-Type") == "application/json" &&
			resp.Chunked == wantChunked &&
			bytes.Equal(got, body) &&
			conn.closed()
	}

	if err := quick.Check(property, chunkPBTConfig()); err != nil {
		t.Error(err)
	}
}
