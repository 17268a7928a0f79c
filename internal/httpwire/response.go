package httpwire

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Response is a parsed HTTP/1.x response.
type Response struct {
	// StatusCode is the numeric status, e.g. 200.
	StatusCode int

	// Reason is the reason phrase; it may contain spaces.
	Reason string

	// ProtoMajor and ProtoMinor hold the response version.
	ProtoMajor int
	ProtoMinor int

	// Header holds the response fields in wire order, repeats included.
	Header Header

	// ContentLength is the fixed body length, or -1 when the body is chunked.
	// It is 0 for responses without a body.
	ContentLength int64

	// Chunked reports whether the body uses chunked transfer coding.
	Chunked bool

	// Body streams the payload. It owns the connection: reading it to io.EOF
	// or calling Close releases the socket.
	Body io.ReadCloser
}

// Proto returns the version as "HTTP/major.minor".
func (r *Response) Proto() string {
	return fmt.Sprintf("HTTP/%d.%d", r.ProtoMajor, r.ProtoMinor)
}

// ReadResponse parses a response from lr.
//
// req is the request the response answers; it may be nil. A HEAD request
// forces an empty body. On error the caller still owns lr and must close it.
func ReadResponse(lr *LineReader, req *Request) (*Response, error) {
	resp := &Response{}

	if lr.atEOF() {
		return nil, protocolErr("status line", "", ErrEmptyResponse)
	}
	line, err := lr.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("read status line: %w", err)
	}
	if err := parseStatusLine(resp, line); err != nil {
		return nil, err
	}

	if err := readHeader(lr, &resp.Header); err != nil {
		return nil, err
	}

	reader, err := selectFraming(resp, lr, req)
	if err != nil {
		return nil, err
	}
	resp.Body = newBody(reader, lr)
	return resp, nil
}

// parseStatusLine fills version, status code and reason from
// "HTTP/1.1 404 Not Found".
func parseStatusLine(resp *Response, line string) error {
	if strings.TrimSpace(line) == "" {
		return protocolErr("status line", line, ErrEmptyResponse)
	}

	parts := strings.SplitN(line, string(sp), 3)
	if len(parts) < 3 {
		return protocolErr("status line", line, ErrInvalidStatusLine)
	}

	major, minor, ok := parseVersion(parts[0])
	if !ok {
		return protocolErr("version", parts[0], ErrInvalidVersion)
	}
	resp.ProtoMajor, resp.ProtoMinor = major, minor

	code, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 3 || code < 100 || code > 599 {
		return protocolErr("status code", parts[1], ErrInvalidStatusCode)
	}
	resp.StatusCode = code
	resp.Reason = parts[2]
	return nil
}

// parseVersion parses "HTTP/major.minor" with decimal digits on both sides.
func parseVersion(s string) (major, minor int, ok bool) {
	rest, found := strings.CutPrefix(s, "HTTP/")
	if !found {
		return 0, 0, false
	}
	majorText, minorText, found := strings.Cut(rest, ".")
	if !found || !allDigits(majorText) || !allDigits(minorText) {
		return 0, 0, false
	}
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(minorText)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func allDigits(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// readHeader reads "name: value" lines up to the blank line ending the block.
func readHeader(lr *LineReader, h *Header) error {
	for {
		line, err := lr.ReadLine()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" {
			return nil
		}
		if h.Len() >= MaxHeaderCount {
			return protocolErr("header", "", ErrTooManyHeaders)
		}

		sep := strings.IndexByte(line, ':')
		if sep <= 0 {
			return protocolErr("header", line, ErrInvalidHeader)
		}
		name := strings.TrimSpace(line[:sep])
		if name == "" {
			return protocolErr("header", line, ErrInvalidHeader)
		}
		h.Add(name, strings.TrimSpace(line[sep+1:]))
	}
}

// selectFraming decides the body framing exactly once. Transfer-Encoding:
// chunked wins over Content-Length; neither means an empty body.
func selectFraming(resp *Response, lr *LineReader, req *Request) (io.Reader, error) {
	if !bodyAllowed(resp.StatusCode, req) {
		resp.ContentLength = 0
		return emptyReader{}, nil
	}

	if resp.Header.HasToken("Transfer-Encoding", "chunked") {
		resp.Chunked = true
		resp.ContentLength = -1
		return NewChunkedReader(lr), nil
	}

	values := resp.Header.Values("Content-Length")
	if len(values) == 0 {
		resp.ContentLength = 0
		return emptyReader{}, nil
	}

	n, err := parseContentLength(values)
	if err != nil {
		return nil, err
	}
	resp.ContentLength = n
	return &fixedReader{lr: lr, remaining: n}, nil
}

// parseContentLength accepts repeated Content-Length fields only when they agree.
func parseContentLength(values []string) (int64, error) {
	var n int64 = -1
	for _, v := range values {
		for _, elem := range strings.Split(v, ",") {
			elem = strings.TrimSpace(elem)
			if !allDecimal(elem) {
				return 0, protocolErr("content-length", v, ErrInvalidContentLength)
			}
			parsed, err := strconv.ParseInt(elem, 10, 64)
			if err != nil {
				return 0, protocolErr("content-length", v, ErrInvalidContentLength)
			}
			if n >= 0 && parsed != n {
				return 0, protocolErr("content-length", v, ErrInvalidContentLength)
			}
			n = parsed
		}
	}
	return n, nil
}

func allDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// bodyAllowed reports whether a response may carry a body (RFC 9112 §6.3).
func bodyAllowed(status int, req *Request) bool {
	if req != nil && req.Method == http.MethodHead {
		return false
	}
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
