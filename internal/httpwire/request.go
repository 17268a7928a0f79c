package httpwire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const (
	sp   = ' '
	crlf = "\r\n"

	protoVersion = "HTTP/1.1"
)

// Request is an outgoing HTTP/1.1 request.
type Request struct {
	// Method is the request method, e.g. "GET" or "POST".
	Method string

	// Target is the request target in origin form (path and query).
	Target string

	// Host is the logical destination used when Header has no Host field.
	Host string

	// Header holds the request header fields in wire order.
	Header Header

	// Body is written after the header block, if non-empty.
	Body []byte
}

// NewRequest returns a request with an empty header.
func NewRequest(method, target, host string, body []byte) *Request {
	return &Request{
		Method: method,
		Target: target,
		Host:   host,
		Body:   body,
	}
}

// wireHeader returns the header block as it goes on the wire: Host is
// synthesized when missing, Connection is forced to "close", and
// Content-Length is added for a body that has no framing header.
// r.Header itself is left untouched.
func (r *Request) wireHeader() Header {
	h := r.Header.Clone()
	if !h.Has("Host") && r.Host != "" {
		h.Set("Host", r.Host)
	}
	h.Set("Connection", "close")
	if len(r.Body) > 0 && !h.Has("Content-Length") && !h.Has("Transfer-Encoding") {
		h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	return h
}

// SerializeHeader renders the request line and header block, ending with the
// blank line. The body is not included.
func (r *Request) SerializeHeader() ([]byte, error) {
	if !validToken(r.Method) {
		return nil, fmt.Errorf("%w: method %q", ErrInvalidRequest, r.Method)
	}
	if !validTarget(r.Target) {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidRequest, r.Target)
	}

	var buf bytes.Buffer
	// request-line = method SP request-target SP HTTP-version CRLF
	buf.WriteString(r.Method)
	buf.WriteByte(sp)
	buf.WriteString(r.Target)
	buf.WriteByte(sp)
	buf.WriteString(protoVersion)
	buf.WriteString(crlf)

	for _, f := range r.wireHeader().fields {
		if !validToken(f.Name) {
			return nil, fmt.Errorf("%w: name %q", ErrInvalidHeader, f.Name)
		}
		if !validFieldValue(f.Value) {
			return nil, fmt.Errorf("%w: value for %q", ErrInvalidHeader, f.Name)
		}
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString(crlf)
	}
	buf.WriteString(crlf)

	return buf.Bytes(), nil
}

// WriteHeader writes the serialized header block to w in a single write.
func (r *Request) WriteHeader(w io.Writer) error {
	b, err := r.SerializeHeader()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// validToken reports whether s is a non-empty RFC 9110 token.
func validToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// validTarget accepts origin-form targets ("/path?query") and "*" made of
// printable ASCII without spaces.
func validTarget(s string) bool {
	if s == "*" {
		return true
	}
	if s == "" || s[0] != '/' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] >= 0x7f {
			return false
		}
	}
	return true
}

// validFieldValue rejects control characters (other than HTAB) and non-ASCII
// bytes, which also rules out header injection through CR or LF.
func validFieldValue(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' {
			continue
		}
		if c < ' ' || c >= 0x7f {
			return false
		}
	}
	return true
}
