// Package httpwire implements the minimal HTTP/1.1 client codec used to talk
// to the workload API over a Unix domain socket.
//
// The codec works directly on a raw byte stream, one request per connection:
//
//   - LineReader buffers the connection and finds CRLF-terminated lines one
//     byte at a time, so header parsing never over-reads into the body.
//   - ChunkedReader decodes a chunked body lazily, one pull at a time.
//   - Request.WriteHeader serializes the request line and header block.
//   - ReadResponse parses the status line and headers and attaches a body
//     whose framing (chunked, fixed length, or empty) is decided once.
//
// Every response body owns the connection: reading it to io.EOF or calling
// Close releases the socket.
//
// Usage:
//
//	lr := httpwire.NewLineReader(conn)
//	req := httpwire.NewRequest(http.MethodGet, "/trust-bundle?api-version=2019-01-30", "workload.sock", nil)
//	if err := req.WriteHeader(lr); err != nil {
//	    lr.Close()
//	    return err
//	}
//	resp, err := httpwire.ReadResponse(lr, req)
//	if err != nil {
//	    lr.Close()
//	    return err
//	}
//	defer resp.Body.Close()
//
// Keep-alive, pipelining, 100-continue and trailers are not supported: every
// request carries "Connection: close".
package httpwire
