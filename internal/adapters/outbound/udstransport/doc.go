// Package udstransport carries httpwire requests to the workload API.
//
// Two transports implement ports.Transport:
//
//   - UnixTransport dials a fresh AF_UNIX connection per request, writes the
//     request with the httpwire codec and parses the response from the same
//     connection. The response body owns the connection.
//   - NetTransport hands http and https endpoints to net/http unchanged and
//     converts the result into an httpwire.Response.
//
// ForEndpoint is the only place a transport is chosen from an endpoint
// scheme.
//
// Cancellation: the context passed to RoundTrip stays attached to the
// response body. Cancelling it closes the connection, which unblocks any
// pending read; the read then fails with an error matching both ErrCanceled
// and ctx.Err().
package udstransport
