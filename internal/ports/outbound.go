package ports

import (
	"context"

	"github.com/sufield/edgeauth/internal/httpwire"
)

// Transport performs a single request/response exchange.
//
// Every call uses its own connection. The returned response body owns that
// connection until it is read to io.EOF or closed; the caller must do one of
// the two on every path.
//
// Error Contract:
// - Returns udstransport.ErrConnection (wrapped) if the endpoint cannot be reached or I/O fails
// - Returns udstransport.ErrCanceled (wrapped, together with ctx.Err()) after cancellation
// - Returns httpwire.ErrMalformedResponse (wrapped) if the response cannot be parsed
type Transport interface {
	RoundTrip(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error)
}

// WorkloadAPIClient talks to the workload API of the local edge daemon.
//
// Error Contract:
// - Returns workloadapi.ErrInvalidArgument if a required argument is empty
// - Returns workloadapi.ErrServerError (as *workloadapi.APIError) for any non-200 status
// - Returns workloadapi.ErrInvalidResponse if a 200 body cannot be decoded
// - Returns workloadapi.ErrFetchFailed wrapping the Transport error otherwise
type WorkloadAPIClient interface {
	// Sign asks the daemon to HMAC data with the module key keyID.
	// Returns the raw digest bytes.
	Sign(ctx context.Context, apiVersion, moduleID, generationID, keyID, algorithm string, data []byte) ([]byte, error)

	// TrustBundle returns the concatenated PEM certificates the daemon trusts.
	TrustBundle(ctx context.Context, apiVersion string) (string, error)
}

// Signer signs data on behalf of one module with one key.
//
// Error Contract: same as WorkloadAPIClient.Sign.
type Signer interface {
	Sign(ctx context.Context, data []byte) ([]byte, error)
}
