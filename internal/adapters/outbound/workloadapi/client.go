// client.go contains the WorkloadAPIClient implementation.
package workloadapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sufield/edgeauth/internal/adapters/outbound/udstransport"
	"github.com/sufield/edgeauth/internal/domain"
	"github.com/sufield/edgeauth/internal/httpwire"
	"github.com/sufield/edgeauth/internal/ports"
)

const contentTypeJSON = "application/json"

// ClientOpts contains optional configuration for the workload API client.
type ClientOpts struct {
	// Timeout bounds each call, reading the body included (default: 30 seconds).
	Timeout time.Duration

	// Transport replaces the transport picked from the endpoint scheme.
	Transport ports.Transport

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger

	// MaxResponseBodySize caps a 200 body (default: 1 MiB).
	MaxResponseBodySize int64

	// MaxErrorBodySize caps how much of a non-200 body is kept (default: 4 KiB).
	MaxErrorBodySize int64
}

// Client is a workload API client (outbound adapter).
//
// Thread Safety: Client is safe for concurrent use by multiple goroutines.
// It holds no connection between calls.
type Client struct {
	endpoint        domain.Endpoint
	transport       ports.Transport
	timeout         time.Duration
	logger          *slog.Logger
	maxResponseBody int64
	maxErrorBody    int64
}

// NewClient creates a client for the workload API at uri.
//
// uri is resolved here, once: "unix:///path/to/workload.sock" or an http(s)
// URL. Any other scheme fails with ErrInvalidEndpoint, which also matches
// domain.ErrUnsupportedScheme. No connection is made.
//
// Example:
//
//	client, err := NewClient(os.Getenv("IOTEDGE_WORKLOADURI"), nil)
//	if err != nil {
//	    return fmt.Errorf("client creation failed: %w", err)
//	}
func NewClient(uri string, opts *ClientOpts) (*Client, error) {
	endpoint, err := domain.ParseEndpoint(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	// Apply defaults for optional configuration
	if opts == nil {
		opts = &ClientOpts{}
	}
	c := &Client{
		endpoint:        endpoint,
		transport:       opts.Transport,
		timeout:         opts.Timeout,
		logger:          opts.Logger,
		maxResponseBody: opts.MaxResponseBodySize,
		maxErrorBody:    opts.MaxErrorBodySize,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.maxResponseBody <= 0 {
		c.maxResponseBody = MaxResponseBodySize
	}
	if c.maxErrorBody <= 0 {
		c.maxErrorBody = MaxErrorBodySize
	}

	if c.transport == nil {
		c.transport, err = udstransport.ForEndpoint(endpoint, udstransport.WithLogger(c.logger))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
		}
	}
	return c, nil
}

// Endpoint returns the resolved endpoint.
func (c *Client) Endpoint() domain.Endpoint {
	return c.endpoint
}

// Sign asks the daemon to sign data with the key keyID of the given module.
//
// The request is
//
//	POST /modules/{moduleID}/genid/{generationID}/sign?api-version={apiVersion}
//	{"keyId": keyID, "algo": algorithm, "data": base64(data)}
//
// and the base64 digest of the answer is decoded before returning.
func (c *Client) Sign(ctx context.Context, apiVersion, moduleID, generationID, keyID, algorithm string, data []byte) ([]byte, error) {
	if err := requireArguments(
		"apiVersion", apiVersion,
		"moduleID", moduleID,
		"generationID", generationID,
		"keyID", keyID,
		"algorithm", algorithm,
	); err != nil {
		return nil, err
	}

	body, err := json.Marshal(SignRequest{
		KeyID: keyID,
		Algo:  algorithm,
		Data:  base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode sign request: %v", ErrInvalidArgument, err)
	}

	target := fmt.Sprintf("/modules/%s/genid/%s/sign?api-version=%s",
		url.QueryEscape(moduleID), url.QueryEscape(generationID), url.QueryEscape(apiVersion))
	req := httpwire.NewRequest(http.MethodPost, target, "", body)
	req.Header.Add("Accept", contentTypeJSON)
	req.Header.Add("Content-Type", contentTypeJSON)

	var resp SignResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	digest, err := resp.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return digest, nil
}

// TrustBundle fetches the PEM certificates the daemon trusts via
// GET /trust-bundle?api-version={apiVersion}.
func (c *Client) TrustBundle(ctx context.Context, apiVersion string) (string, error) {
	if err := requireArguments("apiVersion", apiVersion); err != nil {
		return "", err
	}

	req := httpwire.NewRequest(http.MethodGet, "/trust-bundle?api-version="+url.QueryEscape(apiVersion), "", nil)
	req.Header.Add("Accept", contentTypeJSON)

	var resp TrustBundleResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if err := resp.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp.Certificate, nil
}

// do sends req and decodes a 200 body into out. The body is always closed.
func (c *Client) do(ctx context.Context, req *httpwire.Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.RoundTrip(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrFetchFailed, req.Method, req.Target, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("workload api call",
		"method", req.Method,
		"target", req.Target,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxErrorBody))
		if err != nil {
			return fmt.Errorf("%w: read error body: %w", ErrFetchFailed, err)
		}
		return newAPIError(resp.StatusCode, body)
	}

	body := io.LimitReader(resp.Body, c.maxResponseBody)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		if isTransportError(err) {
			return fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
		}
		return fmt.Errorf("%w: decode failed: %v", ErrInvalidResponse, err)
	}
	// The decoder stops after the first value; the body must still end cleanly.
	if _, err := io.Copy(io.Discard, body); err != nil {
		return fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	return nil
}

// isTransportError reports whether a body read failed below the JSON layer.
func isTransportError(err error) bool {
	return errors.Is(err, udstransport.ErrConnection) ||
		errors.Is(err, udstransport.ErrCanceled) ||
		errors.Is(err, httpwire.ErrUnexpectedEOF) ||
		errors.Is(err, httpwire.ErrTruncatedStream) ||
		errors.Is(err, httpwire.ErrLineTooLong) ||
		errors.Is(err, httpwire.ErrChunkFraming) ||
		errors.Is(err, httpwire.ErrMalformedResponse)
}

// requireArguments takes name/value pairs and fails on the first empty value.
func requireArguments(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, pairs[i])
		}
	}
	return nil
}

// Compile-time interface compliance verification
var (
	_ ports.WorkloadAPIClient = (*Client)(nil)
)
