package purchaseapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"

	"github.com/sufield/edgeauth/internal/adapters/outbound/udstransport"
	"github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
	"github.com/sufield/edgeauth/internal/httpwire"
	"github.com/sufield/edgeauth/internal/ports"
)

// ClientOpts contains optional configuration for the purchase client.
type ClientOpts struct {
	// BaseURL overrides "https://{gateway}".
	BaseURL string

	// Timeout bounds each call (default: 30 seconds).
	Timeout time.Duration

	// Transport replaces the TLS transport built from the trust bundle.
	Transport ports.Transport

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Client calls the gateway's purchase API.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	token     string
	transport ports.Transport
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClient returns a client for gatewayHostName that authenticates with
// token and trusts only the authorities in bundle.
func NewClient(gatewayHostName, token string, bundle *x509bundle.Bundle, opts *ClientOpts) (*Client, error) {
	if opts == nil {
		opts = &ClientOpts{}
	}
	if token == "" {
		return nil, fmt.Errorf("%w: token cannot be empty", ErrInvalidArgument)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		if gatewayHostName == "" {
			return nil, fmt.Errorf("%w: gateway host name cannot be empty", ErrInvalidArgument)
		}
		baseURL = "https://" + gatewayHostName
	}

	c := &Client{
		token:     token,
		transport: opts.Transport,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.transport == nil {
		if bundle == nil {
			return nil, fmt.Errorf("%w: trust bundle is required", ErrInvalidArgument)
		}
		tlsConfig := &tls.Config{
			RootCAs:    workloadapi.CertPool(bundle),
			MinVersion: tls.VersionTLS12,
		}
		c.transport = udstransport.NewNetTransport(baseURL,
			udstransport.WithTLSConfig(tlsConfig),
			udstransport.WithLogger(c.logger))
	}
	return c, nil
}

// GetPurchase fetches the purchase record of moduleID on deviceID.
func (c *Client) GetPurchase(ctx context.Context, deviceID, moduleID string) (*PurchaseInfo, error) {
	if deviceID == "" || moduleID == "" {
		return nil, fmt.Errorf("%w: device and module ids are required", ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := fmt.Sprintf("/devices/%s/modules/%s/purchase", url.QueryEscape(deviceID), url.QueryEscape(moduleID))
	req := httpwire.NewRequest(http.MethodGet, target, "", nil)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", c.token)

	resp, err := c.transport.RoundTrip(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "purchase api call", "target", target, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		if err != nil {
			return nil, fmt.Errorf("%w: read error body: %w", ErrRequestFailed, err)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var payload workloadapi.ErrorResponse
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return nil, apiErr
	}

	var info PurchaseInfo
	body := io.LimitReader(resp.Body, MaxResponseBodySize)
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	// The decoder stops after the first value; the body must still end cleanly.
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}
	return &info, nil
}
