// Package edgeauth gives an IoT Edge module the credentials it needs to call
// an upstream HTTPS API: a SAS token signed by the edge daemon with the
// module's key, and the trust bundle the daemon publishes.
//
// Inside a module started by the edge runtime the IOTEDGE_* environment
// variables are enough; a YAML file can add or override settings.
//
// Quick Start:
//
//	p, err := edgeauth.NewProvider("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, expiresAt, err := p.Token(ctx)
//
// HTTP client that trusts the daemon's bundle and sends a fresh token:
//
//	client, err := p.HTTPClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Get("https://gateway/devices/dev/modules/mod/purchase")
package edgeauth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sufield/edgeauth/internal/adapters/outbound/purchaseapi"
	"github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
	"github.com/sufield/edgeauth/internal/app"
	"github.com/sufield/edgeauth/internal/config"
)

// ConfigEnv names an optional config file used by the package-level helpers.
const ConfigEnv = "EDGEAUTH_CONFIG"

// maxRefreshMargin caps how long before expiry a cached token is replaced.
const maxRefreshMargin = 5 * time.Minute

// PurchaseInfo is the gateway's answer to a purchase query.
type PurchaseInfo = purchaseapi.PurchaseInfo

// Purchase status values.
const (
	PurchaseNotFound = purchaseapi.PurchaseNotFound
	PurchaseComplete = purchaseapi.PurchaseComplete
)

// Errors callers can match with errors.Is.
var (
	ErrInvalidConfig = config.ErrInvalidConfig
	ErrNoGateway     = app.ErrNoGateway

	// ErrWorkloadAPI wraps every failure to reach or use the workload API.
	ErrWorkloadAPI = errors.New("edgeauth: workload api call failed")
)

// Option configures a Provider.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger. A nil logger discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now as the token start time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Provider issues tokens for one module.
//
// Thread Safety: Provider is safe for concurrent use.
type Provider struct {
	app *app.Application
	now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewProvider loads configPath (skipped when empty), applies the environment
// and validates the result. No connection is made.
func NewProvider(configPath string, opts ...Option) (*Provider, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.Validate(cfg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(settings, app.WithLogger(o.logger), app.WithClock(o.now))
	if err != nil {
		return nil, err
	}
	return &Provider{app: a, now: o.now}, nil
}

// Token issues a new token valid for the configured TTL and returns it with
// its expiry.
func (p *Provider) Token(ctx context.Context) (string, time.Time, error) {
	token, expiresAt, err := p.app.Token(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrWorkloadAPI, err)
	}
	return token, expiresAt, nil
}

// TrustBundle returns the daemon's trust bundle as concatenated PEM.
func (p *Provider) TrustBundle(ctx context.Context) (string, error) {
	pem, err := p.app.Credentials.TrustBundle(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWorkloadAPI, err)
	}
	return pem, nil
}

// TLSConfig returns a client TLS configuration whose roots are the daemon's
// trust bundle.
func (p *Provider) TLSConfig(ctx context.Context) (*tls.Config, error) {
	pem, err := p.TrustBundle(ctx)
	if err != nil {
		return nil, err
	}
	bundle, err := workloadapi.ParseTrustBundle(p.app.Settings.TrustDomain.Name(), pem)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		RootCAs:    workloadapi.CertPool(bundle),
		MinVersion: tls.VersionTLS12,
	}, nil
}

// HTTPClient returns a client that trusts the daemon's bundle and sets the
// Authorization header of every request to a cached token, renewed shortly
// before it expires.
func (p *Provider) HTTPClient(ctx context.Context) (*http.Client, error) {
	tlsConfig, err := p.TLSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &tokenTransport{
			provider: p,
			base:     &http.Transport{TLSClientConfig: tlsConfig},
		},
	}, nil
}

// Purchase asks the gateway whether this module was purchased.
// baseURL overrides https://{gateway_hostname} when non-empty.
func (p *Provider) Purchase(ctx context.Context, baseURL string) (*PurchaseInfo, error) {
	id, err := p.app.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkloadAPI, err)
	}
	client, err := p.app.PurchaseClient(id, &purchaseapi.ClientOpts{BaseURL: baseURL})
	if err != nil {
		return nil, err
	}
	module := p.app.Settings.Module
	return client.GetPurchase(ctx, module.DeviceID(), module.ModuleID())
}

// cachedToken returns the cached token or issues a new one when it is
// within the refresh margin of expiring.
func (p *Provider) cachedToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	margin := min(p.app.Settings.TokenTTL/2, maxRefreshMargin)
	if p.token != "" && p.now().Before(p.expiresAt.Add(-margin)) {
		return p.token, nil
	}

	token, expiresAt, err := p.Token(ctx)
	if err != nil {
		return "", err
	}
	p.token = token
	p.expiresAt = expiresAt
	return token, nil
}

type tokenTransport struct {
	provider *Provider
	base     http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.provider.cachedToken(req.Context())
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", token)
	return t.base.RoundTrip(req)
}

// Token issues a token using the environment and the optional file named
// by EDGEAUTH_CONFIG.
func Token(ctx context.Context) (string, time.Time, error) {
	p, err := NewProvider(os.Getenv(ConfigEnv))
	if err != nil {
		return "", time.Time{}, err
	}
	return p.Token(ctx)
}

// TrustBundle fetches the trust bundle using the environment and the
// optional file named by EDGEAUTH_CONFIG.
func TrustBundle(ctx context.Context) (string, error) {
	p, err := NewProvider(os.Getenv(ConfigEnv))
	if err != nil {
		return "", err
	}
	return p.TrustBundle(ctx)
}
