package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"golang.org/x/sync/errgroup"

	"github.com/sufield/edgeauth/internal/adapters/outbound/purchaseapi"
	"github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
	"github.com/sufield/edgeauth/internal/config"
	"github.com/sufield/edgeauth/internal/ports"
)

// ErrNoGateway is returned by PurchaseClient when no gateway host is configured.
var ErrNoGateway = errors.New("app: gateway host name is not configured")

// Application is the composition root that wires all dependencies.
type Application struct {
	Settings    config.Settings
	Client      *workloadapi.Client
	Credentials *TokenService

	logger *slog.Logger
	now    func() time.Time
}

// Identity is everything a module needs to call the gateway.
type Identity struct {
	// Token is the SAS token for the Authorization header.
	Token string

	// ExpiresAt is the token expiry, truncated to seconds.
	ExpiresAt time.Time

	// TrustBundle is the PEM bundle as returned by the daemon.
	TrustBundle string

	// Bundle is TrustBundle parsed for Settings.TrustDomain.
	Bundle *x509bundle.Bundle
}

// Option configures an Application.
type Option func(*Application, *workloadapi.ClientOpts)

// WithLogger sets the logger. A nil logger discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application, o *workloadapi.ClientOpts) {
		a.logger = logger
		o.Logger = logger
	}
}

// WithClock replaces time.Now as the token start time.
func WithClock(now func() time.Time) Option {
	return func(a *Application, _ *workloadapi.ClientOpts) {
		a.now = now
	}
}

// WithTransport replaces the transport chosen from the workload URI.
func WithTransport(t ports.Transport) Option {
	return func(_ *Application, o *workloadapi.ClientOpts) {
		o.Transport = t
	}
}

// New wires the workload client, the module signer and the token service
// for settings. No connection is made.
func New(settings config.Settings, opts ...Option) (*Application, error) {
	a := &Application{Settings: settings, now: time.Now}
	clientOpts := &workloadapi.ClientOpts{Timeout: settings.Timeout}
	for _, opt := range opts {
		opt(a, clientOpts)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := workloadapi.NewClient(settings.WorkloadURI, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("create workload api client: %w", err)
	}

	signer := workloadapi.NewModuleSigner(client, settings.Module, settings.KeyID, settings.APIVersion)
	credentials, err := NewTokenService(settings.Module, signer, client, settings.APIVersion, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create token service: %w", err)
	}

	a.Client = client
	a.Credentials = credentials
	return a, nil
}

// Token issues a token starting now and valid for the configured TTL.
func (a *Application) Token(ctx context.Context) (string, time.Time, error) {
	start := a.now()
	token, err := a.Credentials.Token(ctx, start, a.Settings.TokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Unix(start.Add(a.Settings.TokenTTL).Unix(), 0), nil
}

// Identity fetches the token and the trust bundle concurrently. The first
// failure cancels the other call.
func (a *Application) Identity(ctx context.Context) (*Identity, error) {
	var id Identity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		token, expiresAt, err := a.Token(gctx)
		if err != nil {
			return err
		}
		id.Token = token
		id.ExpiresAt = expiresAt
		return nil
	})
	g.Go(func() error {
		pem, err := a.Credentials.TrustBundle(gctx)
		if err != nil {
			return err
		}
		bundle, err := workloadapi.ParseTrustBundle(a.Settings.TrustDomain.Name(), pem)
		if err != nil {
			return fmt.Errorf("parse trust bundle: %w", err)
		}
		id.TrustBundle = pem
		id.Bundle = bundle
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "module identity ready",
		"module", a.Settings.Module.ModuleID(),
		"expires_at", id.ExpiresAt.UTC().Format(time.RFC3339),
		"trust_anchors", len(id.Bundle.X509Authorities()))
	return &id, nil
}

// PurchaseClient returns a purchase API client that authenticates with
// id.Token and trusts id.Bundle.
func (a *Application) PurchaseClient(id *Identity, opts *purchaseapi.ClientOpts) (*purchaseapi.Client, error) {
	if id == nil {
		return nil, fmt.Errorf("identity is nil")
	}
	if a.Settings.GatewayHostName == "" && (opts == nil || opts.BaseURL == "") {
		return nil, ErrNoGateway
	}
	if opts == nil {
		opts = &purchaseapi.ClientOpts{}
	}
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	return purchaseapi.NewClient(a.Settings.GatewayHostName, id.Token, id.Bundle, opts)
}
