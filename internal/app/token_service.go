package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sufield/edgeauth/internal/domain"
	"github.com/sufield/edgeauth/internal/ports"
)

// TokenService issues SAS tokens and trust bundles for one module.
// Pure core logic: the only I/O happens behind the injected ports.
type TokenService struct {
	module     *domain.Module
	signer     ports.Signer
	client     ports.WorkloadAPIClient
	apiVersion string
	logger     *slog.Logger
}

// NewTokenService creates a token service for module. A nil logger discards
// output.
func NewTokenService(module *domain.Module, signer ports.Signer, client ports.WorkloadAPIClient, apiVersion string, logger *slog.Logger) (*TokenService, error) {
	if err := module.Validate(); err != nil {
		return nil, err
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is nil")
	}
	if client == nil {
		return nil, fmt.Errorf("workload api client is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TokenService{
		module:     module,
		signer:     signer,
		client:     client,
		apiVersion: apiVersion,
		logger:     logger,
	}, nil
}

// Token returns a SAS token valid until start+ttl:
//
//	audience  = module audience (double percent-encoded)
//	expiry    = floor(start+ttl) in Unix seconds
//	signature = base64(Sign(audience + "\n" + expiry))
func (s *TokenService) Token(ctx context.Context, start time.Time, ttl time.Duration) (string, error) {
	audience := s.module.Audience()
	expiry := domain.BuildExpiry(start, ttl)

	digest, err := s.signer.Sign(ctx, domain.SigningPayload(audience, expiry))
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", s.module, err)
	}

	s.logger.DebugContext(ctx, "token issued", "module", s.module.ModuleID(), "expiry", expiry)
	return domain.BuildToken(audience, base64.StdEncoding.EncodeToString(digest), expiry), nil
}

// TrustBundle returns the daemon's PEM trust bundle.
func (s *TokenService) TrustBundle(ctx context.Context) (string, error) {
	bundle, err := s.client.TrustBundle(ctx, s.apiVersion)
	if err != nil {
		return "", fmt.Errorf("fetch trust bundle: %w", err)
	}
	return bundle, nil
}

var _ ports.CredentialProvider = (*TokenService)(nil)
