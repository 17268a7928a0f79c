package workloadapi

import (
	"context"

	"github.com/sufield/edgeauth/internal/domain"
	"github.com/sufield/edgeauth/internal/ports"
)

// ModuleSigner binds a workload API client to one module and one key.
type ModuleSigner struct {
	client       ports.WorkloadAPIClient
	apiVersion   string
	moduleID     string
	generationID string
	keyID        string
}

// NewModuleSigner returns a signer for module using keyID. An empty
// apiVersion selects DefaultAPIVersion.
func NewModuleSigner(client ports.WorkloadAPIClient, module *domain.Module, keyID, apiVersion string) *ModuleSigner {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &ModuleSigner{
		client:       client,
		apiVersion:   apiVersion,
		moduleID:     module.ModuleID(),
		generationID: module.GenerationID(),
		keyID:        keyID,
	}
}

// Sign signs data with HMAC-SHA256 through the daemon.
func (s *ModuleSigner) Sign(ctx context.Context, data []byte) ([]byte, error) {
	return s.client.Sign(ctx, s.apiVersion, s.moduleID, s.generationID, s.keyID, AlgorithmHMACSHA256, data)
}

var _ ports.Signer = (*ModuleSigner)(nil)
