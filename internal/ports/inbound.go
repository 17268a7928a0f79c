package ports

import (
	"context"
	"time"
)

// CredentialProvider is the entrypoint for modules that need to call an
// upstream API with a SAS token.
//
// Error Contract:
// - Token and TrustBundle return the underlying WorkloadAPIClient errors unchanged (wrapped)
// - Both honor ctx cancellation
type CredentialProvider interface {
	// Token returns a SAS token valid for ttl from start.
	Token(ctx context.Context, start time.Time, ttl time.Duration) (string, error)

	// TrustBundle returns the PEM trust bundle of the workload API.
	TrustBundle(ctx context.Context) (string, error)
}
