package app

import (
	"context"
	"time"

	"github.com/sufield/edgeauth/internal/config"
)

// bootstrapTimeout applies when the caller's context has no deadline.
const bootstrapTimeout = 60 * time.Second

// Bootstrap wires an Application for settings and fetches its Identity:
// - Applies a default timeout if the caller didn't set one
// - Builds the workload API client for the configured URI
// - Issues a token and fetches the trust bundle concurrently
func Bootstrap(ctx context.Context, settings config.Settings, opts ...Option) (*Application, *Identity, error) {
	// Ensure we don't hang indefinitely if caller forgot a deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
	}

	a, err := New(settings, opts...)
	if err != nil {
		return nil, nil, err
	}
	id, err := a.Identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, id, nil
}
