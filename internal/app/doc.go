// Package app contains the application's composition root.
// It wires the workload API adapter and the pure token logic together and
// exposes the credential operations used by the CLI and the root facade.
//
// Files
// - token_service.go
//   - TokenService: implements ports.CredentialProvider. Builds SAS tokens by
//     signing the audience and expiry through a ports.Signer, and passes the
//     trust bundle through from the workload API.
//
// - application.go
//   - Application: holds the validated settings, the workload client and the
//     TokenService built from them.
//   - Identity: fetches a token and the trust bundle concurrently.
//   - PurchaseClient: builds a purchase API client from an Identity.
//
// - bootstrap.go
//   - Bootstrap(ctx, settings, opts...): New followed by Identity.
//
// Architectural notes
//   - Keep adapter-specific I/O out of this package; adapters are reached
//     only through the ports interfaces, except in New, which picks them.
package app
