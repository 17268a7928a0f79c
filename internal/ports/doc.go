// Package ports defines the inbound and outbound ports (interfaces) that
// decouple the application layer from the adapters.
//
// Files and responsibilities
// --------------------------
//   - inbound.go
//   - CredentialProvider: what callers (the CLI and the root package) use to
//     obtain a SAS token and the trust bundle. Implemented by internal/app.
//   - outbound.go
//   - Transport: one HTTP/1.1 exchange per call (Unix socket or TCP).
//   - WorkloadAPIClient: the two remote operations of the workload API.
//   - Signer: a WorkloadAPIClient bound to one module and key.
//   - Each interface includes an "Error Contract" in comments describing
//     sentinel errors returned by implementations.
package ports
