// Package domain contains the value objects and pure functions behind edge
// module authentication.
//
// This package is the CORE of the hexagonal architecture. It performs no I/O
// and imports only the standard library.
//
// Hexagonal Architecture Boundaries:
//   - Domain NEVER imports from: internal/adapters, internal/ports, external SDKs
//   - Domain exposes: value objects, pure builders, domain errors
//   - Domain does NOT: open sockets, call the workload API, parse X.509
//
// Files and types
// -----------------------
//   - endpoint.go
//   - Endpoint: the workload API location resolved once from a URI
//     (http, https or unix). Unix endpoints carry only a socket path.
//
//   - module.go
//   - Module: the identity of the running module (hub host, device,
//     module, generation) that scopes every signing request.
//
//   - sas_token.go
//   - BuildAudience, BuildExpiry, SigningPayload and BuildToken assemble a
//     SharedAccessSignature token around a digest obtained elsewhere.
//
//   - trust_bundle.go
//   - SplitPEMCertificates cuts a concatenated PEM bundle into one string per
//     certificate. X.509 parsing happens in the workloadapi adapter.
//
//   - errors.go
//   - Domain sentinel errors.
package domain
