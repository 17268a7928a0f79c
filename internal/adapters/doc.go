// Package adapters contains infrastructure implementations of port interfaces.
//
// Adapters implement the interfaces in internal/ports with concrete
// technology (Unix sockets, net/http, go-spiffe) and translate between the
// domain types and the wire formats of external systems.
//
// Boundaries:
//   - Adapters implement: internal/ports interfaces
//   - Adapters import from: internal/domain, internal/ports, internal/httpwire, external SDKs
//   - Adapters are instantiated: by internal/app (composition root)
//   - Domain layer: NEVER imports adapters
//
// Outbound Adapters
//
// Example: udstransport (outbound/udstransport/)
//   - Implements: ports.Transport
//   - Technology: internal/httpwire over a Unix socket; net/http for http(s)
//   - Purpose: One HTTP/1.1 exchange per connection with the edge daemon
//
// Example: workloadapi (outbound/workloadapi/)
//   - Implements: ports.WorkloadAPIClient, ports.Signer
//   - Technology: JSON over a ports.Transport; go-spiffe x509bundle
//   - Purpose: Signs token payloads and fetches the trust bundle
//
// Example: purchaseapi (outbound/purchaseapi/)
//   - Technology: JSON over TLS, roots from the trust bundle
//   - Purpose: Queries the gateway for the module's purchase state
//
// Example Dependency Flow
//
//	cmd/edgeauth or package edgeauth
//	    ↓ calls
//	app.New(config.Settings)
//	    ↓ creates
//	workloadapi.Client → udstransport.ForEndpoint → UnixTransport
//	    ↓ used through
//	app.TokenService (ports.Signer, ports.WorkloadAPIClient)
package adapters
