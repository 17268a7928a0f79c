// Package workloadapi is the client for the edge daemon's workload API.
//
// A module cannot read its own keys. Instead it asks the daemon, over a Unix
// domain socket in production, to sign data with a named module key and to
// hand out the CA certificates the gateway's TLS chain ends in.
//
// The client resolves its endpoint once, at construction, and picks the
// transport from the scheme: unix:// goes through the hand-written HTTP/1.1
// codec in udstransport, http:// and https:// go through net/http. Each call
// opens its own connection and closes it before returning.
//
// Usage:
//
//	client, err := workloadapi.NewClient("unix:///var/run/iotedge/workload.sock", nil)
//	if err != nil {
//	    return err
//	}
//	digest, err := client.Sign(ctx, "2019-01-30", "mymodule", "gen1", "primary",
//	    workloadapi.AlgorithmHMACSHA256, payload)
//
// Non-200 answers come back as *APIError, which carries the daemon's message
// when the body was a {"message": ...} document.
//
// ParseTrustBundle turns the PEM bundle into a go-spiffe x509bundle, and
// CertPool exposes it for a TLS client.
package workloadapi
