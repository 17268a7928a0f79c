package workloadapi

import (
	"crypto/x509"
	"fmt"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"

	"github.com/sufield/edgeauth/internal/domain"
)

// ParseTrustBundle parses the PEM bundle returned by TrustBundle into an
// X.509 bundle for trustDomain.
//
// The bundle is split into certificates first, so an empty bundle fails with
// domain.ErrEmptyTrustBundle before anything is parsed, and a bad
// certificate is reported with its position.
func ParseTrustBundle(trustDomain, pemBundle string) (*x509bundle.Bundle, error) {
	td, err := spiffeid.TrustDomainFromString(trustDomain)
	if err != nil {
		return nil, fmt.Errorf("%w: trust domain %q: %v", ErrInvalidArgument, trustDomain, err)
	}

	certs, err := domain.SplitPEMCertificates(pemBundle)
	if err != nil {
		return nil, err
	}

	bundle := x509bundle.New(td)
	for i, certPEM := range certs {
		parsed, err := x509bundle.Parse(td, []byte(certPEM))
		if err != nil {
			return nil, fmt.Errorf("%w: certificate %d: %v", domain.ErrInvalidTrustBundle, i, err)
		}
		for _, authority := range parsed.X509Authorities() {
			bundle.AddX509Authority(authority)
		}
	}
	return bundle, nil
}

// CertPool returns the bundle's authorities as a pool for tls.Config.RootCAs.
func CertPool(bundle *x509bundle.Bundle) *x509.CertPool {
	pool := x509.NewCertPool()
	if bundle == nil {
		return pool
	}
	for _, cert := range bundle.X509Authorities() {
		pool.AddCert(cert)
	}
	return pool
}
