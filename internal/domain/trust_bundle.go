package domain

import (
	"fmt"
	"strings"
)

// PEMCertificateEnd terminates every certificate block in a trust bundle.
const PEMCertificateEnd = "-----END CERTIFICATE-----"

// SplitPEMCertificates cuts a concatenated PEM bundle into one string per
// certificate, each ending with PEMCertificateEnd.
//
// Whatever follows the last end marker (usually a newline) is dropped.
// An empty bundle fails with ErrEmptyTrustBundle; a bundle without any end
// marker fails with ErrInvalidTrustBundle.
func SplitPEMCertificates(bundle string) ([]string, error) {
	if bundle == "" {
		return nil, ErrEmptyTrustBundle
	}

	parts := strings.Split(bundle, PEMCertificateEnd)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: no %q marker", ErrInvalidTrustBundle, PEMCertificateEnd)
	}

	certs := make([]string, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		certs = append(certs, p+PEMCertificateEnd)
	}
	return certs, nil
}
