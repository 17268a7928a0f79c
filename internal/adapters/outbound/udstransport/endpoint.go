package udstransport

import (
	"fmt"

	"github.com/sufield/edgeauth/internal/domain"
	"github.com/sufield/edgeauth/internal/ports"
)

// ForEndpoint picks the transport for ep: UnixTransport for unix endpoints,
// NetTransport for http and https.
func ForEndpoint(ep domain.Endpoint, opts ...Option) (ports.Transport, error) {
	switch ep.Scheme {
	case domain.SchemeUnix:
		return NewUnixTransport(ep.SocketPath, append([]Option{WithHost(ep.Authority())}, opts...)...), nil
	case domain.SchemeHTTP, domain.SchemeHTTPS:
		return NewNetTransport(ep.BaseURL(), opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, ep.Scheme)
	}
}
