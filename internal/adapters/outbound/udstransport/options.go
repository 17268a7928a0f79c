package udstransport

import (
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type options struct {
	dialTimeout time.Duration
	logger      *slog.Logger
	host        string
	httpClient  *http.Client
	tlsConfig   *tls.Config
}

// Option configures a transport.
type Option func(*options)

// WithDialTimeout bounds connection setup. Zero or negative keeps DefaultDialTimeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

// WithLogger sets the logger. A nil logger discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHost sets the Host header used when a request has none.
func WithHost(host string) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithHTTPClient replaces the client used by NetTransport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTLSConfig sets the TLS configuration NetTransport uses for https.
// It is ignored when WithHTTPClient is also given.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

func newOptions(opts []Option) *options {
	o := &options{dialTimeout: DefaultDialTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
