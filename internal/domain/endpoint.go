package domain

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
)

// Scheme is the transport family of an Endpoint.
type Scheme string

// Supported endpoint schemes.
const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeUnix  Scheme = "unix"
)

// Endpoint is the resolved location of the workload API.
//
// Invariant: a unix endpoint has a non-empty SocketPath and no Host or Port;
// an http(s) endpoint has a Host and a Port and no SocketPath.
type Endpoint struct {
	Scheme     Scheme
	Host       string
	Port       string
	SocketPath string
}

// ParseEndpoint resolves uri once.
//
// Examples:
//
//	unix:///var/run/iotedge/workload.sock  -> SocketPath "/var/run/iotedge/workload.sock"
//	http://127.0.0.1:15580                 -> Host "127.0.0.1", Port "15580"
//	https://edgehub                        -> Host "edgehub", Port "443"
//
// Schemes compare case-insensitively. Any scheme other than http, https or
// unix fails with ErrUnsupportedScheme.
func ParseEndpoint(uri string) (Endpoint, error) {
	if strings.TrimSpace(uri) == "" {
		return Endpoint{}, fmt.Errorf("%w: empty uri", ErrInvalidEndpoint)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeUnix:
		socketPath := u.Path
		if socketPath == "" {
			socketPath = u.Opaque
		}
		if socketPath == "" {
			return Endpoint{}, fmt.Errorf("%w: unix uri %q has no socket path", ErrInvalidEndpoint, uri)
		}
		return Endpoint{Scheme: SchemeUnix, SocketPath: socketPath}, nil

	case SchemeHTTP, SchemeHTTPS:
		scheme := Scheme(strings.ToLower(u.Scheme))
		host := u.Hostname()
		if host == "" {
			return Endpoint{}, fmt.Errorf("%w: %s uri %q has no host", ErrInvalidEndpoint, scheme, uri)
		}
		port := u.Port()
		if port == "" {
			port = "80"
			if scheme == SchemeHTTPS {
				port = "443"
			}
		}
		return Endpoint{Scheme: scheme, Host: host, Port: port}, nil

	default:
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// IsUnix reports whether the endpoint is a Unix domain socket.
func (e Endpoint) IsUnix() bool {
	return e.Scheme == SchemeUnix
}

// Authority is the value sent in the Host header.
// For a unix endpoint it is the last segment of the socket path.
func (e Endpoint) Authority() string {
	if e.IsUnix() {
		return path.Base(e.SocketPath)
	}
	return net.JoinHostPort(e.Host, e.Port)
}

// BaseURL is the URL prefix that request targets are appended to.
// A unix endpoint maps to http://{Authority()}.
func (e Endpoint) BaseURL() string {
	if e.IsUnix() {
		return "http://" + e.Authority()
	}
	return string(e.Scheme) + "://" + e.Authority()
}

// String returns the endpoint in URI form.
func (e Endpoint) String() string {
	if e.IsUnix() {
		return "unix://" + e.SocketPath
	}
	return e.BaseURL()
}
