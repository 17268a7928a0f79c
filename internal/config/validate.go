package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"

	"github.com/sufield/edgeauth/internal/domain"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Validate checks cfg and returns its parsed form.
//
// Ensures:
//   - module.iothub_hostname, device_id, module_id and generation_id are set
//   - workload.uri is set and uses a supported scheme
//   - workload.api_version and workload.key_id are set
//   - workload.timeout and token.ttl are positive durations
//   - trust.trust_domain (or the hub host name it defaults to) is a valid
//     trust domain (using SDK validation)
func Validate(cfg FileConfig) (Settings, error) {
	var s Settings

	module, err := domain.NewModuleValidated(
		cfg.Module.IoTHubHostName,
		cfg.Module.DeviceID,
		cfg.Module.ModuleID,
		cfg.Module.GenerationID,
	)
	if err != nil {
		return s, invalid("module: %v", err)
	}
	s.Module = module
	s.GatewayHostName = cfg.Module.GatewayHostName

	if cfg.Workload.URI == "" {
		return s, invalid("workload.uri must be set")
	}
	endpoint, err := domain.ParseEndpoint(cfg.Workload.URI)
	if err != nil {
		return s, invalid("workload.uri %q: %v", cfg.Workload.URI, err)
	}
	s.Endpoint = endpoint
	s.WorkloadURI = cfg.Workload.URI

	if cfg.Workload.APIVersion == "" {
		return s, invalid("workload.api_version must be set")
	}
	s.APIVersion = cfg.Workload.APIVersion

	if cfg.Workload.KeyID == "" {
		return s, invalid("workload.key_id must be set")
	}
	s.KeyID = cfg.Workload.KeyID

	if s.Timeout, err = positiveDuration("workload.timeout", cfg.Workload.Timeout); err != nil {
		return s, err
	}
	if s.TokenTTL, err = positiveDuration("token.ttl", cfg.Token.TTL); err != nil {
		return s, err
	}

	trustDomain := cfg.Trust.TrustDomain
	if trustDomain == "" {
		trustDomain = strings.ToLower(cfg.Module.IoTHubHostName)
	}
	if s.TrustDomain, err = spiffeid.TrustDomainFromString(trustDomain); err != nil {
		return s, invalid("trust.trust_domain %q: %v", trustDomain, err)
	}

	return s, nil
}

func positiveDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, invalid("%s must be set", key)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, invalid("%s %q: %v", key, value, err)
	}
	if d <= 0 {
		return 0, invalid("%s must be positive, got %s", key, value)
	}
	return d, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
