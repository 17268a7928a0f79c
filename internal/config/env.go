package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables read by ApplyEnv. The IOTEDGE_* names are the ones
// the edge runtime sets for every module.
const (
	EnvIoTHubHostName  = "IOTEDGE_IOTHUBHOSTNAME"
	EnvGatewayHostName = "IOTEDGE_GATEWAYHOSTNAME"
	EnvDeviceID        = "IOTEDGE_DEVICEID"
	EnvModuleID        = "IOTEDGE_MODULEID"
	EnvGenerationID    = "IOTEDGE_MODULEGENERATIONID"
	EnvWorkloadURI     = "IOTEDGE_WORKLOADURI"
	EnvAPIVersion      = "IOTEDGE_APIVERSION"

	EnvKeyID       = "EDGEAUTH_KEY_ID"
	EnvTimeout     = "EDGEAUTH_TIMEOUT"
	EnvTokenTTL    = "EDGEAUTH_TOKEN_TTL"
	EnvTrustDomain = "EDGEAUTH_TRUST_DOMAIN"
)

// ApplyEnv overrides config values with environment variables if set.
// Returns error for invalid environment variable values to fail fast.
func ApplyEnv(cfg *FileConfig) error {
	// Module identity
	setFromEnv(&cfg.Module.IoTHubHostName, EnvIoTHubHostName)
	setFromEnv(&cfg.Module.GatewayHostName, EnvGatewayHostName)
	setFromEnv(&cfg.Module.DeviceID, EnvDeviceID)
	setFromEnv(&cfg.Module.ModuleID, EnvModuleID)
	setFromEnv(&cfg.Module.GenerationID, EnvGenerationID)

	// Workload API
	setFromEnv(&cfg.Workload.URI, EnvWorkloadURI)
	setFromEnv(&cfg.Workload.APIVersion, EnvAPIVersion)
	setFromEnv(&cfg.Workload.KeyID, EnvKeyID)
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		if _, err := time.ParseDuration(timeout); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, timeout, err)
		}
		cfg.Workload.Timeout = timeout
	}

	// Token and trust
	if ttl := os.Getenv(EnvTokenTTL); ttl != "" {
		if _, err := time.ParseDuration(ttl); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTokenTTL, ttl, err)
		}
		cfg.Token.TTL = ttl
	}
	setFromEnv(&cfg.Trust.TrustDomain, EnvTrustDomain)

	return nil
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
