package config

import (
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"

	"github.com/sufield/edgeauth/internal/domain"
)

// Defaults applied by Default and kept by Load for absent keys.
const (
	DefaultAPIVersion      = "2019-01-30"
	DefaultKeyID           = "primary"
	DefaultTokenTTL        = "24h"
	DefaultWorkloadTimeout = "30s"
)

// ModuleSection identifies the module the credentials are issued to.
// The edge runtime passes these values in IOTEDGE_* variables.
type ModuleSection struct {
	// IoTHubHostName is the hub the SAS token audience points at.
	IoTHubHostName string `yaml:"iothub_hostname"`

	// GatewayHostName is the edge gateway serving the purchase API.
	// Optional; only needed to query purchases.
	GatewayHostName string `yaml:"gateway_hostname"`

	DeviceID     string `yaml:"device_id"`
	ModuleID     string `yaml:"module_id"`
	GenerationID string `yaml:"generation_id"`
}

// WorkloadSection configures the daemon's workload API.
type WorkloadSection struct {
	// URI is the workload API endpoint.
	// Example: "unix:///var/run/iotedge/workload.sock"
	URI string `yaml:"uri"`

	// APIVersion is sent as the api-version query parameter.
	APIVersion string `yaml:"api_version"`

	// KeyID names the module key used to sign ("primary" or "secondary").
	KeyID string `yaml:"key_id"`

	// Timeout bounds each workload API call.
	// Use Go duration format: "5s", "30s", "1m", etc.
	Timeout string `yaml:"timeout"`
}

// TokenSection configures SAS token issuance.
type TokenSection struct {
	// TTL is the token lifetime in Go duration format.
	TTL string `yaml:"ttl"`
}

// TrustSection configures how the trust bundle is interpreted.
type TrustSection struct {
	// TrustDomain names the parsed bundle. Defaults to the lower-cased hub
	// host name.
	TrustDomain string `yaml:"trust_domain"`
}

// FileConfig represents an edgeauth configuration file.
//
// The config format is versioned to support future evolution without breaking changes.
type FileConfig struct {
	// Version is the config file format version (optional, currently always 1)
	Version int `yaml:"version,omitempty"`

	Module   ModuleSection   `yaml:"module"`
	Workload WorkloadSection `yaml:"workload"`
	Token    TokenSection    `yaml:"token"`
	Trust    TrustSection    `yaml:"trust"`
}

// Settings is a validated FileConfig with every value parsed.
type Settings struct {
	Module          *domain.Module
	GatewayHostName string
	Endpoint        domain.Endpoint
	WorkloadURI     string
	APIVersion      string
	KeyID           string
	Timeout         time.Duration
	TokenTTL        time.Duration
	TrustDomain     spiffeid.TrustDomain
}

// Default returns a FileConfig holding only the defaults.
func Default() FileConfig {
	return FileConfig{
		Version: 1,
		Workload: WorkloadSection{
			APIVersion: DefaultAPIVersion,
			KeyID:      DefaultKeyID,
			Timeout:    DefaultWorkloadTimeout,
		},
		Token: TokenSection{
			TTL: DefaultTokenTTL,
		},
	}
}
