package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads an edgeauth configuration file on top of Default.
// Keys missing from the file keep their default values.
func Load(path string) (FileConfig, error) {
	cfg := Default()

	// Clean the path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304 - Config file path is trusted (from admin/user)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv returns Default with the environment applied, which is all a
// module started by the edge runtime needs.
func LoadFromEnv() (FileConfig, error) {
	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnv loads path when it is non-empty, otherwise starts from
// Default, and then applies the environment.
func LoadWithEnv(path string) (FileConfig, error) {
	if path == "" {
		return LoadFromEnv()
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
