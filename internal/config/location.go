package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath returns the configuration file path. The GOAP_CONFIG
// environment variable takes precedence over the default location,
// ~/.goap/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv("GOAP_CONFIG"); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".goap", "config"), nil
}
