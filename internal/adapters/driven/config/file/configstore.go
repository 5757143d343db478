// Package file provides the TOML configuration store for gcpkit.
// Configuration lives in a TOML file within the gcpkit config directory.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AdManagerConfig holds the Ad Manager settings requests carry in their
// SOAP headers.
type AdManagerConfig struct {
	// NetworkCode is the Ad Manager network to operate in.
	NetworkCode string `toml:"network_code"`
	// ApplicationName identifies this application to Ad Manager.
	ApplicationName string `toml:"application_name"`
	// Version pins a wire version; empty means latest supported.
	Version string `toml:"version"`
}

// Config is the persisted gcpkit configuration.
type Config struct {
	// CredentialsPath overrides GOOGLE_APPLICATION_CREDENTIALS when set.
	CredentialsPath string `toml:"credentials_path"`

	AdManager AdManagerConfig `toml:"admanager"`
}

// Store reads and writes the configuration file.
type Store struct {
	filePath string
}

// NewStore creates a config store rooted at configDir.
// If configDir is empty, defaults to ~/.gcpkit.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".gcpkit")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &Store{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Load reads the configuration. A missing file yields the zero config.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.filePath, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	return &cfg, nil
}

// Save writes the configuration atomically.
func (s *Store) Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Path returns the location of the config file.
func (s *Store) Path() string {
	return s.filePath
}
