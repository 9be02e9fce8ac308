package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig is the per-user configuration in ~/.config/pn/config.yml.
type GlobalConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"`
	DOIMailto   string `yaml:"doi_mailto,omitempty"`
}

const (
	GlobalConfigDir  = "pn"
	GlobalConfigFile = "config.yml"

	// EnvLibrary overrides library discovery.
	EnvLibrary = "PN_LIBRARY"
	// EnvDOIMailto is sent to doi.org as a contact address.
	EnvDOIMailto = "DOI_MAILTO"
)

// GlobalConfigPath returns the global config file path, honoring
// XDG_CONFIG_HOME.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig reads the global config. A missing file is an empty
// config, not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	return &cfg, nil
}

// DOIMailto returns the contact address for doi.org requests; the
// environment wins over the global config.
func DOIMailto() string {
	if v := os.Getenv(EnvDOIMailto); v != "" {
		return v
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.DOIMailto
}
