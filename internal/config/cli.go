package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultAPIURL = "http://localhost:8080/v1"

// CLIConfig is the budgetctl configuration file.
type CLIConfig struct {
	Gateway GatewayConfig `toml:"gateway"`
	Session SessionConfig `toml:"session"`
}

type GatewayConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// SessionConfig holds the bearer token saved by "budgetctl login".
type SessionConfig struct {
	Token string `toml:"token,omitempty"`
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Gateway: GatewayConfig{BaseURL: defaultAPIURL, TimeoutSeconds: 15},
	}
}

// CLIConfigDir returns the XDG-compliant config directory.
func CLIConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "marcenaria")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "marcenaria")
}

func CLIConfigPath() string {
	return filepath.Join(CLIConfigDir(), "config.toml")
}

// LoadCLI reads path, returning defaults if it doesn't exist.
// MARCENARIA_API_URL and MARCENARIA_TOKEN override the file.
func LoadCLI(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv("MARCENARIA_API_URL")); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MARCENARIA_TOKEN")); v != "" {
		cfg.Session.Token = v
	}
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = defaultAPIURL
	}
	return cfg, nil
}

// SaveCLI writes cfg to path with owner-only permissions; it holds a token.
func SaveCLI(path string, cfg CLIConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
