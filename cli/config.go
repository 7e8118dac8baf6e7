package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// UserConfig represents <data folder>/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one named set of endpoints and defaults.
type Profile struct {
	API       string `yaml:"api,omitempty"`
	PublicAPI string `yaml:"public-api,omitempty"`
	Provider  string `yaml:"provider,omitempty"` // oidc or fake
	Issuer    string `yaml:"issuer,omitempty"`
	ClientID  string `yaml:"client-id,omitempty"`
	Output    string `yaml:"output,omitempty"`
}

// ActiveProfile returns the profile to use based on the override or current-profile.
func (c *UserConfig) ActiveProfile(override string) Profile {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	if p, ok := c.Profiles[name]; ok {
		return p
	}
	return Profile{}
}

func ConfigPath(dir string) string {
	return filepath.Join(dir, configFile)
}

// LoadUserConfig reads the config file in dir.
func LoadUserConfig(dir string) (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes the config file in dir.
func SaveUserConfig(dir string, cfg *UserConfig) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(dir), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
