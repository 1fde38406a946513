package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ServiceConfig configures g2dctl.
type ServiceConfig struct {
	Name        string   `toml:"name"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	Serve       bool     `toml:"serve"`
	Manifests   []string `toml:"manifests"`
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "g2dctl"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9300"
	}
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	seen := make(map[string]struct{}, len(cfg.Manifests))
	for i, m := range cfg.Manifests {
		m = strings.TrimSpace(m)
		if m == "" {
			return fmt.Errorf("manifest[%d] is empty", i)
		}
		if _, ok := seen[m]; ok {
			return fmt.Errorf("manifest[%d] repeated: %s", i, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}
