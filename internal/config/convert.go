package config

import (
	"path/filepath"
	"strings"
)

// ManifestPaths returns the configured manifests with relative entries resolved
// against the directory of the config file.
func ManifestPaths(cfg ServiceConfig, configPath string) []string {
	base := filepath.Dir(configPath)
	paths := make([]string, 0, len(cfg.Manifests))
	for _, m := range cfg.Manifests {
		m = strings.TrimSpace(m)
		if !filepath.IsAbs(m) {
			m = filepath.Join(base, m)
		}
		paths = append(paths, m)
	}
	return paths
}
