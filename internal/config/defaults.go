package config

import (
	"os"
	"path/filepath"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		// Dual-stack wildcard: IPv6 and IPv4 on all interfaces.
		cfg.Server.Host = "[::]"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 50051
	}
	if cfg.Model.CacheSize == 0 {
		cfg.Model.CacheSize = 1024
	}
	if cfg.Model.CacheDir == "" {
		cfg.Model.CacheDir = defaultCacheDir()
	}
}

// defaultCacheDir is the hub download cache under the user cache directory,
// falling back to the system temp directory.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "umekomi", "models")
}
