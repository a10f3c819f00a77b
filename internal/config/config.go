// Package config provides configuration loading and structs for the
// umekomi sidecar.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/umekomi/internal/hub"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the sidecar.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Model  ModelConfig  `yaml:"model"`
}

// ServerConfig holds gRPC listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ModelConfig holds model loading settings.
type ModelConfig struct {
	// Path, when set, is loaded at startup as if the client had called
	// InitModel with it. A preload failure leaves the store empty.
	Path string `yaml:"path"`
	// CacheSize is the capacity of the per-model embedding cache.
	CacheSize int `yaml:"cache_size"`
	// CacheDir is where hub downloads are stored.
	CacheDir string `yaml:"cache_dir"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Model.CacheDir = expandPath(cfg.Model.CacheDir, configDir)
	if cfg.Model.Path != "" && !hub.IsRepoID(cfg.Model.Path) {
		// Hub repository ids stay as-is; local directories become absolute.
		cfg.Model.Path = expandPath(cfg.Model.Path, configDir)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
