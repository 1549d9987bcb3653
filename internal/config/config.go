// Package config provides configuration loading and structs for the Chishiki server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// IndexConfig holds settings for the external vector index service.
type IndexConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds retrieval defaults applied when a request leaves an
// option unset.
type RetrievalConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	DefaultThreshold float64 `yaml:"default_threshold"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	MaxContextLength int     `yaml:"max_context_length"`
	HybridEnabled    *bool   `yaml:"hybrid_enabled"`
}

// HybridEnabledOrDefault returns whether hybrid search defaults on; true when unset.
func (r *RetrievalConfig) HybridEnabledOrDefault() bool {
	if r.HybridEnabled != nil {
		return *r.HybridEnabled
	}
	return true
}

// AnalyticsConfig holds usage tracking settings. An empty database path keeps
// the usage log in memory only.
type AnalyticsConfig struct {
	MaxRecords   int    `yaml:"max_records"`
	DatabasePath string `yaml:"database_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
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

	if cfg.Analytics.DatabasePath != "" {
		cfg.Analytics.DatabasePath = expandPath(cfg.Analytics.DatabasePath, filepath.Dir(path))
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
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
