package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/chishiki/internal/config"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"machine learning", "-limit", "5"},
			expected: []string{"-limit", "5", "machine learning"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "5", "machine learning"},
			expected: []string{"-limit", "5", "machine learning"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"machine learning"},
			expected: []string{"machine learning"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"neural", "networks", "-workspace", "ws1"},
			expected: []string{"-workspace", "ws1", "neural", "networks"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"kubernetes"}, "kubernetes"},
		{"multiple words", []string{"machine", "learning"}, "machine learning"},
		{"single quoted phrase", []string{"machine learning"}, "machine learning"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 9090
index:
  url: "http://localhost:7700"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %q, want %q", resolved, configPath)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Index.URL != "http://localhost:7700" {
		t.Errorf("Index.URL = %q, want %q", cfg.Index.URL, "http://localhost:7700")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CHISHIKI_INDEX_URL", "http://index.internal:8600")
	t.Setenv("CHISHIKI_ANALYTICS_DB", "/var/lib/chishiki/usage.db")

	cfg := &config.Config{}
	applyEnvOverrides(cfg)
	if cfg.Index.URL != "http://index.internal:8600" {
		t.Errorf("Index.URL = %q, want env override", cfg.Index.URL)
	}
	if cfg.Analytics.DatabasePath != "/var/lib/chishiki/usage.db" {
		t.Errorf("Analytics.DatabasePath = %q, want env override", cfg.Analytics.DatabasePath)
	}
}
