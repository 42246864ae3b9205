package coachlens

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig("")
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Addr != ":8787" {
		t.Errorf("Addr = %q, want the default", cfg.Addr)
	}
	if cfg.RequestsPerMinute != 50 {
		t.Errorf("RequestsPerMinute = %d, want 50", cfg.RequestsPerMinute)
	}
	if cfg.MaxBatchSize != 5 {
		t.Errorf("MaxBatchSize = %d, want 5", cfg.MaxBatchSize)
	}
}

func TestLoadServerConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coachd.yaml")
	content := `addr: ":9999"
requests_per_minute: 10
upstream:
  api_key: file-key
  model: gpt-4o
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want the configured address", cfg.Addr)
	}
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RequestsPerMinute)
	}
	if cfg.Upstream.Model != "gpt-4o" {
		t.Errorf("Upstream.Model = %q, want the configured model", cfg.Upstream.Model)
	}
	if cfg.MaxBatchSize != 5 {
		t.Errorf("MaxBatchSize = %d, want the default to survive a partial file", cfg.MaxBatchSize)
	}
}

func TestLoadServerConfigEnvOverride(t *testing.T) {
	t.Setenv("COACHD_API_KEY", "env-key")

	cfg, err := LoadServerConfig("")
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Upstream.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want the environment override", cfg.Upstream.APIKey)
	}
}

func TestServerConfigValidate(t *testing.T) {
	cfg := DefaultServerConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted a config without an API key")
	}
	cfg.Upstream.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate rejected a complete config: %v", err)
	}
}
