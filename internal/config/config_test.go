package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Method != MethodBoth {
		t.Errorf("Method = %q, want %q", cfg.Method, MethodBoth)
	}
	if cfg.APIURL != "https://openrouter.ai/api/v1/models" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.CSVName != "models.csv" {
		t.Errorf("CSVName = %q", cfg.CSVName)
	}
	if !filepath.IsAbs(cfg.OutputDir) {
		t.Errorf("OutputDir = %q, want absolute", cfg.OutputDir)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		t.Errorf("TimeoutDuration: %v", err)
	}
	if _, err := cfg.CacheTTLDuration(); err != nil {
		t.Errorf("CacheTTLDuration: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("method: web\nfree_text_cap: 5\nrate_limit: 0.5\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Method != MethodWeb {
		t.Errorf("Method = %q, want %q", cfg.Method, MethodWeb)
	}
	if cfg.FreeTextCap != 5 {
		t.Errorf("FreeTextCap = %d, want 5", cfg.FreeTextCap)
	}
	if cfg.RateLimit != 0.5 {
		t.Errorf("RateLimit = %v, want 0.5", cfg.RateLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MODELHARVEST_METHOD", "api")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Method != MethodAPI {
		t.Errorf("Method = %q, want %q", cfg.Method, MethodAPI)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad method", "method: scrape-everything\n"},
		{"bad timeout", "timeout: soon\n"},
		{"bad cache ttl", "cache_ttl: forever\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
