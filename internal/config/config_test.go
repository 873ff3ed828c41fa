package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secpolicy.yaml")
	data := "max_edits: 2\njob_ttl: 30m\noutput_dir: exports\nworker_count: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SECPOLICY_WORKER_COUNT", "8")
	t.Setenv("SECPOLICY_API_KEY", "secret")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxEdits != 2 || cfg.JobTTL != 30*time.Minute || cfg.OutputDir != "exports" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("env should win over file: worker_count=%d", cfg.WorkerCount)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("api key = %q", cfg.APIKey)
	}
	if cfg.Port != "8080" {
		t.Errorf("port default lost: %q", cfg.Port)
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_edits: [1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg != Default() {
		t.Errorf("round trip changed config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"negative edits", func(c *Config) { c.MaxEdits = -1 }},
		{"zero error accept", func(c *Config) { c.ErrorAccept = 0 }},
		{"no database", func(c *Config) { c.DatabasePath = "" }},
		{"no output dir", func(c *Config) { c.OutputDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
