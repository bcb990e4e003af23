package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.Provider != "hash" {
		t.Errorf("default provider = %q, want hash", cfg.Model.Provider)
	}
	if cfg.Model.Dimension != 256 {
		t.Errorf("default dimension = %d, want 256", cfg.Model.Dimension)
	}
	if cfg.Service.MaxWorkers != 4 {
		t.Errorf("default max_workers = %d, want 4", cfg.Service.MaxWorkers)
	}
	if cfg.Service.BatchSize != 32 {
		t.Errorf("default batch_size = %d, want 32", cfg.Service.BatchSize)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `model:
  provider: openai
  name: text-embedding-3-large
service:
  max_workers: 8
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Model.Provider)
	}
	if cfg.Model.Name != "text-embedding-3-large" {
		t.Errorf("model name = %q, want text-embedding-3-large", cfg.Model.Name)
	}
	if cfg.Service.MaxWorkers != 8 {
		t.Errorf("max_workers = %d, want 8", cfg.Service.MaxWorkers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	// Defaults filled in for omitted fields.
	if cfg.Model.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("api_key_env = %q, want OPENAI_API_KEY", cfg.Model.APIKeyEnv)
	}
	if cfg.Model.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base_url = %q, want OpenAI default", cfg.Model.BaseURL)
	}
	if cfg.Service.MaxSequenceLength != 256 {
		t.Errorf("max_sequence_length = %d, want 256", cfg.Service.MaxSequenceLength)
	}
}

func TestApplyDefaultsOllama(t *testing.T) {
	cfg := &AppConfig{Model: ModelConfig{Provider: "ollama"}}
	applyConfigDefaults(cfg)
	if cfg.Model.BaseURL != "http://localhost:11434" {
		t.Errorf("base_url = %q, want ollama default", cfg.Model.BaseURL)
	}
	if cfg.Model.Name != "nomic-embed-text" {
		t.Errorf("model name = %q, want nomic-embed-text", cfg.Model.Name)
	}
	if cfg.Model.Precision != "float32" {
		t.Errorf("precision = %q, want float32", cfg.Model.Precision)
	}
}
