package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModelConfig selects and configures the embedding model provider.
type ModelConfig struct {
	Provider  string `yaml:"provider"`              // hash, openai or ollama
	Name      string `yaml:"name"`                  // model identifier
	BaseURL   string `yaml:"base_url,omitempty"`    // remote providers only
	APIKeyEnv string `yaml:"api_key_env,omitempty"` // env var holding the API key
	CacheDir  string `yaml:"cache_dir,omitempty"`   // reserved for providers that fetch model artifacts
	Device    string `yaml:"device"`                // compute placement for local providers; remote providers pick their own
	Precision string `yaml:"precision"`             // float32, or float16 on gpu
	Dimension int    `yaml:"dimension,omitempty"`   // hash provider output size
}

// ServiceConfig holds the embedding service runtime settings.
// All values are read once at construction and immutable afterwards.
type ServiceConfig struct {
	MaxSequenceLength int `yaml:"max_sequence_length"`
	BatchSize         int `yaml:"batch_size"`
	MaxWorkers        int `yaml:"max_workers"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Model   ModelConfig   `yaml:"model"`
	Service ServiceConfig `yaml:"service"`
	Log     LogConfig     `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/semsearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/semsearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Model: ModelConfig{
			Provider:  "hash",
			Name:      "hashing-256",
			Device:    "cpu",
			Precision: "float32",
			Dimension: 256,
		},
		Service: ServiceConfig{
			MaxSequenceLength: 256,
			BatchSize:         32,
			MaxWorkers:        4,
		},
		Log: LogConfig{Level: "info"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "hash"
	}
	if cfg.Model.Device == "" {
		cfg.Model.Device = "cpu"
	}
	if cfg.Model.Precision == "" {
		cfg.Model.Precision = "float32"
	}
	switch cfg.Model.Provider {
	case "hash":
		if cfg.Model.Name == "" {
			cfg.Model.Name = "hashing-256"
		}
		if cfg.Model.Dimension == 0 {
			cfg.Model.Dimension = 256
		}
	case "openai":
		if cfg.Model.BaseURL == "" {
			cfg.Model.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Model.APIKeyEnv == "" {
			cfg.Model.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Model.Name == "" {
			cfg.Model.Name = "text-embedding-3-small"
		}
	case "ollama":
		if cfg.Model.BaseURL == "" {
			cfg.Model.BaseURL = "http://localhost:11434"
		}
		if cfg.Model.Name == "" {
			cfg.Model.Name = "nomic-embed-text"
		}
	}
	if cfg.Service.MaxSequenceLength == 0 {
		cfg.Service.MaxSequenceLength = 256
	}
	if cfg.Service.BatchSize == 0 {
		cfg.Service.BatchSize = 32
	}
	if cfg.Service.MaxWorkers == 0 {
		cfg.Service.MaxWorkers = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
