package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"semsearch/internal/config"
	"semsearch/internal/embedding"
	"semsearch/internal/logger"
	"semsearch/internal/service"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "semsearch",
	Short: "Semantic similarity search over supplied documents",
	Long: `semsearch embeds free-text queries and candidate documents with a
sentence-embedding model and ranks the candidates by cosine similarity.

Documents are supplied as .txt files; each blank-line separated
paragraph becomes one candidate.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ./config.yaml, then ~/.config/semsearch/config.yaml)")
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

func buildModel(cfg *config.AppConfig) (embedding.Model, error) {
	switch cfg.Model.Provider {
	case "hash", "":
		return embedding.NewHashModel(embedding.HashConfig{
			Name:              cfg.Model.Name,
			Dimension:         cfg.Model.Dimension,
			MaxSequenceLength: cfg.Service.MaxSequenceLength,
			Device:            cfg.Model.Device,
			Precision:         cfg.Model.Precision,
		}), nil
	case "openai":
		return embedding.NewOpenAIModel(embedding.OpenAIConfig{
			APIKeyEnv:         cfg.Model.APIKeyEnv,
			BaseURL:           cfg.Model.BaseURL,
			Model:             cfg.Model.Name,
			BatchSize:         cfg.Service.BatchSize,
			MaxSequenceLength: cfg.Service.MaxSequenceLength,
		})
	case "ollama":
		return embedding.NewOllamaModel(embedding.OllamaConfig{
			BaseURL:           cfg.Model.BaseURL,
			Model:             cfg.Model.Name,
			MaxSequenceLength: cfg.Service.MaxSequenceLength,
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Model.Provider)
	}
}

// buildService assembles the embedding service from configuration. The
// caller owns the returned service and must Close it.
func buildService() (*service.Service, *config.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log.Level)
	model, err := buildModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(model, service.Options{MaxWorkers: cfg.Service.MaxWorkers}, log)
	return svc, cfg, nil
}
