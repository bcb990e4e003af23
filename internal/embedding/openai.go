package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// openaiMaxBatch is the API ceiling on inputs per embeddings call.
	openaiMaxBatch = 2048
	// openaiMaxRetries bounds retries on rate-limited requests.
	openaiMaxRetries = 5
	// openaiInitialBackoff is the first retry delay.
	openaiInitialBackoff = 2 * time.Second
	// openaiMaxBackoff caps the retry delay.
	openaiMaxBackoff = 60 * time.Second
)

// OpenAIModel embeds text through the OpenAI embeddings API.
type OpenAIModel struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	name      string
	batchSize int
	maxSeqLen int

	loaded    atomic.Bool
	dimension int
}

// OpenAIConfig configures the OpenAI-backed embedding model.
type OpenAIConfig struct {
	APIKeyEnv         string
	BaseURL           string
	Model             string
	BatchSize         int
	MaxSequenceLength int
}

// NewOpenAIModel creates an unloaded OpenAI embedding model. The API key
// is read from the configured environment variable at construction.
func NewOpenAIModel(cfg OpenAIConfig) (*OpenAIModel, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", keyEnv)
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	name := cfg.Model
	if name == "" {
		name = string(openai.SmallEmbedding3)
	}
	batch := cfg.BatchSize
	if batch <= 0 || batch > openaiMaxBatch {
		batch = openaiMaxBatch
	}

	return &OpenAIModel{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     openai.EmbeddingModel(name),
		name:      name,
		batchSize: batch,
		maxSeqLen: cfg.MaxSequenceLength,
	}, nil
}

// Load verifies the model is reachable by embedding a short probe and
// fixes the output dimension from the response. Repeated calls after
// success are no-ops.
func (m *OpenAIModel) Load(ctx context.Context) error {
	if m.loaded.Load() {
		return nil
	}
	vecs, err := m.embedBatch(ctx, []string{"probe"})
	if err != nil {
		return fmt.Errorf("openai model probe failed: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return fmt.Errorf("openai model %s returned no embedding", m.name)
	}
	m.dimension = len(vecs[0])
	m.loaded.Store(true)
	return nil
}

// Encode embeds the given texts, one vector per input, order-preserving.
func (m *OpenAIModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if !m.loaded.Load() {
		return nil, ErrModelNotLoaded
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	truncated := truncateAll(texts, m.maxSeqLen)
	out := make([][]float32, 0, len(texts))
	for _, batch := range splitBatches(truncated, m.batchSize) {
		vecs, err := m.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (m *OpenAIModel) Info() ModelInfo {
	return ModelInfo{
		Name:              m.name,
		Provider:          "openai",
		Device:            "api",
		Precision:         "float32",
		Dimension:         m.dimension,
		MaxSequenceLength: m.maxSeqLen,
	}
}

// embedBatch issues a single embeddings request with retry and
// exponential backoff on rate limits.
func (m *OpenAIModel) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: m.model,
	}

	var resp openai.EmbeddingResponse
	var err error
	backoff := openaiInitialBackoff

	for attempt := 0; attempt <= openaiMaxRetries; attempt++ {
		resp, err = m.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}
		if !isRateLimitError(err) || attempt == openaiMaxRetries {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > openaiMaxBackoff {
			backoff = openaiMaxBackoff
		}
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		out[i] = data.Embedding
	}
	return out, nil
}

// isRateLimitError checks if the error is a rate limit (429) or quota error.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate") ||
		strings.Contains(msg, "quota")
}
