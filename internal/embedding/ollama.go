package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const ollamaTimeout = 60 * time.Second

// OllamaModel embeds text through a local Ollama instance. The model
// artifact lives in Ollama's own cache; Load only verifies it is present.
type OllamaModel struct {
	baseURL   string
	name      string
	maxSeqLen int
	client    *http.Client

	loaded    atomic.Bool
	dimension int
}

// OllamaConfig configures the Ollama-backed embedding model.
type OllamaConfig struct {
	BaseURL           string
	Model             string
	MaxSequenceLength int
}

// NewOllamaModel creates an unloaded Ollama embedding model.
func NewOllamaModel(cfg OllamaConfig) *OllamaModel {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	name := cfg.Model
	if name == "" {
		name = "nomic-embed-text"
	}
	return &OllamaModel{
		baseURL:   baseURL,
		name:      name,
		maxSeqLen: cfg.MaxSequenceLength,
		client:    &http.Client{Timeout: ollamaTimeout},
	}
}

type ollamaShowRequest struct {
	Name string `json:"name"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Load checks that the configured model exists on the Ollama host and
// fixes the output dimension with a probe embedding. Idempotent after
// success.
func (m *OllamaModel) Load(ctx context.Context) error {
	if m.loaded.Load() {
		return nil
	}
	body, _ := json.Marshal(ollamaShowRequest{Name: m.name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/show", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", m.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model %s not available on ollama (status %d): %s", m.name, resp.StatusCode, string(payload))
	}

	vec, err := m.embedOne(ctx, "probe")
	if err != nil {
		return fmt.Errorf("ollama model probe failed: %w", err)
	}
	m.dimension = len(vec)
	m.loaded.Store(true)
	return nil
}

// Encode embeds the given texts one at a time; the Ollama embeddings
// endpoint has no batch form.
func (m *OllamaModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if !m.loaded.Load() {
		return nil, ErrModelNotLoaded
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range truncateAll(texts, m.maxSeqLen) {
		vec, err := m.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (m *OllamaModel) Info() ModelInfo {
	return ModelInfo{
		Name:              m.name,
		Provider:          "ollama",
		Device:            "local",
		Precision:         "float32",
		Dimension:         m.dimension,
		MaxSequenceLength: m.maxSeqLen,
	}
}

func (m *OllamaModel) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: m.name, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(payload))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	vec := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
