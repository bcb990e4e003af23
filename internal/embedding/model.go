package embedding

import (
	"context"
	"errors"
)

// ErrModelNotLoaded is returned by Encode before a successful Load.
var ErrModelNotLoaded = errors.New("embedding model not loaded")

// ModelInfo is a read-only snapshot of a model's identity and geometry.
type ModelInfo struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"`
	Device            string `json:"device"`
	Precision         string `json:"precision"`
	Dimension         int    `json:"dimension"`
	MaxSequenceLength int    `json:"max_sequence_length"`
}

// Model owns a single loaded sentence-embedding model instance.
//
// Load acquires the model and is idempotent after success. Encode is
// synchronous and potentially compute-bound; callers are expected to run
// it off their own scheduling context. Every vector produced by a loaded
// model has the same length, fixed for the model's lifetime.
type Model interface {
	Load(ctx context.Context) error
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Info() ModelInfo
}

// truncate caps text at maxLen runes. maxLen <= 0 disables truncation.
func truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

func truncateAll(texts []string, maxLen int) []string {
	if maxLen <= 0 {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = truncate(t, maxLen)
	}
	return out
}

// splitBatches partitions texts into sub-batches of at most size elements.
func splitBatches(texts []string, size int) [][]string {
	if size <= 0 {
		size = len(texts)
	}
	var out [][]string
	for i := 0; i < len(texts); i += size {
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[i:end])
	}
	return out
}
