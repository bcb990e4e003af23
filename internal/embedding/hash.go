package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"sync/atomic"
)

// HashModel is an offline, deterministic feature-hashing embedder.
// Tokens are hashed into a fixed number of signed buckets and the
// resulting vector is L2-normalized. It needs no network or model
// artifact, which makes it the default for air-gapped runs and tests.
type HashModel struct {
	name         string
	dimension    int
	maxSeqLen    int
	device       string
	precision    string
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	loaded       atomic.Bool
}

// HashConfig configures the feature-hashing model.
type HashConfig struct {
	Name              string
	Dimension         int
	MaxSequenceLength int
	Device            string // cpu or auto; this provider has no gpu backend
	Precision         string // float32, or float16 which resolves to float32 off-gpu
}

// NewHashModel creates an unloaded feature-hashing model.
func NewHashModel(cfg HashConfig) *HashModel {
	name := cfg.Name
	if name == "" {
		name = "hashing-256"
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = 256
	}
	return &HashModel{
		name:         name,
		dimension:    dim,
		maxSeqLen:    cfg.MaxSequenceLength,
		device:       cfg.Device,
		precision:    cfg.Precision,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Load validates the device and precision settings and marks the model
// ready. There is no artifact to fetch; repeated calls are no-ops.
func (m *HashModel) Load(ctx context.Context) error {
	switch m.device {
	case "", "cpu", "auto":
	default:
		return fmt.Errorf("unsupported device %q for hash provider", m.device)
	}
	switch m.precision {
	case "", "float32", "float16":
	default:
		return fmt.Errorf("unsupported precision %q for hash provider", m.precision)
	}
	m.loaded.Store(true)
	return nil
}

// Encode computes one embedding per input text, order-preserving.
func (m *HashModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if !m.loaded.Load() {
		return nil, ErrModelNotLoaded
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embed(truncate(text, m.maxSeqLen))
	}
	return out, nil
}

func (m *HashModel) Info() ModelInfo {
	// Every supported device resolves to cpu, and reduced precision
	// applies only on a gpu, so float16 requests run as float32.
	return ModelInfo{
		Name:              m.name,
		Provider:          "hash",
		Device:            "cpu",
		Precision:         "float32",
		Dimension:         m.dimension,
		MaxSequenceLength: m.maxSeqLen,
	}
}

func (m *HashModel) embed(text string) []float32 {
	vec := make([]float32, m.dimension)
	tokens := m.tokenize(text)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(m.dimension))
		// Signed hashing keeps the expected component value at zero.
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func (m *HashModel) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := m.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
