package lexical

import (
	"github.com/sahilm/fuzzy"

	"semsearch/internal/service"
)

// Rank orders documents by fuzzy lexical match against the query. It is
// the caller-side fallback for queries the embedding model cannot score,
// such as inputs that produce a degenerate zero-norm vector.
//
// Scores are reciprocal-rank values in (0, 1], not cosine similarities.
func Rank(query string, documents []string, topK int) []service.SimilarityResult {
	if topK < 0 {
		topK = 0
	}
	matches := fuzzy.Find(query, documents)
	if topK > len(matches) {
		topK = len(matches)
	}
	out := make([]service.SimilarityResult, 0, topK)
	for i := 0; i < topK; i++ {
		m := matches[i]
		out = append(out, service.SimilarityResult{
			Index:    m.Index,
			Document: documents[m.Index],
			Score:    1.0 / float64(1+i),
		})
	}
	return out
}
