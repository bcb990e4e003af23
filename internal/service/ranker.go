package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// SimilarityResult pairs a candidate document with its cosine similarity
// to the query. Index is the candidate's position in the input slice.
type SimilarityResult struct {
	Index    int     `json:"index"`
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero-norm vector has no direction, so the score is undefined and
// reported as a ComputationError instead of NaN.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &ComputationError{Reason: fmt.Sprintf("vector dimension mismatch: %d vs %d", len(a), len(b))}
	}
	if len(a) == 0 {
		return 0, &ComputationError{Reason: "empty vectors"}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, &ComputationError{Reason: "zero-norm vector in similarity scoring"}
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// rankBySimilarity scores every document vector against the query vector
// and returns the topK best, sorted by score descending with ties broken
// by ascending original index.
func rankBySimilarity(query []float32, documents []string, vectors [][]float32, topK int) ([]SimilarityResult, error) {
	var queryNorm float64
	for _, v := range query {
		queryNorm += float64(v) * float64(v)
	}
	if queryNorm == 0 {
		// Checked up front so degenerate queries are not blamed on the
		// first document.
		return nil, &ComputationError{Reason: "zero-norm query vector"}
	}

	results := make([]SimilarityResult, len(vectors))
	for i, vec := range vectors {
		score, err := cosineSimilarity(query, vec)
		if err != nil {
			var ce *ComputationError
			if errors.As(err, &ce) {
				return nil, &ComputationError{Reason: fmt.Sprintf("document %d: %s", i, ce.Reason)}
			}
			return nil, err
		}
		results[i] = SimilarityResult{Index: i, Document: documents[i], Score: score}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}
