package lexical

import "testing"

func TestRankFindsLexicalMatch(t *testing.T) {
	documents := []string{
		"Die Philosophie ist wichtig.",
		"Der Materialismus ist eine Weltanschauung.",
		"Kochrezepte für Anfänger.",
	}

	results := Rank("Materialismus", documents, 2)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Index != 1 {
		t.Errorf("top result index = %d, want 1", results[0].Index)
	}
	if results[0].Score <= 0 || results[0].Score > 1 {
		t.Errorf("score %f outside (0, 1]", results[0].Score)
	}
}

func TestRankTopKClamped(t *testing.T) {
	documents := []string{"alpha", "alphabet", "alpine"}

	results := Rank("alp", documents, 100)
	if len(results) > len(documents) {
		t.Errorf("got %d results for %d documents", len(results), len(documents))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results not ordered by score descending")
		}
	}
}

func TestRankNoMatches(t *testing.T) {
	results := Rank("zzzz", []string{"alpha", "beta"}, 5)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRankEmptyDocuments(t *testing.T) {
	if results := Rank("query", nil, 5); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
