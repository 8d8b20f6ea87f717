package lexical

import "testing"

var corpus = []string{
	"gold diamond ring",
	"silver chain",
	"silver band",
}

func TestScores_MatchingTermsRankHigher(t *testing.T) {
	m := Build(corpus)

	scores := m.Scores("gold ring")
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0] <= 0 {
		t.Errorf("doc 0 matches both terms, expected positive score, got %f", scores[0])
	}
	if scores[1] != 0 {
		t.Errorf("doc 1 matches no terms, expected 0, got %f", scores[1])
	}
	if scores[0] <= scores[2] {
		t.Errorf("two-term match should outscore zero-term match: %f vs %f", scores[0], scores[2])
	}
}

func TestScores_EmptyQuery(t *testing.T) {
	m := Build(corpus)
	for i, s := range m.Scores("   ") {
		if s != 0 {
			t.Errorf("doc %d: expected 0 for empty query, got %f", i, s)
		}
	}
}

func TestScores_CaseInsensitive(t *testing.T) {
	m := Build(corpus)
	lower := m.Scores("silver chain")
	upper := m.Scores("SILVER CHAIN")
	for i := range lower {
		if lower[i] != upper[i] {
			t.Errorf("doc %d: case changed the score: %f vs %f", i, lower[i], upper[i])
		}
	}
}

func TestScores_Deterministic(t *testing.T) {
	m := Build(corpus)
	a := m.Scores("gold ring")
	b := m.Scores("gold ring")
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("doc %d: repeated scoring differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	m := Build(nil)
	if m.Size() != 0 {
		t.Fatalf("expected empty model, got size %d", m.Size())
	}
	if got := m.Scores("anything"); len(got) != 0 {
		t.Fatalf("expected no scores, got %d", len(got))
	}
}
