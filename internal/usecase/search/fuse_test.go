package search

import (
	"math"
	"testing"

	"github.com/jewelux/gemdex/internal/domain/search/filter"
	"github.com/jewelux/gemdex/internal/lexical"
)

func TestFuse_WeightedBlend(t *testing.T) {
	cat := threeItemCatalog(t)
	svc := newTestService(t, cat, &mockIndex{})

	// "silver" matches items 1 and 2 lexically with equal strength, so
	// after max-normalization both get lexical 1.0 and item 0 gets 0.
	cands := svc.fuse("silver", []int{0, 1, 2}, []float32{0.9, 0.85, 0.8}, filter.Criteria{}, 10)

	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	if cands[0].id != 1 || cands[1].id != 2 || cands[2].id != 0 {
		t.Fatalf("expected order [1 2 0], got [%d %d %d]", cands[0].id, cands[1].id, cands[2].id)
	}
	want := 0.4*0.85 + 0.6*1.0
	if math.Abs(cands[0].score-want) > 1e-9 {
		t.Errorf("expected fused score %f, got %f", want, cands[0].score)
	}
}

func TestFuse_EmptyTextPassesVisualThrough(t *testing.T) {
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{})

	cands := svc.fuse("", []int{2, 0}, []float32{0.7, 0.5}, filter.Criteria{}, 10)
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	if cands[0].score != 0.7 || cands[1].score != 0.5 {
		t.Errorf("visual scores must pass through unchanged, got %f %f", cands[0].score, cands[1].score)
	}
	if cands[0].lexical != 0 {
		t.Errorf("no lexical component expected, got %f", cands[0].lexical)
	}
}

func TestFuse_NoLexicalMatchStaysZero(t *testing.T) {
	// None of the query terms occur in the corpus: lexical stays all-zero
	// and fused scores degrade gracefully to the visual component alone.
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{})

	cands := svc.fuse("sapphire tiara", []int{0}, []float32{0.9}, filter.Criteria{}, 10)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	want := 0.4 * 0.9
	if math.Abs(cands[0].score-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, cands[0].score)
	}
}

func TestFuse_StableTieBreak(t *testing.T) {
	cat := newMockCatalog(t,
		[3]string{"a.jpg", "ring", "plain band"},
		[3]string{"b.jpg", "ring", "plain band"},
	)
	svc := newTestService(t, cat, &mockIndex{})

	// Identical scores: original index order must be preserved.
	cands := svc.fuse("", []int{1, 0}, []float32{0.5, 0.5}, filter.Criteria{}, 10)
	if cands[0].id != 1 || cands[1].id != 0 {
		t.Errorf("tie must keep index order [1 0], got [%d %d]", cands[0].id, cands[1].id)
	}
}

func TestFuse_LimitTruncatesAfterSort(t *testing.T) {
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{})

	cands := svc.fuse("", []int{0, 1, 2}, []float32{0.1, 0.9, 0.5}, filter.Criteria{}, 2)
	if len(cands) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(cands))
	}
	// The lowest-scored candidate (id 0) is the one cut.
	if cands[0].id != 1 || cands[1].id != 2 {
		t.Errorf("expected best two [1 2], got [%d %d]", cands[0].id, cands[1].id)
	}
}

func TestFuse_RetainsIndexRank(t *testing.T) {
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{})

	cands := svc.fuse("", []int{2, 1}, []float32{0.9, 0.8}, filter.Criteria{}, 10)
	if cands[0].rank != 0 || cands[1].rank != 1 {
		t.Errorf("original index positions must be retained, got %d %d", cands[0].rank, cands[1].rank)
	}
}

func TestNormalizeByMax(t *testing.T) {
	out := normalizeByMax([]float64{2, 4, 1})
	want := []float64{0.5, 1, 0.25}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], out[i])
		}
	}

	zeros := normalizeByMax([]float64{0, 0})
	for i, v := range zeros {
		if v != 0 {
			t.Errorf("all-zero input must stay zero, index %d got %f", i, v)
		}
	}
}

func TestFuse_LexicalUsesFullCorpus(t *testing.T) {
	// The lexical model covers the whole catalog, not just candidates:
	// normalization is against the global best match even when that row
	// was not retrieved by the vector index.
	cat := threeItemCatalog(t)
	lex := lexical.Build(descriptions(cat))
	svc := New(cat, &mockIndex{}, &mockIndex{}, lex, &mockEmbedder{})

	// "gold diamond ring" matches item 0 perfectly; item 2 shares only
	// "ring". Retrieve only item 2: its lexical score is normalized
	// against item 0's and lands strictly below 1.
	cands := svc.fuse("gold diamond ring", []int{2}, []float32{0.5}, filter.Criteria{}, 10)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].lexical >= 1 {
		t.Errorf("partial match must normalize below 1.0, got %f", cands[0].lexical)
	}
	if cands[0].lexical <= 0 {
		t.Errorf("shared term must score above zero, got %f", cands[0].lexical)
	}
}
