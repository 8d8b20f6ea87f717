package search

import (
	"context"
	"math"
	"testing"
)

func TestCalibrate_TopLandsAtTarget(t *testing.T) {
	cands := []candidate{{score: 0.9}, {score: 0.6}, {score: 0.3}}
	calibrate(cands)

	if math.Abs(cands[0].score-0.98) > 1e-9 {
		t.Errorf("top score must be 0.98, got %f", cands[0].score)
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].score > cands[i-1].score {
			t.Errorf("calibration reordered scores at %d", i)
		}
	}
}

func TestCalibrate_BoostLiftsHighConfidenceHead(t *testing.T) {
	// All squashed scores land above the boost threshold after scaling:
	// positions 0..4 must reach at least 0.96 - 0.005*i.
	cands := []candidate{
		{score: 0.95}, {score: 0.94}, {score: 0.93},
		{score: 0.92}, {score: 0.91}, {score: 0.90},
	}
	calibrate(cands)

	for i := 0; i < 5; i++ {
		floor := 0.96 - 0.005*float64(i)
		if cands[i].score < floor {
			t.Errorf("position %d: expected at least %f, got %f", i, floor, cands[i].score)
		}
	}
}

func TestCalibrate_ClampsAtCeiling(t *testing.T) {
	cands := []candidate{{score: 0.5}, {score: 0.499}, {score: 0.498}}
	calibrate(cands)

	for i, c := range cands {
		if c.score > 0.99 {
			t.Errorf("position %d: score %f exceeds ceiling", i, c.score)
		}
	}
}

func TestCalibrate_LowScoresNotBoosted(t *testing.T) {
	// Scaled scores below the threshold keep their proportional value.
	cands := []candidate{{score: 0.9}, {score: 0.1}}
	calibrate(cands)

	want := 0.1 * (0.98 / 0.9)
	if math.Abs(cands[1].score-want) > 1e-9 {
		t.Errorf("expected proportional %f, got %f", want, cands[1].score)
	}
}

func TestCalibrate_DegenerateInputs(t *testing.T) {
	calibrate(nil)

	cands := []candidate{{score: 0}, {score: 0}}
	calibrate(cands)
	for i, c := range cands {
		if c.score != 0 {
			t.Errorf("non-positive best must leave scores untouched, index %d got %f", i, c.score)
		}
	}
}

func TestSigmoid(t *testing.T) {
	if got := sigmoid(0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("sigmoid(0) = %f, want 0.5", got)
	}
	if got := sigmoid(10); got <= 0.99 {
		t.Errorf("sigmoid(10) = %f, want near 1", got)
	}
	if got := sigmoid(-10); got >= 0.01 {
		t.Errorf("sigmoid(-10) = %f, want near 0", got)
	}
}

func TestRerankStage_ReordersBySquashedLogits(t *testing.T) {
	cat := threeItemCatalog(t)
	rr := &mockReranker{logits: []float64{-2, 0, 4}}
	svc := newTestService(t, cat, &mockIndex{}).WithReranker(rr)

	cands := []candidate{
		{id: 0, score: 0.9},
		{id: 1, score: 0.8},
		{id: 2, score: 0.7},
	}
	out, err := svc.rerankStage(context.Background(), "silver band", cands, 3)
	if err != nil {
		t.Fatalf("rerankStage: %v", err)
	}

	if out[0].id != 2 || out[1].id != 1 || out[2].id != 0 {
		t.Fatalf("expected logit order [2 1 0], got [%d %d %d]", out[0].id, out[1].id, out[2].id)
	}
	if math.Abs(out[0].score-0.98) > 1e-9 {
		t.Errorf("top calibrated score must be 0.98, got %f", out[0].score)
	}
}

func TestRerankStage_KeepsFusedScoreAsHybrid(t *testing.T) {
	rr := &mockReranker{logits: []float64{1, 2}}
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{}).WithReranker(rr)

	cands := []candidate{{id: 0, score: 0.77}, {id: 1, score: 0.55}}
	out, err := svc.rerankStage(context.Background(), "q", cands, 2)
	if err != nil {
		t.Fatalf("rerankStage: %v", err)
	}

	for _, c := range out {
		switch c.id {
		case 0:
			if c.hybrid != 0.77 {
				t.Errorf("id 0: hybrid = %f, want 0.77", c.hybrid)
			}
		case 1:
			if c.hybrid != 0.55 {
				t.Errorf("id 1: hybrid = %f, want 0.55", c.hybrid)
			}
		}
	}
}

func TestRerankStage_CountMismatchFails(t *testing.T) {
	rr := &mockReranker{logits: []float64{1}}
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{}).WithReranker(rr)

	cands := []candidate{{id: 0}, {id: 1}}
	if _, err := svc.rerankStage(context.Background(), "q", cands, 2); err == nil {
		t.Fatal("expected error on score count mismatch")
	}
}

func TestRerankStage_TruncatesToTopK(t *testing.T) {
	rr := &mockReranker{logits: []float64{3, 2, 1}}
	svc := newTestService(t, threeItemCatalog(t), &mockIndex{}).WithReranker(rr)

	cands := []candidate{{id: 0}, {id: 1}, {id: 2}}
	out, err := svc.rerankStage(context.Background(), "q", cands, 1)
	if err != nil {
		t.Fatalf("rerankStage: %v", err)
	}
	if len(out) != 1 || out[0].id != 0 {
		t.Fatalf("expected single best candidate id 0, got %d results", len(out))
	}
}
