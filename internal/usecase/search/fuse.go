package search

import (
	"sort"

	"github.com/jewelux/gemdex/internal/domain/search/filter"
)

// candidate is the transient per-request record each pipeline stage refines.
// It is never persisted.
type candidate struct {
	id      int
	visual  float64
	lexical float64
	// score is the candidate's current relevance: fused after this stage,
	// overwritten with the calibrated cross-encoder probability if a
	// reranker runs.
	score float64
	// hybrid retains the fused score after reranking, for diagnostics only.
	hybrid float64
	// rank is the original vector-index position, the stable tie-breaker.
	rank int
}

// fuse filters the vector candidates, blends visual similarity with
// max-normalized lexical relevance, and returns up to limit candidates
// sorted by fused score descending. With empty query text the visual scores
// pass through unchanged (pure vector ranking; filters still apply).
// Candidates whose id falls outside the catalog/lexical row range are
// dropped — that guards against index/corpus desynchronization and is never
// fatal to the request.
func (s *Service) fuse(
	queryText string,
	ids []int, visualScores []float32,
	criteria filter.Criteria, limit int,
) []candidate {
	var lexScores []float64
	if queryText != "" {
		lexScores = normalizeByMax(s.lexical.Scores(queryText))
	}

	cands := make([]candidate, 0, len(ids))
	for rank, id := range ids {
		if id < 0 || id >= s.catalog.Size() {
			continue
		}
		if lexScores != nil && id >= len(lexScores) {
			continue
		}

		item, ok := s.catalog.Item(id)
		if !ok || !criteria.Keep(item) {
			continue
		}

		c := candidate{
			id:     id,
			visual: float64(visualScores[rank]),
			rank:   rank,
		}
		if lexScores == nil {
			c.score = c.visual
		} else {
			c.lexical = lexScores[id]
			c.score = s.weights.Visual*c.visual + s.weights.Lexical*c.lexical
		}
		cands = append(cands, c)
	}

	// Stable sort: equal fused scores keep the original vector-index order,
	// so repeated runs over fixed inputs produce identical rankings.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

// normalizeByMax rescales raw lexical scores so the best match scores 1.0.
// An all-zero vector stays zero.
func normalizeByMax(scores []float64) []float64 {
	var maxScore float64
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		return scores
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / maxScore
	}
	return out
}
