// Package search implements the retrieval-fusion-rerank pipeline: vector
// candidates are filtered by category/attribute criteria, blended with
// lexical relevance, optionally rescored by a cross-encoder, and assembled
// into ranked results. All process-wide inputs (catalog, lexical model,
// indices) are immutable, so one Service instance serves concurrent requests
// without locking.
package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/domain/search/filter"
	"github.com/jewelux/gemdex/internal/domain/search/result"
)

// Weights blends the two first-pass scoring regimes. Lexical outweighs
// visual so exact material/gemstone terms are not drowned out by generic
// visual similarity.
type Weights struct {
	Visual  float64
	Lexical float64
}

// DefaultWeights is the tuned weight pair.
var DefaultWeights = Weights{Visual: 0.4, Lexical: 0.6}

const (
	// defaultCandidateK is how many nearest neighbours the index returns
	// before filtering and fusion.
	defaultCandidateK = 50
	// defaultRerankPool widens the fused working set when a reranker is
	// present, so the cross-encoder sees an adequately large shortlist.
	defaultRerankPool = 100
)

// Service runs the search pipeline.
type Service struct {
	catalog    Catalog
	photoIdx   VectorIndex
	sketchIdx  VectorIndex
	lexical    LexicalScorer
	embed      Embedder
	extract    Extractor
	reranker   Reranker
	assets     AssetReader
	weights    Weights
	candidateK int
	rerankPool int
}

// New creates the search service with the required collaborators.
func New(catalog Catalog, photoIdx, sketchIdx VectorIndex, lexical LexicalScorer, embed Embedder) *Service {
	return &Service{
		catalog:    catalog,
		photoIdx:   photoIdx,
		sketchIdx:  sketchIdx,
		lexical:    lexical,
		embed:      embed,
		weights:    DefaultWeights,
		candidateK: defaultCandidateK,
		rerankPool: defaultRerankPool,
	}
}

// WithReranker attaches the cross-encoder stage. Absent (nil) reranker means
// fusion output is the final ranking.
func (s *Service) WithReranker(r Reranker) *Service {
	s.reranker = r
	return s
}

// WithExtractor attaches the handwriting OCR/refinement provider.
func (s *Service) WithExtractor(e Extractor) *Service {
	s.extract = e
	return s
}

// WithAssets enables base64 asset payloads in assembled results.
func (s *Service) WithAssets(a AssetReader) *Service {
	s.assets = a
	return s
}

// WithWeights overrides the fusion weight pair.
func (s *Service) WithWeights(w Weights) *Service {
	s.weights = w
	return s
}

// WithCandidateK overrides the index retrieval depth.
func (s *Service) WithCandidateK(k int) *Service {
	if k > 0 {
		s.candidateK = k
	}
	return s
}

// WithRerankPool overrides how many fused candidates the cross-encoder sees.
func (s *Service) WithRerankPool(k int) *Service {
	if k > 0 {
		s.rerankPool = k
	}
	return s
}

// Text searches by free text. The query is embedded for vector search and
// simultaneously scored lexically during fusion.
func (s *Service) Text(ctx context.Context, queryText string, topK int, criteria filter.Criteria) ([]result.Ranked, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		// No actionable signal: empty result list, not an error.
		return nil, nil
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	emb, err := s.embed.EmbedText(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query text: %w", err)
	}

	ids, scores, err := s.searchIndex(s.photoIdx, emb.Embedding)
	if err != nil {
		return nil, err
	}
	return s.Rank(ctx, queryText, ids, scores, topK, criteria)
}

// Image searches by photo. Pure visual queries carry no text, so ranking
// falls back to raw vector similarity after filtering.
func (s *Service) Image(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	emb, err := s.embed.EmbedImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed query image: %w", err)
	}

	ids, scores, err := s.searchIndex(s.photoIdx, emb.Embedding)
	if err != nil {
		return nil, err
	}
	return s.Rank(ctx, "", ids, scores, topK, criteria)
}

// Sketch searches by hand drawing against the sketch-domain index.
func (s *Service) Sketch(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.sketchIdx == nil {
		return nil, fmt.Errorf("sketch index: %w", domain.ErrUninitialized)
	}

	emb, err := s.embed.EmbedSketch(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed query sketch: %w", err)
	}

	ids, scores, err := s.searchIndex(s.sketchIdx, emb.Embedding)
	if err != nil {
		return nil, err
	}
	return s.Rank(ctx, "", ids, scores, topK, criteria)
}

// Handwriting extracts a query from a photographed note, then runs the text
// pipeline. An empty refined query yields empty results with the extraction
// still reported, so the caller can show what was (not) read.
func (s *Service) Handwriting(
	ctx context.Context, image []byte, topK int, criteria filter.Criteria,
) ([]result.Ranked, domain.Extraction, error) {
	if s.extract == nil {
		return nil, domain.Extraction{}, fmt.Errorf("text extraction provider: %w", domain.ErrUninitialized)
	}

	extraction, err := s.extract.Extract(ctx, image)
	if err != nil {
		return nil, domain.Extraction{}, fmt.Errorf("extract handwriting: %w", err)
	}
	if strings.TrimSpace(extraction.Refined) == "" {
		return nil, extraction, nil
	}

	results, err := s.Text(ctx, extraction.Refined, topK, criteria)
	if err != nil {
		return nil, domain.Extraction{}, err
	}
	return results, extraction, nil
}

// Rank is the fusion+rerank entry point: it takes vector-index candidates
// (ids with visual similarity scores, best first) plus the canonical query
// text and produces the final ranked records. This is the sole contract a
// request-handling layer needs beyond the modality helpers above.
func (s *Service) Rank(
	ctx context.Context, queryText string,
	ids []int, visualScores []float32,
	topK int, criteria filter.Criteria,
) ([]result.Ranked, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(ids) != len(visualScores) {
		return nil, fmt.Errorf("%w: %d ids with %d scores", domain.ErrInvalidRequest, len(ids), len(visualScores))
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidRequest)
	}

	queryText = strings.TrimSpace(queryText)

	// With a reranker and query text, fusion keeps a wider pool so the
	// cross-encoder has something to work with; otherwise exactly topK.
	rerankActive := s.reranker != nil && queryText != ""
	limit := topK
	if rerankActive {
		limit = s.rerankPool
	}

	cands := s.fuse(queryText, ids, visualScores, criteria, limit)

	if rerankActive && len(cands) > 0 {
		reranked, err := s.rerankStage(ctx, queryText, cands, topK)
		if err != nil {
			return nil, err
		}
		cands = reranked
	} else if len(cands) > topK {
		cands = cands[:topK]
	}

	return s.assemble(ctx, cands), nil
}

func (s *Service) ready() error {
	if s.catalog == nil || s.catalog.Size() == 0 {
		return fmt.Errorf("catalog: %w", domain.ErrUninitialized)
	}
	if s.photoIdx == nil {
		return fmt.Errorf("photo index: %w", domain.ErrUninitialized)
	}
	if s.embed == nil {
		return fmt.Errorf("embedding provider: %w", domain.ErrUninitialized)
	}
	return nil
}

func (s *Service) searchIndex(idx VectorIndex, vec []float32) ([]int, []float32, error) {
	normalize(vec)
	ids, scores, err := idx.Search(vec, s.candidateK)
	if err != nil {
		return nil, nil, fmt.Errorf("index search: %w", err)
	}
	return ids, scores, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
