package search

import (
	"context"

	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/domain/catalog"
)

// Catalog provides read-only access to the loaded catalog table.
type Catalog interface {
	Item(id int) (*catalog.Item, bool)
	Size() int
}

// VectorIndex returns the nearest catalog ids with similarity scores, best
// first. One instance exists per query modality.
type VectorIndex interface {
	Search(vec []float32, k int) ([]int, []float32, error)
}

// LexicalScorer scores query text against every catalog row. The returned
// slice is indexed by catalog row identifier; values are raw (>= 0).
type LexicalScorer interface {
	Scores(query string) []float64
	Size() int
}

// Embedder vectorizes query payloads.
type Embedder interface {
	EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error)
	EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error)
	EmbedSketch(ctx context.Context, image []byte) (domain.EmbeddingResult, error)
}

// Extractor turns a handwritten note image into a cleaned query.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (domain.Extraction, error)
}

// Reranker scores (query, passage) pairs with a cross-encoder, returning one
// raw logit per passage in input order.
type Reranker interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// AssetReader loads item assets for transport encoding.
type AssetReader interface {
	ReadAsset(path string) ([]byte, error)
}
