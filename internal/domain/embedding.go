package domain

import "context"

// Embedder vectorizes the supported query modalities. Vectors are
// fixed-dimension float32 and must be L2-normalized by the caller before any
// inner-product index search.
type Embedder interface {
	EmbedText(ctx context.Context, text string) (EmbeddingResult, error)
	EmbedImage(ctx context.Context, image []byte) (EmbeddingResult, error)
	EmbedSketch(ctx context.Context, image []byte) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is a vector plus provider usage accounting.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// Extraction is the outcome of the OCR + refinement step for handwriting
// queries. Refined may be empty, which means "no actionable query".
// Category is a best-effort detection and may be empty.
type Extraction struct {
	Raw      string
	Refined  string
	Category string
}
