package domain

import "errors"

var (
	// ErrUninitialized signals that a required collaborator (catalog, index,
	// embedding provider) was never loaded.
	ErrUninitialized = errors.New("dependency not initialized")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidSchema signals a catalog schema problem detected at load time.
	ErrInvalidSchema = errors.New("invalid catalog schema")
	// ErrVectorDimMismatch signals a query vector of the wrong dimensionality.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrIndexCorpusMismatch signals a vector-index identifier outside the
	// catalog's row range. Handled per candidate, never fatal to a request.
	ErrIndexCorpusMismatch = errors.New("index id outside catalog range")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrExtractionProviderError signals an OCR/refinement provider failure.
	ErrExtractionProviderError = errors.New("text extraction provider error")
	// ErrRerankerUnavailable signals that the rerank service failed its
	// startup check; the rerank stage is absent for the process lifetime.
	ErrRerankerUnavailable = errors.New("reranker unavailable")
)
