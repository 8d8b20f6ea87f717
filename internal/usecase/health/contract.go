package health

import "context"

// CatalogInfo reports the loaded catalog size.
type CatalogInfo interface {
	Size() int
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// RerankChecker checks the cross-encoder scoring service.
type RerankChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the embedding cache backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}
