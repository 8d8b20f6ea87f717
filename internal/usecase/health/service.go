package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: searches still work but an
	// optional stage (rerank, cache) is down.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot rank at all.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. Catalog and embedding are required
// for ranking; rerank and cache are optional stages whose failure only
// degrades the report.
type Service struct {
	catalog   CatalogInfo
	embedding EmbeddingChecker
	rerank    RerankChecker
	cache     CachePinger
}

// New creates a Service. rerank and cache can be nil.
func New(catalog CatalogInfo, embedding EmbeddingChecker, rerank RerankChecker, cache CachePinger) *Service {
	return &Service{catalog: catalog, embedding: embedding, rerank: rerank, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	required := true

	if s.catalog == nil || s.catalog.Size() == 0 {
		checks["catalog"] = CheckError
		required = false
	} else {
		checks["catalog"] = CheckOK
	}

	if s.embedding == nil {
		checks["embedding"] = CheckError
		required = false
	} else if err := s.embedding.HealthCheck(ctx); err != nil {
		checks["embedding"] = CheckError
		required = false
	} else {
		checks["embedding"] = CheckOK
	}

	optional := true
	if s.rerank != nil {
		if err := s.rerank.HealthCheck(ctx); err != nil {
			checks["rerank"] = CheckError
			optional = false
		} else {
			checks["rerank"] = CheckOK
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			optional = false
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	switch {
	case !required:
		status = Unhealthy
	case !optional:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
