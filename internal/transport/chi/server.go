// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/domain/search/filter"
	"github.com/jewelux/gemdex/internal/domain/search/query"
	"github.com/jewelux/gemdex/internal/domain/search/result"
	"github.com/jewelux/gemdex/internal/metrics"
	healthuc "github.com/jewelux/gemdex/internal/usecase/health"
)

// maxUploadBytes bounds query image payloads.
const maxUploadBytes = 10 << 20

// Searcher is the search pipeline surface the transport needs.
type Searcher interface {
	Text(ctx context.Context, queryText string, topK int, criteria filter.Criteria) ([]result.Ranked, error)
	Image(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, error)
	Sketch(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, error)
	Handwriting(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, domain.Extraction, error)
}

// Suggester produces query suggestions for the UI.
type Suggester interface {
	Suggest() []string
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	tags          Suggester
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, tags Suggester, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		tags:   tags,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUninitialized, http.StatusServiceUnavailable, "uninitialized_dependency"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrExtractionProviderError, http.StatusBadGateway, "extraction_provider_error"),
		sentinelHandler(domain.ErrRerankerUnavailable, http.StatusBadGateway, "reranker_unavailable"),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, "validation_failed"),
	}
	return s
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search/text", s.SearchText)
	r.Post("/search/image", s.SearchImage)
	r.Post("/search/sketch", s.SearchSketch)
	r.Post("/search/handwriting", s.SearchHandwriting)
	r.Get("/tags", s.Tags)
	r.Get("/health", s.Health)
}

// SearchText handles POST /search/text.
func (s *Server) SearchText(w http.ResponseWriter, r *http.Request) {
	var req textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	criteria, err := filter.New(req.CategoryFilter, req.AttributeFilters)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	topK, err := query.ClampTopK(req.TopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	results, err := s.search.Text(r.Context(), req.Query, topK, criteria)
	s.observeSearch("text", err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToDTO(results))
}

// SearchImage handles POST /search/image (multipart: file, top_k?, filters).
func (s *Server) SearchImage(w http.ResponseWriter, r *http.Request) {
	s.visualSearch(w, r, "image", s.search.Image)
}

// SearchSketch handles POST /search/sketch against the sketch-domain index.
func (s *Server) SearchSketch(w http.ResponseWriter, r *http.Request) {
	s.visualSearch(w, r, "sketch", s.search.Sketch)
}

func (s *Server) visualSearch(
	w http.ResponseWriter, r *http.Request, kind string,
	run func(ctx context.Context, image []byte, topK int, criteria filter.Criteria) ([]result.Ranked, error),
) {
	image, topK, criteria, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	results, err := run(r.Context(), image, topK, criteria)
	s.observeSearch(kind, err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsToDTO(results))
}

// SearchHandwriting handles POST /search/handwriting. The response carries
// the OCR extraction even when no actionable query was read.
func (s *Server) SearchHandwriting(w http.ResponseWriter, r *http.Request) {
	image, topK, criteria, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	results, extraction, err := s.search.Handwriting(r.Context(), image, topK, criteria)
	s.observeSearch("handwriting", err)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extractionToDTO(results, extraction))
}

// Tags handles GET /tags.
func (s *Server) Tags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tagsResponse{Tags: s.tags.Suggest()})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToDTO(report))
}

// parseUpload reads the multipart query image plus optional top_k,
// category_filter and attribute_filters (JSON object) form fields.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) ([]byte, int, filter.Criteria, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart form: "+err.Error())
		return nil, 0, filter.Criteria{}, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "Form field \"file\" is required")
		return nil, 0, filter.Criteria{}, false
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "Empty or unreadable file upload")
		return nil, 0, filter.Criteria{}, false
	}

	topK := 0
	if v := r.FormValue("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be an integer")
			return nil, 0, filter.Criteria{}, false
		}
	}
	topK, err = query.ClampTopK(topK)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return nil, 0, filter.Criteria{}, false
	}

	var attrs map[string][]string
	if v := r.FormValue("attribute_filters"); v != "" {
		if err := json.Unmarshal([]byte(v), &attrs); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "attribute_filters must be a JSON object")
			return nil, 0, filter.Criteria{}, false
		}
	}
	criteria, err := filter.New(r.FormValue("category_filter"), attrs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return nil, 0, filter.Criteria{}, false
	}

	return image, topK, criteria, true
}

func (s *Server) observeSearch(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchesTotal.WithLabelValues(kind, status).Inc()
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, handle := range s.errorHandlers {
		if handle(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled request error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
