package gemdex

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes. Use errors.Is() to check.
var (
	ErrUnavailable = errors.New("gemdex: service unavailable")
	ErrUpstream    = errors.New("gemdex: upstream provider failed")
	ErrValidation  = errors.New("gemdex: invalid request")
)

// APIError is the decoded error payload of a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemdex: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the error code onto a sentinel so callers can branch without
// string matching.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "uninitialized_dependency":
		return ErrUnavailable
	case "embedding_provider_error", "extraction_provider_error", "reranker_unavailable":
		return ErrUpstream
	case "validation_failed", "bad_request":
		return ErrValidation
	default:
		return nil
	}
}
