// Package query holds the result-count policy shared by every search
// endpoint.
package query

import (
	"fmt"

	"github.com/jewelux/gemdex/internal/domain"
)

// MaxTopK bounds the caller-requested result count.
const MaxTopK = 100

// DefaultTopK is used when the caller does not specify a result count.
const DefaultTopK = 12

// ClampTopK normalizes a caller-requested result count: zero or negative
// falls back to the default, values above MaxTopK are rejected.
func ClampTopK(topK int) (int, error) {
	if topK <= 0 {
		return DefaultTopK, nil
	}
	if topK > MaxTopK {
		return 0, fmt.Errorf("%w: top_k must be at most %d, got %d", domain.ErrInvalidRequest, MaxTopK, topK)
	}
	return topK, nil
}
