// Package tags produces query suggestions sampled from catalog descriptions.
// This is the only place randomness enters the service; ranking stays fully
// deterministic.
package tags

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	sampleSize  = 5
	maxTagLen   = 45
	truncateLen = 42
)

// Fallbacks when the catalog is absent or holds no usable descriptions.
var (
	fallbackNoCatalog      = []string{"Gold Necklace", "Diamond Ring", "Silver Bracelet", "Pearl Earrings"}
	fallbackNoDescriptions = []string{"Luxury", "Elegance", "Vintage", "Modern"}
)

// Catalog exposes the description corpus the sampler draws from.
type Catalog interface {
	Descriptions() []string
}

// Service samples and cleans description snippets for the suggestion strip.
type Service struct {
	catalog Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates the suggestion service.
func New(catalog Catalog) *Service {
	return &Service{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand overrides the randomness source. Tests use a fixed seed.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// Suggest returns up to five cleaned description snippets. It never errors:
// a missing catalog or an all-empty corpus degrades to a static set.
func (s *Service) Suggest() []string {
	if s.catalog == nil {
		return fallbackNoCatalog
	}

	var valid []string
	for _, desc := range s.catalog.Descriptions() {
		if strings.TrimSpace(desc) != "" {
			valid = append(valid, desc)
		}
	}
	if len(valid) == 0 {
		return fallbackNoDescriptions
	}

	n := sampleSize
	if len(valid) < n {
		n = len(valid)
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(valid))
	s.mu.Unlock()

	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, Clean(valid[i]))
	}
	return out
}

var articles = []string{"a ", "an ", "the "}

// Clean normalizes one description into a display tag: leading article
// stripped, first letter capitalized, truncated with an ellipsis past 45
// characters.
func Clean(desc string) string {
	text := strings.TrimSpace(desc)

	lower := strings.ToLower(text)
	for _, prefix := range articles {
		if strings.HasPrefix(lower, prefix) {
			text = text[len(prefix):]
			break
		}
	}

	if text != "" {
		r, size := utf8.DecodeRuneInString(text)
		text = string(unicode.ToUpper(r)) + text[size:]
	}

	if utf8.RuneCountInString(text) > maxTagLen {
		runes := []rune(text)
		text = string(runes[:truncateLen]) + "..."
	}
	return text
}
