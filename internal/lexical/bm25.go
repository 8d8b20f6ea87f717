// Package lexical scores query text against the catalog's descriptions with
// Okapi BM25. The model is built once at startup from the full corpus and is
// immutable afterwards, so concurrent scoring needs no locking.
package lexical

import (
	"math"
	"strings"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Model is a term-frequency model over the catalog corpus. Row order matches
// the catalog's identifier space one to one.
type Model struct {
	docFreqs  []map[string]int
	docLens   []int
	idf       map[string]float64
	avgDocLen float64
}

// Build tokenizes the corpus and precomputes document frequencies and IDF.
// Tokenization is lower-case whitespace splitting with no stemming or
// stop-word removal.
func Build(corpus []string) *Model {
	m := &Model{
		docFreqs: make([]map[string]int, len(corpus)),
		docLens:  make([]int, len(corpus)),
		idf:      make(map[string]float64),
	}

	df := make(map[string]int)
	total := 0
	for i, doc := range corpus {
		tokens := tokenize(doc)
		freqs := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freqs[t]++
		}
		for t := range freqs {
			df[t]++
		}
		m.docFreqs[i] = freqs
		m.docLens[i] = len(tokens)
		total += len(tokens)
	}

	n := float64(len(corpus))
	if n > 0 {
		m.avgDocLen = float64(total) / n
	}
	for term, d := range df {
		// Okapi BM25 IDF with the +1 smoothing so rare terms never go negative.
		m.idf[term] = math.Log(1 + (n-float64(d)+0.5)/(float64(d)+0.5))
	}
	return m
}

// Size returns the number of documents in the model.
func (m *Model) Size() int { return len(m.docFreqs) }

// Scores computes one raw relevance score (>= 0) per catalog row for the
// given query text. The slice index is the catalog row identifier.
func (m *Model) Scores(query string) []float64 {
	scores := make([]float64, len(m.docFreqs))
	tokens := tokenize(query)
	if len(tokens) == 0 || m.avgDocLen == 0 {
		return scores
	}
	for i, freqs := range m.docFreqs {
		docLen := float64(m.docLens[i])
		var s float64
		for _, t := range tokens {
			tf := float64(freqs[t])
			if tf == 0 {
				continue
			}
			num := tf * (bm25K1 + 1)
			den := tf + bm25K1*(1-bm25B+bm25B*docLen/m.avgDocLen)
			s += m.idf[t] * num / den
		}
		scores[i] = s
	}
	return scores
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
