// Package index provides a flat inner-product vector index over the catalog
// embeddings. Vectors are stored L2-normalized, so inner product equals
// cosine similarity. One instance exists per query modality (photo-domain
// and sketch-domain) and is read-only after load.
package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
)

// Flat is a brute-force inner-product index.
type Flat struct {
	dim     int
	vectors [][]float32
}

// New builds an index from pre-computed vectors. Every vector is
// L2-normalized on the way in.
func New(dim int, vectors [][]float32) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
		Normalize(v)
	}
	return &Flat{dim: dim, vectors: vectors}, nil
}

// Load reads an index file: little-endian float32 values, row-major, with the
// row count implied by the file size. Row order matches the catalog's
// identifier space.
func Load(path string, dim int) (*Flat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	rowBytes := dim * 4
	if len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("index file %s: %d bytes is not a multiple of %d", path, len(data), rowBytes)
	}
	count := len(data) / rowBytes
	vectors := make([][]float32, count)
	for i := range vectors {
		row := make([]float32, dim)
		base := i * rowBytes
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+j*4:]))
		}
		vectors[i] = row
	}
	return New(dim, vectors)
}

// Size returns the number of indexed vectors.
func (f *Flat) Size() int { return len(f.vectors) }

// Dim returns the vector dimensionality.
func (f *Flat) Dim() int { return f.dim }

// Search returns the ids and similarity scores of the k nearest vectors by
// inner product, best first. The query must already be L2-normalized.
func (f *Flat) Search(vec []float32, k int) ([]int, []float32, error) {
	if len(vec) != f.dim {
		return nil, nil, fmt.Errorf("query dimension %d, index dimension %d", len(vec), f.dim)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil, nil
	}
	type hit struct {
		id    int
		score float32
	}
	hits := make([]hit, len(f.vectors))
	for i, row := range f.vectors {
		var dot float32
		for j, x := range row {
			dot += x * vec[j]
		}
		hits[i] = hit{id: i, score: dot}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if k > len(hits) {
		k = len(hits)
	}
	ids := make([]int, k)
	scores := make([]float32, k)
	for i := 0; i < k; i++ {
		ids[i] = hits[i].id
		scores[i] = hits[i].score
	}
	return ids, scores, nil
}

// Normalize scales a vector to unit L2 norm in place. Zero vectors are left
// unchanged.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
