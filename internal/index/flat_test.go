package index

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSearch_NearestFirst(t *testing.T) {
	idx, err := New(2, [][]float32{
		{1, 0},
		{0, 1},
		{0.7, 0.7},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ids, scores, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(ids))
	}
	if ids[0] != 0 {
		t.Errorf("expected id 0 first, got %d", ids[0])
	}
	if ids[1] != 2 {
		t.Errorf("expected id 2 second, got %d", ids[1])
	}
	if scores[0] < scores[1] {
		t.Errorf("scores not descending: %f < %f", scores[0], scores[1])
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx, _ := New(2, [][]float32{{1, 0}})
	ids, _, err := idx.Search([]float32{0, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(ids))
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, _ := New(2, [][]float32{{1, 0}})
	if _, _, err := idx.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	norm := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1]))
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", norm)
	}

	zero := []float32{0, 0}
	Normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("zero vector must stay unchanged")
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}}
	buf := make([]byte, 0, len(vectors)*3*4)
	for _, row := range vectors {
		for _, x := range row {
			var cell [4]byte
			binary.LittleEndian.PutUint32(cell[:], math.Float32bits(x))
			buf = append(buf, cell[:]...)
		}
	}

	path := filepath.Join(t.TempDir(), "photo.bin")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	idx, err := Load(path, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Size() != 2 {
		t.Fatalf("expected 2 vectors, got %d", idx.Size())
	}

	ids, _, err := idx.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if ids[0] != 1 {
		t.Errorf("expected id 1, got %d", ids[0])
	}
}

func TestLoad_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, 3); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
