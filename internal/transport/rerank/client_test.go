package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScore_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "gold ring" {
			t.Errorf("unexpected query %q", req.Query)
		}
		scores := make([]float64, len(req.Passages))
		for i := range scores {
			scores[i] = float64(i)
		}
		_ = json.NewEncoder(w).Encode(scoreResponse{Scores: scores})
	}))
	defer srv.Close()

	c := New(srv.URL, "cross-encoder-v1", time.Second)
	scores, err := c.Score(context.Background(), "gold ring", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[2] != 2 {
		t.Errorf("expected score order preserved, got %v", scores)
	}
}

func TestScore_EmptyPassages(t *testing.T) {
	c := New("http://unused", "m", time.Second)
	scores, err := c.Score(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores != nil {
		t.Errorf("expected nil scores, got %v", scores)
	}
}

func TestScore_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{1}})
	}))
	defer srv.Close()

	c := New(srv.URL, "m", time.Second)
	if _, err := c.Score(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Fatal("expected error for score count mismatch")
	}
}

func TestScore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "m", time.Second)
	if _, err := c.Score(context.Background(), "q", []string{"a"}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "m", time.Second)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	down := New("http://127.0.0.1:1", "m", 200*time.Millisecond)
	if err := down.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for unreachable service")
	}
}
