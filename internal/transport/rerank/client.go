// Package rerank is an HTTP client for the cross-encoder scoring service.
// The service jointly encodes (query, passage) pairs and returns one raw
// logit per pair; squashing and calibration happen in the ranking pipeline.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jewelux/gemdex/internal/metrics"
)

// Client scores query/passage pairs against a remote cross-encoder.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a rerank client.
func New(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Model    string   `json:"model"`
	Query    string   `json:"query"`
	Passages []string `json:"passages"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score returns one raw logit per passage, in input order. Pairs are scored
// independently by the model, so input order never changes individual scores.
func (c *Client) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(scoreRequest{Model: c.model, Query: query, Passages: passages})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rerank: status %d", resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(parsed.Scores) != len(passages) {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rerank returned %d scores for %d passages", len(parsed.Scores), len(passages))
	}

	metrics.RerankRequestsTotal.WithLabelValues("success").Inc()
	return parsed.Scores, nil
}

// HealthCheck probes the service once. Startup uses it for feature
// detection: a failing reranker disables the rerank stage for the process
// lifetime instead of being retried per request.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rerank health: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rerank health: status %d", resp.StatusCode)
	}
	return nil
}
