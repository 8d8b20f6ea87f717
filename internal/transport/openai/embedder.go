// Package openai holds clients for the OpenAI-compatible AI providers: the
// embedding engine serving the text/photo/sketch encoder family and the chat
// model used to refine handwritten queries.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/metrics"
)

// Embedder talks to an OpenAI-compatible embedding API that serves one model
// per query modality. Image and sketch payloads travel as data URLs, the
// convention multimodal embedding servers accept as string input.
type Embedder struct {
	client      *openai.Client
	textModel   string
	imageModel  string
	sketchModel string
	dimensions  int
	logger      *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	SketchModel string
	Dimensions  int
	Logger      *zap.Logger
}

// NewEmbedder creates the embedding provider client.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Embedder{
		client:      openai.NewClientWithConfig(clientCfg),
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		sketchModel: cfg.SketchModel,
		dimensions:  cfg.Dimensions,
		logger:      cfg.Logger,
	}
}

// EmbedText implements domain.Embedder.
func (e *Embedder) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return e.embed(ctx, "text", e.textModel, text)
}

// EmbedImage implements domain.Embedder for photo queries.
func (e *Embedder) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return e.embed(ctx, "image", e.imageModel, dataURL(image))
}

// EmbedSketch implements domain.Embedder for hand-drawn queries. The sketch
// model is trained on edge-map representations, matching the sketch-domain
// index.
func (e *Embedder) EmbedSketch(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return e.embed(ctx, "sketch", e.sketchModel, dataURL(image))
}

func (e *Embedder) embed(ctx context.Context, modality, model, input string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{input},
		Model:          openai.EmbeddingModel(model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(modality, model, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(modality, model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(modality, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(modality, model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{
		Embedding:   resp.Data[0].Embedding,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func dataURL(image []byte) string {
	mime := http.DetectContentType(image)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// parseAPIError extracts a readable message and wraps everything with
// domain.ErrEmbeddingProviderError so transport maps it to 502.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
