package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/domain"
)

const transcribePrompt = `Transcribe the handwritten text in this image exactly as written. ` +
	`Output only the transcription, nothing else. If no text is legible, output an empty string.`

const refinePrompt = `You are a jewelry search assistant. Clean up noisy OCR text extracted ` +
	`from a handwritten note and detect the jewelry category.

RULES:
1. Correct spelling errors (e.g. 'diomond' -> 'diamond', 'neklace' -> 'necklace').
2. Standardize terms: use 'ring', 'necklace', 'earring', 'bracelet', 'bangle'.
3. Standardize stones: use 'diamond', 'ruby', 'emerald', 'sapphire', 'white stone'.
4. Remove noise (special characters, random letters).
5. Output a VALID JSON object with two fields: "query" (cleaned text) and "category" (one of: ring, necklace, bracelet, earring, or null if unknown).

Raw OCR text: %q

Output JSON:`

// Refiner turns a photographed handwritten note into a cleaned search query:
// a vision transcription pass followed by a JSON-mode cleanup pass.
type Refiner struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// RefinerConfig holds the chat model settings.
type RefinerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewRefiner creates the OCR/refinement provider client.
func NewRefiner(cfg *RefinerConfig) *Refiner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Refiner{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Extract transcribes the image and refines the transcript. An empty Refined
// field means the note carried no actionable query. Refinement failures fall
// back to the raw transcript rather than failing the request.
func (r *Refiner) Extract(ctx context.Context, image []byte) (domain.Extraction, error) {
	raw, err := r.transcribe(ctx, image)
	if err != nil {
		return domain.Extraction{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return domain.Extraction{Raw: raw}, nil
	}

	refined, category, err := r.refine(ctx, raw)
	if err != nil {
		r.logger.Warn("Query refinement failed, using raw transcript", zap.Error(err))
		return domain.Extraction{Raw: raw, Refined: strings.TrimSpace(raw), Category: detectCategory(raw)}, nil
	}
	if category == "" {
		category = detectCategory(refined)
	}
	return domain.Extraction{Raw: raw, Refined: refined, Category: category}, nil
}

func (r *Refiner) transcribe(ctx context.Context, image []byte) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		MaxTokens:   120,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: transcribePrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL: dataURL(image),
				}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("transcribe handwriting: %w: %w", domain.ErrExtractionProviderError, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty transcription response: %w", domain.ErrExtractionProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}

func (r *Refiner) refine(ctx context.Context, raw string) (query, category string, err error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		MaxTokens:   60,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(refinePrompt, raw),
		}},
	})
	if err != nil {
		return "", "", fmt.Errorf("refine query: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("empty refinement response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed struct {
		Query    string `json:"query"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// JSON mode rarely misfires, but when it does the plain content is
		// still usually the cleaned query.
		return content, "", nil
	}
	return strings.TrimSpace(parsed.Query), strings.ToLower(strings.TrimSpace(parsed.Category)), nil
}

// categoryKeywords is scanned in order; the first keyword found in the query
// wins. This is a best-effort classifier, not a guaranteed-correct one:
// multi-keyword queries resolve to whichever listed term appears first here.
// "earring" must precede "ring", which it contains as a substring.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"earring", "earring"},
	{"ring", "ring"},
	{"necklace", "necklace"},
	{"bracelet", "bracelet"},
	{"bangle", "bracelet"},
}

func detectCategory(query string) string {
	q := strings.ToLower(query)
	for _, kc := range categoryKeywords {
		if strings.Contains(q, kc.keyword) {
			return kc.category
		}
	}
	return ""
}
