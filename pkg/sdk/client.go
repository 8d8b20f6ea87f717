package gemdex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a gemdex API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchText runs a free-text search.
func (c *Client) SearchText(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	p := applySearchOptions(opts)
	body, err := json.Marshal(textSearchRequest{
		Query:            query,
		TopK:             p.topK,
		CategoryFilter:   p.category,
		AttributeFilters: p.attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var results []Result
	if err := c.postJSON(ctx, "/search/text", body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchImage searches by photo.
func (c *Client) SearchImage(ctx context.Context, image []byte, opts ...SearchOption) ([]Result, error) {
	var results []Result
	if err := c.postImage(ctx, "/search/image", image, opts, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchSketch searches by hand drawing against the sketch-domain index.
func (c *Client) SearchSketch(ctx context.Context, image []byte, opts ...SearchOption) ([]Result, error) {
	var results []Result
	if err := c.postImage(ctx, "/search/sketch", image, opts, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchHandwriting searches by a photographed handwritten note.
func (c *Client) SearchHandwriting(ctx context.Context, image []byte, opts ...SearchOption) (HandwritingResult, error) {
	var out HandwritingResult
	if err := c.postImage(ctx, "/search/handwriting", image, opts, &out); err != nil {
		return HandwritingResult{}, err
	}
	return out, nil
}

// Tags fetches query suggestions.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp tagsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// Health fetches the service health report. A degraded or unhealthy report
// is data, not an error; the error return covers transport failures only.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("gemdex request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func applySearchOptions(opts []SearchOption) searchParams {
	var p searchParams
	for _, o := range opts {
		o(&p)
	}
	return p
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) postImage(ctx context.Context, path string, image []byte, opts []SearchOption, out any) error {
	p := applySearchOptions(opts)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "query")
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if p.topK > 0 {
		if err := mw.WriteField("top_k", strconv.Itoa(p.topK)); err != nil {
			return fmt.Errorf("build form: %w", err)
		}
	}
	if p.category != "" {
		if err := mw.WriteField("category_filter", p.category); err != nil {
			return fmt.Errorf("build form: %w", err)
		}
	}
	if len(p.attributes) > 0 {
		attrs, err := json.Marshal(p.attributes)
		if err != nil {
			return fmt.Errorf("encode attribute filters: %w", err)
		}
		if err := mw.WriteField("attribute_filters", string(attrs)); err != nil {
			return fmt.Errorf("build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gemdex request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		payload.Message = strings.TrimSpace(string(body))
		if payload.Message == "" {
			payload.Message = resp.Status
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       payload.Code,
		Message:    payload.Message,
	}
}
