package gemdex

import (
	"net/http"
	"time"
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// SearchOption configures one search call.
type SearchOption func(*searchParams)

type searchParams struct {
	topK       int
	category   string
	attributes map[string][]string
}

// WithTopK sets the requested result count. The server default is 12.
func WithTopK(k int) SearchOption {
	return func(p *searchParams) { p.topK = k }
}

// WithCategory restricts results to one category (ring, necklace, ...).
func WithCategory(category string) SearchOption {
	return func(p *searchParams) { p.category = category }
}

// WithAttribute restricts results to items whose attribute field contains
// at least one of the given values. Repeated calls add further attributes;
// all attributes must pass.
func WithAttribute(name string, values ...string) SearchOption {
	return func(p *searchParams) {
		if p.attributes == nil {
			p.attributes = make(map[string][]string)
		}
		p.attributes[name] = append(p.attributes[name], values...)
	}
}
