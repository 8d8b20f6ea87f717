package gemdex

// Result is one ranked search hit.
type Result struct {
	ID          int     `json:"id"`
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageBase64 string  `json:"image_base64,omitempty"`
	Path        string  `json:"path"`
}

// HandwritingResult carries the ranked hits plus the OCR extraction, so the
// caller can show what was read from the note even when nothing matched.
type HandwritingResult struct {
	Results     []Result `json:"results"`
	RawText     string   `json:"raw_text"`
	RefinedText string   `json:"refined_text"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type textSearchRequest struct {
	Query            string              `json:"query"`
	TopK             int                 `json:"top_k,omitempty"`
	CategoryFilter   string              `json:"category_filter,omitempty"`
	AttributeFilters map[string][]string `json:"attribute_filters,omitempty"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
