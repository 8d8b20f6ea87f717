package chi

import (
	"github.com/jewelux/gemdex/internal/domain"
	"github.com/jewelux/gemdex/internal/domain/search/result"
	healthuc "github.com/jewelux/gemdex/internal/usecase/health"
)

// textSearchRequest is the POST /search/text body.
type textSearchRequest struct {
	Query            string              `json:"query"`
	TopK             int                 `json:"top_k,omitempty"`
	CategoryFilter   string              `json:"category_filter,omitempty"`
	AttributeFilters map[string][]string `json:"attribute_filters,omitempty"`
}

// searchResponseItem is one ranked hit on the wire.
type searchResponseItem struct {
	ID          int     `json:"id"`
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageBase64 string  `json:"image_base64,omitempty"`
	Path        string  `json:"path"`
}

// handwritingResponse carries the extraction alongside the results so the
// caller can show what was read from the note.
type handwritingResponse struct {
	Results     []searchResponseItem `json:"results"`
	RawText     string               `json:"raw_text"`
	RefinedText string               `json:"refined_text"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func resultsToDTO(results []result.Ranked) []searchResponseItem {
	items := make([]searchResponseItem, len(results))
	for i := range results {
		r := &results[i]
		items[i] = searchResponseItem{
			ID:          r.ID(),
			Score:       r.Score(),
			Category:    r.Category(),
			Description: r.Description(),
			ImageBase64: r.ImageB64(),
			Path:        r.Path(),
		}
	}
	return items
}

func extractionToDTO(results []result.Ranked, ex domain.Extraction) handwritingResponse {
	return handwritingResponse{
		Results:     resultsToDTO(results),
		RawText:     ex.Raw,
		RefinedText: ex.Refined,
	}
}

func healthToDTO(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	return healthResponse{Status: string(report.Status), Checks: checks}
}
