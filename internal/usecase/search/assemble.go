package search

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/domain/search/result"
	"github.com/jewelux/gemdex/internal/logger"
	"github.com/jewelux/gemdex/internal/metrics"
)

// assemble maps ranked candidates back to catalog rows and produces the
// externally visible records. Pure mapping: it never re-sorts. Asset reads
// that fail leave the image empty and are counted rather than dropping the
// result or being silently swallowed.
func (s *Service) assemble(ctx context.Context, cands []candidate) []result.Ranked {
	log := logger.FromContext(ctx)

	out := make([]result.Ranked, 0, len(cands))
	for _, c := range cands {
		item, ok := s.catalog.Item(c.id)
		if !ok {
			continue
		}

		var imageB64 string
		if s.assets != nil {
			data, err := s.assets.ReadAsset(item.Path())
			if err != nil {
				metrics.AssembleSkippedTotal.Inc()
				log.Warn("Failed to read result asset",
					zap.Int("id", c.id),
					zap.String("path", item.Path()),
					zap.Error(err),
				)
			} else {
				imageB64 = base64.StdEncoding.EncodeToString(data)
			}
		}

		out = append(out, result.New(
			c.id, c.score,
			item.Category(), item.Description(), item.Path(),
			imageB64,
		))
	}
	return out
}
