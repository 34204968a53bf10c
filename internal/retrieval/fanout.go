package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/common/metrics"
)

// VariantResults pairs a query variant with the provider results it produced.
// A failed variant call leaves Results empty rather than failing the batch.
type VariantResults struct {
	Variant string
	Results ProviderResults
}

// Fanout issues one search-provider call per query variant, concurrently, and
// joins on all of them before returning.
type Fanout struct {
	provider SearchProvider
	logger   logger.Logger
}

func NewFanout(provider SearchProvider, log logger.Logger) *Fanout {
	return &Fanout{
		provider: provider,
		logger:   log.With(map[string]interface{}{"component": "fanout"}),
	}
}

// SearchAll runs every variant search concurrently and waits for all of them
// to settle. Output order matches the variant order. A variant whose call
// fails contributes an empty result set; only context cancellation aborts
// the join.
func (f *Fanout) SearchAll(ctx context.Context, variants []string, filters SearchFilters) ([]VariantResults, error) {
	settled := make([]VariantResults, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range variants {
		settled[i].Variant = variant
		g.Go(func() error {
			results, err := f.provider.Search(gctx, variant, filters)
			if err != nil {
				metrics.SearchRequests.WithLabelValues("error").Inc()
				f.logger.Warn("variant search failed, treating as empty", map[string]interface{}{
					"variant": variant,
					"error":   err.Error(),
				})
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			metrics.SearchRequests.WithLabelValues("ok").Inc()
			settled[i].Results = *results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return settled, nil
}
