package retrieval

import (
	"context"

	"search-orchestrator/internal/common/logger"
)

// LimitSet truncates each category list to the caller's requested size,
// preserving order. Items beyond the limit never reach filtering or dispatch,
// so they incur no fetch cost. A zero limit keeps the full list.
func LimitSet(set ResultSet, limits Limits) ResultSet {
	return ResultSet{
		Web:   limitItems(set.Web, limits.Web),
		Image: limitItems(set.Image, limits.Image),
		News:  limitItems(set.News, limits.News),
	}
}

func limitItems(items []ResultItem, limit int) []ResultItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}

// BlockedFilter drops URLs forbidden by team policy. It runs after limiting
// and before dispatch: a blocked URL is never fetched and never billed.
type BlockedFilter struct {
	blocklist Blocklist
	logger    logger.Logger
}

func NewBlockedFilter(blocklist Blocklist, log logger.Logger) *BlockedFilter {
	return &BlockedFilter{
		blocklist: blocklist,
		logger:    log.With(map[string]interface{}{"component": "blocked-filter"}),
	}
}

// Apply removes blocked items from every category. A failing policy check is
// treated as not blocked so a policy-store outage cannot abort retrieval.
func (f *BlockedFilter) Apply(ctx context.Context, set ResultSet, flags TeamFlags) ResultSet {
	if f.blocklist == nil || !flags.BlocklistEnabled {
		return set
	}
	return ResultSet{
		Web:   f.filterItems(ctx, set.Web, flags),
		Image: f.filterItems(ctx, set.Image, flags),
		News:  f.filterItems(ctx, set.News, flags),
	}
}

func (f *BlockedFilter) filterItems(ctx context.Context, items []ResultItem, flags TeamFlags) []ResultItem {
	kept := make([]ResultItem, 0, len(items))
	for _, item := range items {
		blocked, err := f.blocklist.IsBlocked(ctx, item.URL, flags)
		if err != nil {
			f.logger.Warn("blocklist check failed, keeping item", map[string]interface{}{
				"url":   item.URL,
				"error": err.Error(),
			})
			kept = append(kept, item)
			continue
		}
		if blocked {
			f.logger.Info("dropping blocked url", map[string]interface{}{
				"url":  item.URL,
				"team": flags.TeamID,
			})
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
