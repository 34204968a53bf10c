// Package audit implements the fire-and-forget request logging collaborator.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"search-orchestrator/internal/common/database"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/retrieval"
)

// ElasticRecorder indexes one summary document per request. Failures are
// logged and swallowed; they must never affect the response.
type ElasticRecorder struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticRecorder(es *database.ElasticsearchClient, index string, log logger.Logger) *ElasticRecorder {
	return &ElasticRecorder{
		es:     es,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "audit"}),
	}
}

func (r *ElasticRecorder) Record(summary retrieval.RequestSummary) {
	body, err := json.Marshal(summary)
	if err != nil {
		r.logger.Warn("audit summary marshal failed", map[string]interface{}{
			"requestId": summary.RequestID,
			"error":     err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.es.Index(ctx, r.index, body); err != nil {
		r.logger.Warn("audit record failed", map[string]interface{}{
			"requestId": summary.RequestID,
			"error":     err.Error(),
		})
	}
}

// NopRecorder discards summaries. Used when no audit sink is configured.
type NopRecorder struct{}

func (NopRecorder) Record(retrieval.RequestSummary) {}
