package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "search-orchestrator/internal/common/errors"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/common/metrics"
	"search-orchestrator/internal/common/observability"
)

// ControllerConfig bounds the iteration loop.
type ControllerConfig struct {
	MaxIterations        int
	ConvergenceThreshold float64
	MaxSpans             int
	SearchFilters        SearchFilters
	// GapHintFacts caps how many missing facts feed the next iteration.
	GapHintFacts int
}

func (c *ControllerConfig) applyDefaults() {
	if c.MaxIterations < 1 {
		c.MaxIterations = 2
	}
	if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = 0.6
	}
	if c.MaxSpans < 1 {
		c.MaxSpans = 3
	}
	if c.GapHintFacts < 1 {
		c.GapHintFacts = 5
	}
}

// Controller drives expansion, fan-out, fusion, labeling, limiting, filtering,
// dispatch, extraction and evaluation through bounded, convergence-checked
// iterations. One Controller handles one request at a time; per-iteration
// working data is iteration-local.
type Controller struct {
	expander   *Expander
	fanout     *Fanout
	fuser      *Fuser
	labeler    *Labeler
	filter     *BlockedFilter
	dispatcher *Dispatcher
	evaluator  *Evaluator
	recorder   Recorder
	obs        *observability.Observability
	logger     logger.Logger
	cfg        ControllerConfig
}

func NewController(
	expander *Expander,
	fanout *Fanout,
	fuser *Fuser,
	labeler *Labeler,
	filter *BlockedFilter,
	dispatcher *Dispatcher,
	evaluator *Evaluator,
	recorder Recorder,
	obs *observability.Observability,
	cfg ControllerConfig,
	log logger.Logger,
) *Controller {
	cfg.applyDefaults()
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Controller{
		expander:   expander,
		fanout:     fanout,
		fuser:      fuser,
		labeler:    labeler,
		filter:     filter,
		dispatcher: dispatcher,
		evaluator:  evaluator,
		recorder:   recorder,
		obs:        obs,
		logger:     log.With(map[string]interface{}{"component": "controller"}),
		cfg:        cfg,
	}
}

// iterationResult carries the outcome of one full pass through the loop
// states. Only the last executed iteration's result becomes the response.
type iterationResult struct {
	variants []string
	web      []EnrichedItem
	image    []EnrichedItem
	news     []EnrichedItem
	webJobs  []JobHandle
	newsJobs []JobHandle
	credits  int
	verdict  Verdict
}

// Run executes the bounded retrieval loop for one request and builds the
// response from the last executed iteration. Any unhandled fault is caught
// here, logged with detail and surfaced as an opaque failure.
func (c *Controller) Run(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("orchestration panicked", map[string]interface{}{
				"requestId": req.RequestID,
				"panic":     fmt.Sprintf("%v", r),
			})
			resp = nil
			err = apperrors.NewInternalError(fmt.Errorf("orchestration fault"))
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	req.Query = NormalizeQuery(req.Query)

	var last iterationResult
	totalCredits := 0
	converged := false
	iterations := 0
	gapHint := ""

	for index := 0; index < c.cfg.MaxIterations; index++ {
		iterCtx, span := c.obs.StartIterationSpan(ctx, index)
		iterStart := time.Now()

		result, iterErr := c.runIteration(iterCtx, req, gapHint)

		c.obs.RecordIterationDuration(iterCtx, time.Since(iterStart))
		span.End()

		if iterErr != nil {
			return nil, iterErr
		}

		iterations = index + 1
		last = result
		totalCredits += result.credits

		// Without enrichment there is no evidence to evaluate, and async
		// dispatch hands completion to the fetch queue: both stop after
		// exactly one iteration.
		if !req.Scrape.Enrichment || req.Scrape.Mode == ScrapeModeAsync {
			metrics.RetrievalIterations.WithLabelValues("false").Inc()
			c.obs.RecordIteration(iterCtx, false)
			break
		}

		converged = result.verdict.Answered && result.verdict.Confidence >= c.cfg.ConvergenceThreshold
		metrics.RetrievalIterations.WithLabelValues(fmt.Sprintf("%t", converged)).Inc()
		c.obs.RecordIteration(iterCtx, converged)

		c.logger.Info("iteration evaluated", map[string]interface{}{
			"requestId":  req.RequestID,
			"iteration":  index,
			"answered":   result.verdict.Answered,
			"confidence": result.verdict.Confidence,
			"converged":  converged,
		})

		if converged {
			gapHint = ""
			break
		}
		gapHint = buildGapHint(result.verdict.MissingFacts, c.cfg.GapHintFacts)
	}

	resp = &Response{
		Web:        RerankWeb(last.web, last.variants),
		Image:      last.image,
		News:       last.news,
		WebJobs:    last.webJobs,
		NewsJobs:   last.newsJobs,
		Credits:    totalCredits,
		Iterations: iterations,
		Converged:  converged,
	}

	c.record(RequestSummary{
		RequestID:  req.RequestID,
		Query:      req.Query,
		Iterations: iterations,
		Converged:  converged,
		Credits:    totalCredits,
		WebCount:   len(resp.Web),
		ImageCount: len(resp.Image),
		NewsCount:  len(resp.News),
		Timestamp:  time.Now().UTC(),
	})

	return resp, nil
}

// runIteration performs one full pass: Expanding, Searching, Fusing, Labeling,
// Limiting, Filtering, Dispatching, Extracting, Evaluating.
func (c *Controller) runIteration(ctx context.Context, req Request, gapHint string) (iterationResult, error) {
	variants := c.expander.Expand(ctx, req.Query, gapHint)

	settled, err := c.fanout.SearchAll(ctx, variants, c.cfg.SearchFilters)
	if err != nil {
		return iterationResult{}, err
	}

	set := c.fuser.FuseAll(settled, variants)
	c.labeler.LabelAll(&set)
	set = LimitSet(set, req.Limits)
	set = c.filter.Apply(ctx, set, req.TeamFlags)

	result := iterationResult{variants: variants}

	if !req.Scrape.Enrichment {
		result.web = SkipItems(set.Web)
		result.image = SkipItems(set.Image)
		result.news = SkipItems(set.News)
		return result, nil
	}

	// Image URLs carry no page text to fetch; they pass through unenriched.
	result.image = SkipItems(set.Image)

	// Web and news dispatch as one batch so every fetch of the iteration is
	// in flight at once; a slow item never holds back the other category.
	eligible := append(append([]ResultItem{}, set.Web...), set.News...)

	if req.Scrape.Mode == ScrapeModeAsync {
		for _, handle := range c.dispatcher.DispatchAsync(ctx, eligible, req) {
			if handle.Source == SourceNews {
				result.newsJobs = append(result.newsJobs, handle)
			} else {
				result.webJobs = append(result.webJobs, handle)
			}
		}
		return result, nil
	}

	fetched := c.dispatcher.DispatchSync(ctx, eligible, req)
	for _, item := range fetched {
		result.credits += item.Credits
		if item.Source == SourceNews {
			result.news = append(result.news, item)
		} else {
			result.web = append(result.web, item)
		}
	}

	evidence := BuildEvidence(fetched, req.Query, c.cfg.MaxSpans)
	result.verdict = c.evaluator.Evaluate(ctx, req.Query, evidence)

	return result, nil
}

// buildGapHint joins the leading missing facts into the steering hint for the
// next iteration's expansion.
func buildGapHint(missingFacts []string, limit int) string {
	if len(missingFacts) > limit {
		missingFacts = missingFacts[:limit]
	}
	return strings.Join(missingFacts, "; ")
}

// record hands the summary to the audit recorder on a detached goroutine with
// its own error boundary; recorder failures never affect the response.
func (c *Controller) record(summary RequestSummary) {
	if c.recorder == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Warn("audit record panicked", map[string]interface{}{
					"requestId": summary.RequestID,
					"panic":     fmt.Sprintf("%v", r),
				})
			}
		}()
		c.recorder.Record(summary)
	}()
}
