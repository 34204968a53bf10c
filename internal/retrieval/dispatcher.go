package retrieval

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/common/metrics"
)

// Dispatcher submits eligible URLs to the external fetch-job queue. All
// dispatches for one batch are issued concurrently; in synchronous mode the
// batch completes when every individual item has settled, so one slow or
// failing item only degrades its own entry.
type Dispatcher struct {
	queue          FetchQueue
	meter          Meter
	pool           *ants.Pool
	logger         logger.Logger
	defaultTimeout time.Duration
}

func NewDispatcher(queue FetchQueue, meter Meter, maxConcurrency int, defaultTimeout time.Duration, log logger.Logger) (*Dispatcher, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 16
	}
	pool, err := ants.NewPool(maxConcurrency)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		queue:          queue,
		meter:          meter,
		pool:           pool,
		logger:         log.With(map[string]interface{}{"component": "dispatcher"}),
		defaultTimeout: defaultTimeout,
	}, nil
}

// Close releases the worker pool.
func (d *Dispatcher) Close() {
	d.pool.Release()
}

// DispatchSync fetches every item and blocks until all fetches settle. Output
// order matches input order. A failed or timed-out fetch yields a placeholder
// item carrying an error status and zero credits; the batch always returns
// len(items) entries.
func (d *Dispatcher) DispatchSync(ctx context.Context, items []ResultItem, req Request) []EnrichedItem {
	enriched := make([]EnrichedItem, len(items))
	timeout := req.Scrape.Timeout
	if timeout <= 0 {
		timeout = d.defaultTimeout
	}

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			enriched[i] = d.fetchOne(ctx, item, req, timeout)
		}
		if err := d.pool.Submit(task); err != nil {
			// Pool rejected the task; settle the slot inline.
			task()
		}
	}
	wg.Wait()

	return enriched
}

func (d *Dispatcher) fetchOne(ctx context.Context, item ResultItem, req Request, timeout time.Duration) EnrichedItem {
	spec := FetchSpec{URL: item.URL, RequestID: req.RequestID, TeamID: req.TeamFlags.TeamID}

	jobID, err := d.queue.Submit(ctx, spec)
	if err != nil {
		metrics.FetchJobs.WithLabelValues(string(ScrapeModeSync), "submit_error").Inc()
		return errorItem(item, err)
	}

	doc, err := d.queue.Await(ctx, jobID, timeout)
	if err != nil {
		status := "error"
		if errors.Is(err, ErrJobTimeout) {
			status = "timeout"
			// A timed-out job is abandoned, not retried by this layer.
			_ = d.queue.Remove(ctx, jobID)
		}
		metrics.FetchJobs.WithLabelValues(string(ScrapeModeSync), status).Inc()
		d.logger.Warn("fetch job failed", map[string]interface{}{
			"url":    item.URL,
			"jobId":  jobID,
			"error":  err.Error(),
			"status": status,
		})
		return errorItem(item, err)
	}

	metrics.FetchJobs.WithLabelValues(string(ScrapeModeSync), "ok").Inc()

	out := EnrichedItem{ResultItem: item, FetchStatus: FetchStatusOK, Content: doc.Content}
	// Fetched fields override the search result except where absent.
	if doc.Title != "" {
		out.Title = doc.Title
	}
	if d.meter != nil {
		out.Credits = d.meter.CreditsFor(spec, doc)
		metrics.CreditsCharged.Add(float64(out.Credits))
	}
	return out
}

func errorItem(item ResultItem, err error) EnrichedItem {
	return EnrichedItem{
		ResultItem:  item,
		FetchStatus: FetchStatusError,
		FetchError:  err.Error(),
	}
}

// DispatchAsync submits one job per item and returns the handles immediately.
// Completion and billing are the fetch queue's responsibility. A failed
// submission yields an in-band handle carrying the error.
func (d *Dispatcher) DispatchAsync(ctx context.Context, items []ResultItem, req Request) []JobHandle {
	handles := make([]JobHandle, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			spec := FetchSpec{URL: item.URL, RequestID: req.RequestID, TeamID: req.TeamFlags.TeamID}
			jobID, err := d.queue.Submit(ctx, spec)
			if err != nil {
				metrics.FetchJobs.WithLabelValues(string(ScrapeModeAsync), "submit_error").Inc()
				handles[i] = JobHandle{URL: item.URL, Source: item.Source, Error: err.Error()}
				return
			}
			metrics.FetchJobs.WithLabelValues(string(ScrapeModeAsync), "submitted").Inc()
			handles[i] = JobHandle{JobID: jobID, URL: item.URL, Source: item.Source}
		}
		if err := d.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return handles
}

// SkipItems wraps items that are not eligible for fetching as skipped entries
// so the response shape stays uniform across categories.
func SkipItems(items []ResultItem) []EnrichedItem {
	out := make([]EnrichedItem, len(items))
	for i, item := range items {
		out[i] = EnrichedItem{ResultItem: item, FetchStatus: FetchStatusSkipped}
	}
	return out
}
