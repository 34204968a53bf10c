// internal/retrieval/dispatcher_test.go
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-orchestrator/internal/common/logger"
)

// stubQueue is an in-memory FetchQueue whose behavior is keyed by URL.
type stubQueue struct {
	mu      sync.Mutex
	jobs    map[string]string // jobID -> url
	removed []string

	failSubmit map[string]error
	failAwait  map[string]error
	docs       map[string]*Document
	nextJobID  int
}

func newStubQueue() *stubQueue {
	return &stubQueue{
		jobs:       make(map[string]string),
		failSubmit: make(map[string]error),
		failAwait:  make(map[string]error),
		docs:       make(map[string]*Document),
	}
}

func (q *stubQueue) Submit(_ context.Context, spec FetchSpec) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err, ok := q.failSubmit[spec.URL]; ok {
		return "", err
	}
	q.nextJobID++
	jobID := fmt.Sprintf("job-%d", q.nextJobID)
	q.jobs[jobID] = spec.URL
	return jobID, nil
}

func (q *stubQueue) Await(_ context.Context, jobID string, _ time.Duration) (*Document, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	url := q.jobs[jobID]
	if err, ok := q.failAwait[url]; ok {
		return nil, err
	}
	if doc, ok := q.docs[url]; ok {
		return doc, nil
	}
	return &Document{URL: url, Content: "content for " + url}, nil
}

func (q *stubQueue) Remove(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removed = append(q.removed, jobID)
	return nil
}

func (q *stubQueue) removedJobs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.removed...)
}

func (q *stubQueue) submittedURLs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	urls := make([]string, 0, len(q.jobs))
	for _, url := range q.jobs {
		urls = append(urls, url)
	}
	return urls
}

// flatMeter charges a fixed price per produced document.
type flatMeter struct{ price int }

func (m flatMeter) CreditsFor(FetchSpec, *Document) int { return m.price }

func newTestDispatcher(t *testing.T, queue FetchQueue, meter Meter) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(queue, meter, 4, 5*time.Second, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func resultItems(n int) []ResultItem {
	items := make([]ResultItem, n)
	for i := range items {
		items[i] = ResultItem{
			URL:    fmt.Sprintf("https://example.com/page-%d", i),
			Title:  fmt.Sprintf("page %d", i),
			Rank:   i + 1,
			Source: SourceWeb,
		}
	}
	return items
}

func TestDispatcher_DispatchSync_PartialFailure(t *testing.T) {
	queue := newStubQueue()
	queue.failAwait["https://example.com/page-2"] = errors.New("fetch backend crashed")

	d := newTestDispatcher(t, queue, flatMeter{price: 2})
	items := resultItems(5)

	enriched := d.DispatchSync(context.Background(), items, Request{RequestID: "req-1"})

	require.Len(t, enriched, 5)
	for i, item := range enriched {
		assert.Equal(t, items[i].URL, item.URL, "output order must match input order")
		if i == 2 {
			assert.Equal(t, FetchStatusError, item.FetchStatus)
			assert.Equal(t, 0, item.Credits)
			assert.NotEmpty(t, item.FetchError)
			assert.Empty(t, item.Content)
			continue
		}
		assert.Equal(t, FetchStatusOK, item.FetchStatus)
		assert.Equal(t, 2, item.Credits)
		assert.NotEmpty(t, item.Content)
	}
}

func TestDispatcher_DispatchSync_SubmitFailure(t *testing.T) {
	queue := newStubQueue()
	queue.failSubmit["https://example.com/page-0"] = errors.New("queue full")

	d := newTestDispatcher(t, queue, flatMeter{price: 1})

	enriched := d.DispatchSync(context.Background(), resultItems(1), Request{})

	require.Len(t, enriched, 1)
	assert.Equal(t, FetchStatusError, enriched[0].FetchStatus)
	assert.Equal(t, "queue full", enriched[0].FetchError)
}

func TestDispatcher_DispatchSync_TimeoutRemovesJob(t *testing.T) {
	queue := newStubQueue()
	queue.failAwait["https://example.com/page-0"] = ErrJobTimeout

	d := newTestDispatcher(t, queue, flatMeter{price: 1})

	enriched := d.DispatchSync(context.Background(), resultItems(1), Request{})

	require.Len(t, enriched, 1)
	assert.Equal(t, FetchStatusError, enriched[0].FetchStatus)
	assert.Len(t, queue.removedJobs(), 1)
}

func TestDispatcher_DispatchSync_FetchedTitleOverrides(t *testing.T) {
	queue := newStubQueue()
	queue.docs["https://example.com/page-0"] = &Document{
		URL:     "https://example.com/page-0",
		Title:   "Fetched Title",
		Content: "body",
	}

	d := newTestDispatcher(t, queue, flatMeter{price: 1})

	enriched := d.DispatchSync(context.Background(), resultItems(1), Request{})

	require.Len(t, enriched, 1)
	assert.Equal(t, "Fetched Title", enriched[0].Title)
}

func TestDispatcher_DispatchSync_EmptyTitleKeepsSearchTitle(t *testing.T) {
	queue := newStubQueue()
	queue.docs["https://example.com/page-0"] = &Document{
		URL:     "https://example.com/page-0",
		Content: "body",
	}

	d := newTestDispatcher(t, queue, flatMeter{price: 1})

	enriched := d.DispatchSync(context.Background(), resultItems(1), Request{})

	require.Len(t, enriched, 1)
	assert.Equal(t, "page 0", enriched[0].Title)
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	queue := newStubQueue()
	queue.failSubmit["https://example.com/page-1"] = errors.New("queue full")

	d := newTestDispatcher(t, queue, flatMeter{price: 1})

	handles := d.DispatchAsync(context.Background(), resultItems(3), Request{RequestID: "req-1"})

	require.Len(t, handles, 3)
	assert.NotEmpty(t, handles[0].JobID)
	assert.Empty(t, handles[0].Error)
	assert.Empty(t, handles[1].JobID)
	assert.Equal(t, "queue full", handles[1].Error)
	assert.Equal(t, "https://example.com/page-1", handles[1].URL)
	assert.NotEmpty(t, handles[2].JobID)
}

func TestSkipItems(t *testing.T) {
	skipped := SkipItems(resultItems(2))

	require.Len(t, skipped, 2)
	for _, item := range skipped {
		assert.Equal(t, FetchStatusSkipped, item.FetchStatus)
		assert.Equal(t, 0, item.Credits)
		assert.Empty(t, item.Content)
	}
}
