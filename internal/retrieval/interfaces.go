package retrieval

import (
	"context"
	"errors"
	"time"
)

// ErrJobTimeout is returned by FetchQueue.Await when a job exceeds its timeout.
var ErrJobTimeout = errors.New("fetch job timed out")

// CompleteOptions tunes one text-completion call. A nil Temperature defers to
// the completion client's configured default; a pointer pins the value, zero
// included.
type CompleteOptions struct {
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
}

func floatPtr(v float64) *float64 { return &v }

// Completer is the text-completion capability. Output is free-form and must be
// treated as untrusted and unstructured by every caller.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// ProviderItem is a raw search result as delivered by the search provider.
type ProviderItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rank        int    `json:"rank"`
}

// ProviderResults holds the per-category lists of one provider call.
type ProviderResults struct {
	Web    []ProviderItem `json:"web"`
	Images []ProviderItem `json:"images"`
	News   []ProviderItem `json:"news"`
}

// SearchFilters narrows one provider call.
type SearchFilters struct {
	Count      int
	Country    string
	SafeSearch string
}

// SearchProvider issues one search call per query variant.
type SearchProvider interface {
	Search(ctx context.Context, query string, filters SearchFilters) (*ProviderResults, error)
}

// Blocklist answers whether team policy forbids fetching a URL.
type Blocklist interface {
	IsBlocked(ctx context.Context, url string, flags TeamFlags) (bool, error)
}

// FetchSpec describes one page-fetch job.
type FetchSpec struct {
	URL       string
	RequestID string
	TeamID    string
}

// Document is the product of a completed fetch job.
type Document struct {
	URL      string                 `json:"url"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	CostData map[string]interface{} `json:"costData"`
}

// FetchQueue is the external page-fetch job queue. Submit returns a job
// identifier; Await blocks until the job completes or the timeout elapses,
// failing with ErrJobTimeout; Remove discards a job that will not be awaited.
type FetchQueue interface {
	Submit(ctx context.Context, spec FetchSpec) (string, error)
	Await(ctx context.Context, jobID string, timeout time.Duration) (*Document, error)
	Remove(ctx context.Context, jobID string) error
}

// Meter prices one successfully produced item. The billing formula itself
// lives behind this boundary.
type Meter interface {
	CreditsFor(spec FetchSpec, doc *Document) int
}

// Recorder receives a fire-and-forget request summary. Failures must never
// affect the response.
type Recorder interface {
	Record(summary RequestSummary)
}
