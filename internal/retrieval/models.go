// Package retrieval implements the iterative retrieval-fusion-evaluation loop:
// query expansion, concurrent search fan-out, rank fusion, policy filtering,
// content-fetch dispatch, evidence extraction and sufficiency evaluation.
package retrieval

import "time"

// Source identifies which provider result list an item came from.
type Source string

const (
	SourceWeb   Source = "web"
	SourceImage Source = "image"
	SourceNews  Source = "news"
)

// LabelUnclassified is assigned when no category rule matches a URL.
const LabelUnclassified = "unlabeled"

// ScrapeMode selects how fetch jobs are dispatched.
type ScrapeMode string

const (
	ScrapeModeSync  ScrapeMode = "sync"
	ScrapeModeAsync ScrapeMode = "async"
)

// ResultItem is one search result. Identity is the URL; Rank is 1-based within
// the provider list it came from.
type ResultItem struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	Rank    int     `json:"rank"`
	Source  Source  `json:"source"`
	Label   string  `json:"label,omitempty"`
	Score   float64 `json:"score"`
	// Position is reassigned densely 1..N after fusion and again after the
	// final rerank.
	Position int `json:"position"`
}

// text returns the string fused and reranked against query variants.
func (r ResultItem) text() string {
	if r.Snippet != "" {
		return r.Snippet
	}
	return r.Title
}

// FetchStatus reports the outcome of one content fetch.
type FetchStatus string

const (
	FetchStatusOK      FetchStatus = "ok"
	FetchStatusError   FetchStatus = "error"
	FetchStatusSkipped FetchStatus = "skipped"
)

// EnrichedItem overlays fetched page content on top of a search result.
// A failed fetch keeps the original search fields and carries an error status
// with empty cost data instead of failing the batch.
type EnrichedItem struct {
	ResultItem
	Content     string      `json:"content,omitempty"`
	FetchStatus FetchStatus `json:"fetchStatus"`
	FetchError  string      `json:"fetchError,omitempty"`
	Credits     int         `json:"credits"`
}

// ResultSet holds the fused, ordered lists per source category.
type ResultSet struct {
	Web   []ResultItem
	Image []ResultItem
	News  []ResultItem
}

// JobHandle identifies a fetch job submitted in asynchronous mode. Completion
// and billing are the fetch queue's responsibility once the handle is returned.
type JobHandle struct {
	JobID  string `json:"jobId"`
	URL    string `json:"url"`
	Source Source `json:"source"`
	Error  string `json:"error,omitempty"`
}

// Span is a bounded-length block of fetched page text judged relevant to the
// query. It has no identity beyond its source URL and offset.
type Span struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Evidence groups the extracted spans of one fetched URL.
type Evidence struct {
	URL   string `json:"url"`
	Spans []Span `json:"spans"`
}

// Verdict is the evaluator's judgment of whether collected evidence answers
// the query.
type Verdict struct {
	Answered     bool     `json:"answered"`
	Confidence   float64  `json:"confidence"`
	MissingFacts []string `json:"missingFacts"`
}

// NeutralVerdict is returned on any evaluation parse or call failure.
func NeutralVerdict() Verdict {
	return Verdict{Answered: false, Confidence: 0, MissingFacts: []string{}}
}

// Limits caps each category list before filtering and dispatch.
type Limits struct {
	Web   int `json:"web"`
	Image int `json:"image"`
	News  int `json:"news"`
}

// ScrapeOptions selects the dispatch mode for one request.
type ScrapeOptions struct {
	Mode       ScrapeMode    `json:"mode"`
	Timeout    time.Duration `json:"-"`
	Enrichment bool          `json:"enrichment"`
}

// TeamFlags scopes policy decisions to the requesting team.
type TeamFlags struct {
	TeamID           string `json:"teamId"`
	BlocklistEnabled bool   `json:"blocklistEnabled"`
}

// Request is one orchestration request. Query is normalized once at the start
// and immutable afterwards.
type Request struct {
	RequestID string        `json:"requestId"`
	Query     string        `json:"query"`
	Limits    Limits        `json:"limits"`
	Scrape    ScrapeOptions `json:"scrape"`
	TeamFlags TeamFlags     `json:"teamFlags"`
}

// Response is the surface emitted when the loop stops: the enriched result set
// of the last executed iteration, never a merge across iterations. In
// asynchronous mode the fetchable categories carry per-category job-handle
// lists instead of enriched content.
type Response struct {
	Web        []EnrichedItem `json:"web,omitempty"`
	Image      []EnrichedItem `json:"image,omitempty"`
	News       []EnrichedItem `json:"news,omitempty"`
	WebJobs    []JobHandle    `json:"webJobs,omitempty"`
	NewsJobs   []JobHandle    `json:"newsJobs,omitempty"`
	Credits    int            `json:"credits"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
}

// RequestSummary is handed to the audit recorder after the response is built.
type RequestSummary struct {
	RequestID  string    `json:"requestId"`
	Query      string    `json:"query"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Credits    int       `json:"credits"`
	WebCount   int       `json:"webCount"`
	ImageCount int       `json:"imageCount"`
	NewsCount  int       `json:"newsCount"`
	Timestamp  time.Time `json:"timestamp"`
}
