package runsearch

import "search-orchestrator/internal/retrieval"

// Input is the job variable payload of one run-search task.
type Input struct {
	RequestID string                 `json:"requestId"`
	Query     string                 `json:"query"`
	Limits    InputLimits            `json:"limits"`
	Scrape    InputScrape            `json:"scrape"`
	TeamFlags map[string]interface{} `json:"teamFlags"`
}

type InputLimits struct {
	Web   *int `json:"web"`
	Image *int `json:"image"`
	News  *int `json:"news"`
}

type InputScrape struct {
	Mode       string `json:"mode"`
	TimeoutMs  int    `json:"timeoutMs"`
	Enrichment *bool  `json:"enrichment"`
}

// Output is written back to the process instance when the job completes.
type Output struct {
	Result *retrieval.Response `json:"searchResult"`
}
