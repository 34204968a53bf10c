// Package billing implements the credit-metering collaborator boundary.
// The real billing formula lives in the external ledger; this default adapter
// charges a flat rate per produced item plus whatever cost the fetch queue
// already attributed to the document.
package billing

import (
	"search-orchestrator/internal/retrieval"
)

// FlatMeter charges a fixed credit amount per successfully fetched item.
type FlatMeter struct {
	creditsPerFetch int
}

func NewFlatMeter(creditsPerFetch int) *FlatMeter {
	if creditsPerFetch < 0 {
		creditsPerFetch = 0
	}
	return &FlatMeter{creditsPerFetch: creditsPerFetch}
}

func (m *FlatMeter) CreditsFor(_ retrieval.FetchSpec, doc *retrieval.Document) int {
	if doc == nil {
		return 0
	}
	credits := m.creditsPerFetch
	if extra, ok := doc.CostData["credits"].(float64); ok && extra > 0 {
		credits += int(extra)
	}
	return credits
}
