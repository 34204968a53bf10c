// internal/billing/meter_test.go
package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"search-orchestrator/internal/retrieval"
)

func TestFlatMeter_CreditsFor(t *testing.T) {
	meter := NewFlatMeter(2)
	spec := retrieval.FetchSpec{URL: "https://page.example.com"}

	tests := []struct {
		name     string
		doc      *retrieval.Document
		expected int
	}{
		{
			name:     "flat rate only",
			doc:      &retrieval.Document{Content: "body"},
			expected: 2,
		},
		{
			name: "queue-attributed cost added",
			doc: &retrieval.Document{
				Content:  "body",
				CostData: map[string]interface{}{"credits": 3.0},
			},
			expected: 5,
		},
		{
			name: "negative attributed cost ignored",
			doc: &retrieval.Document{
				CostData: map[string]interface{}{"credits": -1.0},
			},
			expected: 2,
		},
		{
			name: "non-numeric attributed cost ignored",
			doc: &retrieval.Document{
				CostData: map[string]interface{}{"credits": "three"},
			},
			expected: 2,
		},
		{
			name:     "nil document is free",
			doc:      nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, meter.CreditsFor(spec, tt.doc))
		})
	}
}

func TestNewFlatMeter_NegativeRateClampsToZero(t *testing.T) {
	meter := NewFlatMeter(-5)
	assert.Equal(t, 0, meter.CreditsFor(retrieval.FetchSpec{}, &retrieval.Document{}))
}
