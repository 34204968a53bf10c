// internal/retrieval/similarity_test.go
package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "best electric cars",
			b:        "best electric cars",
			expected: 1.0,
		},
		{
			name:     "case insensitive",
			a:        "Best Electric Cars",
			b:        "best electric cars",
			expected: 1.0,
		},
		{
			name:     "disjoint token sets",
			a:        "quantum computing",
			b:        "pasta recipes",
			expected: 0.0,
		},
		{
			name:     "empty left side",
			a:        "",
			b:        "anything",
			expected: 0.0,
		},
		{
			name:     "punctuation only",
			a:        "!!! ---",
			b:        "anything",
			expected: 0.0,
		},
		{
			name: "partial overlap",
			// {best, electric, cars} vs {electric, cars, 2024}: 2/4
			a:        "best electric cars",
			b:        "electric cars 2024",
			expected: 0.5,
		},
		{
			name: "duplicates collapse",
			a:    "cars cars cars",
			b:    "cars",
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TokenSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenSimilarity_Symmetric(t *testing.T) {
	a := "renewable energy storage costs"
	b := "cost of storing renewable energy"
	assert.Equal(t, TokenSimilarity(a, b), TokenSimilarity(b, a))
}

func TestQueryTokens(t *testing.T) {
	tokens := queryTokens("an EV charger, an EV charger!")

	// Short tokens are dropped and duplicates collapse.
	assert.ElementsMatch(t, []string{"charger"}, tokens)

	assert.Empty(t, queryTokens("a an of"))
	assert.Empty(t, queryTokens(""))
}
