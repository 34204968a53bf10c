// internal/retrieval/labeler_test.go
package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"search-orchestrator/internal/common/config"
)

func TestLabeler_Label(t *testing.T) {
	labeler := NewLabeler([]config.CategoryRule{
		{Pattern: `(^|\.)wikipedia\.org/`, Category: "encyclopedia"},
		{Pattern: `reuters\.com|apnews\.com`, Category: "news-agency"},
		{Pattern: "github.com", Category: "code"},
	})

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "regex rule",
			url:      "https://en.wikipedia.org/wiki/Electric_car",
			expected: "encyclopedia",
		},
		{
			name:     "alternation rule",
			url:      "https://www.reuters.com/business/autos/",
			expected: "news-agency",
		},
		{
			name:     "no match",
			url:      "https://example.com/blog",
			expected: LabelUnclassified,
		},
		{
			name:     "first matching rule wins",
			url:      "https://en.wikipedia.org/wiki/GitHub",
			expected: "encyclopedia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, labeler.Label(tt.url))
		})
	}
}

func TestLabeler_InvalidPatternFallsBackToLiteral(t *testing.T) {
	labeler := NewLabeler([]config.CategoryRule{
		{Pattern: "docs[", Category: "docs"},
	})

	assert.Equal(t, "docs", labeler.Label("https://example.com/docs[v2]/intro"))
	assert.Equal(t, LabelUnclassified, labeler.Label("https://example.com/guide"))
}

func TestLabeler_SkipsIncompleteRules(t *testing.T) {
	labeler := NewLabeler([]config.CategoryRule{
		{Pattern: "", Category: "orphan"},
		{Pattern: "example.com", Category: ""},
	})

	assert.Equal(t, LabelUnclassified, labeler.Label("https://example.com"))
}

func TestLabeler_LabelAll(t *testing.T) {
	labeler := NewLabeler([]config.CategoryRule{
		{Pattern: "news.example.com", Category: "publisher"},
	})

	set := ResultSet{
		Web:   []ResultItem{{URL: "https://news.example.com/a"}, {URL: "https://other.example.com/b"}},
		Image: []ResultItem{{URL: "https://news.example.com/img.png"}},
		News:  []ResultItem{{URL: "https://news.example.com/story"}},
	}

	labeler.LabelAll(&set)

	assert.Equal(t, "publisher", set.Web[0].Label)
	assert.Equal(t, LabelUnclassified, set.Web[1].Label)
	assert.Equal(t, "publisher", set.Image[0].Label)
	assert.Equal(t, "publisher", set.News[0].Label)
}
