// internal/retrieval/spans_test.go
package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSpans_EmptyContent(t *testing.T) {
	assert.Nil(t, ExtractSpans("", "query", 3))
	assert.Nil(t, ExtractSpans("   \n\n  ", "query", 3))
	assert.Nil(t, ExtractSpans("some content", "query", 0))
}

func TestExtractSpans_FullTokenParagraphRanksFirst(t *testing.T) {
	content := strings.Join([]string{
		"A paragraph about gardening and unrelated topics entirely.",
		"Electric cars with the longest battery range in 2024 reviewed.",
		"Another filler paragraph mentioning only battery chargers briefly.",
	}, "\n\n")

	spans := ExtractSpans(content, "electric cars battery range 2024", 3)

	assert.NotEmpty(t, spans)
	assert.Contains(t, spans[0].Text, "Electric cars with the longest battery range")
}

func TestExtractSpans_SkipsListItems(t *testing.T) {
	content := "- a list item mentioning electric cars\n\nA real paragraph about electric cars and their range."

	spans := ExtractSpans(content, "electric cars", 3)

	assert.Len(t, spans, 1)
	assert.Contains(t, spans[0].Text, "real paragraph")
}

func TestExtractSpans_StripsImageMarkup(t *testing.T) {
	content := "![chart](https://img.example.com/chart.png)Electric cars sold well this year.\n\n<img src=\"x.png\">Another electric cars paragraph here."

	spans := ExtractSpans(content, "electric cars", 3)

	for _, span := range spans {
		assert.NotContains(t, span.Text, "img.example.com")
		assert.NotContains(t, span.Text, "<img")
	}
}

func TestExtractSpans_TruncatesLongBlocks(t *testing.T) {
	long := strings.Repeat("electric cars range data point ", 40)
	spans := ExtractSpans(long, "electric cars", 1)

	assert.Len(t, spans, 1)
	assert.Len(t, spans[0].Text, 550+len("..."))
	assert.True(t, strings.HasSuffix(spans[0].Text, "..."))
}

func TestExtractSpans_LimitsToK(t *testing.T) {
	blocks := make([]string, 6)
	for i := range blocks {
		blocks[i] = "Paragraph about electric cars number " + strings.Repeat("x", i+1) + "."
	}
	spans := ExtractSpans(strings.Join(blocks, "\n\n"), "electric cars", 3)

	assert.Len(t, spans, 3)
}

func TestExtractSpans_CollapsesInnerWhitespace(t *testing.T) {
	spans := ExtractSpans("Electric   cars\twith   spacing issues.", "electric cars", 1)

	assert.Len(t, spans, 1)
	assert.Equal(t, "Electric cars with spacing issues.", spans[0].Text)
}

func TestBuildEvidence(t *testing.T) {
	items := []EnrichedItem{
		{
			ResultItem:  ResultItem{URL: "https://ok.example.com"},
			FetchStatus: FetchStatusOK,
			Content:     "Electric cars paragraph with real content about range.",
		},
		{
			ResultItem:  ResultItem{URL: "https://failed.example.com"},
			FetchStatus: FetchStatusError,
			FetchError:  "fetch job timed out",
		},
		{
			ResultItem:  ResultItem{URL: "https://skipped.example.com"},
			FetchStatus: FetchStatusSkipped,
		},
		{
			ResultItem:  ResultItem{URL: "https://empty.example.com"},
			FetchStatus: FetchStatusOK,
			Content:     "",
		},
	}

	evidence := BuildEvidence(items, "electric cars range", 3)

	assert.Len(t, evidence, 1)
	assert.Equal(t, "https://ok.example.com", evidence[0].URL)
	assert.NotEmpty(t, evidence[0].Spans)
}
