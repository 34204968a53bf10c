package retrieval

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// maxSpanLength bounds each kept block; longer blocks are cut.
	maxSpanLength = 550
	// lengthBonusCap caps the length component of a block's score.
	lengthBonusCap = 400
	truncationMark = "..."
)

var (
	imageMarkup    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)|<img[^>]*>|<figure[\s\S]*?</figure>`)
	listItemPrefix = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])\s`)
	spanWhitespace = regexp.MustCompile(`[ \t]+`)
)

// ExtractSpans pulls the top-K query-relevant text blocks out of fetched page
// content. Empty input yields an empty result. Blocks are paragraph-like
// chunks split on blank lines; list items are discarded. Each block scores by
// distinct query-token hits plus a small length bonus; ties keep input order.
func ExtractSpans(content, query string, k int) []Span {
	if strings.TrimSpace(content) == "" || k <= 0 {
		return nil
	}

	cleaned := imageMarkup.ReplaceAllString(content, "")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")

	tokens := queryTokens(query)

	type scored struct {
		span  Span
		score float64
	}
	var candidates []scored

	offset := 0
	for _, block := range strings.Split(cleaned, "\n\n") {
		blockOffset := offset
		offset += len(block) + 2

		text := spanWhitespace.ReplaceAllString(strings.TrimSpace(block), " ")
		if text == "" || listItemPrefix.MatchString(block) {
			continue
		}

		lower := strings.ToLower(text)
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				hits++
			}
		}

		lengthBonus := float64(len(text)) / lengthBonusCap
		if lengthBonus > 1 {
			lengthBonus = 1
		}
		score := float64(hits) + lengthBonus*0.25

		candidates = append(candidates, scored{
			span:  Span{Text: text, Offset: blockOffset},
			score: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	spans := make([]Span, 0, len(candidates))
	for _, c := range candidates {
		if len(c.span.Text) > maxSpanLength {
			c.span.Text = c.span.Text[:maxSpanLength] + truncationMark
		}
		spans = append(spans, c.span)
	}
	return spans
}

// BuildEvidence extracts spans from every successfully fetched item. Items
// that were not fetched or whose fetch failed contribute nothing.
func BuildEvidence(items []EnrichedItem, query string, k int) []Evidence {
	var bundle []Evidence
	for _, item := range items {
		if item.FetchStatus != FetchStatusOK || item.Content == "" {
			continue
		}
		spans := ExtractSpans(item.Content, query, k)
		if len(spans) == 0 {
			continue
		}
		bundle = append(bundle, Evidence{URL: item.URL, Spans: spans})
	}
	return bundle
}
