package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"search-orchestrator/internal/common/logger"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeQuery trims and collapses internal whitespace.
func NormalizeQuery(query string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(query), " ")
}

// Expander turns one query into an ordered list of variants via the
// text-completion collaborator. It never returns an error: every failure
// degrades to the original-only variant list.
type Expander struct {
	completer   Completer
	logger      logger.Logger
	maxVariants int
}

func NewExpander(completer Completer, maxVariants int, log logger.Logger) *Expander {
	if maxVariants < 1 {
		maxVariants = 1
	}
	return &Expander{
		completer:   completer,
		logger:      log.With(map[string]interface{}{"component": "expander"}),
		maxVariants: maxVariants,
	}
}

// Expand produces up to maxVariants query strings. The first entry is always
// the normalized original; the rest are case-insensitively unique and distinct
// from it. gapHint, when non-empty, steers the alternatives toward facts the
// previous iteration failed to cover.
func (e *Expander) Expand(ctx context.Context, query, gapHint string) []string {
	original := NormalizeQuery(query)
	variants := []string{original}
	if e.maxVariants == 1 || e.completer == nil {
		return variants
	}

	raw, err := e.completer.Complete(ctx, e.buildPrompt(original, gapHint), CompleteOptions{
		Temperature: floatPtr(0.7),
		MaxTokens:   256,
	})
	if err != nil {
		e.logger.Warn("query expansion call failed, using original only", map[string]interface{}{
			"error": err.Error(),
		})
		return variants
	}

	parsed, err := ParseStringList(raw)
	if err != nil {
		e.logger.Warn("query expansion unparseable, using original only", map[string]interface{}{
			"raw": truncateForLog(raw),
		})
		return variants
	}

	seen := map[string]bool{strings.ToLower(original): true}
	for _, candidate := range parsed {
		candidate = NormalizeQuery(candidate)
		key := strings.ToLower(candidate)
		if candidate == "" || seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, candidate)
		if len(variants) == e.maxVariants {
			break
		}
	}
	return variants
}

func (e *Expander) buildPrompt(query, gapHint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate up to %d alternative phrasings of the following search query.\n", e.maxVariants-1)
	b.WriteString("Each alternative must preserve the meaning while varying wording and emphasis.\n")
	fmt.Fprintf(&b, "\nQuery: %s\n", query)
	if gapHint != "" {
		fmt.Fprintf(&b, "\nThe previous search round could not establish: %s\nBias the alternatives toward covering these facts.\n", gapHint)
	}
	b.WriteString("\nReturn only a JSON array of strings, no commentary.")
	return b.String()
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
