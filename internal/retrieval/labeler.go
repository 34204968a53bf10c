package retrieval

import (
	"regexp"
	"strings"

	"search-orchestrator/internal/common/config"
)

type labelRule struct {
	re       *regexp.Regexp
	literal  string
	category string
}

// Labeler tags result URLs with a taxonomy category from an ordered rule list.
// The first matching rule wins; URLs matching no rule get LabelUnclassified.
type Labeler struct {
	rules []labelRule
}

// NewLabeler precompiles the configured rules. A pattern that fails to compile
// as a regular expression is kept as a literal substring match.
func NewLabeler(rules []config.CategoryRule) *Labeler {
	compiled := make([]labelRule, 0, len(rules))
	for _, r := range rules {
		if r.Pattern == "" || r.Category == "" {
			continue
		}
		rule := labelRule{category: r.Category}
		if re, err := regexp.Compile(r.Pattern); err == nil {
			rule.re = re
		} else {
			rule.literal = r.Pattern
		}
		compiled = append(compiled, rule)
	}
	return &Labeler{rules: compiled}
}

// Label returns the taxonomy category for one URL.
func (l *Labeler) Label(url string) string {
	for _, rule := range l.rules {
		if rule.re != nil {
			if rule.re.MatchString(url) {
				return rule.category
			}
		} else if strings.Contains(url, rule.literal) {
			return rule.category
		}
	}
	return LabelUnclassified
}

// LabelAll tags every item in the set in place.
func (l *Labeler) LabelAll(set *ResultSet) {
	for _, items := range [][]ResultItem{set.Web, set.Image, set.News} {
		for i := range items {
			items[i].Label = l.Label(items[i].URL)
		}
	}
}
