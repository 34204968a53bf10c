package retrieval

import (
	"strings"
	"unicode"
)

// TokenSimilarity computes Jaccard similarity between the token sets of two
// strings, case-insensitively. Returns 0 when either side has no tokens.
func TokenSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// queryTokens returns the distinct lowercase tokens of a query with length >= 3,
// used by span scoring.
func queryTokens(query string) []string {
	set := tokenSet(query)
	tokens := make([]string, 0, len(set))
	for tok := range set {
		if len(tok) >= 3 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
