package retrieval

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var errNoEntries = errors.New("no list entries parsed")

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ParseStringList turns free-form model output into a list of strings using a
// fixed fallback chain. Each stage runs only if the previous one failed:
//
//  1. parse the raw text as a JSON array of strings
//  2. strip a single surrounding code fence and retry
//  3. split on newlines and commas, stripping bullet and numbering tokens
//
// Duplicate entries (case-insensitive) and empty entries are discarded at
// every stage. An error is returned only when all stages yield nothing.
func ParseStringList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errNoEntries
	}

	if entries, err := parseJSONList(raw); err == nil {
		return entries, nil
	}

	if stripped, ok := stripCodeFence(raw); ok {
		if entries, err := parseJSONList(stripped); err == nil {
			return entries, nil
		}
		raw = stripped
	}

	return parseHeuristicList(raw)
}

// parseJSONList is stage 1: the raw text is a JSON array of strings.
func parseJSONList(raw string) ([]string, error) {
	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	entries = dedupeFold(entries)
	if len(entries) == 0 {
		return nil, errNoEntries
	}
	return entries, nil
}

// stripCodeFence removes one leading and one trailing markdown fence marker.
// Returns false when the text carries no fence.
func stripCodeFence(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return raw, false
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "[{\"") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed), true
}

// parseHeuristicList is stage 3: split on newlines and commas, strip bullet
// and numbering tokens, drop empties and duplicates.
func parseHeuristicList(raw string) ([]string, error) {
	var entries []string
	for _, line := range strings.Split(raw, "\n") {
		for _, part := range strings.Split(line, ",") {
			part = bulletPrefix.ReplaceAllString(part, "")
			part = strings.Trim(strings.TrimSpace(part), `"'`)
			if part != "" {
				entries = append(entries, part)
			}
		}
	}
	entries = dedupeFold(entries)
	if len(entries) == 0 {
		return nil, errNoEntries
	}
	return entries, nil
}

// dedupeFold drops empty entries and case-insensitive duplicates, keeping
// first occurrences in order.
func dedupeFold(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
