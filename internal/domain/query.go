package domain

import (
	"regexp"
	"strings"
)

// keywordSeparatorRegex splits a raw query into keyword units.
// Commas, semicolons and newlines all act as separators.
var keywordSeparatorRegex = regexp.MustCompile(`[,\n;]+`)

// tokenSeparatorRegex splits a keyword into tokens for query normalization.
var tokenSeparatorRegex = regexp.MustCompile(`[,;\s]+`)

// SplitKeywords splits a raw query string into trimmed, non-empty keyword
// units on comma, semicolon or newline separators. When splitting yields
// nothing, the whole trimmed query is returned as the single keyword, so a
// non-blank query always produces at least one keyword.
func SplitKeywords(query string) []string {
	parts := keywordSeparatorRegex.Split(query, -1)
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	if len(keywords) == 0 {
		return []string{strings.TrimSpace(query)}
	}
	return keywords
}

// NormalizeQuery collapses whitespace, comma and semicolon runs into single
// spaces and removes case-insensitive duplicate tokens, preserving the
// first-seen order. Used when building the outbound discovery query for a
// keyword.
func NormalizeQuery(query string) string {
	tokens := tokenSeparatorRegex.Split(query, -1)
	seen := make(map[string]struct{}, len(tokens))
	deduped := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, t)
	}
	return strings.Join(deduped, " ")
}
