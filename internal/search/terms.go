// Package search implements the free-text filters of list views.
package search

import "strings"

// ContainsAny returns true if any term appears (case-insensitive) anywhere
// in the combined fields. Empty terms are ignored; no terms never matches.
func ContainsAny(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return false
	}
	combined := strings.ToLower(strings.Join(fields, " "))
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// MatchTitle reports whether title contains query, case-insensitively.
// An empty or blank query matches every title.
func MatchTitle(title, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return ContainsAny([]string{query}, title)
}
