// Package similarity implements the string scoring used for header matching
package similarity

import "strings"

// Scorer computes a normalized 0-1 similarity between two strings
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score compares two strings, case-insensitively and trimmed, and returns a
// value between 0.0 (no similarity) and 1.0 (exact match). Rules in priority
// order: exact match -> 1.0, one string contains the other -> 0.95, otherwise
// normalized Levenshtein.
//
// The containment rule makes Score intentionally not a true metric: a
// substring pair scores 0.95 even when a non-substring pair is closer by edit
// distance. That ranking matches how broker headers embed catalog phrases
// ("Listing Price ($)" vs "List Price") and is kept as documented behavior.
func (s *Scorer) Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.95
	}

	distance := s.LevenshteinDistance(a, b)
	maxLen := max(len(a), len(b))
	score := float64(maxLen-distance) / float64(maxLen)
	if score < 0 {
		return 0.0
	}
	return score
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rows for dynamic programming
	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}
