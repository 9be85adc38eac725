// Package match scores name similarity for contact reconciliation.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// FuzzyThreshold is the minimum similarity for a fuzzy match candidate.
	FuzzyThreshold = 0.7
	// ExactNameThreshold is the similarity above which a phone-matched
	// contact is considered an exact match rather than a name conflict.
	ExactNameThreshold = 0.8
)

// NormalizeName lowercases, trims and collapses internal whitespace runs.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity returns a score in [0,1] for two names: 1.0 for identical
// normalized strings, 0.0 when either is empty, otherwise
// (maxLen - editDistance) / maxLen over the normalized forms.
func Similarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	// ComputeDistance works on runes, so measure length the same way.
	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	score := float64(maxLen-dist) / float64(maxLen)
	if score < 0 {
		return 0.0
	}
	return score
}
