package match

import (
	"github.com/agext/levenshtein"
)

// LevenshteinNormalized computes a similarity score between 0 and 1.
// 1.0 means identical strings, 0.0 means completely different.
// The score is 1 - distance/max(len(a), len(b)).
func LevenshteinNormalized(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

// NormalizedLevenshteinScore computes the similarity of two identifiers
// after normalizing them. This is the primary function for name matching.
func NormalizedLevenshteinScore(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdent(a), NormalizeIdent(b))
}

// NormalizedLevenshteinScoreWithSuffixStrip computes the similarity score
// with additional suffix stripping for common patterns.
func NormalizedLevenshteinScoreWithSuffixStrip(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdentWithSuffixStrip(a), NormalizeIdentWithSuffixStrip(b))
}

// NameScore returns the better of the plain and suffix-stripped scores.
func NameScore(a, b string) float64 {
	return max(NormalizedLevenshteinScore(a, b), NormalizedLevenshteinScoreWithSuffixStrip(a, b))
}
