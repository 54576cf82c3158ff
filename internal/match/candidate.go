package match

import (
	"reflect"
	"sort"
)

// Field is a named, typed struct member taking part in matching.
type Field struct {
	Name string
	Type reflect.Type
}

// Candidate represents a potential pairing of a source field with a target field.
type Candidate struct {
	Source Field
	Target Field

	// Scoring components
	NameScore  float64                 // Normalized Levenshtein similarity (0-1)
	TypeCompat TypeCompatibilityResult // Type compatibility result

	// Combined score for ranking (higher is better)
	CombinedScore float64

	// Metadata for debugging/explanation
	NormalizedSourceName string
	NormalizedTargetName string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every source field against target and returns the
// candidates sorted by combined score (descending).
func RankCandidates(target Field, sources []Field) CandidateList {
	candidates := make(CandidateList, 0, len(sources))
	targetNorm := NormalizeIdent(target.Name)

	for _, source := range sources {
		nameScore := NameScore(source.Name, target.Name)
		typeCompat := ScorePointerCompatibility(source.Type, target.Type)

		candidates = append(candidates, Candidate{
			Source:               source,
			Target:               target,
			NameScore:            nameScore,
			TypeCompat:           typeCompat,
			CombinedScore:        calculateCombinedScore(nameScore, typeCompat.Compatibility),
			NormalizedSourceName: NormalizeIdent(source.Name),
			NormalizedTargetName: targetNorm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// calculateCombinedScore computes a combined score from name similarity and type compatibility.
// Weights:
//   - Name similarity: 60% (0.0-0.6)
//   - Type compatibility: 40% (0.0-0.4)
func calculateCombinedScore(nameScore float64, typeCompat TypeCompatibility) float64 {
	const (
		nameWeight = 0.6
		typeWeight = 0.4
	)

	var typeScore float64

	switch typeCompat {
	case TypeIdentical:
		typeScore = 1.0
	case TypeAssignable:
		typeScore = 0.9
	case TypeConvertible:
		typeScore = 0.7
	case TypeNeedsTransform:
		typeScore = 0.4
	case TypeIncompatible:
		typeScore = 0.0
	}

	return nameScore*nameWeight + typeScore*typeWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by source field name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Source.Name < c[j].Source.Name
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// Copyable keeps only candidates whose value can be copied without coercion.
func (c CandidateList) Copyable() CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.TypeCompat.Compatibility.Copyable() {
			result = append(result, cand)
		}
	}

	return result
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].CombinedScore-c[1].CombinedScore < threshold
}

// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
const DefaultAmbiguityThreshold = 0.1
