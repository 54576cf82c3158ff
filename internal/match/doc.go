// Package match provides name normalization, edit-distance scoring, runtime
// type compatibility and candidate ranking for pairing source and target
// fields by name.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - NameScore: similarity of two normalized identifiers
//   - ScoreTypeCompatibility: scores reflect.Type compatibility
//   - RankCandidates: ranks potential source fields for a target field
package match
