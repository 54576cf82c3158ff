// Package diagnostic provides structured errors, warnings and notes
// produced while checking mapping rules and mapping files.
//
// Key capabilities:
//   - Unknown types, fields and transforms in mapping files
//   - Dangling rule references with the closest known names as suggestions
//   - Reference cycles between rules
package diagnostic
