package match

import (
	"strings"
	"unicode"
)

// identSuffixes are the key and time suffixes dropped by
// NormalizeIdentWithSuffixStrip, tried longest first.
var identSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

// NormalizeIdent folds s to lower case and drops '_', '-' and spaces, so
// OrderID, orderId and order_id normalize alike.
func NormalizeIdent(s string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, s)
}

// NormalizeIdentWithSuffixStrip normalizes s and then drops one trailing
// ID, IDs, At, UTC or Timestamp, unless nothing would remain.
func NormalizeIdentWithSuffixStrip(s string) string {
	n := NormalizeIdent(s)

	for _, suffix := range identSuffixes {
		if rest, ok := strings.CutSuffix(n, suffix); ok && rest != "" {
			return rest
		}
	}

	return n
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
