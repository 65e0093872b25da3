package lookup

import (
	"strings"
	"unicode/utf8"
)

// StrictPolicy reports whether a fuzzy lookup must be narrowed to exact matching.
// values holds only the submitted values of fuzzy-capable fields.
type StrictPolicy func(values map[string]string) bool

// MinLengthPolicy narrows a lookup when every fuzzy value is only usable as an
// exact match: shorter than minLength, or carrying a SoQL wildcard of its own.
func MinLengthPolicy(minLength int) StrictPolicy {
	return func(values map[string]string) bool {
		if len(values) == 0 {
			return false
		}
		for _, v := range values {
			if !exactOnly(v, minLength) {
				return false
			}
		}
		return true
	}
}

// NeverStrict always allows wildcard matching.
func NeverStrict(map[string]string) bool {
	return false
}

func exactOnly(value string, minLength int) bool {
	return utf8.RuneCountInString(value) < minLength || hasWildcard(value)
}

// hasWildcard reports whether value contains a SoQL like wildcard.
func hasWildcard(value string) bool {
	return strings.ContainsAny(value, "%_")
}
