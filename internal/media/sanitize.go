package media

import (
	"strings"
	"unicode"
)

// SanitizeFilename strips every rune that is not a letter, a digit, a
// hyphen, underscore, period or space. Letters and digits in any
// script are kept, so non-Latin titles survive. An all-unsafe input
// yields the empty string; collision avoidance is the job identifier's
// concern, not ours.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == '-' || r == '_' || r == '.' || r == ' ':
			return r
		}
		return -1
	}, name)
}
