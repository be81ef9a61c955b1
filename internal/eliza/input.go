package eliza

import (
	"strings"
	"unicode"
)

// Split upper-cases line and breaks it into words at white space.
// Periods and commas become words of their own.
func Split(line string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToUpper(line) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '.' || r == ',':
			flush()
			words = append(words, string(r))
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return words
}

// isDelimiter reports whether w ends a clause.
func isDelimiter(w string) bool {
	return w == "." || w == "," || w == "BUT"
}
