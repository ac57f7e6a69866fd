package conversation

import (
	"strings"
	"unicode"
)

// Clean strips everything but ASCII letters, digits, whitespace and the
// punctuation . , ! ? ' - from a line, then collapses whitespace runs to a
// single space and trims the result.
func Clean(line string) string {
	return normalize(line, false)
}

// timeView is Clean that also keeps ':' so clock separators survive
func timeView(line string) string {
	return normalize(line, true)
}

func normalize(line string, keepColon bool) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == ',', r == '!', r == '?', r == '\'', r == '-':
			return r
		case r == ':' && keepColon:
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, line)

	return strings.Join(strings.Fields(kept), " ")
}
