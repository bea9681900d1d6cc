// Package glob implements the wildcard matching used by search queries.
//
// A pattern matches the whole text. '*' matches any run of characters, '?' matches exactly
// one character and '\' makes the next character literal. A trailing lone '\' matches a
// literal backslash. Matching operates on runes.
package glob

import (
	"unicode"
	"unicode/utf8"
)

// Match reports whether text matches pattern.
func Match(pattern, text string, caseSensitive bool) bool {
	return match([]rune(pattern), text, caseSensitive)
}

// Contains reports whether any substring of text matches pattern, which is the same as
// matching "*" + pattern + "*".
func Contains(pattern, text string, caseSensitive bool) bool {
	p := make([]rune, 0, len(pattern)+3)
	p = append(p, '*')
	p = append(p, []rune(pattern)...)
	if hasLoneTrailingEscape(p) {
		p = append(p, '\\')
	}
	p = append(p, '*')

	return match(p, text, caseSensitive)
}

func match(p []rune, text string, caseSensitive bool) bool {
	ti, pi := 0, 0
	starPi, starTi := -1, 0

	for ti < len(text) {
		tr, tsize := utf8.DecodeRuneInString(text[ti:])

		if pi < len(p) {
			switch p[pi] {
			case '*':
				starPi, starTi = pi, ti
				pi++

				continue
			case '?':
				pi++
				ti += tsize

				continue
			}

			lit, width := literalAt(p, pi)
			if runeEqual(lit, tr, caseSensitive) {
				pi += width
				ti += tsize

				continue
			}
		}

		if starPi < 0 {
			return false
		}
		// let the last '*' absorb one more rune
		_, skip := utf8.DecodeRuneInString(text[starTi:])
		starTi += skip
		ti = starTi
		pi = starPi + 1
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}

	return pi == len(p)
}

// literalAt returns the literal rune at p[i] and the number of pattern runes it spans.
func literalAt(p []rune, i int) (rune, int) {
	if p[i] == '\\' && i+1 < len(p) {
		return p[i+1], 2
	}

	return p[i], 1
}

func hasLoneTrailingEscape(p []rune) bool {
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' {
			if i == len(p)-1 {
				return true
			}
			i++
		}
	}

	return false
}

func runeEqual(a, b rune, caseSensitive bool) bool {
	if a == b {
		return true
	}
	if caseSensitive {
		return false
	}

	return unicode.ToLower(a) == unicode.ToLower(b) || unicode.ToUpper(a) == unicode.ToUpper(b)
}
