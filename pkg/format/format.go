// Package format normalizes flushed stream fragments for display.
//
// Streamed tokens arrive with their surrounding whitespace trimmed, so words,
// numbers and list items tend to run together ("1.ItemOne"). The passes here
// put the separators back using a handful of cheap heuristics. They are
// cosmetic and make no attempt at real tokenization.
package format

import (
	"regexp"
	"strings"
)

var (
	punctLetter  = regexp.MustCompile(`([.,!?;:])(\pL)`)
	lowerUpper   = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)
	digitLetter  = regexp.MustCompile(`(\d)(\pL)`)
	letterDigit  = regexp.MustCompile(`(\pL)(\d)`)
	markerLetter = regexp.MustCompile(`(\d+)\.(\pL)`)
)

// Pass is a single pure text transform.
type Pass func(string) string

// Passes lists the normalization passes in the order Fragment applies them.
var Passes = []Pass{
	PunctuationSpacing,
	CaseBoundary,
	DigitLetterSpacing,
	ListMarkerSpacing,
	ListBreaks,
}

// Fragment applies every pass to text.
func Fragment(text string) string {
	for _, pass := range Passes {
		text = pass(text)
	}
	return text
}

// PunctuationSpacing inserts a space between a punctuation mark and a letter
// that follows it directly: "Hi,there" becomes "Hi, there".
func PunctuationSpacing(text string) string {
	return punctLetter.ReplaceAllString(text, "${1} ${2}")
}

// CaseBoundary splits lower/upper case runs: "ItemOne" becomes "Item One".
func CaseBoundary(text string) string {
	return lowerUpper.ReplaceAllString(text, "${1} ${2}")
}

// DigitLetterSpacing separates digits from adjacent letters in both
// directions: "top3items" becomes "top 3 items".
func DigitLetterSpacing(text string) string {
	text = digitLetter.ReplaceAllString(text, "${1} ${2}")
	return letterDigit.ReplaceAllString(text, "${1} ${2}")
}

// ListMarkerSpacing turns "1.Item" into "1. Item".
func ListMarkerSpacing(text string) string {
	return markerLetter.ReplaceAllString(text, "${1}. ${2}")
}

// ListBreaks starts every enumerated-list marker ("<digits>. ") on its own
// line. A marker that already follows a line break is left alone, and so are
// digits that continue a longer number.
func ListBreaks(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if isDigit(c) && (i == 0 || !isDigit(text[i-1])) && startsMarker(text[i:]) {
			if i == 0 || text[i-1] != '\n' {
				b.WriteByte('\n')
			}
		}
		b.WriteByte(c)
	}

	return b.String()
}

// startsMarker reports whether s begins with digits, a period and whitespace.
func startsMarker(s string) bool {
	j := 0
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == 0 || j+1 >= len(s) || s[j] != '.' {
		return false
	}
	return isSpace(s[j+1])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
