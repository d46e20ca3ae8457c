package relay

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultWordLimit is the buffered length past which a word is sent even
// without a separator.
const DefaultWordLimit = 8

var separatorToken = regexp.MustCompile(`^[\s,.!?;:]$`)

// WordBuffer groups tokens into small words before they are sent as events.
// A word is released when the token just added is a lone separator or the
// buffer grows past the limit.
type WordBuffer struct {
	limit int
	buf   strings.Builder
}

// NewWordBuffer returns a WordBuffer. A limit below 1 uses DefaultWordLimit.
func NewWordBuffer(limit int) *WordBuffer {
	if limit < 1 {
		limit = DefaultWordLimit
	}
	return &WordBuffer{limit: limit}
}

// Add appends token and returns the released word, if any.
func (w *WordBuffer) Add(token string) (string, bool) {
	w.buf.WriteString(token)

	if !separatorToken.MatchString(token) && utf8.RuneCountInString(w.buf.String()) <= w.limit {
		return "", false
	}
	return w.take()
}

// Flush returns whatever is left.
func (w *WordBuffer) Flush() (string, bool) {
	return w.take()
}

func (w *WordBuffer) take() (string, bool) {
	if w.buf.Len() == 0 {
		return "", false
	}
	word := w.buf.String()
	w.buf.Reset()
	return word, true
}
