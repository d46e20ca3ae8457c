// Package flush decides when accumulated stream payloads become visible.
//
// Payloads are appended to a buffer. Under the Eager strategy the buffer is
// flushed, formatted and handed back as soon as one of the triggers fires:
//
//   - the payload contains whitespace or sentence punctuation
//   - the buffered text grows past the length threshold
//   - the payload looks like the start of a numbered list item ("3.")
//
// Under the Once strategy nothing is released until Finish. Either way the
// segmentation is a readability heuristic and carries no word-boundary
// guarantee.
package flush

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/papercomputeco/trickle/pkg/format"
)

// DefaultThreshold is the buffered length, in characters, that must be
// exceeded before a length-triggered flush.
const DefaultThreshold = 15

const punctuation = ",.!?;:"

var (
	digitPeriod    = regexp.MustCompile(`\d\.`)
	trailingMarker = regexp.MustCompile(`(^|\s)\d+\.$`)
)

// Strategy selects how often the policy flushes.
type Strategy string

const (
	// Eager flushes on every trigger, producing many small fragments.
	Eager Strategy = "eager"

	// Once holds everything back and emits a single fragment on Finish.
	Once Strategy = "once"
)

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Eager, "":
		return Eager, nil
	case Once:
		return Once, nil
	default:
		return "", fmt.Errorf("unknown flush strategy %q (want %q or %q)", s, Eager, Once)
	}
}

// Policy is the accumulation buffer plus its flush rules. It is owned by a
// single read loop and is not safe for concurrent use.
type Policy struct {
	strategy  Strategy
	threshold int
	formatter func(string) string

	buf     strings.Builder
	flushes int

	// atLineStart is set when the last emitted fragment ended with a line
	// break, so a leading list break on the next one would double it.
	atLineStart bool
}

// Option configures a Policy.
type Option func(*Policy)

// WithStrategy sets the flush strategy.
func WithStrategy(s Strategy) Option {
	return func(p *Policy) {
		p.strategy = s
	}
}

// WithThreshold sets the length threshold. Values below 1 keep the default.
func WithThreshold(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.threshold = n
		}
	}
}

// WithFormatter replaces the post-processor applied to each flushed
// fragment. A nil formatter emits the buffered text unchanged.
func WithFormatter(fn func(string) string) Option {
	return func(p *Policy) {
		p.formatter = fn
	}
}

// New returns an empty Policy using the Eager strategy, the default
// threshold and format.Fragment.
func New(opts ...Option) *Policy {
	p := &Policy{
		strategy:  Eager,
		threshold: DefaultThreshold,
		formatter: format.Fragment,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.formatter == nil {
		p.formatter = func(s string) string { return s }
	}
	return p
}

// Offer appends one non-sentinel payload and reports the formatted fragment
// to emit, if a flush happened. Empty payloads are ignored.
//
// When a flush fires while the buffer ends in a bare list marker such as
// "2." the marker is held back so it leads the next fragment together with
// the item text that follows it.
func (p *Policy) Offer(payload string) (string, bool) {
	if payload == "" {
		return "", false
	}

	p.buf.WriteString(payload)
	if p.strategy == Once || !p.shouldFlush(payload) {
		return "", false
	}

	text := p.buf.String()
	keep := ""
	if loc := trailingMarker.FindStringIndex(text); loc != nil {
		cut := loc[0]
		for cut < len(text) && !isASCIIDigit(text[cut]) {
			cut++
		}
		text, keep = text[:cut], text[cut:]
	}

	p.buf.Reset()
	p.buf.WriteString(keep)

	if text == "" {
		return "", false
	}
	return p.emit(text)
}

// Finish flushes whatever is left in the buffer. It reports false when the
// buffer is empty.
func (p *Policy) Finish() (string, bool) {
	if p.buf.Len() == 0 {
		return "", false
	}
	text := p.buf.String()
	p.buf.Reset()
	return p.emit(text)
}

// Pending returns the buffered, not yet flushed text.
func (p *Policy) Pending() string {
	return p.buf.String()
}

// Len returns the number of characters buffered.
func (p *Policy) Len() int {
	return utf8.RuneCountInString(p.buf.String())
}

// Flushes returns how many fragments the policy has emitted.
func (p *Policy) Flushes() int {
	return p.flushes
}

// Strategy returns the configured strategy.
func (p *Policy) Strategy() Strategy {
	return p.strategy
}

// Reset drops the buffer and the flush count.
func (p *Policy) Reset() {
	p.buf.Reset()
	p.flushes = 0
	p.atLineStart = false
}

func (p *Policy) shouldFlush(payload string) bool {
	if strings.ContainsFunc(payload, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(punctuation, r)
	}) {
		return true
	}
	if p.Len() > p.threshold {
		return true
	}
	return digitPeriod.MatchString(payload)
}

// emit formats text. Formatting sees one fragment at a time, so a line
// break it puts at the start is dropped when the previous fragment already
// ended with one.
func (p *Policy) emit(text string) (string, bool) {
	frag := p.formatter(text)
	if p.atLineStart {
		frag = strings.TrimPrefix(frag, "\n")
	}
	if frag == "" {
		return "", false
	}
	p.flushes++
	p.atLineStart = strings.HasSuffix(frag, "\n")
	return frag, true
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
