package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/flush"
)

// Config describes what a session requests and how it paces output.
type Config struct {
	// Endpoint is the streaming chat URL.
	Endpoint string

	Model       string
	Temperature float64

	// MaxTokens and TopP are sent only when positive.
	MaxTokens int
	TopP      float64

	// PromptSuffix is appended to every prompt before it is sent.
	PromptSuffix string

	Header http.Header

	Strategy  flush.Strategy
	Threshold int

	// Pace is the delay after each emitted fragment. Zero disables it.
	Pace time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithPublisher sets the publisher that receives lifecycle events.
func WithPublisher(p eventstream.Publisher) Option {
	return func(s *Session) {
		s.publisher = p
	}
}

// WithObserver registers an observer called synchronously for every update,
// in order. Updates caused by Start and Clear arrive on the caller's
// goroutine, all others on the read loop, so a slow observer slows the
// stream down.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}
