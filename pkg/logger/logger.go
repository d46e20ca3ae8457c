// Package logger builds the *slog.Logger used across trickle. Commands pick
// pretty output for terminals and JSON for the relay service; library
// packages only ever receive a *slog.Logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	format Format
	source bool
	w      io.Writer
	copies []io.Writer
}

// New returns a logger configured by opts. Without options it writes
// slog text records at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, format: FormatText, w: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}

	primary := c.handler(c.format, c.w)
	if len(c.copies) == 0 {
		return slog.New(primary)
	}

	tee := teeHandler{primary}
	for _, w := range c.copies {
		tee = append(tee, c.handler(FormatJSON, w))
	}
	return slog.New(tee)
}

func (c *config) handler(f Format, w io.Writer) slog.Handler {
	switch f {
	case FormatPretty:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    c.source,
		})
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
