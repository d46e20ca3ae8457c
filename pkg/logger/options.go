package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the handler New builds for the primary writer.
type Format string

const (
	// FormatText is slog's key=value text handler.
	FormatText Format = "text"

	// FormatPretty is the colorized charmbracelet/log handler for terminals.
	FormatPretty Format = "pretty"

	// FormatJSON is slog's JSON handler, used by the relay service.
	FormatJSON Format = "json"
)

// ParseFormat maps a config or flag value to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (available: text, pretty, json)", s)
	}
}

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug, so per-frame and per-fragment
// records are shown. It is what the global --debug flag maps to.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithLevel sets the minimum level explicitly.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithFormat picks the handler for the primary writer.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithWriter sets the primary writer. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithJSONCopy appends a JSON copy of every record to w, next to the
// primary output. serve --log-file uses it to keep a machine-readable log
// while printing pretty records to the terminal.
func WithJSONCopy(w io.Writer) Option {
	return func(c *config) {
		c.copies = append(c.copies, w)
	}
}

// WithSource includes the caller's file:line in every record.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
