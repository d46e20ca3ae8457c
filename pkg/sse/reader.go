package sse

import (
	"errors"
	"io"
	"strings"
)

const teeReadSize = 4096

// TeeReader reads whole SSE events from a source io.Reader while writing
// every raw byte verbatim to a destination io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │ TeeReader.Next() │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// The relay uses it to consume upstream provider streams, where one event
// may span several data lines, while optionally dumping the raw frames.
type TeeReader struct {
	src   io.Reader
	dest  io.Writer
	lines *LineBuffer
	queue []string
	buf   []byte
	eof   bool

	// current accumulates fields for the event being built.
	current *Event
	hasData bool
}

// NewTeeReader returns a TeeReader that parses SSE events from src and writes
// all raw bytes through to dest. A nil dest discards the copy.
func NewTeeReader(src io.Reader, dest io.Writer) *TeeReader {
	if dest == nil {
		dest = io.Discard
	}

	return &TeeReader{
		src:     src,
		dest:    dest,
		lines:   NewLineBuffer(),
		buf:     make([]byte, teeReadSize),
		current: &Event{},
	}
}

// Next returns the next parsed SSE event. It blocks until a complete event
// is available (terminated by a blank line in the stream).
// Next returns nil, nil when the source is exhausted.
func (r *TeeReader) Next() (*Event, error) {
	for {
		raw, ok, err := r.nextLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		// A blank line signals the end of the current event.
		if raw == "" {
			if r.hasData {
				ev := r.current
				r.reset()
				return ev, nil
			}
			continue
		}

		// Lines starting with ':' are comments.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseField(raw)
	}

	// Stream ended without a trailing blank line.
	if r.hasData {
		ev := r.current
		r.reset()
		return ev, nil
	}

	return nil, nil
}

// nextLine pops the next complete line, reading from the source as needed.
func (r *TeeReader) nextLine() (string, bool, error) {
	for len(r.queue) == 0 {
		if r.eof {
			return "", false, nil
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			if _, werr := r.dest.Write(r.buf[:n]); werr != nil {
				return "", false, werr
			}
			lines, ferr := r.lines.Feed(r.buf[:n])
			if ferr != nil {
				return "", false, ferr
			}
			r.queue = append(r.queue, lines...)
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", false, err
			}
			r.eof = true
			lines, ferr := r.lines.Flush()
			if ferr != nil {
				return "", false, ferr
			}
			r.queue = append(r.queue, lines...)
		}
	}

	line := r.queue[0]
	r.queue = r.queue[1:]
	return line, true, nil
}

// parseField accumulates one "field:value" line into the current event.
// A single space after the colon is stripped, per the SSE spec.
func (r *TeeReader) parseField(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	} else {
		field = line
	}

	switch field {
	case "data":
		if r.hasData && r.current.Data != "" {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	default:
		// "retry" and unknown fields are ignored.
	}
}

func (r *TeeReader) reset() {
	r.current = &Event{}
	r.hasData = false
}
