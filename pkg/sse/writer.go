package sse

import (
	"io"
	"strings"
)

// Writer encodes events onto an io.Writer in the compact "field:value" form
// (no space after the colon), one blank line after each event.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes ev. Data containing newlines is split over several
// "data:" lines so a reader joins it back unchanged.
func (w *Writer) WriteEvent(ev Event) error {
	var b strings.Builder

	if ev.ID != "" {
		b.WriteString("id:")
		b.WriteString(ev.ID)
		b.WriteByte('\n')
	}
	if ev.Type != "" {
		b.WriteString("event:")
		b.WriteString(ev.Type)
		b.WriteByte('\n')
	}
	for _, line := range strings.Split(ev.Data, "\n") {
		b.WriteString(DataMarker)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w.w, b.String())
	return err
}

// WriteData writes a bare data event.
func (w *Writer) WriteData(data string) error {
	return w.WriteEvent(Event{Data: data})
}

// WriteDone writes the end-of-content sentinel.
func (w *Writer) WriteDone() error {
	return w.WriteData(Sentinel)
}
