// Package sse provides the incremental decoding half of the trickle streaming
// client: a line frame buffer that reassembles text lines from arbitrarily
// sliced byte chunks, a single-line record parser for "data:" frames, and an
// event-level TeeReader used by the relay when consuming upstream providers.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

const (
	// DataMarker is the field prefix a line must start with to carry a payload.
	DataMarker = "data:"

	// Sentinel is the payload producers send to signal the end of content.
	Sentinel = "[DONE]"
)

// Record is the result of parsing one complete data line.
type Record struct {
	// Payload is the text after the "data:" marker with surrounding
	// whitespace trimmed.
	Payload string

	// Sentinel is true when Payload is exactly the end-of-content token.
	// Producers send no further frames after it.
	Sentinel bool
}

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
