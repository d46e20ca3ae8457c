package sse

import "strings"

// ParseLine interprets one complete line as a frame. Only lines beginning
// with the "data:" marker produce a Record; blank separators, comments and
// other fields are ordinary protocol noise and are dropped.
func ParseLine(line string) (Record, bool) {
	payload, ok := strings.CutPrefix(line, DataMarker)
	if !ok {
		return Record{}, false
	}

	payload = strings.TrimSpace(payload)
	return Record{
		Payload:  payload,
		Sentinel: payload == Sentinel,
	}, true
}
