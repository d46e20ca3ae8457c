// Package transport opens streaming HTTP requests and yields the response
// body as an ordered sequence of raw byte chunks.
//
// Cancellation is cooperative. The context handed to Open governs the whole
// connection; Stream.Next checks it before every read and reports a
// cancelled read as ErrCancelled, never as a TransportError.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrCancelled is returned when a read or open is abandoned because its
// context was cancelled or its deadline passed.
var ErrCancelled = errors.New("stream cancelled")

// Request describes a streaming request.
type Request struct {
	Method string
	URL    string

	// Body is encoded as JSON when non-nil.
	Body any

	Header http.Header
}

// Chunk is one raw read from the connection. Seq starts at 1 and increases
// by one per chunk.
type Chunk struct {
	Seq  uint64
	Data []byte
}

// Stream yields chunks until io.EOF, ErrCancelled or a *TransportError.
type Stream interface {
	Next(ctx context.Context) (Chunk, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// Opener opens streams.
type Opener interface {
	Open(ctx context.Context, req *Request) (Stream, error)
}

// TransportError reports a connection or HTTP level failure.
type TransportError struct {
	// Op is the failing step: "encode", "connect", "status", "charset" or "read".
	Op string

	// StatusCode is set for non-2xx responses.
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
