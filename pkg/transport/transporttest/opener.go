// Package transporttest provides a scripted transport.Opener for tests.
package transporttest

import (
	"context"
	"io"
	"sync"

	"github.com/papercomputeco/trickle/pkg/transport"
)

// Opener replays a fixed script of chunks on every Open.
//
// With Gate set, each chunk is released only after a receive on Gate
// succeeds, which lets a test hold the stream between chunks. With Hang
// set, the stream blocks after the last chunk until its context is
// cancelled instead of ending with io.EOF.
type Opener struct {
	Chunks [][]byte

	// OpenErr is returned by Open instead of a stream.
	OpenErr error

	// Err replaces the final io.EOF.
	Err error

	Gate chan struct{}
	Hang bool

	mu       sync.Mutex
	requests []*transport.Request
	streams  []*Stream
}

// NewOpener returns an Opener whose script is the given strings.
func NewOpener(chunks ...string) *Opener {
	o := &Opener{}
	for _, c := range chunks {
		o.Chunks = append(o.Chunks, []byte(c))
	}
	return o
}

// Open records req and returns a fresh stream over the script.
func (o *Opener) Open(ctx context.Context, req *transport.Request) (transport.Stream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests = append(o.requests, req)
	if ctx.Err() != nil {
		return nil, transport.ErrCancelled
	}
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}

	s := &Stream{opener: o, ctx: ctx}
	o.streams = append(o.streams, s)
	return s, nil
}

// Requests returns every request passed to Open.
func (o *Opener) Requests() []*transport.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*transport.Request(nil), o.requests...)
}

// Streams returns every stream handed out.
func (o *Opener) Streams() []*Stream {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Stream(nil), o.streams...)
}

// Stream is a scripted transport.Stream.
type Stream struct {
	opener *Opener
	ctx    context.Context

	mu     sync.Mutex
	next   int
	closed bool
}

// Next returns the next scripted chunk.
func (s *Stream) Next(ctx context.Context) (transport.Chunk, error) {
	if ctx.Err() != nil || s.ctx.Err() != nil {
		return transport.Chunk{}, transport.ErrCancelled
	}

	s.mu.Lock()
	i := s.next
	s.mu.Unlock()

	if i >= len(s.opener.Chunks) {
		if s.opener.Hang {
			<-ctx.Done()
			return transport.Chunk{}, transport.ErrCancelled
		}
		if s.opener.Err != nil {
			return transport.Chunk{}, s.opener.Err
		}
		return transport.Chunk{}, io.EOF
	}

	if s.opener.Gate != nil {
		select {
		case <-s.opener.Gate:
		case <-ctx.Done():
			return transport.Chunk{}, transport.ErrCancelled
		}
	}

	s.mu.Lock()
	s.next++
	s.mu.Unlock()

	data := append([]byte(nil), s.opener.Chunks[i]...)
	return transport.Chunk{Seq: uint64(i + 1), Data: data}, nil
}

// Close marks the stream closed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Delivered returns how many chunks have been handed out.
func (s *Stream) Delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
