// Package session runs one streaming chat request end to end.
//
// A Session opens the transport, feeds every raw chunk through the line
// buffer, the frame parser and the flush policy, and appends each formatted
// fragment to its emitted text. The read loop is a single goroutine that
// suspends only while waiting for the next chunk and while pacing output, so
// fragments are emitted in exactly the order their bytes arrived.
//
// Lifecycle:
//
//	Idle ──Start──▶ Connecting ──first chunk──▶ Streaming
//	                    │                          │
//	                    └──────────┬───────────────┘
//	                               ▼
//	               Completed | Aborted | Failed ──Clear──▶ Idle (new session id)
//
// Stop is cooperative: the loop observes it before its next read, drops any
// buffered text and ends Aborted with no error. Emitted text only ever grows
// while a session runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/flush"
	"github.com/papercomputeco/trickle/pkg/llm"
	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/sse"
	"github.com/papercomputeco/trickle/pkg/transport"
)

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	ID     string
	State  State
	Prompt string

	// Text is the emitted, formatted response so far.
	Text string

	// ChunkCount is the number of fragments appended to Text.
	ChunkCount int

	// TotalChars is the number of characters in Text.
	TotalChars int

	// FrameCount is the number of non-empty data frames received.
	FrameCount int

	LastError error

	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the time between start and end, or zero while running.
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Session is one stream session. Its methods are safe for concurrent use.
type Session struct {
	opener    transport.Opener
	cfg       Config
	logger    *slog.Logger
	publisher eventstream.Publisher
	observers []Observer

	subsMu sync.RWMutex
	subs   map[*subscription]struct{}

	mu            sync.Mutex
	id            string
	state         State
	prompt        string
	text          strings.Builder
	chunkCount    int
	totalChars    int
	frameCount    int
	lastErr       error
	startedAt     time.Time
	endedAt       time.Time
	stopRequested bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// New returns an Idle session that opens its streams with opener.
func New(opener transport.Opener, cfg Config, opts ...Option) *Session {
	if cfg.Strategy == "" {
		cfg.Strategy = flush.Eager
	}

	s := &Session{
		opener: opener,
		cfg:    cfg,
		logger: logger.Nop(),
		subs:   map[*subscription]struct{}{},
		id:     uuid.NewString(),
		state:  Idle,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the current session id. Clear assigns a new one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Start sends prompt and begins reading the response in the background.
// It fails with ErrInvalidState unless the session is Idle. Cancelling ctx
// aborts the session the same way Stop does.
func (s *Session) Start(ctx context.Context, prompt string) error {
	s.mu.Lock()
	if s.state != Idle {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, st)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.prompt = prompt
	s.resetCountersLocked()
	s.startedAt = time.Now()
	if err := s.transitionLocked(Connecting); err != nil {
		s.mu.Unlock()
		cancel()
		return err
	}
	done := s.done
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("session started",
		"session_id", snap.ID,
		"endpoint", s.cfg.Endpoint,
		"model", s.cfg.Model,
		"strategy", string(s.cfg.Strategy),
	)
	s.notify(Update{Snapshot: snap})
	s.publish(eventstream.EventTypeSessionStarted, snap)

	go s.run(runCtx, done, s.request(prompt))
	return nil
}

// Stop asks a running session to end. It has no effect on a session that is
// Idle or already finished.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Active() || s.stopRequested {
		return
	}
	s.stopRequested = true
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Debug("session stop requested", "session_id", s.id)
}

// Clear discards the output of a finished session and returns it to Idle
// under a new id. It fails with ErrInvalidState unless the session is in a
// terminal state.
func (s *Session) Clear() error {
	s.mu.Lock()
	if !s.state.Terminal() {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot clear while %s", ErrInvalidState, st)
	}

	old := s.id
	s.id = uuid.NewString()
	s.state = Idle
	s.prompt = ""
	s.resetCountersLocked()
	s.startedAt = time.Time{}
	s.cancel = nil
	s.done = make(chan struct{})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("session cleared", "previous_session_id", old, "session_id", snap.ID)
	s.notify(Update{Snapshot: snap})
	return nil
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Done returns a channel closed when the current run reaches a terminal
// state.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until the current run finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-s.Done():
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Subscribe returns a channel receiving every subsequent update and a
// function that unsubscribes and closes it. Updates that do not fit in
// the buffer are dropped.
func (s *Session) Subscribe(buffer int) (<-chan Update, func()) {
	sub := &subscription{ch: make(chan Update, buffer)}

	s.subsMu.Lock()
	s.subs[sub] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, sub)
			close(sub.ch)
			s.subsMu.Unlock()
		})
	}
}

func (s *Session) request(prompt string) *transport.Request {
	body := llm.NewChatRequest(s.cfg.Model, prompt+s.cfg.PromptSuffix, s.cfg.Temperature).
		WithMaxTokens(s.cfg.MaxTokens).
		WithTopP(s.cfg.TopP)

	header := s.cfg.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("X-Session-Id", s.ID())

	return &transport.Request{
		Method: http.MethodPost,
		URL:    s.cfg.Endpoint,
		Body:   body,
		Header: header,
	}
}

func (s *Session) run(ctx context.Context, done chan struct{}, req *transport.Request) {
	defer close(done)
	s.finish(s.loop(ctx, req))
}

// loop is the read loop. It returns nil when the stream completed, and the
// terminating error otherwise.
func (s *Session) loop(ctx context.Context, req *transport.Request) error {
	stream, err := s.opener.Open(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	lines := sse.NewLineBuffer()
	policy := flush.New(
		flush.WithStrategy(s.cfg.Strategy),
		flush.WithThreshold(s.cfg.Threshold),
	)

	for {
		if s.stopped() {
			return transport.ErrCancelled
		}

		chunk, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			rest, err := lines.Flush()
			if err != nil {
				return err
			}
			if _, err := s.consume(ctx, rest, policy); err != nil {
				return err
			}
			return s.finalFlush(ctx, policy)
		}
		if err != nil {
			return err
		}

		s.markStreaming()
		s.logger.Debug("chunk received", "session_id", req.Header.Get("X-Session-Id"), "seq", chunk.Seq, "bytes", len(chunk.Data))

		complete, decodeErr := lines.Feed(chunk.Data)
		sentinel, err := s.consume(ctx, complete, policy)
		if err != nil {
			return err
		}
		if sentinel {
			return s.finalFlush(ctx, policy)
		}
		if decodeErr != nil {
			return decodeErr
		}
	}
}

// consume parses complete lines and offers their payloads to the policy. It
// reports true when the sentinel frame was seen; lines after it are ignored.
func (s *Session) consume(ctx context.Context, lines []string, policy *flush.Policy) (bool, error) {
	for _, line := range lines {
		rec, ok := sse.ParseLine(line)
		if !ok {
			continue
		}
		if rec.Sentinel {
			return true, nil
		}
		if rec.Payload == "" {
			continue
		}

		s.mu.Lock()
		s.frameCount++
		s.mu.Unlock()

		if frag, ok := policy.Offer(rec.Payload); ok {
			if err := s.emit(ctx, frag, true); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (s *Session) finalFlush(ctx context.Context, policy *flush.Policy) error {
	if frag, ok := policy.Finish(); ok {
		return s.emit(ctx, frag, false)
	}
	return nil
}

// emit appends one fragment. Once Stop has been called nothing more is
// appended.
func (s *Session) emit(ctx context.Context, frag string, pace bool) error {
	s.mu.Lock()
	if s.stopRequested {
		s.mu.Unlock()
		return transport.ErrCancelled
	}
	s.text.WriteString(frag)
	s.chunkCount++
	s.totalChars += utf8.RuneCountInString(frag)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("fragment emitted",
		"session_id", snap.ID,
		"chunk_count", snap.ChunkCount,
		"total_chars", snap.TotalChars,
	)
	s.notify(Update{Fragment: frag, Snapshot: snap})

	if !pace || s.cfg.Pace <= 0 {
		return nil
	}
	t := time.NewTimer(s.cfg.Pace)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return transport.ErrCancelled
	}
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	var to State
	switch {
	case err == nil:
		to = Completed
	case s.stopRequested,
		errors.Is(err, transport.ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		to = Aborted
	default:
		to = Failed
		s.lastErr = err
	}

	if terr := s.transitionLocked(to); terr != nil {
		s.logger.Error("session transition rejected", "session_id", s.id, "error", terr)
	}
	s.endedAt = time.Now()
	if s.cancel != nil {
		s.cancel()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	attrs := []any{
		"session_id", snap.ID,
		"state", snap.State.String(),
		"chunk_count", snap.ChunkCount,
		"total_chars", snap.TotalChars,
		"frame_count", snap.FrameCount,
		"duration", snap.Duration(),
	}
	if snap.LastError != nil {
		s.logger.Error("session failed", append(attrs, "error", snap.LastError)...)
	} else {
		s.logger.Info("session finished", attrs...)
	}

	s.notify(Update{Snapshot: snap})
	s.publish(terminalEventType(snap.State), snap)
}

func (s *Session) markStreaming() {
	s.mu.Lock()
	if s.state != Connecting {
		s.mu.Unlock()
		return
	}
	_ = s.transitionLocked(Streaming)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Update{Snapshot: snap})
}

func (s *Session) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested
}

// transitionLocked is the only place state changes while a session runs.
func (s *Session) transitionLocked(to State) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
	}
	s.logger.Debug("session state", "session_id", s.id, "from", s.state.String(), "to", to.String())
	s.state = to
	return nil
}

func (s *Session) resetCountersLocked() {
	s.text.Reset()
	s.chunkCount = 0
	s.totalChars = 0
	s.frameCount = 0
	s.lastErr = nil
	s.endedAt = time.Time{}
	s.stopRequested = false
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         s.id,
		State:      s.state,
		Prompt:     s.prompt,
		Text:       s.text.String(),
		ChunkCount: s.chunkCount,
		TotalChars: s.totalChars,
		FrameCount: s.frameCount,
		LastError:  s.lastErr,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
	}
}

func (s *Session) notify(u Update) {
	for _, o := range s.observers {
		o.OnUpdate(u)
	}

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for sub := range s.subs {
		sub.OnUpdate(u)
	}
}

func (s *Session) publish(eventType string, snap Snapshot) {
	if s.publisher == nil {
		return
	}

	ev := eventstream.NewSessionEvent(eventType, snap.ID)
	ev.State = snap.State.String()
	ev.Endpoint = s.cfg.Endpoint
	ev.Model = s.cfg.Model
	ev.ChunkCount = snap.ChunkCount
	ev.TotalChars = snap.TotalChars
	ev.FrameCount = snap.FrameCount
	ev.DurationMs = snap.Duration().Milliseconds()
	if snap.LastError != nil {
		ev.Error = snap.LastError.Error()
	}

	if err := s.publisher.PublishSession(context.Background(), ev); err != nil {
		s.logger.Warn("session event not published", "session_id", snap.ID, "event_type", eventType, "error", err)
	}
}

func terminalEventType(st State) string {
	switch st {
	case Completed:
		return eventstream.EventTypeSessionCompleted
	case Aborted:
		return eventstream.EventTypeSessionAborted
	default:
		return eventstream.EventTypeSessionFailed
	}
}
