package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/trickle/pkg/llm"
	"github.com/papercomputeco/trickle/pkg/sse"
	"github.com/papercomputeco/trickle/relay/header"
)

// producer writes the events of one stream.
type producer func(ctx context.Context, w *sse.Writer) error

// handleFlux streams the completion grouped into small words, each event
// tagged with an id and the "message" type.
func (s *Server) handleFlux(c *fiber.Ctx) error {
	req, err := llm.ParseChatRequest(c.Body())
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	hdr := header.Forward(c)

	return s.stream(c, "flux", func(ctx context.Context, w *sse.Writer) error {
		words := NewWordBuffer(s.config.WordLimit)

		err := s.config.Generator.Generate(ctx, req, hdr, func(token string) error {
			word, ok := words.Add(token)
			if !ok {
				return nil
			}
			return send(w, messageEvent(word))
		})
		if err != nil {
			return err
		}

		if rest, ok := words.Flush(); ok {
			return send(w, messageEvent(rest))
		}
		return nil
	})
}

// handleTestFlux streams one bare data frame per generated token.
func (s *Server) handleTestFlux(c *fiber.Ctx) error {
	req, err := llm.ParseChatRequest(c.Body())
	if errors.Is(err, llm.ErrEmptyPrompt) {
		req = llm.NewChatRequest("gpt-4", defaultTestPrompt, 0.7)
	} else if err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	hdr := header.Forward(c)

	return s.stream(c, "test-flux", func(ctx context.Context, w *sse.Writer) error {
		return s.config.Generator.Generate(ctx, req, hdr, func(token string) error {
			if token == "" {
				return nil
			}
			return send(w, sse.Event{Data: token})
		})
	})
}

// handleTicker streams count numbered messages, one per interval.
func (s *Server) handleTicker(c *fiber.Ctx) error {
	count := c.QueryInt("count", defaultTickerCount)
	if count < 1 || count > maxTickerCount {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("count must be between 1 and %d", maxTickerCount))
	}

	interval := defaultTickerInterval
	if raw := c.Query("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid interval: %w", err))
		}
		if d < minTickerInterval {
			return fail(c, fiber.StatusBadRequest, fmt.Errorf("interval must be at least %s", minTickerInterval))
		}
		interval = d
	}

	return s.stream(c, "ticker", func(ctx context.Context, w *sse.Writer) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 1; i <= count; i++ {
			if err := send(w, sse.Event{Data: "Message #" + strconv.Itoa(i)}); err != nil {
				return err
			}
			if i == count {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		return nil
	})
}

// stream answers c with a chunked text/event-stream body fed by produce.
//
// io.Pipe + SetBodyStream gives per-chunk flushing: pw.Write blocks until
// fasthttp's chunked body writer has read the bytes and pushed them to the
// socket. When the client goes away fasthttp closes the reader and the next
// write fails, which stops the producer.
func (s *Server) stream(c *fiber.Ctx, route string, produce producer) error {
	sessionID := c.Get(header.SessionIDHeader)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	pr, pw := io.Pipe()

	// The fiber context is recycled when the handler returns, so the
	// producer runs on the server's own context.
	ctx, cancel := context.WithCancel(s.ctx)

	vars.Add(varStreamsStarted, 1)
	vars.Add(varStreamsActive, 1)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer cancel()
		defer vars.Add(varStreamsActive, -1)

		start := time.Now()
		w := sse.NewWriter(pw)

		err := produce(ctx, w)
		if err == nil && s.config.Sentinel {
			err = w.WriteDone()
		}

		switch {
		case err == nil:
			vars.Add(varStreamsCompleted, 1)
			s.logger.Debug("stream completed",
				"route", route,
				"session_id", sessionID,
				"duration", time.Since(start),
			)
			pw.Close()
		case errors.Is(err, io.ErrClosedPipe) || errors.Is(err, context.Canceled):
			vars.Add(varStreamsCompleted, 1)
			s.logger.Debug("stream closed early",
				"route", route,
				"session_id", sessionID,
			)
			pw.Close()
		default:
			vars.Add(varStreamsFailed, 1)
			s.logger.Error("stream failed",
				"route", route,
				"session_id", sessionID,
				"error", err,
			)
			// Truncate the response so the client sees a broken stream
			// rather than a clean end.
			pw.CloseWithError(err)
		}
	}()

	// Unknown size (-1) selects chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// messageEvent wraps one flux word in a typed event with a fresh id.
func messageEvent(data string) sse.Event {
	return sse.Event{ID: uuid.NewString(), Type: "message", Data: data}
}

func send(w *sse.Writer, ev sse.Event) error {
	if err := w.WriteEvent(ev); err != nil {
		return err
	}
	vars.Add(varEventsSent, 1)
	return nil
}
