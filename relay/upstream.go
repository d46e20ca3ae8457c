package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/trickle/pkg/llm"
	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/sse"
	"github.com/papercomputeco/trickle/pkg/utils"
)

const completionsPath = "/v1/chat/completions"

// UpstreamGenerator streams tokens from an OpenAI-compatible
// chat completions endpoint.
type UpstreamGenerator struct {
	baseURL    string
	httpClient *http.Client
	dump       io.Writer
	logger     *slog.Logger
}

// UpstreamOption configures an UpstreamGenerator.
type UpstreamOption func(*UpstreamGenerator)

// WithDump copies every raw upstream byte to w.
func WithDump(w io.Writer) UpstreamOption {
	return func(g *UpstreamGenerator) {
		g.dump = w
	}
}

// WithUpstreamLogger sets the logger.
func WithUpstreamLogger(l *slog.Logger) UpstreamOption {
	return func(g *UpstreamGenerator) {
		g.logger = l
	}
}

// WithUpstreamClient replaces the HTTP client.
func WithUpstreamClient(c *http.Client) UpstreamOption {
	return func(g *UpstreamGenerator) {
		g.httpClient = c
	}
}

// NewUpstreamGenerator returns a generator for baseURL, e.g.
// "http://localhost:11434" or "https://api.openai.com".
func NewUpstreamGenerator(baseURL string, opts ...UpstreamOption) *UpstreamGenerator {
	g := &UpstreamGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// LLM requests can be slow, especially with thinking blocks
			Timeout: 5 * time.Minute,
		},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *UpstreamGenerator) Generate(ctx context.Context, req *llm.ChatRequest, hdr http.Header, emit Emit) error {
	upstreamReq := *req
	stream := true
	upstreamReq.Stream = &stream

	body, err := json.Marshal(&upstreamReq)
	if err != nil {
		return fmt.Errorf("marshaling upstream request: %w", err)
	}

	url := g.baseURL + completionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating upstream request: %w", err)
	}
	for k, v := range hdr {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	g.logger.Debug("forwarding streaming request to upstream",
		"url", url,
		"model", req.Model,
	)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %s: %s", resp.Status, utils.Truncate(strings.TrimSpace(string(excerpt)), 200))
	}

	tr := sse.NewTeeReader(resp.Body, g.dump)
	for {
		ev, err := tr.Next()
		if err != nil {
			return fmt.Errorf("reading upstream stream: %w", err)
		}
		if ev == nil {
			return nil
		}

		if ev.Data == sse.Sentinel {
			return nil
		}

		chunk, err := llm.ParseStreamChunk([]byte(ev.Data))
		if err != nil {
			g.logger.Warn("skipping malformed upstream chunk", "error", err)
			continue
		}

		if text := chunk.Text(); text != "" {
			if err := emit(text); err != nil {
				return err
			}
		}
		if chunk.Finished() {
			return nil
		}
	}
}
