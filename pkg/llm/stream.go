package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StreamChunk is one "chat.completion.chunk" object as sent by
// OpenAI-compatible providers inside an SSE data frame.
type StreamChunk struct {
	ID      string         `json:"id,omitempty"`
	Object  string         `json:"object,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice carries the incremental delta for one completion.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason,omitempty"`
}

// StreamDelta is the partial message of a chunk.
type StreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ParseStreamChunk decodes one data payload.
func ParseStreamChunk(data []byte) (*StreamChunk, error) {
	var chunk StreamChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("decoding stream chunk: %w", err)
	}
	return &chunk, nil
}

// Text concatenates the delta content of every choice.
func (c *StreamChunk) Text() string {
	if len(c.Choices) == 1 {
		return c.Choices[0].Delta.Content
	}
	var b strings.Builder
	for _, choice := range c.Choices {
		b.WriteString(choice.Delta.Content)
	}
	return b.String()
}

// Finished reports whether any choice carries a finish reason.
func (c *StreamChunk) Finished() bool {
	for _, choice := range c.Choices {
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			return true
		}
	}
	return false
}
