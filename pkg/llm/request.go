// Package llm holds the wire types shared by the stream client and the relay:
// the chat request body and the OpenAI-style streaming chunk.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPrompt is returned by ParseChatRequest when no message carries text.
var ErrEmptyPrompt = errors.New("chat request has no message content")

// ChatRequest is the JSON body posted to a streaming chat endpoint.
type ChatRequest struct {
	// Model name (e.g., "gpt-4")
	Model string `json:"model"`

	Messages []Message `json:"messages"`

	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`

	// Stream is set when talking to upstream providers that only stream on
	// request. The relay endpoints always stream.
	Stream *bool `json:"stream,omitempty"`
}

// NewChatRequest returns a single-turn request for prompt.
func NewChatRequest(model, prompt string, temperature float64) *ChatRequest {
	return &ChatRequest{
		Model:       model,
		Messages:    []Message{NewUserMessage(prompt)},
		Temperature: &temperature,
	}
}

// WithMaxTokens sets max_tokens when n is positive and returns r.
func (r *ChatRequest) WithMaxTokens(n int) *ChatRequest {
	if n > 0 {
		r.MaxTokens = &n
	}
	return r
}

// WithTopP sets top_p when p is positive and returns r.
func (r *ChatRequest) WithTopP(p float64) *ChatRequest {
	if p > 0 {
		r.TopP = &p
	}
	return r
}

// LastUserText returns the content of the last user message, or "".
func (r *ChatRequest) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// ParseChatRequest decodes and validates a request body.
func ParseChatRequest(payload []byte) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decoding chat request: %w", err)
	}

	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) != "" {
			return &req, nil
		}
	}
	return nil, ErrEmptyPrompt
}
