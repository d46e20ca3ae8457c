package relay

import (
	"context"
	"net/http"

	"github.com/papercomputeco/trickle/pkg/llm"
)

// Emit receives one generated token. A non-nil error stops generation.
type Emit func(token string) error

// Generator produces the tokens of a chat completion in order. Generate
// returns when the completion is done, ctx is cancelled, or emit fails.
type Generator interface {
	Generate(ctx context.Context, req *llm.ChatRequest, hdr http.Header, emit Emit) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req *llm.ChatRequest, hdr http.Header, emit Emit) error

func (f GeneratorFunc) Generate(ctx context.Context, req *llm.ChatRequest, hdr http.Header, emit Emit) error {
	return f(ctx, req, hdr, emit)
}
