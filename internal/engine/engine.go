package engine

import (
	"context"
	"errors"
)

// ErrNotBuilt is returned by New when the binary was compiled without the
// 'llama' build tag and no real runtime is available.
var ErrNotBuilt = errors.New("llama support not built (missing 'llama' build tag)")

// Params captures generation parameters for a single request.
type Params struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Config holds model-load configuration. The context window and GPU offload
// are fixed by the caller at load time; they do not vary per request.
type Config struct {
	CtxSize   int
	GPULayers int
	Threads   int
}

// Engine is the capability interface over one loaded model. Generate returns
// the full completion; GenerateStream invokes onToken for each produced
// fragment and returns once the sequence is exhausted or fails.
//
// Implementations are not required to be safe for parallel generation calls;
// the manager serializes access. Both methods must return promptly when ctx
// is canceled.
type Engine interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
	GenerateStream(ctx context.Context, prompt string, p Params, onToken func(string) error) error
	Close() error
}
