//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine wraps an in-process go-llama.cpp model.
type llamaEngine struct {
	model   *llama.LLama
	threads int
}

// New loads the GGUF model at modelPath into memory. This is the expensive
// call; it is made exactly once per process by the manager.
func New(modelPath string, cfg Config) (Engine, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(cfg.CtxSize),
		llama.SetGPULayers(cfg.GPULayers),
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaEngine{model: m, threads: cfg.Threads}, nil
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if e.model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Token callback only used to observe cancellation mid-generation.
	e.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	defer e.model.SetTokenCallback(nil)
	text, err := e.model.Predict(prompt, e.predictOptions(p)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (e *llamaEngine) GenerateStream(ctx context.Context, prompt string, p Params, onToken func(string) error) error {
	if e.model == nil {
		return errors.New("llama model not initialized")
	}
	var tokenErr error
	e.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if err := onToken(tok); err != nil {
			tokenErr = err
			return false
		}
		return true
	})
	defer e.model.SetTokenCallback(nil)
	if _, err := e.model.Predict(prompt, e.predictOptions(p)...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return tokenErr
}

func (e *llamaEngine) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

func (e *llamaEngine) predictOptions(p Params) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, p.MaxTokens)),
		llama.SetThreads(max(1, e.threads)),
		llama.SetTemperature(float32(p.Temperature)),
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}
