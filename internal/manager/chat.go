package manager

import (
	"context"
	"strings"

	"chatd/internal/engine"
	"chatd/pkg/types"
)

// stopSequences keeps generation from running into the next synthetic user
// turn. Fixed for every request.
var stopSequences = []string{"User:", "\nUser"}

// BuildPrompt renders the fixed prompt for one message. Deliberately plain:
// no model-specific chat template, no system prompt, no truncation.
func BuildPrompt(message string) string {
	return "User: " + message + "\nAssistant: "
}

// Chat runs one synchronous generation and returns the reply with surrounding
// whitespace trimmed. The engine is never invoked unless status is Ready.
func (m *Manager) Chat(ctx context.Context, req types.ChatRequest) (string, error) {
	if s := m.Status(); s != StatusReady {
		return "", ErrModelNotLoaded(s)
	}
	release, err := m.beginGeneration(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	text, err := m.eng.Generate(ctx, BuildPrompt(req.Message), paramsFor(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ChatStream runs one streaming generation, invoking onToken once per
// produced fragment in generation order. It returns nil when the sequence is
// exhausted normally and the engine's error otherwise; the caller owns the
// Done/Error terminal framing.
func (m *Manager) ChatStream(ctx context.Context, req types.ChatRequest, onToken func(string) error) error {
	if s := m.Status(); s != StatusReady {
		return ErrModelNotLoaded(s)
	}
	release, err := m.beginGeneration(ctx)
	if err != nil {
		return err
	}
	defer release()
	return m.eng.GenerateStream(ctx, BuildPrompt(req.Message), paramsFor(req), onToken)
}

// paramsFor applies request-parameter defaults and the fixed stop sequences.
func paramsFor(req types.ChatRequest) engine.Params {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temp := DefaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	return engine.Params{
		MaxTokens:   maxTokens,
		Temperature: temp,
		Stop:        append([]string(nil), stopSequences...),
	}
}
