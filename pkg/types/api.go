package types

// ChatRequest is the request payload for POST /chat.
type ChatRequest struct {
	// User message to answer. Required, must be non-empty.
	// example: Write a haiku about the ocean.
	Message string `json:"message" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens to generate. Defaults to 512 when omitted
	// or non-positive.
	// example: 512
	MaxTokens int `json:"max_tokens,omitempty" example:"512"`
	// Sampling temperature. Defaults to 0.7 when omitted; an explicit 0 is
	// honored, hence the pointer.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// ChatResponse is the non-streaming response for POST /chat.
type ChatResponse struct {
	// Generated reply with surrounding whitespace trimmed.
	Reply string `json:"reply"`
}

// StreamToken is one SSE data frame carrying a generated fragment.
type StreamToken struct {
	Token string `json:"token"`
}

// StreamError is the terminal SSE data frame of a failed stream.
type StreamError struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health. The transport status is always
// 200; model readiness is reported in the payload so orchestration tooling can
// tell "process alive" from "model ready".
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// True once the model finished loading successfully.
	ModelLoaded bool `json:"model_loaded"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: message is required
	Error string `json:"error" example:"message is required"`
	// HTTP status code.
	// example: 422
	Code int `json:"code" example:"422"`
}
