// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"encoding/json"
)

// GenerativeModel produces text from a prompt.
//
// Implementations:
//   - Gemini (generateContent)
//   - OpenAI-compatible chat completions
//   - Ollama (local models)
//
// Adapters report non-success HTTP responses as *domain.APIError so callers
// can tell overload (503) from other failures.
type GenerativeModel interface {
	// Generate returns the raw text of the model's reply.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the name of the default model.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest is one model call.
type GenerateRequest struct {
	// Model overrides the adapter's default model when set.
	Model string

	// Prompt is the full user prompt.
	Prompt string

	Config GenerationConfig
}

// GenerationConfig configures one generation.
type GenerationConfig struct {
	// ResponseMIMEType requests a response format, e.g. "application/json".
	ResponseMIMEType string

	// ResponseSchema is a JSON Schema constraining the reply.
	ResponseSchema json.RawMessage

	// SchemaName names the schema where the provider requires it.
	SchemaName string

	// Temperature controls randomness. Nil leaves the provider default.
	Temperature *float64

	// MaxTokens caps the reply length. Zero leaves the provider default.
	MaxTokens int
}

// WantsJSON reports whether the request asks for a JSON reply.
func (c GenerationConfig) WantsJSON() bool {
	return c.ResponseMIMEType == "application/json" || len(c.ResponseSchema) > 0
}
