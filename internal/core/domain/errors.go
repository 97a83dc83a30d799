package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingProtocolID indicates no protocol identifier (e.g. "WP_80/6")
	// could be located in the document and none was supplied.
	ErrMissingProtocolID = errors.New("protocol identifier not found")

	// ErrRunAborted indicates a run was cancelled before all work finished.
	// Partial results are preserved on the run.
	ErrRunAborted = errors.New("run aborted")

	// ErrInsufficientData indicates too few enriched entries exist to
	// compute key insights.
	ErrInsufficientData = errors.New("insufficient analysed data")

	// Model Errors.

	// ErrModelOverloaded indicates the model endpoint kept reporting overload
	// after all retry attempts were spent.
	ErrModelOverloaded = errors.New("model overloaded")

	// ErrModelRequest indicates a non-retryable failure calling the model.
	ErrModelRequest = errors.New("model request failed")

	// ErrEmptyResponse indicates the model returned no text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrInvalidAIOutput indicates the model produced JSON that could not be
	// parsed even after the single repair attempt.
	ErrInvalidAIOutput = errors.New("invalid AI output, correction failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Corpus retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// APIError is returned by model adapters when the endpoint answers with a
// non-success HTTP status.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the provider's error message.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Message)
}

// UserMessage maps pipeline errors onto the messages shown to users.
// Unknown errors fall back to their own text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrModelOverloaded):
		return "The AI model is currently overloaded. Please try again in a few moments."
	case errors.Is(err, ErrInvalidAIOutput):
		return "The AI model produced invalid output, and the automatic correction attempt also failed."
	case errors.Is(err, ErrMissingProtocolID):
		return "No protocol identifier (e.g. WP_80/6) was found near the top of the document. Pass --protocol-id to set one."
	case errors.Is(err, ErrInsufficientData):
		return "At least 3 analysed entries are required to generate key insights."
	case errors.Is(err, ErrLLMUnavailable):
		return "No LLM provider is configured. Run 'protokoll settings llm' first."
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "No embedding provider is configured. Run 'protokoll settings embedding' first."
	case errors.Is(err, ErrRunAborted):
		return "The run was cancelled; partial results were kept."
	default:
		return err.Error()
	}
}
