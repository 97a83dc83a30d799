package driven

import "context"

// EmbedTask tells the provider how the embedding will be used.
// Providers without task types ignore it.
type EmbedTask string

// Embedding tasks.
const (
	// EmbedTaskDocument embeds text that will be searched.
	EmbedTaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"

	// EmbedTaskQuery embeds a search query.
	EmbedTaskQuery EmbedTask = "RETRIEVAL_QUERY"
)

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, corpus retrieval is disabled and
// analysis prompts carry the whole corpus.
//
// Implementations may include:
//   - Gemini (text-embedding-004)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
