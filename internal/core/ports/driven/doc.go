// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - GenerativeModel: Turns prompts into text (Gemini, OpenAI, Ollama)
//   - PromptStore: Prompt templates
//   - ConfigStore: Application configuration
//   - RunStore: Run persistence
//   - CorpusSource: The knowledge corpus
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, analysis prompts carry the whole corpus
//     instead of the top-K retrieved items.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
