package driven

// PromptStore provides access to LLM prompt templates.
// Templates use text/template syntax; each prompt name documents its fields.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to the
	// built-in default when no override exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptParseEntries segments a chunk into entries.
	// Fields: .SourceLocator, .Text, .Schema.
	PromptParseEntries = "parse_entries"

	// PromptAnalyzeBatch analyses a batch of Q/A entries against the corpus.
	// Fields: .Corpus, .Entries, .NotApplicable.
	PromptAnalyzeBatch = "analyze_batch"

	// PromptKeyInsights synthesises the top insights of a run.
	// Fields: .Entries.
	PromptKeyInsights = "key_insights"

	// PromptRepairJSON asks the model to fix broken JSON.
	// Fields: .Broken, .Schema.
	PromptRepairJSON = "repair_json"
)

// AllPromptNames lists every well-known prompt.
func AllPromptNames() []string {
	return []string{PromptParseEntries, PromptAnalyzeBatch, PromptKeyInsights, PromptRepairJSON}
}
