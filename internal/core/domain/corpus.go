package domain

import "fmt"

// CorpusItem is one finding of the knowledge corpus entries are
// categorised against.
type CorpusItem struct {
	// ID is the category code, e.g. "5f".
	ID string `toml:"id" json:"id"`

	// Category is the heading the finding belongs to.
	Category string `toml:"category" json:"category"`

	// Description states the finding.
	Description string `toml:"description" json:"description"`
}

// EmbeddingText is the text embedded for retrieval.
func (c CorpusItem) EmbeddingText() string {
	return fmt.Sprintf("%s: %s", c.Category, c.Description)
}

// ContextLine renders the item for inclusion in a prompt.
func (c CorpusItem) ContextLine() string {
	return fmt.Sprintf("- ID %s (%s): %s", c.ID, c.Category, c.Description)
}
