package driven

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// CorpusSource supplies the knowledge corpus entries are categorised against.
type CorpusSource interface {
	// Items returns the corpus in its canonical order.
	Items(ctx context.Context) ([]domain.CorpusItem, error)

	// Path returns where the corpus is read from, or "" for the built-in one.
	Path() string
}
