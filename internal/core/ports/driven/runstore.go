package driven

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// RunStore persists runs with their entries, warnings and insights.
type RunStore interface {
	// Save creates or replaces a run.
	Save(ctx context.Context, run *domain.Run) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// List returns summaries of all runs, newest first.
	List(ctx context.Context) ([]domain.RunSummary, error)

	// Delete removes a run.
	// Returns domain.ErrNotFound if the run does not exist.
	Delete(ctx context.Context, id string) error

	// Reset removes all runs.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
