package driving

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// RunService drives the pipeline against stored runs.
type RunService interface {
	// Parse assembles a timeline from fullText and stores the run,
	// including partial runs that were aborted.
	Parse(ctx context.Context, fullText string, opts ParseOptions) (*domain.Run, error)

	// Analyze enriches the entries of a stored run and saves the result.
	Analyze(ctx context.Context, runID string, opts AnalyzeOptions) (*domain.AnalysisReport, error)

	// Insights synthesises key insights for a stored run and saves them.
	Insights(ctx context.Context, runID string) (*domain.KeyInsights, error)

	// Get returns a stored run.
	Get(ctx context.Context, runID string) (*domain.Run, error)

	// List returns summaries of all runs.
	List(ctx context.Context) ([]domain.RunSummary, error)

	// Delete removes a run.
	Delete(ctx context.Context, runID string) error

	// Reset removes all runs.
	Reset(ctx context.Context) error
}

// CorpusService exposes the knowledge corpus.
type CorpusService interface {
	// Items returns the corpus.
	Items(ctx context.Context) ([]domain.CorpusItem, error)

	// Path returns where the corpus is read from.
	Path() string
}
