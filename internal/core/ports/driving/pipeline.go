package driving

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// TimelineAssembler turns a full OCR document into an ordered timeline.
type TimelineAssembler interface {
	// Start parses the document chunk by chunk and returns the run.
	// The run is returned alongside ErrRunAborted when ctx is cancelled.
	Start(ctx context.Context, fullText string, opts ParseOptions) (*domain.Run, error)
}

// ParseOptions configures one parsing run.
type ParseOptions struct {
	// ProtocolID overrides detection from the document header.
	ProtocolID string

	// PagesPerChunk overrides the configured chunk size.
	PagesPerChunk int

	// Source names the input, e.g. a file path.
	Source string

	// OnProgress receives a snapshot after every chunk.
	OnProgress func(domain.RunProgress)
}

// EntryAnalyzer enriches Q/A entries with core statements and categories.
type EntryAnalyzer interface {
	// Analyze returns all entries with enrichment merged in by ID.
	Analyze(ctx context.Context, entries []domain.Entry, opts AnalyzeOptions) (*domain.AnalysisReport, error)
}

// AnalyzeOptions configures one analysis pass.
type AnalyzeOptions struct {
	// Concurrency overrides the configured analysis concurrency.
	Concurrency int

	// OnProgress is called after every finished batch.
	OnProgress func(domain.Progress)
}

// InsightsSynthesizer derives key insights from analysed entries.
type InsightsSynthesizer interface {
	// Synthesize returns exactly three insights and a summary.
	Synthesize(ctx context.Context, entries []domain.Entry) (*domain.KeyInsights, error)
}
