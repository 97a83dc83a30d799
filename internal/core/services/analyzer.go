package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/core/schema"
	"github.com/custodia-labs/protokoll/internal/logger"
	"github.com/custodia-labs/protokoll/internal/postprocessors/chunker"
)

// Verify interface compliance.
var _ driving.EntryAnalyzer = (*EntryAnalyzer)(nil)

// BatchError reports the analysis batch that failed.
type BatchError struct {
	// Index is the zero-based batch index.
	Index int
	Err   error
}

// Error implements error.
func (e *BatchError) Error() string {
	return fmt.Sprintf("analysis batch %d failed: %v", e.Index+1, e.Err)
}

// Unwrap returns the underlying error.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// analysisItem is one enrichment as the model returns it.
type analysisItem struct {
	ID            int    `json:"id"`
	CoreStatement string `json:"coreStatement"`
	CategoryTags  string `json:"categoryTags"`
	Justification string `json:"justification"`
}

// batchResult is the outcome of one batch task.
type batchResult struct {
	dispatched  bool
	enrichments []domain.Enrichment
}

// EntryAnalyzer enriches Q/A entries against the knowledge corpus.
type EntryAnalyzer struct {
	corrector   *StructuredCorrector
	prompts     driven.PromptStore
	index       *CorpusIndex
	chunker     *chunker.Processor
	modelID     string
	concurrency int
	topK        int
	log         logger.Scoped
}

// NewEntryAnalyzer creates an analyzer. Batching, concurrency and top-K
// come from settings.
func NewEntryAnalyzer(
	corrector *StructuredCorrector,
	prompts driven.PromptStore,
	index *CorpusIndex,
	modelID string,
	settings domain.PipelineSettings,
) *EntryAnalyzer {
	settings = settings.Normalised()
	return &EntryAnalyzer{
		corrector:   corrector,
		prompts:     prompts,
		index:       index,
		chunker:     chunker.FromSettings(settings),
		modelID:     modelID,
		concurrency: settings.AnalysisConcurrency,
		topK:        settings.TopK,
		log:         logger.For("analyzer"),
	}
}

// Analyze enriches every question/answer pair in entries.
//
// The report's entries always match the input in length and order; notes
// and incomplete exchanges pass through unchanged. A failing batch aborts
// the pass with a *BatchError. Cancelling ctx stops dispatching new
// batches; batches already running finish, and the partial merge is
// returned with Cancelled set alongside domain.ErrRunAborted.
func (a *EntryAnalyzer) Analyze(
	ctx context.Context, entries []domain.Entry, opts driving.AnalyzeOptions,
) (*domain.AnalysisReport, error) {
	report := &domain.AnalysisReport{Entries: domain.CloneEntries(entries)}
	if report.Entries == nil {
		report.Entries = []domain.Entry{}
	}

	var eligible []domain.Entry
	for _, e := range entries {
		if e.IsPair() {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		a.log.Info("no question/answer pairs to analyse")
		return report, nil
	}

	batches := a.chunker.GroupEntries(eligible)
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = a.concurrency
	}
	a.log.Info("analysing %d entries in %d batches (concurrency %d)", len(eligible), len(batches), concurrency)

	// Progress counts only batches that reached the model.
	var (
		progMu sync.Mutex
		done   int
	)
	reportBatch := func() {
		if opts.OnProgress == nil {
			return
		}
		progMu.Lock()
		defer progMu.Unlock()
		done++
		opts.OnProgress(domain.Progress{Completed: done, Total: len(batches)})
	}

	// The pool runs detached from ctx so that running batches complete;
	// each task checks ctx before it starts.
	results, err := RunBounded(context.WithoutCancel(ctx), batches,
		func(taskCtx context.Context, batch []domain.Entry, i int) (batchResult, error) {
			if ctx.Err() != nil {
				return batchResult{}, nil
			}
			enrichments, err := a.analyzeBatch(taskCtx, batch)
			if err != nil {
				return batchResult{}, &BatchError{Index: i, Err: err}
			}
			reportBatch()
			return batchResult{dispatched: true, enrichments: enrichments}, nil
		}, concurrency, nil)
	if err != nil {
		a.log.Error("analysis failed: %v", err)
		return nil, err
	}

	a.merge(report, batches, results)

	if cause := ctx.Err(); cause != nil {
		report.Cancelled = true
		a.log.Warn("analysis cancelled after %d of %d batches", report.Batches, len(batches))
		return report, fmt.Errorf("%w after %d of %d batches: %w", domain.ErrRunAborted, report.Batches, len(batches), cause)
	}

	a.log.Info("analysed %d entries, %d unmatched, %d unexpected ids",
		report.Analyzed, report.Unmatched, len(report.Unexpected))
	return report, nil
}

// merge applies enrichment by id and fills the report counters.
func (a *EntryAnalyzer) merge(report *domain.AnalysisReport, batches [][]domain.Entry, results []batchResult) {
	expected := make(map[int]bool)
	byID := make(map[int]domain.Enrichment)
	seenUnexpected := make(map[int]bool)

	for i, res := range results {
		if !res.dispatched {
			continue
		}
		report.Batches++
		for _, e := range batches[i] {
			expected[e.ID] = true
		}
	}

	for _, res := range results {
		for _, en := range res.enrichments {
			if !expected[en.ID] {
				if !seenUnexpected[en.ID] {
					seenUnexpected[en.ID] = true
					report.Unexpected = append(report.Unexpected, en.ID)
				}
				continue
			}
			if _, dup := byID[en.ID]; !dup {
				byID[en.ID] = en
			}
		}
	}

	for i, e := range report.Entries {
		if en, ok := byID[e.ID]; ok {
			report.Entries[i] = e.Apply(en)
			report.Analyzed++
		}
	}
	report.Unmatched = len(expected) - len(byID)
}

func (a *EntryAnalyzer) analyzeBatch(ctx context.Context, batch []domain.Entry) ([]domain.Enrichment, error) {
	items, err := a.index.Retrieve(ctx, batchQuery(batch), a.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve corpus context: %w", err)
	}

	prompt, err := renderPrompt(a.prompts, driven.PromptAnalyzeBatch, struct {
		Corpus        string
		Entries       string
		NotApplicable string
	}{
		Corpus:        FormatCorpusContext(items),
		Entries:       formatBatchEntries(batch),
		NotApplicable: domain.CategoryNotApplicable,
	})
	if err != nil {
		return nil, err
	}

	value, err := a.corrector.InvokeStructured(ctx, a.modelID, prompt, schema.Analysis)
	if err != nil {
		return nil, err
	}
	if obj, ok := value.(map[string]any); ok {
		value = []any{obj}
	}
	if err := schema.Analysis.Validate(value); err != nil {
		return nil, err
	}

	var raw []analysisItem
	if err := decodeInto(value, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Enrichment, len(raw))
	for i, r := range raw {
		out[i] = domain.Enrichment{
			ID:            r.ID,
			CoreStatement: strings.TrimSpace(r.CoreStatement),
			CategoryTags:  strings.TrimSpace(r.CategoryTags),
			Justification: strings.TrimSpace(r.Justification),
		}
	}
	return out, nil
}

// batchQuery is the text embedded to retrieve corpus context for a batch.
func batchQuery(batch []domain.Entry) string {
	var b strings.Builder
	for _, e := range batch {
		fmt.Fprintf(&b, "Frage: %s\nAntwort: %s\n",
			domain.Deref(e.Question, "N/A"), domain.Deref(e.Answer, "N/A"))
	}
	return b.String()
}

func formatBatchEntries(batch []domain.Entry) string {
	var b strings.Builder
	for _, e := range batch {
		fmt.Fprintf(&b, "---\nid: %d\nFragesteller: %s\nFrage: %s\nZeuge: %s\nAntwort: %s\n",
			e.ID,
			domain.Deref(e.Questioner, "N/A"),
			domain.Deref(e.Question, "N/A"),
			domain.Deref(e.Witness, "N/A"),
			domain.Deref(e.Answer, "N/A"))
	}
	b.WriteString("---")
	return b.String()
}
