package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/postprocessors/chunker"
)

const twoPageProtocol = `Untersuchungsausschuss WP_80/6
==Start of OCR for page 1==
A: Q1? B: A1.
==End of OCR for page 1==
==Start of OCR for page 2==
(Applause) C: Q2? D: A2.
==End of OCR for page 2==
`

// pipelineModel answers every prompt of the pipeline by its kind.
func pipelineModel() *scriptedModel {
	return &scriptedModel{respond: func(req driven.GenerateRequest) (string, error) {
		switch req.Config.SchemaName {
		case "entries":
			switch {
			case strings.Contains(req.Prompt, "A: Q1?"):
				return `[{"questioner": "A", "question": "Q1?", "witness": "B", "answer": "A1."}]`, nil
			case strings.Contains(req.Prompt, "C: Q2?"):
				return `[{"note": "(Applause)"}, {"questioner": "C", "question": "Q2?", "witness": "D", "answer": "A2."}]`, nil
			}
			return `[]`, nil
		case "analysis":
			return enrichPrompt(req)
		case "insights":
			return threeInsights, nil
		}
		return "", &domain.APIError{StatusCode: 400, Message: "unexpected schema " + req.Config.SchemaName}
	}}
}

func newPipeline(t *testing.T, model driven.GenerativeModel) (*RunService, *memory.RunStore) {
	t.Helper()
	prompts := newTestPrompts(t)
	corrector := NewStructuredCorrector(fastInvoker(model), prompts)
	settings := domain.DefaultAppSettings().Pipeline

	store := memory.NewRunStore()
	svc := NewRunService(
		store,
		NewTimelineAssembler(NewEntryParser(corrector, prompts, ""), chunker.FromSettings(settings)),
		NewEntryAnalyzer(corrector, prompts, NewCorpusIndex(testCorpus(), nil), "", settings),
		NewInsightsSynthesizer(corrector, prompts, ""),
	)
	return svc, store
}

func TestRunService_EndToEnd(t *testing.T) {
	svc, store := newPipeline(t, pipelineModel())
	ctx := context.Background()

	run, err := svc.Parse(ctx, twoPageProtocol, driving.ParseOptions{Source: "wp80.txt"})
	require.NoError(t, err)

	require.Len(t, run.Entries, 3)
	first, second, third := run.Entries[0], run.Entries[1], run.Entries[2]

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Q1?", domain.Deref(first.Question, ""))
	assert.Equal(t, "A1.", domain.Deref(first.Answer, ""))
	assert.Equal(t, "WP80/01", first.SourceLocator)

	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "(Applause)", domain.Deref(second.Note, ""))
	assert.Equal(t, "WP80/02", second.SourceLocator)

	assert.Equal(t, 3, third.ID)
	assert.Equal(t, "Q2?", domain.Deref(third.Question, ""))
	assert.Equal(t, "WP80/02", third.SourceLocator)

	stored, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStateCompleted, stored.State)
	assert.Len(t, stored.Entries, 3)

	report, err := svc.Analyze(ctx, run.ID, driving.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Analyzed)

	stored, err = store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EnrichedCount())

	// Only two enriched pairs: insights need three.
	_, err = svc.Insights(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestRunService_InsightsStored(t *testing.T) {
	svc, store := newPipeline(t, pipelineModel())
	ctx := context.Background()

	run := &domain.Run{ID: "r1", ProtocolID: "WP80", State: domain.RunStateCompleted, Entries: []domain.Entry{
		enriched(pair(1, "A")), enriched(pair(2, "A")), enriched(pair(3, "A")),
	}}
	require.NoError(t, store.Save(ctx, run))

	insights, err := svc.Insights(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, insights.Insights, 3)

	stored, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, stored.Insights)
	assert.Equal(t, "Zusammenfassung.", stored.Insights.Summary)

	// Re-analysis invalidates insights.
	_, err = svc.Analyze(ctx, "r1", driving.AnalyzeOptions{})
	require.NoError(t, err)
	stored, err = store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, stored.Insights)
}

func TestRunService_AbortedRunIsStored(t *testing.T) {
	svc, store := newPipeline(t, pipelineModel())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run, err := svc.Parse(ctx, twoPageProtocol, driving.ParseOptions{
		OnProgress: func(p domain.RunProgress) {
			if len(p.Run.Entries) > 0 {
				cancel()
			}
		},
	})

	assert.ErrorIs(t, err, domain.ErrRunAborted)
	require.NotNil(t, run)

	stored, getErr := store.Get(context.Background(), run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.RunStateAborted, stored.State)
	assert.Len(t, stored.Entries, 1)
}

func TestRunService_FailedRunNotStored(t *testing.T) {
	svc, store := newPipeline(t, pipelineModel())

	_, err := svc.Parse(context.Background(), "kein Kennzeichen", driving.ParseOptions{})
	assert.ErrorIs(t, err, domain.ErrMissingProtocolID)

	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunService_UnknownRun(t *testing.T) {
	svc, _ := newPipeline(t, pipelineModel())

	_, err := svc.Analyze(context.Background(), "missing", driving.AnalyzeOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Insights(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), domain.ErrNotFound)
}

func TestRunService_WithoutModel(t *testing.T) {
	svc := NewRunService(memory.NewRunStore(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Parse(ctx, "x", driving.ParseOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.Analyze(ctx, "r", driving.AnalyzeOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	_, err = svc.Insights(ctx, "r")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRunService_ListDeleteReset(t *testing.T) {
	svc, store := newPipeline(t, pipelineModel())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Run{ID: "a", State: domain.RunStateCompleted}))
	require.NoError(t, store.Save(ctx, &domain.Run{ID: "b", State: domain.RunStateCompleted}))

	runs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	require.NoError(t, svc.Delete(ctx, "a"))
	_, err = svc.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Reset(ctx))
	runs, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCorpusService(t *testing.T) {
	svc := NewCorpusService(testCorpus())

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Empty(t, svc.Path())
}
