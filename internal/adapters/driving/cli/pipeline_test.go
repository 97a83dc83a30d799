package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/logger"
)

func sampleInsights() *domain.KeyInsights {
	return &domain.KeyInsights{
		Summary: "Die Anhörung drehte sich um das Budget.",
		Insights: []domain.Insight{
			{Title: "Budget", Description: "Zwei Millionen wurden genannt.", References: []int{1}, RawReferences: "1"},
		},
	}
}

func TestAnalyze(t *testing.T) {
	var got driving.AnalyzeOptions
	mock := runsMock()
	mock.Report = &domain.AnalysisReport{Entries: make([]domain.Entry, 1), Analyzed: 1, Batches: 1, Unexpected: []int{9}}
	mock.AnalyzeFn = func(opts driving.AnalyzeOptions) { got = opts }
	withServices(t, Services{Runs: mock})

	stdout, stderr, err := executeCommand(t, "", "analyze", "run-1", "--concurrency", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Concurrency)
	assert.Contains(t, stdout, "Analysis complete: 1 entries analysed in 1 batches")
	assert.Contains(t, stdout, "Ignored unknown entry ids: [9]")
	assert.Contains(t, stderr, "Analyzing... 1/1 chunks complete")
}

func TestAnalyze_Cancelled(t *testing.T) {
	mock := runsMock()
	mock.Report = &domain.AnalysisReport{Entries: make([]domain.Entry, 2), Analyzed: 1, Unmatched: 1, Batches: 1, Cancelled: true}
	mock.Err = context.Canceled
	withServices(t, Services{Runs: mock})

	stdout, _, err := executeCommand(t, "", "analyze", "run-1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, stdout, "Analysis cancelled")
	assert.Contains(t, stdout, "1 entries received no analysis")
}

func TestInsights(t *testing.T) {
	mock := runsMock()
	mock.InsightsV = sampleInsights()
	withServices(t, Services{Runs: mock})

	stdout, _, err := executeCommand(t, "", "insights", "run-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "## Summary")
	assert.Contains(t, stdout, "### 1. Budget")
	assert.Contains(t, stdout, "References: 1")
}

func TestInsights_Show(t *testing.T) {
	t.Run("stored insights", func(t *testing.T) {
		mock := runsMock()
		mock.Runs["run-1"].Insights = sampleInsights()
		withServices(t, Services{Runs: mock})

		stdout, _, err := executeCommand(t, "", "insights", "run-1", "--show")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Die Anhörung drehte sich um das Budget.")
	})

	t.Run("none stored", func(t *testing.T) {
		withServices(t, Services{Runs: runsMock()})

		_, _, err := executeCommand(t, "", "insights", "run-1", "--show")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no insights yet")
	})
}

func TestInsights_InsufficientData(t *testing.T) {
	mock := runsMock()
	mock.InsightsE = domain.ErrInsufficientData
	withServices(t, Services{Runs: mock})

	_, _, err := executeCommand(t, "", "insights", "run-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestPipeline(t *testing.T) {
	mock := &MockRunService{
		ParseRun:  sampleRun(),
		Report:    &domain.AnalysisReport{Entries: make([]domain.Entry, 1), Analyzed: 1, Batches: 1},
		InsightsV: sampleInsights(),
	}
	withServices(t, Services{Runs: mock})

	stdout, _, err := executeCommand(t, "", "pipeline", writeProtocol(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run run-1 (WP80): completed")
	assert.Contains(t, stdout, "Analysis complete")
	assert.Contains(t, stdout, "### 1. Budget")
}

func TestPipeline_VerboseLogsStageHeaders(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})

	mock := &MockRunService{
		ParseRun:  sampleRun(),
		Report:    &domain.AnalysisReport{Entries: make([]domain.Entry, 1), Analyzed: 1, Batches: 1},
		InsightsV: sampleInsights(),
	}
	withServices(t, Services{Runs: mock})

	_, _, err := executeCommand(t, "", "pipeline", "--verbose", writeProtocol(t))
	require.NoError(t, err)
	for _, stage := range []string{"=== Parse ===", "=== Analyze ===", "=== Insights ==="} {
		assert.Contains(t, logs.String(), stage)
	}
}

func TestPipeline_SkipsInsightsWithTooFewEntries(t *testing.T) {
	mock := &MockRunService{
		ParseRun:  sampleRun(),
		Report:    &domain.AnalysisReport{Entries: make([]domain.Entry, 1), Analyzed: 1, Batches: 1},
		InsightsE: domain.ErrInsufficientData,
	}
	withServices(t, Services{Runs: mock})

	stdout, stderr, err := executeCommand(t, "", "pipeline", writeProtocol(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Analysis complete")
	assert.NotContains(t, stdout, "## Summary")
	assert.Contains(t, stderr, "Skipping insights.")
}

func TestPipeline_InsightsFailure(t *testing.T) {
	mock := &MockRunService{
		ParseRun:  sampleRun(),
		Report:    &domain.AnalysisReport{Entries: make([]domain.Entry, 1), Analyzed: 1, Batches: 1},
		InsightsE: domain.ErrInvalidAIOutput,
	}
	withServices(t, Services{Runs: mock})

	_, _, err := executeCommand(t, "", "pipeline", writeProtocol(t))
	assert.ErrorIs(t, err, domain.ErrInvalidAIOutput)
}

func TestPipeline_StopsOnAbortedParse(t *testing.T) {
	run := sampleRun()
	run.State = domain.RunStateAborted
	mock := &MockRunService{ParseRun: run, ParseErr: domain.ErrRunAborted}
	var analysed bool
	mock.AnalyzeFn = func(driving.AnalyzeOptions) { analysed = true }
	withServices(t, Services{Runs: mock})

	stdout, _, err := executeCommand(t, "", "pipeline", writeProtocol(t))
	require.ErrorIs(t, err, domain.ErrRunAborted)
	assert.False(t, analysed)
	assert.Contains(t, stdout, "aborted")
}
