package mcp

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs     map[string]*domain.Run
	parsed   *domain.Run
	report   *domain.AnalysisReport
	insights *domain.KeyInsights
	err      error

	lastParseText string
	lastParseOpts driving.ParseOptions
}

func (m *mockRunService) Parse(_ context.Context, text string, opts driving.ParseOptions) (*domain.Run, error) {
	m.lastParseText = text
	m.lastParseOpts = opts
	return m.parsed, m.err
}

func (m *mockRunService) Analyze(_ context.Context, _ string, _ driving.AnalyzeOptions) (*domain.AnalysisReport, error) {
	return m.report, m.err
}

func (m *mockRunService) Insights(_ context.Context, _ string) (*domain.KeyInsights, error) {
	return m.insights, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

func (m *mockRunService) List(_ context.Context) ([]domain.RunSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.RunSummary, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (m *mockRunService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRunService) Reset(_ context.Context) error {
	return m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	items []domain.CorpusItem
	err   error
}

func (m *mockCorpusService) Items(_ context.Context) ([]domain.CorpusItem, error) {
	return m.items, m.err
}

func (m *mockCorpusService) Path() string {
	return ""
}

func str(s string) *string {
	return &s
}

// sampleRun has one enriched Q/A pair, one note and one plain pair.
func sampleRun() *domain.Run {
	return &domain.Run{
		ID:         "run-1",
		ProtocolID: "WP80",
		State:      domain.RunStateCompleted,
		Entries: []domain.Entry{
			{
				ID: 1, SourceLocator: "WP80/01",
				Question: str("Wie hoch war das Budget?"), Answer: str("Zwei Millionen."),
				CoreStatement: str("Budget von zwei Millionen."), CategoryTags: str("1a, 1b"),
			},
			{ID: 2, SourceLocator: "WP80/01", Note: str("Unterbrechung der Sitzung")},
			{ID: 3, SourceLocator: "WP80/02", Question: str("Wer entschied?"), Answer: str("Der Vorstand.")},
		},
	}
}
