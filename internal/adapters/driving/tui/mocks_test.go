package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// MockRunService is a mock implementation of driving.RunService.
type MockRunService struct {
	Runs map[string]*domain.Run
	Err  error
}

func (m *MockRunService) Parse(_ context.Context, _ string, _ driving.ParseOptions) (*domain.Run, error) {
	return nil, m.Err
}

func (m *MockRunService) Analyze(_ context.Context, _ string, _ driving.AnalyzeOptions) (*domain.AnalysisReport, error) {
	return nil, m.Err
}

func (m *MockRunService) Insights(_ context.Context, _ string) (*domain.KeyInsights, error) {
	return nil, m.Err
}

func (m *MockRunService) Get(_ context.Context, id string) (*domain.Run, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	run, ok := m.Runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

func (m *MockRunService) List(_ context.Context) ([]domain.RunSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.RunSummary, 0, len(m.Runs))
	for _, r := range m.Runs {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (m *MockRunService) Delete(_ context.Context, _ string) error { return m.Err }

func (m *MockRunService) Reset(_ context.Context) error { return m.Err }

// FakeSender records messages sent to a program.
type FakeSender struct {
	Msgs []tea.Msg
}

func (f *FakeSender) Send(msg tea.Msg) {
	f.Msgs = append(f.Msgs, msg)
}

func sampleRun() *domain.Run {
	return &domain.Run{
		ID:         "run-1",
		ProtocolID: "WP80",
		Source:     "wp80.txt",
		State:      domain.RunStateCompleted,
		CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Entries: []domain.Entry{
			{
				ID: 1, SourceLocator: "WP80/01",
				Questioner: domain.StringPtr("Vorsitzender"), Question: domain.StringPtr("Wie hoch war das Budget?"),
				Witness: domain.StringPtr("Zeuge"), Answer: domain.StringPtr("Zwei Millionen."),
				CoreStatement: domain.StringPtr("Budget von zwei Millionen."), CategoryTags: domain.StringPtr("1a, 1b"),
			},
			{ID: 2, SourceLocator: "WP80/01", Note: domain.StringPtr("Unterbrechung der Sitzung")},
		},
		Insights: &domain.KeyInsights{
			Summary:  "Das Budget stand fest.",
			Insights: []domain.Insight{{Title: "Budget", Description: "Zwei Millionen.", RawReferences: "#1"}},
		},
	}
}
