package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// MockRunService implements driving.RunService for CLI tests.
type MockRunService struct {
	Runs      map[string]*domain.Run
	ParseRun  *domain.Run
	ParseErr  error
	Report    *domain.AnalysisReport
	AnalyzeFn func(opts driving.AnalyzeOptions)
	InsightsV *domain.KeyInsights
	InsightsE error
	Err       error

	ParsedText string
	ParseOpts  driving.ParseOptions
	Deleted    []string
	ResetCalls int
}

func (m *MockRunService) Parse(_ context.Context, text string, opts driving.ParseOptions) (*domain.Run, error) {
	m.ParsedText = text
	m.ParseOpts = opts
	if opts.OnProgress != nil && m.ParseRun != nil {
		opts.OnProgress(domain.RunProgress{Message: "Parsing chunk 1 of 1 (starting around page 1)", TotalChunks: 1, Run: *m.ParseRun})
	}
	if m.ParseRun != nil {
		if m.Runs == nil {
			m.Runs = map[string]*domain.Run{}
		}
		m.Runs[m.ParseRun.ID] = m.ParseRun
	}
	return m.ParseRun, m.ParseErr
}

func (m *MockRunService) Analyze(_ context.Context, _ string, opts driving.AnalyzeOptions) (*domain.AnalysisReport, error) {
	if m.AnalyzeFn != nil {
		m.AnalyzeFn(opts)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(domain.Progress{Completed: 1, Total: 1})
	}
	return m.Report, m.Err
}

func (m *MockRunService) Insights(_ context.Context, runID string) (*domain.KeyInsights, error) {
	if m.InsightsE != nil {
		return nil, m.InsightsE
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if run, ok := m.Runs[runID]; ok && m.InsightsV != nil {
		run.Insights = m.InsightsV
	}
	return m.InsightsV, nil
}

func (m *MockRunService) Get(_ context.Context, id string) (*domain.Run, error) {
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

func (m *MockRunService) Delete(_ context.Context, id string) error {
	if _, ok := m.Runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Runs, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockRunService) Reset(_ context.Context) error {
	m.ResetCalls++
	m.Runs = map[string]*domain.Run{}
	return nil
}

// MockSettingsService implements driving.SettingsService for CLI tests.
type MockSettingsService struct {
	Settings     domain.AppSettings
	ValidateErr  error
	LLMProvider  domain.AIProvider
	LLMModel     string
	LLMKey       string
	PipelineSet  *domain.PipelineSettings
	ValidatedLLM bool
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Save(s *domain.AppSettings) error {
	m.Settings = *s
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.Settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: key}
	return nil
}

func (m *MockSettingsService) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.LLMProvider, m.LLMModel, m.LLMKey = p, model, key
	m.Settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: key}
	return nil
}

func (m *MockSettingsService) SetPipeline(p domain.PipelineSettings) error {
	m.PipelineSet = &p
	m.Settings.Pipeline = p
	return nil
}

func (m *MockSettingsService) Validate() error { return m.ValidateErr }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *MockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *MockSettingsService) ValidateLLMConfig() error {
	m.ValidatedLLM = true
	return nil
}

// MockCorpusService implements driving.CorpusService for CLI tests.
type MockCorpusService struct {
	ItemList []domain.CorpusItem
	P        string
}

func (m *MockCorpusService) Items(_ context.Context) ([]domain.CorpusItem, error) {
	return m.ItemList, nil
}

func (m *MockCorpusService) Path() string { return m.P }

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// withServices installs services for one test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

func sampleRun() *domain.Run {
	return &domain.Run{
		ID:             "run-1",
		ProtocolID:     "WP80",
		Source:         "wp80.txt",
		State:          domain.RunStateCompleted,
		TotalPages:     2,
		PagesProcessed: 2,
		CreatedAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Entries: []domain.Entry{
			{
				ID: 1, SourceLocator: "WP80/01",
				Questioner: domain.StringPtr("Vorsitzender"), Question: domain.StringPtr("Wie hoch war das Budget?"),
				Witness: domain.StringPtr("Zeuge"), Answer: domain.StringPtr("Zwei Millionen."),
				CoreStatement: domain.StringPtr("Budget von zwei Millionen."), CategoryTags: domain.StringPtr("1a"),
			},
			{ID: 2, SourceLocator: "WP80/02", Note: domain.StringPtr("Unterbrechung der Sitzung")},
		},
	}
}
