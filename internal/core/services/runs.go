package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/logger"
)

// Verify interface compliance.
var _ driving.RunService = (*RunService)(nil)

// RunService runs the pipeline stages against stored runs.
// Stages that need a model are nil when no LLM is configured and
// report domain.ErrLLMUnavailable.
type RunService struct {
	store       driven.RunStore
	assembler   driving.TimelineAssembler
	analyzer    driving.EntryAnalyzer
	synthesizer driving.InsightsSynthesizer
	now         func() time.Time
	log         logger.Scoped
}

// NewRunService creates a run service.
func NewRunService(
	store driven.RunStore,
	assembler driving.TimelineAssembler,
	analyzer driving.EntryAnalyzer,
	synthesizer driving.InsightsSynthesizer,
) *RunService {
	return &RunService{
		store:       store,
		assembler:   assembler,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		now:         time.Now,
		log:         logger.For("runs"),
	}
}

// Parse assembles a timeline and stores the run. Aborted runs are stored
// with their partial entries; failed runs are not stored.
func (s *RunService) Parse(ctx context.Context, fullText string, opts driving.ParseOptions) (*domain.Run, error) {
	if s.assembler == nil {
		return nil, domain.ErrLLMUnavailable
	}

	run, err := s.assembler.Start(ctx, fullText, opts)
	if run == nil || (err != nil && !errors.Is(err, domain.ErrRunAborted)) {
		return run, err
	}

	if saveErr := s.store.Save(context.WithoutCancel(ctx), run); saveErr != nil {
		return run, errors.Join(err, fmt.Errorf("save run: %w", saveErr))
	}
	s.log.Info("stored run %s (%s, %d entries)", run.ID, run.State, len(run.Entries))
	return run, err
}

// Analyze enriches a stored run. Earlier insights are discarded since they
// no longer match the entries. A cancelled pass stores its partial merge.
func (s *RunService) Analyze(
	ctx context.Context, runID string, opts driving.AnalyzeOptions,
) (*domain.AnalysisReport, error) {
	if s.analyzer == nil {
		return nil, domain.ErrLLMUnavailable
	}

	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	report, err := s.analyzer.Analyze(ctx, run.Entries, opts)
	if report == nil {
		return nil, err
	}

	run.Entries = report.Entries
	run.Insights = nil
	run.UpdatedAt = s.now()
	if saveErr := s.store.Save(context.WithoutCancel(ctx), run); saveErr != nil {
		return report, errors.Join(err, fmt.Errorf("save run: %w", saveErr))
	}
	return report, err
}

// Insights synthesises key insights for a stored run and stores them.
func (s *RunService) Insights(ctx context.Context, runID string) (*domain.KeyInsights, error) {
	if s.synthesizer == nil {
		return nil, domain.ErrLLMUnavailable
	}

	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	insights, err := s.synthesizer.Synthesize(ctx, run.Entries)
	if err != nil {
		return nil, err
	}

	run.Insights = insights
	run.UpdatedAt = s.now()
	if err := s.store.Save(context.WithoutCancel(ctx), run); err != nil {
		return insights, fmt.Errorf("save run: %w", err)
	}
	return insights, nil
}

// Get returns a stored run.
func (s *RunService) Get(ctx context.Context, runID string) (*domain.Run, error) {
	return s.store.Get(ctx, runID)
}

// List returns summaries of all runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.RunSummary, error) {
	return s.store.List(ctx)
}

// Delete removes a run.
func (s *RunService) Delete(ctx context.Context, runID string) error {
	return s.store.Delete(ctx, runID)
}

// Reset removes all runs.
func (s *RunService) Reset(ctx context.Context) error {
	s.log.Warn("removing all stored runs")
	return s.store.Reset(ctx)
}
