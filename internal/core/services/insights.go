package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/core/schema"
	"github.com/custodia-labs/protokoll/internal/logger"
)

// Verify interface compliance.
var _ driving.InsightsSynthesizer = (*InsightsSynthesizer)(nil)

var (
	hashReference  = regexp.MustCompile(`#\s*(\d+)`)
	plainReference = regexp.MustCompile(`\d+`)
)

type insightsReply struct {
	Summary  string `json:"summary"`
	Insights []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		References  string `json:"references"`
	} `json:"insights"`
}

// InsightsSynthesizer derives the summary and top insights of an analysed timeline.
type InsightsSynthesizer struct {
	corrector *StructuredCorrector
	prompts   driven.PromptStore
	modelID   string
	log       logger.Scoped
}

// NewInsightsSynthesizer creates a synthesizer.
func NewInsightsSynthesizer(corrector *StructuredCorrector, prompts driven.PromptStore, modelID string) *InsightsSynthesizer {
	return &InsightsSynthesizer{
		corrector: corrector,
		prompts:   prompts,
		modelID:   modelID,
		log:       logger.For("insights"),
	}
}

// Synthesize makes one model call over the enriched entries.
//
// Entries are numbered for the model from 1 over non-note entries, the
// numbering a reader sees in the timeline. References in the reply are
// mapped back to entry IDs.
func (s *InsightsSynthesizer) Synthesize(ctx context.Context, entries []domain.Entry) (*domain.KeyInsights, error) {
	displayToID := make(map[int]int)
	var b strings.Builder
	display := 0
	enriched := 0

	for _, e := range entries {
		if e.IsNote() {
			continue
		}
		display++
		if !e.IsEnriched() {
			continue
		}
		enriched++
		displayToID[display] = e.ID
		fmt.Fprintf(&b, "---\nEintrag #%d\nFundstelle: %s\nFrage: %s\nAntwort: %s\nKernaussage: %s\nKategorien: %s\nBegründung: %s\n",
			display,
			e.SourceLocator,
			domain.Deref(e.Question, "N/A"),
			domain.Deref(e.Answer, "N/A"),
			domain.Deref(e.CoreStatement, ""),
			domain.Deref(e.CategoryTags, ""),
			domain.Deref(e.Justification, ""))
	}

	if enriched < domain.MinEnrichedForInsights {
		return nil, fmt.Errorf("%w: %d analysed entries, need %d",
			domain.ErrInsufficientData, enriched, domain.MinEnrichedForInsights)
	}
	b.WriteString("---")

	prompt, err := renderPrompt(s.prompts, driven.PromptKeyInsights, struct{ Entries string }{Entries: b.String()})
	if err != nil {
		return nil, err
	}

	s.log.Info("synthesising insights from %d analysed entries", enriched)
	value, err := s.corrector.InvokeStructured(ctx, s.modelID, prompt, schema.Insights)
	if err != nil {
		return nil, fmt.Errorf("key insights: %w", err)
	}
	if err := schema.Insights.Validate(value); err != nil {
		return nil, fmt.Errorf("key insights: %w", err)
	}

	var reply insightsReply
	if err := decodeInto(value, &reply); err != nil {
		return nil, fmt.Errorf("key insights: %w", err)
	}

	out := &domain.KeyInsights{
		Summary:  strings.TrimSpace(reply.Summary),
		Insights: make([]domain.Insight, len(reply.Insights)),
	}
	for i, in := range reply.Insights {
		refs, unknown := resolveReferences(in.References, displayToID)
		if len(unknown) > 0 {
			s.log.Warn("insight %d references unknown entries %v", i+1, unknown)
		}
		out.Insights[i] = domain.Insight{
			Title:         strings.TrimSpace(in.Title),
			Description:   strings.TrimSpace(in.Description),
			References:    refs,
			RawReferences: strings.TrimSpace(in.References),
		}
	}
	return out, nil
}

// resolveReferences maps display numbers in raw ("#5, #12") to entry IDs,
// in order and without duplicates. Numbers without a '#' are accepted
// when raw contains none.
func resolveReferences(raw string, displayToID map[int]int) (ids, unknown []int) {
	var nums []string
	for _, m := range hashReference.FindAllStringSubmatch(raw, -1) {
		nums = append(nums, m[1])
	}
	if len(nums) == 0 {
		nums = plainReference.FindAllString(raw, -1)
	}

	ids = []int{}
	seen := make(map[int]bool)
	for _, s := range nums {
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		id, ok := displayToID[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, unknown
}
