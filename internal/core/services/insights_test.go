package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

const threeInsights = `{
	"summary": "  Zusammenfassung.  ",
	"insights": [
		{"title": "Eins", "description": "D1", "references": "#1, #3"},
		{"title": "Zwei", "description": "D2", "references": "#3, #3, #42"},
		{"title": "Drei", "description": "D3", "references": "2"}
	]
}`

func enriched(e domain.Entry) domain.Entry {
	return e.Apply(domain.Enrichment{
		ID:            e.ID,
		CoreStatement: fmt.Sprintf("Kern %d", e.ID),
		CategoryTags:  "1a",
		Justification: "j",
	})
}

func newTestSynthesizer(t *testing.T, model driven.GenerativeModel) *InsightsSynthesizer {
	t.Helper()
	prompts := newTestPrompts(t)
	return NewInsightsSynthesizer(NewStructuredCorrector(fastInvoker(model), prompts), prompts, "m")
}

func TestInsightsSynthesizer_InsufficientData(t *testing.T) {
	model := replyWith(threeInsights)
	syn := newTestSynthesizer(t, model)

	entries := []domain.Entry{enriched(pair(1, "A")), note(2), enriched(pair(3, "A")), pair(4, "A")}
	_, err := syn.Synthesize(context.Background(), entries)

	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Zero(t, model.calls())
}

func TestInsightsSynthesizer_MapsDisplayNumbersToIDs(t *testing.T) {
	model := replyWith(threeInsights)
	syn := newTestSynthesizer(t, model)

	// Display numbers skip notes: #1 -> id 10, #2 -> id 12, #3 -> id 14.
	entries := []domain.Entry{
		enriched(pair(10, "A")),
		note(11),
		enriched(pair(12, "A")),
		note(13),
		enriched(pair(14, "A")),
	}

	got, err := syn.Synthesize(context.Background(), entries)

	require.NoError(t, err)
	assert.Equal(t, "Zusammenfassung.", got.Summary)
	require.Len(t, got.Insights, domain.InsightCount)
	assert.Equal(t, []int{10, 14}, got.Insights[0].References)
	assert.Equal(t, "#1, #3", got.Insights[0].RawReferences)
	assert.Equal(t, []int{14}, got.Insights[1].References, "duplicates and unknown numbers dropped")
	assert.Equal(t, []int{12}, got.Insights[2].References)

	assert.Equal(t, 1, model.promptsContaining("Eintrag #3\nFundstelle: WP80/01"))
	assert.Zero(t, model.promptsContaining("(Beifall)"), "notes are not sent")
}

func TestInsightsSynthesizer_UnenrichedEntriesKeepNumbering(t *testing.T) {
	model := replyWith(threeInsights)
	syn := newTestSynthesizer(t, model)

	entries := []domain.Entry{
		pair(1, "A"),
		enriched(pair(2, "A")),
		enriched(pair(3, "A")),
		enriched(pair(4, "A")),
	}

	got, err := syn.Synthesize(context.Background(), entries)

	require.NoError(t, err)
	assert.Zero(t, model.promptsContaining("Eintrag #1\n"))
	assert.Equal(t, 1, model.promptsContaining("Eintrag #2\n"))
	assert.Equal(t, []int{3}, got.Insights[0].References, "#1 is unknown, #3 is id 3")
}

func TestInsightsSynthesizer_WrongInsightCount(t *testing.T) {
	model := replyWith(`{"summary": "s", "insights": [{"title": "t", "description": "d", "references": "#1"}]}`)
	syn := newTestSynthesizer(t, model)

	entries := []domain.Entry{enriched(pair(1, "A")), enriched(pair(2, "A")), enriched(pair(3, "A"))}
	_, err := syn.Synthesize(context.Background(), entries)

	assert.ErrorIs(t, err, domain.ErrInvalidAIOutput)
}

func TestResolveReferences(t *testing.T) {
	m := map[int]int{1: 100, 2: 200, 5: 500}

	tests := []struct {
		raw         string
		wantIDs     []int
		wantUnknown []int
	}{
		{"#1, #5", []int{100, 500}, nil},
		{"# 2,#2", []int{200}, nil},
		{"1, 2 und 9", []int{100, 200}, []int{9}},
		{"#5 (vgl. Seite 12)", []int{500}, nil},
		{"", []int{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ids, unknown := resolveReferences(tt.raw, m)
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantUnknown, unknown)
		})
	}
}
