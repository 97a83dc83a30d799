package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Shape(t *testing.T) {
	note := Entry{ID: 1, Note: StringPtr("Die Sitzung wird eröffnet.")}
	pair := Entry{ID: 2, Questioner: StringPtr("Abg. A"), Question: StringPtr("Q?"), Answer: StringPtr("A.")}
	half := Entry{ID: 3, Questioner: StringPtr("Abg. A"), Question: StringPtr("Q?")}

	assert.True(t, note.IsNote())
	assert.False(t, note.IsPair())
	assert.True(t, pair.IsPair())
	assert.False(t, pair.IsNote())
	assert.False(t, half.IsPair())

	assert.NoError(t, note.Validate())
	assert.NoError(t, pair.Validate())
	assert.NoError(t, half.Validate())
}

func TestEntry_Validate_Invalid(t *testing.T) {
	both := Entry{ID: 1, Note: StringPtr("n"), Answer: StringPtr("a")}
	empty := Entry{ID: 2}

	err := both.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = empty.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEntry_Apply(t *testing.T) {
	e := Entry{ID: 7, Question: StringPtr("Q"), Answer: StringPtr("A")}
	enriched := e.Apply(Enrichment{ID: 7, CoreStatement: "Kern", CategoryTags: "5f, 2a", Justification: "weil"})

	assert.False(t, e.IsEnriched())
	assert.True(t, enriched.IsEnriched())
	assert.Equal(t, "5f, 2a", *enriched.CategoryTags)
}

func TestSourceLocator(t *testing.T) {
	assert.Equal(t, "WP80/06", SourceLocator("WP80", 6))
	assert.Equal(t, "WP80/12", SourceLocator("WP80", 12))
	assert.Equal(t, "WP7/100", SourceLocator("WP7", 100))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Nil(t, StringPtr("  "))
	require.NotNil(t, StringPtr("x"))
	assert.Equal(t, "x", Deref(StringPtr("x"), "-"))
	assert.Equal(t, "-", Deref(nil, "-"))
}

func TestRun_Snapshot(t *testing.T) {
	r := &Run{ID: "r", Entries: []Entry{{ID: 1, Note: StringPtr("n")}}, SkippedPages: []int{3}}
	snap := r.Snapshot()

	r.Entries[0].ID = 99
	r.SkippedPages[0] = 4

	assert.Equal(t, 1, snap.Entries[0].ID)
	assert.Equal(t, 3, snap.SkippedPages[0])
}

func TestRunState(t *testing.T) {
	assert.True(t, RunStateCompleted.IsTerminal())
	assert.True(t, RunStateAborted.IsTerminal())
	assert.False(t, RunStateRunning.IsTerminal())
	assert.True(t, RunStateIdle.IsValid())
	assert.False(t, RunState("paused").IsValid())
}

func TestChunk_Accessors(t *testing.T) {
	c := Chunk{Pages: []PageUnit{
		{Number: 4, Raw: "==Start of OCR for page 4==a", Text: "a"},
		{Number: 5, Raw: "==Start of OCR for page 5==b", Text: "b"},
	}}

	assert.Equal(t, 4, c.FirstPage())
	assert.Equal(t, 5, c.LastPage())
	assert.Equal(t, "ab", c.Text())
	assert.Equal(t, []int{4, 5}, c.PageNumbers())
	assert.Equal(t, 0, Chunk{}.FirstPage())
	assert.Equal(t, "==Start of OCR for page 4==a==Start of OCR for page 5==b", c.ModelText())

	single := Chunk{Pages: c.Pages[:1]}
	assert.Equal(t, "a", single.ModelText())
}
