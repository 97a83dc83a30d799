package domain

import (
	"fmt"
	"strings"
)

// CategoryNotApplicable is the category tag assigned to entries without
// substantive content (procedural questions, pleasantries, dates).
const CategoryNotApplicable = "Irrelevant / Prozedural"

// Entry is one record of a protocol timeline: either a question/answer
// exchange or a procedural note.
//
// ID and SourceLocator are assigned by the pipeline, never by the model.
// Enrichment fields stay nil until analysis runs.
type Entry struct {
	// ID is unique within a run and strictly increasing in document order.
	ID int `json:"id"`

	// SourceLocator identifies the origin, e.g. "WP80/06".
	SourceLocator string `json:"sourceReference"`

	Questioner *string `json:"questioner"`
	Question   *string `json:"question"`
	Witness    *string `json:"witness"`
	Answer     *string `json:"answer"`
	Note       *string `json:"note"`

	// CoreStatement is a one-sentence summary of the answer.
	CoreStatement *string `json:"coreStatement,omitempty"`

	// CategoryTags is a comma-separated list of corpus ids,
	// or CategoryNotApplicable.
	CategoryTags *string `json:"categoryTags,omitempty"`

	// Justification explains the category choice.
	Justification *string `json:"justification,omitempty"`
}

// IsNote returns true if the entry is a procedural note.
func (e Entry) IsNote() bool {
	return e.Note != nil
}

// IsPair returns true if the entry holds both a question and an answer.
func (e Entry) IsPair() bool {
	return e.Question != nil && e.Answer != nil
}

// IsEnriched returns true once analysis has attached a core statement.
func (e Entry) IsEnriched() bool {
	return e.CoreStatement != nil && *e.CoreStatement != ""
}

// hasQAContent reports whether any Q/A field is set.
func (e Entry) hasQAContent() bool {
	return e.Questioner != nil || e.Question != nil || e.Witness != nil || e.Answer != nil
}

// Validate checks the note XOR Q/A shape invariant.
func (e Entry) Validate() error {
	switch {
	case e.IsNote() && e.hasQAContent():
		return fmt.Errorf("%w: entry %d has both note and Q/A content", ErrInvalidInput, e.ID)
	case !e.IsNote() && !e.hasQAContent():
		return fmt.Errorf("%w: entry %d has no content", ErrInvalidInput, e.ID)
	}
	return nil
}

// Enrichment holds the analysis fields merged back into an entry by ID.
type Enrichment struct {
	ID            int
	CoreStatement string
	CategoryTags  string
	Justification string
}

// Apply returns a copy of the entry with the enrichment fields set.
func (e Entry) Apply(en Enrichment) Entry {
	e.CoreStatement = StringPtr(en.CoreStatement)
	e.CategoryTags = StringPtr(en.CategoryTags)
	e.Justification = StringPtr(en.Justification)
	return e
}

// SourceLocator formats the locator for a protocol page, zero-padding the
// page number to two digits ("WP80", 6 -> "WP80/06").
func SourceLocator(protocolID string, page int) string {
	return fmt.Sprintf("%s/%02d", protocolID, page)
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or fallback when nil.
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// CloneEntries returns a copy of entries safe to hand to readers.
// String fields are immutable so a shallow copy of each entry suffices.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
