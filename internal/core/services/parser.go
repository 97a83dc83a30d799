package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/schema"
	"github.com/custodia-labs/protokoll/internal/logger"
	"github.com/custodia-labs/protokoll/internal/postprocessors/chunker"
)

// parsedEntry is one entry as the model returns it.
type parsedEntry struct {
	SourceReference *string `json:"sourceReference"`
	Questioner      *string `json:"questioner"`
	Question        *string `json:"question"`
	Witness         *string `json:"witness"`
	Answer          *string `json:"answer"`
	Note            *string `json:"note"`
}

// EntryParser segments the text of one chunk into entries.
type EntryParser struct {
	corrector *StructuredCorrector
	prompts   driven.PromptStore
	modelID   string
	log       logger.Scoped
}

// NewEntryParser creates a parser. An empty modelID uses the model's default.
func NewEntryParser(corrector *StructuredCorrector, prompts driven.PromptStore, modelID string) *EntryParser {
	return &EntryParser{
		corrector: corrector,
		prompts:   prompts,
		modelID:   modelID,
		log:       logger.For("parser"),
	}
}

// ParseChunk asks the model to segment text and returns entries numbered
// from startID. Whitespace-only text returns nil without a model call.
//
// When text still carries page-start markers the model is asked for a
// locator per entry; entries it leaves without one get pageNumber's.
func (p *EntryParser) ParseChunk(
	ctx context.Context, text, protocolID string, pageNumber, startID int,
) ([]domain.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	locator := domain.SourceLocator(protocolID, pageNumber)
	prompt, err := renderPrompt(p.prompts, driven.PromptParseEntries, struct {
		SourceLocator string
		ProtocolID    string
		PerPage       bool
		Text          string
		Schema        string
	}{
		SourceLocator: locator,
		ProtocolID:    protocolID,
		PerPage:       chunker.HasPageMarkers(text),
		Text:          text,
		Schema:        schema.Entries.String(),
	})
	if err != nil {
		return nil, err
	}

	value, err := p.corrector.InvokeStructured(ctx, p.modelID, prompt, schema.Entries)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", locator, err)
	}

	// Some models answer a single entry with a bare object.
	if obj, ok := value.(map[string]any); ok {
		value = []any{obj}
	}
	if err := schema.Entries.Validate(value); err != nil {
		return nil, fmt.Errorf("parse %s: %w", locator, err)
	}

	var raw []parsedEntry
	if err := decodeInto(value, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", locator, err)
	}

	entries := make([]domain.Entry, 0, len(raw))
	for i, r := range raw {
		entry, ok := p.normalise(r, locator, i)
		if !ok {
			continue
		}
		entry.ID = startID + len(entries)
		entries = append(entries, entry)
	}

	p.log.Debug("%s: %d entries (%d returned)", locator, len(entries), len(raw))
	return entries, nil
}

// normalise blanks empty strings to nil, fills the locator and enforces
// the note XOR Q/A shape. It reports false for items to drop.
func (p *EntryParser) normalise(r parsedEntry, locator string, pos int) (domain.Entry, bool) {
	entry := domain.Entry{
		SourceLocator: strings.TrimSpace(domain.Deref(r.SourceReference, "")),
		Questioner:    clean(r.Questioner),
		Question:      clean(r.Question),
		Witness:       clean(r.Witness),
		Answer:        clean(r.Answer),
		Note:          clean(r.Note),
	}
	if entry.SourceLocator == "" {
		entry.SourceLocator = locator
	}

	if entry.IsNote() && entry.Validate() != nil {
		// Both shapes set: the exchange carries the content, the note is dropped.
		p.log.Warn("%s: item %d has note and Q/A content, keeping Q/A", locator, pos)
		entry.Note = nil
	}
	if err := entry.Validate(); err != nil {
		p.log.Warn("%s: dropping item %d: empty entry", locator, pos)
		return domain.Entry{}, false
	}
	return entry, true
}

func clean(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.StringPtr(strings.TrimSpace(*s))
}
