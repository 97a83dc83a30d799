// Package chunker splits OCR protocols into pages, groups pages into
// model-sized chunks and groups parsed entries into analysis batches.
package chunker

import (
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// Processor groups pages and entries according to its policy.
type Processor struct {
	pagesPerChunk      int
	maxEntriesPerBatch int
	speakerBreaks      bool
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithPagesPerChunk sets the number of pages per parse chunk.
func WithPagesPerChunk(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.pagesPerChunk = n
		}
	}
}

// WithMaxEntriesPerBatch sets the maximum entries per analysis batch.
func WithMaxEntriesPerBatch(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxEntriesPerBatch = n
		}
	}
}

// WithSpeakerBreaks toggles starting a new batch when the questioner changes.
func WithSpeakerBreaks(enabled bool) Option {
	return func(p *Processor) {
		p.speakerBreaks = enabled
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		pagesPerChunk:      domain.DefaultPagesPerChunk,
		maxEntriesPerBatch: domain.DefaultMaxEntriesPerBatch,
		speakerBreaks:      true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FromSettings creates a processor from pipeline settings.
func FromSettings(s domain.PipelineSettings) *Processor {
	s = s.Normalised()
	return New(
		WithPagesPerChunk(s.PagesPerChunk),
		WithMaxEntriesPerBatch(s.MaxEntriesPerBatch),
		WithSpeakerBreaks(s.SpeakerBreaks),
	)
}

// PagesPerChunk returns the configured pages per chunk.
func (p *Processor) PagesPerChunk() int {
	return p.pagesPerChunk
}

// GroupPages bundles consecutive pages into chunks of at most
// PagesPerChunk pages. Every page lands in exactly one chunk, in order.
func (p *Processor) GroupPages(pages []domain.PageUnit) []domain.Chunk {
	if len(pages) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, (len(pages)+p.pagesPerChunk-1)/p.pagesPerChunk)
	for start := 0; start < len(pages); start += p.pagesPerChunk {
		end := start + p.pagesPerChunk
		if end > len(pages) {
			end = len(pages)
		}
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Pages: pages[start:end],
		})
	}

	return chunks
}

// GroupEntries partitions entries into analysis batches with a greedy scan.
//
// A note always forms its own batch. A batch is closed when it reaches
// the maximum size or, with speaker breaks on, when an entry's questioner
// differs from the batch's questioner. Concatenating the batches yields
// the input unchanged.
func (p *Processor) GroupEntries(entries []domain.Entry) [][]domain.Entry {
	var (
		batches    [][]domain.Entry
		current    []domain.Entry
		questioner *string
	)

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
		}
		current = nil
		questioner = nil
	}

	for _, e := range entries {
		if e.IsNote() {
			flush()
			batches = append(batches, []domain.Entry{e})
			continue
		}

		if len(current) >= p.maxEntriesPerBatch {
			flush()
		} else if p.speakerBreaks && questioner != nil && e.Questioner != nil && *e.Questioner != *questioner {
			flush()
		}

		current = append(current, e)
		if questioner == nil && e.Questioner != nil {
			questioner = e.Questioner
		}
	}
	flush()

	return batches
}
