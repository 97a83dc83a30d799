package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/logger"
	"github.com/custodia-labs/protokoll/internal/postprocessors/chunker"
)

// Verify interface compliance.
var _ driving.TimelineAssembler = (*TimelineAssembler)(nil)

var protocolIDPattern = regexp.MustCompile(`WP_(\d+)/(\d+)`)

// DetectProtocolID finds the protocol identifier in header text and
// returns it normalised ("WP_80/6" -> "WP80").
func DetectProtocolID(header string) (string, bool) {
	m := protocolIDPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return "WP" + m[1], true
}

// normaliseProtocolID accepts either form of an explicitly supplied id.
func normaliseProtocolID(id string) string {
	id = strings.TrimSpace(id)
	if detected, ok := DetectProtocolID(id); ok {
		return detected
	}
	return id
}

// ChunkParser turns the text of one chunk into entries.
type ChunkParser interface {
	ParseChunk(ctx context.Context, text, protocolID string, pageNumber, startID int) ([]domain.Entry, error)
}

// TimelineAssembler drives the parser over every chunk of a document
// and stitches the results into one ordered timeline.
type TimelineAssembler struct {
	parser  ChunkParser
	chunker *chunker.Processor
	now     func() time.Time
	log     logger.Scoped
}

// NewTimelineAssembler creates an assembler.
func NewTimelineAssembler(parser ChunkParser, proc *chunker.Processor) *TimelineAssembler {
	if proc == nil {
		proc = chunker.New()
	}
	return &TimelineAssembler{
		parser:  parser,
		chunker: proc,
		now:     time.Now,
		log:     logger.For("assembler"),
	}
}

// Start parses fullText chunk by chunk.
//
// Chunks are parsed sequentially. A chunk that fails is recorded as a
// warning and its pages as skipped; the run carries on. Cancelling ctx
// stops the run before the next chunk: the run is returned as aborted,
// with the entries parsed so far, together with domain.ErrRunAborted.
// The chunk in flight when ctx is cancelled is allowed to finish.
func (a *TimelineAssembler) Start(ctx context.Context, fullText string, opts driving.ParseOptions) (*domain.Run, error) {
	now := a.now()
	run := &domain.Run{
		ID:        uuid.NewString(),
		Source:    opts.Source,
		State:     domain.RunStateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if strings.TrimSpace(fullText) == "" {
		return a.fail(run, fmt.Errorf("%w: document is empty", domain.ErrInvalidInput))
	}

	pages := chunker.SplitIntoPages(fullText)

	protocolID := normaliseProtocolID(opts.ProtocolID)
	if protocolID == "" {
		detected, ok := DetectProtocolID(pages[0].Raw)
		if !ok {
			return a.fail(run, domain.ErrMissingProtocolID)
		}
		protocolID = detected
	}
	run.ProtocolID = protocolID

	proc := a.chunker
	if opts.PagesPerChunk > 0 && opts.PagesPerChunk != proc.PagesPerChunk() {
		proc = chunker.New(chunker.WithPagesPerChunk(opts.PagesPerChunk))
	}
	chunks := proc.GroupPages(pages)

	run.TotalPages = len(pages)
	run.State = domain.RunStateRunning
	a.log.Info("run %s: %s, %d pages in %d chunks", run.ID, protocolID, len(pages), len(chunks))

	// In-flight model calls are not interrupted; cancellation is honoured
	// between chunks.
	callCtx := context.WithoutCancel(ctx)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			run.State = domain.RunStateAborted
			run.UpdatedAt = a.now()
			a.log.Warn("run %s aborted before chunk %d of %d", run.ID, i+1, len(chunks))
			return run, fmt.Errorf("%w after %d of %d chunks: %w", domain.ErrRunAborted, i, len(chunks), err)
		}

		msg := fmt.Sprintf("Parsing chunk %d of %d (starting around page %d)", i+1, len(chunks), chunk.FirstPage())
		a.log.Info("%s", msg)
		a.notify(opts.OnProgress, run, msg, i, len(chunks))

		entries, err := a.parser.ParseChunk(callCtx, chunk.ModelText(), protocolID, chunk.FirstPage(), len(run.Entries)+1)
		if err != nil {
			a.log.Warn("chunk %d (pages %d-%d) failed: %v", i+1, chunk.FirstPage(), chunk.LastPage(), err)
			run.Warnings = append(run.Warnings, domain.ChunkWarning{
				ChunkIndex: i,
				FirstPage:  chunk.FirstPage(),
				LastPage:   chunk.LastPage(),
				Message:    domain.UserMessage(err),
			})
			run.SkippedPages = append(run.SkippedPages, chunk.PageNumbers()...)
		} else {
			run.Entries = append(run.Entries, entries...)
		}

		run.PagesProcessed += len(chunk.Pages)
		run.UpdatedAt = a.now()
		a.notify(opts.OnProgress, run,
			fmt.Sprintf("Parsed chunk %d of %d: %d entries so far", i+1, len(chunks), len(run.Entries)),
			i, len(chunks))
	}

	run.State = domain.RunStateCompleted
	run.UpdatedAt = a.now()
	a.log.Info("run %s completed: %d entries, %d pages processed, %d skipped",
		run.ID, len(run.Entries), run.PagesProcessed, len(run.SkippedPages))
	return run, nil
}

func (a *TimelineAssembler) fail(run *domain.Run, err error) (*domain.Run, error) {
	run.State = domain.RunStateFailed
	run.Error = err.Error()
	run.UpdatedAt = a.now()
	a.log.Error("run %s failed: %v", run.ID, err)
	return run, err
}

func (a *TimelineAssembler) notify(fn func(domain.RunProgress), run *domain.Run, msg string, index, total int) {
	if fn == nil {
		return
	}
	fn(domain.RunProgress{
		Message:     msg,
		ChunkIndex:  index,
		TotalChunks: total,
		Run:         run.Snapshot(),
	})
}
