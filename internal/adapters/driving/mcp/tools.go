package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/normalisers/plaintext"
)

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct{}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput summarises a stored run.
type RunOutput struct {
	ID          string `json:"id"`
	ProtocolID  string `json:"protocol_id"`
	Source      string `json:"source,omitempty"`
	State       string `json:"state"`
	Entries     int    `json:"entries"`
	Enriched    int    `json:"enriched"`
	HasInsights bool   `json:"has_insights"`
	CreatedAt   string `json:"created_at"`
}

// GetEntriesInput is the input schema for the get_entries tool.
type GetEntriesInput struct {
	RunID        string `json:"run_id" jsonschema:"id of the run to read"`
	Category     string `json:"category,omitempty" jsonschema:"only entries tagged with this corpus id, e.g. 5f"`
	OnlyEnriched bool   `json:"only_enriched,omitempty" jsonschema:"only entries that have been analysed"`
}

// GetEntriesOutput is the output schema for the get_entries tool.
type GetEntriesOutput struct {
	Entries []domain.Entry `json:"entries"`
	Count   int            `json:"count"`
}

// ParseProtocolInput is the input schema for the parse_protocol tool.
type ParseProtocolInput struct {
	Text          string `json:"text" jsonschema:"full OCR text of the protocol including page markers"`
	ProtocolID    string `json:"protocol_id,omitempty" jsonschema:"protocol id such as WP80 when the header lacks one"`
	PagesPerChunk int    `json:"pages_per_chunk,omitempty" jsonschema:"pages sent per model call (default from settings)"`
}

// ParseProtocolOutput is the output schema for the parse_protocol tool.
type ParseProtocolOutput struct {
	Run          RunOutput `json:"run"`
	Warnings     []string  `json:"warnings,omitempty"`
	SkippedPages []int     `json:"skipped_pages,omitempty"`
}

// RunIDInput selects a stored run.
type RunIDInput struct {
	RunID string `json:"run_id" jsonschema:"id of the run"`
}

// AnalyzeRunOutput is the output schema for the analyze_run tool.
type AnalyzeRunOutput struct {
	Analyzed   int   `json:"analyzed"`
	Unmatched  int   `json:"unmatched"`
	Unexpected []int `json:"unexpected,omitempty"`
	Batches    int   `json:"batches"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List stored protocol runs, newest first",
	}, s.handleListRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_entries",
		Description: "Read the timeline entries of a run, optionally filtered by category",
	}, s.handleGetEntries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "parse_protocol",
		Description: "Segment an OCR protocol into a timeline of questions, answers and notes",
	}, s.handleParseProtocol)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_run",
		Description: "Add core statements and corpus categories to the entries of a run",
	}, s.handleAnalyzeRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "key_insights",
		Description: "Synthesise the three key insights of an analysed run",
	}, s.handleKeyInsights)
}

func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.ports.Runs.List(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	output := ListRunsOutput{
		Runs:  make([]RunOutput, len(runs)),
		Count: len(runs),
	}
	for i := range runs {
		output.Runs[i] = runOutput(runs[i])
	}
	return nil, output, nil
}

func (s *Server) handleGetEntries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetEntriesInput,
) (*mcp.CallToolResult, GetEntriesOutput, error) {
	run, err := s.ports.Runs.Get(ctx, input.RunID)
	if err != nil {
		return nil, GetEntriesOutput{}, err
	}

	entries := make([]domain.Entry, 0, len(run.Entries))
	for _, e := range run.Entries {
		if input.OnlyEnriched && !e.IsEnriched() {
			continue
		}
		if input.Category != "" && !hasCategory(e, input.Category) {
			continue
		}
		entries = append(entries, e)
	}

	return nil, GetEntriesOutput{Entries: entries, Count: len(entries)}, nil
}

func (s *Server) handleParseProtocol(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ParseProtocolInput,
) (*mcp.CallToolResult, ParseProtocolOutput, error) {
	run, err := s.ports.Runs.Parse(ctx, plaintext.Normalise(input.Text), driving.ParseOptions{
		ProtocolID:    input.ProtocolID,
		PagesPerChunk: input.PagesPerChunk,
		Source:        "mcp",
	})
	if run == nil {
		return nil, ParseProtocolOutput{}, err
	}

	output := ParseProtocolOutput{
		Run:          runOutput(run.Summary()),
		SkippedPages: run.SkippedPages,
	}
	for _, w := range run.Warnings {
		output.Warnings = append(output.Warnings,
			fmt.Sprintf("pages %d-%d: %s", w.FirstPage, w.LastPage, w.Message))
	}
	return nil, output, err
}

func (s *Server) handleAnalyzeRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunIDInput,
) (*mcp.CallToolResult, AnalyzeRunOutput, error) {
	report, err := s.ports.Runs.Analyze(ctx, input.RunID, driving.AnalyzeOptions{})
	if report == nil {
		return nil, AnalyzeRunOutput{}, err
	}
	return nil, AnalyzeRunOutput{
		Analyzed:   report.Analyzed,
		Unmatched:  report.Unmatched,
		Unexpected: report.Unexpected,
		Batches:    report.Batches,
	}, err
}

func (s *Server) handleKeyInsights(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunIDInput,
) (*mcp.CallToolResult, domain.KeyInsights, error) {
	insights, err := s.ports.Runs.Insights(ctx, input.RunID)
	if err != nil {
		return nil, domain.KeyInsights{}, err
	}
	return nil, *insights, nil
}

func runOutput(r domain.RunSummary) RunOutput {
	return RunOutput{
		ID:          r.ID,
		ProtocolID:  r.ProtocolID,
		Source:      r.Source,
		State:       r.State.String(),
		Entries:     r.Entries,
		Enriched:    r.Enriched,
		HasInsights: r.HasInsight,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// hasCategory reports whether the entry's comma-separated tags contain id.
func hasCategory(e domain.Entry, id string) bool {
	if e.CategoryTags == nil {
		return false
	}
	for _, tag := range strings.Split(*e.CategoryTags, ",") {
		if strings.EqualFold(strings.TrimSpace(tag), id) {
			return true
		}
	}
	return false
}
