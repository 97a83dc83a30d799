package domain

import "time"

// RunState is the lifecycle state of a parsing run.
type RunState string

// Run lifecycle states.
const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateAborted   RunState = "aborted"
	RunStateFailed    RunState = "failed"
)

// IsValid returns true if the state is recognised.
func (s RunState) IsValid() bool {
	switch s {
	case RunStateIdle, RunStateRunning, RunStateCompleted, RunStateAborted, RunStateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the run can no longer make progress.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateAborted || s == RunStateFailed
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// ChunkWarning records a chunk whose parse failed. The run continues past it.
type ChunkWarning struct {
	ChunkIndex int    `json:"chunkIndex"`
	FirstPage  int    `json:"firstPage"`
	LastPage   int    `json:"lastPage"`
	Message    string `json:"message"`
}

// Run is one ingestion of a protocol document and everything derived from it.
type Run struct {
	// ID is a unique identifier (UUID).
	ID string `json:"id"`

	// ProtocolID is the normalised protocol identifier, e.g. "WP80".
	ProtocolID string `json:"protocolId"`

	// Source names the input, usually the file path.
	Source string `json:"source,omitempty"`

	State RunState `json:"state"`

	// Entries is the assembled timeline in document order.
	Entries []Entry `json:"entries"`

	Warnings []ChunkWarning `json:"warnings,omitempty"`

	TotalPages     int   `json:"totalPages"`
	PagesProcessed int   `json:"pagesProcessed"`
	SkippedPages   []int `json:"skippedPages,omitempty"`

	// Insights is set once key insights have been synthesised.
	Insights *KeyInsights `json:"insights,omitempty"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EnrichedCount returns the number of analysed entries.
func (r *Run) EnrichedCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.IsEnriched() {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the run that shares no mutable slices with r.
func (r *Run) Snapshot() Run {
	cp := *r
	cp.Entries = CloneEntries(r.Entries)
	if r.Warnings != nil {
		cp.Warnings = append([]ChunkWarning(nil), r.Warnings...)
	}
	if r.SkippedPages != nil {
		cp.SkippedPages = append([]int(nil), r.SkippedPages...)
	}
	return cp
}

// RunProgress is delivered to observers after every parsed chunk.
type RunProgress struct {
	// Message is a human-readable progress line.
	Message string

	ChunkIndex  int
	TotalChunks int

	// Run is a snapshot of the run at this point.
	Run Run
}

// AnalysisReport summarises one analysis pass.
type AnalysisReport struct {
	// Entries is the full input list with enrichment merged in.
	// Length and order always equal the input.
	Entries []Entry `json:"entries"`

	// Analyzed is the number of entries that received enrichment.
	Analyzed int `json:"analyzed"`

	// Unmatched counts eligible entries the model returned nothing for.
	Unmatched int `json:"unmatched"`

	// Unexpected lists ids the model returned that were not in any batch.
	Unexpected []int `json:"unexpected,omitempty"`

	// Batches is the number of batches sent.
	Batches int `json:"batches"`

	// Cancelled is set when the pass stopped early.
	Cancelled bool `json:"cancelled"`
}

// RunSummary is the list view of a stored run.
type RunSummary struct {
	ID         string
	ProtocolID string
	Source     string
	State      RunState
	Entries    int
	Enriched   int
	HasInsight bool
	CreatedAt  time.Time
}

// Progress counts finished units of work.
type Progress struct {
	Completed int
	Total     int
}

// Summary returns the list view of the run.
func (r *Run) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		ProtocolID: r.ProtocolID,
		Source:     r.Source,
		State:      r.State,
		Entries:    len(r.Entries),
		Enriched:   r.EnrichedCount(),
		HasInsight: r.Insights != nil,
		CreatedAt:  r.CreatedAt,
	}
}
