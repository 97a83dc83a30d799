// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewRuns lists stored runs.
	ViewRuns ViewType = iota
	// ViewTimeline lists the entries of one run.
	ViewTimeline
	// ViewEntry shows a single entry in full.
	ViewEntry
	// ViewInsights shows the key insights of a run.
	ViewInsights
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns a short name for the view.
func (v ViewType) String() string {
	switch v {
	case ViewRuns:
		return "runs"
	case ViewTimeline:
		return "timeline"
	case ViewEntry:
		return "entry"
	case ViewInsights:
		return "insights"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// RunsLoaded carries run summaries back to the model.
type RunsLoaded struct {
	Runs []domain.RunSummary
	Err  error
}

// RunSelected is sent when a run is chosen from the list.
type RunSelected struct {
	RunID string
}

// RunLoaded carries a full run back to the model.
type RunLoaded struct {
	Run *domain.Run
	Err error
}

// EntrySelected is sent when an entry is opened from the timeline.
type EntrySelected struct {
	Entry domain.Entry
}

// ProgressUpdated reports progress of a running job.
type ProgressUpdated struct {
	// Message is shown beside the progress bar.
	Message string

	Completed int
	Total     int
}

// Ratio returns the completed fraction clamped to [0, 1].
func (p ProgressUpdated) Ratio() float64 {
	if p.Total <= 0 {
		return 0
	}
	r := float64(p.Completed) / float64(p.Total)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// WarningRaised carries a non-fatal problem reported by a job.
type WarningRaised struct {
	Message string
}

// JobFinished is sent once a job returns.
type JobFinished struct {
	Err error
}

// ErrorOccurred is sent when an error needs to be displayed.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
