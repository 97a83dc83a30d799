// Package runs provides the stored-runs list view for the TUI.
package runs

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// View is the runs list view.
type View struct {
	styles     *styles.Styles
	keys       *keymap.KeyMap
	runService driving.RunService

	runs         []domain.RunSummary
	selected     int
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a new runs view.
func NewView(s *styles.Styles, keys *keymap.KeyMap, runService driving.RunService) *View {
	return &View{
		styles:     s,
		keys:       keys,
		runService: runService,
	}
}

// Init loads the run list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadRuns()
}

func (v *View) loadRuns() tea.Cmd {
	svc := v.runService
	return func() tea.Msg {
		if svc == nil {
			return messages.RunsLoaded{Err: fmt.Errorf("run service not available")}
		}
		runs, err := svc.List(context.Background())
		return messages.RunsLoaded{Runs: runs, Err: err}
	}
}

// Update handles messages for the runs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.RunsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.runs = msg.Runs
			if v.selected >= len(v.runs) {
				v.selected = max(len(v.runs)-1, 0)
			}
		}

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch k := msg.String(); {
	case keymap.Matches(k, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keys.Down):
		if v.selected < len(v.runs)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keys.Select):
		if run := v.SelectedRun(); run != nil {
			id := run.ID
			return v, func() tea.Msg { return messages.RunSelected{RunID: id} }
		}
	case keymap.Matches(k, v.keys.Reload):
		return v, v.Init()
	}
	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, header, help and padding
	return max(v.height-7, 1)
}

// View renders the runs view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Runs (%d)", len(v.runs))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading runs..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + domain.UserMessage(v.err)))
	case len(v.runs) == 0:
		b.WriteString(v.styles.Muted.Render("No runs yet. Parse a protocol with 'protokoll parse <file>'."))
	default:
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-10s %-10s %8s %8s  %s", "PROTOCOL", "STATE", "ENTRIES", "ANALYSED", "CREATED")))
		b.WriteString("\n")
		visible := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.runs) && i < v.scrollOffset+visible; i++ {
			b.WriteString(v.renderRun(i, v.runs[i]))
			b.WriteString("\n")
		}
		if len(v.runs) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, min(v.scrollOffset+visible, len(v.runs)), len(v.runs))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [?] help  [q] quit"))
	return b.String()
}

func (v *View) renderRun(index int, r domain.RunSummary) string {
	marker := ""
	if r.HasInsight {
		marker = " *"
	}
	line := fmt.Sprintf("%-10s %-10s %8d %8d  %s%s",
		r.ProtocolID, r.State, r.Entries, r.Enriched, r.CreatedAt.Format("2006-01-02 15:04"), marker)

	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	style := v.styles.Normal
	switch r.State {
	case domain.RunStateAborted:
		style = v.styles.Warning
	case domain.RunStateFailed:
		style = v.styles.Error
	}
	return "  " + style.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Runs returns the loaded run summaries.
func (v *View) Runs() []domain.RunSummary {
	return v.runs
}

// SelectedRun returns the run under the cursor, or nil.
func (v *View) SelectedRun() *domain.RunSummary {
	if v.selected < len(v.runs) {
		return &v.runs[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
