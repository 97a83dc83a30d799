package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/views/detail"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/views/runs"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/views/timeline"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// App is the run browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	runsView     *runs.View
	timelineView *timeline.View
	detailView   *detail.View

	// previous is where esc returns to from the help view.
	previous    messages.ViewType
	currentView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keys:         keys,
		runsView:     runs.NewView(s, keys, ports.Runs),
		timelineView: timeline.NewView(s, keys),
		detailView:   detail.NewView(s, keys),
		currentView:  messages.ViewRuns,
	}, nil
}

// WithContext sets the context used to load runs.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("protokoll"),
		a.runsView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.RunsLoaded:
		a.runsView, cmd = a.runsView.Update(msg)
		return a, cmd

	case messages.RunSelected:
		return a, a.loadRun(msg.RunID)

	case messages.RunLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.timelineView.SetRun(msg.Run)
		a.currentView = messages.ViewTimeline
		return a, nil

	case messages.EntrySelected:
		a.detailView.SetEntry(msg.Entry)
		a.currentView = messages.ViewEntry
		return a, nil

	case messages.ViewChanged:
		return a.changeView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewEntry || a.currentView == messages.ViewInsights {
		a.detailView, cmd = a.detailView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	if k == "ctrl+c" {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(k, a.keys.Back) || keymap.Matches(k, a.keys.Help) {
			a.currentView = a.previous
		}
		return a, nil
	}
	if keymap.Matches(k, a.keys.Help) {
		a.previous = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	switch a.currentView {
	case messages.ViewRuns:
		if keymap.Matches(k, a.keys.Quit) {
			return a, tea.Quit
		}
		a.runsView, cmd = a.runsView.Update(msg)
	case messages.ViewTimeline:
		a.timelineView, cmd = a.timelineView.Update(msg)
	case messages.ViewEntry, messages.ViewInsights:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
		// handled above
	}
	return a, cmd
}

func (a *App) changeView(view messages.ViewType) (tea.Model, tea.Cmd) {
	switch view {
	case messages.ViewRuns:
		a.currentView = view
		return a, a.runsView.Init()
	case messages.ViewInsights:
		if run := a.timelineView.Run(); run != nil {
			a.detailView.SetInsights(run)
			a.currentView = view
		}
	case messages.ViewTimeline, messages.ViewEntry, messages.ViewHelp:
		a.currentView = view
	}
	return a, nil
}

func (a *App) loadRun(id string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Runs
	return func() tea.Msg {
		run, err := svc.Get(ctx, id)
		return messages.RunLoaded{Run: run, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var out string
	switch a.currentView {
	case messages.ViewTimeline:
		out = a.timelineView.View()
	case messages.ViewEntry, messages.ViewInsights:
		out = a.detailView.View()
	case messages.ViewHelp:
		out = a.viewHelp()
	default:
		out = a.runsView.View()
	}

	if a.err != nil {
		out += "\n" + a.styles.Error.Render("Error: "+domain.UserMessage(a.err))
	}
	return out
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Runs:
  j/k, ↑/↓    Navigate runs
  enter       Open timeline
  r           Reload
  q           Quit

Timeline:
  enter       Open entry
  e           Toggle analysed entries only
  i           Key insights (when synthesised)
  esc         Back to runs

Entry / insights:
  ↑/↓, pgup/pgdn   Scroll
  esc              Back to timeline

` + a.styles.Help.Render("[esc] back  [ctrl+c] quit")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.runsView.SetDimensions(width, height)
	a.timelineView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}
