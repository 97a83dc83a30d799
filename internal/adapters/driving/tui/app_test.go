package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Runs: &MockRunService{Runs: map[string]*domain.Run{"run-1": sampleRun()}}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs a command chain to completion, feeding each message back into the app.
func drain(app *App, cmd tea.Cmd) {
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = app.Update(msg)
	}
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingRunService)
	assert.Nil(t, app)
}

func TestApp_StartsOnRuns(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, messages.ViewRuns, app.CurrentView())
	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Runs: &MockRunService{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_NavigateToEntryAndBack(t *testing.T) {
	app := newTestApp(t)
	drain(app, app.runsView.Init())
	require.Len(t, app.runsView.Runs(), 1)

	_, cmd := app.Update(key("enter"))
	drain(app, cmd)
	require.Equal(t, messages.ViewTimeline, app.CurrentView())
	assert.Contains(t, app.View(), "WP80")

	_, cmd = app.Update(key("enter"))
	drain(app, cmd)
	require.Equal(t, messages.ViewEntry, app.CurrentView())
	assert.Contains(t, app.View(), "Entry #1")

	_, cmd = app.Update(key("esc"))
	drain(app, cmd)
	assert.Equal(t, messages.ViewTimeline, app.CurrentView())

	_, cmd = app.Update(key("esc"))
	drain(app, cmd)
	assert.Equal(t, messages.ViewRuns, app.CurrentView())
}

func TestApp_InsightsView(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.RunLoaded{Run: sampleRun()})

	_, cmd := app.Update(key("i"))
	drain(app, cmd)

	assert.Equal(t, messages.ViewInsights, app.CurrentView())
	assert.Contains(t, app.View(), "Key insights")
}

func TestApp_RunLoadError(t *testing.T) {
	app := newTestApp(t)

	drain(app, app.loadRun("missing"))

	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
	assert.Equal(t, messages.ViewRuns, app.CurrentView())
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t)

	app.Update(key("?"))
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Timeline:")

	app.Update(key("esc"))
	assert.Equal(t, messages.ViewRuns, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}
