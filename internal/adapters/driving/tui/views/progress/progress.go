// Package progress provides the progress view shown while a pipeline
// stage is running.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// maxWarnings is how many recent warnings stay on screen.
const maxWarnings = 5

// View renders a spinner, a progress bar and recent warnings.
// It implements tea.Model so it can run as a standalone program.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	spinner spinner.Model
	bar     progress.Model

	title      string
	message    string
	ratio      float64
	warnings   []string
	warnCount  int
	cancel     func()
	cancelling bool
	done       bool
	err        error
}

var _ tea.Model = (*View)(nil)

// NewView creates a progress view. cancel is called when the user quits.
func NewView(s *styles.Styles, keys *keymap.KeyMap, title string, cancel func()) *View {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:  s,
		keys:    keys,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		title:   title,
		cancel:  cancel,
	}
}

// Init starts the spinner.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update handles messages for the progress view.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.bar.Width = min(max(msg.Width-10, 10), 60)
		return v, nil

	case tea.KeyMsg:
		if !keymap.Matches(msg.String(), v.keys.Quit) {
			return v, nil
		}
		if v.cancelling || v.cancel == nil {
			return v, tea.Quit
		}
		v.cancelling = true
		v.cancel()
		return v, nil

	case messages.ProgressUpdated:
		v.message = msg.Message
		if msg.Total > 0 {
			v.ratio = msg.Ratio()
		}
		return v, nil

	case messages.WarningRaised:
		v.warnCount++
		v.warnings = append(v.warnings, msg.Message)
		if len(v.warnings) > maxWarnings {
			v.warnings = v.warnings[len(v.warnings)-maxWarnings:]
		}
		return v, nil

	case messages.JobFinished:
		v.done = true
		v.err = msg.Err
		if msg.Err == nil {
			v.ratio = 1
		}
		return v, tea.Quit

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View renders the progress view.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.done && v.err != nil:
		b.WriteString(v.styles.Error.Render("✗ " + v.title + ": " + domain.UserMessage(v.err)))
	case v.done:
		b.WriteString(v.styles.Success.Render("✓ " + v.title))
	case v.cancelling:
		b.WriteString(v.spinner.View() + " " + v.styles.Warning.Render(v.title+": cancelling..."))
	default:
		b.WriteString(v.spinner.View() + " " + v.styles.Title.Render(v.title))
	}
	b.WriteString("\n\n")

	b.WriteString(v.bar.ViewAs(v.ratio))
	b.WriteString("\n")
	if v.message != "" {
		b.WriteString(v.styles.Muted.Render(v.message))
		b.WriteString("\n")
	}

	if len(v.warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%d warning(s)", v.warnCount)))
		b.WriteString("\n")
		for _, w := range v.warnings {
			b.WriteString(v.styles.Warning.Render("  ! " + w))
			b.WriteString("\n")
		}
	}

	if !v.done {
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[q] cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

// Done reports whether the job has finished.
func (v *View) Done() bool {
	return v.done
}

// Cancelling reports whether the user asked to stop the job.
func (v *View) Cancelling() bool {
	return v.cancelling
}

// Ratio returns the displayed completion ratio.
func (v *View) Ratio() float64 {
	return v.ratio
}

// Warnings returns the warnings still on screen.
func (v *View) Warnings() []string {
	return v.warnings
}

// Err returns the job error once finished.
func (v *View) Err() error {
	return v.err
}
