// Package detail provides a scrollable reader for a single entry or
// the key insights of a run.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// reserved lines for title, blank line and help footer.
const chrome = 4

// View is the detail reader.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	viewport viewport.Model

	title   string
	content string
}

// NewView creates a new detail view.
func NewView(s *styles.Styles, keys *keymap.KeyMap) *View {
	return &View{
		styles:   s,
		keys:     keys,
		viewport: viewport.New(80, 20),
	}
}

// SetEntry shows a single timeline entry.
func (v *View) SetEntry(e domain.Entry) {
	v.title = fmt.Sprintf("Entry #%d  %s", e.ID, e.SourceLocator)
	v.setContent(v.renderEntry(e))
}

// SetInsights shows the key insights of a run.
func (v *View) SetInsights(run *domain.Run) {
	v.title = "Key insights  " + run.ProtocolID
	if run.Insights == nil {
		v.setContent(v.styles.Muted.Render("No insights for this run yet."))
		return
	}
	v.setContent(v.renderInsights(run.Insights))
}

func (v *View) setContent(s string) {
	v.content = s
	v.viewport.SetContent(lipgloss.NewStyle().Width(v.viewport.Width).Render(s))
	v.viewport.GotoTop()
}

func (v *View) renderEntry(e domain.Entry) string {
	var b strings.Builder
	if e.IsNote() {
		b.WriteString(v.styles.Subtitle.Render("Note"))
		b.WriteString("\n")
		b.WriteString(v.styles.Note.Render(*e.Note))
		b.WriteString("\n")
		return b.String()
	}

	field := func(label string, value *string) {
		if value == nil {
			return
		}
		b.WriteString(v.styles.Speaker.Render(label))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(*value))
		b.WriteString("\n\n")
	}
	field("Question ("+domain.Deref(e.Questioner, "unknown")+")", e.Question)
	field("Answer ("+domain.Deref(e.Witness, "unknown")+")", e.Answer)

	if !e.IsEnriched() {
		b.WriteString(v.styles.Muted.Render("Not analysed."))
		return b.String()
	}
	field("Core statement", e.CoreStatement)
	if e.CategoryTags != nil {
		b.WriteString(v.styles.Speaker.Render("Categories"))
		b.WriteString("\n")
		b.WriteString(v.styles.Tag.Render(*e.CategoryTags))
		b.WriteString("\n\n")
	}
	field("Justification", e.Justification)
	return b.String()
}

func (v *View) renderInsights(k *domain.KeyInsights) string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(strings.TrimSpace(k.Summary)))
	b.WriteString("\n")
	for i, in := range k.Insights {
		b.WriteString("\n")
		b.WriteString(v.styles.Speaker.Render(fmt.Sprintf("%d. %s", i+1, in.Title)))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(strings.TrimSpace(in.Description)))
		b.WriteString("\n")
		if in.RawReferences != "" {
			b.WriteString(v.styles.Tag.Render("References: " + in.RawReferences))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		if keymap.Matches(msg.String(), v.keys.Back) {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewTimeline} }
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the detail view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.title))
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(
		fmt.Sprintf("[↑/↓] scroll  [pgup/pgdn] page  [esc] back  %3.f%%", v.viewport.ScrollPercent()*100)))
	return b.String()
}

// SetDimensions resizes the viewport and re-wraps the content.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 1)
	if v.content != "" {
		v.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(v.content))
	}
}

// Title returns the current title.
func (v *View) Title() string {
	return v.title
}

// Content returns the unwrapped content.
func (v *View) Content() string {
	return v.content
}
