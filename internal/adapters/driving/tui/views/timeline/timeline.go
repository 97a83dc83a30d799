// Package timeline provides the entry list view of a single run.
package timeline

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// View is the timeline view.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	run          *domain.Run
	visible      []domain.Entry
	onlyEnriched bool
	selected     int
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new timeline view.
func NewView(s *styles.Styles, keys *keymap.KeyMap) *View {
	return &View{styles: s, keys: keys}
}

// SetRun replaces the displayed run and resets the cursor.
func (v *View) SetRun(run *domain.Run) {
	v.run = run
	v.selected = 0
	v.scrollOffset = 0
	v.filter()
}

func (v *View) filter() {
	v.visible = v.visible[:0]
	if v.run == nil {
		return
	}
	for _, e := range v.run.Entries {
		if v.onlyEnriched && !e.IsEnriched() {
			continue
		}
		v.visible = append(v.visible, e)
	}
	if v.selected >= len(v.visible) {
		v.selected = max(len(v.visible)-1, 0)
	}
}

// Update handles messages for the timeline view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
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
		if v.selected < len(v.visible)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(k, v.keys.Select):
		if e := v.SelectedEntry(); e != nil {
			entry := *e
			return v, func() tea.Msg { return messages.EntrySelected{Entry: entry} }
		}
	case keymap.Matches(k, v.keys.ToggleEnriched):
		v.onlyEnriched = !v.onlyEnriched
		v.scrollOffset = 0
		v.filter()
	case keymap.Matches(k, v.keys.Insights):
		if v.run != nil && v.run.Insights != nil {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewInsights} }
		}
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewRuns} }
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
	return max(v.height-8, 1)
}

// View renders the timeline.
func (v *View) View() string {
	var b strings.Builder

	if v.run == nil {
		b.WriteString(v.styles.Muted.Render("No run loaded."))
		return b.String()
	}

	title := fmt.Sprintf("%s  %d entries, %d analysed", v.run.ProtocolID, len(v.run.Entries), v.run.EnrichedCount())
	b.WriteString(v.styles.Title.Render(title))
	if v.onlyEnriched {
		b.WriteString(v.styles.Muted.Render("  (analysed only)"))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s  %s", v.run.State, v.run.Source)))
	b.WriteString("\n\n")

	if len(v.visible) == 0 {
		b.WriteString(v.styles.Muted.Render("No entries to show."))
	} else {
		visible := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.visible) && i < v.scrollOffset+visible; i++ {
			b.WriteString(v.renderEntry(i, v.visible[i]))
			b.WriteString("\n")
		}
		if len(v.visible) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, min(v.scrollOffset+visible, len(v.visible)), len(v.visible))))
		}
	}

	b.WriteString("\n\n")
	help := "[↑/↓] navigate  [enter] open  [e] analysed only  [esc] back"
	if v.run.Insights != nil {
		help = "[↑/↓] navigate  [enter] open  [e] analysed only  [i] insights  [esc] back"
	}
	b.WriteString(v.styles.Help.Render(help))
	return b.String()
}

func (v *View) renderEntry(index int, e domain.Entry) string {
	prefix := fmt.Sprintf("#%-4d %-9s ", e.ID, e.SourceLocator)
	width := max(v.width-len(prefix)-4, 20)

	var text string
	if e.IsNote() {
		text = truncate(*e.Note, width)
	} else {
		text = truncate(domain.Deref(e.Questioner, "?")+": "+domain.Deref(e.Question, ""), width)
	}

	tags := ""
	if e.CategoryTags != nil {
		tags = " [" + *e.CategoryTags + "]"
	}

	if index == v.selected {
		return v.styles.Selected.Render("> " + prefix + text + tags)
	}

	line := "  " + v.styles.Muted.Render(prefix)
	if e.IsNote() {
		line += v.styles.Note.Render(text)
	} else {
		line += v.styles.Normal.Render(text)
	}
	return line + v.styles.Tag.Render(tags)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Run returns the displayed run.
func (v *View) Run() *domain.Run {
	return v.run
}

// Visible returns the entries that pass the current filter.
func (v *View) Visible() []domain.Entry {
	return v.visible
}

// SelectedEntry returns the entry under the cursor, or nil.
func (v *View) SelectedEntry() *domain.Entry {
	if v.selected < len(v.visible) {
		return &v.visible[v.selected]
	}
	return nil
}
