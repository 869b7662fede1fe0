// Package serieslist provides the navigable series list pane for the TUI.
package serieslist

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/messages"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/styles"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// View displays tracked series in a navigable list.
type View struct {
	series   []domain.Series
	selected int
	styles   *styles.Styles
	width    int
	height   int
	err      error
}

// NewView creates a new series list view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  40,
		height: 20,
	}
}

// SetSeries replaces the list content, clamping the selection.
func (v *View) SetSeries(series []domain.Series) {
	v.series = series
	if v.selected >= len(series) {
		v.selected = 0
	}
	v.err = nil
}

// SetError records a load failure to display instead of the list.
func (v *View) SetError(err error) {
	v.err = err
}

// Update handles navigation key presses.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.series)-1 {
			v.selected++
		}
	case "enter":
		if len(v.series) == 0 {
			return v, nil
		}
		chosen := v.series[v.selected]
		return v, func() tea.Msg {
			return messages.SeriesSelected{Series: chosen}
		}
	}
	return v, nil
}

// View renders the list pane content.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Series"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err)))
		return b.String()
	}
	if len(v.series) == 0 {
		b.WriteString(v.styles.Muted.Render("No series tracked yet."))
		return b.String()
	}

	visible := v.height - 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}

	for i := start; i < len(v.series) && i < start+visible; i++ {
		s := v.series[i]
		line := fmt.Sprintf("%s  (%d)", title(s), len(s.Occurrences))
		if len(line) > v.width-4 && v.width > 7 {
			line = line[:v.width-7] + "..."
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the pane dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Selected returns the highlighted series, or nil when the list is empty.
func (v *View) Selected() *domain.Series {
	if len(v.series) == 0 {
		return nil
	}
	return &v.series[v.selected]
}

// SelectedIndex returns the highlighted row index.
func (v *View) SelectedIndex() int {
	return v.selected
}

func title(s domain.Series) string {
	if s.NormalisedTitle != "" {
		return s.NormalisedTitle
	}
	return s.SeriesID
}
