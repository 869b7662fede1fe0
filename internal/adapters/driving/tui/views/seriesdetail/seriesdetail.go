// Package seriesdetail provides the series detail pane for the TUI.
// It shows the series record, its occurrences and a diff summary of the
// two most recent cached signatures.
package seriesdetail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/messages"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/styles"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// View is the series detail pane.
type View struct {
	styles *styles.Styles

	series       *domain.Series
	diffSummary  string
	diffErr      error
	lines        []string
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new series detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  60,
		height: 20,
	}
}

// SetSeries replaces the displayed series and resets the scroll position.
func (v *View) SetSeries(series *domain.Series) {
	v.series = series
	v.diffSummary = ""
	v.diffErr = nil
	v.scrollOffset = 0
	v.rebuild()
}

// Update handles scroll keys and diff results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup", "ctrl+u":
			v.scrollOffset -= v.visibleLines()
			if v.scrollOffset < 0 {
				v.scrollOffset = 0
			}
		case "pgdown", "ctrl+d":
			if max := v.maxScrollOffset(); v.scrollOffset+v.visibleLines() <= max {
				v.scrollOffset += v.visibleLines()
			} else {
				v.scrollOffset = max
			}
		}
		return v, nil

	case messages.DiffLoaded:
		if v.series == nil || msg.SeriesID != v.series.SeriesID {
			return v, nil
		}
		v.diffSummary = msg.Summary
		v.diffErr = msg.Err
		v.rebuild()
		return v, nil
	}
	return v, nil
}

// rebuild regenerates the scrollable line buffer.
func (v *View) rebuild() {
	v.lines = nil
	if v.series == nil {
		return
	}
	s := v.series

	add := func(format string, args ...any) {
		v.lines = append(v.lines, fmt.Sprintf(format, args...))
	}
	add("Series:      %s", s.SeriesID)
	add("Title:       %s", s.NormalisedTitle)
	add("Organiser:   %s", s.Organiser)
	add("Schedule:    %s", s.SchedulePattern)
	add("First seen:  %s", s.FirstSeen.Format("2006-01-02"))
	add("Last seen:   %s", s.LastSeen.Format("2006-01-02"))
	add("Confidence:  %.2f", s.Confidence)
	add("")

	add("Occurrences (%d):", len(s.Occurrences))
	for _, occ := range s.Occurrences {
		if occ.FilePath != "" {
			add("  %s  %s", occ.Date, occ.FilePath)
		} else {
			add("  %s", occ.Date)
		}
	}
	add("")

	switch {
	case v.diffErr != nil:
		add("Latest diff: error: %v", v.diffErr)
	case v.diffSummary != "":
		add("Latest diff:")
		v.lines = append(v.lines, strings.Split(v.diffSummary, "\n")...)
	default:
		add("Latest diff: (no cached signatures)")
	}
}

// lineStyle picks the style for a rendered line. Diff summary lines
// reporting added or removed paragraphs get the diff colours.
func (v *View) lineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "paragraphs added"):
		return v.styles.DiffAdded
	case strings.HasPrefix(line, "paragraphs removed"):
		return v.styles.DiffRemoved
	}
	return v.styles.Normal
}

func (v *View) visibleLines() int {
	available := v.height - 3
	if available < 1 {
		available = 1
	}
	return available
}

func (v *View) maxScrollOffset() int {
	max := len(v.lines) - v.visibleLines()
	if max < 0 {
		max = 0
	}
	return max
}

// View renders the detail pane content.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Detail"))
	b.WriteString("\n\n")

	if v.series == nil {
		b.WriteString(v.styles.Muted.Render("Select a series to inspect it."))
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.lineStyle(v.lines[i]).Render(v.lines[i]))
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the pane dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Series returns the displayed series.
func (v *View) Series() *domain.Series {
	return v.series
}

// DiffSummary returns the rendered diff summary, for tests.
func (v *View) DiffSummary() string {
	return v.diffSummary
}
