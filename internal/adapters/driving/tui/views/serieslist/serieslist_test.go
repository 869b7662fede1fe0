package serieslist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driving/tui/messages"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

func sample() []domain.Series {
	return []domain.Series{
		{SeriesID: "a1", NormalisedTitle: "platform weekly", Occurrences: []domain.Occurrence{{Date: "2024-07-08"}}},
		{SeriesID: "b2", NormalisedTitle: "design sync"},
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil)
	v.SetSeries(sample())

	assert.Equal(t, 0, v.SelectedIndex())

	v, _ = v.Update(keyPress('j'))
	assert.Equal(t, 1, v.SelectedIndex())

	// Clamped at the end of the list.
	v, _ = v.Update(keyPress('j'))
	assert.Equal(t, 1, v.SelectedIndex())

	v, _ = v.Update(keyPress('k'))
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_EnterEmitsSelection(t *testing.T) {
	v := NewView(nil)
	v.SetSeries(sample())
	v, _ = v.Update(keyPress('j'))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.SeriesSelected)
	require.True(t, ok)
	assert.Equal(t, "b2", msg.Series.SeriesID)
}

func TestView_EnterOnEmptyListIsNoop(t *testing.T) {
	v := NewView(nil)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_RendersTitlesAndCounts(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(60, 20)
	v.SetSeries(sample())

	out := v.View()
	assert.Contains(t, out, "platform weekly  (1)")
	assert.Contains(t, out, "design sync  (0)")
}

func TestView_EmptyList(t *testing.T) {
	v := NewView(nil)
	assert.Contains(t, v.View(), "No series tracked yet.")
	assert.Nil(t, v.Selected())
}
