package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// saveTestNotes stores one meeting's notes and returns the week it
// landed in.
func saveTestNotes(t *testing.T) string {
	t.Helper()

	meeting := &domain.Meeting{
		ID:        "evt-1",
		Title:     "Platform Weekly",
		StartTime: time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC),
	}
	_, err := notesStore.Save(context.Background(), meeting, "## Platform Weekly\n\nNotes body.")
	require.NoError(t, err)

	weeks, err := notesStore.ListWeeks()
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	return weeks[0]
}

func TestWeeksCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "weeks")
	require.NoError(t, err)
	assert.Contains(t, out, "No meeting notes saved yet.")
}

func TestWeeksCmd_ListsWeeks(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	week := saveTestNotes(t)

	out, err := execute(t, "weeks")
	require.NoError(t, err)

	assert.Contains(t, out, "WEEK")
	assert.Contains(t, out, week)
	assert.Contains(t, out, "1")
}

func TestMeetingsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "meetings", "2024-W01")
	require.NoError(t, err)
	assert.Contains(t, out, "No meeting notes in 2024-W01.")
}

func TestMeetingsCmd_ListsFiles(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	week := saveTestNotes(t)

	out, err := execute(t, "meetings", week)
	require.NoError(t, err)

	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, ".md")
	assert.Contains(t, out, "B")
}

func TestMeetingsCmd_RequiresWeekArg(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "meetings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
