package week

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testMeeting() *domain.Meeting {
	return &domain.Meeting{
		ID:        "event-123",
		Title:     "Team Sync",
		StartTime: time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC),
		Organiser: "alice@co",
		Attendees: []string{"alice@co", "bob@co", "carol@co"},
		DocLinks: []string{
			"https://docs.google.com/document/d/abc",
			"https://docs.google.com/document/d/def",
		},
	}
}

func TestWeekDir(t *testing.T) {
	// 2024-07-15 is a Monday in ISO week 29.
	assert.Equal(t, "2024-W29", WeekDir(testMeeting()))

	// Early January can belong to the previous year's last ISO week.
	boundary := &domain.Meeting{StartTime: time.Date(2027, 1, 1, 9, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2026-W53", WeekDir(boundary))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "meeting_20240715_140000_team_sync.md", FileName(testMeeting()))

	untitled := &domain.Meeting{StartTime: time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)}
	assert.Equal(t, "meeting_20240715_140000.md", FileName(untitled))

	messy := &domain.Meeting{
		StartTime: time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC),
		Title:     "Q3 Review?! (Budget & Planning)",
	}
	assert.Equal(t, "meeting_20240715_140000_q3_review_budget_planning.md", FileName(messy))
}

func TestSave_LayoutAndContent(t *testing.T) {
	store := newStore(t)

	relPath, err := store.Save(context.Background(), testMeeting(), "## Notes\n\nShip v1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("2024-W29", "meeting_20240715_140000_team_sync.md"), relPath)

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), relPath))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "date: 2024-07-15T14:00:00Z")
	assert.Contains(t, content, "title: Team Sync")
	assert.Contains(t, content, "week: 2024-W29")
	assert.Contains(t, content, "meeting_id: event-123")
	assert.Contains(t, content, "organizer: alice@co")
	assert.Contains(t, content, "attendees_count: 3")
	assert.Contains(t, content, "docs_count: 2")
	assert.Contains(t, content, "  - https://docs.google.com/document/d/abc")
	assert.Contains(t, content, "# Team Sync")
	assert.Contains(t, content, "## Notes\n\nShip v1")
}

func TestAlreadyProcessed_SameLinks(t *testing.T) {
	store := newStore(t)
	meeting := testMeeting()
	_, err := store.Save(context.Background(), meeting, "body")
	require.NoError(t, err)

	assert.True(t, store.AlreadyProcessed("event-123", meeting.DocLinks))
}

func TestAlreadyProcessed_SubsetOfLinks(t *testing.T) {
	store := newStore(t)
	_, err := store.Save(context.Background(), testMeeting(), "body")
	require.NoError(t, err)

	// Fewer links than the stored file covers: still processed.
	assert.True(t, store.AlreadyProcessed("event-123",
		[]string{"https://docs.google.com/document/d/abc"}))
}

func TestAlreadyProcessed_NewLinkReprocesses(t *testing.T) {
	store := newStore(t)
	_, err := store.Save(context.Background(), testMeeting(), "body")
	require.NoError(t, err)

	links := append([]string{}, testMeeting().DocLinks...)
	links = append(links, "https://docs.google.com/document/d/new")
	assert.False(t, store.AlreadyProcessed("event-123", links))
}

func TestAlreadyProcessed_UnknownMeeting(t *testing.T) {
	store := newStore(t)
	assert.False(t, store.AlreadyProcessed("missing", nil))
}

func TestListWeeks(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	m1 := testMeeting()
	m2 := testMeeting()
	m2.ID = "event-456"
	m2.StartTime = m2.StartTime.AddDate(0, 0, 7)
	_, err := store.Save(ctx, m1, "a")
	require.NoError(t, err)
	_, err = store.Save(ctx, m2, "b")
	require.NoError(t, err)

	// Stray directories are ignored.
	require.NoError(t, os.Mkdir(filepath.Join(store.BaseDir(), "not-a-week"), 0700))

	weeks, err := store.ListWeeks()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-W29", "2024-W30"}, weeks)
}

func TestListMeetings(t *testing.T) {
	store := newStore(t)
	_, err := store.Save(context.Background(), testMeeting(), "some content")
	require.NoError(t, err)

	files, err := store.ListMeetings("2024-W29")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "meeting_20240715_140000_team_sync.md", files[0].Name)
	assert.Positive(t, files[0].SizeBytes)
	assert.False(t, files[0].ModifiedAt.IsZero())

	missing, err := store.ListMeetings("2024-W99")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestProcessedMeetingIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	m1 := testMeeting()
	m2 := testMeeting()
	m2.ID = "event-456"
	m2.Title = "Other Meeting"
	_, err := store.Save(ctx, m1, "a")
	require.NoError(t, err)
	_, err = store.Save(ctx, m2, "b")
	require.NoError(t, err)

	ids, err := store.ProcessedMeetingIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"event-123": true, "event-456": true}, ids)
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	_, ok := parseFrontmatter("# Just markdown\n\nno frontmatter here")
	assert.False(t, ok)
}
