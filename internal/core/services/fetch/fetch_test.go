package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/notes/week"
	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/storage/memory"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/services/filter"
	"github.com/matburt/meeting-notes-handler/internal/core/services/tracker"
	"github.com/matburt/meeting-notes-handler/internal/normalisers/markdown"
)

// stubSource returns a fixed meeting list.
type stubSource struct {
	meetings []domain.Meeting
	lastOpts driven.FetchOptions
}

func (s *stubSource) FetchRecent(_ context.Context, opts driven.FetchOptions) ([]domain.Meeting, error) {
	s.lastOpts = opts
	return s.meetings, nil
}

// stubConverter serves canned content by document id.
type stubConverter struct {
	content map[string]string
	titles  map[string]string
}

func (c *stubConverter) DocIDFromURL(url string) string {
	_, id, ok := strings.Cut(url, "/d/")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "/")
	return id
}

func (c *stubConverter) ToMarkdown(_ context.Context, docID string) (string, driven.DocMeta, error) {
	content, ok := c.content[docID]
	if !ok {
		return "", driven.DocMeta{DocID: docID}, domain.ErrNotFound
	}
	return content, driven.DocMeta{Title: c.titles[docID], DocID: docID}, nil
}

func docURL(id string) string {
	return "https://docs.google.com/document/d/" + id + "/edit"
}

func testMeeting(id string, start time.Time, links ...string) domain.Meeting {
	return domain.Meeting{
		ID:        id,
		Title:     "Team Sync",
		StartTime: start,
		Organiser: "alice@co",
		Attendees: []string{"alice@co", "bob@co"},
		DocLinks:  links,
	}
}

// setupFetch wires the pipeline over real stores and stub connectors.
func setupFetch(t *testing.T, source *stubSource, converter *stubConverter) (*Service, *week.Store) {
	t.Helper()

	notes, err := week.NewStore(t.TempDir())
	require.NoError(t, err)

	resolver := tracker.New(memory.NewSeriesRegistry(), tracker.DefaultOptions())
	docFilter := filter.New(resolver, memory.NewSignatureCache())

	return New(source, converter, notes, docFilter, resolver, markdown.New()), notes
}

func TestFetch_SavesNotes(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("doc1")),
	}}
	converter := &stubConverter{
		content: map[string]string{"doc1": "# Plan\n\nShip the beta"},
		titles:  map[string]string{"doc1": "Project Plan"},
	}
	svc, notes := setupFetch(t, source, converter)

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.WithNotes)
	assert.Equal(t, 1, summary.TotalDocs)
	assert.Empty(t, summary.Errors)
	require.Len(t, summary.SavedFiles, 1)

	data, err := os.ReadFile(filepath.Join(notes.BaseDir(), summary.SavedFiles[0]))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Project Plan")
	assert.Contains(t, string(data), "Ship the beta")
}

func TestFetch_SkipsAlreadyProcessed(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("doc1")),
	}}
	converter := &stubConverter{content: map[string]string{"doc1": "notes"}}
	svc, _ := setupFetch(t, source, converter)
	ctx := context.Background()

	_, err := svc.Fetch(ctx, Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)

	second, err := svc.Fetch(ctx, Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Found)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Processed)

	// Force reprocesses.
	forced, err := svc.Fetch(ctx, Options{Since: start.AddDate(0, 0, -7), Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, forced.Processed)
}

func TestFetch_SkipsMeetingsWithoutDocuments(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start),
	}}
	svc, _ := setupFetch(t, source, &stubConverter{})

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, summary.Errors)
}

func TestFetch_CollectsConversionErrors(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("missing")),
	}}
	svc, _ := setupFetch(t, source, &stubConverter{})

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "missing")
}

func TestFetch_PartialConversionStillSaves(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("doc1"), docURL("broken")),
	}}
	converter := &stubConverter{
		content: map[string]string{"doc1": "good content"},
		titles:  map[string]string{"doc1": "Notes"},
	}
	svc, _ := setupFetch(t, source, converter)

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.WithNotes)
	assert.Equal(t, 1, summary.TotalDocs)
	require.Len(t, summary.Errors, 1)
}

func TestFetch_DryRunSavesNothing(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("doc1")),
	}}
	converter := &stubConverter{content: map[string]string{"doc1": "notes"}}
	svc, notes := setupFetch(t, source, converter)

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7), DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.WithNotes)
	assert.Empty(t, summary.SavedFiles)

	weeks, err := notes.ListWeeks()
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestFetch_TitleFallsBackToMarkdownHeading(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("doc1")),
	}}
	converter := &stubConverter{content: map[string]string{"doc1": "# Launch Review\n\nbody"}}
	svc, notes := setupFetch(t, source, converter)

	summary, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7)})
	require.NoError(t, err)
	require.Len(t, summary.SavedFiles, 1)

	data, err := os.ReadFile(filepath.Join(notes.BaseDir(), summary.SavedFiles[0]))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Launch Review")
}

func TestFetch_SmartFilterReducesRepeatContent(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	shared := "# Project Plan\n\nGoals for the quarter remain stable here."

	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("plan")),
	}}
	converter := &stubConverter{
		content: map[string]string{"plan": shared},
		titles:  map[string]string{"plan": "Project Plan"},
	}
	svc, _ := setupFetch(t, source, converter)
	ctx := context.Background()

	opts := Options{Since: start.AddDate(0, 0, -7), SmartFilter: true}
	first, err := svc.Fetch(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.WithNotes)

	// Next week, same document content: the note records it unchanged.
	source.meetings = []domain.Meeting{
		testMeeting("evt-2", start.AddDate(0, 0, 7), docURL("plan")),
	}
	second, err := svc.Fetch(ctx, Options{Since: start, SmartFilter: true, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, second.WithNotes)
	assert.Positive(t, second.OriginalWords)
	assert.Zero(t, second.FilteredWords)
}

func TestFetch_SmartFilterRecordsOccurrences(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{meetings: []domain.Meeting{
		testMeeting("evt-1", start, docURL("plan")),
	}}
	converter := &stubConverter{
		content: map[string]string{"plan": "# Plan\n\ncontent"},
		titles:  map[string]string{"plan": "Plan"},
	}
	svc, _ := setupFetch(t, source, converter)

	_, err := svc.Fetch(context.Background(), Options{Since: start.AddDate(0, 0, -7), SmartFilter: true})
	require.NoError(t, err)

	series, err := svc.resolver.List(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Len(t, series[0].Occurrences, 1)
	assert.Equal(t, "2024-07-15", series[0].Occurrences[0].Date)
}

func TestFetch_SmartFilterWithoutDepsRejected(t *testing.T) {
	svc := New(&stubSource{}, &stubConverter{}, nil, nil, nil, markdown.New())

	_, err := svc.Fetch(context.Background(), Options{SmartFilter: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetch_PassesOptionsToSource(t *testing.T) {
	start := time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC)
	source := &stubSource{}
	svc, _ := setupFetch(t, source, &stubConverter{})

	_, err := svc.Fetch(context.Background(), Options{
		Since:        start,
		AcceptedOnly: true,
		GeminiOnly:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, start, source.lastOpts.Since)
	assert.True(t, source.lastOpts.AcceptedOnly)
	assert.True(t, source.lastOpts.GeminiOnly)
}
