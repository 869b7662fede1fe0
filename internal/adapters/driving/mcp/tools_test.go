package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/storage/memory"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/services/extractor"
	"github.com/matburt/meeting-notes-handler/internal/core/services/tracker"
)

// setupServer builds a server over in-memory ports with one resolved
// series, returning the server and the series id.
func setupServer(t *testing.T) (*Server, driven.SignatureCache, string) {
	t.Helper()

	resolver := tracker.New(memory.NewSeriesRegistry(), tracker.DefaultOptions())
	cache := memory.NewSignatureCache()

	res, err := resolver.Resolve(context.Background(), domain.EventDescriptor{
		Title:     "Platform Weekly",
		Organiser: "lead@example.com",
		StartTime: time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC),
		Attendees: []string{"lead@example.com", "dev@example.com"},
	})
	require.NoError(t, err)

	server, err := NewServer(&Ports{Resolver: resolver, Cache: cache}, nil)
	require.NoError(t, err)
	return server, cache, res.SeriesID
}

// putSignature extracts and caches a signature for (seriesID, date).
func putSignature(t *testing.T, cache driven.SignatureCache, seriesID, date, text string) {
	t.Helper()
	sig := extractor.New().Extract(domain.OccurrenceKey{SeriesID: seriesID, Date: date}, text)
	require.NoError(t, cache.Put(context.Background(), seriesID, date, sig))
}

func TestServer_handleListSeries(t *testing.T) {
	server, _, seriesID := setupServer(t)

	_, output, err := server.handleListSeries(context.Background(), nil, struct{}{})
	require.NoError(t, err)

	assert.Equal(t, 1, output.Count)
	require.Len(t, output.Series, 1)
	assert.Equal(t, seriesID, output.Series[0].SeriesID)
	assert.Equal(t, "platform weekly", output.Series[0].Title)
	assert.Equal(t, "lead@example.com", output.Series[0].Organiser)
	assert.Equal(t, "MON-09:00", output.Series[0].Schedule)
}

func TestServer_handleGetSeries(t *testing.T) {
	server, _, seriesID := setupServer(t)

	t.Run("returns the series record", func(t *testing.T) {
		_, output, err := server.handleGetSeries(context.Background(), nil, GetSeriesInput{SeriesID: seriesID})
		require.NoError(t, err)
		assert.Equal(t, seriesID, output.Series.SeriesID)
		assert.Equal(t, "lead@example.com", output.Series.Organiser)
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, _, err := server.handleGetSeries(context.Background(), nil, GetSeriesInput{SeriesID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleDiffOccurrences(t *testing.T) {
	server, cache, seriesID := setupServer(t)

	putSignature(t, cache, seriesID, "2024-07-08",
		"# Notes\n\nShipping plan reviewed with the team.\n")
	putSignature(t, cache, seriesID, "2024-07-15",
		"# Notes\n\nShipping plan reviewed with the team.\n\nNew incident process agreed for the rollout.\n")

	t.Run("reports added paragraphs", func(t *testing.T) {
		_, output, err := server.handleDiffOccurrences(context.Background(), nil, DiffOccurrencesInput{
			SeriesID: seriesID,
			OldDate:  "2024-07-08",
			NewDate:  "2024-07-15",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, output.Added)
		assert.Zero(t, output.Removed)
		assert.False(t, output.Unchanged)
		assert.Contains(t, output.Summary, "paragraphs added: 1")
	})

	t.Run("identical occurrences are unchanged", func(t *testing.T) {
		putSignature(t, cache, seriesID, "2024-07-22",
			"# Notes\n\nShipping plan reviewed with the team.\n\nNew incident process agreed for the rollout.\n")

		_, output, err := server.handleDiffOccurrences(context.Background(), nil, DiffOccurrencesInput{
			SeriesID: seriesID,
			OldDate:  "2024-07-15",
			NewDate:  "2024-07-22",
		})
		require.NoError(t, err)
		assert.True(t, output.Unchanged)
		assert.InDelta(t, 1.0, output.SimilarityRatio, 0.001)
	})

	t.Run("missing occurrence returns not found", func(t *testing.T) {
		_, _, err := server.handleDiffOccurrences(context.Background(), nil, DiffOccurrencesInput{
			SeriesID: seriesID,
			OldDate:  "2024-01-01",
			NewDate:  "2024-07-15",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleGetNewContent(t *testing.T) {
	server, cache, seriesID := setupServer(t)

	putSignature(t, cache, seriesID, "2024-07-08",
		"# Notes\n\nShipping plan reviewed with the team.\n")
	putSignature(t, cache, seriesID, "2024-07-15",
		"# Notes\n\nShipping plan reviewed with the team.\n\nNew incident process agreed for the rollout.\n")

	t.Run("renders only the added content", func(t *testing.T) {
		_, output, err := server.handleGetNewContent(context.Background(), nil, GetNewContentInput{
			SeriesID: seriesID,
			Date:     "2024-07-15",
		})
		require.NoError(t, err)

		assert.Equal(t, "2024-07-08", output.PreviousDate)
		assert.Contains(t, output.Markdown, "New incident process")
		assert.NotContains(t, output.Markdown, "Shipping plan reviewed")
	})

	t.Run("first occurrence is all new", func(t *testing.T) {
		_, output, err := server.handleGetNewContent(context.Background(), nil, GetNewContentInput{
			SeriesID: seriesID,
			Date:     "2024-07-08",
		})
		require.NoError(t, err)

		assert.Empty(t, output.PreviousDate)
		assert.Contains(t, output.Markdown, "Shipping plan reviewed")
	})
}

func TestServer_handleCacheStats(t *testing.T) {
	server, cache, seriesID := setupServer(t)
	putSignature(t, cache, seriesID, "2024-07-08", "# Notes\n\nOne paragraph.\n")

	_, output, err := server.handleCacheStats(context.Background(), nil, struct{}{})
	require.NoError(t, err)

	assert.Equal(t, 1, output.Stats.TotalSeries)
	assert.Equal(t, 1, output.Stats.TotalSignatures)
}
