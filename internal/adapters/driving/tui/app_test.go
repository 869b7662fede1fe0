package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/adapters/driven/storage/memory"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/services/extractor"
	"github.com/matburt/meeting-notes-handler/internal/core/services/tracker"
)

// setupApp builds an app over in-memory ports with one resolved series.
func setupApp(t *testing.T) (*App, driven.SignatureCache, string) {
	t.Helper()

	resolver := tracker.New(memory.NewSeriesRegistry(), tracker.DefaultOptions())
	cache := memory.NewSignatureCache()

	res, err := resolver.Resolve(context.Background(), domain.EventDescriptor{
		Title:     "Platform Weekly",
		Organiser: "lead@example.com",
		StartTime: time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	app, err := NewApp(&Ports{Resolver: resolver, Cache: cache}, nil)
	require.NoError(t, err)
	return app, cache, res.SeriesID
}

func TestNewApp(t *testing.T) {
	t.Run("nil resolver returns error", func(t *testing.T) {
		app, err := NewApp(&Ports{Cache: memory.NewSignatureCache()}, nil)
		require.Error(t, err)
		assert.Nil(t, app)
		assert.ErrorIs(t, err, ErrMissingResolver)
	})

	t.Run("nil cache returns error", func(t *testing.T) {
		resolver := tracker.New(memory.NewSeriesRegistry(), tracker.DefaultOptions())
		app, err := NewApp(&Ports{Resolver: resolver}, nil)
		require.Error(t, err)
		assert.Nil(t, app)
		assert.ErrorIs(t, err, ErrMissingCache)
	})

	t.Run("valid ports creates app", func(t *testing.T) {
		app, _, _ := setupApp(t)
		assert.NotNil(t, app)
		assert.False(t, app.Ready())
	})
}

func TestApp_WindowSizeReadiesApp(t *testing.T) {
	app, _, _ := setupApp(t)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := model.(*App)

	assert.True(t, updated.Ready())
	assert.NotEqual(t, "Initialising...", updated.View())
}

func TestApp_SeriesLoadedShowsFirstSeries(t *testing.T) {
	app, _, seriesID := setupApp(t)
	app.SetDimensions(120, 40)

	model, cmd := app.Update(app.loadSeries()())
	updated := model.(*App)

	require.NotNil(t, updated.detailView.Series())
	assert.Equal(t, seriesID, updated.detailView.Series().SeriesID)
	// A diff load is scheduled for the selected series.
	assert.NotNil(t, cmd)
	assert.Contains(t, updated.View(), "platform weekly")
}

func TestApp_QuitKey(t *testing.T) {
	app, _, _ := setupApp(t)
	app.SetDimensions(120, 40)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_DiffLoadedReachesDetail(t *testing.T) {
	app, cache, seriesID := setupApp(t)
	app.SetDimensions(120, 40)

	ext := extractor.New()
	sig1 := ext.Extract(domain.OccurrenceKey{SeriesID: seriesID, Date: "2024-07-08"},
		"# Notes\n\nFirst week content.\n")
	sig2 := ext.Extract(domain.OccurrenceKey{SeriesID: seriesID, Date: "2024-07-15"},
		"# Notes\n\nFirst week content.\n\nSecond week addition.\n")
	require.NoError(t, cache.Put(context.Background(), seriesID, "2024-07-08", sig1))
	require.NoError(t, cache.Put(context.Background(), seriesID, "2024-07-15", sig2))

	// Select the series, then run the scheduled diff command.
	model, _ := app.Update(app.loadSeries()())
	updated := model.(*App)
	diffMsg := updated.loadDiff(seriesID)()

	model, _ = updated.Update(diffMsg)
	updated = model.(*App)

	assert.Contains(t, updated.detailView.DiffSummary(), "2024-07-08 vs 2024-07-15")
	assert.Contains(t, updated.detailView.DiffSummary(), "paragraphs added: 1")
}
