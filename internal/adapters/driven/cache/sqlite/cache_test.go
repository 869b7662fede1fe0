package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/services/extractor"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := New(filepath.Join(t.TempDir(), "signatures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func signature(t *testing.T, seriesID, date, text string) *domain.Signature {
	t.Helper()
	key := domain.OccurrenceKey{SeriesID: seriesID, Date: date}
	return extractor.New().Extract(key, text)
}

func TestCache_PutAndGet(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	sig := signature(t, "s1", "2024-07-15", "# Goals\n\nShip v1")

	require.NoError(t, cache.Put(ctx, "s1", "2024-07-15", sig))

	got, err := cache.Get(ctx, "s1", "2024-07-15")
	require.NoError(t, err)
	assert.Equal(t, sig.FullHash, got.FullHash)
	assert.Equal(t, "s1", got.OccurrenceKey.SeriesID)
	assert.Len(t, got.Sections, len(sig.Sections))
}

func TestCache_GetMissing(t *testing.T) {
	cache := newCache(t)

	_, err := cache.Get(context.Background(), "s1", "2024-07-15")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCache_PutOverwrites(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "s1", "2024-07-15", signature(t, "s1", "2024-07-15", "old")))
	updated := signature(t, "s1", "2024-07-15", "brand new words")
	require.NoError(t, cache.Put(ctx, "s1", "2024-07-15", updated))

	got, err := cache.Get(ctx, "s1", "2024-07-15")
	require.NoError(t, err)
	assert.Equal(t, updated.FullHash, got.FullHash)
}

func TestCache_RejectsBadKeys(t *testing.T) {
	cache := newCache(t)
	sig := signature(t, "s1", "2024-07-15", "text")

	assert.ErrorIs(t, cache.Put(context.Background(), "", "2024-07-15", sig), domain.ErrInvalidInput)
	assert.ErrorIs(t, cache.Put(context.Background(), "s1", "", sig), domain.ErrInvalidInput)
}

func TestCache_UnsupportedSchemaIsAbsent(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	sig := signature(t, "s1", "2024-07-15", "text")
	sig.SchemaVersion = "2.0"
	require.NoError(t, cache.Put(ctx, "s1", "2024-07-15", sig))

	_, err := cache.Get(ctx, "s1", "2024-07-15")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCache_LatestN(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	for _, date := range []string{"2024-07-22", "2024-07-08", "2024-07-15"} {
		require.NoError(t, cache.Put(ctx, "s1", date, signature(t, "s1", date, "text for "+date)))
	}

	got, err := cache.LatestN(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-07-15", got[0].OccurrenceKey.Date)
	assert.Equal(t, "2024-07-22", got[1].OccurrenceKey.Date)

	all, err := cache.LatestN(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "2024-07-08", all[0].OccurrenceKey.Date)
}

func TestCache_LatestNUnknownSeries(t *testing.T) {
	cache := newCache(t)

	got, err := cache.LatestN(context.Background(), "nope", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_Sweep(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -200).Format("2006-01-02")
	recent := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	require.NoError(t, cache.Put(ctx, "stale", old, signature(t, "stale", old, "old")))
	require.NoError(t, cache.Put(ctx, "active", old, signature(t, "active", old, "old")))
	require.NoError(t, cache.Put(ctx, "active", recent, signature(t, "active", recent, "new")))

	report, err := cache.Sweep(ctx, 180*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, report.RemovedEntries)
	assert.Equal(t, 1, report.RemovedSeries)

	_, err = cache.Get(ctx, "active", recent)
	assert.NoError(t, err)
	_, err = cache.Get(ctx, "stale", old)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCache_Stats(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "a", "2024-07-08", signature(t, "a", "2024-07-08", "one")))
	require.NoError(t, cache.Put(ctx, "a", "2024-07-15", signature(t, "a", "2024-07-15", "two")))
	require.NoError(t, cache.Put(ctx, "b", "2024-07-15", signature(t, "b", "2024-07-15", "three")))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSeries)
	assert.Equal(t, 3, stats.TotalSignatures)
	assert.Positive(t, stats.TotalSizeBytes)
	require.Len(t, stats.Series, 2)
	assert.Equal(t, "a", stats.Series[0].SeriesID)
	assert.Equal(t, "2024-07-08", stats.Series[0].OldestDate)
	assert.Equal(t, "2024-07-15", stats.Series[0].NewestDate)
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signatures.db")
	ctx := context.Background()

	cache, err := New(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "s1", "2024-07-15", signature(t, "s1", "2024-07-15", "text")))
	require.NoError(t, cache.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "s1", "2024-07-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-15", got.OccurrenceKey.Date)
}
