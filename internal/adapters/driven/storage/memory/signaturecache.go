package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
)

// Ensure SignatureCache implements the interface.
var _ driven.SignatureCache = (*SignatureCache)(nil)

// SignatureCache is an in-memory implementation of driven.SignatureCache
// for tests. Entries are keyed by series id and occurrence date.
type SignatureCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]domain.Signature
}

// NewSignatureCache creates a new in-memory signature cache.
func NewSignatureCache() *SignatureCache {
	return &SignatureCache{
		entries: make(map[string]map[string]domain.Signature),
	}
}

// Put stores the signature for (seriesID, date), replacing any prior entry.
func (c *SignatureCache) Put(_ context.Context, seriesID, date string, sig *domain.Signature) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[seriesID] == nil {
		c.entries[seriesID] = make(map[string]domain.Signature)
	}
	c.entries[seriesID][date] = *sig
	return nil
}

// Get retrieves the signature for (seriesID, date).
func (c *SignatureCache) Get(_ context.Context, seriesID, date string) (*domain.Signature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sig, ok := c.entries[seriesID][date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := sig
	return &copied, nil
}

// LatestN returns up to n signatures for the series, oldest to newest.
func (c *SignatureCache) LatestN(_ context.Context, seriesID string, n int) ([]domain.Signature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dates := make([]string, 0, len(c.entries[seriesID]))
	for date := range c.entries[seriesID] {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}

	result := make([]domain.Signature, 0, len(dates))
	for _, date := range dates {
		result = append(result, c.entries[seriesID][date])
	}
	return result, nil
}

// Sweep removes entries older than the retention window.
func (c *SignatureCache) Sweep(_ context.Context, retention time.Duration) (domain.SweepReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-retention).Format("2006-01-02")
	var report domain.SweepReport
	for seriesID, dates := range c.entries {
		for date := range dates {
			if date < cutoff {
				delete(dates, date)
				report.RemovedEntries++
			}
		}
		if len(dates) == 0 {
			delete(c.entries, seriesID)
			report.RemovedSeries++
		}
	}
	return report, nil
}

// Stats summarises the cache.
func (c *SignatureCache) Stats(_ context.Context) (domain.CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := domain.CacheStats{}
	seriesIDs := make([]string, 0, len(c.entries))
	for seriesID := range c.entries {
		seriesIDs = append(seriesIDs, seriesID)
	}
	sort.Strings(seriesIDs)

	for _, seriesID := range seriesIDs {
		dates := make([]string, 0, len(c.entries[seriesID]))
		for date := range c.entries[seriesID] {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		if len(dates) == 0 {
			continue
		}

		stats.TotalSeries++
		stats.TotalSignatures += len(dates)
		stats.Series = append(stats.Series, domain.SeriesCacheDetail{
			SeriesID:       seriesID,
			SignatureCount: len(dates),
			OldestDate:     dates[0],
			NewestDate:     dates[len(dates)-1],
		})
	}
	return stats, nil
}
