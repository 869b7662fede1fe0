package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
)

// Ensure SeriesRegistry implements the interface.
var _ driven.SeriesRegistry = (*SeriesRegistry)(nil)

// SeriesRegistry is an in-memory implementation of driven.SeriesRegistry,
// used by tests and as a fallback when no registry file is configured.
type SeriesRegistry struct {
	mu     sync.RWMutex
	series map[string]domain.Series
}

// NewSeriesRegistry creates a new in-memory series registry.
func NewSeriesRegistry() *SeriesRegistry {
	return &SeriesRegistry{
		series: make(map[string]domain.Series),
	}
}

// Get retrieves a series by id.
func (r *SeriesRegistry) Get(_ context.Context, seriesID string) (*domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	series, ok := r.series[seriesID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := series
	copied.Occurrences = append([]domain.Occurrence(nil), series.Occurrences...)
	return &copied, nil
}

// List returns all registered series, ordered by series id.
func (r *SeriesRegistry) List(_ context.Context) ([]domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Series, 0, len(r.series))
	for _, series := range r.series {
		result = append(result, series)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeriesID < result[j].SeriesID })
	return result, nil
}

// Save stores or updates a series record.
func (r *SeriesRegistry) Save(_ context.Context, series *domain.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *series
	copied.Occurrences = append([]domain.Occurrence(nil), series.Occurrences...)
	r.series[series.SeriesID] = copied
	return nil
}

// Path returns a placeholder location.
func (r *SeriesRegistry) Path() string {
	return ":memory:"
}
