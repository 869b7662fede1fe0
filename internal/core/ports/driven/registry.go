package driven

import (
	"context"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// SeriesRegistry persists the recognised meeting series.
// The registry file as a whole is a single shared resource: implementations
// serialise the read-modify-write of the file behind one writer lock and
// persist atomically, so a crash mid-write never leaves a torn registry.
type SeriesRegistry interface {
	// Get retrieves a series by id.
	// Returns domain.ErrNotFound when the series does not exist.
	Get(ctx context.Context, seriesID string) (*domain.Series, error)

	// List returns all registered series, ordered by series id.
	List(ctx context.Context) ([]domain.Series, error)

	// Save stores or updates a series record atomically.
	Save(ctx context.Context, series *domain.Series) error

	// Path returns the registry file location, for reporting.
	Path() string
}
