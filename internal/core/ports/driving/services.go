package driving

import (
	"context"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// SeriesResolver maps event descriptors onto recurring series.
type SeriesResolver interface {
	// Resolve matches the descriptor against the registry, creating a
	// new series when no candidate qualifies. With no usable signal the
	// resolver falls back to a new series rather than guessing: a false
	// new series costs storage, a false merge corrupts history.
	Resolve(ctx context.Context, desc domain.EventDescriptor) (domain.Resolution, error)

	// RecordOccurrence appends a dated occurrence to a series,
	// deduplicated by date.
	RecordOccurrence(ctx context.Context, seriesID, date, filePath string) error

	// Get retrieves one series record.
	Get(ctx context.Context, seriesID string) (*domain.Series, error)

	// List returns all tracked series.
	List(ctx context.Context) ([]domain.Series, error)
}

// DocumentFilter is the smart-filter orchestrator: classify each
// document, diff persistent ones against their series history and keep
// only genuinely new content.
type DocumentFilter interface {
	// Process filters all documents of one meeting.
	Process(ctx context.Context, meeting *domain.Meeting, docs []domain.NoteDocument) (*domain.FilterResult, error)
}

// CacheAdmin exposes signature cache maintenance to the CLI and MCP
// surfaces.
type CacheAdmin interface {
	// Stats summarises the cache.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Sweep removes entries older than the retention window.
	Sweep(ctx context.Context, retention time.Duration) (domain.SweepReport, error)
}
