package driven

import (
	"context"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// SignatureCache persists compressed content signatures keyed by series
// and occurrence date. Implementations replace blobs atomically: a Put
// for an existing key overwrites, and readers never observe a
// partially-written blob. A corrupted or unreadable blob is reported as
// absent with a warning, never as a fatal error.
type SignatureCache interface {
	// Put stores the signature for (seriesID, date), replacing any
	// prior blob for the same key. Idempotent.
	Put(ctx context.Context, seriesID, date string, sig *domain.Signature) error

	// Get retrieves the signature for (seriesID, date).
	// Returns domain.ErrNotFound when absent or unreadable.
	Get(ctx context.Context, seriesID, date string) (*domain.Signature, error)

	// LatestN returns up to n signatures for the series, ordered
	// oldest to newest. Corrupt entries are skipped.
	LatestN(ctx context.Context, seriesID string, n int) ([]domain.Signature, error)

	// Sweep removes entries older than the retention window and any
	// per-series containers the removal leaves empty. Safe to run
	// concurrently with Put/Get for other series.
	Sweep(ctx context.Context, retention time.Duration) (domain.SweepReport, error)

	// Stats summarises the cache for operational reporting.
	Stats(ctx context.Context) (domain.CacheStats, error)
}
