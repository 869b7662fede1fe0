package driven

import (
	"context"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// FetchOptions controls a calendar scan.
type FetchOptions struct {
	// Since bounds the scan window: events starting at or after this
	// instant are considered.
	Since time.Time

	// AcceptedOnly skips events the authenticated user has declined.
	// Organising an event counts as attending.
	AcceptedOnly bool

	// GeminiOnly keeps only documents whose title or URL marks them as
	// Gemini notes or transcripts.
	GeminiOnly bool
}

// MeetingSource discovers recent meetings with attached note documents.
// Implemented by the Google Calendar connector.
type MeetingSource interface {
	// FetchRecent returns meetings in the window, ordered by start time.
	FetchRecent(ctx context.Context, opts FetchOptions) ([]domain.Meeting, error)
}
