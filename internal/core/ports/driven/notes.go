package driven

import (
	"context"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// NotesStore organises saved meeting notes on disk, grouped by ISO week.
type NotesStore interface {
	// Save writes the combined notes for a meeting and returns the
	// stored file path relative to the notes directory.
	Save(ctx context.Context, meeting *domain.Meeting, content string) (string, error)

	// AlreadyProcessed reports whether a meeting with the given id has
	// been saved covering the same or a superset of the document links.
	// Different or additional links mean the meeting should reprocess.
	AlreadyProcessed(meetingID string, docLinks []string) bool

	// ListWeeks returns the existing week directories, sorted.
	ListWeeks() ([]string, error)

	// ListMeetings returns the note files in a week, sorted.
	ListMeetings(week string) ([]domain.NoteFile, error)

	// ProcessedMeetingIDs returns the ids of all saved meetings.
	ProcessedMeetingIDs() (map[string]bool, error)
}
