package domain

import "time"

// Meeting is a calendar event with its attached note documents, as
// produced by the calendar connector.
type Meeting struct {
	// ID is the calendar event identifier.
	ID string

	// Title is the event summary.
	Title string

	// Description is the event body text.
	Description string

	// StartTime and EndTime bound the occurrence. EndTime is zero for
	// all-day events.
	StartTime time.Time
	EndTime   time.Time

	// Organiser is the event owner's email.
	Organiser string

	// Attendees lists attendee emails.
	Attendees []string

	// Location is the free-text event location.
	Location string

	// HangoutLink is the Meet URL, if the event carries one.
	HangoutLink string

	// DocLinks lists note document URLs found in the description and
	// attachments, de-duplicated.
	DocLinks []string

	// Attachments holds the raw calendar attachments.
	Attachments []Attachment
}

// Attachment is a calendar event attachment.
type Attachment struct {
	// Title is the attachment display name.
	Title string

	// FileURL is the attachment link, when present.
	FileURL string

	// FileID is the Drive file id, when present.
	FileID string
}

// Descriptor derives the series-matching identity from the meeting.
func (m *Meeting) Descriptor() EventDescriptor {
	return EventDescriptor{
		Title:     m.Title,
		Organiser: m.Organiser,
		StartTime: m.StartTime,
		Attendees: m.Attendees,
	}
}

// NoteFile describes one stored notes file, for the listing commands.
type NoteFile struct {
	// Name is the file name within its week directory.
	Name string

	// SizeBytes is the file size.
	SizeBytes int64

	// ModifiedAt is the file's last modification time.
	ModifiedAt time.Time
}

// NoteDocument is one fetched and converted note document belonging to
// a meeting.
type NoteDocument struct {
	// Title is the document title, falling back to the attachment name.
	Title string

	// URL is the original document link.
	URL string

	// DocID is the Drive/Docs file identifier.
	DocID string

	// Content is the converted markdown text.
	Content string
}
