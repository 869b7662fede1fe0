package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Series represents a recognised recurring meeting.
// It is persisted in the series registry as JSON; the tags are the
// on-disk contract.
type Series struct {
	// SeriesID is the stable identifier, immutable once assigned.
	SeriesID string `json:"series_id"`

	// NormalisedTitle is the lowercase, punctuation-stripped title
	// used for fuzzy matching.
	NormalisedTitle string `json:"normalized_title"` //nolint:misspell // persisted key uses American spelling

	// Organiser is the exact-match identity of the meeting owner.
	Organiser string `json:"organizer"` //nolint:misspell // persisted key uses American spelling

	// SchedulePattern is the coarse recurrence slot, e.g. "MON-09:00".
	SchedulePattern string `json:"schedule_pattern"`

	// AttendeeFingerprint is an order-independent hash of the sorted
	// attendee list at first sighting.
	AttendeeFingerprint string `json:"attendee_fingerprint"`

	// FirstSeen is when the series was first recognised.
	FirstSeen time.Time `json:"first_seen"`

	// LastSeen is the start time of the most recent matched occurrence.
	LastSeen time.Time `json:"last_seen"`

	// Occurrences lists the dated instances of this series, append-only
	// and ordered oldest first.
	Occurrences []Occurrence `json:"occurrences"`

	// Confidence is a running score in [0,1] reflecting how strongly
	// past occurrences matched this series.
	Confidence float64 `json:"confidence"`
}

// Occurrence is one dated instance of a series.
type Occurrence struct {
	// Date is the occurrence date in YYYY-MM-DD form.
	Date string `json:"date"`

	// FilePath points at the stored notes file, relative to the notes
	// directory. Empty until the file is written.
	FilePath string `json:"file_path"`
}

// HasOccurrence reports whether the series already records the date.
func (s *Series) HasOccurrence(date string) bool {
	for _, occ := range s.Occurrences {
		if occ.Date == date {
			return true
		}
	}
	return false
}

// EventDescriptor carries the calendar-derived identity of one meeting
// occurrence, as handed in by the fetch collaborators.
type EventDescriptor struct {
	// Title is the raw calendar event title.
	Title string

	// Organiser is the event owner's identity (email).
	Organiser string

	// StartTime is the scheduled start of this occurrence.
	StartTime time.Time

	// Attendees lists attendee identities (emails).
	Attendees []string
}

// Date returns the occurrence date in YYYY-MM-DD form.
func (d EventDescriptor) Date() string {
	return d.StartTime.Format("2006-01-02")
}

// SchedulePattern returns the coarse recurrence slot for the descriptor,
// weekday plus start time rounded to the minute, e.g. "MON-09:00".
func (d EventDescriptor) SchedulePattern() string {
	return strings.ToUpper(d.StartTime.Format("Mon")) + "-" + d.StartTime.Format("15:04")
}

// AttendeeFingerprint returns an order-independent digest of the
// attendee list: attendees are lowercased, sorted, joined and hashed.
// Returns "" for an empty list.
func (d EventDescriptor) AttendeeFingerprint() string {
	cleaned := make([]string, 0, len(d.Attendees))
	for _, a := range d.Attendees {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	sort.Strings(cleaned)

	sum := sha256.Sum256([]byte(strings.Join(cleaned, "|")))
	return hex.EncodeToString(sum[:])[:8]
}

// Resolution is the outcome of resolving an event descriptor to a series.
type Resolution struct {
	// SeriesID is the matched or newly created series identity.
	SeriesID string

	// Created is true when no existing series qualified and a new one
	// was synthesised.
	Created bool

	// MatchScore is the title similarity against the chosen series.
	// 1.0 for a newly created series.
	MatchScore float64

	// Confidence is the series' running confidence after this resolution.
	Confidence float64
}
