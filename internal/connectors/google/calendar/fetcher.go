// Package calendar discovers recent Google Meet meetings and their
// attached note documents through the Calendar API.
package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/matburt/meeting-notes-handler/internal/connectors/google"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.MeetingSource = (*Fetcher)(nil)

const pageSize = 100

// Config tunes meeting discovery.
type Config struct {
	// CalendarID names the calendar to scan, "primary" when empty.
	CalendarID string

	// MeetKeywords mark an event as a Meet meeting when found in its
	// description or location.
	MeetKeywords []string

	// GeminiKeywords mark an attachment as Gemini notes or a
	// transcript, matched against the attachment title.
	GeminiKeywords []string
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{
		CalendarID:     "primary",
		MeetKeywords:   []string{"meet.google.com", "Google Meet"},
		GeminiKeywords: []string{"Notes by Gemini", "Meeting notes", "Transcript"},
	}
}

// Fetcher is the Calendar-backed implementation of driven.MeetingSource.
type Fetcher struct {
	service *calendar.Service
	limiter *google.RateLimiter
	cfg     Config
}

// NewFetcher creates a meeting fetcher over an authenticated Calendar
// service.
func NewFetcher(service *calendar.Service, cfg Config) *Fetcher {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	return &Fetcher{
		service: service,
		limiter: google.NewRateLimiter(google.ServiceCalendar),
		cfg:     cfg,
	}
}

// FetchRecent returns Meet meetings in the window, ordered by start time.
func (f *Fetcher) FetchRecent(ctx context.Context, opts driven.FetchOptions) ([]domain.Meeting, error) {
	logger.Info("fetching meetings since %s", opts.Since.Format("2006-01-02"))

	var meetings []domain.Meeting
	pageToken := ""
	for {
		var page *calendar.Events
		err := google.Call(ctx, f.limiter, func() error {
			call := f.service.Events.List(f.cfg.CalendarID).
				TimeMin(opts.Since.Format(time.RFC3339)).
				TimeMax(time.Now().Format(time.RFC3339)).
				SingleEvents(true).
				OrderBy("startTime").
				MaxResults(pageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list calendar events: %w", err)
		}

		for _, event := range page.Items {
			if event == nil || event.Id == "" {
				continue
			}
			if !f.isMeetMeeting(event) {
				continue
			}
			if opts.AcceptedOnly && !isAttending(event) {
				logger.Debug("skipping declined meeting %q", event.Summary)
				continue
			}
			meetings = append(meetings, f.toMeeting(event, opts.GeminiOnly))
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	logger.Info("found %d meetings", len(meetings))
	return meetings, nil
}

// isMeetMeeting reports whether an event is a Google Meet meeting:
// configured keywords in the description or location, a Meet conference
// solution, or a hangout link.
func (f *Fetcher) isMeetMeeting(event *calendar.Event) bool {
	if containsAny(event.Description, f.cfg.MeetKeywords) {
		return true
	}
	if containsAny(event.Location, f.cfg.MeetKeywords) {
		return true
	}
	if event.ConferenceData != nil &&
		event.ConferenceData.ConferenceSolution != nil &&
		event.ConferenceData.ConferenceSolution.Name == "Google Meet" {
		return true
	}
	return event.HangoutLink != ""
}

// isAttending reports whether the authenticated user attends the event.
// Only an explicit decline excludes; organising or an attendee-less
// personal event counts as attending.
func isAttending(event *calendar.Event) bool {
	for _, attendee := range event.Attendees {
		if attendee != nil && attendee.Self {
			return attendee.ResponseStatus != "declined"
		}
	}
	if event.Organizer != nil && event.Organizer.Self { //nolint:misspell // Google API field name
		return true
	}
	return len(event.Attendees) == 0
}
