package calendar

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Document URL patterns recognised in descriptions.
var docLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://docs\.google\.com/document/d/[a-zA-Z0-9_-]+[/\w]*`),
	regexp.MustCompile(`https://drive\.google\.com/file/d/[a-zA-Z0-9_-]+[/\w]*`),
}

// toMeeting converts a calendar event into the domain meeting record,
// extracting and optionally filtering its document links.
func (f *Fetcher) toMeeting(event *calendar.Event, geminiOnly bool) domain.Meeting {
	meeting := domain.Meeting{
		ID:          event.Id,
		Title:       event.Summary,
		Description: event.Description,
		StartTime:   parseEventTime(event.Start),
		EndTime:     parseEventTime(event.End),
		Organiser:   organiserEmail(event),
		Attendees:   attendeeEmails(event.Attendees),
		Location:    event.Location,
		HangoutLink: event.HangoutLink,
		Attachments: convertAttachments(event.Attachments),
	}

	links := extractDocLinks(event.Description, meeting.Attachments)
	if geminiOnly {
		links = f.filterGeminiLinks(links, meeting.Attachments)
	}
	meeting.DocLinks = links
	return meeting
}

// parseEventTime reads an event boundary, handling both timed and
// all-day events. All-day dates parse at midnight UTC.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// organiserEmail extracts the organiser email from an event.
func organiserEmail(event *calendar.Event) string {
	if event.Organizer != nil { //nolint:misspell // Google API field name
		return event.Organizer.Email //nolint:misspell // Google API field name
	}
	return ""
}

// attendeeEmails collects attendee addresses, skipping rooms and other
// resources.
func attendeeEmails(attendees []*calendar.EventAttendee) []string {
	var emails []string
	for _, a := range attendees {
		if a == nil || a.Email == "" || a.Resource {
			continue
		}
		emails = append(emails, a.Email)
	}
	return emails
}

// convertAttachments maps calendar attachments onto the domain type.
func convertAttachments(attachments []*calendar.EventAttachment) []domain.Attachment {
	var out []domain.Attachment
	for _, a := range attachments {
		if a == nil {
			continue
		}
		out = append(out, domain.Attachment{
			Title:   a.Title,
			FileURL: a.FileUrl,
			FileID:  a.FileId,
		})
	}
	return out
}

// extractDocLinks collects document URLs from the description and the
// attachments, de-duplicated and sorted for stable output. Attachments
// without a URL get one constructed from their file id.
func extractDocLinks(description string, attachments []domain.Attachment) []string {
	seen := make(map[string]bool)
	for _, re := range docLinkPatterns {
		for _, link := range re.FindAllString(description, -1) {
			seen[link] = true
		}
	}

	for _, att := range attachments {
		url := attachmentURL(att)
		if url == "" {
			continue
		}
		if !seen[url] {
			seen[url] = true
			logger.Debug("found attachment %q: %s", att.Title, url)
		}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// attachmentURL resolves an attachment to a document URL, or "" when it
// does not point at a Docs or Drive file.
func attachmentURL(att domain.Attachment) string {
	if att.FileURL != "" {
		if strings.Contains(att.FileURL, "docs.google.com") || strings.Contains(att.FileURL, "drive.google.com") {
			return att.FileURL
		}
		return ""
	}
	if att.FileID != "" {
		return "https://docs.google.com/document/d/" + att.FileID + "/edit"
	}
	return ""
}

// filterGeminiLinks keeps only documents recognised as Gemini notes or
// transcripts, by attachment title keyword or the Meet-calendar URL
// marker.
func (f *Fetcher) filterGeminiLinks(links []string, attachments []domain.Attachment) []string {
	byURL := make(map[string]domain.Attachment, len(attachments))
	for _, att := range attachments {
		if url := attachmentURL(att); url != "" {
			byURL[url] = att
		}
	}

	var kept []string
	for _, link := range links {
		att, hasAttachment := byURL[link]
		if hasAttachment && containsAny(att.Title, f.cfg.GeminiKeywords) {
			kept = append(kept, link)
			continue
		}
		if strings.Contains(link, "meet_tnfm_calendar") {
			kept = append(kept, link)
			continue
		}
		logger.Debug("skipping non-Gemini document %s", link)
	}
	return kept
}

// containsAny reports whether text contains any keyword, case
// insensitively.
func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
