// Package week stores meeting notes as markdown files grouped by ISO
// week. Each file carries a frontmatter block recording the meeting
// identity and the document links it covers, which is what makes
// refetching idempotent.
package week

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.NotesStore = (*Store)(nil)

var weekDirRe = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Store is the week-keyed filesystem implementation of driven.NotesStore.
type Store struct {
	baseDir string
}

// NewStore creates a notes store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create notes directory: %w", err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the notes directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// WeekDir returns the week directory name for a meeting, YYYY-Www.
func WeekDir(meeting *domain.Meeting) string {
	year, week := meeting.StartTime.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// FileName returns the note file name for a meeting:
// meeting_YYYYMMDD_HHMMSS_<slug>.md.
func FileName(meeting *domain.Meeting) string {
	stamp := meeting.StartTime.Format("20060102_150405")
	if slug := slugify(meeting.Title); slug != "" {
		return fmt.Sprintf("meeting_%s_%s.md", stamp, slug)
	}
	return fmt.Sprintf("meeting_%s.md", stamp)
}

// slugify lowers the title and keeps only filename-safe characters.
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "_")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}

// Save writes the combined notes for a meeting and returns the stored
// file path relative to the notes directory.
func (s *Store) Save(_ context.Context, meeting *domain.Meeting, content string) (string, error) {
	weekDir := WeekDir(meeting)
	if err := os.MkdirAll(filepath.Join(s.baseDir, weekDir), 0700); err != nil {
		return "", fmt.Errorf("create week directory: %w", err)
	}

	relPath := filepath.Join(weekDir, FileName(meeting))
	full := render(meeting, weekDir, content)
	if err := os.WriteFile(filepath.Join(s.baseDir, relPath), []byte(full), 0600); err != nil {
		return "", fmt.Errorf("write meeting note: %w", err)
	}

	logger.Info("saved meeting note %s", relPath)
	return relPath, nil
}

// render builds the frontmatter block, H1 title and body.
func render(meeting *domain.Meeting, weekDir, content string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "date: %s\n", meeting.StartTime.Format("2006-01-02T15:04:05Z07:00"))
	if meeting.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", meeting.Title)
	}
	fmt.Fprintf(&b, "week: %s\n", weekDir)
	fmt.Fprintf(&b, "meeting_id: %s\n", meeting.ID)
	if meeting.Organiser != "" {
		fmt.Fprintf(&b, "organizer: %s\n", meeting.Organiser) //nolint:misspell // persisted key uses American spelling
	}
	fmt.Fprintf(&b, "attendees_count: %d\n", len(meeting.Attendees))
	fmt.Fprintf(&b, "docs_count: %d\n", len(meeting.DocLinks))
	if len(meeting.DocLinks) > 0 {
		b.WriteString("docs_links:\n")
		for _, link := range meeting.DocLinks {
			fmt.Fprintf(&b, "  - %s\n", link)
		}
	}
	b.WriteString("---\n\n")

	if meeting.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", meeting.Title)
	}
	b.WriteString(content)
	return b.String()
}

// fileMeta is the subset of frontmatter the store reads back.
type fileMeta struct {
	MeetingID string
	DocLinks  []string
}

// parseFrontmatter extracts the meeting id and document links from a
// saved note. Returns false when the file has no frontmatter block.
func parseFrontmatter(content string) (fileMeta, bool) {
	var meta fileMeta
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return meta, false
	}
	body, _, ok := strings.Cut(rest, "\n---")
	if !ok {
		return meta, false
	}

	inLinks := false
	for _, line := range strings.Split(body, "\n") {
		if inLinks {
			if item, ok := strings.CutPrefix(line, "  - "); ok {
				meta.DocLinks = append(meta.DocLinks, strings.TrimSpace(item))
				continue
			}
			inLinks = false
		}
		switch {
		case strings.HasPrefix(line, "meeting_id:"):
			meta.MeetingID = strings.TrimSpace(strings.TrimPrefix(line, "meeting_id:"))
		case strings.TrimSpace(line) == "docs_links:":
			inLinks = true
		}
	}
	return meta, true
}

// AlreadyProcessed reports whether a meeting with the given id has been
// saved covering the same or a superset of the document links.
func (s *Store) AlreadyProcessed(meetingID string, docLinks []string) bool {
	meta, found := s.findMeeting(meetingID)
	if !found {
		return false
	}

	existing := make(map[string]bool, len(meta.DocLinks))
	for _, link := range meta.DocLinks {
		existing[link] = true
	}
	for _, link := range docLinks {
		if !existing[link] {
			logger.Debug("meeting %s has new documents, reprocessing", meetingID)
			return false
		}
	}
	return true
}

// findMeeting walks the week directories for a note with the given
// meeting id.
func (s *Store) findMeeting(meetingID string) (fileMeta, bool) {
	weeks, err := s.ListWeeks()
	if err != nil {
		return fileMeta{}, false
	}

	for _, week := range weeks {
		files, err := s.ListMeetings(week)
		if err != nil {
			continue
		}
		for _, file := range files {
			data, err := os.ReadFile(filepath.Join(s.baseDir, week, file.Name))
			if err != nil {
				continue
			}
			meta, ok := parseFrontmatter(string(data))
			if ok && meta.MeetingID == meetingID {
				return meta, true
			}
		}
	}
	return fileMeta{}, false
}

// ListWeeks returns the existing week directories, sorted.
func (s *Store) ListWeeks() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes directory: %w", err)
	}

	var weeks []string
	for _, entry := range entries {
		if entry.IsDir() && weekDirRe.MatchString(entry.Name()) {
			weeks = append(weeks, entry.Name())
		}
	}
	sort.Strings(weeks)
	return weeks, nil
}

// ListMeetings returns the note files in a week, sorted by name.
func (s *Store) ListMeetings(week string) ([]domain.NoteFile, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, week))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read week directory: %w", err)
	}

	var files []domain.NoteFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, domain.NoteFile{
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ProcessedMeetingIDs returns the ids of all saved meetings.
func (s *Store) ProcessedMeetingIDs() (map[string]bool, error) {
	ids := make(map[string]bool)

	weeks, err := s.ListWeeks()
	if err != nil {
		return nil, err
	}
	for _, week := range weeks {
		files, err := s.ListMeetings(week)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			data, err := os.ReadFile(filepath.Join(s.baseDir, week, file.Name))
			if err != nil {
				continue
			}
			if meta, ok := parseFrontmatter(string(data)); ok && meta.MeetingID != "" {
				ids[meta.MeetingID] = true
			}
		}
	}
	return ids, nil
}
