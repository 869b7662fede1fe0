// Package fetch orchestrates the fetch pipeline: discover recent
// meetings, convert their note documents, run smart filtering and save
// the surviving content into the week-organised notes store.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Options controls one fetch run.
type Options struct {
	// Since bounds the calendar scan window.
	Since time.Time

	// AcceptedOnly skips events the user declined.
	AcceptedOnly bool

	// GeminiOnly keeps only Gemini notes and transcripts.
	GeminiOnly bool

	// Force reprocesses meetings that already have a saved note.
	Force bool

	// DryRun converts and filters but saves nothing.
	DryRun bool

	// SmartFilter enables classification and diff-based reduction.
	SmartFilter bool
}

// Summary reports one fetch run.
type Summary struct {
	// Found counts meetings the calendar scan returned.
	Found int

	// Processed counts meetings whose documents were converted.
	Processed int

	// Skipped counts meetings skipped as already processed or without
	// documents.
	Skipped int

	// WithNotes counts meetings that produced a saved note file.
	WithNotes int

	// TotalDocs counts converted documents across all meetings.
	TotalDocs int

	// SavedFiles lists the written note paths, relative to the notes
	// directory.
	SavedFiles []string

	// Errors lists per-meeting failures; the run continues past them.
	Errors []string

	// OriginalWords and FilteredWords total the smart-filter reduction.
	OriginalWords int
	FilteredWords int
}

// Service runs the fetch pipeline.
type Service struct {
	source     driven.MeetingSource
	converter  driven.DocConverter
	notes      driven.NotesStore
	filter     driving.DocumentFilter
	resolver   driving.SeriesResolver
	normaliser driven.MarkdownNormaliser
}

// New creates the fetch service. The filter and resolver may be nil
// when smart filtering is never requested.
func New(
	source driven.MeetingSource,
	converter driven.DocConverter,
	notes driven.NotesStore,
	filter driving.DocumentFilter,
	resolver driving.SeriesResolver,
	normaliser driven.MarkdownNormaliser,
) *Service {
	return &Service{
		source:     source,
		converter:  converter,
		notes:      notes,
		filter:     filter,
		resolver:   resolver,
		normaliser: normaliser,
	}
}

// Fetch runs the pipeline once and reports what happened. Per-meeting
// failures are collected in the summary rather than aborting the run.
func (s *Service) Fetch(ctx context.Context, opts Options) (*Summary, error) {
	if opts.SmartFilter && (s.filter == nil || s.resolver == nil) {
		return nil, fmt.Errorf("%w: smart filtering requires a filter and resolver", domain.ErrInvalidInput)
	}

	// 1. Discover meetings in the window
	meetings, err := s.source.FetchRecent(ctx, driven.FetchOptions{
		Since:        opts.Since,
		AcceptedOnly: opts.AcceptedOnly,
		GeminiOnly:   opts.GeminiOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch meetings: %w", err)
	}

	summary := &Summary{Found: len(meetings)}
	for i := range meetings {
		meeting := &meetings[i]

		// 2. Skip meetings without note documents
		if len(meeting.DocLinks) == 0 {
			logger.Debug("meeting %q has no note documents", meeting.Title)
			summary.Skipped++
			continue
		}

		// 3. Skip already-processed meetings unless forced
		if !opts.Force && s.notes.AlreadyProcessed(meeting.ID, meeting.DocLinks) {
			logger.Debug("meeting %q already processed", meeting.Title)
			summary.Skipped++
			continue
		}

		if err := s.processMeeting(ctx, meeting, opts, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", meeting.Title, err))
		}
	}
	return summary, nil
}

// processMeeting converts, filters and saves one meeting's documents.
func (s *Service) processMeeting(ctx context.Context, meeting *domain.Meeting, opts Options, summary *Summary) error {
	// 4. Convert each linked document
	docs, convErrs := s.convertDocuments(ctx, meeting)
	if len(docs) == 0 {
		summary.Skipped++
		if convErrs != nil {
			return convErrs
		}
		return domain.ErrNoDocuments
	}
	summary.Processed++
	summary.TotalDocs += len(docs)

	// 5. Filter or combine in full
	var content, seriesID string
	if opts.SmartFilter {
		result, err := s.filter.Process(ctx, meeting, docs)
		if err != nil {
			return fmt.Errorf("smart filter: %w", err)
		}
		summary.OriginalWords += result.OriginalWordCount
		summary.FilteredWords += result.FilteredWordCount
		content = renderFiltered(result)
		seriesID = result.SeriesID
	} else {
		content = combineFull(docs)
	}

	if opts.DryRun {
		logger.Info("dry run: would save notes for %q (%d documents)", meeting.Title, len(docs))
		return convErrs
	}

	// 6. Save and record the occurrence
	relPath, err := s.notes.Save(ctx, meeting, content)
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	summary.WithNotes++
	summary.SavedFiles = append(summary.SavedFiles, relPath)

	if seriesID != "" {
		date := meeting.StartTime.Format("2006-01-02")
		if err := s.resolver.RecordOccurrence(ctx, seriesID, date, relPath); err != nil {
			logger.Warn("could not record occurrence for %s: %v", seriesID, err)
		}
	}
	return convErrs
}

// convertDocuments converts all linked documents, joining failures and
// keeping what succeeded.
func (s *Service) convertDocuments(ctx context.Context, meeting *domain.Meeting) ([]domain.NoteDocument, error) {
	var docs []domain.NoteDocument
	var errs []error
	for _, link := range meeting.DocLinks {
		docID := s.converter.DocIDFromURL(link)
		if docID == "" {
			logger.Debug("no document id in link %s", link)
			continue
		}

		content, meta, err := s.converter.ToMarkdown(ctx, docID)
		if err != nil {
			errs = append(errs, fmt.Errorf("convert %s: %w", docID, err))
			continue
		}

		title := meta.Title
		if title == "" {
			title = s.normaliser.Title(content)
		}
		docs = append(docs, domain.NoteDocument{
			Title:   title,
			URL:     link,
			DocID:   docID,
			Content: content,
		})
	}
	return docs, errors.Join(errs...)
}

// combineFull joins the full document contents under per-document
// headers.
func combineFull(docs []domain.NoteDocument) string {
	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		sections = append(sections, "## "+doc.Title+"\n\n"+doc.Content)
	}
	return strings.Join(sections, "\n\n")
}

// renderFiltered joins the filtered outcomes: surviving content under
// per-document headers, unchanged documents as an annotation line.
func renderFiltered(result *domain.FilterResult) string {
	sections := make([]string, 0, len(result.Documents))
	for _, doc := range result.Documents {
		if doc.Kind == domain.ChangeUnchanged {
			sections = append(sections, fmt.Sprintf("## %s\n\n*%s*", doc.Title, doc.DiffSummary))
			continue
		}
		sections = append(sections, "## "+doc.Title+"\n\n"+doc.Content)
	}
	return strings.Join(sections, "\n\n")
}
