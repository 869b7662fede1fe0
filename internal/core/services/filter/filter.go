// Package filter orchestrates smart filtering of a meeting's documents:
// classify each document, diff persistent ones against the series'
// previous occurrence and keep only genuinely new content.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
	"github.com/matburt/meeting-notes-handler/internal/core/services/classifier"
	"github.com/matburt/meeting-notes-handler/internal/core/services/diffing"
	"github.com/matburt/meeting-notes-handler/internal/core/services/extractor"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Service implements the interface.
var _ driving.DocumentFilter = (*Service)(nil)

// Service is the smart-filter orchestrator.
type Service struct {
	resolver   driving.SeriesResolver
	cache      driven.SignatureCache
	classifier *classifier.Service
	extractor  *extractor.Service
	engine     *diffing.Engine
}

// New creates the orchestrator over its collaborators.
func New(resolver driving.SeriesResolver, cache driven.SignatureCache) *Service {
	return &Service{
		resolver:   resolver,
		cache:      cache,
		classifier: classifier.New(),
		extractor:  extractor.New(),
		engine:     diffing.New(),
	}
}

// Process filters all documents of one meeting.
//
// Ephemeral documents pass through in full. Persistent (and unknown)
// documents are diffed against the series' previous occurrence; only
// added and modified paragraphs survive, and documents with nothing new
// are marked unchanged with an annotation instead of body text. The
// occurrence's combined persistent content is cached afterwards as the
// baseline for the next occurrence.
func (s *Service) Process(ctx context.Context, meeting *domain.Meeting, docs []domain.NoteDocument) (*domain.FilterResult, error) {
	// 1. Resolve the series identity once per meeting.
	resolution, err := s.resolver.Resolve(ctx, meeting.Descriptor())
	if err != nil {
		return nil, fmt.Errorf("resolve series: %w", err)
	}
	date := meeting.StartTime.Format("2006-01-02")

	result := &domain.FilterResult{
		MeetingID:     meeting.ID,
		SeriesID:      resolution.SeriesID,
		SeriesCreated: resolution.Created,
	}

	// 2. Fetch the previous occurrence's signature, skipping an entry
	// for today's date so reprocessing a meeting stays idempotent.
	previous, err := s.previousSignature(ctx, resolution.SeriesID, date)
	if err != nil {
		return nil, fmt.Errorf("load previous signature: %w", err)
	}
	firstOccurrence := resolution.Created || previous == nil

	// 3. Filter each document.
	var persistent []domain.NoteDocument
	for _, doc := range docs {
		classification := s.classifier.Classify(doc.Title, doc.URL, doc.Content)

		var filtered domain.FilteredDocument
		switch {
		case !classification.Class.Diffable():
			filtered = passThrough(doc, classification.Class, domain.ChangeEphemeral)
		case firstOccurrence:
			filtered = passThrough(doc, classification.Class, domain.ChangeFirstOccurrence)
			persistent = append(persistent, doc)
		default:
			filtered = s.diffDocument(doc, classification.Class, previous, date)
			persistent = append(persistent, doc)
		}

		result.Documents = append(result.Documents, filtered)
		result.OriginalWordCount += filtered.OriginalWords
		result.FilteredWordCount += filtered.FilteredWords
		if filtered.Kind != domain.ChangeUnchanged {
			result.HasNewContent = true
		}
	}

	// 4. Cache this occurrence's combined persistent content as the next
	// diff baseline.
	if len(persistent) > 0 {
		key := domain.OccurrenceKey{SeriesID: resolution.SeriesID, Date: date}
		signature := s.extractor.Extract(key, combineDocuments(persistent))
		if err := s.cache.Put(ctx, resolution.SeriesID, date, signature); err != nil {
			return nil, fmt.Errorf("cache signature: %w", err)
		}
	}

	logger.Debug("filtered meeting %s: %d docs, %.0f%% reduction",
		meeting.ID, len(result.Documents), result.ReductionPercent())
	return result, nil
}

// previousSignature returns the newest cached signature strictly before
// the given date, or nil when the series has no usable history.
func (s *Service) previousSignature(ctx context.Context, seriesID, date string) (*domain.Signature, error) {
	signatures, err := s.cache.LatestN(ctx, seriesID, 2)
	if err != nil {
		return nil, err
	}
	for i := len(signatures) - 1; i >= 0; i-- {
		if signatures[i].OccurrenceKey.Date < date {
			return &signatures[i], nil
		}
	}
	return nil, nil
}

// diffDocument keeps only the document's new content relative to the
// previous occurrence.
func (s *Service) diffDocument(doc domain.NoteDocument, class domain.DocumentClass, previous *domain.Signature, date string) domain.FilteredDocument {
	key := domain.OccurrenceKey{SeriesID: previous.OccurrenceKey.SeriesID, Date: date}
	current := s.extractor.Extract(key, doc.Content)

	diff := s.engine.Diff(previous, current)

	// The previous signature spans the whole occurrence, so paragraphs
	// from sibling documents surface as removals here. A document is
	// unchanged when everything it contains matched and nothing is new.
	if len(diff.Added) == 0 && len(diff.Modified) == 0 &&
		diff.UnchangedCount == current.TotalParagraphCount {
		return domain.FilteredDocument{
			Title:         doc.Title,
			URL:           doc.URL,
			Class:         class,
			Kind:          domain.ChangeUnchanged,
			DiffSummary:   fmt.Sprintf("unchanged since %s", previous.OccurrenceKey.Date),
			OriginalWords: current.TotalWordCount,
		}
	}

	content := s.engine.RenderNewContent(diff, current)
	return domain.FilteredDocument{
		Title:         doc.Title,
		URL:           doc.URL,
		Class:         class,
		Kind:          domain.ChangeNewContent,
		Content:       content,
		DiffSummary:   diffing.Summary(diff),
		OriginalWords: current.TotalWordCount,
		FilteredWords: len(strings.Fields(content)),
	}
}

// passThrough includes the document's full content.
func passThrough(doc domain.NoteDocument, class domain.DocumentClass, kind domain.ChangeKind) domain.FilteredDocument {
	words := len(strings.Fields(doc.Content))
	return domain.FilteredDocument{
		Title:         doc.Title,
		URL:           doc.URL,
		Class:         class,
		Kind:          kind,
		Content:       doc.Content,
		OriginalWords: words,
		FilteredWords: words,
	}
}

// combineDocuments renders the occurrence's persistent documents as one
// markdown body, each document under its own top-level header, the same
// shape the notes store writes to disk.
func combineDocuments(docs []domain.NoteDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, "# "+doc.Title+"\n\n"+doc.Content)
	}
	return strings.Join(parts, "\n\n")
}
