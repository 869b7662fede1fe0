// Package tracker resolves calendar events onto recurring meeting
// series.
//
// Matching is an explicit scored-candidate pipeline rather than a chain
// of ad hoc checks: cheap exact fields (organiser, schedule slot) filter
// candidates first, title similarity scores them, and a deterministic
// tie-break picks between near-equal scores. With no qualifying
// candidate the tracker creates a new series: a false new series costs
// storage, a false merge corrupts a series' history.
package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driving"
	"github.com/matburt/meeting-notes-handler/internal/core/services/keylock"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Service implements the interface.
var _ driving.SeriesResolver = (*Service)(nil)

// Options tune the matching policy. The defaults are the contract;
// deviations should be recorded alongside the configuration.
type Options struct {
	// SimilarityThreshold is the minimum title similarity to accept a
	// candidate at all.
	SimilarityThreshold float64

	// StrongSimilarity accepts a candidate even when the attendee
	// fingerprints differ.
	StrongSimilarity float64

	// Epsilon bounds "the same score" for tie-breaking.
	Epsilon float64

	// Decay weights the running confidence: new = decay*old + (1-decay)*match.
	Decay float64
}

// DefaultOptions returns the standard matching thresholds.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.80,
		StrongSimilarity:    0.95,
		Epsilon:             0.01,
		Decay:               0.7,
	}
}

// Service maps event descriptors to series identities backed by a
// registry port.
type Service struct {
	registry driven.SeriesRegistry
	opts     Options
	locks    *keylock.KeyLock
}

// New creates a series tracker over the given registry.
func New(registry driven.SeriesRegistry, opts Options) *Service {
	return &Service{
		registry: registry,
		opts:     opts,
		locks:    keylock.New(),
	}
}

// Words that recur in meeting titles without identifying the meeting.
var titleNoiseWords = map[string]bool{
	"weekly": true, "daily": true, "monthly": true, "biweekly": true,
	"meeting": true, "sync": true, "standup": true, "demo": true,
	"review": true, "planning": true, "retrospective": true, "retro": true,
	"sprint": true, "scrum": true, "session": true, "call": true,
	"discussion": true,
}

// Date, week and version tokens that vary per occurrence.
var titleCleanupRes = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}[-/]\d{2}[-/]\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\bweek\s+\d+\b`),
	regexp.MustCompile(`(?i)\bw\d+\b`),
	regexp.MustCompile(`(?i)\bsprint\s+\d+\b`),
	regexp.MustCompile(`#\d+\b`),
	regexp.MustCompile(`(?i)\bv\d+\.\d+\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`),
}

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormaliseTitle lowers the title, strips per-occurrence tokens and
// noise words, removes punctuation outside word/space/hyphen/underscore
// and collapses whitespace.
func NormaliseTitle(title string) string {
	normalised := strings.ToLower(title)

	for _, re := range titleCleanupRes {
		normalised = re.ReplaceAllString(normalised, "")
	}

	words := strings.Fields(normalised)
	kept := words[:0]
	for _, w := range words {
		if !titleNoiseWords[w] {
			kept = append(kept, w)
		}
	}

	normalised = strings.Join(kept, " ")
	normalised = nonWordRe.ReplaceAllString(normalised, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(normalised, " "))
}

// TitleSimilarity scores two normalised titles in [0,1] as the better
// of token-set Jaccard overlap and normalised Levenshtein distance.
func TitleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1.0
		}
		return 0.0
	}

	jaccard := tokenJaccard(a, b)

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	lev := 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)

	if jaccard > lev {
		return jaccard
	}
	return lev
}

func tokenJaccard(a, b string) float64 {
	setA := make(map[string]bool)
	for _, w := range strings.Fields(a) {
		setA[w] = true
	}
	setB := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		setB[w] = true
	}

	union := len(setB)
	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Resolve matches the descriptor against the registry.
func (s *Service) Resolve(ctx context.Context, desc domain.EventDescriptor) (domain.Resolution, error) {
	// 1. Derive the fingerprint fields once.
	title := NormaliseTitle(desc.Title)
	pattern := desc.SchedulePattern()
	fingerprint := desc.AttendeeFingerprint()

	// 2. Cheap exact fields first: only series with the same organiser
	// and schedule slot are similarity candidates.
	all, err := s.registry.List(ctx)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("list series: %w", err)
	}

	type scored struct {
		series     domain.Series
		similarity float64
	}
	var candidates []scored
	for _, series := range all {
		if series.Organiser != desc.Organiser || series.SchedulePattern != pattern {
			continue
		}
		candidates = append(candidates, scored{
			series:     series,
			similarity: TitleSimilarity(title, series.NormalisedTitle),
		})
	}

	// 3. Pick the best-scoring candidate; ties within epsilon prefer
	// the most recently seen series.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		return candidates[i].series.LastSeen.After(candidates[j].series.LastSeen)
	})

	var best *scored
	ambiguous := false
	if len(candidates) > 0 {
		for i := 1; i < len(candidates); i++ {
			if candidates[0].similarity-candidates[i].similarity < s.opts.Epsilon {
				ambiguous = true
				if candidates[i].series.LastSeen.After(candidates[0].series.LastSeen) {
					candidates[0], candidates[i] = candidates[i], candidates[0]
				}
			}
		}
		best = &candidates[0]
	}

	// 4. Accept only a confident match: similar title plus either the
	// same attendee set or near-identical wording.
	if best != nil && best.similarity >= s.opts.SimilarityThreshold {
		fingerprintMatch := fingerprint != "" && fingerprint == best.series.AttendeeFingerprint
		if fingerprintMatch || best.similarity >= s.opts.StrongSimilarity {
			score := best.similarity
			if ambiguous {
				// The tie-break was exercised; let the running
				// confidence carry that for later inspection.
				score -= s.opts.Epsilon
				logger.Debug("ambiguous series match for %q resolved to %s by last-seen", desc.Title, best.series.SeriesID)
			}
			return s.recordMatch(ctx, best.series.SeriesID, desc, score)
		}
	}

	// 5. No qualifying candidate: synthesise a new series.
	return s.createSeries(ctx, desc, title, pattern, fingerprint)
}

// recordMatch refreshes a matched series under its per-series lock.
func (s *Service) recordMatch(ctx context.Context, seriesID string, desc domain.EventDescriptor, score float64) (domain.Resolution, error) {
	release := s.locks.Acquire(seriesID)
	defer release()

	series, err := s.registry.Get(ctx, seriesID)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("get series %s: %w", seriesID, err)
	}

	if desc.StartTime.After(series.LastSeen) {
		series.LastSeen = desc.StartTime
	}
	series.Confidence = s.opts.Decay*series.Confidence + (1-s.opts.Decay)*score

	if err := s.registry.Save(ctx, series); err != nil {
		return domain.Resolution{}, fmt.Errorf("save series %s: %w", seriesID, err)
	}

	logger.Debug("matched series %s (similarity %.2f, confidence %.2f)", seriesID, score, series.Confidence)
	return domain.Resolution{
		SeriesID:   seriesID,
		MatchScore: score,
		Confidence: series.Confidence,
	}, nil
}

func (s *Service) createSeries(ctx context.Context, desc domain.EventDescriptor, title, pattern, fingerprint string) (domain.Resolution, error) {
	seriesID := synthesiseID(title, desc.Organiser, pattern)

	release := s.locks.Acquire(seriesID)
	defer release()

	// Another goroutine may have created the same series between the
	// candidate scan and here; resolving to it keeps ids unique.
	if existing, err := s.registry.Get(ctx, seriesID); err == nil {
		if desc.StartTime.After(existing.LastSeen) {
			existing.LastSeen = desc.StartTime
			if err := s.registry.Save(ctx, existing); err != nil {
				return domain.Resolution{}, fmt.Errorf("save series %s: %w", seriesID, err)
			}
		}
		return domain.Resolution{SeriesID: seriesID, MatchScore: 1.0, Confidence: existing.Confidence}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Resolution{}, fmt.Errorf("get series %s: %w", seriesID, err)
	}

	series := &domain.Series{
		SeriesID:            seriesID,
		NormalisedTitle:     title,
		Organiser:           desc.Organiser,
		SchedulePattern:     pattern,
		AttendeeFingerprint: fingerprint,
		FirstSeen:           desc.StartTime,
		LastSeen:            desc.StartTime,
		Confidence:          1.0,
	}
	if err := s.registry.Save(ctx, series); err != nil {
		return domain.Resolution{}, fmt.Errorf("save series %s: %w", seriesID, err)
	}

	logger.Info("created series %s for %q", seriesID, desc.Title)
	return domain.Resolution{
		SeriesID:   seriesID,
		Created:    true,
		MatchScore: 1.0,
		Confidence: 1.0,
	}, nil
}

// synthesiseID builds a readable, collision-resistant series id:
// title prefix, organiser local part, schedule token and a short
// disambiguating digest.
func synthesiseID(title, organiser, pattern string) string {
	titlePart := title
	if titlePart == "" {
		titlePart = "meeting"
	}
	if len(titlePart) > 20 {
		titlePart = titlePart[:20]
	}
	titlePart = strings.ReplaceAll(strings.TrimSpace(titlePart), " ", "_")

	organiserPart, _, _ := strings.Cut(organiser, "@")
	if len(organiserPart) > 10 {
		organiserPart = organiserPart[:10]
	}

	timePart := strings.ToLower(strings.ReplaceAll(pattern, ":", ""))

	sum := sha256.Sum256([]byte(title + "|" + organiser + "|" + pattern))
	suffix := hex.EncodeToString(sum[:])[:6]

	return fmt.Sprintf("%s_%s_%s_%s", titlePart, organiserPart, timePart, suffix)
}

// RecordOccurrence appends a dated occurrence, deduplicated by date.
func (s *Service) RecordOccurrence(ctx context.Context, seriesID, date, filePath string) error {
	release := s.locks.Acquire(seriesID)
	defer release()

	series, err := s.registry.Get(ctx, seriesID)
	if err != nil {
		return fmt.Errorf("get series %s: %w", seriesID, err)
	}

	if series.HasOccurrence(date) {
		return nil
	}

	series.Occurrences = append(series.Occurrences, domain.Occurrence{Date: date, FilePath: filePath})
	// Occurrence dates are ISO strings, so a lexical sort keeps the
	// list chronological even when meetings backfill out of order.
	sort.Slice(series.Occurrences, func(i, j int) bool {
		return series.Occurrences[i].Date < series.Occurrences[j].Date
	})

	if err := s.registry.Save(ctx, series); err != nil {
		return fmt.Errorf("save series %s: %w", seriesID, err)
	}
	return nil
}

// Get retrieves one series record.
func (s *Service) Get(ctx context.Context, seriesID string) (*domain.Series, error) {
	return s.registry.Get(ctx, seriesID)
}

// List returns all tracked series.
func (s *Service) List(ctx context.Context) ([]domain.Series, error) {
	return s.registry.List(ctx)
}
