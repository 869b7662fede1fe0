// Package diffing compares two content signatures of the same series.
//
// Matching is hash-first: paragraphs with identical content hashes are
// unchanged, which handles recurring boilerplate in one map lookup per
// paragraph. Only the leftovers are considered for similarity-based
// modified pairing, bounded to paragraphs of the same section so the
// engine stays near-linear and does not pair across unrelated topics.
package diffing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// DefaultSimilarityThreshold is the minimum word-overlap share of the
// smaller paragraph's word set for an added/removed pair to count as a
// modification.
const DefaultSimilarityThreshold = 0.6

// Options tune the modified-pairing heuristic.
type Options struct {
	// SimilarityThreshold gates modified pairing.
	SimilarityThreshold float64

	// WithinSectionOnly restricts pairing to paragraphs whose section
	// headers match.
	WithinSectionOnly bool
}

// Option adjusts engine options.
type Option func(*Options)

// WithSimilarityThreshold overrides the pairing threshold.
func WithSimilarityThreshold(t float64) Option {
	return func(o *Options) { o.SimilarityThreshold = t }
}

// WithCrossSectionPairing allows modified pairs across sections.
func WithCrossSectionPairing() Option {
	return func(o *Options) { o.WithinSectionOnly = false }
}

// Engine computes signature diffs. It is purely functional: it owns
// neither signature and mutates nothing.
type Engine struct {
	opts Options
}

// New creates a diff engine.
func New(opts ...Option) *Engine {
	o := Options{
		SimilarityThreshold: DefaultSimilarityThreshold,
		WithinSectionOnly:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o}
}

// Diff compares the previous signature against the current one.
// Added, removed, modified and the unchanged remainder partition the
// union of both signatures' paragraphs; moved is a location annotation
// on unchanged paragraphs, never a fifth class. A paragraph that moved
// AND changed wording is reported as modified only.
func (e *Engine) Diff(previous, current *domain.Signature) *domain.DiffResult {
	result := &domain.DiffResult{}

	prevRefs := collectRefs(previous)
	curRefs := collectRefs(current)

	// 1. Index previous paragraphs by content hash. Duplicate hashes
	// keep their copies in document order.
	prevByHash := make(map[string][]int, len(prevRefs))
	for i, ref := range prevRefs {
		prevByHash[ref.Paragraph.ContentHash] = append(prevByHash[ref.Paragraph.ContentHash], i)
	}

	// 2. Exact matches are unchanged; a location change is additionally
	// recorded as moved.
	prevMatched := make([]bool, len(prevRefs))
	curMatched := make([]bool, len(curRefs))
	for i, cur := range curRefs {
		queue := prevByHash[cur.Paragraph.ContentHash]
		if len(queue) == 0 {
			continue
		}
		prevIdx := queue[0]
		prevByHash[cur.Paragraph.ContentHash] = queue[1:]

		prevMatched[prevIdx] = true
		curMatched[i] = true
		result.UnchangedCount++
		result.UnchangedWords += cur.Paragraph.WordCount

		old := prevRefs[prevIdx]
		if old.SectionIndex != cur.SectionIndex || old.Paragraph.Position != cur.Paragraph.Position {
			result.Moved = append(result.Moved, domain.MovedParagraph{From: old, To: cur})
		}
	}

	// 3. Leftovers are candidates for added and removed.
	var addedCand, removedCand []domain.ParagraphRef
	for i, ref := range curRefs {
		if !curMatched[i] {
			addedCand = append(addedCand, ref)
		}
	}
	for i, ref := range prevRefs {
		if !prevMatched[i] {
			removedCand = append(removedCand, ref)
		}
	}

	// 4. Pair leftovers as modifications, greedy by descending
	// similarity, each paragraph used at most once.
	modified, added, removed := e.pairModified(removedCand, addedCand)
	result.Modified = modified
	result.Added = added
	result.Removed = removed

	// 5. Similarity ratio over the current word total. Two empty
	// signatures are identical; an emptied document retains nothing.
	switch {
	case current.TotalWordCount > 0:
		result.SimilarityRatio = float64(result.UnchangedWords) / float64(current.TotalWordCount)
	case previous.TotalWordCount == 0:
		result.SimilarityRatio = 1.0
	default:
		result.SimilarityRatio = 0.0
	}

	return result
}

type candidatePair struct {
	removedIdx int
	addedIdx   int
	similarity float64
}

func (e *Engine) pairModified(removedCand, addedCand []domain.ParagraphRef) (
	[]domain.ModifiedParagraph, []domain.ParagraphRef, []domain.ParagraphRef,
) {
	var pairs []candidatePair
	for ri, old := range removedCand {
		for ai, cur := range addedCand {
			if e.opts.WithinSectionOnly && old.SectionHeader != cur.SectionHeader {
				continue
			}
			sim := wordOverlap(old.Paragraph.RawText, cur.Paragraph.RawText)
			if sim > e.opts.SimilarityThreshold {
				pairs = append(pairs, candidatePair{removedIdx: ri, addedIdx: ai, similarity: sim})
			}
		}
	}

	// Greedy assignment, deterministic: best similarity first, document
	// order breaks ties.
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].similarity != pairs[j].similarity {
			return pairs[i].similarity > pairs[j].similarity
		}
		if pairs[i].removedIdx != pairs[j].removedIdx {
			return pairs[i].removedIdx < pairs[j].removedIdx
		}
		return pairs[i].addedIdx < pairs[j].addedIdx
	})

	usedRemoved := make([]bool, len(removedCand))
	usedAdded := make([]bool, len(addedCand))
	var modified []domain.ModifiedParagraph
	for _, p := range pairs {
		if usedRemoved[p.removedIdx] || usedAdded[p.addedIdx] {
			continue
		}
		usedRemoved[p.removedIdx] = true
		usedAdded[p.addedIdx] = true
		modified = append(modified, domain.ModifiedParagraph{
			Old:        removedCand[p.removedIdx],
			New:        addedCand[p.addedIdx],
			Similarity: p.similarity,
		})
	}

	var added, removed []domain.ParagraphRef
	for i, ref := range addedCand {
		if !usedAdded[i] {
			added = append(added, ref)
		}
	}
	for i, ref := range removedCand {
		if !usedRemoved[i] {
			removed = append(removed, ref)
		}
	}

	return modified, added, removed
}

// RenderNewContent reconstructs the document in original section order,
// keeping only added paragraphs and the new side of modified pairs.
// Headers appear only for sections contributing at least one kept
// paragraph; untouched sections are omitted entirely.
func (e *Engine) RenderNewContent(diff *domain.DiffResult, current *domain.Signature) string {
	include := make(map[string]bool)
	mark := func(ref domain.ParagraphRef) {
		include[fmt.Sprintf("%d/%d", ref.SectionIndex, ref.Paragraph.Position)] = true
	}
	for _, ref := range diff.Added {
		mark(ref)
	}
	for _, mod := range diff.Modified {
		mark(mod.New)
	}

	var parts []string
	for si, section := range current.Sections {
		var kept []string
		for _, para := range section.Paragraphs {
			if include[fmt.Sprintf("%d/%d", si, para.Position)] {
				kept = append(kept, para.RawText)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if section.HeaderText != "" {
			parts = append(parts, "## "+section.HeaderText)
		}
		parts = append(parts, kept...)
	}

	return strings.Join(parts, "\n\n")
}

// Summary formats a human-readable change report for CLI output and
// saved-notes annotations.
func Summary(diff *domain.DiffResult) string {
	var lines []string

	if len(diff.Added) > 0 {
		lines = append(lines, fmt.Sprintf("paragraphs added: %d (%d words)", len(diff.Added), diff.WordsAdded()))
	}
	if len(diff.Removed) > 0 {
		lines = append(lines, fmt.Sprintf("paragraphs removed: %d (%d words)", len(diff.Removed), diff.WordsRemoved()))
	}
	if len(diff.Modified) > 0 {
		lines = append(lines, fmt.Sprintf("paragraphs modified: %d", len(diff.Modified)))
	}
	if len(diff.Moved) > 0 {
		lines = append(lines, fmt.Sprintf("paragraphs moved: %d", len(diff.Moved)))
	}
	lines = append(lines, fmt.Sprintf("unchanged: %d paragraphs", diff.UnchangedCount))
	lines = append(lines, fmt.Sprintf("similarity: %.1f%%", diff.SimilarityRatio*100))

	return strings.Join(lines, "\n")
}

// collectRefs flattens a signature into located paragraph references.
func collectRefs(sig *domain.Signature) []domain.ParagraphRef {
	var refs []domain.ParagraphRef
	for si, section := range sig.Sections {
		for _, para := range section.Paragraphs {
			refs = append(refs, domain.ParagraphRef{
				SectionIndex:  si,
				SectionHeader: section.HeaderText,
				Paragraph:     para,
			})
		}
	}
	return refs
}

// wordOverlap is the share of the smaller paragraph's word set found in
// the other paragraph, case-insensitive. 1.0 for two identical sets.
func wordOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		if len(setA) == len(setB) {
			return 1.0
		}
		return 0.0
	}

	smaller, larger := setA, setB
	if len(setB) < len(setA) {
		smaller, larger = setB, setA
	}

	overlap := 0
	for w := range smaller {
		if larger[w] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(smaller))
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
