package domain

// ParagraphRef locates a paragraph within its signature.
type ParagraphRef struct {
	// SectionIndex is the 0-based index of the enclosing section.
	SectionIndex int `json:"section_index"`

	// SectionHeader is the enclosing section's header text.
	SectionHeader string `json:"section_header"`

	// Paragraph is the referenced paragraph.
	Paragraph Paragraph `json:"paragraph"`
}

// ModifiedParagraph pairs an old paragraph with the new paragraph judged
// to be its edit.
type ModifiedParagraph struct {
	Old ParagraphRef `json:"old"`
	New ParagraphRef `json:"new"`

	// Similarity is the word-overlap score that paired the two.
	Similarity float64 `json:"similarity"`
}

// MovedParagraph annotates a content-unchanged paragraph whose
// (section, position) differs between the two signatures. Moved is a
// location annotation, not a fifth content class: the paragraph still
// counts as unchanged.
type MovedParagraph struct {
	From ParagraphRef `json:"from"`
	To   ParagraphRef `json:"to"`
}

// DiffResult is the comparison of two signatures of the same series,
// ordered oldest to newest. Added, Removed, Modified and the unchanged
// remainder partition the union of both signatures' paragraphs; no
// paragraph is counted twice.
type DiffResult struct {
	// Added holds paragraphs present only in the newer signature.
	Added []ParagraphRef `json:"added"`

	// Removed holds paragraphs present only in the older signature.
	Removed []ParagraphRef `json:"removed"`

	// Modified holds pairs judged to be edits of each other.
	Modified []ModifiedParagraph `json:"modified"`

	// Moved annotates unchanged paragraphs that changed location.
	Moved []MovedParagraph `json:"moved"`

	// UnchangedCount counts paragraphs with identical content hashes
	// in both signatures.
	UnchangedCount int `json:"unchanged_count"`

	// UnchangedWords sums the word counts of unchanged paragraphs,
	// measured on the newer side.
	UnchangedWords int `json:"unchanged_words"`

	// SimilarityRatio is UnchangedWords over the newer signature's
	// total word count, in [0,1].
	SimilarityRatio float64 `json:"similarity_ratio"`
}

// WordsAdded sums the word counts of added paragraphs plus the growth
// of modified ones.
func (d *DiffResult) WordsAdded() int {
	total := 0
	for _, ref := range d.Added {
		total += ref.Paragraph.WordCount
	}
	for _, mod := range d.Modified {
		if delta := mod.New.Paragraph.WordCount - mod.Old.Paragraph.WordCount; delta > 0 {
			total += delta
		}
	}
	return total
}

// WordsRemoved sums the word counts of removed paragraphs plus the
// shrinkage of modified ones.
func (d *DiffResult) WordsRemoved() int {
	total := 0
	for _, ref := range d.Removed {
		total += ref.Paragraph.WordCount
	}
	for _, mod := range d.Modified {
		if delta := mod.Old.Paragraph.WordCount - mod.New.Paragraph.WordCount; delta > 0 {
			total += delta
		}
	}
	return total
}

// Unchanged reports whether the diff found no content changes at all.
// Moved-only paragraphs still count as unchanged content.
func (d *DiffResult) Unchanged() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}
