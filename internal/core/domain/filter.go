package domain

// DocumentClass says whether a document's content is expected to be
// always new per occurrence or to evolve from a shared prior version.
// The class decides whether the diff engine runs at all.
type DocumentClass string

const (
	// ClassEphemeral marks content that is unique per occurrence, such
	// as transcripts and generated meeting notes. Included in full.
	ClassEphemeral DocumentClass = "ephemeral"

	// ClassPersistent marks shared documents that accumulate changes
	// across occurrences. Diffed against the cached prior signature.
	ClassPersistent DocumentClass = "persistent"

	// ClassUnknown marks documents with no classification signal.
	// Treated like persistent: diffing is the safe default, since at
	// worst everything comes back as new.
	ClassUnknown DocumentClass = "unknown"
)

// Diffable reports whether documents of this class are compared against
// their series history.
func (c DocumentClass) Diffable() bool {
	return c == ClassPersistent || c == ClassUnknown
}

// Classification is the outcome of classifying one document.
type Classification struct {
	// Class is the decided document class.
	Class DocumentClass

	// Confidence is the winning score's share of the total, in [0,1].
	// Zero when no pattern matched at all.
	Confidence float64

	// Signals lists the matched pattern descriptions, for inspection.
	Signals []string
}

// ChangeKind labels why a filtered document's content was included.
type ChangeKind string

const (
	// ChangeFirstOccurrence marks the first document of a new series.
	ChangeFirstOccurrence ChangeKind = "first_occurrence"

	// ChangeEphemeral marks content included because it is always new.
	ChangeEphemeral ChangeKind = "ephemeral"

	// ChangeNewContent marks diff-reduced content of an evolved document.
	ChangeNewContent ChangeKind = "new_content"

	// ChangeUnchanged marks a document identical to its prior version.
	ChangeUnchanged ChangeKind = "unchanged"
)

// FilteredDocument is one document after smart filtering.
type FilteredDocument struct {
	// Title is the source document title.
	Title string

	// URL is the source document link.
	URL string

	// Class is the document's classification.
	Class DocumentClass

	// Kind says why the content below was included.
	Kind ChangeKind

	// Content is the text that survived filtering. Empty when the
	// document was unchanged.
	Content string

	// DiffSummary is a human-readable change summary, present when the
	// document was diffed.
	DiffSummary string

	// OriginalWords and FilteredWords measure the reduction.
	OriginalWords int
	FilteredWords int
}

// FilterResult aggregates smart filtering over all of one meeting's
// documents.
type FilterResult struct {
	// MeetingID is the calendar event id.
	MeetingID string

	// SeriesID is the resolved series identity.
	SeriesID string

	// SeriesCreated is true when this meeting started a new series.
	SeriesCreated bool

	// HasNewContent is true when any document contributed content.
	HasNewContent bool

	// Documents holds the per-document outcomes, in input order.
	Documents []FilteredDocument

	// OriginalWordCount and FilteredWordCount total the reduction
	// across all documents.
	OriginalWordCount int
	FilteredWordCount int
}

// ReductionPercent is the share of input words removed by filtering,
// in [0,100]. Zero when the meeting had no words at all.
func (r *FilterResult) ReductionPercent() float64 {
	if r.OriginalWordCount == 0 {
		return 0
	}
	removed := r.OriginalWordCount - r.FilteredWordCount
	return float64(removed) / float64(r.OriginalWordCount) * 100
}
