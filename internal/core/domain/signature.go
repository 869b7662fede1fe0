package domain

import (
	"strings"
	"time"
)

// SignatureSchemaVersion is written into every new signature.
// Readers skip blobs whose major version they do not understand.
const SignatureSchemaVersion = "1.0"

// Signature is the structural fingerprint of one occurrence's document
// text. It is persisted as a compressed JSON blob keyed by series and
// date; the tags are the on-disk contract.
type Signature struct {
	// OccurrenceKey addresses the occurrence this signature belongs to.
	OccurrenceKey OccurrenceKey `json:"occurrence_key"`

	// SchemaVersion tags the blob layout, "major.minor".
	SchemaVersion string `json:"schema_version"`

	// ExtractedAt is when the signature was computed.
	ExtractedAt time.Time `json:"extracted_at"`

	// FullHash is the digest over the entire normalised text.
	FullHash string `json:"full_hash"`

	// TotalWordCount sums the word counts of all paragraphs.
	TotalWordCount int `json:"total_word_count"`

	// TotalParagraphCount counts paragraphs across all sections.
	TotalParagraphCount int `json:"total_paragraph_count"`

	// Sections holds the ordered document structure.
	Sections []Section `json:"sections"`
}

// OccurrenceKey identifies one (series, date) occurrence.
type OccurrenceKey struct {
	SeriesID string `json:"series_id"`
	Date     string `json:"date"`
}

// Section is one header-delimited region of a document.
type Section struct {
	// HeaderText is the header line that opened the section.
	// Empty for the implicit section before the first header.
	HeaderText string `json:"header_text"`

	// HeaderHash is the digest of the normalised header text.
	HeaderHash string `json:"header_hash"`

	// Position is the 0-based index of the section in the document.
	Position int `json:"position"`

	// Paragraphs holds the ordered paragraphs of the section.
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Paragraph is one blank-line-delimited unit of section text.
type Paragraph struct {
	// ContentHash is the digest of the normalised paragraph text.
	ContentHash string `json:"content_hash"`

	// RawText is the normalised paragraph text.
	RawText string `json:"raw_text"`

	// PreviewText is RawText truncated to a bounded rune count.
	PreviewText string `json:"preview_text"`

	// WordCount counts whitespace-separated words in RawText.
	WordCount int `json:"word_count"`

	// Position is the 0-based index within the enclosing section.
	Position int `json:"position"`
}

// IsEmpty reports whether the paragraph carries no content.
func (p Paragraph) IsEmpty() bool {
	return p.WordCount == 0 || strings.TrimSpace(p.RawText) == ""
}

// SchemaCompatible reports whether a persisted schema version can be
// read by this code. Only the major component matters: minor revisions
// are additive, unknown majors must be skipped rather than guessed at.
func SchemaCompatible(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	current, _, _ := strings.Cut(SignatureSchemaVersion, ".")
	return major == current
}
