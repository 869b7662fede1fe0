// Package extractor turns raw document text into a structural content
// signature: sections delimited by header lines, paragraphs delimited by
// blank lines, and a SHA-256 digest per paragraph, per header and over
// the whole document. Signatures are the input to the diff engine and
// the unit the signature cache stores.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

// PreviewRunes bounds paragraph previews. Truncation counts runes, so a
// multi-byte character is never split.
const PreviewRunes = 50

var (
	markdownHeaderRe = regexp.MustCompile(`^#+\s+(.+)$`)
	underlineRe      = regexp.MustCompile(`^[=-]+$`)
	boldHeaderRe     = regexp.MustCompile(`^(?:\*\*|__)(.+?)(?:\*\*|__)(?:\s*:)?$`)
	blankLinesRe     = regexp.MustCompile(`\n\s*\n+`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	zeroWidthRe      = regexp.MustCompile("[\u200b\u200c\u200d\ufeff]")
)

// Service extracts content signatures from document text.
type Service struct{}

// New creates an extractor service.
func New() *Service {
	return &Service{}
}

// Extract computes the signature of the text for one occurrence.
// Empty input yields a valid signature with zero sections; structural
// anomalies (no headers, no paragraphs) are not errors.
func (s *Service) Extract(key domain.OccurrenceKey, text string) *domain.Signature {
	sig := &domain.Signature{
		OccurrenceKey: key,
		SchemaVersion: domain.SignatureSchemaVersion,
		ExtractedAt:   time.Now().UTC(),
		FullHash:      HashText(text),
	}

	sig.Sections = splitSections(text)
	for _, section := range sig.Sections {
		sig.TotalParagraphCount += len(section.Paragraphs)
		for _, para := range section.Paragraphs {
			sig.TotalWordCount += para.WordCount
		}
	}

	return sig
}

// splitSections walks the text line by line. A header line starts a new
// section; text before the first header belongs to an implicit unnamed
// section. Sections that end up with no paragraphs are dropped, and
// positions stay dense 0-based over the kept sections.
func splitSections(text string) []domain.Section {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	var sections []domain.Section
	header := ""
	var body []string
	position := 0

	flush := func() {
		section := buildSection(header, strings.Join(body, "\n"), position)
		if len(section.Paragraphs) > 0 {
			sections = append(sections, section)
			position++
		}
		body = body[:0]
	}

	for i := 0; i < len(lines); i++ {
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		if h, ok := headerLine(lines[i], next); ok {
			flush()
			header = h
			// An underlined header consumes its underline too.
			if underlineRe.MatchString(strings.TrimSpace(next)) {
				i++
			}
			continue
		}
		body = append(body, lines[i])
	}
	flush()

	return sections
}

// headerLine reports whether the line opens a new section and returns
// the header text. Recognised forms: markdown #-headers, a line
// underlined with = or -, a fully-bolded line, and a short all-caps
// line of at most five words.
func headerLine(line, next string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	if m := markdownHeaderRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if next != "" && underlineRe.MatchString(strings.TrimSpace(next)) {
		return line, true
	}

	if m := boldHeaderRe.FindStringSubmatch(line); m != nil {
		h := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		return h, true
	}

	if line == strings.ToUpper(line) && line != strings.ToLower(line) && len(strings.Fields(line)) <= 5 {
		return line, true
	}

	return "", false
}

// buildSection splits the body on blank-line boundaries and hashes each
// surviving paragraph.
func buildSection(header, body string, position int) domain.Section {
	section := domain.Section{
		HeaderText: header,
		HeaderHash: HashText(header),
		Position:   position,
	}

	for _, raw := range blankLinesRe.Split(body, -1) {
		text := NormaliseText(raw)
		if text == "" {
			continue
		}
		section.Paragraphs = append(section.Paragraphs, domain.Paragraph{
			ContentHash: HashText(text),
			RawText:     text,
			PreviewText: preview(text),
			WordCount:   len(strings.Fields(text)),
			Position:    len(section.Paragraphs),
		})
	}

	return section
}

// NormaliseText collapses all whitespace runs to single spaces, strips
// zero-width characters and trims the ends. Case is preserved so the
// hashes distinguish edits that only change capitalisation.
func NormaliseText(text string) string {
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// HashText returns the hex SHA-256 of the normalised text. The digest
// is a deterministic function of the text alone, so byte-identical
// paragraphs hash identically regardless of surrounding content.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(NormaliseText(text)))
	return hex.EncodeToString(sum[:])
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewRunes {
		return text
	}
	return string(runes[:PreviewRunes]) + "..."
}
