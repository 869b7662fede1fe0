package driven

import "github.com/matburt/meeting-notes-handler/internal/core/domain"

// MarkdownNormaliser derives structure from markdown text.
type MarkdownNormaliser interface {
	// Title returns the document title: the first heading, or the first
	// non-empty line when the document has no headings. "" when empty.
	Title(source string) string

	// Outline returns the heading hierarchy in document order.
	Outline(source string) ([]domain.Heading, error)
}
