package driven

import "context"

// DocMeta describes a converted document.
type DocMeta struct {
	// Title is the document title as reported by the source.
	Title string

	// DocID is the Drive/Docs file identifier.
	DocID string

	// MimeType is the source file's MIME type.
	MimeType string

	// ExportedNatively is true when the content came from a native
	// markdown export rather than a structural read.
	ExportedNatively bool
}

// DocConverter turns a remote document into markdown text.
// Implemented by the Google Docs connector.
type DocConverter interface {
	// ToMarkdown fetches and converts the document with the given id.
	ToMarkdown(ctx context.Context, docID string) (string, DocMeta, error)

	// DocIDFromURL extracts the file id from a document link, "" when
	// the link carries no recognisable id.
	DocIDFromURL(url string) string
}
