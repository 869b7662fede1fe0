// Package markdown derives structure from markdown text: the document
// title and a heading outline. The fetch pipeline uses it to name
// documents that arrive without metadata, and the watch inbox uses it
// to title dropped files.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.MarkdownNormaliser = (*Normaliser)(nil)

// Normaliser inspects markdown through a goldmark parse.
type Normaliser struct {
	parser goldmark.Markdown
}

// New creates a markdown normaliser.
func New() *Normaliser {
	return &Normaliser{
		parser: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Title returns the document title: the first heading at the shallowest
// depth, or the first non-empty line when the document has no headings.
func (n *Normaliser) Title(source string) string {
	headings, err := n.Outline(source)
	if err == nil && len(headings) > 0 {
		best := headings[0]
		for _, h := range headings[1:] {
			if h.Level < best.Level {
				best = h
			}
		}
		return best.Text
	}

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

// Outline returns the heading hierarchy in document order.
func (n *Normaliser) Outline(source string) ([]domain.Heading, error) {
	src := []byte(source)
	doc := n.parser.Parser().Parse(text.NewReader(src))

	tree, err := toc.Inspect(doc, src, toc.Compact(true))
	if err != nil {
		return nil, fmt.Errorf("inspect outline: %w", err)
	}

	var headings []domain.Heading
	collectHeadings(tree.Items, 1, &headings)
	return headings, nil
}

// collectHeadings flattens the TOC tree depth-first.
func collectHeadings(items toc.Items, level int, out *[]domain.Heading) {
	for _, item := range items {
		if len(item.Title) > 0 {
			*out = append(*out, domain.Heading{Level: level, Text: string(item.Title)})
		}
		collectHeadings(item.Items, level+1, out)
	}
}
