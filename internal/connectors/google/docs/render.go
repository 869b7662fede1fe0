package docs

import (
	"strings"

	"google.golang.org/api/docs/v1"
)

// Heading prefixes by named paragraph style.
var headingPrefixes = map[string]string{
	"TITLE":     "# ",
	"HEADING_1": "# ",
	"HEADING_2": "## ",
	"HEADING_3": "### ",
	"HEADING_4": "#### ",
	"HEADING_5": "##### ",
	"HEADING_6": "###### ",
}

// renderDocument converts a structural Docs read into markdown:
// headings by named style, bullets as list items, tables as pipe rows.
func renderDocument(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}

	var blocks []string
	for _, element := range doc.Body.Content {
		switch {
		case element.Paragraph != nil:
			if block := renderParagraph(element.Paragraph); block != "" {
				blocks = append(blocks, block)
			}
		case element.Table != nil:
			if block := renderTable(element.Table); block != "" {
				blocks = append(blocks, block)
			}
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderParagraph renders one paragraph with its heading or bullet
// marker. Empty paragraphs render to "".
func renderParagraph(p *docs.Paragraph) string {
	text := paragraphText(p)
	if text == "" {
		return ""
	}

	if p.Bullet != nil {
		indent := strings.Repeat("  ", int(p.Bullet.NestingLevel))
		return indent + "- " + text
	}

	if p.ParagraphStyle != nil {
		if prefix, ok := headingPrefixes[p.ParagraphStyle.NamedStyleType]; ok {
			return prefix + text
		}
	}
	return text
}

// paragraphText concatenates the text runs of a paragraph.
func paragraphText(p *docs.Paragraph) string {
	var b strings.Builder
	for _, element := range p.Elements {
		if element.TextRun != nil {
			b.WriteString(element.TextRun.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// renderTable renders a table as pipe-delimited rows, one per line.
// Rows whose cells are all empty are dropped.
func renderTable(t *docs.Table) string {
	var rows []string
	for _, row := range t.TableRows {
		var cells []string
		nonEmpty := false
		for _, cell := range row.TableCells {
			text := cellText(cell)
			if text != "" {
				nonEmpty = true
			}
			cells = append(cells, text)
		}
		if nonEmpty {
			rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		}
	}
	return strings.Join(rows, "\n")
}

// cellText joins the paragraph texts inside a table cell.
func cellText(cell *docs.TableCell) string {
	var parts []string
	for _, element := range cell.Content {
		if element.Paragraph == nil {
			continue
		}
		if text := paragraphText(element.Paragraph); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
