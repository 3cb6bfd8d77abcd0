package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	docs "google.golang.org/api/docs/v1"
)

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// DocumentToMarkdown converts a Google Doc to Markdown.
// Tabbed documents render every tab, with child tabs one heading level deeper.
func DocumentToMarkdown(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	w := &markdownWriter{}

	if doc.Title != "" {
		w.heading(1, doc.Title)
	}

	if len(doc.Tabs) == 0 {
		w.body(doc.Body, doc.Lists)
		return w.String(), nil
	}

	walkTabs(doc.Tabs, 0, func(tab *docs.Tab, index, depth int) {
		if title := tabTitle(tab, index, depth); title != "" {
			w.heading(min(2+depth, 6), title)
		}
		if tab.DocumentTab != nil {
			w.body(tab.DocumentTab.Body, tab.DocumentTab.Lists)
		}
	})

	return w.String(), nil
}

// DocumentToHTML renders the Markdown form of a document as HTML.
// Raw HTML in document text is not passed through.
func DocumentToHTML(doc *docs.Document) (string, error) {
	md, err := DocumentToMarkdown(doc)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// DocumentToPlainText extracts plain text from a Google Doc.
// Table cells are separated by tabs and rows by newlines.
func DocumentToPlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var text strings.Builder

	if doc.Title != "" {
		text.WriteString(doc.Title)
		text.WriteString("\n\n")
	}

	if len(doc.Tabs) == 0 {
		writePlainBody(&text, doc.Body)
		return text.String(), nil
	}

	walkTabs(doc.Tabs, 0, func(tab *docs.Tab, index, depth int) {
		if title := tabTitle(tab, index, depth); title != "" {
			if depth == 0 {
				fmt.Fprintf(&text, "=== %s ===\n\n", title)
			} else {
				fmt.Fprintf(&text, "%s--- %s ---\n\n", strings.Repeat("  ", depth), title)
			}
		}
		if tab.DocumentTab != nil {
			writePlainBody(&text, tab.DocumentTab.Body)
		}
		text.WriteString("\n")
	})

	return text.String(), nil
}

// walkTabs visits tabs depth-first in document order.
func walkTabs(tabs []*docs.Tab, depth int, visit func(tab *docs.Tab, index, depth int)) {
	for i, tab := range tabs {
		if tab == nil {
			continue
		}
		visit(tab, i, depth)
		walkTabs(tab.ChildTabs, depth+1, visit)
	}
}

// tabTitle returns the heading for a tab. The untitled first top-level tab has none.
func tabTitle(tab *docs.Tab, index, depth int) string {
	if tab.TabProperties != nil && tab.TabProperties.Title != "" {
		return tab.TabProperties.Title
	}
	switch {
	case depth > 0:
		return fmt.Sprintf("Subtab %d", index+1)
	case index > 0:
		return fmt.Sprintf("Tab %d", index+1)
	default:
		return ""
	}
}

type markdownWriter struct {
	b      strings.Builder
	inList bool
}

func (w *markdownWriter) String() string {
	w.endList()
	return w.b.String()
}

func (w *markdownWriter) heading(level int, text string) {
	w.endList()
	w.b.WriteString(strings.Repeat("#", level))
	w.b.WriteString(" ")
	w.b.WriteString(text)
	w.b.WriteString("\n\n")
}

func (w *markdownWriter) endList() {
	if w.inList {
		w.b.WriteString("\n")
		w.inList = false
	}
}

func (w *markdownWriter) body(body *docs.Body, lists map[string]docs.List) {
	if body == nil {
		return
	}
	for i, element := range body.Content {
		if element == nil {
			continue
		}
		switch {
		case element.Paragraph != nil:
			w.paragraph(element.Paragraph, lists)
		case element.Table != nil:
			w.endList()
			w.table(element.Table)
		case element.SectionBreak != nil && i > 0:
			w.endList()
			w.b.WriteString("---\n\n")
		}
	}
}

func (w *markdownWriter) paragraph(para *docs.Paragraph, lists map[string]docs.List) {
	var text strings.Builder
	for _, elem := range para.Elements {
		switch {
		case elem.TextRun != nil:
			writeTextRun(&text, elem.TextRun)
		case elem.InlineObjectElement != nil:
			text.WriteString("[inline object]")
		}
	}
	content := strings.TrimRight(text.String(), "\n")
	content = strings.ReplaceAll(content, "\v", "\n")

	if para.Bullet != nil {
		if content == "" {
			return
		}
		w.inList = true
		w.b.WriteString(strings.Repeat("  ", int(para.Bullet.NestingLevel)))
		if isOrderedList(lists, para.Bullet) {
			w.b.WriteString("1. ")
		} else {
			w.b.WriteString("- ")
		}
		w.b.WriteString(content)
		w.b.WriteString("\n")
		return
	}

	w.endList()
	if strings.TrimSpace(content) == "" {
		return
	}
	if level := headingLevel(para.ParagraphStyle); level > 0 {
		w.heading(level, content)
		return
	}
	w.b.WriteString(content)
	w.b.WriteString("\n\n")
}

func (w *markdownWriter) table(table *docs.Table) {
	if len(table.TableRows) == 0 {
		return
	}

	for rowIndex, row := range table.TableRows {
		w.b.WriteString("|")
		for _, cell := range row.TableCells {
			w.b.WriteString(" ")
			w.b.WriteString(cellText(cell))
			w.b.WriteString(" |")
		}
		w.b.WriteString("\n")

		if rowIndex == 0 {
			w.b.WriteString("|")
			for range row.TableCells {
				w.b.WriteString(" --- |")
			}
			w.b.WriteString("\n")
		}
	}
	w.b.WriteString("\n")
}

// cellText flattens a table cell to a single Markdown table line.
func cellText(cell *docs.TableCell) string {
	var parts []string
	for _, element := range cell.Content {
		if element.Paragraph == nil {
			continue
		}
		var text strings.Builder
		for _, elem := range element.Paragraph.Elements {
			if elem.TextRun != nil {
				text.WriteString(elem.TextRun.Content)
			}
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			parts = append(parts, s)
		}
	}
	joined := strings.Join(parts, " ")
	joined = strings.ReplaceAll(joined, "\n", " ")
	return strings.ReplaceAll(joined, "|", `\|`)
}

func headingLevel(style *docs.ParagraphStyle) int {
	if style == nil {
		return 0
	}
	switch style.NamedStyleType {
	case "TITLE", "HEADING_1":
		return 1
	case "SUBTITLE", "HEADING_2":
		return 2
	case "HEADING_3":
		return 3
	case "HEADING_4":
		return 4
	case "HEADING_5":
		return 5
	case "HEADING_6":
		return 6
	}
	return 0
}

// isOrderedList reports whether the bullet's nesting level uses a numbered glyph.
func isOrderedList(lists map[string]docs.List, bullet *docs.Bullet) bool {
	list, ok := lists[bullet.ListId]
	if !ok || list.ListProperties == nil {
		return false
	}
	levels := list.ListProperties.NestingLevels
	n := int(bullet.NestingLevel)
	if n >= len(levels) || levels[n] == nil {
		return false
	}
	switch levels[n].GlyphType {
	case "", "GLYPH_TYPE_UNSPECIFIED", "NONE":
		return false
	}
	return true
}

func isMonospace(style *docs.TextStyle) bool {
	if style.WeightedFontFamily == nil {
		return false
	}
	family := strings.ToLower(style.WeightedFontFamily.FontFamily)
	for _, mono := range []string{"courier", "consolas", "mono"} {
		if strings.Contains(family, mono) {
			return true
		}
	}
	return false
}

// writeTextRun writes a run with Markdown emphasis. Markers wrap the trimmed
// text so surrounding whitespace stays outside them.
func writeTextRun(md *strings.Builder, run *docs.TextRun) {
	content := run.Content
	style := run.TextStyle
	if content == "" {
		return
	}
	if style == nil {
		md.WriteString(content)
		return
	}

	core := strings.TrimSpace(content)
	if core == "" {
		md.WriteString(content)
		return
	}
	start := strings.Index(content, core)
	lead, trail := content[:start], content[start+len(core):]

	switch {
	case style.Link != nil && style.Link.Url != "":
		core = "[" + core + "](" + style.Link.Url + ")"
	case isMonospace(style):
		core = "`" + core + "`"
	default:
		if style.Strikethrough {
			core = "~~" + core + "~~"
		}
		switch {
		case style.Bold && style.Italic:
			core = "***" + core + "***"
		case style.Bold:
			core = "**" + core + "**"
		case style.Italic:
			core = "*" + core + "*"
		}
	}

	md.WriteString(lead)
	md.WriteString(core)
	md.WriteString(trail)
}

func writePlainBody(text *strings.Builder, body *docs.Body) {
	if body == nil {
		return
	}
	for _, element := range body.Content {
		writePlainElement(text, element)
	}
}

func writePlainElement(text *strings.Builder, element *docs.StructuralElement) {
	switch {
	case element == nil:
	case element.Paragraph != nil:
		for _, elem := range element.Paragraph.Elements {
			if elem.TextRun != nil {
				text.WriteString(elem.TextRun.Content)
			}
		}
	case element.Table != nil:
		for _, row := range element.Table.TableRows {
			for _, cell := range row.TableCells {
				var cellBuf strings.Builder
				for _, inner := range cell.Content {
					writePlainElement(&cellBuf, inner)
				}
				text.WriteString(strings.TrimRight(cellBuf.String(), "\n"))
				text.WriteString("\t")
			}
			text.WriteString("\n")
		}
	}
}
