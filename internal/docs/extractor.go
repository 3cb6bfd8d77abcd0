package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// Segment is a run of document text together with the offsets the Docs API
// assigned to it. StartIndex and EndIndex are copied from the TextRun's
// ParagraphElement and can be passed back to write requests unchanged.
type Segment struct {
	Text       string `json:"text"`
	StartIndex int64  `json:"startOffset"`
	EndIndex   int64  `json:"endOffset"`
}

// Content is the flattened view of a document body.
// Text is the concatenation of every segment's text in document order.
type Content struct {
	Text     string    `json:"content"`
	Segments []Segment `json:"segments"`

	// bodyEnd is the end offset of the last structural element, 0 if unknown.
	bodyEnd int64
}

// bodyStartIndex is where every Docs body's text begins; offset 0 to 1 is
// the initial section break.
const bodyStartIndex = 1

// Gap is a part of the body's offset space that carries no extracted text,
// e.g. a table of contents or a table.
type Gap struct {
	StartIndex int64 `json:"startIndex"`
	EndIndex   int64 `json:"endIndex"`
}

type extractConfig struct {
	includeTables bool
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// WithTables makes the extractor descend into table cells. Cell paragraphs
// are emitted with their own offsets like any other paragraph.
func WithTables() ExtractOption {
	return func(c *extractConfig) {
		c.includeTables = true
	}
}

// WithTablesIf is WithTables when include is true. When include is false
// the option leaves the configuration untouched.
func WithTablesIf(include bool) ExtractOption {
	return func(c *extractConfig) {
		if include {
			c.includeTables = true
		}
	}
}

// Extract flattens a document into text and segments.
//
// Legacy documents carry their content in doc.Body. Documents fetched with
// includeTabsContent carry it in doc.Tabs instead, in which case the first
// tab is used. A nil document yields an empty Content.
func Extract(doc *docs.Document, opts ...ExtractOption) *Content {
	if doc == nil {
		return emptyContent()
	}
	if doc.Body != nil {
		return ExtractBody(doc.Body, opts...)
	}
	if len(doc.Tabs) > 0 {
		return ExtractBody(tabBody(doc.Tabs[0]), opts...)
	}
	return emptyContent()
}

// ExtractTab flattens the tab with the given ID. Child tabs are searched too.
// An empty tabID behaves like Extract.
func ExtractTab(doc *docs.Document, tabID string, opts ...ExtractOption) (*Content, error) {
	if tabID == "" {
		return Extract(doc, opts...), nil
	}
	if doc == nil {
		return nil, fmt.Errorf("tab %s not found: document is empty", tabID)
	}
	tab := findTab(doc.Tabs, tabID)
	if tab == nil {
		return nil, fmt.Errorf("tab %s not found in document %s", tabID, doc.DocumentId)
	}
	return ExtractBody(tabBody(tab), opts...), nil
}

// ExtractBody flattens a single body.
func ExtractBody(body *docs.Body, opts ...ExtractOption) *Content {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	out := emptyContent()
	if body == nil {
		return out
	}

	var sb strings.Builder
	extractElements(body.Content, cfg, &sb, out)
	out.Text = sb.String()
	for _, element := range body.Content {
		if element != nil && element.EndIndex > out.bodyEnd {
			out.bodyEnd = element.EndIndex
		}
	}
	return out
}

func extractElements(elements []*docs.StructuralElement, cfg *extractConfig, sb *strings.Builder, out *Content) {
	for _, element := range elements {
		if element == nil {
			continue
		}
		switch {
		case element.Paragraph != nil:
			extractParagraph(element.Paragraph, sb, out)
		case element.Table != nil && cfg.includeTables:
			for _, row := range element.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell == nil {
						continue
					}
					extractElements(cell.Content, cfg, sb, out)
				}
			}
		}
		// Tables of contents, section breaks and tables without WithTables
		// still occupy their offsets; nothing is renumbered after them.
	}
}

func extractParagraph(paragraph *docs.Paragraph, sb *strings.Builder, out *Content) {
	for _, element := range paragraph.Elements {
		if element == nil || element.TextRun == nil || element.TextRun.Content == "" {
			continue
		}
		// Offsets are 1-based, so a zero value means the field was absent.
		if element.StartIndex <= 0 || element.EndIndex <= 0 {
			continue
		}
		out.Segments = append(out.Segments, Segment{
			Text:       element.TextRun.Content,
			StartIndex: element.StartIndex,
			EndIndex:   element.EndIndex,
		})
		sb.WriteString(element.TextRun.Content)
	}
}

// Gaps reports the offset ranges of the body that hold no extracted text:
// before the first segment, between segments and after the last one.
func (c *Content) Gaps() []Gap {
	var gaps []Gap
	if c == nil || (len(c.Segments) == 0 && c.bodyEnd == 0) {
		return gaps
	}
	covered := int64(bodyStartIndex)
	for _, seg := range c.Segments {
		if seg.StartIndex > covered {
			gaps = append(gaps, Gap{StartIndex: covered, EndIndex: seg.StartIndex})
		}
		if seg.EndIndex > covered {
			covered = seg.EndIndex
		}
	}
	if c.bodyEnd > covered {
		gaps = append(gaps, Gap{StartIndex: covered, EndIndex: c.bodyEnd})
	}
	return gaps
}

// EndIndex returns the end offset of the last segment, or 0 when there is none.
func (c *Content) EndIndex() int64 {
	if c == nil || len(c.Segments) == 0 {
		return 0
	}
	return c.Segments[len(c.Segments)-1].EndIndex
}

func emptyContent() *Content {
	return &Content{Segments: []Segment{}}
}

func tabBody(tab *docs.Tab) *docs.Body {
	if tab == nil || tab.DocumentTab == nil {
		return nil
	}
	return tab.DocumentTab.Body
}

func findTab(tabs []*docs.Tab, tabID string) *docs.Tab {
	for _, tab := range tabs {
		if tab == nil {
			continue
		}
		if tab.TabProperties != nil && tab.TabProperties.TabId == tabID {
			return tab
		}
		if found := findTab(tab.ChildTabs, tabID); found != nil {
			return found
		}
	}
	return nil
}
