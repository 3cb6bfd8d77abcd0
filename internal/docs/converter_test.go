package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docs "google.golang.org/api/docs/v1"
)

func styledRun(text string, style *docs.TextStyle) *docs.ParagraphElement {
	return &docs.ParagraphElement{TextRun: &docs.TextRun{Content: text, TextStyle: style}}
}

func styledParagraph(style string, elems ...*docs.ParagraphElement) *docs.StructuralElement {
	p := &docs.Paragraph{Elements: elems}
	if style != "" {
		p.ParagraphStyle = &docs.ParagraphStyle{NamedStyleType: style}
	}
	return &docs.StructuralElement{Paragraph: p}
}

func bulletParagraph(listID string, level int64, text string) *docs.StructuralElement {
	return &docs.StructuralElement{Paragraph: &docs.Paragraph{
		Bullet:   &docs.Bullet{ListId: listID, NestingLevel: level},
		Elements: []*docs.ParagraphElement{styledRun(text, nil)},
	}}
}

func TestDocumentToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		doc      *docs.Document
		expected string
		wantErr  bool
	}{
		{
			name:    "nil document",
			doc:     nil,
			wantErr: true,
		},
		{
			name: "title and paragraph",
			doc: &docs.Document{
				Title: "Test Document",
				Body: &docs.Body{Content: []*docs.StructuralElement{
					{SectionBreak: &docs.SectionBreak{}},
					styledParagraph("", styledRun("This is a test.\n", nil)),
				}},
			},
			expected: "# Test Document\n\nThis is a test.\n\n",
		},
		{
			name: "headings",
			doc: &docs.Document{
				Title: "Document",
				Body: &docs.Body{Content: []*docs.StructuralElement{
					styledParagraph("HEADING_1", styledRun("Heading 1\n", nil)),
					styledParagraph("HEADING_2", styledRun("Heading 2\n", nil)),
				}},
			},
			expected: "# Document\n\n# Heading 1\n\n## Heading 2\n\n",
		},
		{
			name: "emphasis keeps whitespace outside markers",
			doc: &docs.Document{
				Body: &docs.Body{Content: []*docs.StructuralElement{
					styledParagraph("",
						styledRun("Say ", nil),
						styledRun("hello ", &docs.TextStyle{Bold: true}),
						styledRun("to ", &docs.TextStyle{Italic: true}),
						styledRun("everyone", &docs.TextStyle{Bold: true, Italic: true}),
						styledRun("\n", nil),
					),
				}},
			},
			expected: "Say **hello** *to* ***everyone***\n\n",
		},
		{
			name: "strikethrough, code and links",
			doc: &docs.Document{
				Body: &docs.Body{Content: []*docs.StructuralElement{
					styledParagraph("",
						styledRun("old", &docs.TextStyle{Strikethrough: true}),
						styledRun(" ", nil),
						styledRun("go test", &docs.TextStyle{WeightedFontFamily: &docs.WeightedFontFamily{FontFamily: "Roboto Mono"}}),
						styledRun(" ", nil),
						styledRun("Click here", &docs.TextStyle{Link: &docs.Link{Url: "https://example.com"}}),
						styledRun("\n", nil),
					),
				}},
			},
			expected: "~~old~~ `go test` [Click here](https://example.com)\n\n",
		},
		{
			name: "bullet and numbered lists",
			doc: &docs.Document{
				Lists: map[string]docs.List{
					"numbered": {ListProperties: &docs.ListProperties{NestingLevels: []*docs.NestingLevel{{GlyphType: "DECIMAL"}}}},
					"bullets":  {ListProperties: &docs.ListProperties{NestingLevels: []*docs.NestingLevel{{GlyphSymbol: "●"}, {GlyphSymbol: "○"}}}},
				},
				Body: &docs.Body{Content: []*docs.StructuralElement{
					bulletParagraph("bullets", 0, "Item 1\n"),
					bulletParagraph("bullets", 1, "Nested\n"),
					styledParagraph("", styledRun("Between\n", nil)),
					bulletParagraph("numbered", 0, "First\n"),
					bulletParagraph("numbered", 0, "Second\n"),
				}},
			},
			expected: "- Item 1\n  - Nested\n\nBetween\n\n1. First\n1. Second\n\n",
		},
		{
			name: "tabs and child tabs",
			doc: &docs.Document{
				Title: "Tabbed",
				Tabs: []*docs.Tab{
					{
						DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{
							styledParagraph("", styledRun("First tab\n", nil)),
						}}},
						ChildTabs: []*docs.Tab{{
							TabProperties: &docs.TabProperties{Title: "Notes"},
							DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{
								styledParagraph("", styledRun("Child\n", nil)),
							}}},
						}},
					},
					{
						DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{
							styledParagraph("", styledRun("Second tab\n", nil)),
						}}},
					},
				},
			},
			expected: "# Tabbed\n\nFirst tab\n\n### Notes\n\nChild\n\n## Tab 2\n\nSecond tab\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DocumentToMarkdown(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDocumentToMarkdown_Table(t *testing.T) {
	doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{{
		Table: &docs.Table{TableRows: []*docs.TableRow{
			{TableCells: []*docs.TableCell{
				{Content: []*docs.StructuralElement{styledParagraph("", styledRun("Name\n", nil))}},
				{Content: []*docs.StructuralElement{styledParagraph("", styledRun("Value\n", nil))}},
			}},
			{TableCells: []*docs.TableCell{
				{Content: []*docs.StructuralElement{styledParagraph("", styledRun("a|b\n", nil))}},
				{Content: []*docs.StructuralElement{styledParagraph("", styledRun("1\n", nil))}},
			}},
		}},
	}}}}

	result, err := DocumentToMarkdown(doc)
	require.NoError(t, err)
	assert.Equal(t, "| Name | Value |\n| --- | --- |\n| a\\|b | 1 |\n\n", result)
}

func TestDocumentToPlainText(t *testing.T) {
	tests := []struct {
		name     string
		doc      *docs.Document
		expected string
		wantErr  bool
	}{
		{
			name:    "nil document",
			wantErr: true,
		},
		{
			name: "paragraphs",
			doc: &docs.Document{
				Title: "Multi Paragraph",
				Body: &docs.Body{Content: []*docs.StructuralElement{
					styledParagraph("", styledRun("First paragraph.\n", nil)),
					styledParagraph("", styledRun("Second ", &docs.TextStyle{Bold: true}), styledRun("paragraph.\n", nil)),
				}},
			},
			expected: "Multi Paragraph\n\nFirst paragraph.\nSecond paragraph.\n",
		},
		{
			name: "table cells are tab separated",
			doc: &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{{
				Table: &docs.Table{TableRows: []*docs.TableRow{{TableCells: []*docs.TableCell{
					{Content: []*docs.StructuralElement{styledParagraph("", styledRun("A\n", nil))}},
					{Content: []*docs.StructuralElement{styledParagraph("", styledRun("B\n", nil))}},
				}}}},
			}}}},
			expected: "A\tB\t\n",
		},
		{
			name: "tabs",
			doc: &docs.Document{Tabs: []*docs.Tab{
				{
					TabProperties: &docs.TabProperties{Title: "Main"},
					DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{
						styledParagraph("", styledRun("Body\n", nil)),
					}}},
					ChildTabs: []*docs.Tab{{
						DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{
							styledParagraph("", styledRun("Sub\n", nil)),
						}}},
					}},
				},
			}},
			expected: "=== Main ===\n\nBody\n\n  --- Subtab 1 ---\n\nSub\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DocumentToPlainText(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDocumentToHTML(t *testing.T) {
	doc := &docs.Document{
		Title: "Report <draft>",
		Body: &docs.Body{Content: []*docs.StructuralElement{
			styledParagraph("", styledRun("Important", &docs.TextStyle{Bold: true}), styledRun(" & done\n", nil)),
			styledParagraph("", styledRun("gone", &docs.TextStyle{Strikethrough: true}), styledRun("\n", nil)),
		}},
	}

	html, err := DocumentToHTML(doc)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Report ")
	assert.Contains(t, html, "<strong>Important</strong> &amp; done")
	assert.Contains(t, html, "<del>gone</del>")
	assert.False(t, strings.Contains(html, "<draft>"), "raw HTML must not pass through")

	_, err = DocumentToHTML(nil)
	assert.Error(t, err)
}
