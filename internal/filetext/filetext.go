package filetext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedType is returned for content that has no text form.
var ErrUnsupportedType = errors.New("unsupported file type")

// DefaultMaxChars bounds the text returned by Extract.
const DefaultMaxChars = 100000

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML = "text/html"
)

// Result is the text extracted from a file.
type Result struct {
	Text      string `json:"text"`
	MimeType  string `json:"mimeType"`
	Truncated bool   `json:"truncated"`
}

// Extract converts data to plain text. The format is chosen from mimeType,
// falling back to the extension of name. Text longer than maxChars runes is
// cut and flagged; a non-positive maxChars selects DefaultMaxChars.
func Extract(data []byte, mimeType, name string, maxChars int) (*Result, error) {
	kind := detect(mimeType, name)

	var (
		text string
		err  error
	)
	switch kind {
	case mimePDF:
		text, err = pdfText(data)
	case mimeDOCX:
		text, err = docxText(data)
	case mimeHTML:
		text, err = htmlText(bytes.NewReader(data))
	case "text/plain":
		text = decodeText(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, displayType(mimeType, name))
	}
	if err != nil {
		return nil, err
	}

	text, truncated := truncate(text, maxChars)
	return &Result{Text: text, MimeType: kind, Truncated: truncated}, nil
}

// Supported reports whether Extract can handle the given type.
func Supported(mimeType, name string) bool {
	return detect(mimeType, name) != ""
}

func detect(mimeType, name string) string {
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch {
	case mimeType == mimePDF:
		return mimePDF
	case mimeType == mimeDOCX:
		return mimeDOCX
	case mimeType == mimeHTML || mimeType == "application/xhtml+xml":
		return mimeHTML
	case strings.HasPrefix(mimeType, "text/"),
		mimeType == "application/json",
		mimeType == "application/xml",
		mimeType == "application/x-yaml",
		mimeType == "application/yaml":
		return "text/plain"
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".html", ".htm":
		return mimeHTML
	case ".txt", ".md", ".markdown", ".csv", ".tsv", ".json", ".yaml", ".yml", ".xml", ".log":
		return "text/plain"
	}
	return ""
}

func displayType(mimeType, name string) string {
	if mimeType != "" {
		return mimeType
	}
	if ext := path.Ext(name); ext != "" {
		return ext
	}
	return "unknown"
}

// decodeText returns data as UTF-8, treating invalid input as Windows-1252.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

func truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// writeTemp stores data in a temporary file for the PDF reader, which opens
// documents by path. The caller removes the file.
func writeTemp(data []byte, pattern string) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}

func pdfText(data []byte) (string, error) {
	tmpPath, err := writeTemp(data, "gdrive-mcp-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(strings.TrimSpace(text))
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if text := docxParagraphText(it); text != "" {
				paragraphs = append(paragraphs, text)
			}
		case *docx.Table:
			for _, row := range it.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, p := range cell.Paragraphs {
						if text := docxParagraphText(p); text != "" {
							parts = append(parts, text)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				paragraphs = append(paragraphs, strings.Join(cells, "\t"))
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteString("\t")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

var htmlBlockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true,
}

func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		case html.TextNode:
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && htmlBlockElements[n.Data] && buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
