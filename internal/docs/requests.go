package docs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// ErrInvalidRange is returned for indices the Docs API would reject.
var ErrInvalidRange = errors.New("invalid range")

// InsertTextRequest inserts text at a 1-based index.
func InsertTextRequest(index int64, text, tabID string) (*docs.Request, error) {
	if index < 1 {
		return nil, fmt.Errorf("index must be >= 1, got %d: %w", index, ErrInvalidRange)
	}
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	return &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Text:     text,
			Location: &docs.Location{Index: index, TabId: tabID},
		},
	}, nil
}

// AppendTextRequest inserts text at the end of the body.
func AppendTextRequest(text, tabID string) (*docs.Request, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	return &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Text:                 text,
			EndOfSegmentLocation: &docs.EndOfSegmentLocation{TabId: tabID},
		},
	}, nil
}

// DeleteContentRangeRequest deletes [start, end).
func DeleteContentRangeRequest(start, end int64, tabID string) (*docs.Request, error) {
	r, err := newRange(start, end, tabID)
	if err != nil {
		return nil, err
	}
	return &docs.Request{
		DeleteContentRange: &docs.DeleteContentRangeRequest{Range: r},
	}, nil
}

// TextStyleOptions lists the character styles a caller may set.
// Nil pointers and empty strings leave the style untouched.
type TextStyleOptions struct {
	Bold            *bool
	Italic          *bool
	Underline       *bool
	Strikethrough   *bool
	FontSize        *float64
	FontFamily      string
	ForegroundColor string
	BackgroundColor string
	Link            string
}

// IsEmpty reports whether no style is set.
func (o TextStyleOptions) IsEmpty() bool {
	return o.Bold == nil && o.Italic == nil && o.Underline == nil && o.Strikethrough == nil &&
		o.FontSize == nil && o.FontFamily == "" && o.ForegroundColor == "" &&
		o.BackgroundColor == "" && o.Link == ""
}

// UpdateTextStyleRequest styles [start, end). The field mask lists exactly
// the styles present in opts.
func UpdateTextStyleRequest(start, end int64, tabID string, opts TextStyleOptions) (*docs.Request, error) {
	r, err := newRange(start, end, tabID)
	if err != nil {
		return nil, err
	}
	style, fields, err := buildTextStyle(opts)
	if err != nil {
		return nil, err
	}
	return &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     r,
			TextStyle: style,
			Fields:    strings.Join(fields, ","),
		},
	}, nil
}

// ReplaceAllTextRequest replaces every occurrence of contains with replace.
// An empty replace deletes the matches.
func ReplaceAllTextRequest(contains, replace string, matchCase bool) (*docs.Request, error) {
	if contains == "" {
		return nil, fmt.Errorf("containsText is required")
	}
	req := &docs.ReplaceAllTextRequest{
		ContainsText: &docs.SubstringMatchCriteria{
			Text:      contains,
			MatchCase: matchCase,
		},
		ReplaceText: replace,
	}
	if replace == "" {
		req.ForceSendFields = []string{"ReplaceText"}
	}
	return &docs.Request{ReplaceAllText: req}, nil
}

func newRange(start, end int64, tabID string) (*docs.Range, error) {
	if start < 1 || end < 1 {
		return nil, fmt.Errorf("indices must be >= 1, got [%d, %d): %w", start, end, ErrInvalidRange)
	}
	if end <= start {
		return nil, fmt.Errorf("endIndex %d must be greater than startIndex %d: %w", end, start, ErrInvalidRange)
	}
	return &docs.Range{StartIndex: start, EndIndex: end, TabId: tabID}, nil
}

func buildTextStyle(opts TextStyleOptions) (*docs.TextStyle, []string, error) {
	if opts.IsEmpty() {
		return nil, nil, fmt.Errorf("at least one style option is required")
	}

	style := &docs.TextStyle{}
	var fields []string

	setBool := func(v *bool, field, mask string, dst *bool) {
		if v == nil {
			return
		}
		*dst = *v
		fields = append(fields, mask)
		if !*v {
			style.ForceSendFields = append(style.ForceSendFields, field)
		}
	}
	setBool(opts.Bold, "Bold", "bold", &style.Bold)
	setBool(opts.Italic, "Italic", "italic", &style.Italic)
	setBool(opts.Underline, "Underline", "underline", &style.Underline)
	setBool(opts.Strikethrough, "Strikethrough", "strikethrough", &style.Strikethrough)

	if opts.FontSize != nil {
		if *opts.FontSize <= 0 {
			return nil, nil, fmt.Errorf("fontSize must be positive, got %v", *opts.FontSize)
		}
		style.FontSize = &docs.Dimension{Magnitude: *opts.FontSize, Unit: "PT"}
		fields = append(fields, "fontSize")
	}
	if opts.FontFamily != "" {
		style.WeightedFontFamily = &docs.WeightedFontFamily{FontFamily: opts.FontFamily}
		fields = append(fields, "weightedFontFamily")
	}
	if opts.ForegroundColor != "" {
		c, err := ParseHexColor(opts.ForegroundColor)
		if err != nil {
			return nil, nil, fmt.Errorf("foregroundColor: %w", err)
		}
		style.ForegroundColor = &docs.OptionalColor{Color: &docs.Color{RgbColor: c}}
		fields = append(fields, "foregroundColor")
	}
	if opts.BackgroundColor != "" {
		c, err := ParseHexColor(opts.BackgroundColor)
		if err != nil {
			return nil, nil, fmt.Errorf("backgroundColor: %w", err)
		}
		style.BackgroundColor = &docs.OptionalColor{Color: &docs.Color{RgbColor: c}}
		fields = append(fields, "backgroundColor")
	}
	if opts.Link != "" {
		style.Link = &docs.Link{Url: opts.Link}
		fields = append(fields, "link")
	}
	return style, fields, nil
}

// ParseHexColor parses #RGB or #RRGGBB into a Docs RGB colour.
func ParseHexColor(hex string) (*docs.RgbColor, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	c := &docs.RgbColor{
		Red:   float64((v>>16)&0xff) / 255,
		Green: float64((v>>8)&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}
	// Zero channels are otherwise dropped from the JSON body.
	c.ForceSendFields = []string{"Red", "Green", "Blue"}
	return c, nil
}
