package docs

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf16"
)

// ErrTextNotFound is returned when a searched text has no match in the
// extracted segments.
var ErrTextNotFound = errors.New("marker not found")

// Range is a located piece of text with Docs API offsets.
type Range struct {
	StartIndex int64  `json:"startIndex"`
	EndIndex   int64  `json:"endIndex"`
	Text       string `json:"text"`
}

// FindOptions controls FindText.
type FindOptions struct {
	// MatchCase makes matching case-sensitive. The default folds case.
	MatchCase bool
}

// FindText returns every non-overlapping occurrence of needle in segments.
// Matches never span two segments. Offsets are computed in UTF-16 code
// units, which is how the Docs API counts.
func FindText(segments []Segment, needle string, opts FindOptions) []Range {
	ranges := []Range{}
	if needle == "" {
		return ranges
	}
	pattern := []rune(needle)

	for _, seg := range segments {
		haystack := []rune(seg.Text)
		// offset is the UTF-16 length of haystack[:i].
		var offset int64
		for i := 0; i+len(pattern) <= len(haystack); {
			if runesEqual(haystack[i:i+len(pattern)], pattern, opts.MatchCase) {
				length := utf16Len(haystack[i : i+len(pattern)])
				start := seg.StartIndex + offset
				ranges = append(ranges, Range{
					StartIndex: start,
					EndIndex:   start + length,
					Text:       string(haystack[i : i+len(pattern)]),
				})
				offset += length
				i += len(pattern)
				continue
			}
			offset += runeLen(haystack[i])
			i++
		}
	}
	return ranges
}

// FindNth returns the nth (1-based) occurrence of needle.
func FindNth(segments []Segment, needle string, n int, opts FindOptions) (Range, error) {
	if needle == "" {
		return Range{}, fmt.Errorf("empty search text: %w", ErrTextNotFound)
	}
	if n < 1 {
		return Range{}, fmt.Errorf("occurrence must be >= 1, got %d", n)
	}
	ranges := FindText(segments, needle, opts)
	if len(ranges) == 0 {
		return Range{}, fmt.Errorf("%q: %w", needle, ErrTextNotFound)
	}
	if n > len(ranges) {
		return Range{}, fmt.Errorf("%q occurs %d times, occurrence %d requested: %w", needle, len(ranges), n, ErrTextNotFound)
	}
	return ranges[n-1], nil
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int64 {
	return utf16Len([]rune(s))
}

func utf16Len(runes []rune) int64 {
	var n int64
	for _, r := range runes {
		n += runeLen(r)
	}
	return n
}

func runeLen(r rune) int64 {
	if n := utf16.RuneLen(r); n > 0 {
		return int64(n)
	}
	// Invalid runes are encoded as U+FFFD, a single unit.
	return 1
}

func runesEqual(a, b []rune, matchCase bool) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if matchCase || !foldEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func foldEqual(a, b rune) bool {
	if unicode.ToLower(a) == unicode.ToLower(b) {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
