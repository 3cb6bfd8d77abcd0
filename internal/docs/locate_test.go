package docs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindText(t *testing.T) {
	segments := []Segment{
		{Text: "Intro text\n", StartIndex: 1, EndIndex: 12},
		{Text: "TESTMARKER\n", StartIndex: 1235, EndIndex: 1246},
		{Text: "marker again, Marker\n", StartIndex: 1246, EndIndex: 1267},
	}

	tests := []struct {
		name   string
		needle string
		opts   FindOptions
		want   []Range
	}{
		{
			name:   "after table of contents",
			needle: "TESTMARKER",
			opts:   FindOptions{MatchCase: true},
			want:   []Range{{StartIndex: 1235, EndIndex: 1245, Text: "TESTMARKER"}},
		},
		{
			name:   "case insensitive by default",
			needle: "marker",
			want: []Range{
				{StartIndex: 1239, EndIndex: 1245, Text: "MARKER"},
				{StartIndex: 1246, EndIndex: 1252, Text: "marker"},
				{StartIndex: 1260, EndIndex: 1266, Text: "Marker"},
			},
		},
		{
			name:   "match case",
			needle: "Marker",
			opts:   FindOptions{MatchCase: true},
			want:   []Range{{StartIndex: 1260, EndIndex: 1266, Text: "Marker"}},
		},
		{
			name:   "does not cross segments",
			needle: "text\nTEST",
			want:   []Range{},
		},
		{
			name:   "empty needle",
			needle: "",
			want:   []Range{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindText(segments, tt.needle, tt.opts))
		})
	}
}

func TestFindText_NonOverlapping(t *testing.T) {
	got := FindText([]Segment{{Text: "aaaa", StartIndex: 5, EndIndex: 9}}, "aa", FindOptions{})
	assert.Equal(t, []Range{
		{StartIndex: 5, EndIndex: 7, Text: "aa"},
		{StartIndex: 7, EndIndex: 9, Text: "aa"},
	}, got)
}

func TestFindText_UTF16Offsets(t *testing.T) {
	// "😀" is two UTF-16 code units, "é" is one.
	seg := Segment{Text: "😀 café target\n", StartIndex: 10}
	seg.EndIndex = seg.StartIndex + UTF16Len(seg.Text)
	assert.Equal(t, int64(25), seg.EndIndex)

	got := FindText([]Segment{seg}, "target", FindOptions{MatchCase: true})
	require.Len(t, got, 1)
	assert.Equal(t, int64(18), got[0].StartIndex)
	assert.Equal(t, int64(24), got[0].EndIndex)

	got = FindText([]Segment{seg}, "CAFÉ", FindOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, int64(13), got[0].StartIndex)
	assert.Equal(t, int64(17), got[0].EndIndex)
}

func TestFindNth(t *testing.T) {
	segments := []Segment{
		{Text: "one two one\n", StartIndex: 1, EndIndex: 13},
		{Text: "one\n", StartIndex: 40, EndIndex: 44},
	}

	r, err := FindNth(segments, "one", 3, FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, Range{StartIndex: 40, EndIndex: 43, Text: "one"}, r)

	_, err = FindNth(segments, "one", 4, FindOptions{})
	assert.True(t, errors.Is(err, ErrTextNotFound))

	_, err = FindNth(segments, "three", 1, FindOptions{})
	assert.True(t, errors.Is(err, ErrTextNotFound))

	_, err = FindNth(segments, "", 1, FindOptions{})
	assert.True(t, errors.Is(err, ErrTextNotFound))

	_, err = FindNth(segments, "one", 0, FindOptions{})
	assert.Error(t, err)
}

func TestFindText_ExtractedDocument(t *testing.T) {
	doc := body(
		tableOfContents(1, 1235),
		paragraph(run(1235, 1246, "TESTMARKER\n")),
	)

	r, err := FindNth(Extract(doc).Segments, "TESTMARKER", 1, FindOptions{MatchCase: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1235), r.StartIndex)
	assert.Equal(t, int64(1245), r.EndIndex)
}
