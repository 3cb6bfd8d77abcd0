package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr string
	}{
		{name: "single id", input: "1AbC", want: []string{"1AbC"}},
		{name: "trimmed id", input: "  1AbC ", want: []string{"1AbC"}},
		{name: "array", input: []interface{}{"d1", "d2"}, want: []string{"d1", "d2"}},
		{name: "string slice", input: []string{"d1", "d2"}, want: []string{"d1", "d2"}},
		{name: "json array string", input: `["d1", "d2"]`, want: []string{"d1", "d2"}},
		{name: "bracketed non-json kept whole", input: "[draft] plan", want: []string{"[draft] plan"}},
		{name: "nil", input: nil, wantErr: "fileIds is required"},
		{name: "empty string", input: " ", wantErr: "fileIds cannot be empty"},
		{name: "empty array", input: []interface{}{}, wantErr: "fileIds cannot be empty"},
		{name: "empty json array", input: "[]", wantErr: "fileIds cannot be empty"},
		{name: "non-string item", input: []interface{}{"d1", 7}, wantErr: "fileIds[1] must be a string"},
		{name: "empty item", input: []interface{}{"", "d2"}, wantErr: "fileIds[0] cannot be empty"},
		{name: "wrong type", input: 42, wantErr: "must be a string or array of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "fileIds")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStringOrArray_MaxItems(t *testing.T) {
	ids := make([]interface{}, MaxItems+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("f%d", i)
	}

	_, err := ParseStringOrArray(ids[:MaxItems], "fileIds")
	assert.NoError(t, err)

	_, err = ParseStringOrArray(ids, "fileIds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 100")
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		NewSuccessResult("d1", "ok"),
		NewErrorResult("d2", errors.New("not found")),
		NewSuccessResult("d3", "ok"),
	})

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, Result{ID: "d2", Status: StatusError, Error: "not found"}, br.Results[1])
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8"}

	var running, peak int32
	results := ProcessBatch(context.Background(), ids, func(ctx context.Context, id string) (string, error) {
		n := atomic.AddInt32(&running, 1)
		defer atomic.AddInt32(&running, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		if id == "d2" {
			return "", errors.New("permission denied")
		}
		return "exported " + id, nil
	})

	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, ids[i], r.ID)
	}
	assert.Equal(t, NewSuccessResult("d1", "exported d1"), results[0])
	assert.Equal(t, NewErrorResult("d2", errors.New("permission denied")), results[1])
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(MaxConcurrency))
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	results := ProcessBatch(ctx, []string{"a", "b"}, func(ctx context.Context, id string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", nil
	})

	assert.Zero(t, atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, StatusError, r.Status)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
}
