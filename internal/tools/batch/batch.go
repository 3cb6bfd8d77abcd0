package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MaxConcurrency bounds the Google API calls a single batch runs in parallel.
const MaxConcurrency = 4

// MaxItems is the largest batch a tool accepts.
const MaxItems = 100

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one id.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult is the JSON document a batch tool returns.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that can be a single string, an array
// of strings, or a string holding a JSON array of strings. Some MCP clients
// send arrays in the last form. A string that only looks like JSON is kept
// as a single value.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(trimmed, "[") {
			var items []interface{}
			if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
				return ParseStringOrArray(items, paramName)
			}
		}
		result = []string{trimmed}
	case []string:
		return ParseStringOrArray(toInterfaces(v), paramName)
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	if len(result) > MaxItems {
		return nil, fmt.Errorf("%s has %d items, at most %d are allowed", paramName, len(result), MaxItems)
	}

	return result, nil
}

func toInterfaces(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// FormatResults counts successes and failures and renders the batch as
// indented JSON.
func FormatResults(results []Result) string {
	br := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		}
	}
	br.Failed = br.Total - br.Successful

	out, _ := json.MarshalIndent(br, "", "  ")
	return string(out)
}

// ProcessBatch runs fn for each id with bounded concurrency and returns the
// results in input order. A failing item never stops the others; items not
// started before ctx is cancelled report the context error.
func ProcessBatch(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error)) []Result {
	results := make([]Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = NewErrorResult(id, err)
				return nil
			}
			res, err := fn(gctx, id)
			if err != nil {
				results[i] = NewErrorResult(id, err)
			} else {
				results[i] = NewSuccessResult(id, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: StatusSuccess, Result: message}
}

func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}
