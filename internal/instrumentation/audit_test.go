package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("docs_get_content")
	assert.False(t, ti.StartTime.IsZero())

	time.Sleep(time.Millisecond)
	ti.CompleteSuccess()
	assert.True(t, ti.Success)
	assert.Positive(t, ti.Duration)
	assert.Empty(t, ti.Error)
	assert.Equal(t, StatusSuccess, ti.Status())

	failed := NewToolInvocation("docs_replace_text").CompleteWithError(errors.New("no match"))
	assert.False(t, failed.Success)
	assert.Equal(t, "no match", failed.Error)
	assert.Equal(t, StatusError, failed.Status())
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	recordSpans(t)

	ti := NewToolInvocation("drive_search").WithSpanContext(context.Background())
	assert.Empty(t, ti.TraceID)
	assert.Empty(t, ti.SpanID)

	ctx, span := StartToolSpan(context.Background(), "drive_search")
	defer span.End()
	ti.WithSpanContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), ti.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), ti.SpanID)
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := &ToolInvocation{
		Tool:         "docs_get_content",
		Account:      "ana@example.com",
		Service:      ServiceDocs,
		Operation:    OperationGet,
		ResourceType: ResourceDocument,
		ResourceID:   "1AbC",
		ReadOnly:     true,
		Duration:     250 * time.Millisecond,
		Success:      true,
		TraceID:      "trace",
		SpanID:       "span",
	}

	tests := []struct {
		name            string
		includeAccounts bool
		expected        map[string]interface{}
	}{
		{
			name: "anonymized",
			expected: map[string]interface{}{
				"tool": "docs_get_content", "status": "success", "duration": 250 * time.Millisecond,
				"account": "example.com", "service": "docs", "operation": "get",
				"resource_type": "document", "read_only": true, "trace_id": "trace", "span_id": "span",
			},
		},
		{
			name:            "with accounts",
			includeAccounts: true,
			expected: map[string]interface{}{
				"tool": "docs_get_content", "status": "success", "duration": 250 * time.Millisecond,
				"account": "ana@example.com", "service": "docs", "operation": "get",
				"resource_type": "document", "resource_id": "1AbC", "read_only": true,
				"trace_id": "trace", "span_id": "span",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]interface{}{}
			for _, attr := range ti.LogAttrs(tt.includeAccounts) {
				got[attr.Key] = attr.Value.Any()
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToolInvocation_LogAttrs_Minimal(t *testing.T) {
	ti := NewToolInvocation("auth_get_status").CompleteWithError(errors.New("no token"))

	keys := []string{}
	for _, attr := range ti.LogAttrs(false) {
		keys = append(keys, attr.Key)
	}
	assert.Equal(t, []string{"tool", "status", "duration", "error"}, keys)
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]interface{}
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	audit := NewAuditLogger(logger)

	audit.LogToolInvocation(context.Background(),
		NewToolInvocation("docs_get_content").WithAccount("work").WithResource(ResourceDocument, "1AbC").CompleteSuccess())
	audit.LogToolInvocation(context.Background(),
		NewToolInvocation("docs_replace_text").CompleteWithError(errors.New("no match")))

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "tool_executed", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "audit", lines[0]["component"])
	assert.Equal(t, "work", lines[0]["account"])
	assert.NotContains(t, lines[0], "resource_id")

	assert.Equal(t, "tool_failed", lines[1]["msg"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "no match", lines[1]["error"])
}

func TestAuditLogger_Config(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		var buf bytes.Buffer
		audit := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})
		audit.LogToolInvocation(context.Background(), NewToolInvocation("drive_search").CompleteSuccess())
		assert.Zero(t, buf.Len())
	})

	t.Run("debug level is filtered by the handler", func(t *testing.T) {
		var buf bytes.Buffer
		audit := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)),
			AuditLoggingConfig{Enabled: true, Level: slog.LevelDebug})
		audit.LogToolInvocation(context.Background(), NewToolInvocation("drive_search").CompleteSuccess())
		assert.Zero(t, buf.Len())

		audit.LogToolInvocation(context.Background(), NewToolInvocation("drive_search").CompleteWithError(errors.New("boom")))
		assert.NotZero(t, buf.Len())
	})

	t.Run("error level applies to failures too", func(t *testing.T) {
		var buf bytes.Buffer
		audit := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)),
			AuditLoggingConfig{Enabled: true, Level: slog.LevelError, IncludeAccounts: true})
		audit.LogToolInvocation(context.Background(),
			NewToolInvocation("sheets_get_values").WithResource(ResourceSpreadsheet, "S1").CompleteWithError(errors.New("boom")))

		lines := decodeLogLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "ERROR", lines[0]["level"])
		assert.Equal(t, "S1", lines[0]["resource_id"])
	})

	t.Run("nil logger and invocation", func(t *testing.T) {
		var audit *AuditLogger
		audit.LogToolInvocation(context.Background(), NewToolInvocation("x"))
		NewAuditLogger(nil).LogToolInvocation(context.Background(), nil)
	})
}
