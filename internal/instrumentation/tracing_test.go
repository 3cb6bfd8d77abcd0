package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider as the global one for the
// duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("docs_get_content").
		WithService(ServiceDocs).
		WithOperation(OperationGet).
		WithAccount("work").
		WithResource(ResourceDocument, "1AbC").
		WithReadOnly(true).
		Build()

	assert.Equal(t, map[string]interface{}{
		SpanAttrTool:         "docs_get_content",
		SpanAttrService:      "docs",
		SpanAttrOperation:    "get",
		SpanAttrAccount:      "work",
		SpanAttrResourceType: "document",
		SpanAttrResourceID:   "1AbC",
		SpanAttrReadOnly:     true,
	}, attrMap(attrs))
}

func TestSpanAttributeBuilder_SkipsEmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("drive_search").
		WithAccount("").
		WithResource("", "").
		Build()

	assert.Equal(t, map[string]interface{}{SpanAttrTool: "drive_search"}, attrMap(attrs))
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "docs_find_text", attribute.String(SpanAttrAccount, "work"))
	FinishSpan(span, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "tool.docs_find_text", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "docs_find_text", attrs[SpanAttrTool])
	assert.Equal(t, "work", attrs[SpanAttrAccount])
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := StartToolSpan(context.Background(), "sheets_get_values")
	_, span := StartGoogleAPISpan(ctx, ServiceSheets, OperationGet)
	FinishSpan(span, errors.New("quota exceeded"))
	FinishSpan(parent, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	child := ended[0]
	assert.Equal(t, "google.sheets.get", child.Name())
	assert.Equal(t, trace.SpanKindClient, child.SpanKind())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())
	assert.Equal(t, codes.Error, child.Status().Code)
	assert.Equal(t, "quota exceeded", child.Status().Description)
	require.Len(t, child.Events(), 1)
	assert.Equal(t, "exception", child.Events()[0].Name)

	attrs := attrMap(child.Attributes())
	assert.Equal(t, "sheets", attrs[SpanAttrService])
	assert.Equal(t, "get", attrs[SpanAttrOperation])
}

func TestSetSpanError_NilIsNoop(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "drive_read_file")
	SetSpanError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}
