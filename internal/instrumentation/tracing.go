package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for gdrive-mcp spans.
const TracerName = "github.com/teemow/gdrive-mcp"

// Span attribute keys.
const (
	SpanAttrTool         = "mcp.tool"
	SpanAttrService      = "google.service"
	SpanAttrOperation    = "google.operation"
	SpanAttrAccount      = "mcp.account"
	SpanAttrResourceID   = "mcp.resource_id"
	SpanAttrResourceType = "mcp.resource_type"
	SpanAttrReadOnly     = "mcp.read_only"
)

// SpanAttributeBuilder collects tool span attributes, skipping empty values.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (b *SpanAttributeBuilder) add(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	return b.add(SpanAttrTool, tool)
}

func (b *SpanAttributeBuilder) WithService(service string) *SpanAttributeBuilder {
	return b.add(SpanAttrService, service)
}

func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	return b.add(SpanAttrOperation, operation)
}

func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	return b.add(SpanAttrAccount, account)
}

func (b *SpanAttributeBuilder) WithResource(resourceType, resourceID string) *SpanAttributeBuilder {
	return b.add(SpanAttrResourceType, resourceType).add(SpanAttrResourceID, resourceID)
}

func (b *SpanAttributeBuilder) WithReadOnly(readOnly bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrReadOnly, readOnly))
	return b
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts the server span "tool.<name>" for an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan starts the client span "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError is a no-op for a nil err.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// FinishSpan sets the status from err and ends the span.
//
//	ctx, span := StartGoogleAPISpan(ctx, ServiceDrive, OperationGet)
//	defer func() { FinishSpan(span, err) }()
func FinishSpan(span trace.Span, err error) {
	if err != nil {
		SetSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}
	span.End()
}
