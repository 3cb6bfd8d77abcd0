package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

var (
	httpBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}
	callBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// Documents range from a handful of paragraphs to tens of thousands.
	segmentBuckets = []float64{0, 10, 50, 100, 500, 1000, 5000, 10000}
)

// Metrics records the server's instruments. All methods are safe on a nil
// or zero Metrics, so callers never need to check whether instrumentation
// is on.
type Metrics struct {
	httpRequests   metric.Int64Counter
	httpDuration   metric.Float64Histogram
	activeSessions metric.Int64UpDownCounter

	googleCalls        metric.Int64Counter
	googleCallDuration metric.Float64Histogram

	oauthExchanges   metric.Int64Counter
	forwardedTokens  metric.Int64Counter
	extractSegments  metric.Int64Histogram
	extractGaps      metric.Int64Counter
	toolCalls        metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	b := instrumentBuilder{meter: meter}

	m.httpRequests = b.counter("http_requests_total", "Total number of HTTP requests", "{request}")
	m.httpDuration = b.histogram("http_request_duration_seconds", "HTTP request duration in seconds", httpBuckets)
	m.activeSessions = b.upDown("active_sessions", "Number of active MCP sessions", "{session}")

	m.googleCalls = b.counter("google_api_operations_total", "Total number of Google API operations", "{operation}")
	m.googleCallDuration = b.histogram("google_api_operation_duration_seconds", "Google API operation duration in seconds", callBuckets)

	m.oauthExchanges = b.counter("oauth_auth_total", "Total number of OAuth authorization code exchanges", "{attempt}")
	m.forwardedTokens = b.counter("forwarded_token_injections_total", "Total number of requests inspected for forwarded Google tokens", "{request}")

	m.extractSegments = b.intHistogram("docs_extraction_segments", "Number of text segments extracted per document", "{segment}", segmentBuckets)
	m.extractGaps = b.counter("docs_extraction_gaps_total", "Total number of offset gaps left by skipped structural elements", "{gap}")

	m.toolCalls = b.counter("mcp_tool_invocations_total", "Total number of MCP tool invocations", "{invocation}")
	m.toolCallDuration = b.histogram("mcp_tool_duration_seconds", "MCP tool execution duration in seconds", callBuckets)

	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// instrumentBuilder keeps the first creation error.
type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) fail(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to create %s: %w", name, err)
	}
}

func (b *instrumentBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.fail(name, err)
	return c
}

func (b *instrumentBuilder) upDown(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.fail(name, err)
	return c
}

func (b *instrumentBuilder) histogram(name, desc string, buckets []float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	b.fail(name, err)
	return h
}

func (b *instrumentBuilder) intHistogram(name, desc, unit string, buckets []float64) metric.Int64Histogram {
	h, err := b.meter.Int64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	b.fail(name, err)
	return h
}

// RecordHTTPRequest counts one request on the MCP listener.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, opt)
	m.httpDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordGoogleAPIOperation counts one Docs, Drive or Sheets call.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleCalls == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleCalls.Add(ctx, 1, opt)
	m.googleCallDuration.Record(ctx, duration.Seconds(), opt)
}

// RecordOAuthAuth counts an authorization code exchange. result is
// OAuthResultSuccess or OAuthResultFailure.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthExchanges == nil {
		return
	}
	m.oauthExchanges.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordForwardedTokenInjection counts one inspected request. result is one
// of the ForwardedTokenResult* values.
func (m *Metrics) RecordForwardedTokenInjection(ctx context.Context, result string) {
	if m == nil || m.forwardedTokens == nil {
		return
	}
	m.forwardedTokens.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordDocsExtraction records the segment count of one extraction and the
// number of offset gaps between consecutive segments.
func (m *Metrics) RecordDocsExtraction(ctx context.Context, segments, gaps int) {
	if m == nil || m.extractSegments == nil {
		return
	}
	m.extractSegments.Record(ctx, int64(segments))
	if gaps > 0 {
		m.extractGaps.Add(ctx, int64(gaps))
	}
}

func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount adds an account label when detailed labels
// are on. Email-shaped accounts are reduced to their domain.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m == nil || m.toolCalls == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, accountLabel(account)))
	}
	opt := metric.WithAttributes(attrs...)
	m.toolCalls.Add(ctx, 1, opt)
	m.toolCallDuration.Record(ctx, duration.Seconds(), opt)
}

func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
