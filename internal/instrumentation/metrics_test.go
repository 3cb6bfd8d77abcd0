package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, detailedLabels bool) (context.Context, *Provider) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	cfg := testConfig()
	cfg.DetailedLabels = detailedLabels
	provider, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return ctx, provider
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	rec := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Recorded(t *testing.T) {
	ctx, provider := newTestProvider(t, false)
	m := provider.Metrics()

	m.RecordHTTPRequest(ctx, http.MethodPost, "/mcp", 200, 10*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationExport, StatusError, time.Second)
	m.RecordOAuthAuth(ctx, OAuthResultFailure)
	m.RecordForwardedTokenInjection(ctx, ForwardedTokenResultInjected)
	m.RecordDocsExtraction(ctx, 120, 3)
	m.RecordToolInvocation(ctx, "docs_get_content", StatusSuccess, 50*time.Millisecond)
	m.IncrementActiveSessions(ctx)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	body := scrape(t, provider)
	for _, want := range []string{
		`http_requests_total{`,
		`path="/mcp"`,
		`google_api_operations_total{`,
		`operation="export"`,
		`oauth_auth_total{`,
		`result="failure"`,
		`forwarded_token_injections_total{`,
		`result="injected"`,
		`docs_extraction_segments_count{`,
		`docs_extraction_gaps_total{`,
		`mcp_tool_invocations_total{`,
		`tool="docs_get_content"`,
		`mcp_tool_duration_seconds_bucket{`,
		`active_sessions{`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestMetrics_ExtractionWithoutGaps(t *testing.T) {
	ctx, provider := newTestProvider(t, false)
	provider.Metrics().RecordDocsExtraction(ctx, 4, 0)

	body := scrape(t, provider)
	assert.Contains(t, body, "docs_extraction_segments_count{")
	assert.NotContains(t, body, "docs_extraction_gaps_total{")
}

func TestMetrics_AccountLabel(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		account  string
		want     string
		notWant  string
	}{
		{name: "off", account: "work", notWant: `account=`},
		{name: "named account", detailed: true, account: "work", want: `account="work"`},
		{name: "email account is reduced", detailed: true, account: "ana@example.com", want: `account="example.com"`, notWant: "ana@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, provider := newTestProvider(t, tt.detailed)
			provider.Metrics().RecordToolInvocationWithAccount(ctx, "drive_search", StatusSuccess, tt.account, time.Millisecond)

			body := scrape(t, provider)
			if tt.want != "" {
				assert.Contains(t, body, tt.want)
			}
			if tt.notWant != "" {
				assert.NotContains(t, body, tt.notWant)
			}
		})
	}
}

func TestMetrics_NoOp(t *testing.T) {
	ctx := context.Background()

	for name, m := range map[string]*Metrics{"zero": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				m.RecordHTTPRequest(ctx, http.MethodGet, "/mcp", 200, time.Millisecond)
				m.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationList, StatusSuccess, time.Millisecond)
				m.RecordOAuthAuth(ctx, OAuthResultSuccess)
				m.RecordForwardedTokenInjection(ctx, ForwardedTokenResultNoToken)
				m.RecordDocsExtraction(ctx, 10, 1)
				m.RecordToolInvocation(ctx, "test_tool", StatusSuccess, time.Millisecond)
				m.RecordToolInvocationWithAccount(ctx, "test_tool", StatusSuccess, "work", time.Millisecond)
				m.IncrementActiveSessions(ctx)
				m.DecrementActiveSessions(ctx)
			})
		})
	}
}
