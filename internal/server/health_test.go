package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// staticTokenProvider hands out a fixed token for every account.
type staticTokenProvider struct{}

func (staticTokenProvider) GetTokenForAccount(_ context.Context, _ string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "static"}, nil
}

func (staticTokenProvider) HasTokenForAccount(_ string) bool { return true }

func TestHealthChecker_Readiness(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithTokenProvider(staticTokenProvider{}))
	require.NoError(t, err)

	tests := []struct {
		name       string
		setup      func(h *HealthChecker)
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "ready",
			setup:      func(*HealthChecker) {},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK},
		},
		{
			name:       "not ready",
			setup:      func(h *HealthChecker) { h.SetReady(false) },
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"ready": healthStatusNotReady, "shutdown": healthStatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(sc, "dev")
			tt.setup(h)

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestHealthChecker_ShuttingDown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithTokenProvider(staticTokenProvider{}))
	require.NoError(t, err)
	require.NoError(t, sc.Shutdown())

	h := NewHealthChecker(sc, "dev")

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusShuttingDown, resp.Status)

	rec = httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthChecker_NilServerContext(t *testing.T) {
	h := NewHealthChecker(nil, "")

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthChecker_DetailedOptions(t *testing.T) {
	sc, err := NewServerContext(context.Background(),
		WithTokenProvider(staticTokenProvider{}), WithReadOnly(true), WithIncludeTables(true))
	require.NoError(t, err)
	defer sc.Shutdown()

	h := NewHealthChecker(sc, "1.2.3")
	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.True(t, resp.ReadOnly)
	assert.True(t, resp.IncludeTables)
}
