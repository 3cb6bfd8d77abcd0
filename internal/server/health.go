package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves /healthz, /readyz and /healthz/detailed.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext // may be nil
	startTime time.Time
	version   string
}

// NewHealthChecker returns a checker that starts out ready.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now(), version: version}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness, typically to false at the start of shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type DetailedHealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version,omitempty"`
	Uptime         string `json:"uptime"`
	ReadOnly       bool   `json:"read_only"`
	IncludeTables  bool   `json:"include_tables"`
	CachedAccounts int    `json:"cached_accounts"`
}

// status returns the overall state and the per-check results.
func (h *HealthChecker) status() (string, map[string]string) {
	checks := map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK}
	overall := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		overall = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if overall == healthStatusOK {
			overall = healthStatusShuttingDown
		}
	}
	return overall, checks
}

func writeHealth(w http.ResponseWriter, healthy bool, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler always answers ok while the process can serve HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, true, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 503 once the server is marked unready or the
// server context is shut down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		overall, checks := h.status()
		resp := HealthResponse{Status: healthStatusOK, Checks: checks}
		if overall != healthStatusOK {
			resp.Status = healthStatusNotReady
		}
		writeHealth(w, overall == healthStatusOK, resp)
	})
}

// DetailedHealthHandler adds version, uptime and the server options.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		overall, _ := h.status()
		resp := DetailedHealthResponse{
			Status:  overall,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			resp.ReadOnly = h.sc.ReadOnly()
			resp.IncludeTables = h.sc.IncludeTables()
			resp.CachedAccounts = h.sc.CachedAccounts()
		}
		writeHealth(w, overall == healthStatusOK, resp)
	})
}

func (h *HealthChecker) RegisterHealthEndpoints(r chi.Router) {
	r.Method(http.MethodGet, "/healthz", h.LivenessHandler())
	r.Method(http.MethodGet, "/readyz", h.ReadinessHandler())
	r.Method(http.MethodGet, "/healthz/detailed", h.DetailedHealthHandler())
}
