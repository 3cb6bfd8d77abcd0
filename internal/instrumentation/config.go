package instrumentation

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Exporter names accepted by Config.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Environment variables read by DefaultConfig.
const (
	envServiceName       = "OTEL_SERVICE_NAME"
	envServiceInstanceID = "OTEL_SERVICE_INSTANCE_ID"
	envEnabled           = "INSTRUMENTATION_ENABLED"
	envMetricsExporter   = "METRICS_EXPORTER"
	envTracingExporter   = "TRACING_EXPORTER"
	envOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envSamplingRate      = "OTEL_TRACES_SAMPLER_ARG"
	envDetailedLabels    = "METRICS_DETAILED_LABELS"
	envAuditEnabled      = "AUDIT_LOGGING_ENABLED"
	envAuditAccounts     = "AUDIT_LOGGING_INCLUDE_ACCOUNTS"
	envAuditLevel        = "AUDIT_LOGGING_LEVEL"
)

// Config controls metrics, tracing and the tool audit log.
type Config struct {
	ServiceName       string
	ServiceVersion    string
	ServiceInstanceID string // hostname when empty

	// Enabled switches metrics and tracing on. The audit log is governed by
	// AuditLogging alone.
	Enabled bool

	MetricsExporter string // prometheus, otlp or stdout
	TracingExporter string // otlp, stdout or none

	// OTLPEndpoint is host:port without a scheme. TLS is used unless
	// OTLPInsecure is set.
	OTLPEndpoint string
	OTLPInsecure bool

	TraceSamplingRate float64

	// DetailedLabels adds the account label to tool metrics. Accounts that
	// look like email addresses are reduced to their domain.
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the per-invocation audit records.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludeAccounts logs the account name and the resource identifiers
	// verbatim. Otherwise accounts are reduced to their domain and document
	// ids are omitted.
	IncludeAccounts bool

	// Level is the level successful invocations are logged at. Failures are
	// always logged at warn or above.
	Level slog.Level
}

// DefaultConfig reads the instrumentation settings from the process environment.
func DefaultConfig() Config {
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) Config {
	env := envReader(getenv)
	return Config{
		ServiceName:       env.string(envServiceName, "gdrive-mcp"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env.string(envServiceInstanceID, ""),
		Enabled:           env.bool(envEnabled, true),
		MetricsExporter:   env.string(envMetricsExporter, ExporterPrometheus),
		TracingExporter:   env.string(envTracingExporter, ExporterNone),
		OTLPEndpoint:      env.string(envOTLPEndpoint, ""),
		OTLPInsecure:      env.bool(envOTLPInsecure, false),
		TraceSamplingRate: env.float(envSamplingRate, 0.1),
		DetailedLabels:    env.bool(envDetailedLabels, false),
		AuditLogging: AuditLoggingConfig{
			Enabled:         env.bool(envAuditEnabled, true),
			IncludeAccounts: env.bool(envAuditAccounts, false),
			Level:           parseLevel(env.string(envAuditLevel, "info")),
		},
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return fmt.Errorf("OTLP endpoint is required when an exporter is set to otlp; set %s", envOTLPEndpoint)
	}

	return nil
}

// parseLevel accepts debug, info, warn and error. Anything else is info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// envReader falls back to the default when a variable is unset or malformed.
type envReader func(string) string

func (e envReader) string(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e envReader) bool(key string, def bool) bool {
	v, err := strconv.ParseBool(e(key))
	if err != nil {
		return def
	}
	return v
}

func (e envReader) float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(e(key), 64)
	if err != nil {
		return def
	}
	return v
}
