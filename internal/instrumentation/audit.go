package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool      string
	Account   string
	Service   string
	Operation string

	// ResourceType is one of the Resource* constants; ResourceID is the
	// document, file or spreadsheet id the call targeted.
	ResourceType string
	ResourceID   string

	ReadOnly bool

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts the clock for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

func (ti *ToolInvocation) WithService(service, operation string) *ToolInvocation {
	ti.Service = service
	ti.Operation = operation
	return ti
}

func (ti *ToolInvocation) WithResource(resourceType, resourceID string) *ToolInvocation {
	ti.ResourceType = resourceType
	ti.ResourceID = resourceID
	return ti
}

func (ti *ToolInvocation) WithReadOnly(readOnly bool) *ToolInvocation {
	ti.ReadOnly = readOnly
	return ti
}

// WithSpanContext copies the trace and span ids of the span in ctx, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the clock.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the record as slog attributes. Without includeAccounts the
// account is reduced by accountLabel and the resource id is left out.
func (ti *ToolInvocation) LogAttrs(includeAccounts bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("status", ti.Status()),
		slog.Duration("duration", ti.Duration),
	}

	account := ti.Account
	if !includeAccounts {
		account = accountLabel(account)
	}
	if account != "" {
		attrs = append(attrs, slog.String("account", account))
	}
	if ti.Service != "" {
		attrs = append(attrs, slog.String("service", ti.Service), slog.String("operation", ti.Operation))
	}
	if ti.ResourceType != "" {
		attrs = append(attrs, slog.String("resource_type", ti.ResourceType))
		if includeAccounts && ti.ResourceID != "" {
			attrs = append(attrs, slog.String("resource_id", ti.ResourceID))
		}
	}
	if ti.ReadOnly {
		attrs = append(attrs, slog.Bool("read_only", true))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger writes one record per tool invocation.
type AuditLogger struct {
	logger          *slog.Logger
	enabled         bool
	includeAccounts bool
	level           slog.Level
}

// NewAuditLogger returns an enabled logger that anonymizes accounts and logs
// successes at info.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, Level: slog.LevelInfo})
}

func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:          logger.With("component", "audit"),
		enabled:         config.Enabled,
		includeAccounts: config.IncludeAccounts,
		level:           config.Level,
	}
}

// LogToolInvocation logs "tool_executed" at the configured level or
// "tool_failed" at warn (or the configured level if that is higher).
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}

	msg, level := "tool_executed", al.level
	if !ti.Success {
		msg = "tool_failed"
		if level < slog.LevelWarn {
			level = slog.LevelWarn
		}
	}
	al.logger.LogAttrs(ctx, level, msg, ti.LogAttrs(al.includeAccounts)...)
}
