package logging

import "log/slog"

// Logger is the leveled logging interface held by the server context.
// Arguments are slog key/value pairs or slog.Attr values.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SlogAdapter implements Logger on top of an *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, or slog.Default() when logger is nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger wraps slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

func (a *SlogAdapter) Debug(msg string, args ...interface{}) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...interface{})  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...interface{})  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...interface{}) { a.logger.Error(msg, args...) }
