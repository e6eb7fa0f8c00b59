// Package log provides the logging facade used across the client
package log

import "go.uber.org/zap"

// Logger is the minimal structured logging contract the client depends on
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ZapLogger adapts a zap logger to the Logger interface
type ZapLogger struct {
	inner *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap.Logger
func NewZapLogger(log *zap.Logger) ZapLogger {
	return ZapLogger{inner: log.Sugar()}
}

func (l ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.inner.Debugw(msg, keysAndValues...)
}

func (l ZapLogger) Info(msg string, keysAndValues ...any) {
	l.inner.Infow(msg, keysAndValues...)
}

func (l ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l ZapLogger) Error(msg string, keysAndValues ...any) {
	l.inner.Errorw(msg, keysAndValues...)
}

// NopLogger discards everything. It is the default when no logger is supplied.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
