// Package nasclog is the container's internal structured logger. It wraps
// zap the way a host application would, scaled down to what the resolution
// engine itself needs to report: registration, compilation, and disposal
// events, never request/response traffic that belongs to the host.
package nasclog

import (
	"go.uber.org/zap"
)

// Logger is the minimal structured-logging surface the engine depends on.
// Keeping it an interface (rather than passing *zap.Logger everywhere)
// lets a host swap in its own sink; call sites still build their
// structured fields with zap's field constructors.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// New wraps an existing zap logger.
func New(z *zap.Logger) Logger {
	if z == nil {
		return Noop()
	}
	return &zapLogger{z: z}
}

// NewDevelopment builds a development-mode zap logger (human-readable,
// debug level, stack traces on warn+).
func NewDevelopment() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		return Noop()
	}
	return &zapLogger{z: z}
}

// NewProduction builds a production-mode zap logger (JSON, info level).
func NewProduction() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return Noop()
	}
	return &zapLogger{z: z}
}

// Noop returns a Logger that discards everything. Used when a scope is
// built without an explicit logger so call sites never need a nil check.
func Noop() Logger {
	return noopLogger{}
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *zapLogger) With(fields ...zap.Field) Logger       { return &zapLogger{z: l.z.With(fields...)} }

type noopLogger struct{}

func (noopLogger) Debug(string, ...zap.Field) {}
func (noopLogger) Info(string, ...zap.Field)  {}
func (noopLogger) Warn(string, ...zap.Field)  {}
func (noopLogger) Error(string, ...zap.Field) {}
func (noopLogger) With(...zap.Field) Logger   { return noopLogger{} }
