package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	recipientIDKey contextKey = "recipient_id"
	traceIDKey     contextKey = "trace_id"
)

// WithRequestID stores the inbound request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithRecipientID stores the recipient ID in ctx.
func WithRecipientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, recipientIDKey, id)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// RequestID returns the request ID stored by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// ContextLogger provides context-aware logging
type ContextLogger struct {
	logger *zap.SugaredLogger
}

// NewContextLogger creates a new context logger
func NewContextLogger(logger *zap.SugaredLogger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext returns a logger annotated with the request fields found in ctx.
func (cl *ContextLogger) WithContext(ctx context.Context) *zap.SugaredLogger {
	fields := []zapcore.Field{}
	for _, key := range []contextKey{traceIDKey, requestIDKey, recipientIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}

	if len(fields) == 0 {
		return cl.logger
	}
	return cl.logger.Desugar().With(fields...).Sugar()
}

// Debugw logs a debug message with context
func (cl *ContextLogger) Debugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	cl.WithContext(ctx).Debugw(msg, keysAndValues...)
}

// Infow logs info message with context
func (cl *ContextLogger) Infow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	cl.WithContext(ctx).Infow(msg, keysAndValues...)
}

// Warnw logs warning message with context
func (cl *ContextLogger) Warnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	cl.WithContext(ctx).Warnw(msg, keysAndValues...)
}

// Errorw logs an error with context
func (cl *ContextLogger) Errorw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	cl.WithContext(ctx).Errorw(msg, keysAndValues...)
}
