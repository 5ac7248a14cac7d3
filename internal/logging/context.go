package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	canvasIDKey ctxKey = iota
	nodeIDKey
	gestureIDKey
)

// WithCanvasID returns a context with the canvas ID set.
func WithCanvasID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, canvasIDKey, id)
}

// WithNodeID returns a context with the node ID set.
func WithNodeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, nodeIDKey, id)
}

// WithGestureID returns a context with the gesture ID set. A gesture ID
// groups all log lines produced between a pointer-down and its resolving
// pointer-up.
func WithGestureID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, gestureIDKey, id)
}

// CanvasID extracts the canvas ID from the context, or "" if absent.
func CanvasID(ctx context.Context) string {
	v, _ := ctx.Value(canvasIDKey).(string)
	return v
}

// NodeID extracts the node ID from the context, or "" if absent.
func NodeID(ctx context.Context) string {
	v, _ := ctx.Value(nodeIDKey).(string)
	return v
}

// GestureID extracts the gesture ID from the context, or "" if absent.
func GestureID(ctx context.Context) string {
	v, _ := ctx.Value(gestureIDKey).(string)
	return v
}

// WithIDs sets all three correlation IDs on the context at once.
func WithIDs(ctx context.Context, canvasID, nodeID, gestureID string) context.Context {
	ctx = WithCanvasID(ctx, canvasID)
	ctx = WithNodeID(ctx, nodeID)
	ctx = WithGestureID(ctx, gestureID)
	return ctx
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if cvID := CanvasID(ctx); cvID != "" {
		logger = logger.With(slog.String("canvas_id", cvID))
	}
	if nID := NodeID(ctx); nID != "" {
		logger = logger.With(slog.String("node_id", nID))
	}
	if gID := GestureID(ctx); gID != "" {
		logger = logger.With(slog.String("gesture_id", gID))
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation IDs from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and IDs appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := CanvasID(ctx); v != "" {
		r.AddAttrs(slog.String("canvas_id", v))
	}
	if v := NodeID(ctx); v != "" {
		r.AddAttrs(slog.String("node_id", v))
	}
	if v := GestureID(ctx); v != "" {
		r.AddAttrs(slog.String("gesture_id", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
