package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	// Initially empty.
	assert.Equal(t, "", CanvasID(ctx))
	assert.Equal(t, "", NodeID(ctx))
	assert.Equal(t, "", GestureID(ctx))

	// Set values.
	ctx = WithCanvasID(ctx, "cv-123")
	ctx = WithNodeID(ctx, "step-1")
	ctx = WithGestureID(ctx, "drag-42")

	// Round-trip.
	assert.Equal(t, "cv-123", CanvasID(ctx))
	assert.Equal(t, "step-1", NodeID(ctx))
	assert.Equal(t, "drag-42", GestureID(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	ctx = WithCanvasID(ctx, "cv-abc")
	ctx = WithNodeID(ctx, "step-x")
	ctx = WithGestureID(ctx, "pan-7")

	enriched := LogWith(ctx, logger)
	enriched.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "canvas_id=cv-abc")
	assert.Contains(t, output, "node_id=step-x")
	assert.Contains(t, output, "gesture_id=pan-7")
	assert.Contains(t, output, "test message")
}

func TestLogWithMissingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Only set canvas ID -- node and gesture should not appear.
	ctx := WithCanvasID(context.Background(), "cv-only")

	enriched := LogWith(ctx, logger)
	enriched.Info("partial context")

	output := buf.String()
	assert.Contains(t, output, "canvas_id=cv-only")
	assert.NotContains(t, output, "node_id")
	assert.NotContains(t, output, "gesture_id")
}

func TestLogWithEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// No correlation IDs -- no extra attrs.
	enriched := LogWith(context.Background(), logger)
	enriched.Info("no context")

	output := buf.String()
	assert.NotContains(t, output, "canvas_id")
	assert.NotContains(t, output, "node_id")
	assert.NotContains(t, output, "gesture_id")
	assert.Contains(t, output, "no context")
}

func TestWithIDs(t *testing.T) {
	ctx := WithIDs(context.Background(), "cv-1", "step-2", "drag-3")
	assert.Equal(t, "cv-1", CanvasID(ctx))
	assert.Equal(t, "step-2", NodeID(ctx))
	assert.Equal(t, "drag-3", GestureID(ctx))
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithIDs(context.Background(), "cv-auto", "step-auto", "drag-auto")
	logger.InfoContext(ctx, "auto inject")

	output := buf.String()
	assert.Contains(t, output, `"canvas_id":"cv-auto"`)
	assert.Contains(t, output, `"node_id":"step-auto"`)
	assert.Contains(t, output, `"gesture_id":"drag-auto"`)
	assert.Contains(t, output, "auto inject")
}

func TestCorrelationHandlerEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	logger.InfoContext(context.Background(), "bare log")

	output := buf.String()
	assert.NotContains(t, output, "canvas_id")
	assert.NotContains(t, output, "node_id")
	assert.NotContains(t, output, "gesture_id")
	assert.Contains(t, output, "bare log")
}

func TestCorrelationHandlerPartialContext(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithCanvasID(context.Background(), "cv-only")
	logger.InfoContext(ctx, "partial")

	output := buf.String()
	assert.Contains(t, output, `"canvas_id":"cv-only"`)
	assert.NotContains(t, output, "node_id")
	assert.NotContains(t, output, "gesture_id")
}

func TestCorrelationHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "canvas")}))

	ctx := WithCanvasID(context.Background(), "cv-attr")
	logger.InfoContext(ctx, "with attrs")

	output := buf.String()
	assert.Contains(t, output, `"canvas_id":"cv-attr"`)
	assert.Contains(t, output, `"component":"canvas"`)
}

func TestCorrelationHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithGroup("canvas"))

	ctx := WithCanvasID(context.Background(), "cv-grp")
	logger.InfoContext(ctx, "grouped", "key", "val")

	output := buf.String()
	assert.Contains(t, output, "cv-grp")
	assert.Contains(t, output, "grouped")
}
