package canvas

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/webtrials/flowcanvas/internal/viewmodel"
)

// Config holds all canvas configuration.
// Priority: env vars > defaults.
type Config struct {
	// CanvasID tags events and log lines; generated when empty.
	CanvasID string `json:"canvas_id"`

	MinScale float64 `json:"min_scale"`
	MaxScale float64 `json:"max_scale"`

	// Geometry, in logical units (EdgeHitTolerance is screen pixels).
	NodeWidth        float64 `json:"node_width"`
	NodeHeight       float64 `json:"node_height"`
	BezierOffset     float64 `json:"bezier_offset"`
	HandleRadius     float64 `json:"handle_radius"`
	EdgeHitTolerance float64 `json:"edge_hit_tolerance"`

	// Auto-layout spacing between node boxes.
	LayoutGapX float64 `json:"layout_gap_x"`
	LayoutGapY float64 `json:"layout_gap_y"`

	// Logger for gesture and mutation logging. Defaults to slog.Default()
	// wrapped in the correlation handler.
	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	geom := viewmodel.DefaultConfig()
	return Config{
		MinScale:         0.1,
		MaxScale:         3,
		NodeWidth:        geom.NodeWidth,
		NodeHeight:       geom.NodeHeight,
		BezierOffset:     geom.BezierOffset,
		HandleRadius:     geom.HandleRadius,
		EdgeHitTolerance: geom.EdgeHitTolerance,
		LayoutGapX:       100,
		LayoutGapY:       60,
	}
}

// LoadConfig builds a Config from defaults with FLOWCANVAS_* env overrides.
func LoadConfig() Config {
	cfg := DefaultConfig()

	overrideFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	if v := os.Getenv("FLOWCANVAS_CANVAS_ID"); v != "" {
		cfg.CanvasID = v
	}
	overrideFloat("FLOWCANVAS_MIN_SCALE", &cfg.MinScale)
	overrideFloat("FLOWCANVAS_MAX_SCALE", &cfg.MaxScale)
	overrideFloat("FLOWCANVAS_NODE_WIDTH", &cfg.NodeWidth)
	overrideFloat("FLOWCANVAS_NODE_HEIGHT", &cfg.NodeHeight)
	overrideFloat("FLOWCANVAS_BEZIER_OFFSET", &cfg.BezierOffset)
	overrideFloat("FLOWCANVAS_HANDLE_RADIUS", &cfg.HandleRadius)
	overrideFloat("FLOWCANVAS_EDGE_HIT_TOLERANCE", &cfg.EdgeHitTolerance)
	overrideFloat("FLOWCANVAS_LAYOUT_GAP_X", &cfg.LayoutGapX)
	overrideFloat("FLOWCANVAS_LAYOUT_GAP_Y", &cfg.LayoutGapY)

	return cfg
}

// geometry projects the geometry fields into the view-model config.
func (c Config) geometry() viewmodel.Config {
	return viewmodel.Config{
		NodeWidth:        c.NodeWidth,
		NodeHeight:       c.NodeHeight,
		BezierOffset:     c.BezierOffset,
		HandleRadius:     c.HandleRadius,
		EdgeHitTolerance: c.EdgeHitTolerance,
	}
}
