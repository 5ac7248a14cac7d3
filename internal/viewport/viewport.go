// Package viewport maps between screen (pointer) space and logical canvas
// space. All functions are pure; a View is a value, never mutated in place.
package viewport

import "math"

// Point is a 2D point, in screen or logical space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by f.
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Finite reports whether both coordinates are finite (no NaN/Inf).
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// View is the pan/zoom state of a single canvas instance. Scale is always
// within [MinScale, MaxScale]; Offset is a screen-space translation.
type View struct {
	Scale    float64 `json:"scale"`
	Offset   Point   `json:"offset"`
	MinScale float64 `json:"min_scale"`
	MaxScale float64 `json:"max_scale"`
}

// NewView creates a View at scale 1 and zero offset with the given scale
// bounds. Bounds are normalized: non-positive or inverted bounds fall
// back to [1, 1] around the identity scale.
func NewView(minScale, maxScale float64) View {
	if minScale <= 0 {
		minScale = 1
	}
	if maxScale < minScale {
		maxScale = minScale
	}
	v := View{Scale: 1, MinScale: minScale, MaxScale: maxScale}
	v.Scale = v.clamp(1)
	return v
}

func (v View) clamp(scale float64) float64 {
	return math.Min(math.Max(scale, v.MinScale), v.MaxScale)
}

// ToLogical converts a screen-space point to logical canvas space.
func (v View) ToLogical(screen Point) Point {
	return Point{
		X: (screen.X - v.Offset.X) / v.Scale,
		Y: (screen.Y - v.Offset.Y) / v.Scale,
	}
}

// ToScreen converts a logical canvas point to screen space.
func (v View) ToScreen(logical Point) Point {
	return Point{
		X: logical.X*v.Scale + v.Offset.X,
		Y: logical.Y*v.Scale + v.Offset.Y,
	}
}

// ZoomAt rescales the view by the multiplicative factor, anchored at the
// given screen point: the logical point under the anchor stays under the
// anchor after the zoom. The new scale is clamped to the view's bounds
// before the offset is recomputed.
func (v View) ZoomAt(screenAnchor Point, factor float64) View {
	newScale := v.clamp(v.Scale * factor)
	ratio := newScale / v.Scale

	out := v
	out.Scale = newScale
	out.Offset = Point{
		X: screenAnchor.X - (screenAnchor.X-v.Offset.X)*ratio,
		Y: screenAnchor.Y - (screenAnchor.Y-v.Offset.Y)*ratio,
	}
	return out
}

// Pan translates the view offset by a screen-space delta.
func (v View) Pan(delta Point) View {
	out := v
	out.Offset = v.Offset.Add(delta)
	return out
}
