// Package viewmodel derives screen-space geometry from the logical graph
// and the current view transform: node boxes, bezier edge paths, arrowhead
// rotation, and pointer hit classification. Nothing here is stored; the
// presentation layer re-derives on every frame it cares about.
package viewmodel

import (
	"fmt"
	"math"

	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/internal/viewport"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

// Config holds the geometry constants, all in logical units except the
// edge hit tolerance, which is screen pixels.
type Config struct {
	NodeWidth        float64
	NodeHeight       float64
	BezierOffset     float64
	HandleRadius     float64
	EdgeHitTolerance float64
}

// DefaultConfig returns the stock geometry: 200x100 nodes, 50-unit bezier
// control offset, 10-unit connector handles, 6px edge hit tolerance.
func DefaultConfig() Config {
	return Config{
		NodeWidth:        200,
		NodeHeight:       100,
		BezierOffset:     50,
		HandleRadius:     10,
		EdgeHitTolerance: 6,
	}
}

// NodeBox is a node's axis-aligned screen-space rectangle.
type NodeBox struct {
	TopLeft viewport.Point
	Width   float64
	Height  float64
}

// Contains reports whether the screen point falls inside the box.
func (b NodeBox) Contains(p viewport.Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.TopLeft.X+b.Width &&
		p.Y >= b.TopLeft.Y && p.Y <= b.TopLeft.Y+b.Height
}

// RightCenter is the output anchor: where outgoing edges leave the node.
func (b NodeBox) RightCenter() viewport.Point {
	return viewport.Point{X: b.TopLeft.X + b.Width, Y: b.TopLeft.Y + b.Height/2}
}

// LeftCenter is the input anchor: where incoming edges enter the node.
func (b NodeBox) LeftCenter() viewport.Point {
	return viewport.Point{X: b.TopLeft.X, Y: b.TopLeft.Y + b.Height/2}
}

// NodeBox computes a node's screen box under the view transform.
func (c Config) NodeBox(node schema.StepNode, view viewport.View) NodeBox {
	topLeft := view.ToScreen(viewport.Point{X: node.Position.X, Y: node.Position.Y})
	return NodeBox{
		TopLeft: topLeft,
		Width:   c.NodeWidth * view.Scale,
		Height:  c.NodeHeight * view.Scale,
	}
}

// EdgePath is a cubic bezier in screen space: a horizontal-exit/entry
// S-curve from the source's output anchor to the target's input anchor.
type EdgePath struct {
	Start    viewport.Point
	Control1 viewport.Point
	Control2 viewport.Point
	End      viewport.Point
}

// EdgePath computes the committed-edge path between two nodes.
func (c Config) EdgePath(source, target schema.StepNode, view viewport.View) EdgePath {
	start := c.NodeBox(source, view).RightCenter()
	end := c.NodeBox(target, view).LeftCenter()
	return c.path(start, end, view)
}

// PreviewPath computes the transient edge shown while dragging a new
// connection: from the source's output anchor to the pointer, using the
// same curve formula as committed edges.
func (c Config) PreviewPath(source schema.StepNode, pointer viewport.Point, view viewport.View) EdgePath {
	start := c.NodeBox(source, view).RightCenter()
	return c.path(start, pointer, view)
}

func (c Config) path(start, end viewport.Point, view viewport.View) EdgePath {
	offset := c.BezierOffset * view.Scale
	return EdgePath{
		Start:    start,
		Control1: viewport.Point{X: start.X + offset, Y: start.Y},
		Control2: viewport.Point{X: end.X - offset, Y: end.Y},
		End:      end,
	}
}

// SVG renders the path as an SVG path string.
func (p EdgePath) SVG() string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		p.Start.X, p.Start.Y,
		p.Control1.X, p.Control1.Y,
		p.Control2.X, p.Control2.Y,
		p.End.X, p.End.Y)
}

// At evaluates the bezier at parameter t in [0, 1].
func (p EdgePath) At(t float64) viewport.Point {
	u := 1 - t
	return p.Start.Mul(u * u * u).
		Add(p.Control1.Mul(3 * u * u * t)).
		Add(p.Control2.Mul(3 * u * t * t)).
		Add(p.End.Mul(t * t * t))
}

// ArrowAngle returns the arrowhead rotation in degrees, positioned at the
// path's end anchor: the angle of the straight anchor-to-anchor line.
func (p EdgePath) ArrowAngle() float64 {
	return math.Atan2(p.End.Y-p.Start.Y, p.End.X-p.Start.X) * 180 / math.Pi
}

// HitKind classifies what sits under a screen point.
type HitKind int

const (
	HitBackground HitKind = iota
	HitNodeBody
	HitNodeHandle
	HitConnection
)

// Hit is the result of a pointer hit test.
type Hit struct {
	Kind         HitKind
	NodeID       string
	ConnectionID string
}

// edgeHitSamples is the polyline resolution used to measure pointer
// distance to a bezier edge.
const edgeHitSamples = 24

// HitTest classifies the screen point against the graph. Nodes are tested
// topmost-first (reverse insertion order, matching render stacking), the
// output handle before the body; connections come after nodes so a node
// overlapping an edge wins.
func (c Config) HitTest(store *graph.Store, view viewport.View, p viewport.Point) Hit {
	nodes := store.Nodes()
	handleR := c.HandleRadius * view.Scale

	for i := len(nodes) - 1; i >= 0; i-- {
		box := c.NodeBox(nodes[i], view)
		if dist(p, box.RightCenter()) <= handleR {
			return Hit{Kind: HitNodeHandle, NodeID: nodes[i].ID}
		}
		if box.Contains(p) {
			return Hit{Kind: HitNodeBody, NodeID: nodes[i].ID}
		}
	}

	byID := make(map[string]schema.StepNode, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}
	for _, conn := range store.Connections() {
		source, okS := byID[conn.SourceID]
		target, okT := byID[conn.TargetID]
		if !okS || !okT {
			continue
		}
		path := c.EdgePath(source, target, view)
		if distanceToPath(p, path) <= c.EdgeHitTolerance {
			return Hit{Kind: HitConnection, ConnectionID: conn.ID}
		}
	}

	return Hit{Kind: HitBackground}
}

func distanceToPath(p viewport.Point, path EdgePath) float64 {
	min := math.Inf(1)
	prev := path.At(0)
	for i := 1; i <= edgeHitSamples; i++ {
		cur := path.At(float64(i) / edgeHitSamples)
		if d := distanceToSegment(p, prev, cur); d < min {
			min = d
		}
		prev = cur
	}
	return min
}

func distanceToSegment(p, a, b viewport.Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return dist(p, a.Add(ab.Mul(t)))
}

func dist(a, b viewport.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
