// Package snap computes drag-time snap adjustments, transient
// alignment guides and group alignment operations over entity
// bounding boxes.
package snap

import (
	"math"

	"github.com/dshills/stagehand/internal/scene"
)

// DefaultThreshold is the snap distance in pixels.
const DefaultThreshold = 8.0

// DefaultGridSize is the grid cell size in pixels.
const DefaultGridSize = 32.0

// Axis identifies a guide orientation.
type Axis uint8

const (
	// AxisVertical is a vertical guide line at an x coordinate.
	AxisVertical Axis = iota
	// AxisHorizontal is a horizontal guide line at a y coordinate.
	AxisHorizontal
)

// String returns the axis name.
func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Guide describes one transient alignment line for the caller to
// render. Guides are never persisted.
type Guide struct {
	// Axis is the guide orientation.
	Axis Axis

	// Position is the guide's coordinate on its axis.
	Position float64

	// SpanStart and SpanEnd bound the guide line along the other
	// axis, covering the dragged box and the matched box.
	SpanStart float64
	SpanEnd   float64
}

// Engine computes snap adjustments for drag frames.
type Engine struct {
	// Threshold is the maximum distance at which a snap engages.
	Threshold float64

	// GridSize is the grid cell size for grid snapping.
	GridSize float64

	// GridEnabled lets grid candidates compete with edge candidates.
	GridEnabled bool
}

// NewEngine creates an engine with default threshold and grid size.
func NewEngine() *Engine {
	return &Engine{Threshold: DefaultThreshold, GridSize: DefaultGridSize}
}

// axisMatch is the best snap candidate found so far on one axis.
type axisMatch struct {
	found bool
	delta float64 // adjustment to apply
	guide Guide
	grid  bool // grid matches adjust without emitting a guide
}

// consider keeps the candidate when it beats the current best.
func (m *axisMatch) consider(delta float64, threshold float64, guide Guide, grid bool) {
	if math.Abs(delta) >= threshold {
		return
	}
	if m.found && math.Abs(delta) >= math.Abs(m.delta) {
		return
	}
	m.found = true
	m.delta = delta
	m.guide = guide
	m.grid = grid
}

// Adjust computes the snapped position for a drag frame. dragged is
// the dragged entity's current bounds (for size), candidate the
// proposed new top-left corner, others the bounds of every visible,
// non-dragged entity. It returns the adjusted position plus zero, one
// or two guides: per axis only the single closest match below the
// threshold wins.
func (e *Engine) Adjust(dragged scene.Rect, candidate scene.Point, others []scene.Rect) (scene.Point, []Guide) {
	box := scene.Rect{X: candidate.X, Y: candidate.Y, W: dragged.W, H: dragged.H}

	var bestX, bestY axisMatch

	for _, o := range others {
		e.considerBox(box, o, &bestX, &bestY)
	}
	if e.GridEnabled && e.GridSize > 0 {
		e.considerGrid(box, &bestX, &bestY)
	}

	adjusted := candidate
	var guides []Guide
	if bestX.found {
		adjusted.X += bestX.delta
		if !bestX.grid {
			guides = append(guides, bestX.guide)
		}
	}
	if bestY.found {
		adjusted.Y += bestY.delta
		if !bestY.grid {
			guides = append(guides, bestY.guide)
		}
	}
	return adjusted, guides
}

// considerBox offers every edge/center pair between the dragged box
// and one other box as snap candidates.
func (e *Engine) considerBox(box, o scene.Rect, bestX, bestY *axisMatch) {
	dragXs := [3]float64{box.Left(), box.CenterX(), box.Right()}
	otherXs := [3]float64{o.Left(), o.CenterX(), o.Right()}
	dragYs := [3]float64{box.Top(), box.CenterY(), box.Bottom()}
	otherYs := [3]float64{o.Top(), o.CenterY(), o.Bottom()}

	spanY := Guide{}
	spanY.SpanStart = math.Min(box.Top(), o.Top())
	spanY.SpanEnd = math.Max(box.Bottom(), o.Bottom())
	spanX := Guide{}
	spanX.SpanStart = math.Min(box.Left(), o.Left())
	spanX.SpanEnd = math.Max(box.Right(), o.Right())

	for _, dx := range dragXs {
		for _, ox := range otherXs {
			guide := Guide{Axis: AxisVertical, Position: ox, SpanStart: spanY.SpanStart, SpanEnd: spanY.SpanEnd}
			bestX.consider(ox-dx, e.Threshold, guide, false)
		}
	}
	for _, dy := range dragYs {
		for _, oy := range otherYs {
			guide := Guide{Axis: AxisHorizontal, Position: oy, SpanStart: spanX.SpanStart, SpanEnd: spanX.SpanEnd}
			bestY.consider(oy-dy, e.Threshold, guide, false)
		}
	}
}

// considerGrid offers the nearest grid line for the box's top-left
// corner. Grid matches compete on equal footing with edge matches
// but draw no guide.
func (e *Engine) considerGrid(box scene.Rect, bestX, bestY *axisMatch) {
	nearestX := math.Round(box.X/e.GridSize) * e.GridSize
	nearestY := math.Round(box.Y/e.GridSize) * e.GridSize
	bestX.consider(nearestX-box.X, e.Threshold, Guide{}, true)
	bestY.consider(nearestY-box.Y, e.Threshold, Guide{}, true)
}
