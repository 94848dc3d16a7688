package snap

import (
	"testing"

	"github.com/dshills/stagehand/internal/scene"
)

func TestAdjustSnapsToSiblingEdge(t *testing.T) {
	e := NewEngine()
	dragged := scene.Rect{X: 0, Y: 300, W: 50, H: 40}
	sibling := scene.Rect{X: 100, Y: 300, W: 60, H: 40}

	// Candidate left edge lands 5px from the sibling's right edge.
	candidate := scene.Point{X: 165, Y: 300}
	got, guides := e.Adjust(dragged, candidate, []scene.Rect{sibling})

	if got.X != 160 {
		t.Errorf("snapped X = %v, want sibling right edge 160", got.X)
	}
	if len(guides) == 0 {
		t.Fatal("expected a guide")
	}
	v := guides[0]
	if v.Axis != AxisVertical || v.Position != 160 {
		t.Errorf("guide = %+v", v)
	}
}

func TestAdjustBeyondThresholdPassesThrough(t *testing.T) {
	e := NewEngine()
	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	sibling := scene.Rect{X: 100, Y: 300, W: 60, H: 40}

	candidate := scene.Point{X: 169, Y: 500}
	got, guides := e.Adjust(dragged, candidate, []scene.Rect{sibling})

	if got != candidate {
		t.Errorf("position modified without snap: %+v", got)
	}
	if len(guides) != 0 {
		t.Errorf("unexpected guides: %v", guides)
	}
}

func TestAdjustKeepsOnlyBestMatchPerAxis(t *testing.T) {
	e := NewEngine()
	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	near := scene.Rect{X: 52, Y: 200, W: 10, H: 10}  // left edge 2px from candidate right
	far := scene.Rect{X: 56, Y: 200, W: 10, H: 10}   // left edge 6px from candidate right

	candidate := scene.Point{X: 0, Y: 0}
	got, guides := e.Adjust(dragged, candidate, []scene.Rect{far, near})

	if got.X != 2 {
		t.Errorf("snapped X = %v, want best match adjustment 2", got.X)
	}
	count := 0
	for _, g := range guides {
		if g.Axis == AxisVertical {
			count++
			if g.Position != 52 {
				t.Errorf("vertical guide at %v, want 52", g.Position)
			}
		}
	}
	if count != 1 {
		t.Errorf("vertical guides = %d, want exactly 1", count)
	}
}

func TestAdjustEmitsAtMostTwoGuides(t *testing.T) {
	e := NewEngine()
	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	others := []scene.Rect{
		{X: 52, Y: 0, W: 10, H: 40},
		{X: 0, Y: 44, W: 50, H: 10},
		{X: 53, Y: 45, W: 20, H: 20},
	}

	_, guides := e.Adjust(dragged, scene.Point{X: 0, Y: 0}, others)
	if len(guides) > 2 {
		t.Errorf("guides = %d, want at most 2", len(guides))
	}
}

func TestGridCompetesWithEdges(t *testing.T) {
	e := NewEngine()
	e.GridEnabled = true
	e.GridSize = 32

	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	// Edge candidate 6px away; grid line at 32 only 3px away.
	sibling := scene.Rect{X: 85, Y: 500, W: 10, H: 10}
	candidate := scene.Point{X: 29, Y: 500}

	got, guides := e.Adjust(dragged, candidate, []scene.Rect{sibling})
	if got.X != 32 {
		t.Errorf("snapped X = %v, want grid line 32", got.X)
	}
	// Grid matches adjust silently.
	for _, g := range guides {
		if g.Axis == AxisVertical {
			t.Errorf("grid snap should not emit a vertical guide: %+v", g)
		}
	}
}

func TestGridLosesToCloserEdge(t *testing.T) {
	e := NewEngine()
	e.GridEnabled = true
	e.GridSize = 32

	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	// Sibling left edge at 30: 1px from candidate; grid at 32: 3px.
	sibling := scene.Rect{X: 30, Y: 500, W: 10, H: 10}
	candidate := scene.Point{X: 29, Y: 500}

	got, _ := e.Adjust(dragged, candidate, []scene.Rect{sibling})
	if got.X != 30 {
		t.Errorf("snapped X = %v, want edge 30", got.X)
	}
}

func TestAdjustVerticalAxisIndependent(t *testing.T) {
	e := NewEngine()
	dragged := scene.Rect{X: 0, Y: 0, W: 50, H: 40}
	sibling := scene.Rect{X: 300, Y: 100, W: 60, H: 40}

	// Only the top edges are close (3px); x stays free.
	candidate := scene.Point{X: 500, Y: 103}
	got, guides := e.Adjust(dragged, candidate, []scene.Rect{sibling})

	if got.X != 500 {
		t.Errorf("X modified: %v", got.X)
	}
	if got.Y != 100 {
		t.Errorf("snapped Y = %v, want 100", got.Y)
	}
	if len(guides) != 1 || guides[0].Axis != AxisHorizontal {
		t.Errorf("guides = %+v", guides)
	}
}
