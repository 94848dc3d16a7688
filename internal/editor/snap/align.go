package snap

import (
	"errors"
	"math"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// ErrNeedTwo indicates an alignment over fewer than two entities.
var ErrNeedTwo = errors.New("alignment requires at least two entities")

// Alignment selects which edge or center a group aligns on.
type Alignment uint8

const (
	// AlignLeft aligns left edges to the group minimum.
	AlignLeft Alignment = iota
	// AlignCenterX aligns horizontal centers to the group center.
	AlignCenterX
	// AlignRight aligns right edges to the group maximum.
	AlignRight
	// AlignTop aligns top edges to the group minimum.
	AlignTop
	// AlignCenterY aligns vertical centers to the group center.
	AlignCenterY
	// AlignBottom aligns bottom edges to the group maximum.
	AlignBottom
)

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenterX:
		return "center-h"
	case AlignRight:
		return "right"
	case AlignTop:
		return "top"
	case AlignCenterY:
		return "center-v"
	case AlignBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Moved is one entity's before/after position from an alignment, in
// the form the command log records.
type Moved struct {
	Path string
	From scene.Point
	To   scene.Point
}

// Align repositions every entity in paths so the chosen edge or
// center matches across the group, leaving the orthogonal axis
// untouched. It requires at least two entities and returns the moves
// actually applied.
func Align(r *registry.Registry, paths []string, mode Alignment) ([]Moved, error) {
	type member struct {
		e      *scene.Entity
		bounds scene.Rect
	}

	var members []member
	for _, p := range paths {
		if e := r.Get(p); e != nil {
			members = append(members, member{e: e, bounds: e.Bounds()})
		}
	}
	if len(members) < 2 {
		return nil, ErrNeedTwo
	}

	// Group extreme or center on the chosen axis.
	target := 0.0
	switch mode {
	case AlignLeft:
		target = math.Inf(1)
		for _, m := range members {
			target = math.Min(target, m.bounds.Left())
		}
	case AlignRight:
		target = math.Inf(-1)
		for _, m := range members {
			target = math.Max(target, m.bounds.Right())
		}
	case AlignTop:
		target = math.Inf(1)
		for _, m := range members {
			target = math.Min(target, m.bounds.Top())
		}
	case AlignBottom:
		target = math.Inf(-1)
		for _, m := range members {
			target = math.Max(target, m.bounds.Bottom())
		}
	case AlignCenterX, AlignCenterY:
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, m := range members {
			if mode == AlignCenterX {
				lo = math.Min(lo, m.bounds.Left())
				hi = math.Max(hi, m.bounds.Right())
			} else {
				lo = math.Min(lo, m.bounds.Top())
				hi = math.Max(hi, m.bounds.Bottom())
			}
		}
		target = (lo + hi) / 2
	}

	var moves []Moved
	for _, m := range members {
		from := m.e.Transform.Position()
		to := from
		switch mode {
		case AlignLeft:
			to.X = from.X + (target - m.bounds.Left())
		case AlignCenterX:
			to.X = from.X + (target - m.bounds.CenterX())
		case AlignRight:
			to.X = from.X + (target - m.bounds.Right())
		case AlignTop:
			to.Y = from.Y + (target - m.bounds.Top())
		case AlignCenterY:
			to.Y = from.Y + (target - m.bounds.CenterY())
		case AlignBottom:
			to.Y = from.Y + (target - m.bounds.Bottom())
		}
		if to == from {
			continue
		}
		m.e.Transform.SetPosition(to)
		moves = append(moves, Moved{Path: m.e.Path, From: from, To: to})
	}
	return moves, nil
}
