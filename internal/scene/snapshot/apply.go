package snapshot

import (
	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// Apply overwrites registry state from the snapshot.
//
// Top-level copies are reconstructed first: copies absent locally are
// re-duplicated from their recorded source, and listed copies that
// descend from another listed copy are skipped since they come back
// transitively. Then every element bag present in the snapshot is
// applied sparsely: unknown paths are ignored and absent fields leave
// the live value untouched. The hidden/locked/displayNames sets
// replace local state wholesale when present.
func Apply(s *Snapshot, r *registry.Registry) error {
	applyCopies(s, r)

	for path, fields := range s.Elements {
		e := r.Get(path)
		if e == nil {
			continue
		}
		applyFields(e, fields)
	}

	if s.Hidden != nil {
		hidden := toSet(s.Hidden)
		for _, p := range r.Paths() {
			_, h := hidden[p]
			if err := r.SetHidden(p, h); err != nil {
				return err
			}
		}
	}
	if s.Locked != nil {
		locked := toSet(s.Locked)
		for _, p := range r.Paths() {
			_, l := locked[p]
			if err := r.SetLocked(p, l); err != nil {
				return err
			}
		}
	}
	if s.DisplayNames != nil {
		for _, p := range r.Paths() {
			if err := r.SetDisplayName(p, s.DisplayNames[p]); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyCopies reconstructs missing top-level copies. Failures are
// skipped, not fatal: a copy referencing an unknown source is treated
// like any other unknown path.
func applyCopies(s *Snapshot, r *registry.Registry) {
	for _, c := range s.Copies {
		if descendsFromListed(c.Path, s.Copies) {
			continue
		}
		if r.Has(c.Path) {
			continue
		}
		if !r.Has(c.SourcePath) {
			continue
		}
		_ = r.Restore(c.Path, c.SourcePath)
	}
}

// descendsFromListed reports whether path lies under another listed
// copy.
func descendsFromListed(path string, copies []Copy) bool {
	for _, other := range copies {
		if other.Path != path && scene.IsDescendant(path, other.Path) {
			return true
		}
	}
	return false
}

// applyFields overwrites any entity field present in the bag.
func applyFields(e *scene.Entity, f Fields) {
	applyGeometry(e, f)

	if v, ok := num(f, fieldRotation); ok {
		e.Transform.SetRotation(v)
	}
	if v, ok := num(f, fieldZIndex); ok {
		e.Z.Index = int(v)
	}
	if v, ok := f[fieldZRelative].(bool); ok {
		e.Z.Relative = v
	}

	for _, key := range commonConfigFields {
		if v, ok := f[key]; ok {
			e.SetConfig(key, v)
		}
	}
	for _, key := range kindFields[e.Kind] {
		if v, ok := f[key]; ok {
			e.SetConfig(key, v)
		}
	}
}

// applyGeometry overwrites the geometry fields matching the entity's
// representation tag.
func applyGeometry(e *scene.Entity, f Fields) {
	if e.Transform.GeometryKind() == scene.GeometryBox {
		b := e.Transform.Bounds()
		left, lok := num(f, fieldLeft)
		right, rok := num(f, fieldRight)
		top, tok := num(f, fieldTop)
		bottom, bok := num(f, fieldBottom)
		if !lok {
			left = b.Left()
		}
		if !rok {
			right = b.Right()
		}
		if !tok {
			top = b.Top()
		}
		if !bok {
			bottom = b.Bottom()
		}
		if lok || rok || tok || bok {
			e.Transform.SetBounds(scene.Rect{X: left, Y: top, W: right - left, H: bottom - top})
		}
		return
	}

	pos := e.Transform.Position()
	x, xok := num(f, fieldX)
	y, yok := num(f, fieldY)
	if !xok {
		x = pos.X
	}
	if !yok {
		y = pos.Y
	}
	if xok || yok {
		e.Transform.SetPosition(scene.Point{X: x, Y: y})
	}

	if ps, ok := e.Transform.(*scene.PointShape); ok {
		if v, sok := num(f, fieldScaleX); sok {
			ps.Scale.X = v
		}
		if v, sok := num(f, fieldScaleY); sok {
			ps.Scale.Y = v
		}
	}
}

// num reads a numeric field, accepting the types JSON decoding and
// direct encoding produce.
func num(f Fields, key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toSet(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		out[p] = struct{}{}
	}
	return out
}
