package snapshot

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// Encode serializes the full registry state.
func Encode(r *registry.Registry) *Snapshot {
	return encode(r, nil)
}

// EncodeDelta serializes only the entities in modified, plus the
// always-full hidden/locked/copies/displayNames sets. Those sets are
// small and cheap to resend whole.
func EncodeDelta(r *registry.Registry, modified map[string]struct{}) *Snapshot {
	s := encode(r, modified)
	s.Delta = true
	return s
}

func encode(r *registry.Registry, modified map[string]struct{}) *Snapshot {
	s := &Snapshot{
		Version:      Version,
		Elements:     make(map[string]Fields),
		Hidden:       r.HiddenPaths(),
		Locked:       r.LockedPaths(),
		DisplayNames: r.DisplayNames(),
		Copies:       []Copy{},
	}
	if s.Hidden == nil {
		s.Hidden = []string{}
	}
	if s.Locked == nil {
		s.Locked = []string{}
	}

	for _, rec := range r.Copies() {
		s.Copies = append(s.Copies, Copy{
			Path:       rec.Path,
			SourcePath: rec.SourcePath,
			Kind:       rec.Kind.String(),
			Category:   rec.Category,
		})
	}

	r.Each(func(e *scene.Entity) {
		if modified != nil {
			if _, ok := modified[e.Path]; !ok {
				return
			}
		}
		s.Elements[e.Path] = encodeEntity(e)
	})
	return s
}

// encodeEntity emits geometry fields appropriate to the entity's
// representation tag, common fields, and the kind-specific fields
// applicable to its runtime type.
func encodeEntity(e *scene.Entity) Fields {
	f := make(Fields)

	if e.Transform.GeometryKind() == scene.GeometryBox {
		b := e.Transform.Bounds()
		f[fieldLeft] = b.Left()
		f[fieldRight] = b.Right()
		f[fieldTop] = b.Top()
		f[fieldBottom] = b.Bottom()
	} else {
		p := e.Transform.Position()
		b := e.Transform.Bounds()
		f[fieldX] = p.X
		f[fieldY] = p.Y
		if b.W != 0 && b.H != 0 {
			f[fieldScaleX] = scaleOf(e.Transform).X
			f[fieldScaleY] = scaleOf(e.Transform).Y
		}
	}

	if rot := e.Transform.Rotation(); rot != 0 {
		f[fieldRotation] = rot
	}
	f[fieldZIndex] = e.Z.Index
	if e.Z.Relative {
		f[fieldZRelative] = true
	}

	for _, key := range commonConfigFields {
		if v := e.Config(key); v != nil {
			f[key] = v
		}
	}
	for _, key := range kindFields[e.Kind] {
		v := e.Config(key)
		if v == nil {
			continue
		}
		if colorKeys[key] {
			f[key] = normalizeColor(v)
		} else {
			f[key] = v
		}
	}
	return f
}

// scaleOf extracts point-shape scale, defaulting to unit scale for
// foreign transform implementations.
func scaleOf(t scene.Transform) scene.Point {
	if ps, ok := t.(*scene.PointShape); ok {
		s := ps.Scale
		if s.X == 0 {
			s.X = 1
		}
		if s.Y == 0 {
			s.Y = 1
		}
		return s
	}
	return scene.Point{X: 1, Y: 1}
}

// normalizeColor re-emits color strings as lowercase hex. Values that
// do not parse pass through unchanged.
func normalizeColor(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return v
	}
	return c.Hex()
}
