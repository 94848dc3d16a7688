package scene

import "testing"

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}
	if r.Left() != 10 || r.Right() != 40 {
		t.Errorf("horizontal edges = %v, %v", r.Left(), r.Right())
	}
	if r.Top() != 20 || r.Bottom() != 60 {
		t.Errorf("vertical edges = %v, %v", r.Top(), r.Bottom())
	}
	if r.CenterX() != 25 || r.CenterY() != 40 {
		t.Errorf("centers = %v, %v", r.CenterX(), r.CenterY())
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, true},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 5, 5}, true},
		{"disjoint x", Rect{0, 0, 10, 10}, Rect{20, 0, 10, 10}, false},
		{"disjoint y", Rect{0, 0, 10, 10}, Rect{0, 20, 10, 10}, false},
		{"touching edge", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects() not symmetric")
			}
		})
	}
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: -4, H: -6}.Normalized()
	if r.X != 6 || r.Y != 4 || r.W != 4 || r.H != 6 {
		t.Errorf("Normalized() = %+v", r)
	}
}

func TestBoxShape(t *testing.T) {
	b := &BoxShape{LeftOff: 10, RightOff: 50, TopOff: 20, BottomOff: 40}

	got := b.Bounds()
	want := Rect{X: 10, Y: 20, W: 40, H: 20}
	if got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}

	b.SetPosition(Point{X: 100, Y: 200})
	if b.Bounds() != (Rect{X: 100, Y: 200, W: 40, H: 20}) {
		t.Errorf("SetPosition did not preserve size: %+v", b.Bounds())
	}

	b.SetBounds(Rect{X: 0, Y: 0, W: 8, H: 6})
	if b.RightOff != 8 || b.BottomOff != 6 {
		t.Errorf("SetBounds offsets = %v, %v", b.RightOff, b.BottomOff)
	}
}

func TestPointShape(t *testing.T) {
	s := &PointShape{Pos: Point{X: 5, Y: 5}, Scale: Point{X: 2, Y: 2}, Size: Point{X: 10, Y: 10}}

	got := s.Bounds()
	want := Rect{X: 5, Y: 5, W: 20, H: 20}
	if got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}

	s.SetBounds(Rect{X: 0, Y: 0, W: 10, H: 30})
	if s.Scale.X != 1 || s.Scale.Y != 3 {
		t.Errorf("SetBounds scale = %+v", s.Scale)
	}
}

func TestPointShapeZeroScale(t *testing.T) {
	s := &PointShape{Pos: Point{}, Size: Point{X: 10, Y: 10}}
	if s.Bounds().W != 10 {
		t.Errorf("zero scale should default to 1, got width %v", s.Bounds().W)
	}
}

func TestCopyTransform(t *testing.T) {
	src := &BoxShape{LeftOff: 1, RightOff: 11, TopOff: 2, BottomOff: 22, Rot: 45}
	dst := &BoxShape{}
	CopyTransform(dst, src)
	if *dst != *src {
		t.Errorf("CopyTransform box = %+v, want %+v", dst, src)
	}

	// Mismatched kinds fall back to bounds and rotation.
	pt := &PointShape{Size: Point{X: 10, Y: 20}, Scale: Point{X: 1, Y: 1}}
	CopyTransform(pt, src)
	if pt.Bounds() != src.Bounds() {
		t.Errorf("cross-kind bounds = %+v, want %+v", pt.Bounds(), src.Bounds())
	}
	if pt.Rotation() != 45 {
		t.Errorf("cross-kind rotation = %v", pt.Rotation())
	}
}

func TestLevelSetVisibleAt(t *testing.T) {
	tests := []struct {
		name string
		set  LevelSet
		tier int
		want bool
	}{
		{"empty set always visible", nil, 3, true},
		{"tier zero disables filter", NewLevelSet(1), 0, true},
		{"member tier", NewLevelSet(1, 2), 2, true},
		{"non-member tier", NewLevelSet(1, 2), 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.VisibleAt(tt.tier); got != tt.want {
				t.Errorf("VisibleAt(%d) = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}
}
