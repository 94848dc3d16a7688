package scene

// Point is a 2D position in scene pixels.
type Point struct {
	X float64
	Y float64
}

// Add returns the point offset by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the point offset by -d.
func (p Point) Sub(d Point) Point {
	return Point{X: p.X - d.X, Y: p.Y - d.Y}
}

// Rect is an axis-aligned rectangle in scene pixels.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Left returns the x coordinate of the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the x coordinate of the horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the y coordinate of the vertical center.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Intersects reports whether r and other overlap.
// Rectangles that only share an edge still intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.Right() && r.Right() >= other.X &&
		r.Y <= other.Bottom() && r.Bottom() >= other.Y
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Normalized returns r with non-negative width and height, flipping
// edges as needed. Marquee drags can produce inverted rectangles.
func (r Rect) Normalized() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// GeometryKind tags which geometry representation an entity uses.
type GeometryKind uint8

const (
	// GeometryBox is an anchored element described by edge offsets.
	GeometryBox GeometryKind = iota
	// GeometryPoint is a free element described by position, rotation
	// and scale.
	GeometryPoint
)

// String returns the geometry kind name.
func (g GeometryKind) String() string {
	switch g {
	case GeometryBox:
		return "box"
	case GeometryPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Transform is the geometry capability shared by box and point shaped
// entities. The concrete representation is chosen once when an entity
// is resolved into the registry; callers never type-switch on it.
type Transform interface {
	// GeometryKind returns the representation tag.
	GeometryKind() GeometryKind

	// Bounds returns the screen-space bounding rectangle.
	Bounds() Rect

	// Position returns the top-left corner of the bounds.
	Position() Point

	// SetPosition moves the element so its bounds' top-left corner is
	// at p, preserving size.
	SetPosition(p Point)

	// SetBounds sets position and size together. Used by resize drags
	// and when restoring backed-up transforms.
	SetBounds(r Rect)

	// Rotation returns the rotation in degrees.
	Rotation() float64

	// SetRotation sets the rotation in degrees.
	SetRotation(deg float64)

	// Clone returns an independent copy of the transform state,
	// detached from any live scene element.
	Clone() Transform
}

// BoxShape is the anchored-box transform: left/right/top/bottom edge
// offsets from the scene origin.
type BoxShape struct {
	LeftOff   float64
	RightOff  float64
	TopOff    float64
	BottomOff float64
	Rot       float64
}

// GeometryKind returns GeometryBox.
func (b *BoxShape) GeometryKind() GeometryKind { return GeometryBox }

// Bounds returns the rectangle spanned by the edge offsets.
func (b *BoxShape) Bounds() Rect {
	return Rect{X: b.LeftOff, Y: b.TopOff, W: b.RightOff - b.LeftOff, H: b.BottomOff - b.TopOff}
}

// Position returns the top-left corner.
func (b *BoxShape) Position() Point { return Point{X: b.LeftOff, Y: b.TopOff} }

// SetPosition moves the box, preserving its width and height.
func (b *BoxShape) SetPosition(p Point) {
	w := b.RightOff - b.LeftOff
	h := b.BottomOff - b.TopOff
	b.LeftOff = p.X
	b.TopOff = p.Y
	b.RightOff = p.X + w
	b.BottomOff = p.Y + h
}

// SetBounds sets the edge offsets from the rectangle.
func (b *BoxShape) SetBounds(r Rect) {
	b.LeftOff = r.X
	b.TopOff = r.Y
	b.RightOff = r.Right()
	b.BottomOff = r.Bottom()
}

// Rotation returns the rotation in degrees.
func (b *BoxShape) Rotation() float64 { return b.Rot }

// SetRotation sets the rotation in degrees.
func (b *BoxShape) SetRotation(deg float64) { b.Rot = deg }

// Clone returns a copy of the box shape.
func (b *BoxShape) Clone() Transform {
	c := *b
	return &c
}

// PointShape is the free transform: a position with rotation and scale.
// Size is the unscaled extent used to derive a bounding box.
type PointShape struct {
	Pos   Point
	Rot   float64
	Scale Point
	Size  Point
}

// GeometryKind returns GeometryPoint.
func (s *PointShape) GeometryKind() GeometryKind { return GeometryPoint }

// Bounds returns the scaled bounding rectangle anchored at Pos.
func (s *PointShape) Bounds() Rect {
	sx, sy := s.Scale.X, s.Scale.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return Rect{X: s.Pos.X, Y: s.Pos.Y, W: s.Size.X * sx, H: s.Size.Y * sy}
}

// Position returns the anchor position.
func (s *PointShape) Position() Point { return s.Pos }

// SetPosition moves the anchor position.
func (s *PointShape) SetPosition(p Point) { s.Pos = p }

// SetBounds moves the anchor and adjusts scale so the bounding box
// matches r. Zero base sizes leave scale untouched.
func (s *PointShape) SetBounds(r Rect) {
	s.Pos = Point{X: r.X, Y: r.Y}
	if s.Size.X != 0 {
		s.Scale.X = r.W / s.Size.X
	}
	if s.Size.Y != 0 {
		s.Scale.Y = r.H / s.Size.Y
	}
}

// Rotation returns the rotation in degrees.
func (s *PointShape) Rotation() float64 { return s.Rot }

// SetRotation sets the rotation in degrees.
func (s *PointShape) SetRotation(deg float64) { s.Rot = deg }

// Clone returns a copy of the point shape.
func (s *PointShape) Clone() Transform {
	c := *s
	return &c
}

// CopyTransform copies the observable state of src into dst. Both
// transforms must share the same geometry kind; mismatched kinds copy
// position and rotation only.
func CopyTransform(dst, src Transform) {
	if dst.GeometryKind() == src.GeometryKind() {
		switch d := dst.(type) {
		case *BoxShape:
			if s, ok := src.(*BoxShape); ok {
				*d = *s
				return
			}
		case *PointShape:
			if s, ok := src.(*PointShape); ok {
				*d = *s
				return
			}
		}
	}
	dst.SetBounds(src.Bounds())
	dst.SetRotation(src.Rotation())
}
