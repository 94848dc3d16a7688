package scene

// Kind classifies an entity for editing purposes.
type Kind uint8

const (
	// KindObject is a generic scene object.
	KindObject Kind = iota
	// KindButton is an interactive control.
	KindButton
	// KindIndicator is a read-only status display.
	KindIndicator
	// KindLight is a light source.
	KindLight
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindIndicator:
		return "indicator"
	case KindLight:
		return "light"
	default:
		return "object"
	}
}

// KindFromString parses a kind name. Unknown names map to KindObject.
func KindFromString(s string) Kind {
	switch s {
	case "button":
		return KindButton
	case "indicator":
		return KindIndicator
	case "light":
		return KindLight
	default:
		return KindObject
	}
}

// ZOrder is an entity's stacking position.
type ZOrder struct {
	// Index is the stacking index.
	Index int

	// Relative indicates the index is relative to the parent rather
	// than absolute within the scene.
	Relative bool
}

// Provenance records where a runtime copy came from.
type Provenance struct {
	// IsCopy is true when the entity was produced by duplication.
	IsCopy bool

	// SourcePath is the path of the original (pre-copy) entity.
	SourcePath string
}

// LevelSet is the set of visibility tiers at which an entity is shown.
// An empty set means the entity is visible at every tier.
type LevelSet map[int]struct{}

// NewLevelSet builds a level set from tier numbers.
func NewLevelSet(levels ...int) LevelSet {
	if len(levels) == 0 {
		return nil
	}
	s := make(LevelSet, len(levels))
	for _, l := range levels {
		s[l] = struct{}{}
	}
	return s
}

// VisibleAt reports whether the set admits the given tier.
// Tier 0 means no filtering is active.
func (s LevelSet) VisibleAt(tier int) bool {
	if tier == 0 || len(s) == 0 {
		return true
	}
	_, ok := s[tier]
	return ok
}

// Levels returns the tiers in the set in unspecified order.
func (s LevelSet) Levels() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	return out
}

// Entity is one editable scene element.
type Entity struct {
	// Path is the globally unique hierarchical identity key.
	Path string

	// Kind classifies the entity.
	Kind Kind

	// Category is a free-form grouping label for UI filtering.
	Category string

	// AssetID identifies the factory asset the entity was built from.
	AssetID string

	// Levels is the set of visibility tiers at which the entity is
	// shown. Empty means always visible.
	Levels LevelSet

	// Transform is the entity's geometry, dispatched to box or point
	// representation at registry-resolution time.
	Transform Transform

	// Z is the stacking position.
	Z ZOrder

	// Visible reports whether the entity is currently shown.
	Visible bool

	// Locked prevents selection and mutation while set.
	Locked bool

	// DisplayName is an optional operator-assigned name override.
	DisplayName string

	// Provenance records duplication origin for runtime copies.
	Provenance Provenance

	// TypeConfig is an open property bag for kind-specific attributes
	// (color, light intensity, label text, flip flags, ...).
	TypeConfig map[string]any

	// handle is the live scene element, owned by the factory.
	handle Handle
}

// Name returns the entity's local name: the display name override when
// set, otherwise the last path segment.
func (e *Entity) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return LocalName(e.Path)
}

// Bounds returns the entity's screen-space bounding rectangle.
func (e *Entity) Bounds() Rect {
	return e.Transform.Bounds()
}

// Handle returns the live scene element handle, or nil for entities
// resolved without one.
func (e *Entity) Handle() Handle { return e.handle }

// SetHandle attaches the live scene element handle.
func (e *Entity) SetHandle(h Handle) { e.handle = h }

// Config returns the typeConfig value for key, or nil.
func (e *Entity) Config(key string) any {
	if e.TypeConfig == nil {
		return nil
	}
	return e.TypeConfig[key]
}

// SetConfig sets a typeConfig value, allocating the bag on first use.
func (e *Entity) SetConfig(key string, value any) {
	if e.TypeConfig == nil {
		e.TypeConfig = make(map[string]any)
	}
	e.TypeConfig[key] = value
}
