// Package scene defines the core data model for editable scene elements.
//
// An Entity is one editable element of a running scene, addressed by a
// unique hierarchical path ("Parent/Child"). Entities carry a tagged
// geometry (anchored box or free point), z-order, visibility and lock
// state, and an open property bag for kind-specific attributes.
//
// Scene construction and rendering are external concerns: entities are
// manipulated through the narrow Factory and Handle interfaces, which
// hide how elements are instantiated and drawn.
package scene
