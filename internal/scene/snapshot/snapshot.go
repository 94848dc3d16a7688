// Package snapshot converts registry state to and from the versioned
// snapshot format used for persistence and sync.
//
// A snapshot carries a property bag per entity plus the always-full
// hidden, locked, copies and display-name sets. Application is
// sparse: fields absent from the snapshot leave the live value
// untouched, so the same code path serves full snapshots and delta
// patches. Unknown paths are ignored on apply.
package snapshot

import (
	"github.com/dshills/stagehand/internal/scene"
)

// Version is the current snapshot format version.
const Version = 2

// Fields is one entity's serialized property bag.
type Fields map[string]any

// Copy is one top-level runtime copy record. Descendant copies are
// reconstructed transitively when the top copy is recreated.
type Copy struct {
	Path       string `json:"path"`
	SourcePath string `json:"source"`
	Kind       string `json:"kind"`
	Category   string `json:"category"`
}

// Snapshot is the serialized form of a scene's editable state.
type Snapshot struct {
	// Version is the format version the snapshot was written with.
	Version int

	// Delta marks a patch carrying only entities modified since the
	// last send. The hidden/locked/copies/displayNames sets are full
	// either way.
	Delta bool

	// Elements maps entity path to its property bag.
	Elements map[string]Fields

	// Hidden lists hidden entity paths. nil means the set was absent
	// from the parsed input and must not be applied.
	Hidden []string

	// Locked lists locked entity paths. nil means absent.
	Locked []string

	// Copies lists top-level runtime copies. nil means absent.
	Copies []Copy

	// DisplayNames maps path to operator-assigned name. nil means
	// absent.
	DisplayNames map[string]string
}

// geometry field keys per representation tag.
const (
	fieldLeft   = "left"
	fieldRight  = "right"
	fieldTop    = "top"
	fieldBottom = "bottom"

	fieldX      = "x"
	fieldY      = "y"
	fieldScaleX = "scale_x"
	fieldScaleY = "scale_y"

	fieldRotation  = "rotation"
	fieldZIndex    = "z_index"
	fieldZRelative = "z_relative"
)

// kindFields whitelists the kind-specific typeConfig keys emitted per
// entity kind. Color-valued keys are normalized on encode.
var kindFields = map[scene.Kind][]string{
	scene.KindLight:     {"energy", "color", "shadow"},
	scene.KindObject:    {"fill_color", "flip_h", "flip_v", "stretch"},
	scene.KindButton:    {"text", "tint"},
	scene.KindIndicator: {"text", "tint", "color"},
}

// colorKeys marks typeConfig keys holding color values.
var colorKeys = map[string]bool{
	"color":      true,
	"fill_color": true,
	"tint":       true,
}

// commonConfigFields are emitted for every kind when present.
var commonConfigFields = []string{"opacity"}
