package app

import (
	"github.com/dshills/stagehand/internal/scene"
)

// cellHandle is the terminal frontend's live element: a point shape
// projected onto character cells by the renderer. The real scene
// engine supplies its own factory; this one exists so the editor
// stack runs standalone.
type cellHandle struct {
	scene.PointShape
	visible bool
}

func (h *cellHandle) SetVisible(v bool) { h.visible = v }
func (h *cellHandle) Destroy()          {}

// cellFactory instantiates cellHandles, reading the element's base
// size and position from its config bag.
type cellFactory struct {
	singletons map[string]bool
	required   map[string]bool
}

func newCellFactory() *cellFactory {
	return &cellFactory{
		singletons: make(map[string]bool),
		required:   make(map[string]bool),
	}
}

// Instantiate builds a handle at the configured position. Config keys
// x, y, w and h are read when present; the default element is 12x4
// cells at the origin.
func (f *cellFactory) Instantiate(assetID string, config map[string]any) (scene.Handle, error) {
	h := &cellHandle{
		PointShape: scene.PointShape{
			Scale: scene.Point{X: 1, Y: 1},
			Size:  scene.Point{X: 12, Y: 4},
		},
		visible: true,
	}
	h.Pos = scene.Point{X: configNum(config, "x", 0), Y: configNum(config, "y", 0)}
	h.Size = scene.Point{
		X: configNum(config, "w", h.Size.X),
		Y: configNum(config, "h", h.Size.Y),
	}
	return h, nil
}

func (f *cellFactory) IsSingleton(assetID string) bool { return f.singletons[assetID] }
func (f *cellFactory) IsRequired(assetID string) bool  { return f.required[assetID] }

func (f *cellFactory) DependenciesOf(assetID string) []string { return nil }

func configNum(config map[string]any, key string, def float64) float64 {
	switch v := config[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}
