package registry

import (
	"fmt"
	"strings"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/template"
)

// Node is one element of the live scene tree exposed for discovery.
// Traversal is read-only; discovery never mutates the scene.
type Node interface {
	// Name returns the node's local name, used as its path segment.
	Name() string

	// TypeName returns the node's structural type (e.g. "light",
	// "control"). Structural type wins over name heuristics when
	// classifying undeclared nodes.
	TypeName() string

	// Handle returns the node's live element handle.
	Handle() scene.Handle

	// Children returns the node's children.
	Children() []Node
}

// Resolve builds a registry from the declared template list plus a
// recursive scan of the live scene tree. Declared templates win over
// discovery; undeclared nodes are auto-classified. Templates with no
// matching live node are instantiated through the factory.
func Resolve(list *template.List, root Node, factory scene.Factory) (*Registry, error) {
	r := New(factory)

	declared := make(map[string]*template.Template, len(list.Templates))
	for i := range list.Templates {
		declared[list.Templates[i].Path] = &list.Templates[i]
	}

	// Walk the live tree first so discovered handles are attached.
	if root != nil {
		for _, child := range root.Children() {
			if err := r.resolveNode(child, "", declared); err != nil {
				return nil, err
			}
		}
	}

	// Instantiate declared templates that had no live node.
	for _, tpl := range list.Templates {
		if r.Has(tpl.Path) {
			continue
		}
		if err := r.instantiateTemplate(tpl); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// resolveNode registers one live node and recurses into its children.
func (r *Registry) resolveNode(n Node, parent string, declared map[string]*template.Template) error {
	path := scene.JoinPath(parent, n.Name())
	if r.Has(path) {
		return fmt.Errorf("%w: %s", ErrPathTaken, path)
	}

	e := &scene.Entity{
		Path:      path,
		Transform: n.Handle(),
		Visible:   true,
	}
	e.SetHandle(n.Handle())

	if tpl, ok := declared[path]; ok {
		e.Kind = scene.KindFromString(tpl.Kind)
		e.Category = tpl.Category
		e.AssetID = tpl.Asset
		e.Levels = scene.NewLevelSet(tpl.Levels...)
		e.TypeConfig = cloneConfig(tpl.Config)
	} else {
		e.Kind = classify(n)
		e.Category = e.Kind.String()
	}

	r.register(e)

	for _, child := range n.Children() {
		if err := r.resolveNode(child, path, declared); err != nil {
			return err
		}
	}
	return nil
}

// instantiateTemplate creates a live element for a declared template
// that the scene tree did not contain.
func (r *Registry) instantiateTemplate(tpl template.Template) error {
	h, err := r.factory.Instantiate(tpl.Asset, tpl.Config)
	if err != nil {
		return fmt.Errorf("instantiating template %s: %w", tpl.Path, err)
	}

	e := &scene.Entity{
		Path:       tpl.Path,
		Kind:       scene.KindFromString(tpl.Kind),
		Category:   tpl.Category,
		AssetID:    tpl.Asset,
		Levels:     scene.NewLevelSet(tpl.Levels...),
		Transform:  h,
		Visible:    true,
		TypeConfig: cloneConfig(tpl.Config),
	}
	e.SetHandle(h)
	r.register(e)
	return nil
}

// classify derives a kind for an undeclared node. Structural type is
// checked before name heuristics.
func classify(n Node) scene.Kind {
	switch n.TypeName() {
	case "light":
		return scene.KindLight
	case "control":
		return scene.KindButton
	}

	name := strings.ToLower(n.Name())
	switch {
	case containsAny(name, "button", "switch", "knob"):
		return scene.KindButton
	case containsAny(name, "indicator", "led", "meter", "gauge"):
		return scene.KindIndicator
	case containsAny(name, "light", "lamp"):
		return scene.KindLight
	default:
		return scene.KindObject
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}
