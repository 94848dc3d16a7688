package registry

import (
	"sort"

	"github.com/dshills/stagehand/internal/scene"
)

// CopyRecord describes one top-level runtime copy for serialization.
type CopyRecord struct {
	// Path is the copy's own path.
	Path string

	// SourcePath is the original (pre-copy) entity it was made from.
	SourcePath string

	// Kind is the copy's entity kind.
	Kind scene.Kind

	// Category is the copy's grouping label.
	Category string
}

// Registry is the path-keyed table of editable entities.
type Registry struct {
	factory scene.Factory

	// entries holds every live entity by path.
	entries map[string]*scene.Entity

	// backups holds each entity's original transform, captured at
	// resolution or copy creation. Used for reset and factory reset.
	backups map[string]scene.Transform

	// used records every path ever registered this session. Copy
	// numbering skips used paths so identities are never reused.
	used map[string]struct{}
}

// New creates an empty registry. Most callers use Resolve instead.
func New(factory scene.Factory) *Registry {
	return &Registry{
		factory: factory,
		entries: make(map[string]*scene.Entity),
		backups: make(map[string]scene.Transform),
		used:    make(map[string]struct{}),
	}
}

// Factory returns the entity factory the registry instantiates with.
func (r *Registry) Factory() scene.Factory { return r.factory }

// Get returns the entity at path, or nil.
func (r *Registry) Get(path string) *scene.Entity {
	return r.entries[path]
}

// Has reports whether path is registered.
func (r *Registry) Has(path string) bool {
	_, ok := r.entries[path]
	return ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int { return len(r.entries) }

// Paths returns every registered path in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.entries))
	for p := range r.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Each calls fn for every entity in sorted path order.
func (r *Registry) Each(fn func(*scene.Entity)) {
	for _, p := range r.Paths() {
		fn(r.entries[p])
	}
}

// Children returns the immediate children of path in sorted order.
func (r *Registry) Children(path string) []*scene.Entity {
	var out []*scene.Entity
	for _, p := range r.Paths() {
		if scene.ParentPath(p) == path {
			out = append(out, r.entries[p])
		}
	}
	return out
}

// Subtree returns path and all of its descendants in sorted order,
// parents before children. Returns nil when path is not registered.
func (r *Registry) Subtree(path string) []*scene.Entity {
	if !r.Has(path) {
		return nil
	}
	var out []*scene.Entity
	for _, p := range r.Paths() {
		if scene.IsSelfOrDescendant(p, path) {
			out = append(out, r.entries[p])
		}
	}
	return out
}

// register adds an entity, records its path as used and captures its
// transform backup.
func (r *Registry) register(e *scene.Entity) {
	r.entries[e.Path] = e
	r.used[e.Path] = struct{}{}
	if e.Transform != nil {
		r.backups[e.Path] = e.Transform.Clone()
	}
}

// SetHidden shows or hides the entity at path.
func (r *Registry) SetHidden(path string, hidden bool) error {
	e := r.entries[path]
	if e == nil {
		return ErrNotFound
	}
	e.Visible = !hidden
	if h := e.Handle(); h != nil {
		h.SetVisible(!hidden)
	}
	return nil
}

// SetLocked locks or unlocks the entity at path.
func (r *Registry) SetLocked(path string, locked bool) error {
	e := r.entries[path]
	if e == nil {
		return ErrNotFound
	}
	e.Locked = locked
	return nil
}

// SetDisplayName sets or clears the operator-assigned name override.
func (r *Registry) SetDisplayName(path, name string) error {
	e := r.entries[path]
	if e == nil {
		return ErrNotFound
	}
	e.DisplayName = name
	return nil
}

// HiddenPaths returns the sorted paths of all hidden entities.
func (r *Registry) HiddenPaths() []string {
	var out []string
	for _, p := range r.Paths() {
		if !r.entries[p].Visible {
			out = append(out, p)
		}
	}
	return out
}

// LockedPaths returns the sorted paths of all locked entities.
func (r *Registry) LockedPaths() []string {
	var out []string
	for _, p := range r.Paths() {
		if r.entries[p].Locked {
			out = append(out, p)
		}
	}
	return out
}

// DisplayNames returns the map of operator-assigned name overrides.
func (r *Registry) DisplayNames() map[string]string {
	out := make(map[string]string)
	for p, e := range r.entries {
		if e.DisplayName != "" {
			out[p] = e.DisplayName
		}
	}
	return out
}

// Copies returns records for every top-level runtime copy: copies
// whose ancestors are not themselves copies. Descendant copies are
// reconstructed transitively when the top copy is recreated.
func (r *Registry) Copies() []CopyRecord {
	var out []CopyRecord
	for _, p := range r.Paths() {
		e := r.entries[p]
		if !e.Provenance.IsCopy {
			continue
		}
		if r.copyAncestor(p) != "" {
			continue
		}
		out = append(out, CopyRecord{
			Path:       p,
			SourcePath: e.Provenance.SourcePath,
			Kind:       e.Kind,
			Category:   e.Category,
		})
	}
	return out
}

// copyAncestor returns the nearest ancestor path that is itself a
// copy, or "".
func (r *Registry) copyAncestor(path string) string {
	for parent := scene.ParentPath(path); parent != ""; parent = scene.ParentPath(parent) {
		if e := r.entries[parent]; e != nil && e.Provenance.IsCopy {
			return parent
		}
	}
	return ""
}

// Backup returns the recorded original transform for path, or nil.
func (r *Registry) Backup(path string) scene.Transform {
	return r.backups[path]
}

// ResetTransform restores the entity at path to its backed-up
// original transform.
func (r *Registry) ResetTransform(path string) error {
	e := r.entries[path]
	if e == nil {
		return ErrNotFound
	}
	orig := r.backups[path]
	if orig == nil {
		return nil
	}
	scene.CopyTransform(e.Transform, orig)
	return nil
}

// ResetAll restores every entity's original transform and clears
// hidden, locked and display-name state. Runtime copies are destroyed.
// Used paths are retained so copy numbering never reuses an identity.
func (r *Registry) ResetAll() error {
	for _, rec := range r.Copies() {
		if err := r.Delete(rec.Path); err != nil {
			return err
		}
	}
	for _, p := range r.Paths() {
		e := r.entries[p]
		if err := r.ResetTransform(p); err != nil {
			return err
		}
		e.Visible = true
		e.Locked = false
		e.DisplayName = ""
		if h := e.Handle(); h != nil {
			h.SetVisible(true)
		}
	}
	return nil
}
