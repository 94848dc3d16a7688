package registry

import (
	"fmt"

	"github.com/dshills/stagehand/internal/scene"
)

// copyOffsetStep is the per-suffix visual offset applied to new
// copies so stacked duplicates stay distinguishable.
const copyOffsetStep = 20.0

// Duplicate creates a runtime copy of the entity at path, including
// every descendant, and returns the new top-level path. The copy name
// is the first unused "<base>_copyN" under the same parent; the
// winning N also offsets the copy by (20·N, 20·N) pixels.
func (r *Registry) Duplicate(path string) (string, error) {
	e := r.entries[path]
	if e == nil {
		return "", fmt.Errorf("duplicate %s: %w", path, ErrNotFound)
	}
	if e.AssetID != "" && r.factory.IsSingleton(e.AssetID) {
		return "", fmt.Errorf("duplicate %s: %w", path, ErrSingleton)
	}

	newPath, n := r.nextCopyPath(path)
	offset := scene.Point{X: copyOffsetStep * float64(n), Y: copyOffsetStep * float64(n)}
	if err := r.duplicateSubtree(path, newPath, offset); err != nil {
		return "", err
	}
	return newPath, nil
}

// Restore recreates a previously deleted copy at its exact recorded
// path by re-duplicating its source. Descendants of the source are
// re-registered under the target transitively.
func (r *Registry) Restore(target, source string) error {
	if r.Has(target) {
		return fmt.Errorf("restore %s: %w", target, ErrPathTaken)
	}
	if !r.Has(source) {
		return fmt.Errorf("restore %s from %s: %w", target, source, ErrNotFound)
	}
	return r.duplicateSubtree(source, target, scene.Point{})
}

// nextCopyPath returns the first unused copy path for the entity at
// path, together with the winning suffix number. Paths used earlier
// in the session are skipped even if since deleted.
func (r *Registry) nextCopyPath(path string) (string, int) {
	parent := scene.ParentPath(path)
	base := scene.LocalName(path)
	for n := 1; ; n++ {
		candidate := scene.JoinPath(parent, fmt.Sprintf("%s_copy%d", base, n))
		if _, taken := r.used[candidate]; !taken {
			return candidate, n
		}
	}
}

// duplicateSubtree copies the entity at src and every descendant to
// dst, preserving relative suffixes. Provenance always points at the
// original (pre-copy) source so chained copies trace back to the
// template entity.
func (r *Registry) duplicateSubtree(src, dst string, offset scene.Point) error {
	for _, e := range r.Subtree(src) {
		rel := scene.RelativePath(e.Path, src)
		target := dst
		if rel != "" {
			target = scene.JoinPath(dst, rel)
		}

		source := e.Path
		if e.Provenance.IsCopy {
			source = e.Provenance.SourcePath
		}

		h, err := r.factory.Instantiate(e.AssetID, cloneConfig(e.TypeConfig))
		if err != nil {
			return fmt.Errorf("duplicating %s as %s: %w", e.Path, target, err)
		}
		scene.CopyTransform(h, e.Transform)
		h.SetPosition(e.Transform.Position().Add(offset))

		dup := &scene.Entity{
			Path:       target,
			Kind:       e.Kind,
			Category:   e.Category,
			AssetID:    e.AssetID,
			Levels:     e.Levels,
			Transform:  h,
			Z:          e.Z,
			Visible:    true,
			Provenance: scene.Provenance{IsCopy: true, SourcePath: source},
			TypeConfig: cloneConfig(e.TypeConfig),
		}
		dup.SetHandle(h)
		r.register(dup)
	}
	return nil
}

// Delete removes the copy at path and every entity whose path begins
// with path + "/". Originals are rejected: they can only be hidden.
// Entries, backups and handles for the whole subtree are removed
// before returning.
func (r *Registry) Delete(path string) error {
	e := r.entries[path]
	if e == nil {
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}
	if !e.Provenance.IsCopy {
		return fmt.Errorf("delete %s: %w", path, ErrNotCopy)
	}

	subtree := r.Subtree(path)
	// Children first so handles are destroyed bottom-up.
	for i := len(subtree) - 1; i >= 0; i-- {
		ent := subtree[i]
		if h := ent.Handle(); h != nil {
			h.Destroy()
		}
		delete(r.entries, ent.Path)
		delete(r.backups, ent.Path)
	}
	return nil
}
