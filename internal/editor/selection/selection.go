// Package selection tracks the primary and multi-selection state of
// the scene editor.
//
// The invariant maintained throughout: when more than one entity is
// selected, the primary entity is a member of the multi set. Growing
// a multi-selection never silently drops the item the operator
// started from.
package selection

import (
	"sort"

	"github.com/dshills/stagehand/internal/scene"
)

// Selection is the editor's selection state. It is owned by the
// single UI mutator and performs no locking.
type Selection struct {
	primary string
	multi   map[string]struct{}
}

// New creates an empty selection.
func New() *Selection {
	return &Selection{multi: make(map[string]struct{})}
}

// Primary returns the primary selected path, or "".
func (s *Selection) Primary() string { return s.primary }

// Multi returns the multi-selection set in sorted order.
func (s *Selection) Multi() []string {
	out := make([]string, 0, len(s.multi))
	for p := range s.multi {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether path is selected, either as primary or as
// a multi member.
func (s *Selection) Contains(path string) bool {
	if path == s.primary && path != "" {
		return true
	}
	_, ok := s.multi[path]
	return ok
}

// Count returns the number of selected entities.
func (s *Selection) Count() int {
	if len(s.multi) > 0 {
		return len(s.multi)
	}
	if s.primary != "" {
		return 1
	}
	return 0
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return s.Count() == 0 }

// Active returns every selected path in sorted order: the multi set
// when present, else the primary alone.
func (s *Selection) Active() []string {
	if len(s.multi) > 0 {
		return s.Multi()
	}
	if s.primary != "" {
		return []string{s.primary}
	}
	return nil
}

// Click selects path exclusively: it becomes primary and the multi
// set is cleared.
func (s *Selection) Click(path string) {
	s.primary = path
	s.multi = make(map[string]struct{})
}

// ShiftClick toggles path's membership in the multi set. When path is
// new to the set, the previous primary (if any) is folded in first so
// a growing multi-selection keeps the item the operator started from.
func (s *Selection) ShiftClick(path string) {
	if _, ok := s.multi[path]; ok {
		delete(s.multi, path)
		if s.primary == path {
			s.primary = ""
			if rest := s.Multi(); len(rest) > 0 {
				s.primary = rest[0]
			}
		}
		return
	}

	if len(s.multi) == 0 && s.primary != "" && s.primary != path {
		s.multi[s.primary] = struct{}{}
	}
	s.multi[path] = struct{}{}
	s.primary = path
}

// Add folds paths into the multi set without clearing the current
// selection. Used by marquee selection, which is additive.
func (s *Selection) Add(paths ...string) {
	if len(paths) == 0 {
		return
	}
	if s.primary != "" {
		s.multi[s.primary] = struct{}{}
	}
	for _, p := range paths {
		s.multi[p] = struct{}{}
	}
	if s.primary == "" {
		s.primary = s.Multi()[0]
	}
}

// Remove drops a path from the selection, keeping the invariant.
func (s *Selection) Remove(path string) {
	delete(s.multi, path)
	if s.primary == path {
		s.primary = ""
		if rest := s.Multi(); len(rest) > 0 {
			s.primary = rest[0]
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.primary = ""
	s.multi = make(map[string]struct{})
}

// TopLevel returns the selected paths whose ancestors are not also
// selected. Bulk operations iterate these so a node is never moved or
// deleted twice through the same parent-child relationship.
func (s *Selection) TopLevel() []string {
	active := s.Active()
	out := make([]string, 0, len(active))
	for _, p := range active {
		nested := false
		for _, other := range active {
			if other != p && scene.IsDescendant(p, other) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, p)
		}
	}
	return out
}
