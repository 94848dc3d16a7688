package history

import (
	"fmt"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// Command is an invertible edit operation. Execute re-applies the
// forward effect (used by redo); Undo reverses it. Each command
// carries exactly the fields needed to invert itself.
type Command interface {
	// Execute performs the command's forward effect.
	Execute(r *registry.Registry) error

	// Undo reverses the command.
	Undo(r *registry.Registry) error

	// Description returns a human-readable description of the command.
	Description() string
}

// MoveCommand repositions a single entity.
type MoveCommand struct {
	Path string
	From scene.Point
	To   scene.Point
}

// Execute moves the entity to its new position.
func (c *MoveCommand) Execute(r *registry.Registry) error {
	return setPosition(r, c.Path, c.To)
}

// Undo moves the entity back to its old position.
func (c *MoveCommand) Undo(r *registry.Registry) error {
	return setPosition(r, c.Path, c.From)
}

// Description returns a human-readable description.
func (c *MoveCommand) Description() string {
	return fmt.Sprintf("Move %s", scene.LocalName(c.Path))
}

// MoveEntry is one entity's before/after position inside a MultiMove.
type MoveEntry struct {
	Path string
	From scene.Point
	To   scene.Point
}

// MultiMoveCommand repositions several entities as one undo unit.
// Entries must exclude entities whose ancestor is also in the move
// set: those follow their parent automatically and would otherwise be
// double-counted.
type MultiMoveCommand struct {
	Entries []MoveEntry
}

// Execute moves every entry to its new position.
func (c *MultiMoveCommand) Execute(r *registry.Registry) error {
	for _, e := range c.Entries {
		if err := setPosition(r, e.Path, e.To); err != nil {
			return err
		}
	}
	return nil
}

// Undo moves every entry back, in reverse order.
func (c *MultiMoveCommand) Undo(r *registry.Registry) error {
	for i := len(c.Entries) - 1; i >= 0; i-- {
		e := c.Entries[i]
		if err := setPosition(r, e.Path, e.From); err != nil {
			return err
		}
	}
	return nil
}

// Description returns a human-readable description.
func (c *MultiMoveCommand) Description() string {
	return fmt.Sprintf("Move %d elements", len(c.Entries))
}

// HideCommand hides an entity.
type HideCommand struct {
	Path string
}

// Execute hides the entity.
func (c *HideCommand) Execute(r *registry.Registry) error {
	return r.SetHidden(c.Path, true)
}

// Undo shows the entity again.
func (c *HideCommand) Undo(r *registry.Registry) error {
	return r.SetHidden(c.Path, false)
}

// Description returns a human-readable description.
func (c *HideCommand) Description() string {
	return fmt.Sprintf("Hide %s", scene.LocalName(c.Path))
}

// ShowCommand shows a hidden entity.
type ShowCommand struct {
	Path string
}

// Execute shows the entity.
func (c *ShowCommand) Execute(r *registry.Registry) error {
	return r.SetHidden(c.Path, false)
}

// Undo hides the entity again.
func (c *ShowCommand) Undo(r *registry.Registry) error {
	return r.SetHidden(c.Path, true)
}

// Description returns a human-readable description.
func (c *ShowCommand) Description() string {
	return fmt.Sprintf("Show %s", scene.LocalName(c.Path))
}

// CreateCommand records a duplication. The duplicate itself is made
// by the registry before the command is pushed; Execute re-creates it
// on redo by duplicating the recorded source at the recorded path and
// reapplying the recorded transform.
type CreateCommand struct {
	// Path is the path the copy was created at.
	Path string

	// SourcePath is the original (pre-copy) entity duplicated.
	SourcePath string

	// Geometry is the copy's transform at creation time. Restore
	// places re-duplicates on their source, so redo needs it to put
	// the copy back at its offset position.
	Geometry scene.Transform
}

// NewCreateCommand captures the state needed to redo the duplication
// that produced the copy at path. Call after the registry duplicate.
func NewCreateCommand(r *registry.Registry, path string) (*CreateCommand, error) {
	e := r.Get(path)
	if e == nil {
		return nil, registry.ErrNotFound
	}
	return &CreateCommand{
		Path:       path,
		SourcePath: e.Provenance.SourcePath,
		Geometry:   e.Transform.Clone(),
	}, nil
}

// Execute re-creates the copy at its recorded path and transform.
func (c *CreateCommand) Execute(r *registry.Registry) error {
	if err := r.Restore(c.Path, c.SourcePath); err != nil {
		return err
	}
	e := r.Get(c.Path)
	if e != nil && c.Geometry != nil {
		scene.CopyTransform(e.Transform, c.Geometry)
	}
	return nil
}

// Undo deletes the copy.
func (c *CreateCommand) Undo(r *registry.Registry) error {
	return r.Delete(c.Path)
}

// Description returns a human-readable description.
func (c *CreateCommand) Description() string {
	return fmt.Sprintf("Duplicate %s", scene.LocalName(c.SourcePath))
}

// DeleteCommand records the deletion of a runtime copy, keeping the
// provenance and transform needed to resurrect it. Undo restores only
// the top node's subtree by re-duplicating its recorded source.
type DeleteCommand struct {
	// Path is the deleted copy's path.
	Path string

	// SourcePath is the original the copy was duplicated from.
	SourcePath string

	// Geometry is the copy's transform at deletion time.
	Geometry scene.Transform
}

// NewDeleteCommand captures the state needed to invert deleting the
// copy at path. Call before the registry delete.
func NewDeleteCommand(r *registry.Registry, path string) (*DeleteCommand, error) {
	e := r.Get(path)
	if e == nil {
		return nil, registry.ErrNotFound
	}
	return &DeleteCommand{
		Path:       path,
		SourcePath: e.Provenance.SourcePath,
		Geometry:   e.Transform.Clone(),
	}, nil
}

// Execute deletes the copy.
func (c *DeleteCommand) Execute(r *registry.Registry) error {
	return r.Delete(c.Path)
}

// Undo re-creates the copy and restores its recorded transform.
func (c *DeleteCommand) Undo(r *registry.Registry) error {
	if err := r.Restore(c.Path, c.SourcePath); err != nil {
		return err
	}
	e := r.Get(c.Path)
	if e != nil && c.Geometry != nil {
		scene.CopyTransform(e.Transform, c.Geometry)
	}
	return nil
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	return fmt.Sprintf("Delete %s", scene.LocalName(c.Path))
}

// ZOrderCommand changes an entity's stacking position.
type ZOrderCommand struct {
	Path string
	From scene.ZOrder
	To   scene.ZOrder
}

// Execute applies the new stacking position.
func (c *ZOrderCommand) Execute(r *registry.Registry) error {
	return setZOrder(r, c.Path, c.To)
}

// Undo restores the old stacking position.
func (c *ZOrderCommand) Undo(r *registry.Registry) error {
	return setZOrder(r, c.Path, c.From)
}

// Description returns a human-readable description.
func (c *ZOrderCommand) Description() string {
	return fmt.Sprintf("Reorder %s", scene.LocalName(c.Path))
}

func setPosition(r *registry.Registry, path string, p scene.Point) error {
	e := r.Get(path)
	if e == nil {
		return registry.ErrNotFound
	}
	e.Transform.SetPosition(p)
	return nil
}

func setZOrder(r *registry.Registry, path string, z scene.ZOrder) error {
	e := r.Get(path)
	if e == nil {
		return registry.ErrNotFound
	}
	e.Z = z
	return nil
}
