package controller

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/stagehand/internal/editor/history"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// Undo reverses the most recent command and marks the affected
// entities dirty again.
func (c *Controller) Undo() {
	if !c.enabled || c.state != StateIdle {
		return
	}
	desc, ok := c.log.PeekUndo()
	if !ok {
		c.notifier.Status("nothing to undo")
		return
	}
	cmd, err := c.log.Undo(c.reg)
	if err != nil {
		c.slog.Warn("undo failed", "command", desc, "error", err)
		c.notifier.Status("undo failed: " + desc)
		return
	}
	c.markDirtySubtrees(affectedPaths(cmd))
	c.notifier.Status("undid: " + desc)
}

// Redo re-applies the most recently undone command.
func (c *Controller) Redo() {
	if !c.enabled || c.state != StateIdle {
		return
	}
	desc, ok := c.log.PeekRedo()
	if !ok {
		c.notifier.Status("nothing to redo")
		return
	}
	cmd, err := c.log.Redo(c.reg)
	if err != nil {
		c.slog.Warn("redo failed", "command", desc, "error", err)
		c.notifier.Status("redo failed: " + desc)
		return
	}
	c.markDirtySubtrees(affectedPaths(cmd))
	c.notifier.Status("redid: " + desc)
}

// affectedPaths lists the entity paths a command touched, so undo and
// redo re-dirty the right subtrees.
func affectedPaths(cmd history.Command) []string {
	switch v := cmd.(type) {
	case *history.MoveCommand:
		return []string{v.Path}
	case *history.MultiMoveCommand:
		paths := make([]string, 0, len(v.Entries))
		for _, e := range v.Entries {
			paths = append(paths, e.Path)
		}
		return paths
	case *history.HideCommand:
		return []string{v.Path}
	case *history.ShowCommand:
		return []string{v.Path}
	case *history.CreateCommand:
		return []string{v.Path}
	case *history.DeleteCommand:
		return []string{v.Path}
	case *history.ZOrderCommand:
		return []string{v.Path}
	default:
		return nil
	}
}

// DuplicateSelection duplicates every selected top-level entity and
// selects the copies.
func (c *Controller) DuplicateSelection() {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var created []string
	for _, path := range c.sel.TopLevel() {
		newPath, err := c.reg.Duplicate(path)
		if err != nil {
			if errors.Is(err, registry.ErrSingleton) {
				c.notifier.Status(scene.LocalName(path) + " cannot be duplicated")
				continue
			}
			c.slog.Warn("duplicate failed", "path", path, "error", err)
			c.notifier.Status("duplicate failed: " + scene.LocalName(path))
			continue
		}
		if cmd, err := history.NewCreateCommand(c.reg, newPath); err == nil {
			c.log.Push(cmd)
		}
		created = append(created, newPath)
	}
	if len(created) == 0 {
		return
	}
	c.sel.Clear()
	c.sel.Add(created...)
	c.markDirtySubtrees(created)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
}

// DeleteSelection deletes the selected runtime copies. Originals are
// skipped with a notice; they can only be hidden.
func (c *Controller) DeleteSelection() {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var deleted []string
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil {
			continue
		}
		if !e.Provenance.IsCopy {
			c.notifier.Status(scene.LocalName(path) + " is an original; hide it instead")
			continue
		}
		cmd, err := history.NewDeleteCommand(c.reg, path)
		if err != nil {
			c.slog.Warn("delete capture failed", "path", path, "error", err)
			continue
		}
		if err := c.reg.Delete(path); err != nil {
			c.slog.Warn("delete failed", "path", path, "error", err)
			c.notifier.Status("delete failed: " + scene.LocalName(path))
			continue
		}
		c.log.Push(cmd)
		deleted = append(deleted, path)
	}
	if len(deleted) == 0 {
		return
	}
	for _, p := range deleted {
		c.sel.Remove(p)
	}
	c.markDirty(deleted...)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
}

// HideSelection hides every selected entity as one batch of undoable
// hides.
func (c *Controller) HideSelection() {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var hidden []string
	for _, path := range c.sel.Active() {
		e := c.reg.Get(path)
		if e == nil || !e.Visible {
			continue
		}
		cmd := &history.HideCommand{Path: path}
		if err := cmd.Execute(c.reg); err != nil {
			c.slog.Warn("hide failed", "path", path, "error", err)
			continue
		}
		c.log.Push(cmd)
		hidden = append(hidden, path)
	}
	if len(hidden) == 0 {
		return
	}
	c.sel.Clear()
	c.markDirty(hidden...)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
}

// ResetPosition moves every selected entity back to its backed-up
// original position, as one undo unit.
func (c *Controller) ResetPosition() {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var entries []history.MoveEntry
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Locked {
			continue
		}
		backup := c.reg.Backup(path)
		if backup == nil {
			continue
		}
		from := e.Transform.Position()
		to := backup.Position()
		if from == to {
			continue
		}
		e.Transform.SetPosition(to)
		entries = append(entries, history.MoveEntry{Path: path, From: from, To: to})
	}
	if len(entries) == 0 {
		return
	}
	if len(entries) == 1 {
		c.log.Push(&history.MoveCommand{Path: entries[0].Path, From: entries[0].From, To: entries[0].To})
	} else {
		c.log.Push(&history.MultiMoveCommand{Entries: entries})
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	c.markDirtySubtrees(paths)
	c.notifier.Status("position reset")
}

// Nudge moves the selection by one step on each axis. large applies
// the shift multiplier.
func (c *Controller) Nudge(dx, dy float64, large bool) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	step := c.nudgeStep
	if large {
		step = c.nudgeStepLarge
	}
	delta := scene.Point{X: dx * step, Y: dy * step}

	var entries []history.MoveEntry
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Locked {
			continue
		}
		from := e.Transform.Position()
		to := from.Add(delta)
		e.Transform.SetPosition(to)
		entries = append(entries, history.MoveEntry{Path: path, From: from, To: to})
	}
	if len(entries) == 0 {
		return
	}
	if len(entries) == 1 {
		c.log.Push(&history.MoveCommand{Path: entries[0].Path, From: entries[0].From, To: entries[0].To})
	} else {
		c.log.Push(&history.MultiMoveCommand{Entries: entries})
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	c.markDirtySubtrees(paths)
}

// ZOrderStep shifts each selected entity's stacking index by delta.
// jump sends the entity all the way to the front or back instead.
func (c *Controller) ZOrderStep(delta int, jump bool) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var changed []string
	for _, path := range c.sel.Active() {
		e := c.reg.Get(path)
		if e == nil || e.Locked {
			continue
		}
		from := e.Z
		to := from
		if jump {
			if delta > 0 {
				to.Index = c.maxZ() + 1
			} else {
				to.Index = c.minZ() - 1
			}
		} else {
			to.Index += delta
		}
		if to == from {
			continue
		}
		cmd := &history.ZOrderCommand{Path: path, From: from, To: to}
		if err := cmd.Execute(c.reg); err != nil {
			continue
		}
		c.log.Push(cmd)
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	c.markDirty(changed...)
}

func (c *Controller) maxZ() int {
	max := 0
	first := true
	c.reg.Each(func(e *scene.Entity) {
		if first || e.Z.Index > max {
			max = e.Z.Index
			first = false
		}
	})
	return max
}

func (c *Controller) minZ() int {
	min := 0
	first := true
	c.reg.Each(func(e *scene.Entity) {
		if first || e.Z.Index < min {
			min = e.Z.Index
			first = false
		}
	})
	return min
}

// ToggleSnap flips drag snapping.
func (c *Controller) ToggleSnap() {
	c.snapEnabled = !c.snapEnabled
	c.notifier.Status(onOff("snap", c.snapEnabled))
}

// ToggleGrid flips grid snapping in the snap engine.
func (c *Controller) ToggleGrid() {
	c.snap.GridEnabled = !c.snap.GridEnabled
	c.notifier.Status(onOff("grid", c.snap.GridEnabled))
}

// ToggleGuides flips snap guide rendering.
func (c *Controller) ToggleGuides() {
	c.guidesEnabled = !c.guidesEnabled
	if !c.guidesEnabled {
		c.setGuides(nil)
	}
	c.notifier.Status(onOff("guides", c.guidesEnabled))
}

// ToggleLock flips the lock flag on every selected entity. Lock
// changes sync but are not undoable.
func (c *Controller) ToggleLock() {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var changed []string
	for _, path := range c.sel.Active() {
		e := c.reg.Get(path)
		if e == nil {
			continue
		}
		if err := c.reg.SetLocked(path, !e.Locked); err != nil {
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	c.markDirty(changed...)
}

// CycleTier advances the visibility filter through the tiers present
// in the scene, returning to "show all" (tier 0) after the last.
func (c *Controller) CycleTier() {
	if !c.enabled {
		return
	}
	tiers := c.sceneTiers()
	if len(tiers) == 0 {
		c.tier = 0
		return
	}
	next := 0
	for _, t := range tiers {
		if t > c.tier {
			next = t
			break
		}
	}
	c.tier = next
	if c.tier == 0 {
		c.notifier.Status("showing all tiers")
	} else {
		c.notifier.Status(fmt.Sprintf("showing tier %d", c.tier))
	}
	c.notifier.Publish(event.Event{Kind: event.KindEntity})
}

// sceneTiers returns the sorted union of every entity's visibility
// tiers.
func (c *Controller) sceneTiers() []int {
	seen := make(map[int]bool)
	c.reg.Each(func(e *scene.Entity) {
		for _, t := range e.Levels.Levels() {
			seen[t] = true
		}
	})
	tiers := make([]int, 0, len(seen))
	for t := range seen {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	return tiers
}

// SaveNow flushes pending changes immediately, bypassing the
// debounce.
func (c *Controller) SaveNow() {
	if c.sync != nil {
		c.sync.Flush()
	}
	c.notifier.Status("saving")
}

// FactoryReset restores every entity's original transform and clears
// the session-scoped command log and selection.
func (c *Controller) FactoryReset() {
	if !c.enabled || c.state != StateIdle {
		return
	}
	if err := c.reg.ResetAll(); err != nil {
		c.slog.Warn("factory reset failed", "error", err)
		c.notifier.Status("factory reset failed")
		return
	}
	c.log.Clear()
	c.sel.Clear()
	c.markDirty(c.reg.Paths()...)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
	c.notifier.Status("factory reset")
}

func onOff(name string, on bool) string {
	if on {
		return name + " on"
	}
	return name + " off"
}
