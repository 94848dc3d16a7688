package controller

import (
	"errors"

	"github.com/dshills/stagehand/internal/editor/history"
	"github.com/dshills/stagehand/internal/editor/snap"
	"github.com/dshills/stagehand/internal/event"
)

// Bulk operations apply uniformly across the selection, skipping
// entities whose ancestor is also selected so no node is touched
// twice through the same parent-child relationship.

// BulkShow shows every selected entity, as undoable shows.
func (c *Controller) BulkShow() {
	c.bulkVisibility(false)
}

// BulkHide hides every selected entity, as undoable hides.
func (c *Controller) BulkHide() {
	c.bulkVisibility(true)
}

func (c *Controller) bulkVisibility(hide bool) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var changed []string
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Visible != hide {
			continue
		}
		var cmd history.Command
		if hide {
			cmd = &history.HideCommand{Path: path}
		} else {
			cmd = &history.ShowCommand{Path: path}
		}
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

// BulkLock locks every selected entity.
func (c *Controller) BulkLock() { c.bulkLock(true) }

// BulkUnlock unlocks every selected entity.
func (c *Controller) BulkUnlock() { c.bulkLock(false) }

func (c *Controller) bulkLock(locked bool) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var changed []string
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Locked == locked {
			continue
		}
		if err := c.reg.SetLocked(path, locked); err != nil {
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	c.markDirty(changed...)
}

// BulkOpacity sets the opacity of every selected entity, clamped to
// [0, 1]. Opacity changes sync but are not undoable.
func (c *Controller) BulkOpacity(v float64) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	var changed []string
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Locked {
			continue
		}
		e.SetConfig("opacity", v)
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	c.markDirty(changed...)
}

// BulkNudgeZ shifts every selected entity's stacking index by delta,
// each as its own undoable command.
func (c *Controller) BulkNudgeZ(delta int) {
	if !c.enabled || c.state != StateIdle || c.sel.IsEmpty() {
		return
	}
	var changed []string
	for _, path := range c.sel.TopLevel() {
		e := c.reg.Get(path)
		if e == nil || e.Locked {
			continue
		}
		from := e.Z
		to := from
		to.Index += delta
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

// BulkDelete deletes every selected runtime copy. Originals survive
// with a notice.
func (c *Controller) BulkDelete() {
	c.DeleteSelection()
}

// AlignSelection repositions the selection so the chosen edge or
// center matches across the group. It needs at least two entities.
func (c *Controller) AlignSelection(mode snap.Alignment) {
	if !c.enabled || c.state != StateIdle {
		return
	}
	paths := c.sel.TopLevel()
	moved, err := snap.Align(c.reg, paths, mode)
	if err != nil {
		if errors.Is(err, snap.ErrNeedTwo) {
			c.notifier.Status("select two or more elements to align")
			return
		}
		c.slog.Warn("align failed", "mode", mode.String(), "error", err)
		c.notifier.Status("align failed")
		return
	}
	if len(moved) == 0 {
		return
	}

	entries := make([]history.MoveEntry, 0, len(moved))
	dirty := make([]string, 0, len(moved))
	for _, m := range moved {
		entries = append(entries, history.MoveEntry{Path: m.Path, From: m.From, To: m.To})
		dirty = append(dirty, m.Path)
	}
	if len(entries) == 1 {
		c.log.Push(&history.MoveCommand{Path: entries[0].Path, From: entries[0].From, To: entries[0].To})
	} else {
		c.log.Push(&history.MultiMoveCommand{Entries: entries})
	}
	c.markDirtySubtrees(dirty)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
}
