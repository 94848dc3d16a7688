// Package controller is the editor's input state machine. Pointer and
// keyboard events come in; registry mutations, history records,
// selection changes and dirty marks go out. Everything runs on the
// single UI mutator: events are processed synchronously and a drag in
// progress suppresses hover recomputation.
package controller

import (
	"log/slog"
	"sort"

	"github.com/dshills/stagehand/internal/editor/history"
	"github.com/dshills/stagehand/internal/editor/selection"
	"github.com/dshills/stagehand/internal/editor/snap"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// resizeHandleRadius is the pick distance for the primary's resize
// handle, in scene pixels.
const resizeHandleRadius = 6.0

// minEntitySize is the smallest edge a resize can produce.
const minEntitySize = 1.0

// Syncer receives dirty marks from editor mutations. Implemented by
// the sync client.
type Syncer interface {
	MarkDirty(paths ...string)
	Flush()
}

// Saver receives dirty marks for the local autosave file.
type Saver interface {
	MarkDirty()
}

// Options wires a Controller. Sync and Store are optional.
type Options struct {
	Registry  *registry.Registry
	History   *history.Log
	Selection *selection.Selection
	Snap      *snap.Engine
	Notifier  *event.Notifier
	Sync      Syncer
	Store     Saver
	Logger    *slog.Logger

	// NudgeStep is the arrow-key move distance; NudgeStepLarge the
	// shift-arrow distance.
	NudgeStep      float64
	NudgeStepLarge float64

	// GuidesEnabled draws snap guides during drags.
	GuidesEnabled bool
}

// Controller drives the registry, history, selection, snap engine and
// sync client from input events.
type Controller struct {
	reg      *registry.Registry
	log      *history.Log
	sel      *selection.Selection
	snap     *snap.Engine
	notifier *event.Notifier
	sync     Syncer
	store    Saver
	slog     *slog.Logger

	nudgeStep      float64
	nudgeStepLarge float64

	enabled       bool
	snapEnabled   bool
	guidesEnabled bool

	state   State
	drag    dragTracker
	camera  scene.Point
	tier    int
	hovered string
	guides  []snap.Guide
}

// New creates a controller in the disabled, idle state.
func New(opts Options) *Controller {
	if opts.NudgeStep <= 0 {
		opts.NudgeStep = 1
	}
	if opts.NudgeStepLarge <= 0 {
		opts.NudgeStepLarge = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		reg:            opts.Registry,
		log:            opts.History,
		sel:            opts.Selection,
		snap:           opts.Snap,
		notifier:       opts.Notifier,
		sync:           opts.Sync,
		store:          opts.Store,
		slog:           opts.Logger,
		nudgeStep:      opts.NudgeStep,
		nudgeStepLarge: opts.NudgeStepLarge,
		snapEnabled:    true,
		guidesEnabled:  opts.GuidesEnabled,
	}
}

// Enabled reports whether edit mode is on.
func (c *Controller) Enabled() bool { return c.enabled }

// SetEnabled toggles edit mode. Disabling cancels any in-progress
// pointer operation and clears the selection.
func (c *Controller) SetEnabled(on bool) {
	if c.enabled == on {
		return
	}
	c.enabled = on
	if !on {
		c.drag.reset()
		c.state = StateIdle
		c.sel.Clear()
		c.setGuides(nil)
		c.notifier.Publish(event.Event{Kind: event.KindSelection})
	}
	if on {
		c.notifier.Status("edit mode on")
	} else {
		c.notifier.Status("edit mode off")
	}
}

// State returns the current input state.
func (c *Controller) State() State { return c.state }

// Tier returns the active visibility tier (0 shows everything).
func (c *Controller) Tier() int { return c.tier }

// Camera returns the viewport offset.
func (c *Controller) Camera() scene.Point { return c.camera }

// Hovered returns the entity under the pointer while idle.
func (c *Controller) Hovered() string { return c.hovered }

// Guides returns the transient snap guides of the current drag.
func (c *Controller) Guides() []snap.Guide { return c.guides }

// MarqueeRect returns the active marquee rectangle in scene
// coordinates, and whether one is being drawn.
func (c *Controller) MarqueeRect() (scene.Rect, bool) {
	if c.state != StateMarquee {
		return scene.Rect{}, false
	}
	return c.rectBetween(c.drag.start, c.drag.current), true
}

// PointerDown starts a pointer operation. Events while another
// operation is in progress are dropped: input is not reentrant.
func (c *Controller) PointerDown(p scene.Point, b Button, mods Modifiers) {
	if !c.enabled || c.state != StateIdle {
		return
	}
	c.drag.reset()
	c.drag.button = b
	c.drag.start = p
	c.drag.current = p

	if b == ButtonMiddle {
		c.state = StatePanning
		return
	}
	if b != ButtonLeft {
		return
	}

	sp := c.toScene(p)

	if mods.Marquee {
		c.state = StateMarquee
		return
	}

	if primary := c.sel.Primary(); primary != "" && c.onResizeHandle(primary, sp) {
		c.beginResize(primary)
		return
	}

	hit := c.hitTest(sp)
	if hit == "" {
		c.state = StateMarquee
		return
	}

	if mods.Shift {
		c.sel.ShiftClick(hit)
		c.notifier.Publish(event.Event{Kind: event.KindSelection, Path: hit})
		return
	}

	if !c.sel.Contains(hit) {
		c.sel.Click(hit)
		c.notifier.Publish(event.Event{Kind: event.KindSelection, Path: hit})
	}
	c.beginDrag(hit)
}

// PointerMove advances the operation in progress, or recomputes hover
// while idle.
func (c *Controller) PointerMove(p scene.Point) {
	if !c.enabled {
		return
	}
	switch c.state {
	case StateIdle:
		c.hovered = c.hitTest(c.toScene(p))
	case StatePanning:
		c.camera = c.camera.Add(p.Sub(c.drag.current))
		c.drag.current = p
	case StateMarquee:
		c.drag.current = p
	case StateDragging:
		c.drag.current = p
		c.moveDrag(p)
	case StateResizing:
		c.drag.current = p
		c.resizeDrag(p)
	}
}

// PointerUp completes the operation in progress.
func (c *Controller) PointerUp(p scene.Point) {
	if !c.enabled {
		return
	}
	switch c.state {
	case StateMarquee:
		c.finishMarquee(p)
	case StateDragging:
		c.finishDrag()
	case StateResizing:
		c.finishResize()
	}
	c.drag.reset()
	c.state = StateIdle
	c.setGuides(nil)
}

// beginDrag records the pointer-down position of every dragged
// top-level entity. Locked entities select but never move.
func (c *Controller) beginDrag(hit string) {
	e := c.reg.Get(hit)
	if e == nil || e.Locked {
		return
	}

	origins := make(map[string]scene.Point)
	for _, path := range c.sel.TopLevel() {
		ent := c.reg.Get(path)
		if ent == nil || ent.Locked {
			continue
		}
		origins[path] = ent.Transform.Position()
	}
	if len(origins) == 0 {
		return
	}

	c.state = StateDragging
	c.drag.anchor = hit
	c.drag.anchorOrigin = e.Transform.Position()
	c.drag.origins = origins
}

// moveDrag applies the drag delta to every dragged entity, snapping
// the anchor and shifting the rest by the same adjusted delta.
func (c *Controller) moveDrag(p scene.Point) {
	delta := c.toScene(p).Sub(c.toScene(c.drag.start))
	anchor := c.reg.Get(c.drag.anchor)
	if anchor == nil {
		return
	}

	candidate := c.drag.anchorOrigin.Add(delta)
	adjusted := candidate
	var guides []snap.Guide
	if c.snapEnabled {
		b := anchor.Bounds()
		box := scene.Rect{X: c.drag.anchorOrigin.X, Y: c.drag.anchorOrigin.Y, W: b.W, H: b.H}
		adjusted, guides = c.snap.Adjust(box, candidate, c.snapTargets())
	}

	snapped := adjusted.Sub(c.drag.anchorOrigin)
	for path, origin := range c.drag.origins {
		if e := c.reg.Get(path); e != nil {
			e.Transform.SetPosition(origin.Add(snapped))
		}
	}
	c.drag.moved = true
	c.setGuides(guides)
	c.notifier.Publish(event.Event{Kind: event.KindEntity})
}

// snapTargets returns the bounds of every visible entity not taking
// part in the drag.
func (c *Controller) snapTargets() []scene.Rect {
	var out []scene.Rect
	c.reg.Each(func(e *scene.Entity) {
		if !e.Visible || !e.Levels.VisibleAt(c.tier) {
			return
		}
		if c.inDragSet(e.Path) {
			return
		}
		out = append(out, e.Bounds())
	})
	return out
}

// inDragSet reports whether path moves with the current drag, either
// directly or under a dragged ancestor.
func (c *Controller) inDragSet(path string) bool {
	for dragged := range c.drag.origins {
		if scene.IsSelfOrDescendant(path, dragged) {
			return true
		}
	}
	return false
}

// finishDrag records the completed move as one undo unit.
func (c *Controller) finishDrag() {
	if !c.drag.moved {
		return
	}

	entries := make([]history.MoveEntry, 0, len(c.drag.origins))
	for _, path := range sortedKeys(c.drag.origins) {
		e := c.reg.Get(path)
		if e == nil {
			continue
		}
		from := c.drag.origins[path]
		to := e.Transform.Position()
		if from == to {
			continue
		}
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

func (c *Controller) beginResize(primary string) {
	e := c.reg.Get(primary)
	if e == nil || e.Locked {
		return
	}
	c.state = StateResizing
	c.drag.anchor = primary
	c.drag.startBounds = e.Bounds()
}

// resizeDrag grows the primary's bounds from its top-left corner.
// Resizes sync but are not recorded as undoable commands.
func (c *Controller) resizeDrag(p scene.Point) {
	e := c.reg.Get(c.drag.anchor)
	if e == nil {
		return
	}
	delta := c.toScene(p).Sub(c.toScene(c.drag.start))
	b := c.drag.startBounds
	w := b.W + delta.X
	h := b.H + delta.Y
	if w < minEntitySize {
		w = minEntitySize
	}
	if h < minEntitySize {
		h = minEntitySize
	}
	e.Transform.SetBounds(scene.Rect{X: b.X, Y: b.Y, W: w, H: h})
	c.drag.moved = true
	c.notifier.Publish(event.Event{Kind: event.KindEntity})
}

func (c *Controller) finishResize() {
	if !c.drag.moved {
		return
	}
	c.markDirtySubtrees([]string{c.drag.anchor})
}

// finishMarquee folds every intersecting entity into the selection.
func (c *Controller) finishMarquee(p scene.Point) {
	rect := c.rectBetween(c.drag.start, p)
	var hits []string
	c.reg.Each(func(e *scene.Entity) {
		if !e.Visible || !e.Levels.VisibleAt(c.tier) {
			return
		}
		if e.Bounds().Intersects(rect) {
			hits = append(hits, e.Path)
		}
	})
	sort.Strings(hits)
	c.sel.Add(hits...)
	c.notifier.Publish(event.Event{Kind: event.KindSelection})
}

// onResizeHandle reports whether sp grabs the primary's bottom-right
// resize handle.
func (c *Controller) onResizeHandle(primary string, sp scene.Point) bool {
	e := c.reg.Get(primary)
	if e == nil || e.Locked || !e.Visible {
		return false
	}
	b := e.Bounds()
	dx := sp.X - b.Right()
	dy := sp.Y - b.Bottom()
	return dx*dx+dy*dy <= resizeHandleRadius*resizeHandleRadius
}

// hitTest returns the topmost visible entity containing sp, or "".
// Higher z-index wins; ties go to the deeper path so children sit
// above their parents.
func (c *Controller) hitTest(sp scene.Point) string {
	var best *scene.Entity
	c.reg.Each(func(e *scene.Entity) {
		if !e.Visible || !e.Levels.VisibleAt(c.tier) {
			return
		}
		if !e.Bounds().Contains(sp) {
			return
		}
		if best == nil || zAbove(e, best) {
			best = e
		}
	})
	if best == nil {
		return ""
	}
	return best.Path
}

func zAbove(a, b *scene.Entity) bool {
	if a.Z.Index != b.Z.Index {
		return a.Z.Index > b.Z.Index
	}
	return scene.Depth(a.Path) > scene.Depth(b.Path)
}

// toScene converts a screen point to scene coordinates.
func (c *Controller) toScene(p scene.Point) scene.Point {
	return p.Sub(c.camera)
}

func (c *Controller) rectBetween(a, b scene.Point) scene.Rect {
	sa := c.toScene(a)
	sb := c.toScene(b)
	return scene.Rect{X: sa.X, Y: sa.Y, W: sb.X - sa.X, H: sb.Y - sa.Y}.Normalized()
}

func (c *Controller) setGuides(g []snap.Guide) {
	if !c.guidesEnabled {
		g = nil
	}
	if len(g) == 0 && len(c.guides) == 0 {
		return
	}
	c.guides = g
	c.notifier.Publish(event.Event{Kind: event.KindGuides})
}

// markDirtySubtrees marks every path and its descendants dirty: a
// moved parent carries its children in the live scene, so their
// serialized positions change too.
func (c *Controller) markDirtySubtrees(paths []string) {
	var all []string
	for _, p := range paths {
		for _, e := range c.reg.Subtree(p) {
			all = append(all, e.Path)
		}
	}
	c.markDirty(all...)
}

// markDirty feeds the sync client and autosave store.
func (c *Controller) markDirty(paths ...string) {
	if c.sync != nil {
		c.sync.MarkDirty(paths...)
	}
	if c.store != nil {
		c.store.MarkDirty()
	}
	c.notifier.Publish(event.Event{Kind: event.KindEntity})
}

func sortedKeys(m map[string]scene.Point) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
