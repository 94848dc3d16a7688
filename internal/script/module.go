package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stagehand/internal/editor/controller"
	"github.com/dshills/stagehand/internal/editor/selection"
	"github.com/dshills/stagehand/internal/editor/snap"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// stageModule implements the stage.* Lua API.
type stageModule struct {
	ctrl     *controller.Controller
	reg      *registry.Registry
	sel      *selection.Selection
	notifier *event.Notifier
}

// register installs the stage table as a global.
func (m *stageModule) register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "entities", L.NewFunction(m.entities))
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "select", L.NewFunction(m.selectPath))
	L.SetField(mod, "select_add", L.NewFunction(m.selectAdd))
	L.SetField(mod, "select_match", L.NewFunction(m.selectMatch))
	L.SetField(mod, "clear_selection", L.NewFunction(m.clearSelection))
	L.SetField(mod, "selected", L.NewFunction(m.selected))
	L.SetField(mod, "duplicate", L.NewFunction(m.duplicate))
	L.SetField(mod, "delete", L.NewFunction(m.del))
	L.SetField(mod, "hide", L.NewFunction(m.hide))
	L.SetField(mod, "show", L.NewFunction(m.show))
	L.SetField(mod, "lock", L.NewFunction(m.lock))
	L.SetField(mod, "unlock", L.NewFunction(m.unlock))
	L.SetField(mod, "opacity", L.NewFunction(m.opacity))
	L.SetField(mod, "nudge", L.NewFunction(m.nudge))
	L.SetField(mod, "nudge_z", L.NewFunction(m.nudgeZ))
	L.SetField(mod, "align", L.NewFunction(m.align))
	L.SetField(mod, "reset_position", L.NewFunction(m.resetPosition))
	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "save", L.NewFunction(m.save))
	L.SetField(mod, "status", L.NewFunction(m.status))

	L.SetGlobal("stage", mod)
	return nil
}

// entities() -> {paths}
// Returns every registered entity path in sorted order.
func (m *stageModule) entities(L *lua.LState) int {
	tbl := L.NewTable()
	for i, p := range m.reg.Paths() {
		tbl.RawSetInt(i+1, lua.LString(p))
	}
	L.Push(tbl)
	return 1
}

// get(path) -> table | nil
// Returns the entity's position, size and flags.
func (m *stageModule) get(L *lua.LState) int {
	path := L.CheckString(1)
	e := m.reg.Get(path)
	if e == nil {
		L.Push(lua.LNil)
		return 1
	}
	b := e.Bounds()
	tbl := L.NewTable()
	L.SetField(tbl, "path", lua.LString(e.Path))
	L.SetField(tbl, "kind", lua.LString(e.Kind.String()))
	L.SetField(tbl, "x", lua.LNumber(b.X))
	L.SetField(tbl, "y", lua.LNumber(b.Y))
	L.SetField(tbl, "w", lua.LNumber(b.W))
	L.SetField(tbl, "h", lua.LNumber(b.H))
	L.SetField(tbl, "z", lua.LNumber(e.Z.Index))
	L.SetField(tbl, "visible", lua.LBool(e.Visible))
	L.SetField(tbl, "locked", lua.LBool(e.Locked))
	L.SetField(tbl, "is_copy", lua.LBool(e.Provenance.IsCopy))
	L.Push(tbl)
	return 1
}

// select(path) -> bool
// Selects exactly the given entity.
func (m *stageModule) selectPath(L *lua.LState) int {
	path := L.CheckString(1)
	if !m.reg.Has(path) {
		L.Push(lua.LFalse)
		return 1
	}
	m.sel.Click(path)
	m.notifier.Publish(event.Event{Kind: event.KindSelection, Path: path})
	L.Push(lua.LTrue)
	return 1
}

// select_add(path) -> bool
// Adds the entity to the current selection.
func (m *stageModule) selectAdd(L *lua.LState) int {
	path := L.CheckString(1)
	if !m.reg.Has(path) {
		L.Push(lua.LFalse)
		return 1
	}
	m.sel.Add(path)
	m.notifier.Publish(event.Event{Kind: event.KindSelection, Path: path})
	L.Push(lua.LTrue)
	return 1
}

// select_match(substring) -> count
// Adds every entity whose path contains the substring.
func (m *stageModule) selectMatch(L *lua.LState) int {
	sub := L.CheckString(1)
	var matched []string
	for _, p := range m.reg.Paths() {
		if strings.Contains(p, sub) {
			matched = append(matched, p)
		}
	}
	m.sel.Add(matched...)
	if len(matched) > 0 {
		m.notifier.Publish(event.Event{Kind: event.KindSelection})
	}
	L.Push(lua.LNumber(len(matched)))
	return 1
}

// clear_selection() -> nil
func (m *stageModule) clearSelection(L *lua.LState) int {
	m.sel.Clear()
	m.notifier.Publish(event.Event{Kind: event.KindSelection})
	return 0
}

// selected() -> {paths}
func (m *stageModule) selected(L *lua.LState) int {
	tbl := L.NewTable()
	for i, p := range m.sel.Active() {
		tbl.RawSetInt(i+1, lua.LString(p))
	}
	L.Push(tbl)
	return 1
}

// duplicate() -> nil
// Duplicates the selection; the copies become the new selection.
func (m *stageModule) duplicate(L *lua.LState) int {
	m.ctrl.DuplicateSelection()
	return 0
}

// delete() -> nil
func (m *stageModule) del(L *lua.LState) int {
	m.ctrl.DeleteSelection()
	return 0
}

// hide() -> nil
func (m *stageModule) hide(L *lua.LState) int {
	m.ctrl.BulkHide()
	return 0
}

// show() -> nil
func (m *stageModule) show(L *lua.LState) int {
	m.ctrl.BulkShow()
	return 0
}

// lock() -> nil
func (m *stageModule) lock(L *lua.LState) int {
	m.ctrl.BulkLock()
	return 0
}

// unlock() -> nil
func (m *stageModule) unlock(L *lua.LState) int {
	m.ctrl.BulkUnlock()
	return 0
}

// opacity(value) -> nil
// Sets the selection's opacity, clamped to [0, 1].
func (m *stageModule) opacity(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	m.ctrl.BulkOpacity(v)
	return 0
}

// nudge(dx, dy [, large]) -> nil
// Moves the selection by step multiples on each axis.
func (m *stageModule) nudge(L *lua.LState) int {
	dx := float64(L.CheckNumber(1))
	dy := float64(L.CheckNumber(2))
	large := L.OptBool(3, false)
	m.ctrl.Nudge(dx, dy, large)
	return 0
}

// nudge_z(delta) -> nil
func (m *stageModule) nudgeZ(L *lua.LState) int {
	m.ctrl.BulkNudgeZ(L.CheckInt(1))
	return 0
}

// align(mode) -> bool
// Aligns the selection. mode is one of "left", "center_x", "right",
// "top", "center_y", "bottom".
func (m *stageModule) align(L *lua.LState) int {
	mode, ok := alignModes[L.CheckString(1)]
	if !ok {
		L.ArgError(1, "unknown alignment mode")
		return 0
	}
	m.ctrl.AlignSelection(mode)
	L.Push(lua.LTrue)
	return 1
}

var alignModes = map[string]snap.Alignment{
	"left":     snap.AlignLeft,
	"center_x": snap.AlignCenterX,
	"right":    snap.AlignRight,
	"top":      snap.AlignTop,
	"center_y": snap.AlignCenterY,
	"bottom":   snap.AlignBottom,
}

// reset_position() -> nil
func (m *stageModule) resetPosition(L *lua.LState) int {
	m.ctrl.ResetPosition()
	return 0
}

// undo() -> nil
func (m *stageModule) undo(L *lua.LState) int {
	m.ctrl.Undo()
	return 0
}

// redo() -> nil
func (m *stageModule) redo(L *lua.LState) int {
	m.ctrl.Redo()
	return 0
}

// save() -> nil
// Flushes pending changes immediately.
func (m *stageModule) save(L *lua.LState) int {
	m.ctrl.SaveNow()
	return 0
}

// status(message) -> nil
// Shows a transient status message.
func (m *stageModule) status(L *lua.LState) int {
	m.notifier.Status(L.CheckString(1))
	return 0
}
