package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stagehand/internal/editor/controller"
	"github.com/dshills/stagehand/internal/scene"
)

// handleEvent translates one tcell event into controller calls.
// Returning ErrQuit ends the run loop.
func (a *App) handleEvent(ev tcell.Event) error {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.dirtyFrame = true
	case *tcell.EventMouse:
		a.handleMouse(e)
	case *tcell.EventKey:
		return a.handleKey(e)
	}
	return nil
}

func (a *App) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	p := scene.Point{X: float64(x), Y: float64(y)}
	mods := controller.Modifiers{
		Shift:   e.Modifiers()&tcell.ModShift != 0,
		Marquee: e.Modifiers()&tcell.ModAlt != 0,
	}

	buttons := e.Buttons() &^ tcell.WheelUp &^ tcell.WheelDown
	pressed := buttons &^ a.buttons
	released := a.buttons &^ buttons
	a.buttons = buttons

	switch {
	case pressed&tcell.Button1 != 0:
		a.ctrl.PointerDown(p, controller.ButtonLeft, mods)
	case pressed&tcell.Button2 != 0:
		a.ctrl.PointerDown(p, controller.ButtonMiddle, mods)
	case pressed&tcell.Button3 != 0:
		a.ctrl.PointerDown(p, controller.ButtonRight, mods)
	case released != 0:
		a.ctrl.PointerUp(p)
	default:
		a.ctrl.PointerMove(p)
	}
	a.dirtyFrame = true
}

func (a *App) handleKey(e *tcell.EventKey) error {
	shift := e.Modifiers()&tcell.ModShift != 0

	switch e.Key() {
	case tcell.KeyCtrlC:
		return ErrQuit
	case tcell.KeyCtrlZ:
		a.ctrl.Undo()
		return nil
	case tcell.KeyCtrlY:
		a.ctrl.Redo()
		return nil
	case tcell.KeyCtrlS:
		a.ctrl.SaveNow()
		return nil
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.ctrl.DeleteSelection()
		return nil
	case tcell.KeyEscape:
		a.sel.Clear()
		a.dirtyFrame = true
		return nil
	case tcell.KeyTab:
		a.ctrl.CycleTier()
		return nil
	case tcell.KeyUp:
		a.ctrl.Nudge(0, -1, shift)
		return nil
	case tcell.KeyDown:
		a.ctrl.Nudge(0, 1, shift)
		return nil
	case tcell.KeyLeft:
		a.ctrl.Nudge(-1, 0, shift)
		return nil
	case tcell.KeyRight:
		a.ctrl.Nudge(1, 0, shift)
		return nil
	}

	if e.Key() != tcell.KeyRune {
		return nil
	}
	switch e.Rune() {
	case 'q':
		return ErrQuit
	case 'e':
		a.ctrl.SetEnabled(!a.ctrl.Enabled())
	case 'u':
		a.ctrl.Undo()
	case 'U':
		a.ctrl.Redo()
	case 'd':
		a.ctrl.DuplicateSelection()
	case 'h':
		a.ctrl.HideSelection()
	case 'r':
		a.ctrl.ResetPosition()
	case 'R':
		a.ctrl.FactoryReset()
	case '[':
		a.ctrl.ZOrderStep(-1, false)
	case ']':
		a.ctrl.ZOrderStep(1, false)
	case '{':
		a.ctrl.ZOrderStep(-1, true)
	case '}':
		a.ctrl.ZOrderStep(1, true)
	case 's':
		a.ctrl.ToggleSnap()
	case 'g':
		a.ctrl.ToggleGrid()
	case 'v':
		a.ctrl.ToggleGuides()
	case 'l':
		a.ctrl.ToggleLock()
	}
	return nil
}
