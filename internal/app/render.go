package app

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/stagehand/internal/editor/snap"
	"github.com/dshills/stagehand/internal/scene"
)

var (
	styleDefault  = tcell.StyleDefault
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLocked   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGuide    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleMarquee  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// render projects entity bounds onto character cells. One scene pixel
// maps to one cell; the camera offset pans the projection.
func (a *App) render() {
	a.screen.Clear()
	w, h := a.screen.Size()
	cam := a.ctrl.Camera()
	tier := a.ctrl.Tier()

	a.reg.Each(func(e *scene.Entity) {
		if !e.Visible || !e.Levels.VisibleAt(tier) {
			return
		}
		a.drawEntity(e, cam, w, h)
	})

	for _, g := range a.ctrl.Guides() {
		a.drawGuide(g, cam, w, h)
	}
	if rect, ok := a.ctrl.MarqueeRect(); ok {
		a.drawBox(offsetRect(rect, cam), styleMarquee, w, h)
	}

	a.drawStatus(w, h)
	a.screen.Show()
}

func (a *App) drawEntity(e *scene.Entity, cam scene.Point, w, h int) {
	style := a.entityStyle(e)
	r := offsetRect(e.Bounds(), cam)
	a.drawBox(r, style, w, h)

	// Label inside the top edge, clipped to the box width.
	name := e.Name()
	x0 := int(r.X) + 1
	y0 := int(r.Y)
	maxLen := int(r.W) - 2
	if maxLen < 0 {
		maxLen = 0
	}
	for i, ch := range name {
		if i >= maxLen {
			break
		}
		putCell(a.screen, x0+i, y0, ch, style, w, h)
	}
}

// entityStyle picks the box style: selection beats lock, and a
// configured fill color tints unselected entities.
func (a *App) entityStyle(e *scene.Entity) tcell.Style {
	if a.sel.Contains(e.Path) {
		return styleSelected
	}
	if e.Locked {
		return styleLocked
	}
	if hex, ok := e.Config("fill_color").(string); ok {
		if c, err := colorful.Hex(hex); err == nil {
			r, g, b := c.RGB255()
			return styleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		}
	}
	return styleDefault
}

func (a *App) drawBox(r scene.Rect, style tcell.Style, w, h int) {
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := int(r.X+r.W)-1, int(r.Y+r.H)-1
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	for x := x0; x <= x1; x++ {
		putCell(a.screen, x, y0, tcell.RuneHLine, style, w, h)
		putCell(a.screen, x, y1, tcell.RuneHLine, style, w, h)
	}
	for y := y0; y <= y1; y++ {
		putCell(a.screen, x0, y, tcell.RuneVLine, style, w, h)
		putCell(a.screen, x1, y, tcell.RuneVLine, style, w, h)
	}
	putCell(a.screen, x0, y0, tcell.RuneULCorner, style, w, h)
	putCell(a.screen, x1, y0, tcell.RuneURCorner, style, w, h)
	putCell(a.screen, x0, y1, tcell.RuneLLCorner, style, w, h)
	putCell(a.screen, x1, y1, tcell.RuneLRCorner, style, w, h)
}

func (a *App) drawGuide(g snap.Guide, cam scene.Point, w, h int) {
	if g.Axis == snap.AxisVertical {
		x := int(g.Position + cam.X)
		for y := int(g.SpanStart + cam.Y); y <= int(g.SpanEnd+cam.Y); y++ {
			putCell(a.screen, x, y, tcell.RuneVLine, styleGuide, w, h)
		}
		return
	}
	y := int(g.Position + cam.Y)
	for x := int(g.SpanStart + cam.X); x <= int(g.SpanEnd+cam.X); x++ {
		putCell(a.screen, x, y, tcell.RuneHLine, styleGuide, w, h)
	}
}

// drawStatus renders the bottom status line: mode, selection count,
// tier, sync state and the latest transient message.
func (a *App) drawStatus(w, h int) {
	mode := "view"
	if a.ctrl.Enabled() {
		mode = "edit"
	}
	conn := "offline"
	if a.sync.Connected() {
		conn = "online"
	}
	line := fmt.Sprintf(" %s | sel %d | tier %d | %s | %s",
		mode, a.sel.Count(), a.ctrl.Tier(), conn, a.status)

	y := h - 1
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(line) {
			ch = rune(line[x])
		}
		a.screen.SetContent(x, y, ch, nil, styleStatus)
	}
}

func putCell(s tcell.Screen, x, y int, ch rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	s.SetContent(x, y, ch, nil, style)
}

func offsetRect(r scene.Rect, cam scene.Point) scene.Rect {
	return scene.Rect{X: r.X + cam.X, Y: r.Y + cam.Y, W: r.W, H: r.H}
}
