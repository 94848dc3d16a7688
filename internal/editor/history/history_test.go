package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
	"github.com/dshills/stagehand/internal/scene/template"
)

type fakeHandle struct {
	scene.PointShape
	visible bool
}

func (h *fakeHandle) SetVisible(v bool) { h.visible = v }
func (h *fakeHandle) Destroy()          {}

type fakeFactory struct{}

func (fakeFactory) Instantiate(string, map[string]any) (scene.Handle, error) {
	return &fakeHandle{
		PointShape: scene.PointShape{Scale: scene.Point{X: 1, Y: 1}, Size: scene.Point{X: 40, Y: 30}},
		visible:    true,
	}, nil
}
func (fakeFactory) IsSingleton(string) bool      { return false }
func (fakeFactory) IsRequired(string) bool       { return false }
func (fakeFactory) DependenciesOf(string) []string { return nil }

type fakeNode struct {
	name     string
	children []registry.Node
	handle   scene.Handle
}

func (n *fakeNode) Name() string         { return n.name }
func (n *fakeNode) TypeName() string     { return "" }
func (n *fakeNode) Handle() scene.Handle { return n.handle }
func (n *fakeNode) Children() []registry.Node {
	return n.children
}

func newNode(name string, children ...registry.Node) *fakeNode {
	h, _ := fakeFactory{}.Instantiate("", nil)
	return &fakeNode{name: name, children: children, handle: h}
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	root := &fakeNode{children: []registry.Node{
		newNode("Desk", newNode("Lamp")),
		newNode("Rug"),
	}}
	r, err := registry.Resolve(&template.List{}, root, fakeFactory{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return r
}

func TestPushClearsRedo(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(10)

	log.Push(&HideCommand{Path: "Rug"})
	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if !log.CanRedo() {
		t.Fatal("expected redo available")
	}

	log.Push(&HideCommand{Path: "Desk"})
	if log.CanRedo() {
		t.Error("push did not clear redo stack")
	}
}

func TestLogDropsOldestWhenFull(t *testing.T) {
	log := NewLog(3)
	for i := 0; i < 5; i++ {
		log.Push(&MoveCommand{Path: fmt.Sprintf("E%d", i)})
	}
	if log.UndoCount() != 3 {
		t.Fatalf("UndoCount = %d, want 3", log.UndoCount())
	}
	if desc, _ := log.PeekUndo(); desc != "Move E4" {
		t.Errorf("newest entry = %q", desc)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	desk := r.Get("Desk")
	from := desk.Transform.Position()
	to := scene.Point{X: 120, Y: 80}
	desk.Transform.SetPosition(to)
	log.Push(&MoveCommand{Path: "Desk", From: from, To: to})

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if desk.Transform.Position() != from {
		t.Errorf("after undo position = %+v", desk.Transform.Position())
	}

	if _, err := log.Redo(r); err != nil {
		t.Fatal(err)
	}
	if desk.Transform.Position() != to {
		t.Errorf("after redo position = %+v", desk.Transform.Position())
	}
	if !log.CanUndo() || log.CanRedo() {
		t.Error("stacks inconsistent after redo")
	}
}

func TestMultiMoveUndo(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	cmd := &MultiMoveCommand{Entries: []MoveEntry{
		{Path: "Desk", From: scene.Point{}, To: scene.Point{X: 10, Y: 10}},
		{Path: "Rug", From: scene.Point{}, To: scene.Point{X: 10, Y: 10}},
	}}
	if err := cmd.Execute(r); err != nil {
		t.Fatal(err)
	}
	log.Push(cmd)

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if r.Get("Desk").Transform.Position() != (scene.Point{}) {
		t.Error("Desk not restored")
	}
	if r.Get("Rug").Transform.Position() != (scene.Point{}) {
		t.Error("Rug not restored")
	}
}

func TestHideShowInverse(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	if err := r.SetHidden("Rug", true); err != nil {
		t.Fatal(err)
	}
	log.Push(&HideCommand{Path: "Rug"})

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if !r.Get("Rug").Visible {
		t.Error("undo hide should show entity")
	}
	if _, err := log.Redo(r); err != nil {
		t.Fatal(err)
	}
	if r.Get("Rug").Visible {
		t.Error("redo hide should hide entity")
	}
}

func TestCreateUndoRedo(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	newPath, err := r.Duplicate("Desk")
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := NewCreateCommand(r, newPath)
	if err != nil {
		t.Fatal(err)
	}
	log.Push(cmd)
	want := r.Get(newPath).Transform.Position()

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if r.Has(newPath) {
		t.Error("undo create should delete the copy")
	}

	if _, err := log.Redo(r); err != nil {
		t.Fatal(err)
	}
	if !r.Has(newPath) || !r.Has(newPath+"/Lamp") {
		t.Error("redo create should restore the copy subtree")
	}
	if got := r.Get(newPath).Transform.Position(); got != want {
		t.Errorf("position after undo+redo = %+v, want %+v", got, want)
	}
}

func TestDeleteUndoRestoresTransform(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	newPath, err := r.Duplicate("Desk")
	if err != nil {
		t.Fatal(err)
	}
	moved := scene.Point{X: 300, Y: 200}
	r.Get(newPath).Transform.SetPosition(moved)

	cmd, err := NewDeleteCommand(r, newPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Execute(r); err != nil {
		t.Fatal(err)
	}
	log.Push(cmd)

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	e := r.Get(newPath)
	if e == nil {
		t.Fatal("copy not restored")
	}
	if e.Transform.Position() != moved {
		t.Errorf("restored position = %+v, want %+v", e.Transform.Position(), moved)
	}
}

func TestZOrderRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	from := r.Get("Rug").Z
	to := scene.ZOrder{Index: 7, Relative: true}
	r.Get("Rug").Z = to
	log.Push(&ZOrderCommand{Path: "Rug", From: from, To: to})

	if _, err := log.Undo(r); err != nil {
		t.Fatal(err)
	}
	if r.Get("Rug").Z != from {
		t.Errorf("z after undo = %+v", r.Get("Rug").Z)
	}
	if _, err := log.Redo(r); err != nil {
		t.Fatal(err)
	}
	if r.Get("Rug").Z != to {
		t.Errorf("z after redo = %+v", r.Get("Rug").Z)
	}
}

func TestEmptyStacks(t *testing.T) {
	r := newTestRegistry(t)
	log := NewLog(0)

	if _, err := log.Undo(r); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo empty = %v", err)
	}
	if _, err := log.Redo(r); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo empty = %v", err)
	}
}

func TestClear(t *testing.T) {
	log := NewLog(0)
	log.Push(&HideCommand{Path: "Desk"})
	log.Clear()
	if log.CanUndo() || log.CanRedo() {
		t.Error("Clear left entries behind")
	}
}
