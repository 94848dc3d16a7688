package registry

import (
	"testing"

	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/template"
)

// fakeHandle is a live-element stand-in backed by a point shape.
type fakeHandle struct {
	scene.PointShape
	visible   bool
	destroyed bool
}

func newFakeHandle(x, y float64) *fakeHandle {
	return &fakeHandle{
		PointShape: scene.PointShape{
			Pos:   scene.Point{X: x, Y: y},
			Scale: scene.Point{X: 1, Y: 1},
			Size:  scene.Point{X: 40, Y: 30},
		},
		visible: true,
	}
}

func (h *fakeHandle) SetVisible(v bool) { h.visible = v }
func (h *fakeHandle) Destroy()          { h.destroyed = true }

// fakeFactory instantiates fake handles and tracks constraints.
type fakeFactory struct {
	singletons map[string]bool
	required   map[string]bool
	created    []string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		singletons: make(map[string]bool),
		required:   make(map[string]bool),
	}
}

func (f *fakeFactory) Instantiate(assetID string, config map[string]any) (scene.Handle, error) {
	f.created = append(f.created, assetID)
	return newFakeHandle(0, 0), nil
}

func (f *fakeFactory) IsSingleton(assetID string) bool   { return f.singletons[assetID] }
func (f *fakeFactory) IsRequired(assetID string) bool    { return f.required[assetID] }
func (f *fakeFactory) DependenciesOf(string) []string    { return nil }

// fakeNode is a live scene tree node for discovery tests.
type fakeNode struct {
	name     string
	typeName string
	handle   scene.Handle
	children []Node
}

func (n *fakeNode) Name() string         { return n.name }
func (n *fakeNode) TypeName() string     { return n.typeName }
func (n *fakeNode) Handle() scene.Handle { return n.handle }
func (n *fakeNode) Children() []Node     { return n.children }

func node(name, typeName string, children ...Node) *fakeNode {
	return &fakeNode{name: name, typeName: typeName, handle: newFakeHandle(0, 0), children: children}
}

// newTestRegistry resolves a Desk/Lamp tree with a declared template
// for the lamp.
func newTestRegistry(t *testing.T) (*Registry, *fakeFactory) {
	t.Helper()

	factory := newFakeFactory()
	root := &fakeNode{children: []Node{
		node("Desk", "", node("Lamp", "light")),
		node("PowerButton", ""),
	}}
	list := &template.List{Templates: []template.Template{
		{Path: "Desk/Lamp", Kind: "light", Category: "lighting", Asset: "lamp_small"},
	}}

	r, err := Resolve(list, root, factory)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return r, factory
}

func TestResolveDeclaredTemplateWins(t *testing.T) {
	r, _ := newTestRegistry(t)

	lamp := r.Get("Desk/Lamp")
	if lamp == nil {
		t.Fatal("Desk/Lamp not resolved")
	}
	if lamp.Kind != scene.KindLight || lamp.Category != "lighting" || lamp.AssetID != "lamp_small" {
		t.Errorf("lamp = kind %v category %q asset %q", lamp.Kind, lamp.Category, lamp.AssetID)
	}
}

func TestResolveClassifiesUndeclaredNodes(t *testing.T) {
	factory := newFakeFactory()
	root := &fakeNode{children: []Node{
		node("CeilingFixture", "light"),
		node("PowerButton", ""),
		node("StatusLED", ""),
		node("Rug", ""),
	}}

	r, err := Resolve(&template.List{}, root, factory)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		path string
		kind scene.Kind
	}{
		{"CeilingFixture", scene.KindLight}, // structural type wins over name
		{"PowerButton", scene.KindButton},
		{"StatusLED", scene.KindIndicator},
		{"Rug", scene.KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := r.Get(tt.path)
			if e == nil {
				t.Fatalf("%s not resolved", tt.path)
			}
			if e.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", e.Kind, tt.kind)
			}
		})
	}
}

func TestResolveInstantiatesMissingTemplates(t *testing.T) {
	factory := newFakeFactory()
	list := &template.List{Templates: []template.Template{
		{Path: "Shelf", Kind: "object", Asset: "shelf_basic"},
	}}

	r, err := Resolve(list, &fakeNode{}, factory)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !r.Has("Shelf") {
		t.Fatal("Shelf not instantiated")
	}
	if len(factory.created) != 1 || factory.created[0] != "shelf_basic" {
		t.Errorf("factory created = %v", factory.created)
	}
}

func TestChildrenAndSubtree(t *testing.T) {
	r, _ := newTestRegistry(t)

	kids := r.Children("Desk")
	if len(kids) != 1 || kids[0].Path != "Desk/Lamp" {
		t.Errorf("Children(Desk) = %d entries", len(kids))
	}

	sub := r.Subtree("Desk")
	if len(sub) != 2 || sub[0].Path != "Desk" || sub[1].Path != "Desk/Lamp" {
		t.Errorf("Subtree(Desk) wrong: %d entries", len(sub))
	}
	if r.Subtree("Nope") != nil {
		t.Error("Subtree of unknown path should be nil")
	}
}

func TestHiddenLockedDisplayNameIndices(t *testing.T) {
	r, _ := newTestRegistry(t)

	if err := r.SetHidden("Desk", true); err != nil {
		t.Fatal(err)
	}
	if err := r.SetLocked("PowerButton", true); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDisplayName("Desk/Lamp", "Reading Lamp"); err != nil {
		t.Fatal(err)
	}

	if got := r.HiddenPaths(); len(got) != 1 || got[0] != "Desk" {
		t.Errorf("HiddenPaths = %v", got)
	}
	if got := r.LockedPaths(); len(got) != 1 || got[0] != "PowerButton" {
		t.Errorf("LockedPaths = %v", got)
	}
	if got := r.DisplayNames(); got["Desk/Lamp"] != "Reading Lamp" {
		t.Errorf("DisplayNames = %v", got)
	}
	if got := r.Get("Desk/Lamp").Name(); got != "Reading Lamp" {
		t.Errorf("Name() = %q", got)
	}

	if err := r.SetHidden("Nope", true); err != ErrNotFound {
		t.Errorf("SetHidden unknown = %v", err)
	}
}

func TestResetTransform(t *testing.T) {
	r, _ := newTestRegistry(t)

	e := r.Get("PowerButton")
	orig := e.Bounds()
	e.Transform.SetPosition(scene.Point{X: 500, Y: 500})

	if err := r.ResetTransform("PowerButton"); err != nil {
		t.Fatal(err)
	}
	if e.Bounds() != orig {
		t.Errorf("bounds after reset = %+v, want %+v", e.Bounds(), orig)
	}
}

func TestResetAll(t *testing.T) {
	r, _ := newTestRegistry(t)

	if _, err := r.Duplicate("Desk"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetHidden("Desk", true); err != nil {
		t.Fatal(err)
	}
	if err := r.SetLocked("Desk", true); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDisplayName("Desk", "My Desk"); err != nil {
		t.Fatal(err)
	}

	if err := r.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	if r.Has("Desk_copy1") {
		t.Error("copy survived factory reset")
	}
	e := r.Get("Desk")
	if !e.Visible || e.Locked || e.DisplayName != "" {
		t.Errorf("state not cleared: visible=%v locked=%v name=%q", e.Visible, e.Locked, e.DisplayName)
	}
}
