package sync

import (
	"context"
	"io"
	"log/slog"
	stdsync "sync"
	"testing"
	"time"

	"github.com/dshills/stagehand/internal/ctxlog"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene"
	"github.com/dshills/stagehand/internal/scene/registry"
	"github.com/dshills/stagehand/internal/scene/snapshot"
	"github.com/dshills/stagehand/internal/scene/template"
	"github.com/dshills/stagehand/internal/sched"
)

type fakeHandle struct {
	scene.PointShape
	visible bool
}

func (h *fakeHandle) SetVisible(v bool) { h.visible = v }
func (h *fakeHandle) Destroy()          {}

type fakeFactory struct{}

func (fakeFactory) Instantiate(assetID string, config map[string]any) (scene.Handle, error) {
	return &fakeHandle{
		PointShape: scene.PointShape{Scale: scene.Point{X: 1, Y: 1}, Size: scene.Point{X: 40, Y: 30}},
		visible:    true,
	}, nil
}

func (fakeFactory) IsSingleton(string) bool        { return false }
func (fakeFactory) IsRequired(string) bool         { return false }
func (fakeFactory) DependenciesOf(string) []string { return nil }

type fakeNode struct {
	name     string
	handle   scene.Handle
	children []registry.Node
}

func (n *fakeNode) Name() string              { return n.name }
func (n *fakeNode) TypeName() string          { return "" }
func (n *fakeNode) Handle() scene.Handle      { return n.handle }
func (n *fakeNode) Children() []registry.Node { return n.children }

func node(name string, children ...registry.Node) *fakeNode {
	h := &fakeHandle{
		PointShape: scene.PointShape{Scale: scene.Point{X: 1, Y: 1}, Size: scene.Point{X: 40, Y: 30}},
		visible:    true,
	}
	return &fakeNode{name: name, handle: h, children: children}
}

// fakeChannel records sends and lets tests push inbound events.
type fakeChannel struct {
	connected bool
	sent      []sentEvent
	sendErr   error
	handlers  map[string]func([]byte)
}

type sentEvent struct {
	event   string
	payload any
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{connected: true, handlers: make(map[string]func([]byte))}
}

func (f *fakeChannel) Connected() bool { return f.connected }

func (f *fakeChannel) Send(event string, payload any) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEvent{event: event, payload: payload})
	return nil
}

func (f *fakeChannel) Handle(event string, fn func([]byte)) { f.handlers[event] = fn }
func (f *fakeChannel) Close() error                         { return nil }

func (f *fakeChannel) push(event string, payload []byte) {
	if fn, ok := f.handlers[event]; ok {
		fn(payload)
	}
}

// fakeStore records fallback calls. Methods run on the client's send
// goroutines, so access is guarded.
type fakeStore struct {
	mu      stdsync.Mutex
	saved   [][]byte
	loadErr error
	loaded  []byte
	lastCtx context.Context
}

func (f *fakeStore) SaveSession(ctx context.Context, _ string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCtx = ctx
	f.saved = append(f.saved, snapshot)
	return nil
}

func (f *fakeStore) SaveDefault(_ context.Context, _, _ string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, snapshot)
	return nil
}

func (f *fakeStore) LoadSession(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, f.loadErr
}

func (f *fakeStore) LoadDefault(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, f.loadErr
}

func (f *fakeStore) lastContext() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCtx
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeStore) savedAt(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[i]
}

// waitFor polls cond until it holds, draining queued transport
// callbacks between checks.
func waitFor(t *testing.T, fx *fixture, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fx.client.Drain()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

type fixture struct {
	reg     *registry.Registry
	sch     *sched.Scheduler
	channel *fakeChannel
	store   *fakeStore
	client  *Client
	events  []event.Event
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	root := &fakeNode{children: []registry.Node{
		node("Desk", node("Lamp")),
		node("PowerButton"),
	}}
	reg, err := registry.Resolve(&template.List{}, root, fakeFactory{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	fx := &fixture{
		reg:     reg,
		sch:     sched.New(time.Unix(0, 0)),
		channel: newFakeChannel(),
		store:   &fakeStore{},
	}
	notifier := event.NewNotifier()
	notifier.Subscribe(func(e event.Event) { fx.events = append(fx.events, e) })

	opts := Options{
		Registry:   reg,
		Notifier:   notifier,
		Scheduler:  fx.sch,
		Channel:    fx.channel,
		Store:      fx.store,
		SessionKey: "session-1",
		AdminKey:   "admin-1",
		ConfigName: "default",
	}
	if mutate != nil {
		mutate(&opts)
	}
	fx.client = New(opts)
	return fx
}

func (fx *fixture) lastUpdate(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	if len(fx.channel.sent) == 0 {
		t.Fatal("no events sent")
	}
	last := fx.channel.sent[len(fx.channel.sent)-1]
	if last.event != EventSceneUpdate {
		t.Fatalf("last event = %s", last.event)
	}
	msg := last.payload.(UpdateMessage)
	s, err := snapshot.ParseJSON(msg.Config)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	return s
}

func TestDebounceCoalescesBurst(t *testing.T) {
	fx := newFixture(t, nil)

	// a burst of hides within the debounce window
	fx.client.MarkDirty("Desk/Lamp")
	fx.sch.Advance(300 * time.Millisecond)
	fx.client.MarkDirty("Desk/Lamp")
	fx.sch.Advance(300 * time.Millisecond)
	fx.client.MarkDirty("Desk/Lamp")

	if len(fx.channel.sent) != 0 {
		t.Fatalf("sent before quiet period: %d", len(fx.channel.sent))
	}

	fx.sch.Advance(time.Second)
	if len(fx.channel.sent) != 1 {
		t.Fatalf("sent = %d, want single coalesced update", len(fx.channel.sent))
	}

	s := fx.lastUpdate(t)
	if !s.Delta {
		t.Error("update is not a delta")
	}
	if len(s.Elements) != 1 {
		t.Errorf("delta elements = %d, want only the modified entity", len(s.Elements))
	}
	if _, ok := s.Elements["Desk/Lamp"]; !ok {
		t.Error("modified entity missing")
	}
	if fx.client.Dirty() {
		t.Error("dirty not cleared after dispatch")
	}
}

func TestTimerExpiryWithoutDirtyIsNoop(t *testing.T) {
	fx := newFixture(t, nil)
	fx.sch.Advance(5 * time.Second)
	if len(fx.channel.sent) != 0 || fx.store.saveCount() != 0 {
		t.Error("sent with nothing dirty")
	}
}

func TestEmptySessionKeySkipsSilently(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.SessionKey = "" })

	fx.client.MarkDirty("Desk")
	fx.sch.Advance(2 * time.Second)

	if len(fx.channel.sent) != 0 || fx.store.saveCount() != 0 {
		t.Error("sync ran without a session key")
	}
	for _, e := range fx.events {
		if e.Kind == event.KindStatus {
			t.Errorf("status noise without credential: %q", e.Message)
		}
	}
}

func TestDisconnectedFallsBackToFullSnapshot(t *testing.T) {
	fx := newFixture(t, nil)
	fx.channel.connected = false

	fx.client.MarkDirty("Desk")
	fx.sch.Advance(time.Second)
	waitFor(t, fx, func() bool { return fx.store.saveCount() == 1 })

	if len(fx.channel.sent) != 0 {
		t.Error("sent over a disconnected channel")
	}
	s, err := snapshot.ParseJSON(fx.store.savedAt(0))
	if err != nil {
		t.Fatal(err)
	}
	if s.Delta {
		t.Error("fallback sent a delta, want full snapshot")
	}
	if len(s.Elements) != fx.reg.Len() {
		t.Errorf("full snapshot elements = %d, want %d", len(s.Elements), fx.reg.Len())
	}
}

func TestStoreRequestsCarrySessionLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx := newFixture(t, func(o *Options) { o.Logger = logger })
	fx.channel.connected = false

	fx.client.MarkDirty("Desk")
	fx.sch.Advance(time.Second)
	waitFor(t, fx, func() bool { return fx.store.saveCount() == 1 })

	ctx := fx.store.lastContext()
	if ctx == nil {
		t.Fatal("store call carried no context")
	}
	if got := ctxlog.FromContext(ctx); got != logger {
		t.Error("store request context missing the session logger")
	}
}

func TestSendFailureKeepsDirty(t *testing.T) {
	fx := newFixture(t, nil)
	fx.channel.sendErr = context.DeadlineExceeded

	fx.client.MarkDirty("Desk")
	fx.sch.Advance(time.Second)

	if !fx.client.Dirty() {
		t.Error("dirty cleared on failed send")
	}
	var sawStatus bool
	for _, e := range fx.events {
		if e.Kind == event.KindStatus {
			sawStatus = true
		}
	}
	if !sawStatus {
		t.Error("no status message on failure")
	}

	// no automatic retry
	fx.channel.sendErr = nil
	fx.sch.Advance(5 * time.Second)
	if len(fx.channel.sent) != 0 {
		t.Error("retry happened without a new mutation")
	}

	// the next mutation sends the still-pending change
	fx.client.MarkDirty("PowerButton")
	fx.sch.Advance(time.Second)
	s := fx.lastUpdate(t)
	if len(s.Elements) != 2 {
		t.Errorf("delta elements = %d, want both pending paths", len(s.Elements))
	}
}

func TestFlushBypassesDebounce(t *testing.T) {
	fx := newFixture(t, nil)

	fx.client.MarkDirty("Desk")
	fx.client.Flush()

	if len(fx.channel.sent) != 1 {
		t.Fatalf("sent = %d", len(fx.channel.sent))
	}
	// expiring the old timer must not double-send
	fx.sch.Advance(2 * time.Second)
	if len(fx.channel.sent) != 1 {
		t.Errorf("debounce fired after flush: sent = %d", len(fx.channel.sent))
	}
}

func TestInboundSceneChangedAppliedWithoutDirty(t *testing.T) {
	fx := newFixture(t, nil)

	remote := `{"type":"scene_changed","config":{"version":2,"elements":{"Desk":{"x":500.0,"y":600.0}}}}`
	fx.channel.push(EventSceneChanged, []byte(remote))
	fx.client.Drain()

	if got := fx.reg.Get("Desk").Transform.Position(); got.X != 500 || got.Y != 600 {
		t.Errorf("position = %+v, want remote overwrite", got)
	}
	if fx.client.Dirty() {
		t.Error("remote apply marked the scene dirty")
	}
	fx.sch.Advance(5 * time.Second)
	if len(fx.channel.sent) != 0 {
		t.Error("remote apply echoed back to the store")
	}
}

func TestInboundHandlersRunOnDrainNotTransport(t *testing.T) {
	fx := newFixture(t, nil)

	remote := `{"config":{"version":2,"elements":{"Desk":{"x":500.0}}}}`
	fx.channel.push(EventSceneChanged, []byte(remote))

	if got := fx.reg.Get("Desk").Transform.Position(); got.X == 500 {
		t.Fatal("snapshot applied before Drain")
	}
	fx.client.Drain()
	if got := fx.reg.Get("Desk").Transform.Position(); got.X != 500 {
		t.Error("snapshot not applied on Drain")
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	fx := newFixture(t, nil)
	fx.channel.connected = false
	fx.store.loaded = []byte(`{"version":2,"elements":{"Desk":{"x":7.0}}}`)

	fx.client.Load()
	waitFor(t, fx, func() bool {
		return fx.reg.Get("Desk").Transform.Position().X == 7
	})
}

func TestSaveDefaultRequiresAdminKey(t *testing.T) {
	fx := newFixture(t, func(o *Options) { o.AdminKey = "" })

	fx.client.SaveDefault()
	if len(fx.channel.sent) != 0 {
		t.Error("save default dispatched without admin key")
	}
	var sawStatus bool
	for _, e := range fx.events {
		if e.Kind == event.KindStatus {
			sawStatus = true
		}
	}
	if !sawStatus {
		t.Error("no operator warning")
	}
}

func TestSaveDefaultOverChannel(t *testing.T) {
	fx := newFixture(t, nil)

	fx.client.SaveDefault()
	if len(fx.channel.sent) != 1 {
		t.Fatalf("sent = %d", len(fx.channel.sent))
	}
	sent := fx.channel.sent[0]
	if sent.event != EventSceneSaveDefault {
		t.Errorf("event = %s", sent.event)
	}
	if sent.payload.(SaveDefaultMessage).AdminKey != "admin-1" {
		t.Error("admin key missing from payload")
	}
}

func TestMalformedRemoteSnapshotIgnored(t *testing.T) {
	fx := newFixture(t, nil)
	before := fx.reg.Get("Desk").Transform.Position()

	fx.channel.push(EventSceneChanged, []byte(`{"config":"{not json"}`))
	fx.client.Drain()

	if got := fx.reg.Get("Desk").Transform.Position(); got != before {
		t.Error("malformed snapshot mutated the scene")
	}
}

func TestConnectionPollPublishesTransitions(t *testing.T) {
	fx := newFixture(t, nil)

	fx.sch.Advance(500 * time.Millisecond)
	if !fx.client.Connected() {
		t.Error("connected state not picked up")
	}

	fx.channel.connected = false
	fx.sch.Advance(500 * time.Millisecond)
	if fx.client.Connected() {
		t.Error("disconnect not picked up")
	}

	var transitions int
	for _, e := range fx.events {
		if e.Kind == event.KindSync && (e.Message == "connected" || e.Message == "disconnected") {
			transitions++
		}
	}
	if transitions != 2 {
		t.Errorf("transitions = %d, want 2", transitions)
	}
}
