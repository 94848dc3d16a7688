package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/stagehand/internal/ctxlog"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene/registry"
	"github.com/dshills/stagehand/internal/scene/snapshot"
	"github.com/dshills/stagehand/internal/sched"
)

// Default timings.
const (
	DefaultDebounce     = time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// logical request channels for the fallback store
const (
	flightSave        = "save"
	flightSaveDefault = "save_default"
	flightLoad        = "load"
)

// Options configures a Client. Channel and Store are both optional;
// with neither, sync is a no-op. An empty SessionKey disables sync
// silently.
type Options struct {
	Registry   *registry.Registry
	Notifier   *event.Notifier
	Scheduler  *sched.Scheduler
	Channel    Channel
	Store      Store
	Logger     *slog.Logger
	SessionKey string
	AdminKey   string
	ConfigName string

	// Debounce is the quiet period before a dirty scene is sent.
	Debounce time.Duration

	// PollInterval is the connection status poll period.
	PollInterval time.Duration
}

// Client owns the dirty flag, the debounce timer and the modified-path
// set. All state except the inbox lives on the single UI mutator; the
// inbox is the only structure transport goroutines touch.
type Client struct {
	reg      *registry.Registry
	notifier *event.Notifier
	channel  Channel
	store    Store
	log      *slog.Logger

	clientID   string
	sessionKey string
	adminKey   string
	configName string
	debounceIv time.Duration

	dirty    bool
	modified map[string]struct{}
	debounce *sched.Task

	connected bool
	inflight  map[string]bool

	mu    stdsync.Mutex
	inbox []func()
}

// New wires a client into the scheduler: a stopped debounce task and a
// recurring connection poll. Inbound channel events are queued and
// run on the next poll or Drain.
func New(opts Options) *Client {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		reg:        opts.Registry,
		clientID:   uuid.NewString(),
		notifier:   opts.Notifier,
		channel:    opts.Channel,
		store:      opts.Store,
		log:        opts.Logger,
		sessionKey: opts.SessionKey,
		adminKey:   opts.AdminKey,
		configName: opts.ConfigName,
		debounceIv: opts.Debounce,
		modified:   make(map[string]struct{}),
		inflight:   make(map[string]bool),
	}

	c.debounce = opts.Scheduler.Stopped(c.flush)
	opts.Scheduler.Every(opts.PollInterval, c.poll)

	if c.channel != nil {
		c.channel.Handle(EventSceneUpdateOK, func([]byte) {
			c.post(c.handleUpdateOK)
		})
		c.channel.Handle(EventSceneSaveDefaultOK, func([]byte) {
			c.post(c.handleSaveDefaultOK)
		})
		c.channel.Handle(EventSceneChanged, func(payload []byte) {
			c.post(func() { c.handleChanged(payload) })
		})
		c.channel.Handle(EventSceneLoadResponse, func(payload []byte) {
			c.post(func() { c.handleLoadResponse(payload) })
		})
	}
	return c
}

// Dirty reports whether unsent local changes exist.
func (c *Client) Dirty() bool { return c.dirty }

// Connected reports the channel state as of the last poll.
func (c *Client) Connected() bool { return c.connected }

// MarkDirty records locally modified paths and restarts the debounce
// timer. Restarting is the only cancellation: a burst of edits keeps
// pushing the send out until the scene goes quiet.
func (c *Client) MarkDirty(paths ...string) {
	c.dirty = true
	for _, p := range paths {
		c.modified[p] = struct{}{}
	}
	c.debounce.Restart(c.debounceIv)
}

// Flush sends immediately, bypassing the debounce.
func (c *Client) Flush() {
	c.debounce.Stop()
	c.dirty = true
	c.flush()
}

// flush is the debounce expiry action.
func (c *Client) flush() {
	if !c.dirty {
		return
	}
	if c.sessionKey == "" {
		// no credential: sync silently skipped
		return
	}

	if c.channel != nil && c.channel.Connected() {
		c.sendDelta()
		return
	}
	if c.store != nil {
		c.sendFull()
	}
}

// sendDelta emits a delta patch over the persistent channel. Dirty is
// cleared once dispatched; failure keeps it set for the next mutation
// to retry, but no retry is scheduled here.
func (c *Client) sendDelta() {
	snap := snapshot.EncodeDelta(c.reg, c.modified)
	body, err := snapshot.ToJSON(snap)
	if err != nil {
		c.log.Error("encoding delta", "error", err)
		return
	}
	msg := UpdateMessage{Config: body, ConfigName: c.configName, Sender: c.clientID}
	if err := c.channel.Send(EventSceneUpdate, msg); err != nil {
		c.log.Warn("scene update send failed", "error", err)
		c.notifier.Status("sync failed; changes kept locally")
		return
	}
	c.clearDirty()
	c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "update sent"})
}

// sendFull posts the full snapshot over the fallback store. At most
// one save request is in flight; a colliding flush retries after the
// debounce interval.
// reqContext builds the context store requests run under, carrying
// the session logger for the transport layer.
func (c *Client) reqContext() context.Context {
	return ctxlog.WithLogger(context.Background(), c.log)
}

func (c *Client) sendFull() {
	if c.inflight[flightSave] {
		c.debounce.Restart(c.debounceIv)
		return
	}
	body, err := snapshot.ToJSON(snapshot.Encode(c.reg))
	if err != nil {
		c.log.Error("encoding snapshot", "error", err)
		return
	}

	c.inflight[flightSave] = true
	c.clearDirty()
	ctx := c.reqContext()
	go func() {
		err := c.store.SaveSession(ctx, c.sessionKey, body)
		c.post(func() {
			c.inflight[flightSave] = false
			if err != nil {
				c.log.Warn("session save failed", "error", err)
				c.notifier.Status("sync failed; changes kept locally")
				return
			}
			c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "scene saved"})
		})
	}()
}

// SaveDefault stores the current scene as the default for every
// session. Requires the admin credential.
func (c *Client) SaveDefault() {
	if c.sessionKey == "" {
		return
	}
	if c.adminKey == "" {
		c.notifier.Status("save default requires an admin key")
		return
	}
	body, err := snapshot.ToJSON(snapshot.Encode(c.reg))
	if err != nil {
		c.log.Error("encoding snapshot", "error", err)
		return
	}

	if c.channel != nil && c.channel.Connected() {
		msg := SaveDefaultMessage{AdminKey: c.adminKey, Config: body}
		if err := c.channel.Send(EventSceneSaveDefault, msg); err != nil {
			c.log.Warn("save default send failed", "error", err)
			c.notifier.Status("save default failed")
		}
		return
	}
	if c.store == nil {
		return
	}
	if c.inflight[flightSaveDefault] {
		c.notifier.Status("save default already in progress")
		return
	}
	c.inflight[flightSaveDefault] = true
	ctx := c.reqContext()
	go func() {
		err := c.store.SaveDefault(ctx, c.sessionKey, c.adminKey, body)
		c.post(func() {
			c.inflight[flightSaveDefault] = false
			if err != nil {
				c.log.Warn("default save failed", "error", err)
				c.notifier.Status("save default failed")
				return
			}
			c.notifier.Status("default scene saved")
		})
	}()
}

// Load requests the stored scene. The session snapshot wins; when the
// store has none, the scene default is loaded instead.
func (c *Client) Load() {
	if c.sessionKey == "" {
		return
	}
	if c.channel != nil && c.channel.Connected() {
		msg := LoadMessage{ConfigName: c.configName}
		if err := c.channel.Send(EventSceneLoad, msg); err != nil {
			c.log.Warn("scene load send failed", "error", err)
			c.notifier.Status("load failed")
		}
		return
	}
	if c.store == nil {
		return
	}
	if c.inflight[flightLoad] {
		return
	}
	c.inflight[flightLoad] = true
	ctx := c.reqContext()
	go func() {
		data, err := c.store.LoadSession(ctx, c.sessionKey)
		if errors.Is(err, ErrNoStoredScene) {
			data, err = c.store.LoadDefault(ctx, c.sessionKey)
		}
		c.post(func() {
			c.inflight[flightLoad] = false
			switch {
			case errors.Is(err, ErrNoStoredScene):
				c.notifier.Status("no stored scene")
			case err != nil:
				c.log.Warn("scene load failed", "error", err)
				c.notifier.Status("load failed")
			default:
				c.applySnapshot(data)
			}
		})
	}()
}

// Drain runs queued transport callbacks on the caller's goroutine.
// Must be called from the UI mutator.
func (c *Client) Drain() {
	c.mu.Lock()
	queued := c.inbox
	c.inbox = nil
	c.mu.Unlock()
	for _, fn := range queued {
		fn()
	}
}

// post queues fn for the next Drain. Safe from any goroutine.
func (c *Client) post(fn func()) {
	c.mu.Lock()
	c.inbox = append(c.inbox, fn)
	c.mu.Unlock()
}

// poll is the recurring connection status check.
func (c *Client) poll() {
	c.Drain()
	if c.channel == nil {
		return
	}
	connected := c.channel.Connected()
	if connected == c.connected {
		return
	}
	c.connected = connected
	if connected {
		c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "connected"})
	} else {
		c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "disconnected"})
	}
}

func (c *Client) clearDirty() {
	c.dirty = false
	c.modified = make(map[string]struct{})
}

func (c *Client) handleUpdateOK() {
	c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "update acknowledged"})
}

func (c *Client) handleSaveDefaultOK() {
	c.notifier.Status("default scene saved")
}

func (c *Client) handleChanged(payload []byte) {
	var msg ChangedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.log.Warn("malformed scene_changed", "error", err)
		return
	}
	c.applySnapshot(msg.Config)
}

func (c *Client) handleLoadResponse(payload []byte) {
	var msg LoadResponse
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.log.Warn("malformed scene_load_response", "error", err)
		return
	}
	c.applySnapshot(msg.Config)
	if msg.IsDefault {
		c.notifier.Status("default scene loaded")
	}
}

// applySnapshot overwrites local state from a remote document.
// Last-writer-wins: no merge, and the application is never recorded
// as an undoable command or marked dirty (that would echo the remote
// edit straight back).
func (c *Client) applySnapshot(data []byte) {
	snap, err := snapshot.ParseJSON(data)
	if err != nil {
		c.log.Warn("malformed remote snapshot", "error", err)
		c.notifier.Status("ignored malformed remote scene")
		return
	}
	if err := snapshot.Apply(snap, c.reg); err != nil {
		c.log.Warn("applying remote snapshot", "error", err)
	}
	c.notifier.Publish(event.Event{Kind: event.KindEntity})
	c.notifier.Publish(event.Event{Kind: event.KindSync, Message: "remote scene applied"})
}
