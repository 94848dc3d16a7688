// Package store persists the scene snapshot to a local autosave file
// and reloads it when the file changes on disk outside the editor.
//
// Saves are debounced the same way sync sends are. External changes
// are detected with fsnotify on the file's directory; reloads are
// queued and applied on the UI mutator via Drain, never on the
// watcher goroutine.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene/registry"
	"github.com/dshills/stagehand/internal/scene/snapshot"
	"github.com/dshills/stagehand/internal/sched"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("autosave store is closed")

// DefaultDebounce is the quiet period before a dirty scene is
// written.
const DefaultDebounce = 2 * time.Second

// drainInterval is how often queued external reloads are applied.
const drainInterval = 500 * time.Millisecond

// Options configures an Autosave store.
type Options struct {
	// Path is the snapshot file.
	Path string

	Registry  *registry.Registry
	Notifier  *event.Notifier
	Scheduler *sched.Scheduler
	Logger    *slog.Logger

	// Debounce is the quiet period before a write.
	Debounce time.Duration

	// Watch reloads the scene when the file changes externally.
	Watch bool
}

// Autosave writes the scene to a local file and optionally watches it
// for external edits.
type Autosave struct {
	path     string
	reg      *registry.Registry
	notifier *event.Notifier
	log      *slog.Logger

	task     *sched.Task
	debounce time.Duration
	watcher  *fsnotify.Watcher
	closed   bool

	mu        stdsync.Mutex
	inbox     []func()
	lastSaved []byte
}

// New creates the store and, when requested, starts watching the
// file's directory. Watching the directory rather than the file
// survives editors that replace files by rename.
func New(opts Options) (*Autosave, error) {
	if opts.Path == "" {
		return nil, errors.New("autosave path is empty")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &Autosave{
		path:     opts.Path,
		reg:      opts.Registry,
		notifier: opts.Notifier,
		log:      opts.Logger,
		debounce: opts.Debounce,
	}
	a.task = opts.Scheduler.Stopped(func() {
		if err := a.SaveNow(); err != nil {
			a.log.Warn("autosave failed", "error", err)
		}
	})

	if opts.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("creating watcher: %w", err)
		}
		dir := filepath.Dir(opts.Path)
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		a.watcher = w
		go a.watchLoop()
		opts.Scheduler.Every(drainInterval, a.Drain)
	}
	return a, nil
}

// MarkDirty restarts the save debounce.
func (a *Autosave) MarkDirty() {
	a.task.Restart(a.debounce)
}

// SaveNow writes the snapshot immediately, atomically via a temp file
// rename.
func (a *Autosave) SaveNow() error {
	if a.closed {
		return ErrClosed
	}
	data, err := snapshot.ToJSON(snapshot.Encode(a.reg))
	if err != nil {
		return fmt.Errorf("encoding autosave: %w", err)
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing autosave: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("writing autosave: %w", err)
	}

	a.mu.Lock()
	a.lastSaved = data
	a.mu.Unlock()
	return nil
}

// Load reads and applies the snapshot file. A missing file is not an
// error.
func (a *Autosave) Load() error {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading autosave: %w", err)
	}
	return a.apply(data)
}

// Drain applies queued external reloads. Must run on the UI mutator.
func (a *Autosave) Drain() {
	a.mu.Lock()
	queued := a.inbox
	a.inbox = nil
	a.mu.Unlock()
	for _, fn := range queued {
		fn()
	}
}

// Close stops the watcher. The file is left as last saved.
func (a *Autosave) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.task.Stop()
	if a.watcher != nil {
		return a.watcher.Close()
	}
	return nil
}

// watchLoop forwards relevant fsnotify events to the inbox.
func (a *Autosave) watchLoop() {
	for {
		select {
		case ev, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != a.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			a.mu.Lock()
			a.inbox = append(a.inbox, a.reload)
			a.mu.Unlock()
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.log.Warn("autosave watcher error", "error", err)
		}
	}
}

// reload re-reads the file and applies it unless the content is our
// own last write.
func (a *Autosave) reload() {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.log.Warn("reloading autosave", "error", err)
		}
		return
	}

	a.mu.Lock()
	own := bytes.Equal(data, a.lastSaved)
	a.mu.Unlock()
	if own {
		return
	}

	if err := a.apply(data); err != nil {
		a.log.Warn("applying external autosave change", "error", err)
		return
	}
	a.notifier.Status("scene reloaded from disk")
}

func (a *Autosave) apply(data []byte) error {
	snap, err := snapshot.ParseJSON(data)
	if err != nil {
		return err
	}
	if err := snapshot.Apply(snap, a.reg); err != nil {
		return err
	}
	a.notifier.Publish(event.Event{Kind: event.KindEntity})
	return nil
}
