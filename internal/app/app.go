// Package app wires the editor stack together and runs the terminal
// event loop: configuration, logging, scene resolution, the editing
// core, sync, autosave and scripting, projected onto a tcell screen.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stagehand/internal/config"
	"github.com/dshills/stagehand/internal/ctxlog"
	"github.com/dshills/stagehand/internal/editor/controller"
	"github.com/dshills/stagehand/internal/editor/history"
	"github.com/dshills/stagehand/internal/editor/selection"
	"github.com/dshills/stagehand/internal/editor/snap"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene/registry"
	"github.com/dshills/stagehand/internal/scene/template"
	"github.com/dshills/stagehand/internal/sched"
	"github.com/dshills/stagehand/internal/script"
	"github.com/dshills/stagehand/internal/store"
	stagesync "github.com/dshills/stagehand/internal/sync"
)

// tickInterval drives the scheduler. Connection polls and debounce
// expiries resolve on tick boundaries.
const tickInterval = 100 * time.Millisecond

// Options configures an App.
type Options struct {
	// ConfigPath locates the TOML configuration file. Empty uses
	// defaults plus environment overrides.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogWriter receives log output. Defaults to stderr.
	LogWriter io.Writer

	// Screen substitutes a tcell screen, used by tests.
	Screen tcell.Screen
}

// App owns every long-lived component of a running editor session.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	reg      *registry.Registry
	sel      *selection.Selection
	history  *history.Log
	notifier *event.Notifier
	clock    *sched.Scheduler
	ctrl     *controller.Controller
	sync     *stagesync.Client
	channel  stagesync.Channel
	rest     *stagesync.RESTStore
	autosave *store.Autosave
	scripts  *script.Host

	screen  tcell.Screen
	status  string
	buttons tcell.ButtonMask

	dirtyFrame bool
}

// New loads configuration, resolves the scene and wires the stack.
// The terminal is not touched until Run.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log := ctxlog.New(level, cfg.Logging.Format, w)

	tpl, err := template.Load(cfg.Scene.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("loading scene templates: %w", err)
	}
	reg, err := registry.Resolve(tpl, nil, newCellFactory())
	if err != nil {
		return nil, fmt.Errorf("resolving scene: %w", err)
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		reg:      reg,
		sel:      selection.New(),
		history:  history.NewLog(cfg.Editor.UndoLimit),
		notifier: event.NewNotifier(),
		clock:    sched.New(time.Now()),
		screen:   opts.Screen,
	}

	engine := snap.NewEngine()
	engine.Threshold = cfg.Editor.SnapThreshold
	engine.GridSize = cfg.Editor.GridSize
	engine.GridEnabled = cfg.Editor.GridEnabled

	if cfg.Sync.ServerURL != "" {
		ch, err := stagesync.DialSocket(cfg.Sync.ServerURL, "/scene")
		if err != nil {
			log.Warn("socket channel unavailable", "url", cfg.Sync.ServerURL, "error", err)
		} else {
			a.channel = ch
		}
		a.rest = stagesync.NewRESTStore(cfg.Sync.ServerURL, cfg.Sync.RequestTimeout.Std())
	}

	syncOpts := stagesync.Options{
		Registry:     reg,
		Notifier:     a.notifier,
		Scheduler:    a.clock,
		Channel:      a.channel,
		Logger:       log,
		SessionKey:   cfg.Sync.SessionKey,
		AdminKey:     cfg.Sync.AdminKey,
		ConfigName:   cfg.Sync.ConfigName,
		Debounce:     cfg.Sync.Debounce.Std(),
		PollInterval: cfg.Sync.PollInterval.Std(),
	}
	if a.rest != nil {
		syncOpts.Store = a.rest
	}
	a.sync = stagesync.New(syncOpts)

	if cfg.Scene.AutosavePath != "" {
		a.autosave, err = store.New(store.Options{
			Path:      cfg.Scene.AutosavePath,
			Registry:  reg,
			Notifier:  a.notifier,
			Scheduler: a.clock,
			Logger:    log,
			Watch:     cfg.Scene.WatchAutosave,
		})
		if err != nil {
			log.Warn("autosave unavailable", "path", cfg.Scene.AutosavePath, "error", err)
			a.autosave = nil
		}
	}

	ctrlOpts := controller.Options{
		Registry:       reg,
		History:        a.history,
		Selection:      a.sel,
		Snap:           engine,
		Notifier:       a.notifier,
		Sync:           a.sync,
		Logger:         log,
		NudgeStep:      cfg.Editor.NudgeStep,
		NudgeStepLarge: cfg.Editor.NudgeStepLarge,
		GuidesEnabled:  cfg.Editor.GuidesEnabled,
	}
	if a.autosave != nil {
		ctrlOpts.Store = a.autosave
	}
	a.ctrl = controller.New(ctrlOpts)

	a.scripts, err = script.New(script.Options{
		Controller: a.ctrl,
		Registry:   reg,
		Selection:  a.sel,
		Notifier:   a.notifier,
		Logger:     log,
		Dir:        cfg.Script.Dir,
	})
	if err != nil {
		return nil, fmt.Errorf("starting script host: %w", err)
	}

	a.notifier.Subscribe(a.onEvent)

	// Local autosave first, then any stored remote scene on top.
	if a.autosave != nil {
		if err := a.autosave.Load(); err != nil {
			log.Warn("autosave load failed", "error", err)
		}
	}
	a.sync.Load()

	return a, nil
}

// Controller exposes the editor controller, mainly for scripts and
// tests.
func (a *App) Controller() *controller.Controller { return a.ctrl }

// Registry exposes the resolved entity registry.
func (a *App) Registry() *registry.Registry { return a.reg }

// Scripts exposes the Lua script host.
func (a *App) Scripts() *script.Host { return a.scripts }

// onEvent marks the frame dirty and captures status messages for the
// status line.
func (a *App) onEvent(e event.Event) {
	a.dirtyFrame = true
	if e.Kind == event.KindStatus {
		a.status = e.Message
	}
}

// Run owns the terminal until quit. Input events and scheduler ticks
// are interleaved on this single goroutine; nothing else mutates the
// editing core.
func (a *App) Run() error {
	if a.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating screen: %w", err)
		}
		a.screen = s
	}
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	a.screen.EnableMouse()
	defer a.screen.Fini()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer close(quit)

	a.render()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := a.handleEvent(ev); err != nil {
				return err
			}
		case now := <-ticker.C:
			a.clock.Tick(now)
		}
		if a.dirtyFrame {
			a.render()
			a.dirtyFrame = false
		}
	}
}

// Shutdown releases every component. Safe to call more than once.
func (a *App) Shutdown() {
	if a.scripts != nil {
		a.scripts.Close()
		a.scripts = nil
	}
	if a.autosave != nil {
		if err := a.autosave.Close(); err != nil {
			a.log.Warn("closing autosave", "error", err)
		}
		a.autosave = nil
	}
	if a.channel != nil {
		if err := a.channel.Close(); err != nil {
			a.log.Warn("closing sync channel", "error", err)
		}
		a.channel = nil
	}
	if a.rest != nil {
		if err := a.rest.Close(); err != nil {
			a.log.Warn("closing rest store", "error", err)
		}
		a.rest = nil
	}
}
