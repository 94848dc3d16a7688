// Package script runs Lua automation scripts over the editor's
// operations: bulk selection, duplication, alignment and visibility
// changes that would be tedious to click through by hand. Scripts run
// on the UI mutator, never concurrently with input events.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stagehand/internal/editor/controller"
	"github.com/dshills/stagehand/internal/editor/selection"
	"github.com/dshills/stagehand/internal/event"
	"github.com/dshills/stagehand/internal/scene/registry"
)

// ErrNoScript indicates the named script does not exist.
var ErrNoScript = errors.New("script not found")

// Options wires a Host.
type Options struct {
	Controller *controller.Controller
	Registry   *registry.Registry
	Selection  *selection.Selection
	Notifier   *event.Notifier
	Logger     *slog.Logger

	// Dir is the directory scanned for *.lua scripts.
	Dir string
}

// Host owns one Lua state with the stage API registered.
type Host struct {
	state *lua.LState
	log   *slog.Logger
	dir   string
}

// New creates a host, installs the sandbox and registers the stage
// module.
func New(opts Options) (*Host, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	L := lua.NewState()
	h := &Host{state: L, log: opts.Logger, dir: opts.Dir}

	h.sandbox()
	mod := &stageModule{
		ctrl:     opts.Controller,
		reg:      opts.Registry,
		sel:      opts.Selection,
		notifier: opts.Notifier,
	}
	if err := mod.register(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("registering stage module: %w", err)
	}
	return h, nil
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.state.Close()
}

// sandbox strips the loaders that would let a script pull in
// arbitrary code from disk, and routes print through the log.
func (h *Host) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		h.state.SetGlobal(name, lua.LNil)
	}
	h.state.SetGlobal("print", h.state.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		h.log.Info("script output", "message", strings.Join(parts, "\t"))
		return 0
	}))
}

// Run executes the named script. Bare names resolve against the
// script directory with a .lua suffix.
func (h *Host) Run(name string) error {
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) && !strings.HasSuffix(name, ".lua") {
		path = filepath.Join(h.dir, name+".lua")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrNoScript, name)
	}
	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// RunString executes Lua source directly. name labels errors.
func (h *Host) RunString(name, src string) error {
	if err := h.state.DoString(src); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// List returns the script names available in the script directory.
func (h *Host) List() []string {
	if h.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".lua"))
	}
	sort.Strings(names)
	return names
}
