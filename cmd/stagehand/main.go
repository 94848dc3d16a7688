// Package main is the entry point for the Stagehand scene editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/stagehand/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, script, ok := parseFlags()
	if !ok {
		return 0
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Script mode runs one automation script and exits without
	// taking over the terminal.
	if script != "" {
		application.Controller().SetEnabled(true)
		if err := application.Scripts().Run(script); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		application.Controller().SaveNow()
		return 0
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, string, bool) {
	var opts app.Options
	var script string
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&script, "script", "", "Run an automation script and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Stagehand - live scene editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stagehand [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  e          toggle edit mode\n")
		fmt.Fprintf(os.Stderr, "  u / U      undo / redo\n")
		fmt.Fprintf(os.Stderr, "  d          duplicate selection\n")
		fmt.Fprintf(os.Stderr, "  h          hide selection\n")
		fmt.Fprintf(os.Stderr, "  r / R      reset position / factory reset\n")
		fmt.Fprintf(os.Stderr, "  [ ] { }    z-order step / jump\n")
		fmt.Fprintf(os.Stderr, "  arrows     nudge (shift = 10x)\n")
		fmt.Fprintf(os.Stderr, "  s g v l    toggle snap / grid / guides / lock\n")
		fmt.Fprintf(os.Stderr, "  tab        cycle visibility tier\n")
		fmt.Fprintf(os.Stderr, "  ctrl-s     save immediately\n")
		fmt.Fprintf(os.Stderr, "  q          quit\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("stagehand %s (%s)\n", version, commit)
		return opts, "", false
	}
	return opts, script, true
}
