// Package config loads layered editor configuration: built-in
// defaults, then a TOML file, then STAGEHAND_* environment overrides.
// A missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Duration decodes TOML strings like "1s" or "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration tree.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Sync    SyncConfig    `toml:"sync"`
	Scene   SceneConfig   `toml:"scene"`
	Script  ScriptConfig  `toml:"script"`
	Logging LoggingConfig `toml:"logging"`
}

// EditorConfig holds interaction settings.
type EditorConfig struct {
	// SnapEnabled turns edge/center snapping on.
	SnapEnabled bool `toml:"snap_enabled"`

	// GridEnabled turns grid snapping on.
	GridEnabled bool `toml:"grid_enabled"`

	// GridSize is the grid pitch in scene pixels.
	GridSize float64 `toml:"grid_size"`

	// SnapThreshold is the snap capture distance in scene pixels.
	SnapThreshold float64 `toml:"snap_threshold"`

	// GuidesEnabled draws transient alignment guides during drags.
	GuidesEnabled bool `toml:"guides_enabled"`

	// UndoLimit bounds the undo stack; oldest entries are dropped.
	UndoLimit int `toml:"undo_limit"`

	// NudgeStep is the arrow-key move distance in scene pixels.
	NudgeStep float64 `toml:"nudge_step"`

	// NudgeStepLarge is the shift-arrow move distance.
	NudgeStepLarge float64 `toml:"nudge_step_large"`
}

// SyncConfig holds remote store settings. An empty SessionKey disables
// sync entirely.
type SyncConfig struct {
	// ServerURL is the remote store base URL.
	ServerURL string `toml:"server_url"`

	// SessionKey identifies the scene session. Empty disables sync.
	SessionKey string `toml:"session_key"`

	// AdminKey authorizes save-as-default. Usually set via
	// STAGEHAND_ADMIN_KEY rather than the file.
	AdminKey string `toml:"admin_key"`

	// ConfigName names the stored scene configuration.
	ConfigName string `toml:"config_name"`

	// Debounce is the quiet period before a dirty scene is sent.
	Debounce Duration `toml:"debounce"`

	// PollInterval is the connection status poll period.
	PollInterval Duration `toml:"poll_interval"`

	// RequestTimeout bounds fallback HTTP requests.
	RequestTimeout Duration `toml:"request_timeout"`
}

// SceneConfig holds template and autosave settings.
type SceneConfig struct {
	// TemplatePath is the YAML entity template list.
	TemplatePath string `toml:"template_path"`

	// AutosavePath is the local snapshot file. Empty disables
	// autosave.
	AutosavePath string `toml:"autosave_path"`

	// WatchAutosave reloads the scene when the autosave file changes
	// on disk outside the editor.
	WatchAutosave bool `toml:"watch_autosave"`
}

// ScriptConfig holds Lua automation settings.
type ScriptConfig struct {
	// Dir is scanned for *.lua automation scripts. Empty disables
	// scripting.
	Dir string `toml:"dir"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			SnapEnabled:    true,
			GridEnabled:    false,
			GridSize:       32,
			SnapThreshold:  8,
			GuidesEnabled:  true,
			UndoLimit:      50,
			NudgeStep:      1,
			NudgeStepLarge: 10,
		},
		Sync: SyncConfig{
			ConfigName:     "default",
			Debounce:       Duration(time.Second),
			PollInterval:   Duration(500 * time.Millisecond),
			RequestTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Editor.UndoLimit <= 0 {
		return fmt.Errorf("%w: editor.undo_limit must be positive", ErrInvalid)
	}
	if c.Editor.SnapThreshold < 0 {
		return fmt.Errorf("%w: editor.snap_threshold must not be negative", ErrInvalid)
	}
	if c.Editor.GridSize <= 0 {
		return fmt.Errorf("%w: editor.grid_size must be positive", ErrInvalid)
	}
	if c.Sync.Debounce <= 0 {
		return fmt.Errorf("%w: sync.debounce must be positive", ErrInvalid)
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("%w: sync.poll_interval must be positive", ErrInvalid)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
