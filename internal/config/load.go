package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix shared by all override variables.
const EnvPrefix = "STAGEHAND_"

// Load builds a configuration from defaults, the TOML file at path,
// and environment overrides, in that order. A missing file yields
// defaults plus environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults apply
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnv overrides fields from STAGEHAND_* variables. Empty values
// count as set, matching how credentials are cleared in CI.
func applyEnv(c *Config) {
	envString(&c.Sync.ServerURL, "SERVER_URL")
	envString(&c.Sync.SessionKey, "SESSION_KEY")
	envString(&c.Sync.AdminKey, "ADMIN_KEY")
	envString(&c.Sync.ConfigName, "CONFIG_NAME")
	envDuration(&c.Sync.Debounce, "DEBOUNCE")
	envDuration(&c.Sync.PollInterval, "POLL_INTERVAL")

	envString(&c.Scene.TemplatePath, "TEMPLATE_PATH")
	envString(&c.Scene.AutosavePath, "AUTOSAVE_PATH")
	envBool(&c.Scene.WatchAutosave, "WATCH_AUTOSAVE")

	envString(&c.Script.Dir, "SCRIPT_DIR")

	envBool(&c.Editor.SnapEnabled, "SNAP")
	envBool(&c.Editor.GridEnabled, "GRID")
	envFloat(&c.Editor.GridSize, "GRID_SIZE")
	envInt(&c.Editor.UndoLimit, "UNDO_LIMIT")

	envString(&c.Logging.Level, "LOG_LEVEL")
	envString(&c.Logging.Format, "LOG_FORMAT")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func envBool(dst *bool, name string) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	switch v {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0":
		*dst = false
	}
}

func envInt(dst *int, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(dst *Duration, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}
