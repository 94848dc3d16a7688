package ctxlog

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext returned a different logger than embedded")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("bare context should yield the default logger")
	}
}

func TestNewLevelAndFormat(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		enabled slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"warn", "warn", slog.LevelWarn},
		{"unknown defaults to info", "chatty", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := New(tc.level, "text", io.Discard)
			if !logger.Enabled(context.Background(), tc.enabled) {
				t.Errorf("level %s not enabled for %v", tc.level, tc.enabled)
			}
			if tc.enabled > slog.LevelDebug && logger.Enabled(context.Background(), tc.enabled-4) {
				t.Errorf("level %s enabled below its threshold", tc.level)
			}
		})
	}
}
