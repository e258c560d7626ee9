package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestProgressReportsNodeCount(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	newProgress(c.Logger).done("Laid out %d nodes", 5)

	out := buf.String()
	if !strings.Contains(out, "Laid out 5 nodes (") {
		t.Fatalf("output = %q, want node count with elapsed time", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "s)") {
		t.Errorf("output = %q, want a rounded duration", out)
	}
}

func TestCLILogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		debug bool
	}{
		{"default hides cache backend", LogInfo, false},
		{"verbose shows cache backend", LogDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, LogInfo)
			c.SetLogLevel(tt.level)

			c.Logger.Debug("cache", "backend", "file:/tmp/stacktree")

			if got := strings.Contains(buf.String(), "backend"); got != tt.debug {
				t.Errorf("debug line written = %v, want %v (%q)", got, tt.debug, buf.String())
			}
		})
	}
}

func TestLoggerTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("Rendered builtin:router")

	// "15:04:05.00 INFO Rendered builtin:router"
	fields := strings.Fields(buf.String())
	if len(fields) < 3 {
		t.Fatalf("output = %q, want timestamp, level and message", buf.String())
	}
	if ts := fields[0]; len(ts) != len("15:04:05.00") || ts[2] != ':' || ts[8] != '.' {
		t.Errorf("timestamp = %q, want HH:MM:SS.cc", ts)
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()
	root.SetContext(context.Background())

	if err := root.PersistentPreRunE(root, nil); err != nil {
		t.Fatalf("PersistentPreRunE: %v", err)
	}
	if got := loggerFromContext(root.Context()); got != c.Logger {
		t.Error("command context does not carry the CLI logger")
	}

	loggerFromContext(root.Context()).Info("Wrote tree.layout.json")
	if !strings.Contains(buf.String(), "Wrote tree.layout.json") {
		t.Errorf("context logger wrote %q, want it on the CLI writer", buf.String())
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("bare context should yield log.Default()")
	}

	custom := newLogger(&bytes.Buffer{}, log.WarnLevel)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("withLogger value not returned")
	}
}
