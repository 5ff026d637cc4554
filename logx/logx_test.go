package logx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
		{"  info  ", slog.LevelInfo},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseLevel(c.in), "level %q", c.in)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestDiscardDropsEverything(t *testing.T) {
	log := Discard()
	log.Error("nothing should happen")
	// A component attribute must also be safe on the discard logger.
	log.With("component", "test").Info("still nothing")
}

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf).With("component", "renderer")
	log.Info("frame done")
	assert.True(t, strings.Contains(buf.String(), "component=renderer"))
}
