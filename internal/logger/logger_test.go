package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, "info", "json").With("run_id", "abc")
	log.Debug("hidden")
	log.Info("normalized", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "normalized", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestLogger_SetLevelAppliesToChildren(t *testing.T) {
	var buf bytes.Buffer

	parent := New(&buf, "error", "text")
	child := parent.With("phase", "report")

	child.Info("skipped")
	assert.Empty(t, buf.String())

	parent.SetLevel("info")
	child.Info("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "phase=report")
}
