package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprep/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"trace":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONLoggerAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := NewWithWriter(config.Logging{Level: "info"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	ctx := WithRunID(context.Background(), "run-1")
	log.With("job", "wine").InfoContext(ctx, "loaded", "rows", 10)
	log.DebugContext(ctx, "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "loaded", rec["msg"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.Equal(t, "wine", rec["job"])
	assert.Equal(t, "run-1", RunID(ctx))
	assert.Empty(t, RunID(context.Background()))
}

func TestTextLoggerToFileAndConsole(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "dataprep.log")
	log, closer, err := NewWithWriter(config.Logging{Format: "text", Output: "both", FilePath: path, Level: "debug"}, &buf)
	require.NoError(t, err)

	log.Debug("stage done", "stage", "dedupe")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "stage=dedupe")
	assert.Contains(t, buf.String(), "stage=dedupe")
}

func TestNewRejectsBadOutput(t *testing.T) {
	_, _, err := NewWithWriter(config.Logging{Output: "syslog"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = NewWithWriter(config.Logging{Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}
