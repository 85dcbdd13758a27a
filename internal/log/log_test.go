package log

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	Info(CatNav, "swap complete", "window", "w-1", "first", true)

	out := buf.String()
	require.Contains(t, out, "[INFO] [nav] swap complete")
	require.Contains(t, out, "window=w-1")
	require.Contains(t, out, "first=true")
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	Warn(CatWindow, "dangling", "orphan")

	require.Contains(t, buf.String(), "orphan=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	SetMinLevel(LevelWarn)

	Debug(CatNav, "hidden")
	Error(CatNav, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	SetEnabled(false)

	Error(CatNav, "nothing")
	require.Empty(t, buf.String())
}

func TestErrorErr_NilError(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	ErrorErr(CatBinding, "bind failed", nil)
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestInit_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "twinview.log")

	cleanup, err := Init(path)
	require.NoError(t, err)
	defer cleanup()

	Info(CatConfig, "hello")
	require.FileExists(t, path)
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatUI, "published")

	msg := listener.Listen()()
	event, ok := msg.(LogEvent)
	require.True(t, ok)
	require.Equal(t, "published", event.Payload.Message)
	require.Equal(t, CatUI, event.Payload.Category)
	require.Equal(t, "info", string(event.Type))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel("WARN"))
	require.Equal(t, LevelWarn, ParseLevel("warn"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestEntry_String(t *testing.T) {
	e := Entry{
		Time:     time.Date(2026, 10, 19, 10, 45, 0, 0, time.UTC),
		Level:    LevelError,
		Category: CatNav,
		Message:  "recovery abandoned",
		Fields:   []any{"window", "w-2", "attempts"},
	}
	require.Equal(t, "2026-10-19T10:45:00 [ERROR] [nav] recovery abandoned window=w-2 attempts=<missing>", e.String())
}

func TestInitWriter_ClosesPreviousListeners(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	listener := NewListener(context.Background())
	require.NotNil(t, listener)

	InitWriter(&bytes.Buffer{})
	require.Nil(t, listener.Listen()())
}
