package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_DisabledUntilInit(t *testing.T) {
	Reset()
	require.NotPanics(t, func() { Info(CatPaste, "dropped") })
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatPaste, "applied", "rows", 2, "cols", 3)
	require.Contains(t, buf.String(), "[INFO] [paste] applied rows=2 cols=3")

	buf.Reset()
	Warn(CatCopy, "odd", "orphan")
	require.Contains(t, buf.String(), "orphan=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatDB, "save failed", errors.New("disk full"), "sheet", "default")
	require.Contains(t, buf.String(), "[ERROR] [db] save failed sheet=default error=disk full")

	buf.Reset()
	ErrorErr(CatDB, "nil error", nil)
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatGrid, "hidden")
	Info(CatGrid, "hidden")
	require.Empty(t, buf.String())

	Error(CatGrid, "shown")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatGrid, "muted")
	require.Empty(t, buf.String())
}

func TestLog_InitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatConfig, "loaded", "path", "config.yaml")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[config] loaded path=config.yaml")
}

func TestLog_ListenerReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Info(CatUI, "rendered")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "rendered")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
