package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestInfo_FormatsKeyValues(t *testing.T) {
	buf := capture(t)
	Info("import done", "inserted", 3, "vault", "/tmp/my notes")

	out := buf.String()
	require.Contains(t, out, "[INFO] import done")
	require.Contains(t, out, "inserted=3")
	require.Contains(t, out, `vault="/tmp/my notes"`)
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Debug("hidden")
	Info("hidden too")
	Warn("orphaned sub-task", "title", "x")
	Error("write failed", errors.New("boom"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[WARN] orphaned sub-task title=x")
	require.Contains(t, out, "[ERROR] write failed err=boom")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
