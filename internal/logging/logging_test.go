package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandlerJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(&buf, false, false)
	h.Info("session created", "id", "abc")
	h.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "session created", rec["msg"])
	assert.Equal(t, "abc", rec["id"])
}

func TestNewHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(&buf, true, true)
	h.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestTraceDebugAndInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trace.log")
	tr, err := OpenTrace(path, false)
	require.NoError(t, err)
	defer tr.Close()

	tr.Info("user: show me the databases")
	tr.Debug("command-output", "admin   40KB\nlocal   72KB")

	out, err := tr.Read()
	require.NoError(t, err)
	assert.Contains(t, out, "user: show me the databases")
	assert.Contains(t, out, "[command-output]: admin   40KB")
	assert.Contains(t, out, "local   72KB")
	assert.True(t, filepath.IsAbs(tr.Path()))
}

func TestTraceResetOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	require.NoError(t, os.WriteFile(path, []byte("old run\n"), 0o644))

	tr, err := OpenTrace(path, false)
	require.NoError(t, err)
	tr.Info("second run")
	require.NoError(t, tr.Close())

	out, err := ReadTrace(path)
	require.NoError(t, err)
	assert.Contains(t, out, "old run")

	tr, err = OpenTrace(path, true)
	require.NoError(t, err)
	tr.Info("fresh")
	require.NoError(t, tr.Close())

	out, err = ReadTrace(path)
	require.NoError(t, err)
	assert.NotContains(t, out, "old run")
	assert.Contains(t, out, "fresh")
}

func TestNilTraceIsNoop(t *testing.T) {
	var tr *Trace
	tr.Debug("x", "y")
	tr.Info("z")
	assert.Empty(t, tr.Path())
	assert.NoError(t, tr.Close())

	out, err := tr.Read()
	require.NoError(t, err)
	assert.Equal(t, NoTraceYet, out)
}

func TestReadTraceMissing(t *testing.T) {
	out, err := ReadTrace(filepath.Join(t.TempDir(), "none.log"))
	require.NoError(t, err)
	assert.Equal(t, NoTraceYet, out)
}

func TestFormatDebugIndents(t *testing.T) {
	assert.Equal(t, "[llm]: one\n       two", formatDebug("llm", "one\ntwo"))
	assert.Equal(t, "[x]: single", formatDebug("x", "single"))
}
