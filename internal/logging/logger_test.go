package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, false)

	logger.Warn("target unresolved", "name", "Tool", "error", errors.New("boom"))
	logger.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "target unresolved", entry["message"])
	require.Equal(t, map[string]interface{}{"name": "Tool", "error": "boom"}, entry["fields"])
}

func TestDefaultLoggerDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	NewLogger(buf, true).Debug("kept", "path", "a.lnk")
	require.Contains(t, buf.String(), `"level":"DEBUG"`)
}

func TestFieldsToMap(t *testing.T) {
	require.Equal(t, map[string]interface{}{
		"key":           "value",
		"field_1":       1,
		"field_1_value": 2,
		"field_2":       "dangling",
	}, FieldsToMap([]interface{}{"key", "value", 1, 2, "dangling"}))
}

func TestRecorder(t *testing.T) {
	recorder := &Recorder{}
	var logger Logger = recorder

	logger.Info("one")
	logger.Warn("two", "k", "v")

	require.Len(t, recorder.Entries(""), 2)
	warnings := recorder.Entries("WARN")
	require.Len(t, warnings, 1)
	require.Equal(t, "v", warnings[0].Fields["k"])
}
