package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Info("hidden")
	logger.Warn("credential reset failed", "appId", "app-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "credential reset failed", entry["msg"])
	assert.Equal(t, "app-1", entry["appId"])
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("running command", "command", "az login")
	assert.Contains(t, buf.String(), "az login")
}

func TestIsInteractive(t *testing.T) {
	assert.False(t, IsInteractive(strings.NewReader("y\n")))
}
