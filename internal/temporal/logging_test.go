package temporal_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/log"

	"github.com/stanstork/notifications/internal/temporal"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestZerologAdapterKeyvals(t *testing.T) {
	var buf bytes.Buffer
	adapter := temporal.NewZerologAdapter(zerolog.New(&buf))

	adapter.Info("started", "WorkflowID", "wf-1", "Attempt", 2)
	entry := lastEntry(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "started", entry["message"])
	assert.Equal(t, "temporal-sdk", entry["component"])
	assert.Equal(t, "wf-1", entry["WorkflowID"])
	assert.Equal(t, float64(2), entry["Attempt"])

	adapter.Warn("odd", "dangling")
	assert.Equal(t, "MISSING_VALUE", lastEntry(t, &buf)["dangling"])
}

func TestZerologAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	var logger log.Logger = temporal.NewZerologAdapter(zerolog.New(&buf))

	child := log.With(logger, "Namespace", "default")
	child.Error("failed", "error", "boom")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "default", entry["Namespace"])
	assert.Equal(t, "boom", entry["error"])
}
