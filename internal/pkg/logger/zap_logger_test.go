package logger

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.log")
	log := NewIsolatedLogger(path)

	for i := 0; i < 5; i++ {
		log.Info("WebSocket", fmt.Sprintf("frame %d", i), map[string]interface{}{"n": i})
	}
	log.Warn("WebSocket", "slow client", nil)
	log.Debug("WebSocket", "below file level", nil)
	_ = log.Sync()

	all, err := log.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "slow client", all[0].Message)
	assert.Equal(t, "WARN", all[0].Level)
	assert.Equal(t, "WebSocket", all[0].Module)
	assert.Equal(t, "frame 0", all[5].Message)

	page, err := log.GetLogs("INFO", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "frame 3", page[0].Message)
	assert.Equal(t, "frame 2", page[1].Message)

	entry, err := log.GetLogById(page[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "frame 3", entry.Message)

	_, err = log.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogsWithoutFile(t *testing.T) {
	log := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.log"))

	entries, err := log.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewNopLogger().GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
