package bytealloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfig(t *testing.T) {
	c := mergeConfig(nil)
	assert.Equal(t, DefaultConfig().SlotSize, c.SlotSize)
	assert.NotNil(t, c.Logger)

	c = mergeConfig(&Config{SlotSize: 32, LockType: LockSpin})
	assert.Equal(t, 32, c.SlotSize)
	assert.Equal(t, DefaultConfig().ChunkPower, c.ChunkPower)
	assert.Equal(t, LockSpin, c.LockType)
	assert.Equal(t, GO, c.MemoryType)
	assert.NotNil(t, c.Logger)
}

func TestMemoryTypeString(t *testing.T) {
	assert.Equal(t, "go", GO.String())
	assert.Equal(t, "shm", SHM.String())
	assert.Equal(t, "mmap", MMAP.String())
	assert.Equal(t, "unknown", MemoryType(0).String())
}

func TestLoggerReceivesStructuralEvents(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a, err := NewWithConfig(&Config{SlotSize: 8, ChunkPower: 2, LockType: LockNone, Logger: logger})
	require.NoError(t, err)

	ids := allocN(t, a, 5)
	require.NoError(t, a.Free(ids[4]))
	require.True(t, a.Trim())
	require.NoError(t, a.AdjustSlotSize(16))
	a.Clear()

	logs := out.String()
	assert.Contains(t, logs, "chunk added")
	assert.Contains(t, logs, "chunks trimmed")
	assert.Contains(t, logs, "slot size adjusted")
	assert.Contains(t, logs, "allocator cleared")
}
