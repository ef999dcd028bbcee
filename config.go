package bytealloc

import (
	"io"
	"log/slog"
	"math"
)

type MemoryType int

const (
	GO   MemoryType = 1
	SHM  MemoryType = 2
	MMAP MemoryType = 3
)

func (t MemoryType) String() string {
	switch t {
	case GO:
		return "go"
	case SHM:
		return "shm"
	case MMAP:
		return "mmap"
	}
	return "unknown"
}

const (
	// MinSlotSize room for the free-list link embedded in a dead slot.
	MinSlotSize   = linkSize
	MinChunkPower = 1
	MaxChunkPower = 24
	// MaxSlotID ids are stored as int32 free-list links.
	MaxSlotID = math.MaxInt32
	// Unset the id of a detached cursor.
	Unset = -1
)

type Config struct {
	// bytes per slot, at least MinSlotSize
	SlotSize int
	// slots per chunk is 1 << ChunkPower
	ChunkPower int
	// locking discipline for structural bookkeeping
	LockType LockType
	// chunk backing memory in GO SHM MMAP
	MemoryType MemoryType
	// structural events are logged at debug level, nil discards
	Logger *slog.Logger
}

func DefaultConfig() *Config {
	var defaultConfig = &Config{
		SlotSize:   16,
		ChunkPower: 10,
		LockType:   LockMutex,
		MemoryType: GO,
	}
	return defaultConfig
}

// mergeConfig fills zero fields of c from DefaultConfig.
func mergeConfig(c *Config) *Config {
	config := DefaultConfig()
	if c == nil {
		config.Logger = discardLogger
		return config
	}
	if c.SlotSize != 0 {
		config.SlotSize = c.SlotSize
	}
	if c.ChunkPower != 0 {
		config.ChunkPower = c.ChunkPower
	}
	if c.LockType != 0 {
		config.LockType = c.LockType
	}
	if c.MemoryType != 0 {
		config.MemoryType = c.MemoryType
	}
	config.Logger = c.Logger
	if config.Logger == nil {
		config.Logger = discardLogger
	}
	return config
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
