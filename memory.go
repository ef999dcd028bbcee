package bytealloc

import (
	"github.com/cockroachdb/errors"

	"github.com/leslie-fei/bytealloc/gom"
	"github.com/leslie-fei/bytealloc/mmap"
	"github.com/leslie-fei/bytealloc/shm"
)

const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// Memory 内存块抽象, one Memory backs exactly one chunk
type Memory interface {
	// Attach attach memory
	Attach() error
	// Detach detach memory, Bytes is invalid afterwards
	Detach() error
	// Bytes the attached memory
	Bytes() []byte
	// Size memory total size
	Size() uint64
}

// newMemory returns an unattached Memory of size bytes for the given type.
func newMemory(typ MemoryType, size uint64) (Memory, error) {
	switch typ {
	case GO:
		return gom.NewMemory(size), nil
	case MMAP:
		return mmap.NewMemory(size), nil
	case SHM:
		return shm.NewMemory(size), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "MemoryType: %d not support", typ)
	}
}

// attachMemory creates and attaches a zeroed Memory of size bytes.
func attachMemory(typ MemoryType, size uint64) (Memory, error) {
	mem, err := newMemory(typ, size)
	if err != nil {
		return nil, err
	}
	if err = mem.Attach(); err != nil {
		return nil, errors.Wrapf(err, "attach %d bytes of chunk memory", size)
	}
	return mem, nil
}
