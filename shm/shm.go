package shm

import "github.com/cockroachdb/errors"

// ErrUnsupported returned by Attach on platforms without SysV shared memory.
var ErrUnsupported = errors.New("shm: shared memory not supported on this platform")

// Memory 基于操作系统共享内存实现, one private segment per Memory
type Memory struct {
	shmid int    // shared memory handle
	bytes uint64 // shared memory size
	data  []byte // attached segment
}

func NewMemory(bytes uint64) *Memory {
	return &Memory{shmid: -1, bytes: bytes}
}

func (m *Memory) Handle() int {
	return m.shmid
}

func (m *Memory) Size() uint64 {
	return m.bytes
}

func (m *Memory) Bytes() []byte {
	return m.data
}
