package mmap

import (
	"github.com/cockroachdb/errors"
	mmapgo "github.com/edsrzf/mmap-go"
)

// Memory based on an anonymous private mapping, it lives outside the go heap
// so the GC never scans chunk contents.
type Memory struct {
	bytes uint64
	mmap  mmapgo.MMap
}

func NewMemory(bytes uint64) *Memory {
	return &Memory{bytes: bytes}
}

func (m *Memory) Attach() (err error) {
	if m.mmap != nil {
		return nil
	}
	if m.bytes == 0 {
		return errors.New("mmap: attach zero sized memory")
	}
	m.mmap, err = mmapgo.MapRegion(nil, int(m.bytes), mmapgo.RDWR, mmapgo.ANON, 0)
	if err != nil {
		m.mmap = nil
		return errors.Wrapf(err, "mmap: map %d bytes", m.bytes)
	}
	return nil
}

func (m *Memory) Detach() error {
	if m.mmap != nil {
		if err := m.mmap.Unmap(); err != nil {
			return err
		}
		m.mmap = nil
	}
	return nil
}

func (m *Memory) Bytes() []byte {
	return m.mmap
}

func (m *Memory) Size() uint64 {
	return m.bytes
}
