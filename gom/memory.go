package gom

import "github.com/cockroachdb/errors"

// Memory based on go memory
type Memory struct {
	mem   []byte
	bytes uint64
}

func NewMemory(bytes uint64) *Memory {
	return &Memory{bytes: bytes}
}

func (m *Memory) Attach() error {
	if m.mem == nil {
		if m.bytes == 0 {
			return errors.New("gom: attach zero sized memory")
		}
		m.mem = make([]byte, m.bytes)
	}
	return nil
}

func (m *Memory) Detach() error {
	m.mem = nil
	return nil
}

func (m *Memory) Bytes() []byte {
	return m.mem
}

func (m *Memory) Size() uint64 {
	return m.bytes
}
