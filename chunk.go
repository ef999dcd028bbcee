package bytealloc

import (
	"math/bits"

	"github.com/cockroachdb/errors"
)

// chunk 1 << chunkPower contiguous slots in one Memory, with a liveness bitmap
type chunk struct {
	mem  Memory
	buf  []byte
	live []uint64
	used int // live slots
}

func (c *chunk) isLive(slot int) bool {
	return c.live[slot>>6]&(1<<(uint(slot)&63)) != 0
}

func (c *chunk) setLive(slot int) {
	c.live[slot>>6] |= 1 << (uint(slot) & 63)
	c.used++
}

func (c *chunk) setDead(slot int) {
	c.live[slot>>6] &^= 1 << (uint(slot) & 63)
	c.used--
}

// liveCount recounts the bitmap, used by tests to check used.
func (c *chunk) liveCount() int {
	n := 0
	for _, w := range c.live {
		n += bits.OnesCount64(w)
	}
	return n
}

// chunkTable 按 id 计算位置, chunk = id >> chunkPower, slot = id & mask
type chunkTable struct {
	chunks     []*chunk
	slotSize   int
	chunkPower uint
	memType    MemoryType
}

func (t *chunkTable) chunkSize() int {
	return 1 << t.chunkPower
}

func (t *chunkTable) capacity() int {
	return len(t.chunks) << t.chunkPower
}

func (t *chunkTable) chunkBytes() uint64 {
	return uint64(t.slotSize) << t.chunkPower
}

// locate returns the chunk holding id, the slot index in it and the slot's byte offset.
// id must be below capacity.
func (t *chunkTable) locate(id int) (*chunk, int, int) {
	c := t.chunks[id>>t.chunkPower]
	slot := id & (t.chunkSize() - 1)
	return c, slot, slot * t.slotSize
}

// slotBytes the full slot of id, id must be below capacity.
func (t *chunkTable) slotBytes(id int) []byte {
	c, _, pos := t.locate(id)
	return c.buf[pos : pos+t.slotSize : pos+t.slotSize]
}

func (t *chunkTable) newChunk(slotSize int) (*chunk, error) {
	mem, err := attachMemory(t.memType, uint64(slotSize)<<t.chunkPower)
	if err != nil {
		return nil, err
	}
	return &chunk{
		mem:  mem,
		buf:  mem.Bytes(),
		live: make([]uint64, (t.chunkSize()+63)/64),
	}, nil
}

// grow appends one empty chunk.
func (t *chunkTable) grow() error {
	c, err := t.newChunk(t.slotSize)
	if err != nil {
		return err
	}
	t.chunks = append(t.chunks, c)
	return nil
}

// truncate detaches every chunk from index keep onwards.
func (t *chunkTable) truncate(keep int) error {
	var errs error
	for i := keep; i < len(t.chunks); i++ {
		if err := t.chunks[i].mem.Detach(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		t.chunks[i] = nil
	}
	t.chunks = t.chunks[:keep]
	return errs
}

// resized copies the table into chunks of newSize byte slots, keeping the first
// min(slotSize, newSize) bytes of every slot. On error nothing is retained.
func (t *chunkTable) resized(newSize int) (*chunkTable, error) {
	nt := &chunkTable{
		chunks:     make([]*chunk, 0, len(t.chunks)),
		slotSize:   newSize,
		chunkPower: t.chunkPower,
		memType:    t.memType,
	}
	keep := min(t.slotSize, newSize)
	for _, old := range t.chunks {
		c, err := nt.newChunk(newSize)
		if err != nil {
			_ = nt.truncate(0)
			return nil, err
		}
		for slot := 0; slot < t.chunkSize(); slot++ {
			copy(c.buf[slot*newSize:slot*newSize+keep], old.buf[slot*t.slotSize:])
		}
		copy(c.live, old.live)
		c.used = old.used
		nt.chunks = append(nt.chunks, c)
	}
	return nt, nil
}
