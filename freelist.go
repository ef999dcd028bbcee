package bytealloc

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	// linkSize bytes of a dead slot holding the next free id
	linkSize  = 4
	endOfList = -1
)

// freeList 空闲 slot 单链表, the link lives in the leading bytes of each dead slot
type freeList struct {
	head int
	len  int
}

func (f *freeList) reset() {
	f.head = endOfList
	f.len = 0
}

func readLink(slot []byte) int {
	return int(int32(binary.LittleEndian.Uint32(slot)))
}

func writeLink(slot []byte, next int) {
	binary.LittleEndian.PutUint32(slot, uint32(int32(next)))
}

// push 头插法
func (f *freeList) push(t *chunkTable, id int) {
	writeLink(t.slotBytes(id), f.head)
	f.head = id
	f.len++
}

func (f *freeList) pop(t *chunkTable) (int, error) {
	if f.len == 0 {
		return endOfList, errors.AssertionFailedf("pop from empty free list")
	}
	id := f.head
	if id < 0 || id >= t.capacity() {
		return endOfList, errors.AssertionFailedf("free list head %d outside capacity %d", id, t.capacity())
	}
	f.head = readLink(t.slotBytes(id))
	f.len--
	return id, nil
}

// unlinkFrom drops every id >= limit, keeping the order of the rest.
// The ids being dropped may live in chunks about to be released, so their
// links are read before truncation.
func (f *freeList) unlinkFrom(t *chunkTable, limit int) {
	prev := endOfList
	for id := f.head; id != endOfList; {
		next := readLink(t.slotBytes(id))
		if id >= limit {
			if prev == endOfList {
				f.head = next
			} else {
				writeLink(t.slotBytes(prev), next)
			}
			f.len--
		} else {
			prev = id
		}
		id = next
	}
}

// each visits ids from head to tail.
func (f *freeList) each(t *chunkTable, fn func(id int) bool) {
	for id := f.head; id != endOfList; id = readLink(t.slotBytes(id)) {
		if !fn(id) {
			return
		}
	}
}
