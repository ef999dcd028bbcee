package bytealloc

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

var (
	errDetached    = errors.Wrap(ErrIllegalState, "cursor has no slot")
	errInvalidated = errors.Wrap(ErrIllegalState, "cursor invalidated by a structural change, move it again")
)

// Cursor caches the resolved location of one slot so repeated accesses skip
// id validation and locking. Clear, Trim and AdjustSlotSize on the allocator
// invalidate it until the next MoveTo. A Cursor must not be shared between
// goroutines.
type Cursor struct {
	a    *Allocator
	id   int
	c    *chunk
	slot int
	buf  []byte // the slot
	gen  uint64
}

// MoveTo attaches the cursor to the live slot id, Unset detaches it.
func (cur *Cursor) MoveTo(id int) error {
	if id == Unset {
		cur.Clear()
		return nil
	}
	a := cur.a
	a.locker.RLock()
	defer a.locker.RUnlock()
	if err := a.checkID(id); err != nil {
		return err
	}
	c, slot, pos := a.table.locate(id)
	if !c.isLive(slot) {
		return deadSlotError(id)
	}
	size := a.table.slotSize
	cur.id = id
	cur.c = c
	cur.slot = slot
	cur.buf = c.buf[pos : pos+size : pos+size]
	cur.gen = a.gen.Load()
	return nil
}

// Clear detaches the cursor, the allocator is untouched.
func (cur *Cursor) Clear() {
	cur.id = Unset
	cur.c = nil
	cur.buf = nil
}

// Alloc allocates a slot and moves the cursor onto it.
func (cur *Cursor) Alloc() (int, error) {
	id, err := cur.a.Alloc()
	if err != nil {
		return Unset, err
	}
	if err = cur.MoveTo(id); err != nil {
		return Unset, err
	}
	return id, nil
}

func (cur *Cursor) HasChunk() bool {
	return cur.id != Unset
}

// ID the current slot id or Unset.
func (cur *Cursor) ID() int {
	return cur.id
}

func (cur *Cursor) check() error {
	if cur.id == Unset {
		return errDetached
	}
	if cur.gen != cur.a.gen.Load() {
		return errInvalidated
	}
	if !cur.c.isLive(cur.slot) {
		return deadSlotError(cur.id)
	}
	return nil
}

func (cur *Cursor) field(offset, width int) ([]byte, error) {
	if err := cur.check(); err != nil {
		return nil, err
	}
	if offset < 0 || offset > len(cur.buf)-width {
		return nil, offsetError(offset, width, len(cur.buf))
	}
	return cur.buf[offset : offset+width], nil
}

func (cur *Cursor) GetByte(offset int) (byte, error) {
	b, err := cur.field(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (cur *Cursor) SetByte(offset int, value byte) error {
	b, err := cur.field(offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (cur *Cursor) GetShort(offset int) (int16, error) {
	b, err := cur.field(offset, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (cur *Cursor) SetShort(offset int, value int16) error {
	b, err := cur.field(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, uint16(value))
	return nil
}

func (cur *Cursor) GetInt(offset int) (int32, error) {
	b, err := cur.field(offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (cur *Cursor) SetInt(offset int, value int32) error {
	b, err := cur.field(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(value))
	return nil
}

func (cur *Cursor) GetLong(offset int) (int64, error) {
	b, err := cur.field(offset, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (cur *Cursor) SetLong(offset int, value int64) error {
	b, err := cur.field(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, uint64(value))
	return nil
}

func (cur *Cursor) GetNBytes(offset, n int) (int64, error) {
	if err := cur.check(); err != nil {
		return 0, err
	}
	if n < 1 || n > 8 {
		return 0, countError(n, 8)
	}
	b, err := cur.field(offset, n)
	if err != nil {
		return 0, err
	}
	return getNBytes(b, n), nil
}

func (cur *Cursor) SetNBytes(offset int, value int64, n int) error {
	if err := cur.check(); err != nil {
		return err
	}
	if n < 1 || n > 8 {
		return countError(n, 8)
	}
	b, err := cur.field(offset, n)
	if err != nil {
		return err
	}
	putNBytes(b, value, n)
	return nil
}

func (cur *Cursor) WriteBytes(offset int, buf []byte, n int) error {
	b, err := cur.bulk(offset, buf, n)
	if err != nil {
		return err
	}
	copy(b, buf[:n])
	return nil
}

func (cur *Cursor) ReadBytes(offset int, buf []byte, n int) error {
	b, err := cur.bulk(offset, buf, n)
	if err != nil {
		return err
	}
	copy(buf[:n], b)
	return nil
}

func (cur *Cursor) bulk(offset int, buf []byte, n int) ([]byte, error) {
	if err := cur.check(); err != nil {
		return nil, err
	}
	if err := checkCount(n, len(cur.buf), buf); err != nil {
		return nil, err
	}
	return cur.field(offset, n)
}

// Checksum xxhash64 of the current slot.
func (cur *Cursor) Checksum() (uint64, error) {
	if err := cur.check(); err != nil {
		return 0, err
	}
	return xxHashBytes(cur.buf), nil
}
