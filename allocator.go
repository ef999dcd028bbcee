package bytealloc

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Allocator hands out fixed size slots of raw bytes addressed by int ids.
//
// Storage is a list of chunks, each holding 1 << chunkPower slots. Dead slots
// keep the id of the next free slot in their first bytes. Alloc, Free, Clear,
// Trim and AdjustSlotSize run under the write side of the configured Locker,
// accessors under the read side. Accessors never serialise each other, so
// goroutines racing on the content of the same id must coordinate themselves.
type Allocator struct {
	locker   Locker
	lockType LockType
	logger   *slog.Logger
	table    chunkTable
	free     freeList
	meta     metadata
	gen      atomic.Uint64
}

// New creates an Allocator backed by go memory. Every argument is taken as
// given, a zero slot size, chunk power or lock type is rejected.
func New(slotSize, chunkPower int, lockType LockType) (*Allocator, error) {
	return newAllocator(&Config{
		SlotSize:   slotSize,
		ChunkPower: chunkPower,
		LockType:   lockType,
		MemoryType: GO,
		Logger:     discardLogger,
	})
}

// NewWithConfig creates an Allocator from c. Zero fields of c, or a nil c,
// take their value from DefaultConfig.
func NewWithConfig(c *Config) (*Allocator, error) {
	return newAllocator(mergeConfig(c))
}

func newAllocator(config *Config) (*Allocator, error) {
	if config.SlotSize < MinSlotSize {
		return nil, errors.Wrapf(ErrInvalidArgument, "slot size %d below minimum %d", config.SlotSize, MinSlotSize)
	}
	if config.ChunkPower < MinChunkPower || config.ChunkPower > MaxChunkPower {
		return nil, errors.Wrapf(ErrInvalidArgument, "chunk power %d not in [%d, %d]", config.ChunkPower, MinChunkPower, MaxChunkPower)
	}
	if err := checkChunkBytes(config.SlotSize, config.ChunkPower); err != nil {
		return nil, err
	}
	locker, ok := newLocker(config.LockType)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown lock type %d", int(config.LockType))
	}
	if _, err := newMemory(config.MemoryType, 0); err != nil {
		return nil, err
	}

	a := &Allocator{
		locker:   locker,
		lockType: config.LockType,
		logger:   config.Logger,
		table: chunkTable{
			slotSize:   config.SlotSize,
			chunkPower: uint(config.ChunkPower),
			memType:    config.MemoryType,
		},
	}
	a.free.reset()
	return a, nil
}

func checkChunkBytes(slotSize, chunkPower int) error {
	if slotSize > math.MaxInt32>>chunkPower {
		return errors.Wrapf(ErrInvalidArgument, "slot size %d too large for %d slots per chunk", slotSize, 1<<chunkPower)
	}
	return nil
}

// Alloc returns the id of a live slot: the most recently freed one, else the
// next unused slot, growing storage by one chunk when all chunks are full.
// A reused slot is zeroed.
func (a *Allocator) Alloc() (int, error) {
	a.locker.Lock()
	defer a.locker.Unlock()
	if a.meta.Closed {
		return Unset, ErrClosed
	}

	var id int
	if a.free.len > 0 {
		var err error
		if id, err = a.free.pop(&a.table); err != nil {
			return Unset, err
		}
		clear(a.table.slotBytes(id))
	} else {
		if a.meta.NextID == a.table.capacity() {
			if a.table.capacity() > MaxSlotID-a.table.chunkSize()+1 {
				return Unset, ErrExhausted
			}
			if err := a.table.grow(); err != nil {
				return Unset, err
			}
			a.logger.Debug("chunk added",
				slog.Int("chunks", len(a.table.chunks)),
				slog.String("memory", a.table.memType.String()))
		}
		id = a.meta.NextID
		a.meta.NextID++
	}

	c, slot, _ := a.table.locate(id)
	c.setLive(slot)
	a.meta.Size++
	return id, nil
}

// Free returns id to the free list. Freeing an id that is not live is an
// ErrIDOutOfBounds error and leaves the allocator unchanged.
func (a *Allocator) Free(id int) error {
	a.locker.Lock()
	defer a.locker.Unlock()
	if err := a.checkID(id); err != nil {
		return err
	}
	c, slot, _ := a.table.locate(id)
	if !c.isLive(slot) {
		return errors.Wrapf(ErrIDOutOfBounds, "id %d is not allocated", id)
	}
	c.setDead(slot)
	a.free.push(&a.table, id)
	a.meta.Size--
	return nil
}

func (a *Allocator) checkID(id int) error {
	if id < 0 || id >= a.meta.NextID || id >= a.table.capacity() {
		return idError(id, a.meta.NextID)
	}
	return nil
}

func (a *Allocator) checkOffset(offset, width int) error {
	if offset < 0 || offset > a.table.slotSize-width {
		return offsetError(offset, width, a.table.slotSize)
	}
	return nil
}

// field validates id and offset and returns the width bytes at offset in the
// live slot id. The caller holds the read lock.
func (a *Allocator) field(id, offset, width int) ([]byte, error) {
	if err := a.checkID(id); err != nil {
		return nil, err
	}
	if err := a.checkOffset(offset, width); err != nil {
		return nil, err
	}
	c, slot, pos := a.table.locate(id)
	if !c.isLive(slot) {
		return nil, deadSlotError(id)
	}
	pos += offset
	return c.buf[pos : pos+width : pos+width], nil
}

func (a *Allocator) GetByte(id, offset int) (byte, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (a *Allocator) SetByte(id, offset int, value byte) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (a *Allocator) GetShort(id, offset int) (int16, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (a *Allocator) SetShort(id, offset int, value int16) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, uint16(value))
	return nil
}

func (a *Allocator) GetInt(id, offset int) (int32, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (a *Allocator) SetInt(id, offset int, value int32) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(value))
	return nil
}

func (a *Allocator) GetLong(id, offset int) (int64, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (a *Allocator) SetLong(id, offset int, value int64) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, uint64(value))
	return nil
}

// GetNBytes reads n bytes at offset as a zero extended little-endian value, n in [1, 8].
func (a *Allocator) GetNBytes(id, offset, n int) (int64, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	if err := a.checkID(id); err != nil {
		return 0, err
	}
	if n < 1 || n > 8 {
		return 0, countError(n, 8)
	}
	b, err := a.field(id, offset, n)
	if err != nil {
		return 0, err
	}
	return getNBytes(b, n), nil
}

// SetNBytes writes the least significant n bytes of value at offset, n in [1, 8].
func (a *Allocator) SetNBytes(id, offset int, value int64, n int) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	if err := a.checkID(id); err != nil {
		return err
	}
	if n < 1 || n > 8 {
		return countError(n, 8)
	}
	b, err := a.field(id, offset, n)
	if err != nil {
		return err
	}
	putNBytes(b, value, n)
	return nil
}

// WriteBytes copies buf[:n] into the slot at offset, n in [1, SlotSize()].
func (a *Allocator) WriteBytes(id, offset int, buf []byte, n int) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.bulk(id, offset, buf, n)
	if err != nil {
		return err
	}
	copy(b, buf[:n])
	return nil
}

// ReadBytes copies n bytes at offset into buf, n in [1, SlotSize()].
func (a *Allocator) ReadBytes(id, offset int, buf []byte, n int) error {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.bulk(id, offset, buf, n)
	if err != nil {
		return err
	}
	copy(buf[:n], b)
	return nil
}

func (a *Allocator) bulk(id, offset int, buf []byte, n int) ([]byte, error) {
	if err := a.checkID(id); err != nil {
		return nil, err
	}
	if err := checkCount(n, a.table.slotSize, buf); err != nil {
		return nil, err
	}
	return a.field(id, offset, n)
}

func checkCount(n, slotSize int, buf []byte) error {
	if n < 1 || n > slotSize {
		return countError(n, slotSize)
	}
	if n > len(buf) {
		return errors.Wrapf(ErrIllegalArgument, "byte count %d exceeds buffer length %d", n, len(buf))
	}
	return nil
}

// Checksum xxhash64 of the whole live slot.
func (a *Allocator) Checksum(id int) (uint64, error) {
	a.locker.RLock()
	defer a.locker.RUnlock()
	b, err := a.field(id, 0, a.table.slotSize)
	if err != nil {
		return 0, err
	}
	return xxHashBytes(b), nil
}

// Size live slots.
func (a *Allocator) Size() int {
	a.locker.RLock()
	defer a.locker.RUnlock()
	return a.meta.Size
}

// ChunksUsed chunks currently backing storage.
func (a *Allocator) ChunksUsed() int {
	a.locker.RLock()
	defer a.locker.RUnlock()
	return len(a.table.chunks)
}

// ChunkSize slots per chunk.
func (a *Allocator) ChunkSize() int {
	return a.table.chunkSize()
}

func (a *Allocator) SlotSize() int {
	a.locker.RLock()
	defer a.locker.RUnlock()
	return a.table.slotSize
}

func (a *Allocator) LockType() LockType {
	return a.lockType
}

// Clear releases all chunks, leaving the allocator as freshly constructed.
// Outstanding cursors are invalidated.
func (a *Allocator) Clear() {
	a.locker.Lock()
	defer a.locker.Unlock()
	a.clear()
}

func (a *Allocator) clear() {
	chunks := len(a.table.chunks)
	if err := a.table.truncate(0); err != nil {
		a.logger.Warn("release chunk memory", slog.Any("error", err))
	}
	a.free.reset()
	a.meta.reset()
	a.gen.Add(1)
	a.logger.Debug("allocator cleared", slog.Int("chunks", chunks))
}

// Close clears the allocator, later Alloc calls fail with ErrClosed.
func (a *Allocator) Close() error {
	a.locker.Lock()
	defer a.locker.Unlock()
	if a.meta.Closed {
		return nil
	}
	a.clear()
	a.meta.Closed = true
	return nil
}

// Trim releases trailing chunks without live slots and reports whether any was released.
// A chunk below a chunk that is still in use is never released.
func (a *Allocator) Trim() bool {
	a.locker.Lock()
	defer a.locker.Unlock()

	n := len(a.table.chunks)
	keep := n
	for keep > 0 && a.table.chunks[keep-1].used == 0 {
		keep--
	}
	if keep == n {
		return false
	}

	limit := keep << a.table.chunkPower
	a.free.unlinkFrom(&a.table, limit)
	if err := a.table.truncate(keep); err != nil {
		a.logger.Warn("release chunk memory", slog.Any("error", err))
	}
	if a.meta.NextID > limit {
		a.meta.NextID = limit
	}
	a.gen.Add(1)
	a.logger.Debug("chunks trimmed", slog.Int("released", n-keep), slog.Int("chunks", keep))
	return true
}

// AdjustSlotSize rebuilds storage with newSize byte slots. Each slot keeps its
// first min(SlotSize(), newSize) bytes, grown slots are zero filled. On error
// the allocator is unchanged. Outstanding cursors are invalidated.
func (a *Allocator) AdjustSlotSize(newSize int) error {
	a.locker.Lock()
	defer a.locker.Unlock()
	if newSize < MinSlotSize {
		return errors.Wrapf(ErrInvalidArgument, "slot size %d below minimum %d", newSize, MinSlotSize)
	}
	if err := checkChunkBytes(newSize, int(a.table.chunkPower)); err != nil {
		return err
	}
	oldSize := a.table.slotSize
	if newSize == oldSize {
		return nil
	}

	nt, err := a.table.resized(newSize)
	if err != nil {
		return err
	}
	if err = a.table.truncate(0); err != nil {
		a.logger.Warn("release chunk memory", slog.Any("error", err))
	}
	a.table = *nt
	a.gen.Add(1)
	a.logger.Debug("slot size adjusted",
		slog.Int("from", oldSize),
		slog.Int("to", newSize),
		slog.Int("chunks", len(a.table.chunks)))
	return nil
}

// NewCursor returns a detached cursor over a.
func (a *Allocator) NewCursor() *Cursor {
	return &Cursor{a: a, id: Unset}
}
