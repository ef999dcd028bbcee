package bytealloc

// Stats a snapshot of allocator bookkeeping.
type Stats struct {
	Size          int     // live slots
	FreeSlots     int     // slots waiting on the free list
	Chunks        int     // chunks backing storage
	ChunkSize     int     // slots per chunk
	SlotSize      int     // bytes per slot
	Capacity      int     // slots across all chunks
	BytesReserved uint64  // backing memory held by chunks
	Utilization   float64 // Size / Capacity, 0 without chunks
	Generation    uint64  // bumped by Clear, Trim and AdjustSlotSize
}

func (a *Allocator) Stats() Stats {
	a.locker.RLock()
	defer a.locker.RUnlock()
	s := Stats{
		Size:          a.meta.Size,
		FreeSlots:     a.free.len,
		Chunks:        len(a.table.chunks),
		ChunkSize:     a.table.chunkSize(),
		SlotSize:      a.table.slotSize,
		Capacity:      a.table.capacity(),
		BytesReserved: uint64(len(a.table.chunks)) * a.table.chunkBytes(),
		Generation:    a.gen.Load(),
	}
	if s.Capacity > 0 {
		s.Utilization = float64(s.Size) / float64(s.Capacity)
	}
	return s
}
