package bytealloc

// metadata structural counters of an Allocator
type metadata struct {
	Size   int // live slots
	NextID int // ids >= NextID were never handed out
	Closed bool
}

func (m *metadata) reset() {
	m.Size = 0
	m.NextID = 0
}
