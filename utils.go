package bytealloc

// getNBytes little-endian, zero extended
func getNBytes(b []byte, n int) int64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return int64(v)
}

// putNBytes stores the least significant n bytes of v, little-endian
func putNBytes(b []byte, v int64, n int) {
	u := uint64(v)
	for i := 0; i < n; i++ {
		b[i] = byte(u)
		u >>= 8
	}
}
