package bytealloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	size := uint64(4096)

	typs := []MemoryType{GO, SHM, MMAP}
	for _, typ := range typs {
		mem, err := attachMemory(typ, size)
		if typ == SHM && err != nil {
			t.Logf("skip shm: %v", err)
			continue
		}
		if err != nil {
			t.Fatal(err)
		}

		buf := mem.Bytes()
		assert.Len(t, buf, int(size))
		buf[0] = 0x7f
		assert.Equal(t, byte(0x7f), mem.Bytes()[0])
		assert.Equal(t, size, mem.Size())

		if err = mem.Detach(); err != nil {
			t.Fatal(err)
		}
	}

	_, err := attachMemory(MemoryType(99), size)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
