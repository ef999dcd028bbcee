package gom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	mem := NewMemory(1024)
	assert.Nil(t, mem.Bytes())
	assert.NoError(t, mem.Attach())

	buf := mem.Bytes()
	assert.Len(t, buf, 1024)
	buf[1023] = 7

	// attach twice keeps the same buffer
	assert.NoError(t, mem.Attach())
	assert.Equal(t, byte(7), mem.Bytes()[1023])
	assert.Equal(t, uint64(1024), mem.Size())

	assert.NoError(t, mem.Detach())
	assert.Nil(t, mem.Bytes())

	assert.Error(t, NewMemory(0).Attach())
}
