package bytealloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorState(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	assert.False(t, cur.HasChunk())
	assert.Equal(t, Unset, cur.ID())

	id, err := cur.Alloc()
	require.NoError(t, err)
	assert.True(t, cur.HasChunk())
	assert.Equal(t, id, cur.ID())
	assert.Equal(t, 1, a.Size())

	require.NoError(t, cur.MoveTo(Unset))
	assert.False(t, cur.HasChunk())
	assert.Equal(t, Unset, cur.ID())

	require.NoError(t, cur.MoveTo(id))
	assert.True(t, cur.HasChunk())
	cur.Clear()
	assert.False(t, cur.HasChunk())
	// clearing the cursor leaves the slot alone
	assert.Equal(t, 1, a.Size())
}

func TestCursorRoundTrip(t *testing.T) {
	a := newTestAllocator(t, 16, 4)
	cur := a.NewCursor()
	ids := allocN(t, a, 18)

	for _, id := range ids {
		require.NoError(t, cur.MoveTo(id))
		require.NoError(t, cur.SetByte(0, byte(id)))
		require.NoError(t, cur.SetShort(1, int16(-id)))
		require.NoError(t, cur.SetInt(3, int32(id*100000)))
		require.NoError(t, cur.SetNBytes(7, int64(id)<<8|0x55, 3))
		require.NoError(t, cur.SetLong(8, -int64(id)))
	}

	for _, id := range ids {
		require.NoError(t, cur.MoveTo(id))
		b, err := cur.GetByte(0)
		require.NoError(t, err)
		assert.Equal(t, byte(id), b)
		s, err := cur.GetShort(1)
		require.NoError(t, err)
		assert.Equal(t, int16(-id), s)
		i, err := cur.GetInt(3)
		require.NoError(t, err)
		assert.Equal(t, int32(id*100000), i)
		// the long at 8 overwrote the top byte of the 3 byte value
		n, err := cur.GetNBytes(7, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0x55), n)
		l, err := cur.GetLong(8)
		require.NoError(t, err)
		assert.Equal(t, -int64(id), l)

		// cursor and facade see the same bytes
		fl, err := a.GetLong(id, 8)
		require.NoError(t, err)
		assert.Equal(t, l, fl)
	}
}

func TestCursorBulk(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	id, err := cur.Alloc()
	require.NoError(t, err)

	require.NoError(t, cur.WriteBytes(0, []byte("abcdefgh"), 8))
	buf := make([]byte, 4)
	require.NoError(t, cur.ReadBytes(4, buf, 4))
	assert.Equal(t, []byte("efgh"), buf)

	out := make([]byte, 8)
	require.NoError(t, a.ReadBytes(id, 0, out, 8))
	assert.Equal(t, []byte("abcdefgh"), out)

	h, err := cur.Checksum()
	require.NoError(t, err)
	fh, err := a.Checksum(id)
	require.NoError(t, err)
	assert.Equal(t, fh, h)
}

func TestCursorDetachedAccess(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	allocN(t, a, 1)
	cur := a.NewCursor()
	buf := make([]byte, 8)

	errs := []error{
		func() error { _, err := cur.GetByte(0); return err }(),
		cur.SetByte(0, 1),
		func() error { _, err := cur.GetShort(0); return err }(),
		cur.SetShort(0, 1),
		func() error { _, err := cur.GetInt(0); return err }(),
		cur.SetInt(0, 1),
		func() error { _, err := cur.GetLong(0); return err }(),
		cur.SetLong(0, 1),
		func() error { _, err := cur.GetNBytes(0, 2); return err }(),
		cur.SetNBytes(0, 1, 2),
		cur.WriteBytes(0, buf, 8),
		cur.ReadBytes(0, buf, 8),
		func() error { _, err := cur.Checksum(); return err }(),
		// state is checked before offset and count
		func() error { _, err := cur.GetLong(-1); return err }(),
		cur.SetNBytes(0, 1, 0),
	}
	for i, err := range errs {
		assert.ErrorIs(t, err, ErrIllegalState, "accessor %d", i)
		assert.NotErrorIs(t, err, ErrIDOutOfBounds)
	}
}

func TestCursorMoveToErrors(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()

	err := cur.MoveTo(0)
	assert.ErrorIs(t, err, ErrIDOutOfBounds)
	assert.Contains(t, err.Error(), "id")
	assert.ErrorIs(t, cur.MoveTo(-2), ErrIDOutOfBounds)

	ids := allocN(t, a, 3)
	assert.ErrorIs(t, cur.MoveTo(3), ErrIDOutOfBounds)

	require.NoError(t, a.Free(ids[1]))
	err = cur.MoveTo(ids[1])
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.NotErrorIs(t, err, ErrIDOutOfBounds)
	assert.False(t, cur.HasChunk())

	// a failed move keeps the previous position
	require.NoError(t, cur.MoveTo(ids[2]))
	assert.Error(t, cur.MoveTo(ids[1]))
	assert.Equal(t, ids[2], cur.ID())
}

func TestCursorFreedUnderneath(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	id, err := cur.Alloc()
	require.NoError(t, err)
	require.NoError(t, a.Free(id))

	_, err = cur.GetInt(0)
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.ErrorIs(t, cur.SetInt(0, 1), ErrIllegalState)
}

func TestCursorOffsetAndCount(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	_, err := cur.Alloc()
	require.NoError(t, err)

	for _, off := range []int{-1, 8, 5} {
		_, err = cur.GetInt(off)
		assert.ErrorIs(t, err, ErrOffsetOutOfBounds, "offset %d", off)
		assert.Contains(t, err.Error(), "offset")
	}
	assert.ErrorIs(t, cur.SetLong(1, 0), ErrOffsetOutOfBounds)
	assert.ErrorIs(t, cur.SetByte(8, 0), ErrOffsetOutOfBounds)

	_, err = cur.GetNBytes(0, 9)
	assert.ErrorIs(t, err, ErrIllegalArgument)
	assert.ErrorIs(t, cur.WriteBytes(0, make([]byte, 16), 9), ErrIllegalArgument)
	assert.ErrorIs(t, cur.ReadBytes(0, make([]byte, 16), 0), ErrIllegalArgument)
}

func TestCursorInvalidatedByStructuralChange(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	id, err := cur.Alloc()
	require.NoError(t, err)
	require.NoError(t, cur.SetLong(0, 77))

	// growth keeps the cursor valid
	allocN(t, a, 20)
	v, err := cur.GetLong(0)
	require.NoError(t, err)
	assert.Equal(t, int64(77), v)

	require.NoError(t, a.AdjustSlotSize(16))
	_, err = cur.GetLong(0)
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.True(t, cur.HasChunk())

	require.NoError(t, cur.MoveTo(id))
	v, err = cur.GetLong(0)
	require.NoError(t, err)
	assert.Equal(t, int64(77), v)
	require.NoError(t, cur.SetLong(8, 1))

	for i := 16; i <= 20; i++ {
		require.NoError(t, a.Free(i))
	}
	require.True(t, a.Trim())
	_, err = cur.GetByte(0)
	assert.ErrorIs(t, err, ErrIllegalState)
	require.NoError(t, cur.MoveTo(id))

	a.Clear()
	_, err = cur.GetByte(0)
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.ErrorIs(t, cur.MoveTo(id), ErrIDOutOfBounds)
}

func TestCursorAllocAfterClose(t *testing.T) {
	a := newTestAllocator(t, 8, 4)
	cur := a.NewCursor()
	require.NoError(t, a.Close())
	id, err := cur.Alloc()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, Unset, id)
	assert.False(t, cur.HasChunk())
}
