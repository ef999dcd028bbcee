package bytealloc

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidArgument construction or resize parameters out of range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIDOutOfBounds id negative, never allocated or beyond capacity.
	ErrIDOutOfBounds = errors.New("id out of bounds")
	// ErrOffsetOutOfBounds offset negative or offset+width past the slot end.
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")
	// ErrIllegalArgument a byte count outside its legal range.
	ErrIllegalArgument = errors.New("illegal argument")
	// ErrIllegalState detached or invalidated cursor, or a dead slot.
	ErrIllegalState = errors.New("illegal state")
	ErrExhausted    = errors.New("slot id space exhausted")
	ErrClosed       = errors.New("allocator closed")
)

func idError(id, limit int) error {
	return errors.Wrapf(ErrIDOutOfBounds, "id %d not in [0, %d)", id, limit)
}

func offsetError(offset, width, slotSize int) error {
	return errors.Wrapf(ErrOffsetOutOfBounds, "offset %d with width %d exceeds slot size %d", offset, width, slotSize)
}

func countError(n, max int) error {
	return errors.Wrapf(ErrIllegalArgument, "byte count %d not in [1, %d]", n, max)
}

func deadSlotError(id int) error {
	return errors.Wrapf(ErrIllegalState, "slot %d is not allocated", id)
}
