package bytealloc

import (
	"github.com/cespare/xxhash/v2"
)

var xxHashBytes = func(b []byte) uint64 {
	return xxhash.Sum64(b)
}
