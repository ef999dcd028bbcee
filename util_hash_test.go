package bytealloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXXHashBytes(t *testing.T) {
	h1 := xxHashBytes([]byte("1"))
	h2 := xxHashBytes([]byte("11111111111111111111111111111111111111111111111111111"))
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, h1, xxHashBytes([]byte("1")))
}
