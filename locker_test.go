package bytealloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLocker(t *testing.T) {
	for _, typ := range []LockType{LockNone, LockMutex, LockSpin} {
		l, ok := newLocker(typ)
		assert.True(t, ok, typ.String())
		assert.NotNil(t, l)
	}
	_, ok := newLocker(LockType(42))
	assert.False(t, ok)
	assert.Equal(t, "LockType(42)", LockType(42).String())
}

func TestSpinLocker(t *testing.T) {
	l := &spinLocker{}
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Lock()
				counter++
				l.Unlock()
				l.RLock()
				_ = counter
				l.RUnlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, counter)

	assert.Panics(t, func() { l.Unlock() })
	assert.Panics(t, func() { l.RUnlock() })
}
