package bytealloc

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// LockType selects the locking discipline of an Allocator, fixed at construction.
type LockType int

const (
	// LockNone single goroutine use only.
	LockNone LockType = iota + 1
	// LockMutex sync.RWMutex, structural ops exclusive, accessors shared.
	LockMutex
	// LockSpin CAS spin lock, for short critical sections under low contention.
	LockSpin
)

func (t LockType) String() string {
	switch t {
	case LockNone:
		return "none"
	case LockMutex:
		return "mutex"
	case LockSpin:
		return "spin"
	}
	return fmt.Sprintf("LockType(%d)", int(t))
}

type Locker interface {
	sync.Locker
	RLock()
	RUnlock()
}

func newLocker(t LockType) (Locker, bool) {
	switch t {
	case LockNone:
		return &nopLocker{}, true
	case LockMutex:
		return &sync.RWMutex{}, true
	case LockSpin:
		return &spinLocker{}, true
	}
	return nil, false
}

// spinLocker writer flag plus reader count, writers wait for readers to drain
type spinLocker struct {
	write int32
	read  int32
}

func (l *spinLocker) Lock() {
	for !atomic.CompareAndSwapInt32(&l.write, 0, 1) {
		runtime.Gosched()
	}
	for atomic.LoadInt32(&l.read) != 0 {
		runtime.Gosched()
	}
}

func (l *spinLocker) Unlock() {
	if !atomic.CompareAndSwapInt32(&l.write, 1, 0) {
		panic("unlock an unlocked-lock")
	}
}

func (l *spinLocker) RLock() {
	for {
		for atomic.LoadInt32(&l.write) != 0 {
			runtime.Gosched()
		}
		atomic.AddInt32(&l.read, 1)
		if atomic.LoadInt32(&l.write) == 0 {
			return
		}
		// a writer got in between, back off
		atomic.AddInt32(&l.read, -1)
	}
}

func (l *spinLocker) RUnlock() {
	if atomic.AddInt32(&l.read, -1) < 0 {
		panic("runlock an unlocked-lock")
	}
}

type nopLocker struct{}

func (n *nopLocker) Lock() {
}

func (n *nopLocker) Unlock() {
}

func (n *nopLocker) RLock() {
}

func (n *nopLocker) RUnlock() {
}
