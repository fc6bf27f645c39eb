// Package spinlock implements the contention-tolerant spinlock spec.md §5
// requires to guard the global allocator instance: it backs off rather than
// busy-waiting indefinitely, and is released on every exit path including
// error propagation.
//
// No repo in the example corpus implements a spinlock in Go. The closest
// grounding available, avikivity-gcc's libgo runtime2.go, documents the Go
// runtime's own futex-backed mutex in C — not something pure Go code can
// portably reach without cgo or platform-specific syscalls, and no
// maintained third-party spinlock package is part of this corpus or a
// recognized ecosystem default the way a logging or mmap library is. This
// package is therefore std-lib sync/atomic, the idiomatic Go rendition of
// "contention-tolerant spinlock": a compare-and-swap loop that yields the
// goroutine to the scheduler on contention instead of hammering the cache
// line, which is the userspace equivalent of the backoff spec.md asks for.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

const (
	unlocked uint32 = 0
	locked   uint32 = 1
)

// Spinlock is a process-wide mutual-exclusion lock with no associated
// state. The zero value is unlocked and ready for use.
type Spinlock struct {
	state uint32
}

// Lock blocks until the lock is acquired. Contended callers back off by
// yielding to the Go scheduler (runtime.Gosched) with brief exponential
// spinning between attempts, rather than busy-waiting unconditionally.
func (s *Spinlock) Lock() {
	backoff := 1
	for !atomic.CompareAndSwapUint32(&s.state, unlocked, locked) {
		for i := 0; i < backoff; i++ {
			// PAUSE-equivalent spin; runtime.Gosched below is the
			// real backoff once spinning stops paying off.
		}
		if backoff < 1024 {
			backoff *= 2
		} else {
			runtime.Gosched()
		}
	}
}

// TryLock attempts to acquire the lock without blocking, reporting whether
// it succeeded.
func (s *Spinlock) TryLock() bool {
	return atomic.CompareAndSwapUint32(&s.state, unlocked, locked)
}

// Unlock releases the lock. Callers must hold it.
func (s *Spinlock) Unlock() {
	atomic.StoreUint32(&s.state, unlocked)
}
