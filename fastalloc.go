// Package fastalloc is the segregated-fits, page-backed slab allocator
// that serves as the fast-path memory core of a tracing garbage collector
// (spec.md §1). It wires two allocator instances of identical shape but
// different synchronization discipline on top of package gcx: a global
// instance guarded by a contention-tolerant spinlock (package spinlock),
// and one thread-local, unlocked instance per OS thread, plus the
// size-class-specialized fast-path entry points spec.md §6 calls the
// "optimization target whose existence justifies the segregated-pool
// design."
//
// Register with a host runtime's collector-selection configuration via
// config.Register in this package's init, under the name "fastalloc", per
// spec.md §6.
package fastalloc

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"fastalloc/config"
	"fastalloc/fault"
	"fastalloc/gcx"
	"fastalloc/poolmatrix"
	"fastalloc/sizeclass"
	"fastalloc/spinlock"
)

// Attr re-exports poolmatrix.Attr, the attribute-bit type carried on every
// allocation request (spec.md §6).
type Attr = poolmatrix.Attr

// NoScan re-exports poolmatrix.NoScan: set this bit to allocate from the
// unscanned pool.
const NoScan = poolmatrix.NoScan

// BlockInfo re-exports poolmatrix.BlockInfo: the three-field (base, size,
// attr) record spec.md §6 specifies.
type BlockInfo = poolmatrix.BlockInfo

// Range re-exports gcx.Range.
type Range = gcx.Range

// Stats re-exports gcx.Stats.
type Stats = gcx.Stats

func init() {
	config.Register("fastalloc", func() any { return struct{}{} })
}

var (
	globalLock       spinlock.Spinlock
	gGcx             = gcx.New("global", true)
	finalizerRunning atomic.Bool
)

// SetFinalizerRunning records whether a finalizer is currently executing.
// The flag is process-wide, not per thread. The (out-of-scope)
// finalizer-invocation collaborator calls this around running a finalizer;
// every attempt to acquire the global lock, from any thread, while the
// flag is set is an invalid-memory-operation, per spec.md §5's
// finalization reentrancy rule.
func SetFinalizerRunning(running bool) {
	finalizerRunning.Store(running)
}

// acquireGlobal acquires the global spinlock, first checking the
// finalizer-reentrancy guard. It panics with fault.ErrInvalidMemoryOperation
// rather than deadlocking if a finalizer is on the stack, per spec.md §5.
func acquireGlobal() {
	if finalizerRunning.Load() {
		panic(fault.ErrInvalidMemoryOperation)
	}
	globalLock.Lock()
}

// GlobalMalloc allocates size bytes from the global, spinlock-guarded
// instance.
func GlobalMalloc(size uint64, attr Attr, typeInfo uintptr) (uintptr, error) {
	acquireGlobal()
	defer globalLock.Unlock()
	return gGcx.Malloc(size, attr, typeInfo)
}

// GlobalQalloc is GlobalMalloc returning the full BlockInfo.
func GlobalQalloc(size uint64, attr Attr) (BlockInfo, error) {
	acquireGlobal()
	defer globalLock.Unlock()
	return gGcx.Qalloc(size, attr)
}

// GlobalCalloc is GlobalQalloc with the returned slot zero-filled.
func GlobalCalloc(size uint64, attr Attr) (BlockInfo, error) {
	acquireGlobal()
	defer globalLock.Unlock()
	return gGcx.Calloc(size, attr)
}

// GlobalFree conservatively clears the owning slot's occupancy bit if addr
// can be located in the global instance; otherwise it is a no-op.
func GlobalFree(addr uintptr) {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.Free(addr)
}

// GlobalAddRoot registers a root with the global instance.
func GlobalAddRoot(p uintptr) {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.AddRoot(p)
}

// GlobalRemoveRoot removes a root from the global instance. It aborts if p
// is not registered.
func GlobalRemoveRoot(p uintptr) {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.RemoveRoot(p)
}

// GlobalAddRange registers a range with the global instance.
func GlobalAddRange(r Range) {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.AddRange(r)
}

// GlobalRemoveRange removes a range from the global instance. It aborts if
// r is not registered.
func GlobalRemoveRange(r Range) {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.RemoveRange(r)
}

// GlobalDisable increments the global instance's disable depth.
func GlobalDisable() {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.Disable()
}

// GlobalEnable decrements the global instance's disable depth. It aborts
// if the depth is already zero.
func GlobalEnable() {
	acquireGlobal()
	defer globalLock.Unlock()
	gGcx.Enable()
}

// GlobalStats returns the global instance's (all-zero) statistics.
func GlobalStats() Stats {
	acquireGlobal()
	defer globalLock.Unlock()
	return gGcx.Stats()
}

// GlobalInFinalizer reports whether the global instance is currently
// running a finalizer. Always false in this core.
func GlobalInFinalizer() bool {
	acquireGlobal()
	defer globalLock.Unlock()
	return gGcx.InFinalizer()
}

// tlInstances maps an OS thread id (unix.Gettid) to its unlocked,
// thread-local allocator instance. Keying by the real OS thread id rather
// than a goroutine handle (Go exposes no stable goroutine identifier) is
// what makes "no lock, not callable from another thread" an enforceable
// property: a caller that wants the guarantee spec.md §5 describes must
// pin itself with runtime.LockOSThread before using ThreadLocal, the same
// way the teacher's single-core kernel never needs to worry about a
// logical thread migrating mid-allocation.
var tlInstances sync.Map // map[int]*gcx.Gcx

// ThreadLocal returns the calling OS thread's unlocked allocator instance,
// constructing one on first use. Callers that need the no-cross-thread-
// access guarantee spec.md §5 requires must call runtime.LockOSThread
// first.
func ThreadLocal() *gcx.Gcx {
	tid := unix.Gettid()
	if v, ok := tlInstances.Load(tid); ok {
		return v.(*gcx.Gcx)
	}
	inst := gcx.New("thread-local", true)
	actual, _ := tlInstances.LoadOrStore(tid, inst)
	return actual.(*gcx.Gcx)
}

// fastPath allocates class-S memory via the thread-local instance's
// FastAlloc, bypassing the generic Ceil-then-dispatch path entirely. The
// nine functions below are the size-class-specialized entry points
// spec.md §6 calls for — one call site per required small size class so
// the size-class constant is known at the call site instead of recovered
// from a runtime byte count.
func fastPath(class sizeclass.Class, attr Attr) (uintptr, error) {
	return ThreadLocal().FastAlloc(class, attr)
}

// AllocClass8 is the thread-local fast path for the 8-byte size class.
func AllocClass8(attr Attr) (uintptr, error) { return fastPath(8, attr) }

// AllocClass16 is the thread-local fast path for the 16-byte size class.
func AllocClass16(attr Attr) (uintptr, error) { return fastPath(16, attr) }

// AllocClass32 is the thread-local fast path for the 32-byte size class.
func AllocClass32(attr Attr) (uintptr, error) { return fastPath(32, attr) }

// AllocClass64 is the thread-local fast path for the 64-byte size class.
func AllocClass64(attr Attr) (uintptr, error) { return fastPath(64, attr) }

// AllocClass128 is the thread-local fast path for the 128-byte size class.
func AllocClass128(attr Attr) (uintptr, error) { return fastPath(128, attr) }

// AllocClass256 is the thread-local fast path for the 256-byte size class.
func AllocClass256(attr Attr) (uintptr, error) { return fastPath(256, attr) }

// AllocClass512 is the thread-local fast path for the 512-byte size class.
func AllocClass512(attr Attr) (uintptr, error) { return fastPath(512, attr) }

// AllocClass1024 is the thread-local fast path for the 1024-byte size
// class.
func AllocClass1024(attr Attr) (uintptr, error) { return fastPath(1024, attr) }

// AllocClass2048 is the thread-local fast path for the 2048-byte size
// class.
func AllocClass2048(attr Attr) (uintptr, error) { return fastPath(2048, attr) }
