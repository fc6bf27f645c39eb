// Package fault defines the small, closed error taxonomy used across the
// allocator core: out-of-memory, invalid-memory-operation, and precondition
// violations. It deliberately avoids fmt.Errorf-style wrapping in favor of
// package-level sentinel values, the same shape the teacher kernel uses for
// its own errors (kernel.Error / kernel.KernelError) so that callers can
// compare against a fixed, documented set of failure modes.
package fault

import "fmt"

// Error is a allocator-core error. Module names the component that raised
// it; Message is a short, human-readable description. Two Errors compare
// equal (via errors.Is) when they are the same pointer, which is how the
// package-level sentinels below are meant to be used.
type Error struct {
	Module  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Module, e.Message)
}

var (
	// ErrOutOfMemory is returned when the OS page mapper fails to
	// satisfy a mapping request, when a size/offset computation
	// overflows, or when a request exceeds the largest supported size
	// class.
	ErrOutOfMemory = &Error{Module: "fastalloc", Message: "out of memory"}

	// ErrInvalidMemoryOperation is the panic value raised when the global
	// spinlock is acquired while the process-wide finalizer-running flag
	// is set.
	ErrInvalidMemoryOperation = &Error{Module: "fastalloc", Message: "invalid memory operation"}
)

// Precondition aborts the calling goroutine with a diagnostic describing a
// violated precondition, such as an out-of-bounds index or removing an
// absent root/range. (Freeing an unrecognized pointer is a no-op in
// gcx.Free, not a precondition abort.) The core has no separate
// debug/release build mode, so every precondition violation panics; a host
// that wants release-mode "undefined behavior instead of abort" semantics
// can recover at its own call boundary.
func Precondition(module, message string) {
	panic(&Error{Module: module, Message: message})
}
