// Package sysmem is the allocator core's OS page mapper: anonymous,
// zero-filled, page-aligned map/unmap/remap, backed directly by Linux
// virtual-memory syscalls. It plays the role spec.md §4.1 assigns the "OS
// page mapper" component.
//
// The teacher kernel cannot ground this package: it implements its own page
// mapper (kernel/mem/vmm) against kernel-internal page tables because a
// freestanding kernel has no underlying OS to call into. The mmap-based
// allocators surfaced elsewhere in the example corpus (cznic-memory's
// platform mmap helper; the Go-runtime-derived mem_linux.go, which wraps
// raw mmap/munmap/mincore for precisely this role) are the grounding for
// this package instead, adapted to use golang.org/x/sys/unix rather than
// raw syscall numbers.
package sysmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"fastalloc/fault"
)

// PageSize is discovered once at package init via the host OS rather than
// hardcoded, per spec.md §3 ("the value must be discovered or asserted at
// startup"). The static per-size-class page/slot layout in package slab is
// generated only for 4096-byte pages, so a mismatch is a fatal
// configuration error rather than something the allocator can adapt to at
// runtime.
var PageSize = discoverPageSize()

func discoverPageSize() int {
	n := os.Getpagesize()
	if n != 4096 {
		fault.Precondition("sysmem", "unsupported OS page size: expected 4096")
	}
	return n
}

// RoundUpPages rounds n bytes up to the nearest whole multiple of PageSize.
// It returns false if the computation would overflow.
func RoundUpPages(n uint64) (uint64, bool) {
	ps := uint64(PageSize)
	if n > ^uint64(0)-(ps-1) {
		return 0, false
	}
	return (n + ps - 1) &^ (ps - 1), true
}

// Map reserves and commits zero-filled anonymous memory rounded up to a
// whole number of pages. It returns the page-aligned base address, or 0 on
// failure. Concurrent calls are safe; the kernel's mmap implementation is
// reentrant.
func Map(bytes uint64) (uintptr, error) {
	rounded, ok := RoundUpPages(bytes)
	if !ok || rounded == 0 {
		return 0, fault.ErrOutOfMemory
	}

	b, err := unix.Mmap(-1, 0, int(rounded), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fault.ErrOutOfMemory
	}
	return uintptr(unsafe.Pointer(&b[0])), nil
}

// bytesAt builds a []byte view over an existing mapping so it can be
// handed to the unix package's slice-based mmap wrappers.
func bytesAt(base uintptr, length uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), length)
}

// Unmap releases a region previously returned by Map or Remap. base must be
// page-aligned and bytes a multiple of PageSize.
func Unmap(base uintptr, bytes uint64) error {
	rounded, ok := RoundUpPages(bytes)
	if !ok {
		return fault.ErrOutOfMemory
	}
	if err := unix.Munmap(bytesAt(base, rounded)); err != nil {
		return fault.ErrOutOfMemory
	}
	return nil
}

// Remap grows or shrinks a mapping in place where the kernel supports it
// (Linux mremap with MAP_MAYMOVE), preserving contents and returning the
// possibly-relocated base. Callers without Linux mremap support fall back
// to Map + copy + Unmap; this package is Linux-only so Remap is always
// attempted first.
func Remap(base uintptr, oldBytes, newBytes uint64) (uintptr, error) {
	oldRounded, ok := RoundUpPages(oldBytes)
	if !ok {
		return 0, fault.ErrOutOfMemory
	}
	newRounded, ok := RoundUpPages(newBytes)
	if !ok || newRounded == 0 {
		return 0, fault.ErrOutOfMemory
	}

	newData, err := unix.Mremap(bytesAt(base, oldRounded), int(newRounded), unix.MREMAP_MAYMOVE)
	if err != nil {
		return 0, fault.ErrOutOfMemory
	}
	return uintptr(unsafe.Pointer(&newData[0])), nil
}
