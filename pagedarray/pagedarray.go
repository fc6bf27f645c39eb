// Package pagedarray implements the paged dynamic array spec.md §4.3
// describes: an owning, non-copyable, swap-movable container whose
// capacity is always a whole number of OS pages, grown via in-place remap
// when available and map+copy+unmap otherwise.
//
// No repo in the example corpus implements a growable container backed
// directly by OS page mapping (the teacher's BitmapAllocator pools are
// sized once at Init and never grow), so this package is grounded on the
// teacher's growth arithmetic instead: bitmap_allocator.go's
// setupPoolBitmaps rounds required byte counts up to a whole page multiple
// with the same "(n + pageSizeMinus1) &^ pageSizeMinus1" idiom this
// package uses in sysmem.RoundUpPages, and mem.Size.Pages() performs the
// equivalent rounding for page counts. The OS-level grow-in-place-or-
// map-copy-unmap policy itself is grounded on package sysmem's Remap,
// whose own grounding is documented there.
package pagedarray

import (
	"unsafe"

	"fastalloc/fault"
	"fastalloc/sysmem"
)

// PagedArray is a growable, page-backed buffer of T. The zero value is an
// empty, unallocated array ready for use. It must not be copied after its
// first mutation; use Swap to move it.
type PagedArray[T any] struct {
	base     uintptr
	length   uint64
	capPages uint64
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// Len returns the logical element count.
func (p *PagedArray[T]) Len() int { return int(p.length) }

// Empty reports whether the array holds no elements.
func (p *PagedArray[T]) Empty() bool { return p.length == 0 }

// CapacityBytes returns the backing mapping's size, always a multiple of
// sysmem.PageSize.
func (p *PagedArray[T]) CapacityBytes() uint64 { return p.capPages * uint64(sysmem.PageSize) }

// slice returns a Go slice view over the live prefix of the backing
// mapping. It is only valid while the array is not concurrently mutated.
func (p *PagedArray[T]) slice() []T {
	if p.base == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(p.base)), p.length)
}

// At returns a pointer to element i. Panics if i is out of bounds.
func (p *PagedArray[T]) At(i int) *T {
	if i < 0 || uint64(i) >= p.length {
		fault.Precondition("pagedarray", "index out of range")
	}
	return &p.slice()[i]
}

// Slice returns a Go slice view over elements [lo, hi). The returned slice
// aliases the array's backing storage and is invalidated by any mutation.
func (p *PagedArray[T]) Slice(lo, hi int) []T {
	if lo < 0 || hi > int(p.length) || lo > hi {
		fault.Precondition("pagedarray", "slice bounds out of range")
	}
	return p.slice()[lo:hi]
}

// Front returns a pointer to the first element. Panics if the array is
// empty.
func (p *PagedArray[T]) Front() *T { return p.At(0) }

// Back returns a pointer to the last element. Panics if the array is
// empty.
func (p *PagedArray[T]) Back() *T { return p.At(int(p.length) - 1) }

// Pointer returns the base address of the backing storage, or 0 if the
// array is empty.
func (p *PagedArray[T]) Pointer() uintptr { return p.base }

// SetLength grows or shrinks the array to exactly n elements. Growing
// zero-fills the new tail (guaranteed by the OS mapping). Shrinking to zero
// unmaps and nulls the base. Non-trivial element destruction is the
// caller's responsibility; SetLength never runs one.
func (p *PagedArray[T]) SetLength(n int) error {
	if n < 0 {
		fault.Precondition("pagedarray", "negative length")
	}
	if n == 0 {
		if p.base != 0 {
			if err := sysmem.Unmap(p.base, p.capPages*uint64(sysmem.PageSize)); err != nil {
				return err
			}
		}
		p.base, p.length, p.capPages = 0, 0, 0
		return nil
	}

	es := elemSize[T]()
	needed, ok := mulOverflow(uint64(n), es)
	if !ok {
		return fault.ErrOutOfMemory
	}

	if needed <= p.capPages*uint64(sysmem.PageSize) {
		p.length = uint64(n)
		return nil
	}

	newCapBytes, ok := sysmem.RoundUpPages(needed)
	if !ok {
		return fault.ErrOutOfMemory
	}
	newCapPages := newCapBytes / uint64(sysmem.PageSize)

	var newBase uintptr
	var err error
	if p.base != 0 {
		newBase, err = sysmem.Remap(p.base, p.capPages*uint64(sysmem.PageSize), newCapBytes)
		if err != nil {
			// Fall back to map-new + copy + unmap when in-place
			// remap is unavailable or fails.
			newBase, err = sysmem.Map(newCapBytes)
			if err != nil {
				return err
			}
			copy(unsafe.Slice((*byte)(unsafe.Pointer(newBase)), p.length*es),
				unsafe.Slice((*byte)(unsafe.Pointer(p.base)), p.length*es))
			if uerr := sysmem.Unmap(p.base, p.capPages*uint64(sysmem.PageSize)); uerr != nil {
				return uerr
			}
		}
	} else {
		newBase, err = sysmem.Map(newCapBytes)
		if err != nil {
			return err
		}
	}

	p.base = newBase
	p.capPages = newCapPages
	p.length = uint64(n)
	return nil
}

func mulOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/a != b {
		return 0, false
	}
	return r, true
}

// InsertBack appends v, growing the array by one element.
func (p *PagedArray[T]) InsertBack(v T) error {
	if p.length == ^uint64(0) {
		return fault.ErrOutOfMemory
	}
	n := int(p.length) + 1
	if err := p.SetLength(n); err != nil {
		return err
	}
	*p.At(n - 1) = v
	return nil
}

// PopBack removes the last element without running its destructor.
func (p *PagedArray[T]) PopBack() {
	if p.length == 0 {
		fault.Precondition("pagedarray", "pop from empty array")
	}
	_ = p.SetLength(int(p.length) - 1)
}

// Remove deletes element i, shifting every following element down by one.
func (p *PagedArray[T]) Remove(i int) {
	if i < 0 || uint64(i) >= p.length {
		fault.Precondition("pagedarray", "index out of range")
	}
	s := p.slice()
	copy(s[i:], s[i+1:])
	_ = p.SetLength(int(p.length) - 1)
}

// Swap exchanges the backing storage of p and other in constant time with
// no allocation.
func (p *PagedArray[T]) Swap(other *PagedArray[T]) {
	p.base, other.base = other.base, p.base
	p.length, other.length = other.length, p.length
	p.capPages, other.capPages = other.capPages, p.capPages
}
