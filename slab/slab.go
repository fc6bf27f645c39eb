// Package slab holds the allocator core's page and slot types and the
// page-table entry that ties a mapped page to its occupancy and mark
// bitmaps (spec.md §4.4, §4.5).
//
// Grounded on the teacher's pmm.Frame / vmm.Page types (kernel/mem/pmm/
// frame.go, kernel/mem/vmm/page.go): both are thin index/address wrappers
// with an Address() accessor converting a page-granular index to a byte
// address via PageShift. Page here plays the same role but addresses a
// page returned by sysmem.Map rather than a kernel page-table slot, and
// Entry plays the role the teacher splits across BitmapAllocator's
// framePool.freeBitmap and the (out-of-scope-for-the-teacher) mark phase:
// one owning pointer plus two same-shaped bitmaps.
package slab

import (
	"fastalloc/bitmap"
	"fastalloc/sizeclass"
	"fastalloc/sysmem"
)

// Page is the byte address of one OS page (or, for a medium class whose
// slot spans multiple pages, the first page of that run) owned by a pool.
type Page uintptr

// SlotAddress returns the address of slot i within this page, given the
// page's size class.
func (p Page) SlotAddress(class sizeclass.Class, slot int) uintptr {
	return uintptr(p) + uintptr(slot)*uintptr(class)
}

// Entry is a page-table entry: an owning pointer to one page plus the
// occupancy and mark bitmaps, each sized to the page's slot count. The
// page pointer is non-zero for every live entry (spec.md §3 invariant);
// Entry never observes a zero Page once constructed by NewEntry.
type Entry struct {
	Page      Page
	Occupancy *bitmap.Bitmap
	Mark      *bitmap.Bitmap
}

// NewEntry maps a fresh page (or pageCount pages, for a medium class whose
// slot spans more than one page) via sysmem and returns a zero-initialized
// page-table entry with slotCount slots. It fails with a sysmem error
// (always fault.ErrOutOfMemory) if mapping fails; no entry is returned in
// that case.
func NewEntry(pageCount uint32, slotCount int) (*Entry, error) {
	base, err := sysmem.Map(uint64(pageCount) * uint64(sysmem.PageSize))
	if err != nil {
		return nil, err
	}
	return &Entry{
		Page:      Page(base),
		Occupancy: bitmap.New(slotCount),
		Mark:      bitmap.New(slotCount),
	}, nil
}

// Unmap releases the page(s) this entry owns. Callers must not use the
// entry afterward.
func (e *Entry) Unmap(pageCount uint32) error {
	return sysmem.Unmap(uintptr(e.Page), uint64(pageCount)*uint64(sysmem.PageSize))
}
