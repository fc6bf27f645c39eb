// Package pool implements a single size-class/scanned-ness pool: an
// append-only table of page-table entries plus a monotonic next-slot
// cursor, as spec.md §4.6 describes.
//
// Structurally this plays the same role as the teacher-adjacent Go runtime
// mcentral (cloudfly-readgo's mcentral.go): one free-object pool per size
// class that grows by requesting whole pages and hands out individual
// slots. mcentral tracks free objects via an intrusive freelist across
// nonempty/empty mspan lists; this pool instead tracks them via the
// occupancy bitmap per spec.md §4.6, so "does this page have a free slot"
// is a FirstClearIndex scan rather than a list membership test, but the
// "pool owns one paged table of page-sized chunks, grows it lazily, and
// serves one size class" shape is the same one mcentral and the teacher's
// framePool (kernel/mem/pmm/allocator/bitmap_allocator.go) both show.
package pool

import (
	"fastalloc/pagedarray"
	"fastalloc/sizeclass"
	"fastalloc/slab"
	"fastalloc/sysmem"
)

// cursor is the (page index, intra-page slot index) hint spec.md §4.6
// describes: authoritative for sequential allocation, but it may lag the
// true first-free slot once frees occur — the bitmap is authoritative.
type cursor struct {
	page int
	slot int
}

// Pool owns one size class's (scanned or unscanned) collection of pages.
type Pool struct {
	class      sizeclass.Class
	scanned    bool
	slotCount  int
	pageCount  uint32 // pages per page-table entry (>1 only for medium classes larger than one page)
	entries    pagedarray.PagedArray[*slab.Entry]
	next       cursor
	onPoolGrow func(class sizeclass.Class, scanned bool, pageIndex int)
}

// New constructs an empty pool for the given size class and scanned-ness.
// onPoolGrow, if non-nil, is invoked every time a new page-table entry is
// appended (used by the allocator instance to log pool growth).
func New(class sizeclass.Class, scanned bool, onPoolGrow func(sizeclass.Class, bool, int)) *Pool {
	slotCount := int(sizeclass.SlotsPerPage(class, uint64(sysmem.PageSize)))
	pageCount := sizeclass.PagesPerSlot(class, uint64(sysmem.PageSize))
	return &Pool{
		class:      class,
		scanned:    scanned,
		slotCount:  slotCount,
		pageCount:  pageCount,
		onPoolGrow: onPoolGrow,
	}
}

// Class returns this pool's size class.
func (p *Pool) Class() sizeclass.Class { return p.class }

// Scanned reports whether this pool's slots are scanned for pointers.
func (p *Pool) Scanned() bool { return p.scanned }

// SlotCount returns the number of slots per page-table entry.
func (p *Pool) SlotCount() int { return p.slotCount }

// PageCount returns the number of pages-per-page-table entry.
func (p *Pool) PageCount() int { return int(p.pageCount) }

// PageTableLen returns the number of page-table entries currently owned by
// this pool.
func (p *Pool) PageTableLen() int { return p.entries.Len() }

// Entry returns the i-th page-table entry.
func (p *Pool) Entry(i int) *slab.Entry { return *p.entries.At(i) }

// AllocateNext returns the address of a free slot, mapping a new page if
// the cursor has reached the end of the current one. It implements the
// allocate-next algorithm spec.md §4.6 specifies.
func (p *Pool) AllocateNext() (uintptr, error) {
	if p.next.page == p.entries.Len() {
		entry, err := slab.NewEntry(p.pageCount, p.slotCount)
		if err != nil {
			return 0, err
		}
		if err := p.entries.InsertBack(entry); err != nil {
			return 0, err
		}
		if p.onPoolGrow != nil {
			p.onPoolGrow(p.class, p.scanned, p.next.page)
		}
	}

	entry := p.Entry(p.next.page)
	entry.Occupancy.Set(p.next.slot)
	addr := entry.Page.SlotAddress(p.class, p.next.slot)

	p.next.slot++
	if p.next.slot == p.slotCount {
		p.next.page++
		p.next.slot = 0
	}
	return addr, nil
}

// FirstFreeSlot walks the occupancy bitmaps of every page-table entry in
// page order looking for the earliest free slot, per spec.md §4.6's
// tie-break policy for a mature pool with freed slots. It returns the page
// index and slot index of the first free slot, or ok=false if every mapped
// page is fully occupied. This does not mutate the cursor; callers (the
// out-of-scope mark/sweep pass) reset the cursor themselves via
// ResetCursor.
func (p *Pool) FirstFreeSlot() (pageIndex, slotIndex int, ok bool) {
	for i := 0; i < p.entries.Len(); i++ {
		entry := p.Entry(i)
		if free := entry.Occupancy.FirstClearIndex(); free < p.slotCount {
			return i, free, true
		}
	}
	return 0, 0, false
}

// ResetCursor repositions the next-slot cursor, for use by the (out of
// scope) sweep pass after it has freed slots and wants sequential
// allocation to resume from the earliest known-free slot.
func (p *Pool) ResetCursor(pageIndex, slotIndex int) {
	p.next = cursor{page: pageIndex, slot: slotIndex}
}

// ClearOccupancy clears the occupancy bit for the slot at (page, slot),
// the conservative "free" the allocator instance performs when it can
// locate the owning page-table entry (spec.md §4.8, §9).
func (p *Pool) ClearOccupancy(pageIndex, slotIndex int) {
	p.Entry(pageIndex).Occupancy.Clear(slotIndex)
}

// Locate returns the page index and slot index owning addr, and ok=true,
// if addr falls within one of this pool's mapped pages and is the start
// address of a slot. An address inside a slot but not at its start
// returns ok=false.
func (p *Pool) Locate(addr uintptr) (pageIndex, slotIndex int, ok bool) {
	span := uint64(p.pageCount) * uint64(sysmem.PageSize)
	for i := 0; i < p.entries.Len(); i++ {
		entry := p.Entry(i)
		base := uintptr(entry.Page)
		if addr < base || addr >= base+uintptr(span) {
			continue
		}
		offset := uint64(addr - base)
		slot := int(offset / uint64(p.class))
		if offset%uint64(p.class) != 0 {
			return 0, 0, false
		}
		return i, slot, true
	}
	return 0, 0, false
}

