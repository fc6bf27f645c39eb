// Package gcx implements the allocator instance spec.md §4.8 describes:
// one pool matrix plus the root and range registries and the disable
// counter that suppresses collection, with malloc/qalloc/calloc/free and
// the root/range/enable-disable operation set.
//
// This is the closest this module comes to the teacher's top-level
// BitmapAllocator (kernel/mem/pmm/allocator/bitmap_allocator.go): both are
// the one allocator-wide struct that owns everything else (pools, in the
// teacher's case; the pool matrix plus root/range bags, in ours) and
// expose a small number of entry points that a higher layer (the teacher's
// kmain boot sequence; here, the host garbage collector) calls.
package gcx

import (
	"unsafe"

	"fastalloc/fault"
	"fastalloc/gclog"
	"fastalloc/poolmatrix"
	"fastalloc/sizeclass"
)

// Range is an external liveness-anchoring memory range: [Base, End) plus an
// opaque type-info handle the (out-of-scope) scanner would consult to
// interpret its contents. TypeInfo is left as a uintptr handle rather than
// a richer type, matching spec.md §1's decision to treat object-type-info
// plumbing as an external collaborator this core only stores, never
// interprets.
type Range struct {
	Base, End uintptr
	TypeInfo  uintptr
}

// Stats is the all-zero statistics record spec.md §4.8 and its Non-goals
// ("accurate statistics") call for: a fixed shape a host can read without
// this core needing to track anything expensive.
type Stats struct {
	Allocations uint64
	Bytes       uint64
}

// Gcx is one allocator instance: a pool matrix, root bag, range bag, and
// disable depth. The zero value is not usable; construct one with New.
type Gcx struct {
	name         string
	matrix       *poolmatrix.Matrix
	roots        bag[uintptr]
	ranges       bag[Range]
	disableDepth int
	inFinalizer  bool
}

// New constructs an allocator instance named name (used only for logging),
// with the optional medium size classes enabled according to
// includeMedium.
func New(name string, includeMedium bool) *Gcx {
	return &Gcx{
		name:   name,
		matrix: poolmatrix.New(includeMedium, name),
	}
}

// Qalloc ceilings size, allocates a slot from the matching (class,
// scanned-by-attr) pool, and returns the resulting BlockInfo.
func (g *Gcx) Qalloc(size uint64, attr poolmatrix.Attr) (poolmatrix.BlockInfo, error) {
	return g.matrix.Qalloc(size, attr)
}

// Malloc is Qalloc without the size-class/attribute metadata, returning
// only the slot address. typeInfo is accepted (per spec.md §6's
// host-interface contract) but not interpreted by this core.
func (g *Gcx) Malloc(size uint64, attr poolmatrix.Attr, typeInfo uintptr) (uintptr, error) {
	info, err := g.matrix.Qalloc(size, attr)
	if err != nil {
		return 0, err
	}
	return info.Base, nil
}

// FastAlloc allocates directly from the pool for a size class already
// known at the call site, bypassing Qalloc's Ceil computation entirely.
// This is what the top-level package's size-class-specialized entry
// points call (spec.md §6): the size-class constant is baked into the
// call site rather than recovered from a runtime byte count, which is the
// source of the measured fast-path speedup spec.md §4.8 describes.
func (g *Gcx) FastAlloc(class sizeclass.Class, attr poolmatrix.Attr) (uintptr, error) {
	scanned := attr&poolmatrix.NoScan == 0
	return g.matrix.Pool(class, scanned).AllocateNext()
}

// Calloc is Qalloc followed by zero-filling the ceilinged-size slot. Newly
// mapped pages are already zero (guaranteed by sysmem.Map), but a reused
// slot from a previously freed allocation is not assumed to be, so Calloc
// always zeroes explicitly.
func (g *Gcx) Calloc(size uint64, attr poolmatrix.Attr) (poolmatrix.BlockInfo, error) {
	info, err := g.matrix.Qalloc(size, attr)
	if err != nil {
		return poolmatrix.BlockInfo{}, err
	}
	zero(info.Base, uint64(info.Size))
	return info, nil
}

func zero(base uintptr, n uint64) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(base)), n)
	for i := range b {
		b[i] = 0
	}
}

// Free conservatively clears the owning slot's occupancy bit if the block
// can be located in one of this instance's pools; otherwise it is a no-op.
// spec.md §9 flags the source's delegation of free to the foreign C
// allocator as incorrect for slab pointers — this core never does that.
func (g *Gcx) Free(addr uintptr) {
	n := sizeclass.NumSmall
	if g.matrix.IncludesMedium() {
		n = len(sizeclass.Classes)
	}
	for rank := 0; rank < n; rank++ {
		class := sizeclass.Classes[rank]
		for _, scanned := range [2]bool{true, false} {
			p := g.matrix.Pool(class, scanned)
			if pageIdx, slotIdx, ok := p.Locate(addr); ok {
				p.ClearOccupancy(pageIdx, slotIdx)
				return
			}
		}
	}
}

// AddRoot registers an opaque root pointer as an additional liveness
// anchor.
func (g *Gcx) AddRoot(p uintptr) { g.roots.Add(p) }

// RemoveRoot removes one occurrence of root p. It aborts if p is not
// registered.
func (g *Gcx) RemoveRoot(p uintptr) { g.roots.Remove(p) }

// EachRoot visits every registered root exactly once.
func (g *Gcx) EachRoot(f func(uintptr)) { g.roots.Each(f) }

// AddRange registers a range as an additional liveness anchor.
func (g *Gcx) AddRange(r Range) { g.ranges.Add(r) }

// RemoveRange removes one occurrence of range r. It aborts if r is not
// registered.
func (g *Gcx) RemoveRange(r Range) { g.ranges.Remove(r) }

// EachRange visits every registered range exactly once.
func (g *Gcx) EachRange(f func(Range)) { g.ranges.Each(f) }

// Disable increments the disable depth, suppressing collection while it is
// positive.
func (g *Gcx) Disable() {
	g.disableDepth++
	gclog.DisableDepthChanged(g.name, g.disableDepth)
}

// Enable decrements the disable depth. It aborts if the depth is already
// zero, since that indicates a mismatched Enable/Disable pair.
func (g *Gcx) Enable() {
	if g.disableDepth == 0 {
		fault.Precondition("gcx", "Enable called without a matching Disable")
	}
	g.disableDepth--
	gclog.DisableDepthChanged(g.name, g.disableDepth)
}

// CollectionEnabled reports whether the disable depth is zero.
func (g *Gcx) CollectionEnabled() bool { return g.disableDepth == 0 }

// InFinalizer reports whether a finalizer is currently executing on this
// instance. Always false in this core (finalizer invocation is out of
// scope, per spec.md §1), but kept as a named operation since the host
// interface expects it.
func (g *Gcx) InFinalizer() bool { return g.inFinalizer }

// Stats returns the all-zero statistics record spec.md §4.8 specifies.
func (g *Gcx) Stats() Stats { return Stats{} }
