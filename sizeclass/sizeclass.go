// Package sizeclass holds the compile-time-fixed ascending size-class table
// spec.md §3 requires and the ceiling function that rounds a requested byte
// count up to the smallest class that can hold it.
//
// The real Go runtime (read via the example corpus's cloudfly-readgo
// msize.go, lifted directly from runtime/sizeclasses.go) computes a much
// richer table bounded by a worst-case waste percentage rather than strict
// powers of two, with two lookup arrays (size_to_class8, size_to_class128)
// selected by magnitude. spec.md fixes a simpler table instead — every
// small class a power of two, every medium class (optional) also a power
// of two — so this package keeps msize.go's two ideas that still apply
// (a flat class-size array, and an O(1) lookup rather than a scan) while
// dropping the waste-bound machinery spec.md doesn't call for.
package sizeclass

import "math/bits"

// Class identifies one size class by its byte size. It is always a member
// of Classes.
type Class uint32

// Classes is the compile-time-fixed ascending list of supported size
// classes: the nine required small classes (8..2048) followed by the five
// optional medium classes (4096..65536) from spec.md §3. Medium classes are
// always compiled in; a host that wants the "small classes only" profile
// from spec.md scenario S3 selects it by passing includeMedium=false to
// poolmatrix.New rather than by recompiling this table.
var Classes = []Class{
	8, 16, 32, 64, 128, 256, 512, 1024, 2048,
	4096, 8192, 16384, 32768, 65536,
}

// NumSmall is the count of required small classes at the front of Classes.
const NumSmall = 9

// SmallestClass is the smallest supported size class.
const SmallestClass Class = 8

// LargestClass is the largest supported size class when medium classes are
// enabled.
var LargestClass = Classes[len(Classes)-1]

// LargestSmallClass is the largest of the required small classes, used when
// a matrix is configured without medium classes (spec.md scenario S3: a
// 5000-byte request fails when medium classes are disabled because it
// exceeds 2048).
var LargestSmallClass = Classes[NumSmall-1]

// Ceil returns the smallest size class >= max(n, SmallestClass), and true.
// If n exceeds limit (LargestClass or LargestSmallClass depending on
// whether the caller's matrix has medium classes enabled), it returns
// (0, false): spec.md's out-of-memory-on-oversize-request case.
//
// spec.md's open question about ceilPow2(n) for n <= 1 is resolved here:
// such requests return SmallestClass, never a degenerate 1-byte class.
func Ceil(n uint64, limit Class) (Class, bool) {
	if n <= 1 {
		return SmallestClass, true
	}
	if n > uint64(limit) {
		return 0, false
	}
	c := Class(nextPow2(n))
	if c < SmallestClass {
		c = SmallestClass
	}
	if c > limit {
		return 0, false
	}
	return c, true
}

func nextPow2(n uint64) uint64 {
	if n&(n-1) == 0 {
		return n
	}
	return uint64(1) << bits.Len64(n)
}

var rankOf = buildRankTable()

func buildRankTable() map[Class]int {
	m := make(map[Class]int, len(Classes))
	for i, cls := range Classes {
		m[cls] = i
	}
	return m
}

// Rank returns the index of class c within Classes, or -1 if c is not a
// member. Pool-matrix dispatch uses Rank to select the pool array slot the
// ceilinged class belongs to; it is a single map lookup so dispatch cost
// does not grow with the number of configured classes.
func Rank(c Class) int {
	if r, ok := rankOf[c]; ok {
		return r
	}
	return -1
}

// SlotsPerPage returns how many slots of class c fit in one page of
// pageSize bytes. For classes where pageSize/c == 0 (a class larger than
// one page), it returns 1 and the caller is responsible for mapping
// PagesPerSlot(c, pageSize) pages per slot instead.
func SlotsPerPage(c Class, pageSize uint64) uint32 {
	if uint64(c) >= pageSize {
		return 1
	}
	return uint32(pageSize / uint64(c))
}

// PagesPerSlot returns how many whole pages one slot of class c occupies
// when c is larger than a single page (the medium classes 8192, 16384,
// 32768 and 65536, with a 4096-byte page).
func PagesPerSlot(c Class, pageSize uint64) uint32 {
	if uint64(c) <= pageSize {
		return 1
	}
	return uint32((uint64(c) + pageSize - 1) / pageSize)
}
