package pagedarray

import (
	"testing"

	"fastalloc/sysmem"
)

// TestRoundTrip mirrors spec.md scenario S4.
func TestRoundTrip(t *testing.T) {
	var arr PagedArray[uint64]

	for i := uint64(0); i < 1000; i++ {
		if err := arr.InsertBack(i); err != nil {
			t.Fatalf("InsertBack(%d): %v", i, err)
		}
	}

	if arr.Len() != 1000 {
		t.Fatalf("Len() = %d; want 1000", arr.Len())
	}
	for i := 0; i < 1000; i++ {
		if got := *arr.At(i); got != uint64(i) {
			t.Fatalf("arr[%d] = %d; want %d", i, got, i)
		}
	}

	wantCap, _ := sysmem.RoundUpPages(8000)
	if arr.CapacityBytes() != wantCap {
		t.Fatalf("CapacityBytes() = %d; want %d", arr.CapacityBytes(), wantCap)
	}

	if err := arr.SetLength(0); err != nil {
		t.Fatalf("SetLength(0): %v", err)
	}
	if arr.Pointer() != 0 {
		t.Fatal("base should be null after SetLength(0)")
	}
	if arr.CapacityBytes() != 0 {
		t.Fatal("capacity should be zero after SetLength(0)")
	}
}

func TestPopBackAndRemove(t *testing.T) {
	var arr PagedArray[int]
	for i := 0; i < 5; i++ {
		_ = arr.InsertBack(i)
	}

	arr.PopBack()
	if arr.Len() != 4 {
		t.Fatalf("Len() = %d; want 4", arr.Len())
	}

	arr.Remove(1) // removes value 1, shifting 2,3 down
	if arr.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", arr.Len())
	}
	want := []int{0, 2, 3}
	for i, w := range want {
		if got := *arr.At(i); got != w {
			t.Fatalf("arr[%d] = %d; want %d", i, got, w)
		}
	}
}

func TestSwap(t *testing.T) {
	var a, b PagedArray[int]
	_ = a.InsertBack(1)
	_ = b.InsertBack(2)
	_ = b.InsertBack(3)

	a.Swap(&b)

	if a.Len() != 2 || b.Len() != 1 {
		t.Fatalf("unexpected lengths after swap: a=%d b=%d", a.Len(), b.Len())
	}
	if *a.At(0) != 2 || *b.At(0) != 1 {
		t.Fatal("swap did not exchange backing storage")
	}
}

func TestEmptyInvariant(t *testing.T) {
	var arr PagedArray[byte]
	if arr.Pointer() != 0 || arr.Len() != 0 {
		t.Fatal("zero value should be empty with a null base")
	}
	if !arr.Empty() {
		t.Fatal("Empty() should be true for the zero value")
	}
}
