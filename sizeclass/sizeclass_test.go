package sizeclass

import "testing"

func TestCeilBasic(t *testing.T) {
	specs := []struct {
		n    uint64
		want Class
	}{
		{0, 8},
		{1, 8},
		{2, 8},
		{8, 8},
		{9, 16},
		{256, 256},
		{257, 512},
		{2048, 2048},
	}
	for _, spec := range specs {
		got, ok := Ceil(spec.n, LargestClass)
		if !ok {
			t.Fatalf("Ceil(%d): unexpected failure", spec.n)
		}
		if got != spec.want {
			t.Errorf("Ceil(%d) = %d; want %d", spec.n, got, spec.want)
		}
	}
}

// TestCeilExceedsSmallLimit mirrors spec.md scenario S3.
func TestCeilExceedsSmallLimit(t *testing.T) {
	if _, ok := Ceil(5000, LargestSmallClass); ok {
		t.Fatal("expected 5000 bytes to fail against the small-only limit")
	}
}

func TestCeilExceedsLargestClass(t *testing.T) {
	if _, ok := Ceil(uint64(LargestClass)+1, LargestClass); ok {
		t.Fatal("expected a request above the largest class to fail")
	}
}

func TestRank(t *testing.T) {
	for i, c := range Classes {
		if got := Rank(c); got != i {
			t.Errorf("Rank(%d) = %d; want %d", c, got, i)
		}
	}
	if Rank(Class(7)) != -1 {
		t.Fatal("Rank of a non-class value should be -1")
	}
}

func TestSlotsPerPage(t *testing.T) {
	if got := SlotsPerPage(16, 4096); got != 256 {
		t.Fatalf("SlotsPerPage(16, 4096) = %d; want 256", got)
	}
	if got := SlotsPerPage(8, 4096); got != 512 {
		t.Fatalf("SlotsPerPage(8, 4096) = %d; want 512", got)
	}
	if got := SlotsPerPage(4096, 4096); got != 1 {
		t.Fatalf("SlotsPerPage(4096, 4096) = %d; want 1", got)
	}
}

func TestPagesPerSlot(t *testing.T) {
	if got := PagesPerSlot(65536, 4096); got != 16 {
		t.Fatalf("PagesPerSlot(65536, 4096) = %d; want 16", got)
	}
	if got := PagesPerSlot(8, 4096); got != 1 {
		t.Fatalf("PagesPerSlot(8, 4096) = %d; want 1", got)
	}
}
