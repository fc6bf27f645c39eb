package poolmatrix

import (
	"errors"
	"testing"

	"fastalloc/fault"
	"fastalloc/sizeclass"
)

// TestQallocDispatch mirrors spec.md scenario S1.
func TestQallocDispatch(t *testing.T) {
	m := New(true, "test")

	info, err := m.Qalloc(1, NoScan)
	if err != nil {
		t.Fatalf("Qalloc: %v", err)
	}
	if info.Size != 8 {
		t.Fatalf("Size = %d; want 8", info.Size)
	}
	if info.Attr != NoScan {
		t.Fatalf("Attr = %v; want NoScan", info.Attr)
	}

	pageIdx, slotIdx, ok := m.Pool(8, false).Locate(info.Base)
	if !ok {
		t.Fatal("allocated address does not lie within the unscanned-8 pool")
	}
	if !m.Pool(8, false).Entry(pageIdx).Occupancy.Get(slotIdx) {
		t.Fatal("occupancy bit should be set for the returned slot")
	}

	info2, err := m.Qalloc(1, NoScan)
	if err != nil {
		t.Fatalf("Qalloc: %v", err)
	}
	if info2.Base != info.Base+8 {
		t.Fatalf("second allocation = %#x; want %#x", info2.Base, info.Base+8)
	}
}

func TestQallocScannedVsUnscanned(t *testing.T) {
	m := New(true, "test")

	scanned, err := m.Qalloc(16, 0)
	if err != nil {
		t.Fatalf("Qalloc: %v", err)
	}
	unscanned, err := m.Qalloc(16, NoScan)
	if err != nil {
		t.Fatalf("Qalloc: %v", err)
	}

	if _, _, ok := m.Pool(16, true).Locate(scanned.Base); !ok {
		t.Fatal("scanned allocation did not land in the scanned pool")
	}
	if _, _, ok := m.Pool(16, false).Locate(unscanned.Base); !ok {
		t.Fatal("unscanned allocation did not land in the unscanned pool")
	}
}

// TestQallocOversizeSmallOnly mirrors spec.md scenario S3.
func TestQallocOversizeSmallOnly(t *testing.T) {
	m := New(false, "test")

	if _, err := m.Qalloc(5000, 0); !errors.Is(err, fault.ErrOutOfMemory) {
		t.Fatalf("Qalloc(5000): got %v; want ErrOutOfMemory", err)
	}
}

func TestQallocMediumEnabled(t *testing.T) {
	m := New(true, "test")

	info, err := m.Qalloc(5000, 0)
	if err != nil {
		t.Fatalf("Qalloc(5000) with medium classes enabled: %v", err)
	}
	if info.Size != 8192 {
		t.Fatalf("Size = %d; want 8192", info.Size)
	}
}

func TestQallocRejectsAboveLargest(t *testing.T) {
	m := New(true, "test")
	if _, err := m.Qalloc(uint64(sizeclass.LargestClass)+1, 0); !errors.Is(err, fault.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory for an oversize request, got %v", err)
	}
}
