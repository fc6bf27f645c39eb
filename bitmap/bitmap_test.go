package bitmap

import "testing"

func TestSetClearRoundTrip(t *testing.T) {
	b := New(127)
	for i := 0; i < b.Len(); i++ {
		if b.Get(i) {
			t.Fatalf("bit %d should start clear", i)
		}
		b.Set(i)
		if !b.Get(i) {
			t.Fatalf("bit %d should be set after Set", i)
		}
		b.Clear(i)
		if b.Get(i) {
			t.Fatalf("bit %d should be clear after Clear", i)
		}
	}
}

func TestFirstSetIndexAllZero(t *testing.T) {
	b := New(127)
	if got := b.FirstSetIndex(); got != 127 {
		t.Fatalf("FirstSetIndex() = %d; want 127", got)
	}
}

// TestFirstSetIndexScenario mirrors spec.md scenario S5.
func TestFirstSetIndexScenario(t *testing.T) {
	b := New(127)
	b.Set(126)
	b.Set(63)
	b.Set(0)

	if got := b.FirstSetIndex(); got != 0 {
		t.Fatalf("FirstSetIndex() = %d; want 0", got)
	}

	b.Clear(0)
	if got := b.FirstSetIndex(); got != 63 {
		t.Fatalf("FirstSetIndex() = %d; want 63", got)
	}
}

func TestFirstClearIndex(t *testing.T) {
	b := New(65)
	for i := 0; i < b.Len(); i++ {
		b.Set(i)
	}
	if got := b.FirstClearIndex(); got != 65 {
		t.Fatalf("FirstClearIndex() = %d; want 65 (all set)", got)
	}
	b.Clear(40)
	if got := b.FirstClearIndex(); got != 40 {
		t.Fatalf("FirstClearIndex() = %d; want 40", got)
	}
}

func TestTailBitsStayZero(t *testing.T) {
	b := New(65)
	for i := range b.blocks {
		b.blocks[i] = ^uint64(0)
	}
	// Clear every addressable bit explicitly; the 63 padding bits in the
	// second block beyond index 65 must never be observably set.
	for i := 0; i < b.Len(); i++ {
		b.Clear(i)
	}
	if got := b.FirstSetIndex(); got != b.Len() {
		t.Fatalf("FirstSetIndex() = %d; want %d (tail bits leaked)", got, b.Len())
	}
}

func TestCountOnes(t *testing.T) {
	b := New(10)
	if b.CountOnes() != 0 {
		t.Fatal("fresh bitmap should have zero set bits")
	}
	b.Set(2)
	b.Set(9)
	if got := b.CountOnes(); got != 2 {
		t.Fatalf("CountOnes() = %d; want 2", got)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	b := New(8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for out-of-range access")
		}
	}()
	b.Get(8)
}
