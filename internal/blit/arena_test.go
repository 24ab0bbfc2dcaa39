package blit

import "testing"

func TestArenaLIFOAllocFree(t *testing.T) {
	a := NewArena()
	if !a.Empty() {
		t.Fatal("fresh arena should be empty")
	}

	b1 := a.Alloc(10)
	b2 := a.Alloc(40)
	b3 := a.Alloc(5)
	if a.Empty() {
		t.Fatal("arena with outstanding allocations should not report empty")
	}

	a.Free(b3)
	a.Free(b2)
	a.Free(b1)

	if !a.Empty() {
		t.Fatal("arena should be empty after matched alloc/free pairs")
	}
	if err := a.Done(); err != nil {
		t.Fatalf("Done on empty arena: %v", err)
	}
}

func TestArenaAlign32(t *testing.T) {
	a := NewArena()
	buf := a.Alloc(1)
	if len(buf) != 1 {
		t.Fatalf("Alloc should return exactly the requested length, got %d", len(buf))
	}
	// The next allocation should start at a 32-byte aligned offset even
	// though only 1 byte was requested.
	buf2 := a.Alloc(32)
	a.Free(buf2)
	a.Free(buf)
}

func TestArenaFreeWithoutAllocPanics(t *testing.T) {
	a := NewArena()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic freeing an empty arena")
		}
		if _, ok := r.(*ArenaUnderflowError); !ok {
			t.Fatalf("expected *ArenaUnderflowError, got %T", r)
		}
	}()
	a.Free(nil)
}

func TestArenaOverflowPanics(t *testing.T) {
	a := NewArena()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on overflow")
		}
		if _, ok := r.(*ArenaOverflowError); !ok {
			t.Fatalf("expected *ArenaOverflowError, got %T", r)
		}
	}()
	a.Alloc(FastBufferSize + 1)
}

func TestArenaDoneNotEmpty(t *testing.T) {
	a := NewArena()
	a.Alloc(10)
	err := a.Done()
	if err == nil {
		t.Fatal("expected error tearing down an arena with outstanding allocations")
	}
	if _, ok := err.(*ArenaNotEmptyError); !ok {
		t.Fatalf("expected *ArenaNotEmptyError, got %T", err)
	}
}
