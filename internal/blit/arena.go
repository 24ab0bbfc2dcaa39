package blit

// FastBufferMax is the maximum number of simultaneously outstanding scratch
// allocations a single arena supports. A pipeline's realized scratch depth
// never approaches this in practice; it exists as a hard ceiling against a
// runaway assembler.
const FastBufferMax = 32

// FastBufferSize is the total number of scratch bytes the arena can hand
// out across all outstanding allocations.
const FastBufferSize = 64 * 1024

const fastBufferAlign = 32
const fastBufferAlignMask = fastBufferAlign - 1

func align32(size int) int {
	return (size + fastBufferAlignMask) &^ fastBufferAlignMask
}

// Arena is a LIFO bump allocator over a single fixed-size, 32-byte-aligned
// block. Blits allocate bounded, strictly nested scratch buffers (a stage's
// buffer always frees before the buffer of the stage allocated before it),
// so a bump arena avoids heap churn on the hot path entirely.
//
// An Arena is process-wide in the original design: one arena serves every
// pipeline, and pipelines must realize/release their scratch in LIFO order
// relative to each other. Callers that need isolated arenas (tests,
// concurrent-safe wrappers) can simply construct more than one.
type Arena struct {
	base  []byte
	stack [FastBufferMax + 1]int
	top   int
}

// NewArena allocates a fresh scratch block and returns an empty Arena ready
// for use. The original pads the raw block and shifts a pointer forward to
// a hardware-aligned boundary for SIMD loads/stores; no kernel here issues
// aligned vector instructions, so the size rounding in Alloc is kept (it
// governs the arena's bookkeeping) without the pointer arithmetic.
func NewArena() *Arena {
	return &Arena{base: make([]byte, FastBufferSize)}
}

// Alloc reserves size bytes (rounded up to the alignment) and returns a
// slice into the arena's block whose length is size and whose capacity is
// the rounded-up reservation. Panics with *ArenaOverflowError if the
// request would exceed FastBufferMax outstanding allocations or
// FastBufferSize cumulative bytes: a correctly assembled pipeline never
// triggers this, so there is no recovery path.
func (a *Arena) Alloc(size int) []byte {
	if a.top >= FastBufferMax {
		panic(&ArenaOverflowError{Requested: size, Available: FastBufferSize - a.stack[a.top]})
	}
	aligned := align32(size)
	next := a.stack[a.top] + aligned
	if next > FastBufferSize {
		panic(&ArenaOverflowError{Requested: aligned, Available: FastBufferSize - a.stack[a.top]})
	}
	start := a.stack[a.top]
	a.top++
	a.stack[a.top] = next
	return a.base[start : start+size : next]
}

// Free releases the most recently allocated buffer. The buf argument is
// used only to check that the caller is freeing the top of the stack, not
// to locate the memory; callers must free in exact reverse allocation
// order. Panics with *ArenaUnderflowError if nothing is outstanding, or if
// a non-empty buf is not the most recent allocation.
func (a *Arena) Free(buf []byte) {
	if a.top == 0 {
		panic(&ArenaUnderflowError{})
	}
	start := a.stack[a.top-1]
	if len(buf) > 0 && (start >= len(a.base) || &buf[0] != &a.base[start]) {
		panic(&ArenaUnderflowError{})
	}
	a.top--
}

// Empty reports whether every allocation has been freed.
func (a *Arena) Empty() bool { return a.top == 0 }

// Done verifies the arena has no outstanding allocations. Pipelines must
// free their scratch (in reverse of Realize's allocation order) before
// calling Done; a non-empty arena at teardown is a programmer error.
func (a *Arena) Done() error {
	if a.top != 0 {
		return &ArenaNotEmptyError{Outstanding: a.top}
	}
	return nil
}
