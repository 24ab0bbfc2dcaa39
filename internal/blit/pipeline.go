package blit

import "fmt"

// Pipeline is an ordered sequence of horizontal Stages plus the embedded
// vertical stage that drives rows through them. Unlike the original's
// fixed-capacity array, stages grow as a plain Go slice; the LIFO scratch
// discipline and pivot-splitting semantics are unchanged.
//
// Lifecycle: Insert/Substitute build the stage sequence, SetPivot records
// where the vertical driver may split, Realize allocates scratch from an
// Arena, and Done releases it. No partial pipeline is usable between
// Insert and Realize.
type Pipeline struct {
	stages []Stage
	pivot  int // index into stages; len(stages) means "pivot at end"

	pivotSDX  int
	pivotSDP  int
	pivotSBPP int

	vertical VerticalStage

	realized bool
}

// NewPipeline returns an empty pipeline with its pivot defaulted to "at
// end" (no post-pivot sub-pipeline).
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Insert appends a fully built stage to the tail of the sequence and
// returns its index. The caller (the assembler) builds the Stage value via
// the Registry before calling Insert; there is no mutable in-place handle,
// since a later Insert's slice growth would invalidate a pointer into the
// backing array.
func (p *Pipeline) Insert(s Stage) int {
	p.stages = append(p.stages, s)
	return len(p.stages) - 1
}

// Substitute replaces the sub-range [begin,end) with a single stage,
// shifting every later stage left by (end-begin)-1 slots. Used by
// peephole fusion to collapse a matched tail into one fused stage.
func (p *Pipeline) Substitute(begin, end int, s Stage) {
	if begin < 0 || end > len(p.stages) || begin >= end {
		panic(fmt.Sprintf("blit: invalid substitute range [%d,%d) over %d stages", begin, end, len(p.stages)))
	}
	tail := append([]Stage{s}, p.stages[end:]...)
	p.stages = append(p.stages[:begin], tail...)
	if p.pivot >= end {
		p.pivot -= (end - begin) - 1
	} else if p.pivot > begin {
		p.pivot = begin
	}
}

// Len reports the number of stages currently in the sequence.
func (p *Pipeline) Len() int { return len(p.stages) }

// Stage returns a copy of the stage at index i.
func (p *Pipeline) Stage(i int) Stage { return p.stages[i] }

// LastIndex returns the index of the final stage, or -1 if the pipeline is
// empty.
func (p *Pipeline) LastIndex() int { return len(p.stages) - 1 }

// SetPivot records the pivot index chosen by the vertical setup phase.
func (p *Pipeline) SetPivot(i int) { p.pivot = i }

// Pivot returns the current pivot index.
func (p *Pipeline) Pivot() int { return p.pivot }

// AtPivotEnd reports whether the pivot sits after every stage (no
// post-pivot sub-pipeline; the whole chain runs pre-combine).
func (p *Pipeline) AtPivotEnd() bool { return p.pivot >= len(p.stages) }

// Vertical returns a pointer to the embedded vertical stage so the
// assembler's vertical setup phase can populate it.
func (p *Pipeline) Vertical() *VerticalStage { return &p.vertical }

// Describe returns the assembled stage sequence's display names, in
// order, for diagnostics and debug logging.
func (p *Pipeline) Describe() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Tag.String()
	}
	return names
}

// lastNeedsOwnBuffer reports whether the terminal stage must get a real
// scratch buffer of its own rather than writing straight into the
// caller's destination: true exactly when the pivot sits at the very end
// (AtPivotEnd), so the terminal participates in PrePivot's chained mode
// as an ordinary interior stage instead of being reached through
// PostPivot's dst-writing tail case.
func (p *Pipeline) lastNeedsOwnBuffer() bool {
	return p.AtPivotEnd() && len(p.stages) > 0
}

// ScratchBytes reports the total realized scratch footprint in bytes,
// summed across every stage that gets its own buffer (every stage but the
// terminal, unless the pivot sits at the very end and the terminal is
// realized like any other interior stage).
func (p *Pipeline) ScratchBytes() int {
	total := 0
	last := len(p.stages) - 1
	needOwn := p.lastNeedsOwnBuffer()
	for i, s := range p.stages {
		if i == last && !needOwn {
			continue
		}
		total += align32(s.BufferSize)
	}
	return total
}

// Realize allocates each stage's scratch buffer from arena, in ascending
// index order, and caches the geometry the vertical driver needs at the
// pivot point. The terminal stage's buffer is left nil so it writes
// directly into the caller-supplied destination instead of scratch — UNLESS
// the pivot sits at the very end (no post-pivot sub-pipeline), in which
// case the terminal is itself part of the pre-pivot chained run and needs
// a real buffer like any other interior stage; the vertical driver then
// combines across that buffer and hands the result to PostPivot, which
// with no post-pivot stage just copies it into the destination row.
// dstDX/dstDP/dstBPP describe the row produced by the pipeline's final
// write — the geometry cached for the vertical driver when the pivot sits
// at the end and there is no post-pivot stage to read it from.
func (p *Pipeline) Realize(dstDX, dstDP, dstBPP int, arena *Arena) {
	last := len(p.stages) - 1
	needOwn := p.lastNeedsOwnBuffer()
	for i := range p.stages {
		if i == last && !needOwn {
			p.stages[i].buffer = nil
			continue
		}
		if p.stages[i].BufferSize > 0 {
			p.stages[i].buffer = arena.Alloc(p.stages[i].BufferSize)
		}
	}

	if p.pivot < len(p.stages) {
		p.pivotSDX = p.stages[p.pivot].SDX
		p.pivotSDP = p.stages[p.pivot].SDP
		p.pivotSBPP = p.stages[p.pivot].SBPP
	} else {
		p.pivotSDX = dstDX
		p.pivotSDP = dstDP
		p.pivotSBPP = dstBPP
	}

	p.realized = true
}

// Done releases every realized stage buffer from arena, in exact reverse
// of the order Realize allocated them (the arena's required LIFO
// discipline). A nil buffer (the ordinary terminal-writes-to-destination
// case) is simply skipped.
func (p *Pipeline) Done(arena *Arena) {
	for i := len(p.stages) - 1; i >= 0; i-- {
		if p.stages[i].buffer != nil {
			arena.Free(p.stages[i].buffer)
			p.stages[i].buffer = nil
		}
	}
	p.realized = false
}

// SetPalette updates the Palette bookkeeping field on every palette-lookup
// stage to lut. The palette kernels read their lookup table through a
// closure over the same slice header recorded at Assemble time, so the
// ordinary case — a caller mutating an existing LUT's entries in place —
// already takes effect on the next Execute with no call here at all;
// SetPalette exists for the case where the caller hands in a genuinely new
// slice (a different backing array) and wants the pipeline's own
// bookkeeping (peephole-fusion introspection, diagnostics) to reflect it
// without a full Assemble. It does not retarget the already-built Put
// closures, so callers that replace the backing array must rebuild with
// Assemble to change what those closures read.
func (p *Pipeline) SetPalette(lut []uint32) {
	for i := range p.stages {
		if p.stages[i].Palette != nil {
			p.stages[i].Palette = lut
		}
	}
}

// PivotGeometry returns the cached (sdx, sdp, sbpp) the vertical driver's
// pivot-side helpers operate on.
func (p *Pipeline) PivotGeometry() (sdx, sdp, sbpp int) {
	return p.pivotSDX, p.pivotSDP, p.pivotSBPP
}

// runRange executes stages [a,b) in chained mode: stage a reads src into
// its own buffer, stage k>0 reads stage k-1's buffer into its own, and the
// last stage's buffer is returned. An empty range passes src through
// unchanged. plain selects PutPlain for the first stage only, used when
// the caller guarantees src has no stride gap.
func (p *Pipeline) runRange(a, b int, src []byte, plain bool) []byte {
	if a >= b {
		return src
	}
	cur := src
	for i := a; i < b; i++ {
		st := &p.stages[i]
		put := st.Put
		if i == a && plain && st.PutPlain != nil {
			put = st.PutPlain
		}
		put(st.buffer, cur)
		cur = st.buffer
	}
	return cur
}

// runRangeOnBuffer executes stages [a,b) the same way as runRange, except
// the final stage in the range writes into the caller-supplied dst rather
// than its own buffer. When the range holds exactly one stage, that stage
// writes directly into dst.
func (p *Pipeline) runRangeOnBuffer(dst []byte, a, b int, src []byte, plain bool) {
	if a >= b {
		copy(dst, src)
		return
	}
	cur := src
	for i := a; i < b; i++ {
		st := &p.stages[i]
		put := st.Put
		if i == a && plain && st.PutPlain != nil {
			put = st.PutPlain
		}
		if i == b-1 {
			put(dst, cur)
			return
		}
		put(st.buffer, cur)
		cur = st.buffer
	}
}

// PrePivot runs the stages before the pivot in chained mode, returning the
// pivot-side input buffer. When the pivot sits at the end, this runs every
// stage, the terminal included, into its own buffer.
func (p *Pipeline) PrePivot(src []byte) []byte {
	return p.runRange(0, p.pivot, src, false)
}

// PostPivot runs the stages from the pivot onward, writing into dst. src
// is always a same-pipeline scratch buffer (plain), so the plain variant
// is used whenever the first post-pivot stage advertises one.
func (p *Pipeline) PostPivot(dst, src []byte) {
	p.runRangeOnBuffer(dst, p.pivot, len(p.stages), src, true)
}

// Run executes the entire pipeline in targeted mode, writing the final
// result into dst.
func (p *Pipeline) Run(dst, src []byte) {
	p.runRangeOnBuffer(dst, 0, len(p.stages), src, false)
}

// RunPlain is Run with the plain variant of the first stage, used when the
// caller guarantees src has no stride gap (e.g. it came from another
// pipeline's scratch buffer).
func (p *Pipeline) RunPlain(dst, src []byte) {
	p.runRangeOnBuffer(dst, 0, len(p.stages), src, true)
}
