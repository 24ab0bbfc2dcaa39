package blit

import "fmt"

// PlanarWrap holds the state needed to drive a pipeline whose last stage
// is a planar unchained writer: the vertical driver runs any stages before
// it in chained mode, then calls that stage's plane_put kernel once per
// plane instead of running it through Put.
type PlanarWrap struct {
	active    bool
	planeNum  int
	put       PlanePutFunc
	putPlain  PlanePutFunc
}

// VerticalStage is the embedded row scheduler: it knows how many source
// rows feed how many destination rows, which stretchy_* driver combines
// them, and (once realized) owns whatever scratch rows that driver needs
// beyond the horizontal pipeline's own per-stage buffers.
type VerticalStage struct {
	sdy, ddy int
	sdw      int // source row stride, in bytes

	tag      Tag
	combineY Combine

	ops VerticalOps

	accum []byte // reduction mean/max/filter running accumulator
	carry []byte // filter_x1 carry row / mean_1x,filter_1x previous row

	ring          [3][]byte // scale2x's 3-row input window
	final0, final1 []byte   // scale2x's 2-row output, when pivot isn't at end

	planar PlanarWrap
}

func rowAt(host Surface, y, x int) []byte {
	row := host.WriteLine(y)
	return row[host.Offset(x):]
}

// srcRowAt returns row `row` of a source region sdy rows tall, clamping
// row to the last valid index. Reduction drivers step a Slice whose run
// lengths intentionally sum past sdy (see slice.go's doc comment): the
// original's pointer arithmetic harmlessly over-reads past the source
// buffer there, but a bounds-checked Go slice cannot, so every reduction
// driver indexes through this helper instead of re-slicing src forward by
// an unclamped amount. Past the last source row, the last row is repeated.
func srcRowAt(base []byte, row, sdy, sdw int) []byte {
	if row >= sdy {
		row = sdy - 1
	}
	if row < 0 {
		row = 0
	}
	return base[row*sdw:]
}

func earlyPivot(p *Pipeline, requireAfterConversion bool) int {
	pivot := p.Len()
	if !requireAfterConversion {
		return pivot
	}
	for pivot > 0 && p.Stage(pivot-1).Tag.IsConversion() {
		pivot--
	}
	return pivot
}

func latePivot(p *Pipeline, requireLast bool) int {
	pivot := p.Len()
	if requireLast && pivot > 0 {
		pivot--
	}
	for pivot > 0 && p.Stage(pivot-1).Tag.IsDecoration() {
		pivot--
	}
	return pivot
}

// SetupVertical chooses the pivot and the stretchy_* driver per spec.md
// §4.5's table, then records everything the vertical driver needs into
// p's embedded VerticalStage. It must run after Assemble and before
// Realize, since Realize reads the pivot to cache pivot-side geometry.
func SetupVertical(p *Pipeline, reg Registry, srcDX, srcDY, dstDX, dstDY, sdw, bpp int, rgbMode bool, combine Combine) error {
	combineY := combine.Y()

	const (
		relExpansion = iota
		relIdentity
		relReduction
	)
	relation := relIdentity
	switch {
	case srcDY < dstDY:
		relation = relExpansion
	case srcDY > dstDY:
		relation = relReduction
	}

	var tag Tag
	var pivot int

	switch combineY {
	case CombineYNone:
		switch relation {
		case relExpansion:
			tag, pivot = TagYExpansionCopy, latePivot(p, true)
		case relIdentity:
			tag, pivot = TagYCopy, earlyPivot(p, false)
		default:
			tag, pivot = TagYReductionCopy, earlyPivot(p, false)
		}
	case CombineYMean:
		switch relation {
		case relExpansion:
			tag, pivot = TagYExpansionMean, latePivot(p, true)
		case relIdentity:
			tag, pivot = TagYMean, earlyPivot(p, true)
		default:
			tag, pivot = TagYReductionMean, earlyPivot(p, true)
		}
	case CombineYFilter:
		switch relation {
		case relExpansion:
			tag, pivot = TagYExpansionFilter, latePivot(p, true)
		case relIdentity:
			tag, pivot = TagYFilter, earlyPivot(p, true)
		default:
			tag, pivot = TagYReductionFilter, earlyPivot(p, true)
		}
	case CombineYMax:
		if relation != relReduction {
			return fmt.Errorf("blit: MAX combine requires a vertical reduction (src_dy=%d dst_dy=%d)", srcDY, dstDY)
		}
		tag, pivot = TagYReductionMax, earlyPivot(p, false)
	case CombineYScale2x:
		if dstDY != 2*srcDY || dstDX != 2*srcDX {
			return fmt.Errorf("blit: Scale2x combine requires exact 2x geometry (src %dx%d dst %dx%d)", srcDX, srcDY, dstDX, dstDY)
		}
		tag, pivot = TagYScale2x, earlyPivot(p, true)
	default:
		return fmt.Errorf("blit: unrecognized combine_y value %d", combineY)
	}

	p.SetPivot(pivot)

	vs := &p.vertical
	*vs = VerticalStage{
		sdy:      srcDY,
		ddy:      dstDY,
		sdw:      sdw,
		tag:      tag,
		combineY: combineY,
		ops:      reg.Vertical(bpp, rgbMode),
	}

	if rgbMode {
		vs.ops.Init()
		for i := 0; i < p.Len(); i++ {
			if init := p.Stage(i).Init; init != nil {
				init()
			}
		}
	}

	if p.Len() > 0 && combineY == CombineYNone {
		if s := p.Stage(p.LastIndex()); s.PlanePut != nil {
			vs.planar = PlanarWrap{
				active:   true,
				planeNum: s.PlaneNum,
				put:      s.PlanePut,
				putPlain: s.PlanePutPlain,
			}
		}
	}

	return nil
}

// RealizeVertical allocates whatever extra scratch rows the chosen
// stretchy_* driver needs (the horizontal pipeline's own per-stage buffers
// are already handled by Pipeline.Realize). Must run after Realize, since
// it sizes rows from the cached pivot geometry.
func (p *Pipeline) RealizeVertical(arena *Arena) {
	vs := &p.vertical
	rowBytes := align32(p.pivotSDX * p.pivotSDP)
	if rowBytes == 0 {
		return
	}
	switch vs.tag {
	case TagYReductionMax, TagYReductionMean:
		vs.accum = arena.Alloc(rowBytes)
	case TagYReductionFilter:
		vs.accum = arena.Alloc(rowBytes)
		vs.carry = arena.Alloc(rowBytes)
	case TagYExpansionMean, TagYMean, TagYExpansionFilter, TagYFilter:
		vs.accum = arena.Alloc(rowBytes)
		vs.carry = arena.Alloc(rowBytes)
	case TagYScale2x:
		vs.ring[0] = arena.Alloc(rowBytes)
		vs.ring[1] = arena.Alloc(rowBytes)
		vs.ring[2] = arena.Alloc(rowBytes)
		if !p.AtPivotEnd() {
			vs.final0 = arena.Alloc(rowBytes)
			vs.final1 = arena.Alloc(rowBytes)
		}
	}
}

// DoneVertical releases whatever RealizeVertical allocated, in exact
// reverse order.
func (p *Pipeline) DoneVertical(arena *Arena) {
	vs := &p.vertical
	if vs.final1 != nil {
		arena.Free(vs.final1)
		vs.final1 = nil
	}
	if vs.final0 != nil {
		arena.Free(vs.final0)
		vs.final0 = nil
	}
	for i := 2; i >= 0; i-- {
		if vs.ring[i] != nil {
			arena.Free(vs.ring[i])
			vs.ring[i] = nil
		}
	}
	if vs.carry != nil {
		arena.Free(vs.carry)
		vs.carry = nil
	}
	if vs.accum != nil {
		arena.Free(vs.accum)
		vs.accum = nil
	}
}

// Execute drives src (the top row of the source region) through the
// assembled pipeline, writing dstDY (or vs.ddy) destination rows starting
// at (x, y) on host.
func (p *Pipeline) Execute(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	if vs.planar.active {
		p.executePlanar(host, x, y, src)
		return
	}
	switch vs.tag {
	case TagYCopy:
		p.runIdentityCopy(host, x, y, src)
	case TagYReductionCopy:
		p.runReductionCopy(host, x, y, src)
	case TagYExpansionCopy:
		p.runExpansionCopy(host, x, y, src)
	case TagYReductionMax:
		p.runReductionMax(host, x, y, src)
	case TagYReductionMean:
		p.runReductionMean(host, x, y, src)
	case TagYMean, TagYExpansionMean:
		p.runMeanOrFilterExpansion(host, x, y, src, false)
	case TagYFilter, TagYExpansionFilter:
		p.runMeanOrFilterExpansion(host, x, y, src, true)
	case TagYReductionFilter:
		p.runReductionFilter(host, x, y, src)
	case TagYScale2x:
		p.runScale2x(host, x, y, src)
	}
}

// stretchy_11: identity copy, no vertical combine.
func (p *Pipeline) runIdentityCopy(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	for i := 0; i < vs.sdy; i++ {
		p.Run(rowAt(host, y, x), src)
		y++
		src = src[vs.sdw:]
	}
}

// stretchy_x1: reduction, no combine. Only the first source row of each
// run reaches the pipeline; the rest are skipped. The Slice's run lengths
// sum past sdy by design (slice.go), so rows are addressed through
// srcRowAt off a fixed base pointer rather than by re-slicing src forward
// by the unclamped run length.
func (p *Pipeline) runReductionCopy(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	sl := NewSlice(vs.sdy, vs.ddy)
	row := 0
	for i := 0; i < vs.ddy; i++ {
		run, ok := sl.Step()
		if !ok {
			break
		}
		p.Run(rowAt(host, y, x), srcRowAt(src, row, vs.sdy, vs.sdw))
		y++
		row += run
	}
}

// stretchy_1x: expansion, no combine. Each input row is run through the
// pre-pivot stages once, then replayed through the post-pivot stages `run`
// times to distinct destination rows.
func (p *Pipeline) runExpansionCopy(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	sl := NewSlice(vs.sdy, vs.ddy)
	for i := 0; i < vs.sdy; i++ {
		run, ok := sl.Step()
		if !ok {
			break
		}
		buf := p.PrePivot(src)
		for j := 0; j < run; j++ {
			p.PostPivot(rowAt(host, y, x), buf)
			y++
		}
		src = src[vs.sdw:]
	}
}

// stretchy_max_x1: reduction with per-channel max combine.
func (p *Pipeline) runReductionMax(host Surface, x, y int, src []byte) {
	p.runReductionCombine(host, x, y, src, vsMaxCombine)
}

// stretchy_mean_x1: reduction with mean combine.
func (p *Pipeline) runReductionMean(host Surface, x, y int, src []byte) {
	p.runReductionCombine(host, x, y, src, vsMeanCombine)
}

type vsCombineKind int

const (
	vsMeanCombine vsCombineKind = iota
	vsMaxCombine
)

func (p *Pipeline) runReductionCombine(host Surface, x, y int, src []byte, kind vsCombineKind) {
	vs := &p.vertical
	sl := NewSlice(vs.sdy, vs.ddy)
	row := 0
	for i := 0; i < vs.ddy; i++ {
		run, ok := sl.Step()
		if !ok {
			break
		}
		if run == 1 {
			p.Run(rowAt(host, y, x), srcRowAt(src, row, vs.sdy, vs.sdw))
			y++
			row++
			continue
		}

		first := p.PrePivot(srcRowAt(src, row, vs.sdy, vs.sdw))
		vs.ops.Copy(vs.accum, first)
		for k := 1; k < run; k++ {
			part := p.PrePivot(srcRowAt(src, row+k, vs.sdy, vs.sdw))
			if kind == vsMaxCombine {
				vs.ops.MaxSelf(vs.accum, part)
			} else {
				vs.ops.MeanSelf(vs.accum, part)
			}
		}
		p.PostPivot(rowAt(host, y, x), vs.accum)
		y++
		row += run
	}
}

// stretchy_filter_x1. Preserves the open-question quirk from spec.md §9:
// the source pointer advances by a single row's stride every iteration,
// never by the full run length, so reduction ratios beyond 2:1 do not
// consume every source row. Rows are addressed through srcRowAt off a
// fixed base pointer (clamped to the source extent) rather than by
// re-slicing forward, since the per-iteration advance still runs vs.ddy
// times regardless of sdy.
func (p *Pipeline) runReductionFilter(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	sl := NewSlice(vs.sdy, vs.ddy)
	carryValid := false
	row := 0
	for i := 0; i < vs.ddy; i++ {
		run, ok := sl.Step()
		if !ok {
			break
		}
		cur := p.PrePivot(srcRowAt(src, row, vs.sdy, vs.sdw))
		if carryValid {
			vs.ops.MeanSelf(vs.carry, cur)
			p.PostPivot(rowAt(host, y, x), vs.carry)
		} else {
			p.PostPivot(rowAt(host, y, x), cur)
		}
		y++

		if run > 1 {
			vs.ops.Copy(vs.carry, p.PrePivot(srcRowAt(src, row+run-1, vs.sdy, vs.sdw)))
		} else {
			vs.ops.Copy(vs.carry, cur)
		}
		carryValid = true

		row++
	}
}

// stretchy_mean_1x / stretchy_filter_1x. always selects filter semantics
// (previous always carried forward); when false, mean semantics (previous
// only carried forward when the boundary spans at least two destination
// rows).
func (p *Pipeline) runMeanOrFilterExpansion(host Surface, x, y int, src []byte, alwaysCarry bool) {
	vs := &p.vertical
	sl := NewSlice(vs.sdy, vs.ddy)
	previousValid := false
	for i := 0; i < vs.sdy; i++ {
		run, ok := sl.Step()
		if !ok {
			break
		}
		partial := p.PrePivot(src)
		if previousValid {
			vs.ops.Copy(vs.accum, vs.carry)
			vs.ops.MeanSelf(vs.accum, partial)
			p.PostPivot(rowAt(host, y, x), vs.accum)
		} else {
			p.PostPivot(rowAt(host, y, x), partial)
		}
		y++
		for j := 1; j < run; j++ {
			p.PostPivot(rowAt(host, y, x), partial)
			y++
		}

		if alwaysCarry || run >= 2 {
			vs.ops.Copy(vs.carry, partial)
			previousValid = true
		} else {
			previousValid = false
		}
		src = src[vs.sdw:]
	}
}

// stretchy_scale2x. Maintains a 3-row ring buffer of pre-pivot output
// representing the current source row and its vertical neighbors,
// duplicating the outermost row at the top and bottom edges.
func (p *Pipeline) runScale2x(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	atEnd := p.AtPivotEnd()

	fetch := func(rowIdx int, dst []byte) {
		if rowIdx < 0 {
			rowIdx = 0
		}
		if rowIdx > vs.sdy-1 {
			rowIdx = vs.sdy - 1
		}
		part := p.PrePivot(src[rowIdx*vs.sdw:])
		vs.ops.Copy(dst, part)
	}

	in := vs.ring
	if atEnd {
		// The cached pivot geometry is the destination row here; the ring
		// holds source rows, half as wide.
		w := (p.pivotSDX / 2) * p.pivotSBPP
		for k := range in {
			in[k] = vs.ring[k][:w]
		}
	}

	for i := 0; i < vs.sdy; i++ {
		fetch(i-1, vs.ring[0])
		fetch(i, vs.ring[1])
		fetch(i+1, vs.ring[2])

		if atEnd {
			vs.ops.Scale2x(rowAt(host, y, x), rowAt(host, y+1, x), in[0], in[1], in[2])
		} else {
			vs.ops.Scale2x(vs.final0, vs.final1, vs.ring[0], vs.ring[1], vs.ring[2])
			p.PostPivot(rowAt(host, y, x), vs.final0)
			p.PostPivot(rowAt(host, y+1, x), vs.final1)
		}
		y += 2
	}
}

// executePlanar drives a pipeline whose last stage is an unchained planar
// writer: every stage before it runs in chained mode as usual, and the
// final stage's plane_put kernel is called directly once per plane
// instead of through Put, since only the host (not a Put closure) can
// select which plane a write targets. Each call gets the whole prefix row
// and the plane index; the kernel picks that plane's source pixels itself.
func (p *Pipeline) executePlanar(host Surface, x, y int, src []byte) {
	vs := &p.vertical
	last := p.LastIndex()

	writeRow := func(dstY int, rowSrc []byte) {
		prefix := p.runRange(0, last, rowSrc, false)
		dst := rowAt(host, dstY, x)
		if vs.planar.planeNum == 4 {
			for pl := 0; pl < 4; pl++ {
				host.SetUnchainedPlane(pl)
				vs.planar.put(dst, prefix, pl)
			}
			return
		}
		host.SetUnchainedPlaneMask(0x3)
		vs.planar.put(dst, prefix, 0)
		host.SetUnchainedPlaneMask(0xC)
		vs.planar.put(dst, prefix, 1)
	}

	switch {
	case vs.sdy < vs.ddy:
		sl := NewSlice(vs.sdy, vs.ddy)
		for i := 0; i < vs.sdy; i++ {
			run, ok := sl.Step()
			if !ok {
				break
			}
			for j := 0; j < run; j++ {
				writeRow(y, src)
				y++
			}
			src = src[vs.sdw:]
		}
	case vs.sdy == vs.ddy:
		for i := 0; i < vs.sdy; i++ {
			writeRow(y, src)
			y++
			src = src[vs.sdw:]
		}
	default:
		// Reduction: the Slice's run lengths sum past sdy by design
		// (slice.go), so rows are addressed through srcRowAt off a fixed
		// base pointer rather than by re-slicing src forward by the
		// unclamped run length.
		sl := NewSlice(vs.sdy, vs.ddy)
		row := 0
		for i := 0; i < vs.ddy; i++ {
			run, ok := sl.Step()
			if !ok {
				break
			}
			writeRow(y, srcRowAt(src, row, vs.sdy, vs.sdw))
			y++
			row += run
		}
	}
}
