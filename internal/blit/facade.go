package blit

// Context is the process-wide state every pipeline shares: the scratch
// arena and the wide-register capability flag. Spec.md §5 treats the
// arena, the kernel-internal precomputed tables, and the fast-write
// micro-state as process-wide; concurrent blits are unsupported, and the
// caller must serialize them. A single Context is meant to be constructed
// once per process (or once per test case) and threaded through every
// pipeline it initializes.
type Context struct {
	Arena *Arena
	Reg   Registry
	Wide  bool // wide-register (fast-write) capability available

	// Teardown, if set, is called once after every completed Blit: the
	// runtime teardown hook of spec.md §2.8/§4.5, releasing whatever
	// transient micro-state a wide-register write path left behind. nil
	// is a valid no-op. See internal/blit/accel.Capability.Teardown.
	Teardown func()
}

// NewContext builds a Context over a fresh arena. reg supplies every
// concrete kernel; wide reports whether the host's wide-register
// fast-write path is available (see internal/blit/accel); teardown is the
// per-frame micro-state release hook, or nil if the host has none.
func NewContext(reg Registry, wide bool, teardown func()) *Context {
	return &Context{Arena: NewArena(), Reg: reg, Wide: wide, Teardown: teardown}
}

// Done verifies the arena has no outstanding allocations and releases it.
func (c *Context) Done() error {
	return c.Arena.Done()
}

// DirectGeometry describes a direct (non-palette) source: its RGB layout
// and stride-per-pixel.
type DirectGeometry struct {
	Def RGBDef
	DP  int
}

// InitDirect builds the "direct" initializer (video_stretch_pipeline_init
// in the original): converts between RGB layouts when they differ,
// otherwise only rotates when the source stride-per-pixel doesn't match
// the destination's packed width.
func (c *Context) InitDirect(p *Pipeline, src DirectGeometry, srcDX, srcDY, dstDX, dstDY int, host Surface, combine Combine, requireWide bool) error {
	dstDef, ok := host.RGBDef()
	if !ok {
		return ErrUnsupportedConversion
	}
	in := AssembleInput{
		DstDX:  dstDX,
		SrcDX:  srcDX,
		SrcDP:  src.DP,
		SrcBPP: bytesPerDepth(src.Def.Depth),
		DstBPP: host.BytesPerPixel(),
		Combine: combine,
		Unchained: host.IsUnchained(),
		Wide:   c.Wide,
		Kind:   ConversionDirect,
		SrcDef: src.Def,
		DstDef: dstDef,
	}
	return c.build(p, src.DP, in, srcDX, srcDY, dstDX, dstDY, host, requireWide)
}

// InitHardwarePalette builds the "hardware palette" initializer: the host
// already maps palette indices to color in hardware, so no conversion
// stage is needed, only rotation when strides differ.
func (c *Context) InitHardwarePalette(p *Pipeline, srcDP, srcBPP, srcDX, srcDY, dstDX, dstDY int, host Surface, combine Combine, requireWide bool) error {
	in := AssembleInput{
		DstDX:  dstDX,
		SrcDX:  srcDX,
		SrcDP:  srcDP,
		SrcBPP: srcBPP,
		DstBPP: host.BytesPerPixel(),
		Combine: combine,
		Unchained: host.IsUnchained(),
		Wide:   c.Wide,
		Kind:   ConversionDirect,
		SrcDef: RGBDef{},
		DstDef: RGBDef{},
	}
	// A hardware-palette destination is never a direct-RGB conversion
	// target; skip the RGBDef comparison entirely by making the two defs
	// compare equal so Assemble falls straight to the rotation branch.
	in.DstDef = in.SrcDef
	return c.build(p, srcDP, in, srcDX, srcDY, dstDX, dstDY, host, requireWide)
}

// InitSoftwarePalette8 builds the "software palette 8" initializer:
// always emits a palette8to{8,16,32} stage driven by a caller-owned
// lookup table, selected by the destination's bytes-per-pixel.
func (c *Context) InitSoftwarePalette8(p *Pipeline, lut []uint32, srcDX, srcDY, dstDX, dstDY int, host Surface, combine Combine, requireWide bool) error {
	in := AssembleInput{
		DstDX:  dstDX,
		SrcDX:  srcDX,
		SrcDP:  1,
		SrcBPP: 1,
		DstBPP: host.BytesPerPixel(),
		Combine: combine,
		Unchained: host.IsUnchained(),
		Wide:   c.Wide,
		Kind:   ConversionPalette8,
		Palette: lut,
	}
	return c.build(p, 1, in, srcDX, srcDY, dstDX, dstDY, host, requireWide)
}

// InitSoftwarePalette16 builds the "software palette 16" initializer: same
// as InitSoftwarePalette8 but for a 16-bit-indexed source, emitting
// palette16to{8,16,32}.
func (c *Context) InitSoftwarePalette16(p *Pipeline, lut []uint32, srcDX, srcDY, dstDX, dstDY int, host Surface, combine Combine, requireWide bool) error {
	in := AssembleInput{
		DstDX:  dstDX,
		SrcDX:  srcDX,
		SrcDP:  2,
		SrcBPP: 2,
		DstBPP: host.BytesPerPixel(),
		Combine: combine,
		Unchained: host.IsUnchained(),
		Wide:   c.Wide,
		Kind:   ConversionPalette16,
		Palette: lut,
	}
	return c.build(p, 2, in, srcDX, srcDY, dstDX, dstDY, host, requireWide)
}

// build runs the shared tail common to every initializer flavor: assemble,
// vertical setup, and scratch realization. On any failure the pipeline is
// left with no outstanding allocations, matching spec.md §7's "no partial
// pipelines observable by the caller".
func (c *Context) build(p *Pipeline, srcDP int, in AssembleInput, srcDX, srcDY, dstDX, dstDY int, host Surface, requireWide bool) error {
	if requireWide && !c.Wide {
		host.TargetErr("wide-register capability required but not available")
		return ErrCapabilityMissing
	}

	if err := Assemble(p, c.Reg, in); err != nil {
		return err
	}

	rgbMode := host.Index() == IndexRGB
	bpp := host.BytesPerPixel()
	if err := SetupVertical(p, c.Reg, srcDX, srcDY, dstDX, dstDY, srcDP*srcDX, bpp, rgbMode, in.Combine); err != nil {
		return err
	}

	p.Realize(in.DstDX, in.DstBPP, in.DstBPP, c.Arena)
	p.RealizeVertical(c.Arena)

	return nil
}

// Teardown releases a pipeline's scratch, in the order spec.md §5 requires:
// exact reverse of init relative to every other still-live pipeline. The
// caller is responsible for calling Teardown on every pipeline it built, in
// the reverse order it built them.
func (p *Pipeline) Teardown(arena *Arena) {
	p.DoneVertical(arena)
	p.Done(arena)
}

// Blit is the execution entry point (video_blit_pipeline in the original):
// one call into the vertical driver, writing dstDY rows starting at (x, y)
// on host from src, the top row of the source region. A frame consists of
// exactly one vertical driver call, so c.Teardown runs exactly once here,
// after Execute returns (spec.md §4.5).
func (c *Context) Blit(p *Pipeline, host Surface, x, y int, src []byte) {
	p.Execute(host, x, y, src)
	if c.Teardown != nil {
		c.Teardown()
	}
}
