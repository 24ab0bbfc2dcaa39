package blit

// Registry builds concrete Stage values for every tag the assembler can
// emit. The assembler in this package never imports a concrete kernel
// package directly: it is handed a Registry by the façade, the same way
// the pipeline optimizer the teacher's codebase was built around depends
// on a Renderer interface rather than a specific CPU/GPU implementation.
// internal/kernel provides the reference scalar Registry.
type Registry interface {
	// Copy builds the fast terminal copy stage for the given destination
	// bytes-per-pixel, operating on dx pixels. dx matters even though the
	// kernel is a flat byte copy: when the vertical driver's pivot lands at
	// the very end of the pipeline (no post-pivot sub-pipeline), this
	// stage is realized with its own scratch buffer like any interior
	// stage, and its declared width is what sizes that buffer.
	Copy(bpp, dx int) Stage

	// Rotation builds a stride-pack stage: same RGB layout, different
	// stride-per-pixel, operating on dx pixels.
	Rotation(bpp, dx, srcDP int) Stage

	// StretchX builds a horizontal resize stage (stretch or reduce)
	// targeting dstDX from srcDX.
	StretchX(bpp, dstDX, srcDX, srcDP int) Stage

	// Filter builds a horizontal low-pass filter stage operating at width
	// dx.
	Filter(bpp, dx, srcDP int) Stage

	// Triad builds one of the six RGB phosphor-triad decorations. n is the
	// span in pixels (3, 6, or 16); strong selects the higher-contrast
	// variant.
	Triad(n int, strong bool, bpp, dx, srcDP int) Stage

	// ScanDouble and ScanTriple build the horizontal or vertical scanline
	// decorations.
	ScanDouble(horz bool, bpp, dx, srcDP int) Stage
	ScanTriple(horz bool, bpp, dx, srcDP int) Stage

	// Unchained builds the planar VGA writer and its double-width and
	// palette16-fused variants.
	Unchained(dx, srcDP int) Stage
	UnchainedXDouble(dx, srcDP int) Stage
	UnchainedPalette16to8(dx int, lut []uint32) Stage
	UnchainedXDoublePalette16to8(dx int, lut []uint32) Stage

	// Palette8 and Palette16 build a palette-lookup conversion stage
	// targeting the given destination bytes-per-pixel, operating on dx
	// pixels.
	Palette8(bpp, dx int, lut []uint32) Stage
	Palette16(bpp, dx int, lut []uint32) Stage

	// RGBConvert builds the bit-layout converter stage for a recognized
	// (from, to) depth pair, or reports ok=false if unsupported.
	RGBConvert(from, to RGBDef, dx, srcDP int) (Stage, bool)

	// Vertical returns the combine primitives the vertical driver needs at
	// the pivot: self-blending two rows in place, and Scale2x's
	// 3-row-in/2-row-out kernel. rgbMode selects the RGB-aware max variant
	// when the pivot's color space is direct RGB rather than an opaque
	// byte span.
	Vertical(bpp int, rgbMode bool) VerticalOps
}

// VerticalOps groups the row-combine primitives the vertical driver
// applies at the pivot point, independent of any particular horizontal
// stage.
type VerticalOps interface {
	// Copy writes src into dst unchanged (used to seed a reduction's
	// running accumulator).
	Copy(dst, src []byte)

	// MeanSelf blends src into dst in place, producing the running mean.
	MeanSelf(dst, src []byte)

	// MaxSelf takes the per-channel (rgbMode) or per-byte maximum of dst
	// and src, in place.
	MaxSelf(dst, src []byte)

	// Scale2x computes the Scale2x 3-row-in/2-row-out rule: row1 is the
	// current source row, row0/row2 its vertical neighbors (possibly equal
	// to row1 at the image's top/bottom edge). out0/out1 receive the two
	// destination rows.
	Scale2x(out0, out1, row0, row1, row2 []byte)

	// Init performs any lazy, idempotent table fill this family of
	// kernels needs before first use in RGB mode (mean/triad/scandouble/
	// max-rgb tables in the original). Safe to call more than once.
	Init()
}
