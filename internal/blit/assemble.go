package blit

// ConversionKind selects which step-1 prefix Assemble inserts, matching
// the blit façade's four initializer flavors (spec.md §4.6): a direct
// RGB-to-RGB conversion/rotation, a no-op (hardware palette: rotation
// only when strides differ), or one of the two software palette lookups.
type ConversionKind int

const (
	ConversionDirect ConversionKind = iota
	ConversionPalette8
	ConversionPalette16
)

// AssembleInput bundles everything the assembler needs: the geometry of
// the call (spec.md §4.4's dst_dx, src_dx, src_dp), the combine bitmask,
// and enough about the conversion flavor and destination to run every
// step, including the fast-write classifier and the unchained planar
// write.
type AssembleInput struct {
	DstDX  int
	SrcDX  int
	SrcDP  int
	SrcBPP int
	DstBPP int

	Combine   Combine
	Unchained bool
	Wide      bool

	Kind    ConversionKind
	SrcDef  RGBDef // used by ConversionDirect
	DstDef  RGBDef
	Palette []uint32 // used by ConversionPalette8/ConversionPalette16
}

// Assemble builds the full stage sequence into p per spec.md §4.4: the
// conversion/rotation prefix, the horizontal filter/stretch/filter
// sandwich, the fixed-order decorations, the planar write, fast-write
// terminal enforcement, and the post-assembly peephole fusions. reg
// supplies every concrete kernel; Assemble itself never touches pixel
// bytes.
func Assemble(p *Pipeline, reg Registry, in AssembleInput) error {
	dx := in.SrcDX
	dp := in.SrcDP
	bpp := in.SrcBPP

	// Step 1: conversion & rotation prefix.
	switch in.Kind {
	case ConversionPalette8:
		p.Insert(reg.Palette8(in.DstBPP, dx, in.Palette))
		dp, bpp = in.DstBPP, in.DstBPP
	case ConversionPalette16:
		p.Insert(reg.Palette16(in.DstBPP, dx, in.Palette))
		dp, bpp = in.DstBPP, in.DstBPP
	default: // ConversionDirect
		if !in.SrcDef.Equal(in.DstDef) {
			st, ok := reg.RGBConvert(in.SrcDef, in.DstDef, dx, dp)
			if !ok {
				return ErrUnsupportedConversion
			}
			p.Insert(st)
			dp = bytesPerDepth(in.DstDef.Depth)
			bpp = dp
		} else if dp != in.DstBPP {
			p.Insert(reg.Rotation(in.DstBPP, dx, dp))
			dp, bpp = in.DstBPP, in.DstBPP
		}
	}

	combineY := in.Combine.Y()
	requireLastNotConversion := combineY == CombineYMean || combineY == CombineYFilter
	requireLast := combineY != CombineYScale2x

	// Step 2: horizontal filter, pre (reduction only).
	if in.Combine.Has(CombineXFilter) && in.SrcDX > in.DstDX {
		p.Insert(reg.Filter(bpp, dx, dp))
		dp = bpp
	}

	// Step 3: horizontal stretch, skipped when Scale2x owns the doubling.
	scale2xOwnsDouble := in.DstDX == 2*in.SrcDX && combineY == CombineYScale2x
	if !scale2xOwnsDouble && in.DstDX != dx {
		p.Insert(reg.StretchX(bpp, in.DstDX, dx, dp))
		dx = in.DstDX
		dp = bpp
	}

	// Step 4: horizontal filter, post (expansion/copy only).
	if in.Combine.Has(CombineXFilter) && in.SrcDX <= in.DstDX {
		p.Insert(reg.Filter(bpp, in.DstDX, dp))
		dx = in.DstDX
		dp = bpp
	}

	// Step 5: decorations, fixed order.
	order := []struct {
		flag  Combine
		build func() Stage
	}{
		{CombineXRGBTriad16Pix, func() Stage { return reg.Triad(16, false, bpp, dx, dp) }},
		{CombineXRGBTriadStrong16Pix, func() Stage { return reg.Triad(16, true, bpp, dx, dp) }},
		{CombineXRGBTriad6Pix, func() Stage { return reg.Triad(6, false, bpp, dx, dp) }},
		{CombineXRGBTriadStrong6Pix, func() Stage { return reg.Triad(6, true, bpp, dx, dp) }},
		{CombineXRGBTriad3Pix, func() Stage { return reg.Triad(3, false, bpp, dx, dp) }},
		{CombineXRGBTriadStrong3Pix, func() Stage { return reg.Triad(3, true, bpp, dx, dp) }},
		{CombineXRGBScanDoubleHorz, func() Stage { return reg.ScanDouble(true, bpp, dx, dp) }},
		{CombineXRGBScanTripleHorz, func() Stage { return reg.ScanTriple(true, bpp, dx, dp) }},
		{CombineXRGBScanDoubleVert, func() Stage { return reg.ScanDouble(false, bpp, dx, dp) }},
		{CombineXRGBScanTripleVert, func() Stage { return reg.ScanTriple(false, bpp, dx, dp) }},
	}
	for _, d := range order {
		if in.Combine.Has(d.flag) {
			p.Insert(d.build())
			dp = bpp
		}
	}

	// Step 6: planar write for unchained VGA destinations.
	if bpp == 1 && in.Unchained {
		p.Insert(reg.Unchained(dx, dp))
		dp = bpp
	}

	// Step 7: fast-write terminal enforcement.
	empty := p.Len() == 0
	var lastConversion, lastFastWrite bool
	if !empty {
		last := p.Stage(p.LastIndex())
		lastConversion = last.Tag.IsConversion()
		lastFastWrite = last.IsFastWrite(in.Wide)
	}
	needsTerminal := (requireLast && empty) ||
		(requireLastNotConversion && lastConversion) ||
		(!empty && !lastFastWrite)
	if needsTerminal {
		p.Insert(reg.Copy(in.DstBPP, in.DstDX))
	}

	applyPeepholeFusions(p, reg, requireLastNotConversion, dx, dp)

	return nil
}

// applyPeepholeFusions rewrites the pipeline's tail per spec.md §4.4. All
// three fusions only fire when the vertical combine does not require a
// non-conversion terminal (mean/filter combine forbids collapsing a
// conversion stage into the fused form); otherwise none of them fires.
func applyPeepholeFusions(p *Pipeline, reg Registry, requireLastNotConversion bool, dx, dp int) {
	if requireLastNotConversion {
		return
	}

	n := p.Len()
	if n >= 3 {
		a, b, c := p.Stage(n-3), p.Stage(n-2), p.Stage(n-1)
		if a.Tag == TagPalette16to8 && a.SDP == 2 && b.Tag == TagXDouble && c.Tag == TagUnchained {
			p.Substitute(n-3, n, reg.UnchainedXDoublePalette16to8(dx, a.Palette))
			return
		}
	}
	n = p.Len()
	if n >= 2 {
		a, b := p.Stage(n-2), p.Stage(n-1)
		if a.Tag == TagPalette16to8 && a.SDP == 2 && b.Tag == TagUnchained {
			p.Substitute(n-2, n, reg.UnchainedPalette16to8(dx, a.Palette))
			return
		}
	}

	n = p.Len()
	if n >= 2 {
		a, b := p.Stage(n-2), p.Stage(n-1)
		if a.Tag == TagXDouble && b.Tag == TagUnchained {
			p.Substitute(n-2, n, reg.UnchainedXDouble(dx, dp))
		}
	}
}
