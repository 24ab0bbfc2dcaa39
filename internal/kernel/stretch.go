package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// StretchX builds the horizontal resize stage: dstDX pixels resampled
// from srcDX using the same Bresenham run-length schedule the vertical
// driver uses (blit.Slice), nearest-source-pixel on expansion and
// first-of-run decimation on reduction. Exact integer ratios get their
// own tag (x_double/x_triple/x_quadruple) so the assembler's fast-write
// classifier and peephole fusions can recognize them; the kernel itself
// is identical regardless of tag.
func (r *Registry) StretchX(bpp, dstDX, srcDX, srcDP int) blit.Stage {
	tag := blit.TagXStretch
	switch {
	case srcDX > 0 && dstDX == srcDX*2:
		tag = blit.TagXDouble
	case srcDX > 0 && dstDX == srcDX*3:
		tag = blit.TagXTriple
	case srcDX > 0 && dstDX == srcDX*4:
		tag = blit.TagXQuadruple
	}

	put := func(dst, src []byte) {
		sl := blit.NewSlice(srcDX, dstDX)
		so, do := 0, 0
		if dstDX >= srcDX {
			for i := 0; i < srcDX; i++ {
				run, ok := sl.Step()
				if !ok {
					break
				}
				for j := 0; j < run; j++ {
					copy(dst[do:do+bpp], src[so:so+bpp])
					do += bpp
				}
				so += srcDP
			}
			return
		}
		for i := 0; i < dstDX; i++ {
			run, ok := sl.Step()
			if !ok {
				break
			}
			copy(dst[do:do+bpp], src[so:so+bpp])
			do += bpp
			so += run * srcDP
		}
	}

	var putPlain blit.PutFunc
	if srcDP == bpp {
		putPlain = put
	}
	return blit.Stage{
		Tag: tag, SDX: srcDX, SBPP: bpp, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dstDX * bpp,
	}
}

// Filter builds a 3-tap horizontal low-pass stage operating on dx pixels,
// per byte lane (it has no notion of RGB channel boundaries, matching
// spec.md's treatment of per-stage kernel math as contract-only). Edge
// pixels repeat the outermost sample rather than reading out of bounds.
func (r *Registry) Filter(bpp, dx, srcDP int) blit.Stage {
	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			so := i * srcDP
			do := i * bpp
			prev := so
			if i > 0 {
				prev = so - srcDP
			}
			next := so
			if i < dx-1 {
				next = so + srcDP
			}
			for b := 0; b < bpp; b++ {
				sum := int(src[prev+b]) + 2*int(src[so+b]) + int(src[next+b])
				dst[do+b] = byte(sum / 4)
			}
		}
	}
	var putPlain blit.PutFunc
	if srcDP == bpp {
		putPlain = put
	}
	return blit.Stage{
		Tag: blit.TagXFilter, SDX: dx, SBPP: bpp, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dx * bpp,
	}
}
