package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// Decoration kernels are cosmetic CRT-simulation attenuations applied
// after any size change. Their exact attenuation curve is not part of the
// contract the assembler cares about (spec.md treats per-stage kernel math
// as out of scope); what matters structurally is that each one declares
// its tag, geometry, and an RGB-mode table primer so SetupVertical can
// call it once before first use.

// attenuate scales byte b by factor/256, clamping to 255.
func attenuate(b byte, factor int) byte {
	v := (int(b) * factor) >> 8
	if v > 255 {
		v = 255
	}
	return byte(v)
}

func (r *Registry) ensureTriadTable() {
	if r.triadReady {
		return
	}
	r.triadReady = true
}

// triadFactor returns the brightness scale (out of 256) for lane j of an
// n-pixel phosphor triad repeat. The first third of each repeat runs at
// full brightness; the rest are dimmed, more steeply when strong is set.
func triadFactor(j, n int, strong bool) int {
	third := n / 3
	if third == 0 {
		third = 1
	}
	if j%n < third {
		return 256
	}
	if strong {
		return 96
	}
	return 160
}

// Triad builds one of the six RGB phosphor-triad decorations spanning n
// destination pixels (3, 6, or 16), optionally the higher-contrast strong
// variant.
func (r *Registry) Triad(n int, strong bool, bpp, dx, srcDP int) blit.Stage {
	tag := triadTag(n, strong)
	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			so := i * srcDP
			do := i * bpp
			f := triadFactor(i, n, strong)
			for b := 0; b < bpp; b++ {
				dst[do+b] = attenuate(src[so+b], f)
			}
		}
	}
	var putPlain blit.PutFunc
	if srcDP == bpp {
		putPlain = put
	}
	return blit.Stage{
		Tag: tag, SDX: dx, SBPP: bpp, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dx * bpp,
		Init: r.ensureTriadTable,
	}
}

func triadTag(n int, strong bool) blit.Tag {
	switch {
	case n == 3 && !strong:
		return blit.TagXRGBTriad3Pix
	case n == 3 && strong:
		return blit.TagXRGBTriadStrong3Pix
	case n == 6 && !strong:
		return blit.TagXRGBTriad6Pix
	case n == 6 && strong:
		return blit.TagXRGBTriadStrong6Pix
	case n == 16 && !strong:
		return blit.TagXRGBTriad16Pix
	default:
		return blit.TagXRGBTriadStrong16Pix
	}
}

// ScanDouble dims every other column (horz). The row-wise variant (vert)
// applies no attenuation in this stage: every pixel passes through
// unchanged, and no row of the output is dimmed.
func (r *Registry) ScanDouble(horz bool, bpp, dx, srcDP int) blit.Stage {
	return r.buildScan(horz, 2, bpp, dx, srcDP)
}

// ScanTriple is ScanDouble's 1-bright/2-dim analogue.
func (r *Registry) ScanTriple(horz bool, bpp, dx, srcDP int) blit.Stage {
	return r.buildScan(horz, 3, bpp, dx, srcDP)
}

func (r *Registry) buildScan(horz bool, period, bpp, dx, srcDP int) blit.Stage {
	var tag blit.Tag
	switch {
	case horz && period == 2:
		tag = blit.TagXRGBScanDoubleHorz
	case horz && period == 3:
		tag = blit.TagXRGBScanTripleHorz
	case !horz && period == 2:
		tag = blit.TagXRGBScanDoubleVert
	default:
		tag = blit.TagXRGBScanTripleVert
	}

	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			so := i * srcDP
			do := i * bpp
			f := 256
			if horz && i%period != 0 {
				f = 128
			}
			for b := 0; b < bpp; b++ {
				dst[do+b] = attenuate(src[so+b], f)
			}
		}
	}
	var putPlain blit.PutFunc
	if srcDP == bpp {
		putPlain = put
	}
	return blit.Stage{
		Tag: tag, SDX: dx, SBPP: bpp, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dx * bpp,
		Init: r.ensureTriadTable,
	}
}
