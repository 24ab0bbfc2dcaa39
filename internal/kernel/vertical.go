package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// verticalOps is the scalar blit.VerticalOps implementation shared by
// every combine family (mean/max/Scale2x). rgbMode only changes the
// lazily built lookup table Init primes; the per-call arithmetic is
// identical either way at this scalar reference tier.
type verticalOps struct {
	reg     *Registry
	bpp     int
	rgbMode bool
}

// Vertical returns the combine primitives for a bpp-wide pivot. The
// shared mean table (used by every reduction/expansion mean or filter
// driver) is built lazily by the first MeanSelf or Init call.
func (r *Registry) Vertical(bpp int, rgbMode bool) blit.VerticalOps {
	return &verticalOps{reg: r, bpp: bpp, rgbMode: rgbMode}
}

func (v *verticalOps) Copy(dst, src []byte) {
	copy(dst, src)
}

func (v *verticalOps) MeanSelf(dst, src []byte) {
	v.reg.ensureMeanTable()
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] = v.reg.meanTable[dst[i]][src[i]]
	}
}

func (v *verticalOps) MaxSelf(dst, src []byte) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		if src[i] > dst[i] {
			dst[i] = src[i]
		}
	}
}

// Scale2x applies the standard Scale2x/AdvMAME2x rule per output pixel
// pair, using row1 as the center row and row0/row2 as its (possibly
// edge-duplicated) vertical neighbors. Horizontal neighbors come from
// adjacent bytes within row1 itself, clamped at the row edges.
func (v *verticalOps) Scale2x(out0, out1, row0, row1, row2 []byte) {
	n := len(row1)
	bpp := v.bpp
	if bpp <= 0 {
		bpp = 1
	}
	cols := n / bpp
	for c := 0; c < cols; c++ {
		center := row1[c*bpp : c*bpp+bpp]
		up := row0[c*bpp : c*bpp+bpp]
		down := row2[c*bpp : c*bpp+bpp]
		left := center
		if c > 0 {
			left = row1[(c-1)*bpp : (c-1)*bpp+bpp]
		}
		right := center
		if c < cols-1 {
			right = row1[(c+1)*bpp : (c+1)*bpp+bpp]
		}

		e0, e1, e2, e3 := center, center, center, center
		if bytesEqual(up, left) && !bytesEqual(up, right) && !bytesEqual(left, down) {
			e0 = up
		}
		if bytesEqual(up, right) && !bytesEqual(up, left) && !bytesEqual(right, down) {
			e1 = up
		}
		if bytesEqual(down, left) && !bytesEqual(down, right) && !bytesEqual(left, up) {
			e2 = down
		}
		if bytesEqual(down, right) && !bytesEqual(down, left) && !bytesEqual(right, up) {
			e3 = down
		}

		copy(out0[2*c*bpp:], e0)
		copy(out0[(2*c+1)*bpp:], e1)
		copy(out1[2*c*bpp:], e2)
		copy(out1[(2*c+1)*bpp:], e3)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v *verticalOps) Init() {
	v.reg.ensureMeanTable()
	v.reg.ensureTriadTable()
}

func (r *Registry) ensureMeanTable() {
	if r.meanReady {
		return
	}
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			r.meanTable[a][b] = uint8((a + b + 1) / 2)
		}
	}
	r.meanReady = true
}
