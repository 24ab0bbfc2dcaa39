package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// Copy builds the plain byte-for-byte terminal write. The assembler
// appends it as the pipeline's last stage when fast-write terminal
// enforcement calls for one: ordinarily Pipeline.Realize leaves its buffer
// nil and it writes straight into the caller's destination row, but when
// the vertical driver's pivot lands at the very end (no post-pivot
// sub-pipeline, as with the reduction drivers), it gets a real buffer of
// dx*bpp bytes like any interior stage.
func (r *Registry) Copy(bpp, dx int) blit.Stage {
	put := func(dst, src []byte) {
		n := len(src)
		if n > len(dst) {
			n = len(dst)
		}
		copy(dst[:n], src[:n])
	}
	return blit.Stage{Tag: blit.TagXCopy, SDX: dx, SBPP: bpp, SDP: bpp, Put: put, PutPlain: put, BufferSize: dx * bpp}
}

// Rotation repacks dx pixels from a stride-per-pixel of srcDP down to a
// flat bpp, with no color change. Used both as the step-1 prefix when an
// RGB layout already matches but its stride doesn't, and wherever a
// plain-input stage needs packing.
func (r *Registry) Rotation(bpp, dx, srcDP int) blit.Stage {
	put := func(dst, src []byte) {
		so, do := 0, 0
		for i := 0; i < dx; i++ {
			copy(dst[do:do+bpp], src[so:so+bpp])
			so += srcDP
			do += bpp
		}
	}
	var putPlain blit.PutFunc
	if srcDP == bpp {
		putPlain = put
	}
	return blit.Stage{
		Tag: blit.TagRotation, SDX: dx, SBPP: bpp, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dx * bpp,
	}
}
