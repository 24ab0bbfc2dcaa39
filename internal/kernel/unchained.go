package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// Unchained writes a palette-indexed byte stream into 4-plane "unchained"
// VGA-style memory: every 4 consecutive source pixels share one
// destination byte column, one byte per plane. plane_put is called once
// per plane by the vertical driver (see blit.Pipeline.Execute), with the
// host having already selected the target plane via SetUnchainedPlane.
func (r *Registry) Unchained(dx, srcDP int) blit.Stage {
	planePut := func(dst, src []byte, plane int) {
		n := dx / 4
		for i := 0; i < n; i++ {
			dst[i] = src[(i*4+plane)*srcDP]
		}
	}
	return blit.Stage{
		Tag: blit.TagUnchained, SDX: dx, SBPP: 1, SDP: srcDP,
		PlanePut: planePut, PlaneNum: 4,
	}
}

// UnchainedXDouble fuses a horizontal pixel-double into the planar write,
// avoiding the intermediate doubled-width scratch row the unfused
// x_double+unchained pair would need: each source pixel supplies two
// destination columns directly.
func (r *Registry) UnchainedXDouble(dx, srcDP int) blit.Stage {
	planePut := func(dst, src []byte, plane int) {
		n := dx / 4
		for i := 0; i < n; i++ {
			srcIdx := 2*i + plane/2
			dst[i] = src[srcIdx*srcDP]
		}
	}
	return blit.Stage{
		Tag: blit.TagUnchainedXDouble, SDX: dx, SBPP: 1, SDP: srcDP,
		PlanePut: planePut, PlaneNum: 4,
	}
}

// UnchainedPalette16to8 fuses a 16-bit palette lookup into the planar
// write, resolving each 16-bit index through lut before packing.
func (r *Registry) UnchainedPalette16to8(dx int, lut []uint32) blit.Stage {
	planePut := func(dst, src []byte, plane int) {
		n := dx / 4
		for i := 0; i < n; i++ {
			idx := (i*4 + plane) * 2
			key := uint32(src[idx]) | uint32(src[idx+1])<<8
			dst[i] = byte(lut[key])
		}
	}
	return blit.Stage{
		Tag: blit.TagUnchainedPalette16to8, SDX: dx, SBPP: 1, SDP: 2,
		PlanePut: planePut, PlaneNum: 4, Palette: lut,
	}
}

// UnchainedXDoublePalette16to8 fuses all three: a 16-bit palette lookup,
// a horizontal pixel-double, and the planar write, in one pass.
func (r *Registry) UnchainedXDoublePalette16to8(dx int, lut []uint32) blit.Stage {
	planePut := func(dst, src []byte, plane int) {
		n := dx / 4
		for i := 0; i < n; i++ {
			srcIdx := 2*i + plane/2
			key := uint32(src[srcIdx*2]) | uint32(src[srcIdx*2+1])<<8
			dst[i] = byte(lut[key])
		}
	}
	return blit.Stage{
		Tag: blit.TagUnchainedXDoublePalette16to8, SDX: dx, SBPP: 1, SDP: 2,
		PlanePut: planePut, PlaneNum: 4, Palette: lut,
	}
}
