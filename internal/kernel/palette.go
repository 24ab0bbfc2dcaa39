package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// Palette8 builds an 8-bit palette-index lookup targeting bpp (1, 2, or
// 4 destination bytes per pixel), operating on dx pixels.
func (r *Registry) Palette8(bpp, dx int, lut []uint32) blit.Stage {
	tag := blit.TagPalette8to8
	switch bpp {
	case 2:
		tag = blit.TagPalette8to16
	case 4:
		tag = blit.TagPalette8to32
	}
	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			writePaletteColor(dst[i*bpp:], bpp, lut[src[i]])
		}
	}
	return blit.Stage{
		Tag: tag, SDX: dx, SBPP: 1, SDP: 1,
		Put: put, PutPlain: put, BufferSize: dx * bpp, Palette: lut,
	}
}

// Palette16 builds a 16-bit palette-index lookup targeting bpp, operating
// on dx pixels. The source stride-per-pixel is always 2 (little-endian
// index bytes), which the assembler's peephole fusions key on.
func (r *Registry) Palette16(bpp, dx int, lut []uint32) blit.Stage {
	tag := blit.TagPalette16to8
	switch bpp {
	case 2:
		tag = blit.TagPalette16to16
	case 4:
		tag = blit.TagPalette16to32
	}
	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			key := uint32(src[i*2]) | uint32(src[i*2+1])<<8
			writePaletteColor(dst[i*bpp:], bpp, lut[key])
		}
	}
	return blit.Stage{
		Tag: tag, SDX: dx, SBPP: 2, SDP: 2,
		Put: put, PutPlain: put, BufferSize: dx * bpp, Palette: lut,
	}
}

func writePaletteColor(dst []byte, bpp int, color uint32) {
	switch bpp {
	case 1:
		dst[0] = byte(color)
	case 2:
		dst[0] = byte(color)
		dst[1] = byte(color >> 8)
	default: // 4
		dst[0] = byte(color)
		dst[1] = byte(color >> 8)
		dst[2] = byte(color >> 16)
		dst[3] = byte(color >> 24)
	}
}
