package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// RGBConvert builds the bit-layout converter stage for a recognized
// (from, to) depth pair (888→8888, 555→{332,565,8888}, 8888→{332,555,565}
// per blit.ConversionTag), unpacking each channel from its source shift
// and bit width and repacking it at the destination's.
func (r *Registry) RGBConvert(from, to blit.RGBDef, dx, srcDP int) (blit.Stage, bool) {
	tag, ok := blit.ConversionTag(from.Depth, to.Depth)
	if !ok {
		return blit.Stage{}, false
	}
	srcBPP := blit.BytesPerDepth(from.Depth)
	dstBPP := blit.BytesPerDepth(to.Depth)

	put := func(dst, src []byte) {
		for i := 0; i < dx; i++ {
			pixel := readPacked(src[i*srcDP:], srcBPP)
			r8 := unpackChannel(pixel, from.RBits, from.RShift)
			g8 := unpackChannel(pixel, from.GBits, from.GShift)
			b8 := unpackChannel(pixel, from.BBits, from.BShift)
			out := packChannel(r8, to.RBits, to.RShift) |
				packChannel(g8, to.GBits, to.GShift) |
				packChannel(b8, to.BBits, to.BShift)
			writePacked(dst[i*dstBPP:], dstBPP, out)
		}
	}
	var putPlain blit.PutFunc
	if srcDP == srcBPP {
		putPlain = put
	}
	return blit.Stage{
		Tag: tag, SDX: dx, SBPP: srcBPP, SDP: srcDP,
		Put: put, PutPlain: putPlain, BufferSize: dx * dstBPP,
	}, true
}

func readPacked(src []byte, bpp int) uint32 {
	var v uint32
	for i := 0; i < bpp; i++ {
		v |= uint32(src[i]) << (8 * i)
	}
	return v
}

func writePacked(dst []byte, bpp int, v uint32) {
	for i := 0; i < bpp; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// unpackChannel extracts a bits-wide field at shift and scales it up to a
// full 8-bit channel value by left-shifting into the high bits (the low
// bits are left zero rather than bit-replicated).
func unpackChannel(pixel uint32, bits, shift uint8) uint8 {
	if bits == 0 {
		return 0
	}
	mask := uint32(1)<<bits - 1
	field := (pixel >> shift) & mask
	if bits >= 8 {
		return uint8(field >> (bits - 8))
	}
	return uint8(field << (8 - bits))
}

// packChannel scales an 8-bit channel value down to a bits-wide field and
// places it at shift.
func packChannel(value uint8, bits, shift uint8) uint32 {
	if bits == 0 {
		return 0
	}
	field := uint32(value) >> (8 - bits)
	return field << shift
}
