package blit

// Depth names a bit-packed RGB layout's total pixel width class, used to
// look up which conversions are recognized between two RGBDefs.
type Depth int

const (
	Depth332  Depth = iota // 8-bit packed RGB (3-3-2)
	Depth555               // 16-bit packed RGB (5-5-5, one spare bit)
	Depth565               // 16-bit packed RGB (5-6-5)
	Depth888               // 24-bit packed RGB, three bytes per pixel
	Depth8888              // 32-bit packed RGB with a spare/alpha byte
)

// RGBDef describes a packed RGB channel layout as a 6-tuple of per-channel
// bit width and shift, the same shape the host surface and the source
// image both report.
type RGBDef struct {
	Depth   Depth
	RBits   uint8
	RShift  uint8
	GBits   uint8
	GShift  uint8
	BBits   uint8
	BShift  uint8
}

// Equal reports whether two RGBDefs describe the identical bit layout
// (same depth class and same per-channel bits/shifts). Two defs of the
// same Depth can still differ in shift (e.g. BGR vs RGB ordering within the
// same bit widths); the pipeline must rotate, not merely reinterpret, in
// that case.
func (d RGBDef) Equal(o RGBDef) bool {
	return d.Depth == o.Depth &&
		d.RBits == o.RBits && d.RShift == o.RShift &&
		d.GBits == o.GBits && d.GShift == o.GShift &&
		d.BBits == o.BBits && d.BShift == o.BShift
}

// Standard layouts. Callers building a Surface or source description
// typically start from one of these.
var (
	RGB332  = RGBDef{Depth: Depth332, RBits: 3, RShift: 5, GBits: 3, GShift: 2, BBits: 2, BShift: 0}
	RGB555  = RGBDef{Depth: Depth555, RBits: 5, RShift: 10, GBits: 5, GShift: 5, BBits: 5, BShift: 0}
	RGB565  = RGBDef{Depth: Depth565, RBits: 5, RShift: 11, GBits: 6, GShift: 5, BBits: 5, BShift: 0}
	RGB888  = RGBDef{Depth: Depth888, RBits: 8, RShift: 16, GBits: 8, GShift: 8, BBits: 8, BShift: 0}
	RGB8888 = RGBDef{Depth: Depth8888, RBits: 8, RShift: 16, GBits: 8, GShift: 8, BBits: 8, BShift: 0}
)

// conversionTag looks up the stage tag implementing a recognized depth
// conversion. The table is exactly the set spec.md §3/§6 names: 888→8888,
// 555→{332,565,8888}, 8888→{332,555,565}. Every other pair is rejected at
// assembly time with ErrUnsupportedConversion.
func conversionTag(from, to Depth) (Tag, bool) {
	switch from {
	case Depth888:
		if to == Depth8888 {
			return TagRGBRGB888to8888, true
		}
	case Depth555:
		switch to {
		case Depth332:
			return TagRGB555to332, true
		case Depth565:
			return TagRGB555to565, true
		case Depth8888:
			return TagRGB555to8888, true
		}
	case Depth8888:
		switch to {
		case Depth332:
			return TagRGB8888to332, true
		case Depth565:
			return TagRGB8888to565, true
		case Depth555:
			return TagRGB8888to555, true
		}
	}
	return 0, false
}

// ConversionTag exposes conversionTag's recognized-pair lookup to
// concrete Registry implementations outside this package.
func ConversionTag(from, to Depth) (Tag, bool) {
	return conversionTag(from, to)
}

// BytesPerDepth exposes bytesPerDepth to concrete Registry implementations
// outside this package.
func BytesPerDepth(d Depth) int { return bytesPerDepth(d) }

// bytesPerDepth returns the packed pixel width in bytes for a Depth class,
// used to size rotation/pack stages when the RGB layouts already match but
// the source stride-per-pixel differs from the destination's.
func bytesPerDepth(d Depth) int {
	switch d {
	case Depth332:
		return 1
	case Depth555, Depth565:
		return 2
	case Depth888:
		return 3
	case Depth8888:
		return 4
	default:
		return 0
	}
}
