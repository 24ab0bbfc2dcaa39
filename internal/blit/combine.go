package blit

// Combine is the bitmask the caller passes to the pipeline assembler. The
// low bits select the vertical combine mode; the remaining bits are
// independently combinable decorations and filters.
type Combine uint32

const (
	// CombineYNone performs no vertical combine: a straight row copy or
	// stretch/reduce with no averaging.
	CombineYNone Combine = 0
	// CombineYMean averages rows being reduced, or duplicates with a
	// boundary mean when expanding.
	CombineYMean Combine = 1
	// CombineYFilter low-pass filters across rows similarly to Mean but
	// with different carry semantics on reduction (see stretchy_filter_x1).
	CombineYFilter Combine = 2
	// CombineYMax takes the per-channel maximum across reduced rows.
	CombineYMax Combine = 3
	// CombineYScale2x selects the Scale2x pixel-art doubling driver. Only
	// meaningful when ddy == 2*sdy and ddx == 2*sdx.
	CombineYScale2x Combine = 4

	combineYMask Combine = 0x7

	// CombineXFilter requests a horizontal low-pass filter stage, inserted
	// before a horizontal reduction and after a horizontal expansion.
	CombineXFilter Combine = 1 << 3

	// CombineXRGBTriad3Pix through CombineXRGBTriad16Pix select an RGB
	// phosphor-triad decoration spanning 3, 6, or 16 destination pixels.
	CombineXRGBTriad3Pix  Combine = 1 << 4
	CombineXRGBTriad6Pix  Combine = 1 << 5
	CombineXRGBTriad16Pix Combine = 1 << 6

	// CombineXRGBTriadStrong3Pix through ...16Pix select the higher-contrast
	// "strong" variant of the same decorations.
	CombineXRGBTriadStrong3Pix  Combine = 1 << 7
	CombineXRGBTriadStrong6Pix  Combine = 1 << 8
	CombineXRGBTriadStrong16Pix Combine = 1 << 9

	// CombineXRGBScanDoubleHorz/Vert and ScanTripleHorz/Vert select
	// scanline decorations that dim every other (or every third) row or
	// column, simulating a CRT mask.
	CombineXRGBScanDoubleHorz Combine = 1 << 10
	CombineXRGBScanTripleHorz Combine = 1 << 11
	CombineXRGBScanDoubleVert Combine = 1 << 12
	CombineXRGBScanTripleVert Combine = 1 << 13
)

// Y isolates the vertical-combine selector from the full bitmask.
func (c Combine) Y() Combine { return c & combineYMask }

// Has reports whether every bit set in flag is also set in c.
func (c Combine) Has(flag Combine) bool { return c&flag == flag }
