package blit

// ColorIndex names the destination's color addressing mode: a flat palette
// index space, or direct RGB.
type ColorIndex int

const (
	IndexPalette ColorIndex = iota
	IndexRGB
)

// Surface is the collaborator contract a host provides to the pipeline.
// The pipeline never allocates, maps, or owns destination memory: it only
// calls these methods to find out where to write and what format to write
// in. Concrete adapters (an image.NRGBA-backed surface, a planar unchained
// stand-in) live outside this package; see internal/videosurface.
type Surface interface {
	// WriteLine returns the full destination row y as a byte slice; the
	// caller indexes into it starting at Offset(x).
	WriteLine(y int) []byte

	// Offset returns the byte offset within a row of pixel x.
	Offset(x int) int

	// BytesPerPixel reports the destination's packed pixel width: 1, 2, or 4.
	BytesPerPixel() int

	// RGBDef returns the destination's current RGB channel layout. ok is
	// false when the destination addresses by palette index rather than
	// direct RGB (Index() == IndexPalette).
	RGBDef() (def RGBDef, ok bool)

	// Index reports whether the destination is palette-indexed or RGB.
	Index() ColorIndex

	// IsUnchained reports whether the destination is planar "unchained"
	// VGA memory (one byte written per plane, four independent planes).
	IsUnchained() bool

	// SetUnchainedPlane selects which of the unchained planes subsequent
	// writes target.
	SetUnchainedPlane(plane int)

	// SetUnchainedPlaneMask sets the CPU-word write mask used by the
	// 2-plane unchained wrapper (mask8_set_all-derived values).
	SetUnchainedPlaneMask(mask uint8)

	// TargetErr reports a fatal initialization error to the host (logging,
	// metrics, whatever the host wants); it does not influence control
	// flow, which always proceeds to return an error value to the caller.
	TargetErr(message string)
}
