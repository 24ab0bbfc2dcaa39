package blit

// Tag identifies the kind of transform a Stage performs. The set is closed:
// every tag the assembler can emit is listed here, and every switch over
// Tag in this package is expected to be exhaustive.
type Tag int

const (
	TagXStretch Tag = iota
	TagXDouble
	TagXTriple
	TagXQuadruple
	TagXFilter
	TagXCopy
	TagRotation

	TagXRGBTriad3Pix
	TagXRGBTriad6Pix
	TagXRGBTriad16Pix
	TagXRGBTriadStrong3Pix
	TagXRGBTriadStrong6Pix
	TagXRGBTriadStrong16Pix
	TagXRGBScanDoubleHorz
	TagXRGBScanTripleHorz
	TagXRGBScanDoubleVert
	TagXRGBScanTripleVert

	TagUnchained
	TagUnchainedPalette16to8
	TagUnchainedXDouble
	TagUnchainedXDoublePalette16to8

	TagPalette8to8
	TagPalette8to16
	TagPalette8to32
	TagPalette16to8
	TagPalette16to16
	TagPalette16to32

	TagRGB8888to332
	TagRGB8888to565
	TagRGB8888to555
	TagRGB555to332
	TagRGB555to565
	TagRGB555to8888
	TagRGBRGB888to8888

	TagYCopy
	TagYReductionCopy
	TagYExpansionCopy
	TagYMean
	TagYReductionMean
	TagYExpansionMean
	TagYFilter
	TagYReductionFilter
	TagYExpansionFilter
	TagYReductionMax
	TagYScale2x
)

// pipeName mirrors the original's PIPE_TAG display-name table: every stage
// tag has a fixed human-readable name used in diagnostics and debug
// logging, never in control flow.
var pipeName = map[Tag]string{
	TagXStretch:                     "x_stretch",
	TagXDouble:                      "x_double",
	TagXTriple:                      "x_triple",
	TagXQuadruple:                   "x_quadruple",
	TagXFilter:                      "x_filter",
	TagXCopy:                        "x_copy",
	TagRotation:                     "rotation",
	TagXRGBTriad3Pix:                "x_rgb_triad3pix",
	TagXRGBTriad6Pix:                "x_rgb_triad6pix",
	TagXRGBTriad16Pix:               "x_rgb_triad16pix",
	TagXRGBTriadStrong3Pix:          "x_rgb_triadstrong3pix",
	TagXRGBTriadStrong6Pix:          "x_rgb_triadstrong6pix",
	TagXRGBTriadStrong16Pix:         "x_rgb_triadstrong16pix",
	TagXRGBScanDoubleHorz:           "x_rgb_scandoublehorz",
	TagXRGBScanTripleHorz:           "x_rgb_scantriplehorz",
	TagXRGBScanDoubleVert:           "x_rgb_scandoublevert",
	TagXRGBScanTripleVert:           "x_rgb_scantriplevert",
	TagUnchained:                    "unchained",
	TagUnchainedPalette16to8:        "unchained_palette16to8",
	TagUnchainedXDouble:             "unchained_x_double",
	TagUnchainedXDoublePalette16to8: "unchained_x_double_palette16to8",
	TagPalette8to8:                  "palette8to8",
	TagPalette8to16:                 "palette8to16",
	TagPalette8to32:                 "palette8to32",
	TagPalette16to8:                 "palette16to8",
	TagPalette16to16:                "palette16to16",
	TagPalette16to32:                "palette16to32",
	TagRGB8888to332:                 "rgb8888to332",
	TagRGB8888to565:                 "rgb8888to565",
	TagRGB8888to555:                 "rgb8888to555",
	TagRGB555to332:                  "rgb555to332",
	TagRGB555to565:                  "rgb555to565",
	TagRGB555to8888:                 "rgb555to8888",
	TagRGBRGB888to8888:              "rgbRGB888to8888",
	TagYCopy:                        "y_copy",
	TagYReductionCopy:               "y_reduction_copy",
	TagYExpansionCopy:               "y_expansion_copy",
	TagYMean:                        "y_mean",
	TagYReductionMean:               "y_reduction_mean",
	TagYExpansionMean:               "y_expansion_mean",
	TagYFilter:                      "y_filter",
	TagYReductionFilter:             "y_reduction_filter",
	TagYExpansionFilter:             "y_expansion_filter",
	TagYReductionMax:                "y_reduction_max",
	TagYScale2x:                     "y_scale2x",
}

func (t Tag) String() string {
	if name, ok := pipeName[t]; ok {
		return name
	}
	return "unknown"
}

// PutFunc writes one scanline: dst is the destination byte range (either
// the stage's own scratch or the caller's final buffer), src is the input
// scanline.
type PutFunc func(dst, src []byte)

// PlanePutFunc is PutFunc's planar counterpart: plane selects which of the
// destination's independent bit planes this call targets (unchained VGA
// writers invoke this once per plane).
type PlanePutFunc func(dst, src []byte, plane int)

// Stage is one horizontal pipeline element: a tag, the geometry it was
// built for, and the kernel(s) that perform the actual write. Everything
// here is a plain value except the unexported realized buffer, so stages
// can be copied freely before Realize is called.
type Stage struct {
	Tag  Tag
	SDX  int // input width, in pixels
	SBPP int // source bytes per pixel
	SDP  int // source stride-per-pixel (== SBPP when the input is "plain")

	Put      PutFunc
	PutPlain PutFunc // optional; used when the input is known plain

	PlanePut      PlanePutFunc
	PlanePutPlain PlanePutFunc
	PlaneNum      int // 2 or 4 when planar, 0 otherwise

	BufferSize int // scratch bytes Realize reserves; the terminal's is used only when the pivot sits at the end

	// Palette carries the LUT backing a palette-lookup stage. It is opaque
	// to the assembler except for the peephole fusion pass, which reads it
	// off a palette16to8 stage to build the fused unchained variant.
	Palette []uint32

	// Init performs a decoration kernel's one-time RGB-mode table fill
	// (triad and scandouble/scantriple families). nil when the stage has
	// no RGB-mode table to build, or is built by a kernel that fills it
	// eagerly. Called by SetupVertical, never by Realize.
	Init func()

	buffer []byte // realized scratch; nil until Realize, and nil for the terminal stage unless the pivot sits at the end
}

// Plain reports whether this stage's declared input has no stride gap.
func (s Stage) Plain() bool { return s.SDP == s.SBPP }

// IsConversion classifies tags that change color representation: palette
// lookups, the planar unchained+palette fusions, and every RGB bit-layout
// converter including plain rotation. Vertical combine (mean/filter) must
// happen after conversion, never before, which is why the assembler's
// "require last not conversion" flag exists.
func (t Tag) IsConversion() bool {
	switch t {
	case TagPalette8to8, TagPalette8to16, TagPalette8to32,
		TagPalette16to8, TagPalette16to16, TagPalette16to32,
		TagUnchainedPalette16to8, TagUnchainedXDoublePalette16to8,
		TagRGB8888to332, TagRGB8888to565, TagRGB8888to555,
		TagRGB555to332, TagRGB555to565, TagRGB555to8888,
		TagRGBRGB888to8888, TagRotation:
		return true
	default:
		return false
	}
}

// IsDecoration classifies the six triad decorations and the four
// scandouble/scantriple variants: cosmetic post-size-change attenuation
// patterns that must never precede a size-changing stage.
func (t Tag) IsDecoration() bool {
	switch t {
	case TagXRGBTriad3Pix, TagXRGBTriad6Pix, TagXRGBTriad16Pix,
		TagXRGBTriadStrong3Pix, TagXRGBTriadStrong6Pix, TagXRGBTriadStrong16Pix,
		TagXRGBScanDoubleHorz, TagXRGBScanTripleHorz,
		TagXRGBScanDoubleVert, TagXRGBScanTripleVert:
		return true
	default:
		return false
	}
}

// IsFastWrite reports whether a stage's terminal write uses the
// wide-register path, per spec.md §4.4's classifier. wide reports whether
// the host's accelerated wide-register capability (the MMX-era fast-write
// path in the original) is available; the classification differs with and
// without it.
func (s Stage) IsFastWrite(wide bool) bool {
	if !wide {
		// Without the wide-register capability, only plain-input stages
		// qualify, and stretch never does (it is the one stage whose
		// per-pixel work pattern cannot be expressed as a flat wide-write
		// regardless of input stride).
		if s.Tag == TagXStretch {
			return false
		}
		return s.Plain()
	}

	switch s.Tag {
	case TagXCopy, TagRotation,
		TagPalette16to8, TagPalette16to16, TagPalette16to32,
		TagUnchained, TagUnchainedPalette16to8,
		TagUnchainedXDouble, TagUnchainedXDoublePalette16to8:
		return true
	case TagPalette8to8, TagPalette8to32, TagRGBRGB888to8888:
		return false
	case TagXDouble, TagXTriple, TagXQuadruple,
		TagXRGBTriad3Pix, TagXRGBTriad6Pix, TagXRGBTriad16Pix,
		TagXRGBTriadStrong3Pix, TagXRGBTriadStrong6Pix, TagXRGBTriadStrong16Pix,
		TagXRGBScanDoubleHorz, TagXRGBScanTripleHorz,
		TagXRGBScanDoubleVert, TagXRGBScanTripleVert,
		TagXFilter,
		TagRGB555to332, TagRGB555to565, TagRGB555to8888,
		TagRGB8888to332, TagRGB8888to565, TagRGB8888to555,
		TagPalette8to16:
		return s.Plain()
	default:
		return false
	}
}
