// Package videosurface supplies the destination-surface adapters spec.md
// §6 names only as an external collaborator contract (video_write_line,
// video_offset, video_bytes_per_pixel, video_current_rgb_def_get,
// video_index, video_is_unchained, video_unchained_plane_set/mask_set). A
// runnable repository needs at least one concrete implementation of every
// method blit.Surface declares; these are grounded on the teacher's
// image.NRGBA/Pix/Stride/PixOffset access pattern (renderer_cpu.go, ssd.go).
package videosurface

import (
	"fmt"
	"image"

	"github.com/cwbudde/scanblit/internal/blit"
)

// RGB is a flat, packed-pixel destination: one contiguous byte buffer with
// a fixed row stride, addressed directly in the given RGBDef. It backs
// both the "direct" and "hardware palette" blit flavors.
type RGB struct {
	Pix    []byte
	Stride int
	BPP    int
	Def    blit.RGBDef

	errFn func(string)
}

// NewRGB allocates a zeroed flat RGB surface of the given pixel geometry.
func NewRGB(width, height, bpp int, def blit.RGBDef) *RGB {
	stride := width * bpp
	return &RGB{
		Pix:    make([]byte, stride*height),
		Stride: stride,
		BPP:    bpp,
		Def:    def,
	}
}

// NewRGBFromNRGBA wraps a standard library image.NRGBA as a 4-byte RGBA8888
// destination surface — the CLI's and batch service's usual entry point,
// since every other format (555/565/332/palette) is exercised through the
// pipeline's own conversion stages rather than requiring a second image
// type per depth.
func NewRGBFromNRGBA(img *image.NRGBA) *RGB {
	return &RGB{
		Pix:    img.Pix,
		Stride: img.Stride,
		BPP:    4,
		Def:    blit.RGB8888,
	}
}

var _ blit.Surface = (*RGB)(nil)

// SetErrFn installs the host's fatal-init-error sink (CLI logging, test
// assertion capture, ...). TargetErr no-ops when unset.
func (s *RGB) SetErrFn(fn func(string)) { s.errFn = fn }

func (s *RGB) WriteLine(y int) []byte {
	start := y * s.Stride
	return s.Pix[start : start+s.Stride]
}

func (s *RGB) Offset(x int) int { return x * s.BPP }

func (s *RGB) BytesPerPixel() int { return s.BPP }

func (s *RGB) RGBDef() (blit.RGBDef, bool) { return s.Def, true }

func (s *RGB) Index() blit.ColorIndex { return blit.IndexRGB }

func (s *RGB) IsUnchained() bool { return false }

func (s *RGB) SetUnchainedPlane(int) {}

func (s *RGB) SetUnchainedPlaneMask(uint8) {}

func (s *RGB) TargetErr(message string) {
	if s.errFn != nil {
		s.errFn(message)
	}
}

// ToNRGBA copies the surface into a fresh image.NRGBA, for PNG output via
// the standard library encoder. Panics if the surface isn't 4-byte RGBA8888
// (the CLI and server never build any other flavor of RGB surface for
// output).
func (s *RGB) ToNRGBA(width, height int) *image.NRGBA {
	if s.BPP != 4 {
		panic(fmt.Sprintf("videosurface: ToNRGBA requires 4 bytes/pixel, got %d", s.BPP))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+img.Stride], s.WriteLine(y))
	}
	return img
}

// Unchained is a 4-plane planar "unchained" VGA stand-in: one
// byte-per-plane, one CPU-word write per four source pixels, per spec.md's
// glossary entry. Each plane is a fully independent byte buffer rather than
// bit-interleaved real VGA memory, which is sufficient to exercise
// blit.Pipeline's planar wrapping and the unchained kernel family without
// emulating actual hardware register semantics (explicitly out of scope
// per spec.md §1).
type Unchained struct {
	Planes [4][]byte
	Stride int // bytes per plane per row

	plane int
	mask  uint8
	errFn func(string)
}

// NewUnchained allocates a 4-plane unchained surface sized for width
// (destination pixels; must be a multiple of 4) by height.
func NewUnchained(width, height int) *Unchained {
	stride := width / 4
	u := &Unchained{Stride: stride}
	for p := range u.Planes {
		u.Planes[p] = make([]byte, stride*height)
	}
	return u
}

var _ blit.Surface = (*Unchained)(nil)

func (u *Unchained) SetErrFn(fn func(string)) { u.errFn = fn }

// WriteLine returns the current plane's row y. The pipeline's planar
// wrapper (blit.Pipeline.executePlanar) always calls SetUnchainedPlane or
// SetUnchainedPlaneMask immediately before writing, so the returned row is
// always addressed against the plane selected by the most recent call.
func (u *Unchained) WriteLine(y int) []byte {
	start := y * u.Stride
	return u.Planes[u.activePlane()][start : start+u.Stride]
}

// activePlane resolves the 2-plane mask convention (0x3 selects planes
// 0-1's pair, 0xC selects 2-3's) down to a single plane index for the
// 2-plane wrapper, or returns the 4-plane wrapper's directly-selected
// plane.
func (u *Unchained) activePlane() int {
	switch u.mask {
	case 0x3:
		return 0
	case 0xC:
		return 1
	default:
		return u.plane
	}
}

func (u *Unchained) Offset(x int) int { return x }

func (u *Unchained) BytesPerPixel() int { return 1 }

func (u *Unchained) RGBDef() (blit.RGBDef, bool) { return blit.RGBDef{}, false }

func (u *Unchained) Index() blit.ColorIndex { return blit.IndexPalette }

func (u *Unchained) IsUnchained() bool { return true }

func (u *Unchained) SetUnchainedPlane(p int) { u.plane = p }

func (u *Unchained) SetUnchainedPlaneMask(mask uint8) { u.mask = mask }

func (u *Unchained) TargetErr(message string) {
	if u.errFn != nil {
		u.errFn(message)
	}
}
