package kernel

import (
	"testing"

	"github.com/cwbudde/scanblit/internal/blit"
)

func TestCopy_WritesWholeRow(t *testing.T) {
	reg := New()
	stage := reg.Copy(4, 3)
	if stage.Tag != blit.TagXCopy {
		t.Fatalf("expected TagXCopy, got %v", stage.Tag)
	}

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	dst := make([]byte, 12)
	stage.Put(dst, src)

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("byte %d: got %d want %d", i, dst[i], src[i])
		}
	}
}

func TestCopy_TruncatesToShorterSlice(t *testing.T) {
	reg := New()
	stage := reg.Copy(4, 3)

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 12)
	stage.Put(dst, src)

	for i := 0; i < 8; i++ {
		if dst[i] != src[i] {
			t.Fatalf("byte %d: got %d want %d", i, dst[i], src[i])
		}
	}
	for i := 8; i < 12; i++ {
		if dst[i] != 0 {
			t.Fatalf("byte %d beyond src should be untouched zero, got %d", i, dst[i])
		}
	}
}

func TestRotation_PacksStridedSource(t *testing.T) {
	reg := New()
	// 2 pixels, bpp=2, each padded to a 3-byte source stride.
	stage := reg.Rotation(2, 2, 3)
	src := []byte{0xAA, 0xBB, 0xFF, 0xCC, 0xDD, 0xFF}
	dst := make([]byte, 4)
	stage.Put(dst, src)

	want := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, dst[i], want[i])
		}
	}
	if stage.PutPlain != nil {
		t.Error("PutPlain should be nil when srcDP != bpp")
	}
}

func TestRotation_PutPlainWhenDensePacked(t *testing.T) {
	reg := New()
	stage := reg.Rotation(2, 2, 2)
	if stage.PutPlain == nil {
		t.Error("PutPlain should be set when srcDP == bpp")
	}
}

func TestStretchX_DoublesPixels(t *testing.T) {
	reg := New()
	stage := reg.StretchX(1, 6, 3, 1)
	if stage.Tag != blit.TagXDouble {
		t.Fatalf("expected TagXDouble for an exact 2x ratio, got %v", stage.Tag)
	}

	src := []byte{10, 20, 30}
	dst := make([]byte, 6)
	stage.Put(dst, src)

	want := []byte{10, 10, 20, 20, 30, 30}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, dst[i], want[i])
		}
	}
}

func TestStretchX_ReducesByDecimation(t *testing.T) {
	reg := New()
	stage := reg.StretchX(1, 2, 6, 1)
	if stage.Tag != blit.TagXStretch {
		t.Fatalf("expected generic TagXStretch for a non-integer ratio, got %v", stage.Tag)
	}

	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 2)
	stage.Put(dst, src)

	if dst[0] != src[0] {
		t.Errorf("first destination pixel should take the first run's source pixel, got %d", dst[0])
	}
	if dst[1] == 0 {
		t.Error("second destination pixel should have been written")
	}
}

func TestFilter_AveragesWithNeighbors(t *testing.T) {
	reg := New()
	stage := reg.Filter(1, 3, 1)
	if stage.Tag != blit.TagXFilter {
		t.Fatalf("expected TagXFilter, got %v", stage.Tag)
	}

	src := []byte{0, 100, 0}
	dst := make([]byte, 3)
	stage.Put(dst, src)

	// middle = (0 + 2*100 + 0) / 4 = 50
	if dst[1] != 50 {
		t.Errorf("middle sample: got %d want 50", dst[1])
	}
	// edges repeat the outermost sample: (0 + 2*0 + 100)/4 = 25
	if dst[0] != 25 {
		t.Errorf("left edge sample: got %d want 25", dst[0])
	}
	if dst[2] != 25 {
		t.Errorf("right edge sample: got %d want 25", dst[2])
	}
}

func TestRGBConvert_888To8888RoundTrip(t *testing.T) {
	reg := New()
	stage, ok := reg.RGBConvert(blit.RGB888, blit.RGB8888, 1, 3)
	if !ok {
		t.Fatal("888->8888 should be a recognized conversion")
	}
	if stage.Tag != blit.TagRGBRGB888to8888 {
		t.Fatalf("unexpected tag %v", stage.Tag)
	}

	// RGB888 packs R at bits 16-23, G at 8-15, B at 0-7, little-endian bytes.
	src := []byte{0x40, 0x80, 0xC0} // B=0x40 G=0x80 R=0xC0
	dst := make([]byte, 4)
	stage.Put(dst, src)

	if dst[0] != 0x40 || dst[1] != 0x80 || dst[2] != 0xC0 {
		t.Errorf("unexpected conversion result: %#v", dst)
	}
}

func TestRGBConvert_UnrecognizedPairFails(t *testing.T) {
	reg := New()
	_, ok := reg.RGBConvert(blit.RGB8888, blit.RGB888, 1, 4)
	if ok {
		t.Error("8888->888 is not in the recognized conversion table and should fail")
	}
}

func TestPalette8_LooksUpLUT(t *testing.T) {
	reg := New()
	lut := make([]uint32, 256)
	lut[5] = 0x11223344
	stage := reg.Palette8(4, 2, lut)

	src := []byte{5, 0}
	dst := make([]byte, 8)
	stage.Put(dst, src)

	got := uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24
	if got != lut[5] {
		t.Errorf("pixel 0: got %#x want %#x", got, lut[5])
	}
}

func TestPalette16_LooksUpLUT(t *testing.T) {
	reg := New()
	lut := make([]uint32, 65536)
	lut[0x1234] = 0xAABBCCDD
	stage := reg.Palette16(4, 1, lut)

	src := []byte{0x34, 0x12}
	dst := make([]byte, 4)
	stage.Put(dst, src)

	got := uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24
	if got != lut[0x1234] {
		t.Errorf("got %#x want %#x", got, lut[0x1234])
	}
}

func TestUnchained_OnePlaneSamplesEveryFourthPixel(t *testing.T) {
	reg := New()
	stage := reg.Unchained(8, 1)
	if stage.PlaneNum != 4 {
		t.Fatalf("expected 4 planes, got %d", stage.PlaneNum)
	}

	src := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	dst := make([]byte, 2)
	stage.PlanePut(dst, src, 1)

	want := []byte{1, 5}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("plane 1 col %d: got %d want %d", i, dst[i], want[i])
		}
	}
}

func TestVerticalOps_MeanSelf(t *testing.T) {
	reg := New()
	ops := reg.Vertical(1, false)
	dst := []byte{100}
	ops.MeanSelf(dst, []byte{200})
	if dst[0] != 150 {
		t.Errorf("mean(100,200): got %d want 150", dst[0])
	}
}

func TestVerticalOps_MaxSelf(t *testing.T) {
	reg := New()
	ops := reg.Vertical(1, false)
	dst := []byte{10, 200}
	ops.MaxSelf(dst, []byte{50, 100})
	if dst[0] != 50 || dst[1] != 200 {
		t.Errorf("unexpected MaxSelf result: %#v", dst)
	}
}

func TestVerticalOps_Scale2x_FlatRegionPassesThroughCenter(t *testing.T) {
	reg := New()
	ops := reg.Vertical(1, false)

	row0 := []byte{9, 9, 9}
	row1 := []byte{9, 9, 9}
	row2 := []byte{9, 9, 9}
	out0 := make([]byte, 6)
	out1 := make([]byte, 6)

	ops.Scale2x(out0, out1, row0, row1, row2)

	for i, b := range append(append([]byte{}, out0...), out1...) {
		if b != 9 {
			t.Fatalf("flat input should upscale uniformly, byte %d = %d", i, b)
		}
	}
}

func TestTriad_AttenuatesDimLanes(t *testing.T) {
	reg := New()
	stage := reg.Triad(3, false, 1, 3, 1)
	src := []byte{255, 255, 255}
	dst := make([]byte, 3)
	stage.Put(dst, src)

	if dst[0] != 255 {
		t.Errorf("lane 0 (bright third) should pass at full brightness, got %d", dst[0])
	}
	if dst[1] == 255 || dst[2] == 255 {
		t.Errorf("lanes 1/2 should be dimmed, got %v", dst[1:])
	}
}

func TestScanDoubleHorz_DimsOddColumns(t *testing.T) {
	reg := New()
	stage := reg.ScanDouble(true, 1, 4, 1)
	src := []byte{255, 255, 255, 255}
	dst := make([]byte, 4)
	stage.Put(dst, src)

	if dst[0] != 255 || dst[2] != 255 {
		t.Errorf("even columns should stay full brightness, got %v", dst)
	}
	if dst[1] == 255 || dst[3] == 255 {
		t.Errorf("odd columns should be dimmed, got %v", dst)
	}
}

func TestRegistry_ImplementsBlitRegistry(t *testing.T) {
	var _ blit.Registry = New()
}
