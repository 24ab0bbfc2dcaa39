package server

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// listFrames globs pattern against srcDir and returns the matches sorted
// lexically, which for the conventional zero-padded frame-NNNN.png naming
// is also chronological order.
func listFrames(srcDir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(srcDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// loadFrame decodes a single source frame and converts it to NRGBA, the
// only pixel layout the pipeline's direct-RGB initializer is fed from.
func loadFrame(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == nrgba.Rect.Dx()*4 {
		return nrgba, nil
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out, nil
}

// saveFrame writes img as a PNG to outDir/frame-<index>.png, creating
// outDir if needed.
func saveFrame(outDir string, index int, img *image.NRGBA) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("frame-%06d.png", index))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output frame: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode output frame: %w", err)
	}
	return path, nil
}
