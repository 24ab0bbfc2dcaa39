package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/cwbudde/scanblit/internal/blit"
	"github.com/cwbudde/scanblit/internal/kernel"
	"github.com/cwbudde/scanblit/internal/store"
	"github.com/cwbudde/scanblit/internal/videosurface"
	"github.com/spf13/cobra"
)

var (
	blitSrcDir       string
	blitPattern      string
	blitOutDir       string
	blitSrcWidth     int
	blitSrcHeight    int
	blitDstWidth     int
	blitDstHeight    int
	blitCombine      string
	blitDataDir      string
	blitCheckpointN  int
	blitCpuProfile   string
	blitMemProfile   string
)

var blitCmd = &cobra.Command{
	Use:   "blit",
	Short: "Run a single-shot batch blit over a directory of frames",
	Long: `Assembles one blit pipeline and drives it over every frame matching
--pattern in --src, writing converted frames to --out.`,
	RunE: runBlit,
}

func init() {
	blitCmd.Flags().StringVar(&blitSrcDir, "src", "", "Source frame directory (required)")
	blitCmd.Flags().StringVar(&blitPattern, "pattern", "*.png", "Glob pattern matched against --src")
	blitCmd.Flags().StringVar(&blitOutDir, "out", "./out", "Output frame directory")
	blitCmd.Flags().IntVar(&blitSrcWidth, "src-width", 0, "Source frame width (required)")
	blitCmd.Flags().IntVar(&blitSrcHeight, "src-height", 0, "Source frame height (required)")
	blitCmd.Flags().IntVar(&blitDstWidth, "dst-width", 0, "Destination frame width (required)")
	blitCmd.Flags().IntVar(&blitDstHeight, "dst-height", 0, "Destination frame height (required)")
	blitCmd.Flags().StringVar(&blitCombine, "combine", "none", "Vertical combine mode: none, mean, filter, max, scale2x")
	blitCmd.Flags().StringVar(&blitDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	blitCmd.Flags().IntVar(&blitCheckpointN, "checkpoint-interval", 0, "Checkpoint every N frames (0 = disabled)")

	blitCmd.Flags().StringVar(&blitCpuProfile, "cpuprofile", "", "Write CPU profile to file")
	blitCmd.Flags().StringVar(&blitMemProfile, "memprofile", "", "Write memory profile to file")

	blitCmd.MarkFlagRequired("src")
	blitCmd.MarkFlagRequired("src-width")
	blitCmd.MarkFlagRequired("src-height")
	blitCmd.MarkFlagRequired("dst-width")
	blitCmd.MarkFlagRequired("dst-height")
	rootCmd.AddCommand(blitCmd)
}

func combineFromFlag(name string) (blit.Combine, error) {
	switch name {
	case "", "none":
		return blit.CombineYNone, nil
	case "mean":
		return blit.CombineYMean, nil
	case "filter":
		return blit.CombineYFilter, nil
	case "max":
		return blit.CombineYMax, nil
	case "scale2x":
		return blit.CombineYScale2x, nil
	default:
		return 0, fmt.Errorf("unknown combine mode: %s", name)
	}
}

func listSourceFrames(srcDir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(srcDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func loadSourceFrame(path string) (*image.NRGBA, error) {
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

func runBlit(cmd *cobra.Command, args []string) error {
	if blitCpuProfile != "" {
		f, err := os.Create(blitCpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", blitCpuProfile)
	}

	config := store.JobConfig{
		SrcDir:             blitSrcDir,
		Pattern:            blitPattern,
		SrcWidth:           blitSrcWidth,
		SrcHeight:          blitSrcHeight,
		DstWidth:           blitDstWidth,
		DstHeight:          blitDstHeight,
		Combine:            blitCombine,
		OutDir:             blitOutDir,
		CheckpointInterval: blitCheckpointN,
	}

	slog.Info("Starting batch blit", "src", blitSrcDir, "combine", blitCombine, "dst", fmt.Sprintf("%dx%d", blitDstWidth, blitDstHeight))

	frames, err := listSourceFrames(blitSrcDir, blitPattern)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no source frames matched %s/%s", blitSrcDir, blitPattern)
	}

	combine, err := combineFromFlag(blitCombine)
	if err != nil {
		return err
	}

	var checkpointStore store.Store
	if blitCheckpointN > 0 {
		checkpointStore, err = store.NewFSStore(blitDataDir)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
	}
	jobID := fmt.Sprintf("cli-%d", time.Now().UnixNano())

	blitCtx := blit.NewContext(kernel.New(), false, nil)
	pipeline := blit.NewPipeline()
	dst := videosurface.NewRGB(blitDstWidth, blitDstHeight, 4, blit.RGB8888)

	if err := blitCtx.InitDirect(pipeline, blit.DirectGeometry{Def: blit.RGB8888, DP: 4},
		blitSrcWidth, blitSrcHeight, blitDstWidth, blitDstHeight, dst, combine, false); err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	slog.Info("Assembled pipeline", "stages", pipeline.Describe(), "scratch_bytes", pipeline.ScratchBytes())

	start := time.Now()
	for i, path := range frames {
		src, err := loadSourceFrame(path)
		if err != nil {
			return fmt.Errorf("failed to load frame %d: %w", i, err)
		}

		blitCtx.Blit(pipeline, dst, 0, 0, src.Pix)

		outImg := dst.ToNRGBA(blitDstWidth, blitDstHeight)
		if err := os.MkdirAll(blitOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		outPath := filepath.Join(blitOutDir, fmt.Sprintf("frame-%06d.png", i))
		if err := saveOutputFrame(outPath, outImg); err != nil {
			return fmt.Errorf("failed to save frame %d: %w", i, err)
		}

		if checkpointStore != nil && (i+1)%blitCheckpointN == 0 {
			cp := store.NewCheckpoint(jobID, i+1, len(frames), pipeline.ScratchBytes(), config)
			if err := checkpointStore.SaveCheckpoint(jobID, cp); err != nil {
				slog.Error("Failed to save checkpoint", "error", err)
			}
		}
	}

	pipeline.Teardown(blitCtx.Arena)
	if err := blitCtx.Done(); err != nil {
		return fmt.Errorf("arena not fully released: %w", err)
	}

	elapsed := time.Since(start)
	fps := float64(len(frames)) / elapsed.Seconds()

	slog.Info("Blit complete", "elapsed", elapsed, "frames", len(frames), "fps", fmt.Sprintf("%.1f", fps))
	fmt.Printf("Wrote %d frame(s) to %s in %s (%.1f fps)\n", len(frames), blitOutDir, elapsed.Round(time.Millisecond), fps)

	if blitMemProfile != "" {
		f, err := os.Create(blitMemProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		slog.Info("Memory profile written", "output", blitMemProfile)
	}

	return nil
}

func saveOutputFrame(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
