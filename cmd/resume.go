package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cwbudde/scanblit/internal/blit"
	"github.com/cwbudde/scanblit/internal/kernel"
	"github.com/cwbudde/scanblit/internal/store"
	"github.com/cwbudde/scanblit/internal/videosurface"
	"github.com/spf13/cobra"
)

var (
	resumeServerURL string
	resumeLocalMode bool
	resumeDataDir   string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a batch blit job from a checkpoint",
	Long: `Resume a batch blit job from a saved checkpoint.

Supports two modes:
  1. Server mode (default): POST to the server's resume endpoint
  2. Local mode (--local): load the checkpoint and continue the frame loop locally

Examples:
  # Resume via server
  scanblit resume abc123 --server http://localhost:8080

  # Resume locally
  scanblit resume abc123 --local --data-dir ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeServerURL, "server", "http://localhost:8080", "Server URL for remote resume")
	resumeCmd.Flags().BoolVar(&resumeLocalMode, "local", false, "Resume locally instead of via server")
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage (local mode)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if resumeLocalMode {
		return runResumeLocal(jobID)
	}
	return runResumeServer(jobID)
}

func runResumeServer(jobID string) error {
	url := fmt.Sprintf("%s/api/v1/jobs/%s/resume", resumeServerURL, jobID)

	slog.Info("Resuming job via server", "job_id", jobID, "url", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("checkpoint not found for job %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		JobID         string `json:"jobId"`
		State         string `json:"state"`
		FramesWritten int    `json:"framesWritten"`
		TotalFrames   int    `json:"totalFrames"`
		Message       string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Job resumed successfully\n")
	fmt.Printf("  Job ID: %s\n", result.JobID)
	fmt.Printf("  State: %s\n", result.State)
	fmt.Printf("  Resuming at frame %d/%d\n", result.FramesWritten, result.TotalFrames)
	fmt.Printf("\nUse 'scanblit status %s' to monitor progress\n", result.JobID)

	return nil
}

// runResumeLocal continues a job's frame loop in this process, the exact
// continuation store.Checkpoint's doc comment describes: no optimizer
// state to reconcile, just pick up the frame loop at FramesWritten.
func runResumeLocal(jobID string) error {
	slog.Info("Resuming job locally", "job_id", jobID)

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	fmt.Printf("Loaded checkpoint:\n")
	fmt.Printf("  Job ID: %s\n", checkpoint.JobID)
	fmt.Printf("  Frames written: %d/%d\n", checkpoint.FramesWritten, checkpoint.TotalFrames)
	fmt.Printf("  Source: %s\n", checkpoint.Config.SrcDir)
	fmt.Printf("  Combine: %s\n", checkpoint.Config.Combine)
	fmt.Printf("  Checkpoint time: %s\n\n", checkpoint.Timestamp.Format(time.RFC3339))

	config := checkpoint.Config

	frames, err := listSourceFrames(config.SrcDir, config.Pattern)
	if err != nil {
		return err
	}
	if len(frames) != checkpoint.TotalFrames {
		slog.Warn("Frame count changed since checkpoint", "expected", checkpoint.TotalFrames, "found", len(frames))
	}

	combine, err := combineFromFlag(config.Combine)
	if err != nil {
		return err
	}

	blitCtx := blit.NewContext(kernel.New(), false, nil)
	pipeline := blit.NewPipeline()
	dst := videosurface.NewRGB(config.DstWidth, config.DstHeight, 4, blit.RGB8888)

	if err := blitCtx.InitDirect(pipeline, blit.DirectGeometry{Def: blit.RGB8888, DP: 4},
		config.SrcWidth, config.SrcHeight, config.DstWidth, config.DstHeight, dst, combine, false); err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	fmt.Printf("Resuming at frame %d...\n", checkpoint.FramesWritten)
	start := time.Now()

	written := checkpoint.FramesWritten
	for i := checkpoint.FramesWritten; i < len(frames); i++ {
		src, err := loadSourceFrame(frames[i])
		if err != nil {
			return fmt.Errorf("failed to load frame %d: %w", i, err)
		}

		blitCtx.Blit(pipeline, dst, 0, 0, src.Pix)

		outImg := dst.ToNRGBA(config.DstWidth, config.DstHeight)
		if err := os.MkdirAll(config.OutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		outPath := fmt.Sprintf("%s/frame-%06d.png", config.OutDir, i)
		if err := saveOutputFrame(outPath, outImg); err != nil {
			return fmt.Errorf("failed to save frame %d: %w", i, err)
		}
		written = i + 1

		if config.CheckpointInterval > 0 && written%config.CheckpointInterval == 0 {
			cp := store.NewCheckpoint(jobID, written, len(frames), pipeline.ScratchBytes(), config)
			if err := checkpointStore.SaveCheckpoint(jobID, cp); err != nil {
				slog.Warn("Failed to update checkpoint", "error", err)
			}
		}
	}

	pipeline.Teardown(blitCtx.Arena)
	if err := blitCtx.Done(); err != nil {
		return fmt.Errorf("arena not fully released: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("\nResumed job completed in %s (%d frames written)\n", elapsed.Round(time.Millisecond), written-checkpoint.FramesWritten)

	finalCheckpoint := store.NewCheckpoint(jobID, written, len(frames), pipeline.ScratchBytes(), config)
	if err := checkpointStore.SaveCheckpoint(jobID, finalCheckpoint); err != nil {
		slog.Warn("Failed to update final checkpoint", "error", err)
	} else {
		fmt.Printf("Checkpoint updated\n")
	}

	return nil
}
