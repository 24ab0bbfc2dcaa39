package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/scanblit/internal/blit"
	"github.com/cwbudde/scanblit/internal/kernel"
	"github.com/cwbudde/scanblit/internal/store"
	"github.com/cwbudde/scanblit/internal/videosurface"
)

// traceBaseDir is the filesystem root the batch service's checkpoint and
// trace files live under. Only FSStore is supported today; a different
// Store implementation would need its own way to surface this.
const traceBaseDir = "./data"

// combineFromString maps a JobConfig.Combine name to the core package's
// Combine bitmask, the same small string-to-enum translation the teacher
// does for Config.Mode ("joint"/"sequential"/"batch").
func combineFromString(name string) (blit.Combine, error) {
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

// runWorkerLoop drains the job queue one job at a time, the single
// serialized worker goroutine spec.md §5 requires since the scratch arena
// and kernel tables are process-wide. It runs until ctx is cancelled.
func runWorkerLoop(ctx context.Context, jm *JobManager, checkpointStore store.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-jm.Dequeue():
			if err := runJob(ctx, jm, checkpointStore, jobID); err != nil {
				slog.Error("Job failed", "job_id", jobID, "error", err)
			}
		}
	}
}

// runJob blits one job's source frames through a single assembled
// pipeline into its output directory, checkpointing and tracing progress
// along the way.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting batch blit job", "job_id", jobID, "src_dir", job.Config.SrcDir, "combine", job.Config.Combine)

	frames, err := listFrames(job.Config.SrcDir, job.Config.Pattern)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	if len(frames) == 0 {
		err := fmt.Errorf("no source frames matched %s/%s", job.Config.SrcDir, job.Config.Pattern)
		markJobFailed(jm, jobID, err)
		return err
	}

	combine, err := combineFromString(job.Config.Combine)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	jm.UpdateJob(jobID, func(j *Job) { j.TotalFrames = len(frames) })

	blitCtx := blit.NewContext(kernel.New(), false, nil)
	pipeline := blit.NewPipeline()
	dst := videosurface.NewRGB(job.Config.DstWidth, job.Config.DstHeight, 4, blit.RGB8888)

	err = blitCtx.InitDirect(pipeline, blit.DirectGeometry{Def: blit.RGB8888, DP: 4},
		job.Config.SrcWidth, job.Config.SrcHeight, job.Config.DstWidth, job.Config.DstHeight,
		dst, combine, false)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to assemble pipeline: %w", err))
		return err
	}

	slog.Debug("Assembled pipeline", "job_id", jobID, "stages", pipeline.Describe())

	jm.UpdateJob(jobID, func(j *Job) { j.ScratchBytes = pipeline.ScratchBytes() })

	var traceWriter *store.TraceWriter
	if tw, err := store.NewTraceWriter(traceBaseDir, jobID, job.FramesWritten > 0); err != nil {
		slog.Warn("Failed to create trace writer", "job_id", jobID, "error", err)
	} else {
		traceWriter = tw
		defer traceWriter.Close()
	}

	start := time.Now()
	startFrame := job.FramesWritten

	for i := startFrame; i < len(frames); i++ {
		select {
		case <-ctx.Done():
			markJobCancelled(jm, jobID)
			return ctx.Err()
		default:
		}

		frameStart := time.Now()

		src, err := loadFrame(frames[i])
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to load frame %d: %w", i, err))
			return err
		}

		blitCtx.Blit(pipeline, dst, 0, 0, src.Pix)

		outImg := dst.ToNRGBA(job.Config.DstWidth, job.Config.DstHeight)
		if _, err := saveFrame(job.Config.OutDir, i, outImg); err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to save frame %d: %w", i, err))
			return err
		}

		duration := time.Since(frameStart)

		jm.UpdateJob(jobID, func(j *Job) { j.FramesWritten = i + 1 })

		if traceWriter != nil {
			entry := store.TraceEntry{
				Frame:      i,
				DurationMS: float64(duration.Microseconds()) / 1000.0,
				Timestamp:  time.Now(),
			}
			if i == startFrame {
				entry.StageNames = pipeline.Describe()
			}
			if err := traceWriter.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}

		elapsed := time.Since(start).Seconds()
		fps := float64(0)
		if elapsed > 0 {
			fps = float64(i+1-startFrame) / elapsed
		}
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:         jobID,
			State:         StateRunning,
			FramesWritten: i + 1,
			TotalFrames:   len(frames),
			FPS:           fps,
			Timestamp:     time.Now(),
		})

		if checkpointStore != nil && job.Config.CheckpointInterval > 0 && (i+1)%job.Config.CheckpointInterval == 0 {
			if err := saveJobCheckpoint(jm, checkpointStore, pipeline, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}

	pipeline.Teardown(blitCtx.Arena)
	if err := blitCtx.Done(); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("arena not fully released: %w", err))
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	slog.Info("Job completed", "job_id", jobID, "elapsed", elapsed, "frames", len(frames)-startFrame)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:         jobID,
		State:         StateCompleted,
		FramesWritten: len(frames),
		TotalFrames:   len(frames),
		Timestamp:     time.Now(),
	})

	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveJobCheckpoint saves a checkpoint recording how many frames of the
// job have been written so far.
func saveJobCheckpoint(jm *JobManager, checkpointStore store.Store, pipeline *blit.Pipeline, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	checkpoint := store.NewCheckpoint(jobID, job.FramesWritten, job.TotalFrames, pipeline.ScratchBytes(), job.Config)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "frames_written", job.FramesWritten, "total_frames", job.TotalFrames)
	return nil
}
