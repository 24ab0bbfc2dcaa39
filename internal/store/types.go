package store

import (
	"fmt"
	"time"
)

// JobConfig holds the configuration for a batch blit job: a directory of
// source frames blitted through one assembled pipeline into a directory of
// destination frames. Kept in its own type (rather than importing
// internal/server's request type) to avoid an import cycle, same as the
// teacher's JobConfig/server.Job split.
type JobConfig struct {
	SrcDir  string `json:"srcDir"`
	Pattern string `json:"pattern"` // glob matched against SrcDir, e.g. "frame-*.rgba"

	SrcWidth  int `json:"srcWidth"`
	SrcHeight int `json:"srcHeight"`
	DstWidth  int `json:"dstWidth"`
	DstHeight int `json:"dstHeight"`

	Combine     string `json:"combine"`               // "none", "mean", "filter", "max", "scale2x"
	PalettePath string `json:"palettePath,omitempty"` // non-empty selects a software-palette flavor

	OutDir             string `json:"outDir"`
	CheckpointInterval int    `json:"checkpointInterval,omitempty"` // checkpoint every N frames (0 = disabled)
}

// Checkpoint represents a saved blit-job state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// Frame Progress Handling:
//
// The checkpoint saves how many frames have been written so far, along with
// the job's configuration, but not the assembled Pipeline or Arena — both
// are process-local and cheap to rebuild. Resuming re-assembles the
// pipeline from Config and continues the frame loop at FramesWritten,
// skipping every frame already written.
//
// SAVED STATE:
//   - FramesWritten: how many destination frames have been produced
//   - TotalFrames: how many frames the job will produce in total
//   - ScratchBytes: the pipeline's realized scratch footprint, for
//     diagnostics (spec.md §8/SPEC_FULL §C.3's video_blit_info stats)
//   - Config: job configuration, needed to validate resumption
//
// REBUILT ON RESUME:
//   - The assembled Pipeline and its realized scratch (both process-local,
//     rebuilt from Config; spec.md §5 forbids reusing another process's arena)
//
// RESUME STRATEGY:
// Resuming re-opens SrcDir, re-assembles the pipeline from Config, and
// continues the frame loop at FramesWritten — there is no optimizer state
// to reconcile, so resume here is an exact continuation, unlike the
// teacher's best-effort circle-fit resume.
type Checkpoint struct {
	// JobID is the unique identifier for this blit job.
	JobID string `json:"jobId"`

	// FramesWritten is how many destination frames have been produced so far.
	FramesWritten int `json:"framesWritten"`

	// TotalFrames is the total number of frames this job will produce.
	TotalFrames int `json:"totalFrames"`

	// ScratchBytes is the pipeline's realized scratch footprint in bytes.
	ScratchBytes int `json:"scratchBytes"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during resume.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without re-reading
// the full job configuration. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID         string    `json:"jobId"`
	FramesWritten int       `json:"framesWritten"`
	TotalFrames   int       `json:"totalFrames"`
	Timestamp     time.Time `json:"timestamp"`
	Combine       string    `json:"combine"`
	SrcDir        string    `json:"srcDir"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, framesWritten, totalFrames, scratchBytes int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:         jobID,
		FramesWritten: framesWritten,
		TotalFrames:   totalFrames,
		ScratchBytes:  scratchBytes,
		Timestamp:     time.Now(),
		Config:        config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:         c.JobID,
		FramesWritten: c.FramesWritten,
		TotalFrames:   c.TotalFrames,
		Timestamp:     c.Timestamp,
		Combine:       c.Config.Combine,
		SrcDir:        c.Config.SrcDir,
	}
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.FramesWritten < 0 {
		return &ValidationError{Field: "FramesWritten", Reason: "cannot be negative"}
	}
	if c.TotalFrames <= 0 {
		return &ValidationError{Field: "TotalFrames", Reason: "must be positive"}
	}
	if c.FramesWritten > c.TotalFrames {
		return &ValidationError{Field: "FramesWritten", Reason: "cannot exceed TotalFrames"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.SrcDir == "" {
		return &ValidationError{Field: "Config.SrcDir", Reason: "cannot be empty"}
	}
	if c.Config.Combine == "" {
		return &ValidationError{Field: "Config.Combine", Reason: "cannot be empty"}
	}
	if c.Config.DstWidth <= 0 || c.Config.DstHeight <= 0 {
		return &ValidationError{Field: "Config.DstWidth/DstHeight", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given config.
// Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.SrcDir != config.SrcDir {
		return &CompatibilityError{Field: "SrcDir", Expected: c.Config.SrcDir, Actual: config.SrcDir}
	}
	if c.Config.Combine != config.Combine {
		return &CompatibilityError{Field: "Combine", Expected: c.Config.Combine, Actual: config.Combine}
	}
	if c.Config.DstWidth != config.DstWidth || c.Config.DstHeight != config.DstHeight {
		return &CompatibilityError{
			Field:    "DstWidth/DstHeight",
			Expected: fmt.Sprintf("%dx%d", c.Config.DstWidth, c.Config.DstHeight),
			Actual:   fmt.Sprintf("%dx%d", config.DstWidth, config.DstHeight),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
