package server

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cwbudde/scanblit/internal/store"
)

// fakeCheckpointStore is a minimal in-memory store.Store for exercising
// checkpoint calls without touching the filesystem.
type fakeCheckpointStore struct {
	mu          sync.Mutex
	checkpoints map[string]*store.Checkpoint
	saveCount   int
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{checkpoints: make(map[string]*store.Checkpoint)}
}

func (s *fakeCheckpointStore) SaveCheckpoint(jobID string, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[jobID] = checkpoint
	s.saveCount++
	return nil
}

func (s *fakeCheckpointStore) LoadCheckpoint(jobID string) (*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.checkpoints[jobID]
	if !ok {
		return nil, &store.NotFoundError{JobID: jobID}
	}
	return cp, nil
}

func (s *fakeCheckpointStore) ListCheckpoints() ([]store.CheckpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]store.CheckpointInfo, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		infos = append(infos, cp.ToInfo())
	}
	return infos, nil
}

func (s *fakeCheckpointStore) DeleteCheckpoint(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkpoints[jobID]; !ok {
		return &store.NotFoundError{JobID: jobID}
	}
	delete(s.checkpoints, jobID)
	return nil
}

func writeFrames(t *testing.T, dir string, count, width, height int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create frame dir: %v", err)
	}
	for i := 0; i < count; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), uint8(i * 10), 255})
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("frame-%06d.png", i))
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("Failed to create frame: %v", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			t.Fatalf("Failed to encode frame: %v", err)
		}
		f.Close()
	}
}

func TestRunJob_Success(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	writeFrames(t, srcDir, 4, 4, 4)

	jm := NewJobManager()
	config := JobConfig{
		SrcDir:    srcDir,
		Pattern:   "frame-*.png",
		SrcWidth:  4,
		SrcHeight: 4,
		DstWidth:  8,
		DstHeight: 8,
		Combine:   "scale2x",
		OutDir:    outDir,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	if err := runJob(ctx, jm, nil, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if updated.FramesWritten != 4 {
		t.Errorf("Expected 4 frames written, got %d", updated.FramesWritten)
	}
	if updated.ScratchBytes <= 0 {
		t.Error("ScratchBytes should be positive after assembly")
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 output frames, got %d", len(entries))
	}
}

func TestRunJob_NoFrames(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	os.MkdirAll(srcDir, 0755)

	jm := NewJobManager()
	config := JobConfig{
		SrcDir:    srcDir,
		Pattern:   "frame-*.png",
		SrcWidth:  4,
		SrcHeight: 4,
		DstWidth:  8,
		DstHeight: 8,
		Combine:   "scale2x",
		OutDir:    filepath.Join(tmpDir, "out"),
	}
	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should fail when no frames match")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_UnknownCombine(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	writeFrames(t, srcDir, 2, 4, 4)

	jm := NewJobManager()
	config := JobConfig{
		SrcDir:    srcDir,
		Pattern:   "frame-*.png",
		SrcWidth:  4,
		SrcHeight: 4,
		DstWidth:  4,
		DstHeight: 4,
		Combine:   "not-a-real-mode",
		OutDir:    filepath.Join(tmpDir, "out"),
	}
	job := jm.CreateJob(config)

	err := runJob(context.Background(), jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should fail with unknown combine mode")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	writeFrames(t, srcDir, 200, 4, 4)

	jm := NewJobManager()
	config := JobConfig{
		SrcDir:    srcDir,
		Pattern:   "frame-*.png",
		SrcWidth:  4,
		SrcHeight: 4,
		DstWidth:  8,
		DstHeight: 8,
		Combine:   "scale2x",
		OutDir:    outDir,
	}
	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately so the first frame check trips it

	err := runJob(ctx, jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should return error when cancelled")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_Checkpointing(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	writeFrames(t, srcDir, 6, 4, 4)

	jm := NewJobManager()
	config := JobConfig{
		SrcDir:             srcDir,
		Pattern:            "frame-*.png",
		SrcWidth:           4,
		SrcHeight:          4,
		DstWidth:           8,
		DstHeight:          8,
		Combine:            "scale2x",
		OutDir:             outDir,
		CheckpointInterval: 2,
	}
	job := jm.CreateJob(config)

	fakeStore := newFakeCheckpointStore()
	if err := runJob(context.Background(), jm, fakeStore, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	if fakeStore.saveCount == 0 {
		t.Error("Expected at least one checkpoint to be saved")
	}

	cp, err := fakeStore.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if cp.TotalFrames != 6 {
		t.Errorf("Expected checkpoint TotalFrames=6, got %d", cp.TotalFrames)
	}
}
