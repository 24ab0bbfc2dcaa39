package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestFrames(t *testing.T, dir string, count, width, height int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create frame dir: %v", err)
	}
	for i := 0; i < count; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		shade := uint8(i * 40)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.NRGBA{shade, shade, shade, 255})
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("frame-%06d.png", i))
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("Failed to create frame file: %v", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			t.Fatalf("Failed to encode frame: %v", err)
		}
		f.Close()
	}
}

func testJobConfig(srcDir, outDir string) JobConfig {
	return JobConfig{
		SrcDir:    srcDir,
		Pattern:   "frame-*.png",
		SrcWidth:  4,
		SrcHeight: 4,
		DstWidth:  8,
		DstHeight: 8,
		Combine:   "scale2x",
		OutDir:    outDir,
	}
}

func TestServer_CreateJob(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	createTestFrames(t, srcDir, 3, 4, 4)

	s := NewServer(":8080", nil)

	config := testJobConfig(srcDir, outDir)
	body, _ := json.Marshal(config)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.Config.SrcDir != srcDir {
		t.Error("Config not preserved")
	}

	waitForJobState(t, s.jobManager, job.ID, StateCompleted, 2*time.Second)
}

func TestServer_CreateJob_MissingSrcDir(t *testing.T) {
	s := NewServer(":8080", nil)

	config := JobConfig{OutDir: "out", DstWidth: 8, DstHeight: 8}
	body, _ := json.Marshal(config)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_ListJobs(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	createTestFrames(t, srcDir, 2, 4, 4)

	s := NewServer(":8080", nil)

	s.jobManager.CreateJob(testJobConfig(srcDir, filepath.Join(tmpDir, "out1")))
	s.jobManager.CreateJob(testJobConfig(srcDir, filepath.Join(tmpDir, "out2")))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []*Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	createTestFrames(t, srcDir, 2, 4, 4)

	s := NewServer(":8080", nil)
	job := s.jobManager.CreateJob(testJobConfig(srcDir, filepath.Join(tmpDir, "out")))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), nil)
	w := httptest.NewRecorder()

	s.handleGetJobStatus(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["id"] != job.ID {
		t.Error("Response should contain job ID")
	}
}

func TestServer_GetJobStatus_NotFound(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nonexistent/status", nil)
	w := httptest.NewRecorder()

	s.handleGetJobStatus(w, req, "nonexistent")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	createTestFrames(t, srcDir, 3, 4, 4)

	s := NewServer("localhost:0", nil)
	srv := httptest.NewServer(s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/jobs" && r.Method == http.MethodPost:
			s.handleCreateJob(w, r)
		case r.URL.Path == "/api/v1/jobs" && r.Method == http.MethodGet:
			s.handleListJobs(w, r)
		default:
			s.handleJobsWithID(w, r)
		}
	})))
	defer srv.Close()

	config := testJobConfig(srcDir, outDir)
	body, _ := json.Marshal(config)
	resp, err := http.Post(srv.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	defer resp.Body.Close()

	var job Job
	json.NewDecoder(resp.Body).Decode(&job)

	maxAttempts := 50
	for i := 0; i < maxAttempts; i++ {
		resp, err := http.Get(srv.URL + "/api/v1/jobs/" + job.ID + "/status")
		if err != nil {
			t.Fatalf("Failed to get status: %v", err)
		}

		var status map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()

		if status["state"] == string(StateCompleted) {
			break
		}
		if status["state"] == string(StateFailed) {
			t.Fatalf("Job failed: %v", status["error"])
		}
		if i == maxAttempts-1 {
			t.Fatal("Job did not complete in time")
		}

		time.Sleep(20 * time.Millisecond)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 output frames, got %d", len(entries))
	}
}

func TestServer_ResumeJob_NoStore(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/some-job/resume", nil)
	w := httptest.NewRecorder()

	s.handleResumeJob(w, req, "some-job")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func waitForJobState(t *testing.T, jm *JobManager, jobID string, want JobState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		job, exists := jm.GetJob(jobID)
		if exists && (job.State == want || job.State == StateFailed) {
			if job.State == StateFailed {
				t.Fatalf("Job failed: %s", job.Error)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Job %s did not reach state %s in time", jobID, want)
}
