package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/cwbudde/scanblit/internal/store"
)

// Server represents the HTTP batch blit service.
type Server struct {
	jobManager *JobManager
	store      store.Store
	addr       string
	server     *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer creates a new HTTP server with optional checkpoint store.
// If store is nil, checkpointing is disabled. The single serialized
// worker goroutine starts immediately, draining jobs as they're created.
func NewServer(addr string, checkpointStore store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		jobManager: NewJobManager(),
		store:      checkpointStore,
		addr:       addr,
		ctx:        ctx,
		cancel:     cancel,
	}
	go runWorkerLoop(s.ctx, s.jobManager, s.store)
	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register UI routes
	mux.HandleFunc("/", s.handleIndex)

	// Register API routes
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	// Register pprof routes for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Wrap with middleware
	handler := s.loggingMiddleware(s.corsMiddleware(mux))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")

	// Cancel server context to signal the worker to stop
	s.cancel()

	// Checkpoint running jobs before shutdown
	if s.store != nil {
		s.checkpointRunningJobs(ctx)
	}

	// Shutdown HTTP server
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// checkpointRunningJobs saves a checkpoint for each running job. Since
// only one job ever runs at a time, this is at most one checkpoint; jobs
// still queued behind it are not checkpointed.
func (s *Server) checkpointRunningJobs(ctx context.Context) {
	running := s.jobManager.GetRunningJobs()

	if len(running) == 0 {
		slog.Info("No running jobs to checkpoint")
		return
	}

	slog.Info("Checkpointing running jobs", "count", len(running))

	for _, job := range running {
		checkpoint := store.NewCheckpoint(job.ID, job.FramesWritten, job.TotalFrames, job.ScratchBytes, job.Config)
		if err := s.store.SaveCheckpoint(job.ID, checkpoint); err != nil {
			slog.Error("Failed to checkpoint job on shutdown", "job_id", job.ID, "error", err)
			continue
		}
		slog.Info("Job checkpointed on shutdown", "job_id", job.ID, "frames_written", job.FramesWritten)
	}
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "resume":
		s.handleResumeJob(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if config.SrcDir == "" {
		http.Error(w, "srcDir is required", http.StatusBadRequest)
		return
	}
	if config.Pattern == "" {
		config.Pattern = "*.png"
	}
	if config.Combine == "" {
		config.Combine = "none"
	}
	if config.OutDir == "" {
		http.Error(w, "outDir is required", http.StatusBadRequest)
		return
	}
	if config.DstWidth <= 0 || config.DstHeight <= 0 {
		http.Error(w, "dstWidth and dstHeight must be positive", http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)
	s.jobManager.Enqueue(job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	fps := float64(0)
	if elapsed.Seconds() > 0 {
		fps = float64(job.FramesWritten) / elapsed.Seconds()
	}

	response := map[string]interface{}{
		"id":            job.ID,
		"state":         job.State,
		"config":        job.Config,
		"framesWritten": job.FramesWritten,
		"totalFrames":   job.TotalFrames,
		"scratchBytes":  job.ScratchBytes,
		"elapsed":       elapsed.Seconds(),
		"fps":           fps,
		"startTime":     job.StartTime,
		"endTime":       job.EndTime,
		"error":         job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleResumeJob handles POST /api/v1/jobs/:id/resume
func (s *Server) handleResumeJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.store == nil {
		http.Error(w, "Checkpoint feature not enabled", http.StatusServiceUnavailable)
		return
	}

	checkpoint, err := s.store.LoadCheckpoint(jobID)
	if err != nil {
		if _, ok := err.(*store.NotFoundError); ok {
			http.Error(w, fmt.Sprintf("Checkpoint not found for job %s", jobID), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to load checkpoint: %v", err), http.StatusInternalServerError)
		return
	}

	if err := checkpoint.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid checkpoint: %v", err), http.StatusBadRequest)
		return
	}

	slog.Info("Resuming job from checkpoint",
		"job_id", jobID,
		"frames_written", checkpoint.FramesWritten,
		"total_frames", checkpoint.TotalFrames,
	)

	newJob := s.jobManager.CreateJob(checkpoint.Config)
	s.jobManager.UpdateJob(newJob.ID, func(j *Job) {
		j.FramesWritten = checkpoint.FramesWritten
		j.TotalFrames = checkpoint.TotalFrames
		j.ScratchBytes = checkpoint.ScratchBytes
	})
	s.jobManager.Enqueue(newJob.ID)

	response := map[string]interface{}{
		"jobId":         newJob.ID,
		"resumedFrom":   jobID,
		"state":         string(newJob.State),
		"framesWritten": checkpoint.FramesWritten,
		"totalFrames":   checkpoint.TotalFrames,
		"message":       "Job resumed successfully from checkpoint",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
