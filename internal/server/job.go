package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/scanblit/internal/store"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig is an alias to avoid duplication with store.JobConfig
type JobConfig = store.JobConfig

// Job represents a batch blit job: a directory of source frames blitted
// through one assembled pipeline into a directory of destination frames.
type Job struct {
	ID            string     `json:"id"`
	State         JobState   `json:"state"`
	Config        JobConfig  `json:"config"`
	FramesWritten int        `json:"framesWritten"`
	TotalFrames   int        `json:"totalFrames"`
	ScratchBytes  int        `json:"scratchBytes"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs and the single serialized
// blit worker that drains them. Spec.md §5 treats the scratch arena and
// kernel-internal tables as process-wide state with no support for
// concurrent blits, so unlike the teacher's JobManager (which may run
// several independent optimization jobs at once) only one job's frame
// loop ever runs at a time here; extra jobs queue behind it.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
	queue       chan string
}

// NewJobManager creates a new JobManager with an empty job queue. It starts
// no goroutine; NewServer starts the worker loop that drains the queue.
func NewJobManager() *JobManager {
	jm := &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
		queue:       make(chan string, 64),
	}
	return jm
}

// CreateJob creates and registers a new pending job with the given
// configuration. It does not enqueue the job; callers pass its ID to
// Enqueue to have the worker run it.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// Enqueue pushes a job ID onto the worker queue. Blocks if the queue is
// full, which is intentional backpressure: spec.md §5 forbids the caller
// from racing the arena with a second in-flight blit.
func (jm *JobManager) Enqueue(jobID string) {
	jm.queue <- jobID
}

// Dequeue returns the receive side of the worker queue; receiving from it
// blocks until a job ID is available.
func (jm *JobManager) Dequeue() <-chan string {
	return jm.queue
}

// GetJob retrieves a job by ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	return job, exists
}

// ListJobs returns all jobs
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			runningJobs = append(runningJobs, job)
		}
	}
	return runningJobs
}

// GetPendingJobs returns all jobs still waiting for the worker.
func (jm *JobManager) GetPendingJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	pending := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StatePending {
			pending = append(pending, job)
		}
	}
	return pending
}
