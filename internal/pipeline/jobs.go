package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/dgallion1/doclinks/internal/discovery"
)

// JobStatus represents the state of a discovery job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// JobKind selects the discoverer a job runs.
type JobKind string

const (
	KindLocal  JobKind = "local"
	KindRemote JobKind = "remote"
)

// Job tracks the state of a single discovery call.
type Job struct {
	mu sync.Mutex

	ID       string  `json:"job_id"`
	Kind     JobKind `json:"kind"`
	Root     string  `json:"root"`
	MaxDepth int     `json:"max_depth"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	local     []discovery.LocalDocument
	remote    []discovery.RemoteDocument
	err       error
	done      chan struct{}
	closeOnce sync.Once
}

// NewJob returns a queued job.
func NewJob(kind JobKind, root string, maxDepth int) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Kind:      kind,
		Root:      root,
		MaxDepth:  maxDepth,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.finishedLocked() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// CompleteLocal records the documents of a finished local discovery.
func (j *Job) CompleteLocal(docs []discovery.LocalDocument) {
	j.mu.Lock()
	j.local = docs
	j.mu.Unlock()
	j.finish(StatusCompleted, nil)
}

// CompleteRemote records the documents of a finished remote discovery.
func (j *Job) CompleteRemote(docs []discovery.RemoteDocument) {
	j.mu.Lock()
	j.remote = docs
	j.mu.Unlock()
	j.finish(StatusCompleted, nil)
}

// Fail marks the job failed with err.
func (j *Job) Fail(err error) {
	j.finish(StatusFailed, err)
}

func (j *Job) finish(status JobStatus, err error) {
	j.mu.Lock()
	j.Status = status
	j.Phase = "done"
	j.err = err
	j.UpdatedAt = time.Now()
	j.mu.Unlock()
	j.closeOnce.Do(func() { close(j.done) })
}

func (j *Job) finishedLocked() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Err returns the error of a failed job.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Kind      JobKind   `json:"kind"`
	Root      string    `json:"root"`
	MaxDepth  int       `json:"max_depth"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Documents any       `json:"documents"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Documents is never nil
// so that it encodes as an empty array.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := JobSnapshot{
		ID:       j.ID,
		Kind:     j.Kind,
		Root:     j.Root,
		MaxDepth: j.MaxDepth,
		Status:   j.Status,
		Phase:    j.Phase,
	}
	switch j.Kind {
	case KindRemote:
		docs := j.remote
		if docs == nil {
			docs = []discovery.RemoteDocument{}
		}
		snap.Documents = docs
	default:
		docs := j.local
		if docs == nil {
			docs = []discovery.LocalDocument{}
		}
		snap.Documents = docs
	}
	if j.err != nil {
		snap.Error = j.err.Error()
		snap.ErrorCode = string(discovery.CodeOf(j.err))
	}
	return snap
}
