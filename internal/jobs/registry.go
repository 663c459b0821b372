// Package jobs tracks in-flight downloads by track identifier.
package jobs

import (
	"sync"
	"time"
)

// Status of a download job.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusNotFound    Status = "not_found"
)

// IsTerminal reports whether no further transitions follow s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusNotFound
}

// Job is a snapshot of one download's state.
type Job struct {
	Progress int    `json:"progress"`
	Status   Status `json:"status"`
}

type entry struct {
	job        Job
	generation uint64
}

// Registry maps track identifiers to download jobs. Each identifier is
// written by a single orchestrator task; readers may poll concurrently.
type Registry struct {
	mu         sync.RWMutex
	jobs       map[int64]entry
	generation uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[int64]entry)}
}

// Create registers id as starting at progress 0, replacing any prior entry.
// Jobs are not scoped beyond the track id, so a concurrent download of the
// same id takes over the entry.
func (r *Registry) Create(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.jobs[id] = entry{
		job:        Job{Progress: 0, Status: StatusStarting},
		generation: r.generation,
	}
}

// Update sets the progress and status of id, creating the entry if needed.
func (r *Registry) Update(id int64, progress int, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok {
		r.generation++
		e.generation = r.generation
	}
	e.job = Job{Progress: progress, Status: status}
	r.jobs[id] = e
}

// Get returns the job for id.
func (r *Registry) Get(id int64) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.jobs[id]
	return e.job, ok
}

// Remove deletes the job for id.
func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// ExpireAfter removes the current entry for id once d has elapsed. An entry
// re-created for the same id in the meantime is left alone.
func (r *Registry) ExpireAfter(id int64, d time.Duration) {
	r.mu.RLock()
	e, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	expire := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.jobs[id]; ok && cur.generation == e.generation {
			delete(r.jobs, id)
		}
	}
	if d <= 0 {
		expire()
		return
	}
	time.AfterFunc(d, expire)
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
