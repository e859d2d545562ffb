package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrRunInProgress is returned when a run is triggered while another is active.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Observer is notified after every finished run (metrics, audit).
type Observer interface {
	ObserveRun(summary *Summary, err error)
}

// Auditor persists run summaries.
type Auditor interface {
	SaveJSON(data any) (string, error)
}

// Runner serializes runs: triggers arriving while a run is active are rejected
// instead of queued.
type Runner struct {
	pipeline  *Pipeline
	auditor   Auditor
	observers []Observer

	mu      sync.RWMutex
	running bool
	last    *Summary
}

func NewRunner(pipeline *Pipeline, auditor Auditor, observers ...Observer) *Runner {
	return &Runner{
		pipeline:  pipeline,
		auditor:   auditor,
		observers: observers,
	}
}

// Run executes the pipeline unless a run is already active.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()

	summary, err := r.pipeline.Run(ctx)

	r.mu.Lock()
	r.running = false
	r.last = summary
	r.mu.Unlock()

	for _, o := range r.observers {
		o.ObserveRun(summary, err)
	}
	if r.auditor != nil {
		if name, aerr := r.auditor.SaveJSON(summary); aerr != nil {
			log.Printf("Failed to save run audit: %v", aerr)
		} else {
			log.Printf("Run audit saved: %s", name)
		}
	}

	return summary, err
}

// IsRunning returns whether a run is currently in progress
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Last returns the summary of the most recent finished run, or nil.
func (r *Runner) Last() *Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}
