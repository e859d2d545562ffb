package publisher

import (
	"errors"
	"fmt"

	"github.com/mrlokans/airspace/internal/entities"
)

// Status is the outcome of publishing to one target
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // Not attempted after an earlier failure
)

// ErrNotAttempted is the cause recorded for targets after the first failure.
var ErrNotAttempted = errors.New("not attempted after an earlier failure")

// TargetResult tracks the outcome for a single target
type TargetResult struct {
	Target entities.PublishTarget `json:"target"`
	Status Status                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
	Err    error                  `json:"-"`
}

// Result aggregates every target of one publish call, in target order.
type Result struct {
	Targets       []TargetResult `json:"targets"`
	PayloadBytes  int            `json:"payload_bytes"`
	MetadataBytes int            `json:"metadata_bytes"`
}

// Succeeded counts targets that received both files.
func (r Result) Succeeded() int {
	n := 0
	for _, t := range r.Targets {
		if t.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// OK reports whether every target succeeded.
func (r Result) OK() bool {
	return len(r.Targets) > 0 && r.Succeeded() == len(r.Targets)
}

// Partial reports a publication that reached some but not all targets.
func (r Result) Partial() bool {
	n := r.Succeeded()
	return n > 0 && n < len(r.Targets)
}

// Err returns a *PublishError describing the first failed target, or nil.
func (r Result) Err() error {
	for _, t := range r.Targets {
		if t.Status == StatusFailed {
			return &PublishError{
				Target:    t.Target,
				Succeeded: r.Succeeded(),
				Total:     len(r.Targets),
				Err:       t.Err,
			}
		}
	}
	if len(r.Targets) == 0 {
		return &PublishError{Err: errors.New("no publish targets")}
	}
	return nil
}

func (r *Result) set(i int, status Status, err error) {
	r.Targets[i].Status = status
	r.Targets[i].Err = err
	if err != nil {
		r.Targets[i].Error = err.Error()
	}
}

// PublishError reports a publication that did not reach every target.
type PublishError struct {
	Target    entities.PublishTarget
	Succeeded int
	Total     int
	Err       error
}

func (e *PublishError) Error() string {
	if e.Total == 0 {
		return fmt.Sprintf("publish failed: %v", e.Err)
	}
	return fmt.Sprintf("publish failed at %s (%d/%d targets published): %v", e.Target, e.Succeeded, e.Total, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
