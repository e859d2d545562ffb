package pipeline

import (
	"encoding/json"
	"time"

	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/publisher"
)

// RunStatus represents the outcome of one pipeline run
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial" // Some targets published, others not
	StatusFailed  RunStatus = "failed"
)

// Stage names a pipeline step, used to report where a run stopped.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageConvert Stage = "convert"
	StagePublish Stage = "publish"
)

// Summary is returned to whoever triggered the run.
type Summary struct {
	RunID      string             `json:"run_id"`
	Status     RunStatus          `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	SourceURL  string             `json:"source_url"`
	Backend    string             `json:"backend"`
	Metadata   *metadata.Metadata `json:"metadata,omitempty"`
	Features   int                `json:"features"`
	Publish    *publisher.Result  `json:"publish,omitempty"`
	FailedAt   Stage              `json:"failed_at,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Duration of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Message renders the plain-text status line returned by the HTTP trigger,
// e.g. `>>> OK :{"date":"...","source":"..."}`.
func (s *Summary) Message() string {
	prefix := ">>> OK :"
	switch s.Status {
	case StatusPartial:
		prefix = ">>> PARTIAL :"
	case StatusFailed:
		prefix = ">>> FAILED :"
	}

	body := s.Error
	if s.Metadata != nil {
		if data, err := json.Marshal(s.Metadata); err == nil {
			if body != "" {
				body = string(data) + " " + body
			} else {
				body = string(data)
			}
		}
	}
	return prefix + body
}
