package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/airspace/internal/pipeline"
)

// SyncScheduler is satisfied by the sync scheduler.
type SyncScheduler interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
	RunNow() error
}

type StatusResponse struct {
	Running        bool              `json:"running"`
	SchedulerState string            `json:"scheduler"`
	NextRun        *time.Time        `json:"next_run,omitempty"`
	LastRun        *pipeline.Summary `json:"last_run,omitempty"`
}

type StatusController struct {
	runner    PipelineRunner
	scheduler SyncScheduler
}

func NewStatusController(runner PipelineRunner, scheduler SyncScheduler) *StatusController {
	return &StatusController{runner: runner, scheduler: scheduler}
}

// Status reports the last finished run and when the next scheduled run is due.
func (sc *StatusController) Status(c *gin.Context) {
	resp := StatusResponse{
		Running:        sc.runner.IsRunning(),
		SchedulerState: "disabled",
		LastRun:        sc.runner.Last(),
	}

	if sc.scheduler != nil && sc.scheduler.IsRunning() {
		resp.SchedulerState = "running"
		resp.NextRun = sc.scheduler.GetNextRunTime()
	}

	c.JSON(http.StatusOK, resp)
}
