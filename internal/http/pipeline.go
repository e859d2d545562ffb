package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/airspace/internal/pipeline"
)

const defaultRunTimeout = 10 * time.Minute

// PipelineRunner is satisfied by *pipeline.Runner.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
	IsRunning() bool
	Last() *pipeline.Summary
}

// PipelineController exposes the pipeline trigger.
type PipelineController struct {
	runner    PipelineRunner
	scheduler SyncScheduler
	timeout   time.Duration
}

func NewPipelineController(runner PipelineRunner, scheduler SyncScheduler, timeout time.Duration) *PipelineController {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &PipelineController{runner: runner, scheduler: scheduler, timeout: timeout}
}

// Run executes one pipeline run synchronously and answers with its
// plain-text status line. With ?async=1 the run is handed to the
// scheduler and the request returns 202 straight away.
func (pc *PipelineController) Run(c *gin.Context) {
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		pc.runAsync(c)
		return
	}

	// A client hanging up must not abort a publish half way through.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), pc.timeout)
	defer cancel()

	summary, err := pc.runner.Run(ctx)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.String(http.StatusConflict, ">>> FAILED :%v", err)
		return
	}
	if summary == nil {
		log.Printf("Pipeline trigger: run failed without summary: %v", err)
		c.String(http.StatusInternalServerError, ">>> FAILED :%v", err)
		return
	}

	c.String(runStatusCode(summary), summary.Message())
}

func (pc *PipelineController) runAsync(c *gin.Context) {
	if pc.scheduler == nil {
		c.String(http.StatusServiceUnavailable, ">>> FAILED :background runs unavailable")
		return
	}
	if err := pc.scheduler.RunNow(); err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			c.String(http.StatusConflict, ">>> FAILED :%v", err)
			return
		}
		log.Printf("Pipeline trigger: background run failed to start: %v", err)
		c.String(http.StatusInternalServerError, ">>> FAILED :%v", err)
		return
	}
	c.String(http.StatusAccepted, ">>> ACCEPTED :run started")
}

// runStatusCode maps a run outcome to an HTTP status. Upstream failures
// (source, converter service, FTP) are reported as 502.
func runStatusCode(summary *pipeline.Summary) int {
	switch summary.Status {
	case pipeline.StatusSuccess:
		return http.StatusOK
	case pipeline.StatusPartial:
		return http.StatusMultiStatus
	default:
		return http.StatusBadGateway
	}
}
