package http

import (
	"io"
	"net/http"
	"time"

	"github.com/mrlokans/airspace/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Pipeline
	Runner     PipelineRunner
	Scheduler  SyncScheduler // Optional, nil when sync is disabled
	RunTimeout time.Duration

	// Trigger protection, bcrypt hash of the bearer token
	TriggerTokenHash string
	TriggerLimiter   *auth.RateLimiter // Optional lockout after repeated bad tokens

	// Prometheus handler (optional)
	MetricsHandler http.Handler

	// Health checks keyed by component name
	HealthChecks map[string]HealthCheck

	// Access log destination, gin.DefaultWriter when nil
	LogOutput io.Writer

	// Application info
	Version string
}
