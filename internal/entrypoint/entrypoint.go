package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/airspace/internal/auth"
	"github.com/mrlokans/airspace/internal/config"
	http_controllers "github.com/mrlokans/airspace/internal/http"
	"github.com/mrlokans/airspace/internal/pipeline"
	"github.com/mrlokans/airspace/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop the scheduler first so no new run starts while draining
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	ConfigureLogging(cfg.Global.Debug)
	log.Printf("Starting airspace publisher v%s", version)

	client, err := NewStorageClient(cfg)
	if err != nil {
		log.Fatalf("Failed to configure FTP: %v", err)
	}

	app, err := Build(cfg, client)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	syncScheduler := scheduler.NewAirspaceSyncScheduler(app.Runner, cfg.Sync)
	if app.Auditor != nil {
		syncScheduler.WithAuditCleanup(app.Auditor, cfg.Audit.RetentionDays)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start sync scheduler: %v", err)
	}

	if !cfg.Global.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
	defer limiter.Stop()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Runner:           app.Runner,
		Scheduler:        syncScheduler,
		TriggerTokenHash: cfg.Auth.TriggerTokenHash,
		TriggerLimiter:   limiter,
		MetricsHandler:   app.Metrics.Handler(),
		HealthChecks:     healthChecks(cfg, app.Runner, syncScheduler),
		Version:          version,
	})

	if cfg.Auth.TriggerTokenHash == "" {
		log.Printf("WARNING: TRIGGER_TOKEN_HASH is not set. The /run endpoint is open to anyone who can reach it.")
	}

	Serve(router, cfg, func(ctx context.Context) {
		syncScheduler.Stop()
		cancel()
	})
}

// ConfigureLogging adds file:line to log lines in debug mode.
func ConfigureLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// healthChecks reports the scheduler state and the outcome of the last run.
func healthChecks(cfg *config.Config, runner *pipeline.Runner, s *scheduler.AirspaceSyncScheduler) map[string]http_controllers.HealthCheck {
	return map[string]http_controllers.HealthCheck{
		"scheduler": func(context.Context) error {
			if cfg.Sync.Enabled && !s.IsRunning() {
				return fmt.Errorf("scheduler is enabled but not running")
			}
			return nil
		},
		"last_run": func(context.Context) error {
			return lastRunError(runner.Last())
		},
	}
}

func lastRunError(last *pipeline.Summary) error {
	if last == nil || last.Status == pipeline.StatusSuccess {
		return nil
	}
	return fmt.Errorf("%s: %s", last.Status, last.Error)
}
