package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/pipeline"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultRunTimeout bounds a single scheduled run end to end.
	DefaultRunTimeout = 10 * time.Minute

	auditCleanupSchedule = "30 4 * * *"
)

// PipelineRunner is satisfied by *pipeline.Runner.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
	IsRunning() bool
}

// AuditCleaner prunes old run audit files.
type AuditCleaner interface {
	DeleteOlderThan(retention time.Duration) (int, error)
}

// AirspaceSyncScheduler runs the airspace pipeline on a cron schedule
type AirspaceSyncScheduler struct {
	runner     PipelineRunner
	config     config.Sync
	runTimeout time.Duration

	cleaner   AuditCleaner
	retention time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAirspaceSyncScheduler creates a new scheduler instance
func NewAirspaceSyncScheduler(runner PipelineRunner, cfg config.Sync) *AirspaceSyncScheduler {
	return &AirspaceSyncScheduler{
		runner:     runner,
		config:     cfg,
		runTimeout: DefaultRunTimeout,
		cron:       cron.New(cron.WithParser(cronParser)),
	}
}

// WithAuditCleanup registers a daily job removing audit files older than
// retentionDays. Must be called before Start.
func (s *AirspaceSyncScheduler) WithAuditCleanup(cleaner AuditCleaner, retentionDays int) *AirspaceSyncScheduler {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	s.cleaner = cleaner
	s.retention = time.Duration(retentionDays) * 24 * time.Hour
	return s
}

// Start begins the scheduler if sync is enabled
func (s *AirspaceSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Airspace sync scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	if s.cleaner != nil {
		if _, err := s.cron.AddFunc(auditCleanupSchedule, s.cleanupAudit); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.config.Schedule)
	log.Printf("Airspace sync scheduler: started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule,
		GetCronDescription(s.config.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for an active run to finish
func (s *AirspaceSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Airspace sync scheduler: stopped")
}

// RunNow triggers an immediate run in the background
func (s *AirspaceSyncScheduler) RunNow() error {
	if s.runner.IsRunning() {
		return pipeline.ErrRunInProgress
	}
	go s.runSync()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *AirspaceSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next run will occur
func (s *AirspaceSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *AirspaceSyncScheduler) runSync() {
	if s.runner.IsRunning() {
		log.Printf("Airspace sync: skipped (run already in progress)")
		return
	}

	log.Printf("Airspace sync: starting scheduled run")

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	summary, err := s.runner.Run(ctx)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		log.Printf("Airspace sync: skipped (run already in progress)")
		return
	}
	if summary == nil {
		log.Printf("Airspace sync: failed: %v", err)
		return
	}

	log.Printf("Airspace sync: %s (in %v)", summary.Message(), summary.Duration().Round(time.Millisecond))
}

func (s *AirspaceSyncScheduler) cleanupAudit() {
	deleted, err := s.cleaner.DeleteOlderThan(s.retention)
	if err != nil {
		log.Printf("Audit cleanup: %v", err)
		return
	}
	log.Printf("Audit cleanup: removed %d audit files older than %v", deleted, s.retention)
}
