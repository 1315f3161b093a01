package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
	"github.com/robfig/cron/v3"
)

const (
	DefaultFullSpec   = "*/15 * * * *"
	DefaultLiveSpec   = "@every 1m"
	defaultRunTimeout = 5 * time.Minute
)

// JobRunner is satisfied by usecase.JobOrchestratorService.
type JobRunner interface {
	RunFullSync(ctx context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error)
	RunLiveSync(ctx context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error)
}

type Config struct {
	FullSpec   string
	LiveSpec   string
	RunTimeout time.Duration
	Location   *time.Location
}

// Scheduler fires the full and live sync triggers independently. A trigger that is still running
// when its next tick arrives is skipped.
type Scheduler struct {
	cron       *cron.Cron
	runner     JobRunner
	runTimeout time.Duration
	logger     *logging.Logger

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(runner JobRunner, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("job runner is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	cronLog := NewCronLogger(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runner:     runner,
		runTimeout: cfg.RunTimeout,
		logger:     logger,
		baseCtx:    context.Background(),
	}

	if _, err := s.cron.AddFunc(specOrDefault(cfg.FullSpec, DefaultFullSpec), s.runFull); err != nil {
		return nil, fmt.Errorf("parse SYNC_FULL_CRON: %w", err)
	}
	if _, err := s.cron.AddFunc(specOrDefault(cfg.LiveSpec, DefaultLiveSpec), s.runLive); err != nil {
		return nil, fmt.Errorf("parse SYNC_LIVE_CRON: %w", err)
	}
	return s, nil
}

// Start begins firing triggers. Runs inherit ctx values and stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop prevents new runs, cancels running ones and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running sync jobs: %w", ctx.Err())
	}
}

func (s *Scheduler) runFull() {
	s.run("sync-full", s.runner.RunFullSync)
}

func (s *Scheduler) runLive() {
	s.run("sync-live", s.runner.RunLiveSync)
}

func (s *Scheduler) run(jobName string, fn func(context.Context, usecase.JobSyncInput) (usecase.JobSyncResult, error)) {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, s.runTimeout)
	defer cancel()

	started := time.Now()
	result, err := fn(ctx, usecase.JobSyncInput{Trigger: usecase.TriggerScheduler})
	if err != nil {
		s.logger.Warn("scheduled job finished with failures",
			"job", jobName,
			"dispatch_id", result.DispatchID,
			"leagues", result.LeagueCount,
			"failed", result.FailedCount,
			"duration_ms", time.Since(started).Milliseconds(),
			"error", err,
		)
		return
	}
	s.logger.Info("scheduled job finished",
		"job", jobName,
		"dispatch_id", result.DispatchID,
		"leagues", result.LeagueCount,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

func specOrDefault(spec, fallback string) string {
	if strings.TrimSpace(spec) == "" {
		return fallback
	}
	return strings.TrimSpace(spec)
}
