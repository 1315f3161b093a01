package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TriggerScheduler = "scheduler"
	TriggerHTTP      = "http"
	TriggerOnDemand  = "on-demand"
)

type JobOrchestratorConfig struct {
	// Workers bounds how many leagues sync at once. 1 keeps leagues sequential.
	Workers    int
	FullBucket time.Duration
	LiveBucket time.Duration
}

type JobSyncInput struct {
	LeagueSlug string `json:"league_slug,omitempty"`
	DispatchID string `json:"dispatch_id,omitempty"`
	Trigger    string `json:"trigger,omitempty"`
}

type JobSyncResult struct {
	Mode        string             `json:"mode"`
	DispatchID  string             `json:"dispatch_id"`
	LeagueCount int                `json:"league_count"`
	FailedCount int                `json:"failed_count"`
	Leagues     []LeagueSyncReport `json:"leagues"`
}

// LeagueSyncer runs one league pass. MatchSyncService is the production implementation.
type LeagueSyncer interface {
	SyncFull(ctx context.Context, leagueSlug string) (LeagueSyncReport, error)
	SyncLive(ctx context.Context, leagueSlug string) (LeagueSyncReport, error)
}

type JobOrchestratorService struct {
	catalog      *LeagueCatalog
	syncer       LeagueSyncer
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	catalog *LeagueCatalog,
	syncer LeagueSyncer,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FullBucket <= 0 {
		cfg.FullBucket = 15 * time.Minute
	}
	if cfg.LiveBucket <= 0 {
		cfg.LiveBucket = time.Minute
	}

	return &JobOrchestratorService{
		catalog:      catalog,
		syncer:       syncer,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// RunFullSync syncs every selected league. A failed league does not stop the others; the
// returned error joins every league failure so the caller can retry.
func (s *JobOrchestratorService) RunFullSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	return s.run(ctx, jobscheduler.JobSyncFull, s.cfg.FullBucket, input, s.syncer.SyncFull)
}

func (s *JobOrchestratorService) RunLiveSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	return s.run(ctx, jobscheduler.JobSyncLive, s.cfg.LiveBucket, input, s.syncer.SyncLive)
}

type leagueSyncFunc func(ctx context.Context, leagueSlug string) (LeagueSyncReport, error)

func (s *JobOrchestratorService) run(
	ctx context.Context,
	jobName string,
	bucket time.Duration,
	input JobSyncInput,
	syncFn leagueSyncFunc,
) (JobSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService."+jobName,
		leagueAttr(input.LeagueSlug),
	)
	defer span.End()

	leagues, err := s.pickLeagues(input.LeagueSlug)
	if err != nil {
		return JobSyncResult{}, err
	}

	now := s.now().UTC()
	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		scope := input.LeagueSlug
		if strings.TrimSpace(scope) == "" {
			scope = "all"
		}
		dispatchID = dedupKey(jobName, scope, now, bucket)
	}
	trigger := strings.TrimSpace(input.Trigger)
	if trigger == "" {
		trigger = TriggerHTTP
	}

	result := JobSyncResult{
		Mode:        jobName,
		DispatchID:  dispatchID,
		LeagueCount: len(leagues),
		Leagues:     make([]LeagueSyncReport, len(leagues)),
	}
	leagueErrs := make([]error, len(leagues))

	runLeague := func(i int, slug string) {
		leagueDispatchID := dispatchID + "-" + sanitizeDedupSegment(slug)
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID: leagueDispatchID,
			JobName:    jobName,
			Trigger:    trigger,
			LeagueSlug: slug,
			Status:     jobscheduler.StatusSent,
		})

		report, err := s.safeSync(ctx, syncFn, slug)
		report.League = slug
		event := jobscheduler.DispatchEvent{
			DispatchID: leagueDispatchID,
			JobName:    jobName,
			Trigger:    trigger,
			LeagueSlug: slug,
			Status:     jobscheduler.StatusCompleted,
			MatchCount: report.Matches,
			EventCount: report.Events,
		}
		if err != nil {
			report.ErrorMessage = err.Error()
			event.Status = jobscheduler.StatusFailed
			event.ErrorMessage = err.Error()
			leagueErrs[i] = fmt.Errorf("%s league=%s: %w", jobName, slug, err)
			s.logger.ErrorContext(ctx, "league sync failed",
				"job", jobName,
				"league", slug,
				"dispatch_id", leagueDispatchID,
				"error", err,
			)
		}
		s.recordDispatchEvent(ctx, event)
		result.Leagues[i] = report
	}

	if s.cfg.Workers <= 1 || len(leagues) <= 1 {
		for i, slug := range leagues {
			runLeague(i, slug)
		}
	} else {
		pool, err := ants.NewPool(s.cfg.Workers)
		if err != nil {
			return JobSyncResult{}, fmt.Errorf("create worker pool: %w", err)
		}
		defer pool.Release()

		var workers sync.WaitGroup
		for i, slug := range leagues {
			i, slug := i, slug
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()
				runLeague(i, slug)
			}); err != nil {
				workers.Done()
				leagueErrs[i] = fmt.Errorf("%s league=%s: submit to worker pool: %w", jobName, slug, err)
				result.Leagues[i] = LeagueSyncReport{League: slug, ErrorMessage: err.Error()}
			}
		}
		workers.Wait()
	}

	for _, err := range leagueErrs {
		if err != nil {
			result.FailedCount++
		}
	}
	span.SetAttributes(
		attribute.Int("sync.leagues", result.LeagueCount),
		attribute.Int("sync.failed_leagues", result.FailedCount),
	)
	return result, errors.Join(leagueErrs...)
}

func (s *JobOrchestratorService) safeSync(ctx context.Context, syncFn leagueSyncFunc, slug string) (report LeagueSyncReport, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic during league sync: %v", recovered)
		}
	}()
	return syncFn(ctx, slug)
}

func (s *JobOrchestratorService) pickLeagues(leagueSlug string) ([]string, error) {
	leagueSlug = strings.TrimSpace(leagueSlug)
	if leagueSlug == "" {
		return s.catalog.Slugs(), nil
	}
	item, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return nil, err
	}
	return []string{item.Slug}, nil
}

// ListDispatches returns the most recent dispatch events, newest first.
func (s *JobOrchestratorService) ListDispatches(ctx context.Context, limit int) ([]jobscheduler.DispatchEvent, error) {
	if s.dispatchRepo == nil {
		return []jobscheduler.DispatchEvent{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	items, err := s.dispatchRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", err)
	}
	return items, nil
}

func dedupKey(prefix, leagueID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	leagueID = sanitizeDedupSegment(leagueID)
	return prefix + "-" + leagueID + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}
