package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/esports-match-sync/external/lolesports"
	"github.com/riskibarqy/esports-match-sync/internal/config"
	"github.com/riskibarqy/esports-match-sync/internal/domain/jobscheduler"
	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
	"github.com/riskibarqy/esports-match-sync/internal/infrastructure/notifier"
	cacherepo "github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/esports-match-sync/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/esports-match-sync/internal/interfaces/httpapi"
	"github.com/riskibarqy/esports-match-sync/internal/interfaces/scheduler"
	idgen "github.com/riskibarqy/esports-match-sync/internal/platform/id"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/riskibarqy/esports-match-sync/internal/platform/resilience"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired service: the HTTP server, the optional cron scheduler and the resources
// they share.
type App struct {
	cfg          config.Config
	logger       *logging.Logger
	server       *http.Server
	scheduler    *scheduler.Scheduler
	orchestrator *usecase.JobOrchestratorService
	closers      []func() error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}
	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.cfg
	logger := a.logger

	var redisClient goredis.UniversalClient
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := goredis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
		redisClient = client
	}

	var db *sqlx.DB
	if cfg.StoreBackend == config.StorePostgres {
		opened, err := openDB(cfg)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, opened.Close)
		db = opened
	}

	stores, err := newMatchStores(cfg, db, redisClient)
	if err != nil {
		return err
	}
	var dispatchRepo jobscheduler.Repository = memory.NewJobDispatchRepository()
	if db != nil {
		dispatchRepo = postgres.NewJobDispatchRepository(db)
	}

	var rosters roster.Resolver = memory.NewRosterRepository(memory.SeedRosters())
	if cfg.CacheEnabled {
		rosters = cacherepo.NewRosterResolver(rosters, cfg.RosterCacheTTL)
	}

	sink, err := newNotificationSink(cfg, redisClient, logger)
	if err != nil {
		return err
	}

	provider := lolesports.NewClient(lolesports.ClientConfig{
		BaseURL:    cfg.LoLEsportsBaseURL,
		APIKey:     cfg.LoLEsportsAPIKey,
		Language:   cfg.LoLEsportsLanguage,
		Timeout:    cfg.LoLEsportsTimeout,
		MaxRetries: cfg.LoLEsportsMaxRetries,
		Logger:     logger.Named("lolesports"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LoLEsportsCircuitEnabled,
			FailureThreshold: cfg.LoLEsportsCircuitFailureCount,
			OpenTimeout:      cfg.LoLEsportsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LoLEsportsCircuitHalfOpenMaxReq,
		},
	})

	catalog := usecase.NewLeagueCatalog(cfg.LeagueIDBySlug, cfg.TournamentIDBySlug)
	enricher := usecase.NewVODEnricher(provider, usecase.VODEnricherConfig{
		FallbackEnabled: cfg.VODFallbackEnabled,
	}, logger.Named("vod"))
	normalizer := usecase.NewMatchNormalizer(usecase.MatchNormalizerConfig{
		SplitCutoff:   cfg.SplitCutoff,
		TeamCodeTable: cfg.TeamIDByCode,
	}, logger.Named("normalizer"))
	stateNotifier := usecase.NewStateChangeNotifier(sink, idgen.NewUUIDGenerator(), logger.Named("notifier"))

	syncSvc := usecase.NewMatchSyncService(
		catalog,
		provider,
		enricher,
		normalizer,
		rosters,
		stores.store,
		stateNotifier,
		usecase.MatchSyncConfig{LivePolicy: cfg.LiveSyncPolicy},
		logger.Named("sync"),
	)
	if stores.cache != nil {
		syncSvc.InvalidateAfterWrite(stores.cache)
	}
	a.orchestrator = usecase.NewJobOrchestratorService(
		catalog,
		syncSvc,
		dispatchRepo,
		usecase.JobOrchestratorConfig{Workers: cfg.SyncWorkers},
		logger.Named("jobs"),
	)
	matchSvc := usecase.NewMatchService(catalog, stores.reads, syncSvc)

	handler := httpapi.NewHandler(matchSvc, a.orchestrator, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http server addr cannot be empty")
	}
	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.SchedulerEnabled {
		sched, err := scheduler.New(a.orchestrator, scheduler.Config{
			FullSpec:   cfg.SyncFullCron,
			LiveSpec:   cfg.SyncLiveCron,
			RunTimeout: cfg.SyncRunTimeout,
		}, logger)
		if err != nil {
			return err
		}
		a.scheduler = sched
	}

	logger.Info("app wired",
		"store_backend", cfg.StoreBackend,
		"cache_enabled", cfg.CacheEnabled,
		"notify_sink", cfg.NotifySink,
		"leagues", catalog.Slugs(),
		"live_sync_policy", string(cfg.LiveSyncPolicy),
		"scheduler_enabled", cfg.SchedulerEnabled,
	)
	return nil
}

// Run serves HTTP and drives the scheduler until ctx is cancelled, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if a.scheduler != nil {
		a.scheduler.Start(ctx)
		go a.warmup(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop timed out", "error", err)
		}
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	a.logger.Info("http server stopped")
	return runErr
}

// warmup loads every league once so reads are served before the first cron tick.
func (a *App) warmup(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, a.cfg.SyncRunTimeout)
	defer cancel()

	result, err := a.orchestrator.RunFullSync(runCtx, usecase.JobSyncInput{Trigger: usecase.TriggerScheduler})
	if err != nil {
		a.logger.WarnContext(runCtx, "warmup full sync finished with failures",
			"failed", result.FailedCount,
			"leagues", result.LeagueCount,
			"error", err,
		)
		return
	}
	a.logger.InfoContext(runCtx, "warmup full sync done", "leagues", result.LeagueCount)
}

// Close releases store and redis connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// matchStores separates the store the sync service reads and writes from the view the read API
// serves. Only reads go through the per-process cache; a cached list from before another
// instance's write must never be merged back into the shared store.
type matchStores struct {
	store match.Repository
	reads match.Repository
	cache *cacherepo.MatchRepository
}

func newMatchStores(cfg config.Config, db *sqlx.DB, redisClient goredis.UniversalClient) (matchStores, error) {
	var store match.Repository
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if db == nil {
			return matchStores{}, fmt.Errorf("postgres store requires a database connection")
		}
		store = postgres.NewMatchRepository(db)
	case config.StoreRedis:
		if redisClient == nil {
			return matchStores{}, fmt.Errorf("redis store requires REDIS_URL")
		}
		store = redisrepo.NewMatchRepository(redisClient, "")
	default:
		// The memory store is already the hot copy, so the read-through cache is skipped.
		store = memory.NewMatchRepository(nil)
		return matchStores{store: store, reads: store}, nil
	}

	if !cfg.CacheEnabled {
		return matchStores{store: store, reads: store}, nil
	}
	cached := cacherepo.NewMatchRepository(store, cfg.CacheTTL)
	return matchStores{store: store, reads: cached, cache: cached}, nil
}

func newNotificationSink(cfg config.Config, redisClient goredis.UniversalClient, logger *logging.Logger) (notification.Sink, error) {
	var sink notification.Sink
	switch cfg.NotifySink {
	case config.NotifyRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis notification sink requires REDIS_URL")
		}
		sink = notifier.NewRedisStreamSink(redisClient, cfg.NotifyStreamKey)
	case config.NotifyWebhook:
		webhook, err := notifier.NewWebhookSink(notifier.WebhookSinkConfig{
			URL:     cfg.NotifyWebhookURL,
			Token:   cfg.NotifyWebhookToken,
			Timeout: cfg.NotifyWebhookTimeout,
		}, logger.Named("webhook"))
		if err != nil {
			return nil, err
		}
		sink = webhook
	default:
		sink = notifier.NewLogSink(logger.Named("notifications"))
	}

	var claimer notifier.Claimer = notifier.NewMemoryClaimer()
	if redisClient != nil {
		claimer = notifier.NewRedisClaimer(redisClient)
	}
	return notifier.NewDedupSink(sink, claimer, cfg.NotifyDedupTTL, logger.Named("notifications")), nil
}
