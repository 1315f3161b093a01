package config

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

const (
	NotifyLog     = "log"
	NotifyRedis   = "redis"
	NotifyWebhook = "webhook"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	InternalJobToken   string

	StoreBackend            string
	DBURL                   string
	DBDisablePreparedBinary bool
	RedisURL                string
	CacheEnabled            bool
	CacheTTL                time.Duration
	RosterCacheTTL          time.Duration

	LoLEsportsBaseURL               string
	LoLEsportsAPIKey                string
	LoLEsportsLanguage              string
	LoLEsportsTimeout               time.Duration
	LoLEsportsMaxRetries            int
	LoLEsportsCircuitEnabled        bool
	LoLEsportsCircuitFailureCount   int
	LoLEsportsCircuitOpenTimeout    time.Duration
	LoLEsportsCircuitHalfOpenMaxReq int

	LeagueIDBySlug     map[string]string
	TournamentIDBySlug map[string]string
	SplitCutoff        time.Time
	TeamIDByCode       map[string]string
	VODFallbackEnabled bool

	LiveSyncPolicy   usecase.LiveSyncPolicy
	SyncWorkers      int
	SchedulerEnabled bool
	SyncFullCron     string
	SyncLiveCron     string
	SyncRunTimeout   time.Duration

	NotifySink           string
	NotifyStreamKey      string
	NotifyDedupTTL       time.Duration
	NotifyWebhookURL     string
	NotifyWebhookToken   string
	NotifyWebhookTimeout time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	vodFallbackDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
		vodFallbackDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "esports-match-sync"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     swaggerEnabled,
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = parsePositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = parsePositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	if err := loadStore(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadProvider(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPipeline(&cfg, vodFallbackDefault); err != nil {
		return Config{}, err
	}
	if err := loadSync(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadNotify(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStore(cfg *Config) error {
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", StoreMemory)))
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	case StorePostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: valid values are %s, %s, %s", cfg.StoreBackend, StoreMemory, StoreRedis, StorePostgres)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cfg.CacheEnabled = cacheEnabled
	if cfg.CacheTTL, err = parsePositiveDuration("CACHE_TTL", "60s"); err != nil {
		return err
	}
	if cfg.RosterCacheTTL, err = parsePositiveDuration("ROSTER_CACHE_TTL", "10m"); err != nil {
		return err
	}
	return nil
}

func loadProvider(cfg *Config) error {
	cfg.LoLEsportsBaseURL = strings.TrimSpace(getEnv("LOLESPORTS_BASE_URL", "https://esports-api.lolesports.com/persisted/gw"))
	cfg.LoLEsportsAPIKey = strings.TrimSpace(getEnv("LOLESPORTS_API_KEY", ""))
	cfg.LoLEsportsLanguage = strings.TrimSpace(getEnv("LOLESPORTS_LANGUAGE", "pt-BR"))

	var err error
	if cfg.LoLEsportsTimeout, err = parsePositiveDuration("LOLESPORTS_TIMEOUT", "10s"); err != nil {
		return err
	}
	cfg.LoLEsportsMaxRetries, err = getEnvAsInt("LOLESPORTS_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse LOLESPORTS_MAX_RETRIES: %w", err)
	}
	if cfg.LoLEsportsMaxRetries < 0 {
		return fmt.Errorf("LOLESPORTS_MAX_RETRIES must be >= 0")
	}

	cfg.LoLEsportsCircuitEnabled, err = strconv.ParseBool(getEnv("LOLESPORTS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse LOLESPORTS_CIRCUIT_ENABLED: %w", err)
	}
	cfg.LoLEsportsCircuitFailureCount, err = getEnvAsInt("LOLESPORTS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse LOLESPORTS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.LoLEsportsCircuitFailureCount < 1 {
		return fmt.Errorf("LOLESPORTS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.LoLEsportsCircuitOpenTimeout, err = parsePositiveDuration("LOLESPORTS_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return err
	}
	cfg.LoLEsportsCircuitHalfOpenMaxReq, err = getEnvAsInt("LOLESPORTS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return fmt.Errorf("parse LOLESPORTS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.LoLEsportsCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("LOLESPORTS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	return nil
}

func loadPipeline(cfg *Config, vodFallbackDefault string) error {
	leagueIDs, err := parseStringMap(getEnv("LEAGUE_ID_MAP", ""))
	if err != nil {
		return fmt.Errorf("parse LEAGUE_ID_MAP: %w", err)
	}
	if len(leagueIDs) == 0 {
		leagueIDs = maps.Clone(usecase.DefaultLeagueIDs)
	}
	cfg.LeagueIDBySlug = leagueIDs

	tournamentIDs, err := parseStringMap(getEnv("TOURNAMENT_ID_MAP", ""))
	if err != nil {
		return fmt.Errorf("parse TOURNAMENT_ID_MAP: %w", err)
	}
	if len(tournamentIDs) == 0 {
		tournamentIDs = maps.Clone(usecase.DefaultTournamentIDs)
	}
	cfg.TournamentIDBySlug = tournamentIDs

	if cfg.TeamIDByCode, err = parseStringMap(getEnv("TEAM_CODE_ID_MAP", "")); err != nil {
		return fmt.Errorf("parse TEAM_CODE_ID_MAP: %w", err)
	}

	cfg.SplitCutoff = usecase.DefaultSplitCutoff
	if raw := strings.TrimSpace(os.Getenv("SPLIT_CUTOFF")); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("parse SPLIT_CUTOFF: %w", err)
		}
		cfg.SplitCutoff = cutoff.UTC()
	}

	cfg.VODFallbackEnabled, err = strconv.ParseBool(getEnv("VOD_FALLBACK_ENABLED", vodFallbackDefault))
	if err != nil {
		return fmt.Errorf("parse VOD_FALLBACK_ENABLED: %w", err)
	}
	return nil
}

func loadSync(cfg *Config) error {
	policy, err := usecase.ParseLiveSyncPolicy(getEnv("LIVE_SYNC_POLICY", string(usecase.LiveSyncRefetch)))
	if err != nil {
		return fmt.Errorf("parse LIVE_SYNC_POLICY: %w", err)
	}
	cfg.LiveSyncPolicy = policy

	cfg.SyncWorkers, err = getEnvAsInt("SYNC_WORKERS", 1)
	if err != nil {
		return fmt.Errorf("parse SYNC_WORKERS: %w", err)
	}
	if cfg.SyncWorkers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be >= 1")
	}

	cfg.SchedulerEnabled, err = strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}
	cfg.SyncFullCron = strings.TrimSpace(getEnv("SYNC_FULL_CRON", "*/15 * * * *"))
	cfg.SyncLiveCron = strings.TrimSpace(getEnv("SYNC_LIVE_CRON", "@every 1m"))
	if cfg.SyncRunTimeout, err = parsePositiveDuration("SYNC_RUN_TIMEOUT", "5m"); err != nil {
		return err
	}
	return nil
}

func loadNotify(cfg *Config) error {
	cfg.NotifySink = strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_SINK", NotifyLog)))
	cfg.NotifyStreamKey = strings.TrimSpace(getEnv("NOTIFY_STREAM_KEY", "matches.notifications"))
	cfg.NotifyWebhookURL = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", ""))
	cfg.NotifyWebhookToken = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_TOKEN", ""))

	switch cfg.NotifySink {
	case NotifyLog:
	case NotifyRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when NOTIFY_SINK=redis")
		}
	case NotifyWebhook:
		if cfg.NotifyWebhookURL == "" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL is required when NOTIFY_SINK=webhook")
		}
	default:
		return fmt.Errorf("invalid NOTIFY_SINK %q: valid values are %s, %s, %s", cfg.NotifySink, NotifyLog, NotifyRedis, NotifyWebhook)
	}

	var err error
	if cfg.NotifyDedupTTL, err = parsePositiveDuration("NOTIFY_DEDUP_TTL", "6h"); err != nil {
		return err
	}
	if cfg.NotifyWebhookTimeout, err = parsePositiveDuration("NOTIFY_WEBHOOK_TIMEOUT", "5s"); err != nil {
		return err
	}
	return nil
}

func loadObservability(cfg *Config) error {
	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = uptraceDSN

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseStringMap reads "key:value,key:value". Values may themselves contain colons.
func parseStringMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected key:value", item)
		}

		key := strings.TrimSpace(segments[0])
		value := strings.TrimSpace(segments[1])
		if key == "" {
			return nil, fmt.Errorf("empty key in item %q", item)
		}
		if value == "" {
			return nil, fmt.Errorf("empty value in item %q", item)
		}

		out[key] = value
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
