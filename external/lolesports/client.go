package lolesports

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/riskibarqy/esports-match-sync/internal/platform/resilience"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL  = "https://esports-api.lolesports.com/persisted/gw"
	defaultLanguage = "pt-BR"
	apiKeyHeader    = "x-api-key"
	maxBodyBytes    = 6 << 20
)

var errLoLEsportsTransient = crerr.New("lolesports transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Language       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the LoL Esports persisted gateway. It implements usecase.ScheduleProvider and
// usecase.VODProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	language       string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
	retryDelay     func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "lolesports"
	}
	breaker := resilience.NewCircuitBreaker(breakerCfg)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		language:       language,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		retryDelay: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
	}
}

func (c *Client) FetchSchedule(ctx context.Context, providerLeagueID string) ([]usecase.ExternalEvent, error) {
	providerLeagueID = strings.TrimSpace(providerLeagueID)
	if providerLeagueID == "" {
		return nil, fmt.Errorf("%w: provider league id is required", usecase.ErrUnsupportedLeague)
	}

	var payload scheduleEnvelope
	if err := c.doJSON(ctx, "/getSchedule", "leagueId", providerLeagueID, &payload); err != nil {
		return nil, markRemoteFetch(crerr.Wrapf(err, "fetch schedule league_id=%s", providerLeagueID))
	}

	out := make([]usecase.ExternalEvent, 0, len(payload.Data.Schedule.Events))
	for _, item := range payload.Data.Schedule.Events {
		out = append(out, mapScheduleEvent(item))
	}
	return out, nil
}

func (c *Client) FetchCompletedEvents(ctx context.Context, tournamentID string) ([]usecase.ExternalVODEvent, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", usecase.ErrInvalidInput)
	}

	var payload completedEnvelope
	if err := c.doJSON(ctx, "/getCompletedEvents", "tournamentId", tournamentID, &payload); err != nil {
		return nil, markRemoteFetch(crerr.Wrapf(err, "fetch completed events tournament_id=%s", tournamentID))
	}

	out := make([]usecase.ExternalVODEvent, 0, len(payload.Data.Schedule.Events))
	for _, item := range payload.Data.Schedule.Events {
		out = append(out, mapCompletedEvent(item))
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path, idParam, idValue string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "lolesports circuit breaker rejected request", "path", path, "error", err)
			return fmt.Errorf("%w: schedule provider is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
		}
	}

	fullURL := c.buildURL(path, idParam, idValue)
	out, err, shared := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "lolesports request shared with in-flight call", "path", path)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path, idParam, idValue string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	_, _ = buf.WriteString("?hl=")
	_, _ = buf.WriteString(url.QueryEscape(c.language))
	_, _ = buf.WriteString("&")
	_, _ = buf.WriteString(idParam)
	_, _ = buf.WriteString("=")
	_, _ = buf.WriteString(url.QueryEscape(idValue))
	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errLoLEsportsTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errLoLEsportsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errLoLEsportsTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "lolesports request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapScheduleEvent(item scheduleEvent) usecase.ExternalEvent {
	out := usecase.ExternalEvent{
		StartTime: item.StartTime,
		State:     item.State,
		Type:      item.Type,
		BlockName: item.BlockName,
		League: usecase.ExternalLeague{
			Name: item.League.Name,
			Slug: item.League.Slug,
		},
	}
	if item.Match == nil {
		return out
	}

	m := &usecase.ExternalMatch{
		ID:    item.Match.ID,
		Flags: append([]string(nil), item.Match.Flags...),
		Teams: make([]usecase.ExternalTeam, 0, len(item.Match.Teams)),
		Strategy: usecase.ExternalStrategy{
			Type:  item.Match.Strategy.Type,
			Count: item.Match.Strategy.Count,
		},
	}
	for _, team := range item.Match.Teams {
		mapped := usecase.ExternalTeam{
			ID:    team.ID,
			Name:  team.Name,
			Code:  team.Code,
			Image: team.Image,
		}
		if team.Result != nil {
			mapped.Result = &usecase.ExternalTeamResult{Outcome: team.Result.Outcome, GameWins: team.Result.GameWins}
		}
		if team.Record != nil {
			mapped.Record = &usecase.ExternalTeamRecord{Wins: team.Record.Wins, Losses: team.Record.Losses}
		}
		m.Teams = append(m.Teams, mapped)
	}
	out.Match = m
	return out
}

func mapCompletedEvent(item completedEvent) usecase.ExternalVODEvent {
	out := usecase.ExternalVODEvent{
		MatchID: item.Match.ID,
		Games:   make([]usecase.ExternalGame, 0, len(item.Games)),
	}
	for _, game := range item.Games {
		mapped := usecase.ExternalGame{
			ID:     game.ID,
			Number: game.Number,
			State:  game.State,
			VODs:   make([]usecase.ExternalVOD, 0, len(game.VODs)),
		}
		for _, vod := range game.VODs {
			mapped.VODs = append(mapped.VODs, usecase.ExternalVOD{
				Parameter: vod.Parameter,
				Provider:  vod.Provider,
				Locale:    vod.Locale,
			})
		}
		out.Games = append(out.Games, mapped)
	}
	return out
}

// markRemoteFetch tags outbound failures so callers can classify them with errors.Is.
func markRemoteFetch(err error) error {
	if err == nil || stderrors.Is(err, usecase.ErrRemoteFetch) {
		return err
	}
	return fmt.Errorf("%w: %w", usecase.ErrRemoteFetch, err)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errLoLEsportsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
