package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultVODURLTemplate = "https://www.youtube.com/watch?v=%s"

// fallbackVODTable is the demo dataset served when the VOD endpoint yields nothing usable.
var fallbackVODTable = map[string]string{
	"113475182181917386": "Vb0hoXW3CKk",
	"113475182181917392": "q3UHKZ5l-6c",
	"113475182181917398": "4RZp2lq9MTk",
	"113475182181917404": "2wPKb5Q8dYg",
	"113487400044946513": "Y0bh1JgGgV8",
	"113487400044946519": "fN8qEJ2x0uM",
}

type VODEnricherConfig struct {
	// FallbackEnabled serves the fixed demo table when the live source yields nothing.
	FallbackEnabled bool
	URLTemplate     string
}

// VODEnricher discovers playback URLs per match id.
type VODEnricher struct {
	provider VODProvider
	cfg      VODEnricherConfig
	logger   *logging.Logger
}

func NewVODEnricher(provider VODProvider, cfg VODEnricherConfig, logger *logging.Logger) *VODEnricher {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.URLTemplate) == "" {
		cfg.URLTemplate = DefaultVODURLTemplate
	}
	return &VODEnricher{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Enrich never fails: fetch errors and empty results fall through to the fallback table.
func (e *VODEnricher) Enrich(ctx context.Context, tournamentID string) map[string]string {
	ctx, span := startUsecaseSpan(ctx, "usecase.VODEnricher.Enrich", attribute.String("vod.tournament_id", tournamentID))
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	switch {
	case e.provider == nil:
		e.logger.DebugContext(ctx, "vod provider not configured, using fallback")
	case tournamentID == "":
		e.logger.DebugContext(ctx, "league has no tournament id, using vod fallback")
	default:
		events, err := e.provider.FetchCompletedEvents(ctx, tournamentID)
		if err != nil {
			e.logger.WarnContext(ctx, "fetch vod events failed, using fallback",
				"tournament_id", tournamentID,
				"error", err,
			)
			break
		}
		if out := e.buildMapping(events); len(out) > 0 {
			return out
		}
		e.logger.InfoContext(ctx, "vod endpoint returned no usable entries, using fallback", "tournament_id", tournamentID)
	}

	return e.fallback()
}

func (e *VODEnricher) buildMapping(events []ExternalVODEvent) map[string]string {
	out := make(map[string]string, len(events))
	for _, event := range events {
		matchID := strings.TrimSpace(event.MatchID)
		if matchID == "" || len(event.Games) == 0 {
			continue
		}
		parameter := firstVODParameter(event.Games[0])
		if parameter == "" {
			continue
		}
		out[matchID] = fmt.Sprintf(e.cfg.URLTemplate, parameter)
	}
	return out
}

func (e *VODEnricher) fallback() map[string]string {
	if !e.cfg.FallbackEnabled {
		return map[string]string{}
	}
	return FallbackVODMapping(e.cfg.URLTemplate)
}

// FallbackVODMapping renders the fixed demo table with the given URL template.
func FallbackVODMapping(urlTemplate string) map[string]string {
	if strings.TrimSpace(urlTemplate) == "" {
		urlTemplate = DefaultVODURLTemplate
	}
	out := make(map[string]string, len(fallbackVODTable))
	for matchID, videoID := range fallbackVODTable {
		out[matchID] = fmt.Sprintf(urlTemplate, videoID)
	}
	return out
}

func firstVODParameter(game ExternalGame) string {
	for _, vod := range game.VODs {
		if parameter := strings.TrimSpace(vod.Parameter); parameter != "" {
			return parameter
		}
	}
	return ""
}
