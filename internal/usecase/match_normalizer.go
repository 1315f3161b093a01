package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
)

// DefaultSplitCutoff is the instant after which every match counts as current split.
var DefaultSplitCutoff = time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

var (
	splitTwoKeywords = []string{"semana", "week", "fase de grupos", "split 2"}
	splitOneKeywords = []string{"eliminatórias", "knockouts", "split 1", "playoffs"}
)

// DefaultTeamCodeTable resolves provider team codes when the schedule omits the team id.
var DefaultTeamCodeTable = map[string]string{
	"IE":   "isurus-estral",
	"LEV":  "leviatan",
	"LOUD": "loud",
	"PAIN": "pain-gaming",
	"FUR":  "furia",
	"RED":  "red-canids",
	"VKS":  "vivo-keyd-stars",
	"FXW7": "fluxo-w7m",
	"LOS":  "los",
	"FLY":  "flyquest",
	"DFM":  "deep-cross-gaming",
}

const eventTypeMatch = "match"

// SplitFilter decides whether a match belongs to the current split.
type SplitFilter struct {
	Cutoff time.Time
}

func (f SplitFilter) Keep(start time.Time, blockName string) bool {
	if start.After(f.Cutoff) {
		return true
	}
	block := strings.ToLower(blockName)
	return containsAny(block, splitTwoKeywords) && !containsAny(block, splitOneKeywords)
}

type MatchNormalizerConfig struct {
	SplitCutoff   time.Time
	TeamCodeTable map[string]string
}

// MatchNormalizer maps schedule events to canonical matches.
type MatchNormalizer struct {
	split     SplitFilter
	teamCodes map[string]string
	logger    *logging.Logger
}

func NewMatchNormalizer(cfg MatchNormalizerConfig, logger *logging.Logger) *MatchNormalizer {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SplitCutoff.IsZero() {
		cfg.SplitCutoff = DefaultSplitCutoff
	}
	teamCodes := make(map[string]string, len(DefaultTeamCodeTable)+len(cfg.TeamCodeTable))
	for code, id := range DefaultTeamCodeTable {
		teamCodes[code] = id
	}
	for code, id := range cfg.TeamCodeTable {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || strings.TrimSpace(id) == "" {
			continue
		}
		teamCodes[code] = strings.TrimSpace(id)
	}

	return &MatchNormalizer{
		split:     SplitFilter{Cutoff: cfg.SplitCutoff},
		teamCodes: teamCodes,
		logger:    logger,
	}
}

// Normalize keeps the source order. Malformed fields fall back to safe defaults; only events
// without a match descriptor or two teams are skipped.
func (n *MatchNormalizer) Normalize(ctx context.Context, events []ExternalEvent, vods map[string]string, resolver roster.Resolver) []match.Match {
	out := make([]match.Match, 0, len(events))
	for _, event := range events {
		if !strings.EqualFold(strings.TrimSpace(event.Type), eventTypeMatch) || event.Match == nil {
			continue
		}

		start := parseEventTime(event.StartTime)
		if !n.split.Keep(start, event.BlockName) {
			continue
		}

		raw := event.Match
		if len(raw.Teams) < 2 {
			n.logger.WarnContext(ctx, "skip match with fewer than two teams",
				"match_id", raw.ID,
				"teams", len(raw.Teams),
			)
			continue
		}

		item := match.Match{
			ID:        strings.TrimSpace(raw.ID),
			StartTime: start,
			State:     match.ParseState(event.State),
			BlockName: event.BlockName,
			League: match.League{
				Name: event.League.Name,
				Slug: event.League.Slug,
			},
			BestOf: raw.Strategy.Count,
		}
		if item.BestOf <= 0 {
			item.BestOf = 1
		}
		for i := range item.Teams {
			item.Teams[i] = n.normalizeTeam(ctx, raw.Teams[i], start, event.BlockName, resolver)
		}

		vodURL := strings.TrimSpace(vods[item.ID])
		item.VODURL = vodURL
		item.HasVOD = hasFlag(raw.Flags, "hasVod") || vodURL != ""

		out = append(out, item)
	}
	return out
}

func (n *MatchNormalizer) normalizeTeam(ctx context.Context, raw ExternalTeam, at time.Time, blockName string, resolver roster.Resolver) match.Team {
	team := match.Team{
		ID:       n.resolveTeamID(raw),
		Name:     raw.Name,
		Code:     raw.Code,
		ImageURL: secureImageURL(raw.Image),
		Players:  []match.Player{},
	}
	if raw.Result != nil {
		team.Result.Outcome = match.ParseOutcome(raw.Result.Outcome)
		team.Result.GameWins = raw.Result.GameWins
	}
	if raw.Record != nil {
		team.Result.Wins = raw.Record.Wins
		team.Result.Losses = raw.Record.Losses
	}

	if resolver == nil || team.ID == "" {
		return team
	}
	players, err := resolver.ResolvePlayers(ctx, team.ID, at, blockName)
	if err != nil {
		n.logger.WarnContext(ctx, "resolve roster failed, using empty roster",
			"team_id", team.ID,
			"block", blockName,
			"error", err,
		)
		return team
	}
	for _, player := range players {
		player.ImageURL = secureImageURL(player.ImageURL)
		team.Players = append(team.Players, player)
	}
	return team
}

func (n *MatchNormalizer) resolveTeamID(raw ExternalTeam) string {
	if id := strings.TrimSpace(raw.ID); id != "" {
		return id
	}
	code := strings.ToUpper(strings.TrimSpace(raw.Code))
	if code == "" {
		return ""
	}
	if id, ok := n.teamCodes[code]; ok {
		return id
	}
	return strings.ToLower(code)
}

func secureImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

// parseEventTime returns the zero time for values it cannot read.
func parseEventTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func containsAny(value string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

func hasFlag(flags []string, want string) bool {
	for _, flag := range flags {
		if strings.EqualFold(strings.TrimSpace(flag), want) {
			return true
		}
	}
	return false
}
