package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

type listLeagueMatchesQuery struct {
	LeagueSlug string `validate:"required,max=64"`
	State      string `validate:"omitempty,oneof=UNSTARTED INPROGRESS COMPLETED"`
	Block      string `validate:"max=128"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListLeagues")
	defer span.End()

	leagues := h.matchService.ListLeagues(ctx)
	items := make([]leagueDTO, 0, len(leagues))
	for _, item := range leagues {
		items = append(items, leagueToDTO(item))
	}

	writeSuccess(w, http.StatusOK, items)
}

// ListLeagueMatches serves the league snapshot, optionally narrowed by ?state= or ?block=.
func (h *Handler) ListLeagueMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListLeagueMatches")
	defer span.End()

	query := listLeagueMatchesQuery{
		LeagueSlug: strings.TrimSpace(r.PathValue("leagueSlug")),
		State:      strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("state"))),
		Block:      strings.TrimSpace(r.URL.Query().Get("block")),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		h.fail(ctx, w, err)
		return
	}

	var (
		items []match.Match
		err   error
	)
	switch {
	case query.State != "":
		items, err = h.matchService.ListByState(ctx, query.LeagueSlug, query.State)
	case query.Block != "":
		items, err = h.matchService.ListByBlock(ctx, query.LeagueSlug, query.Block)
	default:
		items, err = h.matchService.ListByLeague(ctx, query.LeagueSlug)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list league matches failed", "league", query.LeagueSlug, "state", query.State, "block", query.Block, "error", err)
		h.fail(ctx, w, err)
		return
	}
	if query.State != "" && query.Block != "" {
		items = match.FilterByBlock(items, query.Block)
	}

	writeSuccess(w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, matchToDTO(item))
}

// RefreshLeagueMatches runs a full sync of one league and returns the fresh snapshot.
func (h *Handler) RefreshLeagueMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RefreshLeagueMatches")
	defer span.End()

	leagueSlug := strings.TrimSpace(r.PathValue("leagueSlug"))
	items, report, err := h.matchService.LoadLeagueNow(ctx, leagueSlug)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh league matches failed", "league", leagueSlug, "error", err)
		h.fail(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, refreshLeagueDTO{
		Report:  report,
		Matches: matchesToDTO(items),
	})
}
