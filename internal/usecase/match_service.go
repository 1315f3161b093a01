package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"go.opentelemetry.io/otel/attribute"
)

// MatchService serves read use-cases over the match store.
type MatchService struct {
	catalog   *LeagueCatalog
	matchRepo match.Repository
	syncer    LeagueSyncer
}

func NewMatchService(catalog *LeagueCatalog, matchRepo match.Repository, syncer LeagueSyncer) *MatchService {
	return &MatchService{
		catalog:   catalog,
		matchRepo: matchRepo,
		syncer:    syncer,
	}
}

func (s *MatchService) ListLeagues(ctx context.Context) []LeagueConfig {
	_, span := startUsecaseSpan(ctx, "usecase.MatchService.ListLeagues")
	defer span.End()

	return s.catalog.List()
}

func (s *MatchService) ListByLeague(ctx context.Context, leagueSlug string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByLeague", leagueAttr(leagueSlug))
	defer span.End()

	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return nil, err
	}
	items, err := s.matchRepo.ListByLeague(ctx, league.Slug)
	if err != nil {
		return nil, fmt.Errorf("list matches league=%s: %w", league.Slug, err)
	}
	return items, nil
}

func (s *MatchService) ListByState(ctx context.Context, leagueSlug, rawState string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByState", leagueAttr(leagueSlug))
	defer span.End()

	state := match.State(strings.ToUpper(strings.TrimSpace(rawState)))
	if !state.Valid() {
		return nil, fmt.Errorf("%w: unknown match state %q", ErrInvalidInput, rawState)
	}
	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return nil, err
	}
	items, err := s.matchRepo.ListByState(ctx, league.Slug, state)
	if err != nil {
		return nil, fmt.Errorf("list matches by state league=%s: %w", league.Slug, err)
	}
	return items, nil
}

func (s *MatchService) ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByBlock", leagueAttr(leagueSlug))
	defer span.End()

	if strings.TrimSpace(blockName) == "" {
		return nil, fmt.Errorf("%w: block name is required", ErrInvalidInput)
	}
	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return nil, err
	}
	items, err := s.matchRepo.ListByBlock(ctx, league.Slug, blockName)
	if err != nil {
		return nil, fmt.Errorf("list matches by block league=%s: %w", league.Slug, err)
	}
	return items, nil
}

func (s *MatchService) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetByID", attribute.String("match.id", matchID))
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match id=%s: %w", matchID, err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

// LoadLeagueNow runs a full sync for one league and returns its fresh snapshot.
func (s *MatchService) LoadLeagueNow(ctx context.Context, leagueSlug string) ([]match.Match, LeagueSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.LoadLeagueNow", leagueAttr(leagueSlug))
	defer span.End()

	league, err := s.catalog.Lookup(leagueSlug)
	if err != nil {
		return nil, LeagueSyncReport{}, err
	}
	if s.syncer == nil {
		return nil, LeagueSyncReport{}, fmt.Errorf("%w: league syncer is not configured", ErrDependencyUnavailable)
	}
	report, err := s.syncer.SyncFull(ctx, league.Slug)
	if err != nil {
		return nil, report, err
	}
	items, err := s.matchRepo.ListByLeague(ctx, league.Slug)
	if err != nil {
		return nil, report, fmt.Errorf("list matches league=%s: %w", league.Slug, err)
	}
	return items, report, nil
}
