package httpapi

import (
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/usecase"
)

type leagueDTO struct {
	Slug             string `json:"slug"`
	ProviderLeagueID string `json:"providerLeagueId"`
	TournamentID     string `json:"tournamentId,omitempty"`
}

type playerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"imageUrl"`
	Position string `json:"position"`
	TeamID   string `json:"teamId"`
}

type teamDTO struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Code     string      `json:"code"`
	ImageURL string      `json:"imageUrl"`
	Players  []playerDTO `json:"players"`
	Outcome  *string     `json:"outcome"`
	GameWins int         `json:"gameWins"`
	Wins     int         `json:"wins"`
	Losses   int         `json:"losses"`
}

type matchDTO struct {
	ID         string    `json:"id"`
	StartTime  string    `json:"startTime,omitempty"`
	State      string    `json:"state"`
	BlockName  string    `json:"blockName"`
	LeagueName string    `json:"leagueName"`
	LeagueSlug string    `json:"leagueSlug"`
	Teams      []teamDTO `json:"teams"`
	BestOf     int       `json:"bestOf"`
	HasVOD     bool      `json:"hasVod"`
	VODURL     string    `json:"vodUrl,omitempty"`
}

type refreshLeagueDTO struct {
	Report  usecase.LeagueSyncReport `json:"report"`
	Matches []matchDTO               `json:"matches"`
}

func leagueToDTO(item usecase.LeagueConfig) leagueDTO {
	return leagueDTO{
		Slug:             item.Slug,
		ProviderLeagueID: item.ProviderLeagueID,
		TournamentID:     item.TournamentID,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}

func matchToDTO(item match.Match) matchDTO {
	startTime := ""
	if !item.StartTime.IsZero() {
		startTime = item.StartTime.UTC().Format(time.RFC3339)
	}

	teams := make([]teamDTO, 0, len(item.Teams))
	for _, team := range item.Teams {
		teams = append(teams, teamToDTO(team))
	}

	return matchDTO{
		ID:         item.ID,
		StartTime:  startTime,
		State:      string(item.State),
		BlockName:  item.BlockName,
		LeagueName: item.League.Name,
		LeagueSlug: item.League.Slug,
		Teams:      teams,
		BestOf:     item.BestOf,
		HasVOD:     item.HasVOD,
		VODURL:     item.VODURL,
	}
}

func teamToDTO(team match.Team) teamDTO {
	players := make([]playerDTO, 0, len(team.Players))
	for _, p := range team.Players {
		players = append(players, playerDTO{
			ID:       p.ID,
			Name:     p.Name,
			Nickname: p.Nickname,
			ImageURL: p.ImageURL,
			Position: string(p.Position),
			TeamID:   p.TeamID,
		})
	}

	var outcome *string
	if team.Result.Outcome != match.OutcomeNone {
		value := string(team.Result.Outcome)
		outcome = &value
	}

	return teamDTO{
		ID:       team.ID,
		Name:     team.Name,
		Code:     team.Code,
		ImageURL: team.ImageURL,
		Players:  players,
		Outcome:  outcome,
		GameWins: team.Result.GameWins,
		Wins:     team.Result.Wins,
		Losses:   team.Result.Losses,
	}
}
