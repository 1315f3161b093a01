package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

// matchTableModel is the flattened match record. Players are not persisted.
type matchTableModel struct {
	ID            string         `db:"id"`
	LeagueSlug    string         `db:"league_slug"`
	LeagueName    string         `db:"league_name"`
	Position      int            `db:"position"`
	StartTime     string         `db:"start_time"`
	State         string         `db:"state"`
	BlockName     string         `db:"block_name"`
	BestOf        int            `db:"best_of"`
	HasVOD        bool           `db:"has_vod"`
	VODURL        sql.NullString `db:"vod_url"`
	TeamAID       string         `db:"team_a_id"`
	TeamAName     string         `db:"team_a_name"`
	TeamACode     string         `db:"team_a_code"`
	TeamAImageURL string         `db:"team_a_image_url"`
	TeamAOutcome  sql.NullString `db:"team_a_outcome"`
	TeamAGameWins int            `db:"team_a_game_wins"`
	TeamAWins     int            `db:"team_a_wins"`
	TeamALosses   int            `db:"team_a_losses"`
	TeamBID       string         `db:"team_b_id"`
	TeamBName     string         `db:"team_b_name"`
	TeamBCode     string         `db:"team_b_code"`
	TeamBImageURL string         `db:"team_b_image_url"`
	TeamBOutcome  sql.NullString `db:"team_b_outcome"`
	TeamBGameWins int            `db:"team_b_game_wins"`
	TeamBWins     int            `db:"team_b_wins"`
	TeamBLosses   int            `db:"team_b_losses"`
}

func toMatchModel(item match.Match, position int) matchTableModel {
	a, b := item.Teams[0], item.Teams[1]
	startTime := ""
	if !item.StartTime.IsZero() {
		startTime = item.StartTime.UTC().Format(time.RFC3339)
	}
	return matchTableModel{
		ID:            item.ID,
		LeagueSlug:    item.League.Slug,
		LeagueName:    item.League.Name,
		Position:      position,
		StartTime:     startTime,
		State:         string(item.State),
		BlockName:     item.BlockName,
		BestOf:        item.BestOf,
		HasVOD:        item.HasVOD,
		VODURL:        sql.NullString{String: item.VODURL, Valid: item.VODURL != ""},
		TeamAID:       a.ID,
		TeamAName:     a.Name,
		TeamACode:     a.Code,
		TeamAImageURL: a.ImageURL,
		TeamAOutcome:  sql.NullString{String: string(a.Result.Outcome), Valid: a.Result.Outcome != match.OutcomeNone},
		TeamAGameWins: a.Result.GameWins,
		TeamAWins:     a.Result.Wins,
		TeamALosses:   a.Result.Losses,
		TeamBID:       b.ID,
		TeamBName:     b.Name,
		TeamBCode:     b.Code,
		TeamBImageURL: b.ImageURL,
		TeamBOutcome:  sql.NullString{String: string(b.Result.Outcome), Valid: b.Result.Outcome != match.OutcomeNone},
		TeamBGameWins: b.Result.GameWins,
		TeamBWins:     b.Result.Wins,
		TeamBLosses:   b.Result.Losses,
	}
}

func (m matchTableModel) toDomain() match.Match {
	var startTime time.Time
	if m.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339, m.StartTime); err == nil {
			startTime = parsed.UTC()
		}
	}
	return match.Match{
		ID:        m.ID,
		StartTime: startTime,
		State:     match.ParseState(m.State),
		BlockName: m.BlockName,
		League:    match.League{Name: m.LeagueName, Slug: m.LeagueSlug},
		Teams: [2]match.Team{
			{
				ID:       m.TeamAID,
				Name:     m.TeamAName,
				Code:     m.TeamACode,
				ImageURL: m.TeamAImageURL,
				Players:  []match.Player{},
				Result: match.TeamResult{
					Outcome:  match.ParseOutcome(nullString(m.TeamAOutcome)),
					GameWins: m.TeamAGameWins,
					Wins:     m.TeamAWins,
					Losses:   m.TeamALosses,
				},
			},
			{
				ID:       m.TeamBID,
				Name:     m.TeamBName,
				Code:     m.TeamBCode,
				ImageURL: m.TeamBImageURL,
				Players:  []match.Player{},
				Result: match.TeamResult{
					Outcome:  match.ParseOutcome(nullString(m.TeamBOutcome)),
					GameWins: m.TeamBGameWins,
					Wins:     m.TeamBWins,
					Losses:   m.TeamBLosses,
				},
			},
		},
		BestOf: m.BestOf,
		HasVOD: m.HasVOD,
		VODURL: nullString(m.VODURL),
	}
}
