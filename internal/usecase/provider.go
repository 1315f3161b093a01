package usecase

import "context"

// ExternalEvent is one schedule entry as returned by the schedule provider.
type ExternalEvent struct {
	StartTime string
	State     string
	Type      string
	BlockName string
	League    ExternalLeague
	Match     *ExternalMatch
}

type ExternalLeague struct {
	Name string
	Slug string
}

type ExternalMatch struct {
	ID       string
	Flags    []string
	Teams    []ExternalTeam
	Strategy ExternalStrategy
}

type ExternalStrategy struct {
	Type  string
	Count int
}

type ExternalTeam struct {
	ID     string
	Name   string
	Code   string
	Image  string
	Result *ExternalTeamResult
	Record *ExternalTeamRecord
}

type ExternalTeamResult struct {
	Outcome  string
	GameWins int
}

type ExternalTeamRecord struct {
	Wins   int
	Losses int
}

// ExternalVODEvent is a completed event with its nested games and VOD records.
type ExternalVODEvent struct {
	MatchID string
	Games   []ExternalGame
}

type ExternalGame struct {
	ID     string
	Number int
	State  string
	VODs   []ExternalVOD
}

type ExternalVOD struct {
	Parameter string
	Provider  string
	Locale    string
}

type ScheduleProvider interface {
	FetchSchedule(ctx context.Context, providerLeagueID string) ([]ExternalEvent, error)
}

type VODProvider interface {
	FetchCompletedEvents(ctx context.Context, tournamentID string) ([]ExternalVODEvent, error)
}
