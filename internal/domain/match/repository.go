package match

import (
	"context"
	"errors"
)

// ErrLeagueUnchanged is returned by a LeagueUpdate to leave the stored list as it is. UpdateLeague
// hands it back to the caller untouched.
var ErrLeagueUnchanged = errors.New("league unchanged")

// LeagueUpdate derives a league's new list from the stored one. Stores may call it more than once
// when a concurrent writer wins, and may hold a lock while it runs, so it must not call the store.
type LeagueUpdate func(stored []Match) ([]Match, error)

// Repository is the match store. SaveMatches replaces the whole list of every league present in
// the batch; readers observe either the previous or the new list of a league, never a mix.
type Repository interface {
	SaveMatches(ctx context.Context, matches []Match) error
	// ReplaceLeague swaps one league's list. An empty list clears the league.
	ReplaceLeague(ctx context.Context, leagueSlug string, matches []Match) error
	// UpdateLeague reads and replaces one league atomically against every other writer of the
	// store, including writers in other processes.
	UpdateLeague(ctx context.Context, leagueSlug string, update LeagueUpdate) error
	ListByLeague(ctx context.Context, leagueSlug string) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByState(ctx context.Context, leagueSlug string, state State) ([]Match, error)
	ListByBlock(ctx context.Context, leagueSlug, blockName string) ([]Match, error)
}
