package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
)

// RosterRepository resolves players from date and block scoped roster entries. Entries are fixed
// at construction, so reads need no lock.
type RosterRepository struct {
	entries []roster.Entry
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	return &RosterRepository{entries: append([]roster.Entry(nil), entries...)}
}

func (r *RosterRepository) ResolvePlayers(_ context.Context, teamID string, at time.Time, blockName string) ([]match.Player, error) {
	out := make([]match.Player, 0, 5)
	for _, entry := range r.entries {
		if !entry.Covers(teamID, at, blockName) {
			continue
		}
		player := entry.Player
		player.TeamID = teamID
		out = append(out, player)
	}
	return out, nil
}
