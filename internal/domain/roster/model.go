package roster

import (
	"strings"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

// Entry assigns a player to a team for a window of the season. An empty Blocks list means the
// entry applies to every block inside the window. A zero ValidUntil leaves the window open.
type Entry struct {
	Player     match.Player
	TeamID     string
	ValidFrom  time.Time
	ValidUntil time.Time
	Blocks     []string
}

// Covers reports whether the entry places its player on teamID at the given date and block.
func (e Entry) Covers(teamID string, at time.Time, blockName string) bool {
	if e.TeamID != teamID {
		return false
	}
	if !e.ValidFrom.IsZero() && at.Before(e.ValidFrom) {
		return false
	}
	if !e.ValidUntil.IsZero() && !at.Before(e.ValidUntil) {
		return false
	}
	if len(e.Blocks) == 0 {
		return true
	}
	block := strings.TrimSpace(blockName)
	for _, candidate := range e.Blocks {
		if strings.EqualFold(strings.TrimSpace(candidate), block) {
			return true
		}
	}
	return false
}
