package roster

import (
	"context"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

// Resolver returns the players that belonged to a team at a point of the season.
type Resolver interface {
	ResolvePlayers(ctx context.Context, teamID string, at time.Time, blockName string) ([]match.Player, error)
}
