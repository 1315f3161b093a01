package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

func TestRosterRepository_ResolvesMidSplitSwap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRosterRepository(SeedRosters())

	before := RosterSwapAt.Add(-48 * time.Hour)
	after := RosterSwapAt.Add(48 * time.Hour)

	loudBefore, _ := repo.ResolvePlayers(ctx, TeamIDLoud, before, "Week 3")
	if !hasPlayer(loudBefore, "loud-jng") || hasPlayer(loudBefore, "loud-jng-2") {
		t.Fatalf("unexpected loud roster before swap: %+v", loudBefore)
	}
	loudAfter, _ := repo.ResolvePlayers(ctx, TeamIDLoud, after, "Week 6")
	if hasPlayer(loudAfter, "loud-jng") || !hasPlayer(loudAfter, "loud-jng-2") {
		t.Fatalf("unexpected loud roster after swap: %+v", loudAfter)
	}
	painAfter, _ := repo.ResolvePlayers(ctx, TeamIDPainGaming, after, "Week 6")
	if !hasPlayer(painAfter, "loud-jng") {
		t.Fatalf("expected transferred jungler on paiN after swap: %+v", painAfter)
	}
	for _, player := range painAfter {
		if player.TeamID != TeamIDPainGaming {
			t.Fatalf("unexpected owning team: %+v", player)
		}
	}
	if len(loudBefore) != 5 || len(painAfter) != 5 {
		t.Fatalf("unexpected roster sizes: loud=%d pain=%d", len(loudBefore), len(painAfter))
	}
}

func TestRosterRepository_BlockScopedEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRosterRepository(SeedRosters())
	at := RosterSwapAt

	groups, _ := repo.ResolvePlayers(ctx, TeamIDFuria, at, "fase de grupos")
	if !hasPlayer(groups, "furia-sub-mid") {
		t.Fatalf("expected group stage substitute, got=%+v", groups)
	}
	playoffs, _ := repo.ResolvePlayers(ctx, TeamIDFuria, at, "Playoffs")
	if len(playoffs) != 0 {
		t.Fatalf("expected no playoff entries, got=%+v", playoffs)
	}
}

func hasPlayer(items []match.Player, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func TestSeedRosters_ParsesProviderRoles(t *testing.T) {
	t.Parallel()

	for _, entry := range SeedRosters() {
		if entry.Player.Position == "" {
			t.Fatalf("seed entry without a position: %+v", entry.Player)
		}
	}

	players, _ := NewRosterRepository(SeedRosters()).ResolvePlayers(context.Background(), TeamIDLoud, RosterSwapAt, "Week 5")
	for _, player := range players {
		if player.ID == "loud-adc" && player.Position != match.PositionADC {
			t.Fatalf("bottom role should map to ADC, got=%q", player.Position)
		}
	}
}
