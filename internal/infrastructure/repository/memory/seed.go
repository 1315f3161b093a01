package memory

import (
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
	"github.com/riskibarqy/esports-match-sync/internal/domain/roster"
)

const (
	TeamIDLoud       = "loud"
	TeamIDPainGaming = "pain-gaming"
	TeamIDFuria      = "furia"
)

// RosterSwapAt is when the seeded mid-split transfer takes effect.
var RosterSwapAt = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// SeedRosters returns a small roster table where one jungler moves from LOUD to paiN Gaming in the
// middle of the split, so resolution depends on match date.
func SeedRosters() []roster.Entry {
	splitStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	entries := []roster.Entry{
		seedEntry(TeamIDLoud, "loud-top", "Xyno", "top", splitStart, time.Time{}),
		seedEntry(TeamIDLoud, "loud-jng", "Youngjae", "jungle", splitStart, RosterSwapAt),
		seedEntry(TeamIDLoud, "loud-jng-2", "Shini", "jungle", RosterSwapAt, time.Time{}),
		seedEntry(TeamIDLoud, "loud-mid", "Envy", "mid", splitStart, time.Time{}),
		seedEntry(TeamIDLoud, "loud-adc", "Bull", "bottom", splitStart, time.Time{}),
		seedEntry(TeamIDLoud, "loud-sup", "RedBert", "support", splitStart, time.Time{}),

		seedEntry(TeamIDPainGaming, "pain-top", "Wizer", "top", splitStart, time.Time{}),
		seedEntry(TeamIDPainGaming, "pain-jng", "CarioK", "jungle", splitStart, RosterSwapAt),
		seedEntry(TeamIDPainGaming, "loud-jng", "Youngjae", "jungle", RosterSwapAt, time.Time{}),
		seedEntry(TeamIDPainGaming, "pain-mid", "dyNquedo", "mid", splitStart, time.Time{}),
		seedEntry(TeamIDPainGaming, "pain-adc", "TitaN", "bottom", splitStart, time.Time{}),
		seedEntry(TeamIDPainGaming, "pain-sup", "Kuri", "support", splitStart, time.Time{}),
	}

	// Substitute only fielded during the group stage.
	substitute := seedEntry(TeamIDFuria, "furia-sub-mid", "Tutsz", "mid", splitStart, time.Time{})
	substitute.Blocks = []string{"Fase de Grupos"}
	return append(entries, substitute)
}

// seedEntry takes the role as the provider spells it in team rosters ("bottom", "support").
func seedEntry(teamID, playerID, nickname, role string, from, until time.Time) roster.Entry {
	position, _ := match.ParsePosition(role)
	return roster.Entry{
		Player: match.Player{
			ID:       playerID,
			Name:     nickname,
			Nickname: nickname,
			ImageURL: "http://static.lolesports.com/players/" + playerID + ".png",
			Position: position,
		},
		TeamID:     teamID,
		ValidFrom:  from,
		ValidUntil: until,
	}
}
