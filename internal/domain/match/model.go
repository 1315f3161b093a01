package match

import (
	"strings"
	"time"
)

type State string

const (
	StateUnstarted  State = "UNSTARTED"
	StateInProgress State = "INPROGRESS"
	StateCompleted  State = "COMPLETED"
)

// ParseState maps provider state strings case-insensitively. Unknown values are treated as
// not yet started.
func ParseState(raw string) State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inprogress":
		return StateInProgress
	case "completed":
		return StateCompleted
	default:
		return StateUnstarted
	}
}

func (s State) Valid() bool {
	switch s {
	case StateUnstarted, StateInProgress, StateCompleted:
		return true
	default:
		return false
	}
}

// Outcome is a team's result in a match. The empty value means no result yet.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

func ParseOutcome(raw string) Outcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "win":
		return OutcomeWin
	case "loss":
		return OutcomeLoss
	default:
		return OutcomeNone
	}
}

type Position string

const (
	PositionTop     Position = "TOP"
	PositionJungle  Position = "JUNGLE"
	PositionMid     Position = "MID"
	PositionADC     Position = "ADC"
	PositionSupport Position = "SUPPORT"
)

func ParsePosition(raw string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TOP":
		return PositionTop, true
	case "JUNGLE", "JUNGLER", "JNG":
		return PositionJungle, true
	case "MID", "MIDDLE":
		return PositionMid, true
	case "ADC", "BOTTOM", "BOT":
		return PositionADC, true
	case "SUPPORT", "SUP":
		return PositionSupport, true
	default:
		return "", false
	}
}

type League struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	ImageURL string   `json:"imageUrl"`
	Position Position `json:"position"`
	TeamID   string   `json:"teamId"`
}

type TeamResult struct {
	Outcome  Outcome `json:"outcome,omitempty"`
	GameWins int     `json:"gameWins"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
}

type Team struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Code     string     `json:"code"`
	ImageURL string     `json:"imageUrl"`
	Players  []Player   `json:"players"`
	Result   TeamResult `json:"result"`
}

// Match is the canonical schedule entry. It always has exactly two teams.
type Match struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	State     State     `json:"state"`
	BlockName string    `json:"blockName"`
	League    League    `json:"league"`
	Teams     [2]Team   `json:"teams"`
	BestOf    int       `json:"bestOf"`
	HasVOD    bool      `json:"hasVod"`
	VODURL    string    `json:"vodUrl,omitempty"`
}

func (m Match) IsLive() bool {
	return m.State == StateInProgress
}

// Clone returns a copy that shares no slices with m.
func (m Match) Clone() Match {
	out := m
	for i := range out.Teams {
		out.Teams[i].Players = append([]Player(nil), m.Teams[i].Players...)
	}
	return out
}

// IndexByID maps match ids to matches. Later duplicates win.
func IndexByID(items []Match) map[string]Match {
	out := make(map[string]Match, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}

// GroupByLeague splits a batch by league slug, keeping the batch order inside each league.
func GroupByLeague(items []Match) map[string][]Match {
	out := make(map[string][]Match)
	for _, item := range items {
		out[item.League.Slug] = append(out[item.League.Slug], item)
	}
	return out
}

func FilterByState(items []Match, state State) []Match {
	out := make([]Match, 0, len(items))
	for _, item := range items {
		if item.State == state {
			out = append(out, item)
		}
	}
	return out
}

// FilterByBlock matches block names case-insensitively after trimming.
func FilterByBlock(items []Match, blockName string) []Match {
	want := strings.TrimSpace(blockName)
	out := make([]Match, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.BlockName), want) {
			out = append(out, item)
		}
	}
	return out
}
