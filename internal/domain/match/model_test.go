package match

import "testing"

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	cases := map[string]Outcome{
		"win":   OutcomeWin,
		"WIN":   OutcomeWin,
		" Win ": OutcomeWin,
		"loss":  OutcomeLoss,
		"LoSs":  OutcomeLoss,
		"tie":   OutcomeNone,
		"":      OutcomeNone,
		"won":   OutcomeNone,
	}
	for raw, want := range cases {
		if got := ParseOutcome(raw); got != want {
			t.Fatalf("unexpected outcome for %q: got=%q want=%q", raw, got, want)
		}
	}
}

func TestParseState_DefaultsToUnstarted(t *testing.T) {
	t.Parallel()

	cases := map[string]State{
		"unstarted":  StateUnstarted,
		"inProgress": StateInProgress,
		"INPROGRESS": StateInProgress,
		"completed":  StateCompleted,
		"Completed":  StateCompleted,
		"postponed":  StateUnstarted,
		"":           StateUnstarted,
	}
	for raw, want := range cases {
		if got := ParseState(raw); got != want {
			t.Fatalf("unexpected state for %q: got=%q want=%q", raw, got, want)
		}
	}
}

func TestClone_DoesNotShareRosters(t *testing.T) {
	t.Parallel()

	original := Match{ID: "m1"}
	original.Teams[0].Players = []Player{{ID: "p1", Nickname: "Robo"}}

	clone := original.Clone()
	clone.Teams[0].Players[0].Nickname = "changed"

	if original.Teams[0].Players[0].Nickname != "Robo" {
		t.Fatalf("clone mutated original roster")
	}
}

func TestFilterByBlock_CaseInsensitive(t *testing.T) {
	t.Parallel()

	items := []Match{
		{ID: "m1", BlockName: "Week 3"},
		{ID: "m2", BlockName: "week 3 "},
		{ID: "m3", BlockName: "Playoffs"},
	}
	got := FilterByBlock(items, "WEEK 3")
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("unexpected block filter result: %+v", got)
	}
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Position
		ok   bool
	}{
		{raw: "top", want: PositionTop, ok: true},
		{raw: " Jungle ", want: PositionJungle, ok: true},
		{raw: "bottom", want: PositionADC, ok: true},
		{raw: "SUP", want: PositionSupport, ok: true},
		{raw: "coach", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParsePosition(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParsePosition(%q) got=%q,%v want=%q,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
