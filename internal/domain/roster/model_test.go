package roster

import (
	"testing"
	"time"
)

func TestEntry_Covers(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	entry := Entry{TeamID: "loud", ValidFrom: from, ValidUntil: until, Blocks: []string{"Week 1", "Week 2"}}

	cases := []struct {
		name  string
		team  string
		at    time.Time
		block string
		want  bool
	}{
		{name: "inside window and block", team: "loud", at: from.Add(24 * time.Hour), block: "week 2", want: true},
		{name: "other team", team: "pain-gaming", at: from.Add(24 * time.Hour), block: "Week 1", want: false},
		{name: "before window", team: "loud", at: from.Add(-time.Hour), block: "Week 1", want: false},
		{name: "until is exclusive", team: "loud", at: until, block: "Week 1", want: false},
		{name: "block outside list", team: "loud", at: from.Add(time.Hour), block: "Playoffs", want: false},
	}
	for _, tc := range cases {
		if got := entry.Covers(tc.team, tc.at, tc.block); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}

	open := Entry{TeamID: "loud"}
	if !open.Covers("loud", until.Add(1000*time.Hour), "anything") {
		t.Fatalf("expected open entry to cover any date and block")
	}
}
