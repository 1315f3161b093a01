package usecase

import (
	"errors"
	"testing"
)

func TestLeagueCatalog_LookupAndOrdering(t *testing.T) {
	t.Parallel()

	catalog := NewLeagueCatalog(
		map[string]string{"lta_sul": "2", "cblol-brazil": "1", " ": "3", "empty": ""},
		map[string]string{"cblol-brazil": "t-1"},
	)

	slugs := catalog.Slugs()
	if len(slugs) != 2 || slugs[0] != "cblol-brazil" || slugs[1] != "lta_sul" {
		t.Fatalf("unexpected slugs: %v", slugs)
	}
	item, err := catalog.Lookup(" cblol-brazil ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if item.ProviderLeagueID != "1" || item.TournamentID != "t-1" {
		t.Fatalf("unexpected league config: %+v", item)
	}
	if _, err := catalog.Lookup("empty"); !errors.Is(err, ErrUnsupportedLeague) {
		t.Fatalf("expected ErrUnsupportedLeague, got %v", err)
	}
}
