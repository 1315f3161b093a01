package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/esports-match-sync/internal/domain/match"
)

func testMatch(id, league string, state match.State, block string) match.Match {
	return match.Match{
		ID:        id,
		State:     state,
		BlockName: block,
		League:    match.League{Name: league, Slug: league},
		Teams: [2]match.Team{
			{ID: "loud", Code: "LOUD", Players: []match.Player{{ID: "p1"}}},
			{ID: "pain-gaming", Code: "PAIN"},
		},
		BestOf: 3,
	}
}

func TestMatchRepository_SaveMatchesReplacesPerLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(nil)

	err := repo.SaveMatches(ctx, []match.Match{
		testMatch("m1", "cblol-brazil", match.StateUnstarted, "Week 1"),
		testMatch("m2", "cblol-brazil", match.StateInProgress, "Week 1"),
		testMatch("m3", "lta_sul", match.StateCompleted, "Week 2"),
	})
	if err != nil {
		t.Fatalf("save matches: %v", err)
	}

	if err := repo.SaveMatches(ctx, []match.Match{testMatch("m2", "cblol-brazil", match.StateCompleted, "Week 1")}); err != nil {
		t.Fatalf("save matches: %v", err)
	}

	items, _ := repo.ListByLeague(ctx, "cblol-brazil")
	if len(items) != 1 || items[0].ID != "m2" || items[0].State != match.StateCompleted {
		t.Fatalf("unexpected cblol snapshot: %+v", items)
	}
	if _, exists, _ := repo.GetByID(ctx, "m1"); exists {
		t.Fatalf("expected stale match m1 to be gone from the id index")
	}
	if _, exists, _ := repo.GetByID(ctx, "m3"); !exists {
		t.Fatalf("expected other league to be untouched")
	}
}

func TestMatchRepository_DerivedViews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository([]match.Match{
		testMatch("m1", "cblol-brazil", match.StateUnstarted, "Week 1"),
		testMatch("m2", "cblol-brazil", match.StateInProgress, "Week 2"),
		testMatch("m3", "cblol-brazil", match.StateInProgress, "week 1"),
	})

	live, _ := repo.ListByState(ctx, "cblol-brazil", match.StateInProgress)
	if len(live) != 2 {
		t.Fatalf("unexpected live count: got=%d want=2", len(live))
	}
	week1, _ := repo.ListByBlock(ctx, "cblol-brazil", "WEEK 1")
	if len(week1) != 2 || week1[0].ID != "m1" || week1[1].ID != "m3" {
		t.Fatalf("unexpected block view: %+v", week1)
	}
	if empty, _ := repo.ListByLeague(ctx, "lck"); len(empty) != 0 {
		t.Fatalf("expected empty list for unknown league")
	}
}

func TestMatchRepository_ReadsAreCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository([]match.Match{testMatch("m1", "cblol-brazil", match.StateUnstarted, "Week 1")})

	items, _ := repo.ListByLeague(ctx, "cblol-brazil")
	items[0].State = match.StateCompleted
	items[0].Teams[0].Players[0].ID = "mutated"

	stored, _, _ := repo.GetByID(ctx, "m1")
	if stored.State != match.StateUnstarted || stored.Teams[0].Players[0].ID != "p1" {
		t.Fatalf("store was mutated through a read: %+v", stored)
	}
}

func TestMatchRepository_ReplaceLeagueEmptyClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository([]match.Match{testMatch("m1", "cblol-brazil", match.StateUnstarted, "Week 1")})

	if err := repo.ReplaceLeague(ctx, "cblol-brazil", nil); err != nil {
		t.Fatalf("replace league: %v", err)
	}
	if items, _ := repo.ListByLeague(ctx, "cblol-brazil"); len(items) != 0 {
		t.Fatalf("expected cleared league, got=%+v", items)
	}
	if _, exists, _ := repo.GetByID(ctx, "m1"); exists {
		t.Fatalf("expected id index to be cleared")
	}
}

func TestMatchRepository_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	small := []match.Match{testMatch("a1", "cblol-brazil", match.StateUnstarted, "Week 1")}
	large := []match.Match{
		testMatch("b1", "cblol-brazil", match.StateUnstarted, "Week 1"),
		testMatch("b2", "cblol-brazil", match.StateUnstarted, "Week 1"),
		testMatch("b3", "cblol-brazil", match.StateUnstarted, "Week 1"),
	}
	repo := NewMatchRepository(small)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			next := small
			if i%2 == 0 {
				next = large
			}
			_ = repo.ReplaceLeague(ctx, "cblol-brazil", next)
		}
	}()
	errs := make(chan string, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			items, _ := repo.ListByLeague(ctx, "cblol-brazil")
			if len(items) != 1 && len(items) != 3 {
				select {
				case errs <- "partial snapshot observed":
				default:
				}
				return
			}
		}
	}()
	wg.Wait()
	close(errs)
	if msg, ok := <-errs; ok {
		t.Fatalf("%s", msg)
	}
}

func TestMatchRepository_UpdateLeagueSerializesWriters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.UpdateLeague(ctx, "cblol-brazil", func(stored []match.Match) ([]match.Match, error) {
				return append(stored, testMatch(fmt.Sprintf("m%d", i), "cblol-brazil", match.StateUnstarted, "Week 1")), nil
			})
		}(i)
	}
	wg.Wait()

	items, _ := repo.ListByLeague(ctx, "cblol-brazil")
	if len(items) != 50 {
		t.Fatalf("lost updates: got=%d want=50", len(items))
	}
}

func TestMatchRepository_UpdateLeagueErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository([]match.Match{testMatch("m1", "cblol-brazil", match.StateUnstarted, "Week 1")})

	err := repo.UpdateLeague(ctx, "cblol-brazil", func([]match.Match) ([]match.Match, error) {
		return nil, match.ErrLeagueUnchanged
	})
	if !errors.Is(err, match.ErrLeagueUnchanged) {
		t.Fatalf("expected ErrLeagueUnchanged, got %v", err)
	}
	if _, exists, _ := repo.GetByID(ctx, "m1"); !exists {
		t.Fatalf("expected snapshot to survive an aborted update")
	}
}
