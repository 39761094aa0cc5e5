//go:build integration

package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/testutil"
	"github.com/freeeve/entangled/pkg/entangled"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestProgressRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	got, err := c.GetProgress(ctx, "t1")
	if err != nil {
		t.Fatalf("get missing progress: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil progress, got %+v", got)
	}

	want := model.Progress{TournamentID: "t1", Completed: 12, Failed: 1, Total: 40, ETASeconds: 3.5, Paused: true}
	if err := c.SetProgress(ctx, want); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	got, err = c.GetProgress(ctx, "t1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if *got != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestRecentResultsCapped(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	for i := range MaxRecentResults + 5 {
		rec := model.GameRecord{ID: "g", TournamentID: "t1", GameIndex: i, Winner: entangled.OutcomeBlack}
		if err := c.PushResult(ctx, rec); err != nil {
			t.Fatalf("push result: %v", err)
		}
	}

	n, err := testRDB.LLen(ctx, resultsKey("t1")).Result()
	if err != nil {
		t.Fatalf("llen: %v", err)
	}
	if n != MaxRecentResults {
		t.Fatalf("expected %d results, got %d", MaxRecentResults, n)
	}

	recent, err := c.RecentResults(ctx, "t1", 3)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 results, got %d", len(recent))
	}
	if recent[0].GameIndex != MaxRecentResults+4 {
		t.Fatalf("expected newest first, got index %d", recent[0].GameIndex)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	ratings := []model.Rating{
		{TournamentID: "t1", Player: "random", Rating: 1420, Games: 10},
		{TournamentID: "t1", Player: "minimax", Rating: 1610, Games: 10},
		{TournamentID: "t1", Player: "greedy-high", Rating: 1470, Games: 10},
	}
	if err := c.SetRatings(ctx, "t1", ratings); err != nil {
		t.Fatalf("set ratings: %v", err)
	}

	top, err := c.Leaderboard(ctx, "t1", 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].Player != "minimax" || top[1].Player != "greedy-high" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	all, err := c.Leaderboard(ctx, "t1", 0)
	if err != nil {
		t.Fatalf("leaderboard all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(all))
	}
}

func TestDeleteTournamentData(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	if err := c.SetProgress(ctx, model.Progress{TournamentID: "t1", Total: 4}); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if err := c.PushResult(ctx, model.GameRecord{ID: "g1", TournamentID: "t1"}); err != nil {
		t.Fatalf("push result: %v", err)
	}
	if err := c.DeleteTournamentData(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	p, err := c.GetProgress(ctx, "t1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p != nil {
		t.Fatal("expected progress to be deleted")
	}
	recent, err := c.RecentResults(ctx, "t1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected no results, got %d", len(recent))
	}
}
