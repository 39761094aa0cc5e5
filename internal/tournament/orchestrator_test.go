package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freeeve/entangled/internal/bot"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/pkg/entangled"
)

type memorySink struct {
	mu      sync.Mutex
	records []model.GameRecord
	flushed int
}

func (s *memorySink) RecordGameResult(_ context.Context, rec model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
	return nil
}

type memoryListener struct {
	mu       sync.Mutex
	progress []model.Progress
	games    int
	ratings  int
}

func (l *memoryListener) OnProgress(p model.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, p)
}

func (l *memoryListener) OnGameResult(model.GameRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games++
}

func (l *memoryListener) OnRatings([]model.Rating) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ratings++
}

// fakeResult returns a black win without playing.
func fakeResult(context.Context, Job, *rand.Rand) (*bot.GameResult, error) {
	return &bot.GameResult{
		ID:     fmt.Sprint(time.Now().UnixNano()),
		Winner: entangled.OutcomeBlack,
		Scores: bot.Scores{Black: 5, White: 3},
	}, nil
}

func newTestOrchestrator(t *testing.T, strategies []string, games, workers int) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Strategies:      strategies,
		Boards:          []BoardConfig{DefaultBoard(4)},
		GamesPerMatchup: games,
		Workers:         workers,
		Seed:            42,
	})
	require.NoError(t, err)
	return o
}

func TestGenerateMatchups_Counts(t *testing.T) {
	ids := []string{"random", "greedy-high", "defensive"}
	boards := []BoardConfig{DefaultBoard(4), DefaultBoard(5)}

	ms := GenerateMatchups(ids, boards, false)
	require.Len(t, ms, 18)

	self := 0
	seen := make(map[string]bool)
	for _, m := range ms {
		require.False(t, seen[m.Key()], "duplicate %s", m.Key())
		seen[m.Key()] = true
		if m.SelfPlay() {
			self++
		}
	}
	require.Equal(t, 6, self)

	shuffled := GenerateMatchups(ids, boards, true)
	require.ElementsMatch(t, ms, shuffled)
}

func TestBoardConfig_Key(t *testing.T) {
	b := DefaultBoard(5)
	require.Equal(t, "square-5/square-5-twin", b.Key())

	b.SwapRule = true
	b.Superposition = "rng"
	require.Equal(t, "square-5/square-5-twin;swap;sp=RNG", b.Key())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Strategies: []string{"random"}, Boards: []BoardConfig{DefaultBoard(4)}})
	require.Error(t, err)

	_, err = New(Config{
		Strategies:      []string{"nope"},
		Boards:          []BoardConfig{DefaultBoard(4)},
		GamesPerMatchup: 1,
	})
	require.ErrorIs(t, err, bot.ErrUnknownStrategy)

	_, err = New(Config{
		Strategies:      []string{"random"},
		Boards:          []BoardConfig{{Board1: "square-4", Board2: "square-5-twin"}},
		GamesPerMatchup: 1,
	})
	require.ErrorIs(t, err, entangled.ErrLayoutMismatch)
}

func TestRun_CompleteForEveryPoolSize(t *testing.T) {
	ids := []string{"random", "deterministic", "greedy-high"}
	for workers := 1; workers <= 8; workers++ {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			o := newTestOrchestrator(t, ids, 3, workers)
			o.play = fakeResult
			sink := &memorySink{}
			o.AddSink(sink)

			sum, err := o.Run(context.Background())
			require.NoError(t, err)
			require.Equal(t, 27, sum.Progress.Total)
			require.Equal(t, 27, sum.Progress.Completed)
			require.Zero(t, sum.Progress.Failed)
			require.Len(t, sum.Matchups, 9)
			require.Equal(t, 1, sink.flushed)

			seen := make(map[string]bool)
			for _, rec := range sink.records {
				k := fmt.Sprintf("%s#%d", rec.MatchupKey, rec.GameIndex)
				require.False(t, seen[k], "game %s played twice", k)
				seen[k] = true
			}
			require.Len(t, seen, 27)
		})
	}
}

func TestRun_RealGames(t *testing.T) {
	o, err := New(Config{
		Strategies:      []string{"random", "greedy-high"},
		Boards:          []BoardConfig{{Board1: "square-4", Board2: "square-4-twin", SwapRule: true, Superposition: "RNG"}},
		GamesPerMatchup: 2,
		Workers:         3,
		Seed:            7,
		RecordHistory:   true,
	})
	require.NoError(t, err)
	sink := &memorySink{}
	o.AddSink(sink)

	sum, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, sum.Progress.Completed)
	require.Len(t, sink.records, 8)
	for _, rec := range sink.records {
		require.NotEmpty(t, rec.History)
		require.Equal(t, o.ID(), rec.TournamentID)
	}
	require.Len(t, sum.Ratings, 2)
}

func TestRun_FailuresCountedNotRetried(t *testing.T) {
	o := newTestOrchestrator(t, []string{"random", "deterministic"}, 2, 3)
	var calls atomic.Int32
	o.play = func(ctx context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error) {
		calls.Add(1)
		if job.Matchup.Black == "deterministic" {
			return nil, errors.New("boom")
		}
		return fakeResult(ctx, job, rng)
	}

	sum, err := o.Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 8, calls.Load())
	require.Equal(t, 4, sum.Progress.Failed)
	require.Equal(t, 4, sum.Progress.Completed)
}

func TestRun_SelfPlayNotRated(t *testing.T) {
	o := newTestOrchestrator(t, []string{"random", "deterministic"}, 1, 2)
	o.play = fakeResult
	l := &memoryListener{}
	o.AddListener(l)

	sum, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, l.games)
	require.Equal(t, 2, l.ratings)
	for _, r := range sum.Ratings {
		require.Equal(t, 2, r.Games, r.ID)
	}
	last := l.progress[len(l.progress)-1]
	require.Equal(t, 4, last.Completed)
	require.Zero(t, last.ETASeconds)
}

func TestRun_PauseResume(t *testing.T) {
	o := newTestOrchestrator(t, []string{"random", "deterministic"}, 5, 2)
	release := make(chan struct{})
	var started atomic.Int32
	o.play = func(ctx context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error) {
		started.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return fakeResult(ctx, job, rng)
	}

	o.Pause()
	done := make(chan *Summary, 1)
	go func() {
		sum, _ := o.Run(context.Background())
		done <- sum
	}()

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, started.Load())
	require.True(t, o.Progress().Paused)

	close(release)
	o.Resume()

	select {
	case sum := <-done:
		require.Equal(t, 20, sum.Progress.Completed)
		require.False(t, sum.Progress.Paused)
	case <-time.After(5 * time.Second):
		t.Fatal("tournament did not finish after resume")
	}
}

func TestRun_PauseLetsInFlightFinish(t *testing.T) {
	o := newTestOrchestrator(t, []string{"random"}, 10, 2)
	gate := make(chan struct{})
	var started atomic.Int32
	o.play = func(ctx context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error) {
		started.Add(1)
		<-gate
		return fakeResult(ctx, job, rng)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan *Summary, 1)
	go func() {
		sum, _ := o.Run(ctx)
		done <- sum
	}()

	require.Eventually(t, func() bool { return started.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	o.Pause()
	close(gate)

	require.Eventually(t, func() bool { return o.Progress().Completed == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 2, started.Load())

	o.Resume()
	select {
	case sum := <-done:
		require.Equal(t, 10, sum.Progress.Completed)
	case <-time.After(5 * time.Second):
		t.Fatal("tournament did not finish")
	}
}

func TestRun_CancelReturnsPartial(t *testing.T) {
	o := newTestOrchestrator(t, []string{"random", "deterministic"}, 50, 2)
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	o.play = func(c context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error) {
		if n.Add(1) == 10 {
			cancel()
		}
		return fakeResult(c, job, rng)
	}
	sink := &memorySink{}
	o.AddSink(sink)

	sum, err := o.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, sum.Progress.Completed, 200)
	require.Equal(t, 1, sink.flushed)
}

func TestConfig_Record(t *testing.T) {
	cfg := Config{
		Name:            "nightly",
		Strategies:      []string{"random", "mcts:budget=50ms,cap=40"},
		Boards:          []BoardConfig{DefaultBoard(5)},
		GamesPerMatchup: 4,
		Workers:         2,
		Seed:            9,
		Layouts:         entangled.StandardLayouts(),
	}
	raw, err := cfg.Record()
	require.NoError(t, err)
	require.NotContains(t, string(raw), "layouts")

	var back Config
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, cfg.Strategies, back.Strategies)
	require.Equal(t, cfg.Boards, back.Boards)
	require.Equal(t, 4, back.GamesPerMatchup)
	require.Nil(t, back.Layouts)
}
