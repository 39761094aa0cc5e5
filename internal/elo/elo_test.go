package elo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpectedScore(t *testing.T) {
	require.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-9)
	require.InDelta(t, 10.0/11.0, ExpectedScore(1900, 1500), 1e-9)
	require.InDelta(t, 1.0, ExpectedScore(1900, 1500)+ExpectedScore(1500, 1900), 1e-9)
}

func TestKFactorDecay(t *testing.T) {
	require.Equal(t, 32.0, KFactor(0))
	require.Equal(t, 32.0, KFactor(29))
	require.Equal(t, 24.0, KFactor(30))
	require.Equal(t, 24.0, KFactor(99))
	require.Equal(t, 16.0, KFactor(100))
}

func TestUpdateRatingEvenGame(t *testing.T) {
	s := NewSystem()
	u := s.UpdateRating("a", "b", 1)
	require.InDelta(t, 16, u.ChangeA, 1e-9)
	require.InDelta(t, -16, u.ChangeB, 1e-9)
	require.InDelta(t, 1516, s.Rating("a").Rating, 1e-9)
	require.InDelta(t, 1484, s.Rating("b").Rating, 1e-9)

	u = s.UpdateRating("a", "b", 0.5)
	require.Less(t, u.ChangeA, 0.0, "a tie against a weaker player costs rating")
}

func TestUpdateRatingSelfPlayIsNoOp(t *testing.T) {
	s := NewSystem()
	s.UpdateRating("a", "b", 1)
	before := s.Rating("a")

	u := s.UpdateRating("a", "a", 1)
	require.Zero(t, u.ChangeA)
	require.Zero(t, u.ChangeB)
	require.Equal(t, before, s.Rating("a"))
}

func TestWinStreakIsMonotonic(t *testing.T) {
	s := NewSystem()
	for range 150 {
		s.UpdateRating("champ", "punchbag", 1)
	}
	hist := s.History("champ")
	require.Len(t, hist, 150)
	prev := DefaultRating
	for i, r := range hist {
		require.Greater(t, r, prev, "game %d", i)
		prev = r
	}
	// Gains shrink once K decays.
	early := hist[1] - hist[0]
	late := hist[149] - hist[148]
	require.Less(t, late, early)
}

func TestConfidenceInterval(t *testing.T) {
	s := NewSystem()
	for range 4 {
		s.UpdateRating("a", "b", 1)
	}
	require.Equal(t, WideInterval, s.Rating("a").Confidence)
	require.Equal(t, WideInterval, s.Rating("nobody").Confidence)

	for i := range 40 {
		s.UpdateRating("a", "b", float64(i%2))
	}
	ci := s.Rating("a").Confidence
	require.Greater(t, ci, 0.0)
	require.Less(t, ci, WideInterval)
}

func TestConcurrentUpdates(t *testing.T) {
	s := NewSystem()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				s.UpdateRating(fmt.Sprintf("p%d", w), fmt.Sprintf("p%d", (w+1)%8), float64(i%2))
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap, 8)
	for _, p := range snap {
		require.Equal(t, 200, p.Games, p.ID)
	}
	for i := 1; i < len(snap); i++ {
		require.GreaterOrEqual(t, snap[i-1].Rating, snap[i].Rating)
	}
}
