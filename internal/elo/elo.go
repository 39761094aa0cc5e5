// Package elo keeps Elo ratings for strategies playing many games against
// each other. Updates are serialised by a mutex, so results may arrive from
// any goroutine in any order; the final table depends on that order.
package elo

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultRating = 1500.0
	BaseK         = 32.0

	// WideInterval is reported until enough recent history exists.
	WideInterval = 200.0

	windowSize     = 30
	minWindowGames = 5
)

// PlayerRating is a snapshot of one player's entry.
type PlayerRating struct {
	ID         string  `json:"id"`
	Rating     float64 `json:"rating"`
	Games      int     `json:"games"`
	Confidence float64 `json:"confidence"`
}

// Update is the result of one rated game.
type Update struct {
	RatingA float64 `json:"ratingA"`
	RatingB float64 `json:"ratingB"`
	ChangeA float64 `json:"changeA"`
	ChangeB float64 `json:"changeB"`
}

type entry struct {
	rating  float64
	games   int
	history []float64
}

// System is a rating table safe for concurrent use.
type System struct {
	mu      sync.Mutex
	players map[string]*entry
}

// NewSystem returns an empty table.
func NewSystem() *System {
	return &System{players: make(map[string]*entry)}
}

func (s *System) get(id string) *entry {
	p, ok := s.players[id]
	if !ok {
		p = &entry{rating: DefaultRating}
		s.players[id] = p
	}
	return p
}

// ExpectedScore is the logistic win expectancy of a against b.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// KFactor returns the K used for a player with the given number of rated
// games: 32 for the first 30, then x0.75 (at least 16) up to 100, then
// x0.5 (at least 8).
func KFactor(games int) float64 {
	switch {
	case games < 30:
		return BaseK
	case games < 100:
		return math.Max(BaseK*0.75, 16)
	}
	return math.Max(BaseK*0.5, 8)
}

// UpdateRating records one game. scoreA is 1 for a win by a, 0.5 for a tie
// and 0 for a loss. A game of a player against itself changes nothing.
func (s *System) UpdateRating(a, b string, scoreA float64) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	pa := s.get(a)
	if a == b {
		return Update{RatingA: pa.rating, RatingB: pa.rating}
	}
	pb := s.get(b)

	expA := ExpectedScore(pa.rating, pb.rating)
	changeA := KFactor(pa.games) * (scoreA - expA)
	changeB := KFactor(pb.games) * ((1 - scoreA) - (1 - expA))

	pa.apply(changeA)
	pb.apply(changeB)
	return Update{RatingA: pa.rating, RatingB: pb.rating, ChangeA: changeA, ChangeB: changeB}
}

func (p *entry) apply(change float64) {
	p.rating += change
	p.games++
	p.history = append(p.history, p.rating)
}

// confidence is 1.96 standard deviations of the trailing ratings over
// sqrt(n), or WideInterval with fewer than five of them.
func (p *entry) confidence() float64 {
	recent := p.history
	if len(recent) > windowSize {
		recent = recent[len(recent)-windowSize:]
	}
	if len(recent) < minWindowGames {
		return WideInterval
	}
	return 1.96 * stat.StdDev(recent, nil) / math.Sqrt(float64(len(recent)))
}

// Rating returns the entry for id. Unknown players report the default.
func (s *System) Rating(id string) PlayerRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return PlayerRating{ID: id, Rating: DefaultRating, Confidence: WideInterval}
	}
	return PlayerRating{ID: id, Rating: p.rating, Games: p.games, Confidence: p.confidence()}
}

// History returns a copy of id's rating after each of its games.
func (s *System) History(id string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil
	}
	out := make([]float64, len(p.history))
	copy(out, p.history)
	return out
}

// Snapshot returns every rated player, highest rating first.
func (s *System) Snapshot() []PlayerRating {
	s.mu.Lock()
	out := make([]PlayerRating, 0, len(s.players))
	for id, p := range s.players {
		out = append(out, PlayerRating{ID: id, Rating: p.rating, Games: p.games, Confidence: p.confidence()})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out
}
