package tournament

import (
	"sort"
	"time"

	"github.com/freeeve/entangled/internal/elo"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/pkg/entangled"
)

// MatchupStats aggregates the finished games of one matchup.
type MatchupStats struct {
	Key        string        `json:"key"`
	Black      string        `json:"black"`
	White      string        `json:"white"`
	Board      string        `json:"board"`
	Games      int           `json:"games"`
	BlackWins  int           `json:"blackWins"`
	WhiteWins  int           `json:"whiteWins"`
	Ties       int           `json:"ties"`
	BlackScore int           `json:"blackScoreTotal"`
	WhiteScore int           `json:"whiteScoreTotal"`
	Duration   time.Duration `json:"durationNs"`
}

func (s *MatchupStats) add(rec model.GameRecord) {
	s.Games++
	switch rec.Winner {
	case entangled.OutcomeBlack:
		s.BlackWins++
	case entangled.OutcomeWhite:
		s.WhiteWins++
	default:
		s.Ties++
	}
	s.BlackScore += rec.BlackScore
	s.WhiteScore += rec.WhiteScore
	s.Duration += time.Duration(rec.DurationMS) * time.Millisecond
}

// AvgScores returns the mean black and white scores.
func (s MatchupStats) AvgScores() (black, white float64) {
	if s.Games == 0 {
		return 0, 0
	}
	return float64(s.BlackScore) / float64(s.Games), float64(s.WhiteScore) / float64(s.Games)
}

// Summary is a point-in-time view of a tournament.
type Summary struct {
	TournamentID string             `json:"tournamentId"`
	Progress     model.Progress     `json:"progress"`
	Matchups     []MatchupStats     `json:"matchups"`
	Ratings      []elo.PlayerRating `json:"ratings"`
	Elapsed      time.Duration      `json:"elapsedNs"`
}

// RatingRows returns the rating table as storage rows.
func (s *Summary) RatingRows() []model.Rating {
	return RatingRows(s.TournamentID, s.Ratings)
}

func sortedStats(m map[string]*MatchupStats) []MatchupStats {
	out := make([]MatchupStats, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ScoreFor converts an outcome to black's Elo score.
func ScoreFor(o entangled.Outcome) float64 {
	switch o {
	case entangled.OutcomeBlack:
		return 1
	case entangled.OutcomeWhite:
		return 0
	}
	return 0.5
}

// RatingRows converts a rating table snapshot to storage rows.
func RatingRows(tournamentID string, rs []elo.PlayerRating) []model.Rating {
	out := make([]model.Rating, len(rs))
	for i, r := range rs {
		out[i] = model.Rating{
			TournamentID: tournamentID,
			Player:       r.ID,
			Rating:       r.Rating,
			Games:        r.Games,
			Confidence:   r.Confidence,
		}
	}
	return out
}
