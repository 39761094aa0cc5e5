package model

import (
	"encoding/json"
	"time"

	"github.com/freeeve/entangled/pkg/entangled"
)

// Tournament statuses.
const (
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
)

// Tournament represents one self-play run.
type Tournament struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Config     json.RawMessage `json:"config"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// GameRecord is one finished game as stored and broadcast.
type GameRecord struct {
	ID           string               `json:"id"`
	TournamentID string               `json:"tournament_id"`
	MatchupKey   string               `json:"matchup_key"`
	Black        string               `json:"black"`
	White        string               `json:"white"`
	BoardKey     string               `json:"board_key"`
	GameIndex    int                  `json:"game_index"`
	Winner       entangled.Outcome    `json:"winner"`
	BlackScore   int                  `json:"black_score"`
	WhiteScore   int                  `json:"white_score"`
	TieBreak     entangled.TieBreak   `json:"tiebreak"`
	Moves        []string             `json:"moves,omitempty"`
	History      []entangled.Snapshot `json:"history,omitempty"`
	DurationMS   int64                `json:"duration_ms"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Rating is a player's rating row for a tournament.
type Rating struct {
	TournamentID string  `json:"tournament_id,omitempty"`
	Player       string  `json:"player"`
	Rating       float64 `json:"rating"`
	Games        int     `json:"games"`
	Confidence   float64 `json:"confidence"`
}

// Progress is a tournament progress report.
type Progress struct {
	TournamentID string  `json:"tournament_id"`
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	Total        int     `json:"total"`
	ETASeconds   float64 `json:"eta_seconds"`
	Paused       bool    `json:"paused"`
}
