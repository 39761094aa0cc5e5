package repository

import (
	"context"

	"github.com/freeeve/entangled/internal/model"
)

// ResultRepository defines durable tournament and game result operations.
type ResultRepository interface {
	CreateTournament(ctx context.Context, name string, config []byte) (*model.Tournament, error)
	FindTournament(ctx context.Context, id string) (*model.Tournament, error)
	SetTournamentStatus(ctx context.Context, id, status string) error
	RecordGameResult(ctx context.Context, rec model.GameRecord) error
	Flush(ctx context.Context) error
	ListGameResults(ctx context.Context, tournamentID string, limit int) ([]model.GameRecord, error)
	SaveRatings(ctx context.Context, tournamentID string, ratings []model.Rating) error
	ListRatings(ctx context.Context, tournamentID string) ([]model.Rating, error)
}

// ProgressCache defines live tournament state operations (Redis).
type ProgressCache interface {
	SetProgress(ctx context.Context, p model.Progress) error
	GetProgress(ctx context.Context, tournamentID string) (*model.Progress, error)
	PushResult(ctx context.Context, rec model.GameRecord) error
	RecentResults(ctx context.Context, tournamentID string, n int) ([]model.GameRecord, error)
	SetRatings(ctx context.Context, tournamentID string, ratings []model.Rating) error
	Leaderboard(ctx context.Context, tournamentID string, n int) ([]model.Rating, error)
	DeleteTournamentData(ctx context.Context, tournamentID string) error
}
