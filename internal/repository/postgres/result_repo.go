package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/pkg/entangled"
)

const (
	// DefaultBatchSize is the number of buffered game results that triggers a write.
	DefaultBatchSize = 100
	// DefaultMaxPending bounds the buffer while writes keep failing.
	DefaultMaxPending = 10000
)

// ResultRepo handles tournament, game result and rating database operations.
// Game results are buffered and written in batches.
type ResultRepo struct {
	db         *sql.DB
	batchSize  int
	maxPending int

	mu      sync.Mutex
	pending []model.GameRecord
	dropped int
}

// NewResultRepo creates a ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{db: db, batchSize: DefaultBatchSize, maxPending: DefaultMaxPending}
}

// SetBatchSize changes the buffered write threshold. n < 1 writes every record immediately.
func (r *ResultRepo) SetBatchSize(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchSize = max(n, 1)
}

// SetMaxPending changes how many unwritten results are kept after failed
// writes. The oldest results beyond the limit are dropped.
func (r *ResultRepo) SetMaxPending(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxPending = max(n, 1)
}

// Pending returns the number of buffered results.
func (r *ResultRepo) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Dropped returns the number of results discarded because the buffer overflowed.
func (r *ResultRepo) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// CreateTournament inserts a new tournament in running status.
func (r *ResultRepo) CreateTournament(ctx context.Context, name string, config []byte) (*model.Tournament, error) {
	if len(config) == 0 {
		config = []byte("{}")
	}
	var t model.Tournament
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tournaments (name, config, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, config, status, created_at`,
		name, string(config), model.StatusRunning,
	).Scan(&t.ID, &t.Name, &t.Config, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return &t, nil
}

// FindTournament returns a tournament by ID, or nil if it does not exist.
func (r *ResultRepo) FindTournament(ctx context.Context, id string) (*model.Tournament, error) {
	var t model.Tournament
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, config, status, created_at, finished_at
		 FROM tournaments WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Config, &t.Status, &t.CreatedAt, &t.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}
	return &t, nil
}

// SetTournamentStatus updates a tournament's status. Terminal statuses also stamp finished_at.
func (r *ResultRepo) SetTournamentStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tournaments
		 SET status = $1,
		     finished_at = CASE WHEN $1 IN ('finished', 'cancelled') THEN now() ELSE finished_at END
		 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("set tournament status: %w", err)
	}
	return nil
}

// RecordGameResult buffers a result and writes the buffer once it is full.
func (r *ResultRepo) RecordGameResult(ctx context.Context, rec model.GameRecord) error {
	r.mu.Lock()
	r.pending = append(r.pending, rec)
	full := len(r.pending) >= r.batchSize
	r.mu.Unlock()
	if !full {
		return nil
	}
	return r.Flush(ctx)
}

// Flush writes all buffered results in one transaction. Records already
// stored for the same tournament, matchup and game index are skipped.
func (r *ResultRepo) Flush(ctx context.Context) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	if err := r.insertResults(ctx, batch); err != nil {
		// Put the batch back so a later flush can retry it.
		r.mu.Lock()
		r.pending = append(batch, r.pending...)
		over := len(r.pending) - r.maxPending
		if over > 0 {
			r.pending = append(r.pending[:0:0], r.pending[over:]...)
			r.dropped += over
		}
		r.mu.Unlock()
		if over > 0 {
			log.Warn().Err(err).Int("dropped", over).Msg("Result buffer full; dropped oldest game results")
		}
		return err
	}
	return nil
}

func (r *ResultRepo) insertResults(ctx context.Context, batch []model.GameRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO game_results (id, tournament_id, matchup_key, black, white, board_key, game_index,
		                           winner, black_score, white_score, tiebreak, moves, history, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert game result: %w", err)
	}
	defer stmt.Close()

	for _, g := range batch {
		tiebreak, err := json.Marshal(g.TieBreak)
		if err != nil {
			return fmt.Errorf("marshal tiebreak: %w", err)
		}
		moves, err := nullJSON(g.Moves)
		if err != nil {
			return fmt.Errorf("marshal moves: %w", err)
		}
		history, err := nullJSON(g.History)
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		_, err = stmt.ExecContext(ctx, g.ID, g.TournamentID, g.MatchupKey, g.Black, g.White, g.BoardKey, g.GameIndex,
			string(g.Winner), g.BlackScore, g.WhiteScore, string(tiebreak), moves, history, g.DurationMS, g.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert game result: %w", err)
		}
	}
	return tx.Commit()
}

// ListGameResults returns the most recent results of a tournament, newest first.
func (r *ResultRepo) ListGameResults(ctx context.Context, tournamentID string, limit int) ([]model.GameRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, matchup_key, black, white, board_key, game_index,
		        winner, black_score, white_score, tiebreak, moves, history, duration_ms, created_at
		 FROM game_results WHERE tournament_id = $1
		 ORDER BY created_at DESC, id LIMIT $2`, tournamentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	defer rows.Close()

	var out []model.GameRecord
	for rows.Next() {
		var g model.GameRecord
		var winner string
		var tiebreak, moves, history sql.NullString
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.MatchupKey, &g.Black, &g.White, &g.BoardKey, &g.GameIndex,
			&winner, &g.BlackScore, &g.WhiteScore, &tiebreak, &moves, &history, &g.DurationMS, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game result: %w", err)
		}
		g.Winner = entangled.Outcome(winner)
		if err := unmarshalNull(tiebreak, &g.TieBreak); err != nil {
			return nil, fmt.Errorf("decode tiebreak: %w", err)
		}
		if err := unmarshalNull(moves, &g.Moves); err != nil {
			return nil, fmt.Errorf("decode moves: %w", err)
		}
		if err := unmarshalNull(history, &g.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SaveRatings upserts the rating table of a tournament.
func (r *ResultRepo) SaveRatings(ctx context.Context, tournamentID string, ratings []model.Rating) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO elo_ratings (tournament_id, player, rating, games, confidence)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tournament_id, player)
		 DO UPDATE SET rating = EXCLUDED.rating, games = EXCLUDED.games,
		               confidence = EXCLUDED.confidence, updated_at = now()`)
	if err != nil {
		return fmt.Errorf("prepare upsert rating: %w", err)
	}
	defer stmt.Close()

	for _, rt := range ratings {
		if _, err := stmt.ExecContext(ctx, tournamentID, rt.Player, rt.Rating, rt.Games, rt.Confidence); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
	}
	return tx.Commit()
}

// ListRatings returns a tournament's ratings, highest first.
func (r *ResultRepo) ListRatings(ctx context.Context, tournamentID string) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tournament_id, player, rating, games, confidence
		 FROM elo_ratings WHERE tournament_id = $1
		 ORDER BY rating DESC, player`, tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.TournamentID, &rt.Player, &rt.Rating, &rt.Games, &rt.Confidence); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
