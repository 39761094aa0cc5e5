package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/entangled/internal/model"
)

// MaxRecentResults caps the per-tournament recent result list.
const MaxRecentResults = 200

// dataTTL expires live data of tournaments nobody updates any more.
const dataTTL = 24 * time.Hour

// Key patterns for Redis tournament state.
func progressKey(tournamentID string) string    { return "tournament:" + tournamentID + ":progress" }
func resultsKey(tournamentID string) string     { return "tournament:" + tournamentID + ":results" }
func leaderboardKey(tournamentID string) string { return "tournament:" + tournamentID + ":leaderboard" }
func ratingsKey(tournamentID string) string     { return "tournament:" + tournamentID + ":ratings" }

// SetProgress stores the latest progress report as a hash.
func (c *Client) SetProgress(ctx context.Context, p model.Progress) error {
	key := progressKey(p.TournamentID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"completed", p.Completed,
		"failed", p.Failed,
		"total", p.Total,
		"eta_seconds", strconv.FormatFloat(p.ETASeconds, 'f', 3, 64),
		"paused", strconv.FormatBool(p.Paused),
	)
	pipe.Expire(ctx, key, dataTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// GetProgress returns the stored progress, or nil if none exists.
func (c *Client) GetProgress(ctx context.Context, tournamentID string) (*model.Progress, error) {
	m, err := c.rdb.HGetAll(ctx, progressKey(tournamentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	p := &model.Progress{TournamentID: tournamentID}
	p.Completed, _ = strconv.Atoi(m["completed"])
	p.Failed, _ = strconv.Atoi(m["failed"])
	p.Total, _ = strconv.Atoi(m["total"])
	p.ETASeconds, _ = strconv.ParseFloat(m["eta_seconds"], 64)
	p.Paused, _ = strconv.ParseBool(m["paused"])
	return p, nil
}

// PushResult prepends a game to the recent result list, trimming it to MaxRecentResults.
func (c *Client) PushResult(ctx context.Context, rec model.GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	key := resultsKey(rec.TournamentID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxRecentResults-1)
	pipe.Expire(ctx, key, dataTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push result: %w", err)
	}
	return nil
}

// RecentResults returns up to n recent games, newest first.
func (c *Client) RecentResults(ctx context.Context, tournamentID string, n int) ([]model.GameRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := c.rdb.LRange(ctx, resultsKey(tournamentID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	out := make([]model.GameRecord, 0, len(raw))
	for _, s := range raw {
		var rec model.GameRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SetRatings replaces the leaderboard. Scores live in a sorted set and the
// full rows in a hash keyed by player.
func (c *Client) SetRatings(ctx context.Context, tournamentID string, ratings []model.Rating) error {
	lb, rk := leaderboardKey(tournamentID), ratingsKey(tournamentID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, lb, rk)
	for _, r := range ratings {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal rating: %w", err)
		}
		pipe.ZAdd(ctx, lb, redis.Z{Score: r.Rating, Member: r.Player})
		pipe.HSet(ctx, rk, r.Player, data)
	}
	pipe.Expire(ctx, lb, dataTTL)
	pipe.Expire(ctx, rk, dataTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set ratings: %w", err)
	}
	return nil
}

// Leaderboard returns the top n ratings, highest first. n <= 0 returns all.
func (c *Client) Leaderboard(ctx context.Context, tournamentID string, n int) ([]model.Rating, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}
	players, err := c.rdb.ZRevRange(ctx, leaderboardKey(tournamentID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if len(players) == 0 {
		return nil, nil
	}
	rows, err := c.rdb.HMGet(ctx, ratingsKey(tournamentID), players...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard rows: %w", err)
	}
	out := make([]model.Rating, 0, len(rows))
	for _, row := range rows {
		s, ok := row.(string)
		if !ok {
			continue
		}
		var r model.Rating
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			return nil, fmt.Errorf("decode rating: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// DeleteTournamentData removes all Redis data for a tournament.
func (c *Client) DeleteTournamentData(ctx context.Context, tournamentID string) error {
	return c.rdb.Del(ctx,
		progressKey(tournamentID),
		resultsKey(tournamentID),
		leaderboardKey(tournamentID),
		ratingsKey(tournamentID),
	).Err()
}
